package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"local.dev/travelshare-backend/internal/remote"
)

func TestProfileGetMissing(t *testing.T) {
	p := NewProfiles(remote.NewMemStore())
	_, err := p.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestProfileUpsertCreates(t *testing.T) {
	p := NewProfiles(remote.NewMemStore())
	ctx := context.Background()

	prof, err := p.Upsert(ctx, "alice", "alice@example.com", ProfileFields{})
	require.NoError(t, err)
	assert.Equal(t, "alice", prof.ID)
	assert.Equal(t, "alice@example.com", prof.Email)
	// username defaults to the uid until the user picks one
	assert.Equal(t, "alice", prof.Username)
	assert.False(t, prof.CreatedAt.IsZero())
}

func TestProfileUpsertPatchesOnlyGivenFields(t *testing.T) {
	p := NewProfiles(remote.NewMemStore())
	ctx := context.Background()

	_, err := p.Upsert(ctx, "alice", "alice@example.com", ProfileFields{
		Username: strptr("Alice W."),
		FullName: strptr("Alice Wong"),
	})
	require.NoError(t, err)

	// second patch sets only the picture
	prof, err := p.Upsert(ctx, "alice", "", ProfileFields{
		ProfilePic: strptr("https://example.com/alice.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice W.", prof.Username)
	assert.Equal(t, "Alice Wong", prof.FullName)
	assert.Equal(t, "alice@example.com", prof.Email)
	require.NotNil(t, prof.ProfilePic)
	assert.Equal(t, "https://example.com/alice.png", *prof.ProfilePic)
}

func TestProfileUpsertIgnoresEmptyUsername(t *testing.T) {
	p := NewProfiles(remote.NewMemStore())
	ctx := context.Background()

	_, err := p.Upsert(ctx, "alice", "alice@example.com", ProfileFields{Username: strptr("Alice W.")})
	require.NoError(t, err)

	prof, err := p.Upsert(ctx, "alice", "", ProfileFields{Username: strptr("")})
	require.NoError(t, err)
	assert.Equal(t, "Alice W.", prof.Username)
}
