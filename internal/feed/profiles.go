package feed

import (
	"context"

	"local.dev/travelshare-backend/internal/models"
	"local.dev/travelshare-backend/internal/remote"
)

const UsersCollection = "users"

// Profiles reads and writes the users/{uid} documents that back display
// names and avatars.
type Profiles struct {
	db remote.DocStore
}

func NewProfiles(db remote.DocStore) *Profiles { return &Profiles{db: db} }

// ProfileFields is the allow-listed, patchable part of a profile. Email
// and createdAt are fixed at signup; nil fields are left untouched.
type ProfileFields struct {
	Username   *string `json:"username"`
	FullName   *string `json:"fullName"`
	ProfilePic *string `json:"profilePic"`
}

func (p *Profiles) Get(ctx context.Context, uid string) (models.Profile, error) {
	doc, err := p.db.Get(ctx, UsersCollection, uid)
	if err != nil {
		return models.Profile{}, err
	}
	return models.ProfileFromDoc(doc), nil
}

// Upsert creates the profile document on first write and otherwise
// overwrites only the fields the caller provided.
func (p *Profiles) Upsert(ctx context.Context, uid, email string, f ProfileFields) (models.Profile, error) {
	cur, err := p.Get(ctx, uid)
	if err == remote.ErrNotFound {
		cur = models.Profile{ID: uid, Email: email, Username: uid}
	} else if err != nil {
		return models.Profile{}, err
	}

	if f.Username != nil && *f.Username != "" {
		cur.Username = *f.Username
	}
	if f.FullName != nil {
		cur.FullName = *f.FullName
	}
	if f.ProfilePic != nil {
		cur.ProfilePic = f.ProfilePic
	}

	fields := map[string]any{
		"uid":        uid,
		"username":   cur.Username,
		"fullName":   cur.FullName,
		"email":      cur.Email,
		"profilePic": cur.ProfilePic,
	}
	if cur.CreatedAt.IsZero() {
		fields["createdAt"] = remote.ServerTime
	} else {
		fields["createdAt"] = cur.CreatedAt
	}
	if err := p.db.Set(ctx, UsersCollection, uid, fields); err != nil {
		return models.Profile{}, err
	}
	out, err := p.Get(ctx, uid)
	if err != nil {
		return models.Profile{}, err
	}
	return out, nil
}
