// Package remote is the thin slice of the backing document database the
// rest of the app consumes: live snapshot subscriptions plus per-document
// writes. Collection paths are slash-separated the way the backend names
// them, e.g. "posts" or "posts/p1/comments".
package remote

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("remote: document not found")

// Document is one record of a collection, id plus raw fields.
type Document struct {
	ID   string
	Data map[string]any
}

// Subscription is a standing live query. Snapshots delivers full
// collection listings (not diffs) in server order; a slow consumer sees
// the newest listing, intermediate ones may be dropped. The channel is
// closed after Stop or when the subscribing context ends.
type Subscription interface {
	Snapshots() <-chan []Document
	Stop()
}

// DocStore is what the feed layer needs from the remote database.
type DocStore interface {
	// Subscribe opens a live query over path ordered by the named field.
	// The first snapshot is delivered immediately.
	Subscribe(ctx context.Context, path, orderBy string, desc bool) (Subscription, error)

	// List is the one-shot form of Subscribe.
	List(ctx context.Context, path, orderBy string, desc bool) ([]Document, error)

	// Create adds a document with a store-assigned id.
	Create(ctx context.Context, path string, fields map[string]any) (string, error)

	// Set writes a full document at a caller-chosen id.
	Set(ctx context.Context, path, id string, fields map[string]any) error

	// Update merges only the named fields into an existing document.
	Update(ctx context.Context, path, id string, updates []Update) error

	Get(ctx context.Context, path, id string) (Document, error)
	Delete(ctx context.Context, path, id string) error
}

// Op selects the write semantics for one field of an Update. The values
// mirror the sentinel operations the backing store supports.
type Op int

const (
	OpSet Op = iota
	OpIncrement
	OpArrayUnion
	OpArrayRemove
)

// Update mutates a single named field.
type Update struct {
	Field string
	Op    Op
	Value any
}

func Set(field string, v any) Update         { return Update{Field: field, Op: OpSet, Value: v} }
func Increment(field string, n int64) Update { return Update{Field: field, Op: OpIncrement, Value: n} }
func ArrayUnion(field string, v any) Update  { return Update{Field: field, Op: OpArrayUnion, Value: v} }
func ArrayRemove(field string, v any) Update { return Update{Field: field, Op: OpArrayRemove, Value: v} }

type serverTime struct{}

// ServerTime marks a field value the store fills in from its own clock at
// write time (Firestore's serverTimestamp).
var ServerTime = serverTime{}
