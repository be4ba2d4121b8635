package remote

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore adapts a Firestore client to DocStore. Query snapshots,
// server timestamps and the increment/arrayUnion/arrayRemove sentinels
// map one to one.
type FirestoreStore struct {
	c *firestore.Client
}

func NewFirestore(c *firestore.Client) *FirestoreStore { return &FirestoreStore{c: c} }

func (s *FirestoreStore) query(path, orderBy string, desc bool) firestore.Query {
	q := s.c.Collection(path).Query
	if orderBy != "" {
		dir := firestore.Asc
		if desc {
			dir = firestore.Desc
		}
		q = q.OrderBy(orderBy, dir)
	}
	return q
}

func (s *FirestoreStore) Subscribe(ctx context.Context, path, orderBy string, desc bool) (Subscription, error) {
	sub := &firestoreSub{
		it: s.query(path, orderBy, desc).Snapshots(ctx),
		ch: make(chan []Document, 1),
	}
	go sub.run()
	return sub, nil
}

type firestoreSub struct {
	it *firestore.QuerySnapshotIterator
	ch chan []Document
}

func (s *firestoreSub) Snapshots() <-chan []Document { return s.ch }
func (s *firestoreSub) Stop()                        { s.it.Stop() }

func (s *firestoreSub) run() {
	defer close(s.ch)
	for {
		snap, err := s.it.Next()
		if err != nil {
			// iterator.Done after Stop, or the subscribing context ended
			return
		}
		refs, err := snap.Documents.GetAll()
		if err != nil {
			return
		}
		docs := make([]Document, 0, len(refs))
		for _, d := range refs {
			docs = append(docs, Document{ID: d.Ref.ID, Data: d.Data()})
		}
		// latest snapshot wins; drop the stale one if the consumer is behind
		select {
		case <-s.ch:
		default:
		}
		s.ch <- docs
	}
}

func (s *FirestoreStore) List(ctx context.Context, path, orderBy string, desc bool) ([]Document, error) {
	refs, err := s.query(path, orderBy, desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(refs))
	for _, d := range refs {
		docs = append(docs, Document{ID: d.Ref.ID, Data: d.Data()})
	}
	return docs, nil
}

func (s *FirestoreStore) Create(ctx context.Context, path string, fields map[string]any) (string, error) {
	ref, _, err := s.c.Collection(path).Add(ctx, resolveSentinels(fields))
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Set(ctx context.Context, path, id string, fields map[string]any) error {
	_, err := s.c.Collection(path).Doc(id).Set(ctx, resolveSentinels(fields))
	return err
}

func (s *FirestoreStore) Update(ctx context.Context, path, id string, updates []Update) error {
	fu := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		var v any
		switch u.Op {
		case OpIncrement:
			v = firestore.Increment(u.Value)
		case OpArrayUnion:
			v = firestore.ArrayUnion(u.Value)
		case OpArrayRemove:
			v = firestore.ArrayRemove(u.Value)
		default:
			v = u.Value
			if _, ok := v.(serverTime); ok {
				v = firestore.ServerTimestamp
			}
		}
		fu = append(fu, firestore.Update{Path: u.Field, Value: v})
	}
	_, err := s.c.Collection(path).Doc(id).Update(ctx, fu)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, path, id string) (Document, error) {
	snap, err := s.c.Collection(path).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, path, id string) error {
	_, err := s.c.Collection(path).Doc(id).Delete(ctx)
	return err
}

func resolveSentinels(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if _, ok := v.(serverTime); ok {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}
