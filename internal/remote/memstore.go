package remote

import (
	"context"
	"maps"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory DocStore with live snapshot fan-out. It backs
// the credential-free dev mode (NO_AUTH=1) and the tests; behavior
// follows the Firestore adapter: full-replacement snapshots, the first
// one delivered immediately, sentinel updates applied atomically per
// document.
type MemStore struct {
	mu   sync.Mutex
	cols map[string]map[string]map[string]any // path -> id -> fields
	subs map[string][]*memSub
}

func NewMemStore() *MemStore {
	return &MemStore{
		cols: map[string]map[string]map[string]any{},
		subs: map[string][]*memSub{},
	}
}

type memSub struct {
	store   *MemStore
	path    string
	orderBy string
	desc    bool
	ch      chan []Document
	closed  bool
}

func (s *memSub) Snapshots() <-chan []Document { return s.ch }

func (s *memSub) Stop() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	subs := s.store.subs[s.path]
	for i, x := range subs {
		if x == s {
			s.store.subs[s.path] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	close(s.ch)
}

// push runs with the store lock held; latest snapshot wins.
func (s *memSub) push(docs []Document) {
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- docs:
	default:
	}
}

func (m *MemStore) Subscribe(_ context.Context, path, orderBy string, desc bool) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := &memSub{store: m, path: path, orderBy: orderBy, desc: desc, ch: make(chan []Document, 1)}
	m.subs[path] = append(m.subs[path], sub)
	sub.push(m.snapshotLocked(path, orderBy, desc))
	return sub, nil
}

func (m *MemStore) List(_ context.Context, path, orderBy string, desc bool) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(path, orderBy, desc), nil
}

func (m *MemStore) Create(_ context.Context, path string, fields map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	col := m.cols[path]
	if col == nil {
		col = map[string]map[string]any{}
		m.cols[path] = col
	}
	col[id] = m.resolveLocked(fields)
	m.broadcastLocked(path)
	return id, nil
}

func (m *MemStore) Set(_ context.Context, path, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	col := m.cols[path]
	if col == nil {
		col = map[string]map[string]any{}
		m.cols[path] = col
	}
	col[id] = m.resolveLocked(fields)
	m.broadcastLocked(path)
	return nil
}

func (m *MemStore) Update(_ context.Context, path, id string, updates []Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.cols[path][id]
	if !ok {
		return ErrNotFound
	}
	next := maps.Clone(doc)
	for _, u := range updates {
		switch u.Op {
		case OpIncrement:
			next[u.Field] = asInt64(next[u.Field]) + asInt64(u.Value)
		case OpArrayUnion:
			next[u.Field] = arrayUnion(next[u.Field], u.Value)
		case OpArrayRemove:
			next[u.Field] = arrayRemove(next[u.Field], u.Value)
		default:
			if _, ok := u.Value.(serverTime); ok {
				next[u.Field] = time.Now().UTC()
				continue
			}
			next[u.Field] = u.Value
		}
	}
	m.cols[path][id] = next
	m.broadcastLocked(path)
	return nil
}

func (m *MemStore) Get(_ context.Context, path, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.cols[path][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: maps.Clone(doc)}, nil
}

func (m *MemStore) Delete(_ context.Context, path, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// deleting a missing document is not an error, matching Firestore
	delete(m.cols[path], id)
	m.broadcastLocked(path)
	return nil
}

func (m *MemStore) broadcastLocked(path string) {
	for _, sub := range m.subs[path] {
		sub.push(m.snapshotLocked(path, sub.orderBy, sub.desc))
	}
}

func (m *MemStore) snapshotLocked(path, orderBy string, desc bool) []Document {
	col := m.cols[path]
	docs := make([]Document, 0, len(col))
	for id, fields := range col {
		docs = append(docs, Document{ID: id, Data: maps.Clone(fields)})
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if desc {
			i, j = j, i
		}
		return lessValue(docs[i].Data[orderBy], docs[j].Data[orderBy])
	})
	return docs
}

func (m *MemStore) resolveLocked(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if _, ok := v.(serverTime); ok {
			out[k] = time.Now().UTC()
			continue
		}
		out[k] = v
	}
	return out
}

func lessValue(a, b any) bool {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Before(y)
		}
	case string:
		if y, ok := b.(string); ok {
			return x < y
		}
	case int, int64, float64:
		return asInt64(x) < asInt64(b)
	}
	return false
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func toSlice(v any) []any {
	switch xs := v.(type) {
	case []any:
		return xs
	case []string:
		out := make([]any, len(xs))
		for i, x := range xs {
			out[i] = x
		}
		return out
	case nil:
		return nil
	}
	return nil
}

func arrayUnion(existing, v any) []any {
	xs := toSlice(existing)
	for _, x := range xs {
		if reflect.DeepEqual(x, v) {
			return xs
		}
	}
	return append(xs, v)
}

func arrayRemove(existing, v any) []any {
	xs := toSlice(existing)
	out := make([]any, 0, len(xs))
	for _, x := range xs {
		if !reflect.DeepEqual(x, v) {
			out = append(out, x)
		}
	}
	return out
}
