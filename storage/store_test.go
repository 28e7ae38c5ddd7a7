package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semactivity/activity"
	"github.com/c360studio/semactivity/codec"
)

type memEntry struct {
	key     string
	value   []byte
	rev     uint64
	created time.Time
}

func (e *memEntry) Bucket() string                  { return BucketDocuments }
func (e *memEntry) Key() string                     { return e.key }
func (e *memEntry) Value() []byte                   { return e.value }
func (e *memEntry) Revision() uint64                { return e.rev }
func (e *memEntry) Created() time.Time              { return e.created }
func (e *memEntry) Delta() uint64                   { return 0 }
func (e *memEntry) Operation() jetstream.KeyValueOp { return jetstream.KeyValuePut }

// memKV is an in-memory KeyValue.
type memKV struct {
	entries map[string]*memEntry
	rev     uint64
}

func newMemKV() *memKV {
	return &memKV{entries: make(map[string]*memEntry)}
}

func (m *memKV) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	e, ok := m.entries[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return e, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) (uint64, error) {
	m.rev++
	m.entries[key] = &memEntry{key: key, value: value, rev: m.rev, created: time.Now()}
	return m.rev, nil
}

func (m *memKV) Delete(_ context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	if _, ok := m.entries[key]; !ok {
		return jetstream.ErrKeyNotFound
	}
	delete(m.entries, key)
	return nil
}

func (m *memKV) Keys(_ context.Context, _ ...jetstream.WatchOpt) ([]string, error) {
	if len(m.entries) == 0 {
		return nil, jetstream.ErrNoKeysFound
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

func newStore(t *testing.T) (*Store, *memKV, *codec.Codec) {
	t.Helper()
	c, err := codec.New()
	if err != nil {
		t.Fatalf("codec.New: %v", err)
	}
	kv := newMemKV()
	return NewStoreWithKV(kv, c, nil), kv, c
}

func TestDocumentKey(t *testing.T) {
	a := DocumentKey("urn:activity:1")
	if a != DocumentKey("urn:activity:1") {
		t.Error("expected stable key for the same id")
	}
	if a == DocumentKey("urn:activity:2") {
		t.Error("expected distinct keys for distinct ids")
	}
	if !ValidKey(a) {
		t.Errorf("expected %q to be a valid key", a)
	}
}

func TestValidNames(t *testing.T) {
	tests := []struct {
		name   string
		bucket bool
		key    bool
	}{
		{"SEMACTIVITY_DOCUMENTS", true, true},
		{"a-b", true, true},
		{"a.b", false, true},
		{".a", false, false},
		{"a.", false, false},
		{"a b", false, false},
		{"", false, false},
	}
	for _, tc := range tests {
		if got := ValidBucket(tc.name); got != tc.bucket {
			t.Errorf("ValidBucket(%q) = %v, want %v", tc.name, got, tc.bucket)
		}
		if got := ValidKey(tc.name); got != tc.key {
			t.Errorf("ValidKey(%q) = %v, want %v", tc.name, got, tc.key)
		}
	}
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	s, kv, c := newStore(t)

	doc, err := c.Decode([]byte(`{"verb":"post","id":"urn:activity:1","actor":"acct:alice@example.org"}`), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	key, err := s.Put(ctx, doc)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if key != DocumentKey("urn:activity:1") {
		t.Errorf("expected id-derived key, got %s", key)
	}
	if len(kv.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(kv.entries))
	}

	entry, err := s.GetByID(ctx, "urn:activity:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry.Revision != 1 {
		t.Errorf("expected revision 1, got %d", entry.Revision)
	}
	act, ok := entry.Document.(*activity.Activity)
	if !ok {
		t.Fatalf("expected *activity.Activity, got %T", entry.Document)
	}
	if !act.Doc().Equal(doc.Doc()) {
		t.Error("stored document differs from the original")
	}

	// Same id overwrites.
	if _, err := s.Put(ctx, doc); err != nil {
		t.Fatalf("put again: %v", err)
	}
	if len(kv.entries) != 1 {
		t.Errorf("expected overwrite, got %d entries", len(kv.entries))
	}
}

func TestPutWithoutID(t *testing.T) {
	ctx := context.Background()
	s, _, c := newStore(t)

	doc, err := c.Decode([]byte(`{"objectType":"note","content":"anonymous"}`), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	k1, err := s.Put(ctx, doc)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	k2, err := s.Put(ctx, doc)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if k1 == k2 {
		t.Error("expected distinct random keys")
	}
}

func TestGetErrors(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newStore(t)

	if _, err := s.GetByID(ctx, "urn:missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get(ctx, "bad key"); err == nil {
		t.Error("expected error for invalid key")
	}

	kv.entries["broken"] = &memEntry{key: "broken", value: []byte(`{"verb":`)}
	if _, err := s.Get(ctx, "broken"); !errors.Is(err, codec.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestDeleteAndList(t *testing.T) {
	ctx := context.Background()
	s, kv, c := newStore(t)

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}

	for _, src := range []string{
		`{"objectType":"note","id":"urn:note:1"}`,
		`{"objectType":"note","id":"urn:note:2"}`,
	} {
		doc, err := c.Decode([]byte(src), nil)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if _, err := s.Put(ctx, doc); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	kv.entries["broken"] = &memEntry{key: "broken", value: []byte(`nope`)}

	entries, err = s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 readable entries, got %d", len(entries))
	}

	if err := s.Delete(ctx, DocumentKey("urn:note:1")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, DocumentKey("urn:note:1")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := s.GetByID(ctx, "urn:note:2"); err != nil {
		t.Errorf("expected urn:note:2 to remain: %v", err)
	}
}

func TestNewStoreInvalidBucket(t *testing.T) {
	c, err := codec.New()
	if err != nil {
		t.Fatalf("codec.New: %v", err)
	}
	if _, err := NewStore(context.Background(), nil, "bad.bucket", c, nil); err == nil {
		t.Error("expected error for invalid bucket name")
	}
}
