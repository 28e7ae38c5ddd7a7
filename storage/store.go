// Package storage persists activity documents in a NATS KV bucket.
//
// Documents are stored in their canonical encoded form and keyed by a
// name-based UUID of their id, so the same id always lands on the same key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semactivity/codec"
	"github.com/c360studio/semactivity/document"
)

// BucketDocuments is the default bucket name.
const BucketDocuments = "SEMACTIVITY_DOCUMENTS"

var (
	bucketRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	keyRe    = regexp.MustCompile(`^[-/_=.a-zA-Z0-9]+$`)
)

// ValidBucket reports whether name is a legal KV bucket name.
func ValidBucket(name string) bool {
	return bucketRe.MatchString(name)
}

// ValidKey reports whether key is a legal KV key.
func ValidKey(key string) bool {
	return keyRe.MatchString(key) && !strings.HasPrefix(key, ".") && !strings.HasSuffix(key, ".")
}

// DocumentKey returns the key a document with the given id is stored under.
func DocumentKey(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}

// KeyValue is the subset of jetstream.KeyValue the store uses.
type KeyValue interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
}

// Entry is a stored document with its KV metadata.
type Entry struct {
	Key      string
	Revision uint64
	Created  time.Time
	Document document.Typed
}

// Store provides document storage backed by NATS KV.
type Store struct {
	kv     KeyValue
	codec  *codec.Codec
	logger *slog.Logger
}

// NewStore opens the bucket, creating it if it doesn't exist.
func NewStore(ctx context.Context, js jetstream.JetStream, bucket string, c *codec.Codec, logger *slog.Logger) (*Store, error) {
	if bucket == "" {
		bucket = BucketDocuments
	}
	if !ValidBucket(bucket) {
		return nil, fmt.Errorf("invalid bucket name: %s", bucket)
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("create %s bucket: %w", bucket, err)
	}
	return NewStoreWithKV(kv, c, logger), nil
}

// NewStoreWithKV creates a Store over an already opened bucket.
func NewStoreWithKV(kv KeyValue, c *codec.Codec, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, codec: c, logger: logger}
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Activity stream documents",
		History:     5, // Keep last 5 revisions
	})
}

// Put encodes and stores a document and returns its key. Documents without
// an id get a random key.
func (s *Store) Put(ctx context.Context, doc document.Typed) (string, error) {
	key := uuid.New().String()
	if id := doc.Doc().ID(); id != "" {
		key = DocumentKey(id)
	}

	data, err := s.codec.Encode(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	rev, err := s.kv.Put(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}

	s.logger.Debug("Stored document",
		slog.String("key", key),
		slog.String("id", doc.Doc().ID()),
		slog.Uint64("revision", rev))
	return key, nil
}

// Get retrieves and decodes the document stored under key.
func (s *Store) Get(ctx context.Context, key string) (*Entry, error) {
	if !ValidKey(key) {
		return nil, fmt.Errorf("invalid key: %q", key)
	}
	kve, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc, err := s.codec.Decode(kve.Value(), nil)
	if err != nil {
		return nil, fmt.Errorf("decode document %s: %w", key, err)
	}
	return &Entry{
		Key:      kve.Key(),
		Revision: kve.Revision(),
		Created:  kve.Created(),
		Document: doc,
	}, nil
}

// GetByID retrieves the document with the given id.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	return s.Get(ctx, DocumentKey(id))
}

// Delete removes the document stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// List returns every stored document ordered by key.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list document keys: %w", err)
	}
	sort.Strings(keys)

	entries := make([]*Entry, 0, len(keys))
	for _, key := range keys {
		entry, err := s.Get(ctx, key)
		if err != nil {
			s.logger.Warn("Skipping unreadable document",
				slog.String("key", key),
				slog.String("error", err.Error()))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
