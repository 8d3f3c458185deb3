// Package docstore is the document store the sync core talks to: live query
// snapshots, single document reads and writes, atomic batches and field
// mutators. It ships an in-memory store and a Postgres JSONB store.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by Get and Update when the document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidPath is returned for malformed collection or document paths.
	ErrInvalidPath = errors.New("invalid document path")
	// ErrClosed is returned once the store has been closed.
	ErrClosed = errors.New("store closed")
)

// Document is one stored document.
type Document struct {
	ID   string
	Path string
	Data map[string]any
}

// Unsubscribe disposes a live subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Store is the set of primitives the application depends on.
type Store interface {
	// Subscribe delivers the full result set of q on every change until disposed or ctx ends.
	Subscribe(ctx context.Context, q Query, onSnapshot func([]Document), onError func(error)) (Unsubscribe, error)
	// SubscribeDoc delivers a single document; exists is false while it is missing.
	SubscribeDoc(ctx context.Context, path string, onSnapshot func(doc Document, exists bool), onError func(error)) (Unsubscribe, error)
	Get(ctx context.Context, path string) (Document, error)
	// Set replaces the document, or deep-merges into it when merge is true.
	Set(ctx context.Context, path string, fields map[string]any, merge bool) error
	// Update changes the named fields of an existing document. Dotted keys address nested fields.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Add creates a document with a generated id inside collection.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Delete(ctx context.Context, path string) error
	// Batch starts an all-or-nothing group of writes.
	Batch() Batch
}

// Batch groups writes that commit atomically.
type Batch interface {
	Set(path string, fields map[string]any, merge bool) Batch
	Update(path string, fields map[string]any) Batch
	Delete(path string) Batch
	Commit(ctx context.Context) error
}

// NewID returns a fresh opaque document id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Join builds a slash separated path.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Fetch runs q once by taking the first snapshot of a subscription.
func Fetch(ctx context.Context, s Store, q Query) ([]Document, error) {
	type result struct {
		docs []Document
		err  error
	}
	ch := make(chan result, 1)
	unsub, err := s.Subscribe(ctx, q,
		func(docs []Document) {
			select {
			case ch <- result{docs: docs}:
			default:
			}
		},
		func(err error) {
			select {
			case ch <- result{err: err}:
			default:
			}
		})
	if err != nil {
		return nil, err
	}
	defer unsub()

	select {
	case r := <-ch:
		return r.docs, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// splitDocPath returns the collection path and id of a document path.
func splitDocPath(path string) (collection, id string, err error) {
	segs := strings.Split(path, "/")
	if len(segs) < 2 || len(segs)%2 != 0 || hasEmpty(segs) {
		return "", "", fmt.Errorf("%w: %q is not a document path", ErrInvalidPath, path)
	}
	return strings.Join(segs[:len(segs)-1], "/"), segs[len(segs)-1], nil
}

func checkCollectionPath(path string) error {
	segs := strings.Split(path, "/")
	if len(segs)%2 != 1 || hasEmpty(segs) {
		return fmt.Errorf("%w: %q is not a collection path", ErrInvalidPath, path)
	}
	return nil
}

// collectionName returns the last segment of a collection path.
func collectionName(collection string) string {
	if i := strings.LastIndex(collection, "/"); i >= 0 {
		return collection[i+1:]
	}
	return collection
}

func hasEmpty(segs []string) bool {
	for _, s := range segs {
		if s == "" {
			return true
		}
	}
	return false
}
