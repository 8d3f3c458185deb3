// Package live turns store subscriptions into typed, owned resources: each
// snapshot is mapped to entities and handed over as a complete list, and the
// store disposer runs exactly once.
package live

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect/internal/app/repositories"
	"github.com/campusconnect/campusconnect/internal/pkg/docstore"
	"github.com/campusconnect/campusconnect/internal/pkg/metrics"
)

// Subscription owns one open store subscription.
type Subscription struct {
	name  string
	once  sync.Once
	unsub docstore.Unsubscribe
}

// Close disposes the subscription. Later calls are no-ops.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.unsub != nil {
			s.unsub()
		}
		metrics.DecSubscription(s.name)
	})
}

// Query describes a typed live list.
type Query[T any] struct {
	// Name labels logs and metrics.
	Name  string
	Query docstore.Query
	Map   repositories.Mapper[T]
	// Arrange runs on every mapped result set, for filtering and ordering that
	// the store cannot express. Optional.
	Arrange func([]T) []T
}

// Subscribe opens q. onList receives the full mapped list on every snapshot;
// documents the mapper rejects are skipped. onError receives stream failures.
func Subscribe[T any](ctx context.Context, store docstore.Store, q Query[T], onList func([]T), onError func(error), logger zerolog.Logger) (*Subscription, error) {
	sub := &Subscription{name: q.Name}
	unsub, err := store.Subscribe(ctx, q.Query,
		func(docs []docstore.Document) {
			metrics.IncSnapshot(q.Name)
			items := make([]T, 0, len(docs))
			for _, d := range docs {
				v, err := q.Map(d)
				if err != nil {
					logger.Debug().Err(err).Str("query", q.Name).Str("path", d.Path).Msg("skipping document")
					continue
				}
				items = append(items, v)
			}
			if q.Arrange != nil {
				items = q.Arrange(items)
			}
			onList(items)
		},
		func(err error) {
			logger.Error().Err(err).Str("query", q.Name).Msg("live query failed")
			if onError != nil {
				onError(err)
			}
		})
	if err != nil {
		return nil, err
	}
	metrics.IncSubscription(q.Name)
	sub.unsub = unsub
	return sub, nil
}

// ErrUndecodable is reported to a document watcher when the document exists
// but cannot be mapped.
var ErrUndecodable = errors.New("document cannot be decoded")

// Watch opens a single document stream. onDoc receives nil while the document
// is missing.
func Watch[T any](ctx context.Context, store docstore.Store, name, path string, mapper repositories.Mapper[T], onDoc func(*T), onError func(error), logger zerolog.Logger) (*Subscription, error) {
	report := func(err error) {
		logger.Error().Err(err).Str("query", name).Str("path", path).Msg("document stream failed")
		if onError != nil {
			onError(err)
		}
	}
	sub := &Subscription{name: name}
	unsub, err := store.SubscribeDoc(ctx, path,
		func(doc docstore.Document, exists bool) {
			metrics.IncSnapshot(name)
			if !exists {
				onDoc(nil)
				return
			}
			v, err := mapper(doc)
			if err != nil {
				report(errors.Join(ErrUndecodable, err))
				return
			}
			onDoc(&v)
		},
		report)
	if err != nil {
		return nil, err
	}
	metrics.IncSubscription(name)
	sub.unsub = unsub
	return sub, nil
}
