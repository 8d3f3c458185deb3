package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/campusconnect/campusconnect/internal/db"
)

const documentsTable = "documents"

// PostgresStore persists documents as JSONB rows and refreshes live queries
// whenever the notifier reports a change to a path they depend on.
type PostgresStore struct {
	db       *db.PostgresDB
	notifier Notifier
	now      func() time.Time
	logger   zerolog.Logger

	mu        sync.Mutex
	listeners map[uint64]*pgListener
	nextID    uint64
	stopWatch func()
	closed    bool
}

type pgListener struct {
	query   Query
	docPath string
	onDocs  func([]Document)
	onDoc   func(Document, bool)
	onErr   func(error)

	ctx    context.Context
	cancel context.CancelFunc
	dirty  chan struct{}
}

func (l *pgListener) markDirty() {
	select {
	case l.dirty <- struct{}{}:
	default:
	}
}

func (l *pgListener) interested(path string) bool {
	if l.docPath != "" {
		return l.docPath == path
	}
	coll, _, err := splitDocPath(path)
	return err == nil && l.query.matchesCollection(coll)
}

// NewPostgresStore creates a store over the documents table.
func NewPostgresStore(database *db.PostgresDB, notifier Notifier, logger zerolog.Logger) *PostgresStore {
	s := &PostgresStore{
		db:        database,
		notifier:  notifier,
		now:       time.Now,
		logger:    logger,
		listeners: make(map[uint64]*pgListener),
	}
	s.stopWatch = notifier.Watch(s.onChange)
	return s
}

func (s *PostgresStore) onChange(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.listeners {
		if l.interested(path) {
			l.markDirty()
		}
	}
}

// Subscribe implements Store.
func (s *PostgresStore) Subscribe(ctx context.Context, q Query, onSnapshot func([]Document), onError func(error)) (Unsubscribe, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	return s.listen(ctx, &pgListener{query: q, onDocs: onSnapshot, onErr: onError})
}

// SubscribeDoc implements Store.
func (s *PostgresStore) SubscribeDoc(ctx context.Context, path string, onSnapshot func(Document, bool), onError func(error)) (Unsubscribe, error) {
	if _, _, err := splitDocPath(path); err != nil {
		return nil, err
	}
	return s.listen(ctx, &pgListener{docPath: path, onDoc: onSnapshot, onErr: onError})
}

func (s *PostgresStore) listen(ctx context.Context, l *pgListener) (Unsubscribe, error) {
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.dirty = make(chan struct{}, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		l.cancel()
		return nil, ErrClosed
	}
	s.nextID++
	id := s.nextID
	s.listeners[id] = l
	s.mu.Unlock()

	l.markDirty()
	go s.run(l)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.cancel()
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}, nil
}

// run owns all deliveries to l, which keeps them ordered.
func (s *PostgresStore) run(l *pgListener) {
	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.dirty:
		}

		if l.docPath != "" {
			doc, err := s.Get(l.ctx, l.docPath)
			if l.ctx.Err() != nil {
				return
			}
			switch {
			case errors.Is(err, ErrNotFound):
				l.onDoc(Document{ID: idOf(l.docPath), Path: l.docPath}, false)
			case err != nil:
				s.report(l, err)
			default:
				l.onDoc(doc, true)
			}
			continue
		}

		docs, err := s.query(l.ctx, l.query)
		if l.ctx.Err() != nil {
			return
		}
		if err != nil {
			s.report(l, err)
			continue
		}
		l.onDocs(docs)
	}
}

func (s *PostgresStore) report(l *pgListener, err error) {
	s.logger.Error().Err(err).Str("query", l.query.Key()).Str("doc", l.docPath).Msg("Live query refresh failed")
	if l.onErr != nil {
		l.onErr(err)
	}
}

func (s *PostgresStore) query(ctx context.Context, q Query) ([]Document, error) {
	query := squirrel.Select("path", "data").
		From(documentsTable).
		PlaceholderFormat(squirrel.Dollar)
	if q.Group {
		query = query.Where(squirrel.Eq{"collection_name": q.Collection})
	} else {
		query = query.Where(squirrel.Eq{"collection": q.Collection})
	}
	if raw, ok := containment(q.Filters); ok {
		query = query.Where("data @> ?::jsonb", string(raw))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			path string
			raw  []byte
		)
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, fmt.Errorf("error scanning document: %w", err)
		}
		data, err := decodeData(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: idOf(path), Path: path, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	docs = q.apply(docs)
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, path string) (Document, error) {
	if _, _, err := splitDocPath(path); err != nil {
		return Document{}, err
	}
	data, err := s.load(ctx, s.db.Pool, path, false)
	if err != nil {
		return Document{}, err
	}
	if data == nil {
		return Document{}, ErrNotFound
	}
	return Document{ID: idOf(path), Path: path, Data: data}, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) load(ctx context.Context, q querier, path string, forUpdate bool) (map[string]any, error) {
	query := squirrel.Select("data").
		From(documentsTable).
		Where(squirrel.Eq{"path": path}).
		PlaceholderFormat(squirrel.Dollar)
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var raw []byte
	if err := q.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading %s: %w", path, err)
	}
	return decodeData(raw)
}

// Set implements Store.
func (s *PostgresStore) Set(ctx context.Context, path string, fields map[string]any, merge bool) error {
	return s.Batch().Set(path, fields, merge).Commit(ctx)
}

// Update implements Store.
func (s *PostgresStore) Update(ctx context.Context, path string, fields map[string]any) error {
	return s.Batch().Update(path, fields).Commit(ctx)
}

// Add implements Store.
func (s *PostgresStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := checkCollectionPath(collection); err != nil {
		return "", err
	}
	id := NewID()
	if err := s.Set(ctx, Join(collection, id), fields, false); err != nil {
		return "", err
	}
	return id, nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, path string) error {
	return s.Batch().Delete(path).Commit(ctx)
}

// Batch implements Store.
func (s *PostgresStore) Batch() Batch {
	return &batch{commit: s.commit}
}

func (s *PostgresStore) commit(ctx context.Context, muts []mutation) error {
	now := timestamppb.New(s.now())
	paths := make([]string, 0, len(muts))

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		staged := make(map[string]map[string]any)
		removed := make(map[string]bool)
		var order []string

		for _, m := range muts {
			var current map[string]any
			switch {
			case removed[m.path]:
			case staged[m.path] != nil:
				current = staged[m.path]
			default:
				loaded, err := s.load(ctx, tx, m.path, true)
				if err != nil {
					return err
				}
				current = loaded
			}

			next, deleted, err := applyMutation(current, m, now)
			if err != nil {
				return err
			}
			if deleted {
				delete(staged, m.path)
				removed[m.path] = true
			} else {
				staged[m.path] = next
				delete(removed, m.path)
			}
			order = append(order, m.path)
		}

		written := make(map[string]bool)
		for _, path := range order {
			if written[path] {
				continue
			}
			written[path] = true
			if removed[path] {
				if err := s.deleteRow(ctx, tx, path); err != nil {
					return err
				}
			} else if err := s.upsertRow(ctx, tx, path, staged[path]); err != nil {
				return err
			}
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.notifier.Publish(ctx, paths...); err != nil {
		s.logger.Error().Err(err).Strs("paths", paths).Msg("Failed to publish document changes")
	}
	return nil
}

func (s *PostgresStore) upsertRow(ctx context.Context, tx pgx.Tx, path string, data map[string]any) error {
	collection, id, err := splitDocPath(path)
	if err != nil {
		return err
	}
	raw, err := encodeData(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	query := squirrel.Insert(documentsTable).
		Columns("path", "collection", "collection_name", "id", "data", "updated_at").
		Values(path, collection, collectionName(collection), id, string(raw), squirrel.Expr("NOW()")).
		Suffix("ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

func (s *PostgresStore) deleteRow(ctx context.Context, tx pgx.Tx, path string) error {
	query := squirrel.Delete(documentsTable).
		Where(squirrel.Eq{"path": path}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting %s: %w", path, err)
	}
	return nil
}

// Close stops every live query. The database pool is owned by the caller.
func (s *PostgresStore) Close() {
	s.mu.Lock()
	s.closed = true
	listeners := s.listeners
	s.listeners = make(map[uint64]*pgListener)
	s.mu.Unlock()

	s.stopWatch()
	for _, l := range listeners {
		l.cancel()
	}
}
