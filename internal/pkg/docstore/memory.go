package docstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// MemoryStore keeps documents in process. Snapshots are delivered on the
// writing goroutine after the write is visible; a write issued from inside a
// snapshot callback is delivered to that same listener once the callback returns.
type MemoryStore struct {
	mu        sync.RWMutex
	docs      map[string]map[string]any
	version   uint64
	listeners map[uint64]*memListener
	nextID    uint64
	closed    bool

	now    func() time.Time
	logger zerolog.Logger
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time used for server timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) MemoryOption {
	return func(s *MemoryStore) { s.logger = l }
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		docs:      make(map[string]map[string]any),
		listeners: make(map[uint64]*memListener),
		version:   1,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type memListener struct {
	id      uint64
	query   Query
	docPath string // set for single document listeners
	onDocs  func([]Document)
	onDoc   func(Document, bool)

	mu        sync.Mutex
	stop      func() bool
	delivered uint64
	busy      bool
	pending   bool
	closed    bool
}

func (l *memListener) interested(paths []string) bool {
	for _, p := range paths {
		if l.docPath != "" {
			if p == l.docPath {
				return true
			}
			continue
		}
		coll, _, err := splitDocPath(p)
		if err == nil && l.query.matchesCollection(coll) {
			return true
		}
	}
	return false
}

// Subscribe implements Store.
func (s *MemoryStore) Subscribe(ctx context.Context, q Query, onSnapshot func([]Document), onError func(error)) (Unsubscribe, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	return s.listen(ctx, &memListener{query: q, onDocs: onSnapshot})
}

// SubscribeDoc implements Store.
func (s *MemoryStore) SubscribeDoc(ctx context.Context, path string, onSnapshot func(Document, bool), onError func(error)) (Unsubscribe, error) {
	if _, _, err := splitDocPath(path); err != nil {
		return nil, err
	}
	return s.listen(ctx, &memListener{docPath: path, onDoc: onSnapshot})
}

func (s *MemoryStore) listen(ctx context.Context, l *memListener) (Unsubscribe, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.nextID++
	l.id = s.nextID
	s.listeners[l.id] = l
	s.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			l.mu.Lock()
			l.closed = true
			stop := l.stop
			l.mu.Unlock()
			if stop != nil {
				stop()
			}
			s.mu.Lock()
			delete(s.listeners, l.id)
			s.mu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, unsub)
	l.mu.Lock()
	l.stop = stop
	l.mu.Unlock()

	s.deliver(l)
	return unsub, nil
}

// deliver pushes the current result to l. Only one goroutine delivers to a
// listener at a time; concurrent or re-entrant requests are folded into a
// follow-up pass, so a listener never sees an older version after a newer one.
func (s *MemoryStore) deliver(l *memListener) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if l.busy {
		l.pending = true
		l.mu.Unlock()
		return
	}
	l.busy = true
	l.mu.Unlock()

	for {
		s.mu.RLock()
		version := s.version
		var (
			docs   []Document
			doc    Document
			exists bool
		)
		if l.docPath != "" {
			doc, exists = s.docLocked(l.docPath)
		} else {
			docs = s.queryLocked(l.query)
		}
		s.mu.RUnlock()

		l.mu.Lock()
		fresh := !l.closed && version > l.delivered
		if fresh {
			l.delivered = version
		}
		l.mu.Unlock()

		if fresh {
			if l.docPath != "" {
				l.onDoc(doc, exists)
			} else {
				l.onDocs(docs)
			}
		}

		l.mu.Lock()
		if l.pending && !l.closed {
			l.pending = false
			l.mu.Unlock()
			continue
		}
		l.busy = false
		l.mu.Unlock()
		return
	}
}

func (s *MemoryStore) docLocked(path string) (Document, bool) {
	data, ok := s.docs[path]
	if !ok {
		return Document{Path: path, ID: idOf(path)}, false
	}
	return Document{ID: idOf(path), Path: path, Data: copyData(data)}, true
}

func (s *MemoryStore) queryLocked(q Query) []Document {
	var docs []Document
	for path, data := range s.docs {
		coll, id, err := splitDocPath(path)
		if err != nil || !q.matchesCollection(coll) {
			continue
		}
		docs = append(docs, Document{ID: id, Path: path, Data: data})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	docs = q.apply(docs)
	for i := range docs {
		docs[i].Data = copyData(docs[i].Data)
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, path string) (Document, error) {
	if _, _, err := splitDocPath(path); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docLocked(path)
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, path string, fields map[string]any, merge bool) error {
	return s.Batch().Set(path, fields, merge).Commit(ctx)
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]any) error {
	return s.Batch().Update(path, fields).Commit(ctx)
}

// Add implements Store.
func (s *MemoryStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
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
func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	return s.Batch().Delete(path).Commit(ctx)
}

// Batch implements Store.
func (s *MemoryStore) Batch() Batch {
	return &batch{commit: s.commit}
}

// Close drops every listener; later subscriptions fail with ErrClosed.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	s.closed = true
	listeners := s.listeners
	s.listeners = make(map[uint64]*memListener)
	s.mu.Unlock()
	for _, l := range listeners {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
	}
}

func (s *MemoryStore) commit(_ context.Context, muts []mutation) error {
	now := timestamppb.New(s.now())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	staged := make(map[string]map[string]any)
	removed := make(map[string]bool)
	current := func(path string) map[string]any {
		if removed[path] {
			return nil
		}
		if d, ok := staged[path]; ok {
			return d
		}
		return s.docs[path]
	}
	paths := make([]string, 0, len(muts))
	for _, m := range muts {
		next, deleted, err := applyMutation(current(m.path), m, now)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		if deleted {
			delete(staged, m.path)
			removed[m.path] = true
		} else {
			staged[m.path] = next
			delete(removed, m.path)
		}
		paths = append(paths, m.path)
	}
	for path := range removed {
		delete(s.docs, path)
	}
	for path, data := range staged {
		s.docs[path] = data
	}
	s.version++
	var affected []*memListener
	for _, l := range s.listeners {
		if l.interested(paths) {
			affected = append(affected, l)
		}
	}
	s.mu.Unlock()

	s.logger.Debug().Strs("paths", paths).Msg("memory store commit")
	for _, l := range affected {
		s.deliver(l)
	}
	return nil
}

func idOf(path string) string {
	_, id, _ := splitDocPath(path)
	return id
}
