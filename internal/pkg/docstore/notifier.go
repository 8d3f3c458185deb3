package docstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Notifier broadcasts the paths of changed documents so every store
// instance can refresh the subscriptions that depend on them.
type Notifier interface {
	Publish(ctx context.Context, paths ...string) error
	// Watch registers fn for every published path and returns its cancel func.
	Watch(fn func(path string)) func()
	Close() error
}

type watchers struct {
	mu     sync.RWMutex
	nextID uint64
	fns    map[uint64]func(string)
}

func (w *watchers) add(fn func(string)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fns == nil {
		w.fns = make(map[uint64]func(string))
	}
	w.nextID++
	id := w.nextID
	w.fns[id] = fn
	return func() {
		w.mu.Lock()
		delete(w.fns, id)
		w.mu.Unlock()
	}
}

func (w *watchers) dispatch(path string) {
	w.mu.RLock()
	fns := make([]func(string), 0, len(w.fns))
	for _, fn := range w.fns {
		fns = append(fns, fn)
	}
	w.mu.RUnlock()
	for _, fn := range fns {
		fn(path)
	}
}

// LocalNotifier fans changes out inside one process.
type LocalNotifier struct {
	watchers
}

// NewLocalNotifier creates a LocalNotifier.
func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{}
}

// Publish implements Notifier.
func (n *LocalNotifier) Publish(_ context.Context, paths ...string) error {
	for _, p := range paths {
		n.dispatch(p)
	}
	return nil
}

// Watch implements Notifier.
func (n *LocalNotifier) Watch(fn func(string)) func() {
	return n.add(fn)
}

// Close implements Notifier.
func (n *LocalNotifier) Close() error { return nil }

// RedisNotifier carries change paths over a Redis pub/sub channel, so writes
// made by one API instance refresh subscriptions held by the others.
type RedisNotifier struct {
	watchers
	client  *redis.Client
	channel string
	pubsub  *redis.PubSub
	done    chan struct{}
	logger  zerolog.Logger
}

// NewRedisNotifier subscribes to channel and starts dispatching received paths.
func NewRedisNotifier(ctx context.Context, client *redis.Client, channel string, logger zerolog.Logger) (*RedisNotifier, error) {
	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	n := &RedisNotifier{
		client:  client,
		channel: channel,
		pubsub:  pubsub,
		done:    make(chan struct{}),
		logger:  logger,
	}
	go n.loop()
	return n, nil
}

func (n *RedisNotifier) loop() {
	defer close(n.done)
	for msg := range n.pubsub.Channel() {
		n.dispatch(msg.Payload)
	}
	n.logger.Debug().Str("channel", n.channel).Msg("change feed closed")
}

// Publish implements Notifier.
func (n *RedisNotifier) Publish(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		if err := n.client.Publish(ctx, n.channel, p).Err(); err != nil {
			return fmt.Errorf("publish change %s: %w", p, err)
		}
	}
	return nil
}

// Watch implements Notifier.
func (n *RedisNotifier) Watch(fn func(string)) func() {
	return n.add(fn)
}

// Close implements Notifier.
func (n *RedisNotifier) Close() error {
	err := n.pubsub.Close()
	<-n.done
	return err
}
