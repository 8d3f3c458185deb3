package live

import "sync"

// Binding holds at most one subscription and replaces it when the key of its
// inputs changes. The zero value is ready to use.
type Binding struct {
	mu  sync.Mutex
	gen uint64
	key string
	sub *Subscription
}

// Bind makes key the active input. When key equals the current key and a
// subscription is open, nothing happens. Otherwise the old subscription is
// closed and open is called without holding the binding lock, so snapshots
// delivered during open may safely call back into the binding.
func (b *Binding) Bind(key string, open func() (*Subscription, error)) error {
	b.mu.Lock()
	if b.sub != nil && b.key == key {
		b.mu.Unlock()
		return nil
	}
	old := b.sub
	b.gen++
	gen := b.gen
	b.key = key
	b.sub = nil
	b.mu.Unlock()

	old.Close()

	sub, err := open()
	if err != nil {
		return err
	}

	b.mu.Lock()
	if b.gen != gen {
		// Rebound or closed while opening.
		b.mu.Unlock()
		sub.Close()
		return nil
	}
	b.sub = sub
	b.mu.Unlock()
	return nil
}

// Key returns the active key.
func (b *Binding) Key() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key
}

// Active reports whether the binding holds an open subscription for key.
func (b *Binding) Active(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sub != nil && b.key == key
}

// Close disposes the current subscription and clears the key.
func (b *Binding) Close() {
	b.mu.Lock()
	old := b.sub
	b.gen++
	b.key = ""
	b.sub = nil
	b.mu.Unlock()
	old.Close()
}
