// Package identity tracks who is signed in on one connection.
package identity

import "sync"

// Identity is a verified user.
type Identity struct {
	UID   string
	Email string
}

// Provider publishes identity changes. nil means signed out.
type Provider interface {
	// OnIdentityChanged registers fn and calls it with the current identity.
	// The returned func unregisters it.
	OnIdentityChanged(fn func(*Identity)) func()
	SignOut()
}

// Session is an in-process Provider fed by a verified token.
type Session struct {
	mu        sync.Mutex
	current   *Identity
	listeners map[int]func(*Identity)
	next      int
}

// NewSession returns a signed out session.
func NewSession() *Session {
	return &Session{listeners: make(map[int]func(*Identity))}
}

// Current returns the signed in identity or nil.
func (s *Session) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

// SignIn replaces the current identity.
func (s *Session) SignIn(id Identity) {
	s.set(&id)
}

// SignOut clears the current identity. Signing out twice notifies once.
func (s *Session) SignOut() {
	s.set(nil)
}

func (s *Session) set(id *Identity) {
	s.mu.Lock()
	if s.current == nil && id == nil {
		s.mu.Unlock()
		return
	}
	s.current = id
	fns := make([]func(*Identity), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(copyIdentity(id))
	}
}

// OnIdentityChanged implements Provider.
func (s *Session) OnIdentityChanged(fn func(*Identity)) func() {
	s.mu.Lock()
	key := s.next
	s.next++
	s.listeners[key] = fn
	current := copyIdentity(s.current)
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, key)
			s.mu.Unlock()
		})
	}
}

func copyIdentity(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
