package dashboard

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind classifies a change to the live configuration.
type ChangeKind string

const (
	// ChangeSet is a user mutation at a path.
	ChangeSet ChangeKind = "set"
	// ChangeImport replaced the document from imported text.
	ChangeImport ChangeKind = "import"
	// ChangeReload replaced the document from its sources.
	ChangeReload ChangeKind = "reload"
	// ChangeReset restored the built-in defaults.
	ChangeReset ChangeKind = "reset"
)

// Change describes one completed mutation. Subscribers receive it after
// the store's lock is released.
type Change struct {
	ID   uuid.UUID
	Kind ChangeKind
	Path string
	At   time.Time
}

// Persistable reports whether the change carries user edits that belong
// in the override snapshot.
func (c Change) Persistable() bool {
	return c.Kind == ChangeSet || c.Kind == ChangeImport
}

type subscriber struct {
	id uint64
	fn func(Change)
}

// Subscribe registers fn to be called after every change, in
// subscription order. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(kind ChangeKind, path string) {
	change := Change{
		ID:   uuid.New(),
		Kind: kind,
		Path: path,
		At:   time.Now(),
	}

	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(change)
	}
}
