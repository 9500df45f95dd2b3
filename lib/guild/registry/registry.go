package registry

import (
	"errors"
	"sync"
	"time"

	"gfx.cafe/gfx/guild/lib/guild/resources"
	"gfx.cafe/gfx/guild/lib/util/slices"
)

var (
	ErrInvalidIdentifier   = errors.New("mercenary identifier must not be empty")
	ErrDuplicateIdentifier = errors.New("mercenary already registered")
	ErrNotFound            = errors.New("mercenary not found")
	ErrInvalidState        = errors.New("mercenary is not busy")
)

type State int

const (
	StateFree State = iota
	StateBusy
)

func (T State) String() string {
	switch T {
	case StateFree:
		return "free"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Mercenary is a snapshot of a registered worker.
type Mercenary struct {
	ID         string
	Offer      resources.Descriptor
	State      State
	ClaimedBy  string
	Registered time.Time
}

type mercenary struct {
	Mercenary
}

// Registry tracks registered mercenaries and which quest each one is claimed by. Claims are
// handed out in registration order.
type Registry struct {
	mercenaries map[string]*mercenary
	order       []*mercenary
	free        int
	mu          sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (T *Registry) Register(id string, offer resources.Descriptor) error {
	if id == "" {
		return ErrInvalidIdentifier
	}

	T.mu.Lock()
	defer T.mu.Unlock()

	if _, ok := T.mercenaries[id]; ok {
		return ErrDuplicateIdentifier
	}

	m := &mercenary{
		Mercenary: Mercenary{
			ID:         id,
			Offer:      offer,
			State:      StateFree,
			Registered: time.Now(),
		},
	}
	if T.mercenaries == nil {
		T.mercenaries = make(map[string]*mercenary)
	}
	T.mercenaries[id] = m
	T.order = append(T.order, m)
	T.free++
	return nil
}

// Deregister removes the mercenary regardless of its state. If it was busy, the quest it was
// claimed by is returned so the caller can deal with it.
func (T *Registry) Deregister(id string) (claimedBy string, err error) {
	T.mu.Lock()
	defer T.mu.Unlock()

	m, ok := T.mercenaries[id]
	if !ok {
		return "", ErrNotFound
	}
	delete(T.mercenaries, id)
	T.order = slices.Remove(T.order, m)

	if m.State == StateFree {
		T.free--
		return "", nil
	}
	return m.ClaimedBy, nil
}

// TryClaim marks the first free mercenary that satisfies requirement as busy on behalf of quest.
func (T *Registry) TryClaim(requirement resources.Descriptor, quest string) (Mercenary, bool) {
	T.mu.Lock()
	defer T.mu.Unlock()

	if T.free == 0 {
		return Mercenary{}, false
	}

	for _, m := range T.order {
		if m.State != StateFree || !requirement.Satisfies(m.Offer) {
			continue
		}

		m.State = StateBusy
		m.ClaimedBy = quest
		T.free--
		return m.Mercenary, true
	}

	return Mercenary{}, false
}

// Release frees a busy mercenary and returns the quest it was claimed by.
func (T *Registry) Release(id string) (claimedBy string, err error) {
	T.mu.Lock()
	defer T.mu.Unlock()

	m, ok := T.mercenaries[id]
	if !ok {
		return "", ErrNotFound
	}
	if m.State != StateBusy {
		return "", ErrInvalidState
	}

	claimedBy = m.ClaimedBy
	m.State = StateFree
	m.ClaimedBy = ""
	T.free++
	return claimedBy, nil
}

func (T *Registry) Get(id string) (Mercenary, bool) {
	T.mu.Lock()
	defer T.mu.Unlock()

	m, ok := T.mercenaries[id]
	if !ok {
		return Mercenary{}, false
	}
	return m.Mercenary, true
}

// List returns every mercenary in registration order.
func (T *Registry) List() []Mercenary {
	T.mu.Lock()
	defer T.mu.Unlock()

	res := make([]Mercenary, 0, len(T.order))
	for _, m := range T.order {
		res = append(res, m.Mercenary)
	}
	return res
}

func (T *Registry) Free() int {
	T.mu.Lock()
	defer T.mu.Unlock()

	return T.free
}

func (T *Registry) Len() int {
	T.mu.Lock()
	defer T.mu.Unlock()

	return len(T.order)
}
