package discovery

import (
	"gfx.cafe/gfx/guild/lib/guild/resources"
)

// Recruit is a mercenary found by a discoverer.
type Recruit struct {
	ID    string               `json:"id"`
	Offer resources.Descriptor `json:"offer"`
}

// Discoverer looks up and returns mercenaries. It must implement Recruits. Optionally, it can
// implement Added and Removed for faster updating. For updates, just send to Added.
type Discoverer interface {
	Recruits() ([]Recruit, error)

	Added() <-chan Recruit
	Removed() <-chan string
}

// Roster is where discovered mercenaries are enlisted.
type Roster interface {
	Register(id string, offer resources.Descriptor) error
	Deregister(id string) error
}
