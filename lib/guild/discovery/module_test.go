package discovery

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"gfx.cafe/gfx/guild/lib/guild/matcher"
	"gfx.cafe/gfx/guild/lib/guild/resources"
)

type fakeDiscoverer struct {
	recruits []Recruit
	added    chan Recruit
	removed  chan string
	mu       sync.Mutex
}

func newFakeDiscoverer(recruits ...Recruit) *fakeDiscoverer {
	return &fakeDiscoverer{
		recruits: recruits,
		added:    make(chan Recruit),
		removed:  make(chan string),
	}
}

func (T *fakeDiscoverer) set(recruits ...Recruit) {
	T.mu.Lock()
	defer T.mu.Unlock()
	T.recruits = recruits
}

func (T *fakeDiscoverer) Recruits() ([]Recruit, error) {
	T.mu.Lock()
	defer T.mu.Unlock()
	return append([]Recruit(nil), T.recruits...), nil
}

func (T *fakeDiscoverer) Added() <-chan Recruit {
	return T.added
}

func (T *fakeDiscoverer) Removed() <-chan string {
	return T.removed
}

var _ Discoverer = (*fakeDiscoverer)(nil)

var (
	gpu = resources.Descriptor{DeviceType: resources.DeviceTypeGPU}
	cpu = resources.Descriptor{DeviceType: resources.DeviceTypeCPU}
)

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func offerOf(g *matcher.Guild, id string) (resources.Descriptor, bool) {
	for _, m := range g.Roster() {
		if m.ID == id {
			return m.Offer, true
		}
	}
	return resources.Descriptor{}, false
}

func TestModule_Events(t *testing.T) {
	g := matcher.MakeGuild(matcher.Config{Logger: zaptest.NewLogger(t)})
	d := newFakeDiscoverer(Recruit{ID: "m1", Offer: gpu})

	m := NewModule(d, 0, zaptest.NewLogger(t))
	if err := m.Start(&g); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	if offer, ok := offerOf(&g, "m1"); !ok || offer != gpu {
		t.Fatal("expected m1 to be enlisted on start")
	}

	// the loop has taken the event once the unbuffered send completes, give it time to apply
	d.added <- Recruit{ID: "m2", Offer: cpu}
	eventually(t, func() bool {
		_, ok := offerOf(&g, "m2")
		return ok
	})

	d.added <- Recruit{ID: "m1", Offer: cpu}
	eventually(t, func() bool {
		offer, _ := offerOf(&g, "m1")
		return offer == cpu
	})

	d.removed <- "m2"
	eventually(t, func() bool {
		_, ok := offerOf(&g, "m2")
		return !ok
	})

	// unknown removals are ignored
	d.removed <- "m9"
}

func TestModule_Reconcile(t *testing.T) {
	g := matcher.MakeGuild(matcher.Config{Logger: zaptest.NewLogger(t)})
	d := newFakeDiscoverer(Recruit{ID: "m1", Offer: gpu}, Recruit{ID: "m2", Offer: gpu})

	m := NewModule(d, 5*time.Millisecond, zaptest.NewLogger(t))
	if err := m.Start(&g); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	d.set(Recruit{ID: "m2", Offer: gpu}, Recruit{ID: "m3", Offer: cpu})
	eventually(t, func() bool {
		roster := g.Roster()
		return len(roster) == 2 && roster[0].ID == "m2" && roster[1].ID == "m3"
	})
}

func TestModule_RequeuesOnRemoval(t *testing.T) {
	g := matcher.MakeGuild(matcher.Config{Logger: zaptest.NewLogger(t)})
	d := newFakeDiscoverer(Recruit{ID: "m1", Offer: gpu})

	m := NewModule(d, 0, zaptest.NewLogger(t))
	if err := m.Start(&g); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	id, _ := g.Submit(gpu, nil)
	d.removed <- "m1"
	eventually(t, func() bool {
		q, ok := g.Quest(id)
		return ok && q.State == matcher.StatePending
	})
}
