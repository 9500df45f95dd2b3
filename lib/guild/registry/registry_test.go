package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"gfx.cafe/gfx/guild/lib/guild/resources"
)

var (
	gpu = resources.Descriptor{
		Memory:      8 << 30,
		DeviceType:  resources.DeviceTypeGPU,
		DeviceBrand: resources.DeviceBrandNvidia,
		Region:      resources.RegionUSEast,
	}
	cpu = resources.Descriptor{
		Memory:     16 << 30,
		DeviceType: resources.DeviceTypeCPU,
		Region:     resources.RegionEUWest,
	}
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("m1", gpu); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("m1", cpu); !errors.Is(err, ErrDuplicateIdentifier) {
		t.Error("expected duplicate identifier but got", err)
	}
	if err := r.Register("", cpu); !errors.Is(err, ErrInvalidIdentifier) {
		t.Error("expected invalid identifier but got", err)
	}

	m, ok := r.Get("m1")
	if !ok {
		t.Fatal("expected m1 to be registered")
	}
	if m.Offer != gpu || m.State != StateFree {
		t.Error("unexpected mercenary", m)
	}
	if r.Free() != 1 || r.Len() != 1 {
		t.Error("expected one free mercenary")
	}
}

func TestRegistry_ClaimOrder(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("m1", cpu)
	_ = r.Register("m2", gpu)
	_ = r.Register("m3", gpu)

	m, ok := r.TryClaim(resources.Descriptor{DeviceType: resources.DeviceTypeGPU}, "q1")
	if !ok || m.ID != "m2" {
		t.Fatal("expected m2 but got", m, ok)
	}
	if m.State != StateBusy || m.ClaimedBy != "q1" {
		t.Error("expected claim to be recorded", m)
	}

	m, ok = r.TryClaim(resources.Any, "q2")
	if !ok || m.ID != "m1" {
		t.Fatal("expected m1 but got", m, ok)
	}

	m, ok = r.TryClaim(resources.Descriptor{Region: resources.RegionEUWest}, "q3")
	if ok {
		t.Error("expected no free mercenary in EU_WEST but got", m)
	}

	if r.Free() != 1 {
		t.Error("expected one free mercenary but got", r.Free())
	}
}

func TestRegistry_Release(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("m1", gpu)

	if _, err := r.Release("m1"); !errors.Is(err, ErrInvalidState) {
		t.Error("expected invalid state but got", err)
	}
	if _, err := r.Release("m9"); !errors.Is(err, ErrNotFound) {
		t.Error("expected not found but got", err)
	}

	r.TryClaim(resources.Any, "q1")
	quest, err := r.Release("m1")
	if err != nil {
		t.Fatal(err)
	}
	if quest != "q1" {
		t.Error("expected q1 but got", quest)
	}
	if m, _ := r.Get("m1"); m.State != StateFree || m.ClaimedBy != "" {
		t.Error("expected m1 to be free", m)
	}
	if _, err = r.Release("m1"); !errors.Is(err, ErrInvalidState) {
		t.Error("expected invalid state on double release but got", err)
	}
}

func TestRegistry_Deregister(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("m1", gpu)
	_ = r.Register("m2", gpu)
	_ = r.Register("m3", gpu)
	r.TryClaim(resources.Any, "q1")

	quest, err := r.Deregister("m1")
	if err != nil {
		t.Fatal(err)
	}
	if quest != "q1" {
		t.Error("expected busy mercenary to report q1 but got", quest)
	}

	quest, err = r.Deregister("m2")
	if err != nil || quest != "" {
		t.Error("expected free mercenary to deregister cleanly", quest, err)
	}

	if _, err = r.Deregister("m2"); !errors.Is(err, ErrNotFound) {
		t.Error("expected not found but got", err)
	}

	list := r.List()
	if len(list) != 1 || list[0].ID != "m3" {
		t.Error("expected only m3 to remain", list)
	}
	if r.Free() != 1 {
		t.Error("expected one free mercenary but got", r.Free())
	}
}

func TestRegistry_ConcurrentClaims(t *testing.T) {
	const mercenaries = 16
	const claimants = 64

	r := NewRegistry()
	for i := 0; i < mercenaries; i++ {
		_ = r.Register(fmt.Sprintf("m%d", i), gpu)
	}

	var mu sync.Mutex
	claimed := make(map[string]string)

	var wg sync.WaitGroup
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(quest string) {
			defer wg.Done()
			m, ok := r.TryClaim(resources.Any, quest)
			if !ok {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if prev, ok := claimed[m.ID]; ok {
				t.Error("mercenary", m.ID, "claimed by both", prev, "and", quest)
			}
			claimed[m.ID] = quest
		}(fmt.Sprintf("q%d", i))
	}
	wg.Wait()

	if len(claimed) != mercenaries {
		t.Error("expected every mercenary to be claimed once but got", len(claimed))
	}
	if r.Free() != 0 {
		t.Error("expected no free mercenaries but got", r.Free())
	}
}
