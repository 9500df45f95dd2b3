package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/caddyserver/caddy/v2"
	"go.uber.org/zap"

	"gfx.cafe/gfx/guild/lib/guild/registry"
)

type Config struct {
	// ReconcilePeriod is how often the module should check for changes. 0 = disable
	ReconcilePeriod caddy.Duration `json:"reconcile_period,omitempty"`

	Discoverer json.RawMessage `json:"discoverer" caddy:"namespace=guild.discovery.discoverers inline_key=discoverer"`
}

// Module keeps a roster in sync with a discoverer.
type Module struct {
	Config

	discoverer Discoverer
	roster     Roster

	closed chan struct{}
	done   chan struct{}

	// this is fine to have no locking because it is only accessed by discoverLoop once started
	recruits map[string]Recruit

	log *zap.Logger
}

func NewModule(discoverer Discoverer, reconcilePeriod time.Duration, log *zap.Logger) *Module {
	if log == nil {
		log = zap.NewNop()
	}
	return &Module{
		Config: Config{
			ReconcilePeriod: caddy.Duration(reconcilePeriod),
		},
		discoverer: discoverer,
		log:        log,
	}
}

func (T *Module) Provision(ctx caddy.Context) error {
	T.log = ctx.Logger()

	if T.Discoverer == nil {
		return errors.New("discovery: discoverer is required")
	}
	val, err := ctx.LoadModule(T, "Discoverer")
	if err != nil {
		return fmt.Errorf("loading discoverer module: %v", err)
	}
	T.discoverer = val.(Discoverer)
	return nil
}

// Start enlists everything the discoverer currently knows about into roster, then follows
// changes until Stop.
func (T *Module) Start(roster Roster) error {
	if T.closed != nil {
		return nil
	}
	T.roster = roster
	T.recruits = make(map[string]Recruit)

	if err := T.reconcile(); err != nil {
		return err
	}

	T.closed = make(chan struct{})
	T.done = make(chan struct{})
	go T.discoverLoop()
	return nil
}

// Stop ends the discover loop. Enlisted mercenaries stay on the roster.
func (T *Module) Stop() {
	if T.closed == nil {
		return
	}
	close(T.closed)
	<-T.done
	T.closed = nil
}

func (T *Module) added(recruit Recruit) {
	if prev, ok := T.recruits[recruit.ID]; ok {
		T.updated(prev, recruit)
		return
	}

	if err := T.roster.Register(recruit.ID, recruit.Offer); err != nil {
		T.log.Warn("failed to enlist mercenary", zap.String("mercenary", recruit.ID), zap.Error(err))
		return
	}
	T.recruits[recruit.ID] = recruit
	T.log.Info("enlisted mercenary", zap.String("mercenary", recruit.ID), zap.Stringer("offer", recruit.Offer))
}

func (T *Module) updated(prev, next Recruit) {
	if prev.Offer == next.Offer {
		return
	}

	// offers are immutable, so the mercenary rejoins with its new one
	T.removed(prev.ID)
	T.added(next)
}

func (T *Module) removed(id string) {
	if _, ok := T.recruits[id]; !ok {
		return
	}
	delete(T.recruits, id)

	if err := T.roster.Deregister(id); err != nil && !errors.Is(err, registry.ErrNotFound) {
		T.log.Warn("failed to dismiss mercenary", zap.String("mercenary", id), zap.Error(err))
		return
	}
	T.log.Info("dismissed mercenary", zap.String("mercenary", id))
}

func (T *Module) reconcile() error {
	recruits, err := T.discoverer.Recruits()
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(recruits))
	for _, recruit := range recruits {
		seen[recruit.ID] = struct{}{}
		T.added(recruit)
	}

	// remove old recruits
	for id := range T.recruits {
		if _, ok := seen[id]; !ok {
			T.removed(id)
		}
	}

	return nil
}

func (T *Module) discoverLoop() {
	defer close(T.done)

	var reconcile <-chan time.Time
	if T.ReconcilePeriod != 0 {
		r := time.NewTicker(time.Duration(T.ReconcilePeriod))
		defer r.Stop()

		reconcile = r.C
	}

	added := T.discoverer.Added()
	removed := T.discoverer.Removed()
	for {
		select {
		case <-T.closed:
			return
		case recruit, ok := <-added:
			if !ok {
				added = nil
				continue
			}
			T.added(recruit)
		case id, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			T.removed(id)
		case <-reconcile:
			err := T.reconcile()
			if err != nil {
				T.log.Warn("failed to reconcile", zap.Error(err))
			}
		}
	}
}
