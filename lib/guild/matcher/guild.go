package matcher

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"gfx.cafe/gfx/guild/lib/guild/protocol"
	"gfx.cafe/gfx/guild/lib/guild/registry"
	"gfx.cafe/gfx/guild/lib/guild/resources"
	"gfx.cafe/gfx/guild/lib/instrumentation/prom"
	"gfx.cafe/gfx/guild/lib/util/chans"
	"gfx.cafe/gfx/guild/lib/util/rbtree"
)

// Guild matches quests to mercenaries. Quests that cannot be placed immediately wait in
// submission order and every mercenary that becomes free is offered to the oldest compatible
// quest first. After every call no pending quest is compatible with any free mercenary.
type Guild struct {
	config Config

	registry registry.Registry

	seq     uint64
	quests  map[string]*quest
	pending rbtree.RBTree[uint64, *quest]

	// expiry wakes the expire loop when a deadline is added
	expiry chan struct{}
	done   chan struct{}
	closed bool

	mu sync.Mutex
}

// MakeGuild creates a guild without the expire loop. Call Expire to reject timed out quests.
func MakeGuild(config Config) Guild {
	return Guild{
		config: config.withDefaults(),
		quests: make(map[string]*quest),
		expiry: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func NewGuild(config Config) *Guild {
	g := MakeGuild(config)
	go g.expireLoop()
	return &g
}

func (T *Guild) guildLabels() prom.GuildLabels {
	return prom.GuildLabels{Guild: T.config.Name}
}

func (T *Guild) trackMercenary(state registry.State, delta float64) {
	prom.Mercenary.Current(prom.MercenaryLabels{
		Guild: T.config.Name,
		State: state.String(),
	}).Add(delta)
}

func (T *Guild) trackResolved(state string) {
	prom.Quest.Resolved(prom.QuestLabels{
		Guild: T.config.Name,
		State: state,
	}).Inc()
}

// Submit creates a quest and tries to place it right away. The receiver is resolved exactly
// once, possibly before Submit returns.
func (T *Guild) Submit(requirements resources.Descriptor, receiver Receiver) (string, error) {
	T.mu.Lock()
	defer T.mu.Unlock()

	if T.closed {
		return "", ErrClosed
	}

	id := T.config.Issuer.Next()
	if _, ok := T.quests[id]; ok {
		return "", ErrDuplicateQuest
	}

	now := time.Now()
	q := &quest{
		id:           id,
		seq:          T.seq,
		requirements: requirements,
		receiver:     receiver,
		state:        StatePending,
		submitted:    now,
	}
	T.seq++
	T.quests[id] = q
	if owner, ok := receiver.(Owner); ok {
		owner.Adopt(id)
	}
	prom.Quest.Submitted(T.guildLabels()).Inc()

	// anything older that could use a free mercenary would already have it
	if m, ok := T.registry.TryClaim(requirements, id); ok {
		T.assign(q, m.ID, now)
		return id, nil
	}

	q.deadline = T.deadline(now, T.config.PendingTimeout)
	T.enqueue(q)

	T.config.Logger.Debug(
		"quest pending",
		zap.String("quest", id),
		zap.Stringer("requirements", requirements),
	)
	return id, nil
}

// Cancel withdraws a quest. A pending quest is dropped from the queue, an assigned quest gives
// its mercenary back. It reports false if the quest is unknown or already finished.
func (T *Guild) Cancel(id string) bool {
	T.mu.Lock()
	defer T.mu.Unlock()

	q, ok := T.quests[id]
	if !ok {
		return false
	}

	switch q.state {
	case StatePending:
		T.dequeue(q)
		T.finish(q, StateCancelled, ErrCancelled)
	case StateAssigned:
		mercenary := q.mercenary
		if _, err := T.registry.Release(mercenary); err == nil {
			T.trackMercenary(registry.StateBusy, -1)
			T.trackMercenary(registry.StateFree, 1)
		}
		T.finish(q, StateCancelled, ErrCancelled)
		T.dispatch()
	default:
		return false
	}
	return true
}

// Abandon is for quests whose client went away after hearing back. A pending quest is
// cancelled. An assigned quest keeps its mercenary but is cancelled instead of requeued if the
// mercenary is lost. It reports false if the quest is unknown or already finished.
func (T *Guild) Abandon(id string) bool {
	T.mu.Lock()
	defer T.mu.Unlock()

	q, ok := T.quests[id]
	if !ok {
		return false
	}

	switch q.state {
	case StatePending:
		T.dequeue(q)
		T.finish(q, StateCancelled, ErrCancelled)
	case StateAssigned:
		q.orphaned = true
	default:
		return false
	}
	return true
}

// Register adds a free mercenary and offers it to the pending queue.
func (T *Guild) Register(id string, offer resources.Descriptor) error {
	T.mu.Lock()
	defer T.mu.Unlock()

	if T.closed {
		return ErrClosed
	}

	if err := T.registry.Register(id, offer); err != nil {
		return err
	}
	T.trackMercenary(registry.StateFree, 1)

	T.config.Logger.Info(
		"mercenary registered",
		zap.String("mercenary", id),
		zap.Stringer("offer", offer),
	)

	T.dispatch()
	return nil
}

// Deregister removes a mercenary. A quest it was working on goes back to the queue once, in
// its original position. Losing a second mercenary rejects the quest. Abandoned quests are
// cancelled instead.
func (T *Guild) Deregister(id string) error {
	T.mu.Lock()
	defer T.mu.Unlock()

	claimedBy, err := T.registry.Deregister(id)
	if err != nil {
		return err
	}

	if claimedBy == "" {
		T.trackMercenary(registry.StateFree, -1)
		T.config.Logger.Info("mercenary deregistered", zap.String("mercenary", id))
		return nil
	}
	T.trackMercenary(registry.StateBusy, -1)

	q, ok := T.quests[claimedBy]
	if !ok {
		return nil
	}

	if q.orphaned {
		T.config.Logger.Info(
			"mercenary lost, cancelling abandoned quest",
			zap.String("mercenary", id),
			zap.String("quest", q.id),
		)
		T.finish(q, StateCancelled, ErrCancelled)
		return nil
	}

	if q.requeued {
		T.config.Logger.Warn(
			"mercenary lost twice, rejecting quest",
			zap.String("mercenary", id),
			zap.String("quest", q.id),
		)
		T.finish(q, StateRejected, ErrWorkerLost)
		return nil
	}

	T.config.Logger.Info(
		"mercenary lost, requeueing quest",
		zap.String("mercenary", id),
		zap.String("quest", q.id),
	)

	q.requeued = true
	q.state = StatePending
	q.mercenary = ""
	q.deadline = T.deadline(time.Now(), T.config.RequeueWindow)
	T.enqueue(q)
	prom.Quest.Requeued(T.guildLabels()).Inc()

	T.dispatch()
	return nil
}

// Release is called when a mercenary finishes its quest. The quest is retired and the
// mercenary is offered to the pending queue.
func (T *Guild) Release(id string) error {
	T.mu.Lock()
	defer T.mu.Unlock()

	claimedBy, err := T.registry.Release(id)
	if err != nil {
		return err
	}
	T.trackMercenary(registry.StateBusy, -1)
	T.trackMercenary(registry.StateFree, 1)

	if q, ok := T.quests[claimedBy]; ok {
		T.forget(q)
		T.trackResolved("completed")
		T.config.Logger.Debug(
			"quest completed",
			zap.String("quest", q.id),
			zap.String("mercenary", id),
		)
	}

	T.dispatch()
	return nil
}

// Expire rejects every pending quest whose deadline is before now. It returns how long until
// the next deadline, or 0 if there is none.
func (T *Guild) Expire(now time.Time) time.Duration {
	T.mu.Lock()
	defer T.mu.Unlock()

	var next time.Duration
	T.pending.Range(func(_ uint64, q *quest) bool {
		if q.deadline.IsZero() {
			return true
		}

		remaining := q.deadline.Sub(now)
		if remaining <= 0 {
			T.dequeue(q)
			if q.requeued {
				T.finish(q, StateRejected, ErrWorkerLost)
			} else {
				T.finish(q, StateRejected, ErrPendingTimeout)
			}
			return true
		}

		if next == 0 || remaining < next {
			next = remaining
		}
		return true
	})

	return next
}

func (T *Guild) expireLoop() {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	var timerC <-chan time.Time

	for {
		select {
		case <-T.done:
			return
		case <-T.expiry:
		case <-timerC:
		}

		next := T.Expire(time.Now())
		if next == 0 {
			if timer != nil {
				timer.Stop()
			}
			timerC = nil
			continue
		}

		if timer == nil {
			timer = time.NewTimer(next)
		} else {
			timer.Reset(next)
		}
		timerC = timer.C
	}
}

// Quest returns a snapshot of a live quest. Finished quests are forgotten.
func (T *Guild) Quest(id string) (Quest, bool) {
	T.mu.Lock()
	defer T.mu.Unlock()

	q, ok := T.quests[id]
	if !ok {
		return Quest{}, false
	}
	return q.snapshot(), true
}

// Waiting returns the number of pending quests.
func (T *Guild) Waiting() int {
	T.mu.Lock()
	defer T.mu.Unlock()

	return T.pending.Len()
}

// Roster returns every mercenary in registration order.
func (T *Guild) Roster() []registry.Mercenary {
	return T.registry.List()
}

// Close rejects every pending quest. Assigned quests are left to their mercenaries.
func (T *Guild) Close() {
	T.mu.Lock()
	defer T.mu.Unlock()

	if T.closed {
		return
	}
	T.closed = true
	close(T.done)

	T.pending.Range(func(_ uint64, q *quest) bool {
		T.dequeue(q)
		T.finish(q, StateRejected, ErrClosed)
		return true
	})
}

func (T *Guild) deadline(now time.Time, timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return now.Add(timeout)
}

func (T *Guild) enqueue(q *quest) {
	T.pending.Set(q.seq, q)
	prom.Quest.Pending(T.guildLabels()).Inc()
	if !q.deadline.IsZero() {
		chans.Notify(T.expiry)
	}
}

func (T *Guild) dequeue(q *quest) {
	T.pending.Delete(q.seq)
	prom.Quest.Pending(T.guildLabels()).Dec()
}

// dispatch offers free mercenaries to pending quests, oldest first.
func (T *Guild) dispatch() {
	if T.pending.Len() == 0 || T.registry.Free() == 0 {
		return
	}

	now := time.Now()
	T.pending.Range(func(_ uint64, q *quest) bool {
		m, ok := T.registry.TryClaim(q.requirements, q.id)
		if ok {
			T.dequeue(q)
			T.assign(q, m.ID, now)
		}
		return T.registry.Free() > 0
	})
}

func (T *Guild) assign(q *quest, mercenary string, now time.Time) {
	q.state = StateAssigned
	q.mercenary = mercenary
	q.deadline = time.Time{}

	T.trackMercenary(registry.StateFree, -1)
	T.trackMercenary(registry.StateBusy, 1)
	T.trackResolved(StateAssigned.String())
	prom.Quest.Wait(T.guildLabels()).Observe(float64(now.Sub(q.submitted)) / float64(time.Millisecond))

	T.config.Logger.Debug(
		"quest assigned",
		zap.String("quest", q.id),
		zap.String("mercenary", mercenary),
		zap.Bool("requeued", q.requeued),
	)

	T.resolve(q, Resolution{
		Quest:     q.id,
		State:     StateAssigned,
		Mercenary: mercenary,
	})
	if T.config.Announcer != nil {
		T.config.Announcer.Post(mercenary, protocol.GuildQuest{
			Identifier:   q.id,
			Requirements: q.requirements,
		})
	}
}

// finish moves a quest into a terminal state and forgets it.
func (T *Guild) finish(q *quest, state State, err error) {
	q.state = state
	q.mercenary = ""
	T.forget(q)
	T.trackResolved(state.String())

	T.config.Logger.Debug(
		"quest finished",
		zap.String("quest", q.id),
		zap.Stringer("state", state),
		zap.Error(err),
	)

	T.resolve(q, Resolution{
		Quest: q.id,
		State: state,
		Err:   err,
	})
}

func (T *Guild) forget(q *quest) {
	delete(T.quests, q.id)
	if owner, ok := q.receiver.(Owner); ok {
		owner.Retire(q.id)
	}
}

// resolve answers the receiver and the board, once per quest.
func (T *Guild) resolve(q *quest, r Resolution) {
	if q.resolved {
		return
	}
	q.resolved = true
	if q.receiver != nil {
		q.receiver.Resolve(r)
	}

	if T.config.Announcer == nil {
		return
	}
	if r.Success() {
		T.config.Announcer.Announce(protocol.Accept(q.id, r.Mercenary))
	} else {
		T.config.Announcer.Announce(protocol.Deny(q.id))
	}
}
