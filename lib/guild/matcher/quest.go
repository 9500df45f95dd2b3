package matcher

import (
	"errors"
	"time"

	"gfx.cafe/gfx/guild/lib/guild/protocol"
	"gfx.cafe/gfx/guild/lib/guild/resources"
)

var (
	ErrClosed         = errors.New("guild closed")
	ErrDuplicateQuest = errors.New("quest identifier already issued")
	ErrPendingTimeout = errors.New("no mercenary available before the pending timeout")
	ErrWorkerLost     = errors.New("mercenary lost and no replacement found")
	ErrCancelled      = errors.New("quest cancelled")
)

type State int

const (
	StatePending State = iota
	StateAssigned
	StateRejected
	StateCancelled
)

func (T State) String() string {
	switch T {
	case StatePending:
		return "pending"
	case StateAssigned:
		return "assigned"
	case StateRejected:
		return "rejected"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Resolution is the first terminal answer for a quest.
type Resolution struct {
	Quest     string
	State     State
	Mercenary string
	Err       error
}

func (T Resolution) Success() bool {
	return T.State == StateAssigned
}

// Receiver is handed exactly one Resolution per quest. Resolve is called with the guild locked,
// so it must not block or call back into the guild.
type Receiver interface {
	Resolve(Resolution)
}

type ReceiverFunc func(Resolution)

func (T ReceiverFunc) Resolve(r Resolution) {
	T(r)
}

// Owner is an optional Receiver extension told when a quest it submitted enters the guild and
// when the guild forgets it. Both are called with the guild locked.
type Owner interface {
	Adopt(quest string)
	Retire(quest string)
}

// Announcer is the worker side view of the guild. Announce is called exactly once per quest,
// alongside its Resolution. Post hands the quest to the mercenary it was assigned to, again on
// every reassignment. The same locking rules as Receiver apply.
type Announcer interface {
	Announce(protocol.GuildQuestAcknowledgement)
	Post(mercenary string, quest protocol.GuildQuest)
}

// Quest is a snapshot of a live quest.
type Quest struct {
	ID           string
	Requirements resources.Descriptor
	State        State
	Mercenary    string
	Submitted    time.Time
	Requeued     bool
}

type quest struct {
	id           string
	seq          uint64
	requirements resources.Descriptor
	receiver     Receiver

	state     State
	mercenary string
	submitted time.Time
	// zero means no deadline
	deadline time.Time
	requeued bool
	resolved bool
	// the client went away, losing the mercenary cancels instead of requeueing
	orphaned bool
}

func (T *quest) snapshot() Quest {
	return Quest{
		ID:           T.id,
		Requirements: T.requirements,
		State:        T.state,
		Mercenary:    T.mercenary,
		Submitted:    T.submitted,
		Requeued:     T.requeued,
	}
}

var _ Receiver = ReceiverFunc(nil)
