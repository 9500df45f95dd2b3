// Package board fans guild quest acknowledgements out to worker side subscribers, and hands
// each assigned quest to whoever follows the mercenary it went to.
package board

import (
	"sync"

	"go.uber.org/zap"

	"gfx.cafe/gfx/guild/lib/guild/matcher"
	"gfx.cafe/gfx/guild/lib/guild/protocol"
	"gfx.cafe/gfx/guild/lib/instrumentation/prom"
	"gfx.cafe/gfx/guild/lib/util/chans"
)

type Config struct {
	// Name labels metrics.
	Name string
	// Buffer is the number of acknowledgements or quests held for each subscriber.
	Buffer int

	Logger *zap.Logger
}

type Subscription struct {
	board *Board
	c     chan protocol.GuildQuestAcknowledgement
}

func (T *Subscription) C() <-chan protocol.GuildQuestAcknowledgement {
	return T.c
}

// Close unsubscribes and closes C.
func (T *Subscription) Close() {
	T.board.unsubscribe(T)
}

// Orders is one mercenary's feed of the quests assigned to it.
type Orders struct {
	board     *Board
	mercenary string
	c         chan protocol.GuildQuest
}

func (T *Orders) Mercenary() string {
	return T.mercenary
}

func (T *Orders) C() <-chan protocol.GuildQuest {
	return T.c
}

// Close stops following and closes C.
func (T *Orders) Close() {
	T.board.unfollow(T)
}

// Board hands every announcement to every subscriber and every posted quest to the followers
// of its mercenary. A subscriber that falls Buffer messages behind misses messages rather than
// stalling the guild.
type Board struct {
	config Config

	subscribers map[*Subscription]struct{}
	followers   map[string]map[*Orders]struct{}
	closed      bool
	mu          sync.Mutex
}

func NewBoard(config Config) *Board {
	if config.Buffer <= 0 {
		config.Buffer = 64
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &Board{
		config:      config,
		subscribers: make(map[*Subscription]struct{}),
		followers:   make(map[string]map[*Orders]struct{}),
	}
}

func (T *Board) labels() prom.BoardLabels {
	return prom.BoardLabels{Guild: T.config.Name}
}

func (T *Board) Subscribe() *Subscription {
	T.mu.Lock()
	defer T.mu.Unlock()

	s := &Subscription{
		board: T,
		c:     make(chan protocol.GuildQuestAcknowledgement, T.config.Buffer),
	}
	if T.closed {
		close(s.c)
		return s
	}
	T.subscribers[s] = struct{}{}
	prom.Board.Subscribers(T.labels()).Inc()
	return s
}

func (T *Board) unsubscribe(s *Subscription) {
	T.mu.Lock()
	defer T.mu.Unlock()

	if _, ok := T.subscribers[s]; !ok {
		return
	}
	delete(T.subscribers, s)
	close(s.c)
	prom.Board.Subscribers(T.labels()).Dec()
}

// Follow subscribes to the quests posted to one mercenary.
func (T *Board) Follow(mercenary string) *Orders {
	T.mu.Lock()
	defer T.mu.Unlock()

	o := &Orders{
		board:     T,
		mercenary: mercenary,
		c:         make(chan protocol.GuildQuest, T.config.Buffer),
	}
	if T.closed {
		close(o.c)
		return o
	}
	following, ok := T.followers[mercenary]
	if !ok {
		following = make(map[*Orders]struct{})
		T.followers[mercenary] = following
	}
	following[o] = struct{}{}
	prom.Board.Followers(T.labels()).Inc()
	return o
}

func (T *Board) unfollow(o *Orders) {
	T.mu.Lock()
	defer T.mu.Unlock()

	following := T.followers[o.mercenary]
	if _, ok := following[o]; !ok {
		return
	}
	delete(following, o)
	if len(following) == 0 {
		delete(T.followers, o.mercenary)
	}
	close(o.c)
	prom.Board.Followers(T.labels()).Dec()
}

// Post hands a quest to everyone following mercenary.
func (T *Board) Post(mercenary string, quest protocol.GuildQuest) {
	T.mu.Lock()
	defer T.mu.Unlock()

	prom.Board.Posted(T.labels()).Inc()
	following := T.followers[mercenary]
	if len(following) == 0 {
		prom.Board.Unclaimed(T.labels()).Inc()
		T.config.Logger.Debug(
			"nobody follows mercenary, quest not delivered",
			zap.String("mercenary", mercenary),
			zap.String("quest", quest.Identifier),
		)
		return
	}
	for o := range following {
		if !chans.TrySend(o.c, quest) {
			prom.Board.Dropped(T.labels()).Inc()
			T.config.Logger.Warn(
				"mercenary follower is full, dropping quest",
				zap.String("mercenary", mercenary),
				zap.String("quest", quest.Identifier),
			)
		}
	}
}

func (T *Board) Announce(ack protocol.GuildQuestAcknowledgement) {
	T.mu.Lock()
	defer T.mu.Unlock()

	prom.Board.Announced(T.labels()).Inc()
	for s := range T.subscribers {
		if !chans.TrySend(s.c, ack) {
			prom.Board.Dropped(T.labels()).Inc()
			T.config.Logger.Warn(
				"board subscriber is full, dropping acknowledgement",
				zap.String("quest", ack.Quest),
				zap.Bool("accepted", ack.Accepted),
			)
		}
	}
}

// Close ends every subscription and every follower.
func (T *Board) Close() {
	T.mu.Lock()
	defer T.mu.Unlock()

	if T.closed {
		return
	}
	T.closed = true
	for s := range T.subscribers {
		close(s.c)
		prom.Board.Subscribers(T.labels()).Dec()
	}
	clear(T.subscribers)
	for _, following := range T.followers {
		for o := range following {
			close(o.c)
			prom.Board.Followers(T.labels()).Dec()
		}
	}
	clear(T.followers)
}

var _ matcher.Announcer = (*Board)(nil)
