package receptionist

import (
	"sync"

	"gfx.cafe/gfx/guild/lib/guild/protocol"
	"gfx.cafe/gfx/guild/lib/util/chans"
	"gfx.cafe/gfx/guild/lib/util/ring"
)

type delivery struct {
	// empty for requests that never became quests
	quest string
	ack   protocol.RequestAcknowledgement
}

// mailbox is an unbounded queue between the guild and a session's writer. Push never blocks.
type mailbox struct {
	queue ring.Ring[delivery]
	ready chan struct{}
	mu    sync.Mutex
}

func makeMailbox() mailbox {
	return mailbox{
		ready: make(chan struct{}, 1),
	}
}

func (T *mailbox) Push(d delivery) {
	T.mu.Lock()
	T.queue.PushBack(d)
	T.mu.Unlock()

	T.Notify()
}

func (T *mailbox) Pop() (delivery, bool) {
	T.mu.Lock()
	defer T.mu.Unlock()

	return T.queue.PopFront()
}

func (T *mailbox) Len() int {
	T.mu.Lock()
	defer T.mu.Unlock()

	return T.queue.Length()
}

func (T *mailbox) Notify() {
	chans.Notify(T.ready)
}

func (T *mailbox) Ready() <-chan struct{} {
	return T.ready
}
