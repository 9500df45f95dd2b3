package receptionist

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"gfx.cafe/gfx/guild/lib/guild/matcher"
	"gfx.cafe/gfx/guild/lib/guild/protocol"
	"gfx.cafe/gfx/guild/lib/guild/resources"
)

const tracerName = "gfx.cafe/gfx/guild/lib/receptionist"

// Stream is one client's duplex request stream. Recv returns io.EOF once the client has sent
// its last request.
type Stream interface {
	Recv() (*protocol.RequestDetails, error)
	Send(*protocol.RequestAcknowledgement) error
}

type Matcher interface {
	Submit(requirements resources.Descriptor, receiver matcher.Receiver) (string, error)
	Cancel(id string) bool
	Abandon(id string) bool
}

// Session answers every request on a stream with exactly one acknowledgement, in whatever
// order quests resolve. When the session ends, quests that have not been acknowledged are
// cancelled and every other quest it still owns is abandoned.
type Session struct {
	config Config
	guild  Matcher
	stream Stream
	tracer trace.Tracer

	inflight *semaphore.Weighted
	mailbox  mailbox

	// quests submitted but not yet acknowledged
	outstanding map[string]trace.Span
	eof         bool
	mu          sync.Mutex

	// quests the guild still holds, updated by the guild while it is locked
	owned   map[string]struct{}
	ownedMu sync.Mutex
}

func NewSession(guild Matcher, stream Stream, config Config) *Session {
	config = config.withDefaults()
	return &Session{
		config:      config,
		guild:       guild,
		stream:      stream,
		tracer:      config.TracerProvider.Tracer(tracerName),
		inflight:    semaphore.NewWeighted(int64(config.MaxInFlight)),
		mailbox:     makeMailbox(),
		outstanding: make(map[string]trace.Span),
		owned:       make(map[string]struct{}),
	}
}

// Resolve is called by the guild.
func (T *Session) Resolve(r matcher.Resolution) {
	T.mailbox.Push(delivery{
		quest: r.Quest,
		ack: protocol.RequestAcknowledgement{
			Success:    r.Success(),
			Identifier: r.Quest,
		},
	})
}

func (T *Session) Adopt(quest string) {
	T.ownedMu.Lock()
	defer T.ownedMu.Unlock()
	T.owned[quest] = struct{}{}
}

func (T *Session) Retire(quest string) {
	T.ownedMu.Lock()
	defer T.ownedMu.Unlock()
	delete(T.owned, quest)
}

// Serve runs until the client has half closed and every request is acknowledged, or until the
// stream fails.
func (T *Session) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return T.readLoop(gctx)
	})
	g.Go(func() error {
		return T.writeLoop(gctx)
	})

	err := g.Wait()
	T.abandon()
	return err
}

func (T *Session) readLoop(ctx context.Context) error {
	for {
		if err := T.inflight.Acquire(ctx, 1); err != nil {
			return err
		}

		details, err := T.stream.Recv()
		if err != nil {
			T.inflight.Release(1)
			if errors.Is(err, io.EOF) {
				T.mu.Lock()
				T.eof = true
				T.mu.Unlock()

				T.mailbox.Notify()
				return nil
			}
			return err
		}

		T.submit(ctx, details)
	}
}

func (T *Session) submit(ctx context.Context, details *protocol.RequestDetails) {
	requirements, err := details.Descriptor()
	if err != nil {
		T.config.Logger.Debug("rejecting malformed request", zap.Error(err))
		T.mailbox.Push(delivery{})
		return
	}

	_, span := T.tracer.Start(
		ctx,
		"receptionist.quest",
		trace.WithAttributes(attribute.Stringer("requirements", requirements)),
	)

	// hold the lock across submit so the writer cannot see the acknowledgement before the quest
	// is recorded as outstanding
	T.mu.Lock()
	defer T.mu.Unlock()

	id, err := T.guild.Submit(requirements, T)
	if err != nil {
		T.config.Logger.Debug("failed to submit quest", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()

		T.mailbox.Push(delivery{})
		return
	}

	span.SetAttributes(attribute.String("quest", id))
	T.outstanding[id] = span
}

func (T *Session) writeLoop(ctx context.Context) error {
	for {
		for {
			d, ok := T.mailbox.Pop()
			if !ok {
				break
			}
			if err := T.deliver(d); err != nil {
				return err
			}
		}

		if T.finished() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-T.mailbox.Ready():
		}
	}
}

func (T *Session) deliver(d delivery) error {
	if err := T.stream.Send(&d.ack); err != nil {
		return err
	}
	T.inflight.Release(1)

	if d.quest == "" {
		return nil
	}

	T.mu.Lock()
	span, ok := T.outstanding[d.quest]
	delete(T.outstanding, d.quest)
	T.mu.Unlock()

	if ok {
		span.SetAttributes(attribute.Bool("success", d.ack.Success))
		span.End()
	}
	return nil
}

func (T *Session) finished() bool {
	T.mu.Lock()
	defer T.mu.Unlock()

	return T.eof && len(T.outstanding) == 0 && T.mailbox.Len() == 0
}

// abandon cancels everything the client never heard back about, and withdraws acknowledged
// quests that went back to waiting after losing their mercenary.
func (T *Session) abandon() {
	T.mu.Lock()
	outstanding := T.outstanding
	T.outstanding = make(map[string]trace.Span)
	T.mu.Unlock()

	// the guild calls Retire while locked, so it must not be called with ownedMu held
	T.ownedMu.Lock()
	owned := T.owned
	T.owned = make(map[string]struct{})
	T.ownedMu.Unlock()

	for id, span := range outstanding {
		delete(owned, id)
		if T.guild.Cancel(id) {
			T.config.Logger.Debug("cancelled unacknowledged quest", zap.String("quest", id))
		}
		span.SetStatus(codes.Error, "stream terminated")
		span.End()
	}

	for id := range owned {
		if T.guild.Abandon(id) {
			T.config.Logger.Debug("abandoned quest", zap.String("quest", id))
		}
	}
}

var (
	_ matcher.Receiver = (*Session)(nil)
	_ matcher.Owner    = (*Session)(nil)
)
