package receptionist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"gfx.cafe/gfx/guild/lib/guild/matcher"
	"gfx.cafe/gfx/guild/lib/guild/protocol"
	"gfx.cafe/gfx/guild/lib/guild/resources"
)

var gpu = resources.Descriptor{
	Memory:      8 << 30,
	DeviceType:  resources.DeviceTypeGPU,
	DeviceBrand: resources.DeviceBrandNvidia,
	Region:      resources.RegionUSEast,
}

type pipe struct {
	ctx context.Context
	in  chan *protocol.RequestDetails
	out chan *protocol.RequestAcknowledgement
}

func newPipe(ctx context.Context) *pipe {
	return &pipe{
		ctx: ctx,
		in:  make(chan *protocol.RequestDetails),
		out: make(chan *protocol.RequestAcknowledgement, 1024),
	}
}

func (T *pipe) Recv() (*protocol.RequestDetails, error) {
	select {
	case details, ok := <-T.in:
		if !ok {
			return nil, io.EOF
		}
		return details, nil
	case <-T.ctx.Done():
		return nil, T.ctx.Err()
	}
}

func (T *pipe) Send(ack *protocol.RequestAcknowledgement) error {
	select {
	case T.out <- ack:
		return nil
	case <-T.ctx.Done():
		return T.ctx.Err()
	}
}

func (T *pipe) request(t *testing.T, requirements *resources.Descriptor) {
	t.Helper()
	select {
	case T.in <- &protocol.RequestDetails{Requirements: requirements}:
	case <-time.After(5 * time.Second):
		t.Fatal("session stopped reading")
	}
}

func (T *pipe) ack(t *testing.T) *protocol.RequestAcknowledgement {
	t.Helper()
	select {
	case ack := <-T.out:
		return ack
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for acknowledgement")
		return nil
	}
}

func serve(t *testing.T, ctx context.Context, guild Matcher, stream Stream, config Config) <-chan error {
	config.Logger = zaptest.NewLogger(t)
	done := make(chan error, 1)
	go func() {
		done <- NewSession(guild, stream, config).Serve(ctx)
	}()
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
		return nil
	}
}

func newGuild(t *testing.T) *matcher.Guild {
	g := matcher.NewGuild(matcher.Config{
		Logger: zaptest.NewLogger(t),
	})
	t.Cleanup(g.Close)
	return g
}

func TestSession_HalfClose(t *testing.T) {
	g := newGuild(t)
	_ = g.Register("m1", gpu)
	_ = g.Register("m2", gpu)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newPipe(ctx)
	done := serve(t, ctx, g, p, Config{})

	p.request(t, &gpu)
	p.request(t, nil)
	close(p.in)

	if err := wait(t, done); err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 2; i++ {
		ack := p.ack(t)
		if !ack.Success || ack.Identifier == "" {
			t.Error("expected successful acknowledgement but got", ack)
		}
		seen[ack.Identifier] = true
	}
	if len(seen) != 2 {
		t.Error("expected two distinct identifiers but got", seen)
	}
	select {
	case ack := <-p.out:
		t.Error("unexpected extra acknowledgement", ack)
	default:
	}
}

func TestSession_WaitsForPending(t *testing.T) {
	g := newGuild(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newPipe(ctx)
	done := serve(t, ctx, g, p, Config{})

	p.request(t, &gpu)
	close(p.in)

	select {
	case err := <-done:
		t.Fatal("session finished before the quest resolved", err)
	case <-time.After(50 * time.Millisecond):
	}

	_ = g.Register("m1", gpu)
	if ack := p.ack(t); !ack.Success {
		t.Error("expected success but got", ack)
	}
	if err := wait(t, done); err != nil {
		t.Fatal(err)
	}
}

func TestSession_Malformed(t *testing.T) {
	g := newGuild(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newPipe(ctx)
	done := serve(t, ctx, g, p, Config{})

	p.request(t, &resources.Descriptor{Region: resources.Region(99)})
	close(p.in)

	ack := p.ack(t)
	if ack.Success || ack.Identifier != "" {
		t.Error("expected anonymous failure but got", ack)
	}
	if err := wait(t, done); err != nil {
		t.Fatal(err)
	}
}

func TestSession_ClosedGuild(t *testing.T) {
	g := newGuild(t)
	g.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newPipe(ctx)
	done := serve(t, ctx, g, p, Config{})

	p.request(t, &gpu)
	close(p.in)

	if ack := p.ack(t); ack.Success {
		t.Error("expected failure but got", ack)
	}
	if err := wait(t, done); err != nil {
		t.Fatal(err)
	}
}

func TestSession_PendingTimeout(t *testing.T) {
	g := matcher.NewGuild(matcher.Config{
		PendingTimeout: 10 * time.Millisecond,
		Logger:         zaptest.NewLogger(t),
	})
	defer g.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newPipe(ctx)
	done := serve(t, ctx, g, p, Config{})

	p.request(t, &gpu)
	close(p.in)

	ack := p.ack(t)
	if ack.Success || ack.Identifier == "" {
		t.Error("expected identified failure but got", ack)
	}
	if err := wait(t, done); err != nil {
		t.Fatal(err)
	}
}

func TestSession_CancelAbandonsQuests(t *testing.T) {
	g := newGuild(t)

	ctx, cancel := context.WithCancel(context.Background())
	p := newPipe(ctx)
	done := serve(t, ctx, g, p, Config{})

	p.request(t, &gpu)
	p.request(t, &gpu)

	// wait for the second request to be submitted
	deadline := time.Now().Add(5 * time.Second)
	for g.Waiting() != 2 {
		if time.Now().After(deadline) {
			t.Fatal("expected two pending quests but got", g.Waiting())
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := wait(t, done); !errors.Is(err, context.Canceled) {
		t.Error("expected cancellation but got", err)
	}
	if g.Waiting() != 0 {
		t.Error("expected abandoned quests to be cancelled but", g.Waiting(), "are pending")
	}

	// a new mercenary stays free
	_ = g.Register("m1", gpu)
	if m := g.Roster()[0]; m.ClaimedBy != "" {
		t.Error("expected m1 to be free but it is claimed by", m.ClaimedBy)
	}
}

func TestSession_CancelAbandonsRequeuedQuests(t *testing.T) {
	g := newGuild(t)
	_ = g.Register("m1", gpu)

	ctx, cancel := context.WithCancel(context.Background())
	p := newPipe(ctx)
	done := serve(t, ctx, g, p, Config{})

	p.request(t, &gpu)
	ack := p.ack(t)
	if !ack.Success {
		t.Fatal("expected success but got", ack)
	}

	// the client already heard back, then the quest goes back to waiting
	if err := g.Deregister("m1"); err != nil {
		t.Fatal(err)
	}
	if q, ok := g.Quest(ack.Identifier); !ok || q.State != matcher.StatePending {
		t.Fatal("expected quest to be requeued but got", q)
	}

	cancel()
	if err := wait(t, done); !errors.Is(err, context.Canceled) {
		t.Error("expected cancellation but got", err)
	}
	if _, ok := g.Quest(ack.Identifier); ok {
		t.Error("expected requeued quest to be cancelled with its session")
	}
	if g.Waiting() != 0 {
		t.Error("expected no pending quests but got", g.Waiting())
	}

	_ = g.Register("m2", gpu)
	if m := g.Roster()[0]; m.ID != "m2" || m.ClaimedBy != "" {
		t.Error("expected m2 to be free but got", m)
	}
}

func TestSession_FinishedSessionQuestNotRequeued(t *testing.T) {
	g := newGuild(t)
	_ = g.Register("m1", gpu)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newPipe(ctx)
	done := serve(t, ctx, g, p, Config{})

	p.request(t, &gpu)
	ack := p.ack(t)
	close(p.in)
	if err := wait(t, done); err != nil {
		t.Fatal(err)
	}

	// the mercenary keeps its quest after the client leaves
	if q, ok := g.Quest(ack.Identifier); !ok || q.State != matcher.StateAssigned {
		t.Fatal("expected quest to stay assigned but got", q)
	}

	if err := g.Deregister("m1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Quest(ack.Identifier); ok {
		t.Error("expected quest without a client to be dropped instead of requeued")
	}

	_ = g.Register("m2", gpu)
	if m := g.Roster()[0]; m.ClaimedBy != "" {
		t.Error("expected m2 to be free but it is claimed by", m.ClaimedBy)
	}
}

func TestSession_Backpressure(t *testing.T) {
	g := newGuild(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newPipe(ctx)
	done := serve(t, ctx, g, p, Config{MaxInFlight: 1})

	p.request(t, &gpu)

	select {
	case p.in <- &protocol.RequestDetails{Requirements: &gpu}:
		t.Fatal("expected session to stop reading with a request in flight")
	case <-time.After(50 * time.Millisecond):
	}

	_ = g.Register("m1", gpu)
	first := p.ack(t)
	if !first.Success {
		t.Error("expected success but got", first)
	}

	p.request(t, &gpu)
	close(p.in)

	if err := g.Release("m1"); err != nil {
		t.Fatal(err)
	}
	second := p.ack(t)
	if !second.Success || second.Identifier == first.Identifier {
		t.Error("expected a second distinct success but got", second)
	}
	if err := wait(t, done); err != nil {
		t.Fatal(err)
	}
}

func TestSession_ManyRequests(t *testing.T) {
	const n = 100

	g := newGuild(t)
	for i := 0; i < n; i++ {
		_ = g.Register(fmt.Sprintf("m%d", i), gpu)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newPipe(ctx)
	done := serve(t, ctx, g, p, Config{MaxInFlight: 8})

	go func() {
		for i := 0; i < n; i++ {
			p.in <- &protocol.RequestDetails{Requirements: &gpu}
		}
		close(p.in)
	}()

	if err := wait(t, done); err != nil {
		t.Fatal(err)
	}
	if len(p.out) != n {
		t.Fatal("expected", n, "acknowledgements but got", len(p.out))
	}
	seen := make(map[string]struct{})
	for i := 0; i < n; i++ {
		ack := <-p.out
		if !ack.Success {
			t.Error("expected success but got", ack)
		}
		if _, ok := seen[ack.Identifier]; ok {
			t.Error("duplicate acknowledgement for", ack.Identifier)
		}
		seen[ack.Identifier] = struct{}{}
	}
}

func TestSession_Tracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	g := newGuild(t)
	_ = g.Register("m1", gpu)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newPipe(ctx)
	done := serve(t, ctx, g, p, Config{TracerProvider: tp})

	p.request(t, &gpu)
	close(p.in)
	if err := wait(t, done); err != nil {
		t.Fatal(err)
	}
	ack := p.ack(t)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatal("expected one span but got", len(spans))
	}
	if spans[0].Name() != "receptionist.quest" {
		t.Error("unexpected span name", spans[0].Name())
	}
	var quest string
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "quest" {
			quest = attr.Value.AsString()
		}
	}
	if quest != ack.Identifier {
		t.Error("expected span for", ack.Identifier, "but got", quest)
	}
}

func TestReceptionist_Active(t *testing.T) {
	r := NewReceptionist(newGuild(t), Config{})
	if r.Active() {
		t.Error("expected inactive before startup")
	}
	r.Status().MarkReady()
	if !r.Active() {
		t.Error("expected active after startup")
	}
	r.Status().MarkStopped()
	if r.Active() {
		t.Error("expected inactive after stop")
	}
}

func TestReceptionist_Serve(t *testing.T) {
	g := newGuild(t)
	_ = g.Register("m1", gpu)
	r := NewReceptionist(g, Config{Logger: zaptest.NewLogger(t)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newPipe(ctx)
	done := make(chan error, 1)
	go func() {
		done <- r.Serve(ctx, "test", p)
	}()

	p.request(t, nil)
	close(p.in)
	if ack := p.ack(t); !ack.Success {
		t.Error("expected success but got", ack)
	}
	if err := wait(t, done); err != nil {
		t.Fatal(err)
	}
}
