package receptionist

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"gfx.cafe/gfx/guild/lib/guild/protocol"
	"gfx.cafe/gfx/guild/lib/instrumentation/prom"
)

// Receptionist is the front door. It serves request streams against a guild and reports
// whether the service is up.
type Receptionist struct {
	config Config
	guild  Matcher
	status Status
}

func NewReceptionist(guild Matcher, config Config) *Receptionist {
	return &Receptionist{
		config: config.withDefaults(),
		guild:  guild,
	}
}

func (T *Receptionist) Status() *Status {
	return &T.status
}

func (T *Receptionist) Active() bool {
	return T.status.Active()
}

// Serve runs a session on stream. transport labels metrics.
func (T *Receptionist) Serve(ctx context.Context, transport string, stream Stream) error {
	labels := prom.SessionLabels{Transport: transport}
	prom.Session.Accepted(labels).Inc()
	prom.Session.Current(labels).Inc()
	defer prom.Session.Current(labels).Dec()

	err := NewSession(T.guild, countingStream{Stream: stream, labels: labels}, T.config).Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		T.config.Logger.Debug("session terminated", zap.String("transport", transport), zap.Error(err))
	}
	return err
}

type countingStream struct {
	Stream
	labels prom.SessionLabels
}

func (T countingStream) Recv() (*protocol.RequestDetails, error) {
	details, err := T.Stream.Recv()
	if err == nil {
		prom.Session.Requests(T.labels).Inc()
	}
	return details, err
}
