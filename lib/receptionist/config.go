package receptionist

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Config struct {
	// MaxInFlight is the number of requests a session may have waiting for an acknowledgement
	// before it stops reading.
	MaxInFlight int

	TracerProvider trace.TracerProvider
	Logger         *zap.Logger
}

func (T Config) withDefaults() Config {
	if T.MaxInFlight <= 0 {
		T.MaxInFlight = 256
	}
	if T.TracerProvider == nil {
		T.TracerProvider = otel.GetTracerProvider()
	}
	if T.Logger == nil {
		T.Logger = zap.NewNop()
	}
	return T
}
