package matcher

import (
	"time"

	"go.uber.org/zap"

	"gfx.cafe/gfx/guild/lib/guild/ident"
)

const DefaultRequeueWindow = 30 * time.Second

type Config struct {
	// Name labels metrics.
	Name string

	// PendingTimeout rejects quests that have waited this long for a mercenary. 0 waits forever.
	PendingTimeout time.Duration
	// RequeueWindow bounds how long a quest that lost its mercenary may wait for a replacement.
	// Defaults to DefaultRequeueWindow. Negative waits forever.
	RequeueWindow time.Duration

	Issuer    ident.Issuer
	Announcer Announcer

	Logger *zap.Logger
}

func (T Config) withDefaults() Config {
	if T.Name == "" {
		T.Name = "default"
	}
	if T.RequeueWindow == 0 {
		T.RequeueWindow = DefaultRequeueWindow
	}
	if T.Issuer == nil {
		T.Issuer = ident.UUID{}
	}
	if T.Logger == nil {
		T.Logger = zap.NewNop()
	}
	return T
}
