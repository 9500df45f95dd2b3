package guild

import (
	"github.com/caddyserver/caddy/v2"

	"gfx.cafe/gfx/guild/lib/guild/discovery"
)

type ListenConfig struct {
	// GRPC is the address of the receptionist and guild services (default :7070)
	GRPC string `json:"grpc,omitempty"`
	// HTTP is the address of the json gateway. Empty disables it
	HTTP string `json:"http,omitempty"`
}

type Config struct {
	Name string `json:"name,omitempty"`

	// PendingTimeout rejects quests nobody picked up in time. 0 waits forever
	PendingTimeout caddy.Duration `json:"pending_timeout,omitempty"`
	// RequeueWindow is how long a quest whose mercenary left may wait for another (default 30s)
	RequeueWindow caddy.Duration `json:"requeue_window,omitempty"`

	// MaxInFlight is the number of unacknowledged requests per session (default 256)
	MaxInFlight int `json:"max_in_flight,omitempty"`
	// BoardBuffer is the number of announcements held per board subscriber (default 64)
	BoardBuffer int `json:"board_buffer,omitempty"`

	// IdentifierPrefix switches quest identifiers from uuids to a prefixed sequence
	IdentifierPrefix string `json:"identifier_prefix,omitempty"`

	Listen    ListenConfig        `json:"listen"`
	Discovery []*discovery.Module `json:"discovery,omitempty"`
}
