package static

import (
	"fmt"

	"github.com/caddyserver/caddy/v2"

	"gfx.cafe/gfx/guild/lib/guild/discovery"
)

func init() {
	caddy.RegisterModule((*Discoverer)(nil))
}

// Discoverer enlists a fixed set of mercenaries from config.
type Discoverer struct {
	Mercenaries []discovery.Recruit `json:"mercenaries"`
}

func (T *Discoverer) CaddyModule() caddy.ModuleInfo {
	return caddy.ModuleInfo{
		ID: "guild.discovery.discoverers.static",
		New: func() caddy.Module {
			return new(Discoverer)
		},
	}
}

func (T *Discoverer) Validate() error {
	seen := make(map[string]struct{}, len(T.Mercenaries))
	for _, m := range T.Mercenaries {
		if m.ID == "" {
			return fmt.Errorf("static mercenary is missing an id")
		}
		if _, ok := seen[m.ID]; ok {
			return fmt.Errorf("static mercenary %q declared twice", m.ID)
		}
		seen[m.ID] = struct{}{}
		if err := m.Offer.Validate(); err != nil {
			return fmt.Errorf("static mercenary %q: %w", m.ID, err)
		}
	}
	return nil
}

func (T *Discoverer) Recruits() ([]discovery.Recruit, error) {
	return T.Mercenaries, nil
}

func (T *Discoverer) Added() <-chan discovery.Recruit {
	return nil
}

func (T *Discoverer) Removed() <-chan string {
	return nil
}

var _ discovery.Discoverer = (*Discoverer)(nil)
var _ caddy.Module = (*Discoverer)(nil)
var _ caddy.Validator = (*Discoverer)(nil)
