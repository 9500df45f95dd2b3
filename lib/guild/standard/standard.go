package standard

import (
	// base app
	_ "gfx.cafe/gfx/guild/lib/guild"

	// discovery
	_ "gfx.cafe/gfx/guild/lib/guild/discovery/discoverers/digitalocean"
	_ "gfx.cafe/gfx/guild/lib/guild/discovery/discoverers/gce"
	_ "gfx.cafe/gfx/guild/lib/guild/discovery/discoverers/kubernetes"
	_ "gfx.cafe/gfx/guild/lib/guild/discovery/discoverers/static"
)
