package digitalocean

import "gfx.cafe/gfx/guild/lib/util/strutil"

type Config struct {
	APIKey string `json:"api_key"`

	// Tag filters droplets by tag. Supports * wildcards
	Tag strutil.Matcher `json:"tag,omitempty"`
}
