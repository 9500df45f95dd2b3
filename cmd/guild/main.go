package main

import (
	"context"

	"gfx.cafe/util/go/gotel"
	caddycmd "github.com/caddyserver/caddy/v2/cmd"
	_ "github.com/caddyserver/caddy/v2/modules/metrics"

	_ "gfx.cafe/gfx/guild/lib/guild/guildcaddyfile"
	_ "gfx.cafe/gfx/guild/lib/guild/standard"
)

func main() {
	fn, _ := gotel.InitTracing(context.Background(), gotel.WithServiceName("guild"))
	defer fn(context.Background())

	caddycmd.Main()
}
