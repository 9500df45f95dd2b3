package guildcaddyfile

import (
	"errors"
	"strconv"

	"github.com/caddyserver/caddy/v2"
	"github.com/caddyserver/caddy/v2/caddyconfig"
	"github.com/caddyserver/caddy/v2/caddyconfig/caddyfile"

	"gfx.cafe/gfx/guild/lib/guild"
	"gfx.cafe/gfx/guild/lib/guild/discovery"
)

// AdapterName is the name to pass to --adapter. The plain caddyfile adapter belongs to caddy's
// http app.
const AdapterName = "guildfile"

func init() {
	caddyconfig.RegisterAdapter(AdapterName, caddyfile.Adapter{ServerType: ServerType{}})
}

type ServerType struct{}

func (ServerType) Setup(blocks []caddyfile.ServerBlock, m map[string]any) (*caddy.Config, []caddyconfig.Warning, error) {
	var config caddy.Config
	var warnings []caddyconfig.Warning

	var app guild.App

	for i, block := range blocks {
		if i > 0 {
			return nil, nil, errors.New("only one guild block is allowed")
		}

		switch len(block.Keys) {
		case 0:
		case 1:
			app.Listen.GRPC = block.Keys[0].Text
		default:
			return nil, nil, caddyfile.NewDispenser(block.Keys).Err("a guild listens on one grpc address")
		}

		for _, segment := range block.Segments {
			d := caddyfile.NewDispenser(segment)
			if !d.Next() {
				continue
			}
			directive := d.Val()

			switch directive {
			case "name", "http", "identifier_prefix":
				if !d.NextArg() {
					return nil, nil, d.ArgErr()
				}
				switch directive {
				case "name":
					app.Name = d.Val()
				case "http":
					app.Listen.HTTP = d.Val()
				case "identifier_prefix":
					app.IdentifierPrefix = d.Val()
				}
			case "pending_timeout", "requeue_window":
				if !d.NextArg() {
					return nil, nil, d.ArgErr()
				}
				dur, err := caddy.ParseDuration(d.Val())
				if err != nil {
					return nil, nil, d.WrapErr(err)
				}
				if directive == "pending_timeout" {
					app.PendingTimeout = caddy.Duration(dur)
				} else {
					app.RequeueWindow = caddy.Duration(dur)
				}
			case "max_in_flight", "board_buffer":
				if !d.NextArg() {
					return nil, nil, d.ArgErr()
				}
				n, err := strconv.Atoi(d.Val())
				if err != nil {
					return nil, nil, d.WrapErr(err)
				}
				if directive == "max_in_flight" {
					app.MaxInFlight = n
				} else {
					app.BoardBuffer = n
				}
			case "discover":
				var module discovery.Module

				if !d.NextArg() {
					return nil, nil, d.ArgErr()
				}
				// optional reconcile period
				if period, err := caddy.ParseDuration(d.Val()); err == nil {
					module.ReconcilePeriod = caddy.Duration(period)
					if !d.NextArg() {
						return nil, nil, d.ArgErr()
					}
				}

				unmarshaller, ok := discoverers[d.Val()]
				if !ok {
					return nil, nil, d.Errf(`unknown discoverer "%s"`, d.Val())
				}

				var err error
				module.Discoverer, err = unmarshaller.JSONModuleObject(
					d,
					"guild.discovery.discoverers",
					"discoverer",
					&warnings,
				)
				if err != nil {
					return nil, nil, err
				}

				app.Discovery = append(app.Discovery, &module)
				continue
			default:
				return nil, nil, d.Errf(`unknown directive "%s"`, directive)
			}

			if d.CountRemainingArgs() > 0 {
				return nil, nil, d.ArgErr()
			}
		}
	}

	if config.AppsRaw == nil {
		config.AppsRaw = make(caddy.ModuleMap)
	}
	config.AppsRaw[string(app.CaddyModule().ID)] = caddyconfig.JSON(app, &warnings)

	return &config, warnings, nil
}
