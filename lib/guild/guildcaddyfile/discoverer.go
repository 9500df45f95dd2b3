package guildcaddyfile

import (
	"github.com/caddyserver/caddy/v2"
	"github.com/caddyserver/caddy/v2/caddyconfig"
	"github.com/caddyserver/caddy/v2/caddyconfig/caddyfile"

	"gfx.cafe/gfx/guild/lib/guild/discovery"
	"gfx.cafe/gfx/guild/lib/guild/discovery/discoverers/digitalocean"
	"gfx.cafe/gfx/guild/lib/guild/discovery/discoverers/gce"
	"gfx.cafe/gfx/guild/lib/guild/discovery/discoverers/kubernetes"
	"gfx.cafe/gfx/guild/lib/guild/discovery/discoverers/static"
	"gfx.cafe/gfx/guild/lib/util/strutil"
)

func init() {
	RegisterDiscoverer("static", func(d *caddyfile.Dispenser, warnings *[]caddyconfig.Warning) (caddy.Module, error) {
		module := static.Discoverer{}

		for nesting := d.Nesting(); d.NextBlock(nesting); {
			id := d.Val()
			offer, err := parseOffer(d.RemainingArgs())
			if err != nil {
				return nil, d.WrapErr(err)
			}
			module.Mercenaries = append(module.Mercenaries, discovery.Recruit{
				ID:    id,
				Offer: offer,
			})
		}

		return &module, nil
	})
	RegisterDiscoverer("kubernetes", func(d *caddyfile.Dispenser, warnings *[]caddyconfig.Warning) (caddy.Module, error) {
		module := kubernetes.Discoverer{}

		if d.NextArg() {
			module.Namespace = d.Val()
		}

		for nesting := d.Nesting(); d.NextBlock(nesting); {
			directive := d.Val()
			if !d.NextArg() {
				return nil, d.ArgErr()
			}
			switch directive {
			case "namespace":
				module.Namespace = d.Val()
			case "label_selector":
				module.LabelSelector = d.Val()
			case "kubeconfig":
				module.Kubeconfig = d.Val()
			default:
				return nil, d.Errf(`unknown kubernetes option "%s"`, directive)
			}
			if d.CountRemainingArgs() > 0 {
				return nil, d.ArgErr()
			}
		}

		return &module, nil
	})
	RegisterDiscoverer("digitalocean", func(d *caddyfile.Dispenser, warnings *[]caddyconfig.Warning) (caddy.Module, error) {
		module := digitalocean.Discoverer{}

		if d.NextArg() {
			module.APIKey = d.Val()
		}

		for nesting := d.Nesting(); d.NextBlock(nesting); {
			directive := d.Val()
			if !d.NextArg() {
				return nil, d.ArgErr()
			}
			switch directive {
			case "token":
				module.APIKey = d.Val()
			case "tag":
				module.Tag = strutil.Matcher(d.Val())
			default:
				return nil, d.Errf(`unknown digitalocean option "%s"`, directive)
			}
			if d.CountRemainingArgs() > 0 {
				return nil, d.ArgErr()
			}
		}

		if module.APIKey == "" {
			return nil, d.Err("digitalocean discoverer needs a token")
		}

		return &module, nil
	})
	RegisterDiscoverer("gce", func(d *caddyfile.Dispenser, warnings *[]caddyconfig.Warning) (caddy.Module, error) {
		module := gce.Discoverer{}

		if !d.NextArg() {
			return nil, d.ArgErr()
		}
		module.Project = d.Val()

		for nesting := d.Nesting(); d.NextBlock(nesting); {
			directive := d.Val()
			if !d.NextArg() {
				return nil, d.ArgErr()
			}
			switch directive {
			case "label":
				module.Label = d.Val()
			default:
				return nil, d.Errf(`unknown gce option "%s"`, directive)
			}
			if d.CountRemainingArgs() > 0 {
				return nil, d.ArgErr()
			}
		}

		return &module, nil
	})
}
