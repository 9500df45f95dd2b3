package digitalocean

import (
	"context"

	"github.com/caddyserver/caddy/v2"
	"github.com/digitalocean/godo"

	"gfx.cafe/gfx/guild/lib/guild/discovery"
)

func init() {
	caddy.RegisterModule((*Discoverer)(nil))
}

// Discoverer enlists active droplets as mercenaries.
type Discoverer struct {
	Config

	do *godo.Client
}

func (T *Discoverer) CaddyModule() caddy.ModuleInfo {
	return caddy.ModuleInfo{
		ID: "guild.discovery.discoverers.digitalocean",
		New: func() caddy.Module {
			return new(Discoverer)
		},
	}
}

func (T *Discoverer) Provision(ctx caddy.Context) error {
	repl := caddy.NewReplacer()
	T.do = godo.NewFromToken(repl.ReplaceAll(T.APIKey, ""))
	return nil
}

func (T *Discoverer) Recruits() ([]discovery.Recruit, error) {
	var res []discovery.Recruit

	opt := &godo.ListOptions{
		Page:    1,
		PerPage: 200,
	}
	for {
		droplets, resp, err := T.do.Droplets.List(context.Background(), opt)
		if err != nil {
			return nil, err
		}

		for _, droplet := range droplets {
			if droplet.Status != "active" {
				continue
			}

			// filter by tags
			if !T.Tag.MatchesAny(droplet.Tags...) {
				continue
			}

			res = append(res, recruitFromDroplet(droplet))
		}

		if resp == nil || resp.Links == nil || resp.Links.IsLastPage() {
			break
		}

		page, err := resp.Links.CurrentPage()
		if err != nil {
			return nil, err
		}
		opt.Page = page + 1
	}

	return res, nil
}

func (T *Discoverer) Added() <-chan discovery.Recruit {
	return nil
}

func (T *Discoverer) Removed() <-chan string {
	return nil
}

var _ discovery.Discoverer = (*Discoverer)(nil)
var _ caddy.Module = (*Discoverer)(nil)
var _ caddy.Provisioner = (*Discoverer)(nil)
