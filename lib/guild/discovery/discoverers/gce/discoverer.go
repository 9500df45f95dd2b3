package gce

import (
	"context"
	"path"

	"github.com/caddyserver/caddy/v2"
	compute "google.golang.org/api/compute/v1"

	"gfx.cafe/gfx/guild/lib/guild/discovery"
)

func init() {
	caddy.RegisterModule((*Discoverer)(nil))
}

// Discoverer enlists running compute engine instances as mercenaries.
type Discoverer struct {
	Config

	google *compute.Service

	// memory of each machine type url, in MB
	machineTypes map[string]int64
}

func (T *Discoverer) CaddyModule() caddy.ModuleInfo {
	return caddy.ModuleInfo{
		ID: "guild.discovery.discoverers.gce",
		New: func() caddy.Module {
			return new(Discoverer)
		},
	}
}

func (T *Discoverer) Provision(ctx caddy.Context) error {
	var err error
	T.google, err = compute.NewService(ctx)
	if err != nil {
		return err
	}

	return nil
}

func (T *Discoverer) memory(ctx context.Context, zone, machineType string) (int64, error) {
	if mb, ok := T.machineTypes[machineType]; ok {
		return mb, nil
	}

	mt, err := T.google.MachineTypes.Get(T.Project, zone, path.Base(machineType)).Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	if T.machineTypes == nil {
		T.machineTypes = make(map[string]int64)
	}
	T.machineTypes[machineType] = mt.MemoryMb
	return mt.MemoryMb, nil
}

func (T *Discoverer) Recruits() ([]discovery.Recruit, error) {
	ctx := context.Background()

	var instances []*compute.Instance
	err := T.google.Instances.AggregatedList(T.Project).Pages(ctx, func(page *compute.InstanceAggregatedList) error {
		for _, scoped := range page.Items {
			for _, instance := range scoped.Instances {
				if T.allow(instance) {
					instances = append(instances, instance)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := make([]discovery.Recruit, 0, len(instances))
	for _, instance := range instances {
		mb, err := T.memory(ctx, path.Base(instance.Zone), instance.MachineType)
		if err != nil {
			return nil, err
		}
		res = append(res, recruitFromInstance(instance, mb))
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
