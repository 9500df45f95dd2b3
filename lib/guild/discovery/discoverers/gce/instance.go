package gce

import (
	"path"
	"strings"

	compute "google.golang.org/api/compute/v1"

	"gfx.cafe/gfx/guild/lib/guild/discovery"
	"gfx.cafe/gfx/guild/lib/guild/resources"
)

var regionPrefixes = []struct {
	Prefix string
	Region resources.Region
}{
	{"us-east", resources.RegionUSEast},
	{"northamerica-", resources.RegionUSEast},
	{"us-west", resources.RegionUSWest},
	{"europe-", resources.RegionEUWest},
	{"asia-", resources.RegionAPEast},
	{"australia-", resources.RegionAPEast},
}

var (
	amdFamilies   = map[string]struct{}{"n2d": {}, "c2d": {}, "t2d": {}, "c3d": {}, "c4d": {}}
	intelFamilies = map[string]struct{}{"n1": {}, "n2": {}, "n4": {}, "c2": {}, "c3": {}, "c4": {}, "m1": {}, "m2": {}, "m3": {}, "h3": {}}
)

func regionFromZone(zone string) resources.Region {
	for _, p := range regionPrefixes {
		if strings.HasPrefix(zone, p.Prefix) {
			return p.Region
		}
	}
	return resources.RegionUnknown
}

func instanceID(zone, name string) string {
	return "gce/" + zone + "/" + name
}

// recruitFromInstance builds an offer. memoryMb comes from the instance's machine type.
func recruitFromInstance(instance *compute.Instance, memoryMb int64) discovery.Recruit {
	zone := path.Base(instance.Zone)

	offer := resources.Descriptor{
		Memory:      resources.Memory(memoryMb) << 20,
		DeviceType:  resources.DeviceTypeCPU,
		DeviceBrand: resources.DeviceBrandUnknown,
		Region:      regionFromZone(zone),
	}

	family, _, _ := strings.Cut(path.Base(instance.MachineType), "-")
	if _, ok := amdFamilies[family]; ok {
		offer.DeviceBrand = resources.DeviceBrandAMD
	} else if _, ok = intelFamilies[family]; ok {
		offer.DeviceBrand = resources.DeviceBrandIntel
	}

	for _, accelerator := range instance.GuestAccelerators {
		if accelerator.AcceleratorCount <= 0 {
			continue
		}
		offer.DeviceType = resources.DeviceTypeGPU
		switch kind := path.Base(accelerator.AcceleratorType); {
		case strings.HasPrefix(kind, "nvidia-"):
			offer.DeviceBrand = resources.DeviceBrandNvidia
		case strings.HasPrefix(kind, "amd-"):
			offer.DeviceBrand = resources.DeviceBrandAMD
		default:
			offer.DeviceBrand = resources.DeviceBrandUnknown
		}
		break
	}

	return discovery.Recruit{
		ID:    instanceID(zone, instance.Name),
		Offer: offer,
	}
}

func (T *Config) allow(instance *compute.Instance) bool {
	if instance.Status != "RUNNING" {
		return false
	}
	if T.Label == "" {
		return true
	}
	key, value, hasValue := strings.Cut(T.Label, "=")
	v, ok := instance.Labels[key]
	if !ok {
		return false
	}
	return !hasValue || v == value
}
