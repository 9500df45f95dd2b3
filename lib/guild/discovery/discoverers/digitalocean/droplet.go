package digitalocean

import (
	"strconv"
	"strings"

	"github.com/digitalocean/godo"

	"gfx.cafe/gfx/guild/lib/guild/discovery"
	"gfx.cafe/gfx/guild/lib/guild/resources"
)

var regionPrefixes = []struct {
	Prefix string
	Region resources.Region
}{
	{"nyc", resources.RegionUSEast},
	{"tor", resources.RegionUSEast},
	{"atl", resources.RegionUSEast},
	{"sfo", resources.RegionUSWest},
	{"ams", resources.RegionEUWest},
	{"lon", resources.RegionEUWest},
	{"fra", resources.RegionEUWest},
	{"sgp", resources.RegionAPEast},
	{"blr", resources.RegionAPEast},
	{"syd", resources.RegionAPEast},
}

func regionFromSlug(slug string) resources.Region {
	for _, p := range regionPrefixes {
		if strings.HasPrefix(slug, p.Prefix) {
			return p.Region
		}
	}
	return resources.RegionUnknown
}

func dropletID(id int) string {
	return "do-" + strconv.Itoa(id)
}

func recruitFromDroplet(droplet godo.Droplet) discovery.Recruit {
	offer := resources.Descriptor{
		Memory:      resources.Memory(droplet.Memory) << 20,
		DeviceType:  resources.DeviceTypeCPU,
		DeviceBrand: resources.DeviceBrandUnknown,
		Region:      resources.RegionUnknown,
	}

	if droplet.Region != nil {
		offer.Region = regionFromSlug(droplet.Region.Slug)
	}

	switch size := droplet.SizeSlug; {
	case strings.HasPrefix(size, "gpu-"):
		offer.DeviceType = resources.DeviceTypeGPU
		offer.DeviceBrand = resources.DeviceBrandNvidia
		if strings.Contains(size, "mi300") {
			offer.DeviceBrand = resources.DeviceBrandAMD
		}
	case strings.HasSuffix(size, "-amd"):
		offer.DeviceBrand = resources.DeviceBrandAMD
	case strings.HasSuffix(size, "-intel"):
		offer.DeviceBrand = resources.DeviceBrandIntel
	}

	return discovery.Recruit{
		ID:    dropletID(droplet.ID),
		Offer: offer,
	}
}
