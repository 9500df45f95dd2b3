package guildcaddyfile

import (
	"fmt"
	"strings"

	"gfx.cafe/gfx/guild/lib/guild/resources"
)

// parseOffer reads key=value pairs into a descriptor. Missing keys stay Any.
func parseOffer(args []string) (resources.Descriptor, error) {
	var d resources.Descriptor
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return d, fmt.Errorf(`expected key=value but got "%s"`, arg)
		}

		var err error
		switch key {
		case "memory":
			d.Memory, err = resources.ParseMemory(value)
		case "device_type":
			d.DeviceType, err = resources.ParseDeviceType(value)
		case "device_brand":
			d.DeviceBrand, err = resources.ParseDeviceBrand(value)
		case "region":
			d.Region, err = resources.ParseRegion(value)
		default:
			return d, fmt.Errorf(`unknown resource "%s"`, key)
		}
		if err != nil {
			return d, err
		}
	}
	return d, nil
}
