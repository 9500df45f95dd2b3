package main

import (
	"github.com/spf13/pflag"

	"gfx.cafe/gfx/guild/lib/guild/resources"
)

type descriptorFlags struct {
	memory      string
	deviceType  string
	deviceBrand string
	region      string
}

func (T *descriptorFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&T.memory, "memory", "", "memory, like 4GiB (empty means any)")
	flags.StringVar(&T.deviceType, "device-type", "", "device type: cpu, integrated, gpu, unknown (empty means any)")
	flags.StringVar(&T.deviceBrand, "device-brand", "", "device brand: intel, nvidia, amd, unknown (empty means any)")
	flags.StringVar(&T.region, "region", "", "region: us_east, us_west, eu_west, ap_east, unknown (empty means any)")
}

func (T *descriptorFlags) descriptor() (resources.Descriptor, error) {
	var d resources.Descriptor
	var err error

	if T.memory != "" {
		if d.Memory, err = resources.ParseMemory(T.memory); err != nil {
			return d, err
		}
	}
	if d.DeviceType, err = resources.ParseDeviceType(T.deviceType); err != nil {
		return d, err
	}
	if d.DeviceBrand, err = resources.ParseDeviceBrand(T.deviceBrand); err != nil {
		return d, err
	}
	if d.Region, err = resources.ParseRegion(T.region); err != nil {
		return d, err
	}
	return d, nil
}
