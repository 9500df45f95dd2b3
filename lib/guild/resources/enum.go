package resources

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidValue = errors.New("invalid resource value")

// enum values are indices into their name table. ANY is always 0 so the zero descriptor is the
// wildcard requirement.
type enum interface {
	~int32
}

func enumString[E enum](names []string, v E) string {
	if v < 0 || int(v) >= len(names) {
		return fmt.Sprintf("%d", int32(v))
	}
	return names[v]
}

func enumParse[E enum](kind string, names []string, text string) (E, error) {
	if text == "" {
		return 0, nil
	}
	for i, name := range names {
		if strings.EqualFold(name, text) {
			return E(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidValue, kind, text)
}

type DeviceType int32

const (
	DeviceTypeAny DeviceType = iota
	DeviceTypeUnknown
	DeviceTypeCPU
	DeviceTypeIntegrated
	DeviceTypeGPU
)

var deviceTypeNames = []string{"ANY", "UNKNOWN", "CPU", "INTEGRATED", "GPU"}

func ParseDeviceType(text string) (DeviceType, error) {
	return enumParse[DeviceType]("device type", deviceTypeNames, text)
}

func (T DeviceType) Valid() bool {
	return T >= 0 && int(T) < len(deviceTypeNames)
}

func (T DeviceType) String() string {
	return enumString(deviceTypeNames, T)
}

func (T DeviceType) MarshalText() ([]byte, error) {
	if !T.Valid() {
		return nil, fmt.Errorf("%w: device type %d", ErrInvalidValue, int32(T))
	}
	return []byte(T.String()), nil
}

func (T *DeviceType) UnmarshalText(text []byte) error {
	v, err := ParseDeviceType(string(text))
	if err != nil {
		return err
	}
	*T = v
	return nil
}

type DeviceBrand int32

const (
	DeviceBrandAny DeviceBrand = iota
	DeviceBrandUnknown
	DeviceBrandIntel
	DeviceBrandNvidia
	DeviceBrandAMD
)

var deviceBrandNames = []string{"ANY", "UNKNOWN", "INTEL", "NVIDIA", "AMD"}

func ParseDeviceBrand(text string) (DeviceBrand, error) {
	return enumParse[DeviceBrand]("device brand", deviceBrandNames, text)
}

func (T DeviceBrand) Valid() bool {
	return T >= 0 && int(T) < len(deviceBrandNames)
}

func (T DeviceBrand) String() string {
	return enumString(deviceBrandNames, T)
}

func (T DeviceBrand) MarshalText() ([]byte, error) {
	if !T.Valid() {
		return nil, fmt.Errorf("%w: device brand %d", ErrInvalidValue, int32(T))
	}
	return []byte(T.String()), nil
}

func (T *DeviceBrand) UnmarshalText(text []byte) error {
	v, err := ParseDeviceBrand(string(text))
	if err != nil {
		return err
	}
	*T = v
	return nil
}

type Region int32

const (
	RegionAny Region = iota
	RegionUnknown
	RegionUSEast
	RegionUSWest
	RegionEUWest
	RegionAPEast
)

var regionNames = []string{"ANY", "UNKNOWN", "US_EAST", "US_WEST", "EU_WEST", "AP_EAST"}

func ParseRegion(text string) (Region, error) {
	return enumParse[Region]("region", regionNames, text)
}

func (T Region) Valid() bool {
	return T >= 0 && int(T) < len(regionNames)
}

func (T Region) String() string {
	return enumString(regionNames, T)
}

func (T Region) MarshalText() ([]byte, error) {
	if !T.Valid() {
		return nil, fmt.Errorf("%w: region %d", ErrInvalidValue, int32(T))
	}
	return []byte(T.String()), nil
}

func (T *Region) UnmarshalText(text []byte) error {
	v, err := ParseRegion(string(text))
	if err != nil {
		return err
	}
	*T = v
	return nil
}
