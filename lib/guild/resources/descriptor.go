package resources

import (
	"fmt"
)

// Descriptor describes either what a quest requires or what a mercenary offers.
type Descriptor struct {
	Memory      Memory      `json:"memory"`
	DeviceType  DeviceType  `json:"device_type"`
	DeviceBrand DeviceBrand `json:"device_brand"`
	Region      Region      `json:"region"`
}

// Any matches every offer.
var Any Descriptor

// Satisfies reports whether an offer can host this requirement. Enum dimensions must be ANY or
// equal. Memory is a capacity, so an offer satisfies any requirement up to its size.
func (T Descriptor) Satisfies(offer Descriptor) bool {
	if T.Memory != 0 && T.Memory > offer.Memory {
		return false
	}
	if T.DeviceType != DeviceTypeAny && T.DeviceType != offer.DeviceType {
		return false
	}
	if T.DeviceBrand != DeviceBrandAny && T.DeviceBrand != offer.DeviceBrand {
		return false
	}
	if T.Region != RegionAny && T.Region != offer.Region {
		return false
	}
	return true
}

// Matches reports whether requirement is satisfied by offer.
func Matches(requirement, offer Descriptor) bool {
	return requirement.Satisfies(offer)
}

func (T Descriptor) Validate() error {
	if !T.DeviceType.Valid() {
		return fmt.Errorf("%w: device type %d", ErrInvalidValue, int32(T.DeviceType))
	}
	if !T.DeviceBrand.Valid() {
		return fmt.Errorf("%w: device brand %d", ErrInvalidValue, int32(T.DeviceBrand))
	}
	if !T.Region.Valid() {
		return fmt.Errorf("%w: region %d", ErrInvalidValue, int32(T.Region))
	}
	return nil
}

func (T Descriptor) String() string {
	return fmt.Sprintf("memory=%s type=%s brand=%s region=%s", T.Memory, T.DeviceType, T.DeviceBrand, T.Region)
}
