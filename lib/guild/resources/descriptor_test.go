package resources

import (
	"encoding/json"
	"errors"
	"testing"
)

const gib = 1 << 30

type MatchTestCase struct {
	Name        string
	Requirement Descriptor
	Offer       Descriptor
	Expected    bool
}

var gpuOffer = Descriptor{
	Memory:      8 * gib,
	DeviceType:  DeviceTypeGPU,
	DeviceBrand: DeviceBrandNvidia,
	Region:      RegionUSEast,
}

var matchTestCases = []MatchTestCase{
	{
		Name:        "wildcard",
		Requirement: Any,
		Offer:       gpuOffer,
		Expected:    true,
	},
	{
		Name:        "wildcard against unknown offer",
		Requirement: Any,
		Offer:       Descriptor{DeviceType: DeviceTypeUnknown, DeviceBrand: DeviceBrandUnknown, Region: RegionUnknown},
		Expected:    true,
	},
	{
		Name:        "exact",
		Requirement: gpuOffer,
		Offer:       gpuOffer,
		Expected:    true,
	},
	{
		Name:        "smaller memory with any region",
		Requirement: Descriptor{Memory: 4 * gib, DeviceType: DeviceTypeGPU, DeviceBrand: DeviceBrandNvidia},
		Offer:       gpuOffer,
		Expected:    true,
	},
	{
		Name:        "too much memory",
		Requirement: Descriptor{Memory: 16 * gib},
		Offer:       gpuOffer,
		Expected:    false,
	},
	{
		Name:        "brand mismatch",
		Requirement: Descriptor{DeviceBrand: DeviceBrandAMD},
		Offer:       gpuOffer,
		Expected:    false,
	},
	{
		Name:        "brand does not imply type",
		Requirement: Descriptor{DeviceType: DeviceTypeCPU, DeviceBrand: DeviceBrandNvidia},
		Offer:       gpuOffer,
		Expected:    false,
	},
	{
		Name:        "region mismatch",
		Requirement: Descriptor{Region: RegionEUWest},
		Offer:       gpuOffer,
		Expected:    false,
	},
	{
		Name:        "unknown only matches unknown",
		Requirement: Descriptor{DeviceType: DeviceTypeUnknown},
		Offer:       gpuOffer,
		Expected:    false,
	},
	{
		Name:        "unknown matches itself",
		Requirement: Descriptor{DeviceType: DeviceTypeUnknown},
		Offer:       Descriptor{DeviceType: DeviceTypeUnknown},
		Expected:    true,
	},
	{
		Name:        "any offer does not satisfy concrete requirement",
		Requirement: Descriptor{Region: RegionUSWest},
		Offer:       Any,
		Expected:    false,
	},
}

func TestMatches(t *testing.T) {
	for _, c := range matchTestCases {
		if Matches(c.Requirement, c.Offer) != c.Expected {
			t.Errorf("%s: expected %s against %s to be %v", c.Name, c.Requirement, c.Offer, c.Expected)
		}
	}
}

func TestDescriptor_JSON(t *testing.T) {
	var d Descriptor
	err := json.Unmarshal([]byte(`{"memory":"8GiB","device_type":"gpu","device_brand":"NVIDIA","region":"US_EAST"}`), &d)
	if err != nil {
		t.Fatal(err)
	}
	if d != gpuOffer {
		t.Error("expected", gpuOffer, "but got", d)
	}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"memory":8589934592,"device_type":"GPU","device_brand":"NVIDIA","region":"US_EAST"}` {
		t.Error("unexpected encoding", string(b))
	}

	var empty Descriptor
	if err = json.Unmarshal([]byte(`{}`), &empty); err != nil {
		t.Fatal(err)
	}
	if empty != Any {
		t.Error("expected missing fields to be wildcards but got", empty)
	}
}

func TestDescriptor_Invalid(t *testing.T) {
	var d Descriptor
	err := json.Unmarshal([]byte(`{"device_type":"TPU"}`), &d)
	if !errors.Is(err, ErrInvalidValue) {
		t.Error("expected invalid value but got", err)
	}

	d = Descriptor{Region: Region(42)}
	if err = d.Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Error("expected invalid value but got", err)
	}
	if _, err = json.Marshal(d); err == nil {
		t.Error("expected out of range region to fail encoding")
	}
}

func TestParseMemory(t *testing.T) {
	cases := map[string]Memory{
		"":       0,
		"1024":   1024,
		"4GiB":   4 * gib,
		"512MiB": 512 << 20,
		"1GB":    1000 * 1000 * 1000,
	}
	for text, expected := range cases {
		m, err := ParseMemory(text)
		if err != nil {
			t.Error(text, err)
			continue
		}
		if m != expected {
			t.Error("expected", text, "to be", uint64(expected), "but got", uint64(m))
		}
	}

	if _, err := ParseMemory("lots"); !errors.Is(err, ErrInvalidValue) {
		t.Error("expected invalid value but got", err)
	}
}
