package kubernetes

import (
	corev1 "k8s.io/api/core/v1"

	"gfx.cafe/gfx/guild/lib/guild/discovery"
	"gfx.cafe/gfx/guild/lib/guild/resources"
)

const (
	AnnotationDeviceType  = "guild.gfx.cafe/device-type"
	AnnotationDeviceBrand = "guild.gfx.cafe/device-brand"
	AnnotationRegion      = "guild.gfx.cafe/region"

	ResourceNvidiaGPU corev1.ResourceName = "nvidia.com/gpu"
	ResourceAMDGPU    corev1.ResourceName = "amd.com/gpu"
	ResourceIntelGPU  corev1.ResourceName = "gpu.intel.com/i915"
)

func podID(namespace, name string) string {
	return "k8s/" + namespace + "/" + name
}

// enlistable reports whether a pod can take quests.
func enlistable(pod *corev1.Pod) bool {
	return pod.DeletionTimestamp == nil && pod.Status.Phase == corev1.PodRunning
}

// recruitFromPod derives an offer from container limits (falling back to requests) and the
// guild annotations, which win over anything derived.
func recruitFromPod(pod *corev1.Pod) discovery.Recruit {
	var offer resources.Descriptor
	var nvidia, amd, intel bool

	for _, container := range pod.Spec.Containers {
		list := container.Resources.Limits
		if _, ok := list[corev1.ResourceMemory]; !ok {
			list = container.Resources.Requests
		}
		if q, ok := list[corev1.ResourceMemory]; ok && q.Value() > 0 {
			offer.Memory += resources.Memory(q.Value())
		}

		limits := container.Resources.Limits
		if q, ok := limits[ResourceNvidiaGPU]; ok && q.Value() > 0 {
			nvidia = true
		}
		if q, ok := limits[ResourceAMDGPU]; ok && q.Value() > 0 {
			amd = true
		}
		if q, ok := limits[ResourceIntelGPU]; ok && q.Value() > 0 {
			intel = true
		}
	}

	switch {
	case nvidia:
		offer.DeviceType = resources.DeviceTypeGPU
		offer.DeviceBrand = resources.DeviceBrandNvidia
	case amd:
		offer.DeviceType = resources.DeviceTypeGPU
		offer.DeviceBrand = resources.DeviceBrandAMD
	case intel:
		offer.DeviceType = resources.DeviceTypeIntegrated
		offer.DeviceBrand = resources.DeviceBrandIntel
	default:
		offer.DeviceType = resources.DeviceTypeCPU
		offer.DeviceBrand = resources.DeviceBrandUnknown
	}
	offer.Region = resources.RegionUnknown

	if v, err := resources.ParseDeviceType(pod.Annotations[AnnotationDeviceType]); err == nil && v != resources.DeviceTypeAny {
		offer.DeviceType = v
	}
	if v, err := resources.ParseDeviceBrand(pod.Annotations[AnnotationDeviceBrand]); err == nil && v != resources.DeviceBrandAny {
		offer.DeviceBrand = v
	}
	if v, err := resources.ParseRegion(pod.Annotations[AnnotationRegion]); err == nil && v != resources.RegionAny {
		offer.Region = v
	}

	return discovery.Recruit{
		ID:    podID(pod.Namespace, pod.Name),
		Offer: offer,
	}
}
