package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"
import "unsafe"

// PhysicalDeviceLimits carries the limits the renderer consumes.
type PhysicalDeviceLimits struct {
	MinUniformBufferOffsetAlignment  uint64
	MinStorageBufferOffsetAlignment  uint64
	OptimalBufferCopyOffsetAlignment uint64
	NonCoherentAtomSize              uint64
	MaxPushConstantsSize             uint32
	MaxPerStageDescriptorSamplers    uint32
	MaxPerStageDescriptorSampledImages uint32
	MaxDescriptorSetSampledImages    uint32
	MaxBoundDescriptorSets           uint32
	MaxSamplerAnisotropy             float32
}

// PhysicalDeviceProperties carries identity and limits of a device.
type PhysicalDeviceProperties struct {
	APIVersion        uint32
	DriverVersion     uint32
	VendorID          uint32
	DeviceID          uint32
	DeviceType        PhysicalDeviceType
	DeviceName        string
	PipelineCacheUUID [UUIDSize]byte
	Limits            PhysicalDeviceLimits
}

// GetProperties returns the device properties.
func (physicalDevice PhysicalDevice) GetProperties() PhysicalDeviceProperties {
	var props C.VkPhysicalDeviceProperties
	C.vkGetPhysicalDeviceProperties(physicalDevice.handle, &props)

	out := PhysicalDeviceProperties{
		APIVersion:    uint32(props.apiVersion),
		DriverVersion: uint32(props.driverVersion),
		VendorID:      uint32(props.vendorID),
		DeviceID:      uint32(props.deviceID),
		DeviceType:    PhysicalDeviceType(props.deviceType),
		DeviceName:    C.GoString(&props.deviceName[0]),
		Limits: PhysicalDeviceLimits{
			MinUniformBufferOffsetAlignment:    uint64(props.limits.minUniformBufferOffsetAlignment),
			MinStorageBufferOffsetAlignment:    uint64(props.limits.minStorageBufferOffsetAlignment),
			OptimalBufferCopyOffsetAlignment:   uint64(props.limits.optimalBufferCopyOffsetAlignment),
			NonCoherentAtomSize:                uint64(props.limits.nonCoherentAtomSize),
			MaxPushConstantsSize:               uint32(props.limits.maxPushConstantsSize),
			MaxPerStageDescriptorSamplers:      uint32(props.limits.maxPerStageDescriptorSamplers),
			MaxPerStageDescriptorSampledImages: uint32(props.limits.maxPerStageDescriptorSampledImages),
			MaxDescriptorSetSampledImages:      uint32(props.limits.maxDescriptorSetSampledImages),
			MaxBoundDescriptorSets:             uint32(props.limits.maxBoundDescriptorSets),
			MaxSamplerAnisotropy:               float32(props.limits.maxSamplerAnisotropy),
		},
	}
	C.memcpy(unsafe.Pointer(&out.PipelineCacheUUID[0]), unsafe.Pointer(&props.pipelineCacheUUID[0]), UUIDSize)
	return out
}

// PhysicalDeviceFeatures carries the feature bits the renderer cares
// about, flattened out of the 1.1/1.2/1.3 feature chain plus the
// extension feature structs.
type PhysicalDeviceFeatures struct {
	SamplerAnisotropy bool

	// Vulkan 1.1
	SamplerYcbcrConversion bool

	// Vulkan 1.2 descriptor indexing
	ShaderSampledImageArrayNonUniformIndexing bool
	RuntimeDescriptorArray                    bool
	DescriptorBindingPartiallyBound           bool
	TimelineSemaphore                         bool

	// Vulkan 1.3
	DynamicRendering bool
	Synchronization2 bool

	// VK_EXT_extended_dynamic_state3, per feature
	ExtDyn3ColorBlendEnable      bool
	ExtDyn3ColorWriteMask        bool
	ExtDyn3PolygonMode           bool
	ExtDyn3RasterizationSamples  bool

	// VK_EXT_vertex_attribute_divisor
	VertexAttributeInstanceRateDivisor bool
}

// GetFeatures queries the device feature chain.
func (physicalDevice PhysicalDevice) GetFeatures(hasExtDyn3, hasDivisor bool) PhysicalDeviceFeatures {
	var features2 C.VkPhysicalDeviceFeatures2
	features2.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_FEATURES_2

	var features11 C.VkPhysicalDeviceVulkan11Features
	features11.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_1_FEATURES
	var features12 C.VkPhysicalDeviceVulkan12Features
	features12.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_2_FEATURES
	var features13 C.VkPhysicalDeviceVulkan13Features
	features13.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_3_FEATURES
	var extDyn3 C.VkPhysicalDeviceExtendedDynamicState3FeaturesEXT
	extDyn3.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_EXTENDED_DYNAMIC_STATE_3_FEATURES_EXT
	var divisor C.VkPhysicalDeviceVertexAttributeDivisorFeaturesEXT
	divisor.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VERTEX_ATTRIBUTE_DIVISOR_FEATURES_EXT

	features2.pNext = unsafe.Pointer(&features11)
	features11.pNext = unsafe.Pointer(&features12)
	features12.pNext = unsafe.Pointer(&features13)
	next := &features13.pNext
	if hasExtDyn3 {
		*next = unsafe.Pointer(&extDyn3)
		next = &extDyn3.pNext
	}
	if hasDivisor {
		*next = unsafe.Pointer(&divisor)
	}

	C.vkGetPhysicalDeviceFeatures2(physicalDevice.handle, &features2)

	return PhysicalDeviceFeatures{
		SamplerAnisotropy:                         features2.features.samplerAnisotropy == C.VK_TRUE,
		SamplerYcbcrConversion:                    features11.samplerYcbcrConversion == C.VK_TRUE,
		ShaderSampledImageArrayNonUniformIndexing: features12.shaderSampledImageArrayNonUniformIndexing == C.VK_TRUE,
		RuntimeDescriptorArray:                    features12.runtimeDescriptorArray == C.VK_TRUE,
		DescriptorBindingPartiallyBound:           features12.descriptorBindingPartiallyBound == C.VK_TRUE,
		TimelineSemaphore:                         features12.timelineSemaphore == C.VK_TRUE,
		DynamicRendering:                          features13.dynamicRendering == C.VK_TRUE,
		Synchronization2:                          features13.synchronization2 == C.VK_TRUE,
		ExtDyn3ColorBlendEnable:                   extDyn3.extendedDynamicState3ColorBlendEnable == C.VK_TRUE,
		ExtDyn3ColorWriteMask:                     extDyn3.extendedDynamicState3ColorWriteMask == C.VK_TRUE,
		ExtDyn3PolygonMode:                        extDyn3.extendedDynamicState3PolygonMode == C.VK_TRUE,
		ExtDyn3RasterizationSamples:               extDyn3.extendedDynamicState3RasterizationSamples == C.VK_TRUE,
		VertexAttributeInstanceRateDivisor:        divisor.vertexAttributeInstanceRateDivisor == C.VK_TRUE,
	}
}

// EnumerateExtensions lists the device extension names.
func (physicalDevice PhysicalDevice) EnumerateExtensions() ([]string, error) {
	var count C.uint32_t
	if result := C.vkEnumerateDeviceExtensionProperties(physicalDevice.handle, nil, &count, nil); result != C.VK_SUCCESS {
		return nil, Result(result)
	}
	if count == 0 {
		return nil, nil
	}

	props := make([]C.VkExtensionProperties, count)
	if result := C.vkEnumerateDeviceExtensionProperties(physicalDevice.handle, nil, &count, &props[0]); result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	names := make([]string, count)
	for i := range props {
		names[i] = C.GoString(&props[i].extensionName[0])
	}
	return names, nil
}

// MemoryType is one entry of the device memory type list.
type MemoryType struct {
	PropertyFlags MemoryPropertyFlags
	HeapIndex     uint32
}

// MemoryProperties lists the memory types of a device.
type MemoryProperties struct {
	Types []MemoryType
}

// FindType returns the first memory type matching the filter and the
// wanted property flags, or false.
func (p MemoryProperties) FindType(typeFilter uint32, properties MemoryPropertyFlags) (uint32, bool) {
	for i, t := range p.Types {
		if typeFilter&(1<<uint(i)) != 0 && t.PropertyFlags&properties == properties {
			return uint32(i), true
		}
	}
	return 0, false
}

// GetMemoryProperties queries the device memory types.
func (physicalDevice PhysicalDevice) GetMemoryProperties() MemoryProperties {
	var props C.VkPhysicalDeviceMemoryProperties
	C.vkGetPhysicalDeviceMemoryProperties(physicalDevice.handle, &props)

	out := MemoryProperties{Types: make([]MemoryType, props.memoryTypeCount)}
	for i := range out.Types {
		out.Types[i] = MemoryType{
			PropertyFlags: MemoryPropertyFlags(props.memoryTypes[i].propertyFlags),
			HeapIndex:     uint32(props.memoryTypes[i].heapIndex),
		}
	}
	return out
}

// FormatProperties carries the tiling feature flags of a format.
type FormatProperties struct {
	LinearTilingFeatures  FormatFeatureFlags
	OptimalTilingFeatures FormatFeatureFlags
}

// GetFormatProperties queries format support.
func (physicalDevice PhysicalDevice) GetFormatProperties(format Format) FormatProperties {
	var props C.VkFormatProperties
	C.vkGetPhysicalDeviceFormatProperties(physicalDevice.handle, C.VkFormat(format), &props)
	return FormatProperties{
		LinearTilingFeatures:  FormatFeatureFlags(props.linearTilingFeatures),
		OptimalTilingFeatures: FormatFeatureFlags(props.optimalTilingFeatures),
	}
}

// QueueFamilyProperties describes one queue family.
type QueueFamilyProperties struct {
	QueueFlags QueueFlags
	QueueCount uint32
}

// GetQueueFamilyProperties lists queue families.
func (physicalDevice PhysicalDevice) GetQueueFamilyProperties() []QueueFamilyProperties {
	var count C.uint32_t
	C.vkGetPhysicalDeviceQueueFamilyProperties(physicalDevice.handle, &count, nil)
	if count == 0 {
		return nil
	}

	props := make([]C.VkQueueFamilyProperties, count)
	C.vkGetPhysicalDeviceQueueFamilyProperties(physicalDevice.handle, &count, &props[0])

	out := make([]QueueFamilyProperties, count)
	for i := range out {
		out[i] = QueueFamilyProperties{
			QueueFlags: QueueFlags(props[i].queueFlags),
			QueueCount: uint32(props[i].queueCount),
		}
	}
	return out
}

// GetSurfaceSupport reports whether a queue family can present to surface.
func (physicalDevice PhysicalDevice) GetSurfaceSupport(queueFamilyIndex uint32, surface Surface) (bool, error) {
	var supported C.VkBool32
	result := C.vkGetPhysicalDeviceSurfaceSupportKHR(physicalDevice.handle, C.uint32_t(queueFamilyIndex), surface.handle, &supported)
	if result != C.VK_SUCCESS {
		return false, Result(result)
	}
	return supported == C.VK_TRUE, nil
}

// SurfaceCapabilities mirrors VkSurfaceCapabilitiesKHR.
type SurfaceCapabilities struct {
	MinImageCount       uint32
	MaxImageCount       uint32
	CurrentExtent       Extent2D
	MinImageExtent      Extent2D
	MaxImageExtent      Extent2D
	SupportedUsageFlags ImageUsageFlags
	CurrentTransform    uint32
}

// GetSurfaceCapabilities queries surface capabilities.
func (physicalDevice PhysicalDevice) GetSurfaceCapabilities(surface Surface) (SurfaceCapabilities, error) {
	var caps C.VkSurfaceCapabilitiesKHR
	result := C.vkGetPhysicalDeviceSurfaceCapabilitiesKHR(physicalDevice.handle, surface.handle, &caps)
	if result != C.VK_SUCCESS {
		return SurfaceCapabilities{}, Result(result)
	}
	return SurfaceCapabilities{
		MinImageCount:       uint32(caps.minImageCount),
		MaxImageCount:       uint32(caps.maxImageCount),
		CurrentExtent:       Extent2D{uint32(caps.currentExtent.width), uint32(caps.currentExtent.height)},
		MinImageExtent:      Extent2D{uint32(caps.minImageExtent.width), uint32(caps.minImageExtent.height)},
		MaxImageExtent:      Extent2D{uint32(caps.maxImageExtent.width), uint32(caps.maxImageExtent.height)},
		SupportedUsageFlags: ImageUsageFlags(caps.supportedUsageFlags),
		CurrentTransform:    uint32(caps.currentTransform),
	}, nil
}

// SurfaceFormat pairs a format with its color space.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// GetSurfaceFormats lists the surface formats.
func (physicalDevice PhysicalDevice) GetSurfaceFormats(surface Surface) ([]SurfaceFormat, error) {
	var count C.uint32_t
	if result := C.vkGetPhysicalDeviceSurfaceFormatsKHR(physicalDevice.handle, surface.handle, &count, nil); result != C.VK_SUCCESS {
		return nil, Result(result)
	}
	if count == 0 {
		return nil, nil
	}

	formats := make([]C.VkSurfaceFormatKHR, count)
	if result := C.vkGetPhysicalDeviceSurfaceFormatsKHR(physicalDevice.handle, surface.handle, &count, &formats[0]); result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	out := make([]SurfaceFormat, count)
	for i := range out {
		out[i] = SurfaceFormat{Format: Format(formats[i].format), ColorSpace: ColorSpace(formats[i].colorSpace)}
	}
	return out, nil
}

// GetSurfacePresentModes lists the supported present modes.
func (physicalDevice PhysicalDevice) GetSurfacePresentModes(surface Surface) ([]PresentMode, error) {
	var count C.uint32_t
	if result := C.vkGetPhysicalDeviceSurfacePresentModesKHR(physicalDevice.handle, surface.handle, &count, nil); result != C.VK_SUCCESS {
		return nil, Result(result)
	}
	if count == 0 {
		return nil, nil
	}

	modes := make([]C.VkPresentModeKHR, count)
	if result := C.vkGetPhysicalDeviceSurfacePresentModesKHR(physicalDevice.handle, surface.handle, &count, &modes[0]); result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	out := make([]PresentMode, count)
	for i := range out {
		out[i] = PresentMode(modes[i])
	}
	return out, nil
}
