package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>

static PFN_vkVoidFunction loadDeviceProc(VkDevice device, const char* name) {
	return vkGetDeviceProcAddr(device, name);
}
*/
import "C"
import "unsafe"

type deviceProcs struct {
	cmdPushDescriptorSet       C.PFN_vkCmdPushDescriptorSetKHR
	cmdSetColorBlendEnable     C.PFN_vkCmdSetColorBlendEnableEXT
	cmdSetColorWriteMask       C.PFN_vkCmdSetColorWriteMaskEXT
	cmdSetPolygonMode          C.PFN_vkCmdSetPolygonModeEXT
	cmdSetRasterizationSamples C.PFN_vkCmdSetRasterizationSamplesEXT
	cmdBeginDebugUtilsLabel    C.PFN_vkCmdBeginDebugUtilsLabelEXT
	cmdEndDebugUtilsLabel      C.PFN_vkCmdEndDebugUtilsLabelEXT
}

func loadProc(device C.VkDevice, name string) C.PFN_vkVoidFunction {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	return C.loadDeviceProc(device, cName)
}

// QueueCreateInfo requests queues from one family.
type QueueCreateInfo struct {
	QueueFamilyIndex uint32
	QueuePriorities  []float32
}

// DeviceFeatures selects the features enabled at device creation. The
// caller enables only what GetFeatures reported.
type DeviceFeatures struct {
	SamplerAnisotropy bool

	SamplerYcbcrConversion bool

	ShaderSampledImageArrayNonUniformIndexing bool
	RuntimeDescriptorArray                    bool
	DescriptorBindingPartiallyBound           bool
	TimelineSemaphore                         bool

	DynamicRendering bool
	Synchronization2 bool

	ExtDyn3ColorBlendEnable     bool
	ExtDyn3ColorWriteMask       bool
	ExtDyn3PolygonMode          bool
	ExtDyn3RasterizationSamples bool

	VertexAttributeInstanceRateDivisor bool
}

// DeviceCreateInfo configures CreateDevice.
type DeviceCreateInfo struct {
	QueueCreateInfos []QueueCreateInfo
	Extensions       []string
	Features         DeviceFeatures
}

// CreateDevice creates the logical device and resolves the extension
// entry points the renderer records through.
func (physicalDevice PhysicalDevice) CreateDevice(info DeviceCreateInfo) (Device, error) {
	queueInfos := make([]C.VkDeviceQueueCreateInfo, len(info.QueueCreateInfos))
	priorities := make([][]C.float, len(info.QueueCreateInfos))
	for i, qi := range info.QueueCreateInfos {
		priorities[i] = make([]C.float, len(qi.QueuePriorities))
		for j, p := range qi.QueuePriorities {
			priorities[i][j] = C.float(p)
		}
		queueInfos[i].sType = C.VK_STRUCTURE_TYPE_DEVICE_QUEUE_CREATE_INFO
		queueInfos[i].queueFamilyIndex = C.uint32_t(qi.QueueFamilyIndex)
		queueInfos[i].queueCount = C.uint32_t(len(qi.QueuePriorities))
		queueInfos[i].pQueuePriorities = &priorities[i][0]
	}

	extensions := make([]*C.char, len(info.Extensions))
	for i, ext := range info.Extensions {
		extensions[i] = C.CString(ext)
		defer C.free(unsafe.Pointer(extensions[i]))
	}

	boolTo32 := func(b bool) C.VkBool32 {
		if b {
			return C.VK_TRUE
		}
		return C.VK_FALSE
	}

	var features C.VkPhysicalDeviceFeatures
	features.samplerAnisotropy = boolTo32(info.Features.SamplerAnisotropy)

	var features11 C.VkPhysicalDeviceVulkan11Features
	features11.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_1_FEATURES
	features11.samplerYcbcrConversion = boolTo32(info.Features.SamplerYcbcrConversion)

	var features12 C.VkPhysicalDeviceVulkan12Features
	features12.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_2_FEATURES
	features12.shaderSampledImageArrayNonUniformIndexing = boolTo32(info.Features.ShaderSampledImageArrayNonUniformIndexing)
	features12.runtimeDescriptorArray = boolTo32(info.Features.RuntimeDescriptorArray)
	features12.descriptorBindingPartiallyBound = boolTo32(info.Features.DescriptorBindingPartiallyBound)
	features12.timelineSemaphore = boolTo32(info.Features.TimelineSemaphore)

	var features13 C.VkPhysicalDeviceVulkan13Features
	features13.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_3_FEATURES
	features13.dynamicRendering = boolTo32(info.Features.DynamicRendering)
	features13.synchronization2 = boolTo32(info.Features.Synchronization2)

	var extDyn3 C.VkPhysicalDeviceExtendedDynamicState3FeaturesEXT
	extDyn3.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_EXTENDED_DYNAMIC_STATE_3_FEATURES_EXT
	extDyn3.extendedDynamicState3ColorBlendEnable = boolTo32(info.Features.ExtDyn3ColorBlendEnable)
	extDyn3.extendedDynamicState3ColorWriteMask = boolTo32(info.Features.ExtDyn3ColorWriteMask)
	extDyn3.extendedDynamicState3PolygonMode = boolTo32(info.Features.ExtDyn3PolygonMode)
	extDyn3.extendedDynamicState3RasterizationSamples = boolTo32(info.Features.ExtDyn3RasterizationSamples)

	var divisor C.VkPhysicalDeviceVertexAttributeDivisorFeaturesEXT
	divisor.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VERTEX_ATTRIBUTE_DIVISOR_FEATURES_EXT
	divisor.vertexAttributeInstanceRateDivisor = boolTo32(info.Features.VertexAttributeInstanceRateDivisor)

	hasExtDyn3 := false
	hasDivisor := false
	for _, ext := range info.Extensions {
		switch ext {
		case ExtExtendedDynamicState3:
			hasExtDyn3 = true
		case ExtVertexAttributeDivisor:
			hasDivisor = true
		}
	}

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

	var createInfo C.VkDeviceCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_DEVICE_CREATE_INFO
	createInfo.pNext = unsafe.Pointer(&features11)
	createInfo.queueCreateInfoCount = C.uint32_t(len(queueInfos))
	createInfo.pQueueCreateInfos = &queueInfos[0]
	if len(extensions) > 0 {
		createInfo.enabledExtensionCount = C.uint32_t(len(extensions))
		createInfo.ppEnabledExtensionNames = &extensions[0]
	}
	createInfo.pEnabledFeatures = &features

	var handle C.VkDevice
	if result := C.vkCreateDevice(physicalDevice.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return Device{}, Result(result)
	}

	procs := &deviceProcs{
		cmdPushDescriptorSet:    C.PFN_vkCmdPushDescriptorSetKHR(loadProc(handle, "vkCmdPushDescriptorSetKHR")),
		cmdBeginDebugUtilsLabel: C.PFN_vkCmdBeginDebugUtilsLabelEXT(loadProc(handle, "vkCmdBeginDebugUtilsLabelEXT")),
		cmdEndDebugUtilsLabel:   C.PFN_vkCmdEndDebugUtilsLabelEXT(loadProc(handle, "vkCmdEndDebugUtilsLabelEXT")),
	}
	if hasExtDyn3 {
		procs.cmdSetColorBlendEnable = C.PFN_vkCmdSetColorBlendEnableEXT(loadProc(handle, "vkCmdSetColorBlendEnableEXT"))
		procs.cmdSetColorWriteMask = C.PFN_vkCmdSetColorWriteMaskEXT(loadProc(handle, "vkCmdSetColorWriteMaskEXT"))
		procs.cmdSetPolygonMode = C.PFN_vkCmdSetPolygonModeEXT(loadProc(handle, "vkCmdSetPolygonModeEXT"))
		procs.cmdSetRasterizationSamples = C.PFN_vkCmdSetRasterizationSamplesEXT(loadProc(handle, "vkCmdSetRasterizationSamplesEXT"))
	}

	return Device{handle: handle, procs: procs}, nil
}

// Destroy destroys the logical device.
func (device Device) Destroy() {
	C.vkDestroyDevice(device.handle, nil)
}

// WaitIdle waits for all queues of the device to drain.
func (device Device) WaitIdle() error {
	return asErr(int32(C.vkDeviceWaitIdle(device.handle)))
}

// GetQueue fetches a created queue.
func (device Device) GetQueue(queueFamilyIndex, queueIndex uint32) Queue {
	var handle C.VkQueue
	C.vkGetDeviceQueue(device.handle, C.uint32_t(queueFamilyIndex), C.uint32_t(queueIndex), &handle)
	return Queue{handle: handle}
}
