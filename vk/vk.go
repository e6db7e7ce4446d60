// Package vk is a cgo binding against the system Vulkan headers covering
// the 1.3/1.4 surface the renderer uses: dynamic rendering, timeline
// semaphores, synchronization2, push descriptors, descriptor indexing,
// sampler YCbCr conversion and the extended-dynamic-state commands.
//
// Handles are thin wrappers over the C handles. Functions that can fail
// return a Result-backed error; Vulkan success codes other than VK_SUCCESS
// (Suboptimal in particular) are returned as sentinel errors the caller
// matches with errors.Is.
package vk

/*
#cgo linux LDFLAGS: -lvulkan
#cgo darwin LDFLAGS: -lvulkan
#cgo windows LDFLAGS: -lvulkan-1
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// Non-dispatchable handles are pointers on the 64-bit platforms this
// renderer targets.
func unsafePtrHandle(v uintptr) unsafe.Pointer { return unsafe.Pointer(v) }

// MakeAPIVersion packs a Vulkan version number.
func MakeAPIVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// VersionMajor extracts the major component of a packed version.
func VersionMajor(version uint32) uint32 { return version >> 22 }

// VersionMinor extracts the minor component of a packed version.
func VersionMinor(version uint32) uint32 { return (version >> 12) & 0x3FF }

// VersionPatch extracts the patch component of a packed version.
func VersionPatch(version uint32) uint32 { return version & 0xFFF }

// APIVersion13 is the packed Vulkan 1.3 version.
var APIVersion13 = MakeAPIVersion(1, 3, 0)

// APIVersion14 is the packed Vulkan 1.4 version.
var APIVersion14 = MakeAPIVersion(1, 4, 0)

// WholeSize is VK_WHOLE_SIZE.
const WholeSize = ^uint64(0)

// RemainingMipLevels and RemainingArrayLayers mirror the VK_REMAINING_*
// subresource range sentinels.
const (
	RemainingMipLevels   = ^uint32(0)
	RemainingArrayLayers = ^uint32(0)
)

// QueueFamilyIgnored is VK_QUEUE_FAMILY_IGNORED.
const QueueFamilyIgnored = ^uint32(0)

// UUIDSize is VK_UUID_SIZE.
const UUIDSize = 16

// Extent2D is a width/height pair.
type Extent2D struct {
	Width, Height uint32
}

// Extent3D adds depth.
type Extent3D struct {
	Width, Height, Depth uint32
}

// Offset2D is a signed 2D offset.
type Offset2D struct {
	X, Y int32
}

// Offset3D is a signed 3D offset.
type Offset3D struct {
	X, Y, Z int32
}

// Rect2D is offset plus extent.
type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

// Viewport matches VkViewport. Negative heights are legal in 1.3 and are
// how the renderer flips Y.
type Viewport struct {
	X, Y, Width, Height, MinDepth, MaxDepth float32
}

// ClearColorValue is a four-float clear color.
type ClearColorValue [4]float32

// ClearDepthStencilValue clears depth and stencil aspects.
type ClearDepthStencilValue struct {
	Depth   float32
	Stencil uint32
}

// Handle types. The zero value of each is the Vulkan null handle.

// Instance wraps VkInstance together with its extension entry points.
type Instance struct {
	handle C.VkInstance
	procs  *instanceProcs
}

// PhysicalDevice wraps VkPhysicalDevice.
type PhysicalDevice struct {
	handle C.VkPhysicalDevice
}

// Device wraps VkDevice together with its extension entry points.
type Device struct {
	handle C.VkDevice
	procs  *deviceProcs
}

// Queue wraps VkQueue.
type Queue struct {
	handle C.VkQueue
}

// Surface wraps VkSurfaceKHR.
type Surface struct {
	handle C.VkSurfaceKHR
}

// SurfaceFromPointer adopts a VkSurfaceKHR created by an external
// windowing library (SDL's VulkanCreateSurface hands one back as a
// uintptr-compatible value).
func SurfaceFromPointer(surface uintptr) Surface {
	return Surface{handle: C.VkSurfaceKHR(unsafePtrHandle(surface))}
}

// Swapchain wraps VkSwapchainKHR.
type Swapchain struct {
	handle C.VkSwapchainKHR
}

// Null reports whether the swapchain is the null handle.
func (s Swapchain) Null() bool { return s.handle == nil }

// Image wraps VkImage.
type Image struct {
	handle C.VkImage
}

// Null reports whether the image is the null handle.
func (i Image) Null() bool { return i.handle == nil }

// ImageView wraps VkImageView.
type ImageView struct {
	handle C.VkImageView
}

// Null reports whether the view is the null handle.
func (v ImageView) Null() bool { return v.handle == nil }

// Sampler wraps VkSampler.
type Sampler struct {
	handle C.VkSampler
}

// SamplerYcbcrConversion wraps VkSamplerYcbcrConversion.
type SamplerYcbcrConversion struct {
	handle C.VkSamplerYcbcrConversion
}

// Buffer wraps VkBuffer.
type Buffer struct {
	handle C.VkBuffer
}

// Null reports whether the buffer is the null handle.
func (b Buffer) Null() bool { return b.handle == nil }

// DeviceMemory wraps VkDeviceMemory.
type DeviceMemory struct {
	handle C.VkDeviceMemory
}

// CommandPool wraps VkCommandPool.
type CommandPool struct {
	handle C.VkCommandPool
}

// CommandBuffer wraps VkCommandBuffer and carries the owning device's
// extension entry points so extension commands can be recorded on it.
type CommandBuffer struct {
	handle C.VkCommandBuffer
	procs  *deviceProcs
}

// Fence wraps VkFence.
type Fence struct {
	handle C.VkFence
}

// Semaphore wraps VkSemaphore, binary or timeline.
type Semaphore struct {
	handle C.VkSemaphore
}

// DescriptorSetLayout wraps VkDescriptorSetLayout.
type DescriptorSetLayout struct {
	handle C.VkDescriptorSetLayout
}

// DescriptorPool wraps VkDescriptorPool.
type DescriptorPool struct {
	handle C.VkDescriptorPool
}

// DescriptorSet wraps VkDescriptorSet.
type DescriptorSet struct {
	handle C.VkDescriptorSet
}

// Null reports whether the set is the null handle.
func (s DescriptorSet) Null() bool { return s.handle == nil }

// PipelineLayout wraps VkPipelineLayout.
type PipelineLayout struct {
	handle C.VkPipelineLayout
}

// Pipeline wraps VkPipeline.
type Pipeline struct {
	handle C.VkPipeline
}

// Null reports whether the pipeline is the null handle.
func (p Pipeline) Null() bool { return p.handle == nil }

// PipelineCache wraps VkPipelineCache.
type PipelineCache struct {
	handle C.VkPipelineCache
}

// ShaderModule wraps VkShaderModule.
type ShaderModule struct {
	handle C.VkShaderModule
}

// Handle returns the raw handle value, usable as a cache key component.
func (m ShaderModule) Handle() uintptr { return uintptr(unsafe.Pointer(m.handle)) }

// DebugUtilsMessenger wraps VkDebugUtilsMessengerEXT.
type DebugUtilsMessenger struct {
	handle C.VkDebugUtilsMessengerEXT
}
