package vk

/*
#include <vulkan/vulkan.h>
*/
import "C"
import "unsafe"

// MemoryRequirements mirrors VkMemoryRequirements.
type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

// AllocateMemory allocates device memory from one memory type.
func (device Device) AllocateMemory(size uint64, memoryTypeIndex uint32) (DeviceMemory, error) {
	var allocInfo C.VkMemoryAllocateInfo
	allocInfo.sType = C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_INFO
	allocInfo.allocationSize = C.VkDeviceSize(size)
	allocInfo.memoryTypeIndex = C.uint32_t(memoryTypeIndex)

	var handle C.VkDeviceMemory
	if result := C.vkAllocateMemory(device.handle, &allocInfo, nil, &handle); result != C.VK_SUCCESS {
		return DeviceMemory{}, Result(result)
	}
	return DeviceMemory{handle: handle}, nil
}

// FreeMemory releases a device allocation.
func (device Device) FreeMemory(memory DeviceMemory) {
	C.vkFreeMemory(device.handle, memory.handle, nil)
}

// MapMemory maps a host-visible allocation.
func (device Device) MapMemory(memory DeviceMemory, offset, size uint64) (unsafe.Pointer, error) {
	var ptr unsafe.Pointer
	result := C.vkMapMemory(device.handle, memory.handle, C.VkDeviceSize(offset), C.VkDeviceSize(size), 0, &ptr)
	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}
	return ptr, nil
}

// UnmapMemory unmaps an allocation.
func (device Device) UnmapMemory(memory DeviceMemory) {
	C.vkUnmapMemory(device.handle, memory.handle)
}

// FlushMappedRange flushes a non-coherent mapped range.
func (device Device) FlushMappedRange(memory DeviceMemory, offset, size uint64) error {
	var mappedRange C.VkMappedMemoryRange
	mappedRange.sType = C.VK_STRUCTURE_TYPE_MAPPED_MEMORY_RANGE
	mappedRange.memory = memory.handle
	mappedRange.offset = C.VkDeviceSize(offset)
	mappedRange.size = C.VkDeviceSize(size)
	return asErr(int32(C.vkFlushMappedMemoryRanges(device.handle, 1, &mappedRange)))
}
