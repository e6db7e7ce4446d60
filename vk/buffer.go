package vk

/*
#include <vulkan/vulkan.h>
*/
import "C"

// CreateBuffer creates an exclusive-sharing buffer.
func (device Device) CreateBuffer(size uint64, usage BufferUsageFlags) (Buffer, error) {
	var createInfo C.VkBufferCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_BUFFER_CREATE_INFO
	createInfo.size = C.VkDeviceSize(size)
	createInfo.usage = C.VkBufferUsageFlags(usage)
	createInfo.sharingMode = C.VK_SHARING_MODE_EXCLUSIVE

	var handle C.VkBuffer
	if result := C.vkCreateBuffer(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return Buffer{}, Result(result)
	}
	return Buffer{handle: handle}, nil
}

// DestroyBuffer destroys a buffer.
func (device Device) DestroyBuffer(buffer Buffer) {
	C.vkDestroyBuffer(device.handle, buffer.handle, nil)
}

// GetBufferMemoryRequirements queries the allocation requirements.
func (device Device) GetBufferMemoryRequirements(buffer Buffer) MemoryRequirements {
	var reqs C.VkMemoryRequirements
	C.vkGetBufferMemoryRequirements(device.handle, buffer.handle, &reqs)
	return MemoryRequirements{
		Size:           uint64(reqs.size),
		Alignment:      uint64(reqs.alignment),
		MemoryTypeBits: uint32(reqs.memoryTypeBits),
	}
}

// BindBufferMemory binds memory to a buffer.
func (device Device) BindBufferMemory(buffer Buffer, memory DeviceMemory, offset uint64) error {
	return asErr(int32(C.vkBindBufferMemory(device.handle, buffer.handle, memory.handle, C.VkDeviceSize(offset))))
}
