package vk

/*
#include <vulkan/vulkan.h>
*/
import "C"
import "unsafe"

// CreateSemaphore creates a binary semaphore.
func (device Device) CreateSemaphore() (Semaphore, error) {
	var createInfo C.VkSemaphoreCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_CREATE_INFO

	var handle C.VkSemaphore
	if result := C.vkCreateSemaphore(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return Semaphore{}, Result(result)
	}
	return Semaphore{handle: handle}, nil
}

// CreateTimelineSemaphore creates a timeline semaphore at initialValue.
func (device Device) CreateTimelineSemaphore(initialValue uint64) (Semaphore, error) {
	var typeInfo C.VkSemaphoreTypeCreateInfo
	typeInfo.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_TYPE_CREATE_INFO
	typeInfo.semaphoreType = C.VK_SEMAPHORE_TYPE_TIMELINE
	typeInfo.initialValue = C.uint64_t(initialValue)

	var createInfo C.VkSemaphoreCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_CREATE_INFO
	createInfo.pNext = unsafe.Pointer(&typeInfo)

	var handle C.VkSemaphore
	if result := C.vkCreateSemaphore(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return Semaphore{}, Result(result)
	}
	return Semaphore{handle: handle}, nil
}

// DestroySemaphore destroys a semaphore.
func (device Device) DestroySemaphore(semaphore Semaphore) {
	C.vkDestroySemaphore(device.handle, semaphore.handle, nil)
}

// GetSemaphoreCounterValue reads a timeline semaphore's current value.
func (device Device) GetSemaphoreCounterValue(semaphore Semaphore) (uint64, error) {
	var value C.uint64_t
	result := C.vkGetSemaphoreCounterValue(device.handle, semaphore.handle, &value)
	if result != C.VK_SUCCESS {
		return 0, Result(result)
	}
	return uint64(value), nil
}

// WaitSemaphore blocks until the timeline semaphore reaches value.
func (device Device) WaitSemaphore(semaphore Semaphore, value uint64, timeout uint64) error {
	cValue := C.uint64_t(value)
	var waitInfo C.VkSemaphoreWaitInfo
	waitInfo.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_WAIT_INFO
	waitInfo.semaphoreCount = 1
	waitInfo.pSemaphores = &semaphore.handle
	waitInfo.pValues = &cValue

	return asErr(int32(C.vkWaitSemaphores(device.handle, &waitInfo, C.uint64_t(timeout))))
}

// CreateFence creates a fence, optionally already signaled.
func (device Device) CreateFence(signaled bool) (Fence, error) {
	var createInfo C.VkFenceCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_FENCE_CREATE_INFO
	if signaled {
		createInfo.flags = C.VK_FENCE_CREATE_SIGNALED_BIT
	}

	var handle C.VkFence
	if result := C.vkCreateFence(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return Fence{}, Result(result)
	}
	return Fence{handle: handle}, nil
}

// DestroyFence destroys a fence.
func (device Device) DestroyFence(fence Fence) {
	C.vkDestroyFence(device.handle, fence.handle, nil)
}

// WaitForFence blocks until the fence signals or the timeout elapses.
func (device Device) WaitForFence(fence Fence, timeout uint64) error {
	return asErr(int32(C.vkWaitForFences(device.handle, 1, &fence.handle, C.VK_TRUE, C.uint64_t(timeout))))
}

// ResetFence unsignals the fence.
func (device Device) ResetFence(fence Fence) error {
	return asErr(int32(C.vkResetFences(device.handle, 1, &fence.handle)))
}
