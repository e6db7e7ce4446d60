package vk

/*
#include <vulkan/vulkan.h>
*/
import "C"

// SwapchainCreateInfo configures CreateSwapchain.
type SwapchainCreateInfo struct {
	Surface       Surface
	MinImageCount uint32
	Format        Format
	ColorSpace    ColorSpace
	Extent        Extent2D
	Usage         ImageUsageFlags
	Transform     uint32
	PresentMode   PresentMode
	OldSwapchain  Swapchain
}

// CreateSwapchain creates a swapchain, optionally replacing an old one.
func (device Device) CreateSwapchain(info SwapchainCreateInfo) (Swapchain, error) {
	var createInfo C.VkSwapchainCreateInfoKHR
	createInfo.sType = C.VK_STRUCTURE_TYPE_SWAPCHAIN_CREATE_INFO_KHR
	createInfo.surface = info.Surface.handle
	createInfo.minImageCount = C.uint32_t(info.MinImageCount)
	createInfo.imageFormat = C.VkFormat(info.Format)
	createInfo.imageColorSpace = C.VkColorSpaceKHR(info.ColorSpace)
	createInfo.imageExtent = C.VkExtent2D{
		width:  C.uint32_t(info.Extent.Width),
		height: C.uint32_t(info.Extent.Height),
	}
	createInfo.imageArrayLayers = 1
	createInfo.imageUsage = C.VkImageUsageFlags(info.Usage)
	createInfo.imageSharingMode = C.VK_SHARING_MODE_EXCLUSIVE
	createInfo.preTransform = C.VkSurfaceTransformFlagBitsKHR(info.Transform)
	createInfo.compositeAlpha = C.VK_COMPOSITE_ALPHA_OPAQUE_BIT_KHR
	createInfo.presentMode = C.VkPresentModeKHR(info.PresentMode)
	createInfo.clipped = C.VK_TRUE
	createInfo.oldSwapchain = info.OldSwapchain.handle

	var handle C.VkSwapchainKHR
	if result := C.vkCreateSwapchainKHR(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return Swapchain{}, Result(result)
	}
	return Swapchain{handle: handle}, nil
}

// DestroySwapchain destroys a swapchain.
func (device Device) DestroySwapchain(swapchain Swapchain) {
	C.vkDestroySwapchainKHR(device.handle, swapchain.handle, nil)
}

// GetSwapchainImages lists the swapchain's images.
func (device Device) GetSwapchainImages(swapchain Swapchain) ([]Image, error) {
	var count C.uint32_t
	if result := C.vkGetSwapchainImagesKHR(device.handle, swapchain.handle, &count, nil); result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	handles := make([]C.VkImage, count)
	if result := C.vkGetSwapchainImagesKHR(device.handle, swapchain.handle, &count, &handles[0]); result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	images := make([]Image, count)
	for i := range images {
		images[i] = Image{handle: handles[i]}
	}
	return images, nil
}

// AcquireNextImage acquires a swapchain image, signaling the semaphore
// when the image is usable. Suboptimal and ErrOutOfDate come back as
// errors alongside a valid index for the former.
func (device Device) AcquireNextImage(swapchain Swapchain, timeout uint64, semaphore Semaphore) (uint32, error) {
	var index C.uint32_t
	result := C.vkAcquireNextImageKHR(device.handle, swapchain.handle, C.uint64_t(timeout), semaphore.handle, nil, &index)
	return uint32(index), asErr(int32(result))
}

// Present queues a present of one swapchain image, waiting on the given
// semaphore.
func (queue Queue) Present(swapchain Swapchain, imageIndex uint32, wait Semaphore) error {
	index := C.uint32_t(imageIndex)
	var presentInfo C.VkPresentInfoKHR
	presentInfo.sType = C.VK_STRUCTURE_TYPE_PRESENT_INFO_KHR
	presentInfo.waitSemaphoreCount = 1
	presentInfo.pWaitSemaphores = &wait.handle
	presentInfo.swapchainCount = 1
	presentInfo.pSwapchains = &swapchain.handle
	presentInfo.pImageIndices = &index

	return asErr(int32(C.vkQueuePresentKHR(queue.handle, &presentInfo)))
}

// WaitIdle drains the queue.
func (queue Queue) WaitIdle() error {
	return asErr(int32(C.vkQueueWaitIdle(queue.handle)))
}
