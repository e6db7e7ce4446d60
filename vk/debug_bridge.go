package vk

/*
#include <vulkan/vulkan.h>

extern VkBool32 pulsarDebugCallback(VkDebugUtilsMessageSeverityFlagBitsEXT severity,
	VkDebugUtilsMessageTypeFlagsEXT types,
	VkDebugUtilsMessengerCallbackDataEXT *data,
	void *userData);

static PFN_vkDebugUtilsMessengerCallbackEXT debugCallbackPtr(void) {
	return (PFN_vkDebugUtilsMessengerCallbackEXT)pulsarDebugCallback;
}

static VkResult callCreateDebugUtilsMessenger(PFN_vkCreateDebugUtilsMessengerEXT fn, VkInstance instance,
	const VkDebugUtilsMessengerCreateInfoEXT *createInfo, VkDebugUtilsMessengerEXT *messenger) {
	return fn(instance, createInfo, NULL, messenger);
}

static void callDestroyDebugUtilsMessenger(PFN_vkDestroyDebugUtilsMessengerEXT fn, VkInstance instance,
	VkDebugUtilsMessengerEXT messenger) {
	fn(instance, messenger, NULL);
}
*/
import "C"
import "github.com/pkg/errors"

// CreateDebugUtilsMessenger registers the package callback for the given
// severity and type masks. Requires ExtDebugUtils at instance creation.
func (instance Instance) CreateDebugUtilsMessenger(severities DebugSeverityFlags, types DebugTypeFlags) (DebugUtilsMessenger, error) {
	if instance.procs == nil || instance.procs.createDebugUtilsMessenger == nil {
		return DebugUtilsMessenger{}, errors.New("debug utils extension not loaded")
	}

	var createInfo C.VkDebugUtilsMessengerCreateInfoEXT
	createInfo.sType = C.VK_STRUCTURE_TYPE_DEBUG_UTILS_MESSENGER_CREATE_INFO_EXT
	createInfo.messageSeverity = C.VkDebugUtilsMessageSeverityFlagsEXT(severities)
	createInfo.messageType = C.VkDebugUtilsMessageTypeFlagsEXT(types)
	createInfo.pfnUserCallback = C.debugCallbackPtr()

	var handle C.VkDebugUtilsMessengerEXT
	result := C.callCreateDebugUtilsMessenger(instance.procs.createDebugUtilsMessenger, instance.handle, &createInfo, &handle)
	if result != C.VK_SUCCESS {
		return DebugUtilsMessenger{}, Result(result)
	}
	return DebugUtilsMessenger{handle: handle}, nil
}

// DestroyDebugUtilsMessenger unregisters a messenger.
func (instance Instance) DestroyDebugUtilsMessenger(messenger DebugUtilsMessenger) {
	if instance.procs == nil || instance.procs.destroyDebugUtilsMessenger == nil {
		return
	}
	C.callDestroyDebugUtilsMessenger(instance.procs.destroyDebugUtilsMessenger, instance.handle, messenger.handle)
}
