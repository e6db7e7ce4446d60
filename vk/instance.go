package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>

static PFN_vkCreateDebugUtilsMessengerEXT loadCreateDebugUtilsMessenger(VkInstance instance) {
	return (PFN_vkCreateDebugUtilsMessengerEXT)vkGetInstanceProcAddr(instance, "vkCreateDebugUtilsMessengerEXT");
}

static PFN_vkDestroyDebugUtilsMessengerEXT loadDestroyDebugUtilsMessenger(VkInstance instance) {
	return (PFN_vkDestroyDebugUtilsMessengerEXT)vkGetInstanceProcAddr(instance, "vkDestroyDebugUtilsMessengerEXT");
}
*/
import "C"
import "unsafe"

type instanceProcs struct {
	createDebugUtilsMessenger  C.PFN_vkCreateDebugUtilsMessengerEXT
	destroyDebugUtilsMessenger C.PFN_vkDestroyDebugUtilsMessengerEXT
}

// InstanceCreateInfo configures CreateInstance.
type InstanceCreateInfo struct {
	ApplicationName string
	EngineName      string
	APIVersion      uint32
	Extensions      []string
	Layers          []string
}

// CreateInstance creates a Vulkan instance and resolves the debug-utils
// entry points when the extension was requested.
func CreateInstance(info InstanceCreateInfo) (Instance, error) {
	appName := C.CString(info.ApplicationName)
	defer C.free(unsafe.Pointer(appName))
	engineName := C.CString(info.EngineName)
	defer C.free(unsafe.Pointer(engineName))

	var appInfo C.VkApplicationInfo
	appInfo.sType = C.VK_STRUCTURE_TYPE_APPLICATION_INFO
	appInfo.pApplicationName = appName
	appInfo.pEngineName = engineName
	appInfo.apiVersion = C.uint32_t(info.APIVersion)

	extensions := make([]*C.char, len(info.Extensions))
	for i, ext := range info.Extensions {
		extensions[i] = C.CString(ext)
		defer C.free(unsafe.Pointer(extensions[i]))
	}
	layers := make([]*C.char, len(info.Layers))
	for i, layer := range info.Layers {
		layers[i] = C.CString(layer)
		defer C.free(unsafe.Pointer(layers[i]))
	}

	var createInfo C.VkInstanceCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_INSTANCE_CREATE_INFO
	createInfo.pApplicationInfo = &appInfo
	if len(extensions) > 0 {
		createInfo.enabledExtensionCount = C.uint32_t(len(extensions))
		createInfo.ppEnabledExtensionNames = &extensions[0]
	}
	if len(layers) > 0 {
		createInfo.enabledLayerCount = C.uint32_t(len(layers))
		createInfo.ppEnabledLayerNames = &layers[0]
	}

	var handle C.VkInstance
	if result := C.vkCreateInstance(&createInfo, nil, &handle); result != C.VK_SUCCESS {
		return Instance{}, Result(result)
	}

	instance := Instance{handle: handle, procs: &instanceProcs{}}
	for _, ext := range info.Extensions {
		if ext == ExtDebugUtils {
			instance.procs.createDebugUtilsMessenger = C.loadCreateDebugUtilsMessenger(handle)
			instance.procs.destroyDebugUtilsMessenger = C.loadDestroyDebugUtilsMessenger(handle)
		}
	}
	return instance, nil
}

// Destroy destroys the instance.
func (instance Instance) Destroy() {
	C.vkDestroyInstance(instance.handle, nil)
}

// Handle returns the raw VkInstance as a uintptr for handoff to windowing
// libraries that create the surface.
func (instance Instance) Handle() uintptr {
	return uintptr(unsafe.Pointer(instance.handle))
}

// EnumeratePhysicalDevices lists the physical devices of the instance.
func (instance Instance) EnumeratePhysicalDevices() ([]PhysicalDevice, error) {
	var count C.uint32_t
	if result := C.vkEnumeratePhysicalDevices(instance.handle, &count, nil); result != C.VK_SUCCESS {
		return nil, Result(result)
	}
	if count == 0 {
		return nil, nil
	}

	handles := make([]C.VkPhysicalDevice, count)
	if result := C.vkEnumeratePhysicalDevices(instance.handle, &count, &handles[0]); result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	devices := make([]PhysicalDevice, count)
	for i := range devices {
		devices[i] = PhysicalDevice{handle: handles[i]}
	}
	return devices, nil
}

// DestroySurface destroys a surface owned by this instance.
func (instance Instance) DestroySurface(surface Surface) {
	C.vkDestroySurfaceKHR(instance.handle, surface.handle, nil)
}
