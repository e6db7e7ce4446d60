package vk

/*
#include <vulkan/vulkan.h>

extern VkBool32 pulsarDebugCallback(VkDebugUtilsMessageSeverityFlagBitsEXT severity,
	VkDebugUtilsMessageTypeFlagsEXT types,
	VkDebugUtilsMessengerCallbackDataEXT *data,
	void *userData);
*/
import "C"
import (
	"sync"
	"unsafe"
)

// DebugMessage is one validation layer message.
type DebugMessage struct {
	Severity    DebugSeverityFlags
	Types       DebugTypeFlags
	IDNumber    int32
	IDName      string
	Message     string
	QueueLabels []string
	CmdLabels   []string
	Objects     []string
}

// DebugHandler receives validation layer messages.
type DebugHandler func(message DebugMessage)

var (
	debugMu      sync.RWMutex
	debugHandler DebugHandler
)

// SetDebugHandler installs the process-wide handler invoked by the
// debug-utils messenger. A nil handler drops messages.
func SetDebugHandler(handler DebugHandler) {
	debugMu.Lock()
	debugHandler = handler
	debugMu.Unlock()
}

//export pulsarDebugCallback
func pulsarDebugCallback(severity C.VkDebugUtilsMessageSeverityFlagBitsEXT, types C.VkDebugUtilsMessageTypeFlagsEXT, data *C.VkDebugUtilsMessengerCallbackDataEXT, userData unsafe.Pointer) C.VkBool32 {
	debugMu.RLock()
	handler := debugHandler
	debugMu.RUnlock()

	if handler == nil || data == nil {
		return C.VK_FALSE
	}

	message := DebugMessage{
		Severity: DebugSeverityFlags(severity),
		Types:    DebugTypeFlags(types),
		IDNumber: int32(data.messageIdNumber),
		Message:  C.GoString(data.pMessage),
	}
	if data.pMessageIdName != nil {
		message.IDName = C.GoString(data.pMessageIdName)
	}

	if data.queueLabelCount > 0 && data.pQueueLabels != nil {
		labels := unsafe.Slice(data.pQueueLabels, data.queueLabelCount)
		for _, label := range labels {
			message.QueueLabels = append(message.QueueLabels, C.GoString(label.pLabelName))
		}
	}
	if data.cmdBufLabelCount > 0 && data.pCmdBufLabels != nil {
		labels := unsafe.Slice(data.pCmdBufLabels, data.cmdBufLabelCount)
		for _, label := range labels {
			message.CmdLabels = append(message.CmdLabels, C.GoString(label.pLabelName))
		}
	}
	if data.objectCount > 0 && data.pObjects != nil {
		objects := unsafe.Slice(data.pObjects, data.objectCount)
		for _, object := range objects {
			if object.pObjectName != nil {
				message.Objects = append(message.Objects, C.GoString(object.pObjectName))
			}
		}
	}

	handler(message)
	return C.VK_FALSE
}
