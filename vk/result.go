package vk

import "fmt"

// Result mirrors VkResult and implements error. Success codes other than
// VK_SUCCESS (NotReady, Timeout, Suboptimal) are still Results so callers
// can match them with errors.Is.
type Result int32

// Result codes the renderer handles.
const (
	Success               Result = 0
	NotReady              Result = 1
	Timeout               Result = 2
	EventSet              Result = 3
	EventReset            Result = 4
	Incomplete            Result = 5
	ErrOutOfHostMemory    Result = -1
	ErrOutOfDeviceMemory  Result = -2
	ErrInitializationFailed Result = -3
	ErrDeviceLost         Result = -4
	ErrMemoryMapFailed    Result = -5
	ErrLayerNotPresent    Result = -6
	ErrExtensionNotPresent Result = -7
	ErrFeatureNotPresent  Result = -8
	ErrIncompatibleDriver Result = -9
	ErrTooManyObjects     Result = -10
	ErrFormatNotSupported Result = -11
	ErrFragmentedPool     Result = -12
	ErrUnknown            Result = -13
	ErrOutOfPoolMemory    Result = -1000069000
	ErrInvalidExternalHandle Result = -1000072003
	ErrSurfaceLost        Result = -1000000000
	ErrNativeWindowInUse  Result = -1000000001
	Suboptimal            Result = 1000001003
	ErrOutOfDate          Result = -1000001004
	ErrValidationFailed   Result = -1000011001
	ErrInvalidShader      Result = -1000012000
)

func (r Result) Error() string {
	switch r {
	case Success:
		return "success"
	case NotReady:
		return "not ready"
	case Timeout:
		return "timeout"
	case Incomplete:
		return "incomplete"
	case ErrOutOfHostMemory:
		return "out of host memory"
	case ErrOutOfDeviceMemory:
		return "out of device memory"
	case ErrInitializationFailed:
		return "initialization failed"
	case ErrDeviceLost:
		return "device lost"
	case ErrMemoryMapFailed:
		return "memory map failed"
	case ErrLayerNotPresent:
		return "layer not present"
	case ErrExtensionNotPresent:
		return "extension not present"
	case ErrFeatureNotPresent:
		return "feature not present"
	case ErrIncompatibleDriver:
		return "incompatible driver"
	case ErrTooManyObjects:
		return "too many objects"
	case ErrFormatNotSupported:
		return "format not supported"
	case ErrFragmentedPool:
		return "fragmented pool"
	case ErrOutOfPoolMemory:
		return "out of pool memory"
	case ErrSurfaceLost:
		return "surface lost"
	case ErrNativeWindowInUse:
		return "native window in use"
	case Suboptimal:
		return "suboptimal"
	case ErrOutOfDate:
		return "out of date"
	case ErrValidationFailed:
		return "validation failed"
	case ErrInvalidShader:
		return "invalid shader"
	default:
		return fmt.Sprintf("vk result %d", int32(r))
	}
}

// result converts a C VkResult to error, mapping VK_SUCCESS to nil.
func asErr(r int32) error {
	if Result(r) == Success {
		return nil
	}
	return Result(r)
}
