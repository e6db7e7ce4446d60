package vk

/*
#include <vulkan/vulkan.h>
*/
import "C"
import "unsafe"

// ImageCreateInfo configures CreateImage. Sharing is always exclusive and
// the initial layout Undefined.
type ImageCreateInfo struct {
	Flags       ImageCreateFlags
	Format      Format
	Extent      Extent2D
	MipLevels   uint32
	ArrayLayers uint32
	Samples     SampleCountFlags
	Tiling      ImageTiling
	Usage       ImageUsageFlags
}

// CreateImage creates a 2D image.
func (device Device) CreateImage(info ImageCreateInfo) (Image, error) {
	var createInfo C.VkImageCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_IMAGE_CREATE_INFO
	createInfo.flags = C.VkImageCreateFlags(info.Flags)
	createInfo.imageType = C.VK_IMAGE_TYPE_2D
	createInfo.format = C.VkFormat(info.Format)
	createInfo.extent = C.VkExtent3D{
		width:  C.uint32_t(info.Extent.Width),
		height: C.uint32_t(info.Extent.Height),
		depth:  1,
	}
	createInfo.mipLevels = C.uint32_t(info.MipLevels)
	createInfo.arrayLayers = C.uint32_t(info.ArrayLayers)
	createInfo.samples = C.VkSampleCountFlagBits(info.Samples)
	createInfo.tiling = C.VkImageTiling(info.Tiling)
	createInfo.usage = C.VkImageUsageFlags(info.Usage)
	createInfo.sharingMode = C.VK_SHARING_MODE_EXCLUSIVE
	createInfo.initialLayout = C.VK_IMAGE_LAYOUT_UNDEFINED

	var handle C.VkImage
	if result := C.vkCreateImage(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return Image{}, Result(result)
	}
	return Image{handle: handle}, nil
}

// DestroyImage destroys an image.
func (device Device) DestroyImage(image Image) {
	C.vkDestroyImage(device.handle, image.handle, nil)
}

// GetImageMemoryRequirements queries the allocation requirements.
func (device Device) GetImageMemoryRequirements(image Image) MemoryRequirements {
	var reqs C.VkMemoryRequirements
	C.vkGetImageMemoryRequirements(device.handle, image.handle, &reqs)
	return MemoryRequirements{
		Size:           uint64(reqs.size),
		Alignment:      uint64(reqs.alignment),
		MemoryTypeBits: uint32(reqs.memoryTypeBits),
	}
}

// BindImageMemory binds memory to an image.
func (device Device) BindImageMemory(image Image, memory DeviceMemory, offset uint64) error {
	return asErr(int32(C.vkBindImageMemory(device.handle, image.handle, memory.handle, C.VkDeviceSize(offset))))
}

// ImageSubresourceRange mirrors VkImageSubresourceRange.
type ImageSubresourceRange struct {
	AspectMask     ImageAspectFlags
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

func (r ImageSubresourceRange) vulkanize() C.VkImageSubresourceRange {
	return C.VkImageSubresourceRange{
		aspectMask:     C.VkImageAspectFlags(r.AspectMask),
		baseMipLevel:   C.uint32_t(r.BaseMipLevel),
		levelCount:     C.uint32_t(r.LevelCount),
		baseArrayLayer: C.uint32_t(r.BaseArrayLayer),
		layerCount:     C.uint32_t(r.LayerCount),
	}
}

// ImageViewCreateInfo configures CreateImageView. Conversion, when set,
// chains a VkSamplerYcbcrConversionInfo.
type ImageViewCreateInfo struct {
	Image            Image
	ViewType         ImageViewType
	Format           Format
	SubresourceRange ImageSubresourceRange
	Conversion       SamplerYcbcrConversion
}

// CreateImageView creates an image view.
func (device Device) CreateImageView(info ImageViewCreateInfo) (ImageView, error) {
	var createInfo C.VkImageViewCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_IMAGE_VIEW_CREATE_INFO
	createInfo.image = info.Image.handle
	createInfo.viewType = C.VkImageViewType(info.ViewType)
	createInfo.format = C.VkFormat(info.Format)
	createInfo.subresourceRange = info.SubresourceRange.vulkanize()

	var conversionInfo C.VkSamplerYcbcrConversionInfo
	if info.Conversion.handle != nil {
		conversionInfo.sType = C.VK_STRUCTURE_TYPE_SAMPLER_YCBCR_CONVERSION_INFO
		conversionInfo.conversion = info.Conversion.handle
		createInfo.pNext = unsafe.Pointer(&conversionInfo)
	}

	var handle C.VkImageView
	if result := C.vkCreateImageView(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return ImageView{}, Result(result)
	}
	return ImageView{handle: handle}, nil
}

// DestroyImageView destroys a view.
func (device Device) DestroyImageView(view ImageView) {
	C.vkDestroyImageView(device.handle, view.handle, nil)
}

// SamplerCreateInfo configures CreateSampler. Conversion, when set, makes
// the sampler immutable-conversion YCbCr.
type SamplerCreateInfo struct {
	MagFilter        Filter
	MinFilter        Filter
	MipmapMode       SamplerMipmapMode
	AddressMode      SamplerAddressMode
	MaxLod           float32
	AnisotropyEnable bool
	MaxAnisotropy    float32
	Conversion       SamplerYcbcrConversion
}

// CreateSampler creates a sampler.
func (device Device) CreateSampler(info SamplerCreateInfo) (Sampler, error) {
	var createInfo C.VkSamplerCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_SAMPLER_CREATE_INFO
	createInfo.magFilter = C.VkFilter(info.MagFilter)
	createInfo.minFilter = C.VkFilter(info.MinFilter)
	createInfo.mipmapMode = C.VkSamplerMipmapMode(info.MipmapMode)
	createInfo.addressModeU = C.VkSamplerAddressMode(info.AddressMode)
	createInfo.addressModeV = C.VkSamplerAddressMode(info.AddressMode)
	createInfo.addressModeW = C.VkSamplerAddressMode(info.AddressMode)
	createInfo.maxLod = C.float(info.MaxLod)
	if info.AnisotropyEnable {
		createInfo.anisotropyEnable = C.VK_TRUE
		createInfo.maxAnisotropy = C.float(info.MaxAnisotropy)
	}
	createInfo.borderColor = C.VK_BORDER_COLOR_FLOAT_OPAQUE_BLACK

	var conversionInfo C.VkSamplerYcbcrConversionInfo
	if info.Conversion.handle != nil {
		conversionInfo.sType = C.VK_STRUCTURE_TYPE_SAMPLER_YCBCR_CONVERSION_INFO
		conversionInfo.conversion = info.Conversion.handle
		createInfo.pNext = unsafe.Pointer(&conversionInfo)
	}

	var handle C.VkSampler
	if result := C.vkCreateSampler(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return Sampler{}, Result(result)
	}
	return Sampler{handle: handle}, nil
}

// DestroySampler destroys a sampler.
func (device Device) DestroySampler(sampler Sampler) {
	C.vkDestroySampler(device.handle, sampler.handle, nil)
}

// YcbcrConversionCreateInfo configures CreateSamplerYcbcrConversion.
type YcbcrConversionCreateInfo struct {
	Format        Format
	Model         YcbcrModelConversion
	Range         YcbcrRange
	ChromaOffset  ChromaLocation
	ChromaFilter  Filter
}

// CreateSamplerYcbcrConversion creates a YCbCr conversion object.
func (device Device) CreateSamplerYcbcrConversion(info YcbcrConversionCreateInfo) (SamplerYcbcrConversion, error) {
	var createInfo C.VkSamplerYcbcrConversionCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_SAMPLER_YCBCR_CONVERSION_CREATE_INFO
	createInfo.format = C.VkFormat(info.Format)
	createInfo.ycbcrModel = C.VkSamplerYcbcrModelConversion(info.Model)
	createInfo.ycbcrRange = C.VkSamplerYcbcrRange(info.Range)
	createInfo.components = C.VkComponentMapping{
		r: C.VK_COMPONENT_SWIZZLE_IDENTITY,
		g: C.VK_COMPONENT_SWIZZLE_IDENTITY,
		b: C.VK_COMPONENT_SWIZZLE_IDENTITY,
		a: C.VK_COMPONENT_SWIZZLE_IDENTITY,
	}
	createInfo.xChromaOffset = C.VkChromaLocation(info.ChromaOffset)
	createInfo.yChromaOffset = C.VkChromaLocation(info.ChromaOffset)
	createInfo.chromaFilter = C.VkFilter(info.ChromaFilter)

	var handle C.VkSamplerYcbcrConversion
	if result := C.vkCreateSamplerYcbcrConversion(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return SamplerYcbcrConversion{}, Result(result)
	}
	return SamplerYcbcrConversion{handle: handle}, nil
}

// DestroySamplerYcbcrConversion destroys a conversion object.
func (device Device) DestroySamplerYcbcrConversion(conversion SamplerYcbcrConversion) {
	C.vkDestroySamplerYcbcrConversion(device.handle, conversion.handle, nil)
}
