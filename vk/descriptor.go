package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// DescriptorSetLayoutBinding describes one binding of a set layout.
// ImmutableSampler, when set, bakes the sampler into the layout; the
// binding's Count must be 1.
type DescriptorSetLayoutBinding struct {
	Binding          uint32
	Type             DescriptorType
	Count            uint32
	Stages           ShaderStageFlags
	Flags            DescriptorBindingFlags
	ImmutableSampler Sampler
}

// CreateDescriptorSetLayout creates a set layout. With pushDescriptor the
// layout gets the push-descriptor create flag and cannot be allocated
// from a pool. Binding flags, when any are non-zero, are chained through
// VkDescriptorSetLayoutBindingFlagsCreateInfo.
func (device Device) CreateDescriptorSetLayout(bindings []DescriptorSetLayoutBinding, pushDescriptor bool) (DescriptorSetLayout, error) {
	cBindings := (*C.VkDescriptorSetLayoutBinding)(C.calloc(C.size_t(len(bindings)), C.sizeof_VkDescriptorSetLayoutBinding))
	defer C.free(unsafe.Pointer(cBindings))
	bindingSlice := unsafe.Slice(cBindings, len(bindings))

	anyFlags := false
	cFlags := (*C.VkDescriptorBindingFlags)(C.calloc(C.size_t(len(bindings)), C.sizeof_VkDescriptorBindingFlags))
	defer C.free(unsafe.Pointer(cFlags))
	flagSlice := unsafe.Slice(cFlags, len(bindings))

	samplers := (*C.VkSampler)(C.calloc(C.size_t(len(bindings)), C.sizeof_VkSampler))
	defer C.free(unsafe.Pointer(samplers))
	samplerSlice := unsafe.Slice(samplers, len(bindings))

	for i, b := range bindings {
		bindingSlice[i].binding = C.uint32_t(b.Binding)
		bindingSlice[i].descriptorType = C.VkDescriptorType(b.Type)
		bindingSlice[i].descriptorCount = C.uint32_t(b.Count)
		bindingSlice[i].stageFlags = C.VkShaderStageFlags(b.Stages)
		if b.ImmutableSampler != (Sampler{}) {
			samplerSlice[i] = b.ImmutableSampler.handle
			bindingSlice[i].pImmutableSamplers = &samplerSlice[i]
		}
		flagSlice[i] = C.VkDescriptorBindingFlags(b.Flags)
		if b.Flags != 0 {
			anyFlags = true
		}
	}

	var createInfo C.VkDescriptorSetLayoutCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_CREATE_INFO
	createInfo.bindingCount = C.uint32_t(len(bindings))
	createInfo.pBindings = cBindings
	if pushDescriptor {
		createInfo.flags = C.VK_DESCRIPTOR_SET_LAYOUT_CREATE_PUSH_DESCRIPTOR_BIT_KHR
	}

	var flagsInfo C.VkDescriptorSetLayoutBindingFlagsCreateInfo
	if anyFlags {
		flagsInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_BINDING_FLAGS_CREATE_INFO
		flagsInfo.bindingCount = C.uint32_t(len(bindings))
		flagsInfo.pBindingFlags = cFlags
		createInfo.pNext = unsafe.Pointer(&flagsInfo)
	}

	var handle C.VkDescriptorSetLayout
	if result := C.vkCreateDescriptorSetLayout(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return DescriptorSetLayout{}, Result(result)
	}
	return DescriptorSetLayout{handle: handle}, nil
}

// DestroyDescriptorSetLayout destroys a set layout.
func (device Device) DestroyDescriptorSetLayout(layout DescriptorSetLayout) {
	C.vkDestroyDescriptorSetLayout(device.handle, layout.handle, nil)
}

// DescriptorPoolSize sizes one descriptor type in a pool.
type DescriptorPoolSize struct {
	Type  DescriptorType
	Count uint32
}

// CreateDescriptorPool creates a pool for maxSets sets.
func (device Device) CreateDescriptorPool(maxSets uint32, sizes []DescriptorPoolSize) (DescriptorPool, error) {
	cSizes := (*C.VkDescriptorPoolSize)(C.calloc(C.size_t(len(sizes)), C.sizeof_VkDescriptorPoolSize))
	defer C.free(unsafe.Pointer(cSizes))
	sizeSlice := unsafe.Slice(cSizes, len(sizes))
	for i, s := range sizes {
		sizeSlice[i]._type = C.VkDescriptorType(s.Type)
		sizeSlice[i].descriptorCount = C.uint32_t(s.Count)
	}

	var createInfo C.VkDescriptorPoolCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_POOL_CREATE_INFO
	createInfo.maxSets = C.uint32_t(maxSets)
	createInfo.poolSizeCount = C.uint32_t(len(sizes))
	createInfo.pPoolSizes = cSizes

	var handle C.VkDescriptorPool
	if result := C.vkCreateDescriptorPool(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return DescriptorPool{}, Result(result)
	}
	return DescriptorPool{handle: handle}, nil
}

// CreateFreeableDescriptorPool creates a pool whose sets may be
// returned individually with FreeDescriptorSet.
func (device Device) CreateFreeableDescriptorPool(maxSets uint32, sizes []DescriptorPoolSize) (DescriptorPool, error) {
	cSizes := (*C.VkDescriptorPoolSize)(C.calloc(C.size_t(len(sizes)), C.sizeof_VkDescriptorPoolSize))
	defer C.free(unsafe.Pointer(cSizes))
	sizeSlice := unsafe.Slice(cSizes, len(sizes))
	for i, s := range sizes {
		sizeSlice[i]._type = C.VkDescriptorType(s.Type)
		sizeSlice[i].descriptorCount = C.uint32_t(s.Count)
	}

	var createInfo C.VkDescriptorPoolCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_POOL_CREATE_INFO
	createInfo.flags = C.VK_DESCRIPTOR_POOL_CREATE_FREE_DESCRIPTOR_SET_BIT
	createInfo.maxSets = C.uint32_t(maxSets)
	createInfo.poolSizeCount = C.uint32_t(len(sizes))
	createInfo.pPoolSizes = cSizes

	var handle C.VkDescriptorPool
	if result := C.vkCreateDescriptorPool(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return DescriptorPool{}, Result(result)
	}
	return DescriptorPool{handle: handle}, nil
}

// DestroyDescriptorPool destroys a pool and frees its sets.
func (device Device) DestroyDescriptorPool(pool DescriptorPool) {
	C.vkDestroyDescriptorPool(device.handle, pool.handle, nil)
}

// FreeDescriptorSet returns one set to a freeable pool.
func (device Device) FreeDescriptorSet(pool DescriptorPool, set DescriptorSet) {
	C.vkFreeDescriptorSets(device.handle, pool.handle, 1, &set.handle)
}

// AllocateDescriptorSet allocates one set from a pool.
func (device Device) AllocateDescriptorSet(pool DescriptorPool, layout DescriptorSetLayout) (DescriptorSet, error) {
	var allocInfo C.VkDescriptorSetAllocateInfo
	allocInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_ALLOCATE_INFO
	allocInfo.descriptorPool = pool.handle
	allocInfo.descriptorSetCount = 1
	allocInfo.pSetLayouts = &layout.handle

	var handle C.VkDescriptorSet
	if result := C.vkAllocateDescriptorSets(device.handle, &allocInfo, &handle); result != C.VK_SUCCESS {
		return DescriptorSet{}, Result(result)
	}
	return DescriptorSet{handle: handle}, nil
}

// DescriptorBufferInfo mirrors VkDescriptorBufferInfo.
type DescriptorBufferInfo struct {
	Buffer Buffer
	Offset uint64
	Range  uint64
}

// DescriptorImageInfo mirrors VkDescriptorImageInfo.
type DescriptorImageInfo struct {
	Sampler     Sampler
	ImageView   ImageView
	ImageLayout ImageLayout
}

// WriteDescriptorSet is one descriptor write. Exactly one of Buffers or
// Images must be populated according to Type.
type WriteDescriptorSet struct {
	DstBinding      uint32
	DstArrayElement uint32
	Type            DescriptorType
	Buffers         []DescriptorBufferInfo
	Images          []DescriptorImageInfo
}

// marshalWrites builds C-allocated write structs. dst may be the null set
// for push-descriptor writes. The returned func frees all allocations.
func marshalWrites(dst DescriptorSet, writes []WriteDescriptorSet) (*C.VkWriteDescriptorSet, func()) {
	arr := (*C.VkWriteDescriptorSet)(C.calloc(C.size_t(len(writes)), C.sizeof_VkWriteDescriptorSet))
	frees := []unsafe.Pointer{unsafe.Pointer(arr)}
	slice := unsafe.Slice(arr, len(writes))

	for i, w := range writes {
		slice[i].sType = C.VK_STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET
		slice[i].dstSet = dst.handle
		slice[i].dstBinding = C.uint32_t(w.DstBinding)
		slice[i].dstArrayElement = C.uint32_t(w.DstArrayElement)
		slice[i].descriptorType = C.VkDescriptorType(w.Type)

		switch {
		case len(w.Buffers) > 0:
			infos := (*C.VkDescriptorBufferInfo)(C.calloc(C.size_t(len(w.Buffers)), C.sizeof_VkDescriptorBufferInfo))
			frees = append(frees, unsafe.Pointer(infos))
			infoSlice := unsafe.Slice(infos, len(w.Buffers))
			for j, b := range w.Buffers {
				infoSlice[j].buffer = b.Buffer.handle
				infoSlice[j].offset = C.VkDeviceSize(b.Offset)
				infoSlice[j]._range = C.VkDeviceSize(b.Range)
			}
			slice[i].descriptorCount = C.uint32_t(len(w.Buffers))
			slice[i].pBufferInfo = infos
		case len(w.Images) > 0:
			infos := (*C.VkDescriptorImageInfo)(C.calloc(C.size_t(len(w.Images)), C.sizeof_VkDescriptorImageInfo))
			frees = append(frees, unsafe.Pointer(infos))
			infoSlice := unsafe.Slice(infos, len(w.Images))
			for j, im := range w.Images {
				infoSlice[j].sampler = im.Sampler.handle
				infoSlice[j].imageView = im.ImageView.handle
				infoSlice[j].imageLayout = C.VkImageLayout(im.ImageLayout)
			}
			slice[i].descriptorCount = C.uint32_t(len(w.Images))
			slice[i].pImageInfo = infos
		}
	}

	return arr, func() {
		for _, p := range frees {
			C.free(p)
		}
	}
}

// UpdateDescriptorSets applies descriptor writes to a set.
func (device Device) UpdateDescriptorSets(dst DescriptorSet, writes []WriteDescriptorSet) {
	if len(writes) == 0 {
		return
	}
	arr, free := marshalWrites(dst, writes)
	defer free()
	C.vkUpdateDescriptorSets(device.handle, C.uint32_t(len(writes)), arr, 0, nil)
}
