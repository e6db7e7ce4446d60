package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"
import "unsafe"

// CreateShaderModule builds a module from SPIR-V words.
func (device Device) CreateShaderModule(code []uint32) (ShaderModule, error) {
	var createInfo C.VkShaderModuleCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_SHADER_MODULE_CREATE_INFO
	createInfo.codeSize = C.size_t(len(code) * 4)
	createInfo.pCode = (*C.uint32_t)(unsafe.Pointer(&code[0]))

	var handle C.VkShaderModule
	if result := C.vkCreateShaderModule(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return ShaderModule{}, Result(result)
	}
	return ShaderModule{handle: handle}, nil
}

// DestroyShaderModule destroys a module.
func (device Device) DestroyShaderModule(module ShaderModule) {
	C.vkDestroyShaderModule(device.handle, module.handle, nil)
}

// PushConstantRange mirrors VkPushConstantRange.
type PushConstantRange struct {
	Stages ShaderStageFlags
	Offset uint32
	Size   uint32
}

// CreatePipelineLayout creates a pipeline layout.
func (device Device) CreatePipelineLayout(setLayouts []DescriptorSetLayout, pushConstants []PushConstantRange) (PipelineLayout, error) {
	cLayouts := make([]C.VkDescriptorSetLayout, len(setLayouts))
	for i, l := range setLayouts {
		cLayouts[i] = l.handle
	}
	cRanges := make([]C.VkPushConstantRange, len(pushConstants))
	for i, r := range pushConstants {
		cRanges[i].stageFlags = C.VkShaderStageFlags(r.Stages)
		cRanges[i].offset = C.uint32_t(r.Offset)
		cRanges[i].size = C.uint32_t(r.Size)
	}

	var createInfo C.VkPipelineLayoutCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_PIPELINE_LAYOUT_CREATE_INFO
	if len(cLayouts) > 0 {
		createInfo.setLayoutCount = C.uint32_t(len(cLayouts))
		createInfo.pSetLayouts = &cLayouts[0]
	}
	if len(cRanges) > 0 {
		createInfo.pushConstantRangeCount = C.uint32_t(len(cRanges))
		createInfo.pPushConstantRanges = &cRanges[0]
	}

	var handle C.VkPipelineLayout
	if result := C.vkCreatePipelineLayout(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return PipelineLayout{}, Result(result)
	}
	return PipelineLayout{handle: handle}, nil
}

// DestroyPipelineLayout destroys a pipeline layout.
func (device Device) DestroyPipelineLayout(layout PipelineLayout) {
	C.vkDestroyPipelineLayout(device.handle, layout.handle, nil)
}

// CreatePipelineCache creates a pipeline cache, optionally seeded with a
// previously retrieved data blob.
func (device Device) CreatePipelineCache(initialData []byte) (PipelineCache, error) {
	var createInfo C.VkPipelineCacheCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_PIPELINE_CACHE_CREATE_INFO
	if len(initialData) > 0 {
		createInfo.initialDataSize = C.size_t(len(initialData))
		createInfo.pInitialData = unsafe.Pointer(&initialData[0])
	}

	var handle C.VkPipelineCache
	if result := C.vkCreatePipelineCache(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return PipelineCache{}, Result(result)
	}
	return PipelineCache{handle: handle}, nil
}

// DestroyPipelineCache destroys a pipeline cache.
func (device Device) DestroyPipelineCache(cache PipelineCache) {
	C.vkDestroyPipelineCache(device.handle, cache.handle, nil)
}

// GetPipelineCacheData retrieves the driver cache blob.
func (device Device) GetPipelineCacheData(cache PipelineCache) ([]byte, error) {
	var size C.size_t
	if result := C.vkGetPipelineCacheData(device.handle, cache.handle, &size, nil); result != C.VK_SUCCESS {
		return nil, Result(result)
	}
	if size == 0 {
		return nil, nil
	}

	data := make([]byte, size)
	if result := C.vkGetPipelineCacheData(device.handle, cache.handle, &size, unsafe.Pointer(&data[0])); result != C.VK_SUCCESS {
		return nil, Result(result)
	}
	return data[:size], nil
}

// DestroyPipeline destroys a pipeline.
func (device Device) DestroyPipeline(pipeline Pipeline) {
	C.vkDestroyPipeline(device.handle, pipeline.handle, nil)
}

// VertexInputBinding describes one vertex buffer binding.
type VertexInputBinding struct {
	Binding      uint32
	Stride       uint32
	InstanceRate bool
}

// VertexInputAttribute describes one vertex attribute.
type VertexInputAttribute struct {
	Location uint32
	Binding  uint32
	Format   Format
	Offset   uint32
}

// VertexBindingDivisor describes an instance-rate divisor above one.
type VertexBindingDivisor struct {
	Binding uint32
	Divisor uint32
}

// BlendAttachmentState is the per-attachment blend configuration,
// replicated across all color attachments of a pipeline.
type BlendAttachmentState struct {
	BlendEnable    bool
	SrcColorFactor BlendFactor
	DstColorFactor BlendFactor
	ColorOp        BlendOp
	SrcAlphaFactor BlendFactor
	DstAlphaFactor BlendFactor
	AlphaOp        BlendOp
	WriteMask      ColorComponentFlags
}

// StencilOpState is one stencil face's static pipeline state.
type StencilOpState struct {
	FailOp      StencilOp
	PassOp      StencilOp
	DepthFailOp StencilOp
	CompareOp   CompareOp
	CompareMask uint32
	WriteMask   uint32
	Reference   uint32
}

func (s StencilOpState) vulkanize() C.VkStencilOpState {
	return C.VkStencilOpState{
		failOp:      C.VkStencilOp(s.FailOp),
		passOp:      C.VkStencilOp(s.PassOp),
		depthFailOp: C.VkStencilOp(s.DepthFailOp),
		compareOp:   C.VkCompareOp(s.CompareOp),
		compareMask: C.uint32_t(s.CompareMask),
		writeMask:   C.uint32_t(s.WriteMask),
		reference:   C.uint32_t(s.Reference),
	}
}

// DepthStencilState is the static depth/stencil pipeline state.
type DepthStencilState struct {
	DepthTestEnable   bool
	DepthWriteEnable  bool
	DepthCompareOp    CompareOp
	StencilTestEnable bool
	Front             StencilOpState
	Back              StencilOpState
}

// GraphicsPipelineCreateInfo configures CreateGraphicsPipeline. The
// pipeline always renders through dynamic rendering; attachment formats
// are carried in a VkPipelineRenderingCreateInfo chain.
type GraphicsPipelineCreateInfo struct {
	VertModule ShaderModule
	FragModule ShaderModule

	VertexBindings   []VertexInputBinding
	VertexAttributes []VertexInputAttribute
	VertexDivisors   []VertexBindingDivisor

	Samples SampleCountFlags

	ColorFormats  []Format
	DepthFormat   Format
	StencilFormat Format

	Blend        BlendAttachmentState
	DepthStencil DepthStencilState

	DynamicStates []DynamicState

	Layout PipelineLayout
}

// CreateGraphicsPipeline builds one graphics pipeline through the cache.
func (device Device) CreateGraphicsPipeline(cache PipelineCache, info GraphicsPipelineCreateInfo) (Pipeline, error) {
	entry := C.CString("main")
	defer C.free(unsafe.Pointer(entry))

	stages := (*C.VkPipelineShaderStageCreateInfo)(C.calloc(2, C.sizeof_VkPipelineShaderStageCreateInfo))
	defer C.free(unsafe.Pointer(stages))
	stageSlice := unsafe.Slice(stages, 2)
	stageSlice[0].sType = C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO
	stageSlice[0].stage = C.VK_SHADER_STAGE_VERTEX_BIT
	stageSlice[0].module = info.VertModule.handle
	stageSlice[0].pName = entry
	stageSlice[1].sType = C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO
	stageSlice[1].stage = C.VK_SHADER_STAGE_FRAGMENT_BIT
	stageSlice[1].module = info.FragModule.handle
	stageSlice[1].pName = entry

	// Vertex input
	vertexInput := (*C.VkPipelineVertexInputStateCreateInfo)(C.calloc(1, C.sizeof_VkPipelineVertexInputStateCreateInfo))
	defer C.free(unsafe.Pointer(vertexInput))
	vertexInput.sType = C.VK_STRUCTURE_TYPE_PIPELINE_VERTEX_INPUT_STATE_CREATE_INFO

	var bindings *C.VkVertexInputBindingDescription
	if len(info.VertexBindings) > 0 {
		bindings = (*C.VkVertexInputBindingDescription)(C.calloc(C.size_t(len(info.VertexBindings)), C.sizeof_VkVertexInputBindingDescription))
		defer C.free(unsafe.Pointer(bindings))
		bindingSlice := unsafe.Slice(bindings, len(info.VertexBindings))
		for i, b := range info.VertexBindings {
			bindingSlice[i].binding = C.uint32_t(b.Binding)
			bindingSlice[i].stride = C.uint32_t(b.Stride)
			if b.InstanceRate {
				bindingSlice[i].inputRate = C.VK_VERTEX_INPUT_RATE_INSTANCE
			} else {
				bindingSlice[i].inputRate = C.VK_VERTEX_INPUT_RATE_VERTEX
			}
		}
		vertexInput.vertexBindingDescriptionCount = C.uint32_t(len(info.VertexBindings))
		vertexInput.pVertexBindingDescriptions = bindings
	}

	var attributes *C.VkVertexInputAttributeDescription
	if len(info.VertexAttributes) > 0 {
		attributes = (*C.VkVertexInputAttributeDescription)(C.calloc(C.size_t(len(info.VertexAttributes)), C.sizeof_VkVertexInputAttributeDescription))
		defer C.free(unsafe.Pointer(attributes))
		attrSlice := unsafe.Slice(attributes, len(info.VertexAttributes))
		for i, a := range info.VertexAttributes {
			attrSlice[i].location = C.uint32_t(a.Location)
			attrSlice[i].binding = C.uint32_t(a.Binding)
			attrSlice[i].format = C.VkFormat(a.Format)
			attrSlice[i].offset = C.uint32_t(a.Offset)
		}
		vertexInput.vertexAttributeDescriptionCount = C.uint32_t(len(info.VertexAttributes))
		vertexInput.pVertexAttributeDescriptions = attributes
	}

	var divisorInfo *C.VkPipelineVertexInputDivisorStateCreateInfo
	if len(info.VertexDivisors) > 0 {
		divisors := (*C.VkVertexInputBindingDivisorDescription)(C.calloc(C.size_t(len(info.VertexDivisors)), C.sizeof_VkVertexInputBindingDivisorDescription))
		defer C.free(unsafe.Pointer(divisors))
		divisorSlice := unsafe.Slice(divisors, len(info.VertexDivisors))
		for i, d := range info.VertexDivisors {
			divisorSlice[i].binding = C.uint32_t(d.Binding)
			divisorSlice[i].divisor = C.uint32_t(d.Divisor)
		}
		divisorInfo = (*C.VkPipelineVertexInputDivisorStateCreateInfo)(C.calloc(1, C.sizeof_VkPipelineVertexInputDivisorStateCreateInfo))
		defer C.free(unsafe.Pointer(divisorInfo))
		divisorInfo.sType = C.VK_STRUCTURE_TYPE_PIPELINE_VERTEX_INPUT_DIVISOR_STATE_CREATE_INFO
		divisorInfo.vertexBindingDivisorCount = C.uint32_t(len(info.VertexDivisors))
		divisorInfo.pVertexBindingDivisors = divisors
		vertexInput.pNext = unsafe.Pointer(divisorInfo)
	}

	inputAssembly := (*C.VkPipelineInputAssemblyStateCreateInfo)(C.calloc(1, C.sizeof_VkPipelineInputAssemblyStateCreateInfo))
	defer C.free(unsafe.Pointer(inputAssembly))
	inputAssembly.sType = C.VK_STRUCTURE_TYPE_PIPELINE_INPUT_ASSEMBLY_STATE_CREATE_INFO
	inputAssembly.topology = C.VK_PRIMITIVE_TOPOLOGY_TRIANGLE_LIST

	viewportState := (*C.VkPipelineViewportStateCreateInfo)(C.calloc(1, C.sizeof_VkPipelineViewportStateCreateInfo))
	defer C.free(unsafe.Pointer(viewportState))
	viewportState.sType = C.VK_STRUCTURE_TYPE_PIPELINE_VIEWPORT_STATE_CREATE_INFO
	viewportState.viewportCount = 1
	viewportState.scissorCount = 1

	rasterizer := (*C.VkPipelineRasterizationStateCreateInfo)(C.calloc(1, C.sizeof_VkPipelineRasterizationStateCreateInfo))
	defer C.free(unsafe.Pointer(rasterizer))
	rasterizer.sType = C.VK_STRUCTURE_TYPE_PIPELINE_RASTERIZATION_STATE_CREATE_INFO
	rasterizer.polygonMode = C.VK_POLYGON_MODE_FILL
	rasterizer.lineWidth = 1
	rasterizer.cullMode = C.VK_CULL_MODE_BACK_BIT
	rasterizer.frontFace = C.VK_FRONT_FACE_COUNTER_CLOCKWISE

	multisampling := (*C.VkPipelineMultisampleStateCreateInfo)(C.calloc(1, C.sizeof_VkPipelineMultisampleStateCreateInfo))
	defer C.free(unsafe.Pointer(multisampling))
	multisampling.sType = C.VK_STRUCTURE_TYPE_PIPELINE_MULTISAMPLE_STATE_CREATE_INFO
	multisampling.rasterizationSamples = C.VkSampleCountFlagBits(info.Samples)

	attachmentCount := len(info.ColorFormats)
	blendAttachments := (*C.VkPipelineColorBlendAttachmentState)(C.calloc(C.size_t(attachmentCount), C.sizeof_VkPipelineColorBlendAttachmentState))
	defer C.free(unsafe.Pointer(blendAttachments))
	blendSlice := unsafe.Slice(blendAttachments, attachmentCount)
	for i := range blendSlice {
		blendSlice[i].blendEnable = boolTo32(info.Blend.BlendEnable)
		blendSlice[i].srcColorBlendFactor = C.VkBlendFactor(info.Blend.SrcColorFactor)
		blendSlice[i].dstColorBlendFactor = C.VkBlendFactor(info.Blend.DstColorFactor)
		blendSlice[i].colorBlendOp = C.VkBlendOp(info.Blend.ColorOp)
		blendSlice[i].srcAlphaBlendFactor = C.VkBlendFactor(info.Blend.SrcAlphaFactor)
		blendSlice[i].dstAlphaBlendFactor = C.VkBlendFactor(info.Blend.DstAlphaFactor)
		blendSlice[i].alphaBlendOp = C.VkBlendOp(info.Blend.AlphaOp)
		blendSlice[i].colorWriteMask = C.VkColorComponentFlags(info.Blend.WriteMask)
	}

	colorBlending := (*C.VkPipelineColorBlendStateCreateInfo)(C.calloc(1, C.sizeof_VkPipelineColorBlendStateCreateInfo))
	defer C.free(unsafe.Pointer(colorBlending))
	colorBlending.sType = C.VK_STRUCTURE_TYPE_PIPELINE_COLOR_BLEND_STATE_CREATE_INFO
	colorBlending.attachmentCount = C.uint32_t(attachmentCount)
	colorBlending.pAttachments = blendAttachments

	depthStencil := (*C.VkPipelineDepthStencilStateCreateInfo)(C.calloc(1, C.sizeof_VkPipelineDepthStencilStateCreateInfo))
	defer C.free(unsafe.Pointer(depthStencil))
	depthStencil.sType = C.VK_STRUCTURE_TYPE_PIPELINE_DEPTH_STENCIL_STATE_CREATE_INFO
	depthStencil.depthTestEnable = boolTo32(info.DepthStencil.DepthTestEnable)
	depthStencil.depthWriteEnable = boolTo32(info.DepthStencil.DepthWriteEnable)
	depthStencil.depthCompareOp = C.VkCompareOp(info.DepthStencil.DepthCompareOp)
	depthStencil.stencilTestEnable = boolTo32(info.DepthStencil.StencilTestEnable)
	depthStencil.front = info.DepthStencil.Front.vulkanize()
	depthStencil.back = info.DepthStencil.Back.vulkanize()

	dynamics := (*C.VkDynamicState)(C.calloc(C.size_t(len(info.DynamicStates)), C.sizeof_VkDynamicState))
	defer C.free(unsafe.Pointer(dynamics))
	dynamicSlice := unsafe.Slice(dynamics, len(info.DynamicStates))
	for i, d := range info.DynamicStates {
		dynamicSlice[i] = C.VkDynamicState(d)
	}

	dynamicState := (*C.VkPipelineDynamicStateCreateInfo)(C.calloc(1, C.sizeof_VkPipelineDynamicStateCreateInfo))
	defer C.free(unsafe.Pointer(dynamicState))
	dynamicState.sType = C.VK_STRUCTURE_TYPE_PIPELINE_DYNAMIC_STATE_CREATE_INFO
	dynamicState.dynamicStateCount = C.uint32_t(len(info.DynamicStates))
	dynamicState.pDynamicStates = dynamics

	colorFormats := (*C.VkFormat)(C.calloc(C.size_t(attachmentCount), C.sizeof_VkFormat))
	defer C.free(unsafe.Pointer(colorFormats))
	formatSlice := unsafe.Slice(colorFormats, attachmentCount)
	for i, f := range info.ColorFormats {
		formatSlice[i] = C.VkFormat(f)
	}

	renderingInfo := (*C.VkPipelineRenderingCreateInfo)(C.calloc(1, C.sizeof_VkPipelineRenderingCreateInfo))
	defer C.free(unsafe.Pointer(renderingInfo))
	renderingInfo.sType = C.VK_STRUCTURE_TYPE_PIPELINE_RENDERING_CREATE_INFO
	renderingInfo.colorAttachmentCount = C.uint32_t(attachmentCount)
	renderingInfo.pColorAttachmentFormats = colorFormats
	renderingInfo.depthAttachmentFormat = C.VkFormat(info.DepthFormat)
	renderingInfo.stencilAttachmentFormat = C.VkFormat(info.StencilFormat)

	var createInfo C.VkGraphicsPipelineCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_GRAPHICS_PIPELINE_CREATE_INFO
	createInfo.pNext = unsafe.Pointer(renderingInfo)
	createInfo.stageCount = 2
	createInfo.pStages = stages
	createInfo.pVertexInputState = vertexInput
	createInfo.pInputAssemblyState = inputAssembly
	createInfo.pViewportState = viewportState
	createInfo.pRasterizationState = rasterizer
	createInfo.pMultisampleState = multisampling
	createInfo.pDepthStencilState = depthStencil
	createInfo.pColorBlendState = colorBlending
	createInfo.pDynamicState = dynamicState
	createInfo.layout = info.Layout.handle

	var handle C.VkPipeline
	if result := C.vkCreateGraphicsPipelines(device.handle, cache.handle, 1, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return Pipeline{}, Result(result)
	}
	return Pipeline{handle: handle}, nil
}
