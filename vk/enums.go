package vk

/*
#include <vulkan/vulkan.h>
*/
import "C"

// Format mirrors VkFormat for the formats the renderer touches.
type Format int32

// Formats.
const (
	FormatUndefined          Format = C.VK_FORMAT_UNDEFINED
	FormatR8Unorm            Format = C.VK_FORMAT_R8_UNORM
	FormatR8G8Unorm          Format = C.VK_FORMAT_R8G8_UNORM
	FormatR8G8B8Unorm        Format = C.VK_FORMAT_R8G8B8_UNORM
	FormatR8G8B8A8Unorm      Format = C.VK_FORMAT_R8G8B8A8_UNORM
	FormatB8G8R8A8Unorm      Format = C.VK_FORMAT_B8G8R8A8_UNORM
	FormatB8G8R8A8Srgb       Format = C.VK_FORMAT_B8G8R8A8_SRGB
	FormatR8G8B8A8Srgb       Format = C.VK_FORMAT_R8G8B8A8_SRGB
	FormatR16G16B16A16Sfloat Format = C.VK_FORMAT_R16G16B16A16_SFLOAT
	FormatR32Sfloat          Format = C.VK_FORMAT_R32_SFLOAT
	FormatR32G32Sfloat       Format = C.VK_FORMAT_R32G32_SFLOAT
	FormatR32G32B32Sfloat    Format = C.VK_FORMAT_R32G32B32_SFLOAT
	FormatR32G32B32A32Sfloat Format = C.VK_FORMAT_R32G32B32A32_SFLOAT
	FormatD32Sfloat          Format = C.VK_FORMAT_D32_SFLOAT
	FormatD24UnormS8Uint     Format = C.VK_FORMAT_D24_UNORM_S8_UINT
	FormatD32SfloatS8Uint    Format = C.VK_FORMAT_D32_SFLOAT_S8_UINT
	FormatBc1RgbaUnorm       Format = C.VK_FORMAT_BC1_RGBA_UNORM_BLOCK
	FormatBc2Unorm           Format = C.VK_FORMAT_BC2_UNORM_BLOCK
	FormatBc3Unorm           Format = C.VK_FORMAT_BC3_UNORM_BLOCK
	FormatBc7Unorm           Format = C.VK_FORMAT_BC7_UNORM_BLOCK
	FormatG8B8R83Plane420    Format = C.VK_FORMAT_G8_B8_R8_3PLANE_420_UNORM
)

// HasStencil reports whether the format carries a stencil aspect.
func (f Format) HasStencil() bool {
	return f == FormatD24UnormS8Uint || f == FormatD32SfloatS8Uint
}

// HasDepth reports whether the format carries a depth aspect.
func (f Format) HasDepth() bool {
	return f == FormatD32Sfloat || f == FormatD24UnormS8Uint || f == FormatD32SfloatS8Uint
}

// ColorSpace mirrors VkColorSpaceKHR.
type ColorSpace int32

// Color spaces.
const (
	ColorSpaceSrgbNonlinear ColorSpace = C.VK_COLOR_SPACE_SRGB_NONLINEAR_KHR
)

// PresentMode mirrors VkPresentModeKHR.
type PresentMode int32

// Present modes.
const (
	PresentModeImmediate PresentMode = C.VK_PRESENT_MODE_IMMEDIATE_KHR
	PresentModeMailbox   PresentMode = C.VK_PRESENT_MODE_MAILBOX_KHR
	PresentModeFifo      PresentMode = C.VK_PRESENT_MODE_FIFO_KHR
)

// PhysicalDeviceType mirrors VkPhysicalDeviceType.
type PhysicalDeviceType int32

// Device types.
const (
	DeviceTypeOther      PhysicalDeviceType = C.VK_PHYSICAL_DEVICE_TYPE_OTHER
	DeviceTypeIntegrated PhysicalDeviceType = C.VK_PHYSICAL_DEVICE_TYPE_INTEGRATED_GPU
	DeviceTypeDiscrete   PhysicalDeviceType = C.VK_PHYSICAL_DEVICE_TYPE_DISCRETE_GPU
	DeviceTypeVirtual    PhysicalDeviceType = C.VK_PHYSICAL_DEVICE_TYPE_VIRTUAL_GPU
	DeviceTypeCPU        PhysicalDeviceType = C.VK_PHYSICAL_DEVICE_TYPE_CPU
)

// ImageLayout mirrors VkImageLayout.
type ImageLayout int32

// Image layouts.
const (
	LayoutUndefined              ImageLayout = C.VK_IMAGE_LAYOUT_UNDEFINED
	LayoutGeneral                ImageLayout = C.VK_IMAGE_LAYOUT_GENERAL
	LayoutColorAttachment        ImageLayout = C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL
	LayoutDepthStencilAttachment ImageLayout = C.VK_IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL
	LayoutDepthAttachment        ImageLayout = C.VK_IMAGE_LAYOUT_DEPTH_ATTACHMENT_OPTIMAL
	LayoutDepthStencilReadOnly   ImageLayout = C.VK_IMAGE_LAYOUT_DEPTH_STENCIL_READ_ONLY_OPTIMAL
	LayoutShaderReadOnly         ImageLayout = C.VK_IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL
	LayoutTransferSrc            ImageLayout = C.VK_IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL
	LayoutTransferDst            ImageLayout = C.VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL
	LayoutPresentSrc             ImageLayout = C.VK_IMAGE_LAYOUT_PRESENT_SRC_KHR
)

// PipelineStageFlags2 mirrors VkPipelineStageFlags2.
type PipelineStageFlags2 uint64

// Pipeline stages (synchronization2).
const (
	StageNone                  PipelineStageFlags2 = 0          // VK_PIPELINE_STAGE_2_NONE
	StageTopOfPipe             PipelineStageFlags2 = 0x00000001 // VK_PIPELINE_STAGE_2_TOP_OF_PIPE_BIT
	StageVertexInput           PipelineStageFlags2 = 0x00000004 // VK_PIPELINE_STAGE_2_VERTEX_INPUT_BIT
	StageVertexShader          PipelineStageFlags2 = 0x00000008 // VK_PIPELINE_STAGE_2_VERTEX_SHADER_BIT
	StageFragmentShader        PipelineStageFlags2 = 0x00000080 // VK_PIPELINE_STAGE_2_FRAGMENT_SHADER_BIT
	StageEarlyFragmentTests    PipelineStageFlags2 = 0x00000100 // VK_PIPELINE_STAGE_2_EARLY_FRAGMENT_TESTS_BIT
	StageLateFragmentTests     PipelineStageFlags2 = 0x00000200 // VK_PIPELINE_STAGE_2_LATE_FRAGMENT_TESTS_BIT
	StageColorAttachmentOutput PipelineStageFlags2 = 0x00000400 // VK_PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT_BIT
	StageTransfer              PipelineStageFlags2 = 0x00001000 // VK_PIPELINE_STAGE_2_TRANSFER_BIT
	StageAllCommands           PipelineStageFlags2 = 0x00010000 // VK_PIPELINE_STAGE_2_ALL_COMMANDS_BIT
	StageBottomOfPipe          PipelineStageFlags2 = 0x00002000 // VK_PIPELINE_STAGE_2_BOTTOM_OF_PIPE_BIT
)

// AccessFlags2 mirrors VkAccessFlags2.
type AccessFlags2 uint64

// Access masks (synchronization2).
const (
	AccessNone                 AccessFlags2 = 0          // VK_ACCESS_2_NONE
	AccessShaderRead           AccessFlags2 = 0x00000020 // VK_ACCESS_2_SHADER_READ_BIT
	AccessColorAttachmentRead  AccessFlags2 = 0x00000080 // VK_ACCESS_2_COLOR_ATTACHMENT_READ_BIT
	AccessColorAttachmentWrite AccessFlags2 = 0x00000100 // VK_ACCESS_2_COLOR_ATTACHMENT_WRITE_BIT
	AccessDepthStencilRead     AccessFlags2 = 0x00000200 // VK_ACCESS_2_DEPTH_STENCIL_ATTACHMENT_READ_BIT
	AccessDepthStencilWrite    AccessFlags2 = 0x00000400 // VK_ACCESS_2_DEPTH_STENCIL_ATTACHMENT_WRITE_BIT
	AccessTransferRead         AccessFlags2 = 0x00000800 // VK_ACCESS_2_TRANSFER_READ_BIT
	AccessTransferWrite        AccessFlags2 = 0x00001000 // VK_ACCESS_2_TRANSFER_WRITE_BIT
	AccessVertexAttributeRead  AccessFlags2 = 0x00000004 // VK_ACCESS_2_VERTEX_ATTRIBUTE_READ_BIT
	AccessIndexRead            AccessFlags2 = 0x00000002 // VK_ACCESS_2_INDEX_READ_BIT
	AccessUniformRead          AccessFlags2 = 0x00000008 // VK_ACCESS_2_UNIFORM_READ_BIT
	AccessMemoryRead           AccessFlags2 = 0x00008000 // VK_ACCESS_2_MEMORY_READ_BIT
	AccessMemoryWrite          AccessFlags2 = 0x00010000 // VK_ACCESS_2_MEMORY_WRITE_BIT
)

// ImageAspectFlags mirrors VkImageAspectFlags.
type ImageAspectFlags uint32

// Image aspects.
const (
	AspectColor   ImageAspectFlags = C.VK_IMAGE_ASPECT_COLOR_BIT
	AspectDepth   ImageAspectFlags = C.VK_IMAGE_ASPECT_DEPTH_BIT
	AspectStencil ImageAspectFlags = C.VK_IMAGE_ASPECT_STENCIL_BIT
	AspectPlane0  ImageAspectFlags = C.VK_IMAGE_ASPECT_PLANE_0_BIT
	AspectPlane1  ImageAspectFlags = C.VK_IMAGE_ASPECT_PLANE_1_BIT
	AspectPlane2  ImageAspectFlags = C.VK_IMAGE_ASPECT_PLANE_2_BIT
)

// ImageUsageFlags mirrors VkImageUsageFlags.
type ImageUsageFlags uint32

// Image usages.
const (
	ImageUsageTransferSrc            ImageUsageFlags = C.VK_IMAGE_USAGE_TRANSFER_SRC_BIT
	ImageUsageTransferDst            ImageUsageFlags = C.VK_IMAGE_USAGE_TRANSFER_DST_BIT
	ImageUsageSampled                ImageUsageFlags = C.VK_IMAGE_USAGE_SAMPLED_BIT
	ImageUsageColorAttachment        ImageUsageFlags = C.VK_IMAGE_USAGE_COLOR_ATTACHMENT_BIT
	ImageUsageDepthStencilAttachment ImageUsageFlags = C.VK_IMAGE_USAGE_DEPTH_STENCIL_ATTACHMENT_BIT
)

// BufferUsageFlags mirrors VkBufferUsageFlags.
type BufferUsageFlags uint32

// Buffer usages.
const (
	BufferUsageTransferSrc   BufferUsageFlags = C.VK_BUFFER_USAGE_TRANSFER_SRC_BIT
	BufferUsageTransferDst   BufferUsageFlags = C.VK_BUFFER_USAGE_TRANSFER_DST_BIT
	BufferUsageUniformBuffer BufferUsageFlags = C.VK_BUFFER_USAGE_UNIFORM_BUFFER_BIT
	BufferUsageStorageBuffer BufferUsageFlags = C.VK_BUFFER_USAGE_STORAGE_BUFFER_BIT
	BufferUsageIndexBuffer   BufferUsageFlags = C.VK_BUFFER_USAGE_INDEX_BUFFER_BIT
	BufferUsageVertexBuffer  BufferUsageFlags = C.VK_BUFFER_USAGE_VERTEX_BUFFER_BIT
)

// MemoryPropertyFlags mirrors VkMemoryPropertyFlags.
type MemoryPropertyFlags uint32

// Memory properties.
const (
	MemoryDeviceLocal  MemoryPropertyFlags = C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT
	MemoryHostVisible  MemoryPropertyFlags = C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT
	MemoryHostCoherent MemoryPropertyFlags = C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT
	MemoryHostCached   MemoryPropertyFlags = C.VK_MEMORY_PROPERTY_HOST_CACHED_BIT
)

// SampleCountFlags mirrors VkSampleCountFlagBits.
type SampleCountFlags uint32

// Sample counts.
const (
	Samples1 SampleCountFlags = C.VK_SAMPLE_COUNT_1_BIT
	Samples2 SampleCountFlags = C.VK_SAMPLE_COUNT_2_BIT
	Samples4 SampleCountFlags = C.VK_SAMPLE_COUNT_4_BIT
	Samples8 SampleCountFlags = C.VK_SAMPLE_COUNT_8_BIT
)

// DescriptorType mirrors VkDescriptorType.
type DescriptorType int32

// Descriptor types.
const (
	DescriptorCombinedImageSampler DescriptorType = C.VK_DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER
	DescriptorUniformBuffer        DescriptorType = C.VK_DESCRIPTOR_TYPE_UNIFORM_BUFFER
	DescriptorStorageBuffer        DescriptorType = C.VK_DESCRIPTOR_TYPE_STORAGE_BUFFER
	DescriptorUniformBufferDynamic DescriptorType = C.VK_DESCRIPTOR_TYPE_UNIFORM_BUFFER_DYNAMIC
	DescriptorStorageBufferDynamic DescriptorType = C.VK_DESCRIPTOR_TYPE_STORAGE_BUFFER_DYNAMIC
)

// DescriptorBindingFlags mirrors VkDescriptorBindingFlags.
type DescriptorBindingFlags uint32

// Descriptor binding flags.
const (
	BindingPartiallyBound DescriptorBindingFlags = C.VK_DESCRIPTOR_BINDING_PARTIALLY_BOUND_BIT
	BindingUpdateUnused   DescriptorBindingFlags = C.VK_DESCRIPTOR_BINDING_UPDATE_UNUSED_WHILE_PENDING_BIT
)

// ShaderStageFlags mirrors VkShaderStageFlags.
type ShaderStageFlags uint32

// Shader stages.
const (
	StageVertexBit   ShaderStageFlags = C.VK_SHADER_STAGE_VERTEX_BIT
	StageFragmentBit ShaderStageFlags = C.VK_SHADER_STAGE_FRAGMENT_BIT
	StageAllGraphics ShaderStageFlags = C.VK_SHADER_STAGE_ALL_GRAPHICS
)

// PrimitiveTopology mirrors VkPrimitiveTopology.
type PrimitiveTopology int32

// Topologies.
const (
	TopologyPointList     PrimitiveTopology = C.VK_PRIMITIVE_TOPOLOGY_POINT_LIST
	TopologyLineList      PrimitiveTopology = C.VK_PRIMITIVE_TOPOLOGY_LINE_LIST
	TopologyLineStrip     PrimitiveTopology = C.VK_PRIMITIVE_TOPOLOGY_LINE_STRIP
	TopologyTriangleList  PrimitiveTopology = C.VK_PRIMITIVE_TOPOLOGY_TRIANGLE_LIST
	TopologyTriangleStrip PrimitiveTopology = C.VK_PRIMITIVE_TOPOLOGY_TRIANGLE_STRIP
	TopologyTriangleFan   PrimitiveTopology = C.VK_PRIMITIVE_TOPOLOGY_TRIANGLE_FAN
)

// CullModeFlags mirrors VkCullModeFlags.
type CullModeFlags uint32

// Cull modes.
const (
	CullModeNone  CullModeFlags = C.VK_CULL_MODE_NONE
	CullModeFront CullModeFlags = C.VK_CULL_MODE_FRONT_BIT
	CullModeBack  CullModeFlags = C.VK_CULL_MODE_BACK_BIT
)

// FrontFace mirrors VkFrontFace.
type FrontFace int32

// Front face winding.
const (
	FrontFaceCounterClockwise FrontFace = C.VK_FRONT_FACE_COUNTER_CLOCKWISE
	FrontFaceClockwise        FrontFace = C.VK_FRONT_FACE_CLOCKWISE
)

// CompareOp mirrors VkCompareOp.
type CompareOp int32

// Compare operations.
const (
	CompareOpNever          CompareOp = C.VK_COMPARE_OP_NEVER
	CompareOpLess           CompareOp = C.VK_COMPARE_OP_LESS
	CompareOpEqual          CompareOp = C.VK_COMPARE_OP_EQUAL
	CompareOpLessOrEqual    CompareOp = C.VK_COMPARE_OP_LESS_OR_EQUAL
	CompareOpGreater        CompareOp = C.VK_COMPARE_OP_GREATER
	CompareOpNotEqual       CompareOp = C.VK_COMPARE_OP_NOT_EQUAL
	CompareOpGreaterOrEqual CompareOp = C.VK_COMPARE_OP_GREATER_OR_EQUAL
	CompareOpAlways         CompareOp = C.VK_COMPARE_OP_ALWAYS
)

// StencilOp mirrors VkStencilOp.
type StencilOp int32

// Stencil operations.
const (
	StencilOpKeep      StencilOp = C.VK_STENCIL_OP_KEEP
	StencilOpZero      StencilOp = C.VK_STENCIL_OP_ZERO
	StencilOpReplace   StencilOp = C.VK_STENCIL_OP_REPLACE
	StencilOpIncrClamp StencilOp = C.VK_STENCIL_OP_INCREMENT_AND_CLAMP
	StencilOpDecrClamp StencilOp = C.VK_STENCIL_OP_DECREMENT_AND_CLAMP
	StencilOpInvert    StencilOp = C.VK_STENCIL_OP_INVERT
)

// BlendFactor mirrors VkBlendFactor.
type BlendFactor int32

// Blend factors.
const (
	BlendFactorZero             BlendFactor = C.VK_BLEND_FACTOR_ZERO
	BlendFactorOne              BlendFactor = C.VK_BLEND_FACTOR_ONE
	BlendFactorSrcAlpha         BlendFactor = C.VK_BLEND_FACTOR_SRC_ALPHA
	BlendFactorOneMinusSrcAlpha BlendFactor = C.VK_BLEND_FACTOR_ONE_MINUS_SRC_ALPHA
	BlendFactorOneMinusSrcColor BlendFactor = C.VK_BLEND_FACTOR_ONE_MINUS_SRC_COLOR
)

// BlendOp mirrors VkBlendOp.
type BlendOp int32

// Blend ops.
const (
	BlendOpAdd BlendOp = C.VK_BLEND_OP_ADD
)

// ColorComponentFlags mirrors VkColorComponentFlags.
type ColorComponentFlags uint32

// Color components.
const (
	ColorComponentR ColorComponentFlags = C.VK_COLOR_COMPONENT_R_BIT
	ColorComponentG ColorComponentFlags = C.VK_COLOR_COMPONENT_G_BIT
	ColorComponentB ColorComponentFlags = C.VK_COLOR_COMPONENT_B_BIT
	ColorComponentA ColorComponentFlags = C.VK_COLOR_COMPONENT_A_BIT

	// ColorComponentsAll writes every channel.
	ColorComponentsAll = ColorComponentR | ColorComponentG | ColorComponentB | ColorComponentA
)

// DynamicState mirrors VkDynamicState.
type DynamicState int32

// Dynamic states, core plus the extended-dynamic-state-3 extras.
const (
	DynamicViewport                DynamicState = C.VK_DYNAMIC_STATE_VIEWPORT
	DynamicScissor                 DynamicState = C.VK_DYNAMIC_STATE_SCISSOR
	DynamicLineWidth               DynamicState = C.VK_DYNAMIC_STATE_LINE_WIDTH
	DynamicCullMode                DynamicState = C.VK_DYNAMIC_STATE_CULL_MODE
	DynamicFrontFace               DynamicState = C.VK_DYNAMIC_STATE_FRONT_FACE
	DynamicPrimitiveTopology       DynamicState = C.VK_DYNAMIC_STATE_PRIMITIVE_TOPOLOGY
	DynamicDepthTestEnable         DynamicState = C.VK_DYNAMIC_STATE_DEPTH_TEST_ENABLE
	DynamicDepthWriteEnable        DynamicState = C.VK_DYNAMIC_STATE_DEPTH_WRITE_ENABLE
	DynamicDepthCompareOp          DynamicState = C.VK_DYNAMIC_STATE_DEPTH_COMPARE_OP
	DynamicStencilTestEnable       DynamicState = C.VK_DYNAMIC_STATE_STENCIL_TEST_ENABLE
	DynamicColorBlendEnableEXT     DynamicState = C.VK_DYNAMIC_STATE_COLOR_BLEND_ENABLE_EXT
	DynamicColorWriteMaskEXT       DynamicState = C.VK_DYNAMIC_STATE_COLOR_WRITE_MASK_EXT
	DynamicPolygonModeEXT          DynamicState = C.VK_DYNAMIC_STATE_POLYGON_MODE_EXT
	DynamicRasterizationSamplesEXT DynamicState = C.VK_DYNAMIC_STATE_RASTERIZATION_SAMPLES_EXT
)

// PolygonMode mirrors VkPolygonMode.
type PolygonMode int32

// Polygon modes.
const (
	PolygonModeFill PolygonMode = C.VK_POLYGON_MODE_FILL
	PolygonModeLine PolygonMode = C.VK_POLYGON_MODE_LINE
)

// AttachmentLoadOp mirrors VkAttachmentLoadOp.
type AttachmentLoadOp int32

// Load operations.
const (
	LoadOpLoad     AttachmentLoadOp = C.VK_ATTACHMENT_LOAD_OP_LOAD
	LoadOpClear    AttachmentLoadOp = C.VK_ATTACHMENT_LOAD_OP_CLEAR
	LoadOpDontCare AttachmentLoadOp = C.VK_ATTACHMENT_LOAD_OP_DONT_CARE
)

// AttachmentStoreOp mirrors VkAttachmentStoreOp.
type AttachmentStoreOp int32

// Store operations.
const (
	StoreOpStore    AttachmentStoreOp = C.VK_ATTACHMENT_STORE_OP_STORE
	StoreOpDontCare AttachmentStoreOp = C.VK_ATTACHMENT_STORE_OP_DONT_CARE
)

// IndexType mirrors VkIndexType.
type IndexType int32

// Index types.
const (
	IndexTypeUint16 IndexType = C.VK_INDEX_TYPE_UINT16
	IndexTypeUint32 IndexType = C.VK_INDEX_TYPE_UINT32
)

// PipelineBindPoint mirrors VkPipelineBindPoint.
type PipelineBindPoint int32

// Bind points.
const (
	BindPointGraphics PipelineBindPoint = C.VK_PIPELINE_BIND_POINT_GRAPHICS
)

// Filter mirrors VkFilter.
type Filter int32

// Filters.
const (
	FilterNearest Filter = C.VK_FILTER_NEAREST
	FilterLinear  Filter = C.VK_FILTER_LINEAR
)

// SamplerAddressMode mirrors VkSamplerAddressMode.
type SamplerAddressMode int32

// Address modes.
const (
	AddressRepeat      SamplerAddressMode = C.VK_SAMPLER_ADDRESS_MODE_REPEAT
	AddressClampToEdge SamplerAddressMode = C.VK_SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE
)

// SamplerMipmapMode mirrors VkSamplerMipmapMode.
type SamplerMipmapMode int32

// Mipmap modes.
const (
	MipmapNearest SamplerMipmapMode = C.VK_SAMPLER_MIPMAP_MODE_NEAREST
	MipmapLinear  SamplerMipmapMode = C.VK_SAMPLER_MIPMAP_MODE_LINEAR
)

// YcbcrModelConversion mirrors VkSamplerYcbcrModelConversion.
type YcbcrModelConversion int32

// YCbCr conversion models.
const (
	YcbcrModel601 YcbcrModelConversion = C.VK_SAMPLER_YCBCR_MODEL_CONVERSION_YCBCR_601
	YcbcrModel709 YcbcrModelConversion = C.VK_SAMPLER_YCBCR_MODEL_CONVERSION_YCBCR_709
)

// YcbcrRange mirrors VkSamplerYcbcrRange.
type YcbcrRange int32

// YCbCr ranges.
const (
	YcbcrRangeITUNarrow YcbcrRange = C.VK_SAMPLER_YCBCR_RANGE_ITU_NARROW
	YcbcrRangeITUFull   YcbcrRange = C.VK_SAMPLER_YCBCR_RANGE_ITU_FULL
)

// ChromaLocation mirrors VkChromaLocation.
type ChromaLocation int32

// Chroma sample locations.
const (
	ChromaCositedEven ChromaLocation = C.VK_CHROMA_LOCATION_COSITED_EVEN
	ChromaMidpoint    ChromaLocation = C.VK_CHROMA_LOCATION_MIDPOINT
)

// CommandBufferUsageFlags mirrors VkCommandBufferUsageFlags.
type CommandBufferUsageFlags uint32

// Command buffer usage.
const (
	CommandBufferOneTimeSubmit CommandBufferUsageFlags = C.VK_COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT
)

// CommandPoolCreateFlags mirrors VkCommandPoolCreateFlags.
type CommandPoolCreateFlags uint32

// Command pool flags.
const (
	CommandPoolResetCommandBuffer CommandPoolCreateFlags = C.VK_COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT
	CommandPoolTransient          CommandPoolCreateFlags = C.VK_COMMAND_POOL_CREATE_TRANSIENT_BIT
)

// QueueFlags mirrors VkQueueFlags.
type QueueFlags uint32

// Queue capabilities.
const (
	QueueGraphics QueueFlags = C.VK_QUEUE_GRAPHICS_BIT
	QueueCompute  QueueFlags = C.VK_QUEUE_COMPUTE_BIT
	QueueTransfer QueueFlags = C.VK_QUEUE_TRANSFER_BIT
)

// FormatFeatureFlags mirrors VkFormatFeatureFlags.
type FormatFeatureFlags uint32

// Format features the renderer queries.
const (
	FormatFeatureDepthStencilAttachment   FormatFeatureFlags = C.VK_FORMAT_FEATURE_DEPTH_STENCIL_ATTACHMENT_BIT
	FormatFeatureSampledImage             FormatFeatureFlags = C.VK_FORMAT_FEATURE_SAMPLED_IMAGE_BIT
	FormatFeatureSampledImageFilterLinear FormatFeatureFlags = C.VK_FORMAT_FEATURE_SAMPLED_IMAGE_FILTER_LINEAR_BIT
	FormatFeatureTransferSrc              FormatFeatureFlags = C.VK_FORMAT_FEATURE_TRANSFER_SRC_BIT
	FormatFeatureTransferDst              FormatFeatureFlags = C.VK_FORMAT_FEATURE_TRANSFER_DST_BIT
	FormatFeatureColorAttachment          FormatFeatureFlags = C.VK_FORMAT_FEATURE_COLOR_ATTACHMENT_BIT
	FormatFeatureMidpointChromaSamples    FormatFeatureFlags = C.VK_FORMAT_FEATURE_MIDPOINT_CHROMA_SAMPLES_BIT
	FormatFeatureCositedChromaSamples     FormatFeatureFlags = C.VK_FORMAT_FEATURE_COSITED_CHROMA_SAMPLES_BIT
	FormatFeatureSampledImageYcbcrLinear  FormatFeatureFlags = C.VK_FORMAT_FEATURE_SAMPLED_IMAGE_YCBCR_CONVERSION_LINEAR_FILTER_BIT
	FormatFeatureDisjoint                 FormatFeatureFlags = C.VK_FORMAT_FEATURE_DISJOINT_BIT
)

// ImageTiling mirrors VkImageTiling.
type ImageTiling int32

// Tilings.
const (
	TilingOptimal ImageTiling = C.VK_IMAGE_TILING_OPTIMAL
	TilingLinear  ImageTiling = C.VK_IMAGE_TILING_LINEAR
)

// ImageViewType mirrors VkImageViewType.
type ImageViewType int32

// View types.
const (
	ViewType2D      ImageViewType = C.VK_IMAGE_VIEW_TYPE_2D
	ViewType2DArray ImageViewType = C.VK_IMAGE_VIEW_TYPE_2D_ARRAY
	ViewTypeCube    ImageViewType = C.VK_IMAGE_VIEW_TYPE_CUBE
)

// ImageCreateFlags mirrors VkImageCreateFlags.
type ImageCreateFlags uint32

// Image create flags.
const (
	ImageCreateCubeCompatible ImageCreateFlags = C.VK_IMAGE_CREATE_CUBE_COMPATIBLE_BIT
)

// DebugSeverityFlags mirrors VkDebugUtilsMessageSeverityFlagsEXT.
type DebugSeverityFlags uint32

// Debug message severities.
const (
	DebugSeverityVerbose DebugSeverityFlags = C.VK_DEBUG_UTILS_MESSAGE_SEVERITY_VERBOSE_BIT_EXT
	DebugSeverityInfo    DebugSeverityFlags = C.VK_DEBUG_UTILS_MESSAGE_SEVERITY_INFO_BIT_EXT
	DebugSeverityWarning DebugSeverityFlags = C.VK_DEBUG_UTILS_MESSAGE_SEVERITY_WARNING_BIT_EXT
	DebugSeverityError   DebugSeverityFlags = C.VK_DEBUG_UTILS_MESSAGE_SEVERITY_ERROR_BIT_EXT
)

// DebugTypeFlags mirrors VkDebugUtilsMessageTypeFlagsEXT.
type DebugTypeFlags uint32

// Debug message types.
const (
	DebugTypeGeneral     DebugTypeFlags = C.VK_DEBUG_UTILS_MESSAGE_TYPE_GENERAL_BIT_EXT
	DebugTypeValidation  DebugTypeFlags = C.VK_DEBUG_UTILS_MESSAGE_TYPE_VALIDATION_BIT_EXT
	DebugTypePerformance DebugTypeFlags = C.VK_DEBUG_UTILS_MESSAGE_TYPE_PERFORMANCE_BIT_EXT
)

// Well-known extension names.
const (
	ExtSwapchain                 = "VK_KHR_swapchain"
	ExtPushDescriptor            = "VK_KHR_push_descriptor"
	ExtMaintenance5              = "VK_KHR_maintenance5"
	ExtMaintenance6              = "VK_KHR_maintenance6"
	ExtExtendedDynamicState3     = "VK_EXT_extended_dynamic_state3"
	ExtDynamicRenderingLocalRead = "VK_KHR_dynamic_rendering_local_read"
	ExtVertexAttributeDivisor    = "VK_EXT_vertex_attribute_divisor"
	ExtDebugUtils                = "VK_EXT_debug_utils"
)
