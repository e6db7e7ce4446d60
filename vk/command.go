package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
#include <string.h>

static void callCmdSetColorBlendEnable(PFN_vkCmdSetColorBlendEnableEXT fn, VkCommandBuffer cmd,
	uint32_t first, uint32_t count, const VkBool32* enables) {
	fn(cmd, first, count, enables);
}

static void callCmdSetColorWriteMask(PFN_vkCmdSetColorWriteMaskEXT fn, VkCommandBuffer cmd,
	uint32_t first, uint32_t count, const VkColorComponentFlags* masks) {
	fn(cmd, first, count, masks);
}

static void callCmdSetPolygonMode(PFN_vkCmdSetPolygonModeEXT fn, VkCommandBuffer cmd, VkPolygonMode mode) {
	fn(cmd, mode);
}

static void callCmdSetRasterizationSamples(PFN_vkCmdSetRasterizationSamplesEXT fn, VkCommandBuffer cmd,
	VkSampleCountFlagBits samples) {
	fn(cmd, samples);
}

static void callCmdPushDescriptorSet(PFN_vkCmdPushDescriptorSetKHR fn, VkCommandBuffer cmd,
	VkPipelineBindPoint bindPoint, VkPipelineLayout layout, uint32_t set,
	uint32_t writeCount, const VkWriteDescriptorSet* writes) {
	fn(cmd, bindPoint, layout, set, writeCount, writes);
}

static void callCmdBeginDebugUtilsLabel(PFN_vkCmdBeginDebugUtilsLabelEXT fn, VkCommandBuffer cmd,
	const VkDebugUtilsLabelEXT* label) {
	fn(cmd, label);
}

static void callCmdEndDebugUtilsLabel(PFN_vkCmdEndDebugUtilsLabelEXT fn, VkCommandBuffer cmd) {
	fn(cmd);
}
*/
import "C"
import "unsafe"

// CreateCommandPool creates a command pool for one queue family.
func (device Device) CreateCommandPool(queueFamilyIndex uint32, flags CommandPoolCreateFlags) (CommandPool, error) {
	var createInfo C.VkCommandPoolCreateInfo
	createInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_POOL_CREATE_INFO
	createInfo.flags = C.VkCommandPoolCreateFlags(flags)
	createInfo.queueFamilyIndex = C.uint32_t(queueFamilyIndex)

	var handle C.VkCommandPool
	if result := C.vkCreateCommandPool(device.handle, &createInfo, nil, &handle); result != C.VK_SUCCESS {
		return CommandPool{}, Result(result)
	}
	return CommandPool{handle: handle}, nil
}

// DestroyCommandPool destroys a command pool and its buffers.
func (device Device) DestroyCommandPool(pool CommandPool) {
	C.vkDestroyCommandPool(device.handle, pool.handle, nil)
}

// ResetCommandPool resets every buffer allocated from the pool.
func (device Device) ResetCommandPool(pool CommandPool) error {
	return asErr(int32(C.vkResetCommandPool(device.handle, pool.handle, 0)))
}

// AllocateCommandBuffer allocates one primary command buffer.
func (device Device) AllocateCommandBuffer(pool CommandPool) (CommandBuffer, error) {
	var allocInfo C.VkCommandBufferAllocateInfo
	allocInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_ALLOCATE_INFO
	allocInfo.commandPool = pool.handle
	allocInfo.level = C.VK_COMMAND_BUFFER_LEVEL_PRIMARY
	allocInfo.commandBufferCount = 1

	var handle C.VkCommandBuffer
	if result := C.vkAllocateCommandBuffers(device.handle, &allocInfo, &handle); result != C.VK_SUCCESS {
		return CommandBuffer{}, Result(result)
	}
	return CommandBuffer{handle: handle, procs: device.procs}, nil
}

// Begin starts recording.
func (cmd CommandBuffer) Begin(usage CommandBufferUsageFlags) error {
	var beginInfo C.VkCommandBufferBeginInfo
	beginInfo.sType = C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO
	beginInfo.flags = C.VkCommandBufferUsageFlags(usage)
	return asErr(int32(C.vkBeginCommandBuffer(cmd.handle, &beginInfo)))
}

// End finishes recording.
func (cmd CommandBuffer) End() error {
	return asErr(int32(C.vkEndCommandBuffer(cmd.handle)))
}

// SemaphoreSubmitInfo names one semaphore in a Submit2. Value is used for
// timeline semaphores and ignored for binary ones.
type SemaphoreSubmitInfo struct {
	Semaphore Semaphore
	Value     uint64
	StageMask PipelineStageFlags2
}

// Submit2 submits command buffers with synchronization2 semantics.
func (queue Queue) Submit2(waits []SemaphoreSubmitInfo, cmds []CommandBuffer, signals []SemaphoreSubmitInfo, fence Fence) error {
	marshalSems := func(infos []SemaphoreSubmitInfo) *C.VkSemaphoreSubmitInfo {
		if len(infos) == 0 {
			return nil
		}
		arr := (*C.VkSemaphoreSubmitInfo)(C.calloc(C.size_t(len(infos)), C.sizeof_VkSemaphoreSubmitInfo))
		slice := unsafe.Slice(arr, len(infos))
		for i, info := range infos {
			slice[i].sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_SUBMIT_INFO
			slice[i].semaphore = info.Semaphore.handle
			slice[i].value = C.uint64_t(info.Value)
			slice[i].stageMask = C.VkPipelineStageFlags2(info.StageMask)
		}
		return arr
	}

	waitInfos := marshalSems(waits)
	defer C.free(unsafe.Pointer(waitInfos))
	signalInfos := marshalSems(signals)
	defer C.free(unsafe.Pointer(signalInfos))

	cmdInfos := (*C.VkCommandBufferSubmitInfo)(C.calloc(C.size_t(len(cmds)), C.sizeof_VkCommandBufferSubmitInfo))
	defer C.free(unsafe.Pointer(cmdInfos))
	cmdSlice := unsafe.Slice(cmdInfos, len(cmds))
	for i, c := range cmds {
		cmdSlice[i].sType = C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_SUBMIT_INFO
		cmdSlice[i].commandBuffer = c.handle
	}

	var submitInfo C.VkSubmitInfo2
	submitInfo.sType = C.VK_STRUCTURE_TYPE_SUBMIT_INFO_2
	submitInfo.waitSemaphoreInfoCount = C.uint32_t(len(waits))
	submitInfo.pWaitSemaphoreInfos = waitInfos
	submitInfo.commandBufferInfoCount = C.uint32_t(len(cmds))
	submitInfo.pCommandBufferInfos = cmdInfos
	submitInfo.signalSemaphoreInfoCount = C.uint32_t(len(signals))
	submitInfo.pSignalSemaphoreInfos = signalInfos

	return asErr(int32(C.vkQueueSubmit2(queue.handle, 1, &submitInfo, fence.handle)))
}

// ImageMemoryBarrier2 mirrors VkImageMemoryBarrier2 for whole-subresource
// transitions.
type ImageMemoryBarrier2 struct {
	SrcStageMask  PipelineStageFlags2
	SrcAccessMask AccessFlags2
	DstStageMask  PipelineStageFlags2
	DstAccessMask AccessFlags2
	OldLayout     ImageLayout
	NewLayout     ImageLayout
	Image         Image
	Subresource   ImageSubresourceRange
}

// CmdPipelineBarrier2 records image barriers.
func (cmd CommandBuffer) CmdPipelineBarrier2(barriers ...ImageMemoryBarrier2) {
	if len(barriers) == 0 {
		return
	}
	arr := (*C.VkImageMemoryBarrier2)(C.calloc(C.size_t(len(barriers)), C.sizeof_VkImageMemoryBarrier2))
	defer C.free(unsafe.Pointer(arr))
	slice := unsafe.Slice(arr, len(barriers))
	for i, b := range barriers {
		slice[i].sType = C.VK_STRUCTURE_TYPE_IMAGE_MEMORY_BARRIER_2
		slice[i].srcStageMask = C.VkPipelineStageFlags2(b.SrcStageMask)
		slice[i].srcAccessMask = C.VkAccessFlags2(b.SrcAccessMask)
		slice[i].dstStageMask = C.VkPipelineStageFlags2(b.DstStageMask)
		slice[i].dstAccessMask = C.VkAccessFlags2(b.DstAccessMask)
		slice[i].oldLayout = C.VkImageLayout(b.OldLayout)
		slice[i].newLayout = C.VkImageLayout(b.NewLayout)
		slice[i].srcQueueFamilyIndex = C.VK_QUEUE_FAMILY_IGNORED
		slice[i].dstQueueFamilyIndex = C.VK_QUEUE_FAMILY_IGNORED
		slice[i].image = b.Image.handle
		slice[i].subresourceRange = b.Subresource.vulkanize()
	}

	var depInfo C.VkDependencyInfo
	depInfo.sType = C.VK_STRUCTURE_TYPE_DEPENDENCY_INFO
	depInfo.imageMemoryBarrierCount = C.uint32_t(len(barriers))
	depInfo.pImageMemoryBarriers = arr

	C.vkCmdPipelineBarrier2(cmd.handle, &depInfo)
}

// BufferMemoryBarrier2 mirrors VkBufferMemoryBarrier2.
type BufferMemoryBarrier2 struct {
	SrcStageMask  PipelineStageFlags2
	SrcAccessMask AccessFlags2
	DstStageMask  PipelineStageFlags2
	DstAccessMask AccessFlags2
	Buffer        Buffer
	Offset        uint64
	Size          uint64
}

// CmdBufferBarrier2 records buffer barriers.
func (cmd CommandBuffer) CmdBufferBarrier2(barriers ...BufferMemoryBarrier2) {
	if len(barriers) == 0 {
		return
	}
	arr := (*C.VkBufferMemoryBarrier2)(C.calloc(C.size_t(len(barriers)), C.sizeof_VkBufferMemoryBarrier2))
	defer C.free(unsafe.Pointer(arr))
	slice := unsafe.Slice(arr, len(barriers))
	for i, b := range barriers {
		slice[i].sType = C.VK_STRUCTURE_TYPE_BUFFER_MEMORY_BARRIER_2
		slice[i].srcStageMask = C.VkPipelineStageFlags2(b.SrcStageMask)
		slice[i].srcAccessMask = C.VkAccessFlags2(b.SrcAccessMask)
		slice[i].dstStageMask = C.VkPipelineStageFlags2(b.DstStageMask)
		slice[i].dstAccessMask = C.VkAccessFlags2(b.DstAccessMask)
		slice[i].srcQueueFamilyIndex = C.VK_QUEUE_FAMILY_IGNORED
		slice[i].dstQueueFamilyIndex = C.VK_QUEUE_FAMILY_IGNORED
		slice[i].buffer = b.Buffer.handle
		slice[i].offset = C.VkDeviceSize(b.Offset)
		slice[i].size = C.VkDeviceSize(b.Size)
	}

	var depInfo C.VkDependencyInfo
	depInfo.sType = C.VK_STRUCTURE_TYPE_DEPENDENCY_INFO
	depInfo.bufferMemoryBarrierCount = C.uint32_t(len(barriers))
	depInfo.pBufferMemoryBarriers = arr

	C.vkCmdPipelineBarrier2(cmd.handle, &depInfo)
}

// RenderingAttachmentInfo describes one dynamic-rendering attachment.
type RenderingAttachmentInfo struct {
	ImageView ImageView
	Layout    ImageLayout
	LoadOp    AttachmentLoadOp
	StoreOp   AttachmentStoreOp
	// ClearColor applies to color attachments, ClearDepthStencil to
	// depth/stencil ones; the LoadOp decides whether either is read.
	ClearColor        ClearColorValue
	ClearDepthStencil ClearDepthStencilValue
	IsDepthStencil    bool
}

func (a RenderingAttachmentInfo) vulkanize(out *C.VkRenderingAttachmentInfo) {
	out.sType = C.VK_STRUCTURE_TYPE_RENDERING_ATTACHMENT_INFO
	out.imageView = a.ImageView.handle
	out.imageLayout = C.VkImageLayout(a.Layout)
	out.loadOp = C.VkAttachmentLoadOp(a.LoadOp)
	out.storeOp = C.VkAttachmentStoreOp(a.StoreOp)
	if a.IsDepthStencil {
		ds := (*C.VkClearDepthStencilValue)(unsafe.Pointer(&out.clearValue))
		ds.depth = C.float(a.ClearDepthStencil.Depth)
		ds.stencil = C.uint32_t(a.ClearDepthStencil.Stencil)
	} else {
		color := (*C.float)(unsafe.Pointer(&out.clearValue))
		values := unsafe.Slice(color, 4)
		for i := 0; i < 4; i++ {
			values[i] = C.float(a.ClearColor[i])
		}
	}
}

// RenderingInfo configures CmdBeginRendering.
type RenderingInfo struct {
	RenderArea Rect2D
	Colors     []RenderingAttachmentInfo
	Depth      *RenderingAttachmentInfo
	Stencil    *RenderingAttachmentInfo
}

// CmdBeginRendering opens a dynamic rendering scope.
func (cmd CommandBuffer) CmdBeginRendering(info RenderingInfo) {
	var colors *C.VkRenderingAttachmentInfo
	if len(info.Colors) > 0 {
		colors = (*C.VkRenderingAttachmentInfo)(C.calloc(C.size_t(len(info.Colors)), C.sizeof_VkRenderingAttachmentInfo))
		defer C.free(unsafe.Pointer(colors))
		slice := unsafe.Slice(colors, len(info.Colors))
		for i, a := range info.Colors {
			a.vulkanize(&slice[i])
		}
	}

	var depth, stencil *C.VkRenderingAttachmentInfo
	if info.Depth != nil {
		depth = (*C.VkRenderingAttachmentInfo)(C.calloc(1, C.sizeof_VkRenderingAttachmentInfo))
		defer C.free(unsafe.Pointer(depth))
		info.Depth.vulkanize(depth)
	}
	if info.Stencil != nil {
		stencil = (*C.VkRenderingAttachmentInfo)(C.calloc(1, C.sizeof_VkRenderingAttachmentInfo))
		defer C.free(unsafe.Pointer(stencil))
		info.Stencil.vulkanize(stencil)
	}

	var renderingInfo C.VkRenderingInfo
	renderingInfo.sType = C.VK_STRUCTURE_TYPE_RENDERING_INFO
	renderingInfo.renderArea = C.VkRect2D{
		offset: C.VkOffset2D{x: C.int32_t(info.RenderArea.Offset.X), y: C.int32_t(info.RenderArea.Offset.Y)},
		extent: C.VkExtent2D{width: C.uint32_t(info.RenderArea.Extent.Width), height: C.uint32_t(info.RenderArea.Extent.Height)},
	}
	renderingInfo.layerCount = 1
	renderingInfo.colorAttachmentCount = C.uint32_t(len(info.Colors))
	renderingInfo.pColorAttachments = colors
	renderingInfo.pDepthAttachment = depth
	renderingInfo.pStencilAttachment = stencil

	C.vkCmdBeginRendering(cmd.handle, &renderingInfo)
}

// CmdEndRendering closes the dynamic rendering scope.
func (cmd CommandBuffer) CmdEndRendering() {
	C.vkCmdEndRendering(cmd.handle)
}

// CmdBindPipeline binds a graphics pipeline.
func (cmd CommandBuffer) CmdBindPipeline(pipeline Pipeline) {
	C.vkCmdBindPipeline(cmd.handle, C.VK_PIPELINE_BIND_POINT_GRAPHICS, pipeline.handle)
}

// CmdBindDescriptorSets binds descriptor sets with dynamic offsets.
func (cmd CommandBuffer) CmdBindDescriptorSets(layout PipelineLayout, firstSet uint32, sets []DescriptorSet, dynamicOffsets []uint32) {
	handles := make([]C.VkDescriptorSet, len(sets))
	for i, s := range sets {
		handles[i] = s.handle
	}
	var offsets *C.uint32_t
	cOffsets := make([]C.uint32_t, len(dynamicOffsets))
	for i, o := range dynamicOffsets {
		cOffsets[i] = C.uint32_t(o)
	}
	if len(cOffsets) > 0 {
		offsets = &cOffsets[0]
	}
	C.vkCmdBindDescriptorSets(cmd.handle, C.VK_PIPELINE_BIND_POINT_GRAPHICS, layout.handle, C.uint32_t(firstSet),
		C.uint32_t(len(handles)), &handles[0], C.uint32_t(len(cOffsets)), offsets)
}

// CmdBindVertexBuffer binds one vertex buffer at a binding index.
func (cmd CommandBuffer) CmdBindVertexBuffer(binding uint32, buffer Buffer, offset uint64) {
	cOffset := C.VkDeviceSize(offset)
	C.vkCmdBindVertexBuffers(cmd.handle, C.uint32_t(binding), 1, &buffer.handle, &cOffset)
}

// CmdBindIndexBuffer binds the index buffer.
func (cmd CommandBuffer) CmdBindIndexBuffer(buffer Buffer, offset uint64, indexType IndexType) {
	C.vkCmdBindIndexBuffer(cmd.handle, buffer.handle, C.VkDeviceSize(offset), C.VkIndexType(indexType))
}

// CmdSetViewport sets one viewport.
func (cmd CommandBuffer) CmdSetViewport(viewport Viewport) {
	cv := C.VkViewport{
		x:        C.float(viewport.X),
		y:        C.float(viewport.Y),
		width:    C.float(viewport.Width),
		height:   C.float(viewport.Height),
		minDepth: C.float(viewport.MinDepth),
		maxDepth: C.float(viewport.MaxDepth),
	}
	C.vkCmdSetViewport(cmd.handle, 0, 1, &cv)
}

// CmdSetScissor sets one scissor rect.
func (cmd CommandBuffer) CmdSetScissor(rect Rect2D) {
	cr := C.VkRect2D{
		offset: C.VkOffset2D{x: C.int32_t(rect.Offset.X), y: C.int32_t(rect.Offset.Y)},
		extent: C.VkExtent2D{width: C.uint32_t(rect.Extent.Width), height: C.uint32_t(rect.Extent.Height)},
	}
	C.vkCmdSetScissor(cmd.handle, 0, 1, &cr)
}

// CmdSetLineWidth sets the rasterized line width.
func (cmd CommandBuffer) CmdSetLineWidth(width float32) {
	C.vkCmdSetLineWidth(cmd.handle, C.float(width))
}

// CmdSetCullMode sets the cull mode (core dynamic state).
func (cmd CommandBuffer) CmdSetCullMode(mode CullModeFlags) {
	C.vkCmdSetCullMode(cmd.handle, C.VkCullModeFlags(mode))
}

// CmdSetFrontFace sets the winding order.
func (cmd CommandBuffer) CmdSetFrontFace(face FrontFace) {
	C.vkCmdSetFrontFace(cmd.handle, C.VkFrontFace(face))
}

// CmdSetPrimitiveTopology sets the topology.
func (cmd CommandBuffer) CmdSetPrimitiveTopology(topology PrimitiveTopology) {
	C.vkCmdSetPrimitiveTopology(cmd.handle, C.VkPrimitiveTopology(topology))
}

// CmdSetDepthTestEnable toggles depth testing.
func (cmd CommandBuffer) CmdSetDepthTestEnable(enable bool) {
	C.vkCmdSetDepthTestEnable(cmd.handle, boolTo32(enable))
}

// CmdSetDepthWriteEnable toggles depth writes.
func (cmd CommandBuffer) CmdSetDepthWriteEnable(enable bool) {
	C.vkCmdSetDepthWriteEnable(cmd.handle, boolTo32(enable))
}

// CmdSetDepthCompareOp sets the depth compare operation.
func (cmd CommandBuffer) CmdSetDepthCompareOp(op CompareOp) {
	C.vkCmdSetDepthCompareOp(cmd.handle, C.VkCompareOp(op))
}

// CmdSetStencilTestEnable toggles stencil testing.
func (cmd CommandBuffer) CmdSetStencilTestEnable(enable bool) {
	C.vkCmdSetStencilTestEnable(cmd.handle, boolTo32(enable))
}

func boolTo32(b bool) C.VkBool32 {
	if b {
		return C.VK_TRUE
	}
	return C.VK_FALSE
}

// CmdSetColorBlendEnable sets per-attachment blend enables (EDS3).
func (cmd CommandBuffer) CmdSetColorBlendEnable(first uint32, enables []bool) {
	if cmd.procs == nil || cmd.procs.cmdSetColorBlendEnable == nil {
		return
	}
	cEnables := make([]C.VkBool32, len(enables))
	for i, e := range enables {
		cEnables[i] = boolTo32(e)
	}
	C.callCmdSetColorBlendEnable(cmd.procs.cmdSetColorBlendEnable, cmd.handle,
		C.uint32_t(first), C.uint32_t(len(enables)), &cEnables[0])
}

// CmdSetColorWriteMask sets per-attachment write masks (EDS3).
func (cmd CommandBuffer) CmdSetColorWriteMask(first uint32, masks []ColorComponentFlags) {
	if cmd.procs == nil || cmd.procs.cmdSetColorWriteMask == nil {
		return
	}
	cMasks := make([]C.VkColorComponentFlags, len(masks))
	for i, m := range masks {
		cMasks[i] = C.VkColorComponentFlags(m)
	}
	C.callCmdSetColorWriteMask(cmd.procs.cmdSetColorWriteMask, cmd.handle,
		C.uint32_t(first), C.uint32_t(len(masks)), &cMasks[0])
}

// CmdSetPolygonMode sets the polygon mode (EDS3).
func (cmd CommandBuffer) CmdSetPolygonMode(mode PolygonMode) {
	if cmd.procs == nil || cmd.procs.cmdSetPolygonMode == nil {
		return
	}
	C.callCmdSetPolygonMode(cmd.procs.cmdSetPolygonMode, cmd.handle, C.VkPolygonMode(mode))
}

// CmdSetRasterizationSamples sets the sample count (EDS3).
func (cmd CommandBuffer) CmdSetRasterizationSamples(samples SampleCountFlags) {
	if cmd.procs == nil || cmd.procs.cmdSetRasterizationSamples == nil {
		return
	}
	C.callCmdSetRasterizationSamples(cmd.procs.cmdSetRasterizationSamples, cmd.handle, C.VkSampleCountFlagBits(samples))
}

// CmdPushConstants pushes a constant range.
func (cmd CommandBuffer) CmdPushConstants(layout PipelineLayout, stages ShaderStageFlags, offset uint32, data unsafe.Pointer, size uint32) {
	C.vkCmdPushConstants(cmd.handle, layout.handle, C.VkShaderStageFlags(stages), C.uint32_t(offset), C.uint32_t(size), data)
}

// CmdPushDescriptorSet writes push descriptors into the command buffer.
func (cmd CommandBuffer) CmdPushDescriptorSet(layout PipelineLayout, set uint32, writes []WriteDescriptorSet) {
	if cmd.procs == nil || cmd.procs.cmdPushDescriptorSet == nil || len(writes) == 0 {
		return
	}
	arr, free := marshalWrites(DescriptorSet{}, writes)
	defer free()
	C.callCmdPushDescriptorSet(cmd.procs.cmdPushDescriptorSet, cmd.handle, C.VK_PIPELINE_BIND_POINT_GRAPHICS,
		layout.handle, C.uint32_t(set), C.uint32_t(len(writes)), arr)
}

// CmdDraw issues a non-indexed draw.
func (cmd CommandBuffer) CmdDraw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	C.vkCmdDraw(cmd.handle, C.uint32_t(vertexCount), C.uint32_t(instanceCount), C.uint32_t(firstVertex), C.uint32_t(firstInstance))
}

// CmdDrawIndexed issues an indexed draw.
func (cmd CommandBuffer) CmdDrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	C.vkCmdDrawIndexed(cmd.handle, C.uint32_t(indexCount), C.uint32_t(instanceCount), C.uint32_t(firstIndex), C.int32_t(vertexOffset), C.uint32_t(firstInstance))
}

// BufferCopy mirrors VkBufferCopy.
type BufferCopy struct {
	SrcOffset, DstOffset, Size uint64
}

// CmdCopyBuffer copies between buffers.
func (cmd CommandBuffer) CmdCopyBuffer(src, dst Buffer, regions ...BufferCopy) {
	arr := (*C.VkBufferCopy)(C.calloc(C.size_t(len(regions)), C.sizeof_VkBufferCopy))
	defer C.free(unsafe.Pointer(arr))
	slice := unsafe.Slice(arr, len(regions))
	for i, r := range regions {
		slice[i].srcOffset = C.VkDeviceSize(r.SrcOffset)
		slice[i].dstOffset = C.VkDeviceSize(r.DstOffset)
		slice[i].size = C.VkDeviceSize(r.Size)
	}
	C.vkCmdCopyBuffer(cmd.handle, src.handle, dst.handle, C.uint32_t(len(regions)), arr)
}

// BufferImageCopy mirrors VkBufferImageCopy for 2D copies.
type BufferImageCopy struct {
	BufferOffset      uint64
	BufferRowLength   uint32
	BufferImageHeight uint32
	AspectMask        ImageAspectFlags
	MipLevel          uint32
	BaseArrayLayer    uint32
	LayerCount        uint32
	ImageOffset       Offset2D
	ImageExtent       Extent2D
}

// CmdCopyBufferToImage copies staging bytes into an image.
func (cmd CommandBuffer) CmdCopyBufferToImage(src Buffer, dst Image, layout ImageLayout, regions ...BufferImageCopy) {
	arr := (*C.VkBufferImageCopy)(C.calloc(C.size_t(len(regions)), C.sizeof_VkBufferImageCopy))
	defer C.free(unsafe.Pointer(arr))
	slice := unsafe.Slice(arr, len(regions))
	for i, r := range regions {
		slice[i].bufferOffset = C.VkDeviceSize(r.BufferOffset)
		slice[i].bufferRowLength = C.uint32_t(r.BufferRowLength)
		slice[i].bufferImageHeight = C.uint32_t(r.BufferImageHeight)
		slice[i].imageSubresource = C.VkImageSubresourceLayers{
			aspectMask:     C.VkImageAspectFlags(r.AspectMask),
			mipLevel:       C.uint32_t(r.MipLevel),
			baseArrayLayer: C.uint32_t(r.BaseArrayLayer),
			layerCount:     C.uint32_t(r.LayerCount),
		}
		slice[i].imageOffset = C.VkOffset3D{x: C.int32_t(r.ImageOffset.X), y: C.int32_t(r.ImageOffset.Y), z: 0}
		slice[i].imageExtent = C.VkExtent3D{
			width:  C.uint32_t(r.ImageExtent.Width),
			height: C.uint32_t(r.ImageExtent.Height),
			depth:  1,
		}
	}
	C.vkCmdCopyBufferToImage(cmd.handle, src.handle, dst.handle, C.VkImageLayout(layout), C.uint32_t(len(regions)), arr)
}

// ImageBlit describes one blit region between two mip levels.
type ImageBlit struct {
	SrcAspect   ImageAspectFlags
	SrcMipLevel uint32
	SrcLayers   uint32
	SrcOffsets  [2]Offset3D
	DstAspect   ImageAspectFlags
	DstMipLevel uint32
	DstLayers   uint32
	DstOffsets  [2]Offset3D
}

// CmdBlitImage blits with scaling and the given filter.
func (cmd CommandBuffer) CmdBlitImage(src Image, srcLayout ImageLayout, dst Image, dstLayout ImageLayout, region ImageBlit, filter Filter) {
	blit := (*C.VkImageBlit)(C.calloc(1, C.sizeof_VkImageBlit))
	defer C.free(unsafe.Pointer(blit))
	blit.srcSubresource = C.VkImageSubresourceLayers{
		aspectMask: C.VkImageAspectFlags(region.SrcAspect),
		mipLevel:   C.uint32_t(region.SrcMipLevel),
		layerCount: C.uint32_t(region.SrcLayers),
	}
	blit.dstSubresource = C.VkImageSubresourceLayers{
		aspectMask: C.VkImageAspectFlags(region.DstAspect),
		mipLevel:   C.uint32_t(region.DstMipLevel),
		layerCount: C.uint32_t(region.DstLayers),
	}
	for i := 0; i < 2; i++ {
		blit.srcOffsets[i] = C.VkOffset3D{x: C.int32_t(region.SrcOffsets[i].X), y: C.int32_t(region.SrcOffsets[i].Y), z: C.int32_t(region.SrcOffsets[i].Z)}
		blit.dstOffsets[i] = C.VkOffset3D{x: C.int32_t(region.DstOffsets[i].X), y: C.int32_t(region.DstOffsets[i].Y), z: C.int32_t(region.DstOffsets[i].Z)}
	}
	C.vkCmdBlitImage(cmd.handle, src.handle, C.VkImageLayout(srcLayout), dst.handle, C.VkImageLayout(dstLayout), 1, blit, C.VkFilter(filter))
}

// CmdBeginDebugLabel opens a debug label region when debug utils are live.
func (cmd CommandBuffer) CmdBeginDebugLabel(name string) {
	if cmd.procs == nil || cmd.procs.cmdBeginDebugUtilsLabel == nil {
		return
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	label := (*C.VkDebugUtilsLabelEXT)(C.calloc(1, C.sizeof_VkDebugUtilsLabelEXT))
	defer C.free(unsafe.Pointer(label))
	label.sType = C.VK_STRUCTURE_TYPE_DEBUG_UTILS_LABEL_EXT
	label.pLabelName = cName
	C.callCmdBeginDebugUtilsLabel(cmd.procs.cmdBeginDebugUtilsLabel, cmd.handle, label)
}

// CmdEndDebugLabel closes the innermost debug label region.
func (cmd CommandBuffer) CmdEndDebugLabel() {
	if cmd.procs == nil || cmd.procs.cmdEndDebugUtilsLabel == nil {
		return
	}
	C.callCmdEndDebugUtilsLabel(cmd.procs.cmdEndDebugUtilsLabel, cmd.handle)
}
