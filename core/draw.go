package core

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// ModelDrawSource describes the index storage behind a set of model
// batches. Vertices are pulled from the registered vertex heap; only
// the index buffer is bound per draw.
type ModelDrawSource struct {
	IndexBuffer gfx.BufferHandle
	// Byte offset of this model's index region inside IndexBuffer.
	IndexHeapBase uint64
	// Dynamic offset of the transform array written into the frame's
	// vertex ring.
	TransformsOffset uint32
	Batches          []gfx.ModelBatch
}

func topologyFor(prim gfx.PrimitiveType) vk.PrimitiveTopology {
	switch prim {
	case gfx.TriangleStrip:
		return vk.TopologyTriangleStrip
	case gfx.TriangleFan:
		return vk.TopologyTriangleFan
	case gfx.Lines:
		return vk.TopologyLineList
	case gfx.LineStrip:
		return vk.TopologyLineStrip
	case gfx.Points:
		return vk.TopologyPointList
	default:
		return vk.TopologyTriangleList
	}
}

func cullModeFor(mode gfx.CullMode) vk.CullModeFlags {
	switch mode {
	case gfx.CullFront:
		return vk.CullModeFront
	case gfx.CullNone:
		return vk.CullModeNone
	default:
		return vk.CullModeBack
	}
}

func compareOpFor(op gfx.CompareOp) vk.CompareOp {
	switch op {
	case gfx.CompareNever:
		return vk.CompareOpNever
	case gfx.CompareLess:
		return vk.CompareOpLess
	case gfx.CompareLessEqual:
		return vk.CompareOpLessOrEqual
	case gfx.CompareGreater:
		return vk.CompareOpGreater
	case gfx.CompareGreaterEqual:
		return vk.CompareOpGreaterOrEqual
	case gfx.CompareEqual:
		return vk.CompareOpEqual
	case gfx.CompareNotEqual:
		return vk.CompareOpNotEqual
	default:
		return vk.CompareOpAlways
	}
}

func stencilOpFor(op gfx.StencilOp) vk.StencilOp {
	switch op {
	case gfx.StencilZero:
		return vk.StencilOpZero
	case gfx.StencilReplace:
		return vk.StencilOpReplace
	case gfx.StencilIncrClamp:
		return vk.StencilOpIncrClamp
	case gfx.StencilDecrClamp:
		return vk.StencilOpDecrClamp
	case gfx.StencilInvert:
		return vk.StencilOpInvert
	default:
		return vk.StencilOpKeep
	}
}

func colorMaskFor(mask gfx.ColorMask) vk.ColorComponentFlags {
	var flags vk.ColorComponentFlags
	if mask.Red {
		flags |= vk.ColorComponentR
	}
	if mask.Green {
		flags |= vk.ColorComponentG
	}
	if mask.Blue {
		flags |= vk.ColorComponentB
	}
	if mask.Alpha {
		flags |= vk.ColorComponentA
	}
	return flags
}

// pipelineKeyForMaterial builds the full pipeline identity for a draw
// against the current attachment contract. Model shader types get the
// deferred variant flag exactly when the pass renders into the
// G-buffer.
func pipelineKeyForMaterial(material *gfx.Material, rt RenderTargetInfo, layoutHash uint64) PipelineKey {
	key := NewPipelineKey(material.Shader)
	key.VariantFlags = material.VariantFlags
	if UsesVertexPulling(material.Shader) {
		if rt.ColorAttachmentCount == GBufferCount {
			key.VariantFlags |= gfx.VariantDeferred
		} else {
			key.VariantFlags &^= gfx.VariantDeferred
		}
	}
	key.ColorFormat = rt.ColorFormat
	key.DepthFormat = rt.DepthFormat
	key.ColorAttachmentCount = rt.ColorAttachmentCount
	key.BlendMode = material.Blend
	key.LayoutHash = layoutHash
	key.ColorWriteMask = colorMaskFor(material.WriteMask)

	stencil := material.Stencil
	key.StencilTestEnable = stencil.Enable && rt.DepthFormat.HasStencil()
	key.StencilCompareOp = compareOpFor(stencil.Compare)
	key.StencilCompareMask = stencil.CompareMask
	key.StencilWriteMask = stencil.WriteMask
	key.StencilReference = stencil.Reference
	key.FrontFailOp = stencilOpFor(stencil.Front.Fail)
	key.FrontDepthFailOp = stencilOpFor(stencil.Front.DepthFail)
	key.FrontPassOp = stencilOpFor(stencil.Front.Pass)
	key.BackFailOp = stencilOpFor(stencil.Back.Fail)
	key.BackDepthFailOp = stencilOpFor(stencil.Back.DepthFail)
	key.BackPassOp = stencilOpFor(stencil.Back.Pass)
	return key
}

// Clear marks every aspect of the current target for clearing at the
// next pass begin.
func (c FrameCtx) Clear() {
	c.Renderer.session.RequestClear()
}

// ClearDepth marks the depth and stencil aspects for clearing at the
// next pass begin, keeping color.
func (c FrameCtx) ClearDepth() {
	c.Renderer.session.RequestDepthClear()
}

// SetClearColor sets the color used by the next clear.
func (c FrameCtx) SetClearColor(r, g, b, a float32) {
	c.Renderer.session.SetClearColor(r, g, b, a)
}

// SetClip applies the engine clip rectangle and updates the scissor if
// a pass is open.
func (c FrameCtx) SetClip(screen *gfx.Screen, x, y, w, h int, mode gfx.ResizeMode) {
	screen.ApplyClip(x, y, w, h, mode)
	c.applyScissor(screen)
}

// ResetClip restores the full-screen clip.
func (c FrameCtx) ResetClip(screen *gfx.Screen) {
	screen.ResetClip()
	c.applyScissor(screen)
}

func (c FrameCtx) applyScissor(screen *gfx.Screen) {
	r := c.Renderer
	if !r.session.PassActive() {
		return
	}
	extent := r.deviceCtx.SwapchainExtent()
	c.Cmd().CmdSetScissor(ClampScissorToFramebuffer(ScissorFromScreen(screen), extent))
}

// applyMaterialState records the per-draw dynamic state. Depth is
// forced off when the pass has no depth attachment or the draw belongs
// to an overlay path.
func (c FrameCtx) applyMaterialState(material *gfx.Material, rt RenderTargetInfo,
	screen *gfx.Screen, prim gfx.PrimitiveType, forceDepthOff bool) {
	r := c.Renderer
	cmd := c.Cmd()
	extent := r.deviceCtx.SwapchainExtent()

	cmd.CmdSetPrimitiveTopology(topologyFor(prim))
	cmd.CmdSetCullMode(cullModeFor(material.Cull))
	cmd.CmdSetFrontFace(vk.FrontFaceClockwise)

	depthTest := material.DepthTest
	depthWrite := material.DepthWrite
	if forceDepthOff || rt.DepthFormat == vk.FormatUndefined {
		depthTest = false
		depthWrite = false
	}
	cmd.CmdSetDepthTestEnable(depthTest)
	cmd.CmdSetDepthWriteEnable(depthWrite)
	if depthTest {
		cmd.CmdSetDepthCompareOp(compareOpFor(material.DepthCompare))
	} else {
		cmd.CmdSetDepthCompareOp(vk.CompareOpAlways)
	}
	cmd.CmdSetStencilTestEnable(material.Stencil.Enable && rt.DepthFormat.HasStencil())

	if screen != nil {
		cmd.CmdSetScissor(ClampScissorToFramebuffer(ScissorFromScreen(screen), extent))
	} else {
		cmd.CmdSetScissor(vk.Rect2D{Extent: extent})
	}

	caps := r.deviceCtx.Caps()
	if caps.SupportsEDS3 {
		count := int(rt.ColorAttachmentCount)
		if caps.EDS3.ColorBlendEnable {
			enables := make([]bool, count)
			for i := range enables {
				enables[i] = material.Blend != gfx.BlendNone
			}
			cmd.CmdSetColorBlendEnable(0, enables)
		}
		if caps.EDS3.ColorWriteMask {
			masks := make([]vk.ColorComponentFlags, count)
			for i := range masks {
				masks[i] = colorMaskFor(material.WriteMask)
			}
			cmd.CmdSetColorWriteMask(0, masks)
		}
		if caps.EDS3.PolygonMode {
			cmd.CmdSetPolygonMode(vk.PolygonModeFill)
		}
		if caps.EDS3.RasterizationSamples {
			cmd.CmdSetRasterizationSamples(vk.Samples1)
		}
	}
}

// BindUniformBuffer records an engine uniform-block binding for the
// open recording.
func (c FrameCtx) BindUniformBuffer(block gfx.UniformBlock, offset, size uint64, handle gfx.BufferHandle) error {
	buffer, err := c.Renderer.buffers.Buffer(handle)
	if err != nil {
		return err
	}
	return c.Recording.frame.BindUniformBlock(block, UniformBinding{
		Handle: handle,
		Buffer: buffer,
		Offset: offset,
		Size:   size,
	})
}

// pushStandardDescriptors writes the per-draw set 0: matrices at
// binding 0, the generic material block at binding 1 and the base map
// sampler at binding 2. NanoVG draws take their generic block from the
// NanoVG binding; distortion draws without a base map sample the most
// recent scene snapshot.
func (c FrameCtx) pushStandardDescriptors(material *gfx.Material) error {
	r := c.Renderer
	frame := c.Recording.frame
	writes := make([]vk.WriteDescriptorSet, 0, 3)

	matrices := frame.MatricesUniform()
	if matrices.Buffer == (vk.Buffer{}) {
		return errors.New("draw without a bound matrices uniform block")
	}
	writes = append(writes, vk.WriteDescriptorSet{
		DstBinding: 0,
		Type:       vk.DescriptorUniformBuffer,
		Buffers: []vk.DescriptorBufferInfo{{
			Buffer: matrices.Buffer,
			Offset: matrices.Offset,
			Range:  matrices.Size,
		}},
	})

	generic := frame.ModelUniform()
	if material.Shader == gfx.ShaderNanoVG {
		generic = frame.NanoVGUniform()
	}
	if generic.Buffer != (vk.Buffer{}) {
		writes = append(writes, vk.WriteDescriptorSet{
			DstBinding: 1,
			Type:       vk.DescriptorUniformBuffer,
			Buffers: []vk.DescriptorBufferInfo{{
				Buffer: generic.Buffer,
				Offset: generic.Offset,
				Range:  generic.Size,
			}},
		})
	}

	if material.HasBaseMap {
		info, err := r.textures.Descriptor(material.BaseMap, SamplerKeyFor(material))
		if err != nil {
			return err
		}
		writes = append(writes, vk.WriteDescriptorSet{
			DstBinding: 2,
			Type:       vk.DescriptorCombinedImageSampler,
			Images:     []vk.DescriptorImageInfo{info},
		})
	} else if material.Shader == gfx.ShaderDistortion && c.sceneEffectReadable() {
		writes = append(writes, vk.WriteDescriptorSet{
			DstBinding: 2,
			Type:       vk.DescriptorCombinedImageSampler,
			Images:     []vk.DescriptorImageInfo{c.postInput(r.targets.PostView(PostTargetSceneEffect))},
		})
	} else if material.Shader == gfx.ShaderDistortion && c.sceneColorReadable() {
		index := int(c.Recording.imageIndex)
		writes = append(writes, vk.WriteDescriptorSet{
			DstBinding: 2,
			Type:       vk.DescriptorCombinedImageSampler,
			Images: []vk.DescriptorImageInfo{{
				Sampler:     r.targets.SceneColorSampler(),
				ImageView:   r.targets.SceneColorView(index),
				ImageLayout: vk.LayoutShaderReadOnly,
			}},
		})
	}

	c.Cmd().CmdPushDescriptorSet(r.layouts.StandardPipelineLayout(), 0, writes)
	return nil
}

func (c FrameCtx) sceneColorReadable() bool {
	r := c.Renderer
	index := int(c.Recording.imageIndex)
	return r.targets.HasSceneColor() &&
		r.targets.SceneColorLayout(index) == vk.LayoutShaderReadOnly
}

// sceneEffectReadable reports whether an open capture window has a
// sampleable scene snapshot.
func (c FrameCtx) sceneEffectReadable() bool {
	r := c.Renderer
	return r.scene.active &&
		r.targets.PostLayout(PostTargetSceneEffect) == vk.LayoutShaderReadOnly
}

// drawPrimitives is the common non-model path: pipeline from material
// and attachment contract, push descriptors, dynamic state, one vertex
// stream.
func (c FrameCtx) drawPrimitives(screen *gfx.Screen, material *gfx.Material, prim gfx.PrimitiveType,
	layout *gfx.VertexLayout, firstVertex, vertexCount uint32,
	buffer gfx.BufferHandle, bufferOffset uint64, forceDepthOff bool) error {
	r := c.Renderer
	cmd := c.Cmd()

	rt := r.session.EnsureRendering(cmd, c.Recording.imageIndex, r.globalSet)

	key := pipelineKeyForMaterial(material, rt, layout.Hash())
	modules, err := r.shaders.Modules(material.Shader, key.VariantFlags)
	if err != nil {
		return err
	}
	pipeline, err := r.pipelines.GetPipeline(key, modules, layout)
	if err != nil {
		return err
	}
	cmd.CmdBindPipeline(pipeline)

	if err := c.pushStandardDescriptors(material); err != nil {
		return err
	}
	c.applyMaterialState(material, rt, screen, prim, forceDepthOff)

	vb, err := r.buffers.Buffer(buffer)
	if err != nil {
		return err
	}
	if vb == (vk.Buffer{}) {
		return errors.Errorf("vertex buffer %d has no storage", buffer)
	}
	cmd.CmdBindVertexBuffer(0, vb, bufferOffset)
	cmd.CmdDraw(vertexCount, 1, firstVertex, 0)
	return nil
}

// RenderPrimitives draws one non-indexed vertex range with the
// material's shader.
func (c FrameCtx) RenderPrimitives(screen *gfx.Screen, material *gfx.Material, prim gfx.PrimitiveType,
	layout *gfx.VertexLayout, firstVertex, vertexCount uint32, buffer gfx.BufferHandle, bufferOffset uint64) {
	err := c.drawPrimitives(screen, material, prim, layout, firstVertex, vertexCount, buffer, bufferOffset, false)
	if err != nil {
		log.WithError(err).Error("render primitives draw skipped")
	}
}

// RenderPrimitivesBatched draws pre-merged batch geometry. The batcher
// streams everything into one buffer, so the path matches
// RenderPrimitives.
func (c FrameCtx) RenderPrimitivesBatched(screen *gfx.Screen, material *gfx.Material, prim gfx.PrimitiveType,
	layout *gfx.VertexLayout, firstVertex, vertexCount uint32, buffer gfx.BufferHandle, bufferOffset uint64) {
	err := c.drawPrimitives(screen, material, prim, layout, firstVertex, vertexCount, buffer, bufferOffset, false)
	if err != nil {
		log.WithError(err).Error("batched primitives draw skipped")
	}
}

// RenderPrimitivesParticle draws soft particles.
func (c FrameCtx) RenderPrimitivesParticle(screen *gfx.Screen, material *gfx.Material, prim gfx.PrimitiveType,
	layout *gfx.VertexLayout, firstVertex, vertexCount uint32, buffer gfx.BufferHandle, bufferOffset uint64) {
	err := c.drawPrimitives(screen, material, prim, layout, firstVertex, vertexCount, buffer, bufferOffset, false)
	if err != nil {
		log.WithError(err).Error("particle draw skipped")
	}
}

// RenderPrimitivesDistortion draws the distortion overlay, sampling
// the captured scene color.
func (c FrameCtx) RenderPrimitivesDistortion(screen *gfx.Screen, material *gfx.Material, prim gfx.PrimitiveType,
	layout *gfx.VertexLayout, firstVertex, vertexCount uint32, buffer gfx.BufferHandle, bufferOffset uint64) {
	err := c.drawPrimitives(screen, material, prim, layout, firstVertex, vertexCount, buffer, bufferOffset, false)
	if err != nil {
		log.WithError(err).Error("distortion draw skipped")
	}
}

// RenderNanoVG draws vector UI geometry. The session is forced onto
// the depth-stencil swapchain target; depth testing stays off.
func (c FrameCtx) RenderNanoVG(screen *gfx.Screen, material *gfx.Material, prim gfx.PrimitiveType,
	layout *gfx.VertexLayout, firstVertex, vertexCount uint32, buffer gfx.BufferHandle, bufferOffset uint64) {
	c.Renderer.session.RequestTarget(c.Cmd(), TargetSwapchainColorDepth)
	err := c.drawPrimitives(screen, material, prim, layout, firstVertex, vertexCount, buffer, bufferOffset, true)
	if err != nil {
		log.WithError(err).Error("nanovg draw skipped")
	}
}

// RenderRocketPrimitives draws libRocket UI geometry, indexed, on the
// color-only swapchain target.
func (c FrameCtx) RenderRocketPrimitives(screen *gfx.Screen, material *gfx.Material,
	layout *gfx.VertexLayout, vertexBuffer gfx.BufferHandle, vertexOffset uint64,
	indexBuffer gfx.BufferHandle, indexOffset uint64, indexCount uint32) {
	if err := c.drawRocket(screen, material, layout, vertexBuffer, vertexOffset, indexBuffer, indexOffset, indexCount); err != nil {
		log.WithError(err).Error("rocket draw skipped")
	}
}

func (c FrameCtx) drawRocket(screen *gfx.Screen, material *gfx.Material,
	layout *gfx.VertexLayout, vertexBuffer gfx.BufferHandle, vertexOffset uint64,
	indexBuffer gfx.BufferHandle, indexOffset uint64, indexCount uint32) error {
	r := c.Renderer
	cmd := c.Cmd()

	r.session.RequestTarget(cmd, TargetSwapchainColorOnly)
	rt := r.session.EnsureRendering(cmd, c.Recording.imageIndex, r.globalSet)

	key := pipelineKeyForMaterial(material, rt, layout.Hash())
	modules, err := r.shaders.Modules(material.Shader, key.VariantFlags)
	if err != nil {
		return err
	}
	pipeline, err := r.pipelines.GetPipeline(key, modules, layout)
	if err != nil {
		return err
	}
	cmd.CmdBindPipeline(pipeline)

	if err := c.pushStandardDescriptors(material); err != nil {
		return err
	}
	c.applyMaterialState(material, rt, screen, gfx.Triangles, true)

	vb, err := r.buffers.Buffer(vertexBuffer)
	if err != nil {
		return err
	}
	ib, err := r.buffers.Buffer(indexBuffer)
	if err != nil {
		return err
	}
	cmd.CmdBindVertexBuffer(0, vb, vertexOffset)
	cmd.CmdBindIndexBuffer(ib, indexOffset, vk.IndexTypeUint32)
	cmd.CmdDrawIndexed(indexCount, 1, 0, 0, 0)
	return nil
}

// RenderModel draws one batch of a model through the vertex-pulling
// path.
func (c FrameCtx) RenderModel(screen *gfx.Screen, material *gfx.Material, source *ModelDrawSource, batchIndex int) {
	if err := c.drawModelBatch(screen, material, source, batchIndex); err != nil {
		log.WithError(err).Error("model draw skipped")
	}
}

// RenderDecals draws decal batches; same path as models with the decal
// shader pair.
func (c FrameCtx) RenderDecals(screen *gfx.Screen, material *gfx.Material, source *ModelDrawSource, batchIndex int) {
	if err := c.drawModelBatch(screen, material, source, batchIndex); err != nil {
		log.WithError(err).Error("decal draw skipped")
	}
}

// RenderShieldImpact draws shield impact effects on the model path.
func (c FrameCtx) RenderShieldImpact(screen *gfx.Screen, material *gfx.Material, source *ModelDrawSource, batchIndex int) {
	if err := c.drawModelBatch(screen, material, source, batchIndex); err != nil {
		log.WithError(err).Error("shield impact draw skipped")
	}
}

func (c FrameCtx) drawModelBatch(screen *gfx.Screen, material *gfx.Material, source *ModelDrawSource, batchIndex int) error {
	r := c.Renderer
	frame := c.Recording.frame
	cmd := c.Cmd()

	if batchIndex < 0 || batchIndex >= len(source.Batches) {
		return errors.Errorf("batch index %d out of range (%d batches)", batchIndex, len(source.Batches))
	}
	batch := &source.Batches[batchIndex]

	modelUniform := frame.ModelUniform()
	if modelUniform.Buffer == (vk.Buffer{}) {
		return errors.New("model draw without a bound model uniform block")
	}

	rt := r.session.EnsureRendering(cmd, c.Recording.imageIndex, r.globalSet)

	key := pipelineKeyForMaterial(material, rt, 0)
	if batch.LargeIndex {
		key.VariantFlags |= gfx.VariantLargeIndex
	} else {
		key.VariantFlags &^= gfx.VariantLargeIndex
	}
	modules, err := r.shaders.Modules(material.Shader, key.VariantFlags)
	if err != nil {
		return err
	}
	pipeline, err := r.pipelines.GetPipeline(key, modules, nil)
	if err != nil {
		return err
	}
	cmd.CmdBindPipeline(pipeline)

	// Dynamic offsets in binding order: model UBO, then transforms.
	cmd.CmdBindDescriptorSets(r.layouts.ModelPipelineLayout(), 0,
		[]vk.DescriptorSet{frame.ModelSet()},
		[]uint32{uint32(modelUniform.Offset), source.TransformsOffset})

	push := ModelPushConstants{
		VertexOffset:      batch.VertexOffset,
		Stride:            batch.Stride,
		PosOffset:         batch.PosOffset,
		NormalOffset:      batch.NormalOffset,
		TexCoordOffset:    batch.TexCoordOffset,
		TangentOffset:     batch.TangentOffset,
		BoneIndicesOffset: batch.BoneIndicesOffset,
		BoneWeightsOffset: batch.BoneWeightsOffset,
		BaseMapIndex:      c.mapSlot(batch.Maps.Base, batch.Maps.HasBase, BindlessSlotDefaultBase),
		GlowMapIndex:      c.mapSlot(batch.Maps.Glow, batch.Maps.HasGlow, BindlessSlotFallback),
		NormalMapIndex:    c.mapSlot(batch.Maps.Normal, batch.Maps.HasNormal, BindlessSlotDefaultNormal),
		SpecMapIndex:      c.mapSlot(batch.Maps.Spec, batch.Maps.HasSpec, BindlessSlotDefaultSpec),
		MatrixIndex:       batch.MatrixIndex,
		Flags:             batch.Flags,
	}
	cmd.CmdPushConstants(r.layouts.ModelPipelineLayout(), vk.StageVertexBit|vk.StageFragmentBit,
		0, unsafe.Pointer(&push), modelPushConstantsSize)

	c.applyMaterialState(material, rt, screen, gfx.Triangles, false)

	ib, err := r.buffers.Buffer(source.IndexBuffer)
	if err != nil {
		return err
	}
	indexType := vk.IndexTypeUint16
	if batch.LargeIndex {
		indexType = vk.IndexTypeUint32
	}
	cmd.CmdBindIndexBuffer(ib, source.IndexHeapBase+uint64(batch.IndexOffset), indexType)
	cmd.CmdDrawIndexed(batch.IndexCount, 1, 0, 0, 0)
	return nil
}

func (c FrameCtx) mapSlot(id gfx.TextureID, present bool, absent uint32) uint32 {
	if !present {
		return absent
	}
	return c.Renderer.textures.Slot(id)
}

// UploadMovieFrame copies one decoded movie frame into its texture.
// The copy suspends any open pass since transfers cannot run inside a
// rendering scope.
func (c FrameCtx) UploadMovieFrame(handle gfx.MovieTextureHandle, planes gfx.MoviePlanes) {
	cmd := c.Cmd()
	c.Renderer.session.SuspendRendering(cmd)
	c.Renderer.movies.UploadMovieFrame(cmd, c.Recording.frame.Staging(), handle, planes)
}

// RenderMovie draws a movie texture as a screen-space rectangle on the
// color-only swapchain target.
func (c FrameCtx) RenderMovie(screen *gfx.Screen, handle gfx.MovieTextureHandle, x1, y1, x2, y2, alpha float32) {
	r := c.Renderer
	cmd := c.Cmd()
	r.session.RequestTarget(cmd, TargetSwapchainColorOnly)
	rt := r.session.EnsureRendering(cmd, c.Recording.imageIndex, r.globalSet)
	r.movies.DrawMovieTexture(cmd, screen, r.deviceCtx.SwapchainExtent(), rt, handle, x1, y1, x2, y2, alpha)
}

// DeferredLightingBegin opens the G-buffer geometry phase. With
// clearNonColor every aspect clears, otherwise color is preserved. The
// scene composited so far is copied into the emissive attachment first
// so unlit content survives the lighting composite.
func (c FrameCtx) DeferredLightingBegin(clearNonColor bool) {
	r := c.Renderer
	cmd := c.Cmd()

	r.deferred.begin()
	preserve := c.preserveEmissiveCopy()
	r.session.BeginDeferredPass(cmd, clearNonColor, preserve)
	// Open the pass now so the clears execute even when no geometry
	// follows.
	r.session.EnsureRendering(cmd, c.Recording.imageIndex, r.globalSet)
}

// preserveEmissiveCopy seeds the emissive G-buffer attachment with the
// current scene. Inside a capture window the HDR image is the source;
// on the swapchain the capture copy is. Reports whether a copy was
// recorded.
func (c FrameCtx) preserveEmissiveCopy() bool {
	r := c.Renderer
	cmd := c.Cmd()
	index := c.Recording.imageIndex

	if r.scene.active {
		r.session.TransitionPostToShaderRead(cmd, PostTargetSceneHdr)
		r.session.RequestTarget(cmd, TargetGBufferEmissiveOnly)
		rt := r.session.EnsureRendering(cmd, index, r.globalSet)
		src := c.postInput(r.targets.PostView(PostTargetSceneHdr))
		if err := c.recordCopyPass(rt, src); err != nil {
			log.WithError(err).Error("emissive preservation copy skipped")
			return false
		}
		return true
	}

	target := r.session.Target()
	if target != TargetSwapchainColorDepth && target != TargetSwapchainColorOnly {
		return false
	}
	c.captureSceneColor()
	if !c.sceneColorReadable() {
		return false
	}
	r.session.RequestTarget(cmd, TargetGBufferEmissiveOnly)
	rt := r.session.EnsureRendering(cmd, index, r.globalSet)
	src := vk.DescriptorImageInfo{
		Sampler:     r.targets.SceneColorSampler(),
		ImageView:   r.targets.SceneColorView(int(index)),
		ImageLayout: vk.LayoutShaderReadOnly,
	}
	if err := c.recordCopyPass(rt, src); err != nil {
		log.WithError(err).Error("emissive preservation copy skipped")
		return false
	}
	return true
}

// DeferredLightingEnd closes the geometry phase and moves the
// G-buffer to shader-read layouts.
func (c FrameCtx) DeferredLightingEnd() {
	if c.Renderer.deferred.end() {
		c.Renderer.session.EndDeferredGeometry(c.Cmd())
		c.retargetLightingComposite()
	}
}

// retargetLightingComposite routes the lighting composite at the scene
// HDR image when a capture window is open; EndDeferredGeometry selects
// the swapchain by default.
func (c FrameCtx) retargetLightingComposite() {
	if c.Renderer.scene.active {
		c.Renderer.session.RequestTarget(c.Cmd(), TargetSceneHdrColorOnly)
	}
}

// DeferredLightingFinish records the lighting phase over the submitted
// lights and reinstates the main target with the screen's clip. The
// ambient fullscreen light must come first: it runs with blending off
// and initializes the color target.
func (c FrameCtx) DeferredLightingFinish(screen *gfx.Screen, lights []DeferredLight) {
	r := c.Renderer
	cmd := c.Cmd()

	needEnd, ok := r.deferred.finish()
	if needEnd {
		r.session.EndDeferredGeometry(cmd)
		c.retargetLightingComposite()
	}
	if !ok {
		return
	}

	if len(lights) > 0 {
		c.recordDeferredLights(lights)
	}

	// Composition continues on the main target.
	if r.scene.active {
		r.session.RequestTarget(cmd, TargetSceneHdrColorDepth)
	} else {
		r.session.RequestTarget(cmd, TargetSwapchainColorDepth)
	}
	cmd.CmdSetScissor(c.scissorRestoreRect(screen))
}

func (c FrameCtx) recordDeferredLights(lights []DeferredLight) {
	r := c.Renderer
	cmd := c.Cmd()

	rt := r.session.EnsureRendering(cmd, c.Recording.imageIndex, r.globalSet)
	ctx, err := c.deferredContext(rt)
	if err != nil {
		log.WithError(err).Error("deferred lighting pass skipped")
		return
	}

	extent := r.deviceCtx.SwapchainExtent()
	cmd.CmdSetPrimitiveTopology(vk.TopologyTriangleList)
	cmd.CmdSetCullMode(vk.CullModeNone)
	cmd.CmdSetFrontFace(vk.FrontFaceClockwise)
	cmd.CmdSetDepthTestEnable(false)
	cmd.CmdSetDepthWriteEnable(false)
	cmd.CmdSetDepthCompareOp(vk.CompareOpAlways)
	cmd.CmdSetStencilTestEnable(false)
	cmd.CmdSetScissor(vk.Rect2D{Extent: extent})

	cmd.CmdBindDescriptorSets(r.layouts.DeferredPipelineLayout(), 1,
		[]vk.DescriptorSet{r.globalSet}, nil)

	for i, light := range lights {
		if err := light.record(ctx); err != nil {
			log.WithError(err).Errorf("deferred light %d skipped", i)
		}
	}
}

func (c FrameCtx) deferredContext(rt RenderTargetInfo) (*deferredDrawContext, error) {
	r := c.Renderer
	frame := c.Recording.frame

	volumeLayout := lightVolumeLayout()
	modules, err := r.shaders.Modules(gfx.ShaderDeferredLighting, 0)
	if err != nil {
		return nil, err
	}

	key := NewPipelineKey(gfx.ShaderDeferredLighting)
	key.ColorFormat = rt.ColorFormat
	key.DepthFormat = rt.DepthFormat
	key.ColorAttachmentCount = rt.ColorAttachmentCount
	key.BlendMode = gfx.BlendAdditive
	key.LayoutHash = volumeLayout.Hash()

	pipeline, err := r.pipelines.GetPipeline(key, modules, volumeLayout)
	if err != nil {
		return nil, err
	}

	caps := r.deviceCtx.Caps()
	dynamicBlend := caps.SupportsEDS3 && caps.EDS3.ColorBlendEnable
	ambient := pipeline
	if !dynamicBlend {
		ambientKey := key
		ambientKey.BlendMode = gfx.BlendNone
		ambient, err = r.pipelines.GetPipeline(ambientKey, modules, volumeLayout)
		if err != nil {
			return nil, err
		}
	}

	return &deferredDrawContext{
		cmd:          c.Cmd(),
		layout:       r.layouts.DeferredPipelineLayout(),
		set:          frame.DeferredSet(),
		pipeline:     pipeline,
		ambient:      ambient,
		dynamicBlend: dynamicBlend,
		uniforms:     frame.Uniforms(),
		buffers:      r.buffers,
		volumes:      r.volumes,
	}, nil
}

// captureSceneColor snapshots the current swapchain image into the
// per-image scene color capture for effect shaders to sample.
func (c FrameCtx) captureSceneColor() {
	r := c.Renderer
	cmd := c.Cmd()
	index := c.Recording.imageIndex

	if !r.deviceCtx.Caps().SwapchainTransferSrc || !r.targets.HasSceneColor() {
		r.logSceneCaptureUnavailable()
		return
	}

	r.session.SuspendRendering(cmd)

	image := r.deviceCtx.SwapchainImages()[index]
	transitionImageLayout(cmd, image, vk.AspectColor, r.session.SwapchainLayout(index), vk.LayoutTransferSrc)
	r.session.SetSwapchainLayout(index, vk.LayoutTransferSrc)

	scene := r.targets.SceneColorImage(int(index))
	transitionImageLayout(cmd, scene, vk.AspectColor, r.targets.SceneColorLayout(int(index)), vk.LayoutTransferDst)
	r.targets.SetSceneColorLayout(int(index), vk.LayoutTransferDst)

	extent := r.deviceCtx.SwapchainExtent()
	corner := vk.Offset3D{X: int32(extent.Width), Y: int32(extent.Height), Z: 1}
	cmd.CmdBlitImage(image, vk.LayoutTransferSrc, scene, vk.LayoutTransferDst, vk.ImageBlit{
		SrcAspect:  vk.AspectColor,
		SrcLayers:  1,
		SrcOffsets: [2]vk.Offset3D{{}, corner},
		DstAspect:  vk.AspectColor,
		DstLayers:  1,
		DstOffsets: [2]vk.Offset3D{{}, corner},
	}, vk.FilterNearest)

	transitionImageLayout(cmd, scene, vk.AspectColor, vk.LayoutTransferDst, vk.LayoutShaderReadOnly)
	r.targets.SetSceneColorLayout(int(index), vk.LayoutShaderReadOnly)
	transitionImageLayout(cmd, image, vk.AspectColor, vk.LayoutTransferSrc, vk.LayoutColorAttachment)
	r.session.SetSwapchainLayout(index, vk.LayoutColorAttachment)
}

// RenderToTexture routes subsequent drawing into one face of a render
// target created through the texture manager. A different target left
// bound is finalized for sampling first.
func (c FrameCtx) RenderToTexture(id gfx.TextureID, face uint32) error {
	r := c.Renderer
	cmd := c.Cmd()

	view, ok := r.textures.RenderTargetAttachmentView(id, face)
	if !ok {
		return errors.Errorf("texture %d has no render target face %d", id.BaseFrame(), face)
	}
	extent, _ := r.textures.RenderTargetExtent(id)

	r.session.SuspendRendering(cmd)
	if prev, bound := r.session.BitmapTarget(); bound && prev.ID != id {
		if err := r.textures.TransitionRenderTarget(cmd, prev.ID, vk.LayoutShaderReadOnly); err != nil {
			log.WithError(err).Error("render target finalize skipped")
		}
	}
	if err := r.textures.TransitionRenderTarget(cmd, id, vk.LayoutColorAttachment); err != nil {
		return err
	}
	r.session.RequestBitmapTarget(cmd, BitmapTargetBinding{
		ID:     id,
		Face:   face,
		View:   view,
		Extent: extent,
	})
	return nil
}

// RenderToScreen restores the swapchain target after render-to-texture
// and finalizes the bound target so it can be sampled.
func (c FrameCtx) RenderToScreen() {
	r := c.Renderer
	cmd := c.Cmd()

	r.session.SuspendRendering(cmd)
	if prev, bound := r.session.BitmapTarget(); bound {
		if err := r.textures.TransitionRenderTarget(cmd, prev.ID, vk.LayoutShaderReadOnly); err != nil {
			log.WithError(err).Error("render target finalize skipped")
		}
	}
	r.session.RequestTarget(cmd, TargetSwapchainColorDepth)
}

func (r *Renderer) logSceneCaptureUnavailable() {
	if r.loggedNoSceneCapture {
		return
	}
	r.loggedNoSceneCapture = true
	log.Warn("scene color capture unavailable: swapchain lacks transfer-src usage")
}

// PushDebugGroup opens a named debug label region on the command
// buffer.
func (c FrameCtx) PushDebugGroup(name string) {
	if !c.Renderer.cfg.Debug {
		return
	}
	c.Cmd().CmdBeginDebugLabel(name)
}

// PopDebugGroup closes the innermost debug label region.
func (c FrameCtx) PopDebugGroup() {
	if !c.Renderer.cfg.Debug {
		return
	}
	c.Cmd().CmdEndDebugLabel()
}

// IsCapable answers the engine's capability queries.
func (r *Renderer) IsCapable(cap gfx.Capability) bool {
	switch cap {
	case gfx.CapInstancedRendering:
		return true
	case gfx.CapPersistentMapping:
		return true
	default:
		return false
	}
}

// GetProperty answers the engine's integer property queries.
func (r *Renderer) GetProperty(prop gfx.Property) (int64, bool) {
	switch prop {
	case gfx.PropUniformBufferOffsetAlignment:
		return int64(r.deviceCtx.Properties().Limits.MinUniformBufferOffsetAlignment), true
	default:
		return 0, false
	}
}
