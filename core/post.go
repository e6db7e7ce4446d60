package core

import (
	"os"
	"path/filepath"
	"unsafe"

	"github.com/loov/hrtime"
	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// TonemapperLinear is the passthrough tone curve. Other curve indices
// are defined by the tonemapping shader and pass through untouched.
const TonemapperLinear int32 = 0

// TonemapperUBO mirrors the tonemapping shader's parameter block under
// std140 rules. Tonemapper selects the curve; the shoulder/toe fields
// feed the piecewise filmic curve and are ignored by the others.
type TonemapperUBO struct {
	Tonemapper      int32
	ShoulderB       float32
	ShoulderLnA     float32
	ShoulderOffsetX float32
	ShoulderOffsetY float32
	ToeB            float32
	ToeLnA          float32
	X0              float32
	X1              float32
	Y0              float32
	Exposure        float32
	_               float32
}

// LightshaftsUBO mirrors the light-shaft shader block. SunPosition is
// in normalized screen coordinates; Samples is clamped to the shader's
// loop bound at record time.
type LightshaftsUBO struct {
	SunPosition      [2]float32
	Density          float32
	Falloff          float32
	Weight           float32
	Intensity        float32
	CockpitIntensity float32
	Samples          int32
}

// lightshaftMaxSamples bounds the shader's ray-march loop. An effect
// table asking for more would stall the GPU.
const lightshaftMaxSamples = 128

// DefaultLightshafts returns the stock shaft parameters scaled by the
// sun visibility factor. SunPosition is the caller's to fill.
func DefaultLightshafts(sunSpot float32) LightshaftsUBO {
	return LightshaftsUBO{
		Density:          0.5,
		Falloff:          1,
		Weight:           0.02,
		Intensity:        0.5 * sunSpot,
		CockpitIntensity: 0.5 * sunSpot,
		Samples:          50,
	}
}

// PostEffectsUBO mirrors the post-effects shader block under std140
// rules: each vec3 occupies a 16-byte row with the following scalar
// packed into its padding. Timer is overwritten by the renderer every
// frame. Identity is saturation, brightness and contrast at 1 with
// everything else zero.
type PostEffectsUBO struct {
	Timer        float32
	NoiseAmount  float32
	Saturation   float32
	Brightness   float32
	Contrast     float32
	FilmGrain    float32
	TvStripes    float32
	Cutoff       float32
	Tint         [3]float32
	Dither       float32
	CustomVecA   [3]float32
	CustomFloatA float32
	CustomVecB   [3]float32
	CustomFloatB float32
}

// IdentityPostEffects returns post-effect values that leave the image
// untouched, the base for layering individual effects.
func IdentityPostEffects() PostEffectsUBO {
	return PostEffectsUBO{Saturation: 1, Brightness: 1, Contrast: 1}
}

// Per-pass generic blocks. These stay private: the chain fills them
// from renderer state.
type blurData struct {
	TexSize float32
	Level   int32
}

type bloomCompositionData struct {
	Levels    int32
	Intensity float32
}

type smaaData struct {
	// x = width, y = height; z and w are spare.
	RtMetrics [4]float32
}

type fxaaData struct {
	RtWidth  float32
	RtHeight float32
}

func uniformBytes[T any](data *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(data)), unsafe.Sizeof(*data))
}

// SceneTextureBegin routes subsequent drawing into the offscreen HDR
// scene target and clears it. With enableHdr the curve set through
// SetTonemapper applies at SceneTextureEnd; without it the end pass
// clamps only. A begin while a capture window is already open is
// ignored.
func (c FrameCtx) SceneTextureBegin(enableHdr bool) {
	r := c.Renderer
	if r.scene.active {
		return
	}
	r.scene = sceneTextureState{active: true, hdr: enableHdr}

	cmd := c.Cmd()
	r.session.RequestClear()
	r.session.RequestTarget(cmd, TargetSceneHdrColorDepth)
	// Open the pass now so the clear lands even if nothing draws.
	r.session.EnsureRendering(cmd, c.Recording.imageIndex, r.globalSet)
}

// CopyEffectTexture refreshes the scene snapshot distortion shaders
// sample. Inside a capture window the HDR target blits into its effect
// copy; outside one the swapchain capture refreshes instead.
func (c FrameCtx) CopyEffectTexture() {
	r := c.Renderer
	if r.scene.active {
		r.session.CopySceneHdrToEffect(c.Cmd())
		return
	}
	c.captureSceneColor()
}

// SceneTextureEnd runs the post chain over the captured scene and
// resolves onto the swapchain: bloom composited back into the HDR
// image, tonemapping into the LDR target, SMAA or FXAA per
// configuration, an optional additive light-shaft pass, and the
// post-effects resolve (a plain copy when no effects are set). With
// enablePost false the chain reduces to tonemapping plus copy. The
// screen's clip rectangle is restored afterwards.
func (c FrameCtx) SceneTextureEnd(screen *gfx.Screen, enablePost bool) {
	r := c.Renderer
	if !r.scene.active {
		return
	}
	hdrEnabled := r.scene.hdr
	cmd := c.Cmd()
	index := c.Recording.imageIndex

	restore := c.scissorRestoreRect(screen)

	r.session.TransitionPostToShaderRead(cmd, PostTargetSceneHdr)

	if enablePost && r.cfg.BloomIntensity > 0 {
		c.runBloomChain()
	}

	// Tonemapping: scene HDR into the LDR target.
	r.session.RequestTarget(cmd, TargetPostLdr)
	rt := r.session.EnsureRendering(cmd, index, r.globalSet)
	if err := c.recordTonemappingPass(rt, hdrEnabled); err != nil {
		log.WithError(err).Error("tonemapping pass skipped")
	}
	r.session.TransitionPostToShaderRead(cmd, PostTargetLdr)

	ldr := vk.DescriptorImageInfo{
		Sampler:     r.targets.PostSampler(),
		ImageView:   r.targets.PostView(PostTargetLdr),
		ImageLayout: vk.LayoutShaderReadOnly,
	}
	ldrIsSmaa := false

	aa := r.cfg.AntiAliasing
	if aa == AntiAliasSMAA && !r.smaa.loaded {
		aa = AntiAliasFXAA
	}
	if enablePost && aa == AntiAliasSMAA {
		ldrIsSmaa = c.runSmaaChain(&ldr)
	} else if enablePost && aa == AntiAliasFXAA {
		c.runFxaaChain(ldr)
	}

	if enablePost && r.lightshafts != nil {
		c.runLightshafts(*r.lightshafts, ldrIsSmaa)
	}
	r.lightshafts = nil

	// The post-effects shader samples the main depth, and a plain copy
	// tolerates the transition, so make it readable either way.
	r.session.TransitionDepthToShaderRead(cmd)
	depth := vk.DescriptorImageInfo{
		Sampler:     r.targets.DepthSampler(),
		ImageView:   r.targets.DepthSampledView(),
		ImageLayout: r.targets.DepthReadLayout(),
	}

	r.session.RequestTarget(cmd, TargetSwapchainColorOnly)
	rt = r.session.EnsureRendering(cmd, index, r.globalSet)
	if enablePost && r.postFx != nil {
		if err := c.recordPostEffectsPass(rt, *r.postFx, ldr, depth); err != nil {
			log.WithError(err).Error("post effects pass skipped")
		}
	} else if err := c.recordCopyPass(rt, ldr); err != nil {
		log.WithError(err).Error("scene resolve copy skipped")
	}

	cmd.CmdSetScissor(restore)
	r.scene = sceneTextureState{}
}

// scissorRestoreRect is the clip rectangle to reinstate after a chain
// of fullscreen passes clobbered the scissor.
func (c FrameCtx) scissorRestoreRect(screen *gfx.Screen) vk.Rect2D {
	extent := c.Renderer.deviceCtx.SwapchainExtent()
	if screen == nil {
		return vk.Rect2D{Extent: extent}
	}
	return ClampScissorToFramebuffer(ScissorFromScreen(screen), extent)
}

// runBloomChain brightens, blurs and composites: bright pass into
// bloom[0] mip 0 at half resolution, the mip chain blitted down from
// it, two blur rounds ping-ponging between the chains, and an additive
// composite back into the scene HDR target. The scene image ends
// shader-readable again.
func (c FrameCtx) runBloomChain() {
	r := c.Renderer
	cmd := c.Cmd()
	index := c.Recording.imageIndex

	r.session.RequestClear()
	r.session.RequestBloomMipTarget(cmd, 0, 0)
	rt := r.session.EnsureRendering(cmd, index, r.globalSet)
	if err := c.recordBloomBrightPass(rt); err != nil {
		log.WithError(err).Error("bloom bright pass skipped")
		return
	}
	c.generateBloomMipmaps(0)

	for iteration := 0; iteration < 2; iteration++ {
		r.session.TransitionBloomToShaderRead(cmd, 0)
		for mip := 0; mip < BloomMipLevels; mip++ {
			r.session.RequestBloomMipTarget(cmd, 1, mip)
			rt := r.session.EnsureRendering(cmd, index, r.globalSet)
			if err := c.recordBloomBlurPass(rt, 0, gfx.VariantBlurVertical, mip); err != nil {
				log.WithError(err).Error("bloom blur pass skipped")
			}
		}

		r.session.TransitionBloomToShaderRead(cmd, 1)
		for mip := 0; mip < BloomMipLevels; mip++ {
			r.session.RequestBloomMipTarget(cmd, 0, mip)
			rt := r.session.EnsureRendering(cmd, index, r.globalSet)
			if err := c.recordBloomBlurPass(rt, 1, gfx.VariantBlurHorizontal, mip); err != nil {
				log.WithError(err).Error("bloom blur pass skipped")
			}
		}
	}

	r.session.TransitionBloomToShaderRead(cmd, 0)
	r.session.RequestTarget(cmd, TargetSceneHdrColorOnly)
	rt = r.session.EnsureRendering(cmd, index, r.globalSet)
	if err := c.recordBloomCompositePass(rt); err != nil {
		log.WithError(err).Error("bloom composite pass skipped")
	}
	r.session.TransitionPostToShaderRead(cmd, PostTargetSceneHdr)
}

// runSmaaChain records edge detection, blending-weight calculation and
// neighborhood blending. On success ldr is retargeted at the SMAA
// output and true is returned; on a skipped pass the LDR input stands.
func (c FrameCtx) runSmaaChain(ldr *vk.DescriptorImageInfo) bool {
	r := c.Renderer
	cmd := c.Cmd()
	index := c.Recording.imageIndex
	extent := r.deviceCtx.SwapchainExtent()

	metrics := smaaData{}
	metrics.RtMetrics[0] = float32(extent.Width)
	metrics.RtMetrics[1] = float32(extent.Height)

	r.session.RequestTarget(cmd, TargetSmaaEdges)
	rt := r.session.EnsureRendering(cmd, index, r.globalSet)
	err := c.recordFullscreenPass(rt, fullscreenPass{
		shader:  gfx.ShaderSmaaEdge,
		extent:  extent,
		uniform: uniformBytes(&metrics),
		images:  []vk.DescriptorImageInfo{*ldr},
	})
	if err != nil {
		log.WithError(err).Error("smaa edge pass skipped")
		return false
	}
	r.session.TransitionPostToShaderRead(cmd, PostTargetSmaaEdges)

	r.session.RequestTarget(cmd, TargetSmaaBlend)
	rt = r.session.EnsureRendering(cmd, index, r.globalSet)
	err = c.recordFullscreenPass(rt, fullscreenPass{
		shader:  gfx.ShaderSmaaBlendingWeight,
		extent:  extent,
		uniform: uniformBytes(&metrics),
		images: []vk.DescriptorImageInfo{
			c.postInput(r.targets.PostView(PostTargetSmaaEdges)),
			c.postInput(r.smaa.area.view),
			c.postInput(r.smaa.search.view),
		},
	})
	if err != nil {
		log.WithError(err).Error("smaa blending weight pass skipped")
		return false
	}
	r.session.TransitionPostToShaderRead(cmd, PostTargetSmaaBlend)

	r.session.RequestTarget(cmd, TargetSmaaOutput)
	rt = r.session.EnsureRendering(cmd, index, r.globalSet)
	err = c.recordFullscreenPass(rt, fullscreenPass{
		shader:  gfx.ShaderSmaaNeighborhood,
		extent:  extent,
		uniform: uniformBytes(&metrics),
		images: []vk.DescriptorImageInfo{
			*ldr,
			c.postInput(r.targets.PostView(PostTargetSmaaBlend)),
		},
	})
	if err != nil {
		log.WithError(err).Error("smaa neighborhood pass skipped")
		return false
	}
	r.session.TransitionPostToShaderRead(cmd, PostTargetSmaaOutput)

	ldr.ImageView = r.targets.PostView(PostTargetSmaaOutput)
	return true
}

// runFxaaChain converts the LDR image to RGB+luminance and applies
// FXAA back into the LDR target, which ends shader-readable again.
func (c FrameCtx) runFxaaChain(ldr vk.DescriptorImageInfo) {
	r := c.Renderer
	cmd := c.Cmd()
	index := c.Recording.imageIndex
	extent := r.deviceCtx.SwapchainExtent()

	r.session.RequestTarget(cmd, TargetPostLuminance)
	rt := r.session.EnsureRendering(cmd, index, r.globalSet)
	err := c.recordFullscreenPass(rt, fullscreenPass{
		shader: gfx.ShaderFxaaPrepass,
		extent: extent,
		images: []vk.DescriptorImageInfo{ldr},
	})
	if err != nil {
		log.WithError(err).Error("fxaa prepass skipped")
		return
	}
	r.session.TransitionPostToShaderRead(cmd, PostTargetLuminance)

	data := fxaaData{RtWidth: float32(extent.Width), RtHeight: float32(extent.Height)}
	r.session.RequestTarget(cmd, TargetPostLdr)
	rt = r.session.EnsureRendering(cmd, index, r.globalSet)
	err = c.recordFullscreenPass(rt, fullscreenPass{
		shader:  gfx.ShaderFxaa,
		extent:  extent,
		uniform: uniformBytes(&data),
		images:  []vk.DescriptorImageInfo{c.postInput(r.targets.PostView(PostTargetLuminance))},
	})
	if err != nil {
		log.WithError(err).Error("fxaa pass skipped")
	}
	r.session.TransitionPostToShaderRead(cmd, PostTargetLdr)
}

// runLightshafts adds the ray-marched shafts onto the current LDR
// image, sampling the main and cockpit depth to mask occluders. The
// image ends shader-readable again.
func (c FrameCtx) runLightshafts(params LightshaftsUBO, intoSmaaOutput bool) {
	r := c.Renderer
	cmd := c.Cmd()

	if params.Samples < 1 || params.Samples > lightshaftMaxSamples {
		clamped := params.Samples
		if clamped < 1 {
			clamped = 1
		}
		if clamped > lightshaftMaxSamples {
			clamped = lightshaftMaxSamples
		}
		log.Warnf("lightshaft sample count %d clamped to %d", params.Samples, clamped)
		params.Samples = clamped
	}

	r.session.TransitionDepthToShaderRead(cmd)
	r.session.TransitionCockpitDepthToShaderRead(cmd)

	target, kind := TargetPostLdr, PostTargetLdr
	if intoSmaaOutput {
		target, kind = TargetSmaaOutput, PostTargetSmaaOutput
	}
	r.session.RequestTarget(cmd, target)
	rt := r.session.EnsureRendering(cmd, c.Recording.imageIndex, r.globalSet)

	depth := vk.DescriptorImageInfo{
		Sampler:     r.targets.DepthSampler(),
		ImageView:   r.targets.DepthSampledView(),
		ImageLayout: r.targets.DepthReadLayout(),
	}
	cockpit := depth
	cockpit.ImageView = r.targets.CockpitDepthSampledView()

	err := c.recordFullscreenPass(rt, fullscreenPass{
		shader:  gfx.ShaderLightshafts,
		extent:  r.deviceCtx.SwapchainExtent(),
		blend:   gfx.BlendAdditive,
		uniform: uniformBytes(&params),
		images:  []vk.DescriptorImageInfo{depth, cockpit},
	})
	if err != nil {
		log.WithError(err).Error("lightshafts pass skipped")
	}
	r.session.TransitionPostToShaderRead(cmd, kind)
}

// postInput wraps a view with the shared post sampler in shader-read
// layout.
func (c FrameCtx) postInput(view vk.ImageView) vk.DescriptorImageInfo {
	return vk.DescriptorImageInfo{
		Sampler:     c.Renderer.targets.PostSampler(),
		ImageView:   view,
		ImageLayout: vk.LayoutShaderReadOnly,
	}
}

func (c FrameCtx) recordTonemappingPass(rt RenderTargetInfo, hdrEnabled bool) error {
	r := c.Renderer
	data := tonemappingUniform(r.tonemap)
	if !hdrEnabled {
		// No HDR pipeline: clamp only.
		data = tonemappingUniform(TonemapperUBO{Tonemapper: TonemapperLinear, Exposure: 1})
	}
	return c.recordFullscreenPass(rt, fullscreenPass{
		shader:  gfx.ShaderTonemapping,
		extent:  r.deviceCtx.SwapchainExtent(),
		uniform: data,
		images:  []vk.DescriptorImageInfo{c.postInput(r.targets.PostView(PostTargetSceneHdr))},
	})
}

func tonemappingUniform(curve TonemapperUBO) []byte {
	return uniformBytes(&curve)
}

func (c FrameCtx) recordBloomBrightPass(rt RenderTargetInfo) error {
	r := c.Renderer
	return c.recordFullscreenPass(rt, fullscreenPass{
		shader: gfx.ShaderBloomBrightPass,
		extent: r.targets.BloomMipExtent(0),
		images: []vk.DescriptorImageInfo{c.postInput(r.targets.PostView(PostTargetSceneHdr))},
	})
}

func (c FrameCtx) recordBloomBlurPass(rt RenderTargetInfo, src int, direction uint32, mip int) error {
	r := c.Renderer
	extent := r.targets.BloomMipExtent(uint32(mip))

	data := blurData{Level: int32(mip)}
	if direction&gfx.VariantBlurHorizontal != 0 {
		if extent.Width > 0 {
			data.TexSize = 1 / float32(extent.Width)
		}
	} else if extent.Height > 0 {
		data.TexSize = 1 / float32(extent.Height)
	}

	// The blur samples the source chain's full mip view; the shader
	// picks the level from the uniform.
	return c.recordFullscreenPass(rt, fullscreenPass{
		shader:   gfx.ShaderBloomBlur,
		variants: direction,
		extent:   extent,
		uniform:  uniformBytes(&data),
		images:   []vk.DescriptorImageInfo{c.postInput(r.targets.BloomChainView(src))},
	})
}

func (c FrameCtx) recordBloomCompositePass(rt RenderTargetInfo) error {
	r := c.Renderer
	data := bloomCompositionData{
		Levels:    BloomMipLevels,
		Intensity: float32(r.cfg.BloomIntensity) / 100,
	}
	return c.recordFullscreenPass(rt, fullscreenPass{
		shader:  gfx.ShaderBloomComposite,
		extent:  r.deviceCtx.SwapchainExtent(),
		blend:   gfx.BlendAdditive,
		uniform: uniformBytes(&data),
		images:  []vk.DescriptorImageInfo{c.postInput(r.targets.BloomChainView(0))},
	})
}

func (c FrameCtx) recordPostEffectsPass(rt RenderTargetInfo, params PostEffectsUBO, ldr, depth vk.DescriptorImageInfo) error {
	params.Timer = float32(hrtime.Now().Milliseconds()%100 + 1)
	// Binding 4 is reserved for custom effects; it mirrors the depth
	// input until one needs it.
	return c.recordFullscreenPass(rt, fullscreenPass{
		shader:  gfx.ShaderPostEffects,
		extent:  c.Renderer.deviceCtx.SwapchainExtent(),
		uniform: uniformBytes(&params),
		images:  []vk.DescriptorImageInfo{ldr, depth, depth},
	})
}

// recordCopyPass draws src onto the current target with the plain copy
// shader. Shared by emissive preservation and the no-effect resolve.
func (c FrameCtx) recordCopyPass(rt RenderTargetInfo, src vk.DescriptorImageInfo) error {
	return c.recordFullscreenPass(rt, fullscreenPass{
		shader: gfx.ShaderCopy,
		extent: c.Renderer.deviceCtx.SwapchainExtent(),
		images: []vk.DescriptorImageInfo{src},
	})
}

// fullscreenPass describes one post-chain draw: the shader pair, the
// pass extent, an optional generic block for binding 1 and the sampled
// inputs pushed at bindings 2 onward.
type fullscreenPass struct {
	shader   gfx.ShaderType
	variants uint32
	extent   vk.Extent2D
	blend    gfx.AlphaBlend
	uniform  []byte
	images   []vk.DescriptorImageInfo
}

// recordFullscreenPass draws the shared fullscreen triangle with the
// pass's shader. The viewport is Y-flipped over the pass extent and
// the scissor opened fully; callers reinstate the clip afterwards.
func (c FrameCtx) recordFullscreenPass(rt RenderTargetInfo, pass fullscreenPass) error {
	r := c.Renderer
	cmd := c.Cmd()

	cmd.CmdSetViewport(vk.Viewport{
		Y:        float32(pass.extent.Height),
		Width:    float32(pass.extent.Width),
		Height:   -float32(pass.extent.Height),
		MaxDepth: 1,
	})
	cmd.CmdSetScissor(vk.Rect2D{Extent: pass.extent})
	cmd.CmdSetPrimitiveTopology(vk.TopologyTriangleList)
	cmd.CmdSetCullMode(vk.CullModeNone)
	cmd.CmdSetFrontFace(vk.FrontFaceClockwise)
	cmd.CmdSetDepthTestEnable(false)
	cmd.CmdSetDepthWriteEnable(false)
	cmd.CmdSetDepthCompareOp(vk.CompareOpAlways)
	cmd.CmdSetStencilTestEnable(false)

	modules, err := r.shaders.Modules(pass.shader, pass.variants)
	if err != nil {
		return err
	}

	// Same triangle and layout as the deferred fullscreen light.
	layout := lightVolumeLayout()

	key := NewPipelineKey(pass.shader)
	key.VariantFlags = pass.variants
	key.ColorFormat = rt.ColorFormat
	key.DepthFormat = rt.DepthFormat
	key.ColorAttachmentCount = rt.ColorAttachmentCount
	key.BlendMode = pass.blend
	key.LayoutHash = layout.Hash()

	pipeline, err := r.pipelines.GetPipeline(key, modules, layout)
	if err != nil {
		return err
	}
	cmd.CmdBindPipeline(pipeline)

	additive := pass.blend == gfx.BlendAdditive
	caps := r.deviceCtx.Caps()
	dynamicBlend := caps.SupportsEDS3 && caps.EDS3.ColorBlendEnable
	if dynamicBlend {
		cmd.CmdSetColorBlendEnable(0, []bool{additive})
	}

	writes := make([]vk.WriteDescriptorSet, 0, 1+len(pass.images))
	if pass.uniform != nil {
		uniforms := c.Recording.frame.Uniforms()
		alloc, err := uniforms.Write(pass.uniform)
		if err != nil {
			return errors.Wrap(err, "uniform ring: post pass")
		}
		writes = append(writes, vk.WriteDescriptorSet{
			DstBinding: 1,
			Type:       vk.DescriptorUniformBuffer,
			Buffers: []vk.DescriptorBufferInfo{{
				Buffer: uniforms.Buffer(),
				Offset: alloc.Offset,
				Range:  uint64(len(pass.uniform)),
			}},
		})
	}
	for i, image := range pass.images {
		writes = append(writes, vk.WriteDescriptorSet{
			DstBinding: uint32(2 + i),
			Type:       vk.DescriptorCombinedImageSampler,
			Images:     []vk.DescriptorImageInfo{image},
		})
	}
	cmd.CmdPushDescriptorSet(r.layouts.StandardPipelineLayout(), 0, writes)

	vb, err := r.buffers.Buffer(r.volumes.fullscreen.vbo)
	if err != nil {
		return err
	}
	cmd.CmdBindVertexBuffer(0, vb, 0)
	cmd.CmdDraw(3, 1, 0, 0)

	if dynamicBlend && additive {
		cmd.CmdSetColorBlendEnable(0, []bool{false})
	}
	return nil
}

// generateBloomMipmaps fills the chain's lower mips by blitting each
// level into the next. The blur passes sample the whole chain, so
// every mip must hold the bright-pass image at its scale.
func (c FrameCtx) generateBloomMipmaps(index int) {
	r := c.Renderer
	cmd := c.Cmd()
	r.session.SuspendRendering(cmd)

	image := r.targets.BloomImage(index)
	filter := r.textures.blitFilter(SceneHdrFormat)

	// All mips to transfer-dst; each becomes the source as the chain
	// walks down.
	old := r.targets.BloomLayout(index)
	srcStage, srcAccess := StageAccessForLayout(old)
	cmd.CmdPipelineBarrier2(vk.ImageMemoryBarrier2{
		SrcStageMask:  srcStage,
		SrcAccessMask: srcAccess,
		DstStageMask:  vk.StageTransfer,
		DstAccessMask: vk.AccessTransferWrite,
		OldLayout:     old,
		NewLayout:     vk.LayoutTransferDst,
		Image:         image,
		Subresource: vk.ImageSubresourceRange{
			AspectMask: vk.AspectColor,
			LevelCount: BloomMipLevels,
			LayerCount: 1,
		},
	})
	r.targets.SetBloomLayout(index, vk.LayoutTransferDst)

	mipToSrc := func(mip uint32) {
		cmd.CmdPipelineBarrier2(vk.ImageMemoryBarrier2{
			SrcStageMask:  vk.StageTransfer,
			SrcAccessMask: vk.AccessTransferWrite,
			DstStageMask:  vk.StageTransfer,
			DstAccessMask: vk.AccessTransferRead,
			OldLayout:     vk.LayoutTransferDst,
			NewLayout:     vk.LayoutTransferSrc,
			Image:         image,
			Subresource: vk.ImageSubresourceRange{
				AspectMask:   vk.AspectColor,
				BaseMipLevel: mip,
				LevelCount:   1,
				LayerCount:   1,
			},
		})
	}
	mipToSrc(0)

	src := r.targets.BloomMipExtent(0)
	for mip := uint32(1); mip < BloomMipLevels; mip++ {
		dst := r.targets.BloomMipExtent(mip)
		cmd.CmdBlitImage(image, vk.LayoutTransferSrc, image, vk.LayoutTransferDst, vk.ImageBlit{
			SrcAspect:   vk.AspectColor,
			SrcMipLevel: mip - 1,
			SrcLayers:   1,
			SrcOffsets:  [2]vk.Offset3D{{}, {X: int32(src.Width), Y: int32(src.Height), Z: 1}},
			DstAspect:   vk.AspectColor,
			DstMipLevel: mip,
			DstLayers:   1,
			DstOffsets:  [2]vk.Offset3D{{}, {X: int32(dst.Width), Y: int32(dst.Height), Z: 1}},
		}, filter)
		mipToSrc(mip)
		src = dst
	}

	cmd.CmdPipelineBarrier2(vk.ImageMemoryBarrier2{
		SrcStageMask:  vk.StageTransfer,
		SrcAccessMask: vk.AccessTransferRead,
		DstStageMask:  vk.StageFragmentShader,
		DstAccessMask: vk.AccessShaderRead,
		OldLayout:     vk.LayoutTransferSrc,
		NewLayout:     vk.LayoutShaderReadOnly,
		Image:         image,
		Subresource: vk.ImageSubresourceRange{
			AspectMask: vk.AspectColor,
			LevelCount: BloomMipLevels,
			LayerCount: 1,
		},
	})
	r.targets.SetBloomLayout(index, vk.LayoutShaderReadOnly)
}

// SMAA lookup tables. The payloads are precomputed by the SMAA authors
// and ship alongside the shaders; their sizes are fixed by the
// algorithm.
const (
	smaaAreaTexFile  = "smaa-area.bin"
	smaaAreaWidth    = 160
	smaaAreaHeight   = 560
	smaaSearchFile   = "smaa-search.bin"
	smaaSearchWidth  = 64
	smaaSearchHeight = 16
)

type smaaLookup struct {
	image  vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
}

type smaaLookups struct {
	area   smaaLookup
	search smaaLookup
	loaded bool
}

func (s *smaaLookups) destroy(device vk.Device) {
	for _, l := range []*smaaLookup{&s.area, &s.search} {
		if l.image == (vk.Image{}) {
			continue
		}
		device.DestroyImageView(l.view)
		device.FreeMemory(l.memory)
		device.DestroyImage(l.image)
		*l = smaaLookup{}
	}
	s.loaded = false
}

// createSmaaLookups uploads the two SMAA tables. Missing or malformed
// files are not fatal: the chain falls back to FXAA.
func (r *Renderer) createSmaaLookups() error {
	area, err := r.loadLookupPixels(smaaAreaTexFile, smaaAreaWidth*smaaAreaHeight*2)
	if err != nil {
		return err
	}
	search, err := r.loadLookupPixels(smaaSearchFile, smaaSearchWidth*smaaSearchHeight)
	if err != nil {
		return err
	}
	if err := r.uploadLookup(area, smaaAreaWidth, smaaAreaHeight, vk.FormatR8G8Unorm, &r.smaa.area); err != nil {
		return err
	}
	if err := r.uploadLookup(search, smaaSearchWidth, smaaSearchHeight, vk.FormatR8Unorm, &r.smaa.search); err != nil {
		r.smaa.destroy(r.device)
		return err
	}
	r.smaa.loaded = true
	return nil
}

func (r *Renderer) loadLookupPixels(name string, want int) ([]byte, error) {
	path := filepath.Join(r.cfg.ShaderDirectory, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "os.ReadFile(): SMAA lookup")
	}
	if len(raw) != want {
		return nil, errors.Errorf("SMAA lookup %s is %d bytes, want %d", name, len(raw), want)
	}
	return raw, nil
}

// uploadLookup creates a device-local sampled image and fills it
// through a one-shot staging ring, blocking until the copy ran.
func (r *Renderer) uploadLookup(pixels []byte, width, height uint32, format vk.Format, out *smaaLookup) error {
	image, err := r.device.CreateImage(vk.ImageCreateInfo{
		Format:      format,
		Extent:      vk.Extent2D{Width: width, Height: height},
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     vk.Samples1,
		Tiling:      vk.TilingOptimal,
		Usage:       vk.ImageUsageTransferDst | vk.ImageUsageSampled,
	})
	if err != nil {
		return errors.Wrap(err, "vk.CreateImage(): SMAA lookup")
	}
	requirements := r.device.GetImageMemoryRequirements(image)
	memProps := r.deviceCtx.MemoryProperties()
	typeIndex, ok := memProps.FindType(requirements.MemoryTypeBits, vk.MemoryDeviceLocal)
	if !ok {
		r.device.DestroyImage(image)
		return errors.New("no device-local memory type for SMAA lookup")
	}
	memory, err := r.device.AllocateMemory(requirements.Size, typeIndex)
	if err != nil {
		r.device.DestroyImage(image)
		return errors.Wrap(err, "vk.AllocateMemory(): SMAA lookup")
	}
	if err := r.device.BindImageMemory(image, memory, 0); err != nil {
		r.device.FreeMemory(memory)
		r.device.DestroyImage(image)
		return errors.Wrap(err, "vk.BindImageMemory(): SMAA lookup")
	}
	view, err := r.device.CreateImageView(vk.ImageViewCreateInfo{
		Image:    image,
		ViewType: vk.ViewType2D,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.AspectColor,
			LevelCount: 1,
			LayerCount: 1,
		},
	})
	if err != nil {
		r.device.FreeMemory(memory)
		r.device.DestroyImage(image)
		return errors.Wrap(err, "vk.CreateImageView(): SMAA lookup")
	}

	cleanup := func() {
		r.device.DestroyImageView(view)
		r.device.FreeMemory(memory)
		r.device.DestroyImage(image)
	}

	staging, err := NewRingBuffer(r.device, memProps, uint64(len(pixels)), vk.BufferUsageTransferSrc, 4)
	if err != nil {
		cleanup()
		return err
	}
	defer staging.Destroy()
	if _, err := staging.Write(pixels); err != nil {
		cleanup()
		return err
	}

	err = r.submitInitCommandsAndWait(func(cmd vk.CommandBuffer) error {
		transitionImageLayout(cmd, image, vk.AspectColor, vk.LayoutUndefined, vk.LayoutTransferDst)
		cmd.CmdCopyBufferToImage(staging.Buffer(), image, vk.LayoutTransferDst, vk.BufferImageCopy{
			AspectMask:  vk.AspectColor,
			LayerCount:  1,
			ImageExtent: vk.Extent2D{Width: width, Height: height},
		})
		transitionImageLayout(cmd, image, vk.AspectColor, vk.LayoutTransferDst, vk.LayoutShaderReadOnly)
		return nil
	})
	if err != nil {
		cleanup()
		return err
	}

	*out = smaaLookup{image: image, memory: memory, view: view}
	return nil
}
