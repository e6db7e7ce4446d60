package core

import (
	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// RenderTargetTag selects the attachment set the next pass renders into.
// Parameterized targets (bloom mips, single G-buffer attachments, bitmap
// textures) are selected through their dedicated request methods, which
// record the parameters on the session.
type RenderTargetTag int

const (
	// TargetSwapchainColorDepth is the default forward target.
	TargetSwapchainColorDepth RenderTargetTag = iota
	// TargetSwapchainColorOnly is the UI, movie and final post target.
	TargetSwapchainColorOnly
	// TargetSceneHdrColorDepth is the forward target while a scene
	// capture window is open: the offscreen HDR image plus main depth.
	TargetSceneHdrColorDepth
	// TargetSceneHdrColorOnly receives deferred lighting and the bloom
	// composite in scene-texture mode.
	TargetSceneHdrColorOnly
	// TargetPostLdr is the tonemapped LDR output.
	TargetPostLdr
	// TargetPostLuminance is the FXAA prepass output.
	TargetPostLuminance
	// TargetSmaaEdges, TargetSmaaBlend and TargetSmaaOutput are the
	// three SMAA stage outputs.
	TargetSmaaEdges
	TargetSmaaBlend
	TargetSmaaOutput
	// TargetBloomMip is one mip of a bloom ping-pong image, selected
	// through RequestBloomMipTarget.
	TargetBloomMip
	// TargetGBuffer is the deferred geometry target.
	TargetGBuffer
	// TargetGBufferEmissiveOnly is the emissive attachment alone. The
	// pre-deferred copy pass seeds it with the composited scene.
	TargetGBufferEmissiveOnly
	// TargetGBufferAttachment is a single G-buffer attachment, selected
	// through RequestGBufferAttachmentTarget.
	TargetGBufferAttachment
	// TargetBitmap is a render-to-texture attachment, selected through
	// RequestBitmapTarget.
	TargetBitmap
)

// BitmapTargetBinding is a resolved render-to-texture target: the
// attachment view of one face plus the texture extent. The caller
// transitions the image to ColorAttachment before requesting it; the
// texture manager keeps tracking its layout.
type BitmapTargetBinding struct {
	ID     gfx.TextureID
	Face   uint32
	View   vk.ImageView
	Extent vk.Extent2D
}

// ClearOps records which aspects the next pass begin clears. The flags
// are one-shot: consumed when a pass opens, then demoted to load.
type ClearOps struct {
	Color   bool
	Depth   bool
	Stencil bool
}

// clearAll marks every aspect for clearing.
var clearAll = ClearOps{Color: true, Depth: true, Stencil: true}

// Session tracks the rendering state of the frame being recorded: the
// selected target, whether a dynamic-rendering scope is open, pending
// clear operations and the tracked layout of every swapchain image.
// Passes open lazily; nothing is recorded until a draw needs a pass.
type Session struct {
	targets *DescriptorLayouts
	rt      *RenderTargets

	supportsEDS3 bool
	eds3         EDS3Caps

	swapImages  []vk.Image
	swapViews   []vk.ImageView
	swapFormat  vk.Format
	swapLayouts []vk.ImageLayout
	extent      vk.Extent2D

	target     RenderTargetTag
	bloomIndex int
	bloomMip   int
	attachment int
	bitmap     BitmapTargetBinding
	passActive bool
	activeInfo RenderTargetInfo

	clear      ClearOps
	clearColor vk.ClearColorValue
	clearDepth float32

	cullMode   vk.CullModeFlags
	depthTest  bool
	depthWrite bool

	deferredActive       bool
	deferredGeometryDone bool
	preserveEmissive     bool
}

// NewSession builds a session over the shared render targets.
func NewSession(rt *RenderTargets, layouts *DescriptorLayouts, supportsEDS3 bool, eds3 EDS3Caps) *Session {
	return &Session{
		targets:      layouts,
		rt:           rt,
		supportsEDS3: supportsEDS3,
		eds3:         eds3,
		clearColor:   vk.ClearColorValue{0, 0, 0, 1},
		clearDepth:   1,
		cullMode:     vk.CullModeBack,
		depthTest:    true,
		depthWrite:   true,
	}
}

// SetSwapchain points the session at a new swapchain. Tracked layouts
// reset to Undefined; the images carry no content yet.
func (s *Session) SetSwapchain(images []vk.Image, views []vk.ImageView, format vk.Format, extent vk.Extent2D) {
	s.swapImages = images
	s.swapViews = views
	s.swapFormat = format
	s.extent = extent
	s.swapLayouts = make([]vk.ImageLayout, len(images))
}

// Target returns the currently selected render target.
func (s *Session) Target() RenderTargetTag { return s.target }

// BitmapTarget returns the bound render-to-texture binding when the
// bitmap target is selected.
func (s *Session) BitmapTarget() (BitmapTargetBinding, bool) {
	return s.bitmap, s.target == TargetBitmap
}

// PassActive reports whether a rendering scope is open.
func (s *Session) PassActive() bool { return s.passActive }

// DeferredActive reports whether a deferred pass is in progress.
func (s *Session) DeferredActive() bool { return s.deferredActive }

// DeferredGeometryDone reports whether the G-buffer phase has ended.
func (s *Session) DeferredGeometryDone() bool { return s.deferredGeometryDone }

// SetCullMode sets the cull mode applied when a pass opens.
func (s *Session) SetCullMode(mode vk.CullModeFlags) { s.cullMode = mode }

// CullMode returns the cached cull mode.
func (s *Session) CullMode() vk.CullModeFlags { return s.cullMode }

// SetDepthState sets the depth test and write state applied when a pass
// opens.
func (s *Session) SetDepthState(test, write bool) {
	s.depthTest = test
	s.depthWrite = write
}

// DepthState returns the cached depth test and write enables.
func (s *Session) DepthState() (test, write bool) { return s.depthTest, s.depthWrite }

// RequestClear marks every aspect for clearing at the next pass begin.
func (s *Session) RequestClear() { s.clear = clearAll }

// RequestDepthClear marks the depth and stencil aspects for clearing at
// the next pass begin. Color keeps whatever state it already had.
func (s *Session) RequestDepthClear() {
	s.clear.Depth = true
	s.clear.Stencil = true
}

// SetClearColor sets the color used when the next clear happens.
func (s *Session) SetClearColor(r, g, b, a float32) {
	s.clearColor = vk.ClearColorValue{r, g, b, a}
}

// BeginFrame transitions the acquired swapchain image and the depth
// attachment for rendering and resets the frame's session state.
func (s *Session) BeginFrame(cmd vk.CommandBuffer, imageIndex uint32) {
	s.passActive = false
	s.deferredActive = false
	s.deferredGeometryDone = false
	s.preserveEmissive = false
	s.target = TargetSwapchainColorDepth
	s.bitmap = BitmapTargetBinding{}
	s.clear = clearAll
	s.clearDepth = 1

	s.transitionSwapchain(cmd, imageIndex, vk.LayoutColorAttachment)
	s.transitionDepth(cmd, s.rt.DepthAttachmentLayout())
}

// EndFrame closes any open pass and moves the swapchain image to the
// present layout.
func (s *Session) EndFrame(cmd vk.CommandBuffer, imageIndex uint32) {
	s.SuspendRendering(cmd)
	s.transitionSwapchain(cmd, imageIndex, vk.LayoutPresentSrc)
}

// SuspendRendering ends the open pass if there is one. Transfers and
// barriers on the frame command buffer must come after this.
func (s *Session) SuspendRendering(cmd vk.CommandBuffer) {
	if !s.passActive {
		return
	}
	cmd.CmdEndRendering()
	s.passActive = false
}

// RequestTarget ends the open pass and selects a new target. Pending
// clear operations survive the switch. Parameterized targets go through
// their own request methods.
func (s *Session) RequestTarget(cmd vk.CommandBuffer, target RenderTargetTag) {
	if s.target == target {
		return
	}
	s.SuspendRendering(cmd)
	s.target = target
}

// RequestBloomMipTarget selects one mip of a bloom ping-pong image as
// the render target.
func (s *Session) RequestBloomMipTarget(cmd vk.CommandBuffer, index, mip int) {
	if s.target == TargetBloomMip && s.bloomIndex == index && s.bloomMip == mip {
		return
	}
	s.SuspendRendering(cmd)
	s.target = TargetBloomMip
	s.bloomIndex = index
	s.bloomMip = mip
}

// RequestGBufferAttachmentTarget selects a single G-buffer attachment
// as the render target.
func (s *Session) RequestGBufferAttachmentTarget(cmd vk.CommandBuffer, index int) {
	if s.target == TargetGBufferAttachment && s.attachment == index {
		return
	}
	s.SuspendRendering(cmd)
	s.target = TargetGBufferAttachment
	s.attachment = index
}

// RequestBitmapTarget selects a render-to-texture attachment. The image
// behind the binding must already be in ColorAttachment layout.
func (s *Session) RequestBitmapTarget(cmd vk.CommandBuffer, binding BitmapTargetBinding) {
	if s.target == TargetBitmap && s.bitmap.ID == binding.ID && s.bitmap.Face == binding.Face {
		return
	}
	s.SuspendRendering(cmd)
	s.target = TargetBitmap
	s.bitmap = binding
}

// BeginDeferredPass ends the open pass and switches to the G-buffer
// target. With clearNonColor every aspect clears; otherwise only depth
// and stencil do. With preserveEmissive the emissive attachment loads
// the scene copy written just before instead of clearing.
func (s *Session) BeginDeferredPass(cmd vk.CommandBuffer, clearNonColor, preserveEmissive bool) {
	s.SuspendRendering(cmd)
	s.deferredActive = true
	s.deferredGeometryDone = false
	s.preserveEmissive = preserveEmissive
	if clearNonColor {
		s.clear = clearAll
	} else {
		s.clear = ClearOps{Depth: true, Stencil: true}
	}
	s.target = TargetGBuffer
}

// EndDeferredGeometry closes the G-buffer pass, moves the attachments
// and depth to shader-read layouts for the lighting pass and selects
// the color-only swapchain target.
func (s *Session) EndDeferredGeometry(cmd vk.CommandBuffer) {
	if !s.deferredActive || s.deferredGeometryDone {
		return
	}
	s.SuspendRendering(cmd)

	barriers := make([]vk.ImageMemoryBarrier2, 0, GBufferCount+1)
	for i := 0; i < GBufferCount; i++ {
		barriers = append(barriers, ImageLayoutBarrier(
			s.rt.GBufferImage(i), vk.AspectColor, s.rt.GBufferLayout(i), vk.LayoutShaderReadOnly))
		s.rt.SetGBufferLayout(i, vk.LayoutShaderReadOnly)
	}
	barriers = append(barriers, ImageLayoutBarrier(
		s.rt.DepthImage(), s.rt.DepthAttachmentAspect(), s.rt.DepthLayout(), s.rt.DepthReadLayout()))
	s.rt.SetDepthLayout(s.rt.DepthReadLayout())
	cmd.CmdPipelineBarrier2(barriers...)

	s.deferredGeometryDone = true
	s.target = TargetSwapchainColorOnly
}

// CurrentTargetInfo describes the attachments of the selected target
// without opening a pass.
func (s *Session) CurrentTargetInfo() RenderTargetInfo {
	switch s.target {
	case TargetGBuffer:
		return RenderTargetInfo{
			ColorFormat:          GBufferFormat,
			ColorAttachmentCount: GBufferCount,
			DepthFormat:          s.rt.DepthFormat(),
		}
	case TargetGBufferEmissiveOnly, TargetGBufferAttachment:
		return RenderTargetInfo{
			ColorFormat:          GBufferFormat,
			ColorAttachmentCount: 1,
			DepthFormat:          vk.FormatUndefined,
		}
	case TargetSwapchainColorOnly:
		return RenderTargetInfo{
			ColorFormat:          s.swapFormat,
			ColorAttachmentCount: 1,
			DepthFormat:          vk.FormatUndefined,
		}
	case TargetSceneHdrColorDepth:
		return RenderTargetInfo{
			ColorFormat:          SceneHdrFormat,
			ColorAttachmentCount: 1,
			DepthFormat:          s.rt.DepthFormat(),
		}
	case TargetSceneHdrColorOnly, TargetBloomMip:
		return RenderTargetInfo{
			ColorFormat:          SceneHdrFormat,
			ColorAttachmentCount: 1,
			DepthFormat:          vk.FormatUndefined,
		}
	case TargetPostLdr, TargetPostLuminance, TargetSmaaEdges, TargetSmaaBlend, TargetSmaaOutput:
		return RenderTargetInfo{
			ColorFormat:          PostLdrFormat,
			ColorAttachmentCount: 1,
			DepthFormat:          vk.FormatUndefined,
		}
	case TargetBitmap:
		return RenderTargetInfo{
			ColorFormat:          BitmapTargetFormat,
			ColorAttachmentCount: 1,
			DepthFormat:          vk.FormatUndefined,
		}
	default:
		return RenderTargetInfo{
			ColorFormat:          s.swapFormat,
			ColorAttachmentCount: 1,
			DepthFormat:          s.rt.DepthFormat(),
		}
	}
}

// PassExtent returns the render-area extent of the selected target.
func (s *Session) PassExtent() vk.Extent2D {
	switch s.target {
	case TargetBloomMip:
		return s.rt.BloomMipExtent(uint32(s.bloomMip))
	case TargetBitmap:
		return s.bitmap.Extent
	default:
		return s.extent
	}
}

// EnsureRendering opens a pass on the selected target if none is open:
// attachment transitions, the begin with pending clear operations and
// the baseline dynamic state. Returns the attachment contract for
// pipeline requests.
func (s *Session) EnsureRendering(cmd vk.CommandBuffer, imageIndex uint32, globalSet vk.DescriptorSet) RenderTargetInfo {
	if s.passActive {
		return s.activeInfo
	}

	switch s.target {
	case TargetGBuffer:
		s.beginGBufferPass(cmd)
	case TargetGBufferEmissiveOnly:
		s.beginGBufferAttachmentPass(cmd, GBufferEmissiveIndex)
	case TargetGBufferAttachment:
		s.beginGBufferAttachmentPass(cmd, s.attachment)
	case TargetSwapchainColorOnly:
		s.beginSwapchainPass(cmd, imageIndex, false)
	case TargetSceneHdrColorDepth:
		s.beginSceneHdrPass(cmd, true)
	case TargetSceneHdrColorOnly:
		s.beginSceneHdrPass(cmd, false)
	case TargetPostLdr:
		s.beginPostPass(cmd, PostTargetLdr, s.clearColor)
	case TargetPostLuminance:
		s.beginPostPass(cmd, PostTargetLuminance, vk.ClearColorValue{})
	case TargetSmaaEdges:
		s.beginPostPass(cmd, PostTargetSmaaEdges, vk.ClearColorValue{})
	case TargetSmaaBlend:
		s.beginPostPass(cmd, PostTargetSmaaBlend, vk.ClearColorValue{})
	case TargetSmaaOutput:
		s.beginPostPass(cmd, PostTargetSmaaOutput, vk.ClearColorValue{})
	case TargetBloomMip:
		s.beginBloomMipPass(cmd)
	case TargetBitmap:
		s.beginBitmapPass(cmd)
	default:
		s.beginSwapchainPass(cmd, imageIndex, true)
	}

	s.activeInfo = s.CurrentTargetInfo()
	s.passActive = true
	s.applyBaselineState(cmd, globalSet)

	// Clears are one-shot.
	s.clear = ClearOps{}
	return s.activeInfo
}

func (s *Session) beginSwapchainPass(cmd vk.CommandBuffer, imageIndex uint32, withDepth bool) {
	s.transitionSwapchain(cmd, imageIndex, vk.LayoutColorAttachment)

	info := vk.RenderingInfo{
		RenderArea: vk.Rect2D{Extent: s.extent},
		Colors: []vk.RenderingAttachmentInfo{{
			ImageView:  s.swapViews[imageIndex],
			Layout:     vk.LayoutColorAttachment,
			LoadOp:     loadOp(s.clear.Color),
			StoreOp:    vk.StoreOpStore,
			ClearColor: s.clearColor,
		}},
	}
	if withDepth {
		s.transitionDepth(cmd, s.rt.DepthAttachmentLayout())
		info.Depth = s.depthAttachment(s.clear.Depth)
		if s.rt.DepthHasStencil() {
			info.Stencil = s.depthAttachment(s.clear.Stencil)
		}
	}
	cmd.CmdBeginRendering(info)
}

func (s *Session) beginSceneHdrPass(cmd vk.CommandBuffer, withDepth bool) {
	s.transitionPost(cmd, PostTargetSceneHdr, vk.LayoutColorAttachment)

	info := vk.RenderingInfo{
		RenderArea: vk.Rect2D{Extent: s.extent},
		Colors: []vk.RenderingAttachmentInfo{{
			ImageView:  s.rt.PostView(PostTargetSceneHdr),
			Layout:     vk.LayoutColorAttachment,
			LoadOp:     loadOp(s.clear.Color),
			StoreOp:    vk.StoreOpStore,
			ClearColor: s.clearColor,
		}},
	}
	if withDepth {
		s.transitionDepth(cmd, s.rt.DepthAttachmentLayout())
		info.Depth = s.depthAttachment(s.clear.Depth)
		if s.rt.DepthHasStencil() {
			info.Stencil = s.depthAttachment(s.clear.Stencil)
		}
	}
	cmd.CmdBeginRendering(info)
}

func (s *Session) beginPostPass(cmd vk.CommandBuffer, kind PostTargetKind, clearColor vk.ClearColorValue) {
	s.transitionPost(cmd, kind, vk.LayoutColorAttachment)

	cmd.CmdBeginRendering(vk.RenderingInfo{
		RenderArea: vk.Rect2D{Extent: s.extent},
		Colors: []vk.RenderingAttachmentInfo{{
			ImageView:  s.rt.PostView(kind),
			Layout:     vk.LayoutColorAttachment,
			LoadOp:     loadOp(s.clear.Color),
			StoreOp:    vk.StoreOpStore,
			ClearColor: clearColor,
		}},
	})
}

func (s *Session) beginBloomMipPass(cmd vk.CommandBuffer) {
	s.transitionBloom(cmd, s.bloomIndex, vk.LayoutColorAttachment)

	cmd.CmdBeginRendering(vk.RenderingInfo{
		RenderArea: vk.Rect2D{Extent: s.rt.BloomMipExtent(uint32(s.bloomMip))},
		Colors: []vk.RenderingAttachmentInfo{{
			ImageView:  s.rt.BloomMipView(s.bloomIndex, s.bloomMip),
			Layout:     vk.LayoutColorAttachment,
			LoadOp:     loadOp(s.clear.Color),
			StoreOp:    vk.StoreOpStore,
			ClearColor: vk.ClearColorValue{},
		}},
	})
}

func (s *Session) beginGBufferPass(cmd vk.CommandBuffer) {
	barriers := make([]vk.ImageMemoryBarrier2, 0, GBufferCount)
	for i := 0; i < GBufferCount; i++ {
		old := s.rt.GBufferLayout(i)
		if old == vk.LayoutColorAttachment {
			if i == GBufferEmissiveIndex && s.preserveEmissive {
				// The copy pass just wrote the emissive in this layout;
				// order that write against the load below.
				barriers = append(barriers, ImageLayoutBarrier(
					s.rt.GBufferImage(i), vk.AspectColor, old, old))
			}
			continue
		}
		barriers = append(barriers, ImageLayoutBarrier(
			s.rt.GBufferImage(i), vk.AspectColor, old, vk.LayoutColorAttachment))
		s.rt.SetGBufferLayout(i, vk.LayoutColorAttachment)
	}
	if len(barriers) > 0 {
		cmd.CmdPipelineBarrier2(barriers...)
	}
	s.transitionDepth(cmd, s.rt.DepthAttachmentLayout())

	colors := make([]vk.RenderingAttachmentInfo, GBufferCount)
	for i := range colors {
		clear := s.clear.Color
		if i == GBufferEmissiveIndex && s.preserveEmissive {
			clear = false
		}
		colors[i] = vk.RenderingAttachmentInfo{
			ImageView: s.rt.GBufferView(i),
			Layout:    vk.LayoutColorAttachment,
			LoadOp:    loadOp(clear),
			StoreOp:   vk.StoreOpStore,
			// G-buffer clears to transparent black regardless of the
			// engine clear color.
			ClearColor: vk.ClearColorValue{0, 0, 0, 0},
		}
	}
	info := vk.RenderingInfo{
		RenderArea: vk.Rect2D{Extent: s.extent},
		Colors:     colors,
		Depth:      s.depthAttachment(s.clear.Depth),
	}
	if s.rt.DepthHasStencil() {
		info.Stencil = s.depthAttachment(s.clear.Stencil)
	}
	cmd.CmdBeginRendering(info)
}

func (s *Session) beginGBufferAttachmentPass(cmd vk.CommandBuffer, index int) {
	old := s.rt.GBufferLayout(index)
	if old != vk.LayoutColorAttachment {
		cmd.CmdPipelineBarrier2(ImageLayoutBarrier(
			s.rt.GBufferImage(index), vk.AspectColor, old, vk.LayoutColorAttachment))
		s.rt.SetGBufferLayout(index, vk.LayoutColorAttachment)
	}

	cmd.CmdBeginRendering(vk.RenderingInfo{
		RenderArea: vk.Rect2D{Extent: s.extent},
		Colors: []vk.RenderingAttachmentInfo{{
			ImageView:  s.rt.GBufferView(index),
			Layout:     vk.LayoutColorAttachment,
			LoadOp:     loadOp(s.clear.Color),
			StoreOp:    vk.StoreOpStore,
			ClearColor: vk.ClearColorValue{},
		}},
	})
}

func (s *Session) beginBitmapPass(cmd vk.CommandBuffer) {
	cmd.CmdBeginRendering(vk.RenderingInfo{
		RenderArea: vk.Rect2D{Extent: s.bitmap.Extent},
		Colors: []vk.RenderingAttachmentInfo{{
			ImageView:  s.bitmap.View,
			Layout:     vk.LayoutColorAttachment,
			LoadOp:     loadOp(s.clear.Color),
			StoreOp:    vk.StoreOpStore,
			ClearColor: s.clearColor,
		}},
	})
}

func (s *Session) depthAttachment(clear bool) *vk.RenderingAttachmentInfo {
	return &vk.RenderingAttachmentInfo{
		ImageView:         s.rt.DepthAttachmentView(),
		Layout:            s.rt.DepthAttachmentLayout(),
		LoadOp:            loadOp(clear),
		StoreOp:           vk.StoreOpStore,
		ClearDepthStencil: vk.ClearDepthStencilValue{Depth: s.clearDepth},
		IsDepthStencil:    true,
	}
}

// applyBaselineState records the dynamic state every pass starts from.
// The negative-height viewport flips Y to match the engine's OpenGL
// coordinate convention; clockwise front faces compensate for the flip.
func (s *Session) applyBaselineState(cmd vk.CommandBuffer, globalSet vk.DescriptorSet) {
	extent := s.PassExtent()
	cmd.CmdSetViewport(vk.Viewport{
		Y:        float32(extent.Height),
		Width:    float32(extent.Width),
		Height:   -float32(extent.Height),
		MaxDepth: 1,
	})
	cmd.CmdSetScissor(vk.Rect2D{Extent: extent})
	cmd.CmdSetCullMode(s.cullMode)
	cmd.CmdSetFrontFace(vk.FrontFaceClockwise)
	cmd.CmdSetPrimitiveTopology(vk.TopologyTriangleList)
	cmd.CmdSetDepthTestEnable(s.depthTest)
	cmd.CmdSetDepthWriteEnable(s.depthWrite)
	if s.depthTest {
		cmd.CmdSetDepthCompareOp(vk.CompareOpLessOrEqual)
	} else {
		cmd.CmdSetDepthCompareOp(vk.CompareOpAlways)
	}
	cmd.CmdSetStencilTestEnable(false)

	if s.supportsEDS3 {
		count := int(s.activeInfo.ColorAttachmentCount)
		if s.eds3.ColorBlendEnable {
			cmd.CmdSetColorBlendEnable(0, make([]bool, count))
		}
		if s.eds3.ColorWriteMask {
			masks := make([]vk.ColorComponentFlags, count)
			for i := range masks {
				masks[i] = vk.ColorComponentsAll
			}
			cmd.CmdSetColorWriteMask(0, masks)
		}
		if s.eds3.PolygonMode {
			cmd.CmdSetPolygonMode(vk.PolygonModeFill)
		}
		if s.eds3.RasterizationSamples {
			cmd.CmdSetRasterizationSamples(vk.Samples1)
		}
	}

	if globalSet != (vk.DescriptorSet{}) {
		cmd.CmdBindDescriptorSets(s.targets.StandardPipelineLayout(), 1, []vk.DescriptorSet{globalSet}, nil)
	}
}

// TransitionPostToShaderRead suspends rendering and moves one post
// target to the shader-read layout so the next pass can sample it.
func (s *Session) TransitionPostToShaderRead(cmd vk.CommandBuffer, kind PostTargetKind) {
	s.SuspendRendering(cmd)
	s.transitionPost(cmd, kind, vk.LayoutShaderReadOnly)
}

// TransitionBloomToShaderRead suspends rendering and moves one bloom
// ping-pong image to the shader-read layout.
func (s *Session) TransitionBloomToShaderRead(cmd vk.CommandBuffer, index int) {
	s.SuspendRendering(cmd)
	s.transitionBloom(cmd, index, vk.LayoutShaderReadOnly)
}

// TransitionDepthToShaderRead suspends rendering and moves the main
// depth image to its read layout for sampling.
func (s *Session) TransitionDepthToShaderRead(cmd vk.CommandBuffer) {
	s.SuspendRendering(cmd)
	s.transitionDepth(cmd, s.rt.DepthReadLayout())
}

// TransitionCockpitDepthToShaderRead suspends rendering and moves the
// cockpit depth image to its read layout for sampling.
func (s *Session) TransitionCockpitDepthToShaderRead(cmd vk.CommandBuffer) {
	s.SuspendRendering(cmd)
	old := s.rt.CockpitDepthLayout()
	if old == s.rt.DepthReadLayout() {
		return
	}
	transitionImageLayout(cmd, s.rt.CockpitDepthImage(), s.rt.DepthAttachmentAspect(), old, s.rt.DepthReadLayout())
	s.rt.SetCockpitDepthLayout(s.rt.DepthReadLayout())
}

// CopySceneHdrToEffect snapshots the scene HDR image into its effect
// copy so distortion shaders can sample the scene mid-pass. The HDR
// image returns to the attachment layout; rendering resumes lazily.
func (s *Session) CopySceneHdrToEffect(cmd vk.CommandBuffer) {
	s.SuspendRendering(cmd)
	s.transitionPost(cmd, PostTargetSceneHdr, vk.LayoutTransferSrc)
	s.transitionPost(cmd, PostTargetSceneEffect, vk.LayoutTransferDst)

	corner := vk.Offset3D{X: int32(s.extent.Width), Y: int32(s.extent.Height), Z: 1}
	cmd.CmdBlitImage(s.rt.PostImage(PostTargetSceneHdr), vk.LayoutTransferSrc,
		s.rt.PostImage(PostTargetSceneEffect), vk.LayoutTransferDst, vk.ImageBlit{
			SrcAspect:  vk.AspectColor,
			SrcLayers:  1,
			SrcOffsets: [2]vk.Offset3D{{}, corner},
			DstAspect:  vk.AspectColor,
			DstLayers:  1,
			DstOffsets: [2]vk.Offset3D{{}, corner},
		}, vk.FilterNearest)

	s.transitionPost(cmd, PostTargetSceneEffect, vk.LayoutShaderReadOnly)
	s.transitionPost(cmd, PostTargetSceneHdr, vk.LayoutColorAttachment)
}

func (s *Session) transitionPost(cmd vk.CommandBuffer, kind PostTargetKind, layout vk.ImageLayout) {
	old := s.rt.PostLayout(kind)
	if old == layout {
		return
	}
	transitionImageLayout(cmd, s.rt.PostImage(kind), vk.AspectColor, old, layout)
	s.rt.SetPostLayout(kind, layout)
}

func (s *Session) transitionBloom(cmd vk.CommandBuffer, index int, layout vk.ImageLayout) {
	old := s.rt.BloomLayout(index)
	if old == layout {
		return
	}
	transitionImageLayout(cmd, s.rt.BloomImage(index), vk.AspectColor, old, layout)
	s.rt.SetBloomLayout(index, layout)
}

func (s *Session) transitionSwapchain(cmd vk.CommandBuffer, imageIndex uint32, layout vk.ImageLayout) {
	old := s.swapLayouts[imageIndex]
	if old == layout {
		return
	}
	transitionImageLayout(cmd, s.swapImages[imageIndex], vk.AspectColor, old, layout)
	s.swapLayouts[imageIndex] = layout
}

// SwapchainLayout returns the tracked layout of one swapchain image.
func (s *Session) SwapchainLayout(imageIndex uint32) vk.ImageLayout {
	return s.swapLayouts[imageIndex]
}

// SetSwapchainLayout overrides the tracked layout of one swapchain
// image, used by the screenshot blit which transitions outside the
// session.
func (s *Session) SetSwapchainLayout(imageIndex uint32, layout vk.ImageLayout) {
	s.swapLayouts[imageIndex] = layout
}

func (s *Session) transitionDepth(cmd vk.CommandBuffer, layout vk.ImageLayout) {
	old := s.rt.DepthLayout()
	if old == layout {
		return
	}
	transitionImageLayout(cmd, s.rt.DepthImage(), s.rt.DepthAttachmentAspect(), old, layout)
	s.rt.SetDepthLayout(layout)
}

func loadOp(clear bool) vk.AttachmentLoadOp {
	if clear {
		return vk.LoadOpClear
	}
	return vk.LoadOpLoad
}
