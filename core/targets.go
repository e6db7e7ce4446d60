package core

import (
	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/vk"
)

// G-buffer attachment order: color, normal, position, specular, emissive.
const GBufferEmissiveIndex = 4

// GBufferFormat is the format of every G-buffer attachment.
const GBufferFormat = vk.FormatR16G16B16A16Sfloat

// SceneHdrFormat is the format of the offscreen HDR scene target and its
// effect copy.
const SceneHdrFormat = vk.FormatR16G16B16A16Sfloat

// PostLdrFormat is the format of the tonemapped LDR target and the
// luminance and SMAA intermediates.
const PostLdrFormat = vk.FormatR8G8B8A8Unorm

// Bloom runs on two ping-pong images, each carrying a fixed mip chain
// blurred at every level. Mip 0 is half the swapchain extent.
const (
	BloomPingPongCount = 2
	BloomMipLevels     = 4
)

// RenderTargetInfo is the attachment contract a pipeline is built
// against. FormatUndefined for depth means no depth attachment.
type RenderTargetInfo struct {
	ColorFormat          vk.Format
	ColorAttachmentCount uint32
	DepthFormat          vk.Format
}

type targetImage struct {
	image  vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
}

// postTarget is a single-attachment offscreen image with tracked layout.
type postTarget struct {
	targetImage
	layout vk.ImageLayout
}

// RenderTargets owns the offscreen attachments: the shared depth image,
// the five G-buffer attachments and the pre-deferred scene-color
// captures. Current layouts are tracked per image so passes can emit
// exact transitions.
type RenderTargets struct {
	device   vk.Device
	physical vk.PhysicalDevice
	memProps vk.MemoryProperties

	extent vk.Extent2D

	depth           targetImage
	depthSampleView vk.ImageView
	depthFormat     vk.Format
	depthLayout     vk.ImageLayout
	depthSampler    vk.Sampler

	// Second depth image for cockpit geometry. Lightshafts sample it
	// alongside the main depth to mask shafts behind the cockpit.
	cockpitDepth           targetImage
	cockpitDepthSampleView vk.ImageView
	cockpitDepthLayout     vk.ImageLayout

	gbuffer        [GBufferCount]targetImage
	gbufferLayouts [GBufferCount]vk.ImageLayout
	gbufferSampler vk.Sampler

	// Post-processing chain targets.
	sceneHdr      postTarget
	sceneEffect   postTarget
	postLdr       postTarget
	postLuminance postTarget
	smaaEdges     postTarget
	smaaBlend     postTarget
	smaaOutput    postTarget
	postSampler   vk.Sampler

	bloom         [BloomPingPongCount]targetImage
	bloomLayouts  [BloomPingPongCount]vk.ImageLayout
	bloomMipViews [BloomPingPongCount][BloomMipLevels]vk.ImageView
	bloomExtent   vk.Extent2D

	// Pre-deferred scene-color captures, one per swapchain image. Only
	// populated when the swapchain supports TransferSrc.
	sceneColor        []targetImage
	sceneColorLayouts []vk.ImageLayout
	sceneColorFormat  vk.Format
	sceneColorSampler vk.Sampler
}

// NewRenderTargets picks the depth format and creates the attachments.
func NewRenderTargets(device vk.Device, physical vk.PhysicalDevice, memProps vk.MemoryProperties, extent vk.Extent2D) (*RenderTargets, error) {
	t := &RenderTargets{
		device:   device,
		physical: physical,
		memProps: memProps,
	}
	depthFormat, err := findDepthFormat(physical)
	if err != nil {
		return nil, err
	}
	t.depthFormat = depthFormat

	gbufferSampler, err := device.CreateSampler(vk.SamplerCreateInfo{
		MagFilter:   vk.FilterLinear,
		MinFilter:   vk.FilterLinear,
		MipmapMode:  vk.MipmapNearest,
		AddressMode: vk.AddressClampToEdge,
	})
	if err != nil {
		return nil, errors.Wrap(err, "vk.CreateSampler(): gbuffer")
	}
	t.gbufferSampler = gbufferSampler

	// Linear filtering of depth formats is widely unsupported.
	depthSampler, err := device.CreateSampler(vk.SamplerCreateInfo{
		MagFilter:   vk.FilterNearest,
		MinFilter:   vk.FilterNearest,
		MipmapMode:  vk.MipmapNearest,
		AddressMode: vk.AddressClampToEdge,
	})
	if err != nil {
		t.Destroy()
		return nil, errors.Wrap(err, "vk.CreateSampler(): depth")
	}
	t.depthSampler = depthSampler

	postSampler, err := device.CreateSampler(vk.SamplerCreateInfo{
		MagFilter:   vk.FilterLinear,
		MinFilter:   vk.FilterLinear,
		MipmapMode:  vk.MipmapNearest,
		AddressMode: vk.AddressClampToEdge,
	})
	if err != nil {
		t.Destroy()
		return nil, errors.Wrap(err, "vk.CreateSampler(): post")
	}
	t.postSampler = postSampler

	if err := t.create(extent); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

// findDepthFormat returns the first candidate usable as both attachment
// and sampled image. Stencil variants come first, pure depth last.
func findDepthFormat(physical vk.PhysicalDevice) (vk.Format, error) {
	candidates := []vk.Format{
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
		vk.FormatD32Sfloat,
	}
	required := vk.FormatFeatureDepthStencilAttachment | vk.FormatFeatureSampledImage
	for _, format := range candidates {
		props := physical.GetFormatProperties(format)
		if props.OptimalTilingFeatures&required == required {
			return format, nil
		}
	}
	return vk.FormatUndefined, errors.New("no depth format supports both attachment and sampling")
}

func (t *RenderTargets) createTargetImage(extent vk.Extent2D, format vk.Format, usage vk.ImageUsageFlags, viewAspect vk.ImageAspectFlags) (targetImage, error) {
	return t.createMippedTargetImage(extent, format, usage, viewAspect, 1)
}

func (t *RenderTargets) createMippedTargetImage(extent vk.Extent2D, format vk.Format, usage vk.ImageUsageFlags, viewAspect vk.ImageAspectFlags, mips uint32) (targetImage, error) {
	image, err := t.device.CreateImage(vk.ImageCreateInfo{
		Format:      format,
		Extent:      extent,
		MipLevels:   mips,
		ArrayLayers: 1,
		Samples:     vk.Samples1,
		Tiling:      vk.TilingOptimal,
		Usage:       usage,
	})
	if err != nil {
		return targetImage{}, errors.Wrap(err, "vk.CreateImage(): render target")
	}
	requirements := t.device.GetImageMemoryRequirements(image)
	typeIndex, ok := t.memProps.FindType(requirements.MemoryTypeBits, vk.MemoryDeviceLocal)
	if !ok {
		t.device.DestroyImage(image)
		return targetImage{}, errors.New("no device-local memory type for render target")
	}
	memory, err := t.device.AllocateMemory(requirements.Size, typeIndex)
	if err != nil {
		t.device.DestroyImage(image)
		return targetImage{}, errors.Wrap(err, "vk.AllocateMemory(): render target")
	}
	if err := t.device.BindImageMemory(image, memory, 0); err != nil {
		t.device.FreeMemory(memory)
		t.device.DestroyImage(image)
		return targetImage{}, errors.Wrap(err, "vk.BindImageMemory(): render target")
	}
	view, err := t.device.CreateImageView(vk.ImageViewCreateInfo{
		Image:    image,
		ViewType: vk.ViewType2D,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: viewAspect,
			LevelCount: mips,
			LayerCount: 1,
		},
	})
	if err != nil {
		t.device.FreeMemory(memory)
		t.device.DestroyImage(image)
		return targetImage{}, errors.Wrap(err, "vk.CreateImageView(): render target")
	}
	return targetImage{image: image, memory: memory, view: view}, nil
}

func (t *RenderTargets) destroyTargetImage(img *targetImage) {
	if img.image == (vk.Image{}) {
		return
	}
	t.device.DestroyImageView(img.view)
	t.device.FreeMemory(img.memory)
	t.device.DestroyImage(img.image)
	*img = targetImage{}
}

// createDepthTarget builds one depth image plus its depth-only sample
// view for the lighting and post passes.
func (t *RenderTargets) createDepthTarget(extent vk.Extent2D) (targetImage, vk.ImageView, error) {
	img, err := t.createTargetImage(extent, t.depthFormat,
		vk.ImageUsageDepthStencilAttachment|vk.ImageUsageSampled, t.DepthAttachmentAspect())
	if err != nil {
		return targetImage{}, vk.ImageView{}, err
	}
	sampleView, err := t.device.CreateImageView(vk.ImageViewCreateInfo{
		Image:    img.image,
		ViewType: vk.ViewType2D,
		Format:   t.depthFormat,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.AspectDepth,
			LevelCount: 1,
			LayerCount: 1,
		},
	})
	if err != nil {
		t.destroyTargetImage(&img)
		return targetImage{}, vk.ImageView{}, errors.Wrap(err, "vk.CreateImageView(): depth sample")
	}
	return img, sampleView, nil
}

func (t *RenderTargets) create(extent vk.Extent2D) error {
	t.extent = extent

	depth, sampleView, err := t.createDepthTarget(extent)
	if err != nil {
		return err
	}
	t.depth = depth
	t.depthSampleView = sampleView
	t.depthLayout = vk.LayoutUndefined

	cockpit, cockpitView, err := t.createDepthTarget(extent)
	if err != nil {
		return err
	}
	t.cockpitDepth = cockpit
	t.cockpitDepthSampleView = cockpitView
	t.cockpitDepthLayout = vk.LayoutUndefined

	for i := range t.gbuffer {
		img, err := t.createTargetImage(extent, GBufferFormat,
			vk.ImageUsageColorAttachment|vk.ImageUsageSampled, vk.AspectColor)
		if err != nil {
			return err
		}
		t.gbuffer[i] = img
		t.gbufferLayouts[i] = vk.LayoutUndefined
	}
	return t.createPostResources(extent)
}

func (t *RenderTargets) createPostResources(extent vk.Extent2D) error {
	singles := []struct {
		target *postTarget
		format vk.Format
		usage  vk.ImageUsageFlags
	}{
		{&t.sceneHdr, SceneHdrFormat, vk.ImageUsageColorAttachment | vk.ImageUsageSampled | vk.ImageUsageTransferSrc},
		{&t.sceneEffect, SceneHdrFormat, vk.ImageUsageTransferDst | vk.ImageUsageSampled},
		{&t.postLdr, PostLdrFormat, vk.ImageUsageColorAttachment | vk.ImageUsageSampled},
		{&t.postLuminance, PostLdrFormat, vk.ImageUsageColorAttachment | vk.ImageUsageSampled},
		{&t.smaaEdges, PostLdrFormat, vk.ImageUsageColorAttachment | vk.ImageUsageSampled},
		{&t.smaaBlend, PostLdrFormat, vk.ImageUsageColorAttachment | vk.ImageUsageSampled},
		{&t.smaaOutput, PostLdrFormat, vk.ImageUsageColorAttachment | vk.ImageUsageSampled},
	}
	for _, s := range singles {
		img, err := t.createTargetImage(extent, s.format, s.usage, vk.AspectColor)
		if err != nil {
			return err
		}
		*s.target = postTarget{targetImage: img, layout: vk.LayoutUndefined}
	}

	t.bloomExtent = BloomBaseExtent(extent)
	for i := range t.bloom {
		img, err := t.createMippedTargetImage(t.bloomExtent, SceneHdrFormat,
			vk.ImageUsageColorAttachment|vk.ImageUsageSampled|
				vk.ImageUsageTransferSrc|vk.ImageUsageTransferDst,
			vk.AspectColor, BloomMipLevels)
		if err != nil {
			return err
		}
		t.bloom[i] = img
		t.bloomLayouts[i] = vk.LayoutUndefined
		for mip := range t.bloomMipViews[i] {
			view, err := t.device.CreateImageView(vk.ImageViewCreateInfo{
				Image:    img.image,
				ViewType: vk.ViewType2D,
				Format:   SceneHdrFormat,
				SubresourceRange: vk.ImageSubresourceRange{
					AspectMask:   vk.AspectColor,
					BaseMipLevel: uint32(mip),
					LevelCount:   1,
					LayerCount:   1,
				},
			})
			if err != nil {
				return errors.Wrap(err, "vk.CreateImageView(): bloom mip")
			}
			t.bloomMipViews[i][mip] = view
		}
	}
	return nil
}

// BloomBaseExtent is the mip 0 extent of the bloom chain: half the
// swapchain extent, floored at one pixel.
func BloomBaseExtent(extent vk.Extent2D) vk.Extent2D {
	half := vk.Extent2D{Width: extent.Width / 2, Height: extent.Height / 2}
	if half.Width < 1 {
		half.Width = 1
	}
	if half.Height < 1 {
		half.Height = 1
	}
	return half
}

// BloomMipExtent returns the extent of one bloom mip level.
func (t *RenderTargets) BloomMipExtent(mip uint32) vk.Extent2D {
	e := t.bloomExtent
	for ; mip > 0; mip-- {
		e.Width /= 2
		e.Height /= 2
	}
	if e.Width < 1 {
		e.Width = 1
	}
	if e.Height < 1 {
		e.Height = 1
	}
	return e
}

// CreateSceneColor builds the pre-deferred capture images, one per
// swapchain image. Callers skip this when the swapchain cannot be a
// transfer source.
func (t *RenderTargets) CreateSceneColor(format vk.Format, count int) error {
	t.destroySceneColor()
	t.sceneColorFormat = format

	if t.sceneColorSampler == (vk.Sampler{}) {
		sampler, err := t.device.CreateSampler(vk.SamplerCreateInfo{
			MagFilter:   vk.FilterLinear,
			MinFilter:   vk.FilterLinear,
			MipmapMode:  vk.MipmapNearest,
			AddressMode: vk.AddressClampToEdge,
		})
		if err != nil {
			return errors.Wrap(err, "vk.CreateSampler(): scene color")
		}
		t.sceneColorSampler = sampler
	}

	t.sceneColor = make([]targetImage, count)
	t.sceneColorLayouts = make([]vk.ImageLayout, count)
	for i := 0; i < count; i++ {
		img, err := t.createTargetImage(t.extent, format,
			vk.ImageUsageTransferDst|vk.ImageUsageTransferSrc|vk.ImageUsageSampled, vk.AspectColor)
		if err != nil {
			return err
		}
		t.sceneColor[i] = img
		t.sceneColorLayouts[i] = vk.LayoutUndefined
	}
	return nil
}

// Resize drops and recreates every attachment at the new extent. Layout
// tracking resets to Undefined.
func (t *RenderTargets) Resize(extent vk.Extent2D) error {
	sceneColorCount := len(t.sceneColor)
	sceneColorFormat := t.sceneColorFormat
	t.destroyAttachments()
	if err := t.create(extent); err != nil {
		return err
	}
	if sceneColorCount > 0 {
		return t.CreateSceneColor(sceneColorFormat, sceneColorCount)
	}
	return nil
}

// Extent returns the current attachment extent.
func (t *RenderTargets) Extent() vk.Extent2D { return t.extent }

// DepthFormat returns the selected depth format.
func (t *RenderTargets) DepthFormat() vk.Format { return t.depthFormat }

// DepthHasStencil reports whether the depth format carries stencil.
func (t *RenderTargets) DepthHasStencil() bool {
	return t.depthFormat.HasStencil()
}

// DepthAttachmentAspect returns the aspect mask of the depth attachment.
func (t *RenderTargets) DepthAttachmentAspect() vk.ImageAspectFlags {
	aspect := vk.AspectDepth
	if t.DepthHasStencil() {
		aspect |= vk.AspectStencil
	}
	return aspect
}

// DepthAttachmentLayout is the layout the depth image uses while bound
// as an attachment.
func (t *RenderTargets) DepthAttachmentLayout() vk.ImageLayout {
	if t.DepthHasStencil() {
		return vk.LayoutDepthStencilAttachment
	}
	return vk.LayoutDepthAttachment
}

// DepthReadLayout is the layout for sampling the depth image.
func (t *RenderTargets) DepthReadLayout() vk.ImageLayout {
	if t.DepthHasStencil() {
		return vk.LayoutDepthStencilReadOnly
	}
	return vk.LayoutShaderReadOnly
}

// DepthImage returns the depth image.
func (t *RenderTargets) DepthImage() vk.Image { return t.depth.image }

// DepthAttachmentView returns the full-aspect attachment view.
func (t *RenderTargets) DepthAttachmentView() vk.ImageView { return t.depth.view }

// DepthSampledView returns the depth-only view for lighting.
func (t *RenderTargets) DepthSampledView() vk.ImageView { return t.depthSampleView }

// DepthSampler returns the nearest-filtered depth sampler.
func (t *RenderTargets) DepthSampler() vk.Sampler { return t.depthSampler }

// DepthLayout returns the tracked depth layout.
func (t *RenderTargets) DepthLayout() vk.ImageLayout { return t.depthLayout }

// SetDepthLayout records a depth layout transition issued elsewhere.
func (t *RenderTargets) SetDepthLayout(layout vk.ImageLayout) { t.depthLayout = layout }

// GBufferImage returns one G-buffer attachment image.
func (t *RenderTargets) GBufferImage(index int) vk.Image { return t.gbuffer[index].image }

// GBufferView returns one G-buffer attachment view.
func (t *RenderTargets) GBufferView(index int) vk.ImageView { return t.gbuffer[index].view }

// GBufferSampler returns the shared G-buffer sampler.
func (t *RenderTargets) GBufferSampler() vk.Sampler { return t.gbufferSampler }

// GBufferLayout returns the tracked layout of one attachment.
func (t *RenderTargets) GBufferLayout(index int) vk.ImageLayout { return t.gbufferLayouts[index] }

// SetGBufferLayout records a G-buffer layout transition issued elsewhere.
func (t *RenderTargets) SetGBufferLayout(index int, layout vk.ImageLayout) {
	t.gbufferLayouts[index] = layout
}

// PostTargetKind names one single-attachment post image.
type PostTargetKind int

// Post target kinds.
const (
	PostTargetSceneHdr PostTargetKind = iota
	PostTargetSceneEffect
	PostTargetLdr
	PostTargetLuminance
	PostTargetSmaaEdges
	PostTargetSmaaBlend
	PostTargetSmaaOutput
)

func (t *RenderTargets) post(kind PostTargetKind) *postTarget {
	switch kind {
	case PostTargetSceneHdr:
		return &t.sceneHdr
	case PostTargetSceneEffect:
		return &t.sceneEffect
	case PostTargetLdr:
		return &t.postLdr
	case PostTargetLuminance:
		return &t.postLuminance
	case PostTargetSmaaEdges:
		return &t.smaaEdges
	case PostTargetSmaaBlend:
		return &t.smaaBlend
	default:
		return &t.smaaOutput
	}
}

// PostImage returns the image of one post target.
func (t *RenderTargets) PostImage(kind PostTargetKind) vk.Image { return t.post(kind).image }

// PostView returns the view of one post target.
func (t *RenderTargets) PostView(kind PostTargetKind) vk.ImageView { return t.post(kind).view }

// PostFormat returns the format of one post target.
func (t *RenderTargets) PostFormat(kind PostTargetKind) vk.Format {
	if kind == PostTargetSceneHdr || kind == PostTargetSceneEffect {
		return SceneHdrFormat
	}
	return PostLdrFormat
}

// PostLayout returns the tracked layout of one post target.
func (t *RenderTargets) PostLayout(kind PostTargetKind) vk.ImageLayout { return t.post(kind).layout }

// SetPostLayout records a post target layout transition issued elsewhere.
func (t *RenderTargets) SetPostLayout(kind PostTargetKind, layout vk.ImageLayout) {
	t.post(kind).layout = layout
}

// PostSampler returns the linear sampler shared by the post passes.
func (t *RenderTargets) PostSampler() vk.Sampler { return t.postSampler }

// BloomImage returns one bloom ping-pong image.
func (t *RenderTargets) BloomImage(index int) vk.Image { return t.bloom[index].image }

// BloomChainView returns the full-mip-chain view of one ping-pong
// image; the blur passes sample across levels through it.
func (t *RenderTargets) BloomChainView(index int) vk.ImageView { return t.bloom[index].view }

// BloomMipView returns the single-mip attachment view.
func (t *RenderTargets) BloomMipView(index, mip int) vk.ImageView {
	return t.bloomMipViews[index][mip]
}

// BloomLayout returns the tracked layout of one ping-pong image. All
// mips move together outside mip generation, which restores a uniform
// layout before returning.
func (t *RenderTargets) BloomLayout(index int) vk.ImageLayout { return t.bloomLayouts[index] }

// SetBloomLayout records a bloom layout transition issued elsewhere.
func (t *RenderTargets) SetBloomLayout(index int, layout vk.ImageLayout) {
	t.bloomLayouts[index] = layout
}

// BloomExtent returns the mip 0 extent of the bloom chain.
func (t *RenderTargets) BloomExtent() vk.Extent2D { return t.bloomExtent }

// CockpitDepthImage returns the cockpit depth image.
func (t *RenderTargets) CockpitDepthImage() vk.Image { return t.cockpitDepth.image }

// CockpitDepthAttachmentView returns the full-aspect attachment view.
func (t *RenderTargets) CockpitDepthAttachmentView() vk.ImageView { return t.cockpitDepth.view }

// CockpitDepthSampledView returns the depth-only view for lightshafts.
func (t *RenderTargets) CockpitDepthSampledView() vk.ImageView { return t.cockpitDepthSampleView }

// CockpitDepthLayout returns the tracked cockpit depth layout.
func (t *RenderTargets) CockpitDepthLayout() vk.ImageLayout { return t.cockpitDepthLayout }

// SetCockpitDepthLayout records a cockpit depth transition issued
// elsewhere.
func (t *RenderTargets) SetCockpitDepthLayout(layout vk.ImageLayout) {
	t.cockpitDepthLayout = layout
}

// HasSceneColor reports whether capture images exist.
func (t *RenderTargets) HasSceneColor() bool { return len(t.sceneColor) > 0 }

// SceneColorImage returns the capture image for one swapchain index.
func (t *RenderTargets) SceneColorImage(index int) vk.Image { return t.sceneColor[index].image }

// SceneColorView returns the capture view for one swapchain index.
func (t *RenderTargets) SceneColorView(index int) vk.ImageView { return t.sceneColor[index].view }

// SceneColorSampler returns the capture sampler.
func (t *RenderTargets) SceneColorSampler() vk.Sampler { return t.sceneColorSampler }

// SceneColorLayout returns the tracked layout of one capture image.
func (t *RenderTargets) SceneColorLayout(index int) vk.ImageLayout { return t.sceneColorLayouts[index] }

// SetSceneColorLayout records a capture layout transition issued
// elsewhere.
func (t *RenderTargets) SetSceneColorLayout(index int, layout vk.ImageLayout) {
	t.sceneColorLayouts[index] = layout
}

func (t *RenderTargets) destroySceneColor() {
	for i := range t.sceneColor {
		t.destroyTargetImage(&t.sceneColor[i])
	}
	t.sceneColor = nil
	t.sceneColorLayouts = nil
}

// allPostTargets enumerates the single-attachment post images for bulk
// destruction and state resets.
func (t *RenderTargets) allPostTargets() []*postTarget {
	return []*postTarget{
		&t.sceneHdr, &t.sceneEffect, &t.postLdr, &t.postLuminance,
		&t.smaaEdges, &t.smaaBlend, &t.smaaOutput,
	}
}

func (t *RenderTargets) destroyAttachments() {
	if t.depthSampleView != (vk.ImageView{}) {
		t.device.DestroyImageView(t.depthSampleView)
		t.depthSampleView = vk.ImageView{}
	}
	t.destroyTargetImage(&t.depth)
	if t.cockpitDepthSampleView != (vk.ImageView{}) {
		t.device.DestroyImageView(t.cockpitDepthSampleView)
		t.cockpitDepthSampleView = vk.ImageView{}
	}
	t.destroyTargetImage(&t.cockpitDepth)
	for i := range t.gbuffer {
		t.destroyTargetImage(&t.gbuffer[i])
	}
	for _, target := range t.allPostTargets() {
		t.destroyTargetImage(&target.targetImage)
		target.layout = vk.LayoutUndefined
	}
	for i := range t.bloom {
		for mip := range t.bloomMipViews[i] {
			if t.bloomMipViews[i][mip] != (vk.ImageView{}) {
				t.device.DestroyImageView(t.bloomMipViews[i][mip])
				t.bloomMipViews[i][mip] = vk.ImageView{}
			}
		}
		t.destroyTargetImage(&t.bloom[i])
	}
	t.destroySceneColor()
}

// Destroy releases every attachment and sampler.
func (t *RenderTargets) Destroy() {
	t.destroyAttachments()
	if t.gbufferSampler != (vk.Sampler{}) {
		t.device.DestroySampler(t.gbufferSampler)
		t.gbufferSampler = vk.Sampler{}
	}
	if t.depthSampler != (vk.Sampler{}) {
		t.device.DestroySampler(t.depthSampler)
		t.depthSampler = vk.Sampler{}
	}
	if t.postSampler != (vk.Sampler{}) {
		t.device.DestroySampler(t.postSampler)
		t.postSampler = vk.Sampler{}
	}
	if t.sceneColorSampler != (vk.Sampler{}) {
		t.device.DestroySampler(t.sceneColorSampler)
		t.sceneColorSampler = vk.Sampler{}
	}
}
