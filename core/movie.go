package core

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// MaxMovieTextures bounds concurrently resident movie textures.
const MaxMovieTextures = 8

// movieFormat is the 4:2:0 three-plane format every movie texture uses.
const movieFormat = vk.FormatG8B8R83Plane420

// ycbcrConfig is one (colorspace, range) combination: its conversion
// object, immutable sampler, set and pipeline layouts and the pipeline
// rendering into the swapchain format.
type ycbcrConfig struct {
	conversion vk.SamplerYcbcrConversion
	sampler    vk.Sampler
	setLayout  vk.DescriptorSetLayout
	layout     vk.PipelineLayout
	pipeline   vk.Pipeline
}

type movieTexture struct {
	image  vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
	set    vk.DescriptorSet

	// Packed staging layout for one frame. Strides are aligned to the
	// copy-offset granularity so the three plane copies stay aligned.
	yStride   uint32
	uvStride  uint32
	yOffset   uint64
	uOffset   uint64
	vOffset   uint64
	frameSize uint64

	width  uint32
	height uint32
	config int

	layout         vk.ImageLayout
	lastUsedSerial uint64
}

type pendingMovieRelease struct {
	serial uint64
	image  vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
	set    vk.DescriptorSet
}

// MovieManager owns the YCbCr movie path: multi-planar textures with
// sampler conversions, one pipeline per colorspace/range combination
// and per-frame plane uploads through the staging ring. The whole path
// degrades to unavailable when the device lacks samplerYcbcrConversion
// or the multi-planar format.
type MovieManager struct {
	device   vk.Device
	physical vk.PhysicalDevice
	memProps vk.MemoryProperties

	swapFormat vk.Format
	available  bool

	chroma vk.ChromaLocation
	filter vk.Filter

	pool    vk.DescriptorPool
	configs [4]ycbcrConfig

	resident   map[gfx.MovieTextureHandle]*movieTexture
	nextHandle gfx.MovieTextureHandle
	free       []gfx.MovieTextureHandle

	releases         []pendingMovieRelease
	safeRetireSerial uint64

	// Failure paths log once; movies feed a frame every tick.
	loggedUnavailable    bool
	loggedOddDimensions  bool
	loggedStagingFull    bool
	loggedFormatMismatch bool
}

// NewMovieManager probes support and builds the four YCbCr
// configurations. An unsupported device yields a manager whose
// Available is false; every operation then degrades quietly.
func NewMovieManager(device vk.Device, physical vk.PhysicalDevice, memProps vk.MemoryProperties,
	samplerYcbcr bool, swapFormat vk.Format, cache vk.PipelineCache, shaders *ShaderManager) *MovieManager {
	m := &MovieManager{
		device:     device,
		physical:   physical,
		memProps:   memProps,
		swapFormat: swapFormat,
		resident:   make(map[gfx.MovieTextureHandle]*movieTexture),
		nextHandle: 1,
	}

	if !samplerYcbcr {
		log.Info("movie path disabled: samplerYcbcrConversion not supported")
		return m
	}
	if !m.queryFormatSupport() {
		return m
	}
	if err := m.createConfigs(cache, shaders); err != nil {
		log.WithError(err).Warn("movie path disabled")
		m.destroyConfigs()
		return m
	}

	pool, err := device.CreateFreeableDescriptorPool(MaxMovieTextures, []vk.DescriptorPoolSize{
		// Multi-planar combined samplers may consume several
		// descriptors each; three covers every 4:2:0 layout.
		{Type: vk.DescriptorCombinedImageSampler, Count: MaxMovieTextures * 3},
	})
	if err != nil {
		log.WithError(err).Warn("movie path disabled: descriptor pool")
		m.destroyConfigs()
		return m
	}
	m.pool = pool
	m.available = true
	return m
}

// Available reports whether movie textures can be created at all.
func (m *MovieManager) Available() bool { return m.available }

func (m *MovieManager) queryFormatSupport() bool {
	props := m.physical.GetFormatProperties(movieFormat)
	required := vk.FormatFeatureSampledImage | vk.FormatFeatureTransferDst
	if props.OptimalTilingFeatures&required != required {
		log.Info("movie path disabled: multi-planar format unsupported")
		return false
	}

	switch {
	case props.OptimalTilingFeatures&vk.FormatFeatureMidpointChromaSamples != 0:
		m.chroma = vk.ChromaMidpoint
	case props.OptimalTilingFeatures&vk.FormatFeatureCositedChromaSamples != 0:
		m.chroma = vk.ChromaCositedEven
	default:
		m.chroma = vk.ChromaMidpoint
	}

	if props.OptimalTilingFeatures&vk.FormatFeatureSampledImageYcbcrLinear != 0 {
		m.filter = vk.FilterLinear
	} else {
		m.filter = vk.FilterNearest
	}
	return true
}

func movieConfigIndex(colorspace gfx.MovieColorSpace, colorRange gfx.MovieColorRange) int {
	return int(colorspace)*2 + int(colorRange)
}

func (m *MovieManager) createConfigs(cache vk.PipelineCache, shaders *ShaderManager) error {
	modules, err := shaders.ModulesByFilenames("movie.vert.spv", "movie.frag.spv")
	if err != nil {
		return errors.Wrap(err, "movie shader modules")
	}

	for i := range m.configs {
		colorspace := gfx.MovieColorSpace(i / 2)
		colorRange := gfx.MovieColorRange(i % 2)
		cfg := &m.configs[i]

		model := vk.YcbcrModel601
		if colorspace == gfx.MovieBT709 {
			model = vk.YcbcrModel709
		}
		ycbcrRange := vk.YcbcrRangeITUNarrow
		if colorRange == gfx.MovieFullRange {
			ycbcrRange = vk.YcbcrRangeITUFull
		}

		cfg.conversion, err = m.device.CreateSamplerYcbcrConversion(vk.YcbcrConversionCreateInfo{
			Format:       movieFormat,
			Model:        model,
			Range:        ycbcrRange,
			ChromaOffset: m.chroma,
			ChromaFilter: m.filter,
		})
		if err != nil {
			return errors.Wrap(err, "vk.CreateSamplerYcbcrConversion()")
		}

		cfg.sampler, err = m.device.CreateSampler(vk.SamplerCreateInfo{
			MagFilter:   m.filter,
			MinFilter:   m.filter,
			MipmapMode:  vk.MipmapNearest,
			AddressMode: vk.AddressClampToEdge,
			Conversion:  cfg.conversion,
		})
		if err != nil {
			return errors.Wrap(err, "vk.CreateSampler(): movie")
		}

		cfg.setLayout, err = m.device.CreateDescriptorSetLayout([]vk.DescriptorSetLayoutBinding{{
			Binding:          0,
			Type:             vk.DescriptorCombinedImageSampler,
			Count:            1,
			Stages:           vk.StageFragmentBit,
			ImmutableSampler: cfg.sampler,
		}}, false)
		if err != nil {
			return errors.Wrap(err, "vk.CreateDescriptorSetLayout(): movie")
		}

		cfg.layout, err = m.device.CreatePipelineLayout(
			[]vk.DescriptorSetLayout{cfg.setLayout},
			[]vk.PushConstantRange{{
				Stages: vk.StageVertexBit | vk.StageFragmentBit,
				Size:   moviePushConstantsSize,
			}})
		if err != nil {
			return errors.Wrap(err, "vk.CreatePipelineLayout(): movie")
		}

		cfg.pipeline, err = m.device.CreateGraphicsPipeline(cache, vk.GraphicsPipelineCreateInfo{
			VertModule:   modules.Vert,
			FragModule:   modules.Frag,
			Samples:      vk.Samples1,
			ColorFormats: []vk.Format{m.swapFormat},
			Blend: vk.BlendAttachmentState{
				BlendEnable:    true,
				SrcColorFactor: vk.BlendFactorSrcAlpha,
				DstColorFactor: vk.BlendFactorOneMinusSrcAlpha,
				ColorOp:        vk.BlendOpAdd,
				SrcAlphaFactor: vk.BlendFactorOne,
				DstAlphaFactor: vk.BlendFactorZero,
				AlphaOp:        vk.BlendOpAdd,
				WriteMask:      vk.ColorComponentsAll,
			},
			DepthStencil: vk.DepthStencilState{DepthCompareOp: vk.CompareOpAlways},
			DynamicStates: []vk.DynamicState{
				vk.DynamicViewport,
				vk.DynamicScissor,
				vk.DynamicPrimitiveTopology,
			},
			Layout: cfg.layout,
		})
		if err != nil {
			return errors.Wrap(err, "vk.CreateGraphicsPipeline(): movie")
		}
	}
	return nil
}

// CreateMovieTexture builds one multi-planar texture and its
// descriptor set. Failures log once and return the invalid handle; the
// engine falls back to software presentation.
func (m *MovieManager) CreateMovieTexture(width, height uint32, colorspace gfx.MovieColorSpace, colorRange gfx.MovieColorRange) gfx.MovieTextureHandle {
	if !m.available {
		if !m.loggedUnavailable {
			log.Warn("movie texture rejected: movie path unavailable")
			m.loggedUnavailable = true
		}
		return 0
	}
	if width%2 != 0 || height%2 != 0 {
		if !m.loggedOddDimensions {
			log.Warnf("movie texture rejected: 4:2:0 needs even dimensions, got %dx%d", width, height)
			m.loggedOddDimensions = true
		}
		return 0
	}
	if len(m.resident) >= MaxMovieTextures {
		log.Warnf("movie texture rejected: %d textures already resident", len(m.resident))
		return 0
	}

	tex, err := m.createTexture(width, height, movieConfigIndex(colorspace, colorRange))
	if err != nil {
		log.WithError(err).Warnf("movie texture creation failed (%dx%d)", width, height)
		return 0
	}

	handle := m.nextHandle
	if n := len(m.free); n > 0 {
		handle = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		m.nextHandle++
	}
	m.resident[handle] = tex
	return handle
}

func (m *MovieManager) createTexture(width, height uint32, config int) (*movieTexture, error) {
	cfg := &m.configs[config]

	image, err := m.device.CreateImage(vk.ImageCreateInfo{
		Format:      movieFormat,
		Extent:      vk.Extent2D{Width: width, Height: height},
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     vk.Samples1,
		Tiling:      vk.TilingOptimal,
		Usage:       vk.ImageUsageTransferDst | vk.ImageUsageSampled,
	})
	if err != nil {
		return nil, errors.Wrap(err, "vk.CreateImage(): movie")
	}

	requirements := m.device.GetImageMemoryRequirements(image)
	typeIndex, ok := m.memProps.FindType(requirements.MemoryTypeBits, vk.MemoryDeviceLocal)
	if !ok {
		m.device.DestroyImage(image)
		return nil, errors.New("no device-local memory type for movie texture")
	}
	memory, err := m.device.AllocateMemory(requirements.Size, typeIndex)
	if err != nil {
		m.device.DestroyImage(image)
		return nil, errors.Wrap(err, "vk.AllocateMemory(): movie")
	}
	if err := m.device.BindImageMemory(image, memory, 0); err != nil {
		m.device.FreeMemory(memory)
		m.device.DestroyImage(image)
		return nil, errors.Wrap(err, "vk.BindImageMemory(): movie")
	}

	view, err := m.device.CreateImageView(vk.ImageViewCreateInfo{
		Image:    image,
		ViewType: vk.ViewType2D,
		Format:   movieFormat,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.AspectColor,
			LevelCount: 1,
			LayerCount: 1,
		},
		Conversion: cfg.conversion,
	})
	if err != nil {
		m.device.FreeMemory(memory)
		m.device.DestroyImage(image)
		return nil, errors.Wrap(err, "vk.CreateImageView(): movie")
	}

	set, err := m.device.AllocateDescriptorSet(m.pool, cfg.setLayout)
	if err != nil {
		m.device.DestroyImageView(view)
		m.device.FreeMemory(memory)
		m.device.DestroyImage(image)
		return nil, errors.Wrap(err, "vk.AllocateDescriptorSet(): movie")
	}
	m.device.UpdateDescriptorSets(set, []vk.WriteDescriptorSet{{
		DstBinding: 0,
		Type:       vk.DescriptorCombinedImageSampler,
		Images: []vk.DescriptorImageInfo{{
			ImageView:   view,
			ImageLayout: vk.LayoutShaderReadOnly,
		}},
	}})

	tex := &movieTexture{
		image:  image,
		memory: memory,
		view:   view,
		set:    set,
		width:  width,
		height: height,
		config: config,
		layout: vk.LayoutUndefined,
	}
	tex.initStagingLayout()
	return tex, nil
}

// initStagingLayout computes the packed plane offsets of one staged
// frame. Strides round up to the copy alignment.
func (t *movieTexture) initStagingLayout() {
	uvWidth := t.width / 2
	uvHeight := t.height / 2

	t.yStride = (t.width + copyOffsetAlignment - 1) &^ (copyOffsetAlignment - 1)
	t.uvStride = (uvWidth + copyOffsetAlignment - 1) &^ (copyOffsetAlignment - 1)

	ySize := uint64(t.yStride) * uint64(t.height)
	uvSize := uint64(t.uvStride) * uint64(uvHeight)

	align := uint64(copyOffsetAlignment)
	t.yOffset = 0
	t.uOffset = alignUp(ySize, align)
	t.vOffset = alignUp(t.uOffset+uvSize, align)
	t.frameSize = alignUp(t.vOffset+uvSize, align)
}

// copyPlanePacked repacks one plane into the staging layout. Negative
// source strides (bottom-up decoders) flip the row order.
func copyPlanePacked(dst unsafe.Pointer, dstStride uint32, src []byte, srcStride int, width, height uint32) {
	offset := 0
	if srcStride < 0 {
		offset = int(height-1) * -srcStride
	}
	for y := uint32(0); y < height; y++ {
		row := unsafe.Slice((*byte)(unsafe.Add(dst, uintptr(dstStride)*uintptr(y))), width)
		copy(row, src[offset+srcStride*int(y):])
	}
}

// UploadMovieFrame stages the three planes of one decoded frame and
// records the copies. Must run outside any rendering scope. A full
// staging ring drops the frame with a once-only log.
func (m *MovieManager) UploadMovieFrame(cmd vk.CommandBuffer, staging *RingBuffer, handle gfx.MovieTextureHandle, planes gfx.MoviePlanes) {
	tex, ok := m.resident[handle]
	if !m.available || !ok {
		return
	}

	alloc, err := staging.AllocateAligned(tex.frameSize, copyOffsetAlignment)
	if err != nil {
		if !m.loggedStagingFull {
			log.Warnf("movie upload dropped: staging ring cannot hold %d bytes", tex.frameSize)
			m.loggedStagingFull = true
		}
		return
	}

	uvWidth := tex.width / 2
	uvHeight := tex.height / 2
	copyPlanePacked(unsafe.Add(alloc.Ptr, uintptr(tex.yOffset)), tex.yStride, planes.Y, planes.YStride, tex.width, tex.height)
	copyPlanePacked(unsafe.Add(alloc.Ptr, uintptr(tex.uOffset)), tex.uvStride, planes.U, planes.UStride, uvWidth, uvHeight)
	copyPlanePacked(unsafe.Add(alloc.Ptr, uintptr(tex.vOffset)), tex.uvStride, planes.V, planes.VStride, uvWidth, uvHeight)

	transitionImageLayout(cmd, tex.image, vk.AspectColor, tex.layout, vk.LayoutTransferDst)
	tex.layout = vk.LayoutTransferDst

	cmd.CmdCopyBufferToImage(staging.Buffer(), tex.image, vk.LayoutTransferDst,
		vk.BufferImageCopy{
			BufferOffset:    alloc.Offset + tex.yOffset,
			BufferRowLength: tex.yStride,
			AspectMask:      vk.AspectPlane0,
			LayerCount:      1,
			ImageExtent:     vk.Extent2D{Width: tex.width, Height: tex.height},
		},
		vk.BufferImageCopy{
			BufferOffset:    alloc.Offset + tex.uOffset,
			BufferRowLength: tex.uvStride,
			AspectMask:      vk.AspectPlane1,
			LayerCount:      1,
			ImageExtent:     vk.Extent2D{Width: uvWidth, Height: uvHeight},
		},
		vk.BufferImageCopy{
			BufferOffset:    alloc.Offset + tex.vOffset,
			BufferRowLength: tex.uvStride,
			AspectMask:      vk.AspectPlane2,
			LayerCount:      1,
			ImageExtent:     vk.Extent2D{Width: uvWidth, Height: uvHeight},
		})

	transitionImageLayout(cmd, tex.image, vk.AspectColor, tex.layout, vk.LayoutShaderReadOnly)
	tex.layout = vk.LayoutShaderReadOnly
}

// DrawMovieTexture records the fullscreen-letterboxed movie quad into
// the current pass.
func (m *MovieManager) DrawMovieTexture(cmd vk.CommandBuffer, screen *gfx.Screen, extent vk.Extent2D,
	target RenderTargetInfo, handle gfx.MovieTextureHandle, x1, y1, x2, y2, alpha float32) {
	tex, ok := m.resident[handle]
	if !m.available || !ok {
		return
	}
	cfg := &m.configs[tex.config]

	if target.ColorFormat != m.swapFormat && !m.loggedFormatMismatch {
		log.Warnf("movie draw target format %d does not match swapchain format %d",
			target.ColorFormat, m.swapFormat)
		m.loggedFormatMismatch = true
	}

	cmd.CmdBindPipeline(cfg.pipeline)
	cmd.CmdBindDescriptorSets(cfg.layout, 0, []vk.DescriptorSet{tex.set}, nil)

	pc := MoviePushConstants{
		ScreenWidth:  float32(screen.MaxW),
		ScreenHeight: float32(screen.MaxH),
		RectMinX:     x1,
		RectMinY:     y1,
		RectMaxX:     x2,
		RectMaxY:     y2,
		Alpha:        alpha,
	}
	cmd.CmdPushConstants(cfg.layout, vk.StageVertexBit|vk.StageFragmentBit, 0,
		unsafe.Pointer(&pc), moviePushConstantsSize)

	cmd.CmdSetPrimitiveTopology(vk.TopologyTriangleList)
	cmd.CmdSetViewport(vk.Viewport{
		Y:        float32(screen.MaxH),
		Width:    float32(screen.MaxW),
		Height:   -float32(screen.MaxH),
		MaxDepth: 1,
	})
	cmd.CmdSetScissor(ClampScissorToFramebuffer(ScissorFromScreen(screen), extent))

	cmd.CmdDraw(6, 1, 0, 0)

	tex.lastUsedSerial = m.safeRetireSerial
}

// ReleaseMovieTexture retires a texture; the GPU may still be reading
// it, so destruction waits for the guarding serial.
func (m *MovieManager) ReleaseMovieTexture(handle gfx.MovieTextureHandle) {
	tex, ok := m.resident[handle]
	if !ok {
		return
	}
	delete(m.resident, handle)
	m.free = append(m.free, handle)

	serial := m.safeRetireSerial
	if tex.lastUsedSerial > serial {
		serial = tex.lastUsedSerial
	}
	m.releases = append(m.releases, pendingMovieRelease{
		serial: serial,
		image:  tex.image,
		memory: tex.memory,
		view:   tex.view,
		set:    tex.set,
	})
}

// SetSafeRetireSerial sets the serial guarding retirements enqueued
// during the current recording.
func (m *MovieManager) SetSafeRetireSerial(serial uint64) {
	m.safeRetireSerial = serial
}

// CollectGarbage destroys retired textures whose guarding submission
// completed.
func (m *MovieManager) CollectGarbage(completedSerial uint64) {
	kept := m.releases[:0]
	for _, r := range m.releases {
		if r.serial > completedSerial {
			kept = append(kept, r)
			continue
		}
		m.device.FreeDescriptorSet(m.pool, r.set)
		m.device.DestroyImageView(r.view)
		m.device.DestroyImage(r.image)
		m.device.FreeMemory(r.memory)
	}
	m.releases = kept
}

func (m *MovieManager) destroyConfigs() {
	for i := range m.configs {
		cfg := &m.configs[i]
		if cfg.pipeline != (vk.Pipeline{}) {
			m.device.DestroyPipeline(cfg.pipeline)
		}
		if cfg.layout != (vk.PipelineLayout{}) {
			m.device.DestroyPipelineLayout(cfg.layout)
		}
		if cfg.setLayout != (vk.DescriptorSetLayout{}) {
			m.device.DestroyDescriptorSetLayout(cfg.setLayout)
		}
		if cfg.sampler != (vk.Sampler{}) {
			m.device.DestroySampler(cfg.sampler)
		}
		if cfg.conversion != (vk.SamplerYcbcrConversion{}) {
			m.device.DestroySamplerYcbcrConversion(cfg.conversion)
		}
		*cfg = ycbcrConfig{}
	}
}

// Destroy releases everything immediately. The device must be idle.
func (m *MovieManager) Destroy() {
	m.CollectGarbage(^uint64(0))
	for handle := range m.resident {
		tex := m.resident[handle]
		m.device.FreeDescriptorSet(m.pool, tex.set)
		m.device.DestroyImageView(tex.view)
		m.device.DestroyImage(tex.image)
		m.device.FreeMemory(tex.memory)
	}
	m.resident = make(map[gfx.MovieTextureHandle]*movieTexture)
	if m.pool != (vk.DescriptorPool{}) {
		m.device.DestroyDescriptorPool(m.pool)
		m.pool = vk.DescriptorPool{}
	}
	m.destroyConfigs()
	m.available = false
}
