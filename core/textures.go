package core

import (
	"math/bits"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// Synthetic handles for the built-in textures. Engine bitmap base frames
// are non-negative, so these never collide.
const (
	fallbackTextureHandle      int32 = -1000
	defaultBaseTextureHandle   int32 = -1001
	defaultNormalTextureHandle int32 = -1002
	defaultSpecTextureHandle   int32 = -1003
)

// copyOffsetAlignment is the required alignment of buffer offsets in
// buffer-to-image copies.
const copyOffsetAlignment = 4

// BitmapTargetFormat is the fixed format of render-to-texture targets.
const BitmapTargetFormat = vk.FormatR8G8B8A8Unorm

// IsBlockCompressed reports whether a format is BC-compressed.
func IsBlockCompressed(format vk.Format) bool {
	switch format {
	case vk.FormatBc1RgbaUnorm, vk.FormatBc2Unorm, vk.FormatBc3Unorm, vk.FormatBc7Unorm:
		return true
	default:
		return false
	}
}

// BlockCompressedSize returns the byte size of one BC-compressed layer.
func BlockCompressedSize(width, height uint32, format vk.Format) uint64 {
	blockSize := uint64(16)
	if format == vk.FormatBc1RgbaUnorm {
		blockSize = 8
	}
	blocksWide := uint64(width+3) / 4
	blocksHigh := uint64(height+3) / 4
	return blocksWide * blocksHigh * blockSize
}

// LayerSize returns the byte size of one uploaded layer. Uncompressed
// multi-channel uploads are expanded to 4 bytes per pixel upstream.
func LayerSize(width, height uint32, format vk.Format) uint64 {
	if IsBlockCompressed(format) {
		return BlockCompressedSize(width, height, format)
	}
	if format == vk.FormatR8Unorm {
		return uint64(width) * uint64(height)
	}
	return uint64(width) * uint64(height) * 4
}

// UploadLayout places the layers of one texture inside a staging span.
type UploadLayout struct {
	LayerSize    uint64
	TotalSize    uint64
	LayerOffsets []uint64
}

// BuildUploadLayout lays out the given layer count with copy-offset
// alignment between layers.
func BuildUploadLayout(width, height uint32, format vk.Format, layers uint32) UploadLayout {
	layout := UploadLayout{
		LayerSize:    LayerSize(width, height, format),
		LayerOffsets: make([]uint64, 0, layers),
	}
	var offset uint64
	for layer := uint32(0); layer < layers; layer++ {
		offset = alignUp(offset, copyOffsetAlignment)
		layout.LayerOffsets = append(layout.LayerOffsets, offset)
		offset += layout.LayerSize
	}
	layout.TotalSize = alignUp(offset, copyOffsetAlignment)
	return layout
}

// pixelVkFormat maps decoded pixel formats onto upload formats.
func pixelVkFormat(format gfx.PixelFormat) (vk.Format, error) {
	switch format {
	case gfx.PixelBGRA8:
		return vk.FormatB8G8R8A8Unorm, nil
	case gfx.PixelRGBA8:
		return vk.FormatR8G8B8A8Unorm, nil
	case gfx.PixelR8:
		return vk.FormatR8Unorm, nil
	case gfx.PixelBC1:
		return vk.FormatBc1RgbaUnorm, nil
	case gfx.PixelBC2:
		return vk.FormatBc2Unorm, nil
	case gfx.PixelBC3:
		return vk.FormatBc3Unorm, nil
	case gfx.PixelBC7:
		return vk.FormatBc7Unorm, nil
	default:
		return vk.FormatUndefined, errors.Errorf("unknown pixel format %d", format)
	}
}

// bindlessSlots hands out indices in the bindless sampler array. Indices
// below BindlessFirstDynamicSlot are reserved for the built-in textures and are
// never handed out or vacated.
type bindlessSlots struct {
	free []uint32
}

func newBindlessSlots() *bindlessSlots {
	s := &bindlessSlots{free: make([]uint32, 0, MaxBindlessTextures-BindlessFirstDynamicSlot)}
	for slot := uint32(MaxBindlessTextures - 1); slot >= BindlessFirstDynamicSlot; slot-- {
		s.free = append(s.free, slot)
	}
	return s
}

func (s *bindlessSlots) acquire() (uint32, bool) {
	if len(s.free) == 0 {
		return 0, false
	}
	slot := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	return slot, true
}

func (s *bindlessSlots) release(slot uint32) {
	if slot < BindlessFirstDynamicSlot || slot >= MaxBindlessTextures {
		return
	}
	s.free = append(s.free, slot)
}

// TextureState is the residency state of one texture record.
type TextureState int

// Residency states.
const (
	TextureMissing TextureState = iota
	TextureQueued
	TextureResident
	TextureFailed
)

// SamplerKey selects a cached sampler.
type SamplerKey struct {
	Linear bool
	Clamp  bool
}

// SamplerKeyFor derives the sampler selection from a material.
func SamplerKeyFor(material *gfx.Material) SamplerKey {
	return SamplerKey{Linear: material.LinearFilter, Clamp: material.ClampAddress}
}

type textureImage struct {
	image  vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
	// Per-face mip 0 views, only populated for render targets so faces
	// can bind as color attachments.
	attachViews []vk.ImageView

	width  uint32
	height uint32
	layers uint32
	mips   uint32
	format vk.Format
	layout vk.ImageLayout
}

type textureRecord struct {
	gpu     textureImage
	state   TextureState
	sampler vk.Sampler

	slot      uint32
	permanent bool

	lastUsedFrame  uint64
	lastUsedSerial uint64
}

type pendingImageRelease struct {
	serial      uint64
	image       vk.Image
	memory      vk.DeviceMemory
	view        vk.ImageView
	attachViews []vk.ImageView
}

// TextureManager owns sampled textures and their bindless slots. Uploads
// requested during a frame are queued and flushed through the frame's
// staging ring at the next recording boundary; until then draws see the
// fallback descriptor.
type TextureManager struct {
	device   vk.Device
	physical vk.PhysicalDevice
	memProps vk.MemoryProperties
	queue    vk.Queue

	source gfx.BitmapSource

	transferPool vk.CommandPool

	textures map[int32]*textureRecord
	samplers map[SamplerKey]vk.Sampler
	pending  []int32
	slots    *bindlessSlots

	releases         []pendingImageRelease
	safeRetireSerial uint64
	completedSerial  uint64
	currentFrame     uint64
}

// NewTextureManager creates the manager and uploads the built-in
// textures into the reserved bindless slots.
func NewTextureManager(device vk.Device, physical vk.PhysicalDevice, memProps vk.MemoryProperties, queue vk.Queue, queueFamily uint32, source gfx.BitmapSource) (*TextureManager, error) {
	pool, err := device.CreateCommandPool(queueFamily, vk.CommandPoolTransient)
	if err != nil {
		return nil, errors.Wrap(err, "vk.CreateCommandPool(): texture upload")
	}

	m := &TextureManager{
		device:       device,
		physical:     physical,
		memProps:     memProps,
		queue:        queue,
		source:       source,
		transferPool: pool,
		textures:     make(map[int32]*textureRecord),
		samplers:     make(map[SamplerKey]vk.Sampler),
		slots:        newBindlessSlots(),
	}

	builtins := []struct {
		handle int32
		slot   uint32
		rgba   [4]byte
	}{
		{fallbackTextureHandle, BindlessSlotFallback, [4]byte{255, 0, 255, 255}},
		{defaultBaseTextureHandle, BindlessSlotDefaultBase, [4]byte{255, 255, 255, 255}},
		{defaultNormalTextureHandle, BindlessSlotDefaultNormal, [4]byte{128, 128, 255, 255}},
		{defaultSpecTextureHandle, BindlessSlotDefaultSpec, [4]byte{0, 0, 0, 255}},
	}
	for _, b := range builtins {
		if err := m.createSolidTexture(b.handle, b.slot, b.rgba); err != nil {
			m.Destroy()
			return nil, err
		}
	}
	return m, nil
}

func (m *TextureManager) sampler(key SamplerKey) (vk.Sampler, error) {
	if sampler, ok := m.samplers[key]; ok {
		return sampler, nil
	}
	info := vk.SamplerCreateInfo{
		MagFilter:   vk.FilterLinear,
		MinFilter:   vk.FilterLinear,
		MipmapMode:  vk.MipmapLinear,
		AddressMode: vk.AddressRepeat,
	}
	if !key.Linear {
		info.MagFilter = vk.FilterNearest
		info.MinFilter = vk.FilterNearest
	}
	if key.Clamp {
		info.AddressMode = vk.AddressClampToEdge
	}
	sampler, err := m.device.CreateSampler(info)
	if err != nil {
		return vk.Sampler{}, errors.Wrap(err, "vk.CreateSampler()")
	}
	m.samplers[key] = sampler
	return sampler, nil
}

// createImage allocates a sampled 2D array image in device-local memory.
func (m *TextureManager) createImage(width, height, layers uint32, format vk.Format) (textureImage, error) {
	image, err := m.device.CreateImage(vk.ImageCreateInfo{
		Format:      format,
		Extent:      vk.Extent2D{Width: width, Height: height},
		MipLevels:   1,
		ArrayLayers: layers,
		Samples:     vk.Samples1,
		Tiling:      vk.TilingOptimal,
		Usage:       vk.ImageUsageTransferDst | vk.ImageUsageSampled,
	})
	if err != nil {
		return textureImage{}, errors.Wrap(err, "vk.CreateImage()")
	}

	requirements := m.device.GetImageMemoryRequirements(image)
	typeIndex, ok := m.memProps.FindType(requirements.MemoryTypeBits, vk.MemoryDeviceLocal)
	if !ok {
		m.device.DestroyImage(image)
		return textureImage{}, errors.New("no device-local memory type for texture")
	}
	memory, err := m.device.AllocateMemory(requirements.Size, typeIndex)
	if err != nil {
		m.device.DestroyImage(image)
		return textureImage{}, errors.Wrap(err, "vk.AllocateMemory(): texture")
	}
	if err := m.device.BindImageMemory(image, memory, 0); err != nil {
		m.device.FreeMemory(memory)
		m.device.DestroyImage(image)
		return textureImage{}, errors.Wrap(err, "vk.BindImageMemory(): texture")
	}

	view, err := m.device.CreateImageView(vk.ImageViewCreateInfo{
		Image:    image,
		ViewType: vk.ViewType2DArray,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.AspectColor,
			LevelCount: 1,
			LayerCount: layers,
		},
	})
	if err != nil {
		m.device.FreeMemory(memory)
		m.device.DestroyImage(image)
		return textureImage{}, errors.Wrap(err, "vk.CreateImageView(): texture")
	}

	return textureImage{
		image:  image,
		memory: memory,
		view:   view,
		width:  width,
		height: height,
		layers: layers,
		mips:   1,
		format: format,
	}, nil
}

// recordUpload records the transfer barriers and copies for one texture.
// The image ends in ShaderReadOnly.
func recordUpload(cmd vk.CommandBuffer, gpu textureImage, staging vk.Buffer, regions []vk.BufferImageCopy) {
	cmd.CmdPipelineBarrier2(vk.ImageMemoryBarrier2{
		SrcStageMask:  vk.StageTopOfPipe,
		DstStageMask:  vk.StageTransfer,
		DstAccessMask: vk.AccessTransferWrite,
		OldLayout:     vk.LayoutUndefined,
		NewLayout:     vk.LayoutTransferDst,
		Image:         gpu.image,
		Subresource: vk.ImageSubresourceRange{
			AspectMask: vk.AspectColor,
			LevelCount: 1,
			LayerCount: gpu.layers,
		},
	})
	cmd.CmdCopyBufferToImage(staging, gpu.image, vk.LayoutTransferDst, regions...)
	cmd.CmdPipelineBarrier2(vk.ImageMemoryBarrier2{
		SrcStageMask:  vk.StageTransfer,
		SrcAccessMask: vk.AccessTransferWrite,
		DstStageMask:  vk.StageFragmentShader,
		DstAccessMask: vk.AccessShaderRead,
		OldLayout:     vk.LayoutTransferDst,
		NewLayout:     vk.LayoutShaderReadOnly,
		Image:         gpu.image,
		Subresource: vk.ImageSubresourceRange{
			AspectMask: vk.AspectColor,
			LevelCount: 1,
			LayerCount: gpu.layers,
		},
	})
}

// uploadNow copies staged bytes into a fresh image through a one-shot
// submission and waits for completion.
func (m *TextureManager) uploadNow(gpu textureImage, data []byte, regions []vk.BufferImageCopy) error {
	staging, err := m.device.CreateBuffer(uint64(len(data)), vk.BufferUsageTransferSrc)
	if err != nil {
		return errors.Wrap(err, "vk.CreateBuffer(): texture staging")
	}
	requirements := m.device.GetBufferMemoryRequirements(staging)
	typeIndex, ok := m.memProps.FindType(requirements.MemoryTypeBits, vk.MemoryHostVisible|vk.MemoryHostCoherent)
	if !ok {
		m.device.DestroyBuffer(staging)
		return errors.New("no host-visible coherent memory type for texture staging")
	}
	stagingMemory, err := m.device.AllocateMemory(requirements.Size, typeIndex)
	if err != nil {
		m.device.DestroyBuffer(staging)
		return errors.Wrap(err, "vk.AllocateMemory(): texture staging")
	}
	defer func() {
		m.device.FreeMemory(stagingMemory)
		m.device.DestroyBuffer(staging)
	}()
	if err := m.device.BindBufferMemory(staging, stagingMemory, 0); err != nil {
		return errors.Wrap(err, "vk.BindBufferMemory(): texture staging")
	}
	mapped, err := m.device.MapMemory(stagingMemory, 0, vk.WholeSize)
	if err != nil {
		return errors.Wrap(err, "vk.MapMemory(): texture staging")
	}
	copy(unsafe.Slice((*byte)(mapped), len(data)), data)
	m.device.UnmapMemory(stagingMemory)

	cmd, err := m.device.AllocateCommandBuffer(m.transferPool)
	if err != nil {
		return errors.Wrap(err, "vk.AllocateCommandBuffer(): texture upload")
	}
	if err := cmd.Begin(vk.CommandBufferOneTimeSubmit); err != nil {
		return errors.Wrap(err, "vk.BeginCommandBuffer(): texture upload")
	}
	recordUpload(cmd, gpu, staging, regions)
	if err := cmd.End(); err != nil {
		return errors.Wrap(err, "vk.EndCommandBuffer(): texture upload")
	}

	fence, err := m.device.CreateFence(false)
	if err != nil {
		return errors.Wrap(err, "vk.CreateFence(): texture upload")
	}
	defer m.device.DestroyFence(fence)
	if err := m.queue.Submit2(nil, []vk.CommandBuffer{cmd}, nil, fence); err != nil {
		return errors.Wrap(err, "vk.QueueSubmit2(): texture upload")
	}
	if err := m.device.WaitForFence(fence, ^uint64(0)); err != nil {
		return errors.Wrap(err, "vk.WaitForFences(): texture upload")
	}
	if err := m.device.ResetCommandPool(m.transferPool); err != nil {
		return errors.Wrap(err, "vk.ResetCommandPool(): texture upload")
	}
	return nil
}

func (m *TextureManager) createSolidTexture(handle int32, slot uint32, rgba [4]byte) error {
	gpu, err := m.createImage(1, 1, 1, vk.FormatR8G8B8A8Unorm)
	if err != nil {
		return err
	}
	regions := []vk.BufferImageCopy{{
		AspectMask:  vk.AspectColor,
		LayerCount:  1,
		ImageExtent: vk.Extent2D{Width: 1, Height: 1},
	}}
	if err := m.uploadNow(gpu, rgba[:], regions); err != nil {
		m.destroyImage(gpu)
		return err
	}
	gpu.layout = vk.LayoutShaderReadOnly

	sampler, err := m.sampler(SamplerKey{Linear: true})
	if err != nil {
		m.destroyImage(gpu)
		return err
	}
	m.textures[handle] = &textureRecord{
		gpu:       gpu,
		state:     TextureResident,
		sampler:   sampler,
		slot:      slot,
		permanent: true,
	}
	return nil
}

func (m *TextureManager) destroyImage(gpu textureImage) {
	for _, view := range gpu.attachViews {
		m.device.DestroyImageView(view)
	}
	if gpu.view != (vk.ImageView{}) {
		m.device.DestroyImageView(gpu.view)
	}
	m.device.FreeMemory(gpu.memory)
	m.device.DestroyImage(gpu.image)
}

// record returns the tracking record for a texture, creating it on first
// sight.
func (m *TextureManager) record(id gfx.TextureID) *textureRecord {
	if record, ok := m.textures[id.BaseFrame()]; ok {
		return record
	}
	record := &textureRecord{slot: gfx.OffsetAbsent}
	m.textures[id.BaseFrame()] = record
	return record
}

// queueUpload marks a missing texture for the next upload flush.
func (m *TextureManager) queueUpload(id gfx.TextureID, record *textureRecord) {
	if record.state != TextureMissing {
		return
	}
	m.pending = append(m.pending, id.BaseFrame())
	record.state = TextureQueued
}

// Descriptor returns the combined-image-sampler descriptor for a push
// write. Missing textures queue an upload and resolve to the fallback
// until the flush makes them resident.
func (m *TextureManager) Descriptor(id gfx.TextureID, key SamplerKey) (vk.DescriptorImageInfo, error) {
	sampler, err := m.sampler(key)
	if err != nil {
		return vk.DescriptorImageInfo{}, err
	}

	record := m.record(id)
	record.sampler = sampler
	record.lastUsedFrame = m.currentFrame
	record.lastUsedSerial = m.safeRetireSerial

	if record.state != TextureResident {
		m.queueUpload(id, record)
		fallback := m.textures[fallbackTextureHandle]
		return vk.DescriptorImageInfo{
			Sampler:     sampler,
			ImageView:   fallback.gpu.view,
			ImageLayout: vk.LayoutShaderReadOnly,
		}, nil
	}

	return vk.DescriptorImageInfo{
		Sampler:     sampler,
		ImageView:   record.gpu.view,
		ImageLayout: vk.LayoutShaderReadOnly,
	}, nil
}

// Slot returns the bindless index for a model map. Missing textures
// queue an upload and resolve to the fallback slot.
func (m *TextureManager) Slot(id gfx.TextureID) uint32 {
	record := m.record(id)
	record.lastUsedFrame = m.currentFrame
	record.lastUsedSerial = m.safeRetireSerial
	if record.state != TextureResident || record.slot == gfx.OffsetAbsent {
		m.queueUpload(id, record)
		return BindlessSlotFallback
	}
	return record.slot
}

// Preload uploads a texture synchronously, outside the frame loop.
func (m *TextureManager) Preload(id gfx.TextureID) error {
	record := m.record(id)
	if record.state == TextureResident {
		return nil
	}

	frames, err := m.source.Frames(id)
	if err != nil {
		record.state = TextureFailed
		return errors.Wrap(err, "bitmap source")
	}
	gpu, layout, err := m.prepareImage(frames)
	if err != nil {
		record.state = TextureFailed
		return err
	}

	data := make([]byte, layout.TotalSize)
	regions := make([]vk.BufferImageCopy, len(frames))
	for layer, frame := range frames {
		copy(data[layout.LayerOffsets[layer]:], frame.Data)
		regions[layer] = vk.BufferImageCopy{
			BufferOffset:   layout.LayerOffsets[layer],
			AspectMask:     vk.AspectColor,
			BaseArrayLayer: uint32(layer),
			LayerCount:     1,
			ImageExtent:    vk.Extent2D{Width: gpu.width, Height: gpu.height},
		}
	}
	if err := m.uploadNow(gpu, data, regions); err != nil {
		m.destroyImage(gpu)
		record.state = TextureFailed
		return err
	}
	gpu.layout = vk.LayoutShaderReadOnly
	return m.finishResident(record, gpu)
}

// prepareImage validates decoded frames and allocates the image.
func (m *TextureManager) prepareImage(frames []gfx.Bitmap) (textureImage, UploadLayout, error) {
	if len(frames) == 0 {
		return textureImage{}, UploadLayout{}, errors.New("bitmap has no frames")
	}
	first := frames[0]
	format, err := pixelVkFormat(first.Format)
	if err != nil {
		return textureImage{}, UploadLayout{}, err
	}
	for _, frame := range frames[1:] {
		if frame.Width != first.Width || frame.Height != first.Height || frame.Format != first.Format {
			return textureImage{}, UploadLayout{}, errors.New("texture array frames disagree on size or format")
		}
	}

	layout := BuildUploadLayout(first.Width, first.Height, format, uint32(len(frames)))
	for layer, frame := range frames {
		if uint64(len(frame.Data)) < layout.LayerSize {
			return textureImage{}, UploadLayout{}, errors.Errorf("frame %d holds %d bytes, need %d", layer, len(frame.Data), layout.LayerSize)
		}
	}

	gpu, err := m.createImage(first.Width, first.Height, uint32(len(frames)), format)
	if err != nil {
		return textureImage{}, UploadLayout{}, err
	}
	return gpu, layout, nil
}

// finishResident assigns a bindless slot and marks the record resident.
func (m *TextureManager) finishResident(record *textureRecord, gpu textureImage) error {
	slot, ok := m.acquireSlot()
	if !ok {
		m.destroyImage(gpu)
		record.state = TextureFailed
		return errors.New("bindless texture array exhausted")
	}
	if record.sampler == (vk.Sampler{}) {
		sampler, err := m.sampler(SamplerKey{Linear: true})
		if err != nil {
			m.slots.release(slot)
			m.destroyImage(gpu)
			record.state = TextureFailed
			return err
		}
		record.sampler = sampler
	}
	record.gpu = gpu
	record.slot = slot
	record.state = TextureResident
	record.lastUsedFrame = m.currentFrame
	return nil
}

// acquireSlot takes a free bindless slot, evicting the least recently
// used fully-retired texture when none are free.
func (m *TextureManager) acquireSlot() (uint32, bool) {
	if slot, ok := m.slots.acquire(); ok {
		return slot, true
	}

	var victim *textureRecord
	for _, record := range m.textures {
		if record.permanent || record.state != TextureResident || record.slot == gfx.OffsetAbsent {
			continue
		}
		if record.lastUsedSerial > m.completedSerial {
			continue
		}
		if victim == nil || record.lastUsedFrame < victim.lastUsedFrame {
			victim = record
		}
	}
	if victim == nil {
		return 0, false
	}

	slot := victim.slot
	m.retireRecord(victim)
	return slot, true
}

// retireRecord queues the record's image for deferred destruction and
// drops it back to missing. Its slot is handed to the caller, not the
// free list.
func (m *TextureManager) retireRecord(record *textureRecord) {
	m.releases = append(m.releases, pendingImageRelease{
		serial:      m.safeRetireSerial,
		image:       record.gpu.image,
		memory:      record.gpu.memory,
		view:        record.gpu.view,
		attachViews: record.gpu.attachViews,
	})
	record.gpu = textureImage{}
	record.slot = gfx.OffsetAbsent
	record.state = TextureMissing
}

// FlushPendingUploads stages every queued texture through the frame's
// staging ring and records the copies on the frame command buffer. Runs
// before the first pass of the frame; textures that do not fit this
// frame stay queued for the next one.
func (m *TextureManager) FlushPendingUploads(cmd vk.CommandBuffer, staging *RingBuffer) {
	if len(m.pending) == 0 {
		return
	}

	var remaining []int32
	for _, baseFrame := range m.pending {
		record, ok := m.textures[baseFrame]
		if !ok || record.state != TextureQueued {
			continue
		}
		id := gfx.SyntheticTexture(baseFrame)

		frames, err := m.source.Frames(id)
		if err != nil {
			record.state = TextureFailed
			log.WithField("texture", baseFrame).WithError(err).Warn("texture upload failed")
			continue
		}
		gpu, layout, err := m.prepareImage(frames)
		if err != nil {
			record.state = TextureFailed
			log.WithField("texture", baseFrame).WithError(err).Warn("texture upload failed")
			continue
		}

		if layout.TotalSize > staging.Size() {
			m.destroyImage(gpu)
			record.state = TextureFailed
			log.WithFields(map[string]interface{}{
				"texture": baseFrame,
				"bytes":   layout.TotalSize,
			}).Warn("texture exceeds the staging ring, dropping")
			continue
		}

		alloc, err := staging.AllocateAligned(layout.TotalSize, copyOffsetAlignment)
		if err != nil {
			// Ring exhausted for this frame, try again next frame.
			m.destroyImage(gpu)
			remaining = append(remaining, baseFrame)
			continue
		}
		regions := make([]vk.BufferImageCopy, len(frames))
		for layer, frame := range frames {
			dst := unsafe.Add(alloc.Ptr, layout.LayerOffsets[layer])
			copy(unsafe.Slice((*byte)(dst), layout.LayerSize), frame.Data)
			regions[layer] = vk.BufferImageCopy{
				BufferOffset:   alloc.Offset + layout.LayerOffsets[layer],
				AspectMask:     vk.AspectColor,
				BaseArrayLayer: uint32(layer),
				LayerCount:     1,
				ImageExtent:    vk.Extent2D{Width: gpu.width, Height: gpu.height},
			}
		}

		recordUpload(cmd, gpu, staging.Buffer(), regions)
		gpu.layout = vk.LayoutShaderReadOnly

		if err := m.finishResident(record, gpu); err != nil {
			log.WithField("texture", baseFrame).WithError(err).Warn("texture upload failed")
			continue
		}
		log.WithFields(map[string]interface{}{
			"texture": baseFrame,
			"slot":    record.slot,
		}).Debug("texture resident")
	}
	m.pending = remaining
}

// mipLevelCount returns the full mip chain length for an extent.
func mipLevelCount(width, height uint32) uint32 {
	side := width
	if height > side {
		side = height
	}
	return uint32(bits.Len32(side))
}

func (m *TextureManager) blitFilter(format vk.Format) vk.Filter {
	props := m.physical.GetFormatProperties(format)
	if props.OptimalTilingFeatures&vk.FormatFeatureSampledImageFilterLinear != 0 {
		return vk.FilterLinear
	}
	return vk.FilterNearest
}

// CreateRenderTarget builds a render-to-texture image the engine can
// both draw into and sample, with a full mip chain regenerated on
// transition out of the attachment layout.
func (m *TextureManager) CreateRenderTarget(id gfx.TextureID, width, height uint32, cube bool) error {
	record := m.record(id)
	if record.state == TextureResident {
		return errors.Errorf("texture %d already exists", id.BaseFrame())
	}

	layers := uint32(1)
	var flags vk.ImageCreateFlags
	viewType := vk.ViewType2DArray
	if cube {
		layers = 6
		flags = vk.ImageCreateCubeCompatible
		viewType = vk.ViewTypeCube
	}
	mips := mipLevelCount(width, height)

	image, err := m.device.CreateImage(vk.ImageCreateInfo{
		Flags:       flags,
		Format:      BitmapTargetFormat,
		Extent:      vk.Extent2D{Width: width, Height: height},
		MipLevels:   mips,
		ArrayLayers: layers,
		Samples:     vk.Samples1,
		Tiling:      vk.TilingOptimal,
		Usage: vk.ImageUsageColorAttachment | vk.ImageUsageSampled |
			vk.ImageUsageTransferSrc | vk.ImageUsageTransferDst,
	})
	if err != nil {
		return errors.Wrap(err, "vk.CreateImage(): render target")
	}
	requirements := m.device.GetImageMemoryRequirements(image)
	typeIndex, ok := m.memProps.FindType(requirements.MemoryTypeBits, vk.MemoryDeviceLocal)
	if !ok {
		m.device.DestroyImage(image)
		return errors.New("no device-local memory type for render target")
	}
	memory, err := m.device.AllocateMemory(requirements.Size, typeIndex)
	if err != nil {
		m.device.DestroyImage(image)
		return errors.Wrap(err, "vk.AllocateMemory(): render target")
	}
	if err := m.device.BindImageMemory(image, memory, 0); err != nil {
		m.device.FreeMemory(memory)
		m.device.DestroyImage(image)
		return errors.Wrap(err, "vk.BindImageMemory(): render target")
	}
	view, err := m.device.CreateImageView(vk.ImageViewCreateInfo{
		Image:    image,
		ViewType: viewType,
		Format:   BitmapTargetFormat,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.AspectColor,
			LevelCount: mips,
			LayerCount: layers,
		},
	})
	if err != nil {
		m.device.FreeMemory(memory)
		m.device.DestroyImage(image)
		return errors.Wrap(err, "vk.CreateImageView(): render target")
	}

	// One mip 0 view per face so each can bind as a color attachment.
	attachViews := make([]vk.ImageView, layers)
	for face := range attachViews {
		faceView, err := m.device.CreateImageView(vk.ImageViewCreateInfo{
			Image:    image,
			ViewType: vk.ViewType2D,
			Format:   BitmapTargetFormat,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.AspectColor,
				LevelCount:     1,
				BaseArrayLayer: uint32(face),
				LayerCount:     1,
			},
		})
		if err != nil {
			for _, v := range attachViews[:face] {
				m.device.DestroyImageView(v)
			}
			m.device.DestroyImageView(view)
			m.device.FreeMemory(memory)
			m.device.DestroyImage(image)
			return errors.Wrap(err, "vk.CreateImageView(): render target face")
		}
		attachViews[face] = faceView
	}

	gpu := textureImage{
		image:       image,
		memory:      memory,
		view:        view,
		attachViews: attachViews,
		width:       width,
		height:      height,
		layers:      layers,
		mips:        mips,
		format:      BitmapTargetFormat,
		layout:      vk.LayoutUndefined,
	}
	return m.finishResident(record, gpu)
}

// RenderTargetLayout returns the tracked layout of a render target.
func (m *TextureManager) RenderTargetLayout(id gfx.TextureID) (vk.ImageLayout, bool) {
	record, ok := m.textures[id.BaseFrame()]
	if !ok || record.state != TextureResident {
		return vk.LayoutUndefined, false
	}
	return record.gpu.layout, true
}

// RenderTargetAttachmentView returns the mip 0 attachment view of one
// face. Non-cube targets only have face 0.
func (m *TextureManager) RenderTargetAttachmentView(id gfx.TextureID, face uint32) (vk.ImageView, bool) {
	record, ok := m.textures[id.BaseFrame()]
	if !ok || record.state != TextureResident || face >= uint32(len(record.gpu.attachViews)) {
		return vk.ImageView{}, false
	}
	return record.gpu.attachViews[face], true
}

// RenderTargetExtent returns the mip 0 extent of a render target.
func (m *TextureManager) RenderTargetExtent(id gfx.TextureID) (vk.Extent2D, bool) {
	record, ok := m.textures[id.BaseFrame()]
	if !ok || record.state != TextureResident {
		return vk.Extent2D{}, false
	}
	return vk.Extent2D{Width: record.gpu.width, Height: record.gpu.height}, true
}

// TransitionRenderTarget moves a render target between its attachment
// and sampled layouts. Leaving the attachment layout regenerates the
// mip chain first.
func (m *TextureManager) TransitionRenderTarget(cmd vk.CommandBuffer, id gfx.TextureID, newLayout vk.ImageLayout) error {
	record, ok := m.textures[id.BaseFrame()]
	if !ok || record.state != TextureResident {
		return errors.Errorf("texture %d is not a resident render target", id.BaseFrame())
	}
	gpu := &record.gpu
	if gpu.layout == newLayout {
		return nil
	}

	if newLayout == vk.LayoutShaderReadOnly && gpu.mips > 1 {
		m.generateMipmaps(cmd, gpu)
		gpu.layout = newLayout
		return nil
	}

	transitionImageLayout(cmd, gpu.image, vk.AspectColor, gpu.layout, newLayout)
	gpu.layout = newLayout
	return nil
}

// generateMipmaps downsamples mip N-1 into mip N with successive blits,
// leaving every level in ShaderReadOnly.
func (m *TextureManager) generateMipmaps(cmd vk.CommandBuffer, gpu *textureImage) {
	filter := m.blitFilter(gpu.format)
	srcStage, srcAccess := StageAccessForLayout(gpu.layout)

	// Base level feeds the chain.
	cmd.CmdPipelineBarrier2(vk.ImageMemoryBarrier2{
		SrcStageMask:  srcStage,
		SrcAccessMask: srcAccess,
		DstStageMask:  vk.StageTransfer,
		DstAccessMask: vk.AccessTransferRead,
		OldLayout:     gpu.layout,
		NewLayout:     vk.LayoutTransferSrc,
		Image:         gpu.image,
		Subresource: vk.ImageSubresourceRange{
			AspectMask: vk.AspectColor,
			LevelCount: 1,
			LayerCount: gpu.layers,
		},
	})

	srcWidth, srcHeight := int32(gpu.width), int32(gpu.height)
	for mip := uint32(1); mip < gpu.mips; mip++ {
		dstWidth, dstHeight := srcWidth/2, srcHeight/2
		if dstWidth < 1 {
			dstWidth = 1
		}
		if dstHeight < 1 {
			dstHeight = 1
		}

		cmd.CmdPipelineBarrier2(vk.ImageMemoryBarrier2{
			SrcStageMask:  vk.StageTransfer,
			DstStageMask:  vk.StageTransfer,
			DstAccessMask: vk.AccessTransferWrite,
			OldLayout:     vk.LayoutUndefined,
			NewLayout:     vk.LayoutTransferDst,
			Image:         gpu.image,
			Subresource: vk.ImageSubresourceRange{
				AspectMask:   vk.AspectColor,
				BaseMipLevel: mip,
				LevelCount:   1,
				LayerCount:   gpu.layers,
			},
		})
		cmd.CmdBlitImage(gpu.image, vk.LayoutTransferSrc, gpu.image, vk.LayoutTransferDst, vk.ImageBlit{
			SrcAspect:   vk.AspectColor,
			SrcMipLevel: mip - 1,
			SrcLayers:   gpu.layers,
			SrcOffsets:  [2]vk.Offset3D{{}, {X: srcWidth, Y: srcHeight, Z: 1}},
			DstAspect:   vk.AspectColor,
			DstMipLevel: mip,
			DstLayers:   gpu.layers,
			DstOffsets:  [2]vk.Offset3D{{}, {X: dstWidth, Y: dstHeight, Z: 1}},
		}, filter)
		cmd.CmdPipelineBarrier2(vk.ImageMemoryBarrier2{
			SrcStageMask:  vk.StageTransfer,
			SrcAccessMask: vk.AccessTransferWrite,
			DstStageMask:  vk.StageTransfer,
			DstAccessMask: vk.AccessTransferRead,
			OldLayout:     vk.LayoutTransferDst,
			NewLayout:     vk.LayoutTransferSrc,
			Image:         gpu.image,
			Subresource: vk.ImageSubresourceRange{
				AspectMask:   vk.AspectColor,
				BaseMipLevel: mip,
				LevelCount:   1,
				LayerCount:   gpu.layers,
			},
		})

		srcWidth, srcHeight = dstWidth, dstHeight
	}

	cmd.CmdPipelineBarrier2(vk.ImageMemoryBarrier2{
		SrcStageMask:  vk.StageTransfer,
		SrcAccessMask: vk.AccessTransferRead,
		DstStageMask:  vk.StageFragmentShader,
		DstAccessMask: vk.AccessShaderRead,
		OldLayout:     vk.LayoutTransferSrc,
		NewLayout:     vk.LayoutShaderReadOnly,
		Image:         gpu.image,
		Subresource: vk.ImageSubresourceRange{
			AspectMask: vk.AspectColor,
			LevelCount: gpu.mips,
			LayerCount: gpu.layers,
		},
	})
}

// Delete retires a texture's image and frees its bindless slot.
func (m *TextureManager) Delete(id gfx.TextureID) {
	record, ok := m.textures[id.BaseFrame()]
	if !ok || record.permanent {
		return
	}
	if record.state == TextureResident {
		slot := record.slot
		m.retireRecord(record)
		m.slots.release(slot)
	}
	delete(m.textures, id.BaseFrame())
}

// BindlessImages returns the full descriptor array for the model set.
// Vacant slots resolve to the fallback texture, so every slot is always
// valid to sample.
func (m *TextureManager) BindlessImages() []vk.DescriptorImageInfo {
	fallback := m.textures[fallbackTextureHandle]
	infos := make([]vk.DescriptorImageInfo, MaxBindlessTextures)
	for i := range infos {
		infos[i] = vk.DescriptorImageInfo{
			Sampler:     fallback.sampler,
			ImageView:   fallback.gpu.view,
			ImageLayout: vk.LayoutShaderReadOnly,
		}
	}
	for _, record := range m.textures {
		if record.state != TextureResident || record.slot == gfx.OffsetAbsent {
			continue
		}
		infos[record.slot] = vk.DescriptorImageInfo{
			Sampler:     record.sampler,
			ImageView:   record.gpu.view,
			ImageLayout: vk.LayoutShaderReadOnly,
		}
	}
	return infos
}

// SetSafeRetireSerial records the serial guarding retirements, the
// upcoming submit's serial plus one during recording.
func (m *TextureManager) SetSafeRetireSerial(serial uint64) {
	m.safeRetireSerial = serial
}

// SetCurrentFrame advances the monotonic CPU frame counter used for LRU
// bookkeeping. The counter must never repeat or the eviction order
// degrades.
func (m *TextureManager) SetCurrentFrame(frame uint64) {
	m.currentFrame = frame
}

// CollectGarbage destroys retired images whose guarding serial has
// completed on the GPU.
func (m *TextureManager) CollectGarbage(completedSerial uint64) {
	m.completedSerial = completedSerial
	kept := m.releases[:0]
	for _, release := range m.releases {
		if release.serial <= completedSerial {
			for _, view := range release.attachViews {
				m.device.DestroyImageView(view)
			}
			m.device.DestroyImageView(release.view)
			m.device.FreeMemory(release.memory)
			m.device.DestroyImage(release.image)
			continue
		}
		kept = append(kept, release)
	}
	m.releases = kept
}

// Destroy releases every texture, sampler and retired image. The caller
// must have idled the device first.
func (m *TextureManager) Destroy() {
	for handle, record := range m.textures {
		if record.state == TextureResident || record.gpu.image != (vk.Image{}) {
			m.destroyImage(record.gpu)
		}
		delete(m.textures, handle)
	}
	m.CollectGarbage(^uint64(0))
	for key, sampler := range m.samplers {
		m.device.DestroySampler(sampler)
		delete(m.samplers, key)
	}
	m.device.DestroyCommandPool(m.transferPool)
}
