package core

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// bufferEntry tracks one engine buffer. The device buffer is created
// lazily on the first data update, so size is unknown at creation time.
type bufferEntry struct {
	bufType gfx.BufferType
	usage   gfx.BufferUsage

	buffer vk.Buffer
	memory vk.DeviceMemory
	mapped unsafe.Pointer
	size   uint64

	deviceLocal bool
}

type pendingBufferRelease struct {
	serial uint64
	buffer vk.Buffer
	memory vk.DeviceMemory
}

// BufferManager owns the engine-visible buffers. Static buffers live in
// device-local memory and are filled through a one-shot staging upload;
// Dynamic and Streaming buffers are host-visible coherent and orphan
// their storage on full updates. Destruction is deferred until the GPU
// can no longer reference the old storage.
type BufferManager struct {
	device   vk.Device
	memProps vk.MemoryProperties
	queue    vk.Queue

	transferPool vk.CommandPool

	buffers    map[gfx.BufferHandle]*bufferEntry
	nextHandle gfx.BufferHandle

	safeRetireSerial uint64
	pending          []pendingBufferRelease
}

// NewBufferManager creates the manager and its transient transfer pool.
func NewBufferManager(device vk.Device, memProps vk.MemoryProperties, queue vk.Queue, queueFamily uint32) (*BufferManager, error) {
	pool, err := device.CreateCommandPool(queueFamily, vk.CommandPoolTransient)
	if err != nil {
		return nil, errors.Wrap(err, "vk.CreateCommandPool(): transfer")
	}
	return &BufferManager{
		device:       device,
		memProps:     memProps,
		queue:        queue,
		transferPool: pool,
		buffers:      make(map[gfx.BufferHandle]*bufferEntry),
		nextHandle:   1,
	}, nil
}

// usageFlagsForType maps a buffer type to its Vulkan usage bits. Vertex
// buffers also carry storage usage so the model vertex heap can be read
// through the vertex-pulling SSBO binding.
func usageFlagsForType(bufType gfx.BufferType) (vk.BufferUsageFlags, error) {
	switch bufType {
	case gfx.VertexBuffer:
		return vk.BufferUsageVertexBuffer | vk.BufferUsageStorageBuffer | vk.BufferUsageTransferDst, nil
	case gfx.IndexBuffer:
		return vk.BufferUsageIndexBuffer | vk.BufferUsageTransferDst, nil
	case gfx.UniformBuffer:
		return vk.BufferUsageUniformBuffer | vk.BufferUsageTransferDst, nil
	case gfx.StorageBuffer:
		return vk.BufferUsageStorageBuffer | vk.BufferUsageTransferDst, nil
	default:
		return 0, errors.Errorf("unknown buffer type %d", bufType)
	}
}

// postUploadMasks gives the destination scope for the barrier after a
// staging copy, by how the buffer will be consumed.
func postUploadMasks(bufType gfx.BufferType) (vk.PipelineStageFlags2, vk.AccessFlags2) {
	switch bufType {
	case gfx.VertexBuffer:
		return vk.StageVertexInput | vk.StageVertexShader, vk.AccessVertexAttributeRead | vk.AccessShaderRead
	case gfx.IndexBuffer:
		return vk.StageVertexInput, vk.AccessIndexRead
	case gfx.UniformBuffer:
		return vk.StageVertexShader | vk.StageFragmentShader, vk.AccessUniformRead
	default:
		return vk.StageVertexShader | vk.StageFragmentShader, vk.AccessShaderRead
	}
}

// CreateBuffer registers a buffer handle. The device buffer itself is
// created on the first update, once the size is known.
func (m *BufferManager) CreateBuffer(bufType gfx.BufferType, usage gfx.BufferUsage) (gfx.BufferHandle, error) {
	if _, err := usageFlagsForType(bufType); err != nil {
		return gfx.InvalidBuffer, err
	}
	handle := m.nextHandle
	m.nextHandle++
	m.buffers[handle] = &bufferEntry{
		bufType:     bufType,
		usage:       usage,
		deviceLocal: usage == gfx.StaticUsage,
	}
	return handle, nil
}

func (m *BufferManager) entry(handle gfx.BufferHandle) (*bufferEntry, error) {
	entry, ok := m.buffers[handle]
	if !ok {
		return nil, errors.Errorf("unknown buffer handle %d", handle)
	}
	return entry, nil
}

// Buffer returns the device buffer behind a handle. It is zero until
// the first update creates the storage.
func (m *BufferManager) Buffer(handle gfx.BufferHandle) (vk.Buffer, error) {
	entry, err := m.entry(handle)
	if err != nil {
		return vk.Buffer{}, err
	}
	return entry.buffer, nil
}

// Type returns the buffer type behind a handle.
func (m *BufferManager) Type(handle gfx.BufferHandle) (gfx.BufferType, error) {
	entry, err := m.entry(handle)
	if err != nil {
		return 0, err
	}
	return entry.bufType, nil
}

// Size returns the current storage size behind a handle.
func (m *BufferManager) Size(handle gfx.BufferHandle) (uint64, error) {
	entry, err := m.entry(handle)
	if err != nil {
		return 0, err
	}
	return entry.size, nil
}

// allocateStorage creates and binds a device buffer of the given size.
func (m *BufferManager) allocateStorage(entry *bufferEntry, size uint64) error {
	usage, err := usageFlagsForType(entry.bufType)
	if err != nil {
		return err
	}

	buffer, err := m.device.CreateBuffer(size, usage)
	if err != nil {
		return errors.Wrap(err, "vk.CreateBuffer()")
	}

	requirements := m.device.GetBufferMemoryRequirements(buffer)
	memFlags := vk.MemoryHostVisible | vk.MemoryHostCoherent
	if entry.deviceLocal {
		memFlags = vk.MemoryDeviceLocal
	}
	typeIndex, ok := m.memProps.FindType(requirements.MemoryTypeBits, memFlags)
	if !ok {
		m.device.DestroyBuffer(buffer)
		return errors.Errorf("no memory type for buffer (flags 0x%x)", memFlags)
	}

	memory, err := m.device.AllocateMemory(requirements.Size, typeIndex)
	if err != nil {
		m.device.DestroyBuffer(buffer)
		return errors.Wrap(err, "vk.AllocateMemory()")
	}
	if err := m.device.BindBufferMemory(buffer, memory, 0); err != nil {
		m.device.FreeMemory(memory)
		m.device.DestroyBuffer(buffer)
		return errors.Wrap(err, "vk.BindBufferMemory()")
	}

	var mapped unsafe.Pointer
	if !entry.deviceLocal {
		mapped, err = m.device.MapMemory(memory, 0, vk.WholeSize)
		if err != nil {
			m.device.FreeMemory(memory)
			m.device.DestroyBuffer(buffer)
			return errors.Wrap(err, "vk.MapMemory()")
		}
	}

	entry.buffer = buffer
	entry.memory = memory
	entry.mapped = mapped
	entry.size = size
	return nil
}

// retireStorage queues the entry's current storage for destruction once
// the GPU has retired every frame that could still reference it.
func (m *BufferManager) retireStorage(entry *bufferEntry) {
	if entry.size == 0 {
		return
	}
	if entry.mapped != nil {
		m.device.UnmapMemory(entry.memory)
	}
	m.pending = append(m.pending, pendingBufferRelease{
		serial: m.safeRetireSerial,
		buffer: entry.buffer,
		memory: entry.memory,
	})
	entry.buffer = vk.Buffer{}
	entry.memory = vk.DeviceMemory{}
	entry.mapped = nil
	entry.size = 0
}

// UpdateData replaces the whole buffer contents. Host-visible buffers
// orphan their storage so in-flight frames keep reading the old data;
// device-local buffers go through a synchronous staging upload.
func (m *BufferManager) UpdateData(handle gfx.BufferHandle, data []byte) error {
	entry, err := m.entry(handle)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("buffer update with no data")
	}

	if entry.deviceLocal {
		if entry.size != uint64(len(data)) {
			m.retireStorage(entry)
			if err := m.allocateStorage(entry, uint64(len(data))); err != nil {
				return err
			}
		}
		return m.stagingUpload(entry, 0, data)
	}

	// Orphan even at the same size. The previous storage may still be
	// read by an in-flight frame.
	m.retireStorage(entry)
	if err := m.allocateStorage(entry, uint64(len(data))); err != nil {
		return err
	}
	copy(unsafe.Slice((*byte)(entry.mapped), len(data)), data)
	return nil
}

// UpdateDataOffset overwrites part of an existing buffer in place. The
// caller owns the hazard: for host-visible buffers the write lands
// immediately, without orphaning.
func (m *BufferManager) UpdateDataOffset(handle gfx.BufferHandle, offset uint64, data []byte) error {
	entry, err := m.entry(handle)
	if err != nil {
		return err
	}
	if entry.size == 0 {
		return errors.Errorf("offset update of buffer %d before any full update", handle)
	}
	if offset+uint64(len(data)) > entry.size {
		return errors.Errorf("offset update out of range: %d+%d > %d", offset, len(data), entry.size)
	}

	if entry.deviceLocal {
		return m.stagingUpload(entry, offset, data)
	}
	copy(unsafe.Slice((*byte)(unsafe.Add(entry.mapped, offset)), len(data)), data)
	return nil
}

// stagingUpload copies data into a device-local buffer through a
// transient staging buffer and waits for the copy to finish.
func (m *BufferManager) stagingUpload(entry *bufferEntry, offset uint64, data []byte) error {
	staging, err := m.device.CreateBuffer(uint64(len(data)), vk.BufferUsageTransferSrc)
	if err != nil {
		return errors.Wrap(err, "vk.CreateBuffer(): staging")
	}
	requirements := m.device.GetBufferMemoryRequirements(staging)
	typeIndex, ok := m.memProps.FindType(requirements.MemoryTypeBits, vk.MemoryHostVisible|vk.MemoryHostCoherent)
	if !ok {
		m.device.DestroyBuffer(staging)
		return errors.New("no host-visible coherent memory type for staging")
	}
	stagingMemory, err := m.device.AllocateMemory(requirements.Size, typeIndex)
	if err != nil {
		m.device.DestroyBuffer(staging)
		return errors.Wrap(err, "vk.AllocateMemory(): staging")
	}
	defer func() {
		m.device.FreeMemory(stagingMemory)
		m.device.DestroyBuffer(staging)
	}()
	if err := m.device.BindBufferMemory(staging, stagingMemory, 0); err != nil {
		return errors.Wrap(err, "vk.BindBufferMemory(): staging")
	}

	mapped, err := m.device.MapMemory(stagingMemory, 0, vk.WholeSize)
	if err != nil {
		return errors.Wrap(err, "vk.MapMemory(): staging")
	}
	copy(unsafe.Slice((*byte)(mapped), len(data)), data)
	m.device.UnmapMemory(stagingMemory)

	cmd, err := m.device.AllocateCommandBuffer(m.transferPool)
	if err != nil {
		return errors.Wrap(err, "vk.AllocateCommandBuffer(): transfer")
	}
	if err := cmd.Begin(vk.CommandBufferOneTimeSubmit); err != nil {
		return errors.Wrap(err, "vk.BeginCommandBuffer(): transfer")
	}
	cmd.CmdCopyBuffer(staging, entry.buffer, vk.BufferCopy{
		DstOffset: offset,
		Size:      uint64(len(data)),
	})
	dstStage, dstAccess := postUploadMasks(entry.bufType)
	cmd.CmdBufferBarrier2(vk.BufferMemoryBarrier2{
		SrcStageMask:  vk.StageTransfer,
		SrcAccessMask: vk.AccessTransferWrite,
		DstStageMask:  dstStage,
		DstAccessMask: dstAccess,
		Buffer:        entry.buffer,
		Offset:        0,
		Size:          vk.WholeSize,
	})
	if err := cmd.End(); err != nil {
		return errors.Wrap(err, "vk.EndCommandBuffer(): transfer")
	}

	fence, err := m.device.CreateFence(false)
	if err != nil {
		return errors.Wrap(err, "vk.CreateFence(): transfer")
	}
	defer m.device.DestroyFence(fence)

	if err := m.queue.Submit2(nil, []vk.CommandBuffer{cmd}, nil, fence); err != nil {
		return errors.Wrap(err, "vk.QueueSubmit2(): transfer")
	}
	if err := m.device.WaitForFence(fence, ^uint64(0)); err != nil {
		return errors.Wrap(err, "vk.WaitForFences(): transfer")
	}
	if err := m.device.ResetCommandPool(m.transferPool); err != nil {
		return errors.Wrap(err, "vk.ResetCommandPool(): transfer")
	}
	return nil
}

// Map returns the persistent mapping of a streaming buffer. Other
// usages keep their mapping private to the manager.
func (m *BufferManager) Map(handle gfx.BufferHandle) (unsafe.Pointer, error) {
	entry, err := m.entry(handle)
	if err != nil {
		return nil, err
	}
	if entry.usage != gfx.StreamingUsage {
		return nil, errors.Errorf("buffer %d is not persistently mapped", handle)
	}
	if entry.mapped == nil {
		return nil, errors.Errorf("buffer %d has no storage yet", handle)
	}
	return entry.mapped, nil
}

// Flush is a no-op: host-visible storage is allocated coherent.
func (m *BufferManager) Flush(handle gfx.BufferHandle) error {
	_, err := m.entry(handle)
	return err
}

// Delete queues the buffer's storage for deferred destruction and
// forgets the handle.
func (m *BufferManager) Delete(handle gfx.BufferHandle) error {
	entry, err := m.entry(handle)
	if err != nil {
		return err
	}
	m.retireStorage(entry)
	delete(m.buffers, handle)
	return nil
}

// SetSafeRetireSerial records the serial guarding retirements. During
// recording this is the upcoming submit's serial plus one, so storage
// retired now outlives every submission that could reference it.
func (m *BufferManager) SetSafeRetireSerial(serial uint64) {
	m.safeRetireSerial = serial
}

// CollectGarbage destroys retired storage whose guarding serial has
// completed on the GPU.
func (m *BufferManager) CollectGarbage(completedSerial uint64) {
	kept := m.pending[:0]
	for _, release := range m.pending {
		if release.serial <= completedSerial {
			m.device.FreeMemory(release.memory)
			m.device.DestroyBuffer(release.buffer)
			continue
		}
		kept = append(kept, release)
	}
	m.pending = kept
}

// Destroy releases every live buffer and all retired storage. The
// caller must have idled the device first.
func (m *BufferManager) Destroy() {
	for handle, entry := range m.buffers {
		if entry.size > 0 {
			if entry.mapped != nil {
				m.device.UnmapMemory(entry.memory)
			}
			m.device.FreeMemory(entry.memory)
			m.device.DestroyBuffer(entry.buffer)
		}
		delete(m.buffers, handle)
	}
	m.CollectGarbage(^uint64(0))
	m.device.DestroyCommandPool(m.transferPool)
}
