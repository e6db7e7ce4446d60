package core

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/vk"
)

// Per-frame ring sizes. A single frame must fit inside its ring; there
// is no intra-frame wraparound.
const (
	UniformRingSize = 512 << 10
	VertexRingSize  = 1 << 20
	StagingRingSize = 12 << 20
)

// RingAllocation is one transient allocation inside a ring.
type RingAllocation struct {
	Offset uint64
	Ptr    unsafe.Pointer
}

// RingBuffer is a per-frame bump allocator in host-visible coherent
// memory with a persistent mapping. Head resets only at frame reuse,
// after the GPU finished the frame that wrote it.
type RingBuffer struct {
	device vk.Device

	buffer vk.Buffer
	memory vk.DeviceMemory
	mapped unsafe.Pointer

	size      uint64
	head      uint64
	alignment uint64
}

// NewRingBuffer allocates and persistently maps a ring.
func NewRingBuffer(device vk.Device, memProps vk.MemoryProperties, size uint64, usage vk.BufferUsageFlags, alignment uint64) (*RingBuffer, error) {
	if alignment == 0 {
		alignment = 1
	}

	buffer, err := device.CreateBuffer(size, usage)
	if err != nil {
		return nil, errors.Wrap(err, "vk.CreateBuffer(): ring")
	}

	requirements := device.GetBufferMemoryRequirements(buffer)
	typeIndex, ok := memProps.FindType(requirements.MemoryTypeBits, vk.MemoryHostVisible|vk.MemoryHostCoherent)
	if !ok {
		device.DestroyBuffer(buffer)
		return nil, errors.New("no host-visible coherent memory type for ring buffer")
	}

	memory, err := device.AllocateMemory(requirements.Size, typeIndex)
	if err != nil {
		device.DestroyBuffer(buffer)
		return nil, errors.Wrap(err, "vk.AllocateMemory(): ring")
	}
	if err := device.BindBufferMemory(buffer, memory, 0); err != nil {
		device.FreeMemory(memory)
		device.DestroyBuffer(buffer)
		return nil, errors.Wrap(err, "vk.BindBufferMemory(): ring")
	}

	mapped, err := device.MapMemory(memory, 0, vk.WholeSize)
	if err != nil {
		device.FreeMemory(memory)
		device.DestroyBuffer(buffer)
		return nil, errors.Wrap(err, "vk.MapMemory(): ring")
	}

	return &RingBuffer{
		device:    device,
		buffer:    buffer,
		memory:    memory,
		mapped:    mapped,
		size:      size,
		alignment: alignment,
	}, nil
}

// Buffer returns the underlying device buffer.
func (r *RingBuffer) Buffer() vk.Buffer { return r.buffer }

// Size returns the ring capacity in bytes.
func (r *RingBuffer) Size() uint64 { return r.size }

// alignUp rounds v up to the next multiple of align. align must be a
// power of two or 1.
func alignUp(v, align uint64) uint64 {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// Allocate bumps the head with the ring's default alignment.
func (r *RingBuffer) Allocate(size uint64) (RingAllocation, error) {
	return r.AllocateAligned(size, r.alignment)
}

// AllocateAligned bumps the head with an explicit alignment. Overflow
// is a hard error: a frame must never exceed its ring.
func (r *RingBuffer) AllocateAligned(size, alignment uint64) (RingAllocation, error) {
	offset := alignUp(r.head, alignment)
	if offset+size > r.size {
		return RingAllocation{}, errors.Errorf("ring overflow: need %d bytes at offset %d of %d", size, offset, r.size)
	}
	r.head = offset + size
	return RingAllocation{
		Offset: offset,
		Ptr:    unsafe.Add(r.mapped, offset),
	}, nil
}

// Write allocates and copies data in one step.
func (r *RingBuffer) Write(data []byte) (RingAllocation, error) {
	alloc, err := r.Allocate(uint64(len(data)))
	if err != nil {
		return RingAllocation{}, err
	}
	copy(unsafe.Slice((*byte)(alloc.Ptr), len(data)), data)
	return alloc, nil
}

// Used returns the bytes consumed since the last reset.
func (r *RingBuffer) Used() uint64 { return r.head }

// Reset rewinds the head. Only valid once the frame owning the ring is
// no longer in flight.
func (r *RingBuffer) Reset() { r.head = 0 }

// Destroy unmaps and releases the ring.
func (r *RingBuffer) Destroy() {
	r.device.UnmapMemory(r.memory)
	r.device.FreeMemory(r.memory)
	r.device.DestroyBuffer(r.buffer)
}
