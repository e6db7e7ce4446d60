package core

import (
	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// UniformBinding tracks one engine uniform block bound for the frame.
// The dynamic offset is supplied per draw; the descriptor write only
// changes when the underlying device buffer does.
type UniformBinding struct {
	Handle gfx.BufferHandle
	Buffer vk.Buffer
	Offset uint64
	Size   uint64
}

// Frame owns everything one in-flight frame writes: the command buffer,
// the transient rings, the swapchain-acquire semaphore, the in-flight
// fence and the model descriptor set with its bindless mirror.
type Frame struct {
	device vk.Device

	commandPool vk.CommandPool
	cmd         vk.CommandBuffer

	imageAvailable vk.Semaphore
	inFlight       vk.Fence

	uniforms *RingBuffer
	vertices *RingBuffer
	staging  *RingBuffer

	modelSet    vk.DescriptorSet
	deferredSet vk.DescriptorSet
	// Last bindless array written to modelSet. Nil forces a full write.
	bindlessMirror  []vk.DescriptorImageInfo
	modelUniform    UniformBinding
	nanovgUniform   UniformBinding
	matricesUniform UniformBinding
}

// NewFrame allocates the per-frame resources. Ring alignments come from
// the device limits: min-UBO alignment for the uniform ring, storage
// alignment for the vertex ring (it doubles as a dynamic SSBO) and copy
// alignment for the staging ring.
func NewFrame(device vk.Device, memProps vk.MemoryProperties, queueFamily uint32, layouts *DescriptorLayouts, limits vk.PhysicalDeviceLimits) (*Frame, error) {
	f := &Frame{device: device}

	pool, err := device.CreateCommandPool(queueFamily, vk.CommandPoolResetCommandBuffer)
	if err != nil {
		return nil, errors.Wrap(err, "vk.CreateCommandPool(): frame")
	}
	f.commandPool = pool

	cmd, err := device.AllocateCommandBuffer(pool)
	if err != nil {
		f.Destroy()
		return nil, errors.Wrap(err, "vk.AllocateCommandBuffer(): frame")
	}
	f.cmd = cmd

	imageAvailable, err := device.CreateSemaphore()
	if err != nil {
		f.Destroy()
		return nil, errors.Wrap(err, "vk.CreateSemaphore(): image available")
	}
	f.imageAvailable = imageAvailable

	fence, err := device.CreateFence(false)
	if err != nil {
		f.Destroy()
		return nil, errors.Wrap(err, "vk.CreateFence(): frame")
	}
	f.inFlight = fence

	f.uniforms, err = NewRingBuffer(device, memProps, UniformRingSize,
		vk.BufferUsageUniformBuffer, limits.MinUniformBufferOffsetAlignment)
	if err != nil {
		f.Destroy()
		return nil, err
	}
	f.vertices, err = NewRingBuffer(device, memProps, VertexRingSize,
		vk.BufferUsageVertexBuffer|vk.BufferUsageStorageBuffer, limits.MinStorageBufferOffsetAlignment)
	if err != nil {
		f.Destroy()
		return nil, err
	}
	f.staging, err = NewRingBuffer(device, memProps, StagingRingSize,
		vk.BufferUsageTransferSrc, limits.OptimalBufferCopyOffsetAlignment)
	if err != nil {
		f.Destroy()
		return nil, err
	}

	f.modelSet, err = layouts.AllocateModelSet()
	if err != nil {
		f.Destroy()
		return nil, err
	}

	// The deferred set's dynamic UBO bindings point at the frame's
	// uniform ring for good; only the per-light offsets vary.
	f.deferredSet, err = layouts.AllocateDeferredSet()
	if err != nil {
		f.Destroy()
		return nil, err
	}
	device.UpdateDescriptorSets(f.deferredSet, []vk.WriteDescriptorSet{
		{
			DstBinding: 0,
			Type:       vk.DescriptorUniformBufferDynamic,
			Buffers: []vk.DescriptorBufferInfo{{
				Buffer: f.uniforms.Buffer(),
				Range:  deferredMatrixUBOSize,
			}},
		},
		{
			DstBinding: 1,
			Type:       vk.DescriptorUniformBufferDynamic,
			Buffers: []vk.DescriptorBufferInfo{{
				Buffer: f.uniforms.Buffer(),
				Range:  deferredLightUBOSize,
			}},
		},
	})
	return f, nil
}

// Cmd returns the frame's primary command buffer.
func (f *Frame) Cmd() vk.CommandBuffer { return f.cmd }

// Uniforms returns the uniform ring.
func (f *Frame) Uniforms() *RingBuffer { return f.uniforms }

// Vertices returns the vertex ring.
func (f *Frame) Vertices() *RingBuffer { return f.vertices }

// Staging returns the staging ring.
func (f *Frame) Staging() *RingBuffer { return f.staging }

// ImageAvailable returns the swapchain-acquire semaphore.
func (f *Frame) ImageAvailable() vk.Semaphore { return f.imageAvailable }

// Fence returns the in-flight fence.
func (f *Frame) Fence() vk.Fence { return f.inFlight }

// ModelSet returns the frame's model descriptor set.
func (f *Frame) ModelSet() vk.DescriptorSet { return f.modelSet }

// DeferredSet returns the frame's deferred lighting descriptor set.
func (f *Frame) DeferredSet() vk.DescriptorSet { return f.deferredSet }

// ModelUniform returns the bound model uniform block.
func (f *Frame) ModelUniform() UniformBinding { return f.modelUniform }

// NanoVGUniform returns the bound NanoVG uniform block.
func (f *Frame) NanoVGUniform() UniformBinding { return f.nanovgUniform }

// MatricesUniform returns the bound matrices uniform block.
func (f *Frame) MatricesUniform() UniformBinding { return f.matricesUniform }

// Reset rewinds the frame for reuse once its last submission completed.
func (f *Frame) Reset() error {
	if err := f.device.ResetCommandPool(f.commandPool); err != nil {
		return errors.Wrap(err, "vk.ResetCommandPool(): frame")
	}
	f.uniforms.Reset()
	f.vertices.Reset()
	f.staging.Reset()
	f.modelUniform = UniformBinding{}
	f.nanovgUniform = UniformBinding{}
	f.matricesUniform = UniformBinding{}
	return nil
}

// BindUniformBlock records an engine uniform-block binding for the
// frame. The model block rewrites the dynamic-UBO descriptor only when
// the device buffer changed, typically after orphaning.
func (f *Frame) BindUniformBlock(block gfx.UniformBlock, binding UniformBinding) error {
	switch block {
	case gfx.ModelDataBlock:
		if binding.Buffer != f.modelUniform.Buffer {
			f.device.UpdateDescriptorSets(f.modelSet, []vk.WriteDescriptorSet{{
				DstBinding: modelBindingUniforms,
				Type:       vk.DescriptorUniformBufferDynamic,
				Buffers: []vk.DescriptorBufferInfo{{
					Buffer: binding.Buffer,
					Offset: 0,
					Range:  binding.Size,
				}},
			}})
		}
		f.modelUniform = binding
	case gfx.NanoVGDataBlock:
		f.nanovgUniform = binding
	case gfx.MatricesBlock:
		// Matrices go through the per-draw push descriptors.
		f.matricesUniform = binding
	default:
		return errors.Errorf("unknown uniform block %d", block)
	}
	return nil
}

// SyncModelDescriptors rewrites the per-frame model set at the
// recording boundary: the vertex heap SSBO, the frame's vertex ring as
// dynamic SSBO and a minimal diff of the bindless array.
func (f *Frame) SyncModelDescriptors(vertexHeap vk.Buffer, images []vk.DescriptorImageInfo) {
	writes := make([]vk.WriteDescriptorSet, 0, 4)

	if vertexHeap != (vk.Buffer{}) {
		writes = append(writes, vk.WriteDescriptorSet{
			DstBinding: modelBindingVertexHeap,
			Type:       vk.DescriptorStorageBuffer,
			Buffers: []vk.DescriptorBufferInfo{{
				Buffer: vertexHeap,
				Offset: 0,
				Range:  vk.WholeSize,
			}},
		})
	}

	// Whole-size is invalid for dynamic bindings, so the ring's full
	// capacity is the range.
	writes = append(writes, vk.WriteDescriptorSet{
		DstBinding: modelBindingTransforms,
		Type:       vk.DescriptorStorageBufferDynamic,
		Buffers: []vk.DescriptorBufferInfo{{
			Buffer: f.vertices.Buffer(),
			Offset: 0,
			Range:  VertexRingSize,
		}},
	})

	writes = append(writes, f.diffBindlessWrites(images)...)
	f.device.UpdateDescriptorSets(f.modelSet, writes)

	if f.bindlessMirror == nil {
		f.bindlessMirror = make([]vk.DescriptorImageInfo, MaxBindlessTextures)
	}
	copy(f.bindlessMirror, images)
}

// diffBindlessWrites emits contiguous writes covering only the slots
// that changed since this frame last wrote the array.
func (f *Frame) diffBindlessWrites(images []vk.DescriptorImageInfo) []vk.WriteDescriptorSet {
	if f.bindlessMirror == nil {
		return []vk.WriteDescriptorSet{{
			DstBinding: modelBindingTextures,
			Type:       vk.DescriptorCombinedImageSampler,
			Images:     images,
		}}
	}

	var writes []vk.WriteDescriptorSet
	for start := 0; start < len(images); {
		if images[start] == f.bindlessMirror[start] {
			start++
			continue
		}
		end := start + 1
		for end < len(images) && images[end] != f.bindlessMirror[end] {
			end++
		}
		writes = append(writes, vk.WriteDescriptorSet{
			DstBinding:      modelBindingTextures,
			DstArrayElement: uint32(start),
			Type:            vk.DescriptorCombinedImageSampler,
			Images:          images[start:end],
		})
		start = end
	}
	return writes
}

// Destroy releases the frame's resources.
func (f *Frame) Destroy() {
	if f.staging != nil {
		f.staging.Destroy()
		f.staging = nil
	}
	if f.vertices != nil {
		f.vertices.Destroy()
		f.vertices = nil
	}
	if f.uniforms != nil {
		f.uniforms.Destroy()
		f.uniforms = nil
	}
	if f.inFlight != (vk.Fence{}) {
		f.device.DestroyFence(f.inFlight)
		f.inFlight = vk.Fence{}
	}
	if f.imageAvailable != (vk.Semaphore{}) {
		f.device.DestroySemaphore(f.imageAvailable)
		f.imageAvailable = vk.Semaphore{}
	}
	if f.commandPool != (vk.CommandPool{}) {
		f.device.DestroyCommandPool(f.commandPool)
		f.commandPool = vk.CommandPool{}
	}
}
