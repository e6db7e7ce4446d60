package core

import (
	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/vk"
)

// Reserved bindless slots. Slot 0 stays valid forever so bindless
// sampling never touches a destroyed image; 1..3 are well-known
// defaults so shaders need no absent-texture sentinel routing.
const (
	BindlessSlotFallback      = 0
	BindlessSlotDefaultBase   = 1
	BindlessSlotDefaultNormal = 2
	BindlessSlotDefaultSpec   = 3
	BindlessFirstDynamicSlot  = 4
)

// Model set bindings.
const (
	modelBindingVertexHeap = 0
	modelBindingTextures   = 1
	modelBindingUniforms   = 2
	modelBindingTransforms = 3
)

// ModelPushConstants mirrors the GLSL push-constant block of the model
// shaders: vertex-heap addressing, per-vertex attribute offsets with
// OffsetAbsent for missing ones, bindless texture indices and variant
// flags. 14 words, 56 bytes.
type ModelPushConstants struct {
	VertexOffset uint32
	Stride       uint32

	PosOffset         uint32
	NormalOffset      uint32
	TexCoordOffset    uint32
	TangentOffset     uint32
	BoneIndicesOffset uint32
	BoneWeightsOffset uint32

	BaseMapIndex   uint32
	GlowMapIndex   uint32
	NormalMapIndex uint32
	SpecMapIndex   uint32

	MatrixIndex uint32
	Flags       uint32
}

const modelPushConstantsSize = 56

// MoviePushConstants is the fullscreen movie draw's push block.
type MoviePushConstants struct {
	ScreenWidth  float32
	ScreenHeight float32
	RectMinX     float32
	RectMinY     float32
	RectMaxX     float32
	RectMaxY     float32
	Alpha        float32
	Pad          float32
}

const moviePushConstantsSize = 32

// DescriptorLayouts owns every descriptor set layout and pipeline
// layout of the renderer: the standard push-descriptor path, the model
// bindless path and the deferred lighting path.
type DescriptorLayouts struct {
	device vk.Device

	globalLayout      vk.DescriptorSetLayout
	perDrawPushLayout vk.DescriptorSetLayout
	standardLayout    vk.PipelineLayout

	modelSetLayout      vk.DescriptorSetLayout
	modelPipelineLayout vk.PipelineLayout
	modelPool           vk.DescriptorPool

	deferredSetLayout      vk.DescriptorSetLayout
	deferredPipelineLayout vk.PipelineLayout

	globalPool vk.DescriptorPool
}

// ValidateDeviceLimits rejects devices whose limits cannot carry the
// renderer's descriptor model. The device filter runs first, so a
// failure here is a programming error rather than a user-facing one.
func ValidateDeviceLimits(limits vk.PhysicalDeviceLimits) error {
	if limits.MaxPushConstantsSize < modelPushConstantsSize {
		return errors.Errorf("maxPushConstantsSize %d below %d", limits.MaxPushConstantsSize, modelPushConstantsSize)
	}
	if limits.MaxDescriptorSetSampledImages < MaxBindlessTextures {
		return errors.Errorf("maxDescriptorSetSampledImages %d below bindless array size %d",
			limits.MaxDescriptorSetSampledImages, MaxBindlessTextures)
	}
	if limits.MaxPerStageDescriptorSampledImages < MaxBindlessTextures {
		return errors.Errorf("maxPerStageDescriptorSampledImages %d below bindless array size %d",
			limits.MaxPerStageDescriptorSampledImages, MaxBindlessTextures)
	}
	if limits.MaxBoundDescriptorSets < 2 {
		return errors.Errorf("maxBoundDescriptorSets %d below 2", limits.MaxBoundDescriptorSets)
	}
	return nil
}

// NewDescriptorLayouts builds all layouts up front.
func NewDescriptorLayouts(device vk.Device) (*DescriptorLayouts, error) {
	l := &DescriptorLayouts{device: device}

	// Global set: G-buffer attachments plus depth, sampled by the
	// deferred lighting and post passes.
	globalBindings := make([]vk.DescriptorSetLayoutBinding, GBufferCount+1)
	for i := range globalBindings {
		globalBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding: uint32(i),
			Type:    vk.DescriptorCombinedImageSampler,
			Count:   1,
			Stages:  vk.StageFragmentBit,
		}
	}
	var err error
	l.globalLayout, err = device.CreateDescriptorSetLayout(globalBindings, false)
	if err != nil {
		return nil, errors.Wrap(err, "vk.CreateDescriptorSetLayout(): global")
	}

	// Per-draw push set: matrix UBO, generic UBO and three combined
	// samplers. Bindings 3 and 4 carry the extra inputs of the post
	// passes (SMAA lookup tables, blend weights, depth).
	l.perDrawPushLayout, err = device.CreateDescriptorSetLayout([]vk.DescriptorSetLayoutBinding{
		{Binding: 0, Type: vk.DescriptorUniformBuffer, Count: 1, Stages: vk.StageVertexBit | vk.StageFragmentBit},
		{Binding: 1, Type: vk.DescriptorUniformBuffer, Count: 1, Stages: vk.StageVertexBit | vk.StageFragmentBit},
		{Binding: 2, Type: vk.DescriptorCombinedImageSampler, Count: 1, Stages: vk.StageFragmentBit},
		{Binding: 3, Type: vk.DescriptorCombinedImageSampler, Count: 1, Stages: vk.StageFragmentBit},
		{Binding: 4, Type: vk.DescriptorCombinedImageSampler, Count: 1, Stages: vk.StageFragmentBit},
	}, true)
	if err != nil {
		return nil, errors.Wrap(err, "vk.CreateDescriptorSetLayout(): per-draw push")
	}

	// Set order: set 0 = per-draw push descriptors, set 1 = global.
	l.standardLayout, err = device.CreatePipelineLayout(
		[]vk.DescriptorSetLayout{l.perDrawPushLayout, l.globalLayout}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "vk.CreatePipelineLayout(): standard")
	}

	if err := l.createModelLayouts(); err != nil {
		return nil, err
	}
	if err := l.createDeferredLayouts(); err != nil {
		return nil, err
	}

	l.globalPool, err = device.CreateDescriptorPool(1+MaxFramesInFlight, []vk.DescriptorPoolSize{
		{Type: vk.DescriptorCombinedImageSampler, Count: uint32(GBufferCount + 1)},
		{Type: vk.DescriptorUniformBufferDynamic, Count: 2 * MaxFramesInFlight},
	})
	if err != nil {
		return nil, errors.Wrap(err, "vk.CreateDescriptorPool(): global")
	}

	return l, nil
}

func (l *DescriptorLayouts) createModelLayouts() error {
	var err error
	l.modelSetLayout, err = l.device.CreateDescriptorSetLayout([]vk.DescriptorSetLayoutBinding{
		{Binding: modelBindingVertexHeap, Type: vk.DescriptorStorageBuffer, Count: 1, Stages: vk.StageVertexBit},
		{Binding: modelBindingTextures, Type: vk.DescriptorCombinedImageSampler, Count: MaxBindlessTextures,
			Stages: vk.StageFragmentBit, Flags: vk.BindingPartiallyBound},
		{Binding: modelBindingUniforms, Type: vk.DescriptorUniformBufferDynamic, Count: 1,
			Stages: vk.StageVertexBit | vk.StageFragmentBit},
		{Binding: modelBindingTransforms, Type: vk.DescriptorStorageBufferDynamic, Count: 1, Stages: vk.StageVertexBit},
	}, false)
	if err != nil {
		return errors.Wrap(err, "vk.CreateDescriptorSetLayout(): model")
	}

	l.modelPipelineLayout, err = l.device.CreatePipelineLayout(
		[]vk.DescriptorSetLayout{l.modelSetLayout},
		[]vk.PushConstantRange{{
			Stages: vk.StageVertexBit | vk.StageFragmentBit,
			Size:   modelPushConstantsSize,
		}})
	if err != nil {
		return errors.Wrap(err, "vk.CreatePipelineLayout(): model")
	}

	l.modelPool, err = l.device.CreateDescriptorPool(MaxFramesInFlight, []vk.DescriptorPoolSize{
		{Type: vk.DescriptorStorageBuffer, Count: MaxFramesInFlight},
		{Type: vk.DescriptorCombinedImageSampler, Count: MaxBindlessTextures * MaxFramesInFlight},
		{Type: vk.DescriptorUniformBufferDynamic, Count: MaxFramesInFlight},
		{Type: vk.DescriptorStorageBufferDynamic, Count: MaxFramesInFlight},
	})
	if err != nil {
		return errors.Wrap(err, "vk.CreateDescriptorPool(): model")
	}
	return nil
}

func (l *DescriptorLayouts) createDeferredLayouts() error {
	// Set 0: per-light matrix and light UBOs with dynamic offsets into
	// the per-frame uniform ring. Set 1: global G-buffer samplers.
	var err error
	l.deferredSetLayout, err = l.device.CreateDescriptorSetLayout([]vk.DescriptorSetLayoutBinding{
		{Binding: 0, Type: vk.DescriptorUniformBufferDynamic, Count: 1, Stages: vk.StageVertexBit | vk.StageFragmentBit},
		{Binding: 1, Type: vk.DescriptorUniformBufferDynamic, Count: 1, Stages: vk.StageFragmentBit},
	}, false)
	if err != nil {
		return errors.Wrap(err, "vk.CreateDescriptorSetLayout(): deferred")
	}

	l.deferredPipelineLayout, err = l.device.CreatePipelineLayout(
		[]vk.DescriptorSetLayout{l.deferredSetLayout, l.globalLayout}, nil)
	if err != nil {
		return errors.Wrap(err, "vk.CreatePipelineLayout(): deferred")
	}
	return nil
}

// GlobalSetLayout is the set 1 layout shared by standard and deferred
// pipeline layouts.
func (l *DescriptorLayouts) GlobalSetLayout() vk.DescriptorSetLayout { return l.globalLayout }

// PerDrawPushLayout is the push-descriptor set 0 layout.
func (l *DescriptorLayouts) PerDrawPushLayout() vk.DescriptorSetLayout { return l.perDrawPushLayout }

// StandardPipelineLayout is the layout for non-model, non-deferred draws.
func (l *DescriptorLayouts) StandardPipelineLayout() vk.PipelineLayout { return l.standardLayout }

// ModelSetLayout is the bindless model set layout.
func (l *DescriptorLayouts) ModelSetLayout() vk.DescriptorSetLayout { return l.modelSetLayout }

// ModelPipelineLayout is the vertex-pulling model path's layout.
func (l *DescriptorLayouts) ModelPipelineLayout() vk.PipelineLayout { return l.modelPipelineLayout }

// DeferredSetLayout is the per-light dynamic UBO set layout.
func (l *DescriptorLayouts) DeferredSetLayout() vk.DescriptorSetLayout { return l.deferredSetLayout }

// DeferredPipelineLayout is the deferred lighting path's layout.
func (l *DescriptorLayouts) DeferredPipelineLayout() vk.PipelineLayout { return l.deferredPipelineLayout }

// AllocateGlobalSet allocates the global G-buffer set.
func (l *DescriptorLayouts) AllocateGlobalSet() (vk.DescriptorSet, error) {
	set, err := l.device.AllocateDescriptorSet(l.globalPool, l.globalLayout)
	return set, errors.Wrap(err, "vk.AllocateDescriptorSet(): global")
}

// AllocateDeferredSet allocates one per-frame deferred lighting set.
func (l *DescriptorLayouts) AllocateDeferredSet() (vk.DescriptorSet, error) {
	set, err := l.device.AllocateDescriptorSet(l.globalPool, l.deferredSetLayout)
	return set, errors.Wrap(err, "vk.AllocateDescriptorSet(): deferred")
}

// AllocateModelSet allocates one per-frame model descriptor set.
func (l *DescriptorLayouts) AllocateModelSet() (vk.DescriptorSet, error) {
	set, err := l.device.AllocateDescriptorSet(l.modelPool, l.modelSetLayout)
	return set, errors.Wrap(err, "vk.AllocateDescriptorSet(): model")
}

// Destroy releases every layout and pool.
func (l *DescriptorLayouts) Destroy() {
	l.device.DestroyDescriptorPool(l.globalPool)
	l.device.DestroyDescriptorPool(l.modelPool)
	l.device.DestroyPipelineLayout(l.deferredPipelineLayout)
	l.device.DestroyDescriptorSetLayout(l.deferredSetLayout)
	l.device.DestroyPipelineLayout(l.modelPipelineLayout)
	l.device.DestroyDescriptorSetLayout(l.modelSetLayout)
	l.device.DestroyPipelineLayout(l.standardLayout)
	l.device.DestroyDescriptorSetLayout(l.perDrawPushLayout)
	l.device.DestroyDescriptorSetLayout(l.globalLayout)
}
