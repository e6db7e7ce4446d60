package core

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// PipelineLayoutKind selects which of the three pipeline layouts a
// shader type binds.
type PipelineLayoutKind int

// Pipeline layout kinds.
const (
	LayoutStandard PipelineLayoutKind = iota // per-draw push descriptors + global set
	LayoutModel                              // model bindless set + push constants
	LayoutDeferred                           // deferred lighting dynamic UBOs + global set
)

// VertexInputMode selects how a shader consumes vertices.
type VertexInputMode int

// Vertex input modes.
const (
	VertexAttributes VertexInputMode = iota // fixed-function attributes from the layout
	VertexPulling                           // fetched from the vertex heap SSBO by index
)

// ShaderLayoutSpec is the layout contract of one shader type.
type ShaderLayoutSpec struct {
	PipelineLayout PipelineLayoutKind
	VertexInput    VertexInputMode
}

var shaderLayoutSpecs = map[gfx.ShaderType]ShaderLayoutSpec{
	gfx.ShaderPassthrough:        {LayoutStandard, VertexAttributes},
	gfx.ShaderInterface:          {LayoutStandard, VertexAttributes},
	gfx.ShaderModel:              {LayoutModel, VertexPulling},
	gfx.ShaderDeferredLighting:   {LayoutDeferred, VertexAttributes},
	gfx.ShaderNanoVG:             {LayoutStandard, VertexAttributes},
	gfx.ShaderRocketUI:           {LayoutStandard, VertexAttributes},
	gfx.ShaderParticle:           {LayoutStandard, VertexAttributes},
	gfx.ShaderDistortion:         {LayoutStandard, VertexAttributes},
	gfx.ShaderDecal:              {LayoutModel, VertexPulling},
	gfx.ShaderShieldImpact:       {LayoutModel, VertexPulling},
	gfx.ShaderMovie:              {LayoutStandard, VertexAttributes},
	gfx.ShaderCopy:               {LayoutStandard, VertexAttributes},
	gfx.ShaderTonemapping:        {LayoutStandard, VertexAttributes},
	gfx.ShaderBloomBrightPass:    {LayoutStandard, VertexAttributes},
	gfx.ShaderBloomBlur:          {LayoutStandard, VertexAttributes},
	gfx.ShaderBloomComposite:     {LayoutStandard, VertexAttributes},
	gfx.ShaderSmaaEdge:           {LayoutStandard, VertexAttributes},
	gfx.ShaderSmaaBlendingWeight: {LayoutStandard, VertexAttributes},
	gfx.ShaderSmaaNeighborhood:   {LayoutStandard, VertexAttributes},
	gfx.ShaderFxaaPrepass:        {LayoutStandard, VertexAttributes},
	gfx.ShaderFxaa:               {LayoutStandard, VertexAttributes},
	gfx.ShaderPostEffects:        {LayoutStandard, VertexAttributes},
	gfx.ShaderLightshafts:        {LayoutStandard, VertexAttributes},
}

// ShaderLayout returns the layout contract for a shader type.
func ShaderLayout(shader gfx.ShaderType) ShaderLayoutSpec {
	spec, ok := shaderLayoutSpecs[shader]
	if !ok {
		return ShaderLayoutSpec{LayoutStandard, VertexAttributes}
	}
	return spec
}

// UsesVertexPulling reports whether a shader type fetches vertices from
// the heap SSBO instead of fixed-function attributes.
func UsesVertexPulling(shader gfx.ShaderType) bool {
	return ShaderLayout(shader).VertexInput == VertexPulling
}

// EDS3Caps carries the per-feature extended-dynamic-state-3
// capabilities the device reports.
type EDS3Caps struct {
	ColorBlendEnable     bool
	ColorWriteMask       bool
	PolygonMode          bool
	RasterizationSamples bool
}

// PipelineKey determines pipeline identity in the cache. Vertex-pulling
// shader types ignore LayoutHash in both equality and hashing since
// they consume no fixed-function vertex input; their identity comes
// from ShaderHash, folded from the module handles, instead.
type PipelineKey struct {
	Shader       gfx.ShaderType
	VariantFlags uint32
	ColorFormat  vk.Format
	DepthFormat  vk.Format
	SampleCount  vk.SampleCountFlags
	ColorAttachmentCount uint32
	BlendMode    gfx.AlphaBlend
	LayoutHash   uint64
	ShaderHash   uint64
	ColorWriteMask vk.ColorComponentFlags

	StencilTestEnable bool
	StencilCompareOp  vk.CompareOp
	StencilCompareMask uint32
	StencilWriteMask  uint32
	StencilReference  uint32
	FrontFailOp       vk.StencilOp
	FrontDepthFailOp  vk.StencilOp
	FrontPassOp       vk.StencilOp
	BackFailOp        vk.StencilOp
	BackDepthFailOp   vk.StencilOp
	BackPassOp        vk.StencilOp
}

// NewPipelineKey returns a key with the renderer's baseline values.
func NewPipelineKey(shader gfx.ShaderType) PipelineKey {
	return PipelineKey{
		Shader:               shader,
		SampleCount:          vk.Samples1,
		ColorAttachmentCount: 1,
		ColorWriteMask:       vk.ColorComponentsAll,
		StencilCompareOp:     vk.CompareOpAlways,
		StencilCompareMask:   0xFF,
		StencilWriteMask:     0xFF,
	}
}

// normalized zeroes the fields equality ignores so the key can be used
// directly as a map key.
func (k PipelineKey) normalized() PipelineKey {
	if UsesVertexPulling(k.Shader) {
		k.LayoutHash = 0
	} else {
		k.ShaderHash = 0
	}
	return k
}

// Equal compares two keys under the vertex-pulling layout rule.
func (k PipelineKey) Equal(other PipelineKey) bool {
	return k.normalized() == other.normalized()
}

// Hash mixes every identity field; vertex-pulling types substitute
// ShaderHash for LayoutHash.
func (k PipelineKey) Hash() uint64 {
	h := uint64(k.Shader)
	mix := func(v uint64) {
		h ^= v + 0x9e3779b9 + (h << 6) + (h >> 2)
	}
	mix(uint64(k.VariantFlags))
	mix(uint64(k.ColorFormat))
	mix(uint64(k.DepthFormat))
	mix(uint64(k.SampleCount))
	mix(uint64(k.ColorAttachmentCount))
	mix(uint64(k.BlendMode))
	mix(uint64(k.ColorWriteMask))
	if k.StencilTestEnable {
		mix(1)
	} else {
		mix(0)
	}
	mix(uint64(k.StencilCompareOp))
	mix(uint64(k.StencilCompareMask))
	mix(uint64(k.StencilWriteMask))
	mix(uint64(k.StencilReference))
	mix(uint64(k.FrontFailOp))
	mix(uint64(k.FrontDepthFailOp))
	mix(uint64(k.FrontPassOp))
	mix(uint64(k.BackFailOp))
	mix(uint64(k.BackDepthFailOp))
	mix(uint64(k.BackPassOp))
	if UsesVertexPulling(k.Shader) {
		h ^= k.ShaderHash
	} else {
		h ^= k.LayoutHash
	}
	return h
}

// shaderModulesHash folds both module handles into the ShaderHash key
// component of vertex-pulling shader types.
func shaderModulesHash(modules ShaderModules) uint64 {
	h := uint64(modules.Vert.Handle())
	h ^= uint64(modules.Frag.Handle()) + 0x9e3779b9 + (h << 6) + (h >> 2)
	return h
}

type vertexInputState struct {
	bindings   []vk.VertexInputBinding
	attributes []vk.VertexInputAttribute
	divisors   []vk.VertexBindingDivisor
}

type vertexFormatMapping struct {
	format   vk.Format
	location uint32
}

// Attribute locations follow the OpenGL backend convention so shaders
// stay shared between backends: 0=position, 1=color, 2=texcoord,
// 3=normal, 4=tangent, 5=model id, 6=radius, 7=uvec, 8..11=matrix rows.
var vertexFormatMap = map[gfx.VertexFormat]vertexFormatMapping{
	gfx.Position4: {vk.FormatR32G32B32A32Sfloat, 0},
	gfx.Position3: {vk.FormatR32G32B32Sfloat, 0},
	gfx.Position2: {vk.FormatR32G32Sfloat, 0},
	gfx.ScreenPos: {vk.FormatR32G32Sfloat, 0},
	gfx.Color3:    {vk.FormatR8G8B8Unorm, 1},
	gfx.Color4:    {vk.FormatR8G8B8A8Unorm, 1},
	gfx.Color4F:   {vk.FormatR32G32B32A32Sfloat, 1},
	gfx.TexCoord2: {vk.FormatR32G32Sfloat, 2},
	gfx.TexCoord4: {vk.FormatR32G32B32A32Sfloat, 2},
	gfx.Normal:    {vk.FormatR32G32B32Sfloat, 3},
	gfx.Tangent:   {vk.FormatR32G32B32A32Sfloat, 4},
	gfx.ModelID:   {vk.FormatR32Sfloat, 5},
	gfx.Radius:    {vk.FormatR32Sfloat, 6},
	gfx.UVec:      {vk.FormatR32G32B32Sfloat, 7},
	gfx.Matrix4:   {vk.FormatR32G32B32A32Sfloat, 8},
}

// convertVertexLayout translates an engine vertex layout to Vulkan
// bindings, attributes and divisors. One binding per buffer number;
// any component with a non-zero divisor switches its binding to
// instance rate, and divisors above one are collected separately since
// they need the divisor extension. Matrix4 expands into four vec4
// attributes on consecutive locations.
func convertVertexLayout(layout *gfx.VertexLayout) (vertexInputState, error) {
	var result vertexInputState

	componentsByBuffer := make(map[int][]gfx.VertexComponent)
	var bufferOrder []int
	for _, component := range layout.Components() {
		if _, seen := componentsByBuffer[component.BufferNumber]; !seen {
			bufferOrder = append(bufferOrder, component.BufferNumber)
		}
		componentsByBuffer[component.BufferNumber] = append(componentsByBuffer[component.BufferNumber], component)
	}

	divisorsByBinding := make(map[uint32]uint32)

	for _, bufferNum := range bufferOrder {
		components := componentsByBuffer[bufferNum]

		binding := vk.VertexInputBinding{
			Binding: uint32(bufferNum),
			Stride:  uint32(layout.Stride(bufferNum)),
		}
		for _, component := range components {
			if component.Divisor != 0 {
				binding.InstanceRate = true
				// Divisor 1 is core; larger values need the extension.
				if component.Divisor > 1 {
					divisorsByBinding[binding.Binding] = uint32(component.Divisor)
				}
				break
			}
		}
		result.bindings = append(result.bindings, binding)

		for _, component := range components {
			mapping, ok := vertexFormatMap[component.Format]
			if !ok {
				return vertexInputState{}, errors.Errorf("unknown vertex format %d", component.Format)
			}

			if component.Format == gfx.Matrix4 {
				// Stored as four vec4 rows at 16-byte offsets.
				for row := uint32(0); row < 4; row++ {
					result.attributes = append(result.attributes, vk.VertexInputAttribute{
						Location: mapping.location + row,
						Binding:  uint32(component.BufferNumber),
						Format:   vk.FormatR32G32B32A32Sfloat,
						Offset:   uint32(component.Offset) + row*16,
					})
				}
				continue
			}

			result.attributes = append(result.attributes, vk.VertexInputAttribute{
				Location: mapping.location,
				Binding:  uint32(component.BufferNumber),
				Format:   mapping.format,
				Offset:   uint32(component.Offset),
			})
		}
	}

	for binding, divisor := range divisorsByBinding {
		result.divisors = append(result.divisors, vk.VertexBindingDivisor{Binding: binding, Divisor: divisor})
	}

	return result, nil
}

// blendAttachmentForMode maps an engine blend mode to the static blend
// attachment state baked into a pipeline.
func blendAttachmentForMode(mode gfx.AlphaBlend, writeMask vk.ColorComponentFlags) vk.BlendAttachmentState {
	state := vk.BlendAttachmentState{
		WriteMask: writeMask,
		ColorOp:   vk.BlendOpAdd,
		AlphaOp:   vk.BlendOpAdd,
	}

	switch mode {
	case gfx.BlendAdditive:
		state.BlendEnable = true
		state.SrcColorFactor = vk.BlendFactorOne
		state.DstColorFactor = vk.BlendFactorOne
		state.SrcAlphaFactor = vk.BlendFactorOne
		state.DstAlphaFactor = vk.BlendFactorOne
	case gfx.BlendAlphaAdditive:
		state.BlendEnable = true
		state.SrcColorFactor = vk.BlendFactorSrcAlpha
		state.DstColorFactor = vk.BlendFactorOne
		state.SrcAlphaFactor = vk.BlendFactorSrcAlpha
		state.DstAlphaFactor = vk.BlendFactorOne
	case gfx.BlendAlpha:
		state.BlendEnable = true
		state.SrcColorFactor = vk.BlendFactorSrcAlpha
		state.DstColorFactor = vk.BlendFactorOneMinusSrcAlpha
		state.SrcAlphaFactor = vk.BlendFactorSrcAlpha
		state.DstAlphaFactor = vk.BlendFactorOneMinusSrcAlpha
	case gfx.BlendAlphaSrcColor:
		state.BlendEnable = true
		state.SrcColorFactor = vk.BlendFactorSrcAlpha
		state.DstColorFactor = vk.BlendFactorOneMinusSrcColor
		state.SrcAlphaFactor = vk.BlendFactorSrcAlpha
		state.DstAlphaFactor = vk.BlendFactorOneMinusSrcColor
	case gfx.BlendPremultiplied:
		state.BlendEnable = true
		state.SrcColorFactor = vk.BlendFactorOne
		state.DstColorFactor = vk.BlendFactorOneMinusSrcAlpha
		state.SrcAlphaFactor = vk.BlendFactorOne
		state.DstAlphaFactor = vk.BlendFactorOneMinusSrcAlpha
	}

	return state
}

// BuildDynamicStateList returns the dynamic states every pipeline is
// created with. The core set keeps pipelines shared across materials;
// the EDS3 extras are appended per device capability.
func BuildDynamicStateList(supportsEDS3 bool, caps EDS3Caps) []vk.DynamicState {
	states := []vk.DynamicState{
		vk.DynamicViewport,
		vk.DynamicScissor,
		vk.DynamicLineWidth,
		vk.DynamicCullMode,
		vk.DynamicFrontFace,
		vk.DynamicPrimitiveTopology,
		vk.DynamicDepthTestEnable,
		vk.DynamicDepthWriteEnable,
		vk.DynamicDepthCompareOp,
		vk.DynamicStencilTestEnable,
	}

	if supportsEDS3 {
		if caps.ColorBlendEnable {
			states = append(states, vk.DynamicColorBlendEnableEXT)
		}
		if caps.ColorWriteMask {
			states = append(states, vk.DynamicColorWriteMaskEXT)
		}
		if caps.PolygonMode {
			states = append(states, vk.DynamicPolygonModeEXT)
		}
		if caps.RasterizationSamples {
			states = append(states, vk.DynamicRasterizationSamplesEXT)
		}
	}

	return states
}

// PipelineManager caches graphics pipelines by PipelineKey. Creation
// happens on demand under a mutex; warmup jobs may request pipelines
// from outside the render thread.
type PipelineManager struct {
	device  vk.Device
	layouts *DescriptorLayouts
	cache   vk.PipelineCache

	supportsEDS3    bool
	eds3Caps        EDS3Caps
	supportsDivisor bool

	mu               sync.Mutex
	pipelines        map[PipelineKey]vk.Pipeline
	vertexInputCache map[uint64]vertexInputState
}

// NewPipelineManager creates a manager over the given cache.
func NewPipelineManager(device vk.Device, layouts *DescriptorLayouts, cache vk.PipelineCache,
	supportsEDS3 bool, eds3Caps EDS3Caps, supportsDivisor bool) *PipelineManager {
	return &PipelineManager{
		device:           device,
		layouts:          layouts,
		cache:            cache,
		supportsEDS3:     supportsEDS3,
		eds3Caps:         eds3Caps,
		supportsDivisor:  supportsDivisor,
		pipelines:        make(map[PipelineKey]vk.Pipeline),
		vertexInputCache: make(map[uint64]vertexInputState),
	}
}

// GetPipeline returns the cached pipeline for a key, creating it on
// first use. For shader types using fixed-function vertex input the
// key's LayoutHash must match the supplied layout; a mismatch is a
// hard contract error. Vertex-pulling types get their ShaderHash filled
// from the module handles here.
func (m *PipelineManager) GetPipeline(key PipelineKey, modules ShaderModules, layout *gfx.VertexLayout) (vk.Pipeline, error) {
	spec := ShaderLayout(key.Shader)
	if spec.VertexInput == VertexAttributes {
		if layout == nil {
			return vk.Pipeline{}, errors.New("nil vertex layout for vertex-attribute shader")
		}
		if expected := layout.Hash(); key.LayoutHash != expected {
			return vk.Pipeline{}, errors.Errorf("PipelineKey.LayoutHash %#x mismatches vertex layout hash %#x", key.LayoutHash, expected)
		}
	} else {
		key.ShaderHash = shaderModulesHash(modules)
	}

	mapKey := key.normalized()

	m.mu.Lock()
	defer m.mu.Unlock()
	if pipeline, ok := m.pipelines[mapKey]; ok {
		return pipeline, nil
	}

	pipeline, err := m.createPipeline(key, modules, layout)
	if err != nil {
		return vk.Pipeline{}, err
	}
	m.pipelines[mapKey] = pipeline
	return pipeline, nil
}

func (m *PipelineManager) vertexInput(layout *gfx.VertexLayout) (vertexInputState, error) {
	hash := layout.Hash()
	if state, ok := m.vertexInputCache[hash]; ok {
		return state, nil
	}
	state, err := convertVertexLayout(layout)
	if err != nil {
		return vertexInputState{}, err
	}
	m.vertexInputCache[hash] = state
	return state, nil
}

func (m *PipelineManager) createPipeline(key PipelineKey, modules ShaderModules, layout *gfx.VertexLayout) (vk.Pipeline, error) {
	if key.ColorAttachmentCount == 0 {
		return vk.Pipeline{}, errors.New("PipelineKey.ColorAttachmentCount must be at least 1")
	}
	if key.StencilTestEnable && !key.DepthFormat.HasStencil() {
		return vk.Pipeline{}, errors.New("stencil test enabled but depth format has no stencil component")
	}

	spec := ShaderLayout(key.Shader)

	info := vk.GraphicsPipelineCreateInfo{
		VertModule:  modules.Vert,
		FragModule:  modules.Frag,
		Samples:     key.SampleCount,
		DepthFormat: key.DepthFormat,
		Blend:       blendAttachmentForMode(key.BlendMode, key.ColorWriteMask),
		DynamicStates: BuildDynamicStateList(m.supportsEDS3, m.eds3Caps),
	}
	if key.DepthFormat.HasStencil() {
		info.StencilFormat = key.DepthFormat
	}

	info.ColorFormats = make([]vk.Format, key.ColorAttachmentCount)
	for i := range info.ColorFormats {
		info.ColorFormats[i] = key.ColorFormat
	}

	// Vertex pulling fetches from the heap SSBO; no fixed-function input.
	if spec.VertexInput == VertexAttributes {
		state, err := m.vertexInput(layout)
		if err != nil {
			return vk.Pipeline{}, err
		}
		if len(state.divisors) > 0 && !m.supportsDivisor {
			return vk.Pipeline{}, errors.New("vertex layout needs attribute divisor above 1 but the extension is unavailable")
		}
		hasLocationZero := false
		for _, attribute := range state.attributes {
			if attribute.Location == 0 {
				hasLocationZero = true
			}
		}
		if !hasLocationZero {
			return vk.Pipeline{}, errors.New("vertex-attribute pipeline created without a location 0 attribute")
		}
		info.VertexBindings = state.bindings
		info.VertexAttributes = state.attributes
		if m.supportsDivisor {
			info.VertexDivisors = state.divisors
		}
	}

	// Depth enables are dynamic; the static values only matter as the
	// baseline for drivers that validate them.
	if key.DepthFormat != vk.FormatUndefined {
		info.DepthStencil.DepthTestEnable = true
		info.DepthStencil.DepthWriteEnable = true
		info.DepthStencil.DepthCompareOp = vk.CompareOpLessOrEqual
	}
	info.DepthStencil.StencilTestEnable = key.StencilTestEnable
	info.DepthStencil.Front = vk.StencilOpState{
		FailOp:      key.FrontFailOp,
		PassOp:      key.FrontPassOp,
		DepthFailOp: key.FrontDepthFailOp,
		CompareOp:   key.StencilCompareOp,
		CompareMask: key.StencilCompareMask,
		WriteMask:   key.StencilWriteMask,
		Reference:   key.StencilReference,
	}
	info.DepthStencil.Back = vk.StencilOpState{
		FailOp:      key.BackFailOp,
		PassOp:      key.BackPassOp,
		DepthFailOp: key.BackDepthFailOp,
		CompareOp:   key.StencilCompareOp,
		CompareMask: key.StencilCompareMask,
		WriteMask:   key.StencilWriteMask,
		Reference:   key.StencilReference,
	}

	switch spec.PipelineLayout {
	case LayoutModel:
		info.Layout = m.layouts.ModelPipelineLayout()
	case LayoutDeferred:
		info.Layout = m.layouts.DeferredPipelineLayout()
	default:
		info.Layout = m.layouts.StandardPipelineLayout()
	}

	pipeline, err := m.device.CreateGraphicsPipeline(m.cache, info)
	if err != nil {
		return vk.Pipeline{}, errors.Wrap(err, "vk.CreateGraphicsPipeline()")
	}
	return pipeline, nil
}

// Destroy releases every cached pipeline.
func (m *PipelineManager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, pipeline := range m.pipelines {
		m.device.DestroyPipeline(pipeline)
		delete(m.pipelines, key)
	}
}
