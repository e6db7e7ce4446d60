package gfx

// ShaderType selects the shader pair a draw uses. The renderer maps each
// type to a pipeline layout and a vertex input mode through its layout
// contract table.
type ShaderType int

// Shader types.
const (
	ShaderNone ShaderType = iota
	ShaderPassthrough
	ShaderInterface
	ShaderModel
	ShaderDeferredLighting
	ShaderNanoVG
	ShaderRocketUI
	ShaderParticle
	ShaderDistortion
	ShaderDecal
	ShaderShieldImpact
	ShaderMovie
	ShaderCopy
	ShaderTonemapping
	ShaderBloomBrightPass
	ShaderBloomBlur
	ShaderBloomComposite
	ShaderSmaaEdge
	ShaderSmaaBlendingWeight
	ShaderSmaaNeighborhood
	ShaderFxaaPrepass
	ShaderFxaa
	ShaderPostEffects
	ShaderLightshafts
	shaderTypeCount
)

// NumShaderTypes is the number of defined shader types.
const NumShaderTypes = int(shaderTypeCount)

// Model shader variant flags. They select among precompiled SPIR-V variants.
const (
	VariantDeferred uint32 = 1 << iota
	VariantLargeIndex
	VariantAnimated
	// Blur direction, exactly one set for ShaderBloomBlur.
	VariantBlurHorizontal
	VariantBlurVertical
)

// StencilOp mirrors the fixed-function stencil operations.
type StencilOp int

// Stencil operations.
const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrClamp
	StencilDecrClamp
	StencilInvert
)

// CompareOp is used for depth and stencil comparisons.
type CompareOp int

// Comparison operations.
const (
	CompareAlways CompareOp = iota
	CompareNever
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
	CompareEqual
	CompareNotEqual
)

// StencilFaceOps is the op triple for one stencil face.
type StencilFaceOps struct {
	Fail      StencilOp
	DepthFail StencilOp
	Pass      StencilOp
}

// StencilState is the full per-material stencil configuration.
type StencilState struct {
	Enable      bool
	Compare     CompareOp
	CompareMask uint32
	WriteMask   uint32
	Reference   uint32
	Front       StencilFaceOps
	Back        StencilFaceOps
}

// DefaultStencil returns stencil state with testing off and full masks.
func DefaultStencil() StencilState {
	return StencilState{
		Compare:     CompareAlways,
		CompareMask: 0xFF,
		WriteMask:   0xFF,
	}
}

// CullMode selects face culling.
type CullMode int

// Cull modes.
const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// ColorMask selects which channels a draw writes.
type ColorMask struct {
	Red, Green, Blue, Alpha bool
}

// FullColorMask writes all four channels.
func FullColorMask() ColorMask { return ColorMask{true, true, true, true} }

// Material carries the resolved draw state the engine hands the renderer.
// Texture handles are already resolved to base frames upstream.
type Material struct {
	Shader       ShaderType
	VariantFlags uint32
	Blend        AlphaBlend
	DepthTest    bool
	DepthWrite   bool
	DepthCompare CompareOp
	Cull         CullMode
	WriteMask    ColorMask
	Stencil      StencilState
	BaseMap      TextureID
	HasBaseMap   bool
	// Sampler selection for the base map.
	LinearFilter bool
	ClampAddress bool
}

// NewMaterial returns a material with the renderer's baseline state.
func NewMaterial(shader ShaderType) Material {
	return Material{
		Shader:       shader,
		DepthTest:    true,
		DepthWrite:   true,
		DepthCompare: CompareLessEqual,
		Cull:         CullBack,
		WriteMask:    FullColorMask(),
		Stencil:      DefaultStencil(),
		LinearFilter: true,
	}
}

// ModelMaps is the bindless texture set a model batch samples.
type ModelMaps struct {
	Base, Glow, Normal, Spec TextureID
	HasBase, HasGlow         bool
	HasNormal, HasSpec       bool
}

// ModelBatch describes one indexed batch inside the model vertex heap.
type ModelBatch struct {
	VertexOffset      uint32
	Stride            uint32
	PosOffset         uint32
	NormalOffset      uint32
	TexCoordOffset    uint32
	TangentOffset     uint32
	BoneIndicesOffset uint32
	BoneWeightsOffset uint32
	IndexOffset       uint32
	IndexCount        uint32
	LargeIndex        bool
	MatrixIndex       uint32
	Flags             uint32
	Maps              ModelMaps
}

// OffsetAbsent is the sentinel for model batch offsets that do not apply.
const OffsetAbsent uint32 = 0xFFFFFFFF
