// Package gfx holds the renderer-facing types shared between the upstream
// engine and the Vulkan backend: buffer and texture handles, materials,
// vertex layouts, clip state and movie types. It contains no Vulkan types.
package gfx

// BufferHandle is an opaque handle to a device buffer managed by the
// renderer. The zero value is invalid.
type BufferHandle int32

// InvalidBuffer is the zero handle.
const InvalidBuffer BufferHandle = 0

// IsValid reports whether the handle refers to a created buffer.
func (h BufferHandle) IsValid() bool { return h > 0 }

// BufferType selects what the buffer is bound as.
type BufferType int

// Buffer kinds.
const (
	VertexBuffer BufferType = iota
	IndexBuffer
	UniformBuffer
	StorageBuffer
)

// BufferUsage hints how often the contents change.
type BufferUsage int

// Usage hints. Static buffers live in device-local memory and are filled
// through a staging copy, Dynamic and Streaming buffers are host-visible.
const (
	StaticUsage BufferUsage = iota
	DynamicUsage
	StreamingUsage
)

// UniformBlock identifies the well-known uniform binding points the engine
// feeds through BindUniformBuffer.
type UniformBlock int

// Uniform block identifiers.
const (
	ModelDataBlock UniformBlock = iota
	NanoVGDataBlock
	MatricesBlock
)

// TextureID wraps the base frame of a bitmap. Animated bitmaps share one
// TextureID for all their frames; the distinction from a raw bitmap handle
// is deliberate and keeps the two from being mixed up at call sites.
type TextureID struct {
	baseFrame int32
}

// TextureFromBaseFrame builds a TextureID from a bitmap base frame.
// Negative base frames other than the renderer's own synthetic handles do
// not name textures; ok is false for them.
func TextureFromBaseFrame(baseFrame int32) (TextureID, bool) {
	if baseFrame < 0 {
		return TextureID{}, false
	}
	return TextureID{baseFrame: baseFrame}, true
}

// SyntheticTexture builds a TextureID outside the bitmap handle space.
// The renderer uses these for its built-in fallback and default textures.
func SyntheticTexture(id int32) TextureID {
	return TextureID{baseFrame: id}
}

// BaseFrame returns the wrapped bitmap base frame.
func (t TextureID) BaseFrame() int32 { return t.baseFrame }

// PrimitiveType is the draw primitive topology.
type PrimitiveType int

// Primitive topologies the draw API accepts.
const (
	Triangles PrimitiveType = iota
	TriangleStrip
	TriangleFan
	Lines
	LineStrip
	Points
)

// AlphaBlend enumerates the fixed blend equations the engine uses.
type AlphaBlend int

// Blend modes.
const (
	BlendNone AlphaBlend = iota
	BlendAdditive
	BlendAlphaAdditive
	BlendAlpha
	BlendAlphaSrcColor
	BlendPremultiplied
)

// Capability is queried by the engine through IsCapable.
type Capability int

// Queryable capabilities.
const (
	CapInstancedRendering Capability = iota
	CapPersistentMapping
)

// Property is queried through GetProperty.
type Property int

// Queryable integer properties.
const (
	PropUniformBufferOffsetAlignment Property = iota
)
