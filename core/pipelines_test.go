package core

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

func TestPipelineKeyVertexPullingIgnoresLayout(t *testing.T) {
	c := qt.New(t)

	a := NewPipelineKey(gfx.ShaderModel)
	b := a
	a.LayoutHash = 0
	b.LayoutHash = 0xDEADBEEF

	c.Assert(a.Equal(b), qt.IsTrue)
	c.Assert(a.Hash(), qt.Equals, b.Hash())
}

func TestPipelineKeyAttributeShadersUseLayout(t *testing.T) {
	c := qt.New(t)

	a := NewPipelineKey(gfx.ShaderInterface)
	b := a
	a.LayoutHash = 0
	b.LayoutHash = 0xDEADBEEF

	c.Assert(a.Equal(b), qt.IsFalse)
	c.Assert(a.Hash(), qt.Not(qt.Equals), b.Hash())
}

func TestNewPipelineKeyDefaults(t *testing.T) {
	c := qt.New(t)

	key := NewPipelineKey(gfx.ShaderPassthrough)
	c.Assert(key.SampleCount, qt.Equals, vk.Samples1)
	c.Assert(key.ColorAttachmentCount, qt.Equals, uint32(1))
	c.Assert(key.ColorWriteMask, qt.Equals, vk.ColorComponentsAll)
	c.Assert(key.StencilCompareOp, qt.Equals, vk.CompareOpAlways)
	c.Assert(key.StencilCompareMask, qt.Equals, uint32(0xFF))
	c.Assert(key.StencilWriteMask, qt.Equals, uint32(0xFF))
	c.Assert(key.StencilTestEnable, qt.IsFalse)
}

func TestShaderLayoutContracts(t *testing.T) {
	c := qt.New(t)

	c.Assert(ShaderLayout(gfx.ShaderModel), qt.Equals, ShaderLayoutSpec{LayoutModel, VertexPulling})
	c.Assert(ShaderLayout(gfx.ShaderDecal), qt.Equals, ShaderLayoutSpec{LayoutModel, VertexPulling})
	c.Assert(ShaderLayout(gfx.ShaderShieldImpact), qt.Equals, ShaderLayoutSpec{LayoutModel, VertexPulling})
	c.Assert(ShaderLayout(gfx.ShaderDeferredLighting), qt.Equals, ShaderLayoutSpec{LayoutDeferred, VertexAttributes})
	c.Assert(ShaderLayout(gfx.ShaderInterface), qt.Equals, ShaderLayoutSpec{LayoutStandard, VertexAttributes})

	// Unknown types fall back to the standard contract.
	c.Assert(ShaderLayout(gfx.ShaderType(999)), qt.Equals, ShaderLayoutSpec{LayoutStandard, VertexAttributes})
}

func TestConvertVertexLayoutMatrix4(t *testing.T) {
	c := qt.New(t)

	layout := gfx.NewVertexLayout()
	layout.AddComponent(gfx.VertexComponent{Format: gfx.Matrix4, BufferNumber: 1, Offset: 0, Divisor: 1}, 64)

	state, err := convertVertexLayout(layout)
	c.Assert(err, qt.IsNil)

	c.Assert(state.bindings, qt.DeepEquals, []vk.VertexInputBinding{
		{Binding: 1, Stride: 64, InstanceRate: true},
	})
	c.Assert(state.attributes, qt.DeepEquals, []vk.VertexInputAttribute{
		{Location: 8, Binding: 1, Format: vk.FormatR32G32B32A32Sfloat, Offset: 0},
		{Location: 9, Binding: 1, Format: vk.FormatR32G32B32A32Sfloat, Offset: 16},
		{Location: 10, Binding: 1, Format: vk.FormatR32G32B32A32Sfloat, Offset: 32},
		{Location: 11, Binding: 1, Format: vk.FormatR32G32B32A32Sfloat, Offset: 48},
	})
	// Divisor 1 is core instancing, no extension divisor needed.
	c.Assert(state.divisors, qt.HasLen, 0)
}

func TestConvertVertexLayoutDivisorAboveOne(t *testing.T) {
	c := qt.New(t)

	layout := gfx.NewVertexLayout()
	layout.AddComponent(gfx.VertexComponent{Format: gfx.Position3, BufferNumber: 0, Offset: 0}, 24)
	layout.AddComponent(gfx.VertexComponent{Format: gfx.Radius, BufferNumber: 2, Offset: 0, Divisor: 4}, 4)

	state, err := convertVertexLayout(layout)
	c.Assert(err, qt.IsNil)

	c.Assert(state.bindings, qt.DeepEquals, []vk.VertexInputBinding{
		{Binding: 0, Stride: 24},
		{Binding: 2, Stride: 4, InstanceRate: true},
	})
	c.Assert(state.divisors, qt.DeepEquals, []vk.VertexBindingDivisor{
		{Binding: 2, Divisor: 4},
	})
}

func TestConvertVertexLayoutSharedBuffer(t *testing.T) {
	c := qt.New(t)

	layout := gfx.NewVertexLayout()
	layout.AddComponent(gfx.VertexComponent{Format: gfx.Position2, BufferNumber: 0, Offset: 0}, 16)
	layout.AddComponent(gfx.VertexComponent{Format: gfx.TexCoord2, BufferNumber: 0, Offset: 8}, 16)

	state, err := convertVertexLayout(layout)
	c.Assert(err, qt.IsNil)

	c.Assert(state.bindings, qt.HasLen, 1)
	c.Assert(state.bindings[0], qt.Equals, vk.VertexInputBinding{Binding: 0, Stride: 16})
	c.Assert(state.attributes, qt.DeepEquals, []vk.VertexInputAttribute{
		{Location: 0, Binding: 0, Format: vk.FormatR32G32Sfloat, Offset: 0},
		{Location: 2, Binding: 0, Format: vk.FormatR32G32Sfloat, Offset: 8},
	})
}

func TestConvertVertexLayoutUnknownFormat(t *testing.T) {
	c := qt.New(t)

	layout := gfx.NewVertexLayout()
	layout.AddComponent(gfx.VertexComponent{Format: gfx.VertexFormat(999)}, 4)

	_, err := convertVertexLayout(layout)
	c.Assert(err, qt.IsNotNil)
}
