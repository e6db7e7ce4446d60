package core

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

func TestTopologyFor(t *testing.T) {
	c := qt.New(t)

	c.Assert(topologyFor(gfx.Triangles), qt.Equals, vk.TopologyTriangleList)
	c.Assert(topologyFor(gfx.TriangleStrip), qt.Equals, vk.TopologyTriangleStrip)
	c.Assert(topologyFor(gfx.TriangleFan), qt.Equals, vk.TopologyTriangleFan)
	c.Assert(topologyFor(gfx.Lines), qt.Equals, vk.TopologyLineList)
	c.Assert(topologyFor(gfx.LineStrip), qt.Equals, vk.TopologyLineStrip)
	c.Assert(topologyFor(gfx.Points), qt.Equals, vk.TopologyPointList)
}

func TestCompareOpFor(t *testing.T) {
	c := qt.New(t)

	c.Assert(compareOpFor(gfx.CompareAlways), qt.Equals, vk.CompareOpAlways)
	c.Assert(compareOpFor(gfx.CompareNever), qt.Equals, vk.CompareOpNever)
	c.Assert(compareOpFor(gfx.CompareLessEqual), qt.Equals, vk.CompareOpLessOrEqual)
	c.Assert(compareOpFor(gfx.CompareNotEqual), qt.Equals, vk.CompareOpNotEqual)
}

func TestColorMaskFor(t *testing.T) {
	c := qt.New(t)

	c.Assert(colorMaskFor(gfx.FullColorMask()), qt.Equals, vk.ColorComponentsAll)
	c.Assert(colorMaskFor(gfx.ColorMask{}), qt.Equals, vk.ColorComponentFlags(0))
	c.Assert(colorMaskFor(gfx.ColorMask{Red: true, Alpha: true}), qt.Equals, vk.ColorComponentR|vk.ColorComponentA)
}

func TestPipelineKeyForMaterialDeferredVariant(t *testing.T) {
	c := qt.New(t)

	material := gfx.NewMaterial(gfx.ShaderModel)

	gbuffer := RenderTargetInfo{
		ColorFormat:          vk.FormatB8G8R8A8Unorm,
		ColorAttachmentCount: GBufferCount,
		DepthFormat:          vk.FormatD24UnormS8Uint,
	}
	forward := RenderTargetInfo{
		ColorFormat:          vk.FormatB8G8R8A8Unorm,
		ColorAttachmentCount: 1,
		DepthFormat:          vk.FormatD24UnormS8Uint,
	}

	key := pipelineKeyForMaterial(&material, gbuffer, 0)
	c.Assert(key.VariantFlags&gfx.VariantDeferred, qt.Equals, gfx.VariantDeferred)

	// The flag is stripped again outside the G-buffer pass even when the
	// engine set it.
	material.VariantFlags = gfx.VariantDeferred
	key = pipelineKeyForMaterial(&material, forward, 0)
	c.Assert(key.VariantFlags&gfx.VariantDeferred, qt.Equals, uint32(0))
}

func TestPipelineKeyForMaterialAttributeShaderKeepsVariants(t *testing.T) {
	c := qt.New(t)

	material := gfx.NewMaterial(gfx.ShaderParticle)
	material.VariantFlags = gfx.VariantDeferred

	rt := RenderTargetInfo{
		ColorFormat:          vk.FormatB8G8R8A8Unorm,
		ColorAttachmentCount: GBufferCount,
		DepthFormat:          vk.FormatD24UnormS8Uint,
	}

	// Attribute shaders carry their flags through untouched.
	key := pipelineKeyForMaterial(&material, rt, 42)
	c.Assert(key.VariantFlags, qt.Equals, gfx.VariantDeferred)
	c.Assert(key.LayoutHash, qt.Equals, uint64(42))
}

func TestPipelineKeyForMaterialStencilRequiresFormat(t *testing.T) {
	c := qt.New(t)

	material := gfx.NewMaterial(gfx.ShaderInterface)
	material.Stencil.Enable = true
	material.Stencil.Compare = gfx.CompareEqual
	material.Stencil.Front.Pass = gfx.StencilReplace

	withStencil := RenderTargetInfo{
		ColorFormat:          vk.FormatB8G8R8A8Unorm,
		ColorAttachmentCount: 1,
		DepthFormat:          vk.FormatD24UnormS8Uint,
	}
	depthOnly := withStencil
	depthOnly.DepthFormat = vk.FormatD32Sfloat
	colorOnly := withStencil
	colorOnly.DepthFormat = vk.FormatUndefined

	key := pipelineKeyForMaterial(&material, withStencil, 0)
	c.Assert(key.StencilTestEnable, qt.IsTrue)
	c.Assert(key.StencilCompareOp, qt.Equals, vk.CompareOpEqual)
	c.Assert(key.FrontPassOp, qt.Equals, vk.StencilOpReplace)

	key = pipelineKeyForMaterial(&material, depthOnly, 0)
	c.Assert(key.StencilTestEnable, qt.IsFalse)

	key = pipelineKeyForMaterial(&material, colorOnly, 0)
	c.Assert(key.StencilTestEnable, qt.IsFalse)
}
