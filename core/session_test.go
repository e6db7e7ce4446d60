package core

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// A session over zero-value targets never opens a pass, so the target
// state machine runs without a device or command buffer.
func newIdleSession() *Session {
	s := NewSession(&RenderTargets{
		depthFormat: vk.FormatD32Sfloat,
		bloomExtent: vk.Extent2D{Width: 512, Height: 384},
	}, &DescriptorLayouts{}, false, EDS3Caps{})
	s.SetSwapchain(nil, nil, vk.FormatB8G8R8A8Unorm, vk.Extent2D{Width: 1024, Height: 768})
	return s
}

func TestRequestTargetSwitches(t *testing.T) {
	c := qt.New(t)
	s := newIdleSession()
	var cmd vk.CommandBuffer

	c.Assert(s.Target(), qt.Equals, TargetSwapchainColorDepth)

	s.RequestTarget(cmd, TargetPostLdr)
	c.Assert(s.Target(), qt.Equals, TargetPostLdr)

	// Re-requesting the selected target is a no-op.
	s.RequestTarget(cmd, TargetPostLdr)
	c.Assert(s.Target(), qt.Equals, TargetPostLdr)

	s.RequestTarget(cmd, TargetSwapchainColorOnly)
	c.Assert(s.Target(), qt.Equals, TargetSwapchainColorOnly)
}

func TestRequestBloomMipTarget(t *testing.T) {
	c := qt.New(t)
	s := newIdleSession()
	var cmd vk.CommandBuffer

	s.RequestBloomMipTarget(cmd, 1, 2)
	c.Assert(s.Target(), qt.Equals, TargetBloomMip)
	c.Assert(s.PassExtent(), qt.Equals, vk.Extent2D{Width: 128, Height: 96})

	s.RequestBloomMipTarget(cmd, 1, 2)
	c.Assert(s.Target(), qt.Equals, TargetBloomMip)

	s.RequestBloomMipTarget(cmd, 0, 0)
	c.Assert(s.PassExtent(), qt.Equals, vk.Extent2D{Width: 512, Height: 384})
}

func TestRequestBitmapTarget(t *testing.T) {
	c := qt.New(t)
	s := newIdleSession()
	var cmd vk.CommandBuffer

	_, bound := s.BitmapTarget()
	c.Assert(bound, qt.IsFalse)

	id, ok := gfx.TextureFromBaseFrame(7)
	c.Assert(ok, qt.IsTrue)
	binding := BitmapTargetBinding{ID: id, Face: 3, Extent: vk.Extent2D{Width: 256, Height: 256}}
	s.RequestBitmapTarget(cmd, binding)

	c.Assert(s.Target(), qt.Equals, TargetBitmap)
	c.Assert(s.PassExtent(), qt.Equals, binding.Extent)
	got, bound := s.BitmapTarget()
	c.Assert(bound, qt.IsTrue)
	c.Assert(got.ID, qt.Equals, id)
	c.Assert(got.Face, qt.Equals, uint32(3))

	// Leaving the bitmap target unbinds it.
	s.RequestTarget(cmd, TargetSwapchainColorDepth)
	_, bound = s.BitmapTarget()
	c.Assert(bound, qt.IsFalse)
}

func TestClearRequestsSurviveTargetSwitch(t *testing.T) {
	c := qt.New(t)
	s := newIdleSession()
	var cmd vk.CommandBuffer

	s.RequestClear()
	s.RequestTarget(cmd, TargetSceneHdrColorDepth)
	c.Assert(s.clear, qt.Equals, ClearOps{Color: true, Depth: true, Stencil: true})
}

func TestRequestDepthClearKeepsColor(t *testing.T) {
	c := qt.New(t)
	s := newIdleSession()

	s.RequestDepthClear()
	c.Assert(s.clear, qt.Equals, ClearOps{Depth: true, Stencil: true})
}

func TestBeginDeferredPassClearOps(t *testing.T) {
	c := qt.New(t)
	s := newIdleSession()
	var cmd vk.CommandBuffer

	s.BeginDeferredPass(cmd, true, false)
	c.Assert(s.Target(), qt.Equals, TargetGBuffer)
	c.Assert(s.clear, qt.Equals, ClearOps{Color: true, Depth: true, Stencil: true})
	c.Assert(s.preserveEmissive, qt.IsFalse)

	s.BeginDeferredPass(cmd, false, true)
	c.Assert(s.clear, qt.Equals, ClearOps{Depth: true, Stencil: true})
	c.Assert(s.preserveEmissive, qt.IsTrue)
}

func TestCurrentTargetInfoContracts(t *testing.T) {
	c := qt.New(t)
	s := newIdleSession()
	var cmd vk.CommandBuffer

	c.Assert(s.CurrentTargetInfo(), qt.Equals, RenderTargetInfo{
		ColorFormat:          vk.FormatB8G8R8A8Unorm,
		ColorAttachmentCount: 1,
		DepthFormat:          vk.FormatD32Sfloat,
	})

	s.RequestTarget(cmd, TargetGBuffer)
	info := s.CurrentTargetInfo()
	c.Assert(info.ColorFormat, qt.Equals, GBufferFormat)
	c.Assert(info.ColorAttachmentCount, qt.Equals, uint32(GBufferCount))
	c.Assert(info.DepthFormat, qt.Equals, vk.FormatD32Sfloat)

	s.RequestTarget(cmd, TargetGBufferEmissiveOnly)
	info = s.CurrentTargetInfo()
	c.Assert(info.ColorFormat, qt.Equals, GBufferFormat)
	c.Assert(info.ColorAttachmentCount, qt.Equals, uint32(1))
	c.Assert(info.DepthFormat, qt.Equals, vk.FormatUndefined)

	s.RequestTarget(cmd, TargetSceneHdrColorDepth)
	info = s.CurrentTargetInfo()
	c.Assert(info.ColorFormat, qt.Equals, SceneHdrFormat)
	c.Assert(info.DepthFormat, qt.Equals, vk.FormatD32Sfloat)

	s.RequestTarget(cmd, TargetSceneHdrColorOnly)
	c.Assert(s.CurrentTargetInfo().DepthFormat, qt.Equals, vk.FormatUndefined)

	for _, tag := range []RenderTargetTag{
		TargetPostLdr, TargetPostLuminance, TargetSmaaEdges, TargetSmaaBlend, TargetSmaaOutput,
	} {
		s.RequestTarget(cmd, tag)
		info = s.CurrentTargetInfo()
		c.Assert(info.ColorFormat, qt.Equals, PostLdrFormat)
		c.Assert(info.ColorAttachmentCount, qt.Equals, uint32(1))
		c.Assert(info.DepthFormat, qt.Equals, vk.FormatUndefined)
	}

	s.RequestTarget(cmd, TargetSwapchainColorOnly)
	info = s.CurrentTargetInfo()
	c.Assert(info.ColorFormat, qt.Equals, vk.FormatB8G8R8A8Unorm)
	c.Assert(info.DepthFormat, qt.Equals, vk.FormatUndefined)

	id, _ := gfx.TextureFromBaseFrame(3)
	s.RequestBitmapTarget(cmd, BitmapTargetBinding{ID: id})
	c.Assert(s.CurrentTargetInfo().ColorFormat, qt.Equals, BitmapTargetFormat)
}

func TestPassExtentDefaultsToSwapchain(t *testing.T) {
	c := qt.New(t)
	s := newIdleSession()
	var cmd vk.CommandBuffer

	c.Assert(s.PassExtent(), qt.Equals, vk.Extent2D{Width: 1024, Height: 768})

	s.RequestTarget(cmd, TargetPostLdr)
	c.Assert(s.PassExtent(), qt.Equals, vk.Extent2D{Width: 1024, Height: 768})
}
