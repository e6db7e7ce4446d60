package core

import (
	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// ScissorFromScreen derives the scissor rectangle from the engine's
// current clip state.
func ScissorFromScreen(screen *gfx.Screen) vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: int32(screen.OffsetX), Y: int32(screen.OffsetY)},
		Extent: vk.Extent2D{
			Width:  uint32(screen.ClipWidth),
			Height: uint32(screen.ClipHeight),
		},
	}
}

// ClampScissorToFramebuffer intersects a scissor with the framebuffer
// box. Vulkan rejects negative offsets and scissors reaching past the
// framebuffer, so the rectangle is treated as a half-open box and
// clipped against [0, extent).
func ClampScissorToFramebuffer(rect vk.Rect2D, extent vk.Extent2D) vk.Rect2D {
	x0 := rect.Offset.X
	y0 := rect.Offset.Y
	x1 := x0 + int32(rect.Extent.Width)
	y1 := y0 + int32(rect.Extent.Height)

	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > int32(extent.Width) {
		x1 = int32(extent.Width)
	}
	if y1 > int32(extent.Height) {
		y1 = int32(extent.Height)
	}
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}

	return vk.Rect2D{
		Offset: vk.Offset2D{X: x0, Y: y0},
		Extent: vk.Extent2D{Width: uint32(x1 - x0), Height: uint32(y1 - y0)},
	}
}
