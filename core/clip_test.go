package core

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

func TestScissorFromScreen(t *testing.T) {
	c := qt.New(t)

	screen := gfx.NewScreen(1024, 768)
	screen.ApplyClip(100, 50, 200, 150, gfx.ResizeNone)

	rect := ScissorFromScreen(screen)
	c.Assert(rect, qt.Equals, vk.Rect2D{
		Offset: vk.Offset2D{X: 100, Y: 50},
		Extent: vk.Extent2D{Width: 200, Height: 150},
	})
}

func TestClampScissorToFramebuffer(t *testing.T) {
	c := qt.New(t)
	extent := vk.Extent2D{Width: 8, Height: 8}

	tests := []struct {
		name string
		in   vk.Rect2D
		want vk.Rect2D
	}{
		{
			name: "negative origin",
			in:   vk.Rect2D{Offset: vk.Offset2D{X: -3, Y: -3}, Extent: vk.Extent2D{Width: 10, Height: 10}},
			want: vk.Rect2D{Offset: vk.Offset2D{X: 0, Y: 0}, Extent: vk.Extent2D{Width: 7, Height: 7}},
		},
		{
			name: "overhanging",
			in:   vk.Rect2D{Offset: vk.Offset2D{X: 6, Y: 6}, Extent: vk.Extent2D{Width: 10, Height: 10}},
			want: vk.Rect2D{Offset: vk.Offset2D{X: 6, Y: 6}, Extent: vk.Extent2D{Width: 2, Height: 2}},
		},
		{
			name: "fully inside",
			in:   vk.Rect2D{Offset: vk.Offset2D{X: 1, Y: 2}, Extent: vk.Extent2D{Width: 3, Height: 4}},
			want: vk.Rect2D{Offset: vk.Offset2D{X: 1, Y: 2}, Extent: vk.Extent2D{Width: 3, Height: 4}},
		},
		{
			name: "fully outside",
			in:   vk.Rect2D{Offset: vk.Offset2D{X: 20, Y: 20}, Extent: vk.Extent2D{Width: 4, Height: 4}},
			want: vk.Rect2D{Offset: vk.Offset2D{X: 8, Y: 8}, Extent: vk.Extent2D{}},
		},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			c.Assert(ClampScissorToFramebuffer(tt.in, extent), qt.Equals, tt.want)
		})
	}
}
