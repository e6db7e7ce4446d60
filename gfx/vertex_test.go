package gfx

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestVertexLayoutHashStable(t *testing.T) {
	c := qt.New(t)

	build := func() *VertexLayout {
		l := NewVertexLayout()
		l.AddComponent(VertexComponent{Format: Position3, BufferNumber: 0, Offset: 0}, 32)
		l.AddComponent(VertexComponent{Format: TexCoord2, BufferNumber: 0, Offset: 12}, 32)
		return l
	}

	c.Assert(build().Hash(), qt.Equals, build().Hash())
}

func TestVertexLayoutHashDiscriminates(t *testing.T) {
	c := qt.New(t)

	base := NewVertexLayout()
	base.AddComponent(VertexComponent{Format: Position3, BufferNumber: 0, Offset: 0}, 32)

	otherOffset := NewVertexLayout()
	otherOffset.AddComponent(VertexComponent{Format: Position3, BufferNumber: 0, Offset: 4}, 32)

	otherStride := NewVertexLayout()
	otherStride.AddComponent(VertexComponent{Format: Position3, BufferNumber: 0, Offset: 0}, 16)

	otherDivisor := NewVertexLayout()
	otherDivisor.AddComponent(VertexComponent{Format: Position3, BufferNumber: 0, Offset: 0, Divisor: 1}, 32)

	c.Assert(base.Hash(), qt.Not(qt.Equals), otherOffset.Hash())
	c.Assert(base.Hash(), qt.Not(qt.Equals), otherStride.Hash())
	c.Assert(base.Hash(), qt.Not(qt.Equals), otherDivisor.Hash())
}

func TestVertexLayoutStride(t *testing.T) {
	c := qt.New(t)

	l := NewVertexLayout()
	l.AddComponent(VertexComponent{Format: Position2, BufferNumber: 0}, 16)
	l.AddComponent(VertexComponent{Format: Matrix4, BufferNumber: 1, Divisor: 1}, 64)

	c.Assert(l.Stride(0), qt.Equals, 16)
	c.Assert(l.Stride(1), qt.Equals, 64)
	c.Assert(l.Components(), qt.HasLen, 2)
}
