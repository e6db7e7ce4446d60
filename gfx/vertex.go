package gfx

import "hash/fnv"

// VertexFormat identifies one vertex component kind. The attribute location
// each format maps to follows the OpenGL backend conventions so shaders stay
// shared between backends.
type VertexFormat int

// Vertex component formats.
const (
	Position4 VertexFormat = iota
	Position3
	Position2
	ScreenPos
	Color3
	Color4
	Color4F
	TexCoord2
	TexCoord4
	Normal
	Tangent
	ModelID
	Radius
	UVec
	Matrix4
)

// VertexComponent is one attribute inside a vertex layout.
type VertexComponent struct {
	Format       VertexFormat
	BufferNumber int
	Offset       int
	// Divisor 0 means per-vertex rate. Any non-zero divisor switches the
	// whole binding to instance rate; values above one need the
	// vertex-attribute-divisor device extension.
	Divisor int
}

// VertexLayout describes the vertex streams of a draw. Layouts are value
// types; Hash() keys pipeline and vertex-input caches.
type VertexLayout struct {
	components []VertexComponent
	strides    map[int]int
}

// NewVertexLayout returns an empty layout.
func NewVertexLayout() *VertexLayout {
	return &VertexLayout{strides: make(map[int]int)}
}

// AddComponent appends a component and records the stride of its buffer.
func (l *VertexLayout) AddComponent(c VertexComponent, stride int) {
	l.components = append(l.components, c)
	l.strides[c.BufferNumber] = stride
}

// Components returns the component list in insertion order.
func (l *VertexLayout) Components() []VertexComponent { return l.components }

// Stride returns the byte stride of one buffer.
func (l *VertexLayout) Stride(bufferNumber int) int { return l.strides[bufferNumber] }

// Hash returns a stable hash over all components and strides.
func (l *VertexLayout) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v int) {
		u := uint64(int64(v))
		for i := 0; i < 8; i++ {
			buf[i] = byte(u >> (8 * i))
		}
		h.Write(buf[:])
	}
	for _, c := range l.components {
		write(int(c.Format))
		write(c.BufferNumber)
		write(c.Offset)
		write(c.Divisor)
		write(l.strides[c.BufferNumber])
	}
	return h.Sum64()
}
