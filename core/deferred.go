package core

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// Light type codes shared with the deferred lighting shader.
const (
	DeferredLightDirectional int32 = 0
	DeferredLightPoint       int32 = 1
	DeferredLightTube        int32 = 2
	DeferredLightCone        int32 = 3
	DeferredLightAmbient     int32 = 4
)

// DeferredMatrixUBO mirrors the vertex shader's set 0 binding 0 block.
type DeferredMatrixUBO struct {
	ModelView mgl32.Mat4
	Proj      mgl32.Mat4
}

// DeferredLightUBO mirrors set 0 binding 1 under std140 rules: each
// vec3 occupies a full 16-byte row with the following scalar packed
// into its padding.
type DeferredLightUBO struct {
	DiffuseColor   [3]float32
	ConeAngle      float32
	LightDir       [3]float32
	ConeInnerAngle float32
	ConeDir        [3]float32
	DualCone       uint32
	Scale          [3]float32
	LightRadius    float32
	LightType      int32
	EnableShadows  uint32
	SourceRadius   float32
	_              float32
}

const (
	deferredMatrixUBOSize = uint64(unsafe.Sizeof(DeferredMatrixUBO{}))
	deferredLightUBOSize  = uint64(unsafe.Sizeof(DeferredLightUBO{}))
)

// DeferredLight is one light submission of the lighting phase. Variants
// carry their uniform payloads fully built; the renderer only uploads
// and records them. The ambient fullscreen light must come first in a
// submission list since it initializes the color target with blending
// off.
type DeferredLight interface {
	record(ctx *deferredDrawContext) error
}

// FullscreenLight covers the whole screen, used for the ambient term
// and directional lights.
type FullscreenLight struct {
	Matrices DeferredMatrixUBO
	Light    DeferredLightUBO
	Ambient  bool
}

// SphereLight is a point or cone light bounded by a sphere volume.
type SphereLight struct {
	Matrices DeferredMatrixUBO
	Light    DeferredLightUBO
}

// CylinderLight is a tube light bounded by a capped cylinder volume.
type CylinderLight struct {
	Matrices DeferredMatrixUBO
	Light    DeferredLightUBO
}

// deferredDrawContext carries the state shared by every light draw of
// one lighting pass.
type deferredDrawContext struct {
	cmd          vk.CommandBuffer
	layout       vk.PipelineLayout
	set          vk.DescriptorSet
	pipeline     vk.Pipeline
	ambient      vk.Pipeline
	dynamicBlend bool
	uniforms     *RingBuffer
	buffers      *BufferManager
	volumes      *LightVolumes
}

// bindLight uploads the two uniform blocks into the frame's uniform
// ring and binds the deferred set with their dynamic offsets.
func (ctx *deferredDrawContext) bindLight(matrices *DeferredMatrixUBO, light *DeferredLightUBO) error {
	m, err := ctx.uniforms.Write(unsafe.Slice((*byte)(unsafe.Pointer(matrices)), deferredMatrixUBOSize))
	if err != nil {
		return errors.Wrap(err, "uniform ring: deferred matrices")
	}
	l, err := ctx.uniforms.Write(unsafe.Slice((*byte)(unsafe.Pointer(light)), deferredLightUBOSize))
	if err != nil {
		return errors.Wrap(err, "uniform ring: deferred light")
	}
	ctx.cmd.CmdBindDescriptorSets(ctx.layout, 0, []vk.DescriptorSet{ctx.set},
		[]uint32{uint32(m.Offset), uint32(l.Offset)})
	return nil
}

func (f FullscreenLight) record(ctx *deferredDrawContext) error {
	// Ambient renders with blending off so it overwrites the undefined
	// color target; every later light adds onto it.
	pipeline := ctx.pipeline
	if f.Ambient {
		pipeline = ctx.ambient
	}
	ctx.cmd.CmdBindPipeline(pipeline)
	if ctx.dynamicBlend {
		ctx.cmd.CmdSetColorBlendEnable(0, []bool{!f.Ambient})
	}
	if err := ctx.bindLight(&f.Matrices, &f.Light); err != nil {
		return err
	}

	vb, err := ctx.buffers.Buffer(ctx.volumes.fullscreen.vbo)
	if err != nil {
		return err
	}
	ctx.cmd.CmdBindVertexBuffer(0, vb, 0)
	ctx.cmd.CmdDraw(3, 1, 0, 0)
	return nil
}

func (s SphereLight) record(ctx *deferredDrawContext) error {
	return ctx.recordVolume(&s.Matrices, &s.Light, ctx.volumes.sphere)
}

func (c CylinderLight) record(ctx *deferredDrawContext) error {
	return ctx.recordVolume(&c.Matrices, &c.Light, ctx.volumes.cylinder)
}

func (ctx *deferredDrawContext) recordVolume(matrices *DeferredMatrixUBO, light *DeferredLightUBO, mesh lightMesh) error {
	ctx.cmd.CmdBindPipeline(ctx.pipeline)
	if ctx.dynamicBlend {
		ctx.cmd.CmdSetColorBlendEnable(0, []bool{true})
	}
	if err := ctx.bindLight(matrices, light); err != nil {
		return err
	}

	vb, err := ctx.buffers.Buffer(mesh.vbo)
	if err != nil {
		return err
	}
	ib, err := ctx.buffers.Buffer(mesh.ibo)
	if err != nil {
		return err
	}
	ctx.cmd.CmdBindVertexBuffer(0, vb, 0)
	ctx.cmd.CmdBindIndexBuffer(ib, 0, vk.IndexTypeUint32)
	ctx.cmd.CmdDrawIndexed(mesh.indexCount, 1, 0, 0, 0)
	return nil
}

type lightMesh struct {
	vbo        gfx.BufferHandle
	ibo        gfx.BufferHandle
	indexCount uint32
}

// LightVolumes owns the static bounding meshes the lighting pass draws:
// a fullscreen triangle, an octahedral sphere approximation and a
// capped cylinder along -Z. Position-only vertices; the light's model
// matrix scales and places them.
type LightVolumes struct {
	fullscreen lightMesh
	sphere     lightMesh
	cylinder   lightMesh
}

// lightVolumeLayout is the position-only vertex layout shared by every
// light volume mesh.
func lightVolumeLayout() *gfx.VertexLayout {
	layout := gfx.NewVertexLayout()
	layout.AddComponent(gfx.VertexComponent{Format: gfx.Position3}, 12)
	return layout
}

// NewLightVolumes uploads the meshes through the buffer manager.
func NewLightVolumes(buffers *BufferManager) (*LightVolumes, error) {
	v := &LightVolumes{}

	// Oversized triangle covering clip space without a second one.
	fullscreen := []float32{
		-1, -1, 0,
		3, -1, 0,
		-1, 3, 0,
	}
	var err error
	v.fullscreen, err = createLightMesh(buffers, fullscreen, nil)
	if err != nil {
		return nil, err
	}

	sphereVerts := []float32{
		0, 1, 0,
		0, -1, 0,
		1, 0, 0,
		-1, 0, 0,
		0, 0, 1,
		0, 0, -1,
	}
	sphereIndices := []uint32{
		0, 4, 2, 0, 2, 5, 0, 5, 3, 0, 3, 4,
		1, 2, 4, 1, 5, 2, 1, 3, 5, 1, 4, 3,
	}
	v.sphere, err = createLightMesh(buffers, sphereVerts, sphereIndices)
	if err != nil {
		return nil, err
	}

	cylVerts, cylIndices := buildCylinderMesh(12)
	v.cylinder, err = createLightMesh(buffers, cylVerts, cylIndices)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// buildCylinderMesh generates a unit-radius capped cylinder from z=0 to
// z=-1 with the given segment count.
func buildCylinderMesh(segments int) ([]float32, []uint32) {
	verts := make([]float32, 0, (2*segments+2)*3)
	for ring := 0; ring < 2; ring++ {
		z := float32(0)
		if ring == 1 {
			z = -1
		}
		for i := 0; i < segments; i++ {
			angle := 2 * math.Pi * float64(i) / float64(segments)
			verts = append(verts, float32(math.Cos(angle)), float32(math.Sin(angle)), z)
		}
	}
	capTop := uint32(len(verts) / 3)
	verts = append(verts, 0, 0, 0)
	capBottom := uint32(len(verts) / 3)
	verts = append(verts, 0, 0, -1)

	indices := make([]uint32, 0, segments*12)
	for i := 0; i < segments; i++ {
		i0 := uint32(i)
		i1 := uint32((i + 1) % segments)
		i2 := i0 + uint32(segments)
		i3 := i1 + uint32(segments)
		indices = append(indices, i0, i2, i1, i1, i2, i3)
	}
	for i := 0; i < segments; i++ {
		indices = append(indices, capTop, uint32((i+1)%segments), uint32(i))
	}
	for i := 0; i < segments; i++ {
		indices = append(indices,
			capBottom, uint32(i+segments), uint32((i+1)%segments+segments))
	}
	return verts, indices
}

func createLightMesh(buffers *BufferManager, verts []float32, indices []uint32) (lightMesh, error) {
	var mesh lightMesh

	vbo, err := buffers.CreateBuffer(gfx.VertexBuffer, gfx.StaticUsage)
	if err != nil {
		return mesh, err
	}
	if err := buffers.UpdateData(vbo, f32Bytes(verts)); err != nil {
		return mesh, err
	}
	mesh.vbo = vbo

	if indices == nil {
		mesh.indexCount = uint32(len(verts) / 3)
		return mesh, nil
	}

	ibo, err := buffers.CreateBuffer(gfx.IndexBuffer, gfx.StaticUsage)
	if err != nil {
		return mesh, err
	}
	if err := buffers.UpdateData(ibo, u32Bytes(indices)); err != nil {
		return mesh, err
	}
	mesh.ibo = ibo
	mesh.indexCount = uint32(len(indices))
	return mesh, nil
}

func f32Bytes(v []float32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func u32Bytes(v []uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

type deferredPhase int

const (
	deferredIdle deferredPhase = iota
	deferredInGeometry
	deferredAwaitFinish
)

// deferredTracker enforces the begin/end/finish ordering of the
// deferred lighting API. Misuse logs and recovers instead of
// corrupting the frame.
type deferredTracker struct {
	phase deferredPhase
}

func (t *deferredTracker) begin() {
	if t.phase != deferredIdle {
		log.Error("deferred lighting begin while a pass is in progress, resetting")
	}
	t.phase = deferredInGeometry
}

// end reports whether the geometry phase may close.
func (t *deferredTracker) end() bool {
	if t.phase != deferredInGeometry {
		log.Error("deferred lighting end without begin, ignoring")
		return false
	}
	t.phase = deferredAwaitFinish
	return true
}

// finish reports whether the lighting phase may record and whether the
// geometry phase still needs closing first.
func (t *deferredTracker) finish() (needEnd, ok bool) {
	switch t.phase {
	case deferredInGeometry:
		log.Warn("deferred lighting finish without end, closing geometry")
		t.phase = deferredIdle
		return true, true
	case deferredAwaitFinish:
		t.phase = deferredIdle
		return false, true
	default:
		log.Error("deferred lighting finish while idle, ignoring")
		return false, false
	}
}
