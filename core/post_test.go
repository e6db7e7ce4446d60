package core

import (
	"testing"
	"unsafe"

	qt "github.com/frankban/quicktest"
)

// The post shaders read these blocks under std140 rules; the Go-side
// sizes and vec3 offsets must line up exactly or every parameter after
// the first mismatch lands skewed.
func TestUniformBlockLayouts(t *testing.T) {
	c := qt.New(t)

	c.Assert(unsafe.Sizeof(TonemapperUBO{}), qt.Equals, uintptr(48))
	c.Assert(unsafe.Offsetof(TonemapperUBO{}.Exposure), qt.Equals, uintptr(40))

	c.Assert(unsafe.Sizeof(LightshaftsUBO{}), qt.Equals, uintptr(32))
	c.Assert(unsafe.Offsetof(LightshaftsUBO{}.Samples), qt.Equals, uintptr(28))

	c.Assert(unsafe.Sizeof(PostEffectsUBO{}), qt.Equals, uintptr(80))
	c.Assert(unsafe.Offsetof(PostEffectsUBO{}.Tint), qt.Equals, uintptr(32))
	c.Assert(unsafe.Offsetof(PostEffectsUBO{}.CustomVecA), qt.Equals, uintptr(48))
	c.Assert(unsafe.Offsetof(PostEffectsUBO{}.CustomVecB), qt.Equals, uintptr(64))
}

func TestUniformBytesAliasesStruct(t *testing.T) {
	c := qt.New(t)

	data := blurData{TexSize: 0.5, Level: 2}
	raw := uniformBytes(&data)
	c.Assert(len(raw), qt.Equals, int(unsafe.Sizeof(data)))
	c.Assert(&raw[0], qt.Equals, (*byte)(unsafe.Pointer(&data)))
}

func TestDefaultLightshafts(t *testing.T) {
	c := qt.New(t)

	p := DefaultLightshafts(0.8)
	c.Assert(p.Density, qt.Equals, float32(0.5))
	c.Assert(p.Falloff, qt.Equals, float32(1))
	c.Assert(p.Weight, qt.Equals, float32(0.02))
	c.Assert(p.Intensity, qt.Equals, float32(0.4))
	c.Assert(p.CockpitIntensity, qt.Equals, float32(0.4))
	c.Assert(p.Samples, qt.Equals, int32(50))

	// An occluded sun keeps the shafts dark without disabling the pass.
	c.Assert(DefaultLightshafts(0).Intensity, qt.Equals, float32(0))
}

func TestIdentityPostEffects(t *testing.T) {
	c := qt.New(t)

	c.Assert(IdentityPostEffects(), qt.Equals, PostEffectsUBO{
		Saturation: 1,
		Brightness: 1,
		Contrast:   1,
	})
}
