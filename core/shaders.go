package core

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

// ShaderModules is a vertex/fragment module pair.
type ShaderModules struct {
	Vert vk.ShaderModule
	Frag vk.ShaderModule
}

type shaderKey struct {
	shader gfx.ShaderType
	flags  uint32
}

// ShaderManager caches SPIR-V modules by (shader type, variant flags)
// and by filename. Modules live for the renderer's lifetime.
type ShaderManager struct {
	device vk.Device
	root   string

	byKey  map[shaderKey]ShaderModules
	byName map[string]vk.ShaderModule
}

// NewShaderManager creates a manager loading from the given root.
func NewShaderManager(device vk.Device, root string) *ShaderManager {
	return &ShaderManager{
		device: device,
		root:   root,
		byKey:  make(map[shaderKey]ShaderModules),
		byName: make(map[string]vk.ShaderModule),
	}
}

// shaderBaseName maps a shader type to its module pair's base filename.
func shaderBaseName(shader gfx.ShaderType) (string, bool) {
	switch shader {
	case gfx.ShaderPassthrough:
		return "default-material", true
	case gfx.ShaderInterface:
		return "interface", true
	case gfx.ShaderModel:
		return "model", true
	case gfx.ShaderDeferredLighting:
		return "deferred-lighting", true
	case gfx.ShaderNanoVG:
		return "nanovg", true
	case gfx.ShaderRocketUI:
		return "rocketui", true
	case gfx.ShaderParticle:
		return "particle", true
	case gfx.ShaderDistortion:
		return "distortion", true
	case gfx.ShaderDecal:
		return "decal", true
	case gfx.ShaderShieldImpact:
		return "shield-impact", true
	case gfx.ShaderMovie:
		return "movie", true
	case gfx.ShaderCopy:
		return "vulkan", true
	case gfx.ShaderTonemapping:
		return "tonemapping", true
	case gfx.ShaderBloomBrightPass:
		return "brightpass", true
	case gfx.ShaderBloomComposite:
		return "bloom-comp", true
	case gfx.ShaderSmaaEdge:
		return "smaa-edge", true
	case gfx.ShaderSmaaBlendingWeight:
		return "smaa-blend", true
	case gfx.ShaderSmaaNeighborhood:
		return "smaa-neighborhood", true
	case gfx.ShaderFxaaPrepass:
		return "fxaa-prepass", true
	case gfx.ShaderFxaa:
		return "fxaa", true
	case gfx.ShaderPostEffects:
		return "post-effects", true
	case gfx.ShaderLightshafts:
		return "lightshafts", true
	default:
		return "", false
	}
}

// shaderVariantBaseName resolves variant-dependent filenames. The blur
// pass ships one module pair per direction; everything else ignores the
// flags.
func shaderVariantBaseName(shader gfx.ShaderType, variantFlags uint32) (string, bool) {
	if shader == gfx.ShaderBloomBlur {
		if variantFlags&gfx.VariantBlurVertical != 0 {
			return "blur-vertical", true
		}
		return "blur-horizontal", true
	}
	return shaderBaseName(shader)
}

// Modules returns the cached module pair for a shader type, loading it
// on first use. The model path uses one unified pair, so variant flags
// are dropped from its cache key.
func (s *ShaderManager) Modules(shader gfx.ShaderType, variantFlags uint32) (ShaderModules, error) {
	base, ok := shaderVariantBaseName(shader, variantFlags)
	if !ok {
		return ShaderModules{}, errors.Errorf("no shader modules for shader type %d", shader)
	}

	key := shaderKey{shader: shader, flags: variantFlags}
	if shader == gfx.ShaderModel {
		key.flags = 0
	}
	if modules, ok := s.byKey[key]; ok {
		return modules, nil
	}

	modules, err := s.ModulesByFilenames(base+".vert.spv", base+".frag.spv")
	if err != nil {
		return ShaderModules{}, err
	}
	s.byKey[key] = modules
	return modules, nil
}

// ModulesByFilenames loads a module pair by explicit filenames.
func (s *ShaderManager) ModulesByFilenames(vertName, fragName string) (ShaderModules, error) {
	vert, err := s.module(vertName)
	if err != nil {
		return ShaderModules{}, err
	}
	frag, err := s.module(fragName)
	if err != nil {
		return ShaderModules{}, err
	}
	return ShaderModules{Vert: vert, Frag: frag}, nil
}

func (s *ShaderManager) module(name string) (vk.ShaderModule, error) {
	if module, ok := s.byName[name]; ok {
		return module, nil
	}

	path := filepath.Join(s.root, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return vk.ShaderModule{}, errors.Wrap(err, "os.ReadFile(): shader module "+path)
	}

	code, err := alignShaderCode(raw)
	if err != nil {
		return vk.ShaderModule{}, errors.Wrap(err, path)
	}

	module, err := s.device.CreateShaderModule(code)
	if err != nil {
		return vk.ShaderModule{}, errors.Wrap(err, "vk.CreateShaderModule(): "+path)
	}

	log.WithField("module", name).Debug("loaded shader module")
	s.byName[name] = module
	return module, nil
}

// alignShaderCode copies raw SPIR-V bytes into a word slice. Module
// creation requires 4-byte aligned code.
func alignShaderCode(raw []byte) ([]uint32, error) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, errors.Errorf("SPIR-V size %d is not a multiple of 4", len(raw))
	}
	code := make([]uint32, len(raw)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return code, nil
}

// Destroy releases every cached module.
func (s *ShaderManager) Destroy() {
	for name, module := range s.byName {
		s.device.DestroyShaderModule(module)
		delete(s.byName, name)
	}
	s.byKey = make(map[shaderKey]ShaderModules)
}
