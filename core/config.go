package core

import (
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
)

// Anti-aliasing modes for Configuration.AntiAliasing.
const (
	AntiAliasNone = "none"
	AntiAliasFXAA = "fxaa"
	AntiAliasSMAA = "smaa"
)

// Configuration collects the renderer settings read from the
// environment. Defaults are chosen so an empty environment produces a
// usable release configuration.
type Configuration struct {
	// Debug enables the validation layer and the debug-utils messenger.
	Debug bool

	// VSync selects Mailbox over Immediate presentation.
	VSync bool

	// Stress churns dynamic buffers every frame to exercise the
	// deferred-release path.
	Stress bool

	// ShaderDirectory is the root the SPIR-V modules are loaded from.
	ShaderDirectory string

	// PipelineCacheFile is where the driver pipeline cache is persisted.
	PipelineCacheFile string

	ScreenWidth  uint32
	ScreenHeight uint32

	// BloomIntensity scales the bloom composite in percent; zero
	// disables the bloom chain entirely.
	BloomIntensity uint32

	// AntiAliasing selects the post-chain AA pass. SMAA degrades to
	// FXAA when its lookup tables are missing.
	AntiAliasing string
}

// LoadConfiguration reads the PULSAR_* environment variables.
func LoadConfiguration() Configuration {
	return Configuration{
		Debug:             envBool("PULSAR_DEBUG", false),
		VSync:             envBool("PULSAR_VSYNC", true),
		Stress:            envBool("PULSAR_STRESS", false),
		ShaderDirectory:   envy.Get("PULSAR_SHADER_DIR", "./shaders"),
		PipelineCacheFile: envy.Get("PULSAR_CACHE_FILE", "vulkan_pipeline.cache"),
		ScreenWidth:       envUint("PULSAR_WIDTH", 1024),
		ScreenHeight:      envUint("PULSAR_HEIGHT", 768),
		BloomIntensity:    envUint("PULSAR_BLOOM", 25),
		AntiAliasing:      envAntiAlias("PULSAR_AA", AntiAliasSMAA),
	}
}

func envAntiAlias(key, fallback string) string {
	switch strings.ToLower(envy.Get(key, fallback)) {
	case AntiAliasNone:
		return AntiAliasNone
	case AntiAliasFXAA:
		return AntiAliasFXAA
	case AntiAliasSMAA:
		return AntiAliasSMAA
	default:
		return fallback
	}
}

func envBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(envy.Get(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return value
}

func envUint(key string, fallback uint32) uint32 {
	value, err := strconv.ParseUint(envy.Get(key, strconv.FormatUint(uint64(fallback), 10)), 10, 32)
	if err != nil {
		return fallback
	}
	return uint32(value)
}
