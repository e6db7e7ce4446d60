package core

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"
)

func TestEnvAntiAlias(t *testing.T) {
	c := qt.New(t)

	envy.Temp(func() {
		envy.Set("PULSAR_AA", "FXAA")
		c.Assert(envAntiAlias("PULSAR_AA", AntiAliasSMAA), qt.Equals, AntiAliasFXAA)

		envy.Set("PULSAR_AA", "none")
		c.Assert(envAntiAlias("PULSAR_AA", AntiAliasSMAA), qt.Equals, AntiAliasNone)

		// Unknown modes keep the fallback.
		envy.Set("PULSAR_AA", "msaa16")
		c.Assert(envAntiAlias("PULSAR_AA", AntiAliasSMAA), qt.Equals, AntiAliasSMAA)
	})
}

func TestEnvHelpers(t *testing.T) {
	c := qt.New(t)

	envy.Temp(func() {
		envy.Set("PULSAR_BLOOM", "40")
		c.Assert(envUint("PULSAR_BLOOM", 25), qt.Equals, uint32(40))

		// Unparseable values fall back rather than abort.
		envy.Set("PULSAR_BLOOM", "bright")
		c.Assert(envUint("PULSAR_BLOOM", 25), qt.Equals, uint32(25))

		envy.Set("PULSAR_DEBUG", "1")
		c.Assert(envBool("PULSAR_DEBUG", false), qt.IsTrue)

		envy.Set("PULSAR_DEBUG", "maybe")
		c.Assert(envBool("PULSAR_DEBUG", true), qt.IsTrue)
	})
}
