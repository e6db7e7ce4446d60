// Package core implements the renderer: device and swapchain ownership,
// the frame lifecycle with its timeline-serial retirement model, render
// target selection, the pipeline cache, per-frame transient memory and
// the public draw surface the engine calls into.
package core

import (
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

// MaxFramesInFlight is the size of the frame pool.
const MaxFramesInFlight = 2

// MaxBindlessTextures is the size of the bindless sampler array.
const MaxBindlessTextures = 1024

// GBufferCount is the number of color attachments in the deferred
// geometry pass.
const GBufferCount = 5
