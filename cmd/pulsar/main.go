package main

import (
	"runtime"
	"time"
	"unsafe"

	"github.com/gobuffalo/envy"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/voidworks/pulsar/core"
	"github.com/voidworks/pulsar/gfx"
	"github.com/voidworks/pulsar/vk"
)

func init() {
	// SDL and the Vulkan loader want the main OS thread.
	runtime.LockOSThread()
}

var log = logrus.StandardLogger()

func main() {
	cfg := core.LoadConfiguration()
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		log.WithError(err).Fatal("SDL init failed")
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		log.WithError(err).Fatal("Vulkan loader unavailable")
	}
	defer sdl.VulkanUnloadLibrary()

	window, err := sdl.CreateWindow("Pulsar",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.ScreenWidth), int32(cfg.ScreenHeight),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		log.WithError(err).Fatal("window creation failed")
	}
	defer window.Destroy()

	createSurface := func(instance vk.Instance) (vk.Surface, error) {
		surface, err := window.VulkanCreateSurface(unsafe.Pointer(instance.Handle()))
		if err != nil {
			return vk.Surface{}, err
		}
		return vk.SurfaceFromPointer(uintptr(surface)), nil
	}

	bitmaps := NewBitmapDirectory(envy.Get("PULSAR_TEXTURE_DIR", "./textures"))

	renderer, err := core.NewRenderer(cfg, window.VulkanGetInstanceExtensions(), createSurface, bitmaps)
	if err != nil {
		log.WithError(err).Fatal("renderer init failed")
	}
	defer renderer.Destroy()

	screen := gfx.NewScreen(int(cfg.ScreenWidth), int(cfg.ScreenHeight))

	windowStart := hrtime.Now()
	frames := 0
	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch et := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if et.Type == sdl.KEYDOWN && et.Keysym.Sym == sdl.K_ESCAPE {
					running = false
				}
			case *sdl.WindowEvent:
				if et.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
					screen = gfx.NewScreen(int(et.Data1), int(et.Data2))
				}
			}
		}

		rec, err := renderer.BeginRecording()
		if err != nil {
			log.WithError(err).Fatal("frame recording failed")
		}
		if rec == nil {
			// Minimized; nothing to present.
			sdl.Delay(16)
			continue
		}

		ctx := core.FrameCtx{Renderer: renderer, Recording: rec}
		ctx.SetClearColor(0, 0, 0, 1)
		ctx.Clear()
		ctx.ResetClip(screen)

		if err := renderer.AdvanceFrame(); err != nil {
			log.WithError(err).Fatal("frame submission failed")
		}

		frames++
		if elapsed := hrtime.Since(windowStart); elapsed >= time.Second {
			log.WithFields(logrus.Fields{
				"frames": frames,
				"avg":    (elapsed / time.Duration(frames)).Round(time.Microsecond).String(),
			}).Debug("frame timing")
			windowStart = hrtime.Now()
			frames = 0
		}
	}
}
