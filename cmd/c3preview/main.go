// Command c3preview plays the skinned demo asset in a window.
//
// Controls: Space pauses, S steps one tick while paused, O toggles the alternate motion,
// B toggles the blend mode, R rewinds, +/- change the tick rate, Up/Down zoom and Escape quits.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	"github.com/Carmen-Shannon/c3-preview/common"
	"github.com/Carmen-Shannon/c3-preview/engine"
	"github.com/Carmen-Shannon/c3-preview/engine/camera"
	"github.com/Carmen-Shannon/c3-preview/engine/model"
	"github.com/Carmen-Shannon/c3-preview/engine/profiler"
	"github.com/Carmen-Shannon/c3-preview/engine/renderer"
	"github.com/Carmen-Shannon/c3-preview/engine/renderer/animator"
	"github.com/Carmen-Shannon/c3-preview/engine/window"
	"github.com/Carmen-Shannon/c3-preview/internal/config"
)

// ── Camera + Controls ─────────────────────────────────────────────
const (
	orbitRadius  = 7.0
	orbitHeight  = 2.0
	orbitSpeed   = 0.25 // radians per second
	zoomStep     = 0.5
	tickRateStep = 5.0
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Preview] %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("[Preview] %v", err)
	}
}

// preview holds the state the input and frame callbacks share.
type preview struct {
	cfg    config.Config
	eng    engine.Engine
	win    window.Window
	models model.ModelCollection
	cam    camera.Camera

	// overrides[i] is the alternate motion of models.Models()[i], nil if the part has none.
	overrides      []animator.Motion
	overrideActive bool
	blendMode      model.BlendMode
}

func run(cfg config.Config) error {
	// ── Window + Engine ───────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithMaxTicksPerFrame(cfg.Engine.MaxTicksPerFrame),
		engine.WithProfiling(cfg.Engine.Profiling),
		engine.WithProfilerInterval(cfg.Engine.ProfileInterval),
	)

	// ── Renderer ──────────────────────────────────────────────────
	presentMode, _ := renderer.ParsePresentMode(cfg.Renderer.PresentMode)
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.SoftwareFallback),
	)
	defer r.Release()

	cam := camera.NewCamera(
		camera.WithAspect(float32(win.Width())/float32(max(win.Height(), 1))),
		camera.WithTarget(1.5, 1.2, 0),
		camera.WithOrbit(orbitRadius, orbitHeight),
		camera.WithRadiusBounds(2, 30),
		camera.WithOrbitSpeed(orbitSpeed),
	)
	win.SetResizeCallback(func(width, height int) {
		r.Resize(width, height)
		cam.SetAspect(float32(width) / float32(max(height, 1)))
	})

	// ── Texture + Effect ──────────────────────────────────────────
	staging, err := loadTexture(cfg.Texture)
	if err != nil {
		return err
	}
	tex, err := r.CreateTexture("preview texture", staging, common.SamplerStagingData{})
	if err != nil {
		return fmt.Errorf("failed to upload texture: %w", err)
	}
	defer tex.Release()

	effect, err := r.CreateTexturedEffect("preview effect", tex)
	if err != nil {
		return fmt.Errorf("failed to create effect: %w", err)
	}
	defer effect.Release()

	// ── Models ────────────────────────────────────────────────────
	blendMode, _ := model.ParseBlendMode(cfg.Animation.BlendMode)
	motionOpts := motionOptions(cfg.Animation)

	parts := demoAsset()
	meshes := make([]model.Mesh, len(parts))
	clips := make([]animator.Clip, len(parts))
	for i, p := range parts {
		meshes[i] = p.mesh
		clips[i] = p.clip
	}

	models, err := model.NewModelCollection(r, meshes, clips, tex,
		model.WithTickWorkers(cfg.Animation.TickWorkers),
		model.WithModelOptions(
			model.WithBlendMode(blendMode),
			model.WithMotionOptions(motionOpts...),
		),
	)
	if err != nil {
		return err
	}
	defer models.Release()

	for _, idx := range models.Skipped() {
		log.Printf("[Preview] %q has a single-bone motion, skipped as a static prop", parts[idx].mesh.Name)
	}

	overrides, err := buildOverrides(parts, models, motionOpts)
	if err != nil {
		return err
	}

	p := &preview{
		cfg:       cfg,
		eng:       eng,
		win:       win,
		models:    models,
		cam:       cam,
		overrides: overrides,
		blendMode: blendMode,
	}
	log.Printf("[Preview] %d models, %s blending, %.0f ticks/s", models.Len(), blendMode, cfg.Engine.TickRate)
	p.updateTitle()

	// ── Callbacks ─────────────────────────────────────────────────
	win.SetKeyDownCallback(p.onKey)
	eng.SetTickCallback(models.Tick)
	eng.SetStatsSource(func() profiler.Stats {
		s := models.Stats()
		return profiler.Stats{Models: s.Models, Ticks: s.Ticks, Uploads: s.Uploads}
	})
	eng.SetRenderCallback(func(dt float32) {
		cam.Update(dt)
		effect.SetViewProjection(cam.ViewProjection())

		if err := r.BeginFrame(); err != nil {
			log.Printf("[Preview] skipping frame: %v", err)
			return
		}
		models.Draw(effect)
		r.EndFrame()
		r.Present()
	})

	eng.Run()
	return nil
}

// motionOptions maps the animation config to the motion step policy.
func motionOptions(cfg config.AnimationConfig) []animator.MotionBuilderOption {
	if cfg.FrameDuration > 0 {
		return []animator.MotionBuilderOption{animator.WithFrameDuration(cfg.FrameDuration)}
	}
	return []animator.MotionBuilderOption{animator.WithFramesPerTick(cfg.FramesPerTick)}
}

// buildOverrides creates one alternate motion per model so parallel ticks never share a cursor.
func buildOverrides(parts []demoPart, models model.ModelCollection, opts []animator.MotionBuilderOption) ([]animator.Motion, error) {
	byName := make(map[string]demoPart, len(parts))
	for _, p := range parts {
		byName[p.mesh.Name] = p
	}

	overrides := make([]animator.Motion, models.Len())
	for i, m := range models.Models() {
		part, ok := byName[m.Name()]
		if !ok || part.override.FrameCount == 0 {
			continue
		}
		motion, err := animator.NewMotion(part.override, part.mesh.BindPose, opts...)
		if err != nil {
			return nil, fmt.Errorf("override for %q: %w", m.Name(), err)
		}
		overrides[i] = motion
	}
	return overrides, nil
}

// loadTexture decodes the configured texture file, or generates a checkerboard when none is set.
func loadTexture(path string) (common.TextureStagingData, error) {
	if path == "" {
		return common.CheckerTexture(256, 8,
			color.RGBA{R: 180, G: 40, B: 40, A: 255},
			color.RGBA{R: 230, G: 200, B: 120, A: 255},
		), nil
	}
	imported := &common.ImportedTexture{Name: path, Path: path}
	staging, err := imported.Decode()
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("failed to load texture %s: %w", path, err)
	}
	return staging, nil
}

// onKey runs from PollEvents, between frames, so it never overlaps a tick or draw.
func (p *preview) onKey(key uint32) {
	switch key {
	case common.KeySpace:
		p.eng.SetPaused(!p.eng.Paused())
	case common.KeyS:
		if p.eng.Paused() {
			p.models.Tick(float32(p.eng.TickRate().Seconds()))
		}
	case common.KeyO:
		p.toggleOverride()
	case common.KeyB:
		p.toggleBlendMode()
	case common.KeyR:
		for i, m := range p.models.Models() {
			m.BaseMotion().Reset()
			if p.overrides[i] != nil {
				p.overrides[i].Reset()
			}
		}
	case common.KeyPlus:
		p.eng.SetTickRate(tickRate(p.eng) + tickRateStep)
	case common.KeyMinus:
		p.eng.SetTickRate(max(tickRate(p.eng)-tickRateStep, 1))
	case common.KeyZoomIn:
		p.cam.Zoom(zoomStep)
	case common.KeyZoomOut:
		p.cam.Zoom(-zoomStep)
	default:
		return
	}
	p.updateTitle()
}

func (p *preview) toggleOverride() {
	p.overrideActive = !p.overrideActive
	for i, m := range p.models.Models() {
		if !p.overrideActive {
			m.ClearOverrideMotion()
			continue
		}
		if p.overrides[i] == nil {
			continue
		}
		if err := m.SetOverrideMotion(p.overrides[i]); err != nil {
			log.Printf("[Preview] %v", err)
		}
	}
}

func (p *preview) toggleBlendMode() {
	if p.blendMode == model.BlendWeighted {
		p.blendMode = model.BlendLastWriterWins
	} else {
		p.blendMode = model.BlendWeighted
	}
	for _, m := range p.models.Models() {
		m.SetBlendMode(p.blendMode)
	}
}

func (p *preview) updateTitle() {
	state := "playing"
	if p.eng.Paused() {
		state = "paused"
	}
	motion := "base"
	if p.overrideActive {
		motion = "override"
	}
	p.win.SetTitle(fmt.Sprintf("%s | %s | %s motion | %s | %.0f ticks/s",
		p.cfg.Window.Title, state, motion, p.blendMode, tickRate(p.eng)))
}

func tickRate(eng engine.Engine) float64 {
	return 1 / eng.TickRate().Seconds()
}
