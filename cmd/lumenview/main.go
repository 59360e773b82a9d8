package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lumen3d/lumen/internal/component"
	"github.com/lumen3d/lumen/internal/config"
	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/engine"
	"github.com/lumen3d/lumen/internal/render"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"
)

var (
	colorGrid      = color.RGBA{R: 40, G: 40, B: 48, A: 255}
	colorModel     = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	colorCamera    = color.RGBA{R: 80, G: 200, B: 255, A: 255}
	colorPoint     = color.RGBA{R: 255, G: 190, B: 90, A: 255}
	colorSpot      = color.RGBA{R: 255, G: 120, B: 200, A: 255}
	colorSun       = color.RGBA{R: 255, G: 255, B: 120, A: 255}
	colorShadowed  = color.RGBA{R: 255, G: 80, B: 60, A: 255}
	colorText      = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	colorTransform = color.RGBA{R: 90, G: 90, B: 100, A: 255}
)

// viewer draws a top-down (XZ) projection of the running scene.
type viewer struct {
	eng     *engine.Engine
	watcher *config.Watcher
	log     *zap.Logger
	face    ebtext.Face

	width, height int
	center        mgl32.Vec2
	zoom          float32
	paused        bool
	err           error
}

func newViewer(eng *engine.Engine, watcher *config.Watcher, log *zap.Logger) *viewer {
	cfg := eng.Config().Engine
	return &viewer{
		eng:     eng,
		watcher: watcher,
		log:     log,
		face:    ebtext.NewGoXFace(basicfont.Face7x13),
		width:   cfg.Width,
		height:  cfg.Height,
		zoom:    24,
	}
}

func (v *viewer) Update() error {
	if v.err != nil {
		return v.err
	}
	v.drainWatcher()
	v.handleInput()
	if v.paused {
		return nil
	}
	dt := time.Second / time.Duration(ebiten.TPS())
	if err := v.eng.Tick(dt); err != nil {
		v.err = fmt.Errorf("tick %d: %w", v.eng.World.Tick(), err)
		return v.err
	}
	if rec, ok := v.eng.Device.(*render.Recorder); ok {
		rec.Reset()
	}
	return nil
}

func (v *viewer) drainWatcher() {
	if v.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-v.watcher.Events:
			if !ok {
				v.watcher = nil
				return
			}
			v.eng.FileChanged(path)
		case err, ok := <-v.watcher.Errors:
			if !ok {
				v.watcher = nil
				return
			}
			v.log.Warn("file watcher", zap.Error(err))
		default:
			return
		}
	}
}

func (v *viewer) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		cfg := v.eng.Renderer.Config()
		cfg.DrawBoundingVolumes = !cfg.DrawBoundingVolumes
		v.eng.Renderer.SetConfig(cfg)
	}
	pan := 10 / v.zoom
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v.center[0] -= pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v.center[0] += pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.center[1] -= pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.center[1] += pan
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		v.zoom = mgl32.Clamp(v.zoom*(1+float32(dy)*0.1), 2, 200)
	}
}

// toScreen maps world XZ to pixels, +X right and +Z down.
func (v *viewer) toScreen(p mgl32.Vec3) (float32, float32) {
	x := (p[0]-v.center[0])*v.zoom + float32(v.width)/2
	y := (p[2]-v.center[1])*v.zoom + float32(v.height)/2
	return x, y
}

func (v *viewer) Draw(screen *ebiten.Image) {
	w := v.eng.World
	v.drawGrid(screen)

	ecs.ForEach(w, func(_ ecs.Handle, tr *component.Transform) {
		if !tr.Active {
			return
		}
		x, y := v.toScreen(tr.WorldPosition())
		vector.DrawFilledCircle(screen, x, y, 2, colorTransform, false)
		if p, ok := ecs.GetComponent[component.Transform](w, tr.Parent); ok {
			px, py := v.toScreen(p.WorldPosition())
			vector.StrokeLine(screen, x, y, px, py, 1, colorTransform, false)
		}
	})

	ecs.ForEach(w, func(_ ecs.Handle, m *component.Model) {
		for _, c := range m.Children {
			x0, y0 := v.toScreen(c.AABB.Min)
			x1, y1 := v.toScreen(c.AABB.Max)
			vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, colorModel, false)
		}
	})

	ecs.ForEach2(w, func(_ ecs.Handle, tr *component.Transform, l *component.DirectionalLight) {
		v.drawDirection(screen, tr, 3, lightColor(&l.Light, colorSun))
	})
	ecs.ForEach2(w, func(_ ecs.Handle, tr *component.Transform, l *component.PointLight) {
		x, y := v.toScreen(tr.WorldPosition())
		clr := lightColor(&l.Light, colorPoint)
		vector.DrawFilledCircle(screen, x, y, 4, clr, true)
		vector.StrokeCircle(screen, x, y, l.Range()*v.zoom, 1, clr, true)
	})
	ecs.ForEach2(w, func(_ ecs.Handle, tr *component.Transform, l *component.SpotLight) {
		x, y := v.toScreen(tr.WorldPosition())
		clr := lightColor(&l.Light, colorSpot)
		vector.DrawFilledCircle(screen, x, y, 4, clr, true)
		v.drawDirection(screen, tr, l.Range(), clr)
	})
	ecs.ForEach2(w, func(_ ecs.Handle, tr *component.Transform, _ *component.Camera) {
		x, y := v.toScreen(tr.WorldPosition())
		vector.DrawFilledRect(screen, x-4, y-4, 8, 8, colorCamera, false)
		v.drawDirection(screen, tr, 2, colorCamera)
	})

	v.drawOverlay(screen)
}

func (v *viewer) drawGrid(screen *ebiten.Image) {
	for i := -20; i <= 20; i++ {
		x0, y0 := v.toScreen(mgl32.Vec3{float32(i), 0, -20})
		x1, y1 := v.toScreen(mgl32.Vec3{float32(i), 0, 20})
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, colorGrid, false)
		x0, y0 = v.toScreen(mgl32.Vec3{-20, 0, float32(i)})
		x1, y1 = v.toScreen(mgl32.Vec3{20, 0, float32(i)})
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, colorGrid, false)
	}
}

func (v *viewer) drawDirection(screen *ebiten.Image, tr *component.Transform, length float32, clr color.Color) {
	p := tr.WorldPosition()
	x0, y0 := v.toScreen(p)
	x1, y1 := v.toScreen(p.Add(tr.Forward().Mul(length)))
	vector.StrokeLine(screen, x0, y0, x1, y1, 1.5, clr, true)
}

func lightColor(l *component.Light, base color.RGBA) color.Color {
	if !l.Active {
		return colorGrid
	}
	if l.CastShadows {
		return colorShadowed
	}
	return base
}

func (v *viewer) drawOverlay(screen *ebiten.Image) {
	st := v.eng.Renderer.Stats()
	lp := v.eng.Renderer.LightPass()
	l := st.Lights
	lines := []string{
		fmt.Sprintf("tick %d  frame %d  %.0f fps", v.eng.World.Tick(), st.Frame, ebiten.ActualFPS()),
		fmt.Sprintf("entities %d  cameras %d  draws %d", v.eng.World.Entities.Len(), st.Cameras, st.Draws),
		fmt.Sprintf("lights d=%d/%d p=%d/%d s=%d/%d", l.Directional, l.ShadowedDirectional, l.Point, l.ShadowedPoint, l.Spot, l.ShadowedSpot),
		fmt.Sprintf("shadow cameras %d  caster draws %d", st.ShadowCameras, st.ShadowDraws),
	}
	for t := component.DirectionalLightType; t < component.LightTypeCount; t++ {
		a := lp.Atlas(t)
		lines = append(lines, fmt.Sprintf("%s atlas %d maps x %d @ %d", t, a.Capacity(), a.FacesPerMap(), a.Config().Resolution))
	}
	if v.paused {
		lines = append(lines, "paused (space)")
	}
	for i, line := range lines {
		op := &ebtext.DrawOptions{}
		op.GeoM.Translate(8, float64(8+i*16))
		op.ColorScale.ScaleWithColor(colorText)
		ebtext.Draw(screen, line, v.face, op)
	}
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.width, v.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func main() {
	scenePath := flag.String("scene", "", "scene file, overrides engine.scene")
	flag.Parse()

	cfgPath := "config/lumen.toml"
	if p := os.Getenv("LUMEN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *scenePath != "" {
		cfg.Engine.Scene = *scenePath
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	eng, err := engine.New(cfg, cfgPath, render.NewRecorder(), logger)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	defer eng.Close()
	if err := eng.LoadScene(cfg.Engine.Scene); err != nil {
		log.Fatalf("scene: %v", err)
	}

	dirs := []string{filepath.Dir(cfgPath)}
	if d := filepath.Dir(cfg.Engine.Scene); d != dirs[0] {
		dirs = append(dirs, d)
	}
	if cfg.Scripting.Enabled {
		dirs = append(dirs, cfg.Scripting.Dir)
	}
	watcher, err := config.NewWatcher(dirs...)
	if err != nil {
		logger.Warn("hot reload disabled", zap.Error(err))
		watcher = nil
	} else {
		defer watcher.Close()
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Engine.Width, cfg.Engine.Height)
	ebiten.SetWindowTitle("lumen view")
	ebiten.SetTPS(int(time.Second / cfg.Engine.TickRate))

	if err := ebiten.RunGame(newViewer(eng, watcher, logger)); err != nil {
		logger.Error("viewer stopped", zap.Error(err))
	}
}
