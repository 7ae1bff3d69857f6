package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sunnyland/common"
	"github.com/milk9111/sunnyland/levels"
	"github.com/milk9111/sunnyland/prefabs"
	"github.com/milk9111/sunnyland/sim"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// pixelsPerUnit maps one world unit (one tile) to screen pixels.
	pixelsPerUnit = 40
	cameraLerp    = 0.1
)

// whitePixel is the source texture for filled paths.
var whitePixel *ebiten.Image

type Game struct {
	sim     *sim.Sim
	input   *keyboardInput
	ui      *ebitenui.UI
	watcher *prefabs.Watcher

	debug  bool
	paused bool
	quit   bool

	camX, camY float64
}

func NewGame(levelName string, debug, watch bool) (*Game, error) {
	lvl, err := levels.LoadLevel(levelName)
	if err != nil {
		return nil, err
	}

	g := &Game{debug: debug, input: &keyboardInput{}}
	s, err := sim.New(sim.Options{Level: lvl, Input: g.input, Debug: debug})
	if err != nil {
		return nil, err
	}
	g.sim = s
	g.input.climbing = func() bool { return s.Controller.State().IsClimbing }
	g.camX, g.camY = s.Built.SpawnX, s.Built.SpawnY
	g.ui = NewPauseUI(g)

	if watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
		if err != nil {
			log.Printf("sunnyland: watch %s: %v", prefabs.Dir, err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.sim.Close()
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.ui.Update()
		return nil
	}

	g.applyReloads()
	g.sim.Step()

	p := g.sim.Body.Position()
	g.camX = common.Lerp(g.camX, p.X(), cameraLerp)
	g.camY = common.Lerp(g.camY, p.Y(), cameraLerp)
	return nil
}

// applyReloads drains pending watcher events without blocking.
func (g *Game) applyReloads() {
	if g.watcher == nil {
		return
	}
	open := g.watcher.Drain(g.reload, func(err error) {
		log.Printf("sunnyland: watch: %v", err)
	})
	if !open {
		g.watcher = nil
	}
}

func (g *Game) reload(path string) {
	if prefabs.IsScript(path) {
		if err := g.sim.ReloadScript(); err != nil {
			log.Printf("sunnyland: reload %s: %v", path, err)
		}
		return
	}
	if filepath.Base(path) != prefabs.PlayerFile {
		return
	}
	spec, err := prefabs.LoadPlayerSpec(prefabs.PlayerFile)
	if err == nil {
		err = g.sim.Reload(spec)
	}
	if err != nil {
		log.Printf("sunnyland: reload %s: %v", path, err)
		return
	}
	log.Printf("sunnyland: reloaded %s", path)
}

func (g *Game) respawn() {
	g.sim.Respawn()
	g.camX, g.camY = g.sim.Built.SpawnX, g.sim.Built.SpawnY
	g.paused = false
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Skyblue)

	g.drawLevel(screen)
	g.drawPlayer(screen)

	if g.debug {
		cp.DrawSpace(g.sim.World.Space(), &debugDrawer{screen: screen, toScreen: g.toScreen})
		from, to := g.sim.Controller.GroundRay()
		x1, y1 := g.toScreen(cp.Vector{X: from.X(), Y: from.Y()})
		x2, y2 := g.toScreen(cp.Vector{X: to.X(), Y: to.Y()})
		rayColor := colornames.Red
		if g.sim.Controller.State().IsGrounded {
			rayColor = colornames.Lime
		}
		vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y2), 2, rayColor, true)
	}

	st := g.sim.Controller.State()
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.2f\nGrounded: %v\nOnSlope: %v\nJumps: %d/%d\nCrouching: %v\nClimbing: %v",
		ebiten.ActualFPS(), st.IsGrounded, st.IsOnSlope, st.JumpCount, g.sim.Controller.Config().MaxJumpCount, st.IsCrouching, st.IsClimbing,
	))

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) drawLevel(screen *ebiten.Image) {
	lvl := g.sim.Level
	for y, row := range lvl.Rows {
		for x := 0; x < len(row); x++ {
			r := levels.Rect{
				MinX: float64(x),
				MinY: float64(lvl.Height - 1 - y),
				MaxX: float64(x + 1),
				MaxY: float64(lvl.Height - y),
			}
			switch row[x] {
			case levels.TileSolid:
				g.fillRect(screen, r, colornames.Saddlebrown)
			case levels.TileSlopeUp:
				g.fillTriangle(screen, r.MinX, r.MinY, r.MaxX, r.MinY, r.MaxX, r.MaxY, colornames.Saddlebrown)
			case levels.TileSlopeDown:
				g.fillTriangle(screen, r.MinX, r.MinY, r.MaxX, r.MinY, r.MinX, r.MaxY, colornames.Saddlebrown)
			case levels.TileLadder:
				g.strokeRect(screen, r, colornames.Burlywood)
			case levels.TileTrigger:
				g.fillRect(screen, r, color.RGBA{R: 255, G: 0, B: 0, A: 96})
			}
		}
	}
	for _, seg := range lvl.Segments {
		x1, y1 := g.toScreen(cp.Vector{X: seg.X1, Y: seg.Y1})
		x2, y2 := g.toScreen(cp.Vector{X: seg.X2, Y: seg.Y2})
		vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y2), 3, colornames.Saddlebrown, true)
	}
}

func (g *Game) drawPlayer(screen *ebiten.Image) {
	bounds := g.sim.PlayerBounds()
	if g.sim.Body.Crouching() {
		bounds.MaxY = bounds.MinY + g.sim.Player.Body.CrouchHeight
	}
	g.fillRect(screen, bounds, colornames.Darkorange)

	// Facing marker on the leading edge.
	edge := bounds.MinX
	if g.sim.Facing.Right {
		edge = bounds.MaxX
	}
	x, y := g.toScreen(cp.Vector{X: edge, Y: (bounds.MinY + bounds.MaxY) / 2})
	vector.FillRect(screen, float32(x)-2, float32(y)-2, 4, 4, colornames.White, false)
}

func (g *Game) fillRect(screen *ebiten.Image, r levels.Rect, c color.Color) {
	x, y := g.toScreen(cp.Vector{X: r.MinX, Y: r.MaxY})
	w := (r.MaxX - r.MinX) * pixelsPerUnit
	h := (r.MaxY - r.MinY) * pixelsPerUnit
	vector.FillRect(screen, float32(x), float32(y), float32(w), float32(h), c, false)
}

func (g *Game) strokeRect(screen *ebiten.Image, r levels.Rect, c color.Color) {
	x, y := g.toScreen(cp.Vector{X: r.MinX, Y: r.MaxY})
	w := (r.MaxX - r.MinX) * pixelsPerUnit
	h := (r.MaxY - r.MinY) * pixelsPerUnit
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 2, c, false)
}

func (g *Game) fillTriangle(screen *ebiten.Image, ax, ay, bx, by, cx, cy float64, c color.Color) {
	var path vector.Path
	x, y := g.toScreen(cp.Vector{X: ax, Y: ay})
	path.MoveTo(float32(x), float32(y))
	x, y = g.toScreen(cp.Vector{X: bx, Y: by})
	path.LineTo(float32(x), float32(y))
	x, y = g.toScreen(cp.Vector{X: cx, Y: cy})
	path.LineTo(float32(x), float32(y))
	path.Close()

	if whitePixel == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whitePixel = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	r, gr, b, a := c.RGBA()
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = float32(r) / 0xffff
		vs[i].ColorG = float32(gr) / 0xffff
		vs[i].ColorB = float32(b) / 0xffff
		vs[i].ColorA = float32(a) / 0xffff
	}
	screen.DrawTriangles(vs, is, whitePixel, &ebiten.DrawTrianglesOptions{})
}

// toScreen maps a Y-up world point to Y-down screen pixels around the
// camera.
func (g *Game) toScreen(v cp.Vector) (float64, float64) {
	return (v.X-g.camX)*pixelsPerUnit + baseWidth/2, baseHeight/2 - (v.Y-g.camY)*pixelsPerUnit
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
