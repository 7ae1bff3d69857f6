package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sunnyland/physics"
)

//go:embed *.json
var LevelsFS embed.FS

const DefaultLevel = "meadow"

// Tile glyphs used in Level.Rows.
const (
	TileEmpty       = '.'
	TileSolid       = '#'
	TileSlopeUp     = '/'
	TileSlopeDown   = '\\'
	TileLadder      = 'H'
	TileTrigger     = '~'
	defaultTileSize = 1.0
)

var ErrInvalidLevel = errors.New("levels: invalid level")

// Level is a tile map stored as JSON. Rows are listed top to bottom, one
// glyph per tile; each tile is one world unit and the world is Y-up.
type Level struct {
	Name     string    `json:"name"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Rows     []string  `json:"rows"`
	Segments []Segment `json:"segments,omitempty"`
	// SpawnX and SpawnY are the spawn tile column and row.
	SpawnX int `json:"spawn_x"`
	SpawnY int `json:"spawn_y"`
}

// Segment is a free-standing slope surface in world coordinates.
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Built records what Build added to a physics world.
type Built struct {
	Solids   []string
	Triggers []string
	Ladders  []Rect
	Hazards  []Rect
	SpawnX   float64
	SpawnY   float64
}

// LoadLevel loads an embedded level by basename; the .json suffix is
// optional.
func LoadLevel(name string) (*Level, error) {
	if name == "" {
		name = DefaultLevel
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	return ParseLevel(data)
}

func ParseLevel(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidLevel, l.Width, l.Height)
	}
	if len(l.Rows) != l.Height {
		return fmt.Errorf("%w: %d rows for height %d", ErrInvalidLevel, len(l.Rows), l.Height)
	}
	for i, row := range l.Rows {
		if len(row) != l.Width {
			return fmt.Errorf("%w: row %d has %d tiles, want %d", ErrInvalidLevel, i, len(row), l.Width)
		}
	}
	if l.SpawnX < 0 || l.SpawnX >= l.Width || l.SpawnY < 0 || l.SpawnY >= l.Height {
		return fmt.Errorf("%w: spawn %d,%d outside level", ErrInvalidLevel, l.SpawnX, l.SpawnY)
	}
	return nil
}

func (l *Level) tile(x, y int) byte {
	return l.Rows[y][x]
}

// tileBounds returns the world rectangle of tile column x, row y.
func (l *Level) tileBounds(x, y int) (minX, minY float64) {
	return float64(x) * defaultTileSize, float64(l.Height-1-y) * defaultTileSize
}

// Build adds the level's static geometry to w.
func (l *Level) Build(w *physics.World) *Built {
	built := &Built{}
	built.SpawnX, built.SpawnY = l.tileBounds(l.SpawnX, l.SpawnY)
	built.SpawnX += defaultTileSize / 2
	built.SpawnY += defaultTileSize / 2

	processed := make([]bool, l.Width*l.Height)
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			idx := y*l.Width + x
			if processed[idx] {
				continue
			}
			processed[idx] = true

			x0, y0 := l.tileBounds(x, y)
			size := defaultTileSize
			switch l.tile(x, y) {
			case TileSolid:
				cols, rows := l.expandSolid(x, y, processed)
				// Rows grow downward in the grid, which is toward -Y in the world.
				minY := y0 - float64(rows-1)*size
				id := w.AddStaticBox(x0, minY, x0+float64(cols)*size, y0+size)
				built.Solids = append(built.Solids, id)
			case TileSlopeUp:
				id := w.AddStaticTriangle(cp.Vector{X: x0, Y: y0}, cp.Vector{X: x0 + size, Y: y0}, cp.Vector{X: x0 + size, Y: y0 + size})
				built.Solids = append(built.Solids, id)
			case TileSlopeDown:
				id := w.AddStaticTriangle(cp.Vector{X: x0, Y: y0}, cp.Vector{X: x0 + size, Y: y0}, cp.Vector{X: x0, Y: y0 + size})
				built.Solids = append(built.Solids, id)
			case TileLadder:
				rows := l.expandColumn(x, y, TileLadder, processed)
				r := Rect{MinX: x0, MinY: y0 - float64(rows-1)*size, MaxX: x0 + size, MaxY: y0 + size}
				built.Triggers = append(built.Triggers, w.AddTrigger(r.MinX, r.MinY, r.MaxX, r.MaxY))
				built.Ladders = append(built.Ladders, r)
			case TileTrigger:
				r := Rect{MinX: x0, MinY: y0, MaxX: x0 + size, MaxY: y0 + size}
				built.Triggers = append(built.Triggers, w.AddTrigger(r.MinX, r.MinY, r.MaxX, r.MaxY))
				built.Hazards = append(built.Hazards, r)
			}
		}
	}

	for _, seg := range l.Segments {
		built.Solids = append(built.Solids, w.AddStaticSegment(seg.X1, seg.Y1, seg.X2, seg.Y2, 0))
	}
	return built
}

// expandSolid greedily grows a rectangle of solid tiles from x, y, first
// across then down, and marks the covered tiles processed.
func (l *Level) expandSolid(x, y int, processed []bool) (cols, rows int) {
	cols = 1
	for x+cols < l.Width {
		idx := y*l.Width + x + cols
		if processed[idx] || l.tile(x+cols, y) != TileSolid {
			break
		}
		cols++
	}

	rows = 1
grow:
	for y+rows < l.Height {
		for xi := x; xi < x+cols; xi++ {
			idx := (y+rows)*l.Width + xi
			if processed[idx] || l.tile(xi, y+rows) != TileSolid {
				break grow
			}
		}
		rows++
	}

	for yi := y; yi < y+rows; yi++ {
		for xi := x; xi < x+cols; xi++ {
			processed[yi*l.Width+xi] = true
		}
	}
	return cols, rows
}

func (l *Level) expandColumn(x, y int, glyph byte, processed []bool) int {
	rows := 1
	for y+rows < l.Height && l.tile(x, y+rows) == glyph {
		processed[(y+rows)*l.Width+x] = true
		rows++
	}
	return rows
}
