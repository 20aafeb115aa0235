package world

import (
	"fmt"
	"math"
)

// Tile glyphs used in level files.
const (
	TileSolid = '#'
	TileEmpty = '.'
)

// Terrain is a grid of solid and empty tiles. Row 0 is the top.
// Columns outside the grid are solid walls; rows below the grid are a bottomless pit.
type Terrain struct {
	width  int
	height int
	solid  []bool
}

// ParseTerrain builds a Terrain from equally long rows of '#' and '.'.
func ParseTerrain(rows []string) (*Terrain, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("terrain: no rows")
	}
	w := len(rows[0])
	t := &Terrain{width: w, height: len(rows), solid: make([]bool, w*len(rows))}
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("terrain: row %d has %d tiles, want %d", y, len(row), w)
		}
		for x := 0; x < w; x++ {
			switch row[x] {
			case TileSolid:
				t.solid[y*w+x] = true
			case TileEmpty:
			default:
				return nil, fmt.Errorf("terrain: row %d col %d: unknown tile %q", y, x, row[x])
			}
		}
	}
	return t, nil
}

func (t *Terrain) Width() int  { return t.width }
func (t *Terrain) Height() int { return t.height }

// Solid reports whether the tile at (col, row) blocks movement.
func (t *Terrain) Solid(col, row int) bool {
	if col < 0 || col >= t.width {
		return true
	}
	if row < 0 || row >= t.height {
		return false
	}
	return t.solid[row*t.width+col]
}

// SolidAt is Solid for a continuous position.
func (t *Terrain) SolidAt(x, y float64) bool {
	return t.Solid(int(math.Floor(x)), int(math.Floor(y)))
}

// Rows renders the terrain back into level-file form.
func (t *Terrain) Rows() []string {
	rows := make([]string, t.height)
	for y := 0; y < t.height; y++ {
		b := make([]byte, t.width)
		for x := 0; x < t.width; x++ {
			if t.solid[y*t.width+x] {
				b[x] = TileSolid
			} else {
				b[x] = TileEmpty
			}
		}
		rows[y] = string(b)
	}
	return rows
}
