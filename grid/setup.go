package grid

import (
	"strconv"

	"github.com/cpmech/gosl/chk"
)

// Setup parses a cellsize expression from the input script (spec §4.3:
// "setup(str) parses a cellsize expression") and stores it on the grid.
// Only plain numeric literals are supported; the input-script tokenizer
// (sim.Input) is responsible for resolving named variables before calling
// Setup, so a bare float64 parse is always sufficient here.
func (g *Grid) Setup(expr string) error {
	v, err := strconv.ParseFloat(expr, 64)
	if err != nil {
		return chk.Err("grid: could not parse cellsize expression %q: %v", expr, err)
	}
	if v <= 0 {
		return chk.Err("grid: cellsize must be positive, got %v", v)
	}
	g.Cellsize = v
	return nil
}
