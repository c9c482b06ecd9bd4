package sim

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	gio "github.com/cpmech/gosl/io"
)

// Dump writes a VTK legacy text snapshot of every particle's position,
// velocity and mass every Every timesteps, to a file named by
// substituting the current timestep for '*' in Pattern. Region geometry
// predicates, full-featured VTK writers and pyplot-style visualisation are
// out of scope (spec's named-but-unspecified external collaborators); this
// is the minimal ASCII legacy format a downstream tool (Paraview) can read
// directly.
type Dump struct {
	ID      string
	Every   int64
	Pattern string
}

// Write renders one snapshot of every solid's particles in sim.
func (d *Dump) Write(sim *Simulation) error {
	fname := strings.Replace(d.Pattern, "*", strconv.FormatInt(sim.Timestep, 10), 1)
	var np int
	for _, s := range sim.Solids {
		np += s.Particles.N
	}

	var hdr, pts, vel, mass bytes.Buffer
	gio.Ff(&hdr, "# vtk DataFile Version 3.0\nkaramelo particle dump\nASCII\nDATASET POLYDATA\n")
	gio.Ff(&pts, "POINTS %d float\n", np)
	for _, s := range sim.Solids {
		for _, x := range s.Particles.X {
			gio.Ff(&pts, "%g %g %g\n", x[0], x[1], x[2])
		}
	}
	gio.Ff(&vel, "\nPOINT_DATA %d\nVECTORS velocity float\n", np)
	for _, s := range sim.Solids {
		for _, v := range s.Particles.V {
			gio.Ff(&vel, "%g %g %g\n", v[0], v[1], v[2])
		}
	}
	gio.Ff(&mass, "SCALARS mass float 1\nLOOKUP_TABLE default\n")
	for _, s := range sim.Solids {
		for _, m := range s.Particles.Mass {
			gio.Ff(&mass, "%g\n", m)
		}
	}

	dir, base := filepath.Split(fname)
	if dir == "" {
		dir = "."
	}
	gio.WriteFileVD(dir, base, &hdr, &pts, &vel, &mass)
	return nil
}
