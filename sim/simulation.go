package sim

import (
	"github.com/cpmech/gosl/io"

	"github.com/dylanagius/karamelo/grid"
	"github.com/dylanagius/karamelo/material"
	"github.com/dylanagius/karamelo/method"
	"github.com/dylanagius/karamelo/rankdomain"
	"github.com/dylanagius/karamelo/solid"
)

// Simulation is the explicit context threaded by reference into every
// per-timestep operation: the replacement for the shared root object the
// reference implementation routes cross-component access through. A
// process may construct several Simulations (e.g. in tests); none of them
// share package-level state.
type Simulation struct {
	Domain    *rankdomain.Domain
	Regions   *rankdomain.RegionRegistry
	Materials *material.Registry
	Method    *method.Method
	Solids    []*solid.Solid
	Grid      *grid.Grid // shared grid, Updated-Lagrangian only

	Vars  map[string]float64
	Fixes []Fix
	Dumps []*Dump

	Dt           float64
	Timestep     int64
	SafetyFactor float64

	APIC bool
	Flow string // "musl" or "usl", UL non-APIC only

	BoxLo, BoxHi [3]float64
}

// New returns an empty Simulation ready for an input script to populate.
func New() *Simulation {
	return &Simulation{
		Regions:      rankdomain.NewRegionRegistry(),
		Materials:    material.NewRegistry(),
		Vars:         make(map[string]float64),
		SafetyFactor: 0.5,
	}
}

// Step advances the simulation by exactly one timestep, running the
// mandatory phase sequence from spec §4.6/§5: P->G scatter, node
// integrate, G->P gather, rate-of-deformation, F/stress update, CFL
// reduce, reset, then a barrier across ranks. Fix callbacks run at the
// points the reference implementation calls them: InitialIntegrate every
// step, after the grid update and before the grid-to-points gather (each
// fix decides for itself which steps it acts on), FinalIntegrate after the
// stress update.
func (sim *Simulation) Step() error {
	sim.Timestep++

	ul := !sim.Method.IsTL()

	for _, s := range sim.Solids {
		if ul || sim.Timestep == 1 {
			sim.Method.ComputeGridWeightFunctionsAndGradients(s)
		}
		sim.Method.ParticlesToGrid(s, sim.APIC)
	}

	for _, s := range sim.Solids {
		sim.Method.UpdateGridState(s, sim.Dt)
	}

	for _, fx := range sim.Fixes {
		fx.InitialIntegrate(sim)
	}

	for _, s := range sim.Solids {
		if err := sim.Method.GridToPoints(s, sim.Dt, sim.BoxLo, sim.BoxHi); err != nil {
			return rankdomain.FatalAndBroadcast(err)
		}
		sim.Method.ComputeRateDeformationGradient(s, sim.APIC, sim.Flow)
		if err := sim.Method.AdvanceDeformationAndStress(s, sim.Dt, sim.Timestep); err != nil {
			return rankdomain.FatalAndBroadcast(err)
		}
	}

	for _, fx := range sim.Fixes {
		fx.FinalIntegrate(sim)
	}

	sim.Dt = rankdomain.ReduceMinDt(method.AdjustDt(sim.Solids, sim.SafetyFactor))

	for _, s := range sim.Solids {
		sim.Method.Reset(s)
	}

	for _, d := range sim.Dumps {
		if d.Every > 0 && sim.Timestep%d.Every == 0 {
			if err := d.Write(sim); err != nil {
				return err
			}
		}
	}
	rankdomain.Barrier()
	return nil
}

// Run advances the simulation n timesteps, stopping early and returning
// the error if any Step fails.
func (sim *Simulation) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := sim.Step(); err != nil {
			io.Pfred("mpm: %v\n", err)
			return err
		}
	}
	return nil
}

// TotalParticleMass sums particle mass across every local solid, for the
// mass-conservation invariant checks.
func (sim *Simulation) TotalParticleMass() float64 {
	var total float64
	for _, s := range sim.Solids {
		for _, m := range s.Particles.Mass {
			total += m
		}
	}
	return total
}
