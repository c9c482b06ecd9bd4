package sim

import (
	"math"
	"testing"

	"github.com/dylanagius/karamelo/grid"
	"github.com/dylanagius/karamelo/mathkit"
	"github.com/dylanagius/karamelo/material"
	"github.com/dylanagius/karamelo/method"
	"github.com/dylanagius/karamelo/rankdomain"
	"github.com/dylanagius/karamelo/solid"
)

// newOneParticleSim builds a one-particle, two-node 1D UL simulation, the
// minimal setup Step can advance without any input script.
func newOneParticleSim(t *testing.T) *Simulation {
	t.Helper()

	g := &grid.Grid{Dimension: 1, Cellsize: 1}
	g.Init([3]float64{0, 0, 0}, [3]float64{1, 0, 0})

	mat := &material.Material{Rho0: 1, K: 1, G: 0.5}
	s := &solid.Solid{Dim: 1, Grid: g, MethodStyle: "ulmpm", Mat: mat}
	s.Particles.Grow(1, 1)
	s.Particles.Mask[0] = GroupAll
	s.Particles.X0[0] = grid.Vec3{0.5, 0, 0}
	s.Particles.X[0] = grid.Vec3{0.5, 0, 0}
	s.Particles.Mass[0] = 1
	s.Particles.Vol0[0] = 1
	s.Particles.Vol[0] = 1
	s.Particles.Rho0[0] = 1
	s.Particles.Rho[0] = 1
	s.Particles.J[0] = 1
	s.Particles.Fgrad[0] = mathkit.Identity3()
	s.Particles.R[0] = mathkit.Identity3()
	s.DtCFL = math.Inf(1)

	m, err := method.New("ulmpm", "linear", 0)
	if err != nil {
		t.Fatalf("method.New: %v", err)
	}

	sm := New()
	sm.Solids = []*solid.Solid{s}
	sm.Grid = g
	sm.Method = m
	sm.Dt = 0.01
	sm.SafetyFactor = 0.5
	sm.Flow = "usl"
	sm.BoxLo = [3]float64{-10, -10, -10}
	sm.BoxHi = [3]float64{10, 10, 10}
	return sm
}

// TestStepConservesMassWithNoBoundaryMotion checks that a single step with
// no applied fixes or boundary velocity leaves total particle mass and
// particle position unchanged (spec.md's mass-conservation invariant, the
// degenerate zero-motion case).
func TestStepConservesMassWithNoBoundaryMotion(t *testing.T) {
	sm := newOneParticleSim(t)
	massBefore := sm.TotalParticleMass()
	x0 := sm.Solids[0].Particles.X[0]

	if err := sm.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if got := sm.TotalParticleMass(); got != massBefore {
		t.Fatalf("total mass changed: got %v, want %v", got, massBefore)
	}
	got := sm.Solids[0].Particles.X[0]
	for d := 0; d < 3; d++ {
		if math.Abs(got[d]-x0[d]) > 1e-12 {
			t.Fatalf("particle moved with zero nodal velocity: got %v, want %v", got, x0)
		}
	}
	if sm.Timestep != 1 {
		t.Fatalf("Timestep = %d, want 1", sm.Timestep)
	}
}

// TestInitialVelocityParticlesAppliesOnceAtStepOne checks that the fix sets
// the particle's velocity exactly on timestep 1 and is a no-op on every
// later timestep, driving InitialIntegrate directly (the gather phase that
// follows it in a full Step would otherwise overwrite V from the grid,
// masking the fix's own once-only bookkeeping).
func TestInitialVelocityParticlesAppliesOnceAtStepOne(t *testing.T) {
	sm := newOneParticleSim(t)
	fix := &InitialVelocityParticles{SolidIndex: -1, X: 2.0, XSet: true}

	sm.Timestep = 1
	fix.InitialIntegrate(sm)
	if v := sm.Solids[0].Particles.V[0][0]; math.Abs(v-2.0) > 1e-9 {
		t.Fatalf("V.x after timestep 1 = %v, want 2.0", v)
	}

	sm.Solids[0].Particles.V[0] = grid.Vec3{9, 0, 0}
	sm.Timestep = 2
	fix.InitialIntegrate(sm)
	if v := sm.Solids[0].Particles.V[0][0]; math.Abs(v-9) > 1e-12 {
		t.Fatalf("fix re-applied past timestep 1: V.x = %v, want left at 9", v)
	}
}

// TestStrainEnergyReportsEveryN checks that StrainEnergy only publishes
// into sim.Vars on the steps its ReportEvery divides, and leaves the
// previous value untouched on the steps in between.
func TestStrainEnergyReportsEveryN(t *testing.T) {
	sm := newOneParticleSim(t)
	fix := &StrainEnergy{ID: "es", SolidIndex: -1, ReportEvery: 2}
	sm.Fixes = []Fix{fix}

	if err := sm.Step(); err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	if _, ok := sm.Vars["es_s"]; ok {
		t.Fatalf("es_s published on step 1, want only on even steps")
	}

	if err := sm.Step(); err != nil {
		t.Fatalf("Step 2: %v", err)
	}
	if _, ok := sm.Vars["es_s"]; !ok {
		t.Fatalf("es_s not published on step 2")
	}
}

// TestReduceMinDtIsIdentityWithoutMPI checks the single-process fallback
// path every test in this package relies on implicitly.
func TestReduceMinDtIsIdentityWithoutMPI(t *testing.T) {
	got := rankdomain.ReduceMinDt(0.25)
	if got != 0.25 {
		t.Fatalf("ReduceMinDt = %v, want 0.25 unchanged with MPI off", got)
	}
}
