package sim

import "github.com/dylanagius/karamelo/mathkit"

// Fix is a per-timestep callback, mirroring the reference implementation's
// Fix base class: InitialIntegrate runs after the grid momentum update
// (before grid-to-points gather), FinalIntegrate runs after the stress
// update. Either may be a no-op.
type Fix interface {
	InitialIntegrate(sim *Simulation)
	FinalIntegrate(sim *Simulation)
}

// GroupAll is the mask bit every populated particle carries by default
// (solid.Populate sets Mask[ip] = GroupAll), matching group->bitmask bit 0
// ("all") in the reference implementation. No `group <name> ...` input
// command is implemented (no group.cpp source was retrieved to ground its
// region-assignment syntax), so GroupAll is the only bit any particle ever
// carries today; the GroupBit field and the mask test below exist so a
// future `group` command only has to start setting other bits; they are
// not dead plumbing for the one bit that does exist.
const GroupAll uint64 = 1

// InitialVelocityParticles sets every particle in the target solid whose
// Mask matches GroupBit to velocity (X,Y,Z) on the very first timestep
// only, per-axis opt-out via the Set flags (NULL in the input script
// leaves that axis alone).
type InitialVelocityParticles struct {
	SolidIndex       int // -1 applies to every solid
	GroupBit         uint64
	X, Y, Z          float64
	XSet, YSet, ZSet bool

	applied bool
}

// InitialIntegrate implements Fix.
func (f *InitialVelocityParticles) InitialIntegrate(sim *Simulation) {
	if sim.Timestep != 1 || f.applied {
		return
	}
	f.applied = true
	groupbit := f.GroupBit
	if groupbit == 0 {
		groupbit = GroupAll
	}
	for idx, s := range sim.Solids {
		if f.SolidIndex != -1 && f.SolidIndex != idx {
			continue
		}
		for ip := range s.Particles.V {
			if s.Particles.Mask[ip]&groupbit == 0 {
				continue
			}
			v := s.Particles.V[ip]
			if f.XSet {
				v[0] = f.X
			}
			if f.YSet {
				v[1] = f.Y
			}
			if f.ZSet {
				v[2] = f.Z
			}
			s.Particles.V[ip] = v
		}
	}
}

// FinalIntegrate implements Fix; this fix has nothing to do after the
// stress update.
func (f *InitialVelocityParticles) FinalIntegrate(sim *Simulation) {}

// StrainEnergy accumulates Es = sum 0.5*vol*(sigma : strain_el) across the
// target solid(s), restricted to particles whose Mask matches GroupBit,
// every ReportEvery steps, publishing the result into sim.Vars under
// ID+"_s".
type StrainEnergy struct {
	ID          string
	SolidIndex  int
	GroupBit    uint64
	ReportEvery int64
}

// InitialIntegrate implements Fix; strain energy has nothing to do before
// the gather.
func (f *StrainEnergy) InitialIntegrate(sim *Simulation) {}

// FinalIntegrate implements Fix.
func (f *StrainEnergy) FinalIntegrate(sim *Simulation) {
	if f.ReportEvery > 0 && sim.Timestep%f.ReportEvery != 0 {
		return
	}
	groupbit := f.GroupBit
	if groupbit == 0 {
		groupbit = GroupAll
	}
	var es float64
	for idx, s := range sim.Solids {
		if f.SolidIndex != -1 && f.SolidIndex != idx {
			continue
		}
		for ip := 0; ip < s.Particles.N; ip++ {
			if s.Particles.Mask[ip]&groupbit == 0 {
				continue
			}
			es += 0.5 * s.Particles.Vol[ip] * frobeniusInner(s.Particles.Sigma[ip], s.Particles.StrainEl[ip])
		}
	}
	sim.Vars[f.ID+"_s"] = es
}

// frobeniusInner returns the double contraction a:b = sum_ij a_ij*b_ij.
func frobeniusInner(a, b mathkit.Mat3) float64 {
	var s float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s += a[i][j] * b[i][j]
		}
	}
	return s
}
