// Package rankdomain owns the one thing the core solver packages
// deliberately avoid: MPI. A rank's subdomain, the global/local particle
// count reduction, and the ptag prefix-sum assignment all live here, so
// that solid/method/material/grid stay pure and testable without an MPI
// runtime.
package rankdomain

import (
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/mpi"

	"github.com/dylanagius/karamelo/simerr"
	"github.com/dylanagius/karamelo/solid"
)

// Domain owns one rank's rectangular subdomain of the problem box and the
// collectives needed to keep particle counts, tags and timesteps
// consistent across ranks.
type Domain struct {
	BoxLo, BoxHi [3]float64
	SubLo, SubHi [3]float64
	Dim          int
}

// NewDomain builds a Domain for a box evenly sliced along its longest axis
// across the running MPI ranks (a 1D slab decomposition, matching the
// "one rank owns a rectangular subdomain" contract without requiring a
// general-purpose mesh partitioner).
func NewDomain(lo, hi [3]float64, dim int) *Domain {
	d := &Domain{BoxLo: lo, BoxHi: hi, Dim: dim, SubLo: lo, SubHi: hi}
	if !mpi.IsOn() || mpi.Size() <= 1 {
		return d
	}
	axis := longestAxis(lo, hi, dim)
	n := mpi.Size()
	rank := mpi.Rank()
	length := hi[axis] - lo[axis]
	d.SubLo[axis] = lo[axis] + length*float64(rank)/float64(n)
	d.SubHi[axis] = lo[axis] + length*float64(rank+1)/float64(n)
	return d
}

func longestAxis(lo, hi [3]float64, dim int) int {
	best, bestLen := 0, -1.0
	for d := 0; d < dim; d++ {
		l := hi[d] - lo[d]
		if l > bestLen {
			bestLen = l
			best = d
		}
	}
	return best
}

// Inside reports whether x lies within this rank's subdomain.
func (d *Domain) Inside(x [3]float64) bool {
	for i := 0; i < 3; i++ {
		if x[i] < d.SubLo[i] || x[i] > d.SubHi[i] {
			return false
		}
	}
	return true
}

// AssignGlobalTags computes this rank's prefix-sum offset over np_local
// across all lower-numbered ranks and applies it to s, then returns the
// global particle count np = sum(np_local). With MPI off (single-process
// runs, including tests) it is the identity: offset 0, np = s.Particles.N.
func AssignGlobalTags(s *solid.Solid) int64 {
	npLocal := int64(s.Particles.N)
	if !mpi.IsOn() || mpi.Size() <= 1 {
		s.AssignTags(0)
		return npLocal
	}

	nprocs := mpi.Size()
	rank := mpi.Rank()
	workspace := la.MatAlloc(2, nprocs)
	counts, sums := workspace[0], workspace[1]
	counts[rank] = float64(npLocal)
	mpi.AllReduceSum(sums, counts)

	var offset int64
	var total int64
	for p := 0; p < nprocs; p++ {
		total += int64(sums[p])
		if p < rank {
			offset += int64(sums[p])
		}
	}
	s.AssignTags(offset)
	return total
}

// ReduceMinDt all-reduces dt (this rank's local CFL timestep bound) to the
// minimum across ranks. With MPI off it returns dt unchanged.
func ReduceMinDt(dt float64) float64 {
	if !mpi.IsOn() || mpi.Size() <= 1 {
		return dt
	}
	reduced := make([]float64, 1)
	mpi.AllReduceMin(reduced, []float64{dt})
	return reduced[0]
}

// MigrateParticles would hand particles that have crossed this rank's
// subdomain boundary to the rank that now owns them. Updated-Lagrangian MPI
// runs need this to keep "my particle, my subdomain" true as particles
// move; it is not implemented (see SPEC_FULL.md's decision on MPI particle
// migration), so this always fails loudly rather than silently dropping the
// particles that crossed a boundary.
func (d *Domain) MigrateParticles(s *solid.Solid) error {
	return &simerr.Error{Kind: simerr.ConfigError, Message: "rankdomain: MigrateParticles not implemented, UL MPI runs cannot move particles across rank boundaries"}
}

// Barrier blocks until every rank reaches this call. With MPI off it is a
// no-op.
func Barrier() {
	if mpi.IsOn() {
		mpi.Barrier()
	}
}

// FatalAndBroadcast reports err (expected non-nil) on this rank and, when
// running under MPI, aborts the job so that no sibling rank blocks forever
// waiting on a collective this rank will never reach.
func FatalAndBroadcast(err error) error {
	if mpi.IsOn() {
		mpi.Stop(true)
	}
	se, ok := err.(*simerr.Error)
	if !ok {
		return err
	}
	return se
}
