package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/dylanagius/karamelo/rankdomain"
	"github.com/dylanagius/karamelo/sim"
)

func main() {
	defer func() {
		failed := false
		if err := recover(); err != nil {
			failed = true
			if mpi.Rank() == 0 {
				io.Pfred("\nERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
		if failed {
			os.Exit(1)
		}
	}()
	mpi.Start(false)

	fnamepath, _ := io.ArgToFilename(0, "", ".mpm", true)
	verbose := io.ArgToBool(1, true)

	if mpi.Rank() == 0 && verbose {
		io.Pf("\nkaramelo -- parallel Material Point Method solver\n")
		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"input script", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
		))
	}

	f, err := os.Open(fnamepath)
	if err != nil {
		chk.Panic("cannot open input script %q:\n%v", fnamepath, err)
	}
	defer f.Close()

	s := sim.New()
	s.Domain = rankdomain.NewDomain([3]float64{0, 0, 0}, [3]float64{1, 1, 1}, 3)
	s.BoxLo, s.BoxHi = s.Domain.BoxLo, s.Domain.BoxHi

	// a `dimension` command at the top of the script overrides this default
	// box with the problem's actual bounds before any `region`/`solid`
	// command runs.
	in := sim.NewInput(s)
	if err := in.Run(f); err != nil {
		chk.Panic("run failed:\n%v", err)
	}

	if mpi.Rank() == 0 && verbose {
		io.Pf("\n> total particle mass = %g\n", s.TotalParticleMass())
	}
}
