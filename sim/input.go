package sim

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	gio "github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/fun"

	"github.com/dylanagius/karamelo/grid"
	"github.com/dylanagius/karamelo/material"
	"github.com/dylanagius/karamelo/method"
	"github.com/dylanagius/karamelo/rankdomain"
	"github.com/dylanagius/karamelo/simerr"
	"github.com/dylanagius/karamelo/solid"
)

// Input tokenizes an input script and applies each command to a
// Simulation, one line at a time: method, material, dimension, region,
// solid, fix, dump, run, run_time, run_until, run_while. Everything after
// '#' on a line is a comment, blank lines are skipped. This is
// deliberately line-oriented rather than a full grammar, matching the
// reference implementation's own nextword()-based tokenizer (input.cpp),
// which never does more than split on whitespace and strip quotes.
type Input struct {
	Sim *Simulation
}

// NewInput returns an Input bound to sim.
func NewInput(sim *Simulation) *Input {
	return &Input{Sim: sim}
}

// Run reads every line from r and dispatches it, stopping at the first
// line that returns an error (a ParseError or ConfigError, typically, but
// any *simerr.Error the Simulation itself raises during a run/run_time/
// run_until/run_while command propagates the same way).
func (in *Input) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if err := in.dispatch(fields); err != nil {
			if se, ok := err.(*simerr.Error); ok {
				out := *se
				out.Message = gio.Sf("line %d: %s", lineNo, se.Message)
				return &out
			}
			return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("line %d: %v", lineNo, err)}
		}
	}
	return scanner.Err()
}

func (in *Input) dispatch(f []string) error {
	switch f[0] {
	case "method":
		return in.cmdMethod(f[1:])
	case "material":
		return in.cmdMaterial(f[1:])
	case "dimension":
		return in.cmdDimension(f[1:])
	case "region":
		return in.cmdRegion(f[1:])
	case "solid":
		return in.cmdSolid(f[1:])
	case "fix":
		return in.cmdFix(f[1:])
	case "dump":
		return in.cmdDump(f[1:])
	case "run":
		return in.cmdRun(f[1:])
	case "run_time":
		return in.cmdRunTime(f[1:])
	case "run_until":
		return in.cmdRunUntil(f[1:])
	case "run_while":
		return in.cmdRunWhile(f[1:])
	default:
		return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("unknown command %q", f[0])}
	}
}

// method <style> [flip <α>] [shape <linear|quadratic-spline|cubic-spline|Bernstein-quadratic>]
func (in *Input) cmdMethod(args []string) error {
	if len(args) < 1 {
		return &simerr.Error{Kind: simerr.ParseError, Message: "method: missing style"}
	}
	style := args[0]
	flip := 0.0
	shapeName := "linear"
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "flip":
			if i+1 >= len(args) {
				return &simerr.Error{Kind: simerr.ParseError, Message: "method: flip missing value"}
			}
			v, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil {
				return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("method: bad flip value %q", args[i+1])}
			}
			flip = v
			i++
		case "shape":
			if i+1 >= len(args) {
				return &simerr.Error{Kind: simerr.ParseError, Message: "method: shape missing value"}
			}
			shapeName = args[i+1]
			i++
		case "apic":
			in.Sim.APIC = true
		case "usl", "musl":
			in.Sim.Flow = args[i]
		}
	}
	m, err := method.New(style, shapeName, flip)
	if err != nil {
		return err
	}
	in.Sim.Method = m
	return nil
}

// material <id> <linear|neo-hookean|eos+strength+damage> <params...>
// Parameters are name=value pairs collected verbatim into a
// material.Params list; the material is built and added to the registry
// right away, and a later solid command names it by id.
func (in *Input) cmdMaterial(args []string) error {
	if len(args) < 2 {
		return &simerr.Error{Kind: simerr.ParseError, Message: "material: need <id> <kind>"}
	}
	id, kind := args[0], args[1]
	subModels := map[string]string{}
	var numeric []string
	for _, a := range args[2:] {
		parts := strings.SplitN(a, "=", 2)
		if len(parts) != 2 {
			return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("material: bad parameter %q, want name=value", a)}
		}
		if parts[0] == "eos" || parts[0] == "strength" || parts[0] == "damage" {
			subModels[parts[0]] = parts[1]
			continue
		}
		numeric = append(numeric, a)
	}
	prms, err := parsePrms(numeric)
	if err != nil {
		return err
	}
	mat, err := buildMaterial(id, kind, prms, subModels)
	if err != nil {
		return err
	}
	return in.Sim.Materials.Add(mat)
}

// dimension <lo.x> <lo.y> <lo.z> <hi.x> <hi.y> <hi.z> sets the overall
// problem box, used for MPI subdomain decomposition and as the UL particle
// escape bound. Not present in the reference implementation's own (mostly
// stubbed-out) input.cpp; added because every command after it needs a
// rank-owned subdomain to clip against.
func (in *Input) cmdDimension(args []string) error {
	nums, err := parseFloats(args)
	if err != nil || len(nums) != 6 {
		return &simerr.Error{Kind: simerr.ParseError, Message: "dimension: need 6 bounds"}
	}
	lo := [3]float64{nums[0], nums[1], nums[2]}
	hi := [3]float64{nums[3], nums[4], nums[5]}
	in.Sim.Domain = rankdomain.NewDomain(lo, hi, 3)
	in.Sim.BoxLo, in.Sim.BoxHi = lo, hi
	return nil
}

// region <id> <shape> <bounds...>; shape is currently only "box", taking
// lo.x lo.y lo.z hi.x hi.y hi.z.
func (in *Input) cmdRegion(args []string) error {
	if len(args) < 2 {
		return &simerr.Error{Kind: simerr.ParseError, Message: "region: need <id> <shape>"}
	}
	id, shape := args[0], args[1]
	if shape != "box" {
		return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("region: unknown shape %q", shape)}
	}
	nums, err := parseFloats(args[2:])
	if err != nil || len(nums) != 6 {
		return &simerr.Error{Kind: simerr.ParseError, Message: "region box: need 6 bounds"}
	}
	in.Sim.Regions.Add(id, rankdomain.Box{
		Lo: [3]float64{nums[0], nums[1], nums[2]},
		Hi: [3]float64{nums[3], nums[4], nums[5]},
	})
	return nil
}

// solid <id> <region-id> <particles-per-cell> <material-id> [cellsize]
func (in *Input) cmdSolid(args []string) error {
	if len(args) < 4 {
		return &simerr.Error{Kind: simerr.ParseError, Message: "solid: need <id> <region-id> <nip> <material-id> [cellsize]"}
	}
	id, regionID := args[0], args[1]
	nip, err := strconv.Atoi(args[2])
	if err != nil {
		return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("solid: bad particles-per-cell %q", args[2])}
	}
	matID := args[3]
	cellsize := 0.0
	if len(args) > 4 {
		cellsize, err = strconv.ParseFloat(args[4], 64)
		if err != nil {
			return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("solid: bad cellsize %q", args[4])}
		}
	}
	region, ok := in.Sim.Regions.Find(regionID)
	if !ok {
		return &simerr.Error{Kind: simerr.ConfigError, Message: gio.Sf("solid %q: region %q not found", id, regionID)}
	}
	mat := in.Sim.Materials.Find(matID)
	if mat == nil {
		return &simerr.Error{Kind: simerr.ConfigError, Message: gio.Sf("solid %q: material %q not found", id, matID)}
	}
	if in.Sim.Method == nil {
		return &simerr.Error{Kind: simerr.ConfigError, Message: "solid: no method set (missing `method` command)"}
	}
	dim := 3
	s := &solid.Solid{ID: id, Dim: dim, Mat: mat, MethodStyle: in.Sim.Method.Style}
	opts := solid.PopulateOptions{
		Dim:        dim,
		Cellsize:   cellsize,
		NIPPerCell: nip,
		IsCPDI:     in.Sim.Method.IsCPDI(),
		IsTL:       in.Sim.Method.IsTL(),
		SubLo:      in.Sim.Domain.SubLo,
		SubHi:      in.Sim.Domain.SubHi,
	}
	if !opts.IsTL {
		if in.Sim.Grid == nil {
			in.Sim.Grid = &grid.Grid{Dimension: dim, Cellsize: cellsize}
			in.Sim.Grid.Init(in.Sim.BoxLo, in.Sim.BoxHi)
		}
		s.Grid = in.Sim.Grid
	}
	if err := s.Populate(region, opts); err != nil {
		return err
	}
	rankdomain.AssignGlobalTags(s)
	in.Sim.Solids = append(in.Sim.Solids, s)
	return nil
}

// fix <id> <kind> <group> <params...>
func (in *Input) cmdFix(args []string) error {
	if len(args) < 3 {
		return &simerr.Error{Kind: simerr.ParseError, Message: "fix: need <id> <kind> <group>"}
	}
	id, kind, group := args[0], args[1], args[2]
	solidIndex, err := in.resolveGroup(group)
	if err != nil {
		return err
	}
	params := args[3:]
	switch kind {
	case "initial_velocity_particles":
		fx := &InitialVelocityParticles{SolidIndex: solidIndex, GroupBit: GroupAll}
		for i := 0; i+1 < len(params); i += 2 {
			v, err := strconv.ParseFloat(params[i+1], 64)
			if err != nil {
				return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("fix %s: bad value %q for axis %q", id, params[i+1], params[i])}
			}
			switch params[i] {
			case "x":
				fx.X, fx.XSet = v, true
			case "y":
				fx.Y, fx.YSet = v, true
			case "z":
				fx.Z, fx.ZSet = v, true
			default:
				return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("fix %s: unknown axis %q", id, params[i])}
			}
		}
		in.Sim.Fixes = append(in.Sim.Fixes, fx)
	case "strain_energy":
		every := int64(1)
		if len(params) > 0 {
			n, err := strconv.ParseInt(params[0], 10, 64)
			if err != nil {
				return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("fix %s: bad every %q", id, params[0])}
			}
			every = n
		}
		in.Sim.Fixes = append(in.Sim.Fixes, &StrainEnergy{ID: id, SolidIndex: solidIndex, GroupBit: GroupAll, ReportEvery: every})
	default:
		return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("fix: unknown kind %q", kind)}
	}
	return nil
}

// resolveGroup maps a fix's <group> token to the target solid index: "all"
// applies to every solid (-1), anything else must name a registered
// solid's id (the same id its `solid` command line was given).
func (in *Input) resolveGroup(group string) (int, error) {
	if group == "all" {
		return -1, nil
	}
	for i, s := range in.Sim.Solids {
		if s.ID == group {
			return i, nil
		}
	}
	return 0, &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("fix: unknown group %q", group)}
}

// dump <id> <every> <filename-pattern>
func (in *Input) cmdDump(args []string) error {
	if len(args) < 3 {
		return &simerr.Error{Kind: simerr.ParseError, Message: "dump: need <id> <every> <pattern>"}
	}
	every, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("dump: bad every %q", args[1])}
	}
	in.Sim.Dumps = append(in.Sim.Dumps, &Dump{ID: args[0], Every: every, Pattern: args[2]})
	return nil
}

func (in *Input) cmdRun(args []string) error {
	if len(args) < 1 {
		return &simerr.Error{Kind: simerr.ParseError, Message: "run: need <n>"}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("run: bad step count %q", args[0])}
	}
	return in.Sim.Run(n)
}

func (in *Input) cmdRunTime(args []string) error {
	if len(args) < 1 {
		return &simerr.Error{Kind: simerr.ParseError, Message: "run_time: need <t>"}
	}
	t, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("run_time: bad duration %q", args[0])}
	}
	var elapsed float64
	for elapsed < t {
		if in.Sim.Dt <= 0 {
			return &simerr.Error{Kind: simerr.ConfigError, Message: "run_time: dt is not positive, cannot advance"}
		}
		if err := in.Sim.Step(); err != nil {
			return err
		}
		elapsed += in.Sim.Dt
	}
	return nil
}

// run_until <var> <op> <value> steps the simulation until sim.Vars[var] op
// value becomes true, checked after every step (so it always runs at least
// one step). op is one of < <= > >= ==. var must already exist in sim.Vars
// (populated by a fix such as StrainEnergy) or the comparison runs against
// 0, which is rarely what the script intends but matches the map's zero
// value rather than erroring, since sim.Vars entries come into existence
// lazily as fixes report.
func (in *Input) cmdRunUntil(args []string) error {
	name, cmp, err := parseRunCondition(args)
	if err != nil {
		return err
	}
	for {
		if err := in.Sim.Step(); err != nil {
			return err
		}
		if cmp(in.Sim.Vars[name]) {
			return nil
		}
	}
}

// run_while <var> <op> <value> steps the simulation for as long as
// sim.Vars[var] op value holds, stopping on the first step where it no
// longer does (checked before each step, so a condition that is already
// false runs zero steps).
func (in *Input) cmdRunWhile(args []string) error {
	name, cmp, err := parseRunCondition(args)
	if err != nil {
		return err
	}
	for cmp(in.Sim.Vars[name]) {
		if err := in.Sim.Step(); err != nil {
			return err
		}
	}
	return nil
}

func parseRunCondition(args []string) (string, func(float64) bool, error) {
	if len(args) != 3 {
		return "", nil, &simerr.Error{Kind: simerr.ParseError, Message: "need <var> <op> <value>, where op is one of < <= > >= =="}
	}
	name, op := args[0], args[1]
	value, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return "", nil, &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("bad comparison value %q", args[2])}
	}
	switch op {
	case "<":
		return name, func(v float64) bool { return v < value }, nil
	case "<=":
		return name, func(v float64) bool { return v <= value }, nil
	case ">":
		return name, func(v float64) bool { return v > value }, nil
	case ">=":
		return name, func(v float64) bool { return v >= value }, nil
	case "==":
		return name, func(v float64) bool { return v == value }, nil
	default:
		return "", nil, &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("unknown comparison operator %q", op)}
	}
}

func parsePrms(args []string) (material.Params, error) {
	var prms material.Params
	for _, a := range args {
		parts := strings.SplitN(a, "=", 2)
		if len(parts) != 2 {
			return nil, &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("material: bad parameter %q, want name=value", a)}
		}
		v, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("material: bad value in %q", a)}
		}
		prms = append(prms, &fun.Prm{N: parts[0], V: v})
	}
	return prms, nil
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func buildMaterial(id, kind string, prms material.Params, subModels map[string]string) (*material.Material, error) {
	mat := &material.Material{
		Name:           id,
		Rho0:           material.Find(prms, "rho0"),
		K:              material.Find(prms, "K"),
		G:              material.Find(prms, "G"),
		Lambda:         material.Find(prms, "lambda"),
		SignalVelocity: material.Find(prms, "signal_velocity"),
	}
	switch kind {
	case "linear", "neo-hookean":
		// no EOS/Strength/Damage: Neo-Hookean branch.
	case "eos+strength+damage":
		if name, ok := subModels["eos"]; ok {
			eos, err := material.NewEOS(name, prms)
			if err != nil {
				return nil, err
			}
			mat.EOS = eos
		}
		if name, ok := subModels["strength"]; ok {
			str, err := material.NewStrength(name, prms)
			if err != nil {
				return nil, err
			}
			mat.Strength = str
		}
		if name, ok := subModels["damage"]; ok {
			dmg, err := material.NewDamage(name, prms)
			if err != nil {
				return nil, err
			}
			mat.Damage = dmg
		}
	default:
		return nil, &simerr.Error{Kind: simerr.ParseError, Message: gio.Sf("material: unknown kind %q", kind)}
	}
	return mat, nil
}
