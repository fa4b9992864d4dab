/*
 * main.go, part of paraguas
 *
 *
 * Copyright 2026 Raul Mera <rmera{at}usach(dot)cl>
 *
 *
 *  This program is free software; you can redistribute it and/or modify
 *  it under the terms of the GNU General Public License as published by
 *  the Free Software Foundation; either version 2 of the License, or
 *  (at your option) any later version.
 *
 *  This program is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 *  GNU General Public License for more details.
 *
 *  You should have received a copy of the GNU General Public License along
 *  with this program; if not, write to the Free Software Foundation, Inc.,
 *  51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 *
 *
 */

//paraguas runs umbrella-sampling sweeps along a torsion: for each target
//value of the angle it equilibrates with a loose restraint, then with the
//production restraint, then samples, chaining the state files from one
//stage into the next and driving GROMACS+PLUMED for the actual work. It
//also re-evaluates the umbrella biases over a concatenated trajectory
//(the input the WHAM post-processing wants), tidies up the run directory,
//and sanity-checks the per-window sampling.

package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	chem "github.com/rmera/gochem"
	"github.com/rmera/scu"
)

// Global variables... Sometimes, you gotta use'em
var verb int

// If level is larger or equal, prints the d arguments to stderr
// otherwise, does nothing.
func LogV(level int, d ...interface{}) {
	if level <= verb {
		fmt.Fprintln(os.Stderr, d...)
	}
}

func CErr(err error, info string) {
	if err != nil {
		log.Fatal(err, " ", info)
	}
}

// gets a file's extension, i.e. whatever is written after the last point/dot in the filename
func getExtension(name string) string {
	fs := strings.Split(name, ".")
	return strings.ToLower(fs[len(fs)-1])
}

// reads the starting structure and returns the current value of the
// torsion defined by the four 1-based atoms, so the operator can tell
// before burning CPU time whether the sweep range makes sense.
func inspect(geoname string, atoms []int) (float64, error) {
	var mol *chem.Molecule
	var err error
	switch getExtension(geoname) {
	case "gro":
		mol, err = chem.GroFileRead(geoname)
	case "pdb":
		mol, err = chem.PDBFileRead(geoname)
	default:
		mol, err = chem.XYZFileRead(geoname)
	}
	if err != nil {
		return 0, err
	}
	for _, a := range atoms {
		if a < 1 || a > mol.Len() {
			return 0, fmt.Errorf("inspect: atom %d out of range, %s has %d atoms", a, geoname, mol.Len())
		}
	}
	c := mol.Coords[0]
	phi := chem.Dihedral(c.VecView(atoms[0]-1), c.VecView(atoms[1]-1), c.VecView(atoms[2]-1), c.VecView(atoms[3]-1))
	return phi, nil
}

func parseAtoms(s string) []int {
	f := strings.Split(s, ",")
	ret := make([]int, 0, len(f))
	for _, v := range f {
		ret = append(ret, scu.MustAtoi(strings.TrimSpace(v)))
	}
	return ret
}

func main() {
	//There are _tons_ of flags, but the defaults cover the normal case.
	start := flag.Float64("start", -3.10, "first target of the sweep, in radians unless -deg is given")
	stop := flag.Float64("stop", 3.10, "last target of the sweep (the last actual window is the last grid point not past it)")
	step := flag.Float64("step", 0.05, "spacing between targets; negative sweeps downwards")
	atomstr := flag.String("atoms", "5,7,9,15", "the 4 atoms (1-based, comma-separated) defining the restrained torsion")
	coord := flag.String("coord", "phi", "name of the restrained coordinate in the generated PLUMED files")
	kweak := flag.Float64("kweak", 100.0, "restraint stiffness (kJ/mol/rad^2) for the loose equilibration")
	kstrong := flag.Float64("kstrong", 500.0, "restraint stiffness for the stiff equilibration and production")
	eqstride := flag.Int("eqstride", 500, "print stride for the equilibration stages")
	usstride := flag.Int("usstride", 100, "print stride for the production stage")
	conf := flag.String("conf", "conf.gro", "starting structure")
	ref := flag.String("ref", "", "restraint reference structure; the starting structure if empty")
	top := flag.String("top", "topol.top", "GROMACS topology")
	mdp1 := flag.String("mdp1", "eq1.mdp", "parameter file for the loose equilibration")
	mdp2 := flag.String("mdp2", "eq2.mdp", "parameter file for the stiff equilibration")
	mdpus := flag.String("mdpus", "us.mdp", "parameter file for the production runs")
	gmxbin := flag.String("gmx", "gmx", "the GROMACS binary")
	plumedbin := flag.String("plumed", "plumed", "the PLUMED binary, for the reweight mode")
	maxwarn := flag.Int("maxwarn", 0, "warnings tolerated by grompp")
	traj := flag.String("traj", "alltraj.xtc", "the concatenated trajectory, for the reweight mode")
	rwstride := flag.Int("rwstride", 1, "trajectory stride for the reweight mode")
	dir := flag.String("dir", ".", "the directory where everything happens")
	cpus := flag.Int("cpus", -1, "umbrellas reweighted at a time. If a number <0 is given, all logical CPUs are used")
	keepgoing := flag.Bool("keepgoing", false, "after a window fails, go on with the remaining ones instead of stopping")
	deg := flag.Bool("deg", false, "take -start, -stop and -step in degrees")
	minoverlap := flag.Float64("minoverlap", 0.05, "overlap fraction below which the check mode complains about a window")
	verbose := flag.Int("verbose", 1, "Level of verbosity, the higher, the more verbose.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "paraguas: umbrella-sampling sweeps along a torsion, on top of GROMACS+PLUMED.\nUse:\n  %s [flags] run|reweight|sort|check\n\n  run       the three-stage sweep over the targets\n  reweight  re-evaluate umbrella biases over the concatenated trajectory\n  sort      partition a finished run directory by file prefix\n  check     per-window sampling statistics and overlap\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	verb = *verbose
	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *deg {
		d2r := math.Pi / 180
		*start *= d2r
		*stop *= d2r
		*step *= d2r
	}
	atoms := parseAtoms(*atomstr)
	if *ref == "" {
		*ref = *conf
	}
	switch args[0] {
	case "run":
		vals, err := Seq(*start, *stop, *step)
		CErr(err, "run")
		phi, err := inspect(filepath.Join(*dir, *conf), atoms)
		CErr(err, "run")
		LogV(1, fmt.Sprintf("%s in %s is now at %6.3f rad (%6.1f deg); sweeping %d windows", *coord, *conf, phi, phi*180/math.Pi, len(vals)))
		gmx := NewGmxHandle()
		gmx.SetCommand(*gmxbin)
		gmx.SetWorkDir(*dir)
		gmx.SetMaxWarn(*maxwarn)
		S := &Sweep{Gmx: gmx, Values: vals, Coord: *coord, Atoms: atoms, Conf: *conf, Ref: *ref, Top: *top, WorkDir: *dir, KeepGoing: *keepgoing}
		stages := DefaultStages(*mdp1, *mdp2, *mdpus, *kweak, *kstrong, *eqstride, *usstride)
		CErr(S.Run(stages), "run")
		LogV(1, "sweep finished,", len(vals), "windows")
	case "reweight":
		vals, err := Seq(*start, *stop, *step)
		CErr(err, "reweight")
		if *cpus < 0 {
			*cpus = runtime.NumCPU()
		}
		pl := NewPlumedHandle()
		pl.SetCommand(*plumedbin)
		pl.SetWorkDir(*dir)
		R := &Reweight{Plumed: pl, Values: vals, Coord: *coord, Atoms: atoms, Kappa: *kstrong, Traj: *traj, Stride: *rwstride, WorkDir: *dir, CPUs: *cpus, KeepGoing: *keepgoing}
		CErr(R.Run(), "reweight")
		LogV(1, "reweighting finished,", len(vals), "umbrellas")
	case "sort":
		CErr(Reorganize(*dir, DefaultRules()), "sort")
	case "check":
		vals, err := Seq(*start, *stop, *step)
		CErr(err, "check")
		ws, werr := WindowStats(filepath.Join(*dir, "COLVAR"), vals)
		fmt.Printf("%8s %8s %9s %9s %9s\n", "window", "samples", "mean", "stdev", "overlap")
		for _, w := range ws {
			over := fmt.Sprintf("%9.3f", w.Overlap)
			if math.IsNaN(w.Overlap) {
				over = fmt.Sprintf("%9s", "--")
			}
			fmt.Printf("%8s %8d %9.3f %9.3f %s\n", w.Label, w.N, w.Mean, w.Stdev, over)
			if !math.IsNaN(w.Overlap) && w.Overlap < *minoverlap {
				LogV(0, "window", w.Label, "barely overlaps its neighbor; the free energy will be unreliable around it")
			}
		}
		CErr(werr, "check")
	default:
		flag.Usage()
		log.Fatal("unknown mode ", args[0])
	}
}
