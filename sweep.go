/*
 * sweep.go, part of paraguas
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

package main

import (
	"fmt"
	"os"
	"path/filepath"
)

//This file contains the actual sweep: for each target value of the
//torsion, a weak-restraint equilibration, a strong-restraint
//equilibration and a production run, each one starting from the
//structure the previous one left behind. Windows are independent of
//each other; the stages within a window are not.

// A Stage is one of the three runs done per window. Only the stiffness
// of the restraint, the print stride and the filenames change from stage
// to stage; the restrained coordinate itself never does.
type Stage struct {
	Name         string //also the prefix of every file the stage produces
	MDP          string //GROMACS parameter file
	Kappa        float64
	Stride       int
	ColvarPrefix string //the printed time series is ColvarPrefix+label
	UseCPT       bool   //carry the previous stage's dynamical state too
}

// A StageError says which window and which stage went wrong, so a sweep
// can be resumed from there instead of from scratch.
type StageError struct {
	Label string
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("window %s, stage %s: %v", e.Label, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// A Sweep holds everything shared by all windows: the handle to the MD
// engine, the restrained coordinate, the fixed input files and the list
// of stages. Values is the full list of window targets, in the order
// they will run.
type Sweep struct {
	Gmx       *GmxHandle
	Values    []float64
	Coord     string //name of the restrained coordinate
	Atoms     []int  //the 4 atoms defining it, 1-based
	Conf      string //starting structure for the first stage
	Ref       string //restraint reference structure, fixed for all windows
	Top       string //topology
	WorkDir   string
	KeepGoing bool //go on to later windows after a failed one
}

func (S *Sweep) path(name string) string {
	return filepath.Join(S.WorkDir, name)
}

// Run executes every stage for every window, in order. On the first
// window failure it stops and returns the StageError, unless KeepGoing
// is set, in which case it finishes the remaining windows and returns an
// error summarizing how many were lost. A window failure never leaves a
// later stage running on the previous stage's leftovers: the window is
// simply abandoned where it broke.
func (S *Sweep) Run(stages []Stage) error {
	labels, err := Labels(S.Values)
	if err != nil {
		return err
	}
	var failed []error
	for _, label := range labels {
		LogV(1, "window", label)
		err := S.window(label, stages)
		if err == nil {
			continue
		}
		if !S.KeepGoing {
			return err
		}
		LogV(0, "abandoning failed window:", err)
		failed = append(failed, err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d windows failed, first failure: %w", len(failed), len(labels), failed[0])
	}
	return nil
}

// window runs the three stages for one target. The structure produced by
// each stage feeds the next one; the production stage additionally takes
// the checkpoint with the dynamical state.
func (S *Sweep) window(label string, stages []Stage) error {
	prev := S.Conf
	prevcpt := ""
	for _, st := range stages {
		rc := &RestraintConfig{
			Name:   S.Coord,
			Atoms:  S.Atoms,
			Kappa:  st.Kappa,
			At:     label,
			Stride: st.Stride,
			Colvar: st.ColvarPrefix + label,
		}
		cfg := fmt.Sprintf("plumed_%s_%s.dat", st.Name, label)
		if err := rc.WriteFile(S.path(cfg)); err != nil {
			return &StageError{label, st.Name, err}
		}
		deffnm := st.Name + "_" + label
		tpr := deffnm + ".tpr"
		cpt := ""
		if st.UseCPT {
			cpt = prevcpt
		}
		if err := S.Gmx.Grompp(st.MDP, prev, S.Ref, cpt, S.Top, tpr); err != nil {
			return &StageError{label, st.Name, err}
		}
		if err := S.Gmx.MDRun(deffnm, cfg); err != nil {
			return &StageError{label, st.Name, err}
		}
		//mdrun exiting 0 is not quite proof that the structure for the
		//next stage landed on disk, so we look before chaining it.
		gro := deffnm + ".gro"
		if err := checkFile(S.path(gro)); err != nil {
			return &StageError{label, st.Name, err}
		}
		prev = gro
		prevcpt = deffnm + ".cpt"
	}
	return nil
}

// checkFile errors if fname is missing or empty.
func checkFile(fname string) error {
	fi, err := os.Stat(fname)
	if err != nil {
		return fmt.Errorf("expected output %s: %v", fname, err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("expected output %s is empty", fname)
	}
	return nil
}

// DefaultStages builds the usual three-stage ladder: loose equilibration,
// stiff equilibration, production with the same stiffness and a finer
// print stride.
func DefaultStages(mdp1, mdp2, mdpus string, kweak, kstrong float64, eqstride, usstride int) []Stage {
	return []Stage{
		{Name: "eq1", MDP: mdp1, Kappa: kweak, Stride: eqstride, ColvarPrefix: "COLVAR_eq1_"},
		{Name: "eq2", MDP: mdp2, Kappa: kstrong, Stride: eqstride, ColvarPrefix: "COLVAR_eq2_"},
		{Name: "us", MDP: mdpus, Kappa: kstrong, Stride: usstride, ColvarPrefix: "COLVAR", UseCPT: true},
	}
}
