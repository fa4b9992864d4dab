/*
 * gromacs.go, part of paraguas
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
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

//The handles here follow the shape of goChem's qm handles: a structure
//per external program, with SetCommand/SetWorkDir and methods that build
//the fixed argument patterns. The only thing that ever shells out is
//execRunner; everything above it takes the runner as a field, so the
//whole pipeline can be exercised with a fake one.

// A runner executes the external program name with args inside workdir,
// sending stdout and stderr to logfile (relative to workdir), and returns
// a non-nil error if the program could not run or exited non-zero.
type runner func(workdir, logfile, name string, args ...string) error

func execRunner(workdir, logfile, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = workdir
	if logfile != "" {
		fout, err := os.Create(filepath.Join(workdir, logfile))
		if err != nil {
			return fmt.Errorf("can't open log for %s: %v", name, err)
		}
		defer fout.Close()
		cmd.Stdout = fout
		cmd.Stderr = fout
	}
	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%s %s: %v (see %s)", name, strings.Join(args, " "), err, logfile)
	}
	return nil
}

// GmxHandle drives the GROMACS binary: grompp to prepare a run input
// from a parameter file plus structures, and mdrun to execute it.
type GmxHandle struct {
	command string
	workdir string
	maxwarn int
	run     runner
}

func NewGmxHandle() *GmxHandle {
	return &GmxHandle{command: "gmx", workdir: ".", run: execRunner}
}

// SetCommand sets the name (or full path) of the GROMACS binary.
func (G *GmxHandle) SetCommand(name string) {
	G.command = name
}

// SetWorkDir sets the directory where GROMACS runs and where all the
// relative filenames given to the other methods are resolved.
func (G *GmxHandle) SetWorkDir(dir string) {
	G.workdir = dir
}

// SetMaxWarn sets grompp's tolerated warning count.
func (G *GmxHandle) SetMaxWarn(n int) {
	G.maxwarn = n
}

// Grompp prepares the run input tpr from the parameter file mdp, the
// starting structure conf, the restraint reference ref and the topology
// top. If cpt is not empty the dynamical state in it is carried into the
// prepared run as well.
func (G *GmxHandle) Grompp(mdp, conf, ref, cpt, top, tpr string) error {
	args := []string{"grompp", "-f", mdp, "-c", conf, "-r", ref, "-p", top, "-o", tpr, "-maxwarn", strconv.Itoa(G.maxwarn)}
	if cpt != "" {
		args = append(args, "-t", cpt)
	}
	return G.run(G.workdir, strings.TrimSuffix(tpr, ".tpr")+"_grompp.log", G.command, args...)
}

// MDRun executes the prepared run deffnm.tpr, with all outputs named
// after deffnm. If plumedfile is not empty it is handed to mdrun so the
// restraint acts during the run.
func (G *GmxHandle) MDRun(deffnm, plumedfile string) error {
	args := []string{"mdrun", "-deffnm", deffnm}
	if plumedfile != "" {
		args = append(args, "-plumed", plumedfile)
	}
	return G.run(G.workdir, deffnm+"_mdrun.log", G.command, args...)
}

// PlumedHandle drives the standalone plumed binary, only needed for the
// single-pass driver over an already existing trajectory.
type PlumedHandle struct {
	command string
	workdir string
	run     runner
}

func NewPlumedHandle() *PlumedHandle {
	return &PlumedHandle{command: "plumed", workdir: ".", run: execRunner}
}

func (P *PlumedHandle) SetCommand(name string) {
	P.command = name
}

func (P *PlumedHandle) SetWorkDir(dir string) {
	P.workdir = dir
}

// Driver runs plumed driver with the config cfg over the trajectory
// traj, reading every stride-th frame. The trajectory is only read, so
// any number of these can run at once as long as each cfg prints to its
// own file.
func (P *PlumedHandle) Driver(cfg, traj string, stride int) error {
	args := []string{"driver", "--plumed", cfg, "--ixtc", traj, "--trajectory-stride", strconv.Itoa(stride)}
	return P.run(P.workdir, cfg+".log", P.command, args...)
}
