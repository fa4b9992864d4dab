/*
 * reweight.go, part of paraguas
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
	"path/filepath"
	"sync"
)

// Reweight is the post-hoc pass: for each target in a sequence disjoint
// from the production sweep, re-evaluate the bias of that umbrella over
// the full concatenated trajectory with plumed driver, writing one
// ALLCOLVAR file per target. Nothing here touches simulation state, and
// every target gets its own config and output file, so the targets can
// run in parallel against the shared, read-only trajectory.
type Reweight struct {
	Plumed    *PlumedHandle
	Values    []float64
	Coord     string
	Atoms     []int
	Kappa     float64 //same stiffness as the production stage
	Traj      string  //the concatenated trajectory, read-only
	Stride    int
	WorkDir   string
	CPUs      int
	KeepGoing bool
}

// Run evaluates every target, CPUs of them at a time. Without KeepGoing
// the first failure stops the dispatch of further targets (the ones
// already in flight finish); with it, everything runs and the failures
// are summarized at the end.
func (R *Reweight) Run() error {
	labels, err := Labels(R.Values)
	if err != nil {
		return err
	}
	if err := checkFile(filepath.Join(R.WorkDir, R.Traj)); err != nil {
		return fmt.Errorf("reweight: %v", err)
	}
	cpus := R.CPUs
	if cpus < 1 {
		cpus = 1
	}
	if cpus > len(labels) {
		cpus = len(labels)
	}
	jobs := make(chan string)
	errs := make(chan error, len(labels))
	var wg sync.WaitGroup
	for i := 0; i < cpus; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for label := range jobs {
				if err := R.one(label); err != nil {
					errs <- err
				}
			}
		}()
	}
	for _, label := range labels {
		if !R.KeepGoing && len(errs) > 0 {
			break
		}
		LogV(1, "reweighting under umbrella", label)
		jobs <- label
	}
	close(jobs)
	wg.Wait()
	close(errs)
	var failed []error
	for err := range errs {
		LogV(0, "reweight failed:", err)
		failed = append(failed, err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("reweight: %d of %d umbrellas failed, first failure: %w", len(failed), len(labels), failed[0])
	}
	return nil
}

func (R *Reweight) one(label string) error {
	rc := &RestraintConfig{
		Name:   R.Coord,
		Atoms:  R.Atoms,
		Kappa:  R.Kappa,
		At:     label,
		Stride: 1, //the driver already subsamples with its own stride
		Colvar: "ALLCOLVAR" + label,
	}
	cfg := fmt.Sprintf("plumed_rw_%s.dat", label)
	if err := rc.WriteFile(filepath.Join(R.WorkDir, cfg)); err != nil {
		return &StageError{label, "reweight", err}
	}
	if err := R.Plumed.Driver(cfg, R.Traj, R.Stride); err != nil {
		return &StageError{label, "reweight", err}
	}
	return nil
}
