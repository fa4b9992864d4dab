/*
 * plumed.go, part of paraguas
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
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// RestraintConfig holds everything that goes into one generated PLUMED
// input: the named reaction coordinate, the harmonic restraint on it, and
// the print directive for the time series. Only Kappa, At, Stride and
// Colvar change between the documents of a sweep; the coordinate
// definition is the same in every one of them, which is what makes the
// windows combinable afterwards.
type RestraintConfig struct {
	Name   string //name of the coordinate, "phi" in the normal case
	Atoms  []int  //the (1-based) atoms defining the torsion
	Kappa  float64
	At     string //the target, already in its canonical text form
	Stride int
	Colvar string //file for the printed time series
}

// CoordLine returns the coordinate-definition statement alone. It is the
// line that must be byte-identical across every document of a sweep.
func (rc *RestraintConfig) CoordLine() string {
	ats := make([]string, len(rc.Atoms))
	for i, a := range rc.Atoms {
		ats[i] = strconv.Itoa(a)
	}
	return fmt.Sprintf("%s: TORSION ATOMS=%s", rc.Name, strings.Join(ats, ","))
}

// BiasName returns the PLUMED name of the bias output of the restraint,
// the column the re-weighting analysis reads back from the time series.
func (rc *RestraintConfig) BiasName() string {
	return "restraint-" + rc.Name + ".bias"
}

// Render produces the full document. It is a pure function of the
// structure, so it can be tested without PLUMED anywhere near.
func (rc *RestraintConfig) Render() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s\n", rc.CoordLine())
	fmt.Fprintf(&b, "restraint-%s: RESTRAINT ARG=%s KAPPA=%s AT=%s\n", rc.Name, rc.Name, strconv.FormatFloat(rc.Kappa, 'f', 1, 64), rc.At)
	fmt.Fprintf(&b, "PRINT STRIDE=%d ARG=%s,%s FILE=%s\n", rc.Stride, rc.Name, rc.BiasName(), rc.Colvar)
	return b.String()
}

// WriteFile writes the rendered document to fname, truncating whatever
// was there. The write is complete when this returns nil, which has to
// happen before anything external is told to read the file.
func (rc *RestraintConfig) WriteFile(fname string) error {
	if len(rc.Atoms) != 4 {
		return fmt.Errorf("restraint config %s: a torsion takes 4 atoms, got %d", fname, len(rc.Atoms))
	}
	err := os.WriteFile(fname, []byte(rc.Render()), 0644)
	if err != nil {
		return fmt.Errorf("restraint config %s: %v", fname, err)
	}
	return nil
}
