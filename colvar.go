/*
 * colvar.go, part of paraguas
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
	"math"
	"strconv"
	"strings"

	"github.com/rmera/scu"
	"gonum.org/v1/gonum/stat"
)

//Reading back the per-window time series. The free energy itself comes
//out of the external WHAM machinery; what we do here is the cheap part
//that saves the expensive part: telling whether the windows actually
//sampled where they were told to, and whether neighboring windows
//overlap enough to be combinable, before anyone runs the analysis.

// ReadColvar returns the reaction-coordinate column of a PLUMED time
// series file (time in the first column, the coordinate in the second,
// the bias after that). Header lines start with #.
func ReadColvar(fname string) ([]float64, error) {
	fin, err := scu.NewMustReadFile(fname)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	vals := make([]float64, 0, 1000)
	for i := fin.Next(); i != "EOF"; i = fin.Next() {
		line := strings.TrimSpace(i)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Fields(line)
		if len(f) < 2 {
			return nil, fmt.Errorf("%s: malformed line %q", fname, line)
		}
		v, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", fname, err)
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s: no samples", fname)
	}
	return vals, nil
}

// A WindowStat summarizes one umbrella window: how much it sampled,
// where, how widely, and what fraction of its samples lie past the
// midpoint towards the next window up the sequence. That fraction is a
// crude but honest proxy for histogram overlap; when it drops to zero
// the combined free energy will have a hole at that seam.
type WindowStat struct {
	Label   string
	Target  float64
	N       int
	Mean    float64
	Stdev   float64
	Overlap float64 //NaN for the last window, which has no next neighbor
}

// WindowStats computes the per-window summary for the given targets,
// reading prefix+label for each. A window whose file is missing or empty
// gets reported in the error but doesn't stop the others from being
// summarized.
func WindowStats(prefix string, targets []float64) ([]*WindowStat, error) {
	labels, err := Labels(targets)
	if err != nil {
		return nil, err
	}
	ret := make([]*WindowStat, 0, len(targets))
	series := make([][]float64, len(targets))
	var missing []string
	for i, label := range labels {
		s, err := ReadColvar(prefix + label)
		if err != nil {
			missing = append(missing, label)
			continue
		}
		series[i] = s
	}
	for i, label := range labels {
		if series[i] == nil {
			continue
		}
		w := &WindowStat{Label: label, Target: targets[i], N: len(series[i])}
		w.Mean = stat.Mean(series[i], nil)
		w.Stdev = stat.StdDev(series[i], nil)
		w.Overlap = math.NaN()
		if i < len(targets)-1 {
			w.Overlap = OverlapFrac(series[i], targets[i], targets[i+1])
		}
		ret = append(ret, w)
	}
	if len(missing) > 0 {
		return ret, fmt.Errorf("no usable time series for %d windows: %s", len(missing), strings.Join(missing, " "))
	}
	return ret, nil
}

// OverlapFrac returns the fraction of samples that lie on the far side
// of the midpoint between target and neighbor, i.e. in the half of the
// coordinate the neighboring window owns.
func OverlapFrac(samples []float64, target, neighbor float64) float64 {
	mid := (target + neighbor) / 2
	n := 0
	for _, s := range samples {
		if (neighbor > target && s >= mid) || (neighbor < target && s <= mid) {
			n++
		}
	}
	return float64(n) / float64(len(samples))
}
