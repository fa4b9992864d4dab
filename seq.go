/*
 * seq.go, part of paraguas
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

	"gonum.org/v1/gonum/floats"
)

// Seq returns the arithmetic sequence start, start+step, ... up to (and
// including) the last grid point not past stop. A negative step gives a
// descending sequence, in which case stop must be below start.
// The values are obtained from the endpoints with floats.Span, not by
// accumulating step, so a long sequence doesn't drift and skip or
// duplicate a grid point.
func Seq(start, stop, step float64) ([]float64, error) {
	if step == 0 {
		return nil, fmt.Errorf("seq: zero step")
	}
	span := (stop - start) / step
	if span < 0 {
		return nil, fmt.Errorf("seq: step %v moves away from stop (start %v, stop %v)", step, start, stop)
	}
	//the small tolerance absorbs the representation error of things like
	//(1.5-0.05)/0.05, which comes out just under the integer it should be.
	n := int(math.Floor(span+1e-9)) + 1
	vals := make([]float64, n)
	if n == 1 {
		vals[0] = start
		return vals, nil
	}
	floats.Span(vals, start, start+float64(n-1)*step)
	return vals, nil
}

// Label returns the canonical text form of a window target. This exact
// string goes both into generated filenames and into the rendered
// restraint files, so the two can never disagree on what "the same value"
// looks like. Two decimals is what the downstream analysis expects.
func Label(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Labels returns the labels for vals, checking that no two targets
// collapse into the same label. A step finer than the label resolution
// would silently merge windows, which is never what you want.
func Labels(vals []float64) ([]string, error) {
	ret := make([]string, 0, len(vals))
	seen := make(map[string]bool, len(vals))
	for _, v := range vals {
		l := Label(v)
		if seen[l] {
			return nil, fmt.Errorf("labels: target %v duplicates the label %s of an earlier target; use a coarser step", v, l)
		}
		seen[l] = true
		ret = append(ret, l)
	}
	return ret, nil
}
