package main

import (
	"math"
	"testing"
)

func TestSeqCounts(Te *testing.T) {
	cases := []struct {
		start, stop, step float64
		n                 int
	}{
		{0.05, 1.5, 0.05, 30},
		{-3.05, -0.01, 0.05, 61},
		{0.0, 3.14, 0.05, 63},
		{-3.10, 3.10, 0.05, 125},
		{1.5, 0.05, -0.05, 30},
		{0.3, 0.3, 0.05, 1},
	}
	for _, c := range cases {
		vals, err := Seq(c.start, c.stop, c.step)
		if err != nil {
			Te.Fatalf("seq(%v,%v,%v): %v", c.start, c.stop, c.step, err)
		}
		if len(vals) != c.n {
			Te.Errorf("seq(%v,%v,%v): got %d values, want %d", c.start, c.stop, c.step, len(vals), c.n)
		}
	}
}

func TestSeqGrid(Te *testing.T) {
	//every value must sit exactly on the grid, no accumulation drift
	vals, err := Seq(-3.10, 3.10, 0.05)
	if err != nil {
		Te.Fatal(err)
	}
	for i, v := range vals {
		want := -3.10 + float64(i)*0.05
		if math.Abs(v-want) > 1e-9 {
			Te.Errorf("value %d: got %v, want %v", i, v, want)
		}
	}
	if vals[0] != -3.10 {
		Te.Errorf("first value %v, want -3.10", vals[0])
	}
	if math.Abs(vals[len(vals)-1]-3.10) > 1e-12 {
		Te.Errorf("last value %v, want 3.10", vals[len(vals)-1])
	}
}

func TestSeqDescending(Te *testing.T) {
	vals, err := Seq(1.5, 0.05, -0.05)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 1; i < len(vals); i++ {
		if vals[i] >= vals[i-1] {
			Te.Fatalf("not descending at %d: %v then %v", i-1, vals[i-1], vals[i])
		}
	}
}

func TestSeqBad(Te *testing.T) {
	if _, err := Seq(0, 1, 0); err == nil {
		Te.Error("zero step should fail")
	}
	if _, err := Seq(0, 1, -0.1); err == nil {
		Te.Error("step away from stop should fail")
	}
}

func TestLabels(Te *testing.T) {
	vals, err := Seq(0.05, 1.5, 0.05)
	if err != nil {
		Te.Fatal(err)
	}
	labels, err := Labels(vals)
	if err != nil {
		Te.Fatal(err)
	}
	if labels[0] != "0.05" || labels[len(labels)-1] != "1.50" {
		Te.Errorf("unexpected boundary labels %s %s", labels[0], labels[len(labels)-1])
	}
	//a step below the label resolution must be refused, not silently
	//collapsed into fewer windows
	if _, err := Labels([]float64{0.051, 0.052}); err == nil {
		Te.Error("duplicate labels should fail")
	}
}
