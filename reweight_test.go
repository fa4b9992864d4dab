package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type fakeDriver struct {
	sync.Mutex
	calls  []call
	failOn string
}

func (f *fakeDriver) runner(workdir, logfile, name string, args ...string) error {
	f.Lock()
	f.calls = append(f.calls, call{name, args})
	f.Unlock()
	c := call{name, args}
	if f.failOn != "" && c.has(f.failOn) {
		return errors.New("simulated driver failure")
	}
	return nil
}

func testReweight(Te *testing.T, fake *fakeDriver, values []float64, cpus int, keepgoing bool) *Reweight {
	dir := Te.TempDir()
	touch(Te, filepath.Join(dir, "alltraj.xtc"))
	pl := NewPlumedHandle()
	pl.SetWorkDir(dir)
	pl.run = fake.runner
	return &Reweight{
		Plumed:    pl,
		Values:    values,
		Coord:     "phi",
		Atoms:     []int{5, 7, 9, 15},
		Kappa:     500.0,
		Traj:      "alltraj.xtc",
		Stride:    1,
		WorkDir:   dir,
		CPUs:      cpus,
		KeepGoing: keepgoing,
	}
}

func TestReweight(Te *testing.T) {
	fake := &fakeDriver{}
	R := testReweight(Te, fake, []float64{0.30, 0.35, 0.40}, 2, false)
	if err := R.Run(); err != nil {
		Te.Fatal(err)
	}
	if len(fake.calls) != 3 {
		Te.Fatalf("got %d driver invocations, want 3", len(fake.calls))
	}
	//parallel, so order is whatever it is; check the set
	seen := make(map[string]bool)
	for _, c := range fake.calls {
		if c.args[0] != "driver" || c.after("--ixtc") != "alltraj.xtc" || c.after("--trajectory-stride") != "1" {
			Te.Errorf("wrong driver invocation: %v", c.args)
		}
		seen[c.after("--plumed")] = true
	}
	for _, label := range []string{"0.30", "0.35", "0.40"} {
		cfg := "plumed_rw_" + label + ".dat"
		if !seen[cfg] {
			Te.Errorf("no driver run for umbrella %s", label)
		}
		body, err := os.ReadFile(filepath.Join(R.WorkDir, cfg))
		if err != nil {
			Te.Fatal(err)
		}
		if !strings.Contains(string(body), "FILE=ALLCOLVAR"+label) || !strings.Contains(string(body), "AT="+label) {
			Te.Errorf("umbrella %s config wrong:\n%s", label, body)
		}
		//the re-weighting bias must come from the same coordinate
		//definition as the production runs
		rc := &RestraintConfig{Name: "phi", Atoms: []int{5, 7, 9, 15}}
		if !strings.HasPrefix(string(body), rc.CoordLine()) {
			Te.Errorf("umbrella %s redefines the coordinate:\n%s", label, body)
		}
	}
}

func TestReweightFailure(Te *testing.T) {
	fake := &fakeDriver{failOn: "plumed_rw_0.35.dat"}
	R := testReweight(Te, fake, []float64{0.30, 0.35, 0.40}, 1, false)
	err := R.Run()
	if err == nil {
		Te.Fatal("expected a failure")
	}
	var se *StageError
	if !errors.As(err, &se) || se.Label != "0.35" {
		Te.Errorf("failure not attributed to its umbrella: %v", err)
	}
}

func TestReweightKeepGoing(Te *testing.T) {
	fake := &fakeDriver{failOn: "plumed_rw_0.35.dat"}
	R := testReweight(Te, fake, []float64{0.30, 0.35, 0.40}, 1, true)
	err := R.Run()
	if err == nil {
		Te.Fatal("the failed umbrella should still be reported")
	}
	if len(fake.calls) != 3 {
		Te.Errorf("got %d driver invocations, want all 3 despite the failure", len(fake.calls))
	}
}

func TestReweightMissingTrajectory(Te *testing.T) {
	fake := &fakeDriver{}
	R := testReweight(Te, fake, []float64{0.30}, 1, false)
	R.Traj = "nosuch.xtc"
	if err := R.Run(); err == nil {
		Te.Fatal("a missing trajectory should fail before any umbrella runs")
	}
	if len(fake.calls) != 0 {
		Te.Error("driver ran against a missing trajectory")
	}
}
