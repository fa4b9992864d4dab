package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(Te *testing.T, names ...string) {
	for _, n := range names {
		if err := os.WriteFile(n, []byte("x\n"), 0644); err != nil {
			Te.Fatal(err)
		}
	}
}

func expectFile(Te *testing.T, path string) {
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		Te.Errorf("expected file at %s", path)
	}
}

func TestReorganize(Te *testing.T) {
	dir := Te.TempDir()
	touch(Te, filepath.Join(dir, "eq1_a"), filepath.Join(dir, "eq1b_x"),
		filepath.Join(dir, "us_y"), filepath.Join(dir, "COLV_z"),
		filepath.Join(dir, "unrelated.txt"))
	rules := []PrefixRule{{"eq1", "eq1"}, {"us", "us"}, {"COL", "COL"}}
	if err := Reorganize(dir, rules); err != nil {
		Te.Fatal(err)
	}
	expectFile(Te, filepath.Join(dir, "eq1", "eq1_a"))
	expectFile(Te, filepath.Join(dir, "eq1", "eq1b_x"))
	expectFile(Te, filepath.Join(dir, "us", "us_y"))
	expectFile(Te, filepath.Join(dir, "COL", "COLV_z"))
	//files matching no rule stay put, and nothing else is left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		Te.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "holding") {
			Te.Error("holding area left behind")
		}
		if !e.IsDir() && e.Name() != "unrelated.txt" {
			Te.Errorf("unclaimed file %s left in the flat directory", e.Name())
		}
	}
}

// A rule for a more specific prefix, listed first, must claim its files
// before a broader rule gets to see them.
func TestReorganizeSpecificRuleFirst(Te *testing.T) {
	dir := Te.TempDir()
	touch(Te, filepath.Join(dir, "eq1.mdp"), filepath.Join(dir, "eq1_0.30.gro"),
		filepath.Join(dir, "us.mdp"), filepath.Join(dir, "us_0.30.xtc"))
	if err := Reorganize(dir, DefaultRules()); err != nil {
		Te.Fatal(err)
	}
	expectFile(Te, filepath.Join(dir, "prm", "eq1.mdp"))
	expectFile(Te, filepath.Join(dir, "prm", "us.mdp"))
	expectFile(Te, filepath.Join(dir, "eq1", "eq1_0.30.gro"))
	expectFile(Te, filepath.Join(dir, "us", "us_0.30.xtc"))
}

func TestReorganizeRefusesNonEmptyTarget(Te *testing.T) {
	dir := Te.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "eq1"), 0755); err != nil {
		Te.Fatal(err)
	}
	touch(Te, filepath.Join(dir, "eq1", "old"), filepath.Join(dir, "eq1_new"))
	err := Reorganize(dir, []PrefixRule{{"eq1", "eq1"}})
	if err == nil {
		Te.Fatal("merging into a populated target must fail loudly")
	}
	if !strings.Contains(err.Error(), "not empty") {
		Te.Errorf("unhelpful error: %v", err)
	}
}

func TestReorganizeNoMatchesIsNoop(Te *testing.T) {
	dir := Te.TempDir()
	touch(Te, filepath.Join(dir, "something"))
	if err := Reorganize(dir, []PrefixRule{{"zz", "zz"}}); err != nil {
		Te.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "zz")); !os.IsNotExist(err) {
		Te.Error("bucket created for a rule that matched nothing")
	}
	expectFile(Te, filepath.Join(dir, "something"))
}
