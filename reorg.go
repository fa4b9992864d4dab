/*
 * reorg.go, part of paraguas
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
	"strings"
)

// A PrefixRule sends every file whose name starts with Prefix to the
// subdirectory Bucket. Rules are applied in order, so a rule with a more
// specific prefix must come before one whose prefix is a prefix of it
// (eq1.mdp before eq1, say), or the broad rule will claim its files.
type PrefixRule struct {
	Prefix string
	Bucket string
}

// Reorganize partitions the files of a flat directory into one
// subdirectory per bucket, according to rules. Files matching no rule
// are left alone; a rule matching no file is fine. Every match is first
// staged in a temporary holding area, and the buckets are only moved
// into their final place once everything is claimed; a target directory
// that already exists with contents is an error, not a merge. This is
// only safe to run on the flat, unpartitioned state: re-running after a
// partial failure needs the holding area cleaned up by hand first.
func Reorganize(dir string, rules []PrefixRule) error {
	holding, err := os.MkdirTemp(dir, "holding")
	if err != nil {
		return fmt.Errorf("reorganize: %v", err)
	}
	hname := filepath.Base(holding)
	for _, r := range rules {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("reorganize: %v", err)
		}
		bucket := filepath.Join(holding, r.Bucket)
		for _, e := range entries {
			if e.IsDir() || e.Name() == hname {
				continue
			}
			if !strings.HasPrefix(e.Name(), r.Prefix) {
				continue
			}
			if err := os.MkdirAll(bucket, 0755); err != nil {
				return fmt.Errorf("reorganize: %v", err)
			}
			if err := os.Rename(filepath.Join(dir, e.Name()), filepath.Join(bucket, e.Name())); err != nil {
				return fmt.Errorf("reorganize: staging %s: %v", e.Name(), err)
			}
		}
	}
	done := make(map[string]bool, len(rules))
	for _, r := range rules {
		if done[r.Bucket] {
			continue
		}
		done[r.Bucket] = true
		src := filepath.Join(holding, r.Bucket)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue //nothing matched this bucket's rules
		}
		target := filepath.Join(dir, r.Bucket)
		if fi, err := os.Stat(target); err == nil {
			if !fi.IsDir() {
				return fmt.Errorf("reorganize: target %s exists and is not a directory", target)
			}
			prior, err := os.ReadDir(target)
			if err != nil {
				return fmt.Errorf("reorganize: %v", err)
			}
			if len(prior) > 0 {
				return fmt.Errorf("reorganize: target %s already exists and is not empty; refusing to merge", target)
			}
			if err := os.Remove(target); err != nil {
				return fmt.Errorf("reorganize: %v", err)
			}
		}
		if err := os.Rename(src, target); err != nil {
			return fmt.Errorf("reorganize: placing bucket %s: %v", r.Bucket, err)
		}
	}
	//an occupied holding area at this point means some staged file was
	//never claimed by a bucket, which should be impossible; better to
	//hear about it than to have it vanish.
	if err := os.Remove(holding); err != nil {
		return fmt.Errorf("reorganize: holding area not empty after partitioning, check %s: %v", holding, err)
	}
	return nil
}

// DefaultRules reproduces the usual post-run cleanup: the parameter
// files are staged out of the way first, so the broad per-stage rules
// that follow can't grab them, then outputs go to one directory per
// stage and the time series to COL.
func DefaultRules() []PrefixRule {
	return []PrefixRule{
		{"eq1.mdp", "prm"},
		{"eq2.mdp", "prm"},
		{"us.mdp", "prm"},
		{"eq1", "eq1"},
		{"eq2", "eq2"},
		{"us", "us"},
		{"COL", "COL"},
	}
}
