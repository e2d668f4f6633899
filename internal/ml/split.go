// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package ml

import (
	"math/rand"
	"sort"
)

// SplitByGroup partitions row indices into train and test so that rows
// sharing a group key land on the same side, which keeps one student's
// history from appearing in both halves. With a single group it falls back
// to a row-level split. Both halves are non-empty whenever n >= 2.
func SplitByGroup(groups []uint32, testFraction float64, seed int64) (train, test []int) {
	n := len(groups)
	if n == 0 {
		return nil, nil
	}
	if n == 1 {
		return []int{0}, nil
	}
	if testFraction <= 0 || testFraction >= 1 {
		testFraction = 0.2
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible split, not security sensitive

	members := make(map[uint32][]int)
	for i, g := range groups {
		members[g] = append(members[g], i)
	}
	keys := make([]uint32, 0, len(members))
	for g := range members {
		keys = append(keys, g)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	if len(keys) < 2 {
		perm := rng.Perm(n)
		cut := int(float64(n) * testFraction)
		if cut < 1 {
			cut = 1
		}
		test = append(test, perm[:cut]...)
		train = append(train, perm[cut:]...)
		sort.Ints(train)
		sort.Ints(test)
		return train, test
	}

	rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	want := int(float64(n)*testFraction + 0.5)
	if want < 1 {
		want = 1
	}
	for i, g := range keys {
		// Always leave at least one group for training.
		if len(test) < want && i < len(keys)-1 {
			test = append(test, members[g]...)
			continue
		}
		train = append(train, members[g]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

// Take gathers rows and targets by index.
func Take(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}
	return xs, ys
}
