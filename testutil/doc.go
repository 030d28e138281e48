// Package testutil provides testing utilities for graphlocal.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for edge input, vertex subsets and value
// landscapes.
//
// # Random Graphs
//
//	rng := testutil.NewRNG(seed)
//	tuples := rng.Tuples(50, 200, true) // 50 vertices, 201 weighted rows
//	g, _ := graphlocal.FromTuples(tuples)
//
// # Subsets
//
//	r := rng.Subset(g.NumVertices(), 5)
//	s, _ := g.Score(r)
//
// Weights are multiples of 1/WeightDenominator, so sums over them are exact
// and scoring strategies can be compared bit for bit.
package testutil
