// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ancestry implements the "include" partial order over units:
// A >= B iff B is an ancestor of A. A handful of fast-rejection shortcuts
// let most comparisons skip the DAG walk entirely.
package ancestry

import "github.com/luxfi/sdag/internal/unit"

// Graph is the read surface ancestry needs; jointcache.Cache satisfies it.
// Kept as an interface so tests can substitute a fixture graph.
type Graph interface {
	Snapshot(h unit.Hash) (unit.Snapshot, bool)
	ParentsOf(h unit.Hash) ([]unit.Hash, error)
}

// IsInPast reports whether b is an ancestor of a (a "includes" b), i.e.
// a ≥ b in the partial order.
func IsInPast(g Graph, a, b unit.Hash) (bool, error) {
	if a == b {
		return true, nil
	}
	sa, ok := g.Snapshot(a)
	if !ok {
		return false, nil
	}
	sb, ok := g.Snapshot(b)
	if !ok {
		return false, nil
	}
	if fastRejectNotInPast(sa, sb) {
		return false, nil
	}
	if fastAcceptInPast(sa, sb) {
		return true, nil
	}
	return walk(g, a, b, sb)
}

// fastRejectNotInPast implements first bullet: b cannot be in
// a's past if any of these hold.
func fastRejectNotInPast(a, b unit.Snapshot) bool {
	switch {
	case a.Level <= b.Level:
		return true
	case a.WitnessedLevel < b.WitnessedLevel:
		return true
	case a.MCI >= 0 && b.MCI >= 0 && a.MCI < b.MCI:
		return true
	case a.LIMCI < b.LIMCI:
		return true
	case a.IsStable && !b.IsStable:
		return true
	default:
		return false
	}
}

// fastAcceptInPast implements symmetric shortcut: a is
// past-of-b if a.limci >= b.mci.
func fastAcceptInPast(a, b unit.Snapshot) bool {
	return b.MCI >= 0 && a.LIMCI >= b.MCI
}

// walk performs the breadth-first parent search, pruning subtrees with the
// same fast-rejection test, returning true as soon as a node equal-to or
// past-of b is reached.
func walk(g Graph, start, b unit.Hash, sb unit.Snapshot) (bool, error) {
	if start == b {
		return true, nil
	}
	visited := map[unit.Hash]struct{}{start: {}}
	queue := []unit.Hash{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		parents, err := g.ParentsOf(cur)
		if err != nil {
			return false, err
		}
		for _, p := range parents {
			if _, seen := visited[p]; seen {
				continue
			}
			visited[p] = struct{}{}

			if p == b {
				return true, nil
			}

			sp, ok := g.Snapshot(p)
			if !ok {
				continue
			}
			if fastAcceptInPast(sp, sb) {
				return true, nil
			}
			if fastRejectNotInPast(sp, sb) {
				continue // prune: this subtree cannot reach b
			}
			queue = append(queue, p)
		}
	}
	return false, nil
}

// Ancestors performs a bounded BFS upward from start, stopping at any node
// for which stop returns true (it is included but its own parents are not
// explored). Used by the main-chain and serial-conflict algorithms that
// need the ancestor set itself rather than a yes/no test.
func Ancestors(g Graph, start unit.Hash, stop func(unit.Hash) bool) (map[unit.Hash]struct{}, error) {
	visited := map[unit.Hash]struct{}{}
	queue := []unit.Hash{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		if stop(cur) {
			continue
		}
		parents, err := g.ParentsOf(cur)
		if err != nil {
			return nil, err
		}
		queue = append(queue, parents...)
	}
	return visited, nil
}
