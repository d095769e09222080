// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package serialcheck implements the double-spend detector: it catches
// an author reusing the same address across two DAG-concurrent forks
// before either side stabilizes, by comparing a newly-unstable unit's
// authors against every unstable unit it has no include relation with.
package serialcheck

import (
	"github.com/luxfi/sdag/internal/ancestry"
	"github.com/luxfi/sdag/internal/unit"
)

// Graph is the read/write surface Check needs from the joint cache.
type Graph interface {
	ParentsOf(h unit.Hash) ([]unit.Hash, error)
	Children(h unit.Hash) []unit.Hash
	GetJoint(h unit.Hash) (*unit.Joint, error)
	GetFreeJoints() []unit.Hash
	Properties(h unit.Hash) *unit.Properties
	Snapshot(h unit.Hash) (unit.Snapshot, bool)
}

// Check runs the detector for a just-added unstable unit p, setting its
// sequence to NonserialBad when a concurrent, not-yet-FinalBad unit
// shares one of its author addresses and has no include relation to p
// in either direction.
func Check(g Graph, p unit.Hash) error {
	authors, err := authorsOf(g, p)
	if err != nil || len(authors) == 0 {
		return err
	}

	a2, err := unstableAncestors(g, p)
	if err != nil {
		return err
	}

	a3 := map[unit.Hash]struct{}{}
	for _, f := range g.GetFreeJoints() {
		anc, err := unstableAncestors(g, f)
		if err != nil {
			return err
		}
		for h := range anc {
			if _, inPast := a2[h]; !inPast {
				a3[h] = struct{}{}
			}
		}
	}

	a4 := descendants(g, p)

	for h := range a3 {
		if h == p {
			continue
		}
		if _, isDescendant := a4[h]; isDescendant {
			continue // A5 = A3 \ A4
		}
		conflicts, err := sharesAuthor(g, h, authors)
		if err != nil {
			return err
		}
		if conflicts {
			if props := g.Properties(p); props != nil {
				props.SetSequence(unit.NonserialBad)
			}
			return nil
		}
	}
	return nil
}

func sharesAuthor(g Graph, h unit.Hash, authors map[unit.Address]struct{}) (bool, error) {
	if snap, ok := g.Snapshot(h); ok && snap.Sequence == unit.FinalBad {
		return false, nil
	}
	j, err := g.GetJoint(h)
	if err != nil || j == nil {
		return false, err
	}
	for _, a := range j.Unit.Authors {
		if _, shared := authors[a.Address]; shared {
			return true, nil
		}
	}
	return false, nil
}

func authorsOf(g Graph, h unit.Hash) (map[unit.Address]struct{}, error) {
	j, err := g.GetJoint(h)
	if err != nil || j == nil {
		return nil, err
	}
	m := make(map[unit.Address]struct{}, len(j.Unit.Authors))
	for _, a := range j.Unit.Authors {
		m[a.Address] = struct{}{}
	}
	return m, nil
}

// unstableAncestors is a BFS from start up through parents, stopping at
// the first stable unit on each branch and excluding it: A2/A3 are
// defined over unstable units only, so a stable ancestor must never
// land in the returned set even though ancestry.Ancestors itself
// includes the node it stopped at.
func unstableAncestors(g Graph, start unit.Hash) (map[unit.Hash]struct{}, error) {
	ancestors, err := ancestry.Ancestors(g, start, func(h unit.Hash) bool {
		snap, ok := g.Snapshot(h)
		return ok && snap.IsStable
	})
	if err != nil {
		return nil, err
	}
	for h := range ancestors {
		if snap, ok := g.Snapshot(h); ok && snap.IsStable {
			delete(ancestors, h)
		}
	}
	return ancestors, nil
}

// descendants is a forward BFS through children, with no stopping
// condition: every reachable unit counts.
func descendants(g Graph, start unit.Hash) map[unit.Hash]struct{} {
	visited := map[unit.Hash]struct{}{}
	queue := []unit.Hash{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}
		queue = append(queue, g.Children(cur)...)
	}
	return visited
}
