// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mainchain

import (
	"sort"

	"github.com/luxfi/sdag/internal/ancestry"
	"github.com/luxfi/sdag/internal/unit"
)

// unstableChain follows best_parent from tip down to the current stable
// tip, returning the path in lowest-to-highest order (nearest the stable
// tip first) so the caller can test and promote units in sequence.
func (e *Engine) unstableChain(tip unit.Hash) []unit.Hash {
	var path []unit.Hash
	cur := tip
	for {
		snap, ok := e.graph.Snapshot(cur)
		if !ok {
			break
		}
		if snap.MCI >= 0 && snap.MCI == snap.LIMCI {
			break // reached a unit already on the stable main chain
		}
		path = append(path, cur)
		if !snap.HasBestParent {
			break
		}
		cur = snap.BestParent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// isStable reports whether candidate can never be overtaken by an
// alternative branch, given end as the tentative tip under
// consideration and minWL = end's min_wl.
func (e *Engine) isStable(candidate, end, stablePoint unit.Hash) (bool, error) {
	endSnap, ok := e.graph.Snapshot(end)
	if !ok {
		return false, nil
	}
	minWL := endSnap.MinWL

	chainRoot := e.chainRootAbove(stablePoint, end)
	altRoots := e.altRoots(stablePoint, chainRoot)

	candSnap, ok := e.graph.Snapshot(candidate)
	if !ok {
		return false, nil
	}

	maxAltLevelPossible := e.maxAltLevel(altRoots, candSnap.Level, nil)
	if minWL > maxAltLevelPossible {
		return true, nil
	}

	inPast, err := e.pastOf(end, stablePoint)
	if err != nil {
		return false, err
	}
	maxAltLevel := e.maxAltLevel(altRoots, candSnap.Level, inPast)
	return minWL > maxAltLevel, nil
}

// chainRootAbove returns the unit directly above stablePoint on end's
// best-parent chain: the child of stablePoint that end (transitively)
// descends from via best-parent links.
func (e *Engine) chainRootAbove(stablePoint, end unit.Hash) unit.Hash {
	cur := end
	for {
		snap, ok := e.graph.Snapshot(cur)
		if !ok || !snap.HasBestParent || snap.BestParent == stablePoint {
			return cur
		}
		cur = snap.BestParent
	}
}

// altRoots returns stablePoint's children whose own best_parent is
// stablePoint, excluding chainRoot (the branch end is actually on).
func (e *Engine) altRoots(stablePoint, chainRoot unit.Hash) []unit.Hash {
	var roots []unit.Hash
	for _, c := range e.graph.Children(stablePoint) {
		if c == chainRoot {
			continue
		}
		if snap, ok := e.graph.Snapshot(c); ok && snap.HasBestParent && snap.BestParent == stablePoint {
			roots = append(roots, c)
		}
	}
	return roots
}

// pastOf returns the set of units in end's past down to (and including)
// stablePoint's level, used to restrict the alt-level search to units
// that could actually be compared against end.
func (e *Engine) pastOf(end, stablePoint unit.Hash) (map[unit.Hash]struct{}, error) {
	spSnap, ok := e.graph.Snapshot(stablePoint)
	if !ok {
		return nil, nil
	}
	return ancestry.Ancestors(e.graph, end, func(h unit.Hash) bool {
		snap, ok := e.graph.Snapshot(h)
		return !ok || snap.Level <= spSnap.Level
	})
}

// maxAltLevel descends from roots through best-children (children that
// name the current node as their own best_parent), collecting every
// is_wl_increased unit with level < candidateLevel. When restrict is
// non-nil, only units present in it count. Returns the largest level
// found, or 0 if none qualify.
func (e *Engine) maxAltLevel(roots []unit.Hash, candidateLevel uint64, restrict map[unit.Hash]struct{}) uint64 {
	var maxLevel uint64
	visited := map[unit.Hash]struct{}{}
	queue := append([]unit.Hash(nil), roots...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if _, seen := visited[n]; seen {
			continue
		}
		visited[n] = struct{}{}

		snap, ok := e.graph.Snapshot(n)
		if ok {
			_, inScope := restrict[n]
			if restrict == nil || inScope {
				if snap.IsWLIncreased && snap.Level < candidateLevel && snap.Level > maxLevel {
					maxLevel = snap.Level
				}
			}
		}
		for _, c := range e.graph.Children(n) {
			if csnap, ok := e.graph.Snapshot(c); ok && csnap.HasBestParent && csnap.BestParent == n {
				queue = append(queue, c)
			}
		}
	}
	return maxLevel
}

// promote assigns mci = lastStableMci+1 to m and every not-yet-stable
// ancestor of m, sub_mci in (level, hash) order, and limci to the max
// limci among each unit's parents (overridden to the new mci on m
// itself). It publishes the resulting MciStable event.
func (e *Engine) promote(m unit.Hash) error {
	newMci := e.lastStableMci.Load() + 1

	ancestors, err := ancestry.Ancestors(e.graph, m, func(h unit.Hash) bool {
		snap, ok := e.graph.Snapshot(h)
		return ok && snap.IsStable
	})
	if err != nil {
		return err
	}

	units := make([]unit.Hash, 0, len(ancestors))
	for h := range ancestors {
		if snap, ok := e.graph.Snapshot(h); ok && !snap.IsStable {
			units = append(units, h)
		}
	}
	sort.Slice(units, func(i, j int) bool {
		si, _ := e.graph.Snapshot(units[i])
		sj, _ := e.graph.Snapshot(units[j])
		if si.Level != sj.Level {
			return si.Level < sj.Level
		}
		return units[i].String() < units[j].String()
	})

	for idx, h := range units {
		props := e.graph.Properties(h)
		if props == nil {
			continue
		}
		parents, err := e.graph.ParentsOf(h)
		if err != nil {
			return err
		}
		limci := int64(-1)
		for _, p := range parents {
			if snap, ok := e.graph.Snapshot(p); ok && snap.LIMCI > limci {
				limci = snap.LIMCI
			}
		}
		if h == m {
			limci = newMci
		}
		props.AssignStable(newMci, int64(idx), limci)
	}

	e.lastStableMci.Store(newMci)
	e.setStableTip(m)

	if e.metrics != nil {
		e.metrics.StableMCI.Set(float64(newMci))
	}
	e.log.Info("main chain advanced", "mci", newMci, "units", len(units))

	if e.out != nil {
		e.out <- MciStable{MCI: newMci, Units: units}
	}
	return nil
}
