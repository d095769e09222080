// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package finalization

import (
	"errors"
	"sort"

	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
)

// skiplistUnits returns the on-main-chain unit at mci-divisor for every
// power-of-ten divisor that evenly divides mci, ascending by mci.
func (e *Engine) skiplistUnits(mci int64) ([]unit.Hash, error) {
	var targets []int64
	for divisor := int64(10); divisor <= mci; divisor *= 10 {
		if mci%divisor == 0 {
			targets = append(targets, mci-divisor)
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	units := make([]unit.Hash, 0, len(targets))
	for _, target := range targets {
		h, err := e.mainChainUnitAt(target)
		if err != nil {
			return nil, err
		}
		units = append(units, h)
	}
	return units, nil
}

// mainChainUnitAt returns the single on-main-chain unit (limci == mci)
// among every unit durably assigned this mci.
func (e *Engine) mainChainUnitAt(mci int64) (unit.Hash, error) {
	candidates, err := e.store.UnitsByMci(mci)
	if err != nil {
		return unit.Hash{}, sdagerr.New(sdagerr.StoreError, "", err)
	}
	for _, h := range candidates {
		rec, ok, err := e.store.GetProperties(h)
		if err != nil {
			return unit.Hash{}, sdagerr.New(sdagerr.StoreError, h.String(), err)
		}
		if ok && rec.MCI == rec.LIMCI {
			return h, nil
		}
	}
	return unit.Hash{}, sdagerr.New(sdagerr.OrderingViolation, "", errors.New("no on-main-chain unit found for skiplist target mci"))
}
