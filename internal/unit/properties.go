// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package unit

import "sync"

// Properties holds the computed, mutable-but-monotone per-unit fields.
// Every accessor takes the lock: the main-chain worker writes the graph
// and stability fields, the business worker and the serial-conflict
// check write the sequence, and other readers take the read lock.
type Properties struct {
	mu sync.RWMutex

	level uint64
	bestParent Hash
	hasBestParent bool
	witnessedLevel uint64
	minWL uint64

	mci int64 // -1 until assigned
	limci int64
	subMCI int64

	sequence Sequence

	isStable bool
	isWLIncreased bool
	isMinWLIncreased bool
}

// NewProperties returns a fresh, unset property record.
func NewProperties() *Properties {
	return &Properties{mci: -1, limci: -1, subMCI: -1, sequence: Good}
}

func (p *Properties) Level() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

func (p *Properties) SetLevel(l uint64) {
	p.mu.Lock()
	p.level = l
	p.mu.Unlock()
}

func (p *Properties) BestParent() (Hash, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bestParent, p.hasBestParent
}

func (p *Properties) SetBestParent(h Hash) {
	p.mu.Lock()
	p.bestParent = h
	p.hasBestParent = true
	p.mu.Unlock()
}

func (p *Properties) WitnessedLevel() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.witnessedLevel
}

func (p *Properties) MinWL() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.minWL
}

// SetWitnessLevels atomically sets wl/min_wl and the corresponding
// is_wl_increased/is_min_wl_increased flags relative to the prior values.
func (p *Properties) SetWitnessLevels(wl, minWL uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isWLIncreased = wl > p.witnessedLevel
	p.isMinWLIncreased = minWL > p.minWL
	p.witnessedLevel = wl
	p.minWL = minWL
}

func (p *Properties) IsWLIncreased() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isWLIncreased
}

func (p *Properties) IsMinWLIncreased() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isMinWLIncreased
}

// MCI returns the main-chain index, or -1 if not yet assigned.
func (p *Properties) MCI() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mci
}

func (p *Properties) LIMCI() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.limci
}

func (p *Properties) SubMCI() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.subMCI
}

// OnMainChain reports limci == mci.
func (p *Properties) OnMainChain() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mci >= 0 && p.mci == p.limci
}

// AssignStable sets mci/sub_mci/limci and marks the unit stable. It must
// be called exactly once per unit: stable units are immutable. It does
// not check this itself; the main-chain worker only passes units that
// are not yet stable.
func (p *Properties) AssignStable(mci, subMCI, limci int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mci = mci
	p.subMCI = subMCI
	p.limci = limci
	p.isStable = true
}

// SetLIMCI sets limci for a not-yet-stable unit (it may still move before
// the unit itself stabilizes, since limci derives from parents' limci).
func (p *Properties) SetLIMCI(limci int64) {
	p.mu.Lock()
	p.limci = limci
	p.mu.Unlock()
}

func (p *Properties) IsStable() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isStable
}

func (p *Properties) Sequence() Sequence {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sequence
}

func (p *Properties) SetSequence(s Sequence) {
	p.mu.Lock()
	p.sequence = s
	p.mu.Unlock()
}

// Snapshot is an immutable copy for passing across goroutines (e.g. into
// the business/finalization channels) without holding the lock.
type Snapshot struct {
	Level uint64
	BestParent Hash
	HasBestParent bool
	WitnessedLevel, MinWL uint64
	MCI, LIMCI, SubMCI int64
	Sequence Sequence
	IsStable, IsWLIncreased, IsMinWLIncreased bool
}

func (p *Properties) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{
		Level: p.level,
		BestParent: p.bestParent,
		HasBestParent: p.hasBestParent,
		WitnessedLevel: p.witnessedLevel,
		MinWL: p.minWL,
		MCI: p.mci,
		LIMCI: p.limci,
		SubMCI: p.subMCI,
		Sequence: p.sequence,
		IsStable: p.isStable,
		IsWLIncreased: p.isWLIncreased,
		IsMinWLIncreased: p.isMinWLIncreased,
	}
}
