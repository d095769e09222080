// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"

	luxdb "github.com/luxfi/database"

	"github.com/luxfi/sdag/internal/unit"
)

// Key prefixes for the four logical tables. A single
// luxfi/database.Database is shared; tables are namespaced by prefix
// rather than by separate column families.
var (
	prefixJoint = []byte{0x01}
	prefixProperties = []byte{0x02}
	prefixUnitByBall = []byte{0x03}
	prefixBallByUnit = []byte{0x04}
	prefixMciUnits = []byte{0x05}
)

// DB is the durable, luxfi/database-backed Store.
type DB struct {
	db luxdb.Database
}

// NewDB wraps an already-opened luxfi/database.Database.
func NewDB(db luxdb.Database) *DB {
	return &DB{db: db}
}

func key(prefix []byte, parts...[]byte) []byte {
	out := append([]byte(nil), prefix...)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func (d *DB) PutJoint(j *unit.Joint) error {
	b, err := marshalJoint(j)
	if err != nil {
		return err
	}
	k := key(prefixJoint, j.Unit.UnitHash[:])
	if err := d.db.Put(k, b); err != nil {
		return err
	}
	return flush(d.db)
}

func (d *DB) GetJoint(h unit.Hash) (*unit.Joint, bool, error) {
	b, err := d.db.Get(key(prefixJoint, h[:]))
	if errors.Is(err, luxdb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	j, err := unmarshalJoint(b)
	if err != nil {
		return nil, false, err
	}
	return j, true, nil
}

func (d *DB) HasJoint(h unit.Hash) (bool, error) {
	return d.db.Has(key(prefixJoint, h[:]))
}

func (d *DB) PutProperties(h unit.Hash, p PropertyRecord) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := d.db.Put(key(prefixProperties, h[:]), b); err != nil {
		return err
	}
	return flush(d.db)
}

func (d *DB) GetProperties(h unit.Hash) (PropertyRecord, bool, error) {
	var p PropertyRecord
	b, err := d.db.Get(key(prefixProperties, h[:]))
	if errors.Is(err, luxdb.ErrNotFound) {
		return p, false, nil
	}
	if err != nil {
		return p, false, err
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, false, err
	}
	return p, true, nil
}

func (d *DB) PutBall(ball, unitHash unit.Hash) error {
	if err := d.db.Put(key(prefixUnitByBall, ball[:]), unitHash[:]); err != nil {
		return err
	}
	if err := d.db.Put(key(prefixBallByUnit, unitHash[:]), ball[:]); err != nil {
		return err
	}
	return flush(d.db)
}

func (d *DB) UnitByBall(ball unit.Hash) (unit.Hash, bool, error) {
	b, err := d.db.Get(key(prefixUnitByBall, ball[:]))
	if errors.Is(err, luxdb.ErrNotFound) {
		return unit.Hash{}, false, nil
	}
	if err != nil {
		return unit.Hash{}, false, err
	}
	var h unit.Hash
	copy(h[:], b)
	return h, true, nil
}

func (d *DB) BallByUnit(unitHash unit.Hash) (unit.Hash, bool, error) {
	b, err := d.db.Get(key(prefixBallByUnit, unitHash[:]))
	if errors.Is(err, luxdb.ErrNotFound) {
		return unit.Hash{}, false, nil
	}
	if err != nil {
		return unit.Hash{}, false, err
	}
	var h unit.Hash
	copy(h[:], b)
	return h, true, nil
}

func (d *DB) PutMciUnit(mci int64, unitHash unit.Hash) error {
	existing, err := d.UnitsByMci(mci)
	if err != nil {
		return err
	}
	existing = append(existing, unitHash)
	b, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	if err := d.db.Put(key(prefixMciUnits, mciKey(mci)), b); err != nil {
		return err
	}
	return flush(d.db)
}

func (d *DB) UnitsByMci(mci int64) ([]unit.Hash, error) {
	b, err := d.db.Get(key(prefixMciUnits, mciKey(mci)))
	if errors.Is(err, luxdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var hs []unit.Hash
	if err := json.Unmarshal(b, &hs); err != nil {
		return nil, err
	}
	return hs, nil
}

func (d *DB) LastStableMci() (int64, error) {
	iter := d.db.NewIteratorWithPrefix(prefixMciUnits)
	defer iter.Release()
	var max int64 = -1
	for iter.Next() {
		k := iter.Key()
		if len(k) < len(prefixMciUnits)+8 {
			continue
		}
		mci := int64(binary.BigEndian.Uint64(k[len(prefixMciUnits):]))
		if mci > max {
			max = mci
		}
	}
	return max, iter.Error()
}

func (d *DB) Close() error { return d.db.Close() }

func mciKey(mci int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(mci))
	return b
}

// flush is required after each write. luxfi/database.Database
// is a direct-write KV (no explicit flush call on the base interface);
// when the concrete backend exposes one (e.g. a Flusher), use it.
func flush(db luxdb.Database) error {
	if f, ok := db.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
