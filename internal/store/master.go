// Package store implements the per-kind master table: the deduplicated,
// persisted source of truth keyed by (city, date) with last-write-wins
// conflict resolution.
package store

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/energy-weather-recon/internal/domain"
	"github.com/couchcryptid/energy-weather-recon/internal/table"
)

// key uniquely identifies a master row within one kind.
type key struct {
	City string
	Date string // DateLayout-formatted calendar date
}

// Master holds the full deduplicated row set for one kind. It owns its
// rows exclusively: consumers read snapshots via Table, never the
// internal state.
type Master struct {
	kind domain.Kind
	rows map[key]map[string]string
}

// Open loads a master store from its snapshot file. A missing snapshot
// yields an empty store, not an error; a present but unreadable one is
// an error, since silently discarding a master would re-duplicate
// history on the next merge.
func Open(kind domain.Kind, path string) (*Master, error) {
	m := &Master{kind: kind, rows: make(map[key]map[string]string)}

	t, err := table.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s master: %w", kind, err)
	}

	for i := 0; i < t.NumRows(); i++ {
		row := t.RowMap(i)
		date, ok := domain.ParseDate(row["date"])
		if !ok {
			continue
		}
		m.put(row["city"], date, row)
	}
	return m, nil
}

// Len returns the number of master rows.
func (m *Master) Len() int { return len(m.rows) }

// Kind returns the kind this store holds.
func (m *Master) Kind() domain.Kind { return m.kind }

// Merge applies a batch of records with last-write-wins semantics on
// (city, date): rows already in the store count as earliest, then the
// batch in input order, each duplicate replacing the previous row
// whole. Null-date records are excluded before resolution. Returns the
// number of records applied.
func (m *Master) Merge(batch []domain.RawRecord) int {
	applied := 0
	for _, rec := range batch {
		if rec.Kind != m.kind || rec.Date.IsZero() {
			continue
		}
		m.put(rec.City, rec.Date, domain.HealFields(rec.Fields))
		applied++
	}
	return applied
}

// put replaces the whole row for (city, date), projecting fields onto
// the kind's canonical schema. Partial-field merging is deliberately
// not performed.
func (m *Master) put(city string, date time.Time, fields map[string]string) {
	row := make(map[string]string, len(fields))
	for _, col := range domain.CanonicalColumns(m.kind) {
		if v, ok := fields[col]; ok {
			row[col] = v
		}
	}
	m.rows[key{City: city, Date: date.Format(domain.DateLayout)}] = row
}

// Table returns the store's rows as a flat table sorted by (city,
// date). The sort makes snapshots canonical: merging identical batches
// in any arrival order produces byte-identical files.
func (m *Master) Table() *table.Table {
	keys := make([]key, 0, len(m.rows))
	for k := range m.rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].City != keys[j].City {
			return keys[i].City < keys[j].City
		}
		return keys[i].Date < keys[j].Date
	})

	cols := append([]string{"date", "city"}, domain.CanonicalColumns(m.kind)...)
	t := table.New(cols...)
	for _, k := range keys {
		row := make(map[string]string, len(cols))
		row["date"] = k.Date
		row["city"] = k.City
		for col, v := range m.rows[k] {
			row[col] = v
		}
		t.AppendMap(row)
	}
	return t
}

// Snapshot writes the full row set to path atomically.
func (m *Master) Snapshot(path string) error {
	if err := m.Table().WriteFileAtomic(path); err != nil {
		return fmt.Errorf("snapshot %s master: %w", m.kind, err)
	}
	return nil
}
