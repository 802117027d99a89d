// Copyright (c) 2025, the fabricsnap authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/netgrid/fabricsnap/pkg/defaults"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL DEFAULT '',
	fabric     TEXT NOT NULL DEFAULT '',
	taken_at   INTEGER NOT NULL,
	health     TEXT NOT NULL DEFAULT '',
	baseline   INTEGER NOT NULL DEFAULT 0,
	incomplete INTEGER NOT NULL DEFAULT 0,
	devices    INTEGER NOT NULL DEFAULT 0,
	path       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_label ON snapshots(label);
CREATE INDEX IF NOT EXISTS idx_snapshots_taken ON snapshots(taken_at);
`

// catalog is the sqlite index over the snapshot directory.
type catalog struct {
	db *sql.DB
}

func openCatalog(path string) (*catalog, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout=%d", path, defaults.CatalogBusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &catalog{db: db}, nil
}

func (c *catalog) close() error {
	return c.db.Close()
}

// index upserts one entry. A new baseline demotes any previous
// baseline for the same fabric.
func (c *catalog) index(e Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if e.Baseline {
		if _, err := tx.ExecContext(ctx,
			`UPDATE snapshots SET baseline = 0 WHERE fabric = ?`, e.Fabric); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, label, fabric, taken_at, health, baseline, incomplete, devices, path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label, health = excluded.health,
			baseline = excluded.baseline, incomplete = excluded.incomplete,
			devices = excluded.devices, path = excluded.path`,
		e.ID, e.Label, e.Fabric, e.TakenAt.UTC().Unix(), e.Health,
		boolToInt(e.Baseline), boolToInt(e.Incomplete), e.Devices, e.Path)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (c *catalog) list() ([]Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, label, fabric, taken_at, health, baseline, incomplete, devices, path
		FROM snapshots ORDER BY taken_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var takenAt int64
		var baseline, incomplete int
		if err := rows.Scan(&e.ID, &e.Label, &e.Fabric, &takenAt, &e.Health,
			&baseline, &incomplete, &e.Devices, &e.Path); err != nil {
			return nil, err
		}
		e.TakenAt = time.Unix(takenAt, 0).UTC()
		e.Baseline = baseline != 0
		e.Incomplete = incomplete != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
