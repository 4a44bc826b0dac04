// Package db provides the local sqlite store for collected sensor
// records. The collectors write every record here even when the remote
// sink is configured, so field data survives network outages.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/flowmeter"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/tempframe"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the sqlite database at path and brings its
// schema up to the latest migration.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// RecordFlow stores one flowmeter record. The capture wall-clock time is
// the record timestamp; the device-reported timestamp is kept alongside it.
func (db *DB) RecordFlow(r flowmeter.Record) error {
	_, err := db.Exec(
		`INSERT INTO flow_data (timestamp, device_timestamp, flow, velocity) VALUES (?, ?, ?, ?)`,
		r.CapturedAt.UTC().Format(time.RFC3339Nano), r.DeviceTime, r.Flow, r.Velocity,
	)
	if err != nil {
		return fmt.Errorf("failed to insert flow record: %w", err)
	}
	return nil
}

// RecordTemperature stores one probe record.
func (db *DB) RecordTemperature(r tempframe.Record) error {
	_, err := db.Exec(
		`INSERT INTO temperature_data (timestamp, t1, t2) VALUES (?, ?, ?)`,
		r.CapturedAt.UTC().Format(time.RFC3339Nano), r.T1, r.T2,
	)
	if err != nil {
		return fmt.Errorf("failed to insert temperature record: %w", err)
	}
	return nil
}

// RecentFlow returns up to limit flow records, newest first.
func (db *DB) RecentFlow(limit int) ([]flowmeter.Record, error) {
	rows, err := db.Query(
		`SELECT timestamp, device_timestamp, flow, velocity
		 FROM flow_data ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query flow records: %w", err)
	}
	defer rows.Close()

	var records []flowmeter.Record
	for rows.Next() {
		var (
			r  flowmeter.Record
			ts string
		)
		if err := rows.Scan(&ts, &r.DeviceTime, &r.Flow, &r.Velocity); err != nil {
			return nil, fmt.Errorf("failed to scan flow record: %w", err)
		}
		if r.CapturedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("failed to parse stored timestamp %q: %w", ts, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecentTemperatures returns up to limit probe records, newest first.
func (db *DB) RecentTemperatures(limit int) ([]tempframe.Record, error) {
	rows, err := db.Query(
		`SELECT timestamp, t1, t2
		 FROM temperature_data ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query temperature records: %w", err)
	}
	defer rows.Close()

	var records []tempframe.Record
	for rows.Next() {
		var (
			r  tempframe.Record
			ts string
		)
		if err := rows.Scan(&ts, &r.T1, &r.T2); err != nil {
			return nil, fmt.Errorf("failed to scan temperature record: %w", err)
		}
		if r.CapturedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("failed to parse stored timestamp %q: %w", ts, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
