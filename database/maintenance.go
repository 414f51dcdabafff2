package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// sequenceLockKey guards bulk clears against racing inserts on Postgres.
const sequenceLockKey int64 = 0x66657274706c616e

// ClearTables empties tables and restarts their id sequences at 1. Tables
// should be listed children first.
func ClearTables(ctx context.Context, db *gorm.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	return NewTransactor(db).WithinTx(ctx, func(ctx context.Context) error {
		tx := Conn(ctx, db)
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(`SELECT pg_advisory_xact_lock(?)`, sequenceLockKey).Error; err != nil {
				return Classify("clear.lock", err)
			}
			q := fmt.Sprintf(`TRUNCATE TABLE %s RESTART IDENTITY CASCADE`, strings.Join(tables, ", "))
			return Classify("clear.truncate", tx.Exec(q).Error)
		}

		for _, t := range tables {
			if err := tx.Exec(fmt.Sprintf(`DELETE FROM %s`, t)).Error; err != nil {
				return Classify("clear.delete", err)
			}
		}
		// sqlite_sequence only exists once an AUTOINCREMENT table has been created
		var seq string
		if err := tx.Raw(`SELECT name FROM sqlite_master WHERE type='table' AND name='sqlite_sequence'`).Scan(&seq).Error; err != nil {
			return Classify("clear.sequence", err)
		}
		if seq == "" {
			return nil
		}
		return Classify("clear.sequence", tx.Exec(`DELETE FROM sqlite_sequence WHERE name IN ?`, tables).Error)
	})
}

// Ping checks the store is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return Classify("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return Classify("ping", err)
	}
	return nil
}
