/*
Package cache provides a SQLite-backed store for completed conversions,
keyed by a fingerprint of the source image and its configuration. Repeat
conversions of unchanged inputs skip the pipeline entirely.
*/
package cache

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps a SQLite database of cached conversion artifacts.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at file, creating its schema if
// necessary.
func Open(file string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS conversion (
		id INTEGER PRIMARY KEY NOT NULL,
		fingerprint TEXT NOT NULL UNIQUE,
		bat BLOB NOT NULL,
		tiles BLOB NOT NULL,
		palettes BLOB NOT NULL,
		vram_base INTEGER NOT NULL,
		bat_width INTEGER NOT NULL,
		bat_height INTEGER NOT NULL,
		overflow INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Fingerprint derives a cache key from the raw source image bytes and a
// serialized form of the conversion configuration, so any change to either
// invalidates the entry. Both inputs are fed through the same running
// checksum, preceded by the source's length, so a byte moved across the
// source/config boundary still changes the result.
func Fingerprint(source, configBytes []byte) string {
	h := crc32.NewIEEE()
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(source)))
	h.Write(n[:])
	h.Write(source)
	h.Write(configBytes)
	return fmt.Sprintf("%08X", h.Sum32())
}

// Entry is the set of artifacts stored and retrieved for one fingerprint.
type Entry struct {
	BAT                 []byte
	Tiles               []byte
	Palettes            []byte
	VRAMBase            uint32
	BATWidth, BATHeight int
	Overflow            bool
}

// Get looks up a cached entry by fingerprint. ok is false if no entry with
// that fingerprint exists.
func (s *Store) Get(fingerprint string) (entry Entry, ok bool, err error) {
	var overflow int
	row := s.db.QueryRow(`SELECT bat, tiles, palettes, vram_base, bat_width, bat_height, overflow
		FROM conversion WHERE fingerprint = ?`, fingerprint)
	if err = row.Scan(&entry.BAT, &entry.Tiles, &entry.Palettes, &entry.VRAMBase, &entry.BATWidth, &entry.BATHeight, &overflow); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	entry.Overflow = overflow != 0
	return entry, true, nil
}

// Put stores entry under fingerprint, replacing any existing entry with the
// same key.
func (s *Store) Put(fingerprint string, entry Entry) error {
	overflow := 0
	if entry.Overflow {
		overflow = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO conversion
		(fingerprint, bat, tiles, palettes, vram_base, bat_width, bat_height, overflow)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fingerprint, entry.BAT, entry.Tiles, entry.Palettes, entry.VRAMBase, entry.BATWidth, entry.BATHeight, overflow)
	return err
}

// Delete removes the entry for fingerprint, if present.
func (s *Store) Delete(fingerprint string) error {
	_, err := s.db.Exec("DELETE FROM conversion WHERE fingerprint = ?", fingerprint)
	return err
}
