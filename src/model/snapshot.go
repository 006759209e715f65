package model

import (
	"database/sql"
	"errors"
	"time"
)

// ErrSnapshotNotFound is returned when no snapshot matches the id and owner.
var ErrSnapshotNotFound = errors.New("snapshot not found")

type SnapshotKind string

const (
	SnapshotFederal      SnapshotKind = "federal"
	SnapshotJurisdiction SnapshotKind = "jurisdiction"
)

// Snapshot is a stored input together with the result computed from it. Input and
// Result hold raw JSON; the service decodes them.
type Snapshot struct {
	ID           string       `json:"id"`
	Owner        string       `json:"-"`
	Kind         SnapshotKind `json:"kind"`
	TaxYear      int          `json:"tax_year"`
	Jurisdiction string       `json:"jurisdiction,omitempty"`
	InputJSON    string       `json:"-"`
	ResultJSON   string       `json:"-"`
	ETag         string       `json:"etag"`
	CreatedAt    time.Time    `json:"created_at"`
}

// CreateSnapshot inserts s. The caller assigns the ID.
func (s *Snapshot) CreateSnapshot(db *sql.DB) error {
	query := `
	INSERT INTO snapshots (id, owner, kind, tax_year, jurisdiction, input_json, result_json, etag, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err = stmt.Exec(s.ID, s.Owner, string(s.Kind), s.TaxYear, s.Jurisdiction, s.InputJSON, s.ResultJSON, s.ETag, s.CreatedAt)
	return err
}

// GetSnapshotByID returns the snapshot with id that belongs to owner.
func GetSnapshotByID(db *sql.DB, id, owner string) (*Snapshot, error) {
	query := `
	SELECT id, owner, kind, tax_year, jurisdiction, input_json, result_json, COALESCE(etag, ''), created_at
	FROM snapshots
	WHERE id = ? AND owner = ?`

	s := &Snapshot{}
	var kind string
	err := db.QueryRow(query, id, owner).Scan(&s.ID, &s.Owner, &kind, &s.TaxYear, &s.Jurisdiction, &s.InputJSON, &s.ResultJSON, &s.ETag, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	s.Kind = SnapshotKind(kind)
	return s, nil
}

// ListSnapshotsByOwner returns owner's snapshots, newest first, without the JSON bodies.
func ListSnapshotsByOwner(db *sql.DB, owner string, limit int) ([]Snapshot, error) {
	query := `
	SELECT id, owner, kind, tax_year, jurisdiction, COALESCE(etag, ''), created_at
	FROM snapshots
	WHERE owner = ?
	ORDER BY created_at DESC, id
	LIMIT ?`

	rows, err := db.Query(query, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var s Snapshot
		var kind string
		if err := rows.Scan(&s.ID, &s.Owner, &kind, &s.TaxYear, &s.Jurisdiction, &s.ETag, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Kind = SnapshotKind(kind)
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// DeleteSnapshot removes owner's snapshot with id.
func DeleteSnapshot(db *sql.DB, id, owner string) error {
	res, err := db.Exec(`DELETE FROM snapshots WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}
