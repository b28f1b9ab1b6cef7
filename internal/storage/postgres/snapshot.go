package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pokengu/idlemon/internal/storage"
)

// DefaultProfileID is the profile a single-player deployment saves under.
const DefaultProfileID = "default"

// SnapshotRepository persists game snapshots as one JSONB row per
// profile. It implements storage.Store and storage.MarkerStore.
type SnapshotRepository struct {
	db        *pgxpool.Pool
	profileID string
}

// NewSnapshotRepository creates a repository bound to one profile.
//
// Precondition: db must be a valid, open connection pool; profileID must
// be non-empty.
func NewSnapshotRepository(db *pgxpool.Pool, profileID string) *SnapshotRepository {
	return &SnapshotRepository{db: db, profileID: profileID}
}

// Load returns the profile's saved snapshot.
//
// Postcondition: Returns storage.ErrNoSnapshot when the profile has
// never been saved.
func (r *SnapshotRepository) Load(ctx context.Context) (*storage.Snapshot, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT snapshot FROM profiles WHERE id = $1`,
		r.profileID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot for %q: %w", r.profileID, err)
	}

	var snap storage.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot for %q: %w", r.profileID, err)
	}
	return &snap, nil
}

// Save upserts the profile's snapshot.
func (r *SnapshotRepository) Save(ctx context.Context, snap *storage.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot for %q: %w", r.profileID, err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO profiles (id, snapshot, saved_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot,
		    saved_at = EXCLUDED.saved_at,
		    updated_at = NOW()`,
		r.profileID, raw, snap.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting snapshot for %q: %w", r.profileID, err)
	}
	return nil
}

// LoadMarker returns the profile's last persisted tick time.
//
// Postcondition: Returns the zero time with a nil error when no marker
// has been saved yet.
func (r *SnapshotRepository) LoadMarker(ctx context.Context) (time.Time, error) {
	var at time.Time
	err := r.db.QueryRow(ctx,
		`SELECT marked_at FROM tick_markers WHERE profile_id = $1`,
		r.profileID,
	).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying tick marker for %q: %w", r.profileID, err)
	}
	return at, nil
}

// SaveMarker upserts the profile's last tick time.
func (r *SnapshotRepository) SaveMarker(ctx context.Context, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tick_markers (profile_id, marked_at)
		VALUES ($1, $2)
		ON CONFLICT (profile_id) DO UPDATE
		SET marked_at = EXCLUDED.marked_at`,
		r.profileID, at,
	)
	if err != nil {
		return fmt.Errorf("upserting tick marker for %q: %w", r.profileID, err)
	}
	return nil
}
