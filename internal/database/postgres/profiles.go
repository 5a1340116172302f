package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/breed-twin/internal/database"
)

const profileColumns = `key, breed, path, colors, lab, hex, confidence, samples, run_id, updated_at`

// ProfileRepository provides PostgreSQL-backed breed profile storage.
type ProfileRepository struct {
	pool *Pool
}

// NewProfileRepository creates a new PostgreSQL profile repository.
func NewProfileRepository(pool *Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func scanProfile(scanner interface{ Scan(...any) error }, extraDest ...any) (database.BreedProfile, error) {
	var p database.BreedProfile
	var colors pq.StringArray
	var vec pgvector.Vector

	dest := append([]any{
		&p.Key,
		&p.Breed,
		&p.Path,
		&colors,
		&vec,
		&p.Hex,
		&p.Confidence,
		&p.Samples,
		&p.RunID,
		&p.UpdatedAt,
	}, extraDest...)
	if err := scanner.Scan(dest...); err != nil {
		return database.BreedProfile{}, err
	}

	p.Colors = []string(colors)
	p.Lab = vec.Slice()
	return p, nil
}

// Get retrieves a profile by key, returns nil if not found.
func (r *ProfileRepository) Get(ctx context.Context, key string) (*database.BreedProfile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM breed_profiles WHERE key = $1`, key)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

// List returns all profiles ordered by key.
func (r *ProfileRepository) List(ctx context.Context) ([]database.BreedProfile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM breed_profiles ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []database.BreedProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

// Count returns the total number of profiles stored.
func (r *ProfileRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM breed_profiles").Scan(&count); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return count, nil
}

// FindNearest returns the profiles closest to lab using the pgvector L2
// operator, with their distances.
func (r *ProfileRepository) FindNearest(ctx context.Context, lab []float32, limit int) ([]database.BreedProfile, []float64, error) {
	if len(lab) != database.LabDim {
		return nil, nil, fmt.Errorf("lab vector must have %d dimensions, got %d", database.LabDim, len(lab))
	}

	query := `
		SELECT ` + profileColumns + `, lab <-> $1::vector AS distance
		FROM breed_profiles
		ORDER BY lab <-> $1::vector, key
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(lab), limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query nearest profiles: %w", err)
	}
	defer rows.Close()

	var profiles []database.BreedProfile
	var distances []float64
	for rows.Next() {
		var distance float64
		p, err := scanProfile(rows, &distance)
		if err != nil {
			return nil, nil, fmt.Errorf("scan nearest profile: %w", err)
		}
		profiles = append(profiles, p)
		distances = append(distances, distance)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate nearest profiles: %w", err)
	}
	return profiles, distances, nil
}

// Save upserts profiles by key in a single transaction.
func (r *ProfileRepository) Save(ctx context.Context, profiles []database.BreedProfile) error {
	if len(profiles) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO breed_profiles (key, breed, path, colors, lab, hex, confidence, samples, run_id)
		VALUES ($1, $2, $3, $4, $5::vector, $6, $7, $8, $9)
		ON CONFLICT (key) DO UPDATE SET
			breed = EXCLUDED.breed,
			path = EXCLUDED.path,
			colors = EXCLUDED.colors,
			lab = EXCLUDED.lab,
			hex = EXCLUDED.hex,
			confidence = EXCLUDED.confidence,
			samples = EXCLUDED.samples,
			run_id = EXCLUDED.run_id,
			updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("prepare profile upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range profiles {
		if len(p.Lab) != database.LabDim {
			return fmt.Errorf("profile %s: lab vector must have %d dimensions", p.Key, database.LabDim)
		}
		if _, err := stmt.ExecContext(ctx,
			p.Key,
			p.Breed,
			p.Path,
			pq.Array(p.Colors),
			pgvector.NewVector(p.Lab),
			p.Hex,
			p.Confidence,
			p.Samples,
			p.RunID,
		); err != nil {
			return fmt.Errorf("save profile %s: %w", p.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete removes the profile for key.
func (r *ProfileRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM breed_profiles WHERE key = $1", key); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// Verify interface compliance.
var _ database.ProfileStore = (*ProfileRepository)(nil)
