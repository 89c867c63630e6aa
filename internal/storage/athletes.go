package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/wodcoach/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const athleteColumns = `id, name, COALESCE(login, ''), gender, experience, bodyweight_kg`

func scanAthlete(row pgx.Row) (*models.AthleteProfile, error) {
	var (
		a                  models.AthleteProfile
		gender, experience string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Login, &gender, &experience, &a.BodyweightKg); err != nil {
		return nil, err
	}
	a.Gender = models.Gender(gender)
	a.Experience = models.ExperienceLevel(experience)
	return &a, nil
}

// GetAthlete returns an athlete by ID, or an error wrapping ErrNotFound.
func (db *DB) GetAthlete(ctx context.Context, id uuid.UUID) (*models.AthleteProfile, error) {
	a, err := scanAthlete(db.Pool.QueryRow(ctx,
		`SELECT `+athleteColumns+` FROM athletes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("athlete %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying athlete: %w", err)
	}
	return a, nil
}

// GetAthleteByLogin returns the athlete linked to a tailnet login.
func (db *DB) GetAthleteByLogin(ctx context.Context, login string) (*models.AthleteProfile, error) {
	a, err := scanAthlete(db.Pool.QueryRow(ctx,
		`SELECT `+athleteColumns+` FROM athletes WHERE login = $1`, login))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("athlete with login %s: %w", login, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying athlete by login: %w", err)
	}
	_, _ = db.Pool.Exec(ctx, `UPDATE athletes SET last_seen = NOW() WHERE id = $1`, a.ID)
	return a, nil
}

// UpsertAthlete creates an athlete or updates the profile with the same ID.
func (db *DB) UpsertAthlete(ctx context.Context, a models.AthleteProfile) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO athletes (id, name, login, gender, experience, bodyweight_kg)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
				login = COALESCE(EXCLUDED.login, athletes.login),
				gender = EXCLUDED.gender,
				experience = EXCLUDED.experience,
				bodyweight_kg = EXCLUDED.bodyweight_kg
	`, a.ID, a.Name, a.Login, string(a.Gender), string(a.Experience), a.BodyweightKg)
	if err != nil {
		return fmt.Errorf("upserting athlete %s: %w", a.ID, err)
	}
	return nil
}

// ListAthletes returns all athletes ordered by name.
func (db *DB) ListAthletes(ctx context.Context) ([]models.AthleteProfile, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+athleteColumns+` FROM athletes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying athletes: %w", err)
	}
	defer rows.Close()

	var result []models.AthleteProfile
	for rows.Next() {
		a, err := scanAthlete(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning athlete: %w", err)
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}
