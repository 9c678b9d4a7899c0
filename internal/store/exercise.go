package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/formcoach/internal/exercise"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTargets is returned for non-positive rep or set targets.
var ErrInvalidTargets = errors.New("reps and sets must be positive")

// ExerciseRepository provides access to exercise metadata.
type ExerciseRepository struct {
	db *sql.DB
}

// Exercises returns the exercise repository for this store.
func (s *Store) Exercises() *ExerciseRepository {
	return &ExerciseRepository{db: s.db}
}

// Seed inserts every entry that is not stored yet. Existing rows, including
// targets changed by the user, are left alone.
func (r *ExerciseRepository) Seed(infos []exercise.Info) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, info := range infos {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO exercises (type, name, reps, sets, position, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			string(info.Type), info.Name, info.Reps, info.Sets, i, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("seed %s: %w", info.Type, err)
		}
	}

	return tx.Commit()
}

// List retrieves all exercises in menu order.
func (r *ExerciseRepository) List() ([]exercise.Info, error) {
	rows, err := r.db.Query(
		`SELECT type, name, reps, sets FROM exercises ORDER BY position, type`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []exercise.Info
	for rows.Next() {
		var info exercise.Info
		var typ string
		if err := rows.Scan(&typ, &info.Name, &info.Reps, &info.Sets); err != nil {
			return nil, err
		}
		info.Type = exercise.Type(typ)
		infos = append(infos, info)
	}

	return infos, rows.Err()
}

// Get retrieves one exercise by type.
func (r *ExerciseRepository) Get(t exercise.Type) (exercise.Info, error) {
	info := exercise.Info{Type: t}

	err := r.db.QueryRow(
		`SELECT name, reps, sets FROM exercises WHERE type = ?`,
		string(t),
	).Scan(&info.Name, &info.Reps, &info.Sets)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exercise.Info{}, ErrNotFound
		}
		return exercise.Info{}, err
	}

	return info, nil
}

// UpdateTargets changes the target reps and sets of an exercise.
func (r *ExerciseRepository) UpdateTargets(t exercise.Type, reps, sets int) error {
	if reps <= 0 || sets <= 0 {
		return ErrInvalidTargets
	}

	result, err := r.db.Exec(
		`UPDATE exercises SET reps = ?, sets = ?, updated_at = ? WHERE type = ?`,
		reps, sets, time.Now(), string(t),
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
