package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Profile is a named set of gesture calibration thresholds.
type Profile struct {
	ID                  string
	Name                string
	ActivationThreshold float64
	HoldThreshold       float64
	MinRunFrames        int
	ReleaseRunFrames    int
	FingerLength        float64
	ThumbLength         float64
	RaiseMargin         float64
	ThumbRaiseMargin    float64
	DefaultVolume       float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ProfileRepository provides CRUD operations for calibration profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the calibration profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

const profileColumns = `id, name, activation_threshold, hold_threshold, min_run_frames,
	release_run_frames, finger_length, thumb_length, raise_margin, thumb_raise_margin,
	default_volume, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(&p.ID, &p.Name, &p.ActivationThreshold, &p.HoldThreshold,
		&p.MinRunFrames, &p.ReleaseRunFrames, &p.FingerLength, &p.ThumbLength,
		&p.RaiseMargin, &p.ThumbRaiseMargin, &p.DefaultVolume, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Create inserts a new calibration profile.
func (r *ProfileRepository) Create(p *Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO calibration_profiles (`+profileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.ActivationThreshold, p.HoldThreshold, p.MinRunFrames,
		p.ReleaseRunFrames, p.FingerLength, p.ThumbLength, p.RaiseMargin,
		p.ThumbRaiseMargin, p.DefaultVolume, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	row := r.db.QueryRow(
		`SELECT `+profileColumns+` FROM calibration_profiles WHERE id = ?`, id)
	return scanProfile(row)
}

// GetByName retrieves a profile by its name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	row := r.db.QueryRow(
		`SELECT `+profileColumns+` FROM calibration_profiles WHERE name = ?`, name)
	return scanProfile(row)
}

// List retrieves all profiles, newest first.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(
		`SELECT ` + profileColumns + ` FROM calibration_profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Update updates an existing profile.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE calibration_profiles SET name = ?, activation_threshold = ?,
		 hold_threshold = ?, min_run_frames = ?, release_run_frames = ?,
		 finger_length = ?, thumb_length = ?, raise_margin = ?,
		 thumb_raise_margin = ?, default_volume = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.ActivationThreshold, p.HoldThreshold, p.MinRunFrames,
		p.ReleaseRunFrames, p.FingerLength, p.ThumbLength, p.RaiseMargin,
		p.ThumbRaiseMargin, p.DefaultVolume, p.UpdatedAt, p.ID,
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

// Delete removes a profile by its ID.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM calibration_profiles WHERE id = ?`, id)
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
