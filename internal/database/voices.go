package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/TobiSchelling/repurposer/internal/content"
)

const voiceColumns = `id, name, description, style_attributes_json, is_default, created_at, updated_at`

// ListVoices returns all profiles, the default first, then by name.
func (db *DB) ListVoices() ([]content.VoiceProfile, error) {
	rows, err := db.conn.Query(
		`SELECT ` + voiceColumns + ` FROM brand_voice_profiles ORDER BY is_default DESC, name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	voices := []content.VoiceProfile{}
	for rows.Next() {
		v, err := scanVoice(rows)
		if err != nil {
			return nil, err
		}
		voices = append(voices, *v)
	}
	return voices, rows.Err()
}

// GetVoice returns a profile by ID, or nil if it does not exist.
func (db *DB) GetVoice(id string) (*content.VoiceProfile, error) {
	v, err := scanVoice(db.conn.QueryRow(`SELECT `+voiceColumns+` FROM brand_voice_profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// GetDefaultVoice returns the default profile, or nil if there is none.
func (db *DB) GetDefaultVoice() (*content.VoiceProfile, error) {
	v, err := scanVoice(db.conn.QueryRow(`SELECT ` + voiceColumns + ` FROM brand_voice_profiles WHERE is_default = 1 LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// InsertVoice stores a profile and its samples. When no profile exists yet
// the new one becomes the default; p.IsDefault is updated accordingly.
func (db *DB) InsertVoice(p *content.VoiceProfile, samples []string) error {
	style, err := json.Marshal(p.StyleAttributes)
	if err != nil {
		return fmt.Errorf("encoding style attributes: %w", err)
	}

	return db.withTx(func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRow("SELECT COUNT(*) FROM brand_voice_profiles").Scan(&count); err != nil {
			return fmt.Errorf("counting profiles: %w", err)
		}
		p.IsDefault = count == 0

		if _, err := tx.Exec(
			`INSERT INTO brand_voice_profiles (`+voiceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, nullString(p.Description), string(style), boolInt(p.IsDefault), p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("inserting profile: %w", err)
		}
		for _, s := range samples {
			if _, err := tx.Exec(
				`INSERT INTO brand_voice_samples (id, profile_id, sample_text, created_at) VALUES (?, ?, ?, ?)`,
				uuid.NewString(), p.ID, s, p.CreatedAt,
			); err != nil {
				return fmt.Errorf("inserting sample: %w", err)
			}
		}
		return nil
	})
}

// GetVoiceSamples returns the samples a profile was built from.
func (db *DB) GetVoiceSamples(profileID string) ([]string, error) {
	rows, err := db.conn.Query(
		`SELECT sample_text FROM brand_voice_samples WHERE profile_id = ? ORDER BY created_at, rowid`, profileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// DeleteVoice removes a profile and its samples. It reports whether the
// profile existed.
func (db *DB) DeleteVoice(id string) (bool, error) {
	var affected int64
	err := db.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM brand_voice_samples WHERE profile_id = ?", id); err != nil {
			return fmt.Errorf("deleting samples: %w", err)
		}
		res, err := tx.Exec("DELETE FROM brand_voice_profiles WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting profile: %w", err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected > 0, err
}

// SetDefaultVoice makes id the only default profile. It reports whether the
// profile exists; nothing changes when it does not.
func (db *DB) SetDefaultVoice(id, updatedAt string) (bool, error) {
	found := false
	err := db.withTx(func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRow("SELECT COUNT(*) FROM brand_voice_profiles WHERE id = ?", id).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		found = true
		if _, err := tx.Exec("UPDATE brand_voice_profiles SET is_default = 0 WHERE is_default = 1"); err != nil {
			return fmt.Errorf("clearing default: %w", err)
		}
		_, err := tx.Exec("UPDATE brand_voice_profiles SET is_default = 1, updated_at = ? WHERE id = ?", updatedAt, id)
		return err
	})
	return found, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVoice(row scanner) (*content.VoiceProfile, error) {
	var v content.VoiceProfile
	var desc sql.NullString
	var style string
	var isDefault int
	if err := row.Scan(&v.ID, &v.Name, &desc, &style, &isDefault, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.Description = desc.String
	v.IsDefault = isDefault != 0
	// A corrupt attribute blob leaves the attributes empty rather than
	// hiding the profile.
	_ = json.Unmarshal([]byte(style), &v.StyleAttributes)
	return &v, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
