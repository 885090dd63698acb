package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Setting keys seeded by the migrations.
const (
	SettingMonthlyLimit  = "monthly_usage_limit"
	SettingAPIKey        = "claude_api_key"
	SettingDefaultTone   = "default_tone"
	SettingDefaultLength = "default_length"
)

// GetSetting returns a setting value, or "" if it is unset.
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.conn.QueryRow("SELECT value FROM app_settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting creates or replaces a setting.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// GetIntSetting returns an integer setting, or def when it is unset or not
// a number.
func (db *DB) GetIntSetting(key string, def int) (int, error) {
	v, err := db.GetSetting(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, nil
	}
	return n, nil
}

// UsageSince sums the format counts of usage records created at or after since.
func (db *DB) UsageSince(since time.Time) (int, error) {
	var used int
	err := db.conn.QueryRow(
		"SELECT COALESCE(SUM(format_count), 0) FROM usage_records WHERE created_at >= ?",
		FormatTime(since),
	).Scan(&used)
	if err != nil {
		return 0, fmt.Errorf("summing usage: %w", err)
	}
	return used, nil
}
