package backend

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/database"
	"github.com/TobiSchelling/repurposer/internal/llm"
)

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// GetUsage reports the formats generated since the first of the current
// UTC month against the monthly limit.
func (l *Local) GetUsage(ctx context.Context) (*content.UsageInfo, error) {
	now := l.now()
	start := monthStart(now)
	used, err := l.db.UsageSince(start)
	if err != nil {
		return nil, err
	}
	limit, err := l.db.GetIntSetting(database.SettingMonthlyLimit, l.opts.MonthlyLimit)
	if err != nil {
		return nil, err
	}
	return &content.UsageInfo{
		Used:     used,
		Limit:    limit,
		ResetsAt: database.FormatTime(start.AddDate(0, 1, 0)),
	}, nil
}

func (l *Local) checkUsage(ctx context.Context) error {
	info, err := l.GetUsage(ctx)
	if err != nil {
		return err
	}
	if info.Used >= info.Limit {
		return &UsageLimitError{Used: info.Used, Limit: info.Limit}
	}
	return nil
}

// SetMonthlyLimit stores a new monthly limit.
func (l *Local) SetMonthlyLimit(limit int) error {
	if limit < 1 {
		return content.Invalid("monthly limit must be at least 1, got %d", limit)
	}
	return l.db.SetSetting(database.SettingMonthlyLimit, strconv.Itoa(limit))
}

// GetAPIKey returns the stored key in masked form, or "" when none is set.
func (l *Local) GetAPIKey() (string, error) {
	key, err := l.db.GetSetting(database.SettingAPIKey)
	if err != nil {
		return "", err
	}
	return MaskKey(key), nil
}

// SetAPIKey stores a key. An empty key clears it. Keys must have the shape
// the configured provider expects.
func (l *Local) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if prefix := llm.KeyPrefix(l.opts.Provider); key != "" && !strings.HasPrefix(key, prefix) {
		return content.Invalid("invalid API key format: %s API keys start with %q", l.providerName(), prefix)
	}
	return l.db.SetSetting(database.SettingAPIKey, key)
}

func (l *Local) providerName() string {
	if l.opts.Provider == "" {
		return "claude"
	}
	return l.opts.Provider
}

// MaskKey shows the first and last four characters of a key.
func MaskKey(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) <= 8:
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
