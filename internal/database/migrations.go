package database

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "content inputs and outputs",
		SQL: `
CREATE TABLE IF NOT EXISTS content_inputs (
    id TEXT PRIMARY KEY,
    source_url TEXT,
    raw_text TEXT NOT NULL,
    title TEXT,
    word_count INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS repurposed_outputs (
    id TEXT PRIMARY KEY,
    content_input_id TEXT NOT NULL REFERENCES content_inputs(id) ON DELETE CASCADE,
    format TEXT NOT NULL,
    output_text TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_repurposed_outputs_input ON repurposed_outputs(content_input_id);
CREATE INDEX IF NOT EXISTS idx_content_inputs_created_at ON content_inputs(created_at DESC);
`,
	},
	{
		Version:     2,
		Description: "brand voice profiles and samples",
		SQL: `
CREATE TABLE IF NOT EXISTS brand_voice_profiles (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    style_attributes_json TEXT NOT NULL,
    is_default INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS brand_voice_samples (
    id TEXT PRIMARY KEY,
    profile_id TEXT NOT NULL REFERENCES brand_voice_profiles(id) ON DELETE CASCADE,
    sample_text TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_brand_voice_samples_profile ON brand_voice_samples(profile_id);
`,
	},
	{
		Version:     3,
		Description: "usage records",
		SQL: `
CREATE TABLE IF NOT EXISTS usage_records (
    id TEXT PRIMARY KEY,
    content_input_id TEXT NOT NULL REFERENCES content_inputs(id) ON DELETE CASCADE,
    format_count INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_records_created_at ON usage_records(created_at);
`,
	},
	{
		Version:     4,
		Description: "app settings",
		SQL: `
CREATE TABLE IF NOT EXISTS app_settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

INSERT OR IGNORE INTO app_settings (key, value) VALUES ('monthly_usage_limit', '50');
INSERT OR IGNORE INTO app_settings (key, value) VALUES ('claude_api_key', '');
INSERT OR IGNORE INTO app_settings (key, value) VALUES ('default_tone', 'professional');
INSERT OR IGNORE INTO app_settings (key, value) VALUES ('default_length', 'medium');
`,
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
