package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/TobiSchelling/repurposer/internal/content"
)

// Generation is everything persisted for one successful generation.
type Generation struct {
	Input   content.Input
	Outputs []content.Output
	// UsageID identifies the usage record charged for the outputs.
	UsageID string
}

// SaveGeneration stores an input, its outputs and one usage record counting
// the outputs, in a single transaction.
func (db *DB) SaveGeneration(g Generation) error {
	return db.withTx(func(tx *sql.Tx) error {
		in := g.Input
		if _, err := tx.Exec(
			`INSERT INTO content_inputs (id, source_url, raw_text, title, word_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			in.ID, nullString(in.SourceURL), in.RawText, nullString(in.Title), in.WordCount, in.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting content input: %w", err)
		}

		for i, o := range g.Outputs {
			if _, err := tx.Exec(
				`INSERT INTO repurposed_outputs (id, content_input_id, format, output_text, position, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				o.ID, in.ID, o.Format, o.OutputText, i, o.CreatedAt,
			); err != nil {
				return fmt.Errorf("inserting %s output: %w", o.Format, err)
			}
		}

		if _, err := tx.Exec(
			`INSERT INTO usage_records (id, content_input_id, format_count, created_at) VALUES (?, ?, ?, ?)`,
			g.UsageID, in.ID, len(g.Outputs), in.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting usage record: %w", err)
		}
		return nil
	})
}

// GetHistory returns one page of inputs, newest first, with the total count.
func (db *DB) GetHistory(page, pageSize int) ([]content.HistoryItem, int, error) {
	var total int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM content_inputs").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting content inputs: %w", err)
	}

	rows, err := db.conn.Query(
		`SELECT ci.id, ci.title, ci.word_count, ci.created_at,
			(SELECT COUNT(*) FROM repurposed_outputs WHERE content_input_id = ci.id)
		FROM content_inputs ci
		ORDER BY ci.created_at DESC, ci.rowid DESC
		LIMIT ? OFFSET ?`,
		pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []content.HistoryItem{}
	for rows.Next() {
		var it content.HistoryItem
		var title sql.NullString
		if err := rows.Scan(&it.ID, &title, &it.WordCount, &it.CreatedAt, &it.FormatCount); err != nil {
			return nil, 0, err
		}
		it.Title = title.String
		items = append(items, it)
	}
	return items, total, rows.Err()
}

// GetInput returns an input by ID, or nil if it does not exist.
func (db *DB) GetInput(id string) (*content.Input, error) {
	var in content.Input
	var sourceURL, title sql.NullString
	err := db.conn.QueryRow(
		`SELECT id, source_url, raw_text, title, word_count, created_at FROM content_inputs WHERE id = ?`, id,
	).Scan(&in.ID, &sourceURL, &in.RawText, &title, &in.WordCount, &in.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	in.SourceURL = sourceURL.String
	in.Title = title.String
	return &in, nil
}

// GetOutputs returns the outputs of an input in generation order.
func (db *DB) GetOutputs(inputID string) ([]content.Output, error) {
	rows, err := db.conn.Query(
		`SELECT id, content_input_id, format, output_text, created_at
		FROM repurposed_outputs WHERE content_input_id = ?
		ORDER BY position ASC, created_at ASC`, inputID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outputs := []content.Output{}
	for rows.Next() {
		var o content.Output
		if err := rows.Scan(&o.ID, &o.ContentInputID, &o.Format, &o.OutputText, &o.CreatedAt); err != nil {
			return nil, err
		}
		outputs = append(outputs, o)
	}
	return outputs, rows.Err()
}

// DeleteInput removes an input with its outputs and usage records. It
// reports whether the input existed.
func (db *DB) DeleteInput(id string) (bool, error) {
	var affected int64
	err := db.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM repurposed_outputs WHERE content_input_id = ?", id); err != nil {
			return fmt.Errorf("deleting outputs: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM usage_records WHERE content_input_id = ?", id); err != nil {
			return fmt.Errorf("deleting usage records: %w", err)
		}
		res, err := tx.Exec("DELETE FROM content_inputs WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting content input: %w", err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected > 0, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
