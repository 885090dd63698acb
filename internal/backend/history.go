package backend

import (
	"context"
	"fmt"

	"github.com/TobiSchelling/repurposer/internal/content"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetHistory returns one page of saved submissions, newest first.
func (l *Local) GetHistory(ctx context.Context, page, pageSize int) (*content.HistoryPage, error) {
	if page < 1 {
		return nil, content.Invalid("page must be at least 1, got %d", page)
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)

	items, total, err := l.db.GetHistory(page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return &content.HistoryPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetHistoryDetail returns a saved submission with its outputs.
func (l *Local) GetHistoryDetail(ctx context.Context, id string) (*content.HistoryDetail, error) {
	in, err := l.db.GetInput(id)
	if err != nil {
		return nil, fmt.Errorf("loading content input: %w", err)
	}
	if in == nil {
		return nil, fmt.Errorf("content input %q: %w", id, ErrNotFound)
	}
	outputs, err := l.db.GetOutputs(id)
	if err != nil {
		return nil, fmt.Errorf("loading outputs: %w", err)
	}
	return &content.HistoryDetail{Input: *in, Outputs: outputs}, nil
}

// DeleteHistoryItem removes a saved submission with its outputs and usage
// records.
func (l *Local) DeleteHistoryItem(ctx context.Context, id string) error {
	found, err := l.db.DeleteInput(id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("content input %q: %w", id, ErrNotFound)
	}
	return nil
}
