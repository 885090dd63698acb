// Package history pages through saved submissions.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/TobiSchelling/repurposer/internal/content"
)

// DefaultPageSize is used when a manager is created with a non-positive size.
const DefaultPageSize = 20

// ErrPageOutOfRange is returned for a page outside 1..PageCount.
var ErrPageOutOfRange = errors.New("history page out of range")

// Backend is the part of the backend the history manager needs.
type Backend interface {
	GetHistory(ctx context.Context, page, pageSize int) (*content.HistoryPage, error)
	GetHistoryDetail(ctx context.Context, id string) (*content.HistoryDetail, error)
	DeleteHistoryItem(ctx context.Context, id string) error
}

// PageCount returns the number of pages needed for total items.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Manager holds the currently loaded history page. Deletions are always
// followed by a re-fetch of the current page.
type Manager struct {
	backend  Backend
	pageSize int

	mu    sync.Mutex
	page  int
	items []content.HistoryItem
	total int
}

// NewManager creates a history manager.
func NewManager(backend Backend, pageSize int) *Manager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Manager{backend: backend, pageSize: pageSize, page: 1}
}

// PageSize returns the configured page size.
func (m *Manager) PageSize() int { return m.pageSize }

// Page returns the current page number, its items and the total count.
func (m *Manager) Page() (int, []content.HistoryItem, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page, append([]content.HistoryItem(nil), m.items...), m.total
}

// PageCount returns the number of pages for the last known total.
func (m *Manager) PageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return PageCount(m.total, m.pageSize)
}

// FetchPage loads page and makes it current. A page past the last one for
// the backend's current total is rejected with ErrPageOutOfRange rather than
// clamped, and the current page stays as it was. Page 1 is always valid, even
// when history is empty.
func (m *Manager) FetchPage(ctx context.Context, page int) (*content.HistoryPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page %d", ErrPageOutOfRange, page)
	}

	hp, err := m.backend.GetHistory(ctx, page, m.pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetching history page %d: %w", page, err)
	}
	if page > 1 && page > PageCount(hp.Total, m.pageSize) {
		m.setTotal(hp.Total)
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, PageCount(hp.Total, m.pageSize))
	}

	m.mu.Lock()
	m.page = page
	m.items = append([]content.HistoryItem(nil), hp.Items...)
	m.total = hp.Total
	m.mu.Unlock()
	return hp, nil
}

// Refresh re-fetches the current page.
func (m *Manager) Refresh(ctx context.Context) (*content.HistoryPage, error) {
	m.mu.Lock()
	page := m.page
	m.mu.Unlock()
	return m.FetchPage(ctx, page)
}

// Detail loads a saved submission with its outputs.
func (m *Manager) Detail(ctx context.Context, id string) (*content.HistoryDetail, error) {
	d, err := m.backend.GetHistoryDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching history item %s: %w", id, err)
	}
	return d, nil
}

// Delete removes a saved submission and then re-fetches the current page,
// whether or not the deletion succeeded. When the current page no longer
// exists after the deletion, the last remaining page is loaded instead. The
// deletion error takes precedence over a refresh error.
func (m *Manager) Delete(ctx context.Context, id string) error {
	delErr := m.backend.DeleteHistoryItem(ctx, id)
	if delErr != nil {
		delErr = fmt.Errorf("deleting history item %s: %w", id, delErr)
	}

	_, err := m.Refresh(ctx)
	if errors.Is(err, ErrPageOutOfRange) {
		last := max(m.PageCount(), 1)
		_, err = m.FetchPage(ctx, last)
	}
	if delErr != nil {
		return delErr
	}
	return err
}

func (m *Manager) setTotal(total int) {
	m.mu.Lock()
	m.total = total
	m.mu.Unlock()
}
