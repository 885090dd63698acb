// Package app wires the client side together: the state store, the
// generation orchestrator and the history and brand-voice managers, all
// talking to one backend.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/TobiSchelling/repurposer/internal/brandvoice"
	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/decode"
	"github.com/TobiSchelling/repurposer/internal/history"
	"github.com/TobiSchelling/repurposer/internal/pipeline"
	"github.com/TobiSchelling/repurposer/internal/platform"
	"github.com/TobiSchelling/repurposer/internal/store"
)

// Backend is the full service surface the client uses.
type Backend interface {
	pipeline.Backend
	history.Backend
	brandvoice.Backend
	GetUsage(ctx context.Context) (*content.UsageInfo, error)
}

// Options tunes an App.
type Options struct {
	PageSize int
	// Clipboard writes text to the system clipboard. Defaults to
	// clipboard.WriteAll.
	Clipboard func(string) error
}

// App is the client composition root.
type App struct {
	Store     *store.Store
	Generator *pipeline.Orchestrator
	History   *history.Manager
	Voices    *brandvoice.Manager

	backend   Backend
	clipboard func(string) error
	logger    *zap.Logger
}

// New builds an App around backend. A nil logger disables logging.
func New(backend Backend, opts Options, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	s, life := store.New()
	return &App{
		Store:     s,
		Generator: pipeline.New(backend, s, life, logger),
		History:   history.NewManager(backend, opts.PageSize),
		Voices:    brandvoice.NewManager(backend, s),
		backend:   backend,
		clipboard: opts.Clipboard,
		logger:    logger,
	}
}

// Start loads the data a fresh session shows: brand voices and usage.
func (a *App) Start(ctx context.Context) error {
	if _, err := a.Voices.Load(ctx); err != nil {
		return a.handle(SurfaceToUser, "load brand voices", err)
	}
	a.RefreshUsage(ctx)
	return nil
}

// Generate runs one generation and refreshes usage afterwards, whatever the
// outcome.
func (a *App) Generate(ctx context.Context) (*pipeline.Result, error) {
	res, err := a.Generator.Generate(ctx)
	if errors.Is(err, pipeline.ErrInFlight) {
		return nil, err
	}
	a.RefreshUsage(ctx)
	return res, a.handle(SurfaceToUser, "generate", err)
}

// RefreshUsage reloads the usage counter. Failures leave the previous value
// in place.
func (a *App) RefreshUsage(ctx context.Context) {
	info, err := a.backend.GetUsage(ctx)
	if err != nil {
		a.handle(BestEffort, "refresh usage", err)
		return
	}
	a.Store.SetUsage(*info)
}

// CopyOutput copies the generated text for f to the clipboard. It reports
// whether the copy happened.
func (a *App) CopyOutput(f platform.Format) bool {
	r, ok := a.Store.Snapshot().Result(f)
	if !ok {
		return false
	}
	text := r.Output.OutputText
	if r.View != nil {
		text = decode.Markdown(r.View)
	}
	if err := a.clipboard(text); err != nil {
		a.handle(BestEffort, "copy output", fmt.Errorf("copying %s: %w", f, err))
		return false
	}
	return true
}
