// Package pipeline drives a generation: it reads the current settings from
// the store, optionally fetches the source URL, calls the backend and
// publishes the decoded outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/decode"
	"github.com/TobiSchelling/repurposer/internal/platform"
	"github.com/TobiSchelling/repurposer/internal/store"
)

// ErrInFlight is returned when a generation is already outstanding.
var ErrInFlight = errors.New("a generation is already in progress")

// Backend is the part of the backend a generation needs.
type Backend interface {
	FetchURL(ctx context.Context, url string) (*content.Fetched, error)
	RepurposeContent(ctx context.Context, req content.Request) (*content.Response, error)
}

// StepResult holds the result of a single generation step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a generation run.
type Result struct {
	ContentInputID string
	Steps          []StepResult
	Outputs        []store.Result
}

// Orchestrator runs generations one at a time.
type Orchestrator struct {
	backend Backend
	store   *store.Store
	life    *store.Lifecycle
	logger  *zap.Logger
}

// New creates an orchestrator. A nil logger disables logging.
func New(backend Backend, s *store.Store, life *store.Lifecycle, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{backend: backend, store: s, life: life, logger: logger}
}

// Generate runs one generation from the store's current settings.
//
// Input problems are reported as *content.ValidationError before anything
// changes. A call made while another generation is outstanding returns
// ErrInFlight without contacting the backend. Fetch and backend failures are
// recorded in the store and also returned.
func (o *Orchestrator) Generate(ctx context.Context) (*Result, error) {
	snap := o.store.Snapshot()
	if err := preflight(snap); err != nil {
		return nil, err
	}

	if !o.life.Begin(snap.UseURL) {
		o.logger.Debug("generation rejected, another is in flight")
		return nil, ErrInFlight
	}

	r := &Result{}
	text, title := snap.RawContent, strings.TrimSpace(snap.Title)

	if snap.UseURL {
		url := strings.TrimSpace(snap.SourceURL)
		fetched, err := o.backend.FetchURL(ctx, url)
		if err != nil {
			r.Steps = append(r.Steps, StepResult{Name: "Fetch", Err: err})
			return r, o.fail(err)
		}
		text = fetched.Text
		if title == "" {
			title = strings.TrimSpace(fetched.Title)
		}
		r.Steps = append(r.Steps, StepResult{
			Name:    "Fetch",
			Summary: fmt.Sprintf("Fetched %d words from %s", fetched.WordCount, url),
		})
		o.logger.Info("fetched source url", zap.String("url", url), zap.Int("words", fetched.WordCount))
		o.life.Requesting()
	}

	req := buildRequest(snap, text, title)
	if err := req.Validate(); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Validate", Err: err})
		return r, o.fail(err)
	}

	o.logger.Info("generation started",
		zap.Int("formats", len(req.Formats)),
		zap.String("tone", string(req.Tone)),
		zap.String("length", string(req.Length)),
		zap.Bool("url_mode", snap.UseURL),
	)
	resp, err := o.backend.RepurposeContent(ctx, req)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Repurpose", Err: err})
		return r, o.fail(err)
	}
	r.ContentInputID = resp.ContentInputID
	r.Steps = append(r.Steps, StepResult{
		Name:    "Repurpose",
		Summary: fmt.Sprintf("Generated %d outputs", len(resp.Outputs)),
	})

	r.Outputs = o.decodeAll(resp.Outputs)
	anomalies := 0
	for _, out := range r.Outputs {
		if out.Err != nil {
			anomalies++
		}
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Decode",
		Summary: fmt.Sprintf("Decoded %d outputs, %d unknown formats", len(r.Outputs)-anomalies, anomalies),
	})

	o.life.Complete(resp.ContentInputID, r.Outputs)
	o.logger.Info("generation succeeded",
		zap.String("content_input_id", resp.ContentInputID),
		zap.Int("outputs", len(r.Outputs)),
	)
	return r, nil
}

func (o *Orchestrator) fail(err error) error {
	o.life.Fail(err.Error())
	o.logger.Warn("generation failed", zap.Error(err))
	return err
}

// decodeAll decodes every output. Outputs with an unknown format are kept
// with their error so they can be reported.
func (o *Orchestrator) decodeAll(outputs []content.Output) []store.Result {
	results := make([]store.Result, 0, len(outputs))
	for _, out := range outputs {
		view, err := decode.Decode(out.Format, out.OutputText)
		if err != nil {
			o.logger.Error("backend returned an unknown output format",
				zap.String("format", out.Format),
				zap.String("output_id", out.ID),
				zap.Error(err),
			)
		}
		results = append(results, store.Result{Output: out, View: view, Err: err})
	}
	return results
}

// preflight applies the client-side checks that block a generation before
// it starts.
func preflight(snap store.State) error {
	if !content.IsEligible(snap.UseURL, snap.SourceURL, snap.RawContent, content.MinContentWords) {
		if snap.UseURL {
			return content.Invalid("enter a URL to fetch")
		}
		return content.Invalid("content must have at least %d words", content.MinContentWords)
	}
	probe := buildRequest(snap, snap.RawContent, snap.Title)
	if snap.UseURL {
		probe.Content = snap.SourceURL
	}
	return probe.Validate()
}

// buildRequest assembles the backend request. The source URL is sent only in
// URL mode, and empty optional fields are left unset.
func buildRequest(snap store.State, text, title string) content.Request {
	req := content.Request{
		Content: text,
		Title:   title,
		Formats: append([]platform.Format(nil), snap.SelectedFormats...),
		Tone:    snap.Tone,
		Length:  snap.Length,
		VoiceID: snap.SelectedVoiceID,
		NoVoice: snap.VoiceChosen && snap.SelectedVoiceID == "",
	}
	if snap.UseURL {
		req.SourceURL = strings.TrimSpace(snap.SourceURL)
	}
	if !snap.PlatformConfig.IsEmpty() {
		cfg := snap.PlatformConfig.Clone()
		req.Config = &cfg
	}
	return req
}
