// Package store holds the application state: input fields, generation
// settings, the generation status and the decoded result set, brand voices
// and usage.
//
// Consumers read through Snapshot and write only through the named actions.
// The generation status and the result set have a single writer, the
// Lifecycle returned by New.
package store

import (
	"slices"
	"sync"

	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/decode"
	"github.com/TobiSchelling/repurposer/internal/platform"
)

// Status is the generation lifecycle state.
type Status int

const (
	Idle Status = iota
	FetchingURL
	Requesting
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case FetchingURL:
		return "fetching_url"
	case Requesting:
		return "requesting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// InFlight reports whether a generation is outstanding.
func (s Status) InFlight() bool {
	return s == FetchingURL || s == Requesting
}

// Result is one returned output with its decoded view. Err is set, and View
// is nil, when the output's format is not a known format.
type Result struct {
	Output content.Output
	View   decode.View
	Err    error
}

// State is a point-in-time copy of the store.
type State struct {
	RawContent string
	Title      string
	SourceURL  string
	UseURL     bool

	SelectedFormats []platform.Format
	Tone            platform.Tone
	Length          platform.Length
	PlatformConfig  platform.Config

	// SelectedVoiceID is empty when no voice is selected. VoiceChosen is
	// true once the user made any selection, including none.
	SelectedVoiceID string
	VoiceChosen     bool
	Voices          []content.VoiceProfile

	Status         Status
	Error          string
	ContentInputID string
	Results        []Result
	ActiveFormat   platform.Format

	Usage *content.UsageInfo
}

// Anomalies returns the results whose format could not be decoded.
func (s State) Anomalies() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Result returns the result for format f, if present.
func (s State) Result(f platform.Format) (Result, bool) {
	for _, r := range s.Results {
		if r.Output.Format == string(f) {
			return r, true
		}
	}
	return Result{}, false
}

// DefaultState is the state of a fresh store and of a reset form.
func DefaultState() State {
	return State{
		SelectedFormats: []platform.Format{platform.TwitterThread, platform.LinkedIn},
		Tone:            platform.Professional,
		Length:          platform.Medium,
	}
}

// Store is the single source of truth for client state. It is safe for
// concurrent use.
type Store struct {
	mu        sync.Mutex
	state     State
	voicesSet bool

	nextID    int
	listeners map[int]func(State)
}

// Lifecycle is the only writer of the generation status and result set.
type Lifecycle struct {
	s *Store
}

// New creates a store with default settings and its lifecycle writer.
func New() (*Store, *Lifecycle) {
	s := &Store{state: DefaultState(), listeners: map[int]func(State){}}
	return s, &Lifecycle{s: s}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to be called with a snapshot after every change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// update applies fn under the lock and notifies listeners outside it.
// fn reports whether it changed anything.
func (s *Store) update(fn func(st *State) bool) bool {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return false
	}
	snap := s.state.clone()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return true
}

func (st State) clone() State {
	out := st
	out.SelectedFormats = slices.Clone(st.SelectedFormats)
	out.Results = slices.Clone(st.Results)
	out.Voices = slices.Clone(st.Voices)
	out.PlatformConfig = st.PlatformConfig.Clone()
	if st.Usage != nil {
		u := *st.Usage
		out.Usage = &u
	}
	return out
}

func (s *Store) SetRawContent(text string) {
	s.update(func(st *State) bool { st.RawContent = text; return true })
}

func (s *Store) SetTitle(title string) {
	s.update(func(st *State) bool { st.Title = title; return true })
}

func (s *Store) SetSourceURL(url string) {
	s.update(func(st *State) bool { st.SourceURL = url; return true })
}

func (s *Store) SetUseURL(on bool) {
	s.update(func(st *State) bool { st.UseURL = on; return true })
}

// ToggleFormat adds f to the selection, or removes it if already selected.
// Unknown formats are ignored.
func (s *Store) ToggleFormat(f platform.Format) {
	if !f.Valid() {
		return
	}
	s.update(func(st *State) bool {
		if i := slices.Index(st.SelectedFormats, f); i >= 0 {
			st.SelectedFormats = slices.Delete(slices.Clone(st.SelectedFormats), i, i+1)
		} else {
			st.SelectedFormats = append(slices.Clone(st.SelectedFormats), f)
		}
		return true
	})
}

// SetFormats replaces the selection, dropping unknown and repeated formats.
func (s *Store) SetFormats(formats []platform.Format) {
	var sel []platform.Format
	for _, f := range formats {
		if f.Valid() && !slices.Contains(sel, f) {
			sel = append(sel, f)
		}
	}
	s.update(func(st *State) bool { st.SelectedFormats = sel; return true })
}

func (s *Store) SetTone(t platform.Tone) {
	s.update(func(st *State) bool { st.Tone = t; return true })
}

func (s *Store) SetLength(l platform.Length) {
	s.update(func(st *State) bool { st.Length = l; return true })
}

func (s *Store) SetPlatformConfig(c platform.Config) {
	s.update(func(st *State) bool { st.PlatformConfig = c.Clone(); return true })
}

// SelectVoice records a user voice selection. An empty id selects no voice.
func (s *Store) SelectVoice(id string) {
	s.update(func(st *State) bool {
		st.SelectedVoiceID = id
		st.VoiceChosen = true
		return true
	})
}

// SetVoices replaces the loaded voice list. On the first load, when the user
// has not chosen a voice, the default voice becomes selected. A selection
// that no longer exists is cleared.
func (s *Store) SetVoices(voices []content.VoiceProfile) {
	s.update(func(st *State) bool {
		st.Voices = slices.Clone(voices)
		first := !s.voicesSet
		s.voicesSet = true

		if first && !st.VoiceChosen && st.SelectedVoiceID == "" {
			for _, v := range voices {
				if v.IsDefault {
					st.SelectedVoiceID = v.ID
					break
				}
			}
		}
		if st.SelectedVoiceID != "" && !slices.ContainsFunc(voices, func(v content.VoiceProfile) bool {
			return v.ID == st.SelectedVoiceID
		}) {
			st.SelectedVoiceID = ""
		}
		return true
	})
}

func (s *Store) SetUsage(u content.UsageInfo) {
	s.update(func(st *State) bool { st.Usage = &u; return true })
}

// SetActiveFormat switches the displayed output. It is ignored when no
// result carries f.
func (s *Store) SetActiveFormat(f platform.Format) {
	s.update(func(st *State) bool {
		if _, ok := st.Result(f); !ok {
			return false
		}
		st.ActiveFormat = f
		return true
	})
}

// DismissError hides the error message. The status is left as is.
func (s *Store) DismissError() {
	s.update(func(st *State) bool {
		if st.Error == "" {
			return false
		}
		st.Error = ""
		return true
	})
}

// ResetForm restores the input fields and generation settings to their
// defaults. Voices, usage and the generation state are kept.
func (s *Store) ResetForm() {
	s.update(func(st *State) bool {
		d := DefaultState()
		st.RawContent = d.RawContent
		st.Title = d.Title
		st.SourceURL = d.SourceURL
		st.UseURL = d.UseURL
		st.SelectedFormats = d.SelectedFormats
		st.Tone = d.Tone
		st.Length = d.Length
		st.PlatformConfig = d.PlatformConfig
		return true
	})
}

// Begin starts a generation. It reports false, changing nothing, when a
// generation is already in flight. Otherwise the previous results and error
// are cleared before it returns.
func (l *Lifecycle) Begin(fetchFirst bool) bool {
	return l.s.update(func(st *State) bool {
		if st.Status.InFlight() {
			return false
		}
		st.Status = Requesting
		if fetchFirst {
			st.Status = FetchingURL
		}
		st.Error = ""
		st.Results = nil
		st.ContentInputID = ""
		st.ActiveFormat = ""
		return true
	})
}

// Requesting moves a URL-mode generation from fetching to requesting.
func (l *Lifecycle) Requesting() {
	l.s.update(func(st *State) bool {
		if st.Status != FetchingURL {
			return false
		}
		st.Status = Requesting
		return true
	})
}

// Complete records a successful generation.
func (l *Lifecycle) Complete(contentInputID string, results []Result) {
	l.s.update(func(st *State) bool {
		st.Status = Succeeded
		st.Error = ""
		st.ContentInputID = contentInputID
		st.Results = slices.Clone(results)
		st.ActiveFormat = activeFormat(results)
		return true
	})
}

// Fail records a failed generation. The result set stays empty.
func (l *Lifecycle) Fail(msg string) {
	l.s.update(func(st *State) bool {
		st.Status = Failed
		st.Error = msg
		st.Results = nil
		st.ContentInputID = ""
		st.ActiveFormat = ""
		return true
	})
}

// activeFormat picks the first result's format, or the first decodable one
// when the first result's format is unknown.
func activeFormat(results []Result) platform.Format {
	for _, r := range results {
		if f := platform.Format(r.Output.Format); f.Valid() {
			return f
		}
	}
	return ""
}
