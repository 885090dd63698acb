package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/decode"
	"github.com/TobiSchelling/repurposer/internal/platform"
)

func TestDefaults(t *testing.T) {
	s, _ := New()
	st := s.Snapshot()
	assert.Equal(t, Idle, st.Status)
	assert.Equal(t, platform.Professional, st.Tone)
	assert.Equal(t, platform.Medium, st.Length)
	assert.Equal(t, []platform.Format{platform.TwitterThread, platform.LinkedIn}, st.SelectedFormats)
	assert.Empty(t, st.Results)
}

func TestStatusInFlight(t *testing.T) {
	assert.False(t, Idle.InFlight())
	assert.True(t, FetchingURL.InFlight())
	assert.True(t, Requesting.InFlight())
	assert.False(t, Succeeded.InFlight())
	assert.False(t, Failed.InFlight())
	assert.Equal(t, "fetching_url", FetchingURL.String())
}

func TestToggleFormat(t *testing.T) {
	s, _ := New()
	s.ToggleFormat(platform.LinkedIn)
	s.ToggleFormat(platform.Summary)
	s.ToggleFormat("tiktok")
	assert.Equal(t, []platform.Format{platform.TwitterThread, platform.Summary}, s.Snapshot().SelectedFormats)
}

func TestSetFormatsDropsInvalidAndRepeated(t *testing.T) {
	s, _ := New()
	s.SetFormats([]platform.Format{platform.Newsletter, "bogus", platform.Newsletter, platform.Summary})
	assert.Equal(t, []platform.Format{platform.Newsletter, platform.Summary}, s.Snapshot().SelectedFormats)
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := New()
	s.SetPlatformConfig(platform.Config{TweetCount: platform.Int(5)})

	st := s.Snapshot()
	st.SelectedFormats[0] = platform.Summary
	*st.PlatformConfig.TweetCount = 12

	fresh := s.Snapshot()
	assert.Equal(t, platform.TwitterThread, fresh.SelectedFormats[0])
	assert.Equal(t, 5, *fresh.PlatformConfig.TweetCount)
}

func TestResetFormKeepsVoicesAndUsage(t *testing.T) {
	s, _ := New()
	s.SetRawContent("some text")
	s.SetTitle("A title")
	s.SetUseURL(true)
	s.SetTone(platform.Casual)
	s.SetUsage(content.UsageInfo{Used: 3, Limit: 50})
	s.SetVoices([]content.VoiceProfile{{ID: "v1"}})

	s.ResetForm()
	st := s.Snapshot()
	assert.Empty(t, st.RawContent)
	assert.Empty(t, st.Title)
	assert.False(t, st.UseURL)
	assert.Equal(t, platform.Professional, st.Tone)
	require.NotNil(t, st.Usage)
	assert.Equal(t, 3, st.Usage.Used)
	assert.Len(t, st.Voices, 1)
}

func TestBeginSingleFlight(t *testing.T) {
	s, lc := New()
	require.True(t, lc.Begin(false))
	assert.Equal(t, Requesting, s.Snapshot().Status)

	assert.False(t, lc.Begin(false))
	assert.False(t, lc.Begin(true))

	lc.Fail("boom")
	assert.True(t, lc.Begin(true))
	assert.Equal(t, FetchingURL, s.Snapshot().Status)
	lc.Requesting()
	assert.Equal(t, Requesting, s.Snapshot().Status)
}

func TestBeginClearsPreviousResults(t *testing.T) {
	s, lc := New()
	require.True(t, lc.Begin(false))
	lc.Complete("input-1", []Result{{Output: content.Output{Format: "summary"}, View: decode.Summary{Text: "x"}}})
	require.Len(t, s.Snapshot().Results, 1)

	require.True(t, lc.Begin(false))
	st := s.Snapshot()
	assert.Empty(t, st.Results)
	assert.Empty(t, st.ContentInputID)
	assert.Empty(t, st.ActiveFormat)
	assert.Empty(t, st.Error)
}

func TestCompleteSetsActiveFormat(t *testing.T) {
	s, lc := New()
	lc.Begin(false)
	lc.Complete("id", []Result{
		{Output: content.Output{Format: "linkedin"}},
		{Output: content.Output{Format: "summary"}},
	})
	st := s.Snapshot()
	assert.Equal(t, Succeeded, st.Status)
	assert.Equal(t, platform.LinkedIn, st.ActiveFormat)

	s.SetActiveFormat(platform.Summary)
	assert.Equal(t, platform.Summary, s.Snapshot().ActiveFormat)
	s.SetActiveFormat(platform.Newsletter)
	assert.Equal(t, platform.Summary, s.Snapshot().ActiveFormat)
}

func TestCompleteSkipsUnknownFormatForActive(t *testing.T) {
	s, lc := New()
	lc.Begin(false)
	unknown := &decode.UnknownFormatError{Format: "tiktok"}
	lc.Complete("id", []Result{
		{Output: content.Output{Format: "tiktok"}, Err: unknown},
		{Output: content.Output{Format: "instagram"}},
	})
	st := s.Snapshot()
	assert.Equal(t, platform.Instagram, st.ActiveFormat)
	require.Len(t, st.Anomalies(), 1)
	assert.True(t, errors.Is(st.Anomalies()[0].Err, unknown))
}

func TestFailAndDismiss(t *testing.T) {
	s, lc := New()
	lc.Begin(false)
	lc.Fail("backend down")
	st := s.Snapshot()
	assert.Equal(t, Failed, st.Status)
	assert.Equal(t, "backend down", st.Error)
	assert.Empty(t, st.Results)

	s.DismissError()
	st = s.Snapshot()
	assert.Empty(t, st.Error)
	assert.Equal(t, Failed, st.Status)
}

func TestVoiceAutoSelectOnFirstLoad(t *testing.T) {
	s, _ := New()
	s.SetVoices([]content.VoiceProfile{{ID: "a"}, {ID: "b", IsDefault: true}})
	assert.Equal(t, "b", s.Snapshot().SelectedVoiceID)
}

func TestVoiceAutoSelectIsOneTime(t *testing.T) {
	s, _ := New()
	s.SetVoices(nil)
	s.SetVoices([]content.VoiceProfile{{ID: "b", IsDefault: true}})
	assert.Empty(t, s.Snapshot().SelectedVoiceID)
}

func TestVoiceExplicitNoneDisablesAutoSelect(t *testing.T) {
	s, _ := New()
	s.SelectVoice("")
	s.SetVoices([]content.VoiceProfile{{ID: "b", IsDefault: true}})
	st := s.Snapshot()
	assert.Empty(t, st.SelectedVoiceID)
	assert.True(t, st.VoiceChosen)
}

func TestVoiceSelectionClearedWhenDeleted(t *testing.T) {
	s, _ := New()
	s.SetVoices([]content.VoiceProfile{{ID: "a"}, {ID: "b"}})
	s.SelectVoice("a")
	s.SetVoices([]content.VoiceProfile{{ID: "b"}})
	assert.Empty(t, s.Snapshot().SelectedVoiceID)
}

func TestSubscribe(t *testing.T) {
	s, lc := New()
	var seen []Status
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st.Status) })

	lc.Begin(true)
	lc.Requesting()
	lc.Fail("x")
	require.True(t, lc.Begin(false))
	unsubscribe()
	s.SetTitle("ignored")

	assert.Equal(t, []Status{FetchingURL, Requesting, Failed, Requesting}, seen)
}

func TestNoNotificationWithoutChange(t *testing.T) {
	s, _ := New()
	calls := 0
	s.Subscribe(func(State) { calls++ })
	s.DismissError()
	s.SetActiveFormat(platform.Summary)
	assert.Zero(t, calls)
}
