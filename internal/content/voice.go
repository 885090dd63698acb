package content

// StyleAttributes describe a writing voice as extracted from samples.
type StyleAttributes struct {
	Tone              string   `json:"tone"`
	VocabularyLevel   string   `json:"vocabulary_level"`
	SentenceStyle     string   `json:"sentence_style"`
	PersonalityTraits []string `json:"personality_traits"`
	SignaturePhrases  []string `json:"signature_phrases"`
	AvoidPhrases      []string `json:"avoid_phrases"`
}

// VoiceProfile is a saved brand voice. At most one profile is the default.
type VoiceProfile struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	StyleAttributes StyleAttributes `json:"style_attributes"`
	IsDefault       bool            `json:"is_default"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

// AnalyzeVoiceRequest asks the backend to build a profile from samples.
type AnalyzeVoiceRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Samples     []string `json:"samples"`
}
