package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Archive is the top-level dream journal export.
type Archive struct {
	Records []DreamerRecord `json:"records"`
}

// DreamerRecord groups one dreamer with the dreams they recorded.
type DreamerRecord struct {
	Dreamer Dreamer      `json:"dreamer"`
	Dreams  []DreamEntry `json:"dreams"`
}

// Dreamer holds the demographic and location attributes inherited by each dream.
type Dreamer struct {
	Gender      Text `json:"gender"`
	City        Text `json:"city"`
	Admin1      Text `json:"admin1"`
	CountryCode Text `json:"country_code"`
}

// DreamEntry is a single dream. Location fields override the dreamer's when present.
type DreamEntry struct {
	Date        Text     `json:"date"`
	CountryCode Text     `json:"country_code"`
	Admin1      Text     `json:"admin1"`
	City        Text     `json:"city"`
	AppTags     *AppTags `json:"app_tags"`
	Affect      *Affect  `json:"affect"`
}

// AppTags are the categorical annotations attached by the journaling app.
type AppTags struct {
	Type        Text     `json:"type"`
	Impact      Text     `json:"impact"`
	Mood        Text     `json:"mood"`
	Theme       Text     `json:"theme"`
	Perspective Text     `json:"perspective"`
	Recurring   Text     `json:"recurring"`
	Lucidity    Text     `json:"lucidity"`
	Keywords    []string `json:"keywords"`
}

// Affect holds sentiment and emotion scores for a dream.
type Affect struct {
	SentimentNeg  *float64       `json:"sentiment_neg"`
	SentimentNeu  *float64       `json:"sentiment_neu"`
	SentimentPos  *float64       `json:"sentiment_pos"`
	ValenceMean   *float64       `json:"valence_mean"`
	ArousalMean   *float64       `json:"arousal_mean"`
	DominanceMean *float64       `json:"dominance_mean"`
	EmotionsTop3  []EmotionScore `json:"emotions_top3"`
}

// Text is a scalar JSON field rendered as text. It records whether the key
// appeared at all, so that an explicit null can be told apart from an absent key.
type Text struct {
	Value   string
	Valid   bool
	Present bool
}

// UnmarshalJSON accepts strings, numbers and booleans. Numbers and booleans
// keep their JSON spelling.
func (t *Text) UnmarshalJSON(data []byte) error {
	t.Present = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Valid = false
		t.Value = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode text: %w", err)
		}
		t.Value, t.Valid = s, true
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode text: %w", err)
	}
	switch v.(type) {
	case bool, float64:
		t.Value, t.Valid = string(data), true
		return nil
	default:
		return fmt.Errorf("decode text: unsupported value %s", data)
	}
}

// MarshalJSON writes the value back as a JSON string, or null.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// String returns the value, or "" when null.
func (t Text) String() string {
	if !t.Valid {
		return ""
	}
	return t.Value
}

// Or resolves the field against a fallback: the field's own value when its key
// was present (even if null), the fallback otherwise.
func (t Text) Or(fallback Text) Text {
	if t.Present {
		return t
	}
	return fallback
}

// EmotionScore is one entry of emotions_top3. The source encodes entries as
// [label, score] pairs; {"label":..., "score":...} objects are accepted too.
type EmotionScore struct {
	Label string
	Score json.Number
}

func (e *EmotionScore) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("decode emotion: empty value")
	}

	var label, score json.RawMessage
	switch data[0] {
	case '[':
		var pair []json.RawMessage
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("decode emotion: %w", err)
		}
		if len(pair) < 2 {
			return fmt.Errorf("decode emotion: expected [label, score], got %s", data)
		}
		label, score = pair[0], pair[1]
	case '{':
		var obj struct {
			Label json.RawMessage `json:"label"`
			Score json.RawMessage `json:"score"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("decode emotion: %w", err)
		}
		label, score = obj.Label, obj.Score
	default:
		return fmt.Errorf("decode emotion: unsupported value %s", data)
	}

	var l Text
	if err := l.UnmarshalJSON(label); err != nil {
		return err
	}
	var s Text
	if err := s.UnmarshalJSON(score); err != nil {
		return err
	}
	e.Label = l.String()
	e.Score = json.Number(s.String())
	return nil
}

// String formats the entry as "label:score".
func (e EmotionScore) String() string {
	return e.Label + ":" + e.Score.String()
}

// joinEmotions serializes emotion scores the way the visual layer parses them.
func joinEmotions(scores []EmotionScore) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = s.String()
	}
	return strings.Join(parts, ListSeparator)
}
