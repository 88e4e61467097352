package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type ClaimType string

const (
	TypeGoal      ClaimType = "goal"
	TypePromise   ClaimType = "promise"
	TypeStatement ClaimType = "statement"
)

func (t ClaimType) Valid() bool {
	switch t {
	case TypeGoal, TypePromise, TypeStatement:
		return true
	}
	return false
}

type Claim struct {
	ID                      string
	Type                    ClaimType
	Text                    string
	VerbatimClaim           string
	CompletionCondition     string
	CompletionConditionDate *time.Time // promises only
	EventDate               *time.Time // statements only
	ArticleID               string
	FollowUpWorthy          bool
	Priority                string
	Mechanism               string
	CreatedAt               *time.Time
}

type Followup struct {
	ID                string
	ClaimID           string
	FollowUpDate      *time.Time // nil when missing or unparsable
	ProcessedAt       *time.Time
	ProcessedUpdateID string
	Note              string
	CreatedAt         *time.Time
}

// IsOpen reports whether no worker has closed the followup yet.
func (f Followup) IsOpen() bool {
	return f.ProcessedAt == nil && f.ProcessedUpdateID == ""
}

type Update struct {
	ID        string
	ClaimID   string
	Verdict   string
	CreatedAt *time.Time // nil when missing or unparsable
	Output    ModelOutput
}

type Article struct {
	ID          string
	Title       string
	Link        string
	PublishDate *time.Time
}

// ModelOutput is either a plain string or a structured payload. It keeps the
// suggested follow-up date raw so that a malformed value stays inspectable.
type ModelOutput struct {
	Plain        string
	Text         string
	Sources      []string
	FollowUpDate string
	Structured   bool
}

type structuredOutput struct {
	Text         string   `json:"text,omitempty"`
	Sources      []string `json:"sources,omitempty"`
	FollowUpDate string   `json:"follow_up_date,omitempty"`
}

func PlainOutput(s string) ModelOutput {
	return ModelOutput{Plain: s}
}

// Explanation returns the human readable part of the output.
func (o ModelOutput) Explanation() string {
	if o.Structured {
		return o.Text
	}
	return o.Plain
}

// NextCheck returns the suggested follow-up date, if any parses.
func (o ModelOutput) NextCheck(loc *time.Location) (time.Time, bool) {
	if !o.Structured || o.FollowUpDate == "" {
		return time.Time{}, false
	}
	return ParseDateOrAbsent(o.FollowUpDate, loc)
}

func (o ModelOutput) MarshalJSON() ([]byte, error) {
	if !o.Structured {
		return json.Marshal(o.Plain)
	}
	return json.Marshal(structuredOutput{
		Text:         o.Text,
		Sources:      o.Sources,
		FollowUpDate: o.FollowUpDate,
	})
}

func (o *ModelOutput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = ModelOutput{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode model output string: %w", err)
		}
		*o = PlainOutput(s)
		return nil
	}

	// Producers sometimes store dates as objects or numbers; keep what is
	// readable and leave the rest absent.
	var raw struct {
		Text         json.RawMessage `json:"text"`
		Sources      []any           `json:"sources"`
		FollowUpDate json.RawMessage `json:"follow_up_date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode model output: %w", err)
	}

	out := ModelOutput{Structured: true}
	out.Text = rawString(raw.Text)
	out.FollowUpDate = rawString(raw.FollowUpDate)
	for _, src := range raw.Sources {
		switch v := src.(type) {
		case string:
			if v != "" {
				out.Sources = append(out.Sources, v)
			}
		case map[string]any:
			if url, ok := v["url"].(string); ok && url != "" {
				out.Sources = append(out.Sources, url)
			}
		}
	}

	*o = out
	return nil
}

func rawString(data json.RawMessage) string {
	var s string
	if len(data) == 0 || json.Unmarshal(data, &s) != nil {
		return ""
	}
	return s
}
