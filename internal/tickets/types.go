// Package tickets turns capability reports and support emails into tracker
// issue drafts.
package tickets

import (
	"strings"
)

// Type is the kind of tracker issue a draft describes.
type Type string

const (
	TypeTask  Type = "task"
	TypeSpike Type = "spike"
)

// ParseType accepts "task" or "spike" in any case.
func ParseType(raw string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeTask:
		return TypeTask, nil
	case TypeSpike:
		return TypeSpike, nil
	}
	return "", ErrInvalidType
}

// SummaryPrefix is the prefix every model-written summary must carry.
func (t Type) SummaryPrefix() string {
	if t == TypeSpike {
		return "[Spike][Integration]"
	}
	return "[Task][Integration]"
}

// IssueType is the tracker-facing name of t.
func (t Type) IssueType() string {
	if t == TypeSpike {
		return "Spike"
	}
	return "Task"
}

// RequiredSections lists the description sections a draft must contain.
func (t Type) RequiredSections() []string {
	if t == TypeSpike {
		return []string{"Context", "Questions to Answer", "Unknowns", "References"}
	}
	return []string{"Context", "Expected Behavior", "Acceptance Criteria", "References"}
}

// SectionOrder is the order the prompt asks the model to write sections in.
func (t Type) SectionOrder() []string {
	head := []string{"Context", "Goals", "Reservation Status Mapping", "Field Mapping"}
	if t == TypeSpike {
		return append(head, "Questions to Answer", "Unknowns", "References")
	}
	return append(head, "Expected Behavior", "Acceptance Criteria", "References")
}

// Draft is a tracker issue ready to be created.
type Draft struct {
	Summary     string   `json:"summary" jsonschema:"minLength=1"`
	Description string   `json:"description" jsonschema:"minLength=1"`
	Labels      []string `json:"labels"`
}

// DocumentIdentity describes the stored document a report was produced from.
type DocumentIdentity struct {
	ID          string
	Title       string
	SourceURL   string
	FileName    string
	DownloadURL string
}

// Source is the URL the document came from, or its file name.
func (d DocumentIdentity) Source() string {
	if s := strings.TrimSpace(d.SourceURL); s != "" {
		return s
	}
	return d.FileName
}

// SummaryTarget picks the title, then the source URL, then the file name.
func (d DocumentIdentity) SummaryTarget() string {
	if t := strings.TrimSpace(d.Title); t != "" {
		return t
	}
	return d.Source()
}

// EmailSource is the email a ticket is drafted from.
type EmailSource struct {
	Subject   string `json:"subject"`
	From      string `json:"from"`
	Body      string `json:"body"`
	ThreadURL string `json:"threadUrl"`
}
