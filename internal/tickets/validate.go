package tickets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	invschema "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	placeholderSection = "To be completed."
	contextExcerptLen  = 600
)

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// DraftSchema returns the JSON schema model output must match, reflected
// from Draft.
func DraftSchema() ([]byte, error) {
	r := &invschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	return json.Marshal(r.Reflect(&Draft{}))
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := DraftSchema()
		if err != nil {
			schemaErr = fmt.Errorf("reflect draft schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource("draft.json", bytes.NewReader(raw)); err != nil {
			schemaErr = fmt.Errorf("add draft schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile("draft.json")
	})
	return schema, schemaErr
}

// decodeDraft checks decoded model output against the draft schema and
// converts it.
func decodeDraft(tree map[string]any) (Draft, error) {
	for _, key := range []string{"summary", "description", "labels"} {
		if _, ok := tree[key]; !ok {
			return Draft{}, compositionErr("model output missing required field: %s.", key)
		}
	}
	if _, ok := tree["labels"].([]any); !ok {
		return Draft{}, compositionErr("model output labels must be an array.")
	}

	sch, err := compiledSchema()
	if err != nil {
		return Draft{}, err
	}
	if err := sch.Validate(tree); err != nil {
		return Draft{}, &CompositionError{Reason: "model output does not match the ticket schema", Err: err}
	}

	d := Draft{Labels: []string{}}
	d.Summary, _ = tree["summary"].(string)
	d.Description, _ = tree["description"].(string)
	for _, l := range tree["labels"].([]any) {
		s, ok := l.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return Draft{}, compositionErr("model output labels must be non-empty strings.")
		}
		d.Labels = append(d.Labels, s)
	}
	return d, nil
}

// checkDraft validates everything except section presence.
func checkDraft(d Draft, t Type) error {
	if strings.TrimSpace(d.Summary) == "" {
		return compositionErr("model output summary must be a non-empty string.")
	}
	if strings.TrimSpace(d.Description) == "" {
		return compositionErr("model output description must be a non-empty string.")
	}
	for _, l := range d.Labels {
		if strings.TrimSpace(l) == "" {
			return compositionErr("model output labels must be non-empty strings.")
		}
	}
	if prefix := t.SummaryPrefix(); !strings.HasPrefix(strings.TrimSpace(d.Summary), prefix) {
		return compositionErr("model output summary must start with %s.", prefix)
	}
	return nil
}

// ValidateDraft reports the first problem with d, including missing sections.
func ValidateDraft(d Draft, t Type) error {
	if err := checkDraft(d, t); err != nil {
		return err
	}
	if missing := MissingSections(d, t); len(missing) > 0 {
		return compositionErr("model output description missing section: %s.", missing[0])
	}
	return nil
}

// MissingSections lists required sections absent from the description.
func MissingSections(d Draft, t Type) []string {
	var missing []string
	for _, s := range t.RequiredSections() {
		if !strings.Contains(d.Description, s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// RepairDraft appends every missing required section. Context is filled
// from the email embedded in prompt; the rest get a placeholder.
func RepairDraft(d Draft, t Type, prompt string) Draft {
	missing := MissingSections(d, t)
	if len(missing) == 0 {
		return d
	}
	var b strings.Builder
	b.WriteString(d.Description)
	for _, section := range missing {
		fallback := placeholderSection
		if section == "Context" {
			fallback = contextFallback(prompt)
		}
		b.WriteString("\n\n" + section + ":\n" + fallback)
	}
	d.Description = b.String()
	return d
}

func contextFallback(prompt string) string {
	subject := between(prompt, "Subject:\n", "\n\nFrom:\n", strings.Index)
	body := between(prompt, "\n\nBody:\n", "\n\nThread URL:", strings.LastIndex)
	var parts []string
	if subject != "" {
		parts = append(parts, "Email subject: "+subject)
	}
	if body != "" {
		if r := []rune(body); len(r) > contextExcerptLen {
			body = string(r[:contextExcerptLen]) + "..."
		}
		parts = append(parts, body)
	}
	if len(parts) == 0 {
		return placeholderSection
	}
	return strings.Join(parts, "\n")
}

func between(s, start, end string, find func(string, string) int) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	rest := s[i+len(start):]
	if j := find(rest, end); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}
