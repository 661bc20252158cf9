package tickets

import (
	"context"
	"strings"

	"pmsdoc-backend/internal/analysis"
	"pmsdoc-backend/internal/llm"
	"pmsdoc-backend/internal/shared/telemetry"
)

// Labels attached to issues created from analyzed documents.
var documentLabels = []string{"pms", "analysis"}

// Composer builds issue drafts from reports, emails or manual input.
type Composer struct {
	model   llm.Completer
	prompts llm.Prompts
}

// NewComposer returns a Composer. Blank prompt fields fall back to the embedded templates.
func NewComposer(model llm.Completer, prompts llm.Prompts) *Composer {
	return &Composer{model: model, prompts: llm.DefaultPrompts().Merge(prompts)}
}

// Compose drafts the issue for an analyzed document. A non-blank override
// replaces the rendered description.
func (c *Composer) Compose(report analysis.Report, doc DocumentIdentity, t Type, override string) Draft {
	description := strings.TrimSpace(override)
	if description == "" {
		description = RenderTemplate(report, doc, t)
	}
	return Draft{
		Summary:     "PMS analysis: " + doc.SummaryTarget(),
		Description: description,
		Labels:      append([]string(nil), documentLabels...),
	}
}

// EmailPrompt builds the model prompt for an email.
func (c *Composer) EmailPrompt(t Type, src EmailSource) string {
	typePrompt := c.prompts.TicketTask
	if t == TypeSpike {
		typePrompt = c.prompts.TicketSpike
	}
	return typePrompt + "\n\n" +
		"Subject:\n" + src.Subject +
		"\n\nFrom:\n" + src.From +
		"\n\nBody:\n" + src.Body +
		"\n\nThread URL:\n" + src.ThreadURL
}

// FromEmail asks the model for a draft, validates it and appends any
// required section the model left out.
func (c *Composer) FromEmail(ctx context.Context, t Type, src EmailSource) (Draft, error) {
	src.Subject = strings.TrimSpace(src.Subject)
	src.Body = strings.TrimSpace(src.Body)
	if src.Subject == "" {
		return Draft{}, ErrSubjectRequired
	}
	if src.Body == "" {
		return Draft{}, ErrBodyRequired
	}
	if c.model == nil {
		return Draft{}, &CompositionError{Reason: "model call failed", Err: llm.ErrNotImplemented}
	}

	prompt := c.EmailPrompt(t, src)
	raw, err := c.model.Complete(ctx, c.prompts.TicketSystem, prompt)
	if err != nil {
		return Draft{}, &CompositionError{Reason: "model call failed", Err: err}
	}
	tree, err := llm.DecodeObject(raw)
	if err != nil {
		return Draft{}, &CompositionError{Reason: "model output is not a JSON object", Err: err}
	}
	draft, err := decodeDraft(tree)
	if err != nil {
		return Draft{}, err
	}
	if err := checkDraft(draft, t); err != nil {
		return Draft{}, err
	}

	if missing := MissingSections(draft, t); len(missing) > 0 {
		telemetry.Warn("ticket.repaired", map[string]any{
			"type":     string(t),
			"sections": missing,
		})
		draft = RepairDraft(draft, t, prompt)
	}
	if err := ValidateDraft(draft, t); err != nil {
		return Draft{}, err
	}
	draft.Summary = strings.TrimSpace(draft.Summary)
	return draft, nil
}

// FromManual accepts a user-written draft.
func (c *Composer) FromManual(t Type, summary, description string) (Draft, error) {
	summary = strings.TrimSpace(summary)
	description = strings.TrimSpace(description)
	if summary == "" {
		return Draft{}, ErrSummaryRequired
	}
	if description == "" {
		return Draft{}, ErrDescriptionMissing
	}
	telemetry.Info("ticket.manual", map[string]any{"type": string(t)})
	return Draft{Summary: summary, Description: description, Labels: []string{}}, nil
}
