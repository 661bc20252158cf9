package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"pmsdoc-backend/internal/llm"
	"pmsdoc-backend/internal/shared/telemetry"
)

// Analyzer drives prompt construction, the model call, validation and
// normalization of a capability report.
type Analyzer struct {
	model   llm.Completer
	prompts llm.Prompts
	now     func() time.Time
}

// NewAnalyzer returns an Analyzer. Blank prompt fields fall back to the embedded templates.
func NewAnalyzer(model llm.Completer, prompts llm.Prompts) *Analyzer {
	return &Analyzer{
		model:   model,
		prompts: llm.DefaultPrompts().Merge(prompts),
		now:     time.Now,
	}
}

// UserPrompt builds the analysis prompt for text.
func (a *Analyzer) UserPrompt(text string, bookingEngine bool) string {
	mode := "Booking engine mode: false."
	if bookingEngine {
		mode = "Booking engine mode: true."
	}
	return a.prompts.AnalysisUser + "\n\n" + mode + "\n\nDocumentation Text:\n" + text
}

// ExamplePrompt builds the example-extraction prompt for text.
func (a *Analyzer) ExamplePrompt(text string) string {
	return a.prompts.ExampleUser + "\n\nDocumentation Text:\n" + text
}

// Analyze asks the model for a report and validates it. Blank text fails
// before any model call. Outside booking-engine mode every availability
// entry is forced to unavailable.
func (a *Analyzer) Analyze(ctx context.Context, text string, bookingEngine bool) (Report, error) {
	if strings.TrimSpace(text) == "" {
		return Report{}, &AnalysisError{Stage: StageInput, Err: ErrEmptyText}
	}

	start := a.now()
	tree, err := a.complete(ctx, a.prompts.AnalysisSystem, a.UserPrompt(text, bookingEngine))
	if err != nil {
		return Report{}, err
	}
	if err := Validate(tree, VariantCombined); err != nil {
		return Report{}, a.fail(StageSchema, err)
	}

	var report Report
	if err := fromTree(tree, &report); err != nil {
		return Report{}, a.fail(StageDecode, err)
	}
	report.OptionalFields = DedupOptional(report.OptionalFields, report.Fields)
	if !bookingEngine {
		report.clearAvailability()
	}

	telemetry.Info("analysis.report", map[string]any{
		"booking_engine":  bookingEngine,
		"duration_ms":     a.now().Sub(start).Milliseconds(),
		"optional_fields": len(report.OptionalFields),
		"notes":           len(report.Notes),
	})
	return report, nil
}

// AnalyzeExample asks the model for a GET reservations response example.
// Booking-engine documents get a null example without a model call.
func (a *Analyzer) AnalyzeExample(ctx context.Context, text string, bookingEngine bool) (Example, error) {
	if strings.TrimSpace(text) == "" {
		return Example{}, &AnalysisError{Stage: StageInput, Err: ErrEmptyText}
	}
	if bookingEngine {
		return Example{}, nil
	}

	tree, err := a.complete(ctx, a.prompts.AnalysisSystem, a.ExamplePrompt(text))
	if err != nil {
		return Example{}, err
	}
	if err := ValidateExample(tree); err != nil {
		return Example{}, a.fail(StageSchema, err)
	}
	var ex Example
	if err := fromTree(tree, &ex); err != nil {
		return Example{}, a.fail(StageDecode, err)
	}
	return ex, nil
}

func (a *Analyzer) complete(ctx context.Context, system, user string) (map[string]any, error) {
	if a.model == nil {
		return nil, a.fail(StageModel, llm.ErrNotImplemented)
	}
	raw, err := a.model.Complete(ctx, system, user)
	if err != nil {
		return nil, a.fail(StageModel, err)
	}
	tree, err := llm.DecodeObject(raw)
	if err != nil {
		return nil, a.fail(StageDecode, err)
	}
	return tree, nil
}

func (a *Analyzer) fail(stage string, err error) error {
	fields := map[string]any{"stage": stage, "error": err}
	var se *SchemaError
	if errors.As(err, &se) {
		fields["path"] = se.Path
	}
	telemetry.Warn("analysis.failed", fields)
	return &AnalysisError{Stage: stage, Err: err}
}

func (r *Report) clearAvailability() {
	r.HasGetAvailabilityEndpoint = false
	r.GetAvailabilityEndpoint = nil
	r.AvailabilityFields = AvailabilityFieldMap{}
}
