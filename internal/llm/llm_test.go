package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare", in: ` {"a":1} `, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "plain fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "single line fence", in: "```{\"a\":1}```", want: `{"a":1}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Fatalf("StripCodeFence = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeObject(t *testing.T) {
	obj, err := DecodeObject(json.RawMessage("```json\n{\"flag\": true, \"n\": 2}\n```"))
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if obj["flag"] != true {
		t.Fatalf("expected flag=true, got %v", obj["flag"])
	}
	if _, ok := obj["n"].(json.Number); !ok {
		t.Fatalf("expected json.Number, got %T", obj["n"])
	}

	if _, err := DecodeObject(json.RawMessage(`[1,2]`)); !errors.Is(err, ErrNotObject) {
		t.Fatalf("expected ErrNotObject, got %v", err)
	}
	if _, err := DecodeObject(json.RawMessage("  ")); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if _, err := DecodeObject(json.RawMessage(`{"a":`)); err == nil {
		t.Fatal("expected invalid JSON error")
	}
}

func TestDefaultPromptsEmbedded(t *testing.T) {
	p := DefaultPrompts()
	checks := map[string]string{
		"analysis system": p.AnalysisSystem,
		"analysis user":   p.AnalysisUser,
		"example user":    p.ExampleUser,
		"ticket system":   p.TicketSystem,
		"ticket task":     p.TicketTask,
		"ticket spike":    p.TicketSpike,
	}
	for name, v := range checks {
		if strings.TrimSpace(v) == "" {
			t.Fatalf("%s prompt is empty", name)
		}
	}
	if !strings.Contains(p.AnalysisUser, `"reservation_status"`) {
		t.Fatalf("analysis prompt missing schema")
	}
	if !strings.Contains(p.TicketSpike, "[Spike][Integration]") || !strings.Contains(p.TicketTask, "[Task][Integration]") {
		t.Fatalf("ticket prompts missing summary prefix")
	}
}

func TestPromptsMerge(t *testing.T) {
	base := DefaultPrompts()
	merged := base.Merge(Prompts{TicketTask: "custom task", AnalysisUser: "  "})
	if merged.TicketTask != "custom task" {
		t.Fatalf("expected override applied")
	}
	if merged.AnalysisUser != base.AnalysisUser {
		t.Fatalf("expected blank override ignored")
	}
}

func TestPlaceholderClient(t *testing.T) {
	var c Completer = PlaceholderClient{}
	if _, err := c.Complete(context.Background(), "s", "u"); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}
