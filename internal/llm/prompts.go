package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/analysis_system.txt
	analysisSystem string
	//go:embed prompts/analysis_user.txt
	analysisUser string
	//go:embed prompts/example_user.txt
	exampleUser string
	//go:embed prompts/ticket_system.txt
	ticketSystem string
	//go:embed prompts/ticket_task.txt
	ticketTask string
	//go:embed prompts/ticket_spike.txt
	ticketSpike string
)

// Prompts holds every template the pipelines send to the model.
type Prompts struct {
	AnalysisSystem string
	AnalysisUser   string
	ExampleUser    string
	TicketSystem   string
	TicketTask     string
	TicketSpike    string
}

// DefaultPrompts returns the embedded templates.
func DefaultPrompts() Prompts {
	return Prompts{
		AnalysisSystem: strings.TrimSpace(analysisSystem),
		AnalysisUser:   strings.TrimSpace(analysisUser),
		ExampleUser:    strings.TrimSpace(exampleUser),
		TicketSystem:   strings.TrimSpace(ticketSystem),
		TicketTask:     strings.TrimSpace(ticketTask),
		TicketSpike:    strings.TrimSpace(ticketSpike),
	}
}

// Merge returns p with every non-blank field of o applied on top.
func (p Prompts) Merge(o Prompts) Prompts {
	pick := func(base, override string) string {
		if v := strings.TrimSpace(override); v != "" {
			return v
		}
		return base
	}
	return Prompts{
		AnalysisSystem: pick(p.AnalysisSystem, o.AnalysisSystem),
		AnalysisUser:   pick(p.AnalysisUser, o.AnalysisUser),
		ExampleUser:    pick(p.ExampleUser, o.ExampleUser),
		TicketSystem:   pick(p.TicketSystem, o.TicketSystem),
		TicketTask:     pick(p.TicketTask, o.TicketTask),
		TicketSpike:    pick(p.TicketSpike, o.TicketSpike),
	}
}
