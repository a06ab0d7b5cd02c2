package enums

import "strings"

type GenerationStatus string

const (
	GenerationStatusProcessing GenerationStatus = "processing"
	GenerationStatusSuccess    GenerationStatus = "success"
	GenerationStatusFailed     GenerationStatus = "failed"
	GenerationStatusCompleted  GenerationStatus = "completed"
)

// TerminalGenerationStatuses must stay in sync with the NOT IN list of the
// active generation query.
var TerminalGenerationStatuses = []GenerationStatus{
	GenerationStatusFailed,
	GenerationStatusSuccess,
	GenerationStatusCompleted,
}

func (s GenerationStatus) IsActive() bool {
	normalized := GenerationStatus(strings.ToLower(strings.TrimSpace(string(s))))
	if normalized == "" {
		normalized = GenerationStatusProcessing
	}
	for _, terminal := range TerminalGenerationStatuses {
		if normalized == terminal {
			return false
		}
	}
	return true
}
