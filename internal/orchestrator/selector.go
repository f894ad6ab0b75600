package orchestrator

// Selector maps an intent tag to the ordered list of tools to run.
// The table is static; each tag currently maps to exactly one tool,
// but the contract allows several, executed in listed order. Unknown
// tags fall back to search. Select never fails.
type Selector struct {
	table map[string][]string
}

func NewSelector() *Selector {
	return &Selector{
		table: map[string][]string{
			IntentHistoryReport: {ToolHistoryReport},
			IntentDrugInfo:      {ToolDrugLookup},
			IntentPrescription:  {ToolLatestPrescription},
			IntentSearch:        {ToolSearchRecords},
			IntentSummary:       {ToolGenerateSummary},
			IntentQueryRecord:   {ToolQueryRecord},
			IntentGeneral:       {ToolSearchRecords},
		},
	}
}

func (s *Selector) Select(intent string) []string {
	if tools, ok := s.table[intent]; ok {
		// Copy so stages cannot mutate the shared table.
		out := make([]string, len(tools))
		copy(out, tools)
		return out
	}
	return []string{ToolSearchRecords}
}
