package orchestrator

import "testing"

func TestSelect(t *testing.T) {
	s := NewSelector()

	cases := []struct {
		intent string
		want   string
	}{
		{IntentHistoryReport, ToolHistoryReport},
		{IntentDrugInfo, ToolDrugLookup},
		{IntentPrescription, ToolLatestPrescription},
		{IntentSearch, ToolSearchRecords},
		{IntentSummary, ToolGenerateSummary},
		{IntentQueryRecord, ToolQueryRecord},
		{IntentGeneral, ToolSearchRecords},
		{"never_seen_before", ToolSearchRecords},
	}

	for _, tc := range cases {
		t.Run(tc.intent, func(t *testing.T) {
			tools := s.Select(tc.intent)
			if len(tools) != 1 || tools[0] != tc.want {
				t.Fatalf("Select(%q)=%v, want [%s]", tc.intent, tools, tc.want)
			}
		})
	}
}

func TestSelectReturnsCopy(t *testing.T) {
	s := NewSelector()
	first := s.Select(IntentSearch)
	first[0] = "mutated"
	second := s.Select(IntentSearch)
	if second[0] != ToolSearchRecords {
		t.Fatalf("selector table mutated through returned slice: %v", second)
	}
}
