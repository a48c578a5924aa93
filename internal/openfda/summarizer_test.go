package openfda

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/fda-mcp/internal/openfda/openfdatest"
)

// sampleResponse decodes the canned records of endpoint the same way the
// client does
func sampleResponse(t *testing.T, endpoint string, total int) *Response {
	t.Helper()
	records, ok := openfdatest.Records()[endpoint]
	require.True(t, ok, "no sample for %s", endpoint)

	raw, err := json.Marshal(map[string]any{
		"meta":    map[string]any{"results": map[string]any{"skip": 0, "limit": 10, "total": total}},
		"results": records,
	})
	require.NoError(t, err)

	var resp Response
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&resp))
	return &resp
}

func TestSummarize_Endpoints(t *testing.T) {
	tests := []struct {
		endpoint string
		contains []string
	}{
		{"drug/event", []string{"Report ID: 10001", "Reactions: Nausea, Headache", "Drug: ASPIRIN (Suspect)"}},
		{"drug/label", []string{"Brand: LIPITOR", "Generic: ATORVASTATIN CALCIUM", "Manufacturer: Pfizer", "Indications And Usage:\nFor the reduction of elevated total cholesterol."}},
		{"drug/ndc", []string{"Product NDC: 0069-1530", "Route: ORAL", "Ingredient: ATORVASTATIN CALCIUM (10 mg)"}},
		{"drug/enforcement", []string{"Recall Number: D-0001-2024", "Classification: Class II", "Reason: Failed dissolution testing"}},
		{"drug/drugsfda", []string{"Application Number: NDA021457", "Product: LIPITOR — ATORVASTATIN CALCIUM", "Submission: ORIG 1 — AP"}},
		{"drug/shortage", []string{"Generic Name: DOXYCYCLINE HYCLATE", "Status: Currently in Shortage"}},
		{"device/510k", []string{"K Number: K213456", "Device: Pulse Oximeter", "Decision: SESE"}},
		{"device/pma", []string{"PMA Number: P200001", "Trade Name: Test Cardiac Device", "Applicant: CardioTech Inc"}},
		{"device/classification", []string{"Product Code: DQA", "Device Class: 2", "Regulation Number: 870.2710"}},
		{"device/enforcement", []string{"Recall Number: Z-0001-2024", "Reason: Software defect"}},
		{"device/event", []string{"Report Number: 12345", "Device: Infusion Pump (PumpX)", "Narrative: Patient experienced", "Patient Outcomes: Treated"}},
		{"device/recall", []string{"Recall Number: 78901", "Root Cause: Software Bug"}},
		{"device/registrationlisting", []string{"Registration Number: REG123456", "Firm: Manufacturer", "Device Name: Pulse Oximeter", "Proprietary Names: PulseCheck Pro"}},
		{"device/udi", []string{"Identifier: 00886009100121 (Issuing Agency: GS1)", "Brand: FreeStyle Libre 2", "MRI Safety: MR Unsafe"}},
		{"device/covid19serology", []string{"Manufacturer: Abbott", "Device: Architect SARS-CoV-2 IgG", "Sensitivity: 99.6%"}},
		{"food/enforcement", []string{"Recall Number: F-0001-2024", "Recalling Firm: Test Foods Inc"}},
		{"food/event", []string{"Report Number: CAERS-2024-001", "Product: TestSupp Energy Drink (Suspect)", "Reactions: Nausea, Vomiting, Diarrhea", "Outcomes: Hospitalization"}},
		{"other/historicaldocument", []string{"Title: Historical FDA Guidance", "URL: https://www.fda.gov/example"}},
		{"other/nsde", []string{"Product NDC: 0002-3227", "Marketing Category: NDA"}},
		{"other/substance", []string{"UNII: R16CO5Y76E", "Substance Name: ASPIRIN", "Code: 50-78-2 (CAS)"}},
		{"other/unii", []string{"Display Name: ASPIRIN", "MF: C9H8O4"}},
	}

	require.Len(t, tests, len(Endpoints), "every endpoint needs a summary case")

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			out := Summarize(tt.endpoint, sampleResponse(t, tt.endpoint, 1))
			assert.True(t, strings.HasPrefix(out, "Results: 1 of 1 total\n"), out)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestSummarize_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		wantMore   bool
		wantTip    bool
		wantHeader string
	}{
		{"single page", 1, false, false, "Results: 1 of 1 total\n"},
		{"more available", 50, true, false, "Results: 1 of 50 total (showing 1-1)\nMore results available — increase skip to paginate.\n"},
		{"large result set", 5000, true, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Summarize("device/510k", sampleResponse(t, "device/510k", tt.total))
			assert.Equal(t, tt.wantMore, strings.Contains(out, "More results available"))
			assert.Equal(t, tt.wantTip, strings.Contains(out, "consider using count_records"))
			if tt.wantHeader != "" {
				assert.True(t, strings.HasPrefix(out, tt.wantHeader), out)
			}
		})
	}
}

func TestSummarize_SeparatesRecords(t *testing.T) {
	resp := &Response{Results: []map[string]any{
		{"k_number": "K000001"},
		{"k_number": "K000002"},
	}}

	out := Summarize("device/510k", resp)
	assert.Contains(t, out, "Results: 2 of 2 total\n")
	assert.Contains(t, out, "K000001")
	assert.Contains(t, out, "\n---\nK Number: K000002")
	assert.Contains(t, out, "Device: N/A")
}

func TestSummarize_LongFieldsClipped(t *testing.T) {
	resp := &Response{Results: []map[string]any{{
		"reason_for_recall": strings.Repeat("r", 700),
	}}}

	out := Summarize("food/enforcement", resp)
	assert.Contains(t, out, "Reason: "+strings.Repeat("r", 500)+"... [truncated]")
}

func TestSummarize_DrugEventOverflow(t *testing.T) {
	var drugs []any
	for i := 0; i < 7; i++ {
		drugs = append(drugs, map[string]any{"medicinalproduct": "DRUG", "drugcharacterization": "2"})
	}
	resp := &Response{Results: []map[string]any{{
		"safetyreportid":   "1",
		"seriousnessdeath": "1",
		"patient":          map[string]any{"drug": drugs},
	}}}

	out := Summarize("drug/event", resp)
	assert.Equal(t, 5, strings.Count(out, "Drug: DRUG (Concomitant)"))
	assert.Contains(t, out, "... and 2 more drugs")
	assert.Contains(t, out, "Outcome: Death reported")
}

func TestSummarize_GenericFallback(t *testing.T) {
	resp := &Response{Results: []map[string]any{{
		"blob": strings.Repeat("z", 5000),
	}}}

	out := Summarize("unknown/endpoint", resp)
	_, body, _ := strings.Cut(out, "\n")
	assert.Contains(t, body, `"blob"`)
	assert.Equal(t, genericClip, len([]rune(body)))
}

func TestSummarizeCounts(t *testing.T) {
	resp := &Response{Results: []map[string]any{
		{"term": "NAUSEA", "count": json.Number("5000")},
		{"term": "HEADACHE", "count": json.Number("3000")},
		{"term": "FATIGUE", "count": json.Number("2000")},
	}}

	out := SummarizeCounts(resp)
	assert.Contains(t, out, "Total across 3 categories: 10,000\n")
	assert.Contains(t, out, "  NAUSEA: 5,000 (50.0%)")
	assert.Contains(t, out, "  HEADACHE: 3,000 (30.0%)")
	assert.Contains(t, out, "  FATIGUE: 2,000 (20.0%)")
	assert.Contains(t, out, "Summary: 'NAUSEA' is the most common value with 5,000 occurrences (50.0% of total).")
}

func TestSummarizeCounts_NumericTerms(t *testing.T) {
	resp := &Response{Results: []map[string]any{
		{"term": json.Number("2"), "count": json.Number("3")},
		{"term": json.Number("1"), "count": json.Number("1")},
	}}

	out := SummarizeCounts(resp)
	assert.Contains(t, out, "  2: 3 (75.0%)")
	assert.Contains(t, out, "'2' is the most common value")
}

func TestSummarizeCounts_Empty(t *testing.T) {
	assert.Equal(t, "No count results returned.", SummarizeCounts(&Response{}))
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		limit, max int
		want       int
		wantNote   string
	}{
		{10, 100, 10, ""},
		{100, 100, 100, ""},
		{200, 100, 100, "[Note: limit was reduced from 200 to 100 (maximum allowed).]"},
		{5000, 1000, 1000, "[Note: limit was reduced from 5000 to 1000 (maximum allowed).]"},
	}

	for _, tt := range tests {
		got, note := ClampLimit(tt.limit, tt.max)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.wantNote, note)
	}
}
