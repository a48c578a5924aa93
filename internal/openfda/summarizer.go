package openfda

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	notAvailable  = "N/A"
	recordDivider = "\n---\n"
	// aggregationHint is shown when paging through this many records would be tedious
	aggregationHint = 100
	genericClip     = 3000
)

type recordSummarizer func(rec map[string]any) string

var summarizers = map[string]recordSummarizer{
	"drug/event":                 summarizeDrugEvent,
	"drug/label":                 summarizeDrugLabel,
	"drug/ndc":                   summarizeDrugNDC,
	"drug/enforcement":           summarizeEnforcement,
	"drug/drugsfda":              summarizeDrugsFDA,
	"drug/shortage":              summarizeDrugShortage,
	"device/510k":                summarizeDevice510k,
	"device/pma":                 summarizeDevicePMA,
	"device/classification":      summarizeDeviceClassification,
	"device/enforcement":         summarizeEnforcement,
	"device/event":               summarizeDeviceEvent,
	"device/recall":              summarizeDeviceRecall,
	"device/registrationlisting": summarizeDeviceRegistration,
	"device/udi":                 summarizeDeviceUDI,
	"device/covid19serology":     summarizeDeviceCovid19,
	"food/enforcement":           summarizeEnforcement,
	"food/event":                 summarizeFoodEvent,
	"other/historicaldocument":   summarizeHistoricalDocument,
	"other/nsde":                 summarizeNSDE,
	"other/substance":            summarizeSubstance,
	"other/unii":                 summarizeUNII,
}

// Summarize renders a search response: a pagination header followed by one
// flattened block per record.
func Summarize(endpoint string, resp *Response) string {
	total := resp.Total()
	skip := resp.Meta.Results.Skip
	showing := len(resp.Results)

	var header strings.Builder
	fmt.Fprintf(&header, "Results: %d of %d total", showing, total)
	if skip+showing < total {
		fmt.Fprintf(&header, " (showing %d-%d)", skip+1, skip+showing)
		header.WriteString("\nMore results available — increase skip to paginate.")
	}
	if total > aggregationHint {
		header.WriteString("\nTip: For large result sets, consider using count_records " +
			"for aggregation instead of paging through results.")
	}
	header.WriteString("\n")

	summarize, ok := summarizers[endpoint]
	if !ok {
		summarize = summarizeGeneric
	}

	records := make([]string, 0, showing)
	for _, rec := range resp.Results {
		records = append(records, summarize(rec))
	}
	return header.String() + strings.Join(records, recordDivider)
}

// SummarizeCounts renders a count response with percentages and a closing
// sentence naming the top term.
func SummarizeCounts(resp *Response) string {
	counts := resp.Counts()
	if len(counts) == 0 {
		return "No count results returned."
	}

	p := message.NewPrinter(language.English)

	var total int64
	for _, c := range counts {
		total += c.Count
	}
	percent := func(n int64) float64 {
		if total == 0 {
			return 0
		}
		return float64(n) / float64(total) * 100
	}

	lines := []string{p.Sprintf("Total across %d categories: %d\n", len(counts), total)}
	for _, c := range counts {
		lines = append(lines, p.Sprintf("  %v: %d (%.1f%%)", c.Term, c.Count, percent(c.Count)))
	}

	top := counts[0]
	lines = append(lines, p.Sprintf("\nSummary: '%v' is the most common value with %d occurrences (%.1f%% of total).",
		top.Term, top.Count, percent(top.Count)))

	return strings.Join(lines, "\n")
}

// ClampLimit caps limit at max, returning a note for the caller when it did
func ClampLimit(limit, max int) (int, string) {
	if limit > max {
		return max, fmt.Sprintf("[Note: limit was reduced from %d to %d (maximum allowed).]", limit, max)
	}
	return limit, ""
}

func summarizeDrugEvent(rec map[string]any) string {
	lines := []string{
		"Report ID: " + field(rec, "safetyreportid"),
		"Date: " + field(rec, "receiptdate"),
		"Serious: " + field(rec, "serious"),
	}

	patient := object(rec, "patient")
	var reactions []string
	for _, r := range objects(patient, "reaction") {
		reactions = append(reactions, text(r["reactionmeddrapt"], ""))
	}
	if len(reactions) > 0 {
		lines = append(lines, "Reactions: "+strings.Join(reactions, ", "))
	}

	roles := map[string]string{"1": "Suspect", "2": "Concomitant", "3": "Interacting"}
	drugs := objects(patient, "drug")
	for _, d := range head(drugs, 5) {
		role := text(d["drugcharacterization"], "")
		if label, ok := roles[role]; ok {
			role = label
		}
		lines = append(lines, fmt.Sprintf("  Drug: %s (%s)", text(d["medicinalproduct"], "Unknown"), role))
	}
	if len(drugs) > 5 {
		lines = append(lines, fmt.Sprintf("  ... and %d more drugs", len(drugs)-5))
	}

	if text(rec["seriousnessdeath"], "") == "1" {
		lines = append(lines, "Outcome: Death reported")
	}
	return strings.Join(lines, "\n")
}

var labelSections = []string{
	"indications_and_usage",
	"dosage_and_administration",
	"warnings",
	"adverse_reactions",
	"contraindications",
	"drug_interactions",
}

func summarizeDrugLabel(rec map[string]any) string {
	openfda := object(rec, "openfda")
	lines := []string{
		"Brand: " + field(openfda, "brand_name"),
		"Generic: " + field(openfda, "generic_name"),
		"Manufacturer: " + field(openfda, "manufacturer_name"),
	}

	for _, section := range labelSections {
		content := rec[section]
		if list, ok := content.([]any); ok {
			if len(list) == 0 {
				continue
			}
			content = list[0]
		}
		body := text(content, "")
		if body == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("\n%s:\n%s", title(strings.ReplaceAll(section, "_", " ")), clip(body, 2000)))
	}
	return strings.Join(lines, "\n")
}

func summarizeDrugNDC(rec map[string]any) string {
	lines := []string{
		"Product NDC: " + field(rec, "product_ndc"),
		"Brand: " + field(rec, "brand_name"),
		"Generic: " + field(rec, "generic_name"),
		"Dosage Form: " + field(rec, "dosage_form"),
		"Route: " + field(rec, "route"),
	}
	for _, ing := range objects(rec, "active_ingredients") {
		lines = append(lines, fmt.Sprintf("  Ingredient: %s (%s)", field(ing, "name"), field(ing, "strength")))
	}
	return strings.Join(lines, "\n")
}

// summarizeEnforcement serves drug, device and food enforcement reports
func summarizeEnforcement(rec map[string]any) string {
	return strings.Join([]string{
		"Recall Number: " + field(rec, "recall_number"),
		"Classification: " + field(rec, "classification"),
		"Status: " + field(rec, "status"),
		"Recalling Firm: " + field(rec, "recalling_firm"),
		"Product: " + field(rec, "product_description"),
		"Reason: " + clip(field(rec, "reason_for_recall"), 500),
		"Distribution: " + field(rec, "distribution_pattern"),
		"Date: " + field(rec, "report_date"),
	}, "\n")
}

func summarizeDrugsFDA(rec map[string]any) string {
	lines := []string{
		"Application Number: " + field(rec, "application_number"),
		"Sponsor: " + field(rec, "sponsor_name"),
	}
	for _, p := range head(objects(rec, "products"), 5) {
		lines = append(lines,
			fmt.Sprintf("  Product: %s — %s", field(p, "brand_name"), field(p, "active_ingredients")),
			fmt.Sprintf("    Dosage: %s, Route: %s", field(p, "dosage_form"), field(p, "route")))
	}
	for _, s := range head(objects(rec, "submissions"), 3) {
		lines = append(lines, fmt.Sprintf("  Submission: %s %s — %s",
			text(s["submission_type"], ""), text(s["submission_number"], ""), text(s["submission_status"], "")))
	}
	return strings.Join(lines, "\n")
}

func summarizeDrugShortage(rec map[string]any) string {
	return strings.Join([]string{
		"Generic Name: " + field(rec, "generic_name"),
		"Brand Name: " + field(rec, "brand_name"),
		"Status: " + field(rec, "status"),
		"Company: " + field(rec, "company"),
		"Presentation: " + field(rec, "presentation"),
	}, "\n")
}

func summarizeDevice510k(rec map[string]any) string {
	return strings.Join([]string{
		"K Number: " + field(rec, "k_number"),
		"Device: " + field(rec, "device_name"),
		"Applicant: " + field(rec, "applicant"),
		"Decision: " + field(rec, "decision_description"),
		"Decision Date: " + field(rec, "decision_date"),
		"Product Code: " + field(rec, "product_code"),
		"Review Panel: " + field(rec, "review_panel"),
	}, "\n")
}

func summarizeDevicePMA(rec map[string]any) string {
	return strings.Join([]string{
		"PMA Number: " + field(rec, "pma_number"),
		"Trade Name: " + field(rec, "trade_name"),
		"Applicant: " + field(rec, "applicant"),
		"Decision: " + field(rec, "decision_description"),
		"Decision Date: " + field(rec, "decision_date"),
		"Product Code: " + field(rec, "product_code"),
		"Advisory Committee: " + field(rec, "advisory_committee_description"),
	}, "\n")
}

func summarizeDeviceClassification(rec map[string]any) string {
	return strings.Join([]string{
		"Product Code: " + field(rec, "product_code"),
		"Device Name: " + field(rec, "device_name"),
		"Device Class: " + field(rec, "device_class"),
		"Regulation Number: " + field(rec, "regulation_number"),
		"Medical Specialty: " + field(rec, "medical_specialty_description"),
		"Review Panel: " + field(rec, "review_panel"),
	}, "\n")
}

func summarizeDeviceEvent(rec map[string]any) string {
	lines := []string{
		"Report Number: " + field(rec, "mdr_report_key"),
		"Date: " + field(rec, "date_received"),
		"Event Type: " + field(rec, "event_type"),
	}
	for _, d := range head(objects(rec, "device"), 3) {
		lines = append(lines,
			fmt.Sprintf("  Device: %s (%s)", field(d, "generic_name"), field(d, "brand_name")),
			"    Manufacturer: "+field(d, "manufacturer_d_name"))
	}
	for _, t := range head(objects(rec, "mdr_text"), 2) {
		lines = append(lines, "  Narrative: "+clip(text(t["text"], ""), 500))
	}

	var outcomes []string
	for _, p := range objects(rec, "patient") {
		switch seq := p["sequence_number_outcome"].(type) {
		case nil:
		case []any:
			for _, o := range seq {
				outcomes = append(outcomes, text(o, ""))
			}
		default:
			outcomes = append(outcomes, text(seq, ""))
		}
	}
	if len(outcomes) > 0 {
		lines = append(lines, "  Patient Outcomes: "+strings.Join(outcomes, ", "))
	}
	return strings.Join(lines, "\n")
}

func summarizeDeviceRecall(rec map[string]any) string {
	return strings.Join([]string{
		"Recall Number: " + field(rec, "res_event_number"),
		"Product Code: " + field(rec, "product_code"),
		"Firm: " + field(rec, "recalling_firm"),
		"Root Cause: " + field(rec, "root_cause_description"),
		"Action: " + field(rec, "action"),
		"Product: " + field(rec, "product_description"),
	}, "\n")
}

func summarizeDeviceRegistration(rec map[string]any) string {
	lines := []string{
		"Registration Number: " + field(rec, "registration_number"),
		"Firm: " + field(rec, "establishment_type"),
	}

	switch products := rec["products"].(type) {
	case map[string]any:
		lines = append(lines,
			"  Product Code: "+field(products, "product_code"),
			"  Device Name: "+field(object(products, "openfda"), "device_name"))
	case []any:
		for _, p := range head(products, 3) {
			if m, ok := p.(map[string]any); ok {
				lines = append(lines, "  Product Code: "+field(m, "product_code"))
			}
		}
	}

	var names []string
	switch proprietary := rec["proprietary_name"].(type) {
	case nil:
	case []any:
		for _, n := range head(proprietary, 5) {
			names = append(names, text(n, ""))
		}
	default:
		if s := text(proprietary, ""); s != "" {
			names = append(names, s)
		}
	}
	if len(names) > 0 {
		lines = append(lines, "  Proprietary Names: "+strings.Join(names, ", "))
	}
	return strings.Join(lines, "\n")
}

func summarizeDeviceUDI(rec map[string]any) string {
	var lines []string
	for _, id := range head(objects(rec, "identifiers"), 3) {
		lines = append(lines, fmt.Sprintf("Identifier: %s (Issuing Agency: %s)", field(id, "id"), field(id, "issuing_agency")))
	}
	lines = append(lines,
		"Brand: "+field(rec, "brand_name"),
		"Company: "+field(rec, "company_name"),
		"Device Description: "+field(rec, "device_description"),
		"Version/Model: "+field(rec, "version_or_model_number"),
		"MRI Safety: "+field(rec, "MRISafety"),
	)
	return strings.Join(lines, "\n")
}

func summarizeDeviceCovid19(rec map[string]any) string {
	return strings.Join([]string{
		"Manufacturer: " + field(rec, "manufacturer"),
		"Device: " + field(rec, "device"),
		"Sensitivity: " + field(rec, "sensitivity"),
		"Specificity: " + field(rec, "specificity"),
		"Date Updated: " + field(rec, "date_updated"),
	}, "\n")
}

func summarizeFoodEvent(rec map[string]any) string {
	lines := []string{
		"Report Number: " + field(rec, "report_number"),
		"Date: " + field(rec, "date_started"),
	}
	for _, p := range head(objects(rec, "products"), 3) {
		lines = append(lines,
			fmt.Sprintf("  Product: %s (%s)", field(p, "name_brand"), field(p, "role")),
			"    Industry: "+field(p, "industry_name"))
	}
	if reactions := strs(rec, "reactions"); len(reactions) > 0 {
		lines = append(lines, "Reactions: "+strings.Join(head(reactions, 10), ", "))
	}
	if outcomes := strs(rec, "outcomes"); len(outcomes) > 0 {
		lines = append(lines, "Outcomes: "+strings.Join(head(outcomes, 5), ", "))
	}
	return strings.Join(lines, "\n")
}

func summarizeHistoricalDocument(rec map[string]any) string {
	return strings.Join([]string{
		"Title: " + field(rec, "title"),
		"Date: " + field(rec, "date"),
		"Type: " + field(rec, "type"),
		"URL: " + field(rec, "url"),
	}, "\n")
}

func summarizeNSDE(rec map[string]any) string {
	return strings.Join([]string{
		"Product NDC: " + field(rec, "product_ndc"),
		"Package NDC: " + field(rec, "package_ndc"),
		"SPL ID: " + field(rec, "spl_id"),
		"Marketing Category: " + field(rec, "marketing_category"),
	}, "\n")
}

func summarizeSubstance(rec map[string]any) string {
	lines := []string{
		"UNII: " + field(rec, "unii"),
		"Substance Name: " + field(rec, "substance_name"),
	}
	for _, c := range head(objects(rec, "codes"), 3) {
		lines = append(lines, fmt.Sprintf("  Code: %s (%s)", field(c, "code"), field(c, "code_system")))
	}
	return strings.Join(lines, "\n")
}

func summarizeUNII(rec map[string]any) string {
	return strings.Join([]string{
		"UNII: " + field(rec, "unii"),
		"Display Name: " + field(rec, "display_name"),
		"Preferred Term: " + field(rec, "preferred_term"),
		"MF: " + field(rec, "mf"),
		"InChIKey: " + field(rec, "inchikey"),
	}, "\n")
}

func summarizeGeneric(rec map[string]any) string {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Sprint(rec)
	}
	s, _ := truncate(string(data), genericClip)
	return s
}

// field renders rec[key] with N/A for missing values
func field(rec map[string]any, key string) string {
	return text(rec[key], notAvailable)
}

// text renders a decoded JSON value; lists are joined with ", "
func text(v any, fallback string) string {
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, text(item, ""))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

func object(rec map[string]any, key string) map[string]any {
	if m, ok := rec[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func objects(rec map[string]any, key string) []map[string]any {
	list, _ := rec[key].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func strs(rec map[string]any, key string) []string {
	list, _ := rec[key].([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, text(item, ""))
	}
	return out
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// clip shortens s to n characters and marks the cut
func clip(s string, n int) string {
	if out, cut := truncate(s, n); cut {
		return out + "... [truncated]"
	}
	return s
}

func truncate(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}

// title upper-cases the first letter of each word. A Caser is not safe for
// concurrent use, so one is built per call.
func title(s string) string {
	return cases.Title(language.English).String(s)
}
