package descriptions

// Tool and resource descriptions shown to MCP clients

const (
	ServerInstructions = `FDA MCP provides access to all 21 OpenFDA API endpoints plus FDA decision documents.

WORKFLOW:
1. If unsure which fields to search, call list_searchable_fields first.
2. Use search_fda to find individual records. Use count_records for aggregation/statistics.
3. For device regulatory documents (510k summaries, PMA approvals), use get_decision_document.

QUERY SYNTAX (for the "search" parameter):
- AND: field1:value1+AND+field2:value2
- OR (space = OR): field1:value1+field2:value2
- Phrases: field:"exact phrase"
- Wildcards (trailing only, min 2 chars): field:asp*
- Date ranges: field:[20200101+TO+20231231]
- Existence: _exists_:field
- Exact match (required for count_field): field.exact

COMMON MISTAKES:
- String values MUST be quoted: brand_name:"ASPIRIN" not brand_name:ASPIRIN
- Use + not spaces in queries: value1+AND+value2
- The .exact suffix is REQUIRED on count_field for text fields
- Field names are nested with dots: patient.drug.openfda.brand_name
- Dates are YYYYMMDD format, not ISO-8601

QUERY RECIPES (natural language → API query):
- De Novo grants: dataset=device_510k, search='decision_code:"DENG"'
- De Novos by division: add advisory_committee code (DE=Dental, CV=Cardiovascular, etc.)
- De Novo classifications: dataset=device_classification, search='submission_type_id:6'
- 510(k) clearances only: dataset=device_510k, search='decision_code:"SESE"'
- Class III devices: dataset=device_classification, search='device_class:3'
- PMA approvals: dataset=device_pma, search='decision_code:"APPR"'
- Drug recalls by severity: dataset=drug_recalls, search='classification:"Class I"'
- Recall status: search='status:"Ongoing"' (values: Ongoing, Terminated, Completed)
- Adverse events by drug: dataset=drug_adverse_events, search='patient.drug.openfda.brand_name:"DRUGNAME"'
`

	SearchFDADescription = `Search any of the 21 OpenFDA datasets and return readable record summaries.

**When to use:** Need individual records: adverse event reports, drug labels, recalls, 510(k) clearances, PMA approvals, device registrations, UDI entries, substances.

**Datasets:**
• Drugs: drug_adverse_events, drug_labels, drug_ndc, drug_approvals, drug_recalls, drug_shortages
• Devices: device_adverse_events, device_510k, device_pma, device_classification, device_recalls, device_recall_details, device_registration, device_udi, device_covid19_serology
• Food: food_adverse_events, food_recalls
• Other: historical_documents, substance_data, unii, nsde

**Examples:**
• dataset="drug_adverse_events", search='patient.drug.openfda.brand_name:"ASPIRIN"+AND+serious:1'
• dataset="device_510k", search='device_name:"pulse+oximeter"', sort="decision_date:desc"
• dataset="drug_recalls", search='classification:"Class I"', limit=25, skip=25

**Best practices:** Call list_searchable_fields first when unsure of field names. Results are paginated with skip; limit is capped at 100. For totals and distributions use count_records instead of paging.`

	CountRecordsDescription = `Count/aggregate records by field across any OpenFDA endpoint.

**When to use:** Need statistics rather than individual records: most common reactions, recall classifications, product codes, decision codes.

**Returns:** Top values with counts, percentages and a narrative summary.

**Examples:**
• endpoint="drug/event", count_field="patient.reaction.reactionmeddrapt.exact", search='patient.drug.openfda.brand_name:"ASPIRIN"'
• endpoint="device/510k", count_field="product_code.exact"
• endpoint="food/enforcement", count_field="classification.exact", search='status:"Ongoing"'

**Best practices:** Use the .exact suffix on text fields. Endpoints are API paths such as "drug/event"; see fda://reference/endpoints for the full list. limit is capped at 1000.`

	ListSearchableFieldsDescription = `List searchable fields for any OpenFDA endpoint, with field types and descriptions.

**When to use:** Before writing a search or count query, to find the right (often nested) field name.

**Examples:**
• endpoint="drug/event" → patient.drug.openfda.brand_name, patient.reaction.reactionmeddrapt, receiptdate
• endpoint="device/510k", category="all" → every documented 510(k) field

**Best practices:** category="common" (default) lists the frequently used fields; category="all" adds the complete listing.`

	GetDecisionDocumentDescription = `Fetch FDA regulatory decision documents (not available via the OpenFDA API).
Downloads the PDF from FDA servers and extracts its text, using OCR for scanned documents when the server has it installed.

**Document types:**
• 510k_summary: 510(k) summary (submission_number like "K213456")
• denovo_decision: De Novo decision summary ("DEN200001")
• pma_approval: PMA approval order ("P200001")
• pma_ssed: PMA summary of safety and effectiveness data ("P200001")
• pma_supplement: PMA supplement approval ("P200001" plus supplement_number "013")

**Examples:**
• document_type="510k_summary", submission_number="K213456"
• document_type="pma_supplement", submission_number="P200001", supplement_number="013"

**Best practices:** Find submission numbers first with search_fda (device_510k or device_pma). Older documents are often scanned images; text is returned with a header naming the extraction method and page count. Use max_length to bound the returned text.`

	EndpointsResourceDescription = "All 21 OpenFDA API endpoints grouped by category"

	QuerySyntaxResourceDescription = "OpenFDA query syntax reference with operators, wildcards, date ranges, and examples"

	FieldsResourceDescription = "Complete field definitions for an OpenFDA endpoint, e.g. fda://reference/fields/drug/event"

	QuerySyntaxReference = `# OpenFDA Query Syntax

## Search Operators
- AND: field1:value1+AND+field2:value2
- OR:  field1:value1+field2:value2  (space = OR)
- NOT: NOT+field:value

## Wildcards
- Trailing only: field:val*  (min 2 chars before *)

## Date Ranges
- field:[20200101+TO+20231231]

## Exact Matching
- field.exact:"complete phrase"  (use with count queries)

## Quoting
- Phrases: field:"my phrase"
- Combine: field:"value one"+AND+field2:"value two"

## Numeric Ranges
- field:[1+TO+100]
- field:>10
- field:>=10

## Special Fields
- _exists_:field  (field has a value)

## Examples
- search=patient.drug.openfda.brand_name:"ASPIRIN"+AND+serious:1
- search=recalling_firm:"Pfizer"+AND+classification:"Class I"
- search=device_name:"pump"+AND+decision_date:[20230101+TO+20231231]
- count=patient.reaction.reactionmeddrapt.exact&limit=10
`
)
