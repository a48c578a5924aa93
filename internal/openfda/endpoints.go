// Package openfda queries the OpenFDA REST API and renders its responses as
// compact text for language model consumption.
package openfda

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultBaseURL is the public OpenFDA API host
const DefaultBaseURL = "https://api.fda.gov"

// Endpoint is one OpenFDA dataset addressed by its URL path
type Endpoint struct {
	Path        string
	Description string
}

// URL returns the JSON query URL of the endpoint under base
func (e Endpoint) URL(base string) string {
	return strings.TrimRight(base, "/") + "/" + e.Path + ".json"
}

// Category is the top-level grouping: drug, device, food or other
func (e Endpoint) Category() string {
	category, _, _ := strings.Cut(e.Path, "/")
	return category
}

// Endpoints lists every supported OpenFDA endpoint grouped by category
var Endpoints = []Endpoint{
	{"drug/event", "Drug adverse event reports (FAERS)"},
	{"drug/label", "Drug product labeling (SPL)"},
	{"drug/ndc", "National Drug Code directory"},
	{"drug/enforcement", "Drug recall enforcement reports"},
	{"drug/drugsfda", "FDA-approved drugs (Drugs@FDA)"},
	{"drug/shortage", "Drug shortage reports"},

	{"device/510k", "510(k) premarket notifications"},
	{"device/pma", "Premarket approval (PMA) decisions"},
	{"device/classification", "Device classification (product codes)"},
	{"device/enforcement", "Device recall enforcement reports"},
	{"device/event", "Device adverse event reports (MAUDE)"},
	{"device/recall", "Device recall details"},
	{"device/registrationlisting", "Device registration and listing"},
	{"device/udi", "Unique Device Identifier (UDI) database"},
	{"device/covid19serology", "COVID-19 serological test evaluations"},

	{"food/enforcement", "Food recall enforcement reports"},
	{"food/event", "Food adverse event reports (CAERS)"},

	{"other/historicaldocument", "Historical FDA documents"},
	{"other/nsde", "NDC/SPL data elements"},
	{"other/substance", "Substance registration data"},
	{"other/unii", "Unique Ingredient Identifier (UNII) codes"},
}

// Categories in display order
var Categories = []string{"drug", "device", "food", "other"}

var endpointsByPath = func() map[string]Endpoint {
	m := make(map[string]Endpoint, len(Endpoints))
	for _, ep := range Endpoints {
		m[ep.Path] = ep
	}
	return m
}()

// Lookup finds an endpoint by its path
func Lookup(path string) (Endpoint, bool) {
	ep, ok := endpointsByPath[path]
	return ep, ok
}

// ValidPaths returns all endpoint paths sorted alphabetically
func ValidPaths() []string {
	paths := make([]string, 0, len(Endpoints))
	for _, ep := range Endpoints {
		paths = append(paths, ep.Path)
	}
	sort.Strings(paths)
	return paths
}

// UnknownEndpointError is returned for an endpoint path that is not one of
// the supported datasets.
type UnknownEndpointError struct {
	Path string
}

func (e *UnknownEndpointError) Error() string {
	return fmt.Sprintf("Unknown endpoint '%s'. Valid endpoints: %s", e.Path, strings.Join(ValidPaths(), ", "))
}

// ResolveEndpoint is Lookup returning an UnknownEndpointError on a miss
func ResolveEndpoint(path string) (Endpoint, error) {
	ep, ok := Lookup(path)
	if !ok {
		return Endpoint{}, &UnknownEndpointError{Path: path}
	}
	return ep, nil
}

// Datasets maps the friendly dataset names accepted by search_fda to
// endpoint paths.
var Datasets = map[string]string{
	"drug_adverse_events":     "drug/event",
	"drug_labels":             "drug/label",
	"drug_ndc":                "drug/ndc",
	"drug_approvals":          "drug/drugsfda",
	"drug_recalls":            "drug/enforcement",
	"drug_shortages":          "drug/shortage",
	"device_adverse_events":   "device/event",
	"device_510k":             "device/510k",
	"device_pma":              "device/pma",
	"device_classification":   "device/classification",
	"device_recalls":          "device/enforcement",
	"device_recall_details":   "device/recall",
	"device_registration":     "device/registrationlisting",
	"device_udi":              "device/udi",
	"device_covid19_serology": "device/covid19serology",
	"food_adverse_events":     "food/event",
	"food_recalls":            "food/enforcement",
	"historical_documents":    "other/historicaldocument",
	"substance_data":          "other/substance",
	"unii":                    "other/unii",
	"nsde":                    "other/nsde",
}

// DatasetNames returns the dataset names sorted alphabetically
func DatasetNames() []string {
	names := make([]string, 0, len(Datasets))
	for name := range Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveDataset maps a dataset name to its endpoint
func ResolveDataset(name string) (Endpoint, error) {
	path, ok := Datasets[name]
	if !ok {
		return Endpoint{}, fmt.Errorf("Unknown dataset '%s'. Valid datasets: %s", name, strings.Join(DatasetNames(), ", "))
	}
	return endpointsByPath[path], nil
}

// EndpointsMarkdown renders the endpoint catalogue grouped by category
func EndpointsMarkdown() string {
	lines := []string{"# OpenFDA API Endpoints\n"}
	for _, category := range Categories {
		lines = append(lines, fmt.Sprintf("\n## %s\n", title(category)))
		for _, ep := range Endpoints {
			if ep.Category() == category {
				lines = append(lines, fmt.Sprintf("- **%s**: %s", ep.Path, ep.Description))
			}
		}
	}
	return strings.Join(lines, "\n")
}
