package openfda

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoints(t *testing.T) {
	assert.Len(t, Endpoints, 21)

	perCategory := map[string]int{}
	for _, ep := range Endpoints {
		perCategory[ep.Category()]++
		assert.NotEmpty(t, ep.Description, ep.Path)
	}
	assert.Equal(t, map[string]int{"drug": 6, "device": 9, "food": 2, "other": 4}, perCategory)
}

func TestEndpoint_URL(t *testing.T) {
	ep, ok := Lookup("drug/event")
	require.True(t, ok)
	assert.Equal(t, "https://api.fda.gov/drug/event.json", ep.URL(DefaultBaseURL))
	assert.Equal(t, "http://localhost:9/drug/event.json", ep.URL("http://localhost:9/"))
}

func TestValidPaths(t *testing.T) {
	paths := ValidPaths()
	assert.Len(t, paths, 21)
	assert.True(t, sort.StringsAreSorted(paths))
}

func TestResolveEndpoint(t *testing.T) {
	ep, err := ResolveEndpoint("device/udi")
	require.NoError(t, err)
	assert.Equal(t, "Unique Device Identifier (UDI) database", ep.Description)

	_, err = ResolveEndpoint("device/nope")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Unknown endpoint 'device/nope'. Valid endpoints: device/510k, "))
}

func TestDatasets(t *testing.T) {
	assert.Len(t, Datasets, 21)

	targets := map[string]bool{}
	for name, path := range Datasets {
		_, ok := Lookup(path)
		assert.True(t, ok, "dataset %s points at unknown endpoint %s", name, path)
		targets[path] = true
	}
	assert.Len(t, targets, 21, "every endpoint is reachable through exactly one dataset")
}

func TestResolveDataset(t *testing.T) {
	ep, err := ResolveDataset("device_recall_details")
	require.NoError(t, err)
	assert.Equal(t, "device/recall", ep.Path)

	_, err = ResolveDataset("invalid_thing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown dataset 'invalid_thing'")
}

func TestEndpointsMarkdown(t *testing.T) {
	md := EndpointsMarkdown()

	assert.True(t, strings.HasPrefix(md, "# OpenFDA API Endpoints\n"))
	for _, heading := range []string{"## Drug", "## Device", "## Food", "## Other"} {
		assert.Contains(t, md, heading)
	}
	assert.Contains(t, md, "- **device/510k**: 510(k) premarket notifications")
	assert.Less(t, strings.Index(md, "## Drug"), strings.Index(md, "## Device"))
	assert.Equal(t, 21, strings.Count(md, "- **"))
}
