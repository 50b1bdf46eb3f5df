package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/scrivener/internal/config"
	"github.com/agenthands/scrivener/internal/core/common"
	"github.com/agenthands/scrivener/internal/core/model"
)

var testPrompts = config.ExtractionPrompts{
	PrimarySystem:       "primary-system",
	Primary:             "parse: %s",
	SupplementarySystem: "supplementary-system",
	Supplementary:       "sweep: %s",
}

const primaryJSON = "```json\n" + `{
  "artifact": {"subject": "Budget", "sent_datetime": "2024-02-01", "artifact_purpose": "Request"},
  "sender": {"name": "Ann Lee", "email": "ann@example.com", "confidence": 1.0},
  "recipients": [{"name": "Mark Duvall", "email": null}],
  "mentioned": ["Mark", {"name": "Bo Chen", "note": "cc"}, {"name": ""}, 42],
  "entities": [{"entity_type": "Topic", "entity_value": "budget", "context": "Q3 budget"}],
  "locations": [{"location_name": "Paris", "latitude": "48.85", "longitude": 2.35}, "Lyon"]
}` + "\n```"

func TestExtractPrimary(t *testing.T) {
	mockLLM := &MockLLMClient{Response: primaryJSON}
	extractor := NewExtractor(mockLLM, testPrompts, nil)

	got, err := extractor.ExtractPrimary(context.Background(), "Dear Mark")

	require.NoError(t, err)
	assert.Equal(t, []string{"parse: Dear Mark"}, mockLLM.Prompts)
	assert.Equal(t, model.ArtifactInfo{Subject: "Budget", SentDatetime: "2024-02-01", ArtifactPurpose: "Request"}, got.Artifact)

	require.NotNil(t, got.Sender)
	assert.Equal(t, "Ann Lee", got.Sender.Name)
	assert.Equal(t, "ann@example.com", *got.Sender.Email)
	assert.InDelta(t, 1.0, *got.Sender.Confidence, 1e-9)

	require.Len(t, got.Recipients, 1)
	assert.Nil(t, got.Recipients[0].Email)

	require.Len(t, got.Mentioned, 2)
	assert.Equal(t, "Mark", got.Mentioned[0].Name)
	assert.Equal(t, "Bo Chen", got.Mentioned[1].Name)
	assert.Equal(t, "cc", got.Mentioned[1].Note)

	require.Len(t, got.Entities, 1)
	assert.Equal(t, "Q3 budget", got.Entities[0].Context)

	require.Len(t, got.Locations, 2)
	assert.InDelta(t, 48.85, *got.Locations[0].Latitude, 1e-9)
	assert.InDelta(t, 2.35, *got.Locations[0].Longitude, 1e-9)
	assert.Equal(t, "Lyon", got.Locations[1].LocationName)
	assert.Nil(t, got.Locations[1].Latitude)
}

func TestExtractPrimary_ToleratesShapeDrift(t *testing.T) {
	mockLLM := &MockLLMClient{Response: `{"sender": "Ann Lee", "recipients": "nobody", "entities": null}`}
	extractor := NewExtractor(mockLLM, testPrompts, nil)

	got, err := extractor.ExtractPrimary(context.Background(), "text")

	require.NoError(t, err)
	require.NotNil(t, got.Sender)
	assert.Equal(t, "Ann Lee", got.Sender.Name)
	assert.NotNil(t, got.Recipients)
	assert.Empty(t, got.Recipients)
	assert.Empty(t, got.Entities)
	assert.Equal(t, "", got.Artifact.Subject)
}

func TestExtractPrimary_ParseErrorCarriesRawText(t *testing.T) {
	raw := "```json\nSorry, I cannot help with that.\n```"
	extractor := NewExtractor(&MockLLMClient{Response: raw}, testPrompts, nil)

	_, err := extractor.ExtractPrimary(context.Background(), "text")

	var parseErr *common.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, PassPrimary, parseErr.Pass)
	assert.Equal(t, raw, parseErr.Raw, "fence is kept in the raw text")
}

func TestExtractPrimary_RejectsNonObject(t *testing.T) {
	extractor := NewExtractor(&MockLLMClient{Response: `["a", "b"]`}, testPrompts, nil)

	_, err := extractor.ExtractPrimary(context.Background(), "text")

	var parseErr *common.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, common.ErrNotObject)
}

func TestExtractPrimary_ProviderError(t *testing.T) {
	boom := errors.New("connection refused")
	extractor := NewExtractor(&MockLLMClient{Err: boom}, testPrompts, nil)

	_, err := extractor.ExtractPrimary(context.Background(), "text")

	var provErr *common.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.ErrorIs(t, err, boom)
}

func TestExtractSupplementary(t *testing.T) {
	mockLLM := &MockLLMClient{Responses: map[string]string{
		"supplementary-system": `{
			"additional_people": [{"name": "River Song", "email": null, "confidence": 0.9}],
			"additional_locations": [{"location_name": "Boston", "latitude": null, "longitude": null}],
			"additional_entities": [{"entity_type": "Event", "entity_value": "Gala"}]
		}`,
	}}
	extractor := NewExtractor(mockLLM, testPrompts, nil)

	got := extractor.ExtractSupplementary(context.Background(), "text")

	assert.Equal(t, []string{"sweep: text"}, mockLLM.Prompts)
	require.Len(t, got.AdditionalPeople, 1)
	assert.Equal(t, "River Song", got.AdditionalPeople[0].Name)
	require.Len(t, got.AdditionalLocations, 1)
	assert.Equal(t, "Boston", got.AdditionalLocations[0].LocationName)
	require.Len(t, got.AdditionalEntities, 1)
	assert.Equal(t, "Gala", got.AdditionalEntities[0].EntityValue)
}

func TestExtractSupplementary_FailuresYieldEmptyStructure(t *testing.T) {
	cases := map[string]*MockLLMClient{
		"provider": {Err: errors.New("timeout")},
		"parse":    {Response: "not json at all"},
		"array":    {Response: "[]"},
	}
	for name, mockLLM := range cases {
		t.Run(name, func(t *testing.T) {
			got := NewExtractor(mockLLM, testPrompts, nil).ExtractSupplementary(context.Background(), "text")
			assert.Equal(t, model.EmptyAdditionalExtraction(), got)
		})
	}
}

func TestMerge(t *testing.T) {
	primary := model.RawExtraction{
		Recipients: []model.PersonReference{{Name: "Mark Duvall"}},
		Mentioned:  []model.PersonReference{{Name: "Mark"}},
		Entities:   []model.ExtractedEntity{{EntityValue: "budget"}},
		Locations:  []model.ExtractedLocation{{LocationName: "Paris"}},
	}
	additional := model.AdditionalExtraction{
		AdditionalPeople:    []model.PersonReference{{Name: "River Song"}},
		AdditionalEntities:  []model.ExtractedEntity{{EntityValue: "gala"}},
		AdditionalLocations: []model.ExtractedLocation{{LocationName: "Boston"}},
	}

	merged := Merge(primary, additional)

	assert.Equal(t, []model.PersonReference{{Name: "Mark Duvall"}}, merged.Recipients)
	assert.Equal(t, []model.PersonReference{{Name: "Mark"}, {Name: "River Song"}}, merged.Mentioned)
	assert.Len(t, merged.Entities, 2)
	assert.Len(t, merged.Locations, 2)
	assert.Len(t, primary.Mentioned, 1, "inputs are not modified")
}

func TestCheckPrimaryShape(t *testing.T) {
	assert.NoError(t, checkPrimaryShape(`{"sender": null, "recipients": [{"name": "A"}], "locations": [{"location_name": "X", "latitude": 1.5}]}`))
	assert.Error(t, checkPrimaryShape(`{"recipients": "A"}`))
	assert.Error(t, checkPrimaryShape(`{"entities": [{"context": "no value"}]}`))
}
