package model

// PersonReference is the normalized form of any person mention coming out of an
// extraction pass. Mentions arrive either as bare strings or as objects with a
// "name" field; both collapse into this shape at the decode boundary.
type PersonReference struct {
	Name       string   `json:"name"`
	Email      *string  `json:"email"`
	Confidence *float64 `json:"confidence,omitempty"`
	Note       string   `json:"note,omitempty"`
}

type ArtifactInfo struct {
	Subject         string `json:"subject,omitempty"`
	SentDatetime    string `json:"sent_datetime,omitempty"`
	ArtifactPurpose string `json:"artifact_purpose,omitempty"`
}

type ExtractedEntity struct {
	EntityType  string   `json:"entity_type"`
	EntityValue string   `json:"entity_value"`
	Context     string   `json:"context,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

type ExtractedLocation struct {
	LocationName string   `json:"location_name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Context      string   `json:"context,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Note         string   `json:"note,omitempty"`
}

// RawExtraction is the result of the primary structured parse.
type RawExtraction struct {
	Artifact   ArtifactInfo        `json:"artifact"`
	Sender     *PersonReference    `json:"sender"`
	Recipients []PersonReference   `json:"recipients"`
	Mentioned  []PersonReference   `json:"mentioned"`
	Entities   []ExtractedEntity   `json:"entities"`
	Locations  []ExtractedLocation `json:"locations"`
}

// AdditionalExtraction is the result of the supplementary sweep. It has the
// shape of RawExtraction minus sender, recipients and artifact metadata.
type AdditionalExtraction struct {
	AdditionalPeople    []PersonReference   `json:"additional_people"`
	AdditionalLocations []ExtractedLocation `json:"additional_locations"`
	AdditionalEntities  []ExtractedEntity   `json:"additional_entities"`
}

// EmptyAdditionalExtraction is substituted when the supplementary pass fails.
func EmptyAdditionalExtraction() AdditionalExtraction {
	return AdditionalExtraction{
		AdditionalPeople:    []PersonReference{},
		AdditionalLocations: []ExtractedLocation{},
		AdditionalEntities:  []ExtractedEntity{},
	}
}

// TaggerResult is what the local linguistic tagger finds in a text.
type TaggerResult struct {
	People        []string `json:"people"`
	Places        []string `json:"places"`
	Organizations []string `json:"organizations"`
}

type ArtifactSummary struct {
	Summary string `json:"summary"`
}
