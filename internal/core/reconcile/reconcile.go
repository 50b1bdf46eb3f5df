package reconcile

import (
	"strings"
	"time"

	"github.com/agenthands/scrivener/internal/core/model"
)

// Input gathers every extraction pass for one document. Tagged is nil when the
// local tagger is disabled.
type Input struct {
	ArtifactID     int
	Transcription  string
	SourceFilename *string
	CollectionID   string
	ExtractedAt    time.Time
	AutoSummary    *string

	Primary    model.RawExtraction
	Additional model.AdditionalExtraction
	Tagged     *model.TaggerResult
}

// Reconcile merges the extraction passes into the canonical schema. It is a
// pure function of its input and never fails; missing values are replaced by
// defaults.
func Reconcile(in Input) model.CanonicalSchema {
	artifactID := in.ArtifactID
	if artifactID <= 0 {
		artifactID = model.DefaultArtifactID
	}

	people := NewPeopleTable()
	resolvePeople(people, in)

	entities := newEntityTable()
	locations := newLocationTable()

	out := model.CanonicalSchema{
		Artifacts:            []model.Artifact{buildArtifact(artifactID, in)},
		ArtifactParticipants: assignParticipants(artifactID, people, in),
		ArtifactEntities:     []model.ArtifactEntity{},
		ArtifactLocations:    []model.ArtifactLocation{},
	}

	for _, e := range entityPool(in) {
		if ent, ok := entities.add(e); ok {
			out.ArtifactEntities = append(out.ArtifactEntities, newArtifactEntity(artifactID, ent.EntityID, e.Context))
		}
	}
	for _, l := range locationPool(in) {
		if loc, ok := locations.add(l); ok {
			out.ArtifactLocations = append(out.ArtifactLocations, newArtifactLocation(artifactID, loc.LocationID, l.Context))
		}
	}

	out.People = people.People()
	out.Entities = entities.list()
	out.Locations = locations.list()
	return out
}

func buildArtifact(artifactID int, in Input) model.Artifact {
	collection := strings.TrimSpace(in.CollectionID)
	if collection == "" {
		collection = model.DefaultCollectionID
	}
	extractedAt := in.ExtractedAt
	if extractedAt.IsZero() {
		extractedAt = time.Unix(0, 0)
	}
	return model.Artifact{
		ArtifactID:        artifactID,
		Subject:           orUnknown(in.Primary.Artifact.Subject),
		Transcription:     in.Transcription,
		SentDatetime:      orUnknown(in.Primary.Artifact.SentDatetime),
		ArtifactPurpose:   orUnknown(in.Primary.Artifact.ArtifactPurpose),
		SourceFilename:    in.SourceFilename,
		CollectionID:      collection,
		ExtractedDatetime: extractedAt.UTC().Format(time.RFC3339),
		AutoSummary:       in.AutoSummary,
		Tags:              []string{},
	}
}

// resolvePeople feeds every person reference to the table. The order matters:
// full names from the header must be known before partial mentions from the
// body are resolved against them.
func resolvePeople(t *PeopleTable, in Input) {
	if in.Primary.Sender != nil {
		t.Add(*in.Primary.Sender)
	}
	for _, r := range in.Primary.Recipients {
		t.Add(r)
	}
	for _, m := range mentionPool(in) {
		t.Add(m)
	}
	if in.Tagged != nil {
		for _, name := range in.Tagged.People {
			t.Add(model.PersonReference{Name: name})
		}
	}
}

// mentionPool is the primary pass mentions followed by the supplementary
// pass people.
func mentionPool(in Input) []model.PersonReference {
	pool := make([]model.PersonReference, 0, len(in.Primary.Mentioned)+len(in.Additional.AdditionalPeople))
	pool = append(pool, in.Primary.Mentioned...)
	return append(pool, in.Additional.AdditionalPeople...)
}

func assignParticipants(artifactID int, t *PeopleTable, in Input) []model.ArtifactParticipant {
	out := []model.ArtifactParticipant{}
	emit := func(name string, role model.Role, allowPartial bool) {
		if p, ok := t.Lookup(name, allowPartial); ok {
			out = append(out, newParticipant(artifactID, p.PersonID, role))
		}
	}
	if in.Primary.Sender != nil {
		emit(in.Primary.Sender.Name, model.RoleSender, false)
	}
	for _, r := range in.Primary.Recipients {
		emit(r.Name, model.RoleRecipient, false)
	}
	for _, m := range mentionPool(in) {
		emit(m.Name, model.RoleMentioned, true)
	}
	return out
}

func entityPool(in Input) []model.ExtractedEntity {
	pool := make([]model.ExtractedEntity, 0, len(in.Primary.Entities)+len(in.Additional.AdditionalEntities))
	pool = append(pool, in.Primary.Entities...)
	pool = append(pool, in.Additional.AdditionalEntities...)
	if in.Tagged != nil {
		for _, org := range in.Tagged.Organizations {
			pool = append(pool, model.ExtractedEntity{EntityType: "Organization", EntityValue: org})
		}
	}
	return pool
}

func locationPool(in Input) []model.ExtractedLocation {
	pool := make([]model.ExtractedLocation, 0, len(in.Primary.Locations)+len(in.Additional.AdditionalLocations))
	pool = append(pool, in.Primary.Locations...)
	pool = append(pool, in.Additional.AdditionalLocations...)
	if in.Tagged != nil {
		for _, place := range in.Tagged.Places {
			pool = append(pool, model.ExtractedLocation{LocationName: place})
		}
	}
	return pool
}

func newParticipant(artifactID, personID int, role model.Role) model.ArtifactParticipant {
	return model.ArtifactParticipant{ArtifactID: artifactID, PersonID: personID, Role: role}
}

func newArtifactEntity(artifactID, entityID int, context string) model.ArtifactEntity {
	return model.ArtifactEntity{ArtifactID: artifactID, EntityID: entityID, Context: optional(context)}
}

func newArtifactLocation(artifactID, locationID int, context string) model.ArtifactLocation {
	return model.ArtifactLocation{ArtifactID: artifactID, LocationID: locationID, Context: optional(context)}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return model.Unknown
	}
	return s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
