package extraction

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/agenthands/scrivener/internal/core/model"
)

// The decoders below read LLM output leniently: wrong-typed fields are
// ignored instead of failing the whole document.

func decodeRaw(doc gjson.Result) model.RawExtraction {
	out := model.RawExtraction{
		Artifact: model.ArtifactInfo{
			Subject:         str(doc.Get("artifact.subject")),
			SentDatetime:    str(doc.Get("artifact.sent_datetime")),
			ArtifactPurpose: str(doc.Get("artifact.artifact_purpose")),
		},
		Recipients: people(doc.Get("recipients")),
		Mentioned:  people(doc.Get("mentioned")),
		Entities:   entities(doc.Get("entities")),
		Locations:  locations(doc.Get("locations")),
	}
	if ref, ok := personRef(doc.Get("sender")); ok {
		out.Sender = &ref
	}
	return out
}

func decodeAdditional(doc gjson.Result) model.AdditionalExtraction {
	return model.AdditionalExtraction{
		AdditionalPeople:    people(doc.Get("additional_people")),
		AdditionalLocations: locations(doc.Get("additional_locations")),
		AdditionalEntities:  entities(doc.Get("additional_entities")),
	}
}

// personRef accepts a bare name or an object with a "name" field.
func personRef(v gjson.Result) (model.PersonReference, bool) {
	var ref model.PersonReference
	switch {
	case v.Type == gjson.String:
		ref.Name = v.String()
	case v.IsObject():
		ref.Name = str(v.Get("name"))
		ref.Email = optionalStr(v.Get("email"))
		ref.Confidence = number(v.Get("confidence"))
		ref.Note = str(v.Get("note"))
	default:
		return ref, false
	}
	ref.Name = strings.TrimSpace(ref.Name)
	return ref, ref.Name != ""
}

func people(v gjson.Result) []model.PersonReference {
	out := []model.PersonReference{}
	if !v.IsArray() {
		return out
	}
	v.ForEach(func(_, item gjson.Result) bool {
		if ref, ok := personRef(item); ok {
			out = append(out, ref)
		}
		return true
	})
	return out
}

func entities(v gjson.Result) []model.ExtractedEntity {
	out := []model.ExtractedEntity{}
	if !v.IsArray() {
		return out
	}
	v.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		out = append(out, model.ExtractedEntity{
			EntityType:  str(item.Get("entity_type")),
			EntityValue: str(item.Get("entity_value")),
			Context:     str(item.Get("context")),
			Confidence:  number(item.Get("confidence")),
		})
		return true
	})
	return out
}

func locations(v gjson.Result) []model.ExtractedLocation {
	out := []model.ExtractedLocation{}
	if !v.IsArray() {
		return out
	}
	v.ForEach(func(_, item gjson.Result) bool {
		switch {
		case item.Type == gjson.String:
			out = append(out, model.ExtractedLocation{LocationName: item.String()})
		case item.IsObject():
			out = append(out, model.ExtractedLocation{
				LocationName: str(item.Get("location_name")),
				Latitude:     number(item.Get("latitude")),
				Longitude:    number(item.Get("longitude")),
				Context:      str(item.Get("context")),
				Confidence:   number(item.Get("confidence")),
				Note:         str(item.Get("note")),
			})
		}
		return true
	})
	return out
}

// str returns strings and numbers as text; null, booleans and containers
// read as "".
func str(v gjson.Result) string {
	switch v.Type {
	case gjson.String, gjson.Number:
		return v.String()
	}
	return ""
}

func optionalStr(v gjson.Result) *string {
	s := strings.TrimSpace(str(v))
	if s == "" {
		return nil
	}
	return &s
}

// number accepts JSON numbers and numeric strings.
func number(v gjson.Result) *float64 {
	switch v.Type {
	case gjson.Number:
		f := v.Float()
		return &f
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}
