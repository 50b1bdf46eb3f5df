package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agenthands/scrivener/internal/core/model"
)

// ContentType is the MIME type of the workbook bytes.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type table struct {
	sheet   string
	headers []string
	rows    [][]any
}

// Workbook renders the canonical schema as an XLSX workbook with one sheet
// per table. Null values are left as empty cells.
func Workbook(schema model.CanonicalSchema, annotations []model.PersonAnnotation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	tables := tablesFor(schema, annotations)
	for i, t := range tables {
		if _, err := f.NewSheet(t.sheet); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", t.sheet, err)
		}
		if err := writeTable(f, t); err != nil {
			return nil, err
		}
		if i == 0 {
			index, _ := f.GetSheetIndex(t.sheet)
			f.SetActiveSheet(index)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, t table) error {
	write := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(t.sheet, cell, v)
	}
	for i, h := range t.headers {
		if err := write(i+1, 1, h); err != nil {
			return fmt.Errorf("write %s header: %w", t.sheet, err)
		}
	}
	for r, row := range t.rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			if err := write(c+1, r+2, v); err != nil {
				return fmt.Errorf("write %s row %d: %w", t.sheet, r+1, err)
			}
		}
	}
	return nil
}

func tablesFor(s model.CanonicalSchema, annotations []model.PersonAnnotation) []table {
	artifacts := table{sheet: "Artifacts", headers: []string{
		"artifact_id", "subject", "transcription", "sent_datetime", "artifact_purpose",
		"thread_id", "in_reply_to", "source_filename", "collection_id",
		"extracted_datetime", "auto_summary", "manual_summary", "tags",
	}}
	for _, a := range s.Artifacts {
		artifacts.rows = append(artifacts.rows, []any{
			a.ArtifactID, a.Subject, a.Transcription, a.SentDatetime, a.ArtifactPurpose,
			str(a.ThreadID), str(a.InReplyTo), str(a.SourceFilename), a.CollectionID,
			a.ExtractedDatetime, str(a.AutoSummary), str(a.ManualSummary), strings.Join(a.Tags, ", "),
		})
	}

	people := table{sheet: "People", headers: []string{"person_id", "full_name", "email_address"}}
	for _, p := range s.People {
		people.rows = append(people.rows, []any{p.PersonID, p.FullName, str(p.EmailAddress)})
	}

	participants := table{sheet: "Participants", headers: []string{"artifact_id", "person_id", "role"}}
	for _, p := range s.ArtifactParticipants {
		participants.rows = append(participants.rows, []any{p.ArtifactID, p.PersonID, string(p.Role)})
	}

	entities := table{sheet: "Entities", headers: []string{"entity_id", "entity_type", "entity_value"}}
	for _, e := range s.Entities {
		entities.rows = append(entities.rows, []any{e.EntityID, e.EntityType, e.EntityValue})
	}

	artifactEntities := table{sheet: "ArtifactEntities", headers: []string{"artifact_id", "entity_id", "context"}}
	for _, e := range s.ArtifactEntities {
		artifactEntities.rows = append(artifactEntities.rows, []any{e.ArtifactID, e.EntityID, str(e.Context)})
	}

	locations := table{sheet: "Locations", headers: []string{"location_id", "location_name", "latitude", "longitude"}}
	for _, l := range s.Locations {
		locations.rows = append(locations.rows, []any{l.LocationID, l.LocationName, num(l.Latitude), num(l.Longitude)})
	}

	artifactLocations := table{sheet: "ArtifactLocations", headers: []string{"artifact_id", "location_id", "context"}}
	for _, l := range s.ArtifactLocations {
		artifactLocations.rows = append(artifactLocations.rows, []any{l.ArtifactID, l.LocationID, str(l.Context)})
	}

	personAnnotations := table{sheet: "PersonAnnotations", headers: []string{"person_id", "vertices"}}
	for _, a := range annotations {
		personAnnotations.rows = append(personAnnotations.rows, []any{a.PersonID, formatVertices(a.Vertices)})
	}

	return []table{artifacts, people, participants, entities, artifactEntities, locations, artifactLocations, personAnnotations}
}

// formatVertices renders a polygon as "x,y;x,y;...".
func formatVertices(vs []model.Vertex) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(v.X, 10) + "," + strconv.FormatInt(v.Y, 10)
	}
	return strings.Join(parts, ";")
}

func str(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func num(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
