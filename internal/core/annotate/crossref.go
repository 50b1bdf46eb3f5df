package annotate

import (
	"strings"

	"github.com/agenthands/scrivener/internal/core/model"
)

// CrossReference assigns OCR bounding polygons to reconciled people. The first
// annotation is the full-page text and is skipped. Each remaining annotation
// goes to the first person whose lowercase full name contains its lowercase
// text; a person keeps the first polygon assigned to it. Results are in the
// order matches were discovered.
func CrossReference(people []model.Person, annotations []model.Annotation) []model.PersonAnnotation {
	out := []model.PersonAnnotation{}
	if len(annotations) < 2 || len(people) == 0 {
		return out
	}

	names := make([]string, len(people))
	for i, p := range people {
		names[i] = strings.ToLower(strings.TrimSpace(p.FullName))
	}

	assigned := make(map[int]bool, len(people))
	for _, a := range annotations[1:] {
		text := strings.ToLower(strings.TrimSpace(a.Text))
		idx := firstContaining(names, text)
		if idx < 0 {
			continue
		}
		id := people[idx].PersonID
		if assigned[id] {
			continue
		}
		assigned[id] = true
		out = append(out, model.PersonAnnotation{
			PersonID: id,
			Vertices: append([]model.Vertex{}, a.Vertices...),
		})
	}
	return out
}

func firstContaining(names []string, text string) int {
	for i, n := range names {
		if strings.Contains(n, text) {
			return i
		}
	}
	return -1
}
