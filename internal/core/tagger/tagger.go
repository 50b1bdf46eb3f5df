package tagger

import (
	"strings"

	"github.com/agenthands/scrivener/internal/core/model"
)

// Tagger finds candidate people, places and organizations in a text. It
// cannot fail; implementations report internal problems by returning an
// empty result.
type Tagger interface {
	Tag(text string) model.TaggerResult
}

// NopTagger is used when local tagging is disabled.
type NopTagger struct{}

func (NopTagger) Tag(string) model.TaggerResult {
	return emptyResult()
}

func emptyResult() model.TaggerResult {
	return model.TaggerResult{People: []string{}, Places: []string{}, Organizations: []string{}}
}

// span is one aggregated NER hit.
type span struct {
	Label string
	Word  string
}

// normalizeLabel removes B- and I- prefixes from NER labels
func normalizeLabel(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}

// groupSpans sorts hits into the three result lists. Words are trimmed,
// blanks dropped, and repeats within a list removed case-insensitively.
// MISC and unknown labels are ignored.
func groupSpans(spans []span) model.TaggerResult {
	out := emptyResult()
	seen := map[string]bool{}
	for _, s := range spans {
		word := strings.TrimSpace(s.Word)
		if word == "" {
			continue
		}
		var list *[]string
		switch normalizeLabel(strings.ToUpper(s.Label)) {
		case "PER":
			list = &out.People
		case "LOC":
			list = &out.Places
		case "ORG":
			list = &out.Organizations
		default:
			continue
		}
		key := normalizeLabel(strings.ToUpper(s.Label)) + ":" + strings.ToLower(word)
		if seen[key] {
			continue
		}
		seen[key] = true
		*list = append(*list, word)
	}
	return out
}
