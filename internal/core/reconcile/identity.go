package reconcile

import (
	"strings"

	"github.com/agenthands/scrivener/internal/core/model"
)

type personEntry struct {
	person *model.Person
	// ambiguous marks a record created from a single-token name that matched
	// the first name of more than one existing person.
	ambiguous bool
}

// PeopleTable is the identity-resolution table for one reconciliation run.
// Records keep insertion order; ids are assigned sequentially from 1.
type PeopleTable struct {
	entries []*personEntry
	byKey   map[string]*personEntry
}

func NewPeopleTable() *PeopleTable {
	return &PeopleTable{byKey: make(map[string]*personEntry)}
}

// IdentityKey is the case-insensitive trimmed form of a name.
func IdentityKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func isSingleToken(name string) bool {
	return len(strings.Fields(name)) == 1
}

func firstToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// firstNameMatches returns every record whose first token equals token.
func (t *PeopleTable) firstNameMatches(token string) []*personEntry {
	var out []*personEntry
	for _, e := range t.entries {
		if firstToken(e.person.FullName) == token {
			out = append(out, e)
		}
	}
	return out
}

// Add resolves ref against the table, creating a record when no existing one
// matches. It returns nil for references without a usable name.
func (t *PeopleTable) Add(ref model.PersonReference) *model.Person {
	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return nil
	}
	key := IdentityKey(name)
	email := normalizeEmail(ref.Email)

	if e, ok := t.byKey[key]; ok {
		mergeEmail(e.person, email)
		return e.person
	}

	ambiguous := false
	if isSingleToken(name) {
		matches := t.firstNameMatches(key)
		if len(matches) == 1 {
			mergeEmail(matches[0].person, email)
			return matches[0].person
		}
		ambiguous = len(matches) > 1
	}

	p := &model.Person{
		PersonID:     len(t.entries) + 1,
		FullName:     name,
		EmailAddress: email,
	}
	e := &personEntry{person: p, ambiguous: ambiguous}
	t.entries = append(t.entries, e)
	t.byKey[key] = e
	return p
}

// Lookup finds the record a reference resolves to without modifying the
// table. With allowPartial a single-token name that is not a key of its own
// resolves to the unique person sharing that first name, and records created
// from an ambiguous partial name do not resolve at all.
func (t *PeopleTable) Lookup(name string, allowPartial bool) (*model.Person, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	key := IdentityKey(name)
	if e, ok := t.byKey[key]; ok {
		if allowPartial && e.ambiguous {
			return nil, false
		}
		return e.person, true
	}
	if !allowPartial || !isSingleToken(name) {
		return nil, false
	}
	matches := t.firstNameMatches(key)
	if len(matches) != 1 || matches[0].ambiguous {
		return nil, false
	}
	return matches[0].person, true
}

func (t *PeopleTable) size() int {
	return len(t.entries)
}

// People returns copies of the records in id order.
func (t *PeopleTable) People() []model.Person {
	out := make([]model.Person, 0, len(t.entries))
	for _, e := range t.entries {
		p := *e.person
		if p.EmailAddress != nil {
			email := *p.EmailAddress
			p.EmailAddress = &email
		}
		out = append(out, p)
	}
	return out
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	s := strings.TrimSpace(*email)
	if s == "" {
		return nil
	}
	return &s
}

// mergeEmail fills a missing address; a known one is never replaced.
func mergeEmail(p *model.Person, email *string) {
	if p.EmailAddress == nil && email != nil {
		p.EmailAddress = email
	}
}
