package reconcile

import (
	"strings"

	"github.com/agenthands/scrivener/internal/core/model"
)

// entityTable deduplicates entities on lowercase "type:value"; first seen wins.
type entityTable struct {
	items []model.Entity
	byKey map[string]int
}

func newEntityTable() *entityTable {
	return &entityTable{byKey: make(map[string]int)}
}

func entityKey(entityType, value string) string {
	return strings.ToLower(entityType + ":" + value)
}

func (t *entityTable) add(e model.ExtractedEntity) (model.Entity, bool) {
	value := strings.TrimSpace(e.EntityValue)
	if value == "" {
		return model.Entity{}, false
	}
	entityType := strings.TrimSpace(e.EntityType)
	if entityType == "" {
		entityType = model.DefaultEntityType
	}
	key := entityKey(entityType, value)
	if i, ok := t.byKey[key]; ok {
		return t.items[i], true
	}
	ent := model.Entity{
		EntityID:    len(t.items) + 1,
		EntityType:  entityType,
		EntityValue: value,
	}
	t.byKey[key] = len(t.items)
	t.items = append(t.items, ent)
	return ent, true
}

func (t *entityTable) list() []model.Entity {
	return append([]model.Entity{}, t.items...)
}

// locationTable deduplicates locations on the lowercase trimmed name.
type locationTable struct {
	items []model.Location
	byKey map[string]int
}

func newLocationTable() *locationTable {
	return &locationTable{byKey: make(map[string]int)}
}

func (t *locationTable) add(l model.ExtractedLocation) (model.Location, bool) {
	name := strings.TrimSpace(l.LocationName)
	if name == "" {
		return model.Location{}, false
	}
	key := strings.ToLower(name)
	if i, ok := t.byKey[key]; ok {
		return t.items[i], true
	}
	loc := model.Location{
		LocationID:   len(t.items) + 1,
		LocationName: name,
		Latitude:     copyFloat(l.Latitude),
		Longitude:    copyFloat(l.Longitude),
	}
	t.byKey[key] = len(t.items)
	t.items = append(t.items, loc)
	return loc, true
}

func (t *locationTable) list() []model.Location {
	return append([]model.Location{}, t.items...)
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
