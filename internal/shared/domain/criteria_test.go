package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	record := map[string]interface{}{
		"id":    "77777",
		"name":  "nadio",
		"email": "nadio@example.com",
		"date":  time.Date(2021, 2, 4, 0, 0, 0, 0, time.UTC),
	}
	value := func(field string) interface{} { return record[field] }

	tests := []struct {
		name     string
		criteria Criteria
		want     bool
	}{
		{"nil coincide con todo", nil, true},
		{"igualdad", FieldEquals{Field: "id", Value: "77777"}, true},
		{"igualdad fallida", FieldEquals{Field: "id", Value: "90909"}, false},
		{"like sensible a mayúsculas", FieldContains{Field: "name", Text: "Nad"}, false},
		{"or con una coincidencia", Or(FieldContains{Field: "name", Text: "zzz"}, FieldContains{Field: "email", Text: "nadio@"}), true},
		{"and con un fallo", And(FieldEquals{Field: "id", Value: "77777"}, FieldEquals{Field: "name", Value: "x"}), false},
		{"rango de fechas", rawCriterion(Criterion{Field: "date", Op: OpGte, Value: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.criteria, value))
		})
	}
}

// rawCriterion adapta una condición suelta a Criteria para el test.
type rawCriterion Criterion

func (c rawCriterion) ToConditions() []Criterion { return []Criterion{Criterion(c)} }
