package domain

import (
	"fmt"
	"strings"
	"time"
)

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq    Operator = "="
	OpGt    Operator = ">"
	OpGte   Operator = ">="
	OpLt    Operator = "<"
	OpLte   Operator = "<="
	OpLike  Operator = "LIKE"
	OpILike Operator = "ILIKE"
)

type LogicalOperator string

const (
	OpAnd LogicalOperator = "AND"
	OpOr  LogicalOperator = "OR"
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales.
// Las condiciones de un mismo Criteria se combinan con AND.
type Criteria interface {
	ToConditions() []Criterion
}

// ---------------- Composite Criteria ----------------

// CompositeCriteria combina criterios con AND u OR. Los adaptadores
// recorren Criterias para respetar el operador; ToConditions aplana
// y sólo es correcto para AND.
type CompositeCriteria struct {
	Operator  LogicalOperator
	Criterias []Criteria
}

func (c CompositeCriteria) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c.Criterias {
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// And crea un CompositeCriteria con operador AND
func And(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpAnd, Criterias: criterias}
}

// Or crea un CompositeCriteria con operador OR
func Or(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpOr, Criterias: criterias}
}

// ---------------- Criterios genéricos ----------------

// FieldEquals filtra por igualdad exacta en un campo.
type FieldEquals struct {
	Field string
	Value interface{}
}

func (c FieldEquals) ToConditions() []Criterion {
	return []Criterion{{Field: c.Field, Op: OpEq, Value: c.Value}}
}

// FieldContains filtra por subcadena (LIKE %v%) en un campo.
type FieldContains struct {
	Field string
	Text  string
}

func (c FieldContains) ToConditions() []Criterion {
	return []Criterion{{Field: c.Field, Op: OpLike, Value: "%" + c.Text + "%"}}
}

// ---------------- Evaluación en memoria ----------------

// Matches evalúa criteria contra un registro en memoria. value devuelve el
// valor del campo pedido. Criteria nil coincide con todo.
func Matches(criteria Criteria, value func(field string) interface{}) bool {
	if criteria == nil {
		return true
	}
	if comp, ok := criteria.(CompositeCriteria); ok {
		if len(comp.Criterias) == 0 {
			return true
		}
		for _, child := range comp.Criterias {
			hit := Matches(child, value)
			if comp.Operator == OpOr && hit {
				return true
			}
			if comp.Operator != OpOr && !hit {
				return false
			}
		}
		return comp.Operator != OpOr
	}
	for _, cond := range criteria.ToConditions() {
		if !matchCriterion(cond, value(cond.Field)) {
			return false
		}
	}
	return true
}

func matchCriterion(c Criterion, got interface{}) bool {
	switch c.Op {
	case OpLike, OpILike:
		pattern := strings.Trim(fmt.Sprint(c.Value), "%")
		text := fmt.Sprint(got)
		if c.Op == OpILike {
			return strings.Contains(strings.ToLower(text), strings.ToLower(pattern))
		}
		return strings.Contains(text, pattern)
	}

	if gt, ok := got.(time.Time); ok {
		want, ok := c.Value.(time.Time)
		if !ok {
			return false
		}
		switch c.Op {
		case OpGt:
			return gt.After(want)
		case OpGte:
			return !gt.Before(want)
		case OpLt:
			return gt.Before(want)
		case OpLte:
			return !gt.After(want)
		default:
			return gt.Equal(want)
		}
	}

	return c.Op == OpEq && fmt.Sprint(got) == fmt.Sprint(c.Value)
}
