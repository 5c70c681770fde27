package sqlstore

import (
	"fmt"
	"strings"

	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
)

// ApplyCriteria traduce criterios neutrales a una cláusula WHERE con '?'.
// allowed mapea el nombre de campo del dominio a la columna real; los campos
// no listados se rechazan para no interpolar texto arbitrario.
func ApplyCriteria(criteria sharedDomain.Criteria, allowed map[string]string) (string, []interface{}, error) {
	if criteria == nil {
		return "", nil, nil
	}

	if comp, ok := criteria.(sharedDomain.CompositeCriteria); ok {
		var parts []string
		var args []interface{}
		for _, child := range comp.Criterias {
			clause, childArgs, err := ApplyCriteria(child, allowed)
			if err != nil {
				return "", nil, err
			}
			if clause == "" {
				continue
			}
			parts = append(parts, clause)
			args = append(args, childArgs...)
		}
		if len(parts) == 0 {
			return "", nil, nil
		}
		op := " AND "
		if comp.Operator == sharedDomain.OpOr {
			op = " OR "
		}
		return "(" + strings.Join(parts, op) + ")", args, nil
	}

	conds := criteria.ToConditions()
	var clauses []string
	var args []interface{}
	for _, c := range conds {
		column, ok := allowed[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %q", c.Field)
		}
		op := c.Op
		if op == sharedDomain.OpILike {
			// ILIKE no existe en SQLite: normalizamos a LOWER() LIKE LOWER().
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", column))
		} else {
			clauses = append(clauses, fmt.Sprintf("%s %s ?", column, op))
		}
		args = append(args, c.Value)
	}
	if len(clauses) == 0 {
		return "", nil, nil
	}
	return strings.Join(clauses, " AND "), args, nil
}
