package listing

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Engine filtra, ordena y pagina un conjunto de registros en memoria.
// No guarda estado mutable, así que una misma instancia puede usarse
// desde varias goroutines.
type Engine[T Record] struct {
	pageSize int
	lang     language.Tag
}

// NewEngine crea un motor con el tamaño de página dado. Valores <= 0 usan DefaultPageSize.
func NewEngine[T Record](pageSize int) Engine[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Engine[T]{pageSize: pageSize, lang: language.English}
}

// PageSize devuelve el tamaño de página efectivo.
func (e Engine[T]) PageSize() int {
	if e.pageSize <= 0 {
		return DefaultPageSize
	}
	return e.pageSize
}

// Query ejecuta filtro -> orden estable -> paginación sobre all.
// all no se modifica.
func (e Engine[T]) Query(all []T, req Request) Page[T] {
	size := e.PageSize()

	filtered := Filter(all, req.Search)
	e.sortRecords(filtered, req.Sort)

	total := len(filtered)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = max(totalPages, 1)
	}

	start := (page - 1) * size
	end := min(start+size, total)
	items := make([]T, 0, end-start)
	items = append(items, filtered[start:end]...)

	return Page[T]{
		Items:       items,
		TotalCount:  total,
		TotalPages:  totalPages,
		PageIndex:   page,
		PageSize:    size,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
	}
}

// Filter devuelve una copia con los registros cuyo id, nombre o email contienen
// search (sensible a mayúsculas). search vacío no filtra nada.
func Filter[T Record](all []T, search string) []T {
	out := make([]T, 0, len(all))
	for _, r := range all {
		if search == "" ||
			strings.Contains(r.RecordID(), search) ||
			strings.Contains(r.RecordName(), search) ||
			strings.Contains(r.RecordEmail(), search) {
			out = append(out, r)
		}
	}
	return out
}

func (e Engine[T]) sortRecords(list []T, key SortKey) {
	// collate.Collator no es seguro para uso concurrente: uno por llamada.
	col := collate.New(e.lang)

	var less func(a, b T) bool
	switch key {
	case SortByIDDesc:
		less = func(a, b T) bool { return col.CompareString(a.RecordID(), b.RecordID()) > 0 }
	case SortByNameDesc:
		less = func(a, b T) bool { return col.CompareString(a.RecordName(), b.RecordName()) > 0 }
	case SortByDateAsc:
		less = func(a, b T) bool { return a.RecordDate().Before(b.RecordDate()) }
	case SortByDateDesc:
		less = func(a, b T) bool { return a.RecordDate().After(b.RecordDate()) }
	default:
		less = func(a, b T) bool { return col.CompareString(a.RecordName(), b.RecordName()) < 0 }
	}

	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}
