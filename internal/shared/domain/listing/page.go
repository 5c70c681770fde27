package listing

// DefaultPageSize es el tamaño de página histórico de los listados.
const DefaultPageSize = 3

// Page es una ventana ordenada y filtrada sobre el conjunto completo.
type Page[T Record] struct {
	Items       []T  `json:"items"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	PageIndex   int  `json:"page_index"`
	PageSize    int  `json:"page_size"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// Request agrupa los parámetros de una consulta de listado.
type Request struct {
	Search string
	Sort   SortKey
	Page   int
}
