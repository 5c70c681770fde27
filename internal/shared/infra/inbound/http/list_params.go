package http

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/rosterlab/internal/shared/domain/listing"
)

// Parámetros de query de los listados.
const (
	ParamSearch        = "search"
	ParamCurrentFilter = "current_filter"
	ParamSort          = "sort"
	ParamPage          = "page"
)

// ListParams es lo que el handler extrae de la query string.
type ListParams struct {
	Request       listing.Request
	CurrentFilter string
}

// ParseListParams aplica las reglas de navegación del listado: una búsqueda
// nueva vuelve a la página 1; sin búsqueda nueva se conserva current_filter.
func ParseListParams(c *gin.Context) ListParams {
	page, err := strconv.Atoi(c.Query(ParamPage))
	if err != nil {
		page = 0
	}

	search, searched := c.GetQuery(ParamSearch)
	if searched && search != "" {
		page = 1
	} else {
		search = c.Query(ParamCurrentFilter)
	}

	return ListParams{
		Request: listing.Request{
			Search: search,
			Sort:   listing.ParseSortKey(c.Query(ParamSort)),
			Page:   page,
		},
		CurrentFilter: search,
	}
}

// ListResponse es la forma JSON de una página más lo que la presentación
// necesita para pintar cabeceras y enlaces.
type ListResponse[T listing.Record] struct {
	listing.Page[T]
	CurrentSort   string          `json:"current_sort"`
	CurrentFilter string          `json:"current_filter"`
	Toggles       listing.Toggles `json:"sort_toggles"`
	Links         PageLinks       `json:"links"`
}

// PageLinks son las query strings de página anterior y siguiente.
type PageLinks struct {
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
}

// NewListResponse arma la respuesta a partir de la página calculada.
func NewListResponse[T listing.Record](page listing.Page[T], params ListParams) ListResponse[T] {
	resp := ListResponse[T]{
		Page:          page,
		CurrentSort:   params.Request.Sort.String(),
		CurrentFilter: params.CurrentFilter,
		Toggles:       listing.TogglesFor(params.Request.Sort),
	}
	if page.HasPrevious {
		resp.Links.Previous = pageQuery(params, page.PageIndex-1)
	}
	if page.HasNext {
		resp.Links.Next = pageQuery(params, page.PageIndex+1)
	}
	return resp
}

func pageQuery(params ListParams, page int) string {
	var parts []string
	if s := params.Request.Sort.String(); s != "" {
		parts = append(parts, ParamSort+"="+s)
	}
	if params.CurrentFilter != "" {
		parts = append(parts, ParamCurrentFilter+"="+url.QueryEscape(params.CurrentFilter))
	}
	parts = append(parts, ParamPage+"="+strconv.Itoa(page))
	return "?" + strings.Join(parts, "&")
}
