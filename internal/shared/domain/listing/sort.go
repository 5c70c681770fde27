package listing

import "strings"

// SortKey es el conjunto cerrado de ordenaciones soportadas.
type SortKey int

const (
	SortByName SortKey = iota // por defecto
	SortByIDDesc
	SortByNameDesc
	SortByDateAsc
	SortByDateDesc
)

// Claves tal y como viajan en la query string.
const (
	KeyNameAsc  = ""
	KeyIDDesc   = "id_desc"
	KeyNameDesc = "name_desc"
	KeyDateAsc  = "Date"
	KeyDateDesc = "date_desc"
)

// ParseSortKey traduce la clave recibida. Cualquier valor desconocido cae en SortByName.
func ParseSortKey(raw string) SortKey {
	switch strings.TrimSpace(raw) {
	case KeyIDDesc, "number_desc":
		return SortByIDDesc
	case KeyNameDesc:
		return SortByNameDesc
	case KeyDateAsc, "date", "date_asc":
		return SortByDateAsc
	case KeyDateDesc:
		return SortByDateDesc
	default:
		return SortByName
	}
}

// String devuelve la clave canónica de la ordenación.
func (k SortKey) String() string {
	switch k {
	case SortByIDDesc:
		return KeyIDDesc
	case SortByNameDesc:
		return KeyNameDesc
	case SortByDateAsc:
		return KeyDateAsc
	case SortByDateDesc:
		return KeyDateDesc
	default:
		return KeyNameAsc
	}
}

// Toggles son las claves que la capa de presentación usa en las cabeceras
// de columna: al pulsar una columna se alterna su dirección.
type Toggles struct {
	IDSort   string `json:"id_sort"`
	NameSort string `json:"name_sort"`
	DateSort string `json:"date_sort"`
}

// TogglesFor calcula las claves de alternancia a partir de la ordenación actual.
func TogglesFor(k SortKey) Toggles {
	t := Toggles{DateSort: KeyDateAsc}
	if k == SortByName {
		t.IDSort = KeyIDDesc
		t.NameSort = KeyNameDesc
	}
	if k == SortByDateAsc {
		t.DateSort = KeyDateDesc
	}
	return t
}
