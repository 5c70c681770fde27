package listing

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id, name, email string
	date            time.Time
}

func (r row) RecordID() string      { return r.id }
func (r row) RecordName() string    { return r.name }
func (r row) RecordEmail() string   { return r.email }
func (r row) RecordDate() time.Time { return r.date }

func day(d int) time.Time { return time.Date(2021, 2, d, 0, 0, 0, 0, time.UTC) }

func seedRows() []row {
	return []row{
		{id: "90909", name: "tshego", email: "tshego@example.com", date: day(3)},
		{id: "90909", name: "Misper", email: "misper@example.com", date: day(1)},
		{id: "77777", name: "nadio", email: "nadio@example.com", date: day(4)},
	}
}

func ids(items []row) []string {
	out := make([]string, 0, len(items))
	for _, r := range items {
		out = append(out, r.id+"/"+r.name)
	}
	return out
}

func TestEngine_Query_DefaultSortByName(t *testing.T) {
	engine := NewEngine[row](3)

	page := engine.Query(seedRows(), Request{})

	assert.Equal(t, []string{"90909/Misper", "77777/nadio", "90909/tshego"}, ids(page.Items))
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.PageIndex)
	assert.False(t, page.HasPrevious)
	assert.False(t, page.HasNext)
}

func TestEngine_Query_Sorts(t *testing.T) {
	tests := []struct {
		name     string
		sort     SortKey
		expected []string
	}{
		{"id desc mantiene el orden relativo de ids iguales", SortByIDDesc, []string{"90909/tshego", "90909/Misper", "77777/nadio"}},
		{"name desc", SortByNameDesc, []string{"90909/tshego", "77777/nadio", "90909/Misper"}},
		{"date asc", SortByDateAsc, []string{"90909/Misper", "90909/tshego", "77777/nadio"}},
		{"date desc", SortByDateDesc, []string{"77777/nadio", "90909/tshego", "90909/Misper"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewEngine[row](3).Query(seedRows(), Request{Sort: tt.sort})
			assert.Equal(t, tt.expected, ids(page.Items))
		})
	}
}

func TestEngine_Query_FilterIsCaseSensitive(t *testing.T) {
	engine := NewEngine[row](3)

	hit := engine.Query(seedRows(), Request{Search: "Mis"})
	miss := engine.Query(seedRows(), Request{Search: "mis"})
	byEmail := engine.Query(seedRows(), Request{Search: "misper@"})
	byID := engine.Query(seedRows(), Request{Search: "777"})

	assert.Equal(t, []string{"90909/Misper"}, ids(hit.Items))
	// "mis" no aparece en ningún nombre, pero sí en el email de Misper.
	assert.Equal(t, []string{"90909/Misper"}, ids(miss.Items))
	assert.Equal(t, []string{"90909/Misper"}, ids(byEmail.Items))
	assert.Equal(t, []string{"77777/nadio"}, ids(byID.Items))

	none := engine.Query(seedRows(), Request{Search: "TSHEGO"})
	assert.Empty(t, none.Items)
	assert.Equal(t, 0, none.TotalPages)
}

func TestEngine_Query_Pagination(t *testing.T) {
	var all []row
	for i := 1; i <= 7; i++ {
		all = append(all, row{id: fmt.Sprintf("id%02d", i), name: fmt.Sprintf("name%02d", i), email: "x@y.z", date: day(i)})
	}
	engine := NewEngine[row](3)

	tests := []struct {
		name      string
		page      int
		wantIndex int
		wantLen   int
		wantPrev  bool
		wantNext  bool
	}{
		{"página cero se trata como la primera", 0, 1, 3, false, true},
		{"página negativa", -4, 1, 3, false, true},
		{"página intermedia", 2, 2, 3, true, true},
		{"última página parcial", 3, 3, 1, true, false},
		{"fuera de rango se ajusta a la última", 99, 3, 1, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := engine.Query(all, Request{Page: tt.page})
			assert.Equal(t, tt.wantIndex, page.PageIndex)
			assert.Len(t, page.Items, tt.wantLen)
			assert.Equal(t, 7, page.TotalCount)
			assert.Equal(t, 3, page.TotalPages)
			assert.Equal(t, tt.wantPrev, page.HasPrevious)
			assert.Equal(t, tt.wantNext, page.HasNext)
		})
	}
}

func TestEngine_Query_EmptyInput(t *testing.T) {
	page := NewEngine[row](3).Query(nil, Request{Page: 5})

	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalCount)
	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, 1, page.PageIndex)
	assert.False(t, page.HasPrevious)
	assert.False(t, page.HasNext)
}

func TestEngine_Query_DoesNotMutateInput(t *testing.T) {
	all := seedRows()
	before := ids(all)

	_ = NewEngine[row](2).Query(all, Request{Sort: SortByDateDesc, Page: 2})

	assert.Equal(t, before, ids(all))
}

func TestEngine_Query_CultureAwareNameOrder(t *testing.T) {
	all := []row{
		{id: "1", name: "bob"},
		{id: "2", name: "Alice"},
		{id: "3", name: "alan"},
	}

	page := NewEngine[row](10).Query(all, Request{})

	assert.Equal(t, []string{"3/alan", "2/Alice", "1/bob"}, ids(page.Items))
}

func TestEngine_Query_HugePageSize(t *testing.T) {
	page := NewEngine[row](math.MaxInt).Query(seedRows(), Request{})

	assert.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.PageIndex)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)
}

func TestEngine_DefaultPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, NewEngine[row](0).PageSize())
	assert.Equal(t, DefaultPageSize, Engine[row]{}.PageSize())
}

func TestEngine_Query_ConcurrentCallsAreDeterministic(t *testing.T) {
	engine := NewEngine[row](2)
	all := seedRows()
	want := engine.Query(all, Request{Sort: SortByNameDesc, Page: 1})

	var wg sync.WaitGroup
	results := make([]Page[row], 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.Query(all, Request{Sort: SortByNameDesc, Page: 1})
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, ids(want.Items), ids(got.Items))
		require.Equal(t, want.TotalPages, got.TotalPages)
	}
}
