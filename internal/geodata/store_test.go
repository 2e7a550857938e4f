package geodata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreetName_Precedence(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string
	}{
		{"tiger base wins", map[string]string{"tiger:name_base": "Tryon", "name": "North Tryon Street", "ref": "NC 49"}, "Tryon"},
		{"name next", map[string]string{"name": "North Tryon Street", "ref": "NC 49"}, "North Tryon Street"},
		{"ref last", map[string]string{"ref": "NC 49"}, "NC 49"},
		{"empty tags", map[string]string{}, ""},
		{"empty values skipped", map[string]string{"tiger:name_base": "", "name": "Elm Avenue"}, "Elm Avenue"},
		{"nil tags", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Street{ID: 1, Tags: tt.tags}.Name())
		})
	}
}

func TestStore_MergeLastWriteWins(t *testing.T) {
	s := NewStore()

	s.MergeBuildings([]Building{{ID: 1, Lat: 35.0, Lng: -80.0, Tags: map[string]string{"building": "yes"}}})
	s.MergeBuildings([]Building{{ID: 1, Lat: 35.5, Lng: -80.5, Tags: map[string]string{"building": "house"}}})

	view := s.Buildings()
	assert.Len(t, view, 1)
	assert.Equal(t, 35.5, view[0].Lat)
	assert.Equal(t, "house", view[0].Tags["building"])

	// Full replacement, not field merge: tags absent from the new record are gone.
	s.MergeBuildings([]Building{{ID: 1, Lat: 35.5, Lng: -80.5}})
	view = s.Buildings()
	assert.Len(t, view, 1)
	assert.Empty(t, view[0].Tags)
}

func TestStore_ViewsFollowMerges(t *testing.T) {
	s := NewStore()

	s.MergeStreets([]Street{
		{ID: 20, Tags: map[string]string{"name": "Elm Avenue"}},
		{ID: 10, Tags: map[string]string{"name": "Main Street"}},
	})
	assert.Equal(t, []string{"Main Street", "Elm Avenue"}, s.StreetNames())

	// Duplicate names from distinct ids are retained.
	s.MergeStreets([]Street{{ID: 30, Tags: map[string]string{"name": "Main Street"}}})
	assert.Equal(t, []string{"Main Street", "Elm Avenue", "Main Street"}, s.StreetNames())

	// Re-merging the same id is idempotent.
	s.MergeStreets([]Street{{ID: 30, Tags: map[string]string{"name": "Main Street"}}})
	assert.Len(t, s.StreetNames(), 3)

	b, st := s.Counts()
	assert.Equal(t, 0, b)
	assert.Equal(t, 3, st)
}

func TestStore_BuildingViewOrderedByID(t *testing.T) {
	s := NewStore()
	s.MergeBuildings([]Building{{ID: 3}, {ID: 1}, {ID: 2}})

	view := s.Buildings()
	ids := []int64{view[0].ID, view[1].ID, view[2].ID}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestStore_EmptyViews(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.Buildings())
	assert.Empty(t, s.StreetNames())
}
