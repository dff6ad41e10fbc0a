package catalog_test

import (
	"bytes"
	"testing"

	"heroes/internal/catalog"
	"heroes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func roster() []models.Character {
	return []models.Character{
		{ID: "1", Name: "Batman", RealName: "Bruce Wayne", Status: models.StatusActive, Alignment: models.AlignmentHero, Affiliation: "Justice League", Universe: "Earth-1"},
		{ID: "2", Name: "Batwoman", RealName: "Kate Kane", Status: models.StatusDead, Alignment: models.AlignmentHero, Universe: "Earth-1"},
		{ID: "3", Name: "Joker", RealName: "", Status: models.StatusActive, Alignment: models.AlignmentVillain},
		{ID: "4", Name: "Red Hood", RealName: "Jason Todd (BATfamily)", Status: models.StatusDead, Alignment: models.AlignmentAntihero, Affiliation: "Outlaws"},
		{ID: "5", Name: "Phantom Stranger", Status: models.StatusInactive, Alignment: models.AlignmentNeutral, Affiliation: "Justice League", Universe: "Earth-2"},
	}
}

func ids(records []models.Character) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestFilter_TextMatchesNameOrRealNameCaseInsensitive(t *testing.T) {
	got := catalog.Filter(roster(), catalog.Criteria{Text: "bat"})

	assert.Equal(t, []string{"1", "2", "4"}, ids(got))
}

func TestFilter_TextIsSubstringNotTokenised(t *testing.T) {
	got := catalog.Filter(roster(), catalog.Criteria{Text: "ce wa"})

	assert.Equal(t, []string{"1"}, ids(got))
}

func TestFilter_EmptyCriteriaReturnsEverythingInOrder(t *testing.T) {
	in := roster()
	got := catalog.Filter(in, catalog.Criteria{Text: "   "})

	assert.Equal(t, ids(in), ids(got))
	assert.True(t, catalog.Criteria{Text: " "}.IsZero())
}

func TestFilter_StatusAndAlignmentExactMatch(t *testing.T) {
	assert.Equal(t, []string{"2", "4"}, ids(catalog.Filter(roster(), catalog.Criteria{Status: models.StatusDead})))
	assert.Equal(t, []string{"3"}, ids(catalog.Filter(roster(), catalog.Criteria{Alignment: models.AlignmentVillain})))
	assert.Empty(t, catalog.Filter(roster(), catalog.Criteria{Status: "dead"}))
}

func TestFilter_ComposesWithAnd(t *testing.T) {
	records := roster()
	byStatus := catalog.Filter(records, catalog.Criteria{Status: models.StatusDead})
	byText := catalog.Filter(records, catalog.Criteria{Text: "bat"})
	combined := catalog.Filter(records, catalog.Criteria{Text: "bat", Status: models.StatusDead})

	var intersection []string
	inText := map[string]bool{}
	for _, r := range byText {
		inText[r.ID] = true
	}
	for _, r := range byStatus {
		if inText[r.ID] {
			intersection = append(intersection, r.ID)
		}
	}

	assert.Equal(t, intersection, ids(combined))
	assert.Equal(t, []string{"2", "4"}, ids(combined))

	all := catalog.Filter(records, catalog.Criteria{Text: "bat", Status: models.StatusDead, Alignment: models.AlignmentAntihero})
	assert.Equal(t, []string{"4"}, ids(all))
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	in := roster()
	got := catalog.Filter(in, catalog.Criteria{})
	got[0].Name = "changed"

	assert.Equal(t, "Batman", in[0].Name)
}

func TestAggregate_StatusTallies(t *testing.T) {
	records := []models.Character{
		{Status: models.StatusActive},
		{Status: models.StatusActive},
		{Status: models.StatusDead},
		{Status: models.StatusInactive},
		{Status: models.StatusDead},
	}

	st := catalog.Aggregate(records)

	assert.Equal(t, 5, st.Total)
	assert.Equal(t, 2, st.Active)
	assert.Equal(t, 1, st.Inactive)
	assert.Equal(t, 2, st.Dead)
	assert.Equal(t, 2, st.ByStatus(models.StatusDead))
}

func TestAggregate_GroupsSkipEmptyValues(t *testing.T) {
	st := catalog.Aggregate(roster())

	assert.Equal(t, 5, st.Total)
	assert.Equal(t, map[string]int{"Justice League": 2, "Outlaws": 1}, st.Affiliations)
	assert.Equal(t, map[string]int{"Earth-1": 2, "Earth-2": 1}, st.Universes)
}

func TestAggregate_UnknownStatusOnlyCountsTowardsTotal(t *testing.T) {
	st := catalog.Aggregate([]models.Character{{Status: "MISSING"}, {Status: models.StatusActive}})

	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.Active+st.Inactive+st.Dead)
	assert.Equal(t, 0, st.ByStatus("MISSING"))
}

func TestAggregate_Empty(t *testing.T) {
	st := catalog.Aggregate(nil)

	assert.Equal(t, 0, st.Total)
	assert.NotNil(t, st.Affiliations)
	assert.NotNil(t, st.Universes)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, catalog.WriteXLSX(&buf, roster()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Characters")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Name", rows[0][1])
	assert.Equal(t, "Batman", rows[1][1])
	assert.Equal(t, "DEAD", rows[2][8])
}
