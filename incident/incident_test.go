package incident_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/incident"
)

var d = calendar.MustParseDate

// =============================================================================
// TYPES
// =============================================================================

func TestTypeSet_Defaults(t *testing.T) {
	ts := incident.DefaultTypeSet()

	assert.Equal(t, []string{"FALTA", "RETARDO", "PERMISO", "INCAPACIDAD", "OTRO"}, ts.Configured())
	assert.Equal(t, "VACACIONES", ts.Options()[len(ts.Options())-1])
	assert.True(t, ts.Allows("vacaciones"), "vacation is always allowed")
	assert.True(t, ts.Allows(" falta "))
	assert.False(t, ts.Allows("HOME OFFICE"))
}

func TestParseTypes(t *testing.T) {
	ts, err := incident.ParseTypes("falta\r\n\nretardo\nFALTA\nvacaciones\n home office ")
	require.NoError(t, err)
	assert.Equal(t, []string{"FALTA", "RETARDO", "HOME OFFICE"}, ts.Configured())
	assert.Equal(t, "FALTA\nRETARDO\nHOME OFFICE", ts.String())

	_, err = incident.ParseTypes("\n  \nvacaciones")
	assert.ErrorIs(t, err, incident.ErrEmptyTypes)
}

func TestIncident_Validate(t *testing.T) {
	types := incident.DefaultTypeSet()

	// GIVEN: a raw capture with loose casing
	inc := incident.Incident{Date: d("2025-03-12"), Employee: " juan ", Plant: "norte", Type: "falta"}.Normalize()

	// THEN: it normalizes and validates
	assert.Equal(t, "JUAN", inc.Employee)
	assert.Equal(t, "NORTE", inc.Plant)
	require.NoError(t, inc.Validate(types))

	noEmp := inc
	noEmp.Employee = ""
	assert.ErrorIs(t, noEmp.Validate(types), incident.ErrEmployeeRequired)

	unknown := inc
	unknown.Type = "SIESTA"
	assert.ErrorIs(t, unknown.Validate(types), incident.ErrUnknownType)

	vac := inc
	vac.Type = incident.TypeVacation
	assert.NoError(t, vac.Validate(types))
	assert.True(t, vac.IsVacation())
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#ffcccc", incident.Color("falta"))
	assert.Equal(t, "#e6ccff", incident.Color("VACACIONES"))
	assert.Equal(t, "white", incident.Color(incident.EmptyCell))
	assert.Equal(t, "white", incident.Color("HOME OFFICE"))
}

func TestFilter_All(t *testing.T) {
	f := incident.Filter{Plant: "todas", Company: " acme "}
	assert.Equal(t, "", f.PlantFilter())
	assert.Equal(t, "ACME", f.CompanyFilter())
	assert.Equal(t, "", f.TypeFilter())
}

// =============================================================================
// WEEKLY MATRIX
// =============================================================================

func TestBuildWeek(t *testing.T) {
	// GIVEN: Wednesday 2025-03-12, whose week runs Mon 10 - Sun 16
	incidents := []incident.Incident{
		{ID: 2, Date: d("2025-03-10"), Employee: "ANA", Type: "RETARDO"},
		{ID: 1, Date: d("2025-03-10"), Employee: "ANA", Type: "FALTA"},
		{ID: 3, Date: d("2025-03-16"), Employee: "BETO", Type: "VACACIONES"},
		{ID: 4, Date: d("2025-03-17"), Employee: "BETO", Type: "FALTA"},
		{ID: 5, Date: d("2025-03-11"), Employee: "NADIE", Type: "FALTA"},
	}

	// WHEN: the grid is built
	week := incident.BuildWeek(d("2025-03-12"), []string{"ANA", "BETO"}, incidents)

	// THEN: seven days, latest incident per cell, others empty
	require.Len(t, week.Days, 7)
	assert.Equal(t, "2025-03-10", week.Days[0].String())
	assert.Equal(t, "2025-03-16", week.Days[6].String())

	require.Len(t, week.Rows, 2)
	assert.Equal(t, "RETARDO", week.Rows[0].Cells[0], "higher ID wins")
	assert.Equal(t, incident.EmptyCell, week.Rows[0].Cells[1])
	assert.Equal(t, "VACACIONES", week.Rows[1].Cells[6])
	for i := 0; i < 6; i++ {
		assert.Equal(t, incident.EmptyCell, week.Rows[1].Cells[i], "next week's incident is ignored")
	}
}

func TestWeek_Changes(t *testing.T) {
	week := incident.BuildWeek(d("2025-03-12"), []string{"ANA"}, nil)
	week.Rows[0].Cells[2] = "falta"
	week.Rows[0].Cells[3] = ""

	changes := week.Changes()
	require.Len(t, changes, 7)
	assert.Equal(t, "FALTA", changes[2].Type)
	assert.Equal(t, "2025-03-12", changes[2].Date.String())
	assert.True(t, changes[3].Clears())
	assert.Equal(t, 1, incident.Recorded(changes))

	require.NoError(t, incident.ValidateChanges(changes, incident.DefaultTypeSet(), week.Period))
}

func TestValidateChanges(t *testing.T) {
	period := calendar.WeekOf(d("2025-03-12"))
	types := incident.DefaultTypeSet()

	err := incident.ValidateChanges([]incident.CellChange{{Employee: "ANA", Date: d("2025-03-12"), Type: "SIESTA"}}, types, period)
	assert.ErrorIs(t, err, incident.ErrUnknownType)

	err = incident.ValidateChanges([]incident.CellChange{{Employee: "ANA", Date: d("2025-03-20"), Type: "FALTA"}}, types, period)
	assert.Error(t, err)

	err = incident.ValidateChanges([]incident.CellChange{{Date: d("2025-03-12"), Type: "FALTA"}}, types, period)
	assert.ErrorIs(t, err, incident.ErrEmployeeRequired)
}

func TestCellOptions(t *testing.T) {
	opts := incident.CellOptions(incident.DefaultTypeSet())
	assert.Equal(t, incident.EmptyCell, opts[0])
	assert.Contains(t, opts, "VACACIONES")
	assert.Len(t, opts, 7)
}

// =============================================================================
// SUMMARY AND RANKING
// =============================================================================

func TestSummarize(t *testing.T) {
	rows := incident.Summarize([]incident.Incident{
		{Company: "B", Plant: "NORTE", Type: "FALTA"},
		{Company: "A", Plant: "SUR", Type: "FALTA"},
		{Company: "A", Plant: "NORTE", Type: "RETARDO"},
		{Company: "A", Plant: "NORTE", Type: "FALTA"},
		{Company: "A", Plant: "NORTE", Type: "FALTA"},
	})

	assert.Equal(t, []incident.SummaryRow{
		{Company: "A", Plant: "NORTE", Type: "FALTA", Count: 2},
		{Company: "A", Plant: "NORTE", Type: "RETARDO", Count: 1},
		{Company: "A", Plant: "SUR", Type: "FALTA", Count: 1},
		{Company: "B", Plant: "NORTE", Type: "FALTA", Count: 1},
	}, rows)
}

func TestTopByType(t *testing.T) {
	var incs []incident.Incident
	add := func(name, typ string, n int) {
		for i := 0; i < n; i++ {
			incs = append(incs, incident.Incident{Employee: name, Type: typ})
		}
	}
	add("ANA", "FALTA", 3)
	add("BETO", "FALTA", 3)
	add("CARLA", "FALTA", 1)
	add("DIEGO", "RETARDO", 9)

	top := incident.TopByType(incs, "falta", 2)
	assert.Equal(t, []incident.EmployeeCount{
		{Employee: "ANA", Count: 3},
		{Employee: "BETO", Count: 3},
	}, top)

	assert.Len(t, incident.TopByType(incs, "FALTA", 0), 3)
	assert.Empty(t, incident.TopByType(nil, "FALTA", 10))
}
