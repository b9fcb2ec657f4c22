package bmr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobmr/gobmr/internal/model"
	"github.com/gobmr/gobmr/internal/wire"
)

func TestScheduleNames(t *testing.T) {
	f := newFakeDevice(t)
	f.set("/listOfModes", "Rano         Vikend       ")
	c := testClient(t, f, nil)

	names, err := c.ScheduleNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Rano", "Vikend"}, names)
}

func TestScheduleLoadsTimetable(t *testing.T) {
	f := newFakeDevice(t)
	f.set("/loadMode", "Rano         00:0002106:30023")
	c := testClient(t, f, nil)

	s, err := c.Schedule(5)
	require.NoError(t, err)

	assert.Equal(t, "05", f.lastValue("/loadMode", "modeID"))
	assert.Equal(t, 5, s.ID)
	assert.Equal(t, "Rano", s.Name)
	assert.Equal(t, []model.ScheduleEntry{
		{Time: "00:00", Temperature: 21},
		{Time: "06:30", Temperature: 23},
	}, s.Timetable)
}

func TestSaveSchedule(t *testing.T) {
	f := newFakeDevice(t)
	j := &journalRecorder{}
	c := testClient(t, f, func(o *Options) { o.Journal = j.record })

	err := c.SaveSchedule(model.Schedule{
		ID:   5,
		Name: "Rano",
		Timetable: []model.ScheduleEntry{
			{Time: "00:00", Temperature: 21},
			{Time: "06:30", Temperature: 23},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "05Rano         00:0002106:30023", f.lastValue("/saveMode", "modeSettings"))
	require.Len(t, j.entries, 1)
	assert.Equal(t, journalEntry{kind: "save_schedule", circuit: -1, value: 5, ok: true}, j.entries[0])
}

func TestSaveScheduleRejectsBadTimetable(t *testing.T) {
	f := newFakeDevice(t)
	c := testClient(t, f, nil)

	err := c.SaveSchedule(model.Schedule{
		ID:        5,
		Name:      "Rano",
		Timetable: []model.ScheduleEntry{{Time: "06:30", Temperature: 23}},
	})

	var validationErr *wire.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, f.count("/saveMode"))
}

func TestDeleteSchedule(t *testing.T) {
	f := newFakeDevice(t)
	j := &journalRecorder{}
	c := testClient(t, f, func(o *Options) { o.Journal = j.record })

	require.NoError(t, c.DeleteSchedule(7))

	assert.Equal(t, "07", f.lastValue("/deleteMode", "modeID"))
	require.Len(t, j.entries, 1)
	assert.Equal(t, "delete_schedule", j.entries[0].kind)
}

func TestCircuitSchedules(t *testing.T) {
	f := newFakeDevice(t)
	f.set("/roomSettings", "07330201"+strings.Repeat("-1", 18))
	c := testClient(t, f, nil)

	cs, err := c.CircuitSchedules(4)
	require.NoError(t, err)

	assert.Equal(t, "04", f.lastValue("/roomSettings", "roomID"))
	assert.Equal(t, 7, cs.StartingDay)
	assert.Equal(t, []int{1, 2, 1}, cs.DaySchedules)
	require.NotNil(t, cs.CurrentDay)
	assert.Equal(t, 1, *cs.CurrentDay)
}

func TestSetCircuitSchedules(t *testing.T) {
	f := newFakeDevice(t)
	j := &journalRecorder{}
	c := testClient(t, f, func(o *Options) { o.Journal = j.record })

	require.NoError(t, c.SetCircuitSchedules(4, []int{1, 2}, 0))

	assert.Equal(t, "04000102"+strings.Repeat("-1", 19), f.lastValue("/saveAssignmentModes", "roomSettings"))
	require.Len(t, j.entries, 1)
	assert.Equal(t, "circuit_schedules", j.entries[0].kind)
	assert.Equal(t, 4, j.entries[0].circuit)
}

func TestSetCircuitSchedulesRejectsGap(t *testing.T) {
	f := newFakeDevice(t)
	c := testClient(t, f, nil)

	err := c.SetCircuitSchedules(4, []int{1, -1, 2}, 0)

	var validationErr *wire.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, f.count("/saveAssignmentModes"))
}
