package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gobmr/gobmr/internal/model"
)

const (
	maxTimetableEntries = 8
	assignmentDays      = 21
)

// DecodeSchedule parses a /loadMode response: a 13-byte name followed by up
// to eight "HH:MM" + 3-digit temperature entries. A schedule with no
// timetable yet decodes with a nil timetable.
func DecodeSchedule(id int, text string) (model.Schedule, error) {
	if len(text) < nameSlot {
		return model.Schedule{}, protocolErr(text)
	}
	s := model.Schedule{
		ID:   id,
		Name: strings.TrimRight(text[:nameSlot], " "),
	}
	rest := text[nameSlot:]
	for i := 0; i+8 <= len(rest) && len(s.Timetable) < maxTimetableEntries; i += 8 {
		chunk := rest[i : i+8]
		if !isDigits(chunk[0:2]) || chunk[2] != ':' || !isDigits(chunk[3:5]) || !isDigits(chunk[5:8]) {
			break
		}
		temp, _ := strconv.Atoi(chunk[5:8])
		s.Timetable = append(s.Timetable, model.ScheduleEntry{Time: chunk[0:5], Temperature: temp})
	}
	return s, nil
}

// EncodeSchedule renders the /saveMode payload. The controller requires the
// first entry to cover 00:00 so every minute of the day has a target.
func EncodeSchedule(id int, name string, timetable []model.ScheduleEntry) (string, error) {
	if len(timetable) == 0 {
		return "", validationErr("schedule timetable is empty")
	}
	if len(timetable) > maxTimetableEntries {
		return "", validationErr("schedule timetable has %d entries, maximum is %d", len(timetable), maxTimetableEntries)
	}
	if timetable[0].Time != "00:00" {
		return "", validationErr("first timetable entry must be for time 00:00, got %q", timetable[0].Time)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%02d%-13.13s", id, name)
	for _, e := range timetable {
		fmt.Fprintf(&b, "%s%03d", e.Time, e.Temperature)
	}
	return b.String(), nil
}

// DecodeCircuitSchedules parses a /roomSettings response: a 2-digit starting
// day followed by 21 two-character slots. "-1" marks the first unassigned
// day and assigned days must be contiguous, so decoding stops there. The low
// 5 bits of a slot carry the schedule id; bit 5 flags the day the controller
// is currently on.
func DecodeCircuitSchedules(text string) (model.CircuitSchedules, error) {
	if len(text) < 2+2*assignmentDays || !isDigits(text[0:2]) {
		return model.CircuitSchedules{}, protocolErr(text)
	}
	startingDay, _ := strconv.Atoi(text[0:2])
	cs := model.CircuitSchedules{StartingDay: startingDay}
	for i := 0; i < assignmentDays; i++ {
		slot := text[2+2*i : 4+2*i]
		if slot == "-1" {
			break
		}
		v, err := strconv.Atoi(slot)
		if err != nil {
			return model.CircuitSchedules{}, protocolErr(text)
		}
		cs.DaySchedules = append(cs.DaySchedules, v&0b00011111)
		if v&0b00100000 != 0 {
			day := i + 1
			cs.CurrentDay = &day
		}
	}
	return cs, nil
}

// EncodeCircuitSchedules renders the /saveAssignmentModes payload. Gaps are
// passed as -1 and may only trail: the controller rejects interior gaps.
func EncodeCircuitSchedules(circuitID int, daySchedules []int, startingDay int) (string, error) {
	if len(daySchedules) > assignmentDays {
		return "", validationErr("day schedule list has %d entries, maximum is %d", len(daySchedules), assignmentDays)
	}
	padded := make([]int, assignmentDays)
	for i := range padded {
		padded[i] = -1
	}
	copy(padded, daySchedules)
	for i := 0; i < assignmentDays-1; i++ {
		if padded[i] == -1 && padded[i+1] != -1 {
			return "", validationErr("day schedule list has a gap before day %d", i+2)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%02d%02d", circuitID, startingDay)
	for _, id := range padded {
		fmt.Fprintf(&b, "%02d", id)
	}
	return b.String(), nil
}
