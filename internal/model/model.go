package model

import "time"

type ShutterPosition string

const (
	ShutterOpen   ShutterPosition = "open"
	ShutterClosed ShutterPosition = "closed"
	ShutterSits   ShutterPosition = "sits"
	ShutterHalf   ShutterPosition = "half"
)

// Circuit is the decoded state of one heating/cooling zone. Numeric fields
// are pointers because the controller sometimes returns garbage in a single
// field; such fields decode to nil instead of failing the whole read.
type Circuit struct {
	ID                   int      `json:"id"`
	Enabled              bool     `json:"enabled"`
	Name                 string   `json:"name"`
	Temperature          *float64 `json:"temperature"`
	ScheduledTemperature *float64 `json:"scheduled_temperature"`
	TargetTemperature    *float64 `json:"target_temperature"`
	TargetTemperatureRaw *float64 `json:"target_temperature_raw"`
	UserOffset           *float64 `json:"user_offset"`
	MaxOffset            *float64 `json:"max_offset"`
	Heating              bool     `json:"heating"`
	Cooling              bool     `json:"cooling"`
	WindowHeating        bool     `json:"window_heating"`
	Card                 bool     `json:"card"`
	Warning              int      `json:"warning"`
	LowMode              bool     `json:"low_mode"`
	SummerMode           bool     `json:"summer_mode"`
	LowAssigned          *bool    `json:"low_assigned,omitempty"`
	SummerAssigned       *bool    `json:"summer_assigned,omitempty"`
}

type ScheduleEntry struct {
	Time        string `json:"time"` // "HH:MM", first entry must be "00:00"
	Temperature int    `json:"temperature"`
}

type Schedule struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Timetable []ScheduleEntry `json:"timetable"`
}

// CircuitSchedules maps day-of-month buckets to schedule ids for one
// circuit. DaySchedules holds up to 21 ids with no interior gaps.
// CurrentDay is the 1-based index of the bucket the controller is
// currently running, nil when the controller flags none.
type CircuitSchedules struct {
	StartingDay  int   `json:"starting_day"`
	CurrentDay   *int  `json:"current_day"`
	DaySchedules []int `json:"day_schedules"`
}

type LowMode struct {
	Enabled     bool       `json:"enabled"`
	Temperature int        `json:"temperature"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type Ventilation struct {
	Power int `json:"power"`
	PPM   int `json:"ppm"`
}

type Shutter struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Position ShutterPosition `json:"position"`
	Tilt     int             `json:"tilt"` // 0 open .. 10 closed
}

// AllData is one full-system snapshot. Fields after Circuits are nil when
// their sub-fetch failed; a single flaky endpoint never blanks the rest.
type AllData struct {
	Circuits    []Circuit    `json:"circuits"`
	HDO         *bool        `json:"hdo"`
	Ventilation *Ventilation `json:"ventilation"`
	SummerMode  *bool        `json:"summer_mode"`
	LowMode     *LowMode     `json:"low_mode"`
}
