// Package gameday resolves which basketball day the rotator shows and when
// it should be reloaded. All calculations use a fixed UTC-5 offset; daylight
// saving time is not observed.
package gameday

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	KeyLayout = "20060102"

	// DefaultReloadSchedule fires at 02:00 reference time every day.
	DefaultReloadSchedule = "0 2 * * *"
)

// Zone is the reference timezone, US Eastern standard time all year round.
var Zone = time.FixedZone("EST", -5*60*60)

// YesterdayKey returns the YYYYMMDD key of the day before now in Zone.
func YesterdayKey(now time.Time) string {
	return now.In(Zone).AddDate(0, 0, -1).Format(KeyLayout)
}

// Schedule computes reload instants from a standard five-field cron spec
// evaluated in Zone.
type Schedule struct {
	spec  string
	sched cron.Schedule
}

func ParseSchedule(spec string) (*Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing reload schedule %q: %w", spec, err)
	}
	return &Schedule{spec: spec, sched: sched}, nil
}

// Next returns the first scheduled instant strictly after now. A now that
// falls exactly on 02:00 yields 02:00 of the following day.
func (s *Schedule) Next(now time.Time) time.Time {
	return s.sched.Next(now.In(Zone))
}

func (s *Schedule) String() string {
	return s.spec
}

var defaultSchedule, _ = ParseSchedule(DefaultReloadSchedule)

// NextReload returns the next 02:00 in Zone after now.
func NextReload(now time.Time) time.Time {
	return defaultSchedule.Next(now)
}
