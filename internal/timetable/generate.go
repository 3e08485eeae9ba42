/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package timetable

import (
	"fmt"
	"time"
)

// SlotTemplate describes one recurring daily slot for the generator.
type SlotTemplate struct {
	Name  string
	Start string // HH:MM
	End   string // HH:MM; "00:00" means end of day
}

// DefaultTemplates is the stock daily routine used when the generator
// is run without a custom template set.
var DefaultTemplates = []SlotTemplate{
	{Name: "Applications", Start: "08:00", End: "12:00"},
	{Name: "DSA", Start: "15:00", End: "17:00"},
	{Name: "Course Module", Start: "21:30", End: "22:30"},
	{Name: "Personal Project", Start: "22:30", End: "00:00"},
}

// BuildMonth produces one slot row per template per day of the given
// month, with the tracking columns at their neutral defaults.
func BuildMonth(year int, month time.Month, templates []SlotTemplate) (*Timetable, error) {
	if len(templates) == 0 {
		templates = DefaultTemplates
	}
	for _, tpl := range templates {
		if _, err := ParseClock(tpl.Start); err != nil {
			return nil, fmt.Errorf("template %q: %w", tpl.Name, err)
		}
		if _, err := ParseClock(tpl.End); err != nil {
			return nil, fmt.Errorf("template %q: %w", tpl.Name, err)
		}
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	days := first.AddDate(0, 1, 0).Sub(first).Hours() / 24

	tt := &Timetable{Slots: make([]Slot, 0, int(days)*len(templates))}
	for d := 0; d < int(days); d++ {
		date := first.AddDate(0, 0, d)
		for _, tpl := range templates {
			tt.Slots = append(tt.Slots, Slot{
				Date:      date.Format("2006-01-02"),
				DayName:   date.Format("Mon"),
				SlotName:  tpl.Name,
				StartTime: tpl.Start,
				EndTime:   tpl.End,
			})
		}
	}
	return tt, nil
}
