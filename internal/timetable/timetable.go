/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package timetable owns the durable slot schedule: a CSV file with one
// row per scheduled activity per day, shared read-only with the timer
// and pet front-ends. The scheduler process is the single writer.
package timetable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound indicates the timetable file does not exist.
var ErrNotFound = errors.New("timetable not found")

// Column order of the on-disk CSV. Missing tracked columns are created
// on load with neutral defaults; saving always writes the full set.
var columns = []string{
	"Date", "DayName", "SlotName", "StartTime", "EndTime",
	"Status", "PomodorosCompleted", "LoggedMinutes", "Comments", "LastUpdated",
}

// requiredColumns cannot be defaulted; their absence is a configuration error.
var requiredColumns = []string{"Date", "SlotName", "StartTime", "EndTime"}

// Slot is one scheduled time window on a given date.
type Slot struct {
	Date               string // ISO-8601 date
	DayName            string
	SlotName           string
	StartTime          string // HH:MM 24-hour
	EndTime            string // HH:MM; "00:00" means end of day
	Status             string // "", "Done", "Not Done"
	PomodorosCompleted int
	LoggedMinutes      int
	Comments           string
	LastUpdated        string
}

// Timetable holds the ordered slot rows for the process lifetime.
type Timetable struct {
	Slots []Slot
}

// Load reads the timetable CSV, normalizing column presence and
// coercing the numeric counters.
func Load(path string) (*Timetable, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open timetable: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse timetable: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("timetable %s has no header row", path)
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("timetable %s missing required column %q", path, name)
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	tt := &Timetable{Slots: make([]Slot, 0, len(records)-1)}
	for _, row := range records[1:] {
		tt.Slots = append(tt.Slots, Slot{
			Date:               strings.TrimSpace(field(row, "Date")),
			DayName:            field(row, "DayName"),
			SlotName:           field(row, "SlotName"),
			StartTime:          strings.TrimSpace(field(row, "StartTime")),
			EndTime:            strings.TrimSpace(field(row, "EndTime")),
			Status:             field(row, "Status"),
			PomodorosCompleted: coerceInt(field(row, "PomodorosCompleted")),
			LoggedMinutes:      coerceInt(field(row, "LoggedMinutes")),
			Comments:           field(row, "Comments"),
			LastUpdated:        field(row, "LastUpdated"),
		})
	}
	return tt, nil
}

// Save overwrites the timetable file in full. The write is not atomic
// against concurrent readers; front-ends tolerate a torn read and retry
// on their next poll.
func Save(tt *Timetable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(columns); err != nil {
		f.Close()
		return fmt.Errorf("write timetable header: %w", err)
	}
	for _, s := range tt.Slots {
		row := []string{
			s.Date, s.DayName, s.SlotName, s.StartTime, s.EndTime,
			s.Status,
			strconv.Itoa(s.PomodorosCompleted),
			strconv.Itoa(s.LoggedMinutes),
			s.Comments, s.LastUpdated,
		}
		if err := writer.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write timetable row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush timetable: %w", err)
	}
	return f.Close()
}

// coerceInt parses a counter cell, defaulting empty or invalid input to 0.
func coerceInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(hm string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(hm), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", hm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", hm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", hm)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", hm)
	}
	return h*60 + m, nil
}

// endOfDayMinutes is the clamp applied to slots ending at midnight: a
// slot never crosses into the next calendar date.
const endOfDayMinutes = 24 * 60

// FindActive locates the at-most-one currently active, not-yet-done
// slot for now's calendar date. It returns the slot index, the real
// remaining minutes until slot end, and whether a slot matched. Rows
// are scanned in file order; the first match wins, so overlapping slots
// (a data-authoring error) resolve deterministically.
func (tt *Timetable) FindActive(now time.Time) (int, float64, bool) {
	today := now.Format("2006-01-02")
	nowMin := now.Hour()*60 + now.Minute()

	for i := range tt.Slots {
		s := &tt.Slots[i]
		if s.Date != today {
			continue
		}
		startMin, err := ParseClock(s.StartTime)
		if err != nil {
			continue
		}
		endMin, err := ParseClock(s.EndTime)
		if err != nil {
			continue
		}
		if s.EndTime == "00:00" {
			endMin = endOfDayMinutes
		}
		if nowMin < startMin || nowMin >= endMin {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(s.Status), "done") {
			continue
		}

		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		slotEnd := midnight.Add(time.Duration(endMin) * time.Minute)
		remaining := slotEnd.Sub(now).Minutes()
		return i, remaining, true
	}
	return 0, 0, false
}

// TodaysSlots returns copies of the rows dated on now's calendar date,
// in file order.
func (tt *Timetable) TodaysSlots(now time.Time) []Slot {
	today := now.Format("2006-01-02")
	var out []Slot
	for _, s := range tt.Slots {
		if s.Date == today {
			out = append(out, s)
		}
	}
	return out
}
