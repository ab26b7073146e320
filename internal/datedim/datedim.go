// Package datedim generates the calendar dimension. Generation is a pure
// function of the date range: no clock, no store, byte-identical output for
// identical inputs, which makes it safe to regenerate on every full reload.
package datedim

import (
	"fmt"
	"time"
)

// Layout is the canonical date rendering used across the warehouse.
const Layout = "2006-01-02"

// Row is one calendar day of the dim_date table.
type Row struct {
	DateID    int64  // YYYYMMDD encoding, e.g. 20240131
	FullDate  string // Layout-formatted
	Year      int
	Month     int
	MonthName string
	Day       int
	Week      int // ISO-8601 week number
}

// Columns matches the dim_date table column order.
func Columns() []string {
	return []string{"date_id", "full_date", "year", "month", "month_name", "day", "week"}
}

// Generate produces one Row per calendar day from start to end inclusive,
// chronologically ordered, no gaps, no duplicates. end before start is an
// error. Times are normalized to UTC midnight so DST transitions in the
// inputs cannot skip or double a day.
func Generate(start, end time.Time) ([]Row, error) {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if e.Before(s) {
		return nil, fmt.Errorf("date dimension: end %s before start %s",
			e.Format(Layout), s.Format(Layout))
	}

	days := int(e.Sub(s).Hours()/24) + 1
	rows := make([]Row, 0, days)
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		_, week := d.ISOWeek()
		rows = append(rows, Row{
			DateID:    DateID(d),
			FullDate:  d.Format(Layout),
			Year:      d.Year(),
			Month:     int(d.Month()),
			MonthName: d.Month().String(),
			Day:       d.Day(),
			Week:      week,
		})
	}
	return rows, nil
}

// DateID encodes a day as year*10000 + month*100 + day.
func DateID(d time.Time) int64 {
	return int64(d.Year())*10000 + int64(d.Month())*100 + int64(d.Day())
}

// Rows projects generated rows into positional values aligned to Columns,
// ready for batched insertion.
func Rows(rows []Row) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{
			r.DateID,
			r.FullDate,
			int64(r.Year),
			int64(r.Month),
			r.MonthName,
			int64(r.Day),
			int64(r.Week),
		}
	}
	return out
}
