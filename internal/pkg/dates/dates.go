package dates

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Layout is the calendar-date wire format used everywhere dates cross the
// store or API boundary. Day/month/year, no time component.
const Layout = "02/01/2006"

// Date is a calendar date without a time-of-day component. All date
// arithmetic happens on this type; the textual form exists only at the
// store and API boundaries.
type Date struct {
	t time.Time
}

func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today truncates the given clock reading to its calendar date.
func Today(now time.Time) Date {
	y, m, d := now.Date()
	return New(y, m, d)
}

// Parse reads the fixed day/month/year form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Today(t), nil
}

func (d Date) String() string { return d.t.Format(Layout) }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

func (d Date) OnOrBefore(other Date) bool { return !d.t.After(other.t) }
func (d Date) OnOrAfter(other Date) bool  { return !d.t.Before(other.t) }

func (d Date) AddDays(n int) Date { return Today(d.t.AddDate(0, 0, n)) }

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time { return d.t }

// MarshalJSON emits the fixed day/month/year string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as its textual day/month/year form.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan accepts the textual form or a bare timestamp from the driver.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		if v == "" {
			*d = Date{}
			return nil
		}
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case time.Time:
		*d = Today(v)
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

// InWindow reports whether d falls within [start, end] inclusive. A nil
// bound is unbounded on that side; both nil means always contained.
func InWindow(d Date, start, end *Date) bool {
	if start != nil && d.Before(*start) {
		return false
	}
	if end != nil && d.After(*end) {
		return false
	}
	return true
}
