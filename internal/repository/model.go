package repository

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// DateKeyLayout is the canonical calendar-local day format.
const DateKeyLayout = "2006-01-02"

var (
	ErrInvalidDateKey = errors.New("invalid date key")
	ErrInvalidStatus  = errors.New("invalid status")
)

// DateKey identifies a calendar day as YYYY-MM-DD.
type DateKey string

// ParseDateKey accepts only the zero-padded canonical form of a real day.
func ParseDateKey(s string) (DateKey, error) {
	if len(s) != len(DateKeyLayout) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	if _, err := time.Parse(DateKeyLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	return DateKey(s), nil
}

// DateKeyOf derives the key from the local year/month/day of t.
func DateKeyOf(t time.Time) DateKey {
	return DateKey(fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day()))
}

// Time returns midnight of the day in loc.
func (k DateKey) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateKeyLayout, string(k), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, string(k))
	}
	return t, nil
}

func (k DateKey) String() string {
	return string(k)
}

// Status is the availability of a day. The zero value is not a valid status;
// absence of a record means StatusAvailable.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
	StatusPending     Status = "pending"
)

// DefaultStatus applies to every day without a stored record.
const DefaultStatus = StatusAvailable

// Statuses lists the valid statuses in cycle order.
var Statuses = []Status{StatusAvailable, StatusUnavailable, StatusPending}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusUnavailable, StatusPending:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Record is the explicit status of a single day.
type Record struct {
	Date   DateKey `json:"date" validate:"required,datetime=2006-01-02"`
	Status Status  `json:"status" validate:"required,oneof=available unavailable pending"`
}

// Metadata holds versioning info used to reconcile the cache with the data file.
type Metadata struct {
	LastUpdate int64 `json:"lastUpdate"` // Unix timestamp in milliseconds
}

// DataDocument represents the persisted JSON structure.
type DataDocument struct {
	Metadata     Metadata `json:"metadata"`
	Availability []Record `json:"availability" validate:"unique=Date,dive"`
}

// ApplyDefaults sets fallback values after decode.
func (d *DataDocument) ApplyDefaults() {
	if d.Availability == nil {
		d.Availability = []Record{}
	}
}

// SortRecords orders records by date, in place.
func SortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
}

// AreDataDocumentsEqual compares two documents ignoring Metadata and record order.
func AreDataDocumentsEqual(a, b *DataDocument) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Availability) != len(b.Availability) {
		return false
	}

	statuses := make(map[DateKey]Status, len(a.Availability))
	for _, r := range a.Availability {
		statuses[r.Date] = r.Status
	}
	for _, r := range b.Availability {
		st, ok := statuses[r.Date]
		if !ok || st != r.Status {
			return false
		}
	}
	return true
}
