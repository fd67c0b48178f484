package calendar

import (
	"sync"
	"time"

	"github.com/bassista/studio_calendar/internal/repository"
)

// MonthsPerPage is the number of consecutive months rendered together.
const MonthsPerPage = 2

// Cell is one slot of a month grid. Leading slots before the 1st are Empty.
type Cell struct {
	Empty  bool
	Day    int
	Date   repository.DateKey
	Status repository.Status
	Today  bool
	// Past is set only by read-only views, which hide the status of elapsed days.
	Past bool
}

type Month struct {
	Year     int
	Month    time.Month
	Label    string
	Weekdays [7]string
	Cells    []Cell
}

// Page is what a view shows at once: a range label and the month grids.
type Page struct {
	Label  string
	Months []Month
}

// View is a calendar view parameterized by editability and locale. It tracks
// the first month of the displayed page and is safe for concurrent use.
type View struct {
	Editable bool
	Locale   Locale

	mu   sync.Mutex
	base time.Time
	now  func() time.Time
}

// NewView starts on the month containing now().
func NewView(editable bool, locale Locale, now func() time.Time) *View {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &View{
		Editable: editable,
		Locale:   locale,
		base:     time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()),
		now:      now,
	}
}

// Base returns the first day of the first displayed month.
func (v *View) Base() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.base
}

func (v *View) Prev() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.base = v.base.AddDate(0, -1, 0)
}

func (v *View) Next() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.base = v.base.AddDate(0, 1, 0)
}

// Render builds the current page. Days missing from statusByDate are
// available.
func (v *View) Render(statusByDate map[repository.DateKey]repository.Status) Page {
	base := v.Base()
	now := v.now().In(base.Location())
	today := repository.DateKeyOf(now)

	page := Page{Months: make([]Month, 0, MonthsPerPage)}
	for i := 0; i < MonthsPerPage; i++ {
		first := base.AddDate(0, i, 0)
		m := BuildMonth(first.Year(), first.Month(), v.Locale, statusByDate, today, !v.Editable)
		if page.Label != "" {
			page.Label += " / "
		}
		page.Label += m.Label
		page.Months = append(page.Months, m)
	}
	return page
}

// BuildMonth lays out one month on a Sunday-first grid. With hidePast, days
// strictly before today are flagged Past and carry no status or today flag.
func BuildMonth(year int, month time.Month, locale Locale, statusByDate map[repository.DateKey]repository.Status, today repository.DateKey, hidePast bool) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := int(first.Weekday())
	days := first.AddDate(0, 1, -1).Day()

	m := Month{
		Year:     year,
		Month:    month,
		Label:    locale.MonthLabel(year, month),
		Weekdays: locale.Weekdays,
		Cells:    make([]Cell, 0, lead+days),
	}
	for i := 0; i < lead; i++ {
		m.Cells = append(m.Cells, Cell{Empty: true})
	}

	for d := 1; d <= days; d++ {
		key := repository.DateKeyOf(time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
		cell := Cell{Day: d, Date: key}

		// DateKeys compare chronologically as strings.
		if hidePast && today != "" && key < today {
			cell.Past = true
			m.Cells = append(m.Cells, cell)
			continue
		}

		cell.Status = statusOf(statusByDate, key)
		cell.Today = key == today
		m.Cells = append(m.Cells, cell)
	}
	return m
}

func statusOf(statusByDate map[repository.DateKey]repository.Status, key repository.DateKey) repository.Status {
	if s, ok := statusByDate[key]; ok && s.Valid() {
		return s
	}
	return repository.DefaultStatus
}
