// Package calendar models the two-month availability calendar shared by the
// admin editor and the embeddable read-only views.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Locale holds the month and weekday labels of a view. Weekdays start on
// Sunday.
type Locale struct {
	Name     string
	Months   [12]string
	Weekdays [7]string
}

var French = Locale{
	Name: "fr",
	Months: [12]string{
		"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
		"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
	},
	Weekdays: [7]string{"DI", "LU", "MA", "ME", "JE", "VE", "SA"},
}

var English = Locale{
	Name: "en",
	Months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	Weekdays: [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"},
}

// LocaleByName returns the locale for "fr" or "en" (case insensitive).
func LocaleByName(name string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case French.Name:
		return French, nil
	case English.Name:
		return English, nil
	default:
		return Locale{}, fmt.Errorf("unknown locale: %q (supported: %s, %s)", name, French.Name, English.Name)
	}
}

// MonthLabel formats e.g. "Janvier 2025".
func (l Locale) MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", l.Months[month-1], year)
}
