package age

import (
	"strings"
	"time"

	"github.com/mind-engage/mindengage-norms/internal/norms"
)

// Age is an exact chronological age. Valid is false when either date is
// missing, malformed, or the test date precedes birth.
type Age struct {
	Valid  bool `json:"valid"`
	Years  int  `json:"years"`
	Months int  `json:"months"`
	Days   int  `json:"days"`
}

var layouts = []string{"2006-01-02", "02-01-2006"}

// ParseDate accepts yyyy-mm-dd or dd-mm-yyyy.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Compute returns the age on the test date. When the day of month goes
// negative it borrows the length of the month before the test date.
func Compute(dob, test string) Age {
	birth, ok1 := ParseDate(dob)
	at, ok2 := ParseDate(test)
	if !ok1 || !ok2 || at.Before(birth) {
		return Age{}
	}

	years := at.Year() - birth.Year()
	months := int(at.Month()) - int(birth.Month())
	days := at.Day() - birth.Day()

	if days < 0 {
		// day 0 of the test month is the last day of the previous month
		days += time.Date(at.Year(), at.Month(), 0, 0, 0, 0, 0, time.UTC).Day()
		months--
	}
	if months < 0 {
		months += 12
		years--
	}
	return Age{Valid: true, Years: years, Months: months, Days: days}
}

// TotalMonths converts to the engine's age input.
func (a Age) TotalMonths() norms.Age {
	if !a.Valid {
		return norms.UnknownAge()
	}
	return norms.KnownAge(a.Years*12 + a.Months)
}
