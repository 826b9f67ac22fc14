package norms

import (
	"strconv"
	"strings"
)

// Age is an examinee age in whole months, or unknown.
type Age struct {
	months int
	known  bool
}

func KnownAge(months int) Age {
	if months < 0 {
		return Age{}
	}
	return Age{months: months, known: true}
}

func UnknownAge() Age { return Age{} }

// ParseAge reads a month count. "unknown", empty, unparseable and negative
// inputs all yield UnknownAge.
func ParseAge(s string) Age {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "unknown") {
		return Age{}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Age{}
	}
	return KnownAge(n)
}

func (a Age) Months() (int, bool) { return a.months, a.known }

func (a Age) String() string {
	if !a.known {
		return "unknown"
	}
	return strconv.Itoa(a.months)
}

// Eligible returns the ids of bands covering age, in ascending MinMonths
// order. An unknown age selects only bands spanning the whole domain.
func (s *TableStore) Eligible(age Age) []string {
	ids := []string{}
	for _, b := range s.bands {
		if m, ok := age.Months(); ok {
			if b.Covers(m) {
				ids = append(ids, b.ID)
			}
			continue
		}
		if b.AllAges() {
			ids = append(ids, b.ID)
		}
	}
	return ids
}
