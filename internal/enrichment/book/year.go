package book

import "regexp"

var yearPattern = regexp.MustCompile(`\d{4}`)

// ExtractYear returns the first four-digit run of a publish date, or "" when
// the date is shorter than four characters or has no such run.
func ExtractYear(date string) string {
	if len(date) < 4 {
		return ""
	}
	return yearPattern.FindString(date)
}
