package util

import (
	"strings"
	"time"
)

var dateTpl = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"hh", "15",
	"mm", "04",
	"ss", "05",
)

// FormatDate formats t using a template with placeholders:
//
//	YYYY 4-digit year    YY 2-digit year
//	MM   month (01-12)   DD day (01-31)
//	hh   hour (00-23)    mm minute (00-59)
//	ss   second (00-59)
//
// The zero time formats as "".
//
//	FormatDate(t, "YYYY-MM-DD hh:mm") // "2023-11-10 08:30"
func FormatDate(t time.Time, tpl string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTpl.Replace(tpl))
}
