package ics

import (
	"strings"
	"time"
	_ "time/tzdata"
)

var plus3 = time.FixedZone("+03:00", 3*60*60)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// calendar wraps VEVENT lines in a VCALENDAR with CRLF line endings.
func calendar(lines ...string) []byte {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//mincal//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR")
	return []byte(strings.Join(all, "\r\n") + "\r\n")
}
