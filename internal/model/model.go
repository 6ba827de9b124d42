package model

import (
	"fmt"
	"time"
)

// Instance is a single concrete occurrence of a calendar event, after
// recurrence expansion. All-day instances are a local-midnight pair in Zone.
//
// Several instances may share EventID; identity is the whole tuple.
type Instance struct {
	EventID  int
	Start    time.Time
	End      time.Time
	Zone     *time.Location
	Declined bool
}

// Location returns Zone, or UTC when unset.
func (i Instance) Location() *time.Location {
	if i.Zone == nil {
		return time.UTC
	}
	return i.Zone
}

// Key identifies the instance for de-duplication.
func (i Instance) Key() string {
	return fmt.Sprintf("%d|%d|%d|%s|%t",
		i.EventID, i.Start.UnixMilli(), i.End.UnixMilli(), i.Location().String(), i.Declined)
}

// Event carries the descriptive fields of an instance for sinks that list
// events. The widget itself only counts instances.
type Event struct {
	SourceID string
	UID      string
	Summary  string
	AllDay   bool
	Instance Instance
}
