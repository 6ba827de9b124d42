package widget

import (
	"fmt"
	"time"
)

// ActionableView is a clickable region of the widget.
type ActionableView int

const (
	ConfigurationIcon ActionableView = iota
	MonthAndYearHeaderView
	CalendarDays
)

type actionSpec struct {
	name   string
	code   int
	action string
}

var actionSpecs = [...]actionSpec{
	ConfigurationIcon:      {"configuration", 90, "action.mincal.configuration_icon_click"},
	MonthAndYearHeaderView: {"header", 91, "action.mincal.month_and_year_header_click"},
	CalendarDays:           {"day", 92, "action.mincal.calendar_days_click"},
}

// ParseActionableView resolves a view by its short name as used in
// /action/{view} links ("day", "header") or by its full action name.
func ParseActionableView(name string) (ActionableView, error) {
	for i, s := range actionSpecs {
		if s.name == name || s.action == name {
			return ActionableView(i), nil
		}
	}
	return 0, fmt.Errorf("unknown actionable view %q", name)
}

func (v ActionableView) String() string { return actionSpecs[v].name }

// Code is the numeric request code a host attaches to the click handler.
func (v ActionableView) Code() int { return actionSpecs[v].code }

// Action is the intent name a click on v is delivered as.
func (v ActionableView) Action() string { return actionSpecs[v].action }

// TargetKind says where a click navigates to.
type TargetKind int

const (
	TargetSettings TargetKind = iota
	TargetCalendar
)

// Target is where a click navigates to.
type Target struct {
	Kind TargetKind
	At   time.Time
}

// Navigate resolves a click. at is the clicked day's start; zero means now.
func (v ActionableView) Navigate(now, at time.Time) Target {
	switch v {
	case ConfigurationIcon:
		return Target{Kind: TargetSettings}
	case CalendarDays:
		if !at.IsZero() {
			return Target{Kind: TargetCalendar, At: at}
		}
	}
	return Target{Kind: TargetCalendar, At: now}
}
