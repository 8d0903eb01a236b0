package models

import "fmt"

// DurationFilter restricts investments by the year they were made. Matured
// bonds are excluded independently of this filter.
type DurationFilter string

const (
	FilterThisYear DurationFilter = "this_year"
	FilterLastYear DurationFilter = "last_year"
	FilterAllTime  DurationFilter = "all_time"
)

// DurationView selects the time-bucket granularity of the pivot.
type DurationView string

const (
	ViewYears    DurationView = "years"
	ViewQuarters DurationView = "quarters"
	ViewMonths   DurationView = "months"
)

// ViewType selects which amount the pivot accumulates.
type ViewType string

const (
	ViewInvestment           ViewType = "investment"
	ViewInterestPaid         ViewType = "interest_paid"
	ViewPrincipalPaid        ViewType = "principal_paid"
	ViewPrincipalAndInterest ViewType = "principal_and_interest"
)

// ParseDurationFilter maps a query-string value to a DurationFilter.
// Empty means the default (all time); anything else unknown is an error.
func ParseDurationFilter(s string) (DurationFilter, error) {
	switch DurationFilter(s) {
	case "":
		return FilterAllTime, nil
	case FilterThisYear, FilterLastYear, FilterAllTime:
		return DurationFilter(s), nil
	default:
		return "", fmt.Errorf("unknown durationFilter %q", s)
	}
}

// ParseDurationView maps a query-string value to a DurationView, defaulting
// to months.
func ParseDurationView(s string) (DurationView, error) {
	switch DurationView(s) {
	case "":
		return ViewMonths, nil
	case ViewYears, ViewQuarters, ViewMonths:
		return DurationView(s), nil
	default:
		return "", fmt.Errorf("unknown durationView %q", s)
	}
}

// ParseViewType maps a query-string value to a ViewType, defaulting to the
// investment view.
func ParseViewType(s string) (ViewType, error) {
	switch ViewType(s) {
	case "":
		return ViewInvestment, nil
	case ViewInvestment, ViewInterestPaid, ViewPrincipalPaid, ViewPrincipalAndInterest:
		return ViewType(s), nil
	default:
		return "", fmt.Errorf("unknown viewType %q", s)
	}
}
