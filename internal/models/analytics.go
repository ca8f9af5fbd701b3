package models

// AnalyticsSummary aggregates the click events of a single short code.
//
// Each dimension maps an observed value to its occurrence count; events with
// an empty value for a dimension are excluded from that dimension's map.
// TotalClicks is the URL record's running counter, which is authoritative
// and may diverge from the event volume if an event append failed.
type AnalyticsSummary struct {
	ShortCode               string
	TotalClicks             int64
	ClicksByCountry         map[string]int64
	ClicksByRegion          map[string]int64
	ClicksByReferrer        map[string]int64
	ClicksByDate            map[string]int64
	ClicksByDeviceType      map[string]int64
	ClicksByBrowser         map[string]int64
	ClicksByOperatingSystem map[string]int64
}
