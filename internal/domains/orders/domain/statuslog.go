package domain

import (
	"sort"
	"time"
)

// StatusLogEntry is one append-only record of an order status change.
// The stored sequence is immutable history; projections never rewrite it.
type StatusLogEntry struct {
	From     OrderStatus
	To       OrderStatus
	Operator string
	Remark   string
	At       time.Time
}

// TimelineEntry is one row of the display timeline derived from the log.
type TimelineEntry struct {
	Status   OrderStatus
	Operator string
	Remark   string
	At       time.Time
	// Synthetic marks the prepended initial entry; no log record exists
	// for order creation itself.
	Synthetic bool
}

// BuildTimeline projects the raw log into a chronological display timeline.
// The raw log is not guaranteed to arrive pre-sorted. The first entry's
// from-status stands in for the implicit creation state and is prepended as
// a synthetic row. An empty log yields an empty timeline.
func BuildTimeline(entries []StatusLogEntry) []TimelineEntry {
	if len(entries) == 0 {
		return []TimelineEntry{}
	}
	sorted := make([]StatusLogEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})

	timeline := make([]TimelineEntry, 0, len(sorted)+1)
	timeline = append(timeline, TimelineEntry{
		Status:    sorted[0].From,
		At:        sorted[0].At,
		Synthetic: true,
	})
	for _, entry := range sorted {
		timeline = append(timeline, TimelineEntry{
			Status:   entry.To,
			Operator: entry.Operator,
			Remark:   entry.Remark,
			At:       entry.At,
		})
	}
	return timeline
}
