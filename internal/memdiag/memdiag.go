// Package memdiag is a debugging aid: a census of the parameter tensors held
// by an ensemble, grouped by shape, largest population first.
package memdiag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"ennead/internal/estimator"
)

type Entry struct {
	Shape string
	Count int
	Bytes uint64
}

type Report struct {
	Entries    []Entry
	TotalItems int
	TotalBytes uint64
}

// Census groups tensors by shape and tallies counts and byte footprints,
// ordered by count descending (shape name breaks ties for stable output).
func Census(groups ...[]estimator.Parameter) Report {
	byShape := make(map[string]*Entry)
	for _, group := range groups {
		for _, param := range group {
			shape := fmt.Sprintf("%s float64[%d]", param.Name, len(param.Values))
			entry, ok := byShape[shape]
			if !ok {
				entry = &Entry{Shape: shape}
				byShape[shape] = entry
			}
			entry.Count++
			entry.Bytes += uint64(len(param.Values)) * 8
		}
	}

	report := Report{Entries: make([]Entry, 0, len(byShape))}
	for _, entry := range byShape {
		report.Entries = append(report.Entries, *entry)
		report.TotalItems += entry.Count
		report.TotalBytes += entry.Bytes
	}
	sort.Slice(report.Entries, func(i, j int) bool {
		if report.Entries[i].Count != report.Entries[j].Count {
			return report.Entries[i].Count > report.Entries[j].Count
		}
		return report.Entries[i].Shape < report.Entries[j].Shape
	})
	return report
}

func (r Report) String() string {
	rule := strings.Repeat("-", 80)
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Found %d tensors in memory (%s).\n", r.TotalItems, humanize.Bytes(r.TotalBytes))
	fmt.Fprintln(&b, rule)
	for _, entry := range r.Entries {
		fmt.Fprintf(&b, "%-60s %d items (%s)\n", entry.Shape, entry.Count, humanize.Bytes(entry.Bytes))
	}
	fmt.Fprintln(&b, rule)
	return b.String()
}
