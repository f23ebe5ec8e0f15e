package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// recentLimit caps the "recent visits" tail shown on the dashboard.
const recentLimit = 8

// Filters narrow a summary. Both are optional and AND-combined.
type Filters struct {
	// Day matches the trailing day-of-month of Date_Logged, "01".."31".
	Day string
	// Hour matches the leading hour of Time_In, "00".."23".
	Hour string
}

// GroupCount is one bar of the per-program chart.
type GroupCount struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}

// HourCount is one bar of the traffic-by-hour chart.
type HourCount struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// Summary is the aggregate view the dashboard renders.
//
// OtherCount folds Employee and Guest together: the dashboard treats all
// non-student traffic identically. That is a product decision, not an
// accident.
type Summary struct {
	Total        int    `json:"total"`
	StudentCount int    `json:"student_count"`
	OtherCount   int    `json:"other_count"`
	TopGroup     string `json:"top_group"`
	PeakHour     string `json:"peak_hour"`
	BusiestDay   string `json:"busiest_day"`
	AvgDaily     int    `json:"avg_daily"`

	// GroupDistribution covers Student rows only, descending by count.
	GroupDistribution []GroupCount `json:"group_distribution"`
	// HourDistribution covers all rows, ascending by hour key.
	HourDistribution []HourCount `json:"hour_distribution"`
	// Recent is the storage-order tail, most recent first.
	Recent []types.VisitRecord `json:"recent"`
}

// ApplyFilters returns the rows matching f, in their original order.
// Before filtering, rows missing a date are treated as logged on now's
// date and rows missing a time as midnight.
func ApplyFilters(rows []types.VisitRecord, f Filters, now time.Time) []types.VisitRecord {
	today := now.Format(types.DateLayout)

	filtered := make([]types.VisitRecord, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.DateLogged) == "" {
			r.DateLogged = today
		}
		if strings.TrimSpace(r.TimeIn) == "" {
			r.TimeIn = "00:00"
		}
		if f.Day != "" && !strings.HasSuffix(r.DateLogged, "-"+f.Day) {
			continue
		}
		if f.Hour != "" && !strings.HasPrefix(r.TimeIn, f.Hour) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// Summarize computes the dashboard aggregates over rows after applying f.
// All "max" picks are stable: the first key to reach the maximum wins
// (first-encountered for groups and days, earliest hour for the peak).
func Summarize(rows []types.VisitRecord, f Filters, now time.Time) Summary {
	filtered := ApplyFilters(rows, f, now)

	sum := Summary{
		Total:      len(filtered),
		TopGroup:   "N/A",
		PeakHour:   "N/A",
		BusiestDay: "N/A",
	}

	groupCounts := make(map[string]int)
	var groupOrder []string
	hourCounts := make(map[string]int)
	dayCounts := make(map[string]int)
	var dayOrder []string

	for _, r := range filtered {
		switch r.Category {
		case types.CategoryStudent:
			sum.StudentCount++
			if _, seen := groupCounts[r.Group]; !seen {
				groupOrder = append(groupOrder, r.Group)
			}
			groupCounts[r.Group]++
		case types.CategoryEmployee, types.CategoryGuest:
			sum.OtherCount++
		}

		hourCounts[hourPrefix(r.TimeIn)]++

		if _, seen := dayCounts[r.DateLogged]; !seen {
			dayOrder = append(dayOrder, r.DateLogged)
		}
		dayCounts[r.DateLogged]++
	}

	// Program chart: first-seen order, stable-sorted descending, so ties
	// keep their first-encountered position and the argmax lands first.
	sum.GroupDistribution = make([]GroupCount, 0, len(groupOrder))
	for _, g := range groupOrder {
		sum.GroupDistribution = append(sum.GroupDistribution, GroupCount{Group: g, Count: groupCounts[g]})
	}
	sort.SliceStable(sum.GroupDistribution, func(i, j int) bool {
		return sum.GroupDistribution[i].Count > sum.GroupDistribution[j].Count
	})
	if len(sum.GroupDistribution) > 0 {
		sum.TopGroup = sum.GroupDistribution[0].Group
	}

	// Hour chart: chronological keys, peak is the earliest hour holding
	// the maximum.
	hours := make([]string, 0, len(hourCounts))
	for h := range hourCounts {
		hours = append(hours, h)
	}
	sort.Strings(hours)
	sum.HourDistribution = make([]HourCount, 0, len(hours))
	peakCount := 0
	for _, h := range hours {
		n := hourCounts[h]
		sum.HourDistribution = append(sum.HourDistribution, HourCount{Hour: h, Count: n})
		if n > peakCount {
			peakCount = n
			sum.PeakHour = h + ":00"
		}
	}

	// Busiest day: first-encountered max, "Mon DD (count)"; unparseable
	// dates fall back to their raw form.
	bestCount := 0
	for _, d := range dayOrder {
		if dayCounts[d] > bestCount {
			bestCount = dayCounts[d]
			sum.BusiestDay = formatBusiestDay(d, dayCounts[d])
		}
	}

	if len(dayCounts) > 0 {
		sum.AvgDaily = sum.Total / len(dayCounts)
	}

	// Tail of the filtered set in storage order, reversed.
	n := len(filtered)
	start := n - recentLimit
	if start < 0 {
		start = 0
	}
	sum.Recent = make([]types.VisitRecord, 0, n-start)
	for i := n - 1; i >= start; i-- {
		sum.Recent = append(sum.Recent, filtered[i])
	}

	return sum
}

func hourPrefix(timeIn string) string {
	if len(timeIn) < 2 {
		return timeIn
	}
	return timeIn[:2]
}

func formatBusiestDay(date string, count int) string {
	t, err := time.Parse(types.DateLayout, date)
	if err != nil {
		return fmt.Sprintf("%s (%d)", date, count)
	}
	return fmt.Sprintf("%s (%d)", t.Format("Jan 02"), count)
}
