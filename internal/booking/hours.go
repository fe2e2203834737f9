package booking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// FormatHour renders an hour of day as its zero-padded slot label ("08").
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d", hour)
}

// ParseHourLabel parses a zero-padded "HH" slot label.
func ParseHourLabel(label string) (int, error) {
	label = strings.TrimSpace(label)
	if len(label) != 2 {
		return 0, fmt.Errorf("hour label must be two digits, got %q", label)
	}
	hour, err := strconv.Atoi(label)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour label must be between \"00\" and \"23\", got %q", label)
	}
	return hour, nil
}

// ParseClockTime parses an on-the-hour "HH:00" value. Nonzero minutes are
// rejected so a block can never cover a partial slot.
func ParseClockTime(value string) (int, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("time must be \"HH:00\", got %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("time must be \"HH:00\", got %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("time must be \"HH:00\", got %q", value)
	}
	if minute != 0 {
		return 0, fmt.Errorf("time must fall on the hour, got %q", value)
	}
	return hour, nil
}

// HourRange enumerates the half-open range [start, end) of hours of day.
func HourRange(start, end int) []int {
	if end <= start {
		return nil
	}
	hours := make([]int, 0, end-start)
	for hour := start; hour < end; hour++ {
		hours = append(hours, hour)
	}
	return hours
}

// HourLabels formats hours as sorted "HH" labels.
func HourLabels(hours []int) []string {
	sorted := append([]int(nil), hours...)
	sort.Ints(sorted)
	labels := make([]string, len(sorted))
	for i, hour := range sorted {
		labels[i] = FormatHour(hour)
	}
	return labels
}

// ParseDate parses a "2006-01-02" calendar date.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", value)
	}
	return parsed, nil
}

// FormatDate renders a calendar date as "2006-01-02".
func FormatDate(date time.Time) string {
	return date.Format(dateLayout)
}

func intersectHours(a []int, b map[int]struct{}) []int {
	var out []int
	for _, hour := range a {
		if _, ok := b[hour]; ok {
			out = append(out, hour)
		}
	}
	return out
}

func subtractHours(a []int, b map[int]struct{}) []int {
	var out []int
	for _, hour := range a {
		if _, ok := b[hour]; !ok {
			out = append(out, hour)
		}
	}
	return out
}

func unionHours(a, b []int) []int {
	set := make(map[int]struct{}, len(a)+len(b))
	for _, hour := range a {
		set[hour] = struct{}{}
	}
	for _, hour := range b {
		set[hour] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for hour := range set {
		out = append(out, hour)
	}
	sort.Ints(out)
	return out
}

func hourSet(hours []int) map[int]struct{} {
	set := make(map[int]struct{}, len(hours))
	for _, hour := range hours {
		set[hour] = struct{}{}
	}
	return set
}
