package flights

import (
	"fmt"
	"regexp"
	"strings"
)

// seatsPerRow mirrors a standard narrow-body cabin layout.
const seatsPerRow = 6

var seatLetters = [seatsPerRow]string{"A", "B", "C", "D", "E", "F"}

var flightNumberPattern = regexp.MustCompile(`^[A-Z0-9]{2,6}$`)

// IsValidFlightNumber reports whether s is a 2-6 character alphanumeric
// flight number. Matching is done on the uppercased form.
func IsValidFlightNumber(s string) bool {
	return flightNumberPattern.MatchString(strings.ToUpper(s))
}

// GenerateSeatMap produces the deterministic seat labels for a cabin of the
// given capacity: rows of six filled left to right ("1A".."1F", "2A", ...).
// The same capacity always yields the same labels in the same order.
func GenerateSeatMap(capacity int) []string {
	if capacity <= 0 {
		return nil
	}
	labels := make([]string, 0, capacity)
	for i := 0; i < capacity; i++ {
		row := i/seatsPerRow + 1
		labels = append(labels, fmt.Sprintf("%d%s", row, seatLetters[i%seatsPerRow]))
	}
	return labels
}

// seatSet builds a lookup set from a label slice.
func seatSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return set
}

// MissingSeats returns the labels in want that are not part of the seat map.
func MissingSeats(seatMap, want []string) []string {
	set := seatSet(seatMap)
	var missing []string
	for _, l := range want {
		if _, ok := set[l]; !ok {
			missing = append(missing, l)
		}
	}
	return missing
}

// OverlappingSeats returns the labels in want already present in taken.
func OverlappingSeats(taken, want []string) []string {
	set := seatSet(taken)
	var overlap []string
	for _, l := range want {
		if _, ok := set[l]; ok {
			overlap = append(overlap, l)
		}
	}
	return overlap
}

// HasDuplicateSeats reports whether a label appears more than once in labels.
func HasDuplicateSeats(labels []string) bool {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, ok := set[l]; ok {
			return true
		}
		set[l] = struct{}{}
	}
	return false
}

// removeSeats returns from without the given labels, preserving order.
func removeSeats(from, labels []string) []string {
	drop := seatSet(labels)
	kept := make([]string, 0, len(from))
	for _, l := range from {
		if _, ok := drop[l]; !ok {
			kept = append(kept, l)
		}
	}
	return kept
}
