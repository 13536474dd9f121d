package board

import (
	"sort"
	"strings"
)

const maxCheckouts = 12

type checkoutSegment struct {
	label    string
	value    int
	isDouble bool
}

var checkoutSegments = buildCheckoutSegments()

func buildCheckoutSegments() []checkoutSegment {
	segs := make([]checkoutSegment, 0, 62)
	for n := 1; n <= 20; n++ {
		segs = append(segs,
			checkoutSegment{label: Segment{Kind: Single, Number: n}.Label(), value: n},
			checkoutSegment{label: Segment{Kind: Double, Number: n}.Label(), value: n * 2, isDouble: true},
			checkoutSegment{label: Segment{Kind: Triple, Number: n}.Label(), value: n * 3},
		)
	}
	segs = append(segs,
		checkoutSegment{label: "SB", value: 25},
		checkoutSegment{label: "DB", value: 50, isDouble: true},
	)
	return segs
}

// Checkouts enumerates combinations of up to three darts totalling exactly
// remaining, capped at 12 results ordered by dart count. With doubleOut set,
// only combinations ending on a double qualify. Out of range (<=0 or >180)
// yields nothing.
func Checkouts(remaining int, doubleOut bool) []string {
	if remaining <= 0 || remaining > 180 {
		return nil
	}

	seen := make(map[string]struct{})
	var combos []string
	add := func(total int, parts ...checkoutSegment) {
		if total != remaining {
			return
		}
		if doubleOut && !parts[len(parts)-1].isDouble {
			return
		}
		labels := make([]string, len(parts))
		for i, p := range parts {
			labels[i] = p.label
		}
		combo := strings.Join(labels, " ")
		if _, dup := seen[combo]; dup {
			return
		}
		seen[combo] = struct{}{}
		combos = append(combos, combo)
	}

	for _, a := range checkoutSegments {
		add(a.value, a)
		for _, b := range checkoutSegments {
			add(a.value+b.value, a, b)
			for _, c := range checkoutSegments {
				if len(combos) >= maxCheckouts {
					break
				}
				add(a.value+b.value+c.value, a, b, c)
			}
		}
	}

	sort.SliceStable(combos, func(i, j int) bool {
		return strings.Count(combos[i], " ") < strings.Count(combos[j], " ")
	})
	if len(combos) > maxCheckouts {
		combos = combos[:maxCheckouts]
	}
	return combos
}
