package core

import "sort"

// TripGroup collects the participants sharing a destination and trip date.
type TripGroup struct {
	Destination  string    `json:"destination"`
	TripDate     string    `json:"tripDate"`
	Participants []Invoice `json:"participants"`
}

// PaidCount returns how many participants have paid in full.
func (g TripGroup) PaidCount() int {
	n := 0
	for _, p := range g.Participants {
		if p.Status == StatusFullyPaid {
			n++
		}
	}
	return n
}

// PaidPercent is the share of fully paid participants, 0 for an empty group.
func (g TripGroup) PaidPercent() int {
	if len(g.Participants) == 0 {
		return 0
	}
	return g.PaidCount() * 100 / len(g.Participants)
}

// GroupByTrip groups invoices by destination and trip date. Groups are
// sorted by destination; participants keep their input order.
func GroupByTrip(invoices []Invoice) []TripGroup {
	type key struct{ dest, date string }
	index := map[key]int{}
	var groups []TripGroup
	for _, inv := range invoices {
		k := key{inv.Destination, inv.TripDate}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, TripGroup{Destination: inv.Destination, TripDate: inv.TripDate})
		}
		groups[i].Participants = append(groups[i].Participants, inv)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Destination < groups[b].Destination
	})
	return groups
}
