package materialize

import (
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

var sensitivityRank = map[eventstore.Sensitivity]int{
	eventstore.SensitivityGeneral:   0,
	eventstore.SensitivityElevated:  1,
	eventstore.SensitivitySensitive: 2,
}

// maxSensitivity returns the strictest sensitivity among signal rows.
func maxSensitivity(signals []map[string]any) eventstore.Sensitivity {
	best := eventstore.SensitivityGeneral
	for _, s := range signals {
		sens := eventstore.Sensitivity(asString(s["sensitivity"]))
		if sensitivityRank[sens] > sensitivityRank[best] {
			best = sens
		}
	}
	return best
}

// typeDiversity is the count of distinct signal kinds among signals.
func typeDiversity(signals []map[string]any) int {
	kinds := make(map[string]bool, len(signals))
	for _, s := range signals {
		if k := asString(s["kind"]); k != "" {
			kinds[k] = true
		}
	}
	return len(kinds)
}

// hasBothTensionAndResponse reports whether signals include at least one
// tension and at least one non-tension kind.
func hasBothTensionAndResponse(signals []map[string]any) bool {
	var hasTension, hasResponse bool
	for _, s := range signals {
		if asString(s["kind"]) == "tension" {
			hasTension = true
		} else {
			hasResponse = true
		}
	}
	return hasTension && hasResponse
}

// askGiveCounts classifies each signal as an "ask" (need/tension) or a
// "give" (aid/gathering); notices count as neither.
func askGiveCounts(signals []map[string]any) (ask, give int) {
	for _, s := range signals {
		switch asString(s["kind"]) {
		case "need", "tension":
			ask++
		case "aid", "gathering":
			give++
		}
	}
	return ask, give
}

// sourceDomainCount is the number of distinct source_url domains among
// signals.
func sourceDomainCount(signals []map[string]any) int {
	domains := make(map[string]bool, len(signals))
	for _, s := range signals {
		if d := domainOf(asString(s["source_url"])); d != "" {
			domains[d] = true
		}
	}
	return len(domains)
}

// centroidOf returns the mean lat/lng of signals that carry coordinates, or
// nil if none do.
func centroidOf(signals []map[string]any) *eventstore.Location {
	var sumLat, sumLng float64
	var n int
	for _, s := range signals {
		lat, latOK := asFloat(s["lat"])
		lng, lngOK := asFloat(s["lng"])
		if latOK && lngOK {
			sumLat += lat
			sumLng += lng
			n++
		}
	}
	if n == 0 {
		return nil
	}
	meanLat := sumLat / float64(n)
	meanLng := sumLng / float64(n)
	return &eventstore.Location{Lat: &meanLat, Lng: &meanLng}
}

// signalIDs returns the "id" field of every row.
func signalIDs(signals []map[string]any) []string {
	out := make([]string, 0, len(signals))
	for _, s := range signals {
		out = append(out, asString(s["id"]))
	}
	return out
}

// storyStatus applies spec.md §4.7 Phase A's status rule.
func storyStatus(typeDiv, entityCount, signalCount, echoSignalCount int) string {
	switch {
	case typeDiv >= 2 && entityCount >= 2:
		return "confirmed"
	case signalCount >= echoSignalCount && typeDiv == 1:
		return "echo"
	default:
		return "emerging"
	}
}
