package reservation

import (
	"sort"

	"github.com/antzucaro/matchr"
)

// stations is the set of SRT stations accepted by the search form.
var stations = map[string]struct{}{
	"수서":      {},
	"동탄":      {},
	"평택지제":    {},
	"경주":      {},
	"곡성":      {},
	"공주":      {},
	"광주송정":    {},
	"구례구":     {},
	"김천(구미)":  {},
	"나주":      {},
	"남원":      {},
	"대전":      {},
	"동대구":     {},
	"마산":      {},
	"목포":      {},
	"밀양":      {},
	"부산":      {},
	"서대구":     {},
	"순천":      {},
	"여수EXPO":  {},
	"여천":      {},
	"오송":      {},
	"울산(통도사)": {},
	"익산":      {},
	"전주":      {},
	"정읍":      {},
	"진영":      {},
	"진주":      {},
	"창원":      {},
	"창원중앙":    {},
	"천안아산":    {},
	"포항":      {},
}

// IsStation reports whether name is a known station.
func IsStation(name string) bool {
	_, ok := stations[name]
	return ok
}

// Stations returns the station allow-list in sorted order.
func Stations() []string {
	out := make([]string, 0, len(stations))
	for s := range stations {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Suggest returns the known station most similar to name, or "" when nothing
// is similar enough to be a likely typo.
func Suggest(name string) string {
	if name == "" {
		return ""
	}
	best := ""
	bestSim := 0.0
	for _, s := range Stations() {
		sim := matchr.JaroWinkler(name, s, false)
		if sim > bestSim {
			best, bestSim = s, sim
		}
	}
	if bestSim < suggestThreshold {
		return ""
	}
	return best
}

const suggestThreshold = 0.8
