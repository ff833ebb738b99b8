package metar

import (
	"strings"

	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// WSSL visibility reports TDZ and END only; any other marker is ignored.
var wsslVisibilityMarkers = map[string]bool{"TDZ": true, "END": true}

// parseWSSL reads the Seletar layout. Runway lines carry two markers and a
// variable wind range for each, at fixed positions counted from RWY:
//
//	RWY 03 TDZ 120/ 05KT 090 110/ 04KT 080 150 AND 140 [VIS TDZ 10KM END 9KM]
//	0   1  2   3    4    5   6    7    8   9   10  11
func parseWSSL(report string, b *domain.ObjectBuilder) error {
	lines, err := stationHeader(report, b)
	if err != nil {
		return err
	}

	var runways runwaySet
	for _, line := range lines {
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if err := runwayLine(tokens, &runways, wsslRunway); err != nil {
			return err
		}
		if err := visibilityGroup(tokens, &runways, wsslVisibilityMarkers); err != nil {
			return err
		}
		if err := cloudGroup(tokens, b); err != nil {
			return err
		}
		if err := temperatureGroup(tokens, b); err != nil {
			return err
		}
		if err := pressureGroup(tokens, b); err != nil {
			return err
		}
		if err := trendGroup(tokens, b); err != nil {
			return err
		}
	}

	b.Set("runways", runways.tree())
	return nil
}

func wsslRunway(tokens []string, rw *runway) error {
	groups := []struct {
		target *domain.ObjectBuilder
		key    string
		i, j   int
		sep    string
	}{
		{rw.wind, "TDZ", 3, 4, " "},
		{rw.wind, "END", 6, 7, " "},
		{rw.variable, "TDZ", 5, 9, " - "},
		{rw.variable, "END", 8, 11, " - "},
	}
	for _, g := range groups {
		value, err := joinAt(tokens, g.i, g.j, g.sep, g.key+" wind")
		if err != nil {
			return err
		}
		g.target.SetText(g.key, value)
	}
	return nil
}
