package metar

import (
	"strings"

	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// WSSS runway line:
//
//	RWY 02L TDZ 120/ 05KT MID 110/ 04KT END 100/ 03KT [<marker> VRB BTN 090/ AND 150/] [VIS TDZ 10KM MID 9KM END 8KM]
var wsssWindOffsets = []struct {
	marker     string
	dir, speed int
}{
	{"TDZ", 3, 4},
	{"MID", 6, 7},
	{"END", 9, 10},
}

var wsssVisibilityMarkers = map[string]bool{"TDZ": true, "MID": true, "END": true}

// parseWSSS reads line 0 as the header; every later line is checked for a
// runway, visibility, cloud, temperature, pressure and trend group.
func parseWSSS(report string, b *domain.ObjectBuilder) error {
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
		if err := runwayLine(tokens, &runways, wsssRunway); err != nil {
			return err
		}
		if err := visibilityGroup(tokens, &runways, wsssVisibilityMarkers); err != nil {
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

func wsssRunway(tokens []string, rw *runway) error {
	for _, o := range wsssWindOffsets {
		wind, err := joinAt(tokens, o.dir, o.speed, " ", o.marker+" wind")
		if err != nil {
			return err
		}
		rw.wind.SetText(o.marker, wind)
	}

	// Variable wind clauses belong to the closest marker before them.
	end := len(tokens)
	if v := indexOf(tokens, "VIS"); v >= 0 {
		end = v
	}
	marker := ""
	for i := 2; i < end; i++ {
		tok := tokens[i]
		if runwayMarkers[tok] {
			marker = tok
			continue
		}
		if tok != "VRB" || i+1 >= end || tokens[i+1] != "BTN" || marker == "" {
			continue
		}
		if i+4 >= end || tokens[i+3] != "AND" {
			continue
		}
		from := strings.TrimSuffix(tokens[i+2], "/")
		to := strings.TrimSuffix(tokens[i+4], "/")
		rw.variable.SetText(marker, from+" - "+to)
		i += 4
	}
	return nil
}
