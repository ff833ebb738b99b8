package metar

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// Section keywords in report order. Each one closes the previous section.
var sectionKeywords = []string{"WIND", "VIS", "CLD", "DP", "QNH", "TREND"}

var runwayMarkers = map[string]bool{"TDZ": true, "MID": true, "END": true}

type section struct {
	text    string
	present bool
}

// splitSections cuts the report at each keyword that starts a token. The
// returned map holds one entry per keyword; basic is the text before the
// first keyword found.
func splitSections(report string) (basic string, sections map[string]section) {
	type hit struct {
		keyword    string
		start, end int
	}

	var hits []hit
	cursor := 0
	for _, kw := range sectionKeywords {
		if i := findKeyword(report, kw, cursor); i >= 0 {
			hits = append(hits, hit{keyword: kw, start: i, end: i + len(kw)})
			cursor = i + len(kw)
		}
	}

	sections = make(map[string]section, len(sectionKeywords))
	basic = report
	if len(hits) > 0 {
		basic = report[:hits[0].start]
	}
	for i, h := range hits {
		stop := len(report)
		if i+1 < len(hits) {
			stop = hits[i+1].start
		}
		sections[h.keyword] = section{text: report[h.end:stop], present: true}
	}
	return basic, sections
}

// findKeyword returns the index of kw at or after from where kw begins a token.
func findKeyword(s, kw string, from int) int {
	for i := from; i+len(kw) <= len(s); {
		j := strings.Index(s[i:], kw)
		if j < 0 {
			return -1
		}
		pos := i + j
		if pos == 0 || unicode.IsSpace(rune(s[pos-1])) {
			return pos
		}
		i = pos + 1
	}
	return -1
}

// parseGeneric implements the keyword-delimited grammar:
//
//	<type> <station> <ddHHmmZ> WIND RWY.. TDZ d/sKT .. VIS RWY.. TDZ 10KM .. CLD .. T25 DP20 QNH1012HPA TREND NOSIG
func parseGeneric(report string, b *domain.ObjectBuilder) error {
	head, sections := splitSections(report)

	if err := basic(strings.Fields(head), b); err != nil {
		return err
	}

	if s := sections["WIND"]; s.present {
		wind, err := runwayWind(s.text)
		if err != nil {
			return err
		}
		b.Set("wind", wind)
	}

	if s := sections["VIS"]; s.present {
		vis, err := runwayVisibility(s.text)
		if err != nil {
			return err
		}
		b.Set("visibility", vis)
	}

	if s := sections["CLD"]; s.present {
		var cloud []string
		for _, tok := range strings.Fields(s.text) {
			if temperatureRe.MatchString(tok) {
				b.SetText("temperature", celsius(tok, "T"))
				continue
			}
			cloud = append(cloud, tok)
		}
		b.SetNonEmpty("cloudCover", strings.Join(cloud, " "))
	}

	if tokens := strings.Fields(sections["DP"].text); len(tokens) > 0 {
		b.SetText("dewPoint", celsius(tokens[0], "DP"))
	}

	if tokens := strings.Fields(sections["QNH"].text); len(tokens) > 0 {
		b.SetText("pressure", hectopascal(tokens[0]))
	}

	if tokens := strings.Fields(sections["TREND"].text); len(tokens) > 0 {
		b.SetText("trend", tokens[0])
	}

	return nil
}

// runwayChunks splits a section on RWY and returns the tokens of each
// non-blank chunk. The first token of a chunk is the runway designator.
func runwayChunks(text string) [][]string {
	var chunks [][]string
	for _, part := range strings.Split(text, "RWY") {
		if tokens := strings.Fields(part); len(tokens) > 0 {
			chunks = append(chunks, tokens)
		}
	}
	return chunks
}

func runwayWind(text string) (domain.Tree, error) {
	out := domain.NewObjectBuilder()
	for _, tokens := range runwayChunks(text) {
		if len(tokens) < 3 {
			continue
		}
		details := domain.NewObjectBuilder()
		for i := 1; i < len(tokens); {
			if !runwayMarkers[tokens[i]] {
				i++
				continue
			}
			next, err := markerWind(tokens, i, details)
			if err != nil {
				return domain.Tree{}, err
			}
			i = next
		}
		out.Set("RWY "+tokens[0], details.Build())
	}
	return out.Build(), nil
}

// markerWind decodes the wind group following the marker at tokens[m] and
// returns the index of the first token after it. Three forms are accepted:
//
//	TDZ VRB03KT                        variable, speed only
//	TDZ VRB BTN 090/ AND 150/5KT       variable range, speed on the upper bound
//	TDZ 120/5KT VRB BTN 090/ AND 150/  steady wind followed by a variable range
func markerWind(tokens []string, m int, details *domain.ObjectBuilder) (int, error) {
	marker := tokens[m]
	variableKey := marker + "_VariableWind"

	tok, err := at(tokens, m+1, marker+" wind")
	if err != nil {
		return 0, err
	}

	switch {
	case strings.HasPrefix(tok, "VRB") && len(tok) > len("VRB"):
		variable := domain.NewObjectBuilder()
		speed, unit := splitMeasure(strings.TrimPrefix(tok, "VRB"))
		variable.SetText("variableWindSpeed", speed)
		variable.SetNonEmpty("variableWindSpeedUom", unit)
		details.Set(variableKey, variable.Build())
		return m + 2, nil

	case tok == "VRB":
		variable, err := variableRange(tokens, m+1, marker)
		if err != nil {
			return 0, err
		}
		details.Set(variableKey, variable.Build())
		return m + 6, nil
	}

	steady, err := windGroup(tok)
	if err != nil {
		return 0, err
	}
	details.Set(marker, steady.Build())

	if m+2 < len(tokens) && tokens[m+2] == "VRB" {
		variable, err := variableRange(tokens, m+2, marker)
		if err != nil {
			return 0, err
		}
		details.Set(variableKey, variable.Build())
		return m + 7, nil
	}
	return m + 2, nil
}

// variableRange reads "VRB BTN <from>/ AND <to>/[speed]" starting at tokens[v].
func variableRange(tokens []string, v int, marker string) (*domain.ObjectBuilder, error) {
	btn, err := at(tokens, v+1, marker+" variable wind BTN")
	if err != nil {
		return nil, err
	}
	from, err := at(tokens, v+2, marker+" variable wind lower bound")
	if err != nil {
		return nil, err
	}
	and, err := at(tokens, v+3, marker+" variable wind AND")
	if err != nil {
		return nil, err
	}
	to, err := at(tokens, v+4, marker+" variable wind upper bound")
	if err != nil {
		return nil, err
	}
	if btn != "BTN" || and != "AND" {
		return nil, fmt.Errorf("%w: %s variable wind: want VRB BTN x AND y, got VRB %s %s %s %s",
			domain.ErrParse, marker, btn, from, and, to)
	}

	b := domain.NewObjectBuilder()
	b.SetText("variableWindDirectionFrom", strings.TrimSuffix(from, "/"))
	toDir, speedPart, _ := strings.Cut(to, "/")
	b.SetText("variableWindDirectionTo", toDir)
	if speedPart != "" {
		speed, unit := splitMeasure(speedPart)
		b.SetText("variableWindSpeed", speed)
		b.SetNonEmpty("variableWindSpeedUom", unit)
	}
	return b, nil
}

// windGroup splits "120/5KT" into direction, speed and unit.
func windGroup(tok string) (*domain.ObjectBuilder, error) {
	dir, rest, ok := strings.Cut(tok, "/")
	if !ok {
		return nil, fmt.Errorf("%w: wind group %q is not direction/speed", domain.ErrParse, tok)
	}
	speed, unit := splitMeasure(rest)

	b := domain.NewObjectBuilder()
	b.SetText("windDirection", dir)
	b.SetText("windSpeed", speed)
	b.SetNonEmpty("windSpeedUom", unit)
	return b, nil
}

func runwayVisibility(text string) (domain.Tree, error) {
	out := domain.NewObjectBuilder()
	for _, tokens := range runwayChunks(text) {
		details := domain.NewObjectBuilder()
		for i := 1; i < len(tokens); i++ {
			marker := tokens[i]
			if !runwayMarkers[marker] {
				continue
			}
			tok, err := at(tokens, i+1, marker+" visibility")
			if err != nil {
				return domain.Tree{}, err
			}
			value, unit := splitMeasure(tok)
			v := domain.NewObjectBuilder()
			v.SetText("visibility", value)
			v.SetNonEmpty("visibilityUom", unit)
			details.Set(marker, v.Build())
			i++
		}
		out.Set("RWY "+tokens[0], details.Build())
	}
	return out.Build(), nil
}
