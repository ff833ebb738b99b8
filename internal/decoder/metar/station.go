package metar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

var lineBreaks = regexp.MustCompile(`\n+`)

// runwayParser fills one runway from the tokens of a line beginning with RWY.
type runwayParser func(tokens []string, rw *runway) error

// runway collects the station grammar output for one runway designator.
type runway struct {
	wind       *domain.ObjectBuilder
	variable   *domain.ObjectBuilder
	visibility string
}

func (r *runway) tree() domain.Tree {
	b := domain.NewObjectBuilder()
	b.SetObject("wind", r.wind)
	b.SetObject("variableWind", r.variable)
	b.SetNonEmpty("visibility", r.visibility)
	return b.Build()
}

type runwaySet struct {
	order []string
	byID  map[string]*runway
}

func (s *runwaySet) get(id string) *runway {
	if s.byID == nil {
		s.byID = make(map[string]*runway)
	}
	rw, ok := s.byID[id]
	if !ok {
		rw = &runway{wind: domain.NewObjectBuilder(), variable: domain.NewObjectBuilder()}
		s.byID[id] = rw
		s.order = append(s.order, id)
	}
	return rw
}

func (s *runwaySet) tree() domain.Tree {
	b := domain.NewObjectBuilder()
	for _, id := range s.order {
		b.Set(id, s.byID[id].tree())
	}
	return b.Build()
}

// stationHeader reads line 0 of a station report into b and returns the
// remaining lines. The runways key is reserved so it keeps its position after
// the header; the caller fills it once every line has been read.
func stationHeader(report string, b *domain.ObjectBuilder) ([]string, error) {
	lines := lineBreaks.Split(strings.TrimSpace(report), -1)
	if err := basic(strings.Fields(lines[0]), b); err != nil {
		return nil, err
	}
	b.Set("runways", domain.EmptyObject())
	return lines[1:], nil
}

// runwayLine reads the designator of a line starting with RWY and hands the
// tokens to parse. Other lines are ignored.
func runwayLine(tokens []string, runways *runwaySet, parse runwayParser) error {
	if tokens[0] != "RWY" {
		return nil
	}
	id, err := at(tokens, 1, "runway designator")
	if err != nil {
		return err
	}
	if err := parse(tokens, runways.get(id)); err != nil {
		return fmt.Errorf("runway %s: %w", id, err)
	}
	return nil
}

// visibilityGroup reads "VIS [RWY id] <marker> <value>..." keeping only the
// given markers. Without an explicit runway the line's own RWY is used.
func visibilityGroup(tokens []string, runways *runwaySet, markers map[string]bool) error {
	v := indexOf(tokens, "VIS")
	if v < 0 {
		return nil
	}
	span := tokens[v+1:]
	var id string
	switch r := indexOf(span, "RWY"); {
	case r >= 0:
		var err error
		if id, err = at(span, r+1, "visibility runway designator"); err != nil {
			return err
		}
	case tokens[0] == "RWY":
		id = tokens[1]
	default:
		return fmt.Errorf("%w: visibility without runway", domain.ErrParse)
	}
	vis, err := markerValues(span, markers)
	if err != nil {
		return err
	}
	runways.get(id).visibility = vis
	return nil
}

// markerValues renders "TDZ 10KM MID 9KM" from every wanted marker in tokens.
func markerValues(tokens []string, markers map[string]bool) (string, error) {
	var parts []string
	for i := 0; i < len(tokens); i++ {
		if !markers[tokens[i]] {
			continue
		}
		value, err := at(tokens, i+1, tokens[i]+" visibility")
		if err != nil {
			return "", err
		}
		parts = append(parts, tokens[i]+" "+value)
		i++
	}
	return strings.Join(parts, " "), nil
}

// cloudGroup reads "CLD <amount> <height>".
func cloudGroup(tokens []string, b *domain.ObjectBuilder) error {
	if tokens[0] != "CLD" {
		return nil
	}
	amount, err := at(tokens, 1, "cloud amount")
	if err != nil {
		return err
	}
	height, err := at(tokens, 2, "cloud height")
	if err != nil {
		return err
	}
	b.SetText("cloudCover", amount+" at "+height)
	return nil
}

// temperatureGroup reads "T<temp> DP<dew>".
func temperatureGroup(tokens []string, b *domain.ObjectBuilder) error {
	if !temperatureRe.MatchString(tokens[0]) {
		return nil
	}
	b.SetText("temperature", celsius(tokens[0], "T"))
	dew, err := at(tokens, 1, "dew point")
	if err != nil {
		return err
	}
	b.SetText("dewPoint", celsius(dew, "DP"))
	return nil
}

// pressureGroup reads "QNH <value>" or "QNH<value>" anywhere on the line.
func pressureGroup(tokens []string, b *domain.ObjectBuilder) error {
	for i, tok := range tokens {
		switch {
		case tok == "QNH":
			value, err := at(tokens, i+1, "QNH value")
			if err != nil {
				return err
			}
			b.SetText("pressure", hectopascal(value))
		case strings.HasPrefix(tok, "QNH") && len(tok) > len("QNH"):
			b.SetText("pressure", hectopascal(tok))
		}
	}
	return nil
}

// trendGroup reads "TREND <value>" anywhere on the line.
func trendGroup(tokens []string, b *domain.ObjectBuilder) error {
	if i := indexOf(tokens, "TREND"); i >= 0 {
		value, err := at(tokens, i+1, "trend")
		if err != nil {
			return err
		}
		b.SetText("trend", value)
	}
	return nil
}

// joinAt joins tokens[i] and tokens[j] with sep, failing if either is missing.
func joinAt(tokens []string, i, j int, sep, what string) (string, error) {
	a, err := at(tokens, i, what)
	if err != nil {
		return "", err
	}
	z, err := at(tokens, j, what)
	if err != nil {
		return "", err
	}
	return a + sep + z, nil
}
