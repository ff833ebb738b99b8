// Package metar decodes MET report coded text. Three grammars are provided:
// a generic keyword-delimited grammar and two line-oriented station grammars
// (WSSS and WSSL). They are deliberately independent; the station grammars
// locate values by fixed token offsets that do not hold for the generic form.
package metar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/couchcryptid/swim-data-etl/internal/decoder/envelope"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// Keys shared by every grammar.
const (
	KeyID         = "id"
	KeyReportType = "reportType"
	KeyStation    = "station"
	KeyDateTime   = "dateTime"
)

// temperatureRe matches a temperature group such as T25.
var temperatureRe = regexp.MustCompile(`^T\d+$`)

// Grammar decodes the report text into b.
type Grammar func(report string, b *domain.ObjectBuilder) error

// Decode runs the generic grammar.
func Decode(payload []byte) (domain.Tree, error) { return decodeWith(payload, parseGeneric) }

// DecodeWSSS runs the Singapore Changi station grammar.
func DecodeWSSS(payload []byte) (domain.Tree, error) { return decodeWith(payload, parseWSSS) }

// DecodeWSSL runs the Seletar station grammar.
func DecodeWSSL(payload []byte) (domain.Tree, error) { return decodeWith(payload, parseWSSL) }

// decodeWith accepts either bare report text or the JSON envelope whose
// content value is the report text. Enveloped reports get the envelope id as
// their first key.
func decodeWith(payload []byte, grammar Grammar) (domain.Tree, error) {
	b := domain.NewObjectBuilder()
	report := string(payload)

	if envelope.Looks(payload) {
		env, err := envelope.Decode(payload)
		if err != nil {
			return domain.Tree{}, err
		}
		b.SetText(KeyID, env.ID)
		report = env.Content
	}

	if err := grammar(report, b); err != nil {
		return domain.Tree{}, err
	}
	return b.Build(), nil
}

// basic reads report type, station and day-time stamp from the first three tokens.
func basic(tokens []string, b *domain.ObjectBuilder) error {
	if len(tokens) < 3 {
		return fmt.Errorf("%w: report header needs type, station and time, got %d tokens", domain.ErrMissingField, len(tokens))
	}
	b.SetText(KeyReportType, tokens[0])
	b.SetText(KeyStation, tokens[1])
	b.SetText(KeyDateTime, tokens[2])
	return nil
}

// at returns tokens[i] or a parse error naming what was expected there.
func at(tokens []string, i int, what string) (string, error) {
	if i < 0 || i >= len(tokens) {
		return "", fmt.Errorf("%w: %s expected at token %d of %d", domain.ErrParse, what, i, len(tokens))
	}
	return tokens[i], nil
}

func indexOf(tokens []string, s string) int {
	for i, tok := range tokens {
		if tok == s {
			return i
		}
	}
	return -1
}

// splitMeasure separates a value from its trailing unit at the last digit,
// e.g. "10KM" -> ("10", "KM"), "05G15KT" -> ("05G15", "KT").
func splitMeasure(tok string) (value, unit string) {
	last := strings.LastIndexAny(tok, "0123456789")
	if last < 0 {
		return "", tok
	}
	return tok[:last+1], tok[last+1:]
}

func celsius(tok, prefix string) string {
	return strings.TrimPrefix(tok, prefix) + "°C"
}

func hectopascal(tok string) string {
	return strings.Replace(strings.TrimPrefix(tok, "QNH"), "HPA", " hPa", 1)
}
