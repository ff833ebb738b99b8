// Package mockdata generates synthetic SWIM messages for every decoder
// family. Output is deterministic for a given seed and reference time.
package mockdata

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Destination tags used by generated messages.
const (
	DestDeparture  = "swim.fixm.dep"
	DestFlightPlan = "swim.fixm.fpl"
	DestIWXXM      = "swim.iwxxm.metar"
	DestMETReport  = "swim.met-report"
	DestWSSS       = "swim.met-report.wsss"
	DestWSSL       = "swim.met-report.wssl"
)

var aerodromes = []string{"WSSS", "WSSL", "WMKK", "VTBS", "RPLL", "VHHH", "EGLL", "YSSY", "RJTT"}

var aircraftTypes = []string{"A359", "A388", "B77W", "B789", "A21N", "B38M"}

var runways = []string{"02L", "02C", "20R", "20C", "03", "21"}

// Message is one generated transport message.
type Message struct {
	Destination string `json:"destination"`
	MessageID   string `json:"messageId"`
	Payload     string `json:"payload"`
}

// Generator produces messages from a seeded faker.
type Generator struct {
	faker *gofakeit.Faker
	now   time.Time
}

// New returns a generator seeded with seed. Report times are drawn around now.
func New(seed int64, now time.Time) *Generator {
	return &Generator{faker: gofakeit.New(seed), now: now.UTC()}
}

// Mixed returns n messages cycling through every family and variant.
func (g *Generator) Mixed(n int) []Message {
	makers := []func() Message{g.Departure, g.FlightPlan, g.IWXXM, g.METReport, g.WSSS, g.WSSL}
	out := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, makers[i%len(makers)]())
	}
	return out
}

func (g *Generator) id() string {
	return "urn:uuid:" + g.faker.UUID()
}

func (g *Generator) callsign() string {
	return strings.ToUpper(g.faker.LetterN(3)) + g.faker.Numerify("###")
}

func (g *Generator) aerodrome() string {
	return g.faker.RandomString(aerodromes)
}

func (g *Generator) timeAround() time.Time {
	offset := time.Duration(g.faker.Number(-90, 90)) * time.Minute
	return g.now.Add(offset).Truncate(time.Minute)
}

// Departure returns a FIXM departure message.
func (g *Generator) Departure() Message {
	payload := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<fx:Flight xmlns:fx="http://www.fixm.aero/flight/4.1" xmlns:fb="http://www.fixm.aero/base/4.1">
  <fx:arrival><fx:destinationAerodrome locationIndicator="%s"/></fx:arrival>
  <fx:departure actualTimeOfDeparture="%s"><fx:aerodrome locationIndicator="%s"/></fx:departure>
  <fx:flightIdentification aircraftIdentification="%s"/>
  <fx:gufi codeSpace="urn:uuid">%s</fx:gufi>
  <fx:gufiOriginator name="%s"/>
</fx:Flight>`,
		g.aerodrome(), g.timeAround().Format(time.RFC3339), g.aerodrome(),
		g.callsign(), g.faker.UUID(), g.aerodrome())
	return Message{Destination: DestDeparture, MessageID: g.id(), Payload: payload}
}

// FlightPlan returns a FIXM filed flight plan message.
func (g *Generator) FlightPlan() Message {
	level := g.faker.Number(250, 410) / 10 * 10
	speed := g.faker.Number(420, 510)
	var elements strings.Builder
	for i, n := 1, g.faker.Number(1, 4); i <= n; i++ {
		fmt.Fprintf(&elements, `
      <fx:element seqNum="%d"><fx:routePoint designator="%s"/></fx:element>`,
			i, strings.ToUpper(g.faker.LetterN(5)))
	}

	payload := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<fx:Flight xmlns:fx="http://www.fixm.aero/flight/4.1" xmlns:fb="http://www.fixm.aero/base/4.1" flightType="SCHEDULED">
  <fx:aircraft registration="9V%s" wakeTurbulence="H">
    <fx:type icaoAircraftTypeDesignator="%s"/>
  </fx:aircraft>
  <fx:arrival><fx:destinationAerodrome locationIndicator="%s"/></fx:arrival>
  <fx:departure estimatedOffBlockTime="%s"><fx:aerodrome locationIndicator="%s"/></fx:departure>
  <fx:filed>
    <fx:routeInformation flightRulesCategory="I" routeText="N0%d F%d DCT">
      <fx:cruisingLevel><fb:flightLevel uom="FL">%d</fb:flightLevel></fx:cruisingLevel>
      <fx:cruisingSpeed uom="KNOTS">%d</fx:cruisingSpeed>
    </fx:routeInformation>
    <fx:expandedRoute>%s
    </fx:expandedRoute>
  </fx:filed>
  <fx:flightIdentification aircraftIdentification="%s"/>
  <fx:gufi>%s</fx:gufi>
</fx:Flight>`,
		strings.ToUpper(g.faker.LetterN(3)), g.faker.RandomString(aircraftTypes),
		g.aerodrome(), g.timeAround().Format(time.RFC3339), g.aerodrome(),
		speed, level, level, speed, elements.String(),
		g.callsign(), g.faker.UUID())
	return Message{Destination: DestFlightPlan, MessageID: g.id(), Payload: payload}
}

// IWXXM returns an enveloped IWXXM METAR.
func (g *Generator) IWXXM() Message {
	issued := g.timeAround()
	doc := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<iwxxm:METAR xmlns:iwxxm="http://icao.int/iwxxm/3.0" xmlns:gml="http://www.opengis.net/gml/3.2" gml:id="uuid.%s" reportStatus="NORMAL">
  <iwxxm:issueTime><gml:TimeInstant gml:id="ti-1"><gml:timePosition>%s</gml:timePosition></gml:TimeInstant></iwxxm:issueTime>
  <iwxxm:aerodrome>%s</iwxxm:aerodrome>
  <iwxxm:observation>
    <iwxxm:airTemperature uom="Cel">%d</iwxxm:airTemperature>
    <iwxxm:qnh uom="hPa">%d</iwxxm:qnh>
    <iwxxm:cloud><iwxxm:layer>FEW</iwxxm:layer><iwxxm:layer>SCT</iwxxm:layer></iwxxm:cloud>
  </iwxxm:observation>
</iwxxm:METAR>`,
		g.faker.UUID(), issued.Format(time.RFC3339), g.aerodrome(),
		g.faker.Number(18, 34), g.faker.Number(995, 1025))

	id := g.id()
	return Message{Destination: DestIWXXM, MessageID: id, Payload: envelope(id, base64.StdEncoding.EncodeToString([]byte(doc)))}
}

func envelope(id, value string) string {
	b, _ := json.Marshal(map[string]any{
		"id":         id,
		"properties": map[string]any{"content": map[string]any{"value": value}},
	})
	return string(b)
}

func (g *Generator) stamp() string {
	return g.timeAround().Format("021504") + "Z"
}

// METReport returns a report in the generic keyword grammar.
func (g *Generator) METReport() Message {
	rwy := g.faker.RandomString(runways)
	temp := g.faker.Number(20, 33)
	text := fmt.Sprintf("%s %s %s WIND RWY %s TDZ %03d/%dKT END %03d/%dKT VIS RWY %s TDZ %dKM END %dKM CLD FEW%03d T%d DP%d QNH%dHPA TREND NOSIG",
		g.faker.RandomString([]string{"METAR", "SPECI"}), g.aerodrome(), g.stamp(),
		rwy, g.faker.Number(0, 36)*10, g.faker.Number(1, 25), g.faker.Number(0, 36)*10, g.faker.Number(1, 25),
		rwy, g.faker.Number(5, 10), g.faker.Number(5, 10),
		g.faker.Number(10, 50), temp, temp-g.faker.Number(1, 6), g.faker.Number(995, 1025))
	return Message{Destination: DestMETReport, MessageID: g.id(), Payload: text}
}

// WSSS returns a report in the Changi station layout.
func (g *Generator) WSSS() Message {
	rwy := g.faker.RandomString([]string{"02L", "02C", "20R", "20C"})
	temp := g.faker.Number(24, 33)
	text := fmt.Sprintf(`METAR WSSS %s
RWY %s TDZ %03d/ %02dKT MID %03d/ %02dKT END %03d/ %02dKT
VIS RWY %s TDZ %dKM MID %dKM END %dKM
CLD FEW %03d
T%d DP%d
QNH %dHPA
TREND NOSIG`,
		g.stamp(),
		rwy, g.faker.Number(0, 36)*10, g.faker.Number(1, 25), g.faker.Number(0, 36)*10, g.faker.Number(1, 25),
		g.faker.Number(0, 36)*10, g.faker.Number(1, 25),
		rwy, g.faker.Number(5, 10), g.faker.Number(5, 10), g.faker.Number(5, 10),
		g.faker.Number(10, 50), temp, temp-g.faker.Number(1, 6), g.faker.Number(995, 1025))
	return Message{Destination: DestWSSS, MessageID: g.id(), Payload: text}
}

// WSSL returns a report in the Seletar station layout.
func (g *Generator) WSSL() Message {
	temp := g.faker.Number(24, 33)
	text := fmt.Sprintf(`METAR WSSL %s
RWY 03 TDZ %03d/ %02dKT %03d %03d/ %02dKT %03d %03d AND %03d VIS TDZ %dKM END %dKM
CLD SCT %03d
T%d DP%d
QNH%dHPA TREND NOSIG`,
		g.stamp(),
		g.faker.Number(0, 36)*10, g.faker.Number(1, 25), g.faker.Number(0, 18)*10,
		g.faker.Number(0, 36)*10, g.faker.Number(1, 25), g.faker.Number(0, 18)*10,
		g.faker.Number(19, 36)*10, g.faker.Number(19, 36)*10,
		g.faker.Number(5, 10), g.faker.Number(5, 10),
		g.faker.Number(10, 50), temp, temp-g.faker.Number(1, 6), g.faker.Number(995, 1025))
	return Message{Destination: DestWSSL, MessageID: g.id(), Payload: text}
}
