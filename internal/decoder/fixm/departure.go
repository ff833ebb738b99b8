package fixm

import (
	"github.com/couchcryptid/swim-data-etl/internal/decoder/xmldom"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// DecodeDeparture extracts flight identity, the departure aerodrome and
// actual time of departure, and the destination aerodrome.
func DecodeDeparture(payload []byte) (domain.Tree, error) {
	root, err := parse(payload)
	if err != nil {
		return domain.Tree{}, err
	}
	// Departure lookups search the whole document, the root element included.
	doc := &xmldom.Element{Children: []*xmldom.Element{root}}

	flight := domain.NewObjectBuilder()
	text(flight, "gufi", fx(doc, "gufi"))
	attr(flight, "gufiOriginator", fx(doc, "gufiOriginator"), "name")
	attr(flight, "aircraftIdentification", fx(doc, "flightIdentification"), "aircraftIdentification")

	departure := domain.NewObjectBuilder()
	attr(departure, "departureAerodrome", fx(doc, "aerodrome"), "locationIndicator")
	attr(departure, "actualTimeOfDeparture", fx(doc, "departure"), "actualTimeOfDeparture")
	flight.SetObject("departure", departure)

	arrival := domain.NewObjectBuilder()
	attr(arrival, "destinationAerodrome", fx(doc, "destinationAerodrome"), "locationIndicator")
	flight.SetObject("arrival", arrival)

	return flight.Build(), nil
}
