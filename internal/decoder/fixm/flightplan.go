package fixm

import (
	"strconv"

	"github.com/couchcryptid/swim-data-etl/internal/decoder/xmldom"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// DecodeFlightPlan extracts the filed flight plan: identity, operator,
// aircraft and capabilities, aerodromes, route information with cruise
// level/speed and per-region elapsed times, and the route elements keyed by
// sequence number.
func DecodeFlightPlan(payload []byte) (domain.Tree, error) {
	flight, err := parse(payload)
	if err != nil {
		return domain.Tree{}, err
	}

	out := domain.NewObjectBuilder()
	text(out, "gufi", fx(flight, "gufi"))
	attr(out, "aircraftIdentification", fx(flight, "flightIdentification"), "aircraftIdentification")
	attr(out, "flightType", flight, "flightType")
	attr(out, "gufiOriginator", fx(flight, "gufiOriginator"), "name")
	attr(out, "operator", fb(flight, "operatingOrganization"), "name")
	attr(out, "remarks", flight, "remarks")

	out.SetObject("aircraft", aircraft(fx(flight, "aircraft")))

	if el := fx(flight, "arrival"); el != nil {
		arrival := domain.NewObjectBuilder()
		attr(arrival, "destinationAerodrome", fx(el, "destinationAerodrome"), "locationIndicator")
		attr(arrival, "destinationAerodromeAlternate", fx(el, "destinationAerodromeAlternate"), "locationIndicator")
		out.SetObject("arrival", arrival)
	}

	if el := fx(flight, "departure"); el != nil {
		departure := domain.NewObjectBuilder()
		attr(departure, "estimatedOffBlockTime", el, "estimatedOffBlockTime")
		attr(departure, "departureAerodrome", fx(el, "aerodrome"), "locationIndicator")
		out.SetObject("departure", departure)
	}

	if el := fx(flight, "filed"); el != nil {
		filed := domain.NewObjectBuilder()
		filed.SetObject("routeInformation", routeInformation(fx(el, "routeInformation")))
		filed.SetObject("element", routeElements(el))
		out.SetObject("filed", filed)
	}

	return out.Build(), nil
}

func aircraft(el *xmldom.Element) *domain.ObjectBuilder {
	if el == nil {
		return nil
	}
	b := domain.NewObjectBuilder()
	attr(b, "aircraftAddress", el, "aircraftAddress")
	attr(b, "aircraftApproachCategory", el, "aircraftApproachCategory")
	attr(b, "registration", el, "registration")
	attr(b, "wakeTurbulence", el, "wakeTurbulence")
	attr(b, "aircraftType", fx(el, "type"), "icaoAircraftTypeDesignator")
	b.SetObject("capabilities", capabilities(fx(el, "capabilities")))
	return b
}

func capabilities(el *xmldom.Element) *domain.ObjectBuilder {
	if el == nil {
		return nil
	}
	b := domain.NewObjectBuilder()
	attr(b, "standardCapabilities", el, "standardCapabilities")

	if comm := fx(el, "communication"); comm != nil {
		c := domain.NewObjectBuilder()
		attr(c, "otherDatalinkCapabilities", comm, "otherDatalinkCapabilities")
		attr(c, "selectiveCallingCode", comm, "selectiveCallingCode")
		text(c, "communicationCapabilityCode", fx(comm, "communicationCapabilityCode"))
		text(c, "datalinkCommunicationCapabilityCode", fx(comm, "datalinkCommunicationCapabilityCode"))
		b.SetObject("communication", c)
	}

	if nav := fx(el, "navigation"); nav != nil {
		n := domain.NewObjectBuilder()
		attr(n, "otherNavigationCapabilities", nav, "otherNavigationCapabilities")
		text(n, "navigationCapabilityCode", fx(nav, "navigationCapabilityCode"))
		text(n, "performanceBasedCode", fx(nav, "performanceBasedCode"))
		b.SetObject("navigation", n)
	}

	if surv := fx(el, "surveillance"); surv != nil {
		s := domain.NewObjectBuilder()
		attr(s, "otherSurveillanceCapabilities", surv, "otherSurveillanceCapabilities")
		text(s, "surveillanceCapabilityCode", fx(surv, "surveillanceCapabilityCode"))
		b.SetObject("surveillance", s)
	}
	return b
}

func routeInformation(el *xmldom.Element) *domain.ObjectBuilder {
	if el == nil {
		return nil
	}
	b := domain.NewObjectBuilder()
	attr(b, "flightRulesCategory", el, "flightRulesCategory")
	attr(b, "routeText", el, "routeText")
	attr(b, "totalEstimatedElapsedTime", el, "totalEstimatedElapsedTime")
	b.SetObject("cruisingLevel", measure(fb(el, "flightLevel")))
	b.SetObject("cruisingSpeed", measure(fx(el, "cruisingSpeed")))

	elapsed := domain.NewObjectBuilder()
	for _, eet := range el.FindAll(NSFlight, "estimatedElapsedTime") {
		value, _ := eet.Attr("elapsedTime")
		entry := domain.NewObjectBuilder().SetText("elapsedTime", value)
		if region := fx(eet, "region"); region != nil {
			entry.SetText("region", region.Text())
		} else {
			entry.SetText("region", "unknown")
		}
		elapsed.Set(value, entry.Build())
	}
	b.SetObject("estimatedElapsedTime", elapsed)
	return b
}

// routeElements keys each filed route element by its seqNum attribute,
// falling back to its 1-based position. Elements with nothing extracted are dropped.
func routeElements(filed *xmldom.Element) *domain.ObjectBuilder {
	out := domain.NewObjectBuilder()
	for i, el := range filed.FindAll(NSFlight, "element") {
		seq, ok := el.Attr("seqNum")
		if !ok {
			seq = strconv.Itoa(i + 1)
		}

		b := domain.NewObjectBuilder()
		text(b, "routeDesignator", fx(el, "routeDesignator"))
		attr(b, "routePoint", fx(el, "routePoint"), "designator")
		if next := fx(el, "routeDesignatorToNextElement"); next != nil {
			text(b, "standardInstrumentArrival", fx(next, "standardInstrumentArrival"))
		}

		for _, change := range el.FindAll(NSFlight, "routeChange") {
			b.SetObject("speedChange", measure(fx(change, "speed")))
			if level := fx(change, "level"); level != nil {
				b.SetObject("flightLevelChange", measure(fb(level, "flightLevel")))
			}
		}

		out.SetObject(seq, b)
	}
	return out
}
