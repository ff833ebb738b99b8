package fixm_test

import (
	"testing"

	"github.com/couchcryptid/swim-data-etl/internal/decoder/fixm"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const departureXML = `<?xml version="1.0" encoding="UTF-8"?>
<fx:Flight xmlns:fx="http://www.fixm.aero/flight/4.1" xmlns:fb="http://www.fixm.aero/base/4.1">
  <fx:departure actualTimeOfDeparture="2024-05-24T12:31:00Z">
    <fx:aerodrome locationIndicator="WSSS"/>
  </fx:departure>
  <fx:flightIdentification aircraftIdentification="SIA321"/>
  <fx:gufi codeSpace="urn:uuid">2a1b-77</fx:gufi>
  <fx:gufiOriginator name="WSJC"/>
</fx:Flight>`

const flightPlanXML = `<?xml version="1.0" encoding="UTF-8"?>
<fx:Flight xmlns:fx="http://www.fixm.aero/flight/4.1" xmlns:fb="http://www.fixm.aero/base/4.1"
    flightType="SCHEDULED" remarks="DOF/240524">
  <fx:aircraft aircraftAddress="76CCE2" registration="9VSMF" wakeTurbulence="H">
    <fx:capabilities standardCapabilities="STANDARD">
      <fx:communication selectiveCallingCode="ABCD">
        <fx:communicationCapabilityCode>E3</fx:communicationCapabilityCode>
      </fx:communication>
      <fx:navigation>
        <fx:navigationCapabilityCode>GNSS</fx:navigationCapabilityCode>
        <fx:performanceBasedCode>A1</fx:performanceBasedCode>
      </fx:navigation>
    </fx:capabilities>
    <fx:type icaoAircraftTypeDesignator="A359"/>
  </fx:aircraft>
  <fx:arrival>
    <fx:destinationAerodrome locationIndicator="EGLL"/>
  </fx:arrival>
  <fx:departure estimatedOffBlockTime="2024-05-24T14:00:00Z">
    <fx:aerodrome locationIndicator="WSSS"/>
  </fx:departure>
  <fx:filed>
    <fx:routeInformation flightRulesCategory="I" routeText="N0488F350 DCT VJR" totalEstimatedElapsedTime="P0DT13H05M">
      <fx:cruisingLevel><fb:flightLevel uom="FL">350</fb:flightLevel></fx:cruisingLevel>
      <fx:cruisingSpeed uom="KNOTS">488</fx:cruisingSpeed>
      <fx:estimatedElapsedTime elapsedTime="P0DT0H20M"><fx:region>WMFC</fx:region></fx:estimatedElapsedTime>
      <fx:estimatedElapsedTime elapsedTime="P0DT1H40M"/>
    </fx:routeInformation>
    <fx:expandedRoute>
      <fx:element seqNum="1">
        <fx:routePoint designator="VJR"/>
        <fx:routeChange>
          <fx:speed uom="KNOTS">480</fx:speed>
        </fx:routeChange>
        <fx:routeChange>
          <fx:level><fb:flightLevel uom="FL">370</fb:flightLevel></fx:level>
        </fx:routeChange>
      </fx:element>
      <fx:element seqNum="2">
        <fx:routeDesignator>M635</fx:routeDesignator>
      </fx:element>
      <fx:element seqNum="3"/>
    </fx:expandedRoute>
  </fx:filed>
  <fx:flightIdentification aircraftIdentification="SIA322"/>
  <fx:gufi>9f0e-11</fx:gufi>
  <fx:operator><fb:operatingOrganization name="SIA"/></fx:operator>
</fx:Flight>`

func get(t *testing.T, tree domain.Tree, path ...string) string {
	t.Helper()
	v, ok := tree.Path(path...)
	require.True(t, ok, "missing path %v", path)
	return v.Text()
}

func TestDecodeDeparture(t *testing.T) {
	tree, err := fixm.DecodeDeparture([]byte(departureXML))
	require.NoError(t, err)

	assert.Equal(t, "2a1b-77", get(t, tree, "gufi"))
	assert.Equal(t, "WSJC", get(t, tree, "gufiOriginator"))
	assert.Equal(t, "SIA321", get(t, tree, "aircraftIdentification"))
	assert.Equal(t, "WSSS", get(t, tree, "departure", "departureAerodrome"))
	assert.Equal(t, "2024-05-24T12:31:00Z", get(t, tree, "departure", "actualTimeOfDeparture"))

	_, ok := tree.Get("arrival")
	assert.False(t, ok, "absent arrival must be omitted")
}

func TestDecodeFlightPlan(t *testing.T) {
	tree, err := fixm.DecodeFlightPlan([]byte(flightPlanXML))
	require.NoError(t, err)

	assert.Equal(t, "9f0e-11", get(t, tree, "gufi"))
	assert.Equal(t, "SIA322", get(t, tree, "aircraftIdentification"))
	assert.Equal(t, "SCHEDULED", get(t, tree, "flightType"))
	assert.Equal(t, "SIA", get(t, tree, "operator"))
	assert.Equal(t, "DOF/240524", get(t, tree, "remarks"))

	assert.Equal(t, "A359", get(t, tree, "aircraft", "aircraftType"))
	assert.Equal(t, "E3", get(t, tree, "aircraft", "capabilities", "communication", "communicationCapabilityCode"))
	assert.Equal(t, "A1", get(t, tree, "aircraft", "capabilities", "navigation", "performanceBasedCode"))
	_, ok := tree.Path("aircraft", "capabilities", "surveillance")
	assert.False(t, ok)
	_, ok = tree.Path("aircraft", "aircraftApproachCategory")
	assert.False(t, ok)

	assert.Equal(t, "EGLL", get(t, tree, "arrival", "destinationAerodrome"))
	assert.Equal(t, "WSSS", get(t, tree, "departure", "departureAerodrome"))
	assert.Equal(t, "2024-05-24T14:00:00Z", get(t, tree, "departure", "estimatedOffBlockTime"))

	route := []string{"filed", "routeInformation"}
	assert.Equal(t, "N0488F350 DCT VJR", get(t, tree, append(route, "routeText")...))
	assert.Equal(t, "350", get(t, tree, append(route, "cruisingLevel", "value")...))
	assert.Equal(t, "FL", get(t, tree, append(route, "cruisingLevel", "uom")...))
	assert.Equal(t, "488", get(t, tree, append(route, "cruisingSpeed", "value")...))
	assert.Equal(t, "KNOTS", get(t, tree, append(route, "cruisingSpeed", "uom")...))
	assert.Equal(t, "WMFC", get(t, tree, append(route, "estimatedElapsedTime", "P0DT0H20M", "region")...))
	assert.Equal(t, "unknown", get(t, tree, append(route, "estimatedElapsedTime", "P0DT1H40M", "region")...))

	elements, ok := tree.Path("filed", "element")
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, elements.Keys(), "empty route elements are dropped")
	assert.Equal(t, "VJR", get(t, elements, "1", "routePoint"))
	assert.Equal(t, "480", get(t, elements, "1", "speedChange", "value"))
	assert.Equal(t, "370", get(t, elements, "1", "flightLevelChange", "value"))
	assert.Equal(t, "M635", get(t, elements, "2", "routeDesignator"))
}

func TestDecoders_SameFamilyDifferentKeySets(t *testing.T) {
	dep, err := fixm.DecodeDeparture([]byte(flightPlanXML))
	require.NoError(t, err)
	fpl, err := fixm.DecodeFlightPlan([]byte(flightPlanXML))
	require.NoError(t, err)

	assert.NotEqual(t, dep.Keys(), fpl.Keys())
	_, ok := dep.Get("filed")
	assert.False(t, ok)
}

func TestDecode_Errors(t *testing.T) {
	for _, decode := range []func([]byte) (domain.Tree, error){fixm.DecodeDeparture, fixm.DecodeFlightPlan} {
		_, err := decode([]byte("<fx:Flight><unclosed></fx:Flight>"))
		assert.ErrorIs(t, err, domain.ErrParse)

		_, err = decode([]byte("   "))
		assert.ErrorIs(t, err, domain.ErrMissingField)
	}
}
