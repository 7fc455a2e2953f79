package census_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipcensus/ipcensus/census"
)

func TestServiceRecordMarshalFlattensCustom(t *testing.T) {
	record := census.ServiceRecord{
		CustomerID:     7,
		CustomerStatus: census.StatusActive,
		ServiceID:      42,
		ServiceStatus:  census.StatusActive,
		ServiceIPv4:    "10.0.0.5",
		Custom: map[string]string{
			"contract_number": "C-123",
		},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	doc := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "C-123", doc["contract_number"])
	assert.Equal(t, "10.0.0.5", doc["service_ipv4"])
	assert.Equal(t, "active", doc["service_status"])
	assert.EqualValues(t, 42, doc["service_id"])
}

func TestServiceRecordMarshalFixedKeysWin(t *testing.T) {
	record := census.ServiceRecord{
		ServiceIPv4: "10.0.0.5",
		Custom: map[string]string{
			"service_ipv4": "9.9.9.9",
		},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	doc := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "10.0.0.5", doc["service_ipv4"])
}

func TestServiceRecordUnmarshalRoundTrip(t *testing.T) {
	record := census.ServiceRecord{
		CustomerID:       7,
		CustomerName:     "ACME",
		CustomerStatus:   census.StatusBlocked,
		ServiceID:        42,
		ServiceStatus:    census.StatusStopped,
		ServiceIPv4:      "10.0.0.5",
		ServiceLatitude:  34.0522,
		ServiceLongitude: -118.2437,
		Custom: map[string]string{
			"contract_number": "C-123",
		},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	parsed := census.ServiceRecord{}
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, record, parsed)
}

func TestServiceRecordUnmarshalCompactAndPretty(t *testing.T) {
	compact := `{"service_ipv4":"10.0.0.5","service_status":"active","customer_status":"active","contract_number":"C-123"}`
	pretty := `{
  "contract_number": "C-123",
  "customer_status": "active",
  "service_ipv4": "10.0.0.5",
  "service_status": "active"
}`

	for _, data := range []string{compact, pretty} {
		parsed := census.ServiceRecord{}
		require.NoError(t, json.Unmarshal([]byte(data), &parsed))

		assert.Equal(t, "10.0.0.5", parsed.ServiceIPv4)
		assert.Equal(t, census.StatusActive, parsed.ServiceStatus)
		assert.Equal(t, map[string]string{"contract_number": "C-123"}, parsed.Custom)
	}
}
