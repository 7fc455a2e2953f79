package census

import (
	"math"
	"net"
	"strconv"
	"strings"
)

// ValidIPv4 reports whether the string is a syntactically valid
// dotted-quad IPv4 address. IPv6 forms, including IPv4-mapped ones,
// are rejected: the snapshot is keyed by the exact dotted-quad text.
func ValidIPv4(ip string) bool {
	if strings.Count(ip, ".") != 3 || strings.Contains(ip, ":") {
		return false
	}

	parsed := net.ParseIP(ip)

	return parsed != nil && parsed.To4() != nil
}

// NewCustomerInfo derives the customer half of the merge input.
// attrConfig maps upstream additional-attribute keys to output keys;
// attributes which are absent or empty upstream are omitted, not
// defaulted.
func NewCustomerInfo(customer Customer, attrConfig map[string]string) CustomerInfo {
	info := CustomerInfo{
		ID:              customer.ID,
		Name:            customer.Name,
		Status:          ParseStatus(customer.Status),
		Phone:           customer.Phone,
		Email:           customer.Email,
		AddressFallback: joinAddress(customer.Street, customer.City),
	}

	info.LatFallback, info.LngFallback = parseGPS(customer.GPS)

	for upstreamKey, outputKey := range attrConfig {
		if value := customer.AdditionalAttributes[upstreamKey]; value != "" {
			if info.Custom == nil {
				info.Custom = make(map[string]string)
			}

			info.Custom[outputKey] = value
		}
	}

	return info
}

// Normalize merges one customer and one of its services into a
// canonical record. The second return value is false when the service
// is not eligible: no IPv4, invalid IPv4, or a status outside of
// active/stopped. Pure function of its inputs.
func Normalize(customer CustomerInfo, service Service) (ServiceRecord, bool) {
	if service.IPv4 == "" || !ValidIPv4(service.IPv4) {
		return ServiceRecord{}, false
	}

	status := ParseStatus(service.Status)
	if status != StatusActive && status != StatusStopped {
		return ServiceRecord{}, false
	}

	lat, lng, ok := parseMarker(service.Geo.Marker)
	if !ok {
		lat, lng = customer.LatFallback, customer.LngFallback
	}

	address := service.Geo.Address
	if address == "" {
		address = customer.AddressFallback
	}

	rv := ServiceRecord{
		CustomerID:         customer.ID,
		CustomerName:       customer.Name,
		CustomerStatus:     customer.Status,
		CustomerPhone:      customer.Phone,
		CustomerEmail:      customer.Email,
		ServiceID:          service.ID,
		ServiceStatus:      status,
		ServiceIPv4:        service.IPv4,
		ServiceAddress:     address,
		ServiceDescription: service.Description,
		ServiceLatitude:    lat,
		ServiceLongitude:   lng,
	}

	if len(customer.Custom) > 0 {
		rv.Custom = make(map[string]string, len(customer.Custom))

		for k, v := range customer.Custom {
			rv.Custom[k] = v
		}
	}

	return rv, true
}

// parseMarker parses a service location marker. Coordinates are used
// only when the string splits into exactly two finite numeric tokens.
func parseMarker(marker string) (float64, float64, bool) {
	parts := strings.Split(marker, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}

	lat, latOk := parseCoordinate(parts[0])
	lng, lngOk := parseCoordinate(parts[1])

	if !latOk || !lngOk {
		return 0, 0, false
	}

	return lat, lng, true
}

// parseGPS parses a customer-level "lat,lng" string. Unlike a service
// marker, each token degrades to 0.0 independently.
func parseGPS(gps string) (float64, float64) {
	parts := strings.Split(gps, ",")
	if len(parts) < 2 {
		return 0, 0
	}

	lat, _ := parseCoordinate(parts[0])
	lng, _ := parseCoordinate(parts[1])

	return lat, lng
}

// parseCoordinate rejects NaN and infinities along with garbage text.
// strconv accepts those tokens but the snapshot is JSON and
// encoding/json refuses to marshal non-finite floats, so a single
// such coordinate would fail every publish.
func parseCoordinate(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return value, true
}

func joinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))

	for _, v := range parts {
		if vv := strings.TrimSpace(v); vv != "" {
			kept = append(kept, vv)
		}
	}

	return strings.Join(kept, ", ")
}
