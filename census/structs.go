package census

import (
	"encoding/json"
	"strings"
)

// Status is a canonical customer or service state. Upstream sends
// free-form strings, everything we do not recognize collapses into
// StatusOther.
type Status string

const (
	StatusActive  Status = "active"
	StatusStopped Status = "stopped"
	StatusBlocked Status = "blocked"
	StatusOther   Status = "other"
)

func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active":
		return StatusActive
	case "stopped":
		return StatusStopped
	case "blocked":
		return StatusBlocked
	}

	return StatusOther
}

// Customer is a raw customer row as the upstream API returns it.
type Customer struct {
	ID                   int64             `json:"id"`
	Name                 string            `json:"name"`
	Status               string            `json:"status"`
	Phone                string            `json:"phone"`
	Email                string            `json:"email"`
	Street               string            `json:"street_1"`
	City                 string            `json:"city"`
	GPS                  string            `json:"gps"`
	AdditionalAttributes map[string]string `json:"additional_attributes"`
}

// Service is a raw internet service row belonging to a customer.
type Service struct {
	ID          int64      `json:"id"`
	Status      string     `json:"status"`
	IPv4        string     `json:"ipv4"`
	Description string     `json:"description"`
	Geo         ServiceGeo `json:"geo"`
}

type ServiceGeo struct {
	Address string `json:"address"`
	// Marker is a "lat,lng" string, e.g. "51.5074, -0.1278".
	Marker string `json:"marker"`
}

// CustomerInfo is the customer half of the merge input. It is derived
// once per customer and never persisted on its own.
type CustomerInfo struct {
	ID     int64
	Name   string
	Status Status
	Phone  string
	Email  string

	// AddressFallback and the coordinate fallbacks are used for
	// services which carry no geo data of their own.
	AddressFallback string
	LatFallback     float64
	LngFallback     float64

	// Custom holds configured additional attributes, already renamed
	// to their output keys.
	Custom map[string]string
}

// ServiceRecord is the persisted, IPv4-indexed unit. Custom attributes
// are flattened into the same JSON object next to the fixed fields.
type ServiceRecord struct {
	CustomerID     int64
	CustomerName   string
	CustomerStatus Status
	CustomerPhone  string
	CustomerEmail  string

	ServiceID          int64
	ServiceStatus      Status
	ServiceIPv4        string
	ServiceAddress     string
	ServiceDescription string
	ServiceLatitude    float64
	ServiceLongitude   float64

	Custom map[string]string
}

type serviceRecordFixed struct {
	CustomerID         int64   `json:"customer_id"`
	CustomerName       string  `json:"customer_name"`
	CustomerStatus     Status  `json:"customer_status"`
	CustomerPhone      string  `json:"customer_phone"`
	CustomerEmail      string  `json:"customer_email"`
	ServiceID          int64   `json:"service_id"`
	ServiceStatus      Status  `json:"service_status"`
	ServiceIPv4        string  `json:"service_ipv4"`
	ServiceAddress     string  `json:"service_address"`
	ServiceDescription string  `json:"service_description"`
	ServiceLatitude    float64 `json:"service_latitude"`
	ServiceLongitude   float64 `json:"service_longitude"`
}

var serviceRecordFixedKeys = []string{
	"customer_id",
	"customer_name",
	"customer_status",
	"customer_phone",
	"customer_email",
	"service_id",
	"service_status",
	"service_ipv4",
	"service_address",
	"service_description",
	"service_latitude",
	"service_longitude",
}

func (s ServiceRecord) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(s.Custom)+len(serviceRecordFixedKeys))

	for k, v := range s.Custom {
		doc[k] = v
	}

	// fixed keys win when a custom attribute was configured with a
	// colliding output name
	doc["customer_id"] = s.CustomerID
	doc["customer_name"] = s.CustomerName
	doc["customer_status"] = s.CustomerStatus
	doc["customer_phone"] = s.CustomerPhone
	doc["customer_email"] = s.CustomerEmail
	doc["service_id"] = s.ServiceID
	doc["service_status"] = s.ServiceStatus
	doc["service_ipv4"] = s.ServiceIPv4
	doc["service_address"] = s.ServiceAddress
	doc["service_description"] = s.ServiceDescription
	doc["service_latitude"] = s.ServiceLatitude
	doc["service_longitude"] = s.ServiceLongitude

	return json.Marshal(doc)
}

func (s *ServiceRecord) UnmarshalJSON(data []byte) error {
	fixed := serviceRecordFixed{}
	if err := json.Unmarshal(data, &fixed); err != nil {
		return err
	}

	raw := map[string]interface{}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, k := range serviceRecordFixedKeys {
		delete(raw, k)
	}

	var custom map[string]string

	if len(raw) > 0 {
		custom = make(map[string]string, len(raw))

		for k, v := range raw {
			if vv, ok := v.(string); ok {
				custom[k] = vv
			}
		}

		if len(custom) == 0 {
			custom = nil
		}
	}

	*s = ServiceRecord{
		CustomerID:         fixed.CustomerID,
		CustomerName:       fixed.CustomerName,
		CustomerStatus:     fixed.CustomerStatus,
		CustomerPhone:      fixed.CustomerPhone,
		CustomerEmail:      fixed.CustomerEmail,
		ServiceID:          fixed.ServiceID,
		ServiceStatus:      fixed.ServiceStatus,
		ServiceIPv4:        fixed.ServiceIPv4,
		ServiceAddress:     fixed.ServiceAddress,
		ServiceDescription: fixed.ServiceDescription,
		ServiceLatitude:    fixed.ServiceLatitude,
		ServiceLongitude:   fixed.ServiceLongitude,
		Custom:             custom,
	}

	return nil
}

// Snapshot is the complete point-in-time table of service records
// keyed by dotted-quad IPv4. It is immutable once built and replaced
// wholesale on each successful export.
type Snapshot map[string]ServiceRecord
