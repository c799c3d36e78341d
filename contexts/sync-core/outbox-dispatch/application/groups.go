package application

import (
	"encoding/json"
	"strings"
)

// GroupsForEvent derives the live-subscriber groups interested in an event
// from its type tag and, where present, patient/tenant identifiers inside
// the payload. Admins observe everything; role groups follow the event type
// family; entity-scoped groups follow identifiers.
func GroupsForEvent(eventType string, payload json.RawMessage) []string {
	groups := []string{"admin"}

	switch {
	case strings.HasPrefix(eventType, "Lab"):
		groups = append(groups, "lab")
	case strings.HasPrefix(eventType, "Prescription"),
		strings.HasPrefix(eventType, "Drug"),
		strings.HasPrefix(eventType, "Pharmacy"):
		groups = append(groups, "pharmacy")
	}

	if id := payloadID(payload, "patient_id", "patientId"); id != "" {
		groups = append(groups, "patient-"+id)
	}
	if id := payloadID(payload, "tenant_id", "tenantId"); id != "" {
		groups = append(groups, "tenant-"+id)
	}
	return groups
}

func payloadID(payload json.RawMessage, keys ...string) string {
	if len(payload) == 0 {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return ""
	}
	for _, key := range keys {
		if value, ok := fields[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
