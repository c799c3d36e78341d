package application

import (
	"encoding/json"
	"testing"
)

func TestGroupsForEvent(t *testing.T) {
	cases := []struct {
		name      string
		eventType string
		payload   string
		want      []string
	}{
		{
			name:      "admin always included",
			eventType: "InvoicePaid",
			payload:   `{}`,
			want:      []string{"admin"},
		},
		{
			name:      "lab events reach lab group",
			eventType: "LabResultReady",
			payload:   `{"patient_id":"p1"}`,
			want:      []string{"admin", "lab", "patient-p1"},
		},
		{
			name:      "pharmacy family",
			eventType: "DrugStockLow",
			payload:   `{}`,
			want:      []string{"admin", "pharmacy"},
		},
		{
			name:      "camel case identifiers honored",
			eventType: "PrescriptionCreated",
			payload:   `{"patientId":"p2","tenantId":"t1"}`,
			want:      []string{"admin", "pharmacy", "patient-p2", "tenant-t1"},
		},
		{
			name:      "malformed payload falls back to type routing",
			eventType: "LabOrderCreated",
			payload:   `not json`,
			want:      []string{"admin", "lab"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GroupsForEvent(tc.eventType, json.RawMessage(tc.payload))
			if len(got) != len(tc.want) {
				t.Fatalf("groups = %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("groups = %v, want %v", got, tc.want)
				}
			}
		})
	}
}
