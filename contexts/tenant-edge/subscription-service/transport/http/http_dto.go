package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ChangeStatusRequest struct {
	Plan      string     `json:"plan,omitempty"`
	Status    string     `json:"status"`
	StartAt   *time.Time `json:"start_at,omitempty"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	RenewalAt *time.Time `json:"renewal_at,omitempty"`
}

type SubscriptionResponse struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenant_id"`
	Plan      string     `json:"plan,omitempty"`
	Status    string     `json:"status"`
	StartAt   *time.Time `json:"start_at,omitempty"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	RenewalAt *time.Time `json:"renewal_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type TenantStatusResponse struct {
	TenantID string `json:"tenant_id"`
	Allowed  bool   `json:"allowed"`
}
