package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterNodeRequest struct {
	Name        string `json:"name"`
	CallbackURL string `json:"callback_url"`
}

type NodeResponse struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	CallbackURL string    `json:"callback_url"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegisterNodeResponse carries the plaintext secret exactly once, at
// registration or rotation. It is never retrievable afterwards.
type RegisterNodeResponse struct {
	Node   NodeResponse `json:"node"`
	Secret string       `json:"secret"`
}

type NodeListResponse struct {
	Nodes []NodeResponse `json:"nodes"`
}
