package dto

// TransitionRequest payload for PUT /orders/:id/status.
type TransitionRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// CancelRequest payload for POST /orders/:id/cancel.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// AssignRequest payload for PUT /orders/:id/assign.
type AssignRequest struct {
	StaffID string `json:"staff_id"`
}

// OrderResponse is the order representation returned to the UI.
type OrderResponse struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	FinalAmount     float64  `json:"final_amount"`
	PaymentStatus   string   `json:"payment_status"`
	AssignedStaffID *string  `json:"assigned_staff_id,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	StaffNotes      *string  `json:"staff_notes,omitempty"`
	AllowedNext     []string `json:"allowed_next"`
}
