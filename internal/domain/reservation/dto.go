package reservation

// CreateReservationRequest for POST /reservations
type CreateReservationRequest struct {
	ListingID string `json:"listing_id" validate:"required,uuid"`
	Start     string `json:"start" validate:"required,date"`
	End       string `json:"end" validate:"required,date"`
	Guests    int    `json:"guests" validate:"gte=1,lte=50"`
	Notes     string `json:"notes" validate:"omitempty,max=500"`
}

// CancelReservationRequest for POST /reservations/{id}/cancel
type CancelReservationRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// AvailabilityResponse for GET /listings/{id}/availability
type AvailabilityResponse struct {
	ListingID string      `json:"listing_id"`
	Start     string      `json:"start,omitempty"`
	End       string      `json:"end,omitempty"`
	Available *bool       `json:"available,omitempty"`
	Booked    []DateRange `json:"booked"`
}
