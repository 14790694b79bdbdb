package review

// CreateReviewRequest for POST /reviews
type CreateReviewRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid"`
	ListingID     string `json:"listing_id" validate:"omitempty,uuid"`
	Rating        int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment       string `json:"comment" validate:"required,max=2000"`
	Recommends    bool   `json:"recommends"`
}

// EditCommentRequest for PATCH /reviews/{id}
type EditCommentRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

// RespondRequest for POST /reviews/{id}/response
type RespondRequest struct {
	Response string `json:"response" validate:"required,max=1000"`
}
