package offer

// CreateOfferRequest for POST /offers
type CreateOfferRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=80"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Kind        string   `json:"kind" validate:"required,offer_kind"`
	Value       int64    `json:"value" validate:"gt=0"`
	StartsOn    string   `json:"starts_on" validate:"required,date"`
	EndsOn      string   `json:"ends_on" validate:"required,date"`
	ListingIDs  []string `json:"listing_ids" validate:"omitempty,max=100,dive,uuid"`
	MaxUses     int      `json:"max_uses" validate:"gte=0"`
}

// UpdateOfferRequest for PUT /offers/{id}
type UpdateOfferRequest struct {
	Description *string  `json:"description" validate:"omitempty,max=500"`
	EndsOn      *string  `json:"ends_on" validate:"omitempty,date"`
	ListingIDs  []string `json:"listing_ids" validate:"omitempty,max=100,dive,uuid"`
	MaxUses     *int     `json:"max_uses" validate:"omitempty,gte=0"`
}

// UpdateStatusRequest for PATCH /offers/{id}/status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,offer_status"`
}

// ApplyOfferRequest for POST /offers/{id}/apply
type ApplyOfferRequest struct {
	ListingID string `json:"listing_id" validate:"omitempty,uuid"`
	Price     int64  `json:"price" validate:"gt=0"`
}

type ApplyOfferResponse struct {
	OfferID    string `json:"offer_id"`
	Price      int64  `json:"price"`
	Discount   int64  `json:"discount"`
	FinalPrice int64  `json:"final_price"`
	UsesLeft   *int   `json:"uses_left,omitempty"`
}
