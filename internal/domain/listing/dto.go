package listing

// CreateListingRequest for POST /listings
type CreateListingRequest struct {
	Name         string   `json:"name" validate:"required,min=3,max=120"`
	City         string   `json:"city" validate:"required,min=2,max=100"`
	Description  string   `json:"description" validate:"omitempty,max=2000"`
	Subtype      string   `json:"subtype" validate:"required,subtype"`
	NightlyRate  int64    `json:"nightly_rate" validate:"gt=0"`
	MaxGuests    int      `json:"max_guests" validate:"gt=0,lte=50"`
	Amenities    []string `json:"amenities" validate:"omitempty,max=30,dive,max=50"`
	HasPool      bool     `json:"has_pool"`
	AllowsEvents bool     `json:"allows_events"`
}

// UpdateListingRequest for PUT /listings/{id}
type UpdateListingRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=3,max=120"`
	City         *string  `json:"city" validate:"omitempty,min=2,max=100"`
	Description  *string  `json:"description" validate:"omitempty,max=2000"`
	NightlyRate  *int64   `json:"nightly_rate" validate:"omitempty,gt=0"`
	MaxGuests    *int     `json:"max_guests" validate:"omitempty,gt=0,lte=50"`
	Amenities    []string `json:"amenities" validate:"omitempty,max=30,dive,max=50"`
	HasPool      *bool    `json:"has_pool"`
	AllowsEvents *bool    `json:"allows_events"`
	Available    *bool    `json:"available"`
}
