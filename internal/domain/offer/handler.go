package offer

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/middleware"
	"github.com/bookyourstay/stay-api/internal/pkg/errorhandler"
	"github.com/bookyourstay/stay-api/internal/pkg/response"
	"github.com/bookyourstay/stay-api/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /offers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Status: Status(r.URL.Query().Get("status"))}
	if raw := r.URL.Query().Get("listing_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid listing ID")
			return
		}
		filter.ListingID = id
	}

	offers, err := h.service.List(r.Context(), filter)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, offers)
}

// Get handles GET /offers/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := offerID(w, r)
	if !ok {
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, o)
}

// GetByCode handles GET /offers/code/{code}
func (h *Handler) GetByCode(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, o)
}

// Create handles POST /offers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOfferRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}

	o, err := h.service.Create(r.Context(), middleware.GetAccountID(r.Context()), &req)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.Created(w, o)
}

// Update handles PUT /offers/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := offerID(w, r)
	if !ok {
		return
	}
	var req UpdateOfferRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}

	o, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, o)
}

// UpdateStatus handles PATCH /offers/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := offerID(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}

	o, err := h.service.SetStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, o)
}

// Apply handles POST /offers/{id}/apply
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	id, ok := offerID(w, r)
	if !ok {
		return
	}
	var req ApplyOfferRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}
	listingID := uuid.Nil
	if req.ListingID != "" {
		listingID = uuid.MustParse(req.ListingID)
	}

	final, o, err := h.service.Apply(r.Context(), id, listingID, req.Price)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}

	resp := ApplyOfferResponse{
		OfferID:    o.ID.String(),
		Price:      req.Price,
		Discount:   req.Price - final,
		FinalPrice: final,
	}
	if o.MaxUses > 0 {
		left := o.MaxUses - o.UseCount
		resp.UsesLeft = &left
	}
	response.OK(w, resp)
}

func offerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid offer ID")
		return uuid.Nil, false
	}
	return id, true
}

// Routes returns offer router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public routes
	r.Get("/", h.List)
	r.Get("/code/{code}", h.GetByCode)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/{id}/apply", h.Apply)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Patch("/{id}/status", h.UpdateStatus)
		})
	})

	return r
}
