package listing

import (
	"errors"
	"net/http"
	"strconv"

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

// List handles GET /listings
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := Filter{
		City:     query.Get("city"),
		Subtype:  Subtype(query.Get("subtype")),
		OnlyOpen: true,
	}
	if filter.Subtype != "" && !filter.Subtype.Valid() {
		response.BadRequest(w, "Invalid subtype")
		return
	}
	if v, err := strconv.Atoi(query.Get("guests")); err == nil && v > 0 {
		filter.Guests = v
	}
	if v, err := strconv.ParseInt(query.Get("max_rate"), 10, 64); err == nil && v > 0 {
		filter.MaxRate = v
	}
	if s, e := query.Get("start"), query.Get("end"); s != "" || e != "" {
		start, err1 := validator.ParseDate(s)
		end, err2 := validator.ParseDate(e)
		if err1 != nil || err2 != nil {
			response.BadRequest(w, "start and end must both be YYYY-MM-DD dates")
			return
		}
		filter.Start, filter.End = start, end
	}

	page, limit := 1, 20
	if v, err := strconv.Atoi(query.Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(query.Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	listings, total, err := h.service.Search(r.Context(), filter, Pagination{Page: page, Limit: limit})
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.WithMeta(w, listings, response.NewMeta(total, page, limit))
}

// Get handles GET /listings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ListingID(w, r)
	if !ok {
		return
	}
	l, err := h.service.Get(r.Context(), id)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, l)
}

// Create handles POST /listings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}

	l, err := h.service.Create(r.Context(), middleware.GetAccountID(r.Context()), &req)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.Created(w, l)
}

// Update handles PUT /listings/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ListingID(w, r)
	if !ok {
		return
	}
	var req UpdateListingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}

	l, err := h.service.Update(r.Context(), id, middleware.GetAccountID(r.Context()), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, l)
}

// Delete handles DELETE /listings/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ListingID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, middleware.GetAccountID(r.Context())); err != nil {
		h.handleError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotListingOwner) {
		response.Forbidden(w, ErrNotListingOwner.Error())
		return
	}
	errorhandler.HandleDomainError(r.Context(), w, err)
}

// ListingID parses the {id} URL parameter.
func ListingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing ID")
		return uuid.Nil, false
	}
	return id, true
}

// Routes returns the listing router. Other domains attach their
// /listings/{id}/... endpoints through extensions.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, extensions ...func(r chi.Router)) chi.Router {
	r := chi.NewRouter()

	// Public routes
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	for _, ext := range extensions {
		ext(r)
	}

	// Owner routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireOwner())
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
