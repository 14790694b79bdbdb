package review

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/domain/listing"
	"github.com/bookyourstay/stay-api/internal/middleware"
	"github.com/bookyourstay/stay-api/internal/pkg/errorhandler"
	"github.com/bookyourstay/stay-api/internal/pkg/response"
	"github.com/bookyourstay/stay-api/internal/pkg/storage"
	"github.com/bookyourstay/stay-api/internal/pkg/validator"
)

// Handler handles review HTTP requests.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /reviews
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}

	in := AddInput{
		ReservationID: uuid.MustParse(req.ReservationID),
		Rating:        req.Rating,
		Comment:       req.Comment,
		Recommends:    req.Recommends,
	}
	if req.ListingID != "" {
		in.ListingID = uuid.MustParse(req.ListingID)
	}

	rev, err := h.service.AddReview(r.Context(), middleware.GetAccountID(r.Context()), in)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.Created(w, rev)
}

// Get handles GET /reviews/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	rev, err := h.service.Get(r.Context(), id)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, rev)
}

// EditComment handles PATCH /reviews/{id}
func (h *Handler) EditComment(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	var req EditCommentRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}

	rev, err := h.service.EditComment(r.Context(), id, middleware.GetAccountID(r.Context()), req.Comment)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, rev)
}

// Respond handles POST /reviews/{id}/response
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	var req RespondRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}

	rev, err := h.service.Respond(r.Context(), id, req.Response)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, rev)
}

// AddPhoto handles POST /reviews/{id}/photos (multipart field "photo")
func (h *Handler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		response.BadRequest(w, "photo file is required")
		return
	}
	defer file.Close()

	rev, err := h.service.AddPhoto(r.Context(), id, middleware.GetAccountID(r.Context()), file)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.Created(w, rev)
}

// Featured handles GET /reviews/featured
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	listingID := uuid.Nil
	if raw := r.URL.Query().Get("listing_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid listing ID")
			return
		}
		listingID = id
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	reviews, err := h.service.Featured(r.Context(), listingID, limit)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, reviews)
}

// ListByListing handles GET /listings/{id}/reviews?verified=&page=&limit=
func (h *Handler) ListByListing(w http.ResponseWriter, r *http.Request) {
	id, ok := listing.ListingID(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	verified := query.Get("verified") == "true"
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	reviews, err := h.service.ListByListing(r.Context(), id, verified)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	total := len(reviews)
	from := min((page-1)*limit, total)
	to := min(from+limit, total)
	response.WithMeta(w, reviews[from:to], response.NewMeta(total, page, limit))
}

// Summary handles GET /listings/{id}/reviews/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := listing.ListingID(w, r)
	if !ok {
		return
	}
	sum, err := h.service.Summary(r.Context(), id)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, sum)
}

func reviewID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid review ID")
		return uuid.Nil, false
	}
	return id, true
}

// Routes returns review router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public routes
	r.Get("/featured", h.Featured)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Patch("/{id}", h.EditComment)
		r.Post("/{id}/photos", h.AddPhoto)

		r.With(middleware.RequireAdmin()).Post("/{id}/response", h.Respond)
	})

	return r
}

// Register attaches the listing review endpoints to the listing router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/{id}/reviews", h.ListByListing)
	r.Get("/{id}/reviews/summary", h.Summary)
}
