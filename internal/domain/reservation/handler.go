package reservation

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/domain/listing"
	"github.com/bookyourstay/stay-api/internal/middleware"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
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

// Create handles POST /reservations
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}

	start, _ := validator.ParseDate(req.Start)
	end, _ := validator.ParseDate(req.End)
	res, err := h.service.Create(r.Context(), middleware.GetAccountID(r.Context()), CreateInput{
		ListingID: uuid.MustParse(req.ListingID),
		Start:     start,
		End:       end,
		Guests:    req.Guests,
		Notes:     req.Notes,
	})
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.Created(w, res)
}

// List handles GET /reservations. Without listing_id it returns the
// caller's own stays; with it, the bookings of a listing the caller owns.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var (
		items []*Reservation
		err   error
	)
	if raw := query.Get("listing_id"); raw != "" {
		listingID, perr := uuid.Parse(raw)
		if perr != nil {
			response.BadRequest(w, "Invalid listing ID")
			return
		}
		owns, oerr := h.ownsListing(ctx, listingID)
		if oerr != nil {
			errorhandler.HandleDomainError(ctx, w, oerr)
			return
		}
		if !owns {
			response.Forbidden(w, "Only the listing owner can see its reservations")
			return
		}
		items, err = h.service.ListByListing(ctx, listingID)
	} else {
		items, err = h.service.ListByGuest(ctx, middleware.GetAccountID(ctx))
	}
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err)
		return
	}

	if status := Status(query.Get("status")); status != "" {
		filtered := items[:0]
		for _, res := range items {
			if res.Status == status {
				filtered = append(filtered, res)
			}
		}
		items = filtered
	}

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	total := len(items)
	from := (page - 1) * limit
	if from > total {
		from = total
	}
	to := from + limit
	if to > total {
		to = total
	}
	response.WithMeta(w, items[from:to], response.NewMeta(total, page, limit))
}

// Get handles GET /reservations/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	res, ok := h.load(w, r)
	if !ok {
		return
	}
	if !h.canView(w, r, res) {
		return
	}
	response.OK(w, res)
}

// Invoice handles GET /reservations/{id}/invoice. format=text returns the
// same document that is attached to the confirmation notice.
func (h *Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	res, ok := h.load(w, r)
	if !ok || !h.canView(w, r, res) {
		return
	}
	inv, err := h.service.Invoice(r.Context(), res.ID)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		att := inv.Attachment()
		w.Header().Set("Content-Type", att.ContentType)
		w.Header().Set("Content-Disposition", `inline; filename="`+att.Filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(att.Data)
		return
	}
	response.OK(w, inv)
}

// Cancel handles POST /reservations/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	res, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if res.GuestID != middleware.GetAccountID(ctx) && middleware.GetRole(ctx) != "admin" {
		response.Forbidden(w, "Only the guest can cancel this reservation")
		return
	}

	var req CancelReservationRequest
	if r.ContentLength != 0 {
		if err := response.DecodeJSON(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
		if errs := validator.Validate(&req); errs != nil {
			errorhandler.HandleValidation(ctx, w, errs)
			return
		}
	}

	res, err := h.service.Cancel(ctx, res.ID, req.Reason)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err)
		return
	}
	response.OK(w, res)
}

// Complete handles POST /reservations/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	res, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	owns, err := h.ownsListing(ctx, res.ListingID)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err)
		return
	}
	if !owns {
		response.Forbidden(w, "Only the listing owner can complete this reservation")
		return
	}

	res, err = h.service.Complete(ctx, res.ID)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err)
		return
	}
	response.OK(w, res)
}

// Availability handles GET /listings/{id}/availability?start=&end=
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	id, ok := listing.ListingID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if _, err := h.service.listings.Get(ctx, id); err != nil {
		errorhandler.HandleDomainError(ctx, w, err)
		return
	}

	resp := AvailabilityResponse{ListingID: id.String()}
	query := r.URL.Query()
	if query.Get("start") != "" || query.Get("end") != "" {
		start, err1 := validator.ParseDate(query.Get("start"))
		end, err2 := validator.ParseDate(query.Get("end"))
		if err1 != nil || err2 != nil || !end.After(start) {
			response.BadRequest(w, "start and end must be YYYY-MM-DD dates with end after start")
			return
		}
		free, err := h.service.checker.IsAvailable(ctx, id, start, end)
		if err != nil {
			errorhandler.HandleDomainError(ctx, w, err)
			return
		}
		resp.Start, resp.End, resp.Available = start.Format(clock.DateLayout), end.Format(clock.DateLayout), &free
	}

	booked, err := h.service.checker.BookedRanges(ctx, id, clock.Today(h.service.clock))
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err)
		return
	}
	resp.Booked = booked
	response.OK(w, resp)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Reservation, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid reservation ID")
		return nil, false
	}
	res, err := h.service.Get(r.Context(), id)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return nil, false
	}
	return res, true
}

// canView allows the guest, the listing owner and admins; anyone else gets 403.
func (h *Handler) canView(w http.ResponseWriter, r *http.Request, res *Reservation) bool {
	ctx := r.Context()
	if res.GuestID == middleware.GetAccountID(ctx) {
		return true
	}
	owns, err := h.ownsListing(ctx, res.ListingID)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err)
		return false
	}
	if !owns {
		response.Forbidden(w, "Access denied")
		return false
	}
	return true
}

// ownsListing reports whether the caller owns the listing or is an admin.
func (h *Handler) ownsListing(ctx context.Context, listingID uuid.UUID) (bool, error) {
	if middleware.GetRole(ctx) == "admin" {
		return true, nil
	}
	l, err := h.service.listings.Get(ctx, listingID)
	if err != nil {
		return false, err
	}
	return l.OwnerID == middleware.GetAccountID(ctx), nil
}

// Routes returns reservation router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/invoice", h.Invoice)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/complete", h.Complete)

	return r
}

// Register attaches the availability endpoint to the listing router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/{id}/availability", h.Availability)
}
