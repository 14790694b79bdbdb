package pricing

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/domain/listing"
	"github.com/bookyourstay/stay-api/internal/pkg/errorhandler"
	"github.com/bookyourstay/stay-api/internal/pkg/response"
	"github.com/bookyourstay/stay-api/internal/pkg/validator"
)

// Listings resolves the listing being priced.
type Listings interface {
	Get(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
}

type Handler struct {
	engine   *Engine
	listings Listings
}

func NewHandler(engine *Engine, listings Listings) *Handler {
	return &Handler{engine: engine, listings: listings}
}

// Quote handles GET /listings/{id}/quote?start=&end=&guests=
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := listing.ListingID(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	start, err1 := validator.ParseDate(query.Get("start"))
	end, err2 := validator.ParseDate(query.Get("end"))
	if err1 != nil || err2 != nil {
		response.BadRequest(w, "start and end must be YYYY-MM-DD dates")
		return
	}
	guests := 1
	if raw := query.Get("guests"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "guests must be a number")
			return
		}
		guests = v
	}

	l, err := h.listings.Get(r.Context(), id)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	q, err := h.engine.Quote(r.Context(), l, start, end, guests)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, q)
}

// Register attaches the quote endpoint to the listing router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/{id}/quote", h.Quote)
}
