package stats

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bookyourstay/stay-api/internal/middleware"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/errorhandler"
	"github.com/bookyourstay/stay-api/internal/pkg/response"
	"github.com/bookyourstay/stay-api/internal/pkg/validator"
)

type Handler struct {
	service *Service
	clock   clock.Clock
}

func NewHandler(service *Service, clk clock.Clock) *Handler {
	return &Handler{service: service, clock: clk}
}

// period reads ?from=&to=, defaulting to the last 30 days.
func (h *Handler) period(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	to := clock.Today(h.clock).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -30)
	query := r.URL.Query()
	if raw := query.Get("from"); raw != "" {
		t, err := validator.ParseDate(raw)
		if err != nil {
			response.BadRequest(w, "from must be a YYYY-MM-DD date")
			return time.Time{}, time.Time{}, false
		}
		from = t
	}
	if raw := query.Get("to"); raw != "" {
		t, err := validator.ParseDate(raw)
		if err != nil {
			response.BadRequest(w, "to must be a YYYY-MM-DD date")
			return time.Time{}, time.Time{}, false
		}
		to = t
	}
	return from, to, true
}

// Occupancy handles GET /stats/occupancy
func (h *Handler) Occupancy(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.period(w, r)
	if !ok {
		return
	}
	result, err := h.service.Occupancy(r.Context(), from, to)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, result)
}

// Revenue handles GET /stats/revenue
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.period(w, r)
	if !ok {
		return
	}
	result, err := h.service.RevenueBySubtype(r.Context(), from, to)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, result)
}

// Monthly handles GET /stats/monthly?year=
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	year := h.clock.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2000 || y > 2100 {
			response.BadRequest(w, "Invalid year")
			return
		}
		year = y
	}
	result, err := h.service.MonthlyRevenue(r.Context(), year)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, result)
}

// Routes returns the admin statistics router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())

	r.Get("/occupancy", h.Occupancy)
	r.Get("/revenue", h.Revenue)
	r.Get("/monthly", h.Monthly)

	return r
}
