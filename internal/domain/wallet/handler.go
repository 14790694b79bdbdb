package wallet

import (
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
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) callerWallet(w http.ResponseWriter, r *http.Request) (*Wallet, bool) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return nil, false
	}
	wallet, err := h.svc.GetByOwner(r.Context(), accountID)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return nil, false
	}
	return wallet, true
}

// Balance handles GET /wallet
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.callerWallet(w, r)
	if !ok {
		return
	}
	response.OK(w, wallet.ToResponse())
}

// Transactions handles GET /wallet/transactions
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.callerWallet(w, r)
	if !ok {
		return
	}

	filter := TransactionFilter{Type: TransactionType(r.URL.Query().Get("type"))}
	if filter.Type != "" && !filter.Type.Valid() {
		response.BadRequest(w, "unknown transaction type")
		return
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	txs, total, err := h.svc.ListTransactions(r.Context(), wallet.ID, filter)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.WithMeta(w, txs, response.NewMeta(total, filter.Page, filter.Limit))
}

// Recharge handles POST /wallet/recharge
func (h *Handler) Recharge(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.callerWallet(w, r)
	if !ok {
		return
	}

	var req RechargeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}

	updated, err := h.svc.Recharge(r.Context(), wallet.ID, req.Amount, req.Method, req.ReferenceID)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, updated.ToResponse())
}

// Transfer handles POST /wallet/transfer
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.callerWallet(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.HandleValidation(r.Context(), w, errs)
		return
	}

	target, err := h.svc.GetByOwner(r.Context(), uuid.MustParse(req.ToAccountID))
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}

	correlationID, err := h.svc.Transfer(r.Context(), wallet.ID, target.ID, req.Amount, req.Reason)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), wallet.ID)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, TransferResponse{CorrelationID: correlationID, Balance: balance})
}

// SetActive handles PATCH /wallet/{id}/active (admin)
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid wallet id")
		return
	}
	var req SetActiveRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	updated, err := h.svc.SetActive(r.Context(), id, req.Active)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, updated.ToResponse())
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.Balance)
	r.Get("/transactions", h.Transactions)
	r.Post("/recharge", h.Recharge)
	r.Post("/transfer", h.Transfer)
	r.With(middleware.RequireAdmin()).Patch("/{id}/active", h.SetActive)
	return r
}
