package handler

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// VoucherAdmin manages the voucher catalogue.
type VoucherAdmin interface {
	Create(ctx context.Context, req *model.CreateVoucherRequest) (*model.Voucher, error)
	List(ctx context.Context) ([]model.Voucher, error)
	ListActive(ctx context.Context) ([]model.Voucher, error)
	Get(ctx context.Context, id int64) (*model.Voucher, error)
	Update(ctx context.Context, id int64, req *model.UpdateVoucherRequest) (*model.Voucher, error)
	Delete(ctx context.Context, id int64) error
}

// VoucherHandler handles voucher administration and redemption.
type VoucherHandler struct {
	admin  VoucherAdmin
	ledger service.VoucherLedger
	logger zerolog.Logger
}

// NewVoucherHandler creates a new voucher handler.
func NewVoucherHandler(admin VoucherAdmin, ledger service.VoucherLedger, logger zerolog.Logger) *VoucherHandler {
	return &VoucherHandler{
		admin:  admin,
		ledger: ledger,
		logger: logger.With().Str("handler", "voucher").Logger(),
	}
}

// Create handles POST /api/vouchers.
func (h *VoucherHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateVoucherRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	v, err := h.admin.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// List handles GET /api/vouchers; ?active=true limits it to usable vouchers.
func (h *VoucherHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		vs  []model.Voucher
		err error
	)
	if r.URL.Query().Get("active") == "true" {
		vs, err = h.admin.ListActive(r.Context())
	} else {
		vs, err = h.admin.List(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

// Get handles GET /api/vouchers/{id}.
func (h *VoucherHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	v, err := h.admin.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Update handles PUT /api/vouchers/{id}.
func (h *VoucherHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdateVoucherRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	v, err := h.admin.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Delete handles DELETE /api/vouchers/{id}.
func (h *VoucherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.admin.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles POST /api/vouchers/validate. A rejected voucher is a
// 200 with isValid false.
func (h *VoucherHandler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.ValidateVoucherRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	code := strings.TrimSpace(req.VoucherCode)
	if code == "" {
		writeServiceError(w, r, model.NewFieldError("Voucher code is required", "voucherCode"), h.logger)
		return
	}

	shippingFee := decimal.Zero
	if req.ShippingFee.Valid {
		shippingFee = req.ShippingFee.Decimal
	}

	res, err := h.ledger.Validate(r.Context(), code, userID, req.OrderAmount, shippingFee)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res.Response())
}

// Apply handles POST /api/vouchers/apply.
func (h *VoucherHandler) Apply(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.ApplyVoucherRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	code := strings.TrimSpace(req.VoucherCode)
	if code == "" {
		writeServiceError(w, r, model.NewFieldError("Voucher code is required", "voucherCode"), h.logger)
		return
	}

	usage, err := h.ledger.Apply(r.Context(), code, userID, req.OrderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, usage)
}
