package coupons

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"vitrine/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	svc *Service
}

func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

func (h *Handlers) CreateCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	coupon, err := h.svc.Create(ctx, req)
	if err != nil {
		log.Println("CreateCoupon error:", err)
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusCreated, coupon, "Coupon created successfully")
}

func (h *Handlers) GetCoupons(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	coupons, err := h.svc.FindAll(ctx)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, coupons, "Coupons fetched successfully")
}

// GetCoupon validates the code, so clients can pre-check a coupon before
// checkout; an unusable coupon comes back as an error, not data.
func (h *Handlers) GetCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	coupon, err := h.svc.Validate(ctx, ps.ByName("code"))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, coupon, "Coupon fetched successfully")
}

func (h *Handlers) ApplyCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req struct {
		Code  string  `json:"code"`
		Total float64 `json:"total"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.Code == "" || req.Total < 0 {
		http.Error(w, "Missing or invalid fields", http.StatusBadRequest)
		return
	}

	applied, err := h.svc.Apply(ctx, req.Code, req.Total)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, applied, "Coupon applied successfully")
}

func (h *Handlers) UpdateCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var patch CouponPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	coupon, err := h.svc.Update(ctx, ps.ByName("couponid"), patch)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, coupon, "Coupon updated successfully")
}

func (h *Handlers) DeleteCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, ps.ByName("couponid")); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, []any{}, "Coupon deleted successfully")
}
