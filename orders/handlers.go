package orders

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"vitrine/models"
	"vitrine/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	svc *Service
}

func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Println("CreateOrder decode error:", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if req.Address == "" || req.Phone == "" {
		http.Error(w, "Missing or invalid fields", http.StatusBadRequest)
		return
	}
	if req.PaymentMethod != models.PaymentCash && req.PaymentMethod != models.PaymentCard {
		http.Error(w, "Unsupported payment method", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Create(ctx, userID, req)
	if err != nil {
		log.Println("CreateOrder error:", err)
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusCreated, result, "Order placed successfully")
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page, limit := utils.ParsePagination(r)
	items, pagination, err := h.svc.FindAll(ctx, userID, utils.IsAdmin(r), page, limit)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendList(w, items, pagination)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	order, err := h.svc.FindOne(ctx, ps.ByName("orderid"), userID, utils.IsAdmin(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, order, "Order fetched successfully")
}

func (h *Handlers) UpdateOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var patch ContactPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	order, err := h.svc.Update(ctx, ps.ByName("orderid"), patch)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, order, "Order updated successfully")
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	order, err := h.svc.ChangeStatus(ctx, ps.ByName("orderid"), req.Status)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, order, "Order status updated successfully")
}

func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.svc.Remove(ctx, ps.ByName("orderid")); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, []any{}, "Order deleted successfully")
}

// DownloadInvoice streams the invoice PDF for an order.
func (h *Handlers) DownloadInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	orderID := ps.ByName("orderid")
	data, err := h.svc.Invoice(ctx, orderID, userID, utils.IsAdmin(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=invoice-"+orderID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// PaymentWebhook verifies and processes provider events. The body must be
// read raw before any decoding so the signature check sees the exact
// bytes that were signed. Unprocessable but authentic events are
// acknowledged with 200 so the provider stops retrying.
func (h *Handlers) PaymentWebhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	event, err := h.svc.gateway.VerifyEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Println("PaymentWebhook verify error:", err)
		utils.RespondError(w, err)
		return
	}

	if err := h.svc.HandleEvent(ctx, event); err != nil {
		log.Println("PaymentWebhook handle error:", err)
		utils.RespondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}
