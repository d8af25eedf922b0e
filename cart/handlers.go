package cart

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

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req struct {
		ProductID string `json:"productId"`
		Size      string `json:"size"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Println("AddToCart decode error:", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if req.ProductID == "" || req.Quantity < 1 {
		http.Error(w, "Missing or invalid fields", http.StatusBadRequest)
		return
	}

	updated, err := h.svc.AddItem(ctx, userID, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusCreated, updated, "Product added to cart successfully")
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.svc.View(ctx, userID)
	if err != nil {
		log.Println("GetCart error:", err)
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, view, "Cart fetched successfully")
}

func (h *Handlers) UpdateCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req struct {
		LineID   string `json:"lineId"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if req.LineID == "" || req.Quantity < 1 {
		http.Error(w, "Missing or invalid fields", http.StatusBadRequest)
		return
	}

	updated, err := h.svc.UpdateItem(ctx, userID, req.LineID, req.Quantity)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, updated, "Cart updated successfully")
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	updated, err := h.svc.RemoveItem(ctx, userID, ps.ByName("lineid"))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, updated, "Product removed from cart successfully")
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.svc.Clear(ctx, userID); err != nil {
		log.Println("ClearCart error:", err)
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, []any{}, "Cart cleared successfully")
}
