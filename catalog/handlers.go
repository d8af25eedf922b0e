package catalog

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
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

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	product, err := h.svc.Create(ctx, req, utils.GetUserIDFromRequest(r))
	if err != nil {
		log.Println("CreateProduct error:", err)
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusCreated, product, "Product created successfully")
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	product, err := h.svc.Get(ctx, ps.ByName("productid"))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, product, "Product fetched successfully")
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	page, limit := utils.ParsePagination(r)
	q := ListQuery{
		Search:   r.URL.Query().Get("k"),
		Category: r.URL.Query().Get("category"),
		Page:     page,
		Limit:    limit,
	}
	if v, err := strconv.ParseFloat(r.URL.Query().Get("minPrice"), 64); err == nil {
		q.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(r.URL.Query().Get("maxPrice"), 64); err == nil {
		q.MaxPrice = &v
	}

	items, pagination, err := h.svc.List(ctx, q)
	if err != nil {
		log.Println("GetProducts error:", err)
		utils.RespondError(w, err)
		return
	}
	utils.SendList(w, items, pagination)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var patch ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	product, err := h.svc.Update(ctx, ps.ByName("productid"), patch)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, product, "Product updated successfully")
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, ps.ByName("productid")); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.SendEnvelope(w, http.StatusOK, []any{}, "Product deleted successfully")
}
