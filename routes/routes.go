package routes

import (
	"net/http"

	"vitrine/cart"
	"vitrine/catalog"
	"vitrine/coupons"
	"vitrine/middleware"
	"vitrine/orders"
	"vitrine/ratelim"
	"vitrine/stocksock"
	"vitrine/utils"

	"github.com/julienschmidt/httprouter"
)

func AddCatalogRoutes(router *httprouter.Router, h *catalog.Handlers, rl *ratelim.RateLimiter) {
	router.GET("/api/products", h.GetProducts)
	router.GET("/api/products/:productid", h.GetProduct)
	router.POST("/api/products", rl.Limit(middleware.Authenticate(middleware.RequireRole(h.CreateProduct, "admin"))))
	router.PUT("/api/products/:productid", middleware.Authenticate(middleware.RequireRole(h.UpdateProduct, "admin")))
	router.DELETE("/api/products/:productid", middleware.Authenticate(middleware.RequireRole(h.DeleteProduct, "admin")))
}

func AddCartRoutes(router *httprouter.Router, h *cart.Handlers, rl *ratelim.RateLimiter) {
	router.POST("/api/cart", rl.Limit(middleware.Authenticate(h.AddToCart)))
	router.GET("/api/cart", middleware.Authenticate(h.GetCart))
	router.PATCH("/api/cart", middleware.Authenticate(h.UpdateCart))
	router.DELETE("/api/cart/:lineid", middleware.Authenticate(h.RemoveFromCart))
	router.DELETE("/api/cart", middleware.Authenticate(h.ClearCart))
}

func AddCouponRoutes(router *httprouter.Router, h *coupons.Handlers, rl *ratelim.RateLimiter) {
	router.POST("/api/coupons", middleware.Authenticate(middleware.RequireRole(h.CreateCoupon, "admin")))
	router.GET("/api/coupons", middleware.Authenticate(middleware.RequireRole(h.GetCoupons, "admin")))
	router.GET("/api/coupons/:code", middleware.Authenticate(h.GetCoupon))
	router.POST("/api/coupons/apply", rl.Limit(middleware.Authenticate(h.ApplyCoupon)))
	router.PUT("/api/coupons/:couponid", middleware.Authenticate(middleware.RequireRole(h.UpdateCoupon, "admin")))
	router.DELETE("/api/coupons/:couponid", middleware.Authenticate(middleware.RequireRole(h.DeleteCoupon, "admin")))
}

func AddOrderRoutes(router *httprouter.Router, h *orders.Handlers, rl *ratelim.RateLimiter) {
	router.POST("/api/orders", rl.Limit(middleware.Authenticate(h.CreateOrder)))
	router.GET("/api/orders", middleware.Authenticate(h.GetOrders))
	router.GET("/api/orders/:orderid", middleware.Authenticate(h.GetOrder))
	router.GET("/api/orders/:orderid/invoice", middleware.Authenticate(h.DownloadInvoice))
	router.PATCH("/api/orders/:orderid", middleware.Authenticate(middleware.RequireRole(h.UpdateOrder, "admin")))
	router.PATCH("/api/orders/:orderid/status", middleware.Authenticate(middleware.RequireRole(h.UpdateOrderStatus, "admin")))
	router.DELETE("/api/orders/:orderid", middleware.Authenticate(middleware.RequireRole(h.DeleteOrder, "admin")))

	// The payment provider calls this directly; authentication is the
	// signature check inside the handler.
	router.POST("/api/orders/webhook", h.PaymentWebhook)
}

func AddStockRoutes(router *httprouter.Router, mgr *stocksock.Manager) {
	router.GET("/ws/stock", mgr.HandleWS)
}

func AddUtilityRoutes(router *httprouter.Router) {
	router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
	})
}
