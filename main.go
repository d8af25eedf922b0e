package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vitrine/cart"
	"vitrine/catalog"
	"vitrine/coupons"
	"vitrine/db"
	"vitrine/globals"
	"vitrine/invoice"
	"vitrine/mq"
	"vitrine/orders"
	"vitrine/payments"
	"vitrine/ratelim"
	"vitrine/rdx"
	"vitrine/routes"
	"vitrine/stock"
	"vitrine/stocksock"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// XSS, content sniffing, framing
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		// HSTS (must be on HTTPS)
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		// Referrer and permissions
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		// Prevent caching
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		duration := time.Since(start)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, duration)
	})
}

func setupRouter(rateLimiter *ratelim.RateLimiter, mgr *stocksock.Manager,
	catalogH *catalog.Handlers, cartH *cart.Handlers, couponH *coupons.Handlers, orderH *orders.Handlers) *httprouter.Router {

	router := httprouter.New()
	routes.AddUtilityRoutes(router)
	routes.AddCatalogRoutes(router, catalogH, rateLimiter)
	routes.AddCartRoutes(router, cartH, rateLimiter)
	routes.AddCouponRoutes(router, couponH, rateLimiter)
	routes.AddOrderRoutes(router, orderH, rateLimiter)
	routes.AddStockRoutes(router, mgr)
	return router
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	// read port
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := db.Init(initCtx); err != nil {
		initCancel()
		log.Fatalf("❌ MongoDB init error: %v", err)
	}
	initCancel()
	defer db.Close()

	if err := rdx.Init(); err != nil {
		log.Fatalf("❌ Redis init error: %v", err)
	}

	rateLimiter := ratelim.NewRateLimiter()

	// websocket manager plus the Redis worker that feeds it
	mgr := stocksock.NewManager(stocksock.JWTVerifier{})
	mq.StartStockWorker(ctx, mgr)
	emitter := mq.NewEmitter()

	invoiceDir := os.Getenv("INVOICE_DIR")
	if invoiceDir == "" {
		invoiceDir = "static/invoices"
	}
	invoices := invoice.NewGenerator(invoiceDir, globals.JwtSecret)

	// services and their handlers
	productStore := catalog.NewMongoStore(db.ProductCollection)
	catalogSvc := catalog.NewService(productStore)
	stockSvc := stock.NewService(stock.NewMongoStore(db.ProductCollection), emitter)
	couponSvc := coupons.NewService(coupons.NewMongoStore(db.CouponCollection))
	cartSvc := cart.NewService(cart.NewMongoStore(db.CartCollection), productStore)
	orderSvc := orders.NewService(
		orders.NewMongoStore(db.OrderCollection),
		cartSvc,
		productStore,
		couponSvc,
		stockSvc,
		payments.NewStripeGateway(),
		invoices,
	)

	router := setupRouter(rateLimiter, mgr,
		catalog.NewHandlers(catalogSvc),
		cart.NewHandlers(cartSvc),
		coupons.NewHandlers(couponSvc),
		orders.NewHandlers(orderSvc),
	)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("🛑 Closing websocket connections...")
		mgr.Stop()
	})

	go func() {
		log.Printf("🚀 Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️ Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}
	log.Println("✅ Server exited cleanly")
}
