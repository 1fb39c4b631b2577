package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/billkhata/api/internal/config"
	"github.com/billkhata/api/internal/handler"
	mw "github.com/billkhata/api/internal/middleware"
	"github.com/billkhata/api/internal/service"
	"github.com/billkhata/api/internal/store"
	"github.com/billkhata/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Everything except health, auth, and the WebSocket endpoint sits behind
// JWT authentication.
func New(cfg *config.Config, records store.RecordStore, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // Vite dev server
			"http://localhost:3000",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	bills := store.NewBills(records)
	loc := cfg.Location()
	billingService := service.NewBillingService(bills, service.RealClock(), cfg.SettleDelay, loc)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(records, cfg.JWTSecret, cfg.OTPMock)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/dashboard", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		shopsHandler := handler.NewShopsHandler()
		r.Route("/shops", shopsHandler.RegisterRoutes)

		billsHandler := handler.NewBillsHandler(billingService, bills, hub, cfg.ShareCountryCode)
		r.Route("/bills", billsHandler.RegisterRoutes)

		historyHandler := handler.NewHistoryHandler(bills)
		r.Route("/history", historyHandler.RegisterRoutes)

		dashboardHandler := handler.NewDashboardHandler(bills, loc)
		r.Route("/dashboard", dashboardHandler.RegisterRoutes)
	})

	return r
}
