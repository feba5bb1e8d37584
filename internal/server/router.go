// Package server assembles the HTTP router. Kept out of main so the full
// route surface can be exercised in tests.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"konkan-properties/internal/admin"
	"konkan-properties/internal/auth"
	"konkan-properties/internal/middleware"
	"konkan-properties/internal/property"
	"konkan-properties/internal/response"
	"konkan-properties/internal/token"
)

const (
	authRateLimit  = 20
	authRateWindow = time.Minute
)

// Deps carries everything the router needs. Redis is optional; without it
// the credential endpoints are simply not rate limited.
type Deps struct {
	Auth     *auth.Handler
	Property *property.Handler
	Admin    *admin.Handler
	Tokens   *token.Service
	Redis    *redis.Client
}

// New builds the chi router with the full route surface.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireAuth := middleware.RequireAuth(d.Tokens)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth routes
	r.Route("/api/auth", func(r chi.Router) {
		if d.Redis != nil {
			limit := middleware.RateLimit(d.Redis, authRateLimit, authRateWindow)
			r.With(limit).Post("/register", d.Auth.Register)
			r.With(limit).Post("/login", d.Auth.Login)
		} else {
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
		}
		r.With(requireAuth).Get("/me", d.Auth.Me)
	})

	// Property routes; listing and detail are public.
	r.Route("/api/properties", func(r chi.Router) {
		r.Get("/", d.Property.List)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", d.Property.Create)
			r.Post("/{id}/interest", d.Property.Interest)
			r.Get("/user/my-properties", d.Property.MyProperties)
			r.Get("/user/my-interests", d.Property.MyInterests)
			r.Put("/{id}/mark-sold", d.Property.MarkSold)
		})

		// Registered last so /user/* and /{id}/* match first.
		r.Get("/{id}", d.Property.Get)
	})

	// Uploaded images
	r.Get("/api/images/{key}", d.Property.ServeImage)

	// Admin routes
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireAdmin)
		r.Get("/pending-properties", d.Admin.PendingProperties)
		r.Get("/sold-properties", d.Admin.SoldProperties)
		r.Put("/properties/{id}/approve", d.Admin.Approve)
		r.Put("/properties/{id}/reject", d.Admin.Reject)
		r.Put("/properties/{id}/sold", d.Admin.Sold)
		r.Get("/users", d.Admin.Users)
		r.Put("/users/{id}/make-admin", d.Admin.MakeAdmin)
		r.Get("/interests", d.Admin.Interests)
		r.Put("/interests/{id}", d.Admin.UpdateInterest)
	})

	return r
}
