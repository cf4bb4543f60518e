package routes

import (
	"net/http"

	"nonact/admin"
	"nonact/auth"
	"nonact/booking"
	"nonact/live"
	"nonact/middleware"
	"nonact/profile"
	"nonact/ratelim"
	"nonact/register"
	"nonact/staff"

	"github.com/julienschmidt/httprouter"
)

// Handlers bundles every constructed handler for route registration.
type Handlers struct {
	Auth     *auth.Provider
	Register *register.Handler
	Staff    *staff.Handler
	Profile  *profile.Handler
	Booking  *booking.Handler
	Admin    *admin.Handler
	Hub      *live.Hub
}

func AddStaticRoutes(router *httprouter.Router, uploadRoot string) {
	router.ServeFiles("/static/profile/*filepath", http.Dir(uploadRoot+"/profile"))
}

func AddAuthRoutes(router *httprouter.Router, h *Handlers, gate *middleware.Gate, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/signup", rl.Limit(h.Auth.SignUpHandler))
	router.POST("/api/auth/login", rl.Limit(h.Auth.LoginHandler))
	router.POST("/api/auth/logout", gate.Authenticate(h.Auth.LogoutHandler))
	router.GET("/api/auth/session", gate.Authenticate(h.Auth.SessionHandler))
	router.GET("/api/auth/oauth/:provider", rl.Limit(h.Auth.OAuthStartHandler))
	router.GET("/api/auth/callback", rl.Limit(h.Auth.OAuthCallbackHandler))
}

func AddRegisterRoutes(router *httprouter.Router, h *Handlers, rl *ratelim.RateLimiter) {
	router.POST("/api/register", rl.Limit(h.Register.Submit))
	router.GET("/api/confirm", rl.Limit(h.Register.Confirm))
}

func AddStaffRoutes(router *httprouter.Router, h *Handlers, rl *ratelim.RateLimiter) {
	router.GET("/api/staff", rl.Limit(h.Staff.List))
	router.GET("/api/staff/:id", rl.Limit(h.Staff.Get))
}

func AddProfileRoutes(router *httprouter.Router, h *Handlers, gate *middleware.Gate) {
	router.GET("/api/profile", gate.Authenticate(h.Profile.Get))
	router.PUT("/api/profile/preferences", gate.Authenticate(h.Profile.SavePreferences))
}

func AddBookingRoutes(router *httprouter.Router, h *Handlers, gate *middleware.Gate, rl *ratelim.RateLimiter) {
	router.POST("/api/bookings", rl.Limit(gate.Authenticate(h.Booking.Create)))
	router.GET("/api/bookings", gate.Authenticate(h.Booking.ListMine))
	router.GET("/api/bookings/:id/receipt", gate.Authenticate(h.Booking.Receipt))
}

func AddAdminRoutes(router *httprouter.Router, h *Handlers, gate *middleware.Gate) {
	router.GET("/api/admin/staff", gate.AdminOnly(h.Admin.ListStaff))
	router.POST("/api/admin/staff", gate.AdminOnly(h.Admin.Create))
	router.PUT("/api/admin/staff/:id", gate.AdminOnly(h.Admin.Save))
	router.PATCH("/api/admin/staff/:id/availability", gate.AdminOnly(h.Admin.ToggleAvailability))
}

func AddLiveRoutes(router *httprouter.Router, h *Handlers) {
	router.GET("/ws/updates", live.Handler(h.Hub))
}

func RoutesWrapper(router *httprouter.Router, h *Handlers, gate *middleware.Gate, rl *ratelim.RateLimiter) {
	AddAuthRoutes(router, h, gate, rl)
	AddRegisterRoutes(router, h, rl)
	AddStaffRoutes(router, h, rl)
	AddProfileRoutes(router, h, gate)
	AddBookingRoutes(router, h, gate, rl)
	AddAdminRoutes(router, h, gate)
	AddLiveRoutes(router, h)
}
