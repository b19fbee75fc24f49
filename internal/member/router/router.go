package router

import (
	"agri_market_service/internal/member/app"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the member REST surface.
func RegisterRoutes(r *fiber.App, handler *app.MemberHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.Post("/reconnect", handler.Reconnect)
	r.Get("/session/status", handler.SessionStatus)
	r.Post("/members/display_names", handler.DisplayNames)
}
