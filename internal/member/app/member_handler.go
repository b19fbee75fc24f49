package app

import (
	"agri_market_service/pkg/middlewares"
	"agri_market_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler exposes the member use case over REST.
type MemberHandler struct {
	uc MemberUseCase
}

// NewMemberHandler create MemberHandler
func NewMemberHandler(uc MemberUseCase) *MemberHandler {
	return &MemberHandler{uc: uc}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Register POST /register
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	if err := h.uc.Register(c.Context(), req.Email, req.Password, req.DisplayName, token.RoleType(req.Role)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /login, also drops the token as a cookie so browser clients
// can open the chat websocket without custom headers.
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	t, err := h.uc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    t,
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{"token": t})
}

// Logout POST /logout
func (h *MemberHandler) Logout(c *fiber.Ctx) error {
	t := c.Cookies(middlewares.CookieToken)
	if t == "" {
		t = c.Query(middlewares.QueryToken)
	}

	if err := h.uc.Logout(c.Context(), t); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	c.ClearCookie(middlewares.CookieToken)
	return c.JSON(fiber.Map{"success": true})
}

// Reconnect POST /reconnect extends the redis session
func (h *MemberHandler) Reconnect(c *fiber.Ctx) error {
	t := c.Cookies(middlewares.CookieToken)
	if t == "" {
		t = c.Query(middlewares.QueryToken)
	}

	if err := h.uc.ReconnectSession(c.Context(), t); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}

// SessionStatus GET /session/status
func (h *MemberHandler) SessionStatus(c *fiber.Ctx) error {
	t := c.Cookies(middlewares.CookieToken)
	if t == "" {
		t = c.Query(middlewares.QueryToken)
	}

	expired, err := h.uc.CheckSessionTimeout(c.Context(), t)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"expired": expired})
}

type displayNamesRequest struct {
	MemberIDs []string `json:"member_ids"`
}

// DisplayNames POST /members/display_names batch resolves ids to names
func (h *MemberHandler) DisplayNames(c *fiber.Ctx) error {
	var req displayNamesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	names, err := h.uc.DisplayNames(c.Context(), req.MemberIDs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"names": names})
}
