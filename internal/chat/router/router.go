package router

import (
	"context"

	catalogrepo "agri_market_service/internal/catalog/repository"
	"agri_market_service/internal/chat/app"
	errprocess "agri_market_service/pkg/err"
	"agri_market_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes wires the websocket entry point and the REST surface of
// the chat service.
func RegisterRoutes(r *fiber.App, chatWebsocket *app.ChatWebsocketHandler, activeUC *app.ActiveChatsUseCase, messageUC *app.SendMessageUseCase, products catalogrepo.ProductRepository) {
	r.Use(middlewares.JWTMiddleware())

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))

	// conversation list, newest activity first
	r.Get("/chats", func(c *fiber.Ctx) error {
		memberID, _ := c.Locals(middlewares.TokenMemberID).(string)
		chats, err := activeUC.Execute(c.Context(), memberID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"chats": chats})
	})

	r.Get("/chats/unread", func(c *fiber.Ctx) error {
		memberID, _ := c.Locals(middlewares.TokenMemberID).(string)
		unread, err := messageUC.GetCountUnreadMessages(c.Context(), memberID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"unread": unread})
	})

	r.Get("/chats/:roomID/messages", func(c *fiber.Ctx) error {
		memberID, _ := c.Locals(middlewares.TokenMemberID).(string)
		before := int64(c.QueryInt("before", 0))
		limit := c.QueryInt("limit", 0)

		page, err := messageUC.History(c.Context(), c.Params("roomID"), memberID, before, limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(page)
	})

	// listing details of the products a member is negotiating over
	r.Post("/chats/products", func(c *fiber.Ctx) error {
		var body struct {
			ProductIDs []string `json:"product_ids"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
		}

		found, err := products.FindByIDs(c.Context(), body.ProductIDs)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"products": found})
	})

	r.Post("/chats/:roomID/read", func(c *fiber.Ctx) error {
		memberID, _ := c.Locals(middlewares.TokenMemberID).(string)

		var body struct {
			MessageIDs []string `json:"message_ids"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
		}

		if err := messageUC.MarkRead(c.Context(), c.Params("roomID"), memberID, body.MessageIDs); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})
}

func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch errprocess.KindOf(err) {
	case errprocess.KindValidation:
		status = fiber.StatusBadRequest
	case errprocess.KindNotFound:
		status = fiber.StatusNotFound
	case errprocess.KindUnauthorized:
		status = fiber.StatusUnauthorized
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
