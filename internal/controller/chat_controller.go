package controller

import (
	"context"
	"errors"

	"secure-docchat-be/internal/dto"
	"secure-docchat-be/internal/pkg/serverutils"
	"secure-docchat-be/internal/service"
	"secure-docchat-be/pkg/chat/pipeline"
	"secure-docchat-be/pkg/retrieval"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("session", c.CreateSession)
	h.Get("session/:id/history", c.History)
	h.Post("session/:id/reset", c.Reset)
	h.Post("ask", c.Ask)

	h.Use("ws/:id", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("ws/:id", websocket.New(c.stream))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.chatService.CreateSession(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

// Ask is the blocking variant: the full answer (or the policy message
// that replaced it) comes back in one response.
func (c *chatController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.chatService.Ask(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ask question", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	res, err := c.chatService.GetHistory(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *chatController) Reset(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	res, err := c.chatService.ResetSession(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reset session", res))
}

// stream answers one question per connection. Tokens are forwarded as
// they arrive, BEFORE the output safety check runs; when the finished
// answer fails that check the client receives a retraction frame and
// must discard everything it already rendered.
func (c *chatController) stream(conn *websocket.Conn) {
	defer conn.Close()

	sessionId, err := uuid.Parse(conn.Params("id"))
	if err != nil {
		writeFrame(conn, dto.FrameError, "Invalid session id")
		return
	}

	var req dto.AskStreamRequest
	if err := conn.ReadJSON(&req); err != nil {
		writeFrame(conn, dto.FrameError, "Invalid request payload")
		return
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		writeFrame(conn, dto.FrameError, err.Error())
		return
	}

	writeFrame(conn, dto.FrameStatus, "processing")

	onToken := func(token string) error {
		return conn.WriteJSON(dto.StreamFrame{Type: dto.FrameToken, Content: token})
	}

	res, err := c.chatService.AskStream(context.Background(), sessionId, req.Question, onToken)
	if err != nil {
		writeFrame(conn, dto.FrameError, streamErrorMessage(err))
		return
	}

	if res.Blocked {
		writeFrame(conn, dto.FrameRetracted, res.Answer)
	}
	writeFrame(conn, dto.FrameDone, "")
}

func streamErrorMessage(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrSessionTerminated):
		return pipeline.MsgTerminated
	case errors.Is(err, retrieval.ErrIndexNotReady):
		return "No document has been indexed yet. Upload a document first."
	}
	return "Failed to answer the question"
}

func writeFrame(conn *websocket.Conn, frameType, content string) {
	// Write errors mean the peer is gone; nothing left to do.
	_ = conn.WriteJSON(dto.StreamFrame{Type: frameType, Content: content})
}
