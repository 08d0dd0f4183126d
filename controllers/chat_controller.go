package controller

import (
	"log"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"vexa/models"
)

// ChatController persists chat messages and fans them out to connected
// websocket clients.
type ChatController struct {
	DB     *gorm.DB
	Logger *log.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewChatController(db *gorm.DB, logger *log.Logger) *ChatController {
	return &ChatController{
		DB:     db,
		Logger: logger,
		conns:  make(map[*websocket.Conn]bool),
	}
}

type chatMessagePayload struct {
	SenderID   uint   `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Message    string `json:"message"`
}

// GetMessages returns the chat history, oldest first.
func (cc *ChatController) GetMessages(c *fiber.Ctx) error {
	var messages []models.ChatMessage
	err := cc.DB.Order("id ASC").Find(&messages).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch messages",
		})
	}
	return c.JSON(messages)
}

// SendMessage persists a message and broadcasts it to connected clients.
func (cc *ChatController) SendMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil || input.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	message := models.ChatMessage{
		SenderID: user.ID,
		Message:  input.Message,
	}
	if err := cc.DB.Create(&message).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send message",
		})
	}

	cc.broadcast(chatMessagePayload{
		SenderID:   user.ID,
		SenderName: user.Name,
		Message:    message.Message,
	})

	return c.Status(fiber.StatusCreated).JSON(message)
}

// HandleChatWS keeps a websocket connection registered for broadcasts and
// relays inbound messages to every connected client.
func (cc *ChatController) HandleChatWS(conn *websocket.Conn) {
	cc.register(conn)
	defer cc.unregister(conn)

	for {
		var payload chatMessagePayload
		if err := conn.ReadJSON(&payload); err != nil {
			return
		}
		if payload.Message == "" {
			continue
		}

		message := models.ChatMessage{
			SenderID: payload.SenderID,
			Message:  payload.Message,
		}
		if err := cc.DB.Create(&message).Error; err != nil {
			cc.Logger.Printf("Error storing chat message: %v", err)
			continue
		}

		cc.broadcast(payload)
	}
}

func (cc *ChatController) register(conn *websocket.Conn) {
	cc.mu.Lock()
	cc.conns[conn] = true
	cc.mu.Unlock()
}

func (cc *ChatController) unregister(conn *websocket.Conn) {
	cc.mu.Lock()
	delete(cc.conns, conn)
	cc.mu.Unlock()
	conn.Close()
}

func (cc *ChatController) broadcast(payload chatMessagePayload) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	for conn := range cc.conns {
		if err := conn.WriteJSON(payload); err != nil {
			cc.Logger.Printf("Error writing to chat client: %v", err)
			delete(cc.conns, conn)
			conn.Close()
		}
	}
}
