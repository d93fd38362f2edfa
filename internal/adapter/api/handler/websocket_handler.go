package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/internal/infrastructure/firebase"
	"valluvarvaasal/internal/infrastructure/presence"
	ws "valluvarvaasal/internal/infrastructure/websocket"
	"valluvarvaasal/internal/usecase"
	"valluvarvaasal/pkg/logger"
)

// Frame types exchanged over the socket.
const (
	frameSubscribeChat      = "subscribe_chat"
	frameSubscribeAdminChat = "subscribe_admin_chat"
	frameSubscribeRoster    = "subscribe_roster"
	frameUnsubscribe        = "unsubscribe"
	frameHeartbeat          = "heartbeat"

	frameChatSnapshot      = "chat_snapshot"
	frameAdminChatSnapshot = "admin_chat_snapshot"
	frameRosterSnapshot    = "roster_snapshot"
	framePong              = "pong"
	frameError             = "error"
)

type wsRequest struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id,omitempty"`
	Key    string `json:"key,omitempty"`
}

type wsFrame struct {
	Type      string      `json:"type"`
	ChatID    string      `json:"chat_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp string      `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler bridges store subscriptions onto browser sockets. Each
// snapshot delivered by a subscription goes out as one full-state frame;
// clients are expected to replace, not append.
type WebSocketHandler struct {
	manager          *ws.Manager
	authClient       *firebase.AuthClient
	chatUseCase      *usecase.ChatUseCase
	adminChatUseCase *usecase.AdminChatUseCase
	rosterUseCase    *usecase.RosterUseCase
	presence         *presence.Tracker
	rosterPageSize   int
}

func NewWebSocketHandler(
	manager *ws.Manager,
	authClient *firebase.AuthClient,
	chatUseCase *usecase.ChatUseCase,
	adminChatUseCase *usecase.AdminChatUseCase,
	rosterUseCase *usecase.RosterUseCase,
	tracker *presence.Tracker,
	rosterPageSize int,
) *WebSocketHandler {
	return &WebSocketHandler{
		manager:          manager,
		authClient:       authClient,
		chatUseCase:      chatUseCase,
		adminChatUseCase: adminChatUseCase,
		rosterUseCase:    rosterUseCase,
		presence:         tracker,
		rosterPageSize:   rosterPageSize,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token is required")
	}

	identity, err := h.authClient.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := ws.NewClient(identity.UID, conn)
	h.manager.Register <- client
	go client.WritePump()

	// The connection context outlives the HTTP request and carries every
	// subscription opened on this socket.
	connCtx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.presence.Offline(context.Background(), identity.UID)
		h.manager.Unregister <- client
	}()

	h.presence.Heartbeat(connCtx, identity.UID)
	h.readLoop(connCtx, client, identity)
	return nil
}

func (h *WebSocketHandler) readLoop(ctx context.Context, client *ws.Client, identity entity.Identity) {
	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Socket for %s closed: %v", identity.UID, err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			send(client, wsFrame{Type: frameError, Message: "malformed frame"})
			continue
		}

		switch req.Type {
		case frameHeartbeat:
			h.presence.Heartbeat(ctx, identity.UID)
			send(client, wsFrame{Type: framePong})

		case frameSubscribeChat:
			h.subscribeChat(ctx, client, identity, req.ChatID)

		case frameSubscribeAdminChat:
			h.subscribeAdminChat(ctx, client, identity, req.ChatID)

		case frameSubscribeRoster:
			h.subscribeRoster(ctx, client, identity)

		case frameUnsubscribe:
			client.CancelSubscription(req.Key)

		default:
			send(client, wsFrame{Type: frameError, Message: "unknown frame type"})
		}
	}
}

func (h *WebSocketHandler) subscribeChat(ctx context.Context, client *ws.Client, identity entity.Identity, chatID string) {
	snapshots, cancel, err := h.chatUseCase.SubscribeMessages(ctx, chatID, identity)
	if err != nil {
		send(client, wsFrame{Type: frameError, ChatID: chatID, Message: err.Error()})
		return
	}
	client.TrackSubscription("chat:"+chatID, cancel)

	go func() {
		for messages := range snapshots {
			send(client, wsFrame{Type: frameChatSnapshot, ChatID: chatID, Data: messages})
		}
	}()
}

func (h *WebSocketHandler) subscribeAdminChat(ctx context.Context, client *ws.Client, identity entity.Identity, chatID string) {
	snapshots, cancel, err := h.adminChatUseCase.SubscribeMessages(ctx, chatID, identity)
	if err != nil {
		send(client, wsFrame{Type: frameError, ChatID: chatID, Message: err.Error()})
		return
	}
	client.TrackSubscription("admin-chat:"+chatID, cancel)

	go func() {
		for messages := range snapshots {
			send(client, wsFrame{Type: frameAdminChatSnapshot, ChatID: chatID, Data: messages})
		}
	}()
}

func (h *WebSocketHandler) subscribeRoster(ctx context.Context, client *ws.Client, identity entity.Identity) {
	pages, cancel, err := h.rosterUseCase.SubscribeFirstPage(ctx, identity.UID, h.rosterPageSize)
	if err != nil {
		send(client, wsFrame{Type: frameError, Message: err.Error()})
		return
	}
	client.TrackSubscription("roster", cancel)

	go func() {
		for page := range pages {
			send(client, wsFrame{Type: frameRosterSnapshot, Data: page})
		}
	}()
}

func send(client *ws.Client, frame wsFrame) {
	frame.Timestamp = time.Now().UTC().Format(time.RFC3339)
	raw, err := json.Marshal(frame)
	if err != nil {
		logger.Error("Failed to marshal frame for %s: %v", client.UserID, err)
		return
	}

	if !client.TrySend(raw) {
		logger.Warn("Dropping frame for slow client %s", client.UserID)
	}
}
