package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"storybook-server/internal/messaging"
	"storybook-server/internal/middleware"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время ожидания следующего pong.
	pongWait = 60 * time.Second
	// Период пингов, меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Клиент ничего не присылает, кроме управляющих кадров.
	maxMessageSize = 512
	sendBuffer     = 256
)

// Client одно соединение пользователя. У пользователя может быть несколько вкладок.
type Client struct {
	ID     uuid.UUID
	UserID int64
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func (c *Client) closeSend() {
	c.once.Do(func() { close(c.send) })
}

// Hub держит активные соединения и доставляет события пользователям.
type Hub struct {
	clients  map[int64]map[uuid.UUID]*Client
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub создает хаб. Пустой allowedOrigins разрешает любой Origin.
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Hub{
		clients: make(map[int64]map[uuid.UUID]*Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		logger: logger.Named("WebSocketHub"),
	}
}

// ServeWS апгрейдит запрос. Сессию заранее кладет middleware.QueryTokenAuth.
func (h *Hub) ServeWS(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrader уже ответил клиенту
		h.logger.Warn("Failed to upgrade connection", zap.Int64("userID", session.UserID), zap.Error(err))
		return
	}

	client := &Client{
		ID:     uuid.New(),
		UserID: session.UserID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.register(client)

	log := h.logger.With(zap.Int64("userID", client.UserID), zap.String("clientID", client.ID.String()))
	go client.writePump(log)
	go client.readPump(h, log)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.UserID]
	if !ok {
		conns = make(map[uuid.UUID]*Client)
		h.clients[c.UserID] = conns
	}
	conns[c.ID] = c
	h.logger.Info("Client registered", zap.Int64("userID", c.UserID), zap.Int("connections", len(conns)))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := conns[c.ID]; !ok {
		return
	}
	delete(conns, c.ID)
	if len(conns) == 0 {
		delete(h.clients, c.UserID)
	}
	c.closeSend()
	h.logger.Info("Client unregistered", zap.Int64("userID", c.UserID))
}

// SendToUser ставит сообщение в очередь всех соединений пользователя.
// Возвращает число соединений, принявших сообщение.
func (h *Hub) SendToUser(userID int64, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.clients[userID] {
		select {
		case c.send <- message:
			delivered++
		default:
			h.logger.Warn("Send queue is full, message dropped", zap.Int64("userID", userID), zap.String("clientID", c.ID.String()))
		}
	}
	return delivered
}

// Connections число активных соединений пользователя.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// NotifySessionInvalidated отправляет session.invalidated и закрывает все
// соединения пользователя.
func (h *Hub) NotifySessionInvalidated(userID int64) {
	body, err := json.Marshal(messaging.IllustrationEvent{
		Type:      messaging.EventSessionInvalidated,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Error("Failed to marshal session event", zap.Error(err))
		return
	}
	h.SendToUser(userID, body)
	h.disconnectUser(userID)
}

func (h *Hub) disconnectUser(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients[userID] {
		// writePump допишет очередь и отправит CloseMessage
		c.closeSend()
	}
	delete(h.clients, userID)
}

// readPump держит чтение ради pong и закрытия. Входящие сообщения игнорируются.
func (c *Client) readPump(h *Hub, log *zap.Logger) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		log.Debug("Received unexpected message from client (ignored)")
	}
}

func (c *Client) writePump(log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			// одно событие на кадр, клиент парсит каждый кадр как JSON
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("Failed to write message", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}
