package websocket_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storybook-server/internal/messaging"
	"storybook-server/internal/middleware"
	"storybook-server/internal/models"
	"storybook-server/internal/websocket"
)

// sessionFromQuery подставляет сессию вместо проверки токена.
func sessionFromQuery(c *gin.Context) {
	var userID int64 = 7
	if c.Query("user") == "8" {
		userID = 8
	}
	c.Set(middleware.SessionKey, models.Session{UserID: userID})
	c.Next()
}

func startServer(t *testing.T, hub *websocket.Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", sessionFromQuery, hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_SendToUser(t *testing.T) {
	hub := websocket.NewHub(nil, zap.NewNop())
	srv := startServer(t, hub)

	tab1 := dial(t, srv, "")
	tab2 := dial(t, srv, "")
	other := dial(t, srv, "?user=8")
	require.Eventually(t, func() bool { return hub.Connections(7) == 2 && hub.Connections(8) == 1 }, time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, hub.SendToUser(7, []byte(`{"type":"illustration.chapter"}`)))
	assert.Equal(t, 0, hub.SendToUser(99, []byte(`{}`)))

	for _, conn := range []*gorilla.Conn{tab1, tab2} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"illustration.chapter"}`, string(msg))
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "other user must not receive the event")
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub := websocket.NewHub(nil, zap.NewNop())
	srv := startServer(t, hub)

	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.Connections(7) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Connections(7) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_NotifySessionInvalidated(t *testing.T) {
	hub := websocket.NewHub(nil, zap.NewNop())
	srv := startServer(t, hub)

	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.Connections(7) == 1 }, time.Second, 10*time.Millisecond)

	hub.NotifySessionInvalidated(7)
	assert.Equal(t, 0, hub.Connections(7))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var event messaging.IllustrationEvent
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, messaging.EventSessionInvalidated, event.Type)
	assert.Equal(t, int64(7), event.UserID)

	_, _, err = conn.ReadMessage()
	assert.True(t, gorilla.IsCloseError(err, gorilla.CloseNormalClosure))
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	hub := websocket.NewHub([]string{"https://app.example"}, zap.NewNop())
	srv := startServer(t, hub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := gorilla.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

type recordingSender struct {
	userIDs []int64
}

func (s *recordingSender) SendToUser(userID int64, _ []byte) int {
	s.userIDs = append(s.userIDs, userID)
	return 1
}

func TestEventRelay(t *testing.T) {
	sender := &recordingSender{}
	relay := websocket.NewEventRelay(sender, zap.NewNop())

	body, err := json.Marshal(messaging.IllustrationEvent{Type: messaging.EventIllustrationComplete, UserID: 7, StoryID: 42})
	require.NoError(t, err)

	assert.True(t, relay.HandleDelivery(t.Context(), amqp091.Delivery{Body: body}))
	assert.True(t, relay.HandleDelivery(t.Context(), amqp091.Delivery{Body: []byte("{broken")}))
	assert.True(t, relay.HandleDelivery(t.Context(), amqp091.Delivery{Body: []byte(`{"type":"illustration.chapter"}`)}))
	assert.Equal(t, []int64{7}, sender.userIDs)
}

func TestHubNotifier(t *testing.T) {
	sender := &recordingSender{}
	n := websocket.NewHubNotifier(sender)

	require.NoError(t, n.Notify(t.Context(), messaging.IllustrationEvent{Type: messaging.EventChapterIllustrated, UserID: 9}))
	assert.Equal(t, []int64{9}, sender.userIDs)
}
