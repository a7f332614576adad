package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/judgegodwins/chess-relay/http_utils"
	"github.com/judgegodwins/chess-relay/registry"
	"github.com/judgegodwins/chess-relay/rooms"
	"github.com/judgegodwins/chess-relay/tokens"
	"github.com/judgegodwins/chess-relay/util"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type ClientList map[string]*Client

type wsQuery struct {
	Token string `form:"token"`
}

type Manager struct {
	clients ClientList
	sync.RWMutex
	handlers    map[string]EventHandler
	upgrader    websocket.Upgrader
	coordinator *rooms.Coordinator
	names       *registry.Registry
	tokenMaker  tokens.Maker
	validate    *validator.Validate
	config      *util.Config
	logger      *zap.Logger
}

func NewManager(
	config *util.Config,
	coordinator *rooms.Coordinator,
	names *registry.Registry,
	tokenMaker tokens.Maker,
	validate *validator.Validate,
	logger *zap.Logger,
) *Manager {
	m := &Manager{
		clients:     make(ClientList),
		handlers:    make(map[string]EventHandler),
		coordinator: coordinator,
		names:       names,
		tokenMaker:  tokenMaker,
		validate:    validate,
		config:      config,
		logger:      logger,
	}

	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     m.checkOrigin,
	}

	m.setupEventHandlers()

	return m
}

func (m *Manager) setupEventHandlers() {
	m.handlers[EventSetName] = SetName
	m.handlers[EventCreateRoom] = CreateRoom
	m.handlers[EventJoinRoom] = JoinRoom
	m.handlers[EventMove] = RelayMove
	m.handlers[EventCloseRoom] = CloseRoom
}

// routeEvent runs the handler for evt. Events of a client that is already
// disconnected are refused.
func (m *Manager) routeEvent(ctx context.Context, evt Event, c *Client) error {
	c.handling.Lock()
	defer c.handling.Unlock()

	if c.gone() {
		return errClientGone
	}

	if handler, ok := m.handlers[evt.Type]; ok {
		if err := handler(ctx, evt, c); err != nil {
			return err
		}

		return nil
	}

	return errors.New("there is no such event type")
}

// dispatch delivers the events produced by the coordinator. Recipients that
// already disconnected are skipped.
func (m *Manager) dispatch(outs []rooms.Outbound) {
	for _, out := range outs {
		evt, err := NewEvent(out.Event, out.Payload)

		if err != nil {
			m.logger.Error("cannot create event", zap.String("type", out.Event), zap.Error(err))
			continue
		}

		for _, id := range out.To {
			client, ok := m.client(id)

			if !ok {
				m.logger.Debug("recipient gone", zap.String("conn_id", id), zap.String("type", out.Event))
				continue
			}

			if err := client.PushToEgress(evt); err != nil {
				m.logger.Debug("recipient gone", zap.String("conn_id", id), zap.String("type", out.Event))
			}
		}
	}
}

func (m *Manager) client(id string) (*Client, bool) {
	m.RLock()
	defer m.RUnlock()

	c, ok := m.clients[id]
	return c, ok
}

// Len is the number of connected clients.
func (m *Manager) Len() int {
	m.RLock()
	defer m.RUnlock()

	return len(m.clients)
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	m.clients[client.ID] = client
}

// removeClient reports whether client was still registered, so that the
// disconnect is handled once.
func (m *Manager) removeClient(client *Client) bool {
	m.Lock()
	_, ok := m.clients[client.ID]
	delete(m.clients, client.ID)
	m.Unlock()

	if !ok {
		return false
	}

	client.markDone()

	if client.connection != nil {
		client.connection.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
		client.connection.Close()
	}

	return true
}

// disconnect closes the rooms of client and notifies the players left behind.
// It waits for the event being handled, if any, so the rooms that event
// created or joined are closed too.
func (m *Manager) disconnect(client *Client) {
	if !m.removeClient(client) {
		return
	}

	client.handling.Lock()
	client.handling.Unlock()

	m.dispatch(m.coordinator.HandleDisconnect(client.ID))
}

// Websocket connection handler. A token from POST /auth/username may be
// passed as ?token= to preset the display name.
func (m *Manager) ServeWS(c *gin.Context) {
	var query wsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, http_utils.NewBaseResponse(false, err.Error()))
		return
	}

	var payload *tokens.Payload

	if query.Token != "" {
		var err error
		payload, err = m.tokenMaker.VerifyToken(query.Token)

		if err != nil {
			c.JSON(http.StatusUnauthorized, http_utils.NewBaseResponse(false, err.Error()))
			return
		}
	}

	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)

	if err != nil {
		// the upgrader has already replied
		m.logger.Warn("error upgrading to websocket connection", zap.Error(err))
		return
	}

	client := NewClient(conn, m)

	m.names.Track(client.ID)
	if payload != nil {
		m.names.SetDisplayName(client.ID, payload.Username)
	}

	m.addClient(client)

	client.logger.Info("client connected", zap.String("remote_addr", c.ClientIP()))

	ctx, cancel := context.WithCancel(c.Request.Context())

	defer func() {
		cancel()
		m.disconnect(client)
		client.logger.Info("client disconnected")
	}()

	go client.readMessages(ctx)
	go client.writeMessages(ctx)

	err = <-client.Err()

	client.logger.Debug("client error", zap.Error(err))
}

func (m *Manager) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// non-browser clients send no origin
	if origin == "" {
		return true
	}

	return lo.Contains(m.config.AllowedOrigins, "*") || lo.Contains(m.config.AllowedOrigins, origin)
}
