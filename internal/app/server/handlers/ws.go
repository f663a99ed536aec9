package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pratham-srivastava-07/Nexus/internal/app/dispatcher"
	"github.com/pratham-srivastava-07/Nexus/internal/app/server/ws"
	"github.com/pratham-srivastava-07/Nexus/pkg/logging"
)

// WSHandler upgrades HTTP requests into live chat connections and pumps
// inbound frames through the dispatcher.
type WSHandler struct {
	dispatcher *dispatcher.Dispatcher
}

func NewWSHandler(d *dispatcher.Dispatcher) *WSHandler {
	return &WSHandler{dispatcher: d}
}

func (h *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	// The session outlives the HTTP request; only an explicit close or a
	// transport error ends it.
	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)
	defer cancel()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // transport security belongs to the hosting edge
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade failed", logging.Err(err))
		return
	}

	socket := ws.NewWebSocket(ctx, conn)
	client := ws.NewClient(ctx, socket)

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("chat.conn_id", client.ID()))
	log.InfoContext(ctx, "ws handler - connection established", logging.Conn(client.ID()))

	conn.SetCloseHandler(func(code int, text string) error {
		cancel()
		return nil
	})

	// Close effects run exactly once, whatever ends the read loop.
	defer func() {
		h.dispatcher.HandleClose(ctx, client)
		client.Close()
		log.InfoContext(ctx, "ws handler - connection cleaned up", logging.Conn(client.ID()))
	}()

	// Frames are dispatched inline: per-connection order is preserved, and
	// store I/O in one connection's handler never blocks another's loop.
	socket.ReadLoop(func(data []byte) {
		h.dispatcher.Dispatch(ctx, client, data)
	})
}
