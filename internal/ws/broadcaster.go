package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"cnc-telemetry-backend/internal/store"
)

// TokenResolver maps an opaque subscriber token to a user identity. Token
// issuance and policy live outside this package.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (string, error)
}

// Broadcaster serves the live machine-data socket. Every accepted connection
// immediately receives the full snapshot and then periodic re-pushes;
// authentication is only required for on-demand queries.
type Broadcaster struct {
	store        store.Store
	resolver     TokenResolver
	pushInterval time.Duration

	// baseCtx ties hijacked connections to process shutdown, which
	// http.Server.Shutdown does not cover.
	baseCtx  context.Context
	upgrader websocket.Upgrader
}

// NewBroadcaster creates a Broadcaster. Connections close when baseCtx is
// cancelled.
func NewBroadcaster(baseCtx context.Context, st store.Store, resolver TokenResolver, pushInterval time.Duration) *Broadcaster {
	return &Broadcaster{
		store:        st,
		resolver:     resolver,
		pushInterval: pushInterval,
		baseCtx:      baseCtx,
		upgrader: websocket.Upgrader{
			// Access control happens per message, not at upgrade time.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle upgrades the request and serves the connection until disconnect.
func (b *Broadcaster) Handle(c *gin.Context) {
	conn, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	log.Println("WebSocket connection accepted.")
	b.serve(conn)
	log.Println("WebSocket connection closed.")
}

// subscriberConn is the per-connection state. The authenticated flag is
// owned by the read loop; all frames go out through the send channel so the
// periodic pusher and the request handler never interleave writes.
type subscriberConn struct {
	b    *Broadcaster
	conn *websocket.Conn
	send chan any

	authenticated bool
	user          string
}

func (b *Broadcaster) serve(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(b.baseCtx)
	defer cancel()

	sc := &subscriberConn{
		b:    b,
		conn: conn,
		send: make(chan any, 16),
	}

	go sc.writeLoop(ctx)

	sc.pushSnapshot(ctx)
	go sc.pushLoop(ctx)

	// Blocks until the peer disconnects; the deferred cancel then stops
	// the push and write loops, and no further store access happens on
	// this connection.
	sc.readLoop(ctx)
}

// writeLoop is the single writer for the connection. It also closes the
// socket on shutdown, which unblocks the read loop.
func (sc *subscriberConn) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			sc.conn.Close()
			return
		case msg := <-sc.send:
			if err := sc.conn.WriteJSON(msg); err != nil {
				log.Printf("WebSocket write failed: %v", err)
			}
		}
	}
}

// pushLoop re-pushes the snapshot on a fixed tick, independent of inbound
// traffic and of authentication state, until the connection closes.
func (sc *subscriberConn) pushLoop(ctx context.Context) {
	ticker := time.NewTicker(sc.b.pushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sc.pushSnapshot(ctx)
		}
	}
}

func (sc *subscriberConn) readLoop(ctx context.Context) {
	for {
		_, raw, err := sc.conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := decodeInbound(raw)
		if err != nil {
			sc.enqueue(ctx, newError(err.Error()))
			continue
		}

		switch msg.Type {
		case TypeAuthenticate:
			sc.handleAuthenticate(ctx, msg.Token)
		case TypeGetMachineData, TypeGetToolData, TypeGetAxisData:
			sc.handleQuery(ctx, msg.Type)
		default:
			log.Printf("Unknown message type received: %q", msg.Type)
			sc.enqueue(ctx, newError("Unknown message type"))
		}
	}
}

func (sc *subscriberConn) handleAuthenticate(ctx context.Context, token string) {
	user, err := sc.b.resolver.ResolveToken(ctx, token)
	if errors.Is(err, store.ErrInvalidToken) {
		log.Println("Invalid token provided.")
		sc.enqueue(ctx, newError("Invalid token"))
		return
	}
	if err != nil {
		log.Printf("Token resolution failed: %v", err)
		sc.enqueue(ctx, newError("Authentication unavailable"))
		return
	}

	sc.authenticated = true
	sc.user = user
	log.Printf("Subscriber authenticated as %s.", user)
	sc.pushSnapshot(ctx)
}

func (sc *subscriberConn) handleQuery(ctx context.Context, msgType string) {
	if !sc.authenticated {
		log.Println("Unauthenticated subscriber sent an on-demand query.")
		sc.enqueue(ctx, newError("Not authenticated"))
		return
	}

	switch msgType {
	case TypeGetMachineData:
		sc.pushMachineData(ctx)
	case TypeGetToolData:
		sc.pushToolData(ctx)
	case TypeGetAxisData:
		sc.pushAxisData(ctx)
	}
}

// pushSnapshot sends the latest rows of all three projections.
func (sc *subscriberConn) pushSnapshot(ctx context.Context) {
	sc.pushMachineData(ctx)
	sc.pushToolData(ctx)
	sc.pushAxisData(ctx)
}

func (sc *subscriberConn) pushMachineData(ctx context.Context) {
	machines, err := sc.b.store.LatestMachines(ctx)
	if err != nil {
		log.Printf("Error resolving machine snapshot: %v", err)
		return
	}
	sc.enqueue(ctx, dataMessage{Type: TypeMachineData, Data: machines})
}

func (sc *subscriberConn) pushToolData(ctx context.Context) {
	tools, err := sc.b.store.LatestToolSamples(ctx)
	if err != nil {
		log.Printf("Error resolving tool snapshot: %v", err)
		return
	}
	sc.enqueue(ctx, dataMessage{Type: TypeToolData, Data: tools})
}

func (sc *subscriberConn) pushAxisData(ctx context.Context) {
	axes, err := sc.b.store.LatestAxisSamples(ctx)
	if err != nil {
		log.Printf("Error resolving axis snapshot: %v", err)
		return
	}
	sc.enqueue(ctx, dataMessage{Type: TypeAxisData, Data: axes})
}

// enqueue hands a frame to the write loop without blocking past shutdown.
func (sc *subscriberConn) enqueue(ctx context.Context, msg any) {
	select {
	case sc.send <- msg:
	case <-ctx.Done():
	}
}
