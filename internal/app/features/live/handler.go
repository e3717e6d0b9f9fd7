// internal/app/features/live/handler.go
package live

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/cartsync/internal/app/sync"
	"github.com/dalemusser/cartsync/internal/app/system/auth"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler pushes live snapshots over websockets. Each socket carries
// exactly one subscription: the full current snapshot is sent on connect
// and again after every relevant store change. Clients reconcile by
// replacement; there are no deltas to merge.
type Handler struct {
	Sync *sync.Factory
	Log  *zap.Logger

	upgrader websocket.Upgrader
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

func NewHandler(factory *sync.Factory, logger *zap.Logger) *Handler {
	return &Handler{
		Sync: factory,
		Log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Cookie sessions already gate these routes; the browser
			// attaches the cookie only for same-site requests.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleItems streams one side of the list, chosen by ?completed=true.
func (h *Handler) HandleItems(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	completed := r.URL.Query().Get("completed") == "true"

	h.serve(w, r, func(ctx context.Context) streamer {
		return asStreamer(h.Sync.ForPrincipal(p).ObserveItems(ctx, completed))
	})
}

// HandleStats streams the caller's (added, completed) counter pair.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	h.serve(w, r, func(ctx context.Context) streamer {
		return asStreamer(h.Sync.ForPrincipal(p).ObserveAccountStats(ctx))
	})
}

// HandleAccount streams the caller's full account aggregate.
func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	h.serve(w, r, func(ctx context.Context) streamer {
		return asStreamer(h.Sync.ForPrincipal(p).ObserveAccount(ctx))
	})
}

// streamer erases the subscription's element type so serve can run one
// pump loop for items, stats, and accounts alike. updates closes when the
// subscription ends; err is meaningful only after that.
type streamer struct {
	updates <-chan any
	err     func() error
	cancel  func()
}

func asStreamer[T any](sub *sync.Subscription[T]) streamer {
	out := make(chan any, 1)
	go func() {
		defer close(out)
		for v := range sub.Updates() {
			out <- v
		}
	}()
	return streamer{updates: out, err: sub.Err, cancel: sub.Cancel}
}

// serve upgrades the connection and pumps snapshots until either side
// goes away. The read pump exists only to notice the peer closing; any
// inbound payload is discarded.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, open func(context.Context) streamer) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	stream := open(ctx)
	defer stream.cancel()

	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snapshot, ok := <-stream.updates:
			if !ok {
				h.closeSocket(conn, stream.err())
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) closeSocket(conn *websocket.Conn, streamErr error) {
	code := websocket.CloseNormalClosure
	reason := ""
	if streamErr != nil {
		h.Log.Warn("live stream ended with error", zap.Error(streamErr))
		code = websocket.CloseInternalServerErr
		reason = "stream error"
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait))
}
