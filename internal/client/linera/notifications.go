package linera

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const (
	wsSubprotocol = "graphql-transport-ws"

	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgPing           = "ping"
	msgPong           = "pong"
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type NotificationStreamOptions struct {
	URL          string
	ChainID      string
	SubscriberID string
	BackoffMin   time.Duration
	BackoffMax   time.Duration
	PingInterval time.Duration
	Logger       *zap.Logger
}

// NotificationStream keeps one subscription to a chain's notification feed
// alive. Every inbound event invokes the callback fire-and-forget; there is
// no resume cursor, so after a reconnect callers must re-fetch full state to
// cover anything missed while the socket was down.
type NotificationStream struct {
	opts NotificationStreamOptions
}

func NewNotificationStream(opts NotificationStreamOptions) *NotificationStream {
	if opts.SubscriberID == "" {
		opts.SubscriberID = "chain_notifications"
	}
	if opts.BackoffMin == 0 {
		opts.BackoffMin = 1 * time.Second
	}
	if opts.BackoffMax == 0 {
		opts.BackoffMax = 30 * time.Second
	}
	if opts.PingInterval == 0 {
		opts.PingInterval = 15 * time.Second
	}
	return &NotificationStream{opts: opts}
}

// Run connects, subscribes and dispatches until ctx is cancelled. Server
// closes and network failures reconnect with doubling backoff capped at
// BackoffMax plus a little jitter; the subscription is re-established from
// scratch each time.
func (s *NotificationStream) Run(ctx context.Context, onEvent func()) error {
	if s == nil {
		return fmt.Errorf("stream is nil")
	}
	backoff := s.opts.BackoffMin
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		subscribed, err := s.connectAndConsume(ctx, onEvent)
		if err == nil || errors.Is(err, context.Canceled) {
			return err
		}
		if s.opts.Logger != nil {
			s.opts.Logger.Warn("notification stream disconnected",
				zap.String("url", s.opts.URL),
				zap.String("chain_id", s.opts.ChainID),
				zap.Duration("reconnect_in", backoff),
				zap.Error(err),
			)
		}
		if subscribed {
			backoff = s.opts.BackoffMin
		}
		if err := sleepWithJitter(ctx, backoff); err != nil {
			return err
		}
		backoff = nextBackoff(backoff, s.opts.BackoffMax)
	}
}

func (s *NotificationStream) connectAndConsume(ctx context.Context, onEvent func()) (subscribed bool, err error) {
	conn, _, err := websocket.Dial(ctx, s.opts.URL, &websocket.DialOptions{
		Subprotocols: []string{wsSubprotocol},
	})
	if err != nil {
		return false, err
	}
	defer conn.Close(websocket.StatusNormalClosure, "reconnect")

	if err := writeMessage(ctx, conn, wsMessage{Type: msgConnectionInit}); err != nil {
		return false, err
	}

	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	if s.opts.PingInterval > 0 {
		go func() {
			ticker := time.NewTicker(s.opts.PingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-pingCtx.Done():
					return
				case <-ticker.C:
					// Keepalive only. A missing pong is not a failure
					// signal; socket closure is.
					_ = writeMessage(pingCtx, conn, wsMessage{Type: msgPing})
				}
			}
		}()
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return subscribed, err
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if s.opts.Logger != nil {
				s.opts.Logger.Warn("malformed notification message", zap.Error(err))
			}
			continue
		}
		switch msg.Type {
		case msgConnectionAck:
			if err := writeMessage(ctx, conn, s.subscribeMessage()); err != nil {
				return subscribed, err
			}
			subscribed = true
			if s.opts.Logger != nil {
				s.opts.Logger.Info("subscribed to chain notifications",
					zap.String("chain_id", s.opts.ChainID),
				)
			}
		case msgNext:
			if onEvent != nil {
				onEvent()
			}
		case msgPong:
			// Keepalive answer, nothing to do.
		}
	}
}

func (s *NotificationStream) subscribeMessage() wsMessage {
	query := fmt.Sprintf(`subscription { notifications(chainId: %q) }`, s.opts.ChainID)
	payload, _ := json.Marshal(graphQLRequest{Query: query})
	return wsMessage{
		ID:      s.opts.SubscriberID,
		Type:    msgSubscribe,
		Payload: payload,
	}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg wsMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

// jitter spreads reconnects of several per-chain streams so they do not
// hammer a recovering node in lockstep.
const maxReconnectJitter = 500 * time.Millisecond

func sleepWithJitter(ctx context.Context, base time.Duration) error {
	if base <= 0 {
		return nil
	}
	jitter := time.Duration(rand.Int63n(int64(maxReconnectJitter)))
	timer := time.NewTimer(base + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
