package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Envelope is the common wrapper on push-stream frames. TxType tells new
// token creations apart from migration events; everything else is payload.
type Envelope struct {
	TxType string `json:"txType"`
	Mint   string `json:"mint"`
}

const (
	TxTypeCreate  = "create"
	TxTypeMigrate = "migrate"
)

type subscribeRequest struct {
	Method string `json:"method"`
}

// Options configure one push-stream connection.
type Options struct {
	URL        string
	BackoffMin time.Duration
	BackoffMax time.Duration
	Heartbeat  time.Duration
	Logger     *zap.Logger
}

// Client maintains a subscription to the launchpad's push feed with
// jittered reconnects. Delivery upstream is at-least-once and unordered;
// consumers dedupe.
type Client struct {
	opts      Options
	seenFirst bool
}

func New(opts Options) *Client {
	if opts.BackoffMin <= 0 {
		opts.BackoffMin = 1 * time.Second
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = 30 * time.Second
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 20 * time.Second
	}
	return &Client{opts: opts}
}

// Run connects, subscribes to both event kinds, and pumps frames into
// onMessage until ctx is canceled. Reconnects on any read failure.
func (c *Client) Run(ctx context.Context, onMessage func(Envelope, []byte)) error {
	if c == nil {
		return fmt.Errorf("stream client is nil")
	}
	if strings.TrimSpace(c.opts.URL) == "" {
		return fmt.Errorf("stream url is empty")
	}

	backoff := c.opts.BackoffMin
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, _, err := websocket.Dial(ctx, c.opts.URL, nil)
		if err != nil {
			if c.opts.Logger != nil {
				c.opts.Logger.Warn("push stream connect failed", zap.Error(err))
			}
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, c.opts.BackoffMax)
			continue
		}
		conn.SetReadLimit(1 << 20)
		if c.opts.Logger != nil {
			c.opts.Logger.Info("push stream connected")
		}

		if err := c.subscribe(ctx, conn); err != nil {
			if c.opts.Logger != nil {
				c.opts.Logger.Warn("push stream subscribe failed", zap.Error(err))
			}
			_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, c.opts.BackoffMax)
			continue
		}
		backoff = c.opts.BackoffMin

		err = c.consume(ctx, conn, onMessage)
		_ = conn.Close(websocket.StatusNormalClosure, "reconnect")
		if err == nil || errors.Is(err, context.Canceled) {
			return err
		}
		if err := sleepWithJitter(ctx, backoff); err != nil {
			return err
		}
		backoff = nextBackoff(backoff, c.opts.BackoffMax)
	}
}

func (c *Client) subscribe(ctx context.Context, conn *websocket.Conn) error {
	for _, method := range []string{"subscribeNewToken", "subscribeMigration"} {
		payload, err := json.Marshal(subscribeRequest{Method: method})
		if err != nil {
			return err
		}
		if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) consume(ctx context.Context, conn *websocket.Conn, onMessage func(Envelope, []byte)) error {
	heartbeatErr := make(chan error, 1)
	heartbeatCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(c.opts.Heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-heartbeatCtx.Done():
				heartbeatErr <- heartbeatCtx.Err()
				return
			case <-ticker.C:
				pingCtx, cancelPing := context.WithTimeout(heartbeatCtx, 5*time.Second)
				err := conn.Ping(pingCtx)
				cancelPing()
				if err != nil {
					heartbeatErr <- err
					return
				}
			}
		}
	}()

	for {
		select {
		case err := <-heartbeatErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		default:
		}
		_, data, err := conn.Read(ctx)
		if err != nil {
			if c.opts.Logger != nil && !errors.Is(err, context.Canceled) {
				c.opts.Logger.Warn("push stream read failed", zap.Error(err))
			}
			return err
		}
		var env Envelope
		_ = json.Unmarshal(data, &env)
		if env.TxType == "" {
			// Subscription acks and keepalives have no txType.
			continue
		}
		if c.opts.Logger != nil && !c.seenFirst {
			c.seenFirst = true
			c.opts.Logger.Info("push stream first event", zap.String("tx_type", env.TxType))
		}
		if onMessage != nil {
			onMessage(env, data)
		}
	}
}

func sleepWithJitter(ctx context.Context, d time.Duration) error {
	jitter := time.Duration(rand.Int63n(int64(d)/2 + 1))
	timer := time.NewTimer(d + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
