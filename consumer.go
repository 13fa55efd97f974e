package hosepipe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Consumer runs the indefinite connect/read/backoff cycle for one endpoint.
// Create one with Client.Consumer; a Consumer must not be shared between
// concurrent Run calls, and independent streams need independent Consumers.
type Consumer struct {
	client   *Client
	endpoint Endpoint
	logger   *zap.Logger

	source         ParamSource
	decoder        Decoder
	stallTimeout   time.Duration
	reconnectDelay time.Duration
	maxAttempts    int

	// Injectable time hooks so retry and gating logic is testable without
	// real waiting.
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
	dialBackoff func() backoff.BackOff
}

// connState is the per-Run mutable state. It is owned by exactly one running
// loop and discarded when Run returns.
type connState struct {
	lastConnect time.Time
	lastStatus  int
	attempts    int
	params      Params
}

// Consumer creates a consumer for the given endpoint.
//
// Example:
//
//	cons := client.Consumer(hosepipe.EndpointFilter,
//	    hosepipe.WithParams(hosepipe.Params{"track": []string{"go", "golang"}}),
//	)
//	err := cons.Run(ctx, func(v any) error {
//	    fmt.Println(v)
//	    return nil
//	})
func (c *Client) Consumer(endpoint Endpoint, opts ...ConsumeOption) *Consumer {
	cfg := &consumeConfig{
		stallTimeout:   DefaultStallTimeout,
		reconnectDelay: DefaultReconnectDelay,
		maxAttempts:    DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	source := cfg.source
	if source == nil {
		source = StaticParams(nil)
	}
	decoder := cfg.decoder
	if decoder == nil {
		decoder = defaultDecoder
	}

	return &Consumer{
		client:         c,
		endpoint:       endpoint,
		logger:         c.logger.With(zap.String("endpoint", endpoint.Name)),
		source:         source,
		decoder:        decoder,
		stallTimeout:   cfg.stallTimeout,
		reconnectDelay: cfg.reconnectDelay,
		maxAttempts:    cfg.maxAttempts,
		now:            time.Now,
		sleep:          sleepCtx,
		dialBackoff:    func() backoff.BackOff { return newDialBackoff() },
	}
}

// Run consumes the stream until the context is canceled or a fatal condition
// occurs. It reconnects on clean closes, stalls, dropped connections, and
// parameter drift, and backs off on transient status codes. The returned
// error is ctx.Err() on cancellation, a *FatalError, *MaxAttemptsError,
// *DecodeError, *StreamError, or an error returned by the handler.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	state := &connState{params: c.source()}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := c.open(ctx, state, state.params)
		if err != nil {
			var te *TransientError
			if errors.As(err, &te) {
				state.attempts++
				if state.attempts > c.maxAttempts {
					return &MaxAttemptsError{StatusCode: te.StatusCode, Attempts: state.attempts}
				}
				delay := c.client.backoff.Delay(te.StatusCode, state.attempts-1)
				c.logger.Warn("transient failure, backing off",
					zap.Int("status", te.StatusCode),
					zap.Int("attempt", state.attempts),
					zap.Duration("delay", delay))
				if err := c.sleep(ctx, delay); err != nil {
					return err
				}
				// Retry with the same cached parameters; they only
				// regenerate on drift reconnects.
				continue
			}
			return err
		}

		state.attempts = 0
		c.logger.Info("stream connected")

		if err := c.stream(ctx, state, body, h); err != nil {
			return err
		}
		c.logger.Info("recycling connection")
	}
}

// stream reads one open connection to completion. A nil return means the
// connection should be recycled (clean close, stall, dropped connection, or
// parameter drift); a non-nil return propagates out of Run.
func (c *Consumer) stream(ctx context.Context, state *connState, body io.ReadCloser, h Handler) error {
	lr := newLineReader(body, c.stallTimeout)
	defer lr.close()

	for {
		line, err := lr.next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			switch {
			case errors.Is(err, errStalled):
				c.logger.Warn("stream stalled",
					zap.Duration("stallTimeout", c.stallTimeout))
			case errors.Is(err, io.EOF):
				c.logger.Info("stream closed by server")
			default:
				c.logger.Warn("stream read failed", zap.Error(err))
			}
			return nil
		}

		if len(bytes.TrimSpace(line)) == 0 {
			// Keep-alive. The watchdog was already reset by the reader.
			c.logger.Debug("keep-alive received")
		} else {
			v, derr := c.decoder(line)
			if derr != nil {
				return &DecodeError{Line: append([]byte(nil), line...), Err: derr}
			}
			if herr := h(v); herr != nil {
				return herr
			}
		}

		// Drift gate: a healthy connection is only recycled for new
		// parameters once it has reached the reconnect delay.
		if c.now().Sub(state.lastConnect) >= c.reconnectDelay {
			fresh := c.source()
			if !fresh.Equal(state.params) {
				state.params = fresh
				c.logger.Info("parameters changed, reconnecting")
				return nil
			}
		}
	}
}

// sleepCtx blocks for d or until ctx is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
