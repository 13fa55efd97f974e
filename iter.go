package hosepipe

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
)

// errStopIteration signals that the range body broke out of iteration.
var errStopIteration = errors.New("hosepipe: iteration stopped")

// Messages returns a range-over-func iterator over decoded messages.
//
//	for msg, err := range cons.Messages(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    process(msg)
//	}
//
// Iteration ends when the context is canceled, a fatal condition occurs
// (yielded as the final error), or the range body breaks.
func (c *Consumer) Messages(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		err := c.Run(ctx, func(v any) error {
			if !yield(v, nil) {
				return errStopIteration
			}
			return nil
		})
		if err == nil || errors.Is(err, errStopIteration) || errors.Is(err, ctx.Err()) {
			return
		}
		yield(nil, err)
	}
}

// typedDecoder decodes each line directly into T.
func typedDecoder[T any](line []byte) (any, error) {
	var v T
	if err := json.Unmarshal(line, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// JSONMessages returns a range-over-func iterator with each line decoded
// into T.
//
//	type Status struct {
//	    Text string `json:"text"`
//	}
//
//	for msg, err := range hosepipe.JSONMessages[Status](ctx, client, hosepipe.EndpointSample) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(msg.Text)
//	}
func JSONMessages[T any](ctx context.Context, c *Client, endpoint Endpoint, opts ...ConsumeOption) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		cons := c.Consumer(endpoint, append(opts, WithDecoder(typedDecoder[T]))...)
		err := cons.Run(ctx, func(v any) error {
			if !yield(v.(T), nil) {
				return errStopIteration
			}
			return nil
		})
		if err == nil || errors.Is(err, errStopIteration) || errors.Is(err, ctx.Err()) {
			return
		}
		var zero T
		yield(zero, err)
	}
}

// Items consumes the endpoint in a background goroutine and delivers typed
// messages over a channel. Both channels are closed when consumption ends;
// a terminal error, if any, is buffered on the error channel first.
//
//	items, errs := hosepipe.Items[Status](ctx, client, hosepipe.EndpointSample)
//	for item := range items {
//	    process(item)
//	}
//	if err := <-errs; err != nil {
//	    return err
//	}
func Items[T any](ctx context.Context, c *Client, endpoint Endpoint, opts ...ConsumeOption) (<-chan T, <-chan error) {
	items := make(chan T)
	errs := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errs)

		cons := c.Consumer(endpoint, append(opts, WithDecoder(typedDecoder[T]))...)
		err := cons.Run(ctx, func(v any) error {
			select {
			case items <- v.(T):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && !errors.Is(err, ctx.Err()) {
			errs <- err
		}
	}()

	return items, errs
}
