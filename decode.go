package hosepipe

import "encoding/json"

// Decoder turns one non-empty line into a message value. A decoding failure
// stops consumption with a DecodeError; install a Decoder that swallows
// errors (returning nil, nil) to skip malformed lines instead.
type Decoder func(line []byte) (any, error)

// Handler receives each decoded message synchronously, in arrival order. The
// next line is not read until the handler returns, so handlers provide
// natural backpressure and must not block indefinitely. A non-nil error
// aborts consumption and is returned unchanged from Run.
type Handler func(v any) error

// defaultDecoder unmarshals a line into generic JSON (map, slice, or nil).
func defaultDecoder(line []byte) (any, error) {
	var v any
	if err := json.Unmarshal(line, &v); err != nil {
		return nil, err
	}
	return v, nil
}
