package hosepipe

import (
	"fmt"
	"net/url"
	"strings"
)

// Params is the set of request parameters sent when opening a stream.
// Values may be strings or lists of strings; lists are collapsed to a single
// comma-joined string before transmission. Other scalar values are formatted
// with fmt.Sprint.
type Params map[string]any

// ParamSource produces a fresh parameter snapshot on demand. The consumer
// calls it when a connection is first opened and again when the reconnect
// gate opens, comparing successive snapshots to detect drift. It may read
// live external state; the consumer never mutates the returned map.
type ParamSource func() Params

// Values returns the transmission-ready form of the parameters, with list
// values collapsed.
func (p Params) Values() url.Values {
	if len(p) == 0 {
		return url.Values{}
	}
	vals := make(url.Values, len(p))
	for k, v := range p {
		vals.Set(k, collapse(v))
	}
	return vals
}

// Equal reports whether two parameter sets serialize identically. The
// comparison is performed on the collapsed, canonically encoded form, so a
// nil map and an empty map compare equal, and []string{"a","b"} equals
// "a,b". Neither side is mutated.
func (p Params) Equal(other Params) bool {
	return p.Values().Encode() == other.Values().Encode()
}

// collapse converts a parameter value to its wire string.
func collapse(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	default:
		return fmt.Sprint(val)
	}
}

// StaticParams adapts a fixed parameter set into a ParamSource.
func StaticParams(p Params) ParamSource {
	return func() Params { return p }
}
