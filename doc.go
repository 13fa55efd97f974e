// Package hosepipe provides a resilient client for long-lived, line-delimited
// JSON HTTP streaming endpoints.
//
// The client opens an authenticated connection to a streaming endpoint, reads
// newline-delimited JSON messages indefinitely, and handles the failure modes
// such endpoints exhibit: it backs off exponentially on transient status
// codes, reconnects on clean closes and stalled connections, terminates
// immediately on fatal status codes, and recycles the connection when the
// caller's request parameters drift.
//
// # Basic Usage
//
// Create a client and consume an endpoint:
//
//	client := hosepipe.NewClient(
//	    hosepipe.WithBaseURL("https://stream.example.com/1.1"),
//	    hosepipe.WithAuthenticator(hosepipe.BearerToken(token)),
//	)
//
//	cons := client.Consumer(hosepipe.EndpointFilter,
//	    hosepipe.WithParams(hosepipe.Params{"track": []string{"go", "golang"}}),
//	)
//
//	err := cons.Run(ctx, func(v any) error {
//	    fmt.Println(v)
//	    return nil
//	})
//
// Run blocks until the context is canceled or a fatal condition occurs,
// reconnecting as needed in between. Each message is handed to the handler
// synchronously and in arrival order; the next line is not read until the
// handler returns.
//
// # Live Parameters
//
// To follow external configuration, supply a ParamSource instead of fixed
// parameters. Once a connection has been up for the reconnect delay, each
// snapshot is compared against the one in use and any difference recycles
// the connection with the new parameters:
//
//	cons := client.Consumer(hosepipe.EndpointFilter,
//	    hosepipe.WithParamSource(func() hosepipe.Params {
//	        return hosepipe.Params{"track": store.CurrentKeywords()}
//	    }),
//	)
//
// # Error Handling
//
// Transient failures are retried internally and observable only through the
// configured logger. Terminal conditions surface as typed errors:
//
//	var fatal *hosepipe.FatalError
//	if errors.As(err, &fatal) {
//	    // Non-200 status outside the backoff table, e.g. 401.
//	}
//	var capped *hosepipe.MaxAttemptsError
//	if errors.As(err, &capped) {
//	    // Too many consecutive transient failures.
//	}
package hosepipe
