// Command hosetail tails a line-delimited JSON streaming endpoint and writes
// each message to stdout, one JSON document per line. Connection lifecycle
// events are logged to stderr.
//
//	hosetail -base-url https://stream.example.com/1.1 -endpoint sample -token $TOKEN
//	hosetail -base-url https://stream.example.com/1.1 -endpoint filter \
//	    -param track=go,golang -token $TOKEN
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	hosepipe "github.com/hosepipe/hosepipe-go"
)

var endpoints = map[string]hosepipe.Endpoint{
	"filter":   hosepipe.EndpointFilter,
	"sample":   hosepipe.EndpointSample,
	"firehose": hosepipe.EndpointFirehose,
	"user":     hosepipe.EndpointUser,
	"site":     hosepipe.EndpointSite,
}

type paramFlags map[string]string

func (p paramFlags) String() string { return fmt.Sprint(map[string]string(p)) }

func (p paramFlags) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	p[key] = value
	return nil
}

func main() {
	var (
		baseURL      = flag.String("base-url", "", "base URL of the streaming API (required)")
		endpointName = flag.String("endpoint", "sample", "endpoint to consume: filter, sample, firehose, user, site")
		token        = flag.String("token", "", "bearer token for authentication")
		verbose      = flag.Bool("v", false, "log at debug level")
		params       = paramFlags{}
	)
	flag.Var(params, "param", "request parameter as key=value (repeatable; comma-separate list values)")
	flag.Parse()

	if *baseURL == "" {
		fmt.Fprintln(os.Stderr, "hosetail: -base-url is required")
		flag.Usage()
		os.Exit(2)
	}
	endpoint, ok := endpoints[*endpointName]
	if !ok {
		fmt.Fprintf(os.Stderr, "hosetail: unknown endpoint %q\n", *endpointName)
		os.Exit(2)
	}

	logCfg := zap.NewProductionConfig()
	if *verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hosetail: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	clientOpts := []hosepipe.ClientOption{
		hosepipe.WithBaseURL(*baseURL),
		hosepipe.WithLogger(logger),
	}
	if *token != "" {
		clientOpts = append(clientOpts, hosepipe.WithAuthenticator(hosepipe.BearerToken(*token)))
	}
	client := hosepipe.NewClient(clientOpts...)

	p := hosepipe.Params{}
	for k, v := range params {
		p[k] = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := json.NewEncoder(os.Stdout)
	cons := client.Consumer(endpoint, hosepipe.WithParams(p))
	err = cons.Run(ctx, func(v any) error {
		return out.Encode(v)
	})
	if err != nil && ctx.Err() == nil {
		logger.Error("stream terminated", zap.Error(err))
		os.Exit(1)
	}
}
