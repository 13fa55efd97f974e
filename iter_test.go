package hosepipe

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hosepipe/hosepipe-go/hosepipetest"
)

func TestMessagesYieldsUntilFatal(t *testing.T) {
	mt := hosepipetest.NewMockTransport()
	mt.AddStream(`{"n":1}`, `{"n":2}`)
	mt.AddStatus(http.StatusUnauthorized)

	cons := newTestConsumer(mt, EndpointSample, nil)

	var got []any
	var finalErr error
	for msg, err := range cons.Messages(context.Background()) {
		if err != nil {
			finalErr = err
			break
		}
		got = append(got, msg)
	}

	assert.Len(t, got, 2)

	var fe *FatalError
	require.ErrorAs(t, finalErr, &fe)
}

func TestMessagesBreakStopsConsumption(t *testing.T) {
	mt := hosepipetest.NewMockTransport()
	mt.AddStream(`{"n":1}`, `{"n":2}`, `{"n":3}`)

	cons := newTestConsumer(mt, EndpointSample, nil)

	seen := 0
	for _, err := range cons.Messages(context.Background()) {
		require.NoError(t, err)
		seen++
		if seen == 1 {
			break
		}
	}

	assert.Equal(t, 1, seen)
}

func TestJSONMessagesDecodesTyped(t *testing.T) {
	type status struct {
		N int `json:"n"`
	}

	server := hosepipetest.NewMockServer()
	defer server.Close()
	server.Enqueue(hosepipetest.Response{
		Status: http.StatusOK,
		Lines:  []string{`{"n":1}`, ``, `{"n":2}`},
	})
	server.Enqueue(hosepipetest.Response{Status: http.StatusUnauthorized})

	client := NewClient(WithBaseURL(server.URL()))

	var got []status
	var finalErr error
	for msg, err := range JSONMessages[status](context.Background(), client, EndpointSample) {
		if err != nil {
			finalErr = err
			break
		}
		got = append(got, msg)
	}

	assert.Equal(t, []status{{N: 1}, {N: 2}}, got)

	var fe *FatalError
	require.ErrorAs(t, finalErr, &fe)
}

func TestItemsDeliversOverChannel(t *testing.T) {
	type status struct {
		N int `json:"n"`
	}

	server := hosepipetest.NewMockServer()
	defer server.Close()
	server.Enqueue(hosepipetest.Response{
		Status: http.StatusOK,
		Lines:  []string{`{"n":1}`, `{"n":2}`},
	})
	server.Enqueue(hosepipetest.Response{Status: http.StatusUnauthorized})

	client := NewClient(WithBaseURL(server.URL()))

	items, errs := Items[status](context.Background(), client, EndpointSample)

	var got []status
	for item := range items {
		got = append(got, item)
	}
	finalErr := <-errs

	assert.Equal(t, []status{{N: 1}, {N: 2}}, got)

	var fe *FatalError
	require.ErrorAs(t, finalErr, &fe)
}
