package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/errors"
	"github.com/hpungsan/hookcard/internal/export"
	"github.com/hpungsan/hookcard/internal/webhook"
)

func TestSend_Card(t *testing.T) {
	ft := &fakeTransport{resp: webhook.Response{Status: http.StatusNoContent}}
	c := sampleCard()

	out, err := Send(context.Background(), ft, testConfig(), SendInput{Endpoint: testEndpoint, Card: &c})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, http.StatusNoContent, out.Status)

	require.Len(t, ft.bodies, 1)
	assert.Equal(t, testEndpoint, ft.urls[0])
	want, err := export.Marshal(export.ToWirePayload(c), "")
	require.NoError(t, err)
	assert.Equal(t, string(want), ft.bodies[0])
}

func TestSend_RawPayloadVerbatim(t *testing.T) {
	ft := &fakeTransport{resp: webhook.Response{Status: http.StatusOK}}
	raw := json.RawMessage(`{"content": "hi",  "embeds": [{"title": "x", "extra": 1}]}`)

	_, err := Send(context.Background(), ft, testConfig(), SendInput{Endpoint: testEndpoint, Payload: raw})
	require.NoError(t, err)
	require.Len(t, ft.bodies, 1)
	assert.Equal(t, string(raw), ft.bodies[0])
}

func TestSend_Validation(t *testing.T) {
	c := sampleCard()
	tests := []struct {
		name  string
		input SendInput
		code  errors.ErrorCode
	}{
		{"no endpoint", SendInput{Card: &c}, errors.ErrInvalidRequest},
		{"no payload", SendInput{Endpoint: testEndpoint}, errors.ErrInvalidRequest},
		{"both", SendInput{Endpoint: testEndpoint, Card: &c, Payload: json.RawMessage(`{}`)}, errors.ErrInvalidRequest},
		{"wrong scheme", SendInput{Endpoint: "http://discord.com/api/webhooks/123/abc", Card: &c}, errors.ErrInvalidEndpoint},
		{"wrong host", SendInput{Endpoint: "https://evil.example/api/webhooks/123/abc", Card: &c}, errors.ErrInvalidEndpoint},
		{"payload array", SendInput{Endpoint: testEndpoint, Payload: json.RawMessage(`[1]`)}, errors.ErrInvalidRequest},
		{"payload garbage", SendInput{Endpoint: testEndpoint, Payload: json.RawMessage(`{nope`)}, errors.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{resp: webhook.Response{Status: 204}}
			_, err := Send(context.Background(), ft, testConfig(), tt.input)
			assertErrorCode(t, err, tt.code)
			assert.Empty(t, ft.bodies, "transport must not be called")
		})
	}
}

func TestSend_LintGate(t *testing.T) {
	c := sampleCard()
	c.Fields = nil
	for i := 0; i < 26; i++ {
		c.Fields = append(c.Fields, card.Field{Name: fmt.Sprint(i), Value: "v"})
	}

	ft := &fakeTransport{resp: webhook.Response{Status: 204}}
	_, err := Send(context.Background(), ft, testConfig(), SendInput{Endpoint: testEndpoint, Card: &c})
	assertErrorCode(t, err, errors.ErrCardInvalid)
	assert.Empty(t, ft.bodies)

	out, err := Send(context.Background(), ft, testConfig(), SendInput{Endpoint: testEndpoint, Card: &c, Force: true})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Warnings)
	require.Len(t, ft.bodies, 1)
	assert.Equal(t, 26, strings.Count(ft.bodies[0], `"inline":false`))
}

func TestSend_UpstreamRejection(t *testing.T) {
	ft := &fakeTransport{resp: webhook.Response{Status: http.StatusBadRequest, Body: `{"embeds":["0"]}`}}
	c := sampleCard()

	_, err := Send(context.Background(), ft, testConfig(), SendInput{Endpoint: testEndpoint, Card: &c})
	hErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrDispatchFailed, hErr.Code)
	assert.Equal(t, http.StatusBadRequest, hErr.Status)
	assert.Equal(t, `Discord API error: {"embeds":["0"]}`, hErr.Message)
}

func TestSend_TransportFailure(t *testing.T) {
	ft := &fakeTransport{err: fmt.Errorf("post webhook: connection reset")}
	c := sampleCard()

	_, err := Send(context.Background(), ft, testConfig(), SendInput{Endpoint: testEndpoint, Card: &c})
	assertErrorCode(t, err, errors.ErrDispatchFailed)
}

func TestSend_NilTransport(t *testing.T) {
	c := sampleCard()
	_, err := Send(context.Background(), nil, testConfig(), SendInput{Endpoint: testEndpoint, Card: &c})
	assertErrorCode(t, err, errors.ErrInternal)
}
