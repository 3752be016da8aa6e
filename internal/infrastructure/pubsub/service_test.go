package pubsub_test

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/internal/infrastructure/pubsub"
)

const testMessage = `{"id":"t1","origin":"backing-manager","sell":"A","buy":"B","sellAmount":"1","boughtAmount":"0.99"}`

type received struct {
	path    string
	auth    string
	payload string
}

func TestPubSubService(t *testing.T) {
	t.Parallel()

	lock := &sync.Mutex{}
	requests := make([]received, 0)
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "Bad method", http.StatusMethodNotAllowed)
				return
			}
			payload, _ := io.ReadAll(r.Body)
			lock.Lock()
			requests = append(requests, received{
				r.URL.Path, r.Header.Get("Authorization"), string(payload),
			})
			lock.Unlock()
			w.WriteHeader(http.StatusOK)
		},
	))
	t.Cleanup(server.Close)

	pubsubSvc, err := pubsub.NewService("")
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint
		pubsubSvc.Close()
	})

	secret := randomSecret()
	subsDetails := []struct {
		topic    string
		endpoint string
		secret   string
	}{
		{"TRADE_SETTLED", server.URL + "/settled", secret},
		{"TRADE_SETTLED", server.URL + "/settled", ""},
		{"TRADE_STARTED", server.URL + "/started", ""},
		{ports.AnyTopic, server.URL + "/all", ""},
	}
	for _, d := range subsDetails {
		id, err := pubsubSvc.Subscribe(d.topic, d.endpoint, d.secret)
		require.NoError(t, err)
		require.NotEmpty(t, id)
	}

	subs := pubsubSvc.ListSubscriptionsForTopic("TRADE_SETTLED")
	require.Len(t, subs, 3)
	secured := 0
	for _, s := range subs {
		if s.IsSecured() {
			secured++
		}
	}
	require.Equal(t, 1, secured)

	all := pubsubSvc.ListSubscriptionsForTopic(ports.UnspecifiedTopic)
	require.Len(t, all, len(subsDetails))

	err = pubsubSvc.Publish("TRADE_SETTLED", testMessage)
	require.NoError(t, err)

	lock.Lock()
	require.Len(t, requests, 3)
	for _, r := range requests {
		require.Equal(t, testMessage, r.payload)
		require.NotEqual(t, "/started", r.path)
		if r.auth == "" {
			continue
		}
		tokenString := strings.TrimPrefix(r.auth, "Bearer ")
		token, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)
	}
	lock.Unlock()

	for _, s := range all {
		err := pubsubSvc.Unsubscribe(s.Topic(), s.Id())
		require.NoError(t, err)
	}
	require.Empty(t, pubsubSvc.ListSubscriptionsForTopic(ports.UnspecifiedTopic))

	err = pubsubSvc.Unsubscribe("", "unknown")
	require.Error(t, err)

	// Nothing to invoke.
	err = pubsubSvc.Publish("TRADE_SETTLED", testMessage)
	require.NoError(t, err)
}

func TestSubscribeInvalid(t *testing.T) {
	t.Parallel()

	pubsubSvc, err := pubsub.NewService("")
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint
		pubsubSvc.Close()
	})

	tests := []struct {
		name     string
		topic    string
		endpoint string
	}{
		{"missing topic", "", "http://localhost:8080"},
		{"invalid endpoint", "TRADE_SETTLED", "not a url"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := pubsubSvc.Subscribe(tt.topic, tt.endpoint, "")
			require.Error(t, err)
		})
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	//nolint
	rand.Read(b)
	return hex.EncodeToString(b)
}
