package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postStreakAPI/internal/chat"
	"postStreakAPI/internal/store"
	"postStreakAPI/services"
)

const (
	testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"
	testChannelID     = "C0STREAK"
)

// stubChatClient resolves every user to a fixed profile. DMs are not
// exercised by handler tests.
type stubChatClient struct{}

func (stubChatClient) ResolveUser(_ context.Context, userID string) (*chat.UserProfile, error) {
	return &chat.UserProfile{UserID: userID, Username: "alice", ProfileImage: "https://img/alice.png"}, nil
}

func (stubChatClient) OpenDM(context.Context, string) (string, error) { return "D1", nil }

func (stubChatClient) PostMessage(context.Context, string, string) error { return nil }

func newTestEventsHandler(t *testing.T) (*EventsHandler, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "streaks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := services.NewStreakService(st, stubChatClient{}, nil, testChannelID)
	return NewEventsHandler(svc, testSigningSecret), st
}

// signedRequest builds a POST with valid Slack v0 signature headers.
func signedRequest(t *testing.T, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/slack/events", strings.NewReader(body))
	ts := fmt.Sprintf("%d", time.Now().Unix())

	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	mac.Write([]byte("v0:" + ts + ":" + body))

	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleSlackEvents_URLVerificationEchoesChallenge(t *testing.T) {
	h, _ := newTestEventsHandler(t)

	body := `{"type":"url_verification","token":"tok","challenge":"challenge-value-123"}`
	rec := httptest.NewRecorder()
	h.HandleSlackEvents(rec, signedRequest(t, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "challenge-value-123", rec.Body.String())
}

func TestHandleSlackEvents_InvalidSignatureRejected(t *testing.T) {
	h, _ := newTestEventsHandler(t)

	body := `{"type":"url_verification","challenge":"x"}`
	req := signedRequest(t, body)
	req.Header.Set("X-Slack-Signature", "v0=deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")

	rec := httptest.NewRecorder()
	h.HandleSlackEvents(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleSlackEvents_MissingSignatureHeadersRejected(t *testing.T) {
	h, _ := newTestEventsHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/slack/events",
		strings.NewReader(`{"type":"url_verification","challenge":"x"}`))
	rec := httptest.NewRecorder()
	h.HandleSlackEvents(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleSlackEvents_MessageCallbackAckedAndPersisted(t *testing.T) {
	h, st := newTestEventsHandler(t)

	body := fmt.Sprintf(`{
		"type": "event_callback",
		"team_id": "T1",
		"event": {
			"type": "message",
			"channel": "%s",
			"user": "U1",
			"text": "shipped it",
			"ts": "1725000000.000100"
		}
	}`, testChannelID)

	rec := httptest.NewRecorder()
	h.HandleSlackEvents(rec, signedRequest(t, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	var ack map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.True(t, ack["ok"])

	// Processing happens off the request goroutine; poll for the row.
	require.Eventually(t, func() bool {
		got, err := st.GetStreak(context.Background(), "U1")
		return err == nil && got != nil && got.Score == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestHandleSlackEvents_WrongChannelAckedButNotPersisted(t *testing.T) {
	h, st := newTestEventsHandler(t)

	body := `{
		"type": "event_callback",
		"event": {
			"type": "message",
			"channel": "C_OTHER",
			"user": "U1",
			"ts": "1725000000.000200"
		}
	}`

	rec := httptest.NewRecorder()
	h.HandleSlackEvents(rec, signedRequest(t, body))
	assert.Equal(t, http.StatusOK, rec.Code)

	time.Sleep(100 * time.Millisecond)
	got, err := st.GetStreak(context.Background(), "U1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHandleSlackEvents_MalformedBodyRejected(t *testing.T) {
	h, _ := newTestEventsHandler(t)

	rec := httptest.NewRecorder()
	h.HandleSlackEvents(rec, signedRequest(t, `{"type":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
