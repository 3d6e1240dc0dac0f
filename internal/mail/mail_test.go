package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func TestVerificationEmail(t *testing.T) {
	msg := VerificationEmail("asha@example.com", "Asha Rao", "https://app/verify?token=abc")
	assert.Equal(t, "asha@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Verify")
	assert.Contains(t, msg.Body, "Hi Asha Rao,")
	assert.Contains(t, msg.Body, "https://app/verify?token=abc")

	anon := PasswordResetEmail("x@example.com", "  ", "https://app/reset")
	assert.Contains(t, anon.Body, "Hi there,")
}

func TestRFC822(t *testing.T) {
	raw := string(RFC822(Message{
		From:    "Career Compass <no-reply@example.com>",
		To:      "asha@example.com",
		Subject: "Résumé ready",
		Body:    "line one\nline two",
	}))

	assert.Contains(t, raw, "To: asha@example.com\r\n")
	assert.Contains(t, raw, "Subject: =?utf-8?q?R=C3=A9sum=C3=A9_ready?=\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nline one\r\nline two"))
}

func TestLogMailer(t *testing.T) {
	m := &LogMailer{From: "no-reply@example.com"}
	assert.NoError(t, m.Send(context.Background(), Message{To: "a@example.com", Subject: "s", Body: "b"}))
}

func TestGmailMailer_Send(t *testing.T) {
	var got gmail.Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/users/me/messages/send")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1"}`))
	}))
	defer srv.Close()

	svc, err := gmail.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	m := NewGmailMailerWithService("no-reply@example.com", svc)
	require.NoError(t, m.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi", Body: "hello"}))

	decoded, err := base64.URLEncoding.DecodeString(got.Raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "From: no-reply@example.com")
	assert.Contains(t, string(decoded), "hello")
}

func TestNewGmailMailer_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewGmailMailer(context.Background(), "a@example.com", filepath.Join(dir, "nope.json"), "")
	assert.ErrorContains(t, err, "client secret")

	creds := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(creds, []byte(`{"installed":{"client_id":"id","client_secret":"s","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`), 0o600))
	_, err = NewGmailMailer(context.Background(), "a@example.com", creds, filepath.Join(dir, "token.json"))
	assert.ErrorContains(t, err, "token file")
}
