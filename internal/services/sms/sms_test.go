package sms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	infos []string
}

func (l *recordingLogger) Info(msg string, keysAndValues ...interface{}) { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(msg string, keysAndValues ...interface{}) {}

func TestMessageBody(t *testing.T) {
	body := Message{CustomerName: "Ana", Code: "K7M2QX"}.Body()
	assert.Contains(t, body, "Ana")
	assert.Contains(t, body, "K7M2QX")
	assert.Contains(t, body, "Não compartilhe")

	assert.Contains(t, Message{Code: "K7M2QX"}.Body(), "cliente")
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"11987654321":       "+5511987654321",
		"(11) 98765-4321":   "+5511987654321",
		"1133334444":        "+551133334444",
		"+55 11 98765-4321": "+5511987654321",
		"5511987654321":     "+5511987654321",
		"011987654321":      "+5511987654321",
		"+14155550100":      "+14155550100",
	}
	for in, want := range cases {
		got, err := NormalizePhone(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "   ", "12345", "abc"} {
		_, err := NormalizePhone(bad)
		var smsErr *SMSError
		require.True(t, errors.As(err, &smsErr), bad)
		assert.Equal(t, ErrTypeValidation, smsErr.Type)
	}
}

func TestTwilioProviderSendsForm(t *testing.T) {
	var got url.Values
	var user, pass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Accounts/AC123/Messages.json", r.URL.Path)
		user, pass, _ = r.BasicAuth()
		raw, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(raw))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := NewTwilioProvider(&Config{
		Provider: ProviderTwilio, AccountSID: "AC123", AuthToken: "secret",
		FromNumber: "+15005550006", APIURL: srv.URL, Timeout: time.Second,
	})
	err := p.SendDeliveryCode(context.Background(), Message{Phone: "+5511987654321", CustomerName: "Ana", Code: "K7M2QX"})
	require.NoError(t, err)

	assert.Equal(t, "AC123", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, "+5511987654321", got.Get("To"))
	assert.Equal(t, "+15005550006", got.Get("From"))
	assert.Contains(t, got.Get("Body"), "K7M2QX")
}

func TestTwilioProviderErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorType
	}{
		{http.StatusTooManyRequests, ErrTypeRateLimit},
		{http.StatusUnauthorized, ErrTypeConfig},
		{http.StatusBadRequest, ErrTypeValidation},
		{http.StatusInternalServerError, ErrTypeProvider},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		p := NewTwilioProvider(&Config{AccountSID: "AC1", AuthToken: "t", FromNumber: "+1", APIURL: srv.URL, Timeout: time.Second})
		err := p.SendDeliveryCode(context.Background(), Message{Phone: "+5511987654321", Code: "AAAAAA"})
		srv.Close()

		var smsErr *SMSError
		require.True(t, errors.As(err, &smsErr))
		assert.Equal(t, tc.want, smsErr.Type)
		assert.Equal(t, tc.status, smsErr.Code)
	}
}

func TestSMSIRProviderSendsTemplateParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-API-KEY"))
		raw, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(raw), `"templateId":42`)

		var payload struct {
			Parameters []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"parameters"`
		}
		require.NoError(t, json.Unmarshal(raw, &payload))
		params := map[string]string{}
		for _, p := range payload.Parameters {
			params[p.Name] = p.Value
		}
		assert.Equal(t, "Ana", params["CustomerName"])
		assert.Equal(t, "K7M2QX", params["Code"])
		assert.Equal(t, DoNotShareWarning, params["Warning"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewSMSIRProvider(&Config{AccessKey: "key", TemplateID: 42, APIURL: srv.URL, Timeout: time.Second})
	require.NoError(t, p.SendDeliveryCode(context.Background(), Message{Phone: "+5511987654321", CustomerName: "Ana", Code: "K7M2QX"}))
}

func TestConfigSendBudget(t *testing.T) {
	cfg := &Config{Timeout: 10 * time.Second, MaxRetries: 3, RetryDelay: time.Second}
	// three timeouts plus 1s and 2s of backoff
	assert.Equal(t, 33*time.Second, cfg.SendBudget())

	assert.Equal(t, 3*10*time.Second+500*time.Millisecond+time.Second, (&Config{}).SendBudget())
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	rc := &RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}

	var calls int32
	err := RetryWithBackoff(ctx, rc, func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return &SMSError{Type: ErrTypeNetwork, Message: "flaky"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls)

	calls = 0
	err = RetryWithBackoff(ctx, rc, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return &SMSError{Type: ErrTypeValidation, Message: "bad phone"}
	})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls)

	calls = 0
	err = RetryWithBackoff(ctx, rc, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return &SMSError{Type: ErrTypeProvider, Message: "down"}
	})
	require.Error(t, err)
	assert.EqualValues(t, 3, calls)
}

func TestNewProvider(t *testing.T) {
	logger := &recordingLogger{}

	p, err := NewProvider(&Config{Provider: ProviderConsole}, logger)
	require.NoError(t, err)
	assert.Equal(t, ProviderConsole, p.Name())
	require.NoError(t, p.SendDeliveryCode(context.Background(), Message{Phone: "+5511987654321", Code: "AAAAAA"}))
	assert.Contains(t, logger.infos, "console SMS")

	p, err = NewProvider(&Config{Provider: ProviderTwilio, AccountSID: "AC", AuthToken: "t", FromNumber: "+1"}, logger)
	require.NoError(t, err)
	assert.Equal(t, ProviderTwilio, p.Name())

	_, err = NewProvider(&Config{Provider: ProviderTwilio}, logger)
	assert.Error(t, err)
	_, err = NewProvider(&Config{Provider: "carrier-pigeon"}, logger)
	assert.Error(t, err)
}
