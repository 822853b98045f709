package sms_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khiva-consulting/backoffice-api/internal/config"
	"github.com/khiva-consulting/backoffice-api/internal/sms"
)

func TestClient_Send(t *testing.T) {
	var gotPath, gotAuth, gotPhone, gotMessage, gotFrom string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		gotPhone = r.PostFormValue("mobile_phone")
		gotMessage = r.PostFormValue("message")
		gotFrom = r.PostFormValue("from")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := sms.NewClient(&config.SMSConfig{
		BaseURL:        srv.URL,
		Token:          "test-token",
		From:           "4546",
		TimeoutSeconds: 5,
	}, zap.NewNop())

	err := client.Send(context.Background(), "998901234567", "Eslatma: ertaga qo'ng'iroq")
	require.NoError(t, err)

	assert.Equal(t, "/message/sms/send", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "998901234567", gotPhone)
	assert.Equal(t, "Eslatma: ertaga qo'ng'iroq", gotMessage)
	assert.Equal(t, "4546", gotFrom)
}

func TestClient_Send_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	client := sms.NewClient(&config.SMSConfig{
		BaseURL:        srv.URL,
		Token:          "expired",
		From:           "4546",
		TimeoutSeconds: 5,
	}, zap.NewNop())

	err := client.Send(context.Background(), "998901234567", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid token")
}

func TestClient_Send_EmptyPhone(t *testing.T) {
	client := sms.NewClient(&config.SMSConfig{
		BaseURL:        "http://localhost:1",
		TimeoutSeconds: 1,
	}, zap.NewNop())

	err := client.Send(context.Background(), "", "hello")
	require.Error(t, err)
}

func TestNopSender(t *testing.T) {
	sender := &sms.NopSender{Logger: zap.NewNop()}
	assert.NoError(t, sender.Send(context.Background(), "998901234567", "hello"))

	// nil logger must not panic
	sender = &sms.NopSender{}
	assert.NoError(t, sender.Send(context.Background(), "998901234567", "hello"))
}
