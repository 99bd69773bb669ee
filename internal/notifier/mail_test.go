package notifier_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"livestock-farm-api-server/config"
	"livestock-farm-api-server/internal/models"
	"livestock-farm-api-server/internal/notifier"
)

func TestMailClientSendPostsWebhookPayload(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := notifier.NewMailClient(config.MailConfig{WebhookURL: server.URL, FromName: "Farm"}, zap.NewNop())
	err := client.Send(context.Background(), notifier.MailMessage{
		Email:    "farmer@example.com",
		Subject:  "Low stock",
		Template: models.NotificationLowStock,
		Vars:     map[string]interface{}{"message": "Hay is below its threshold"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Farm", received["fromName"])
	assert.Equal(t, "farmer@example.com", received["email"])
	assert.Equal(t, "Low stock", received["subject"])
	assert.Equal(t, models.NotificationLowStock, received["template"])
}

func TestMailClientSendReportsWebhookError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := notifier.NewMailClient(config.MailConfig{WebhookURL: server.URL}, zap.NewNop())
	err := client.Send(context.Background(), notifier.MailMessage{Email: "farmer@example.com"})

	assert.Error(t, err)
}

func TestMailClientSendWithoutWebhookIsNoop(t *testing.T) {
	client := notifier.NewMailClient(config.MailConfig{}, zap.NewNop())

	assert.NoError(t, client.Send(context.Background(), notifier.MailMessage{Email: "farmer@example.com"}))
}

func TestMailedTypes(t *testing.T) {
	assert.True(t, notifier.Mailed(models.NotificationRestrictionEnded))
	assert.True(t, notifier.Mailed(models.NotificationLowStock))
	assert.True(t, notifier.Mailed(models.NotificationOutOfStock))
	assert.True(t, notifier.Mailed(models.NotificationVaccinationDue))
	assert.True(t, notifier.Mailed(models.NotificationBirthDue))
	assert.False(t, notifier.Mailed(models.NotificationInfo))
}
