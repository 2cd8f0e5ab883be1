package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
	"lotwatch/pkg/models"
)

func telegramConfig(apiURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Telegram.BotToken = "test-token"
	cfg.Telegram.ChatID = "12345"
	cfg.Telegram.APIURL = apiURL
	cfg.Telegram.Timeout = 5 * time.Second
	return cfg
}

func TestSendAlert(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewTelegramNotifier(telegramConfig(server.URL), logging.GetGlobalLogger())
	findings := []models.Finding{
		{Name: "Конфискат (konfiskat-gov.ru)", URL: "https://konfiskat-gov.ru/результаты"},
	}

	err := n.SendAlert(context.Background(), findings)
	require.NoError(t, err)

	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "12345", gotBody["chat_id"])
	assert.Equal(t, true, gotBody["disable_web_page_preview"])
	assert.Contains(t, gotBody["text"], "Обнаружен лот")
	assert.Contains(t, gotBody["text"], "konfiskat-gov.ru")
}

func TestSendAlertAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	n := NewTelegramNotifier(telegramConfig(server.URL), logging.GetGlobalLogger())
	err := n.SendAlert(context.Background(), []models.Finding{{Name: "x", URL: "y"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSendAlertUnconfigured(t *testing.T) {
	cfg := &config.Config{}
	cfg.Telegram.Timeout = time.Second

	n := NewTelegramNotifier(cfg, logging.GetGlobalLogger())
	assert.False(t, n.Configured())

	err := n.SendAlert(context.Background(), []models.Finding{{Name: "x", URL: "y"}})
	assert.Error(t, err)
}

func TestBuildAlertMessage(t *testing.T) {
	findings := []models.Finding{
		{Name: "Конфискат (konfiskat-gov.ru)", URL: "https://konfiskat-gov.ru/a"},
		{Name: "Росимущество (fiol.rosim.gov.ru)", URL: "https://fiol.rosim.gov.ru/mk/"},
	}

	msg := BuildAlertMessage(findings)

	assert.Contains(t, msg, "⚠️ Обнаружен лот с вашим автомобилем на торгах.")
	assert.Contains(t, msg, "Проверьте срочно:")
	assert.Contains(t, msg, "• Конфискат (konfiskat-gov.ru): https://konfiskat-gov.ru/a")
	assert.Contains(t, msg, "• Росимущество (fiol.rosim.gov.ru): https://fiol.rosim.gov.ru/mk/")
	assert.Contains(t, msg, "VIN/госномер из настроек проверки.")
}
