package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
	"lotwatch/pkg/models"
)

// Notifier delivers an alert about positive findings. Implementations report
// delivery failure via error; the caller decides whether that fails the run.
type Notifier interface {
	SendAlert(ctx context.Context, findings []models.Finding) error
}

// TelegramNotifier sends alerts through the Telegram Bot API sendMessage
// endpoint.
type TelegramNotifier struct {
	cfg    *config.Config
	client *http.Client
	logger logging.Logger
}

// NewTelegramNotifier creates a Telegram notifier from the configured bot
// token and chat ID.
func NewTelegramNotifier(cfg *config.Config, logger logging.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Telegram.Timeout},
		logger: logger.WithField("component", "telegram"),
	}
}

// Configured reports whether both the bot token and chat ID are set.
func (n *TelegramNotifier) Configured() bool {
	return n.cfg.Telegram.BotToken != "" && n.cfg.Telegram.ChatID != ""
}

// SendAlert posts the alert message for the given findings. An unconfigured
// notifier is a no-op error so a cron run without Telegram still reports the
// findings through its exit code.
func (n *TelegramNotifier) SendAlert(ctx context.Context, findings []models.Finding) error {
	if !n.Configured() {
		n.logger.Warn("Telegram not configured: set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		return fmt.Errorf("telegram not configured")
	}

	payload := map[string]interface{}{
		"chat_id":                  n.cfg.Telegram.ChatID,
		"text":                     BuildAlertMessage(findings),
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(n.cfg.Telegram.APIURL, "/"), n.cfg.Telegram.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("Failed to send Telegram message", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.logger.Error("Telegram API returned non-OK status", map[string]interface{}{"status": resp.StatusCode})
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	n.logger.Info("Alert sent", map[string]interface{}{"findings": len(findings)})
	return nil
}

// BuildAlertMessage renders the alert text listing every source where the
// vehicle was found.
func BuildAlertMessage(findings []models.Finding) string {
	lines := []string{
		"⚠️ Обнаружен лот с вашим автомобилем на торгах.",
		"",
		"Проверьте срочно:",
	}
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("• %s: %s", f.Name, f.URL))
	}
	lines = append(lines, "", "VIN/госномер из настроек проверки.")
	return strings.Join(lines, "\n")
}
