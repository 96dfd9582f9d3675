package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const telegramAPI = "https://api.telegram.org"

// TelegramService delivers messages through a Telegram bot.
type TelegramService struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	log      *zap.Logger
}

// NewTelegramService creates a new TelegramService posting to chatID.
func NewTelegramService(botToken, chatID string, log *zap.Logger) *TelegramService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TelegramService{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  telegramAPI,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log.Named("telegram"),
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends an HTML message to chatID.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" || chatID == "" {
		return fmt.Errorf("telegram: bot token and chat id are required")
	}

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("send message failed", zap.Error(err))
		return fmt.Errorf("telegram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("unexpected status", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// SendCode posts a verification code for contact to the configured chat.
func (s *TelegramService) SendCode(ctx context.Context, contact, code string) error {
	message := fmt.Sprintf(`<b>🔐 Verification code</b>
<b>Contact:</b> %s
<b>Code:</b> <code>%s</code>`,
		html.EscapeString(contact),
		html.EscapeString(code),
	)
	return s.SendMessage(ctx, s.chatID, strings.TrimSpace(message))
}
