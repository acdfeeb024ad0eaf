package notify

import (
	"context"
	"html"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/okian/goalwatch/internal/domain/model"
)

// TelegramSink posts alerts through the Bot API sendMessage method.
type TelegramSink struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// NewTelegramSink creates a sink for baseURL (normally https://api.telegram.org).
func NewTelegramSink(client *http.Client, baseURL, token, chatID string) *TelegramSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &TelegramSink{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		chatID:  chatID,
	}
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Send(ctx context.Context, r model.AnalysisResult) error {
	text, err := FormatTelegram(r)
	if err != nil {
		return err
	}
	msg := telegramMessage{
		ChatID:                s.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}
	if err := postJSON(ctx, s.client, s.baseURL+"/bot"+s.token+"/sendMessage", msg); err != nil {
		// The token is part of the URL and may leak into transport errors.
		return crerr.Newf("telegram: %s", strings.ReplaceAll(err.Error(), s.token, "REDACTED"))
	}
	return nil
}

// FormatTelegram renders the alert summary as indented JSON inside <pre>.
func FormatTelegram(r model.AnalysisResult) (string, error) {
	body, err := sonic.ConfigStd.MarshalIndent(Summarize(r), "", "  ")
	if err != nil {
		return "", crerr.Wrap(err, "encode telegram summary")
	}
	return "<pre>" + html.EscapeString(string(body)) + "</pre>", nil
}
