package telegram

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"moderator_bot/internal/infra/media"
)

const (
	ParseModeHTML          = tgbotapi.ModeHTML
	defaultRequestTimeout  = 60 * time.Second
	defaultMaxConnsPerHost = 100
)

var (
	ErrEmptyToken     = errors.New("telegram bot token is empty")
	ErrMediaNotFound  = errors.New("media source not found")
	errNilClient      = errors.New("telegram client is not initialized")
	errUnknownPayload = errors.New("unsupported media source")
)

// DeliveryError is returned when Telegram rejected or never received an
// outbound call.
type DeliveryError struct {
	Method string
	ChatID int64
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.ChatID != 0 {
		return fmt.Sprintf("telegram %s to chat %d: %v", e.Method, e.ChatID, e.Err)
	}
	return fmt.Sprintf("telegram %s: %v", e.Method, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Endpoint is a tgbotapi endpoint format such as
	// "https://api.telegram.org/bot%s/%s".
	Endpoint   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Client struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewHTTPClient builds the outbound client shared by all bots. proxyURL may
// be empty.
func NewHTTPClient(proxyURL string, maxConnsPerHost int) (*http.Client, error) {
	if maxConnsPerHost <= 0 {
		maxConnsPerHost = defaultMaxConnsPerHost
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxConnsPerHost = maxConnsPerHost
	transport.MaxIdleConnsPerHost = maxConnsPerHost

	if strings.TrimSpace(proxyURL) != "" {
		parsed, err := url.Parse(strings.TrimSpace(proxyURL))
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(parsed)
	}

	return &http.Client{Transport: transport, Timeout: defaultRequestTimeout}, nil
}

func NewClient(token string, opts Options) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, &DeliveryError{Method: "getMe", Err: err}
	}

	return &Client{api: api, logger: logger}, nil
}

func (c *Client) Username() string {
	if c == nil || c.api == nil {
		return ""
	}
	return c.api.Self.UserName
}

func (c *Client) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.send("send", 0, msg)
}

func (c *Client) send(method string, chatID int64, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	if c == nil || c.api == nil {
		return tgbotapi.Message{}, errNilClient
	}
	sent, err := c.api.Send(msg)
	if err != nil {
		return tgbotapi.Message{}, &DeliveryError{Method: method, ChatID: chatID, Err: err}
	}
	return sent, nil
}

// Request is for calls whose result is not a message: callback answers,
// markup edits and webhook management.
func (c *Client) Request(req tgbotapi.Chattable) error {
	return c.request("request", req)
}

func (c *Client) request(method string, req tgbotapi.Chattable) error {
	if c == nil || c.api == nil {
		return errNilClient
	}
	if _, err := c.api.Request(req); err != nil {
		return &DeliveryError{Method: method, Err: err}
	}
	return nil
}

func (c *Client) SendMediaGroup(group tgbotapi.MediaGroupConfig) error {
	if c == nil || c.api == nil {
		return errNilClient
	}
	if _, err := c.api.SendMediaGroup(group); err != nil {
		return &DeliveryError{Method: "sendMediaGroup", ChatID: group.ChatID, Err: err}
	}
	return nil
}

func (c *Client) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = ParseModeHTML
	_, err := c.send("sendMessage", chatID, msg)
	return err
}

func (c *Client) SendVideo(chatID int64, source media.Source, caption string) error {
	file, err := InputFile(source)
	if err != nil {
		return err
	}

	video := tgbotapi.NewVideo(chatID, file)
	video.Caption = caption
	video.ParseMode = ParseModeHTML
	_, err = c.send("sendVideo", chatID, video)
	return err
}

// SetWebhook points Telegram at url and drops updates queued while the bot
// was offline.
func (c *Client) SetWebhook(rawURL string) error {
	cfg, err := tgbotapi.NewWebhook(rawURL)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	cfg.DropPendingUpdates = true
	return c.request("setWebhook", cfg)
}

func (c *Client) DeleteWebhook() error {
	return c.request("deleteWebhook", tgbotapi.DeleteWebhookConfig{})
}

func (c *Client) WebhookInfo() (tgbotapi.WebhookInfo, error) {
	if c == nil || c.api == nil {
		return tgbotapi.WebhookInfo{}, errNilClient
	}
	info, err := c.api.GetWebhookInfo()
	if err != nil {
		return tgbotapi.WebhookInfo{}, &DeliveryError{Method: "getWebhookInfo", Err: err}
	}
	return info, nil
}

// InputFile converts a resolved media source into a tgbotapi payload.
func InputFile(source media.Source) (tgbotapi.RequestFileData, error) {
	if !source.Found() {
		return nil, fmt.Errorf("%w: %s", ErrMediaNotFound, source.Expected)
	}

	switch source.Kind {
	case media.KindLocal:
		return tgbotapi.FilePath(source.Ref), nil
	case media.KindRemote:
		return tgbotapi.FileURL(source.Ref), nil
	default:
		return nil, errUnknownPayload
	}
}
