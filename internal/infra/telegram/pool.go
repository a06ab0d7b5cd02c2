package telegram

import (
	"strings"
	"sync"

	"moderator_bot/internal/infra/media"
)

// BotPool hands out one client per user-facing bot token. Clients are
// created on first use and kept for the life of the process.
type BotPool struct {
	opts Options

	mu      sync.Mutex
	clients map[string]*Client
}

func NewBotPool(opts Options) *BotPool {
	return &BotPool{opts: opts, clients: make(map[string]*Client)}
}

func (p *BotPool) Client(token string) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[token]; ok {
		return client, nil
	}

	client, err := NewClient(token, p.opts)
	if err != nil {
		return nil, err
	}
	p.clients[token] = client
	return client, nil
}

func (p *BotPool) SendText(token string, chatID int64, text string) error {
	client, err := p.Client(token)
	if err != nil {
		return err
	}
	return client.SendText(chatID, text)
}

func (p *BotPool) SendVideo(token string, chatID int64, source media.Source, caption string) error {
	client, err := p.Client(token)
	if err != nil {
		return err
	}
	return client.SendVideo(chatID, source, caption)
}
