// Package telegram publishes to a single Telegram channel via telebot.
package telegram

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"fxwire/internal/publish"
	"fxwire/pkg/logx"
)

type Config struct {
	Token string
	// ChatID is "@channelname" or a numeric id ("-100...").
	ChatID string
}

type Publisher struct {
	cfg Config
	log logx.Logger

	bot  *tele.Bot
	dest tele.Recipient
}

func New(cfg Config, log logx.Logger) (*Publisher, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	dest, err := parseChatID(cfg.ChatID)
	if err != nil {
		return nil, err
	}
	// No poller: this bot only sends. NewBot still verifies the token
	// (getMe), which surfaces a bad token at startup instead of on the
	// first delivery.
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, err
	}
	return &Publisher{cfg: cfg, log: log, bot: b, dest: dest}, nil
}

func (p *Publisher) Send(ctx context.Context, text string) publish.Result {
	if err := ctx.Err(); err != nil {
		return publish.Result{Outcome: publish.Transient, Err: err}
	}
	_, err := p.bot.Send(p.dest, text, &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	})
	if err == nil {
		return publish.Result{Outcome: publish.OK}
	}
	return classify(err)
}

// classify maps telebot/network errors onto the dispatch outcome taxonomy.
func classify(err error) publish.Result {
	var flood tele.FloodError
	if errors.As(err, &flood) {
		wait := time.Duration(flood.RetryAfter) * time.Second
		if wait <= 0 {
			wait = 5 * time.Second
		}
		return publish.Result{Outcome: publish.RetryAfter, RetryAfter: wait, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return publish.Result{Outcome: publish.Transient, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return publish.Result{Outcome: publish.Transient, Err: err}
	}

	return publish.Result{Outcome: publish.Fatal, Err: err}
}

// channel addresses a chat by "@username"; the Bot API accepts it wherever
// a numeric chat id is expected.
type channel string

func (c channel) Recipient() string { return string(c) }

func parseChatID(raw string) (tele.Recipient, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New("telegram chat_id is empty")
	}
	if strings.HasPrefix(s, "@") {
		return channel(s), nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errors.New("telegram chat_id must be @name or a numeric id: " + raw)
	}
	return tele.ChatID(id), nil
}
