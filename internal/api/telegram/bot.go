package telegram

import (
	"context"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/config"
)

// Processor handles one inbound message and returns the reply text.
type Processor interface {
	ProcessMessage(ctx context.Context, userID, text string) (string, error)
}

// Bot is the Telegram transport adapter: it extracts (user id, text) from
// platform updates, calls the bot service and delivers the reply.
type Bot struct {
	api    *tgbotapi.BotAPI
	svc    Processor
	logger *zap.Logger
	cfg    config.TelegramConfig

	mu     sync.Mutex
	queues map[int64]chan *tgbotapi.Message
}

// New builds the adapter.
func New(cfg config.TelegramConfig, svc Processor, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    api,
		svc:    svc,
		logger: logger,
		cfg:    cfg,
		queues: make(map[int64]chan *tgbotapi.Message),
	}, nil
}

// Start consumes the long-poll update stream until the context is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.enqueue(ctx, update.Message)
		}
	}
}

// enqueue hands the message to a per-user worker. One goroutine per user
// keeps same-user messages in arrival order while an AI call for one user
// never blocks another.
func (b *Bot) enqueue(ctx context.Context, msg *tgbotapi.Message) {
	b.mu.Lock()
	q, ok := b.queues[msg.From.ID]
	if !ok {
		q = make(chan *tgbotapi.Message, 16)
		b.queues[msg.From.ID] = q
		go b.worker(ctx, q)
	}
	b.mu.Unlock()

	select {
	case q <- msg:
	default:
		b.logger.Warn("user queue full, dropping update", zap.Int64("user_id", msg.From.ID))
	}
}

func (b *Bot) worker(ctx context.Context, q chan *tgbotapi.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-q:
			b.handleMessage(ctx, msg)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := strconv.FormatInt(msg.From.ID, 10)

	reply, err := b.svc.ProcessMessage(ctx, userID, msg.Text)
	if err != nil {
		b.logger.Error("process message", zap.String("user_id", userID), zap.Error(err))
		reply = b.cfg.UnavailableText
	}
	b.send(msg.Chat.ID, reply)
}

func (b *Bot) send(chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// Notify delivers a text to the configured operator chat. It implements
// the notification sink used for ticket events.
func (b *Bot) Notify(ctx context.Context, text string) error {
	if b.cfg.OperatorChatID == 0 {
		return nil
	}
	_, err := b.api.Send(tgbotapi.NewMessage(b.cfg.OperatorChatID, text))
	return err
}
