package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"coin-dashboard/internal/market"
	"coin-dashboard/internal/models"
	"coin-dashboard/internal/sparkline"
)

// Deps are the collaborators shared by every chat.
type Deps struct {
	NewList   func() *market.ListViewModel
	NewDetail func() *market.DetailViewModel
	Renderer  sparkline.Renderer
	Currency  models.Currency
	Reference models.Currency
	Log       logrus.FieldLogger
}

// chatViews is one chat's pair of views; each chat navigates on its own.
type chatViews struct {
	list   *market.ListViewModel
	detail *market.DetailViewModel
}

type Bot struct {
	api  *tgbotapi.BotAPI
	deps Deps
	log  logrus.FieldLogger

	requestTimeout time.Duration

	mu    sync.Mutex
	chats map[int64]*chatViews
}

func New(token string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return newBot(api, deps), nil
}

func newBot(api *tgbotapi.BotAPI, deps Deps) *Bot {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bot{
		api:            api,
		deps:           deps,
		log:            log,
		requestTimeout: 30 * time.Second,
		chats:          make(map[int64]*chatViews),
	}
}

// Start long-polls Telegram until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.log.WithField("account", b.api.Self.UserName).Info("authorized")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()
	b.handleUpdates(ctx, updates)
}

func (b *Bot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}

		chatID := update.Message.Chat.ID
		command := update.Message.Command()
		args := update.Message.CommandArguments()

		go func() {
			text := b.respond(ctx, chatID, command, args)
			msg := tgbotapi.NewMessage(chatID, text)
			if _, err := b.api.Send(msg); err != nil {
				b.log.WithError(err).WithField("chat", chatID).Warn("send failed")
			}
		}()
	}
}

// respond runs one command for a chat and returns the reply text.
func (b *Bot) respond(ctx context.Context, chatID int64, command, args string) string {
	ctx, cancel := context.WithTimeout(ctx, b.requestTimeout)
	defer cancel()

	log := b.log.WithFields(logrus.Fields{"chat": chatID, "command": command})

	switch command {
	case "top", "rank":
		state := b.views(chatID).list.Activate(ctx)
		log.WithField("status", state.Status).Info("list view")
		return formatList(state, b.deps.Currency)

	case "coin":
		id := strings.ToLower(strings.TrimSpace(args))
		if id == "" {
			return "Usage: /coin <id>, e.g. /coin bitcoin"
		}
		state := b.views(chatID).detail.Activate(ctx, id)
		log.WithFields(logrus.Fields{"coin": id, "status": state.Status}).Info("detail view")
		return formatDetail(state, b.deps.Reference, b.deps.Renderer)

	case "start", "help":
		return helpText

	default:
		return "Unknown command. " + helpText
	}
}

func (b *Bot) views(chatID int64) *chatViews {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, ok := b.chats[chatID]
	if !ok {
		v = &chatViews{list: b.deps.NewList(), detail: b.deps.NewDetail()}
		b.chats[chatID] = v
	}
	return v
}

const helpText = `Commands:
/top - top coins by market cap
/coin <id> - details and 7 day chart for a coin id (e.g. bitcoin)`
