package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/localization"
	"autoposter-bot/internal/logger"
	"autoposter-bot/internal/session"
	"autoposter-bot/internal/usecase"
)

// Messenger is the part of the Telegram client the bot talks through.
// *tgbotapi.BotAPI satisfies it.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// IdeaSource suggests article topics from news feeds.
type IdeaSource interface {
	SuggestTopics(ctx context.Context, feedURLs []string, limit int) []string
}

type Options struct {
	UseCases  *usecase.UseCases
	Sessions  session.Store
	Localizer *localization.Localizer
	Ideas     IdeaSource
	FeedURLs  []string
	// Platforms that get their own publish button next to the default one.
	Platforms []domain.Platform
	Language  string
}

type TelegramBot struct {
	api       Messenger
	useCases  *usecase.UseCases
	sessions  session.Store
	localizer *localization.Localizer
	ideas     IdeaSource
	feedURLs  []string
	platforms []domain.Platform
	lang      string
	log       *logrus.Entry

	// userLocks holds one *sync.Mutex per Telegram user.
	userLocks sync.Map
}

func NewBot(api Messenger, opts Options) *TelegramBot {
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewMemoryStore()
	}
	return &TelegramBot{
		api:       api,
		useCases:  opts.UseCases,
		sessions:  sessions,
		localizer: opts.Localizer,
		ideas:     opts.Ideas,
		feedURLs:  opts.FeedURLs,
		platforms: opts.Platforms,
		lang:      lang,
		log:       logger.Component("bot"),
	}
}

// Listen dispatches updates until ctx is cancelled or the channel closes,
// then waits for the updates already handed out. Different users are served
// concurrently; one user's updates run one at a time.
func (b *TelegramBot) Listen(ctx context.Context, updates <-chan tgbotapi.Update) {
	var inflight sync.WaitGroup
	defer inflight.Wait()

	b.log.Info("Listening for Telegram updates")
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate processes a single update synchronously. Webhook deliveries
// call it directly.
func (b *TelegramBot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	userID := updateUserID(update)
	log := b.log.WithFields(logrus.Fields{"update_id": update.UpdateID, "user_id": userID})
	ctx = logger.NewContext(ctx, log)
	defer func() {
		if r := recover(); r != nil {
			logger.WithContext(ctx).WithField("panic", r).Error("Recovered from panic while handling update")
		}
	}()

	if userID != 0 {
		unlock := b.lockUser(userID)
		defer unlock()
	}

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}
	message := update.Message
	if message == nil || message.From == nil {
		return
	}
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	state, ok, err := b.sessions.Get(ctx, message.From.ID)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Error("Failed to load session")
		b.sendText(message.Chat.ID, b.text("generic_error"), nil)
		return
	}
	if ok && state.Step != session.StepIdle {
		b.handleStatefulMessage(ctx, message, state)
		return
	}
	b.sendText(message.Chat.ID, b.text("text_hint"), nil)
}

func (b *TelegramBot) lockUser(userID int64) func() {
	v, _ := b.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func updateUserID(update tgbotapi.Update) int64 {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	}
	return 0
}
