package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"deposit-telegram/config"
	"deposit-telegram/lang"
	"deposit-telegram/logger"
	"deposit-telegram/models"
	"deposit-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Exporter is the optional spreadsheet mirror behind the admin export action.
type Exporter interface {
	ExportAll(ctx context.Context, apps []models.Application) error
}

const tapDebounce = 700 * time.Millisecond

type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *config.Config
	sessions *sessionStore
	exporter Exporter // nil when the mirror is not configured

	userLang   map[int64]string
	userLangMu sync.RWMutex
}

func New(cfg *config.Config, exporter Exporter) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:      api,
		cfg:      cfg,
		sessions: newSessionStore(time.Hour),
		exporter: exporter,
		userLang: make(map[int64]string),
	}, nil
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.SetMyCommandsConfig{
		Commands: []tgbotapi.BotCommand{
			{Command: "start", Description: "Главное меню / Main menu"},
			{Command: "deposit", Description: "Пополнить депозит / Make a deposit"},
			{Command: "applications", Description: "Мои заявки / My applications"},
			{Command: "help", Description: "Помощь / Help"},
		},
	}
	_, err := b.api.Request(cfg)
	return err
}

func (b *Bot) Start() {
	_ = b.setBotCommands()
	b.sessions.startJanitor(10 * time.Minute)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.CallbackQuery != nil {
			b.handleCallback(update.CallbackQuery)
			continue
		}
		if update.PreCheckoutQuery != nil {
			b.handlePreCheckout(update.PreCheckoutQuery)
			continue
		}
		if update.Message == nil {
			continue
		}
		msg := update.Message
		userID := msg.From.ID
		text := strings.TrimSpace(msg.Text)

		if msg.SuccessfulPayment != nil {
			b.handleSuccessfulPayment(msg)
			continue
		}
		if len(msg.Photo) > 0 || msg.Document != nil {
			b.handleAttachment(msg)
			continue
		}

		switch {
		case text == "/start":
			b.handleStart(msg.Chat.ID, userID)
		case text == "/deposit":
			b.startDeposit(msg.Chat.ID, userID)
		case text == "/applications":
			b.showUserApplications(msg.Chat.ID, userID)
		case text == "/help":
			b.sendLang(msg.Chat.ID, userID, "help")
		case text == "/admin":
			b.openAdminPanel(msg.Chat.ID, userID)
		case text != "":
			b.handleTextStep(msg.Chat.ID, userID, text)
		}
	}
}

func (b *Bot) handleStart(chatID, userID int64) {
	ctx := context.Background()
	b.sessions.reset(userID)

	stored, known, err := services.GetUserLanguage(ctx, userID)
	if err != nil {
		logger.L.Warnw("load language failed", "user_id", userID, "err", err)
	}
	if !known {
		b.sendWithInline(chatID, lang.T(lang.Ru, "choose_lang"), languageKeyboard())
		return
	}
	b.setLang(userID, stored)
	b.showMainMenu(chatID, userID, true)
}

func (b *Bot) showMainMenu(chatID, userID int64, withWelcome bool) {
	ctx := context.Background()
	l := b.getLang(userID)
	if withWelcome {
		first, err := services.IsFirstTime(ctx, userID)
		if err == nil && first {
			b.send(chatID, lang.T(l, "welcome"))
			if err := services.MarkSeen(ctx, userID); err != nil {
				logger.L.Warnw("mark seen failed", "user_id", userID, "err", err)
			}
		}
	}
	b.sendWithInline(chatID, lang.T(l, "main_menu"), mainMenuKeyboard(l))
}

func (b *Bot) showUserApplications(chatID, userID int64) {
	ctx := context.Background()
	l := b.getLang(userID)
	apps, err := services.ListUserApplications(ctx, userID)
	if err != nil {
		logger.L.Errorw("list user applications failed", "user_id", userID, "err", err)
		b.sendLang(chatID, userID, "generic_error")
		return
	}
	if len(apps) == 0 {
		b.send(chatID, lang.T(l, "no_applications"))
		b.showMainMenu(chatID, userID, false)
		return
	}
	if len(apps) > 10 {
		apps = apps[:10]
	}
	b.sendWithInline(chatID, lang.T(l, "menu_applications"), userApplicationsKeyboard(l, apps))
}

// handleTextStep routes free text by the user's current session step.
func (b *Bot) handleTextStep(chatID, userID int64, text string) {
	s, ok := b.sessions.snapshot(userID)
	if !ok || s.step == stepNone {
		b.showMainMenu(chatID, userID, false)
		return
	}
	switch s.step {
	case stepCustomAmount:
		b.handleCustomAmount(chatID, userID, text)
	case stepLogin:
		b.handleLoginInput(chatID, userID, text)
	case stepAdminCodeValue, stepAdminCodeAmount, stepAdminCodeDelete,
		stepAdminAddAdmin, stepAdminRemoveAdmin, stepAdminAmounts,
		stepAdminRejectReason, stepAdminInfoRequest, stepAdminPaymentToken:
		b.handleAdminText(chatID, userID, s.step, text)
	default:
		b.showMainMenu(chatID, userID, false)
	}
}

// handleAttachment routes photos and documents: proof uploads during the
// deposit flow, CSV files during the admin import step.
func (b *Bot) handleAttachment(msg *tgbotapi.Message) {
	userID := msg.From.ID
	s, ok := b.sessions.snapshot(userID)
	if !ok {
		return
	}
	switch s.step {
	case stepProof:
		b.handleProofUpload(msg)
	case stepAdminCSVImport:
		b.handleCSVImport(msg)
	}
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		b.answerCallback(cq.ID, "")
		return
	}
	chatID := cq.Message.Chat.ID
	userID := cq.From.ID
	data := cq.Data

	if b.sessions.debounce(userID, tapDebounce) {
		b.answerCallback(cq.ID, "")
		return
	}
	b.answerCallback(cq.ID, "")

	switch {
	case strings.HasPrefix(data, "lang:"):
		b.handleLangChoice(chatID, userID, strings.TrimPrefix(data, "lang:"))
	case strings.HasPrefix(data, "menu:"):
		b.handleMenuChoice(chatID, userID, strings.TrimPrefix(data, "menu:"))
	case strings.HasPrefix(data, "dep:"):
		b.handleDepositCallback(chatID, userID, strings.TrimPrefix(data, "dep:"))
	case strings.HasPrefix(data, "pay:"):
		b.handlePaymentChoice(chatID, userID, strings.TrimPrefix(data, "pay:"))
	case strings.HasPrefix(data, "payamt:"):
		b.handleOnlineAmount(chatID, userID, strings.TrimPrefix(data, "payamt:"))
	case strings.HasPrefix(data, "app:"):
		b.handleApplicationCallback(chatID, userID, strings.TrimPrefix(data, "app:"))
	case data == "retry:yes":
		b.startDeposit(chatID, userID)
	case strings.HasPrefix(data, "adm:"):
		b.handleAdminCallback(chatID, userID, strings.TrimPrefix(data, "adm:"))
	}
}

func (b *Bot) handleLangChoice(chatID, userID int64, code string) {
	if code != lang.Ru && code != lang.En {
		return
	}
	ctx := context.Background()
	if err := services.SetUserLanguage(ctx, userID, code); err != nil {
		logger.L.Warnw("persist language failed", "user_id", userID, "err", err)
	}
	b.setLang(userID, code)
	b.showMainMenu(chatID, userID, true)
}

func (b *Bot) handleMenuChoice(chatID, userID int64, item string) {
	switch item {
	case "main":
		b.sessions.reset(userID)
		b.showMainMenu(chatID, userID, false)
	case "deposit":
		b.startDeposit(chatID, userID)
	case "apps":
		b.showUserApplications(chatID, userID)
	case "help":
		b.sendLang(chatID, userID, "help")
	case "lang":
		b.sendWithInline(chatID, lang.T(b.getLang(userID), "choose_lang"), languageKeyboard())
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logger.L.Warnw("send failed", "chat_id", chatID, "err", err)
	}
}

func (b *Bot) sendLang(chatID, userID int64, key string, args ...interface{}) {
	b.send(chatID, lang.T(b.getLang(userID), key, args...))
}

func (b *Bot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		logger.L.Warnw("send failed", "chat_id", chatID, "err", err)
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		logger.L.Debugw("answer callback failed", "err", err)
	}
}

// notifyUser delivers a status update in the recipient's own chat and language.
func (b *Bot) notifyUser(userID int64, key string, args ...interface{}) {
	b.send(userID, lang.T(b.getLang(userID), key, args...))
}

// notifyAdmins fans a text out to every registered administrator.
func (b *Bot) notifyAdmins(ctx context.Context, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	admins, err := services.ListAdmins(ctx)
	if err != nil {
		logger.L.Errorw("list admins failed", "err", err)
		return
	}
	for _, a := range admins {
		msg := tgbotapi.NewMessage(a.UserID, text)
		if kb != nil {
			msg.ReplyMarkup = *kb
		}
		if _, err := b.api.Send(msg); err != nil {
			logger.L.Warnw("notify admin failed", "admin_id", a.UserID, "err", err)
		}
	}
}

func (b *Bot) getLang(userID int64) string {
	b.userLangMu.RLock()
	l := b.userLang[userID]
	b.userLangMu.RUnlock()
	if l == lang.Ru || l == lang.En {
		return l
	}
	stored, known, err := services.GetUserLanguage(context.Background(), userID)
	if err == nil && known && (stored == lang.Ru || stored == lang.En) {
		b.setLang(userID, stored)
		return stored
	}
	return lang.Ru
}

func (b *Bot) setLang(userID int64, code string) {
	if code != lang.Ru && code != lang.En {
		return
	}
	b.userLangMu.Lock()
	b.userLang[userID] = code
	b.userLangMu.Unlock()
}

// authorize resolves the caller's admin role. Unknown users get the generic
// error instead of a hint that the panel exists.
func (b *Bot) authorize(ctx context.Context, chatID, userID int64) (*services.Actor, bool) {
	actor, err := services.Authorize(ctx, userID)
	if errors.Is(err, services.ErrForbidden) {
		b.sendLang(chatID, userID, "generic_error")
		return nil, false
	}
	if err != nil {
		logger.L.Errorw("authorize failed", "user_id", userID, "err", err)
		b.sendLang(chatID, userID, "generic_error")
		return nil, false
	}
	return actor, true
}
