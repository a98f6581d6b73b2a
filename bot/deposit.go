package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"deposit-telegram/lang"
	"deposit-telegram/logger"
	"deposit-telegram/models"
	"deposit-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

// startDeposit opens the intake flow: payment method first when online
// payments are configured, otherwise straight to the amount screen.
func (b *Bot) startDeposit(chatID, userID int64) {
	ctx := context.Background()
	l := b.getLang(userID)
	b.sessions.reset(userID)

	token := services.PaymentProviderToken(ctx, b.cfg.Payments.ProviderToken)
	if token != "" {
		b.sendWithInline(chatID, lang.T(l, "choose_payment"), paymentMethodKeyboard(l, true))
		return
	}
	b.showAmountScreen(chatID, userID, "dep")
}

func (b *Bot) handlePaymentChoice(chatID, userID int64, method string) {
	switch method {
	case "manual":
		b.showAmountScreen(chatID, userID, "dep")
	case "online":
		b.showAmountScreen(chatID, userID, "payamt")
	}
}

func (b *Bot) showAmountScreen(chatID, userID int64, prefix string) {
	ctx := context.Background()
	l := b.getLang(userID)
	amounts := services.DepositAmounts(ctx)
	// Online payments only take the listed denominations: the code pool is
	// keyed by amount and a custom sum could never be auto-matched.
	withCustom := prefix == "dep"
	b.sendWithInline(chatID, lang.T(l, "choose_amount"), amountKeyboard(l, prefix, amounts, withCustom))
}

func (b *Bot) handleDepositCallback(chatID, userID int64, rest string) {
	l := b.getLang(userID)
	switch rest {
	case "custom":
		b.sessions.update(userID, func(s *session) { s.push(stepCustomAmount) })
		b.send(chatID, lang.T(l, "enter_custom_amount"))
	case "yes":
		b.confirmDeposit(chatID, userID)
	case "change":
		b.sessions.reset(userID)
		b.showAmountScreen(chatID, userID, "dep")
	default:
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return
		}
		b.acceptAmount(chatID, userID, decimal.NewFromInt(int64(n)))
	}
}

func (b *Bot) handleCustomAmount(chatID, userID int64, text string) {
	l := b.getLang(userID)
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		b.send(chatID, lang.T(l, "invalid_amount"))
		return
	}
	b.acceptAmount(chatID, userID, decimal.NewFromInt(int64(n)))
}

func (b *Bot) acceptAmount(chatID, userID int64, amount decimal.Decimal) {
	l := b.getLang(userID)
	b.sessions.update(userID, func(s *session) {
		s.amount = amount
		s.push(stepLogin)
	})
	b.send(chatID, lang.T(l, "enter_login"))
}

func (b *Bot) handleLoginInput(chatID, userID int64, text string) {
	l := b.getLang(userID)
	login := strings.TrimSpace(text)
	if login == "" {
		b.send(chatID, lang.T(l, "invalid_login"))
		return
	}
	var amount decimal.Decimal
	b.sessions.update(userID, func(s *session) {
		s.login = login
		s.push(stepConfirm)
		amount = s.amount
	})
	b.sendWithInline(chatID,
		lang.T(l, "confirm_data", amount.StringFixed(0), login),
		confirmKeyboard(l))
}

// confirmDeposit moves the flow into the proof-upload step and arms the
// abandonment timer.
func (b *Bot) confirmDeposit(chatID, userID int64) {
	l := b.getLang(userID)
	armed := false
	b.sessions.update(userID, func(s *session) {
		if s.step != stepConfirm {
			return
		}
		s.push(stepProof)
		armed = true
	})
	if !armed {
		b.showMainMenu(chatID, userID, false)
		return
	}
	b.sessions.armTimeout(userID, b.cfg.Intake.ProofTimeout, func() {
		b.sessions.reset(userID)
		b.send(chatID, lang.T(l, "proof_timeout"))
	})
	b.send(chatID, lang.T(l, "send_proof"))
}

func (b *Bot) handleProofUpload(msg *tgbotapi.Message) {
	ctx := context.Background()
	chatID := msg.Chat.ID
	userID := msg.From.ID
	l := b.getLang(userID)

	fileID, fileSize, isPhoto := proofFile(msg)
	if fileID == "" {
		b.send(chatID, lang.T(l, "invalid_file"))
		return
	}
	if fileSize > b.cfg.Intake.MaxFileSize {
		b.send(chatID, lang.T(l, "file_too_large"))
		return
	}

	s, ok := b.sessions.snapshot(userID)
	if !ok || s.step != stepProof {
		return
	}
	b.sessions.cancelTimeout(userID)

	userName := msg.From.UserName
	if userName == "" {
		userName = strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	}

	app, err := services.CreateApplication(ctx, models.CreateApplicationInput{
		UserID:   userID,
		UserName: userName,
		Login:    s.login,
		Amount:   s.amount,
		Currency: b.cfg.Payments.Currency,
		FileID:   fileID,
	})
	if err != nil {
		b.sessions.reset(userID)
		b.reportCreateError(chatID, userID, err)
		return
	}
	b.sessions.reset(userID)

	b.send(chatID, lang.T(l, "application_created", app.ID, app.Amount.StringFixed(0), app.Login))
	b.showMainMenu(chatID, userID, false)

	b.broadcastNewApplication(ctx, app, isPhoto)
}

func (b *Bot) reportCreateError(chatID, userID int64, err error) {
	l := b.getLang(userID)
	var rateErr *services.RateLimitError
	var valErr *services.ValidationError
	switch {
	case errors.As(err, &rateErr):
		if rateErr.Reason == services.RateReasonDailyCap {
			b.send(chatID, lang.T(l, "rate_limited_daily"))
		} else {
			b.send(chatID, lang.T(l, "rate_limited_wait", rateErr.RetryAfter.Round(time.Second).String()))
		}
	case errors.As(err, &valErr):
		b.send(chatID, lang.T(l, "generic_error"))
		logger.L.Warnw("application rejected by validation", "user_id", userID, "err", err)
	default:
		logger.L.Errorw("create application failed", "user_id", userID, "err", err)
		b.send(chatID, lang.T(l, "generic_error"))
	}
}

// broadcastNewApplication sends the proof with the review card to every admin.
func (b *Bot) broadcastNewApplication(ctx context.Context, app *models.Application, isPhoto bool) {
	admins, err := services.ListAdmins(ctx)
	if err != nil {
		logger.L.Errorw("list admins failed", "err", err)
		return
	}
	caption := adminApplicationCard(app)
	kb := adminApplicationKeyboard(app.ID)
	for _, a := range admins {
		var c tgbotapi.Chattable
		if isPhoto {
			photo := tgbotapi.NewPhoto(a.UserID, tgbotapi.FileID(app.FileID))
			photo.Caption = caption
			photo.ReplyMarkup = kb
			c = photo
		} else {
			doc := tgbotapi.NewDocument(a.UserID, tgbotapi.FileID(app.FileID))
			doc.Caption = caption
			doc.ReplyMarkup = kb
			c = doc
		}
		if _, err := b.api.Send(c); err != nil {
			logger.L.Warnw("notify admin failed", "admin_id", a.UserID, "application_id", app.ID, "err", err)
		}
	}
}

// proofFile extracts the proof reference from the message. Photos come as a
// size ladder; the last entry is the original resolution.
func proofFile(msg *tgbotapi.Message) (fileID string, size int64, isPhoto bool) {
	if len(msg.Photo) > 0 {
		ph := msg.Photo[len(msg.Photo)-1]
		return ph.FileID, int64(ph.FileSize), true
	}
	if msg.Document != nil {
		return msg.Document.FileID, int64(msg.Document.FileSize), false
	}
	return "", 0, false
}

func (b *Bot) handleApplicationCallback(chatID, userID int64, rest string) {
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return
	}
	appID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || appID <= 0 {
		return
	}
	switch parts[0] {
	case "view":
		b.showOwnApplication(chatID, userID, appID)
	case "cancel":
		b.cancelOwnApplication(chatID, userID, appID)
	}
}

func (b *Bot) showOwnApplication(chatID, userID, appID int64) {
	ctx := context.Background()
	l := b.getLang(userID)
	app, err := services.GetApplication(ctx, appID)
	if err != nil || app.UserID != userID {
		b.send(chatID, lang.T(l, "cancel_not_owner"))
		return
	}
	text := fmt.Sprintf("#%d\n💰 %s %s\n👤 %s\n%s %s\n🕒 %s",
		app.ID, app.Amount.StringFixed(0), app.Currency, app.Login,
		statusBadge(app.Status), app.Status,
		app.CreatedAt.Format("2006-01-02 15:04"))
	if app.AdminComment != nil && *app.AdminComment != "" {
		text += "\n💬 " + *app.AdminComment
	}
	b.sendWithInline(chatID, text, applicationCardKeyboard(l, app))
}

func (b *Bot) cancelOwnApplication(chatID, userID, appID int64) {
	ctx := context.Background()
	l := b.getLang(userID)
	_, err := services.Cancel(ctx, appID, userID)
	switch {
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrNotFound):
		b.send(chatID, lang.T(l, "cancel_not_owner"))
	case errors.Is(err, services.ErrInvalidState):
		b.send(chatID, lang.T(l, "cancel_not_pending"))
	case err != nil:
		logger.L.Errorw("cancel application failed", "application_id", appID, "err", err)
		b.send(chatID, lang.T(l, "generic_error"))
	default:
		b.send(chatID, lang.T(l, "cancelled_ok", appID))
		b.showMainMenu(chatID, userID, false)
	}
}
