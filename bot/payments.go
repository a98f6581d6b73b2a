package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"deposit-telegram/lang"
	"deposit-telegram/logger"
	"deposit-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

// handleOnlineAmount sends an invoice for one of the fixed denominations.
func (b *Bot) handleOnlineAmount(chatID, userID int64, arg string) {
	ctx := context.Background()
	l := b.getLang(userID)

	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return
	}
	token := services.PaymentProviderToken(ctx, b.cfg.Payments.ProviderToken)
	if token == "" {
		b.send(chatID, lang.T(l, "generic_error"))
		return
	}
	currency := b.cfg.Payments.Currency
	invoice := tgbotapi.NewInvoice(chatID,
		fmt.Sprintf("Deposit %d %s", n, currency),
		lang.T(l, "menu_deposit"),
		"deposit:"+arg,
		token,
		"", // deep-linking start parameter unused
		currency,
		[]tgbotapi.LabeledPrice{{Label: fmt.Sprintf("%d %s", n, currency), Amount: n * 100}},
	)
	if _, err := b.api.Request(invoice); err != nil {
		logger.L.Errorw("send invoice failed", "chat_id", chatID, "err", err)
		b.send(chatID, lang.T(l, "generic_error"))
	}
}

// handlePreCheckout confirms the charge. The payload was produced by this bot,
// so anything else is rejected before money moves.
func (b *Bot) handlePreCheckout(pq *tgbotapi.PreCheckoutQuery) {
	ok := strings.HasPrefix(pq.InvoicePayload, "deposit:")
	answer := tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: pq.ID,
		OK:                 ok,
	}
	if !ok {
		answer.ErrorMessage = "Unknown invoice."
	}
	if _, err := b.api.Request(answer); err != nil {
		logger.L.Errorw("answer pre-checkout failed", "err", err)
	}
}

// handleSuccessfulPayment records the confirmed charge. When a code is in the
// pool the application auto-approves and the code goes straight to the payer;
// otherwise admins get an urgent ping because money is already taken.
func (b *Bot) handleSuccessfulPayment(msg *tgbotapi.Message) {
	ctx := context.Background()
	sp := msg.SuccessfulPayment
	userID := msg.From.ID
	l := b.getLang(userID)

	amount := decimal.NewFromInt(int64(sp.TotalAmount)).Div(decimal.NewFromInt(100))
	userName := msg.From.UserName
	if userName == "" {
		userName = strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	}

	app, codeValue, approved, err := services.AutoApprovePayment(ctx, services.PaymentInput{
		UserID:           userID,
		UserName:         userName,
		Amount:           amount,
		Currency:         sp.Currency,
		ChargeID:         sp.TelegramPaymentChargeID,
		ProviderChargeID: sp.ProviderPaymentChargeID,
	})
	if err != nil {
		// The charge went through but we failed to record it. Escalate with
		// everything needed to fix it by hand.
		logger.L.Errorw("record payment failed",
			"user_id", userID, "amount", amount, "charge_id", sp.TelegramPaymentChargeID, "err", err)
		b.send(msg.Chat.ID, lang.T(l, "generic_error"))
		b.notifyAdmins(ctx, fmt.Sprintf(
			"🚨 Payment recorded by the provider but NOT in the database!\nUser: %d\nAmount: %s %s\nCharge: %s",
			userID, amount.StringFixed(2), sp.Currency, sp.ProviderPaymentChargeID), nil)
		return
	}

	if approved {
		b.send(msg.Chat.ID, lang.T(l, "payment_success", app.Amount.StringFixed(0), codeValue))
		return
	}
	b.send(msg.Chat.ID, lang.T(l, "payment_pending", app.ID))
	kb := adminApplicationKeyboard(app.ID)
	b.notifyAdmins(ctx, fmt.Sprintf(
		"🚨 Paid application #%d has no matching code!\nUser: %d\nAmount: %s %s\nAdd a code and approve it.",
		app.ID, app.UserID, app.Amount.StringFixed(0), app.Currency), &kb)
}
