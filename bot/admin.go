package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"deposit-telegram/lang"
	"deposit-telegram/logger"
	"deposit-telegram/models"
	"deposit-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

func (b *Bot) openAdminPanel(chatID, userID int64) {
	ctx := context.Background()
	if _, ok := b.authorize(ctx, chatID, userID); !ok {
		return
	}
	b.sendWithInline(chatID, "🛠 Admin panel", adminPanelKeyboard())
}

func (b *Bot) handleAdminCallback(chatID, userID int64, rest string) {
	ctx := context.Background()
	actor, ok := b.authorize(ctx, chatID, userID)
	if !ok {
		return
	}

	parts := strings.SplitN(rest, ":", 2)
	action := parts[0]
	arg := ""
	if len(parts) == 2 {
		arg = parts[1]
	}

	switch action {
	case "panel":
		b.sessions.reset(userID)
		b.sendWithInline(chatID, "🛠 Admin panel", adminPanelKeyboard())
	case "pending":
		b.showQueue(chatID, "pending")
	case "all":
		b.showRecent(chatID)
	case "stats":
		days, _ := strconv.Atoi(arg)
		b.showStats(chatID, days)
	case "view":
		b.showAdminApplication(chatID, arg)
	case "approve":
		b.approveApplication(chatID, actor, arg)
	case "reject":
		b.promptForText(chatID, userID, arg, stepAdminRejectReason, "Enter a rejection reason:")
	case "info":
		b.promptForText(chatID, userID, arg, stepAdminInfoRequest, "What information is missing? The question goes to the requester:")
	case "history":
		b.showHistory(chatID, arg)
	case "codes":
		b.showCodesMenu(chatID, actor)
	case "code_add":
		b.promptForText(chatID, userID, "", stepAdminCodeValue, "Send the code value:")
	case "code_del":
		b.promptForText(chatID, userID, "", stepAdminCodeDelete, "Send the code value to delete:")
	case "code_import":
		b.sessions.update(userID, func(s *session) { s.push(stepAdminCSVImport) })
		b.send(chatID, "Upload a CSV document: code,amount per line, header optional.")
	case "code_list":
		b.showCodeList(chatID)
	case "admins":
		b.showAdmins(chatID, actor)
	case "admin_add":
		if !actor.CanManageAdmins() {
			b.send(chatID, "Only the superadmin can manage admins.")
			return
		}
		b.promptForText(chatID, userID, "", stepAdminAddAdmin, "Send the user id to promote (append \"superadmin\" for a superadmin role):")
	case "admin_del":
		if !actor.CanManageAdmins() {
			b.send(chatID, "Only the superadmin can manage admins.")
			return
		}
		b.promptForText(chatID, userID, "", stepAdminRemoveAdmin, "Send the user id to demote:")
	case "amounts":
		current := services.DepositAmounts(ctx)
		b.promptForText(chatID, userID, "", stepAdminAmounts,
			fmt.Sprintf("Current denominations: %v\nSend a new comma-separated list, e.g. 10,25,50,100:", current))
	case "logs":
		b.showAdminLogs(chatID)
	case "export":
		b.runExport(chatID, actor)
	case "payments":
		token := services.PaymentProviderToken(ctx, b.cfg.Payments.ProviderToken)
		b.sendWithInline(chatID, "💳 Online payments", adminPaymentsKeyboard(token != ""))
	case "pay_token":
		b.promptForText(chatID, userID, "", stepAdminPaymentToken, "Send the payment provider token:")
	case "pay_remove":
		if err := services.DeleteSetting(ctx, services.SettingPaymentToken, actor.UserID); err != nil {
			logger.L.Errorw("delete payment token failed", "err", err)
			b.send(chatID, "Failed to remove the token.")
			return
		}
		b.send(chatID, "✅ Payment provider token removed.")
	}
}

// promptForText arms an admin text-input step, remembering the target
// application when the action is bound to one.
func (b *Bot) promptForText(chatID, userID int64, appArg string, st step, prompt string) {
	var appID int64
	if appArg != "" {
		id, err := strconv.ParseInt(appArg, 10, 64)
		if err != nil || id <= 0 {
			return
		}
		appID = id
	}
	b.sessions.update(userID, func(s *session) {
		if appID > 0 {
			s.targetAppID = appID
		}
		s.push(st)
	})
	b.send(chatID, prompt)
}

func (b *Bot) handleAdminText(chatID, userID int64, st step, text string) {
	ctx := context.Background()
	actor, ok := b.authorize(ctx, chatID, userID)
	if !ok {
		b.sessions.reset(userID)
		return
	}
	s, ok := b.sessions.snapshot(userID)
	if !ok {
		return
	}

	switch st {
	case stepAdminRejectReason:
		b.rejectApplication(chatID, actor, s.targetAppID, text)
		b.sessions.reset(userID)
	case stepAdminInfoRequest:
		b.requestInfo(chatID, actor, s.targetAppID, text)
		b.sessions.reset(userID)
	case stepAdminCodeValue:
		value := strings.TrimSpace(text)
		if value == "" {
			b.send(chatID, "Code value must not be empty.")
			return
		}
		b.sessions.update(userID, func(s *session) {
			s.codeValue = value
			s.push(stepAdminCodeAmount)
		})
		b.send(chatID, "Send the amount this code unlocks:")
	case stepAdminCodeAmount:
		b.addCode(chatID, actor, s.codeValue, text)
		b.sessions.reset(userID)
	case stepAdminCodeDelete:
		b.deleteCode(chatID, actor, text)
		b.sessions.reset(userID)
	case stepAdminAddAdmin:
		b.addAdmin(chatID, actor, text)
		b.sessions.reset(userID)
	case stepAdminRemoveAdmin:
		b.removeAdmin(chatID, actor, text)
		b.sessions.reset(userID)
	case stepAdminAmounts:
		b.setAmounts(chatID, actor, text)
		b.sessions.reset(userID)
	case stepAdminPaymentToken:
		token := strings.TrimSpace(text)
		if token == "" {
			b.send(chatID, "Token must not be empty.")
			return
		}
		if err := services.SetSetting(ctx, services.SettingPaymentToken, token, "payment provider token", actor.UserID); err != nil {
			logger.L.Errorw("store payment token failed", "err", err)
			b.send(chatID, "Failed to store the token.")
		} else {
			b.send(chatID, "✅ Payment provider token saved.")
		}
		b.sessions.reset(userID)
	}
}

// queue and card views

func (b *Bot) showQueue(chatID int64, status string) {
	ctx := context.Background()
	apps, err := services.ListApplicationsByStatus(ctx, status, 20)
	if err != nil {
		logger.L.Errorw("list queue failed", "status", status, "err", err)
		b.send(chatID, "Failed to load the queue.")
		return
	}
	if len(apps) == 0 {
		b.send(chatID, "The queue is empty.")
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, a := range apps {
		label := fmt.Sprintf("#%d — %s %s — %s", a.ID, a.Amount.StringFixed(0), a.Currency, a.Login)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "adm:view:"+strconv.FormatInt(a.ID, 10))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Panel", "adm:panel")))
	b.sendWithInline(chatID, fmt.Sprintf("⏳ %d waiting, oldest first:", len(apps)),
		tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) showRecent(chatID int64) {
	ctx := context.Background()
	apps, err := services.ListApplications(ctx, 20)
	if err != nil {
		logger.L.Errorw("list applications failed", "err", err)
		b.send(chatID, "Failed to load applications.")
		return
	}
	if len(apps) == 0 {
		b.send(chatID, "No applications yet.")
		return
	}
	var sb strings.Builder
	sb.WriteString("📋 Latest applications:\n\n")
	for _, a := range apps {
		fmt.Fprintf(&sb, "%s #%d — %s %s — %s — %s\n",
			statusBadge(a.Status), a.ID, a.Amount.StringFixed(0), a.Currency, a.Login,
			a.CreatedAt.Format("01-02 15:04"))
	}
	b.send(chatID, sb.String())
}

func (b *Bot) showAdminApplication(chatID int64, arg string) {
	ctx := context.Background()
	appID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || appID <= 0 {
		return
	}
	app, err := services.GetApplication(ctx, appID)
	if errors.Is(err, services.ErrNotFound) {
		b.send(chatID, "Application not found.")
		return
	}
	if err != nil {
		logger.L.Errorw("load application failed", "application_id", appID, "err", err)
		b.send(chatID, "Failed to load the application.")
		return
	}
	if services.IsResolvable(app.Status) {
		b.sendWithInline(chatID, adminApplicationCard(app), adminApplicationKeyboard(app.ID))
		return
	}
	b.send(chatID, adminApplicationCard(app))
}

func adminApplicationCard(app *models.Application) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📨 Application #%d\n", app.ID)
	fmt.Fprintf(&sb, "👤 User: %d", app.UserID)
	if app.UserName != "" {
		fmt.Fprintf(&sb, " (@%s)", app.UserName)
	}
	fmt.Fprintf(&sb, "\n🔑 Login: %s\n", app.Login)
	fmt.Fprintf(&sb, "💰 Amount: %s %s\n", app.Amount.StringFixed(0), app.Currency)
	fmt.Fprintf(&sb, "%s Status: %s\n", statusBadge(app.Status), app.Status)
	if app.ResolverKind != nil {
		if *app.ResolverKind == "auto" {
			sb.WriteString("🤖 Resolved automatically after online payment\n")
		} else if app.AdminID != nil {
			fmt.Fprintf(&sb, "🧑‍💼 Resolved by admin %d\n", *app.AdminID)
		}
	}
	if app.AdminComment != nil && *app.AdminComment != "" {
		fmt.Fprintf(&sb, "💬 %s\n", *app.AdminComment)
	}
	fmt.Fprintf(&sb, "🕒 %s", app.CreatedAt.Format("2006-01-02 15:04"))
	return sb.String()
}

// resolution actions

func (b *Bot) approveApplication(chatID int64, actor *services.Actor, arg string) {
	ctx := context.Background()
	appID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || appID <= 0 {
		return
	}
	app, codeValue, err := services.Approve(ctx, appID, actor.UserID)
	switch {
	case errors.Is(err, services.ErrNotFound):
		b.send(chatID, "Application not found.")
	case errors.Is(err, services.ErrAlreadyResolved):
		b.send(chatID, fmt.Sprintf("Application #%d was already resolved by someone else.", appID))
	case errors.Is(err, services.ErrNoCodeAvailable):
		b.send(chatID, fmt.Sprintf("⚠️ No unused code left for this amount. Add codes, then approve #%d again.", appID))
	case err != nil:
		logger.L.Errorw("approve failed", "application_id", appID, "admin_id", actor.UserID, "err", err)
		b.send(chatID, "Approve failed, try again.")
	default:
		services.LogAdminAction(ctx, actor.UserID, "approve_application", &appID, "issued code")
		b.send(chatID, fmt.Sprintf("✅ Application #%d approved, code issued.", appID))
		b.notifyUser(app.UserID, "status_approved", app.ID, codeValue)
	}
}

func (b *Bot) rejectApplication(chatID int64, actor *services.Actor, appID int64, reason string) {
	ctx := context.Background()
	if appID <= 0 {
		return
	}
	app, err := services.Reject(ctx, appID, actor.UserID, strings.TrimSpace(reason))
	switch {
	case errors.Is(err, services.ErrNotFound):
		b.send(chatID, "Application not found.")
	case errors.Is(err, services.ErrAlreadyResolved):
		b.send(chatID, fmt.Sprintf("Application #%d was already resolved by someone else.", appID))
	case err != nil:
		logger.L.Errorw("reject failed", "application_id", appID, "admin_id", actor.UserID, "err", err)
		b.send(chatID, "Reject failed, try again.")
	default:
		services.LogAdminAction(ctx, actor.UserID, "reject_application", &appID, reason)
		b.send(chatID, fmt.Sprintf("❌ Application #%d rejected.", appID))
		comment := ""
		if app.AdminComment != nil {
			comment = *app.AdminComment
		}
		l := b.getLang(app.UserID)
		msg := tgbotapi.NewMessage(app.UserID, lang.T(l, "status_rejected", app.ID, comment))
		msg.ReplyMarkup = retryKeyboard(l)
		if _, err := b.api.Send(msg); err != nil {
			logger.L.Warnw("notify user failed", "user_id", app.UserID, "err", err)
		}
	}
}

func (b *Bot) requestInfo(chatID int64, actor *services.Actor, appID int64, question string) {
	ctx := context.Background()
	if appID <= 0 {
		return
	}
	app, err := services.RequestInfo(ctx, appID, actor.UserID, strings.TrimSpace(question))
	switch {
	case errors.Is(err, services.ErrNotFound):
		b.send(chatID, "Application not found.")
	case errors.Is(err, services.ErrInvalidState):
		b.send(chatID, fmt.Sprintf("Application #%d is no longer pending.", appID))
	case err != nil:
		logger.L.Errorw("request info failed", "application_id", appID, "admin_id", actor.UserID, "err", err)
		b.send(chatID, "Request failed, try again.")
	default:
		services.LogAdminAction(ctx, actor.UserID, "request_info", &appID, question)
		b.send(chatID, fmt.Sprintf("❓ Question sent for application #%d.", appID))
		b.notifyUser(app.UserID, "status_needs_info", app.ID, strings.TrimSpace(question))
	}
}

func (b *Bot) showHistory(chatID int64, arg string) {
	ctx := context.Background()
	appID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || appID <= 0 {
		return
	}
	entries, err := services.GetTransactionHistory(ctx, appID)
	if err != nil {
		logger.L.Errorw("load history failed", "application_id", appID, "err", err)
		b.send(chatID, "Failed to load the history.")
		return
	}
	if len(entries) == 0 {
		b.send(chatID, "No history for this application.")
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 History of #%d:\n\n", appID)
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s — %s", e.CreatedAt.Format("2006-01-02 15:04"), e.Action)
		if e.AdminID != nil {
			fmt.Fprintf(&sb, " by %d", *e.AdminID)
		}
		if e.Comment != nil && *e.Comment != "" {
			fmt.Fprintf(&sb, " — %s", *e.Comment)
		}
		sb.WriteString("\n")
	}
	b.send(chatID, sb.String())
}

func (b *Bot) showStats(chatID int64, days int) {
	ctx := context.Background()
	stats, err := services.GetStats(ctx, days)
	if err != nil {
		logger.L.Errorw("load stats failed", "err", err)
		b.send(chatID, "Failed to load stats.")
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Last %d day(s)\n\n", stats.Days)
	fmt.Fprintf(&sb, "Total: %d\n✅ Approved: %d\n❌ Rejected: %d\n⏳ Pending: %d\n🚫 Cancelled: %d\n",
		stats.Total, stats.Approved, stats.Rejected, stats.Pending, stats.Cancelled)
	sb.WriteString("\n🎟️ Codes remaining:\n")
	if len(stats.Codes) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, c := range stats.Codes {
		fmt.Fprintf(&sb, "%s USD: %d\n", c.Amount.StringFixed(0), c.Available)
	}
	b.sendWithInline(chatID, sb.String(), adminStatsKeyboard())
}

// code management

func (b *Bot) showCodesMenu(chatID int64, actor *services.Actor) {
	if !actor.CanManageCodes() {
		b.send(chatID, "You cannot manage codes.")
		return
	}
	b.sendWithInline(chatID, "🎟️ Activation codes", adminCodesKeyboard())
}

func (b *Bot) addCode(chatID int64, actor *services.Actor, codeValue, amountText string) {
	ctx := context.Background()
	amount, err := decimal.NewFromString(strings.TrimSpace(amountText))
	if err != nil || !amount.IsPositive() {
		b.send(chatID, "Invalid amount.")
		return
	}
	code, err := services.AddCode(ctx, codeValue, amount)
	switch {
	case errors.Is(err, services.ErrDuplicateCode):
		b.send(chatID, "This code already exists.")
	case err != nil:
		logger.L.Errorw("add code failed", "err", err)
		b.send(chatID, "Failed to add the code.")
	default:
		services.LogAdminAction(ctx, actor.UserID, "add_code", &code.ID, codeValue)
		b.send(chatID, fmt.Sprintf("✅ Code added for %s USD.", amount.StringFixed(0)))
	}
}

func (b *Bot) deleteCode(chatID int64, actor *services.Actor, codeValue string) {
	ctx := context.Background()
	code, err := services.GetCodeByValue(ctx, strings.TrimSpace(codeValue))
	if errors.Is(err, services.ErrNotFound) {
		b.send(chatID, "Code not found.")
		return
	}
	if err != nil {
		logger.L.Errorw("load code failed", "err", err)
		b.send(chatID, "Failed to load the code.")
		return
	}
	err = services.DeleteCode(ctx, code.ID)
	switch {
	case errors.Is(err, services.ErrCodeInUse):
		b.send(chatID, "This code was already issued and cannot be deleted.")
	case errors.Is(err, services.ErrNotFound):
		b.send(chatID, "Code not found.")
	case err != nil:
		logger.L.Errorw("delete code failed", "err", err)
		b.send(chatID, "Failed to delete the code.")
	default:
		services.LogAdminAction(ctx, actor.UserID, "delete_code", &code.ID, codeValue)
		b.send(chatID, "✅ Code deleted.")
	}
}

func (b *Bot) showCodeList(chatID int64) {
	ctx := context.Background()
	summary, err := services.CodeSummary(ctx)
	if err != nil {
		logger.L.Errorw("code summary failed", "err", err)
		b.send(chatID, "Failed to load codes.")
		return
	}
	if len(summary) == 0 {
		b.send(chatID, "The code pool is empty.")
		return
	}
	var sb strings.Builder
	sb.WriteString("🎟️ Codes by amount (available / total):\n\n")
	for _, c := range summary {
		fmt.Fprintf(&sb, "%s USD: %d / %d\n", c.Amount.StringFixed(0), c.Available, c.Total)
	}
	b.send(chatID, sb.String())
}

func (b *Bot) handleCSVImport(msg *tgbotapi.Message) {
	ctx := context.Background()
	chatID := msg.Chat.ID
	userID := msg.From.ID
	actor, ok := b.authorize(ctx, chatID, userID)
	if !ok {
		b.sessions.reset(userID)
		return
	}
	defer b.sessions.reset(userID)

	if msg.Document == nil {
		b.send(chatID, "Upload the codes as a CSV document.")
		return
	}
	url, err := b.api.GetFileDirectURL(msg.Document.FileID)
	if err != nil {
		logger.L.Errorw("resolve file url failed", "err", err)
		b.send(chatID, "Failed to download the file.")
		return
	}
	resp, err := http.Get(url)
	if err != nil {
		logger.L.Errorw("download csv failed", "err", err)
		b.send(chatID, "Failed to download the file.")
		return
	}
	defer resp.Body.Close()

	rows, parseErrs := services.ParseCodesCSV(io.LimitReader(resp.Body, b.cfg.Intake.MaxFileSize))
	result, err := services.ImportCodes(ctx, rows)
	if err != nil {
		logger.L.Errorw("import codes failed", "err", err)
		b.send(chatID, "Import aborted: "+err.Error())
		return
	}
	services.LogAdminAction(ctx, actor.UserID, "import_codes", nil,
		fmt.Sprintf("added %d, skipped %d", result.Added, result.Skipped))

	var sb strings.Builder
	fmt.Fprintf(&sb, "📥 Import finished.\nAdded: %d\nSkipped duplicates: %d\n", result.Added, result.Skipped)
	issues := append(parseErrs, result.Errors...)
	if len(issues) > 0 {
		if len(issues) > 10 {
			issues = issues[:10]
		}
		sb.WriteString("Problems:\n")
		for _, e := range issues {
			sb.WriteString("• " + e + "\n")
		}
	}
	b.send(chatID, sb.String())
}

// admin roster

func (b *Bot) showAdmins(chatID int64, actor *services.Actor) {
	ctx := context.Background()
	admins, err := services.ListAdmins(ctx)
	if err != nil {
		logger.L.Errorw("list admins failed", "err", err)
		b.send(chatID, "Failed to load admins.")
		return
	}
	var sb strings.Builder
	sb.WriteString("👥 Administrators:\n\n")
	for _, a := range admins {
		fmt.Fprintf(&sb, "%d — %s\n", a.UserID, a.Role)
	}
	if actor.CanManageAdmins() {
		b.sendWithInline(chatID, sb.String(), adminAdminsKeyboard())
		return
	}
	b.send(chatID, sb.String())
}

func (b *Bot) addAdmin(chatID int64, actor *services.Actor, text string) {
	ctx := context.Background()
	fields := strings.Fields(text)
	if len(fields) == 0 {
		b.send(chatID, "Send the user id to promote.")
		return
	}
	targetID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || targetID <= 0 {
		b.send(chatID, "Invalid user id.")
		return
	}
	role := models.RoleAdmin
	if len(fields) > 1 && fields[1] == models.RoleSuperadmin {
		role = models.RoleSuperadmin
	}
	if err := services.AddAdmin(ctx, actor, targetID, role); err != nil {
		if errors.Is(err, services.ErrForbidden) {
			b.send(chatID, "Only the superadmin can manage admins.")
			return
		}
		b.send(chatID, "Failed: "+err.Error())
		return
	}
	b.send(chatID, fmt.Sprintf("✅ User %d is now %s.", targetID, role))
}

func (b *Bot) removeAdmin(chatID int64, actor *services.Actor, text string) {
	ctx := context.Background()
	targetID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || targetID <= 0 {
		b.send(chatID, "Invalid user id.")
		return
	}
	if err := services.RemoveAdmin(ctx, actor, targetID); err != nil {
		if errors.Is(err, services.ErrForbidden) {
			b.send(chatID, "Superadmins cannot be removed this way.")
			return
		}
		b.send(chatID, "Failed: "+err.Error())
		return
	}
	b.send(chatID, fmt.Sprintf("✅ User %d demoted.", targetID))
}

func (b *Bot) setAmounts(chatID int64, actor *services.Actor, text string) {
	ctx := context.Background()
	var amounts []int
	for _, f := range strings.Split(text, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n <= 0 {
			b.send(chatID, "Invalid list. Use positive numbers separated by commas.")
			return
		}
		amounts = append(amounts, n)
	}
	if err := services.SetDepositAmounts(ctx, amounts, actor.UserID); err != nil {
		logger.L.Errorw("set amounts failed", "err", err)
		b.send(chatID, "Failed to store the denominations.")
		return
	}
	b.send(chatID, fmt.Sprintf("✅ Denominations updated: %v", amounts))
}

func (b *Bot) showAdminLogs(chatID int64) {
	ctx := context.Background()
	entries, err := services.ListAdminLogs(ctx, nil, 20, 7)
	if err != nil {
		logger.L.Errorw("list admin logs failed", "err", err)
		b.send(chatID, "Failed to load the log.")
		return
	}
	if len(entries) == 0 {
		b.send(chatID, "No admin activity in the last 7 days.")
		return
	}
	var sb strings.Builder
	sb.WriteString("🔐 Admin activity, last 7 days:\n\n")
	for _, e := range entries {
		sb.WriteString(e.CreatedAt.Format("01-02 15:04"))
		if e.AdminID != nil {
			fmt.Fprintf(&sb, " — %d", *e.AdminID)
		} else {
			sb.WriteString(" — auto")
		}
		fmt.Fprintf(&sb, " — %s", e.Action)
		if e.Details != nil && *e.Details != "" {
			fmt.Fprintf(&sb, " (%s)", *e.Details)
		}
		sb.WriteString("\n")
	}
	b.send(chatID, sb.String())
}

func (b *Bot) runExport(chatID int64, actor *services.Actor) {
	ctx := context.Background()
	if b.exporter == nil {
		b.send(chatID, "The spreadsheet mirror is not configured.")
		return
	}
	apps, err := services.ListApplications(ctx, 1000)
	if err != nil {
		logger.L.Errorw("list applications failed", "err", err)
		b.send(chatID, "Failed to load applications.")
		return
	}
	if err := b.exporter.ExportAll(ctx, apps); err != nil {
		logger.L.Errorw("export failed", "err", err)
		b.send(chatID, "Export failed: "+err.Error())
		return
	}
	services.LogAdminAction(ctx, actor.UserID, "export_applications", nil,
		fmt.Sprintf("%d rows", len(apps)))
	b.send(chatID, fmt.Sprintf("📤 Exported %d applications.", len(apps)))
}
