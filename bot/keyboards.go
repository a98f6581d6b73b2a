package bot

import (
	"fmt"
	"strconv"

	"deposit-telegram/lang"
	"deposit-telegram/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Русский", "lang:ru"),
			tgbotapi.NewInlineKeyboardButtonData("English", "lang:en"),
		),
	)
}

func mainMenuKeyboard(langCode string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "menu_deposit"), "menu:deposit"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "menu_applications"), "menu:apps"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "menu_language"), "menu:lang"),
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "menu_help"), "menu:help"),
		),
	)
}

func paymentMethodKeyboard(langCode string, onlineEnabled bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "pay_manual"), "pay:manual"),
		),
	}
	if onlineEnabled {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "pay_online"), "pay:online"),
		))
	}
	rows = append(rows, backRow(langCode))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// amountKeyboard lists the configured denominations plus the custom option.
// prefix distinguishes the manual flow ("dep") from the online one ("payamt").
func amountKeyboard(langCode, prefix string, amounts []int, withCustom bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	row := []tgbotapi.InlineKeyboardButton{}
	for _, a := range amounts {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d USD", a), fmt.Sprintf("%s:%d", prefix, a)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if withCustom {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "custom_amount"), prefix+":custom")))
	}
	rows = append(rows, backRow(langCode))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmKeyboard(langCode string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "confirm_yes"), "dep:yes"),
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "confirm_change"), "dep:change"),
		),
	)
}

func retryKeyboard(langCode string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "retry_yes"), "retry:yes"),
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "retry_no"), "menu:main"),
		),
	)
}

func backRow(langCode string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "back"), "menu:main"),
	)
}

func userApplicationsKeyboard(langCode string, apps []models.Application) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, a := range apps {
		label := fmt.Sprintf("#%d — %s USD — %s", a.ID, a.Amount.StringFixed(0), statusBadge(a.Status))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "app:view:"+strconv.FormatInt(a.ID, 10))))
	}
	rows = append(rows, backRow(langCode))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func applicationCardKeyboard(langCode string, app *models.Application) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if app.Status == "pending" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(langCode, "cancel_application"),
				"app:cancel:"+strconv.FormatInt(app.ID, 10))))
	}
	rows = append(rows, backRow(langCode))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// admin keyboards

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏳ Pending", "adm:pending"),
			tgbotapi.NewInlineKeyboardButtonData("📋 All", "adm:all"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", "adm:stats:1"),
			tgbotapi.NewInlineKeyboardButtonData("🎟️ Codes", "adm:codes"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Admins", "adm:admins"),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Amounts", "adm:amounts"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔐 Logs", "adm:logs"),
			tgbotapi.NewInlineKeyboardButtonData("📤 Export", "adm:export"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Payments", "adm:payments"),
		),
	)
}

func adminApplicationKeyboard(appID int64) tgbotapi.InlineKeyboardMarkup {
	id := strconv.FormatInt(appID, 10)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", "adm:approve:"+id),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", "adm:reject:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ Request info", "adm:info:"+id),
			tgbotapi.NewInlineKeyboardButtonData("📋 History", "adm:history:"+id),
		),
	)
}

func adminCodesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add", "adm:code_add"),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", "adm:code_del"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Import CSV", "adm:code_import"),
			tgbotapi.NewInlineKeyboardButtonData("📄 List", "adm:code_list"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Panel", "adm:panel"),
		),
	)
}

func adminAdminsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add", "adm:admin_add"),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Remove", "adm:admin_del"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Panel", "adm:panel"),
		),
	)
}

func adminStatsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("1d", "adm:stats:1"),
			tgbotapi.NewInlineKeyboardButtonData("7d", "adm:stats:7"),
			tgbotapi.NewInlineKeyboardButtonData("30d", "adm:stats:30"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Panel", "adm:panel"),
		),
	)
}

func adminPaymentsKeyboard(configured bool) tgbotapi.InlineKeyboardMarkup {
	if configured {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔁 Change token", "adm:pay_token"),
				tgbotapi.NewInlineKeyboardButtonData("🗑 Remove token", "adm:pay_remove"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⬅️ Panel", "adm:panel"),
			),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Set token", "adm:pay_token"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Panel", "adm:panel"),
		),
	)
}

func statusBadge(status string) string {
	switch status {
	case "pending":
		return "⏳"
	case "approved":
		return "✅"
	case "rejected":
		return "❌"
	case "cancelled":
		return "🚫"
	case "needs_info":
		return "❓"
	}
	return status
}
