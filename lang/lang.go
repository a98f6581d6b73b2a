package lang

import "fmt"

const (
	Ru = "ru"
	En = "en"
)

// T renders the translated string for the key, formatting args in. Falls back
// to Russian, then to the bare key so a missing translation is visible
// instead of silent.
func T(code, key string, args ...interface{}) string {
	table, ok := texts[code]
	if !ok {
		table = texts[Ru]
	}
	tmpl, ok := table[key]
	if !ok {
		tmpl, ok = texts[Ru][key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

var texts = map[string]map[string]string{
	Ru: {
		"choose_lang":         "Выберите язык / Choose your language",
		"welcome":             "👋 Добро пожаловать! Здесь вы можете подать заявку на депозит и получить код активации.",
		"main_menu":           "Главное меню",
		"menu_deposit":        "💰 Пополнить депозит",
		"menu_applications":   "📋 Мои заявки",
		"menu_language":       "🌐 Язык",
		"menu_help":           "ℹ️ Помощь",
		"choose_amount":       "Выберите сумму депозита:",
		"custom_amount":       "✏️ Другая сумма",
		"enter_custom_amount": "Введите сумму депозита (целое число, USD):",
		"invalid_amount":      "❌ Неверная сумма. Введите положительное число.",
		"enter_login":         "Введите логин аккаунта для пополнения:",
		"invalid_login":       "❌ Логин не может быть пустым. Попробуйте ещё раз.",
		"confirm_data":        "Проверьте данные:\n💰 Сумма: %s USD\n👤 Логин: %s\n\nВсё верно?",
		"confirm_yes":         "✅ Да, всё верно",
		"confirm_change":      "✏️ Изменить",
		"send_proof":          "📎 Отправьте фото или документ с подтверждением оплаты.\n⏳ У вас есть 15 минут.",
		"proof_timeout":       "⏰ Время ожидания подтверждения истекло. Заявка не создана — начните заново через меню.",
		"file_too_large":      "❌ Файл слишком большой. Максимальный размер: 10 МБ.",
		"invalid_file":        "❌ Отправьте фото или документ (JPG, PNG, PDF).",
		"application_created": "✅ Заявка #%d создана!\n💰 Сумма: %s USD\n👤 Логин: %s\n\nОжидайте решения администратора.",
		"rate_limited_wait":   "⏳ Слишком частые запросы. Попробуйте через %s.",
		"rate_limited_daily":  "❌ Вы превысили лимит заявок в день. Попробуйте завтра.",
		"status_approved":     "✅ Заявка #%d одобрена!\n🎟️ Ваш код активации:\n%s",
		"status_rejected":     "❌ Заявка #%d отклонена.\nПричина: %s\n\nХотите попробовать ещё раз?",
		"status_needs_info":   "❓ По заявке #%d нужна дополнительная информация: %s",
		"retry_yes":           "🔄 Попробовать снова",
		"retry_no":            "🏠 В главное меню",
		"no_applications":     "У вас пока нет заявок.",
		"application_line":    "#%d — %s USD — %s",
		"cancel_application":  "🚫 Отменить",
		"cancelled_ok":        "✅ Заявка #%d отменена.",
		"cancel_not_pending":  "❌ Отменить можно только заявку в статусе «ожидает».",
		"cancel_not_owner":    "❌ Заявка не найдена.",
		"generic_error":       "⚠️ Произошла ошибка. Попробуйте позже.",
		"help":                "Подайте заявку через «Пополнить депозит», приложите подтверждение оплаты и дождитесь кода активации. Вопросы — администратору.",
		"pay_online":          "💳 Оплатить картой",
		"pay_manual":          "📎 Загрузить подтверждение",
		"choose_payment":      "Как вы хотите оплатить?",
		"payment_success":     "✅ Оплата прошла успешно!\n💰 Сумма: %s USD\n🎟️ Ваш код активации:\n%s",
		"payment_pending":     "✅ Оплата прошла успешно!\n📋 Заявка #%d создана и обрабатывается администратором. Код будет выдан в ближайшее время.",
		"back":                "⬅️ Назад",
	},
	En: {
		"choose_lang":         "Выберите язык / Choose your language",
		"welcome":             "👋 Welcome! Submit a deposit request here and receive an activation code.",
		"main_menu":           "Main menu",
		"menu_deposit":        "💰 Make a deposit",
		"menu_applications":   "📋 My applications",
		"menu_language":       "🌐 Language",
		"menu_help":           "ℹ️ Help",
		"choose_amount":       "Choose a deposit amount:",
		"custom_amount":       "✏️ Custom amount",
		"enter_custom_amount": "Enter the deposit amount (whole number, USD):",
		"invalid_amount":      "❌ Invalid amount. Enter a positive number.",
		"enter_login":         "Enter the account login to top up:",
		"invalid_login":       "❌ Login must not be empty. Try again.",
		"confirm_data":        "Please check:\n💰 Amount: %s USD\n👤 Login: %s\n\nIs everything correct?",
		"confirm_yes":         "✅ Yes, correct",
		"confirm_change":      "✏️ Change",
		"send_proof":          "📎 Send a photo or document confirming the payment.\n⏳ You have 15 minutes.",
		"proof_timeout":       "⏰ Proof upload timed out. No application was created — start over from the menu.",
		"file_too_large":      "❌ File too large. Maximum size: 10 MB.",
		"invalid_file":        "❌ Send a photo or a document (JPG, PNG, PDF).",
		"application_created": "✅ Application #%d created!\n💰 Amount: %s USD\n👤 Login: %s\n\nWait for an administrator's decision.",
		"rate_limited_wait":   "⏳ Too many requests. Try again in %s.",
		"rate_limited_daily":  "❌ Daily application limit reached. Try again tomorrow.",
		"status_approved":     "✅ Application #%d approved!\n🎟️ Your activation code:\n%s",
		"status_rejected":     "❌ Application #%d rejected.\nReason: %s\n\nWould you like to try again?",
		"status_needs_info":   "❓ Application #%d needs more information: %s",
		"retry_yes":           "🔄 Try again",
		"retry_no":            "🏠 Main menu",
		"no_applications":     "You have no applications yet.",
		"application_line":    "#%d — %s USD — %s",
		"cancel_application":  "🚫 Cancel",
		"cancelled_ok":        "✅ Application #%d cancelled.",
		"cancel_not_pending":  "❌ Only applications still waiting can be cancelled.",
		"cancel_not_owner":    "❌ Application not found.",
		"generic_error":       "⚠️ Something went wrong. Try again later.",
		"help":                "Use “Make a deposit”, attach your payment proof and wait for the activation code. Contact an administrator with questions.",
		"pay_online":          "💳 Pay by card",
		"pay_manual":          "📎 Upload payment proof",
		"choose_payment":      "How would you like to pay?",
		"payment_success":     "✅ Payment successful!\n💰 Amount: %s USD\n🎟️ Your activation code:\n%s",
		"payment_pending":     "✅ Payment successful!\n📋 Application #%d was created and is being processed by an administrator. Your code will be issued shortly.",
		"back":                "⬅️ Back",
	},
}
