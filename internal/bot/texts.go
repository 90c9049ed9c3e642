package bot

// User-facing texts. Markdown ones are sent with legacy Markdown parse mode.
const (
	textWelcome     = "👋 Привет, %s!\n\n%s"
	textWelcomeBack = "👋 Снова привет, %s!\nВыбери категорию:"

	textOpening    = "📤 Открываю ссылки категории..."
	textOpenedAll  = "Все ссылки отправлены! Что дальше?"
	textHelpSteps  = "❓ *Помощь по использованию бота:*\n\n1. Выберите категорию ссылок\n2. Нажмите на кнопку с нужной категорией\n3. Получите список ссылок\n4. Используйте кнопку 'Открыть все ссылки' для быстрого доступа\n\n*Команды:*\n"
	textHelpHeader = "🤖 *Бот для полезных ссылок*\n\n*Доступные команды:*\n"
	textHelpFooter = "\nПросто нажмите /start для начала работы!"

	textShareCallback = "🔗 *Пригласите друзей!*\n\n*Ссылка на бота:* %s\n\nПросто отправьте эту ссылку друзьям!"
	textShareCommand  = "Приглашайте друзей в бота! 🚀\n\n🔗 Ссылка: %s\n\nПросто отправьте эту ссылку или нажмите кнопку ниже для быстрого распространения:"

	textBrokenDraft  = "Что-то пошло не так с вашим заказом. Начните заново: /order"
	textAdminOnly    = "⛔ Команда доступна только администратору."
	textPingOK       = "✅ Тестовое уведомление отправлено."
	textPingNoAdmin  = "Администратор не настроен (TELEGRAM_ADMIN_ID)."
	textPingFailed   = "⚠️ Не удалось отправить уведомление: %s"
	textRateLimited  = "⏳ Слишком много запросов. Подождите немного."

	// TextApology answers handler errors.
	TextApology = "😕 Произошла ошибка. Попробуйте еще раз или используйте /start"
)

// Button labels.
const (
	btnOpenAll    = "🌐 Открыть все ссылки"
	btnBack       = "⬅️ Назад"
	btnBackToMenu = "⬅️ Назад в меню"
	btnOpenMenu   = "🎛 Открыть меню"
	btnHelp       = "ℹ️ Помощь"
	btnShare      = "🔗 Поделиться ботом"
	btnShareLink  = "📲 Поделиться ссылкой"
	btnShareTG    = "📲 Поделиться в Telegram"
	btnNewOrder   = "🛒 Сделать заказ"
	btnCancel     = "❌ Отменить заказ"
)

// Command descriptions shown in the Telegram menu and in help.
const (
	descStart      = "Запустить бота и открыть меню"
	descList       = "Получить все ссылки сразу"
	descHelp       = "Показать справку"
	descShare      = "Получить ссылку для приглашения"
	descOrder      = "Оформить заказ"
	descCancel     = "Отменить оформление заказа"
	descNotifyTest = "Проверить уведомления администратора"
)
