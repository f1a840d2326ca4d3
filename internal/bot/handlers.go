package bot

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/lernbot/internal/excel"
	"github.com/example/lernbot/internal/session"
	"github.com/example/lernbot/pkg/models"
)

// Conversation states
const (
	stateAwaitingWordList   = "awaiting_word_list"
	stateAwaitingImportFile = "awaiting_import_file"
	stateAwaitingCardsCount = "awaiting_cards_count"
)

// Operation names used for the bulk-ingestion locks
const (
	opImport   = "import"
	opAddWords = "add_words"
)

func (b *Bot) handleStartCommand(message *tgbotapi.Message) {
	_, err := b.users.GetOrCreate(message.From.ID, message.From.UserName,
		message.From.FirstName, message.From.LastName)
	if err != nil {
		log.Printf("Error creating user %d: %v", message.From.ID, err)
		b.reply(message.Chat.ID, "❌ Не удалось создать профиль. Попробуйте ещё раз позже.")
		return
	}

	text := "👋 Добро пожаловать в бот для изучения немецких слов!\n\n" +
		"Я помогу вам учить слова методом интервального повторения.\n\n" +
		"🔹 Как это работает:\n" +
		"1. Добавьте слова для изучения\n" +
		"2. Повторяйте их, когда подходит срок\n" +
		"3. Оценивайте, насколько хорошо помните\n" +
		"4. Интервалы подстраиваются под ваши ответы"

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
	b.send(msg)
}

func (b *Bot) handleHelpCommand(message *tgbotapi.Message) {
	text := "📖 Команды бота\n\n" +
		"/study - Повторить слова, срок которых подошёл\n" +
		"/new - Учить новые слова\n" +
		"/difficult - Повторить трудные слова\n" +
		"/add - Добавить свои слова\n" +
		"/words - Показать ваш словарь\n" +
		"/export - Выгрузить словарь в Excel\n" +
		"/stats - Показать статистику\n" +
		"/settings - Настройки\n" +
		"/cancel - Отменить текущее действие\n\n" +
		"🔄 Оценки при повторении:\n" +
		"❌ Снова - не вспомнил, слово вернётся сразу\n" +
		"➖ Трудно - вспомнил с трудом\n" +
		"➕ Хорошо - вспомнил\n" +
		"✅ Легко - вспомнил без усилий"

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "⬅️ Главное меню", CallbackData: "main_menu"}},
	})
	b.send(msg)
}

func (b *Bot) handleCancelCommand(message *tgbotapi.Message) {
	userID := message.From.ID
	b.setUserState(userID, "")
	if b.locks.Release(userID) {
		log.Printf("released operation lock for user %d on cancel", userID)
	}
	msg := tgbotapi.NewMessage(message.Chat.ID, "Действие отменено.")
	msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
	b.send(msg)
}

// startSession selects a batch for the requested queue and installs a new
// guided session. A previous session, if any, is retired by the registry.
func (b *Bot) startSession(userID, chatID int64, kind string) {
	user, err := b.users.GetOrCreate(userID, "", "", "")
	if err != nil {
		log.Printf("Error loading user %d: %v", userID, err)
		b.reply(chatID, "❌ Не удалось загрузить профиль.")
		return
	}

	limit := user.CardsPerSession
	if limit <= 0 {
		limit = b.config.DefaultCardsPerSession
	}

	var items []models.StudyItem
	switch kind {
	case session.KindNew:
		items, err = b.store.SelectNew(userID, limit, false)
	case session.KindDifficult:
		items, err = b.store.SelectDifficult(userID, limit, false)
	default:
		items, err = b.store.SelectDue(userID, limit, true)
	}
	if err != nil {
		log.Printf("Error selecting %s batch for user %d: %v", kind, userID, err)
		b.reply(chatID, "❌ Не удалось подобрать слова. Попробуйте ещё раз.")
		return
	}

	if len(items) == 0 {
		text := map[string]string{
			session.KindDue:       "🎉 На сейчас всё повторено! Возвращайтесь позже или учите новые слова.",
			session.KindNew:       "Новых слов нет. Добавьте слова через ➕ или /add.",
			session.KindDifficult: "Трудных слов нет. Отличная работа!",
		}[kind]
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
		b.send(msg)
		return
	}

	engine := b.sessions.Start(userID, items, kind)
	b.sendCard(chatID, engine)
}

// sendCard presents the question side of the engine's current card
func (b *Bot) sendCard(chatID int64, engine *session.Engine) {
	item := engine.Current()
	if item == nil {
		return
	}
	pos, total := engine.Position()

	text := fmt.Sprintf("Карточка %d из %d\n\n🇩🇪 %s", pos, total, cardFront(item))

	token := session.Token{
		Action:    session.ActionShowAnswer,
		WordID:    item.WordID,
		Index:     pos - 1,
		SessionID: engine.ID,
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "💡 Показать ответ", CallbackData: token.Encode()}},
		{{Text: "⏹ Завершить сессию", CallbackData: session.Token{
			Action:    session.ActionFinishSession,
			SessionID: engine.ID,
		}.Encode()}},
	})
	b.send(msg)
}

// sendAnswer shows the answer side with rating buttons
func (b *Bot) sendAnswer(chatID int64, engine *session.Engine, item *models.StudyItem) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🇩🇪 %s\n\n🇷🇺 %s", cardFront(item), item.Translation)
	if item.Example != "" {
		fmt.Fprintf(&sb, "\n\n💬 %s", item.Example)
	}
	if item.AdditionalForms != "" {
		fmt.Fprintf(&sb, "\n📝 %s", item.AdditionalForms)
	}
	sb.WriteString("\n\nНасколько хорошо вы вспомнили слово?")

	ratings := []struct {
		label  string
		rating int
	}{
		{"❌ Снова", 1},
		{"➖ Трудно", 2},
		{"➕ Хорошо", 3},
		{"✅ Легко", 4},
	}
	var row []MenuButton
	for _, r := range ratings {
		token := session.Token{
			Action:    session.ActionRateWord,
			WordID:    item.WordID,
			Rating:    r.rating,
			SessionID: engine.ID,
		}
		row = append(row, MenuButton{Text: r.label, CallbackData: token.Encode()})
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = createKeyboard([][]MenuButton{row})
	b.send(msg)
}

// cardFront renders the question side of a card: article plus lemma, with
// the part of speech for non-nouns.
func cardFront(item *models.StudyItem) string {
	if item.Article != "" {
		return fmt.Sprintf("%s %s", item.Article, item.Lemma)
	}
	if item.PartOfSpeech != "" && item.PartOfSpeech != "noun" {
		return fmt.Sprintf("%s (%s)", item.Lemma, item.PartOfSpeech)
	}
	return item.Lemma
}

func (b *Bot) sendSummary(chatID int64, summary *session.Summary) {
	text := fmt.Sprintf("🏁 Сессия завершена!\n\nОтвечено: %d из %d\nПравильно: %d (%.0f%%)\nВремя: %s",
		summary.Answered, summary.Total, summary.Correct, summary.Accuracy(),
		summary.Elapsed.Round(time.Second))
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
	b.send(msg)
}

func (b *Bot) sendSessionExpired(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "⌛ Сессия истекла или была заменена. Начните новую.")
	msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
	b.send(msg)
}

// handleCallbackQuery routes inline-button presses: session transition
// tokens first, then the static menu callbacks.
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID

	token := session.DecodeToken(query.Data)
	if token.Action != "" {
		b.handleSessionToken(query, token)
		return
	}

	b.answerCallback(query.ID, "")

	switch {
	case query.Data == "main_menu":
		msg := tgbotapi.NewMessage(chatID, "Главное меню:")
		msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
		b.send(msg)
	case query.Data == "menu_study":
		b.startSession(userID, chatID, session.KindDue)
	case query.Data == "menu_new":
		b.startSession(userID, chatID, session.KindNew)
	case query.Data == "menu_difficult":
		b.startSession(userID, chatID, session.KindDifficult)
	case query.Data == "menu_stats":
		b.sendStats(userID, chatID)
	case query.Data == "menu_add":
		b.promptWordList(userID, chatID)
	case query.Data == "menu_settings":
		b.sendSettings(userID, chatID)
	case query.Data == "settings_cards":
		b.setUserState(userID, stateAwaitingCardsCount)
		b.reply(chatID, fmt.Sprintf("Сколько карточек показывать за сессию? (от 1 до %d)", b.config.MaxCardsPerSession))
	case query.Data == "settings_toggle_reminder":
		b.toggleReminder(userID, chatID)
	case strings.HasPrefix(query.Data, "settings_hour_"):
		b.saveReminderHour(userID, chatID, strings.TrimPrefix(query.Data, "settings_hour_"))
	case query.Data == "settings_pick_hour":
		b.sendHourPicker(chatID)
	default:
		log.Printf("Unknown callback data from user %d: %q", userID, query.Data)
	}
}

// handleSessionToken applies a state-transition token to the user's active
// session. A missing or mismatched session is reported as expired.
func (b *Bot) handleSessionToken(query *tgbotapi.CallbackQuery, token session.Token) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID

	engine := b.sessions.Get(userID)
	if engine == nil || !matchesSession(engine.ID, token.SessionID) {
		b.answerCallback(query.ID, "Сессия истекла")
		b.sendSessionExpired(chatID)
		return
	}

	switch token.Action {
	case session.ActionShowAnswer:
		item, ok := engine.Reveal()
		if !ok {
			b.answerCallback(query.ID, "Ответ уже показан")
			return
		}
		b.answerCallback(query.ID, "")
		b.sendAnswer(chatID, engine, item)

	case session.ActionRateWord:
		outcome, ok := engine.Rate(token.Rating)
		if !ok {
			b.answerCallback(query.ID, "Сначала откройте ответ")
			return
		}
		if !outcome.Recorded {
			b.answerCallback(query.ID, "")
			b.reply(chatID, "❌ Не удалось сохранить оценку. Нажмите кнопку ещё раз.")
			return
		}
		b.answerCallback(query.ID, "Сохранено")
		if outcome.Finished {
			b.sessions.Remove(userID, engine)
			b.sendSummary(chatID, outcome.Summary)
			return
		}
		b.sendCard(chatID, engine)

	case session.ActionFinishSession:
		summary := engine.Summary()
		b.sessions.Remove(userID, engine)
		b.answerCallback(query.ID, "")
		b.sendSummary(chatID, &summary)

	default:
		b.answerCallback(query.ID, "")
		log.Printf("Unknown session action from user %d: %q", userID, token.Action)
	}
}

// matchesSession compares an engine identifier against the possibly
// truncated identifier carried in a token.
func matchesSession(engineID, tokenID string) bool {
	if tokenID == "" {
		return true
	}
	return strings.HasSuffix(engineID, tokenID)
}

// handleWordsCommand lists the learner's vocabulary with scheduling state
func (b *Bot) handleWordsCommand(message *tgbotapi.Message) {
	items, err := b.words.GetWordsByUser(message.From.ID)
	if err != nil {
		log.Printf("Error listing words for user %d: %v", message.From.ID, err)
		b.reply(message.Chat.ID, "❌ Не удалось получить список слов.")
		return
	}
	if len(items) == 0 {
		b.reply(message.Chat.ID, "Словарь пуст. Добавьте слова через ➕ или /add.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 Ваши слова (%d):\n\n", len(items))
	for i, item := range items {
		if i == 50 {
			fmt.Fprintf(&sb, "... и ещё %d", len(items)-i)
			break
		}
		status := "🆕"
		if item.Repetitions > 0 {
			status = fmt.Sprintf("интервал %d дн.", item.IntervalDays)
			if item.LastReviewed.Valid {
				days := int(time.Since(item.LastReviewed.Time).Hours() / 24)
				retention := b.srs.PredictRetention(days, item.EasinessFactor)
				status += fmt.Sprintf(", в памяти ~%.0f%%", retention*100)
			}
		}
		fmt.Fprintf(&sb, "%s - %s (%s)\n", cardFront(&item), item.Translation, status)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, sb.String())
	msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
	b.send(msg)
}

func (b *Bot) handleStatsCommand(message *tgbotapi.Message) {
	b.sendStats(message.From.ID, message.Chat.ID)
}

func (b *Bot) sendStats(userID, chatID int64) {
	learner, err := b.stats.GetLearnerStats(userID)
	if err != nil {
		log.Printf("Error getting learner stats for user %d: %v", userID, err)
		b.reply(chatID, "❌ Не удалось получить статистику.")
		return
	}
	perf, err := b.stats.GetPerformanceStats(userID, 7)
	if err != nil {
		log.Printf("Error getting performance stats for user %d: %v", userID, err)
		b.reply(chatID, "❌ Не удалось получить статистику.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 Ваша статистика\n\n")
	fmt.Fprintf(&sb, "📚 Всего слов: %d\n", learner.TotalWords)
	fmt.Fprintf(&sb, "⏰ К повторению: %d\n", learner.DueWords)
	fmt.Fprintf(&sb, "🆕 Новых: %d\n", learner.NewWords)
	fmt.Fprintf(&sb, "🔥 Трудных: %d\n", learner.DifficultWords)
	if learner.TotalWords > learner.NewWords {
		fmt.Fprintf(&sb, "📈 Средняя лёгкость: %.2f\n", learner.AvgEasiness)
	}
	fmt.Fprintf(&sb, "\n🗓 За последние 7 дней:\n")
	fmt.Fprintf(&sb, "Повторений: %d\n", perf.TotalReviews)
	if perf.TotalReviews > 0 {
		fmt.Fprintf(&sb, "Точность: %.0f%%\n", perf.AccuracyPercent)
		fmt.Fprintf(&sb, "Средняя оценка: %.1f\n", perf.AvgRating)
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
	b.send(msg)
}

func (b *Bot) handleSettingsCommand(message *tgbotapi.Message) {
	b.sendSettings(message.From.ID, message.Chat.ID)
}

func (b *Bot) sendSettings(userID, chatID int64) {
	user, err := b.users.GetOrCreate(userID, "", "", "")
	if err != nil {
		log.Printf("Error loading user %d: %v", userID, err)
		b.reply(chatID, "❌ Не удалось загрузить настройки.")
		return
	}

	reminderState := "выключены"
	if user.ReminderEnabled {
		reminderState = fmt.Sprintf("включены, в %d:00", user.ReminderHour)
	}
	text := fmt.Sprintf("⚙️ Настройки\n\nКарточек за сессию: %d\nНапоминания: %s",
		user.CardsPerSession, reminderState)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "🔢 Карточек за сессию", CallbackData: "settings_cards"}},
		{{Text: "🔔 Вкл/выкл напоминания", CallbackData: "settings_toggle_reminder"}},
		{{Text: "🕘 Час напоминания", CallbackData: "settings_pick_hour"}},
		{{Text: "⬅️ Главное меню", CallbackData: "main_menu"}},
	})
	b.send(msg)
}

func (b *Bot) toggleReminder(userID, chatID int64) {
	user, err := b.users.GetOrCreate(userID, "", "", "")
	if err != nil {
		log.Printf("Error loading user %d: %v", userID, err)
		return
	}
	user.ReminderEnabled = !user.ReminderEnabled
	if err := b.users.UpdateSettings(user); err != nil {
		log.Printf("Error updating settings for user %d: %v", userID, err)
		b.reply(chatID, "❌ Не удалось сохранить настройки.")
		return
	}
	b.sendSettings(userID, chatID)
}

func (b *Bot) sendHourPicker(chatID int64) {
	var rows [][]MenuButton
	var row []MenuButton
	for hour := 6; hour <= 23; hour++ {
		row = append(row, MenuButton{
			Text:         fmt.Sprintf("%d:00", hour),
			CallbackData: fmt.Sprintf("settings_hour_%d", hour),
		})
		if len(row) == 6 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	msg := tgbotapi.NewMessage(chatID, "В котором часу присылать напоминание?")
	msg.ReplyMarkup = createKeyboard(rows)
	b.send(msg)
}

func (b *Bot) saveReminderHour(userID, chatID int64, hourStr string) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		b.reply(chatID, "❌ Некорректный час.")
		return
	}
	user, err := b.users.GetOrCreate(userID, "", "", "")
	if err != nil {
		log.Printf("Error loading user %d: %v", userID, err)
		return
	}
	user.ReminderHour = hour
	user.ReminderEnabled = true
	if err := b.users.UpdateSettings(user); err != nil {
		log.Printf("Error updating settings for user %d: %v", userID, err)
		b.reply(chatID, "❌ Не удалось сохранить настройки.")
		return
	}
	b.sendSettings(userID, chatID)
}

func (b *Bot) saveCardsPerSession(message *tgbotapi.Message, count int) {
	user, err := b.users.GetOrCreate(message.From.ID, "", "", "")
	if err != nil {
		log.Printf("Error loading user %d: %v", message.From.ID, err)
		return
	}
	user.CardsPerSession = count
	if err := b.users.UpdateSettings(user); err != nil {
		log.Printf("Error updating settings for user %d: %v", message.From.ID, err)
		b.reply(message.Chat.ID, "❌ Не удалось сохранить настройки.")
		return
	}
	b.reply(message.Chat.ID, fmt.Sprintf("✅ Теперь за сессию будет %d %s.", count, pluralCards(count)))
}

func pluralCards(count int) string {
	n := count % 100
	if n >= 11 && n <= 14 {
		return "карточек"
	}
	switch n % 10 {
	case 1:
		return "карточка"
	case 2, 3, 4:
		return "карточки"
	}
	return "карточек"
}

func (b *Bot) handleAddCommand(message *tgbotapi.Message) {
	b.promptWordList(message.From.ID, message.Chat.ID)
}

func (b *Bot) promptWordList(userID, chatID int64) {
	b.setUserState(userID, stateAwaitingWordList)
	text := "📝 Отправьте список слов, по одному на строку, в формате:\n\n" +
		"слово - перевод\n\n" +
		"Например:\n" +
		"der Hund - собака\n" +
		"laufen - бежать\n\n" +
		"/cancel для отмены."
	b.reply(chatID, text)
}

// processWordList parses a plain-text word list, filters forms the learner
// already tracks (including conjugated forms of known verbs) and stores the
// rest.
func (b *Bot) processWordList(message *tgbotapi.Message) {
	userID := message.From.ID

	if !b.locks.TryAcquire(userID, opAddWords) {
		b.reply(message.Chat.ID, "⏳ Другая операция уже выполняется. Попробуйте чуть позже.")
		return
	}
	defer b.locks.Release(userID)

	words, surfaceForms := parseWordList(message.Text)
	if len(words) == 0 {
		b.reply(message.Chat.ID, "Не удалось разобрать список. Формат: слово - перевод, по одному на строку.")
		return
	}

	existing, err := b.store.CheckExisting(userID, surfaceForms)
	if err != nil {
		log.Printf("Error checking existing words for user %d: %v", userID, err)
		b.reply(message.Chat.ID, "❌ Не удалось сохранить слова.")
		return
	}

	var fresh []models.Word
	var skipped []string
	for _, w := range words {
		if existing[w.Lemma] {
			skipped = append(skipped, w.Lemma)
			continue
		}
		fresh = append(fresh, w)
	}

	added, err := b.words.AddWordsToUser(userID, fresh)
	if err != nil {
		log.Printf("Error adding words for user %d: %v", userID, err)
		b.reply(message.Chat.ID, "❌ Не удалось сохранить слова.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Добавлено %d %s.", added, pluralWords(added))
	if len(skipped) > 0 {
		fmt.Fprintf(&sb, "\nУже изучаются: %s", strings.Join(skipped, ", "))
	}
	if added > 0 {
		sb.WriteString("\n\nНачните с них через 🆕 Новые слова.")
	}
	msg := tgbotapi.NewMessage(message.Chat.ID, sb.String())
	msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
	b.send(msg)
}

// parseWordList splits "lemma - translation" lines into words. The German
// article, when present, is split off the lemma.
func parseWordList(text string) ([]models.Word, []string) {
	var words []models.Word
	var forms []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " - ", 2)
		if len(parts) != 2 {
			parts = strings.SplitN(line, "\t", 2)
		}
		if len(parts) != 2 {
			continue
		}
		lemma := strings.TrimSpace(parts[0])
		translation := strings.TrimSpace(parts[1])
		if lemma == "" || translation == "" {
			continue
		}

		word := models.Word{Lemma: lemma, Translation: translation}
		lower := strings.ToLower(lemma)
		for _, article := range []string{"der ", "die ", "das "} {
			if strings.HasPrefix(lower, article) {
				word.Article = strings.TrimSpace(lemma[:len(article)])
				word.Lemma = strings.TrimSpace(lemma[len(article):])
				word.PartOfSpeech = "noun"
				break
			}
		}

		words = append(words, word)
		forms = append(forms, word.Lemma)
	}
	return words, forms
}

// handleImportCommand starts a bulk import. The operation lock keeps a
// second concurrent import for the same user from starting.
func (b *Bot) handleImportCommand(message *tgbotapi.Message) {
	userID := message.From.ID

	if !b.locks.TryAcquire(userID, opImport) {
		if info, ok := b.locks.GetInfo(userID); ok {
			b.reply(message.Chat.ID, fmt.Sprintf("⏳ Операция %q уже выполняется. Дождитесь её окончания или /cancel.", info.Operation))
		} else {
			b.reply(message.Chat.ID, "⏳ Другая операция уже выполняется.")
		}
		return
	}

	b.setUserState(userID, stateAwaitingImportFile)
	b.reply(message.Chat.ID, "📥 Отправьте файл .xlsx или .csv со словами.\n\nКолонки: слово, перевод, пример (необязательно).\n/cancel для отмены.")
}

// handleExportCommand sends the learner's vocabulary as an xlsx document
func (b *Bot) handleExportCommand(message *tgbotapi.Message) {
	userID := message.From.ID

	items, err := b.words.GetWordsByUser(userID)
	if err != nil {
		log.Printf("Error listing words for export, user %d: %v", userID, err)
		b.reply(message.Chat.ID, "❌ Не удалось выгрузить словарь.")
		return
	}
	if len(items) == 0 {
		b.reply(message.Chat.ID, "Словарь пуст, выгружать нечего.")
		return
	}

	buf, err := excel.Export(items)
	if err != nil {
		log.Printf("Error exporting words for user %d: %v", userID, err)
		b.reply(message.Chat.ID, "❌ Не удалось выгрузить словарь.")
		return
	}

	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FileBytes{
		Name:  "vocabulary.xlsx",
		Bytes: buf.Bytes(),
	})
	b.send(doc)
}

// processImportFile downloads the uploaded document and imports its words
func (b *Bot) processImportFile(message *tgbotapi.Message) {
	userID := message.From.ID
	defer func() {
		b.setUserState(userID, "")
		b.locks.Release(userID)
	}()

	url, err := b.api.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		log.Printf("Error getting file URL for user %d: %v", userID, err)
		b.reply(message.Chat.ID, "❌ Не удалось скачать файл.")
		return
	}

	resp, err := http.Get(url)
	if err != nil {
		log.Printf("Error downloading file for user %d: %v", userID, err)
		b.reply(message.Chat.ID, "❌ Не удалось скачать файл.")
		return
	}
	defer resp.Body.Close()

	words, err := b.importer.Parse(resp.Body, message.Document.FileName)
	if err != nil {
		log.Printf("Error parsing import file for user %d: %v", userID, err)
		b.reply(message.Chat.ID, fmt.Sprintf("❌ Не удалось разобрать файл: %v", err))
		return
	}

	added, err := b.words.AddWordsToUser(userID, words)
	if err != nil {
		log.Printf("Error importing words for user %d: %v", userID, err)
		b.reply(message.Chat.ID, "❌ Не удалось сохранить слова.")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID,
		fmt.Sprintf("✅ Импорт завершён: добавлено %d %s из %d.", added, pluralWords(added), len(words)))
	msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
	b.send(msg)
}
