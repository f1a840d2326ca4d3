package bot

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/lernbot/internal/database"
	"github.com/example/lernbot/internal/excel"
	"github.com/example/lernbot/internal/lock"
	"github.com/example/lernbot/internal/scheduler"
	"github.com/example/lernbot/internal/session"
	"github.com/example/lernbot/internal/spaced_repetition"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Bot represents the Telegram bot application
type Bot struct {
	api    *tgbotapi.BotAPI
	token  string
	config *BotConfig

	users    *database.UserRepository
	words    *database.WordRepository
	store    *database.ProgressStore
	recorder *database.ReviewRecorder
	stats    *database.StatsRepository
	srs      *spaced_repetition.SM2

	sessions *session.Registry
	locks    *lock.Registry
	importer *excel.Importer

	schedulerEnabled bool
	maintenance      *scheduler.Scheduler

	adminUserIDs map[int64]bool

	// Conversation state per user, guarded by its own mutex because every
	// update is handled in its own goroutine.
	mu         sync.Mutex
	userStates map[int64]string
}

// New creates a new bot instance wired to the given database connection
func New(db *database.DB) (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	srs := spaced_repetition.NewSM2()
	recorder := database.NewReviewRecorder(db, srs)

	bot := &Bot{
		token:            token,
		config:           DefaultConfig(),
		users:            database.NewUserRepository(db),
		words:            database.NewWordRepository(db),
		store:            database.NewProgressStore(db),
		recorder:         recorder,
		stats:            database.NewStatsRepository(db),
		srs:              srs,
		locks:            lock.NewRegistry(lock.DefaultTTL),
		importer:         excel.NewImporter(),
		schedulerEnabled: os.Getenv("ENABLE_SCHEDULER") != "false",
		adminUserIDs:     make(map[int64]bool),
		userStates:       make(map[int64]string),
	}
	bot.sessions = session.NewRegistry(recorder, bot)

	adminIDs := os.Getenv("ADMIN_USER_IDS")
	if adminIDs != "" {
		for _, idStr := range strings.Split(adminIDs, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				log.Printf("Warning: Invalid admin user ID: %s", idStr)
				continue
			}
			bot.adminUserIDs[id] = true
		}
	}

	return bot, nil
}

// Start initializes the Telegram API client and runs the update loop
func (b *Bot) Start() error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %v", err)
	}

	b.api = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	if b.schedulerEnabled {
		b.maintenance = scheduler.New(scheduler.DefaultConfig(),
			b.users, b.stats, b.sessions, b.locks, b)
		b.maintenance.Start()
		log.Println("Maintenance scheduler started")
	}

	for update := range updates {
		go b.handleUpdate(update)
	}

	return nil
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	if b.maintenance != nil {
		b.maintenance.Stop()
	}
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
}

// SendReminder implements the scheduler.Notifier interface
func (b *Bot) SendReminder(userID int64, dueCount int) error {
	text := fmt.Sprintf("⏰ У вас %d %s для повторения!\n\nНажмите /study, чтобы начать.",
		dueCount, pluralWords(dueCount))
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "📖 Начать повторение", CallbackData: "menu_study"}},
	})
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending reminder to user %d: %v", userID, err)
		return err
	}
	return nil
}

// SessionInterrupted implements the session.Notifier interface. It delivers
// the partial summary of a session that was replaced by a newer one.
func (b *Bot) SessionInterrupted(userID int64, summary session.Summary) {
	if summary.Answered == 0 {
		return
	}
	text := fmt.Sprintf("⚠️ Предыдущая сессия прервана.\n\nОтвечено: %d из %d\nПравильно: %d (%.0f%%)",
		summary.Answered, summary.Total, summary.Correct, summary.Accuracy())
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error notifying user %d about interrupted session: %v", userID, err)
	}
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

func (b *Bot) setUserState(userID int64, state string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if state == "" {
		delete(b.userStates, userID)
		return
	}
	b.userStates[userID] = state
}

func (b *Bot) userState(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.userStates[userID]
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		if update.Message.IsCommand() {
			b.handleCommand(update.Message)
		} else {
			b.handleMessage(update.Message)
		}
	} else if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStartCommand(message)
	case "help":
		b.handleHelpCommand(message)
	case "study":
		b.startSession(message.From.ID, message.Chat.ID, session.KindDue)
	case "new":
		b.startSession(message.From.ID, message.Chat.ID, session.KindNew)
	case "difficult":
		b.startSession(message.From.ID, message.Chat.ID, session.KindDifficult)
	case "add":
		b.handleAddCommand(message)
	case "words":
		b.handleWordsCommand(message)
	case "stats":
		b.handleStatsCommand(message)
	case "settings":
		b.handleSettingsCommand(message)
	case "cancel":
		b.handleCancelCommand(message)
	case "import":
		if b.isAdmin(message.From.ID) {
			b.handleImportCommand(message)
		} else {
			b.reply(message.Chat.ID, "Эта команда доступна только администраторам.")
		}
	case "export":
		b.handleExportCommand(message)
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Неизвестная команда. Используйте /help для списка команд.")
		msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
		b.send(msg)
	}
}

// handleMessage handles plain-text messages and document uploads according
// to the user's conversation state.
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	userID := message.From.ID

	switch b.userState(userID) {
	case stateAwaitingWordList:
		b.setUserState(userID, "")
		b.processWordList(message)
	case stateAwaitingImportFile:
		if message.Document != nil {
			b.processImportFile(message)
		} else {
			b.reply(message.Chat.ID, "Пожалуйста, отправьте файл .xlsx или .csv, либо /cancel для отмены.")
		}
	case stateAwaitingCardsCount:
		count, err := strconv.Atoi(strings.TrimSpace(message.Text))
		if err != nil || count < 1 || count > b.config.MaxCardsPerSession {
			b.reply(message.Chat.ID, fmt.Sprintf("Пожалуйста, введите число от 1 до %d.", b.config.MaxCardsPerSession))
			return
		}
		b.setUserState(userID, "")
		b.saveCardsPerSession(message, count)
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Я вас не понял. Используйте /help для списка команд.")
		msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
		b.send(msg)
	}
}

func (b *Bot) mainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "📖 Повторение", CallbackData: "menu_study"},
			{Text: "🆕 Новые слова", CallbackData: "menu_new"},
		},
		{
			{Text: "🔥 Трудные слова", CallbackData: "menu_difficult"},
			{Text: "📊 Статистика", CallbackData: "menu_stats"},
		},
		{
			{Text: "➕ Добавить слова", CallbackData: "menu_add"},
			{Text: "⚙️ Настройки", CallbackData: "menu_settings"},
		},
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) answerCallback(queryID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		log.Printf("Error answering callback query: %v", err)
	}
}

// pluralWords picks the Russian plural form for a word count
func pluralWords(count int) string {
	n := count % 100
	if n >= 11 && n <= 14 {
		return "слов"
	}
	switch n % 10 {
	case 1:
		return "слово"
	case 2, 3, 4:
		return "слова"
	}
	return "слов"
}
