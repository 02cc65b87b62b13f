package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/PoluyanbIch/TimedQuizBot/internal/config"
	"github.com/PoluyanbIch/TimedQuizBot/internal/service"
)

// sender - часть BotAPI, через которую бот отправляет сообщения
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api    *tgbotapi.BotAPI
	out    sender
	chatID int64

	questions    []service.QuizQuestion
	totalSeconds int

	session       *service.QuizSession
	runID         string
	questionMsgID int

	clock *cron.Cron
	ticks chan struct{}
	// тики, накопившиеся пока цикл был занят отправкой сообщений
	pending atomic.Int64
}

func NewBot(cfg config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Debug

	b := newBot(api, cfg.ChatID)
	b.api = api
	return b, nil
}

func newBot(out sender, chatID int64) *Bot {
	return &Bot{
		out:          out,
		chatID:       chatID,
		questions:    service.DefaultQuizQuestions(),
		totalSeconds: service.DefaultTotalSeconds,
		ticks:        make(chan struct{}, 1),
	}
}

// Start обрабатывает обновления и тики таймера в одной горутине,
// поэтому сессия никогда не изменяется конкурентно.
func (b *Bot) Start(ctx context.Context) {
	log.Printf("Authorised on account: %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	defer b.stopClock()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		case <-b.ticks:
			b.handlePendingTicks()
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		chatID := update.Message.Chat.ID
		if chatID != b.chatID {
			log.Printf("Ignoring message from chat %d", chatID)
			return
		}
		switch update.Message.Command() {
		case "start":
			b.sendMainMenu()
		case "quiz":
			b.startQuiz()
		case "time":
			b.handleTime()
		case "info":
			b.handleInfo()
		default:
			b.sendMessage("Unknown command")
		}
	}
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat.ID != b.chatID {
		return
	}
	data := callback.Data

	callbackConfig := tgbotapi.NewCallback(callback.ID, "")
	if _, err := b.out.Request(callbackConfig); err != nil {
		log.Printf("Error answering callback: %v", err)
	}

	switch {
	case data == "start_quiz":
		b.startQuiz()
	case strings.HasPrefix(data, "quiz_"):
		b.handleQuizAnswer(data)
	case data == "exit_quiz":
		b.exitQuiz()
	case data == "back_to_menu":
		b.sendMainMenu()
	case data == "info":
		b.handleInfo()
	default:
		b.sendMessage("Unknown command")
	}
}

func (b *Bot) sendMainMenu() {
	msg := tgbotapi.NewMessage(b.chatID, "📋 *Main menu*")
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌟 Start timed quiz", "start_quiz"),
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ Info", "info"),
		),
	)
	if _, err := b.out.Send(msg); err != nil {
		log.Printf("Error sending start message: %v", err)
	}
}

func (b *Bot) sendMessage(text string) {
	msg := tgbotapi.NewMessage(b.chatID, text)
	if _, err := b.out.Send(msg); err != nil {
		log.Printf("Error sending msg: %v", err)
	}
}

func (b *Bot) startQuiz() {
	if b.session != nil && b.session.Phase() == service.PhaseInProgress {
		log.Printf("Quiz %s replaced by a new one", b.runID)
		b.stopClock()
		b.session.Finish()
	}

	session, err := service.Start(b.questions, b.totalSeconds)
	if err != nil {
		log.Printf("Error starting quiz: %v", err)
		b.sendMessage("❌ Quiz could not be started")
		return
	}
	b.session = session
	b.runID = uuid.NewString()
	log.Printf("🎯 Quiz %s started: %d questions, %s", b.runID, session.TotalQuestions(), session.FormatRemainingTime())

	b.sendQuestion()
	b.startClock()
}

func (b *Bot) questionView() (string, tgbotapi.InlineKeyboardMarkup, error) {
	q, err := b.session.CurrentQuestion()
	if err != nil {
		return "", tgbotapi.InlineKeyboardMarkup{}, err
	}
	index := b.session.CurrentIndex()

	text := fmt.Sprintf("Category: %s\n\n%d. %s\n\nScore: %d\n⏱ Time left: %s",
		q.Category, index+1, q.Text, b.session.Score(), b.session.FormatRemainingTime())

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, option := range q.Options {
		callbackData := fmt.Sprintf("quiz_%s_%d_%d", b.runToken(), index, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, callbackData),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🚪 Exit quiz", "exit_quiz"),
	))
	return text, tgbotapi.NewInlineKeyboardMarkup(rows...), nil
}

func (b *Bot) sendQuestion() {
	text, keyboard, err := b.questionView()
	if err != nil {
		log.Printf("Error rendering question: %v", err)
		return
	}
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ReplyMarkup = keyboard

	sent, err := b.out.Send(msg)
	if err != nil {
		log.Printf("Error sending question: %v", err)
		return
	}
	b.questionMsgID = sent.MessageID
}

func (b *Bot) handleQuizAnswer(data string) {
	parts := strings.Split(data, "_")
	if len(parts) != 4 {
		log.Printf("Malformed answer callback %q", data)
		return
	}
	questionIndex, err1 := strconv.Atoi(parts[2])
	answerIndex, err2 := strconv.Atoi(parts[3])
	if err1 != nil || err2 != nil {
		log.Printf("Malformed answer callback %q", data)
		return
	}

	if b.session == nil {
		log.Printf("Answer %q without a quiz", data)
		return
	}
	// Клавиатуры прошлых викторин остаются в чате
	if parts[1] != b.runToken() {
		log.Printf("Quiz %s: answer %q belongs to another quiz", b.runID, data)
		return
	}
	// Кнопки уже отвеченных вопросов
	if b.session.Phase() == service.PhaseInProgress && questionIndex != b.session.CurrentIndex() {
		log.Printf("Quiz %s: stale answer for question %d, current is %d", b.runID, questionIndex+1, b.session.CurrentIndex()+1)
		return
	}

	_, events, err := b.session.SubmitAnswer(answerIndex)
	if err != nil {
		log.Printf("Quiz %s: answer rejected: %v", b.runID, err)
		return
	}
	b.render(events)
}

func (b *Bot) exitQuiz() {
	if b.session == nil || b.session.Phase() == service.PhaseFinished {
		b.sendMainMenu()
		return
	}
	b.sendMessage("🚪 Quiz stopped.")
	b.render(b.session.Finish())
}

// runToken - короткий идентификатор викторины для callback data (лимит 64 байта)
func (b *Bot) runToken() string {
	if len(b.runID) < 8 {
		return b.runID
	}
	return b.runID[:8]
}

func (b *Bot) handleInfo() {
	msg := fmt.Sprintf("⏱ Timed quiz: %d questions, %s on the clock.\n\n"+
		"/quiz - start a new quiz\n"+
		"/time - time left in the current quiz\n"+
		"/start - main menu", len(b.questions), service.FormatTime(b.totalSeconds))

	infoMsg := tgbotapi.NewMessage(b.chatID, msg)
	infoMsg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "back_to_menu"),
		),
	)
	if _, err := b.out.Send(infoMsg); err != nil {
		log.Printf("Error sending info: %v", err)
	}
}

func (b *Bot) handleTime() {
	if b.session == nil || b.session.Phase() == service.PhaseFinished {
		b.sendMessage("No quiz is running. Send /quiz to start one.")
		return
	}
	b.sendMessage("⏱ Time left: " + b.session.FormatRemainingTime())
}

// handlePendingTicks отрабатывает все секунды, прошедшие с прошлого раза
func (b *Bot) handlePendingTicks() {
	for n := b.pending.Swap(0); n > 0; n-- {
		b.handleTick()
	}
}

func (b *Bot) handleTick() {
	if b.session == nil {
		return
	}
	events, err := b.session.Tick()
	if err != nil {
		log.Printf("Quiz %s: tick ignored: %v", b.runID, err)
		return
	}
	b.render(events)
}

func (b *Bot) render(events []service.Event) {
	for _, e := range events {
		switch e.Kind {
		case service.EventAnswerResult:
			if e.Result.Correct {
				b.sendMessage("✅ Correct!")
			} else {
				b.sendMessage("❌ Wrong! Correct: " + e.Result.CorrectOptionText)
			}
		case service.EventQuestionChanged:
			b.sendQuestion()
		case service.EventTimeUpdated:
			if shouldShowTime(e.TimeRemaining) {
				b.updateTimer()
			}
		case service.EventTimeExpired:
			b.sendMessage("⏰ Time's up!")
		case service.EventSessionComplete:
			b.stopClock()
			b.finishQuiz(e.Summary)
		}
	}
}

// shouldShowTime ограничивает число правок сообщения: Telegram
// не любит редактирование каждую секунду.
func shouldShowTime(remaining int) bool {
	return remaining > 0 && (remaining%30 == 0 || remaining <= 10)
}

func (b *Bot) updateTimer() {
	if b.questionMsgID == 0 {
		return
	}
	text, keyboard, err := b.questionView()
	if err != nil {
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(b.chatID, b.questionMsgID, text, keyboard)
	if _, err := b.out.Send(edit); err != nil {
		log.Printf("Error updating timer: %v", err)
	}
}

func (b *Bot) finishQuiz(summary service.Summary) {
	log.Printf("🏁 Quiz %s finished: %d/%d (time expired: %t)", b.runID, summary.Score, summary.Total, summary.TimeExpired)
	b.questionMsgID = 0

	finalMsg := tgbotapi.NewMessage(b.chatID, service.FormatReview(summary))
	finalMsg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Play again", "start_quiz"),
			tgbotapi.NewInlineKeyboardButtonData("🔙 Menu", "back_to_menu"),
		),
	)
	if _, err := b.out.Send(finalMsg); err != nil {
		log.Printf("Error sending final message: %v", err)
	}
}

// startClock раз в секунду кладет тик в канал. Сам тик обрабатывается в Start.
func (b *Bot) startClock() {
	b.clock = cron.New()
	_, err := b.clock.AddFunc("@every 1s", func() {
		b.pending.Add(1)
		select {
		case b.ticks <- struct{}{}:
		default:
		}
	})
	if err != nil {
		log.Printf("Error scheduling quiz clock: %v", err)
		b.clock = nil
		return
	}
	b.clock.Start()
}

func (b *Bot) stopClock() {
	if b.clock == nil {
		return
	}
	<-b.clock.Stop().Done()
	b.clock = nil
	// Тики, пришедшие до остановки, относятся к старой сессии
	b.pending.Store(0)
	select {
	case <-b.ticks:
	default:
	}
}
