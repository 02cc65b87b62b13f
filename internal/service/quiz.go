package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration   = errors.New("invalid quiz configuration")
	ErrInvalidAnswerIndex     = errors.New("invalid answer index")
	ErrSessionAlreadyFinished = errors.New("quiz session already finished")
	ErrNoCurrentQuestion      = errors.New("no current question")
)

type QuizQuestion struct {
	Category     string
	Text         string
	Options      []string
	CorrectIndex int
}

// CorrectOption возвращает текст правильного варианта
func (q QuizQuestion) CorrectOption() string {
	return q.Options[q.CorrectIndex]
}

type AnswerRecord struct {
	QuestionIndex     int
	QuestionText      string
	ChosenOptionText  string
	CorrectOptionText string
}

func (r AnswerRecord) String() string {
	return fmt.Sprintf("Q%d: %s | Your answer: %s | Correct: %s",
		r.QuestionIndex, r.QuestionText, r.ChosenOptionText, r.CorrectOptionText)
}

type Phase int

const (
	PhaseInProgress Phase = iota
	PhaseFinished
)

func (p Phase) String() string {
	if p == PhaseFinished {
		return "finished"
	}
	return "in_progress"
}

// AnswerResult - немедленная обратная связь после ответа
type AnswerResult struct {
	Correct           bool
	CorrectOptionText string
}

// Summary - итог сессии для финального обзора
type Summary struct {
	Score       int
	Total       int
	Review      []AnswerRecord
	TimeExpired bool
}

type EventKind int

const (
	EventQuestionChanged EventKind = iota
	EventAnswerResult
	EventTimeUpdated
	EventTimeExpired
	EventSessionComplete
)

// Event описывает то, что должен отрисовать UI. Заполнены только поля,
// относящиеся к Kind.
type Event struct {
	Kind          EventKind
	QuestionIndex int
	Result        AnswerResult
	TimeRemaining int
	Summary       Summary
}

// QuizSession хранит состояние одной викторины. Методы не потокобезопасны:
// вызывающий код должен сериализовать вызовы.
type QuizSession struct {
	questions     []QuizQuestion
	currentIndex  int
	score         int
	timeRemaining int
	reviewLog     []AnswerRecord
	phase         Phase
	timeExpired   bool
}

// Start проверяет вопросы и создает новую сессию
func Start(questions []QuizQuestion, totalSeconds int) (*QuizSession, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidConfiguration)
	}
	if totalSeconds <= 0 {
		return nil, fmt.Errorf("%w: total seconds must be positive, got %d", ErrInvalidConfiguration, totalSeconds)
	}
	for i, q := range questions {
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d has %d options", ErrInvalidConfiguration, i+1, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("%w: question %d correct index %d out of range", ErrInvalidConfiguration, i+1, q.CorrectIndex)
		}
	}

	// Вопросы не меняются в течение сессии
	qs := make([]QuizQuestion, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}

	return &QuizSession{
		questions:     qs,
		timeRemaining: totalSeconds,
		reviewLog:     make([]AnswerRecord, 0, len(qs)),
		phase:         PhaseInProgress,
	}, nil
}

func (s *QuizSession) CurrentQuestion() (QuizQuestion, error) {
	if s.phase == PhaseFinished {
		return QuizQuestion{}, ErrNoCurrentQuestion
	}
	return s.questions[s.currentIndex], nil
}

// SubmitAnswer засчитывает ответ на текущий вопрос и переходит к следующему
func (s *QuizSession) SubmitAnswer(selectedIndex int) (AnswerResult, []Event, error) {
	if s.phase == PhaseFinished {
		return AnswerResult{}, nil, ErrSessionAlreadyFinished
	}
	q := s.questions[s.currentIndex]
	if selectedIndex < 0 || selectedIndex >= len(q.Options) {
		return AnswerResult{}, nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidAnswerIndex, selectedIndex, len(q.Options))
	}

	result := AnswerResult{
		Correct:           selectedIndex == q.CorrectIndex,
		CorrectOptionText: q.CorrectOption(),
	}
	if result.Correct {
		s.score++
	}

	s.reviewLog = append(s.reviewLog, AnswerRecord{
		QuestionIndex:     s.currentIndex + 1,
		QuestionText:      q.Text,
		ChosenOptionText:  q.Options[selectedIndex],
		CorrectOptionText: result.CorrectOptionText,
	})
	s.currentIndex++

	events := []Event{{Kind: EventAnswerResult, QuestionIndex: s.currentIndex - 1, Result: result}}
	if s.currentIndex == len(s.questions) {
		events = append(events, s.complete())
	} else {
		events = append(events, Event{Kind: EventQuestionChanged, QuestionIndex: s.currentIndex})
	}
	return result, events, nil
}

// Tick отсчитывает одну секунду. На нуле сессия завершается, даже если
// остались вопросы без ответа.
func (s *QuizSession) Tick() ([]Event, error) {
	if s.phase == PhaseFinished {
		return nil, ErrSessionAlreadyFinished
	}
	if s.timeRemaining > 0 {
		s.timeRemaining--
	}

	events := []Event{{Kind: EventTimeUpdated, TimeRemaining: s.timeRemaining}}
	if s.timeRemaining == 0 {
		s.timeExpired = true
		events = append(events, Event{Kind: EventTimeExpired}, s.complete())
	}
	return events, nil
}

// Finish завершает сессию досрочно. Повторный вызов ничего не делает.
func (s *QuizSession) Finish() []Event {
	if s.phase == PhaseFinished {
		return nil
	}
	return []Event{s.complete()}
}

func (s *QuizSession) complete() Event {
	s.phase = PhaseFinished
	return Event{Kind: EventSessionComplete, Summary: s.Summary()}
}

// FormatRemainingTime возвращает оставшееся время в виде MM:SS
func (s *QuizSession) FormatRemainingTime() string {
	return FormatTime(s.timeRemaining)
}

func FormatTime(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (s *QuizSession) Summary() Summary {
	return Summary{
		Score:       s.score,
		Total:       len(s.questions),
		Review:      s.ReviewLog(),
		TimeExpired: s.timeExpired,
	}
}

func (s *QuizSession) ReviewLog() []AnswerRecord {
	return append([]AnswerRecord(nil), s.reviewLog...)
}

func (s *QuizSession) Score() int          { return s.score }
func (s *QuizSession) Phase() Phase        { return s.phase }
func (s *QuizSession) CurrentIndex() int   { return s.currentIndex }
func (s *QuizSession) TotalQuestions() int { return len(s.questions) }
func (s *QuizSession) TimeRemaining() int  { return s.timeRemaining }
