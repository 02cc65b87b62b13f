package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *QuizSession {
	t.Helper()
	s, err := Start(DefaultQuizQuestions(), DefaultTotalSeconds)
	require.NoError(t, err)
	return s
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func countComplete(events []Event) int {
	n := 0
	for _, e := range events {
		if e.Kind == EventSessionComplete {
			n++
		}
	}
	return n
}

func assertInvariants(t *testing.T, s *QuizSession) {
	t.Helper()
	assert.LessOrEqual(t, s.Score(), s.CurrentIndex())
	assert.LessOrEqual(t, s.CurrentIndex(), s.TotalQuestions())
	assert.GreaterOrEqual(t, s.TimeRemaining(), 0)
	assert.Len(t, s.ReviewLog(), s.CurrentIndex())
}

func TestStartValidation(t *testing.T) {
	valid := DefaultQuizQuestions()

	tests := []struct {
		name      string
		questions []QuizQuestion
		seconds   int
	}{
		{"no questions", nil, 300},
		{"one option", []QuizQuestion{{Text: "q", Options: []string{"a"}}}, 300},
		{"negative correct index", []QuizQuestion{{Text: "q", Options: []string{"a", "b"}, CorrectIndex: -1}}, 300},
		{"correct index too large", []QuizQuestion{{Text: "q", Options: []string{"a", "b"}, CorrectIndex: 2}}, 300},
		{"zero seconds", valid, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Start(tt.questions, tt.seconds)
			require.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Nil(t, s)
		})
	}
}

func TestStartInitialState(t *testing.T) {
	s := newSession(t)

	assert.Equal(t, PhaseInProgress, s.Phase())
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, 300, s.TimeRemaining())
	assert.Empty(t, s.ReviewLog())

	q, err := s.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, "What is the capital of France?", q.Text)
}

func TestStartCopiesQuestions(t *testing.T) {
	qs := DefaultQuizQuestions()
	s, err := Start(qs, 10)
	require.NoError(t, err)

	qs[0].Options[0] = "Lyon"
	q, err := s.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, "Paris", q.Options[0])
}

func TestFormatRemainingTime(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{300, "05:00"},
		{65, "01:05"},
		{59, "00:59"},
		{0, "00:00"},
		{3600, "60:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.seconds))
	}

	s := newSession(t)
	assert.Equal(t, "05:00", s.FormatRemainingTime())
	_, err := s.Tick()
	require.NoError(t, err)
	assert.Equal(t, "04:59", s.FormatRemainingTime())
}

func TestScenarioCorrectThenWrong(t *testing.T) {
	s := newSession(t)

	res, events, err := s.SubmitAnswer(0)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, "Paris", res.CorrectOptionText)
	assert.Equal(t, 1, s.Score())
	assert.Equal(t, 1, s.CurrentIndex())
	assert.Equal(t, []EventKind{EventAnswerResult, EventQuestionChanged}, kinds(events))
	assert.Equal(t, 1, events[1].QuestionIndex)

	res, _, err = s.SubmitAnswer(2)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "Java", res.CorrectOptionText)
	assert.Equal(t, 1, s.Score())

	log := s.ReviewLog()
	require.Len(t, log, 2)
	assert.Equal(t, AnswerRecord{
		QuestionIndex:     2,
		QuestionText:      "Which language is used for Android development?",
		ChosenOptionText:  "Swift",
		CorrectOptionText: "Java",
	}, log[1])
	assertInvariants(t, s)
}

func TestAllCorrectCompletesOnce(t *testing.T) {
	s := newSession(t)
	var all []Event

	for _, q := range DefaultQuizQuestions() {
		_, events, err := s.SubmitAnswer(q.CorrectIndex)
		require.NoError(t, err)
		all = append(all, events...)
		assertInvariants(t, s)
	}

	assert.Equal(t, 4, s.Score())
	assert.Equal(t, PhaseFinished, s.Phase())
	require.Equal(t, 1, countComplete(all))

	last := all[len(all)-1]
	assert.Equal(t, EventSessionComplete, last.Kind)
	assert.Equal(t, 4, last.Summary.Score)
	assert.Equal(t, 4, last.Summary.Total)
	assert.Len(t, last.Summary.Review, 4)
	assert.False(t, last.Summary.TimeExpired)

	_, err := s.CurrentQuestion()
	assert.ErrorIs(t, err, ErrNoCurrentQuestion)
}

func TestReviewLogRecordsCorrectOption(t *testing.T) {
	s := newSession(t)
	qs := DefaultQuizQuestions()
	for i, q := range qs {
		_, _, err := s.SubmitAnswer((q.CorrectIndex + i) % len(q.Options))
		require.NoError(t, err)
	}
	for i, r := range s.ReviewLog() {
		assert.Equal(t, i+1, r.QuestionIndex)
		assert.Equal(t, qs[i].Options[qs[i].CorrectIndex], r.CorrectOptionText)
	}
}

func TestSubmitAnswerOutOfRange(t *testing.T) {
	s := newSession(t)

	for _, idx := range []int{-1, 4} {
		_, events, err := s.SubmitAnswer(idx)
		require.ErrorIs(t, err, ErrInvalidAnswerIndex)
		assert.Nil(t, events)
	}
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Empty(t, s.ReviewLog())
}

func TestTimeExpires(t *testing.T) {
	s := newSession(t)

	var last []Event
	for i := 0; i < DefaultTotalSeconds; i++ {
		require.Equal(t, PhaseInProgress, s.Phase(), "tick %d", i)
		events, err := s.Tick()
		require.NoError(t, err)
		last = events
	}

	assert.Equal(t, PhaseFinished, s.Phase())
	assert.Equal(t, 0, s.TimeRemaining())
	assert.Equal(t, []EventKind{EventTimeUpdated, EventTimeExpired, EventSessionComplete}, kinds(last))
	assert.Empty(t, s.ReviewLog())
	assert.Equal(t, 0, last[2].Summary.Score)
	assert.True(t, last[2].Summary.TimeExpired)

	_, err := s.Tick()
	assert.ErrorIs(t, err, ErrSessionAlreadyFinished)
	assert.Equal(t, 0, s.TimeRemaining())
}

func TestTickAtOneSecondFinishes(t *testing.T) {
	s, err := Start(DefaultQuizQuestions(), 1)
	require.NoError(t, err)

	_, _, err = s.SubmitAnswer(0)
	require.NoError(t, err)

	events, err := s.Tick()
	require.NoError(t, err)
	assert.Equal(t, 0, s.TimeRemaining())
	assert.Equal(t, PhaseFinished, s.Phase())
	require.Equal(t, 1, countComplete(events))

	summary := events[len(events)-1].Summary
	assert.Equal(t, 1, summary.Score)
	assert.Len(t, summary.Review, 1)
}

func TestSubmitAfterFinishLeavesState(t *testing.T) {
	s := newSession(t)
	_, _, err := s.SubmitAnswer(0)
	require.NoError(t, err)
	s.Finish()

	before := s.Summary()
	_, events, err := s.SubmitAnswer(0)
	require.ErrorIs(t, err, ErrSessionAlreadyFinished)
	assert.Nil(t, events)
	assert.Equal(t, before, s.Summary())
	assert.Equal(t, 1, s.CurrentIndex())
}

func TestFinishIdempotent(t *testing.T) {
	s := newSession(t)

	first := s.Finish()
	require.Len(t, first, 1)
	assert.Equal(t, EventSessionComplete, first[0].Kind)
	state := s.Summary()

	assert.Empty(t, s.Finish())
	assert.Equal(t, state, s.Summary())
	assert.Equal(t, PhaseFinished, s.Phase())
}

func TestFormatReview(t *testing.T) {
	summary := Summary{
		Score: 1,
		Total: 4,
		Review: []AnswerRecord{
			{QuestionIndex: 1, QuestionText: "What is the capital of France?", ChosenOptionText: "Paris", CorrectOptionText: "Paris"},
			{QuestionIndex: 2, QuestionText: "What does JVM stand for?", ChosenOptionText: "Java Very Much", CorrectOptionText: "Java Virtual Machine"},
		},
	}

	want := "🎉 Final Score: 1/4\n\n" +
		"----- Answer Review -----\n" +
		"Q1: What is the capital of France? | Your answer: Paris | Correct: Paris\n" +
		"Q2: What does JVM stand for? | Your answer: Java Very Much | Correct: Java Virtual Machine\n"
	assert.Equal(t, want, FormatReview(summary))
}
