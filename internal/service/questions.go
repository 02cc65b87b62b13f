package service

// DefaultTotalSeconds - длительность викторины (5 минут)
const DefaultTotalSeconds = 300

// DefaultQuizQuestions возвращает встроенный список вопросов
func DefaultQuizQuestions() []QuizQuestion {
	return []QuizQuestion{
		{
			Category:     "Geography",
			Text:         "What is the capital of France?",
			Options:      []string{"Paris", "London", "Berlin", "Madrid"},
			CorrectIndex: 0,
		},
		{
			Category:     "Technology",
			Text:         "Which language is used for Android development?",
			Options:      []string{"Python", "Java", "Swift", "C#"},
			CorrectIndex: 1,
		},
		{
			Category:     "Java",
			Text:         "What does JVM stand for?",
			Options:      []string{"Java Virtual Machine", "Java Very Much", "Just Virtual Machine", "Java Verified Module"},
			CorrectIndex: 0,
		},
		{
			Category:     "Art",
			Text:         "Who painted the Mona Lisa?",
			Options:      []string{"Leonardo da Vinci", "Pablo Picasso", "Vincent Van Gogh", "Claude Monet"},
			CorrectIndex: 0,
		},
	}
}
