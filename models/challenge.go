package models

// QuestionType - тип вопроса в вызове
type QuestionType string

// QuestionJumble - угадать слово по перемешанным буквам
const QuestionJumble QuestionType = "JUMBLE"

// QuestionContent - содержимое вопроса. Для JUMBLE заполняется Word
type QuestionContent struct {
	Word string `json:"word,omitempty"`
}

// Question - вопрос вызова, вариант определяется полем Type
type Question struct {
	Type    QuestionType     `json:"type"`
	Content *QuestionContent `json:"content,omitempty"`
}

// Challenge - вызов, брошенный в рамках дуэли. После создания не меняется
type Challenge struct {
	SourceUserID string    `json:"sourceUserId"`
	Question     *Question `json:"question,omitempty"`
}

// ChallengeData - вызов в том виде, в котором его отдаём клиенту
type ChallengeData struct {
	SourceUserID string          `json:"sourceUserId,omitempty"`
	Type         QuestionType    `json:"type"`
	Question     QuestionContent `json:"question"`
}
