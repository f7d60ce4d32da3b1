package services

import (
	"fmt"
	"regexp"
	"strings"

	"wordduel/models"
)

var (
	allCapsAlphaRegex  = regexp.MustCompile(`^[A-Z]+$`)
	alphaNumericRegex  = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	validQuestionTypes = map[models.QuestionType]bool{
		models.QuestionJumble: true,
	}
)

const (
	minJumbleWordLength = 4
	maxJumbleWordLength = 20
	minAppUserIDLength  = 5
	maxAppUserIDLength  = 20
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateChallenge проверяет вызов до создания. Ошибка оборачивает ErrInvalidChallenge
func ValidateChallenge(challenge *models.Challenge) error {
	if challenge == nil {
		return fmt.Errorf("%w: no challenge data", ErrInvalidChallenge)
	}
	if isBlank(challenge.SourceUserID) {
		return fmt.Errorf("%w: issuer is required", ErrInvalidChallenge)
	}
	question := challenge.Question
	if question == nil {
		return fmt.Errorf("%w: question is required", ErrInvalidChallenge)
	}
	if isBlank(string(question.Type)) || !validQuestionTypes[question.Type] {
		return fmt.Errorf("%w: unsupported question type %q", ErrInvalidChallenge, question.Type)
	}
	if question.Content == nil {
		return fmt.Errorf("%w: question content is required", ErrInvalidChallenge)
	}
	if question.Type == models.QuestionJumble && !isValidJumbleWord(question.Content.Word) {
		return fmt.Errorf("%w: jumble word must be %d-%d uppercase letters", ErrInvalidChallenge, minJumbleWordLength, maxJumbleWordLength)
	}
	return nil
}

func isValidJumbleWord(word string) bool {
	if len(word) < minJumbleWordLength || len(word) > maxJumbleWordLength {
		return false
	}
	return allCapsAlphaRegex.MatchString(word)
}

// ValidateSignUp проверяет данные регистрации. appUserId необязателен,
// но если передан - от 5 до 20 латинских букв и цифр
func ValidateSignUp(input ProfileInput) error {
	if isBlank(input.Email) || isBlank(input.DisplayName) || isBlank(input.Password) {
		return fmt.Errorf("email, name and password are required")
	}
	if input.AppUserID == "" {
		return nil
	}
	if len(input.AppUserID) < minAppUserIDLength || len(input.AppUserID) > maxAppUserIDLength {
		return fmt.Errorf("appUserId must be %d-%d characters", minAppUserIDLength, maxAppUserIDLength)
	}
	if !alphaNumericRegex.MatchString(input.AppUserID) {
		return fmt.Errorf("appUserId must be alphanumeric")
	}
	return nil
}
