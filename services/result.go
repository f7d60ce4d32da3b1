package services

import (
	"errors"
	"fmt"
)

// ResultCode - итог операции оркестратора. Вызывающая сторона обязана
// различать отказ по правилам игры и сбой инфраструктуры
type ResultCode int

const (
	// ResultConflict - appUserId уже занят (только регистрация)
	ResultConflict ResultCode = -2
	// ResultFailed - ошибка хранилища или identity-провайдера
	ResultFailed ResultCode = -1
	// ResultRejected - отказ по бизнес-правилу: уже друзья, нет пользователя, невалидный ввод
	ResultRejected ResultCode = 0
	// ResultOK - успех
	ResultOK ResultCode = 1
)

func (c ResultCode) String() string {
	switch c {
	case ResultConflict:
		return "conflict"
	case ResultFailed:
		return "failed"
	case ResultRejected:
		return "rejected"
	case ResultOK:
		return "ok"
	}
	return fmt.Sprintf("ResultCode(%d)", int(c))
}

// Result - код и человекочитаемая причина
type Result struct {
	Code    ResultCode
	Message string
}

func okResult(message string) Result {
	return Result{Code: ResultOK, Message: message}
}

func rejected(message string) Result {
	return Result{Code: ResultRejected, Message: message}
}

func failed(message string) Result {
	return Result{Code: ResultFailed, Message: message}
}

var (
	ErrInvalidChallenge = errors.New("invalid challenge")
	ErrInvalidRequest   = errors.New("invalid duel update request")
	ErrDuelNotFound     = errors.New("duel not found")
	ErrEmailTaken       = errors.New("email already registered")
)

// CreationError - не удалось создать сущность (вызов или пользователя)
type CreationError struct {
	Entity string
	Err    error
}

func (e *CreationError) Error() string {
	if e.Err == nil {
		return e.Entity + " could not be created"
	}
	return fmt.Sprintf("%s could not be created: %v", e.Entity, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}
