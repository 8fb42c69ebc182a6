package model

import "errors"

var (
	// Источник недоступен. Не фатально, источник пропускается
	ErrFeedUnavailable = errors.New("feed unavailable")
	// Сервис генерации вернул ошибку или пустой ответ
	ErrCompletion = errors.New("completion service error")
	// Запись в журнал не удалась, действие считается не записанным
	ErrLedgerWrite = errors.New("ledger write failed")

	ErrUnknownSector   = errors.New("unknown sector")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoDraft         = errors.New("no such draft")
)
