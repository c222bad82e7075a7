package repository

import "errors"

// Ошибки хранилища, которые сервисы показывают пользователю как отказ
var (
	ErrGroupNotFound            = errors.New("group not found")
	ErrParticipantNotFound      = errors.New("participant not found")
	ErrAssignmentNotFound       = errors.New("assignment not found")
	ErrGroupClosed              = errors.New("group registration is closed")
	ErrGroupAlreadyDrawn        = errors.New("group already drawn")
	ErrInsufficientParticipants = errors.New("at least 3 confirmed participants required")
	ErrAlreadyRegistered        = errors.New("already registered in group")
	ErrCapacityExceeded         = errors.New("group capacity exceeded")
)
