package services

import (
	"errors"
	"fmt"

	"giftbot/internal/conversation"
	"giftbot/internal/repository"
)

// Доменные ошибки. Сервисы возвращают их как есть, остальное - ErrStore.
var (
	ErrGroupNotFound            = repository.ErrGroupNotFound
	ErrParticipantNotFound      = repository.ErrParticipantNotFound
	ErrAssignmentNotFound       = repository.ErrAssignmentNotFound
	ErrGroupClosed              = repository.ErrGroupClosed
	ErrGroupAlreadyDrawn        = repository.ErrGroupAlreadyDrawn
	ErrInsufficientParticipants = repository.ErrInsufficientParticipants
	ErrAlreadyRegistered        = repository.ErrAlreadyRegistered
	ErrCapacityExceeded         = repository.ErrCapacityExceeded

	ErrValidation     = errors.New("validation failed")
	ErrAmbiguousGroup = errors.New("participant belongs to several drawn groups")
	ErrForbidden      = errors.New("forbidden")
	ErrStore          = errors.New("store unavailable")
)

// ErrorKind - класс ошибки для ответа пользователю и HTTP статуса
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
	KindStore
)

// KindOf классифицирует ошибку
func KindOf(err error) ErrorKind {
	var verr *conversation.ValidationError
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrValidation), errors.As(err, &verr):
		return KindValidation
	case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrParticipantNotFound), errors.Is(err, ErrAssignmentNotFound):
		return KindNotFound
	case errors.Is(err, ErrGroupClosed), errors.Is(err, ErrGroupAlreadyDrawn),
		errors.Is(err, ErrInsufficientParticipants), errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrAmbiguousGroup):
		return KindConflict
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrStore):
		return KindStore
	}
	return KindUnknown
}

// UserMessage возвращает текст ошибки для чата
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		return "❌ Группа не найдена."
	case errors.Is(err, ErrParticipantNotFound):
		return "❌ Участник не найден."
	case errors.Is(err, ErrAssignmentNotFound):
		return "❌ Жеребьёвка для вас ещё не проводилась."
	case errors.Is(err, ErrGroupClosed):
		return "❌ Регистрация в группу закрыта: жеребьёвка уже проведена."
	case errors.Is(err, ErrGroupAlreadyDrawn):
		return "❌ Жеребьёвка в этой группе уже проведена."
	case errors.Is(err, ErrInsufficientParticipants):
		return "❌ Невозможно запустить жеребьёвку! Нужно минимум 3 подтверждённых участника."
	case errors.Is(err, ErrAlreadyRegistered):
		return "✅ Вы уже зарегистрированы в этой группе! Ожидайте начала жеребьёвки."
	case errors.Is(err, ErrCapacityExceeded):
		return "❌ В группе больше нет свободных мест."
	case errors.Is(err, ErrAmbiguousGroup):
		return "❓ Вы участвуете в нескольких группах. Укажите код группы после команды."
	case errors.Is(err, ErrValidation):
		return "❌ Проверьте введённые данные: " + err.Error()
	case errors.Is(err, ErrForbidden):
		return "⛔ У вас нет доступа к этому действию."
	}
	return "❌ Ошибка хранилища. Попробуйте ещё раз позже."
}

// storeErr пропускает доменные ошибки, остальные помечает как ErrStore
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUnknown {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
