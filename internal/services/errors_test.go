package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"giftbot/internal/conversation"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"not found", fmt.Errorf("wrap: %w", ErrGroupNotFound), KindNotFound},
		{"conflict", ErrGroupAlreadyDrawn, KindConflict},
		{"capacity", ErrCapacityExceeded, KindConflict},
		{"validation", &conversation.ValidationError{Field: "budget", Message: "empty"}, KindValidation},
		{"store", storeErr("op", errors.New("disk I/O error")), KindStore},
		{"domain passes through", storeErr("op", ErrGroupClosed), KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Contains(t, UserMessage(ErrInsufficientParticipants), "минимум 3")
	assert.Contains(t, UserMessage(storeErr("op", errors.New("boom"))), "Попробуйте ещё раз")
	assert.Nil(t, storeErr("op", nil))
}
