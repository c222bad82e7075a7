package services

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftbot/internal/models"
)

func TestReportChunks_NeverSplitRecord(t *testing.T) {
	r := &Report{}
	var lines []string
	for i := 0; i < 300; i++ {
		line := fmt.Sprintf("%d. @giver_%03d → @receiver_%03d", i+1, i, (i+1)%300)
		lines = append(lines, line)
		r.Add(line)
	}

	chunks := r.Chunks(500)
	require.Greater(t, len(chunks), 1)

	var rejoined []string
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 500)
		rejoined = append(rejoined, strings.Split(c, "\n")...)
	}
	// каждая запись целиком в одном сообщении и порядок сохранен
	assert.Equal(t, lines, rejoined)
	assert.Equal(t, r.String(), strings.Join(chunks, "\n"))
}

func TestReportChunks_MultilineRecordKeptWhole(t *testing.T) {
	r := &Report{}
	r.Add("header")
	card := "1. Иван\n   Ник: santa\n   ПВЗ: Москва"
	r.Add(card)

	chunks := r.Chunks(utf8.RuneCountInString(card) + 1)
	require.Len(t, chunks, 2)
	assert.Equal(t, "header", chunks[0])
	assert.Equal(t, card, chunks[1])
}

func TestReportChunks_OversizedRecord(t *testing.T) {
	r := &Report{}
	r.Add("short")
	r.Add(strings.Repeat("я", 25))

	chunks := r.Chunks(10)
	assert.Equal(t, []string{"short", strings.Repeat("я", 10), strings.Repeat("я", 10), strings.Repeat("я", 5)}, chunks)
}

func TestReportChunks_CountsUTF16Units(t *testing.T) {
	r := &Report{}
	r.Add("🎅🎅🎅")
	r.Add("🎁🎁🎁")

	// каждый эмодзи - суррогатная пара, две единицы UTF-16
	chunks := r.Chunks(12)
	assert.Equal(t, []string{"🎅🎅🎅", "🎁🎁🎁"}, chunks)

	r = &Report{}
	r.Add(strings.Repeat("🎁", 30))
	chunks = r.Chunks(11)
	require.Len(t, chunks, 6)
	for _, c := range chunks {
		assert.Equal(t, strings.Repeat("🎁", 5), c)
		assert.True(t, utf8.ValidString(c))
	}
}

func TestReportChunks_Empty(t *testing.T) {
	assert.Empty(t, (&Report{}).Chunks(100))
}

func TestGiftMessage_Defaults(t *testing.T) {
	g := &models.Group{ID: "ABCD2345", Budget: "1000"}
	p := &models.Participant{FullName: "Анна", Nickname: "snow", PickupAddress: "ПВЗ 1", PostalAddress: models.NotProvided}

	msg := GiftMessage(g, p)
	assert.Contains(t, msg, "ВЫ ТАЙНЫЙ САНТА ДЛЯ: snow")
	assert.Contains(t, msg, "Почтовый адрес: Не указан")
	assert.Contains(t, msg, "Пожелания: Не указаны")
	assert.Contains(t, msg, "Отправьте подарок до: не указано")
	assert.Contains(t, msg, "/sent ABCD2345")
}

func TestDrawReport_ListsFailures(t *testing.T) {
	g := &models.Group{ID: "G", Name: "Офис"}
	a := &models.Participant{ID: uuid.New(), FullName: "A", Username: "a", Nickname: "na"}
	b := &models.Participant{ID: uuid.New(), FullName: "B", Nickname: "nb"}
	pairs := []Pair{{Giver: a, Receiver: b}, {Giver: b, Receiver: a}}
	delivery := DeliveryReport{Attempted: 2, Succeeded: 1, Failures: []DeliveryFailure{{TelegramID: 7, Name: "B", Reason: "blocked"}}}

	text := DrawReport(g, pairs, delivery, time.Date(2026, 12, 20, 18, 30, 0, 0, time.UTC)).String()
	assert.Contains(t, text, "Дата: 20.12.2026 18:30")
	assert.Contains(t, text, "Сообщений отправлено: 1/2")
	assert.Contains(t, text, "Не доставлено: B (7): blocked")
	assert.Contains(t, text, "1. @a → B")
	assert.Contains(t, text, "2. B → @a")
}
