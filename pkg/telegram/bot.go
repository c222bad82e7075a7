package telegram

import (
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength - предел длины текста одного сообщения Telegram
const MaxMessageLength = 4096

// Bot представляет Telegram бота
type Bot struct {
	api     *tgbotapi.BotAPI
	webhook string
}

// Button - кнопка inline-клавиатуры: либо Data (callback), либо URL
type Button struct {
	Text string
	Data string
	URL  string
}

// Menu - строки кнопок inline-клавиатуры
type Menu [][]Button

// Event - входящее сообщение или нажатие кнопки, сведенное к нужным полям
type Event struct {
	ChatID     int64
	UserID     int64
	Username   string
	FirstName  string
	Text       string
	CallbackID string
	Data       string
}

// IsCallback сообщает, пришло ли событие от inline-кнопки
func (e Event) IsCallback() bool { return e.CallbackID != "" }

// NewBot создает новый экземпляр бота
func NewBot(token, webhook string) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	bot.Debug = false

	return &Bot{
		api:     bot,
		webhook: webhook,
	}, nil
}

// Username возвращает имя бота для ссылок-приглашений
func (b *Bot) Username() string { return b.api.Self.UserName }

// SetWebhook устанавливает webhook для бота
func (b *Bot) SetWebhook() error {
	webhookConfig, err := tgbotapi.NewWebhook(b.webhook)
	if err != nil {
		return fmt.Errorf("failed to create webhook config: %w", err)
	}
	_, err = b.api.Request(webhookConfig)
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// RemoveWebhook отключает webhook перед long polling
func (b *Bot) RemoveWebhook() error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}

// SetCommands устанавливает команды бота
func (b *Bot) SetCommands() error {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "🎅 Начать / вступить в группу по коду"},
		{Command: "newgroup", Description: "➕ Создать группу"},
		{Command: "mygroups", Description: "📋 Мои группы"},
		{Command: "sent", Description: "🚚 Я отправил подарок"},
		{Command: "received", Description: "🎉 Я получил подарок"},
		{Command: "cancel", Description: "❌ Отменить анкету"},
		{Command: "help", Description: "ℹ️ Помощь"},
	}

	setCommands := tgbotapi.NewSetMyCommands(commands...)
	_, err := b.api.Request(setCommands)
	if err != nil {
		return fmt.Errorf("failed to set commands: %w", err)
	}
	return nil
}

// SendMessage отправляет сообщение пользователю. Текст уходит без разметки:
// в нем бывают адреса и пожелания участников.
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)

	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendMenu отправляет сообщение с inline-клавиатурой
func (b *Bot) SendMenu(chatID int64, text string, menu Menu) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(menu) > 0 {
		msg.ReplyMarkup = keyboard(menu)
	}

	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send menu: %w", err)
	}
	return nil
}

// AnswerCallback убирает "часики" на нажатой кнопке
func (b *Bot) AnswerCallback(callbackID, text string) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

func keyboard(menu Menu) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(menu))
	for _, row := range menu {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			if btn.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// GetUpdates получает обновления от Telegram через long polling
func (b *Bot) GetUpdates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	return b.api.GetUpdatesChan(u)
}

// StopUpdates останавливает long polling
func (b *Bot) StopUpdates() { b.api.StopReceivingUpdates() }

// DecodeUpdate разбирает тело webhook-запроса
func DecodeUpdate(body []byte) (Event, bool, error) {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return Event{}, false, fmt.Errorf("failed to decode update: %w", err)
	}
	ev, ok := EventFromUpdate(update)
	return ev, ok, nil
}

// EventFromUpdate извлекает событие из обновления; false для неподдерживаемых типов
func EventFromUpdate(update tgbotapi.Update) (Event, bool) {
	if cb := update.CallbackQuery; cb != nil && cb.From != nil {
		ev := Event{
			UserID:     cb.From.ID,
			ChatID:     cb.From.ID,
			Username:   cb.From.UserName,
			FirstName:  cb.From.FirstName,
			CallbackID: cb.ID,
			Data:       cb.Data,
		}
		if cb.Message != nil && cb.Message.Chat != nil {
			ev.ChatID = cb.Message.Chat.ID
		}
		return ev, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return Event{}, false
	}
	// бот работает только в личных чатах
	if !msg.Chat.IsPrivate() {
		return Event{}, false
	}
	return Event{
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		Text:      strings.TrimSpace(msg.Text),
	}, true
}
