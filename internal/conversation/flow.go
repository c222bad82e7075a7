// Package conversation реализует пошаговые анкеты бота: одно поле на шаг,
// проверка ввода, итоговое подтверждение. Движок ничего не пишет в базу -
// он только собирает черновик, который сохраняет вызывающий сервис.
package conversation

import (
	"fmt"
	"strings"

	"giftbot/internal/models"
)

// Kind определяет, какую сущность собирает анкета
type Kind string

const (
	KindCreateGroup         Kind = "create_group"
	KindRegisterParticipant Kind = "register_participant"
)

// Ключи полей анкет
const (
	FieldGroupName        = "name"
	FieldOrganizerContact = "organizer_contact"
	FieldBudget           = "budget"
	FieldMaxParticipants  = "max_participants"
	FieldRegDeadline      = "reg_deadline"
	FieldSendDeadline     = "send_deadline"

	FieldFullName      = "full_name"
	FieldNickname      = "nickname"
	FieldPickupAddress = "pickup_address"
	FieldPostalAddress = "postal_address"
	FieldWishlist      = "wishlist"
)

// skipWords принимаются вместо значения необязательного поля
var skipWords = []string{"пропустить", "skip", "-"}

// Field описывает один шаг анкеты
type Field struct {
	Key      string
	Prompt   string
	Numeric  bool
	Min, Max int
	Optional bool
	// Default подставляется, если необязательное поле пропущено
	Default string
}

// Flow - упорядоченный список полей и сборщик черновика
type Flow struct {
	Kind   Kind
	Fields []Field
}

// CreateGroupFlow собирает новую группу
var CreateGroupFlow = Flow{
	Kind: KindCreateGroup,
	Fields: []Field{
		{Key: FieldGroupName, Prompt: "Введите название группы:"},
		{Key: FieldOrganizerContact, Prompt: "Введите контакт организатора (имя и телеграм/телефон):\nПример: 'Анна Петрова, @anna_hr'"},
		{Key: FieldBudget, Prompt: "Введите бюджет подарков:\nПример: '1000-1500 руб' или 'до 2000 руб'"},
		{
			Key:     FieldMaxParticipants,
			Prompt:  fmt.Sprintf("Введите максимальное количество участников (от %d до %d):\nПример: '20' или '50'", models.MinParticipants, models.MaxParticipants),
			Numeric: true,
			Min:     models.MinParticipants,
			Max:     models.MaxParticipants,
		},
		{Key: FieldRegDeadline, Prompt: "Введите дедлайн регистрации:\nПример: '15 декабря' или '20.12.2024'"},
		{
			Key:      FieldSendDeadline,
			Prompt:   "Введите дедлайн отправки подарков или напишите 'пропустить':",
			Optional: true,
		},
	},
}

// RegisterParticipantFlow собирает анкету участника
var RegisterParticipantFlow = Flow{
	Kind: KindRegisterParticipant,
	Fields: []Field{
		{Key: FieldFullName, Prompt: "Введите ваши Фамилию и Имя:\nПример: Иванов Иван"},
		{Key: FieldNickname, Prompt: "Придумайте никнейм для игры (так вас будет видеть ваш Тайный Санта):\nПример: Снежный_Санта"},
		{Key: FieldPickupAddress, Prompt: "Введите адрес пункта выдачи, где вам удобно забирать заказы:\nПример: 'Москва, ТЦ Авиапарк'"},
		{
			Key:      FieldPostalAddress,
			Prompt:   "Введите почтовый адрес (на случай отправки почтой):\nПример: '123456, Москва, ул. Ленина, д. 10, кв. 15'\nИли напишите 'пропустить'",
			Optional: true,
			Default:  models.NotProvided,
		},
		{
			Key:      FieldWishlist,
			Prompt:   "Напишите пожелания к подарку: интересы, размер одежды, аллергии.\nИли напишите 'пропустить'",
			Optional: true,
		},
	},
}

// FlowFor возвращает анкету по типу
func FlowFor(kind Kind) (Flow, bool) {
	switch kind {
	case KindCreateGroup:
		return CreateGroupFlow, true
	case KindRegisterParticipant:
		return RegisterParticipantFlow, true
	}
	return Flow{}, false
}

func isSkip(input string) bool {
	for _, w := range skipWords {
		if strings.EqualFold(input, w) {
			return true
		}
	}
	return false
}

// summary формирует текст для подтверждения анкеты
func (f Flow) summary(values map[string]string) string {
	var b strings.Builder
	switch f.Kind {
	case KindCreateGroup:
		b.WriteString("ПРОВЕРЬТЕ ДАННЫЕ ГРУППЫ\n\n")
		fmt.Fprintf(&b, "🏢 Название: %s\n", values[FieldGroupName])
		fmt.Fprintf(&b, "👤 Организатор: %s\n", values[FieldOrganizerContact])
		fmt.Fprintf(&b, "💰 Бюджет: %s\n", values[FieldBudget])
		fmt.Fprintf(&b, "👥 Макс. участников: %s\n", values[FieldMaxParticipants])
		fmt.Fprintf(&b, "📅 Регистрация до: %s\n", values[FieldRegDeadline])
		if v := values[FieldSendDeadline]; v != "" {
			fmt.Fprintf(&b, "📦 Отправить подарок до: %s\n", v)
		}
	case KindRegisterParticipant:
		b.WriteString("ПРОВЕРЬТЕ ВАШУ АНКЕТУ\n\n")
		fmt.Fprintf(&b, "👤 ФИО: %s\n", values[FieldFullName])
		fmt.Fprintf(&b, "🎭 Ник: %s\n", values[FieldNickname])
		fmt.Fprintf(&b, "📍 ПВЗ: %s\n", values[FieldPickupAddress])
		fmt.Fprintf(&b, "📫 Почта: %s\n", values[FieldPostalAddress])
		wishlist := values[FieldWishlist]
		if wishlist == "" {
			wishlist = "не указаны"
		}
		fmt.Fprintf(&b, "🎁 Пожелания: %s\n", wishlist)
	}
	b.WriteString("\nВсё верно?")
	return b.String()
}
