package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"giftbot/internal/models"
)

// DefaultChunkSize - лимит длины одного сообщения с запасом до 4096 символов Telegram
const DefaultChunkSize = 4000

// Report - текст, составленный из записей. Запись (строка пары или карточка
// участника) никогда не разрывается между сообщениями.
type Report struct {
	records []string
}

// Add добавляет запись. Многострочная запись переносится целиком.
func (r *Report) Add(record string) {
	r.records = append(r.records, record)
}

// Addf добавляет запись по формату
func (r *Report) Addf(format string, args ...interface{}) {
	r.Add(fmt.Sprintf(format, args...))
}

func (r *Report) String() string {
	return strings.Join(r.records, "\n")
}

// Chunks разбивает отчет на сообщения длиной не более limit единиц UTF-16
// (так длину считает Telegram). Границы проходят только между записями;
// запись длиннее limit режется по символам.
func (r *Report) Chunks(limit int) []string {
	if limit <= 0 {
		limit = DefaultChunkSize
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, rec := range r.records {
		n := textLen(rec)
		sep := 0
		if curLen > 0 {
			sep = 1
		}
		if curLen+sep+n <= limit {
			if sep == 1 {
				cur.WriteByte('\n')
			}
			cur.WriteString(rec)
			curLen += sep + n
			continue
		}
		flush()
		if n <= limit {
			cur.WriteString(rec)
			curLen = n
			continue
		}
		chunks = append(chunks, splitText(rec, limit)...)
	}
	flush()
	return chunks
}

// textLen - длина текста в единицах UTF-16
func textLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// splitText режет текст по символам, не разрывая суррогатные пары
func splitText(s string, limit int) []string {
	var (
		parts []string
		cur   strings.Builder
		n     int
	)
	for _, r := range s {
		w := utf16.RuneLen(r)
		if n > 0 && n+w > limit {
			parts = append(parts, cur.String())
			cur.Reset()
			n = 0
		}
		cur.WriteRune(r)
		n += w
	}
	if n > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// Pair - ребро жеребьёвки с данными обоих участников
type Pair struct {
	Giver    *models.Participant
	Receiver *models.Participant
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func handle(p *models.Participant) string {
	if p.Username != "" {
		return "@" + p.Username
	}
	return "нет"
}

// GiftMessage - сообщение дарителю о его получателе
func GiftMessage(group *models.Group, receiver *models.Participant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎅 ВЫ ТАЙНЫЙ САНТА ДЛЯ: %s\n\n", receiver.Nickname)
	fmt.Fprintf(&b, "👤 ФИО: %s\n", receiver.FullName)
	fmt.Fprintf(&b, "🎭 Ник в игре: %s\n", receiver.Nickname)
	fmt.Fprintf(&b, "📍 Адрес ПВЗ: %s\n", receiver.PickupAddress)
	fmt.Fprintf(&b, "📫 Почтовый адрес: %s\n", orDefault(receiver.PostalAddress, models.NotProvided))
	fmt.Fprintf(&b, "🎁 Пожелания: %s\n\n", orDefault(receiver.Wishlist, "Не указаны"))
	fmt.Fprintf(&b, "💰 Бюджет: %s\n", group.Budget)
	fmt.Fprintf(&b, "📅 Отправьте подарок до: %s\n\n", orDefault(group.SendDeadline, "не указано"))
	fmt.Fprintf(&b, "Когда отправите подарок, напишите /sent %s [трек-номер]", group.ID)
	return b.String()
}

func participantCard(i int, p *models.Participant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%d. %s (%s)\n", i, p.FullName, handle(p))
	fmt.Fprintf(&b, "   Ник: %s\n", p.Nickname)
	fmt.Fprintf(&b, "   ПВЗ: %s", p.PickupAddress)
	if p.PostalAddress != "" && p.PostalAddress != models.NotProvided {
		fmt.Fprintf(&b, "\n   Почта: %s", p.PostalAddress)
	}
	if p.Wishlist != "" {
		fmt.Fprintf(&b, "\n   Пожелания: %s", p.Wishlist)
	}
	return b.String()
}

// DrawReport - отчет организатору после жеребьёвки
func DrawReport(group *models.Group, pairs []Pair, delivery DeliveryReport, at time.Time) *Report {
	r := &Report{}
	r.Addf("📊 ОТЧЁТ ПО ЖЕРЕБЬЁВКЕ: %s\n", group.Name)
	r.Addf("📅 Дата: %s", at.Format("02.01.2006 15:04"))
	r.Addf("👥 Участников: %d", len(pairs))
	r.Addf("✅ Сообщений отправлено: %d/%d", delivery.Succeeded, delivery.Attempted)
	for _, f := range delivery.Failures {
		r.Addf("⚠️ Не доставлено: %s (%d): %s", f.Name, f.TelegramID, f.Reason)
	}

	r.Add("\n🔀 ПАРЫ (даритель → получатель):")
	for i, p := range pairs {
		r.Addf("%d. %s → %s", i+1, p.Giver.DisplayHandle(), p.Receiver.DisplayHandle())
	}

	r.Add("\n📋 ПОЛНЫЕ ДАННЫЕ УЧАСТНИКОВ:")
	for i, p := range pairs {
		r.Add(participantCard(i+1, p.Giver))
	}
	return r
}

// FullReport - состав группы и пары, если жеребьёвка уже была
func FullReport(group *models.Group, participants []*models.Participant, assignments []*models.Assignment) *Report {
	r := &Report{}
	r.Addf("📋 ПОЛНЫЙ ОТЧЁТ: %s\n", group.Name)
	r.Add("👥 УЧАСТНИКИ:")
	for i, p := range participants {
		card := participantCard(i+1, p)
		if !p.IsConfirmed() {
			card += "\n   ⏳ Ожидает подтверждения"
		}
		r.Add(card)
	}
	if len(assignments) > 0 {
		r.Add("\n\n🎲 ПАРЫ ПОСЛЕ ЖЕРЕБЬЁВКИ:")
		for i, a := range assignments {
			r.Addf("%d. %s → %s", i+1, a.Giver.FullName, a.Receiver.FullName)
		}
	}
	return r
}

// ShipmentReport - статус отправки подарков по парам
func ShipmentReport(group *models.Group, assignments []*models.Assignment) *Report {
	r := &Report{}
	r.Addf("📦 СТАТУС ПОДАРКОВ: %s\n", group.Name)
	sent, received := 0, 0
	for i, a := range assignments {
		state := "⏳ не отправлен"
		switch {
		case a.GiftReceived:
			state = "🎉 получен"
			received++
			sent++
		case a.GiftSent:
			state = "🚚 отправлен"
			sent++
		}
		line := fmt.Sprintf("%d. %s → %s: %s", i+1, a.Giver.DisplayHandle(), a.Receiver.DisplayHandle(), state)
		if a.TrackNumber != "" {
			line += " (трек " + a.TrackNumber + ")"
		}
		r.Add(line)
	}
	r.Addf("\nОтправлено: %d/%d, получено: %d/%d", sent, len(assignments), received, len(assignments))
	return r
}

// RosterReport - краткий список участников для меню организатора
func RosterReport(group *models.Group, participants []*models.Participant) *Report {
	r := &Report{}
	r.Addf("👥 УЧАСТНИКИ ГРУППЫ: %s\n", group.Name)
	if len(participants) == 0 {
		r.Add("Пока никто не зарегистрировался.")
	}
	for i, p := range participants {
		mark := "✅"
		if !p.IsConfirmed() {
			mark = "⏳"
		}
		r.Addf("%d. %s %s (%s)\n   🎭 Ник: %s\n   📍 ПВЗ: %s\n   🎁 Пожелания: %s\n",
			i+1, mark, p.FullName, handle(p), p.Nickname,
			truncate(p.PickupAddress, 50), truncate(orDefault(p.Wishlist, "нет"), 50))
	}
	return r
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
