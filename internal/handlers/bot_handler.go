package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"giftbot/internal/conversation"
	"giftbot/internal/models"
	"giftbot/internal/services"
	"giftbot/pkg/telegram"
)

// Transport - исходящая сторона чата
type Transport interface {
	SendMessage(chatID int64, text string) error
	SendMenu(chatID int64, text string, menu telegram.Menu) error
	AnswerCallback(callbackID, text string) error
}

// BotHandler маршрутизирует события чата: шаги анкет и прямые действия
type BotHandler struct {
	transport    Transport
	groups       services.GroupService
	participants services.ParticipantService
	forms        *conversation.Engine
	adminID      int64
	chunkSize    int
	locks        *keyedMutex
	log          *slog.Logger
}

// NewBotHandler создает обработчик событий бота. adminID = 0 разрешает
// любому пользователю создавать собственные группы.
func NewBotHandler(
	transport Transport,
	groups services.GroupService,
	participants services.ParticipantService,
	forms *conversation.Engine,
	adminID int64,
	chunkSize int,
	log *slog.Logger,
) *BotHandler {
	if chunkSize <= 0 {
		chunkSize = services.DefaultChunkSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &BotHandler{
		transport:    transport,
		groups:       groups,
		participants: participants,
		forms:        forms,
		adminID:      adminID,
		chunkSize:    chunkSize,
		locks:        newKeyedMutex(),
		log:          log,
	}
}

// HandleEvent обрабатывает одно событие. События одного пользователя
// выполняются строго по очереди.
func (h *BotHandler) HandleEvent(ctx context.Context, ev telegram.Event) {
	unlock := h.locks.Lock(ev.UserID)
	defer unlock()

	if ev.IsCallback() {
		h.handleCallback(ctx, ev)
		return
	}
	h.handleText(ctx, ev)
}

func (h *BotHandler) handleText(ctx context.Context, ev telegram.Event) {
	cmd, args, ok := ParseCommand(ev.Text)
	if !ok {
		if reply, active := h.forms.Handle(ev.UserID, ev.Text); active {
			h.renderForm(ctx, ev, reply)
			return
		}
		h.sendWelcome(ev)
		return
	}

	h.log.Debug("command received", "telegram_id", ev.UserID, "command", cmd)

	switch cmd {
	case CmdStart:
		h.start(ctx, ev, args)
	case CmdHelp:
		h.sendHelp(ev)
	case CmdCancel:
		if h.forms.Cancel(ev.UserID) {
			h.send(ev.ChatID, "❌ Анкета отменена. Данные не сохранены.")
			return
		}
		h.send(ev.ChatID, "Нечего отменять.")
	case CmdNewGroup:
		h.beginCreateGroup(ev)
	case CmdMyGroups:
		h.showGroups(ctx, ev)
	case CmdStats:
		h.showStats(ctx, ev)
	case CmdSent:
		h.markSent(ctx, ev, args)
	case CmdReceived:
		a, err := h.participants.MarkGiftReceived(ctx, ev.UserID, args)
		if err != nil {
			h.replyError(ev, err)
			return
		}
		h.send(ev.ChatID, fmt.Sprintf("🎉 Отлично! Отметили, что подарок в группе %s получен.", a.GroupID))
	case CmdApprove, CmdReject:
		id, err := uuid.Parse(args)
		if err != nil {
			h.send(ev.ChatID, fmt.Sprintf("Формат: /%s <id участника>", cmd))
			return
		}
		h.decide(ctx, ev, id, cmd == CmdApprove)
	}
}

func (h *BotHandler) handleCallback(ctx context.Context, ev telegram.Event) {
	if err := h.transport.AnswerCallback(ev.CallbackID, ""); err != nil {
		h.log.Warn("failed to answer callback", "telegram_id", ev.UserID, "error", err)
	}

	action, arg, ok := DecodeAction(ev.Data)
	if !ok {
		h.log.Warn("unknown callback", "telegram_id", ev.UserID, "data", ev.Data)
		return
	}

	switch action {
	case ActFormConfirm, ActFormCancel:
		input := conversation.InputConfirm
		if action == ActFormCancel {
			input = conversation.InputCancel
		}
		reply, active := h.forms.Handle(ev.UserID, input)
		if !active {
			h.send(ev.ChatID, "⌛ Анкета не найдена или устарела. Начните заново.")
			return
		}
		h.renderForm(ctx, ev, reply)
	case ActNewGroup:
		h.beginCreateGroup(ev)
	case ActGroups:
		h.showGroups(ctx, ev)
	case ActGroup:
		h.showGroup(ctx, ev, arg)
	case ActMembers:
		h.showMembers(ctx, ev, arg)
	case ActDrawAsk:
		h.askDraw(ctx, ev, arg)
	case ActDraw:
		h.runDraw(ctx, ev, arg)
	case ActReport:
		h.sendFullReport(ctx, ev, arg)
	case ActShipments:
		h.showShipments(ctx, ev, arg)
	case ActDeleteAsk:
		h.askDelete(ctx, ev, arg)
	case ActDelete:
		h.deleteGroup(ctx, ev, arg)
	case ActStats:
		h.showStats(ctx, ev)
	case ActApprove, ActReject:
		id, err := uuid.Parse(arg)
		if err != nil {
			return
		}
		h.decide(ctx, ev, id, action == ActApprove)
	case ActHelp:
		h.sendHelp(ev)
	}
}

func (h *BotHandler) start(ctx context.Context, ev telegram.Event, args string) {
	if args == "" {
		if h.canOrganize(ev.UserID) {
			h.sendMainMenu(ev)
			return
		}
		h.sendWelcome(ev)
		return
	}

	groupID, ok := h.groups.ResolveInvite(args)
	if !ok {
		h.send(ev.ChatID, "❌ Неверный код группы.")
		return
	}
	g, err := h.participants.CheckEligibility(ctx, groupID, ev.UserID)
	if err != nil {
		h.replyError(ev, err)
		return
	}

	reply, err := h.forms.Start(ev.UserID, conversation.KindRegisterParticipant, g.ID)
	if err != nil {
		h.log.Error("failed to start registration", "group_id", g.ID, "error", err)
		return
	}
	h.send(ev.ChatID, groupIntro(g)+"\n\n"+reply.Prompt)
}

func (h *BotHandler) beginCreateGroup(ev telegram.Event) {
	if !h.canOrganize(ev.UserID) {
		h.replyError(ev, services.ErrForbidden)
		return
	}
	reply, err := h.forms.Start(ev.UserID, conversation.KindCreateGroup, "")
	if err != nil {
		h.log.Error("failed to start group form", "telegram_id", ev.UserID, "error", err)
		return
	}
	h.send(ev.ChatID, "➕ СОЗДАНИЕ НОВОЙ ГРУППЫ\n\n"+reply.Prompt+"\n\n(/cancel - отменить)")
}

func (h *BotHandler) renderForm(ctx context.Context, ev telegram.Event, reply conversation.Reply) {
	switch {
	case reply.Cancelled:
		h.send(ev.ChatID, "❌ Отменено. Данные не сохранены.")
	case reply.Completed != nil:
		h.completeForm(ctx, ev, reply.Completed)
	case reply.Validation != nil:
		h.send(ev.ChatID, "⚠️ "+reply.Validation.Message+"\n\n"+reply.Prompt)
	case reply.AwaitConfirm:
		h.menu(ev.ChatID, reply.Summary+"\n\n"+reply.Prompt, telegram.Menu{{
			{Text: "✅ Подтвердить", Data: EncodeAction(ActFormConfirm, "")},
			{Text: "❌ Отменить", Data: EncodeAction(ActFormCancel, "")},
		}})
	default:
		h.send(ev.ChatID, reply.Prompt)
	}
}

func (h *BotHandler) completeForm(ctx context.Context, ev telegram.Event, c *conversation.Completed) {
	switch c.Kind {
	case conversation.KindCreateGroup:
		g, err := h.groups.CreateGroup(ctx, c.Owner, *c.Group)
		if err != nil {
			h.replyError(ev, err)
			return
		}
		text := fmt.Sprintf("✅ Группа '%s' создана!\n\n🔑 Код группы: %s\n🔗 Ссылка для участников:\n%s",
			g.Name, g.ID, h.groups.InviteLink(g.ID))
		h.menu(ev.ChatID, text, groupMenu(g))

	case conversation.KindRegisterParticipant:
		p, err := h.participants.Register(ctx, c.GroupID, c.Owner, ev.Username, *c.Participant)
		if err != nil {
			h.replyError(ev, err)
			return
		}
		detail, err := h.groups.GroupDetail(ctx, p.GroupID)
		if err != nil {
			h.replyError(ev, err)
			return
		}
		if !p.IsConfirmed() {
			h.send(ev.ChatID, fmt.Sprintf("⏳ Заявка в группу '%s' отправлена организатору.\nМы сообщим, когда её подтвердят.",
				detail.Group.Name))
			return
		}
		h.send(ev.ChatID, fmt.Sprintf("✅ ВЫ УСПЕШНО ЗАРЕГИСТРИРОВАНЫ!\n\nГруппа: %s\nВаш никнейм: %s\n👥 Участников: %d/%d\n\nОжидайте начала жеребьёвки!",
			detail.Group.Name, p.Nickname, detail.Confirmed, detail.Group.MaxParticipants))
	}
}

func (h *BotHandler) showGroups(ctx context.Context, ev telegram.Event) {
	if !h.canOrganize(ev.UserID) {
		h.replyError(ev, services.ErrForbidden)
		return
	}
	list, err := h.groups.ListGroups(ctx, ev.UserID)
	if err != nil {
		h.replyError(ev, err)
		return
	}
	if len(list) == 0 {
		h.menu(ev.ChatID, "У вас пока нет групп.", telegram.Menu{
			{{Text: "➕ Создать группу", Data: EncodeAction(ActNewGroup, "")}},
		})
		return
	}

	var b strings.Builder
	b.WriteString("📋 ВАШИ ГРУППЫ:\n")
	menu := make(telegram.Menu, 0, len(list)+1)
	for _, s := range list {
		status := "🟢 регистрация"
		if !s.Group.IsOpen() {
			status = "🎲 разыграна"
		}
		fmt.Fprintf(&b, "\n• %s (%s): %d/%d, %s", s.Group.Name, s.Group.ID, s.Confirmed, s.Group.MaxParticipants, status)
		menu = append(menu, []telegram.Button{{Text: s.Group.Name, Data: EncodeAction(ActGroup, s.Group.ID)}})
	}
	menu = append(menu, []telegram.Button{{Text: "➕ Создать группу", Data: EncodeAction(ActNewGroup, "")}})
	h.menu(ev.ChatID, b.String(), menu)
}

func (h *BotHandler) showGroup(ctx context.Context, ev telegram.Event, id string) {
	if _, err := h.ownedGroup(ctx, ev.UserID, id); err != nil {
		h.replyError(ev, err)
		return
	}
	d, err := h.groups.GroupDetail(ctx, id)
	if err != nil {
		h.replyError(ev, err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎄 ГРУППА: %s\n\n", d.Group.Name)
	fmt.Fprintf(&b, "🔑 Код: %s\n", d.Group.ID)
	fmt.Fprintf(&b, "📞 Организатор: %s\n", d.Group.OrganizerContact)
	fmt.Fprintf(&b, "💰 Бюджет: %s\n", d.Group.Budget)
	fmt.Fprintf(&b, "👥 Участников: %d/%d", d.Confirmed, d.Group.MaxParticipants)
	if d.Pending > 0 {
		fmt.Fprintf(&b, " (+%d ожидают)", d.Pending)
	}
	fmt.Fprintf(&b, "\n📅 Регистрация до: %s\n", d.Group.RegDeadline)
	if d.Group.SendDeadline != "" {
		fmt.Fprintf(&b, "📦 Отправить подарок до: %s\n", d.Group.SendDeadline)
	}
	fmt.Fprintf(&b, "🔗 %s\n\n", d.InviteLink)
	if d.Pairs > 0 {
		fmt.Fprintf(&b, "🎲 Жеребьёвка проведена: %d пар", d.Pairs)
	} else {
		b.WriteString("🎲 Жеребьёвка ещё не проводилась")
	}
	h.menu(ev.ChatID, b.String(), groupMenu(d.Group))
}

func (h *BotHandler) showMembers(ctx context.Context, ev telegram.Event, id string) {
	g, err := h.ownedGroup(ctx, ev.UserID, id)
	if err != nil {
		h.replyError(ev, err)
		return
	}
	ps, err := h.participants.ListParticipants(ctx, g.ID)
	if err != nil {
		h.replyError(ev, err)
		return
	}
	h.sendChunks(ev.ChatID, services.RosterReport(g, ps))

	// заявки, ожидающие решения, получают свои кнопки
	for _, p := range ps {
		if p.IsConfirmed() || !g.IsOpen() {
			continue
		}
		h.menu(ev.ChatID, fmt.Sprintf("⏳ %s (%s)", p.FullName, p.Nickname), telegram.Menu{{
			{Text: "✅ Подтвердить", Data: EncodeAction(ActApprove, p.ID.String())},
			{Text: "❌ Отклонить", Data: EncodeAction(ActReject, p.ID.String())},
		}})
	}
	h.menu(ev.ChatID, "⬅️", telegram.Menu{{{Text: "⬅️ Назад", Data: EncodeAction(ActGroup, g.ID)}}})
}

func (h *BotHandler) askDraw(ctx context.Context, ev telegram.Event, id string) {
	g, err := h.ownedGroup(ctx, ev.UserID, id)
	if err != nil {
		h.replyError(ev, err)
		return
	}
	if !g.IsOpen() {
		h.replyError(ev, services.ErrGroupAlreadyDrawn)
		return
	}
	n, err := h.participants.CountConfirmed(ctx, g.ID)
	if err != nil {
		h.replyError(ev, err)
		return
	}
	if n < models.MinParticipants {
		h.send(ev.ChatID, fmt.Sprintf("❌ Невозможно запустить жеребьёвку!\nНужно минимум %d подтверждённых участника, а сейчас %d.",
			models.MinParticipants, n))
		return
	}

	text := fmt.Sprintf("🎲 ПОДТВЕРЖДЕНИЕ ЖЕРЕБЬЁВКИ\n\nГруппа: %s\nУчастников: %d\n\n"+
		"После запуска:\n1. Все участники получат своих получателей\n2. Вам придёт полный отчёт в личку\n3. Отменить будет невозможно\n\n"+
		"Запускаем жеребьёвку?", g.Name, n)
	h.menu(ev.ChatID, text, telegram.Menu{
		{{Text: "✅ Да, запустить", Data: EncodeAction(ActDraw, g.ID)}},
		{{Text: "❌ Нет, отмена", Data: EncodeAction(ActGroup, g.ID)}},
	})
}

func (h *BotHandler) runDraw(ctx context.Context, ev telegram.Event, id string) {
	if _, err := h.ownedGroup(ctx, ev.UserID, id); err != nil {
		h.replyError(ev, err)
		return
	}
	out, err := h.groups.CompleteDraw(ctx, id)
	if err != nil {
		h.replyError(ev, err)
		return
	}

	text := fmt.Sprintf("✅ Жеребьёвка в группе '%s' проведена!\n\nСообщений отправлено: %d/%d",
		out.Group.Name, out.Delivery.Succeeded, out.Delivery.Attempted)
	if len(out.Delivery.Failures) > 0 {
		text += "\n⚠️ Не удалось написать:"
		for _, f := range out.Delivery.Failures {
			text += "\n• " + f.Name
		}
	}
	text += "\n\nПолный отчёт отправлен вам в личку."
	h.menu(ev.ChatID, text, telegram.Menu{{{Text: "⬅️ К группе", Data: EncodeAction(ActGroup, out.Group.ID)}}})
}

func (h *BotHandler) sendFullReport(ctx context.Context, ev telegram.Event, id string) {
	g, err := h.ownedGroup(ctx, ev.UserID, id)
	if err != nil {
		h.replyError(ev, err)
		return
	}
	if _, err := h.groups.SendFullReport(ctx, g.ID, ev.ChatID); err != nil {
		h.log.Error("failed to send full report", "group_id", g.ID, "error", err)
		h.replyError(ev, err)
	}
}

func (h *BotHandler) showShipments(ctx context.Context, ev telegram.Event, id string) {
	g, err := h.ownedGroup(ctx, ev.UserID, id)
	if err != nil {
		h.replyError(ev, err)
		return
	}
	report, err := h.groups.ShipmentStatus(ctx, g.ID)
	if err != nil {
		h.replyError(ev, err)
		return
	}
	h.sendChunks(ev.ChatID, report)
}

func (h *BotHandler) askDelete(ctx context.Context, ev telegram.Event, id string) {
	g, err := h.ownedGroup(ctx, ev.UserID, id)
	if err != nil {
		h.replyError(ev, err)
		return
	}
	h.menu(ev.ChatID, fmt.Sprintf("🗑 Удалить группу '%s' вместе со всеми участниками и парами?", g.Name), telegram.Menu{
		{{Text: "🗑 Да, удалить", Data: EncodeAction(ActDelete, g.ID)}},
		{{Text: "⬅️ Нет", Data: EncodeAction(ActGroup, g.ID)}},
	})
}

func (h *BotHandler) deleteGroup(ctx context.Context, ev telegram.Event, id string) {
	g, err := h.ownedGroup(ctx, ev.UserID, id)
	if err != nil {
		h.replyError(ev, err)
		return
	}
	if err := h.groups.DeleteGroup(ctx, g.ID); err != nil {
		h.replyError(ev, err)
		return
	}
	h.menu(ev.ChatID, fmt.Sprintf("✅ Группа '%s' удалена.", g.Name), telegram.Menu{
		{{Text: "📋 Мои группы", Data: EncodeAction(ActGroups, "")}},
	})
}

func (h *BotHandler) showStats(ctx context.Context, ev telegram.Event) {
	if !h.canOrganize(ev.UserID) {
		h.replyError(ev, services.ErrForbidden)
		return
	}
	st, err := h.groups.Stats(ctx)
	if err != nil {
		h.replyError(ev, err)
		return
	}
	h.send(ev.ChatID, fmt.Sprintf("📊 СТАТИСТИКА\n\n🟢 Открытых групп: %d\n🎲 Разыгранных групп: %d\n👥 Участников: %d\n🔀 Пар: %d\n🚚 Подарков отправлено: %d\n⚠️ Недоставленных сообщений: %d",
		st.OpenGroups, st.DrawnGroups, st.Participants, st.Assignments, st.GiftsSent, st.FailedNotifications))
}

func (h *BotHandler) decide(ctx context.Context, ev telegram.Event, id uuid.UUID, approve bool) {
	p, err := h.participants.GetParticipant(ctx, id)
	if errors.Is(err, services.ErrParticipantNotFound) {
		h.send(ev.ChatID, "Заявка уже обработана.")
		return
	}
	if err != nil {
		h.replyError(ev, err)
		return
	}
	if _, err := h.ownedGroup(ctx, ev.UserID, p.GroupID); err != nil {
		h.replyError(ev, err)
		return
	}

	var changed bool
	if approve {
		_, changed, err = h.participants.Confirm(ctx, id)
	} else {
		_, changed, err = h.participants.Reject(ctx, id)
	}
	switch {
	case err != nil:
		h.replyError(ev, err)
	case !changed:
		h.send(ev.ChatID, "Заявка уже обработана.")
	case approve:
		h.send(ev.ChatID, fmt.Sprintf("✅ %s подтверждён(а).", p.FullName))
	default:
		h.send(ev.ChatID, fmt.Sprintf("❌ Заявка %s отклонена.", p.FullName))
	}
}

// markSent понимает "/sent", "/sent КОД", "/sent ТРЕК" и "/sent КОД ТРЕК"
func (h *BotHandler) markSent(ctx context.Context, ev telegram.Event, args string) {
	fields := strings.Fields(args)
	var (
		a   *models.Assignment
		err error
	)
	switch len(fields) {
	case 0:
		a, err = h.participants.MarkGiftSent(ctx, ev.UserID, "", "")
	case 1:
		a, err = h.participants.MarkGiftSent(ctx, ev.UserID, fields[0], "")
		if errors.Is(err, services.ErrAssignmentNotFound) {
			a, err = h.participants.MarkGiftSent(ctx, ev.UserID, "", fields[0])
		}
	default:
		a, err = h.participants.MarkGiftSent(ctx, ev.UserID, fields[0], strings.Join(fields[1:], " "))
	}
	if err != nil {
		h.replyError(ev, err)
		return
	}
	h.send(ev.ChatID, fmt.Sprintf("🚚 Отметили отправку подарка в группе %s. Получатель получит уведомление.", a.GroupID))
}

// ownedGroup возвращает группу, если пользователь её организатор
func (h *BotHandler) ownedGroup(ctx context.Context, userID int64, id string) (*models.Group, error) {
	g, err := h.groups.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(g, userID, h.adminID) {
		return nil, services.ErrForbidden
	}
	return g, nil
}

func (h *BotHandler) canOrganize(userID int64) bool {
	return h.adminID == 0 || userID == h.adminID
}

func (h *BotHandler) sendMainMenu(ev telegram.Event) {
	h.menu(ev.ChatID, "🎅 Тайный Санта\n\nВыберите действие:", telegram.Menu{
		{{Text: "➕ Создать группу", Data: EncodeAction(ActNewGroup, "")}},
		{{Text: "📋 Мои группы", Data: EncodeAction(ActGroups, "")}},
		{{Text: "📊 Статистика", Data: EncodeAction(ActStats, "")}},
		{{Text: "ℹ️ Помощь", Data: EncodeAction(ActHelp, "")}},
	})
}

func (h *BotHandler) sendWelcome(ev telegram.Event) {
	name := ev.FirstName
	if name == "" {
		name = "друг"
	}
	h.send(ev.ChatID, fmt.Sprintf("🎅 Привет, %s! Это бот для игры «Тайный Санта».\n\n"+
		"Чтобы участвовать, откройте ссылку-приглашение от организатора или отправьте /start <код группы>.", name))
}

func (h *BotHandler) sendHelp(ev telegram.Event) {
	text := "ℹ️ КОМАНДЫ\n\n" +
		"/start <код> - вступить в группу\n" +
		"/sent [код] [трек] - я отправил подарок\n" +
		"/received [код] - я получил подарок\n" +
		"/cancel - отменить анкету"
	if h.canOrganize(ev.UserID) {
		text += "\n\nДля организатора:\n" +
			"/newgroup - создать группу\n" +
			"/mygroups - мои группы\n" +
			"/stats - статистика\n" +
			"/approve <id>, /reject <id> - решение по заявке"
	}
	h.send(ev.ChatID, text)
}

func groupIntro(g *models.Group) string {
	text := fmt.Sprintf("🎄 Регистрация в группу '%s'\n\n💰 Бюджет: %s\n📅 Регистрация до: %s\n📞 Организатор: %s",
		g.Name, g.Budget, g.RegDeadline, g.OrganizerContact)
	if g.SendDeadline != "" {
		text += "\n📦 Отправить подарок до: " + g.SendDeadline
	}
	return text
}

func groupMenu(g *models.Group) telegram.Menu {
	menu := telegram.Menu{
		{{Text: "👀 Список участников", Data: EncodeAction(ActMembers, g.ID)}},
	}
	if g.IsOpen() {
		menu = append(menu, []telegram.Button{{Text: "🎲 Запустить жеребьёвку", Data: EncodeAction(ActDrawAsk, g.ID)}})
	} else {
		menu = append(menu, []telegram.Button{{Text: "📦 Статус подарков", Data: EncodeAction(ActShipments, g.ID)}})
	}
	return append(menu,
		[]telegram.Button{{Text: "📊 Полный отчёт", Data: EncodeAction(ActReport, g.ID)}},
		[]telegram.Button{{Text: "🗑 Удалить группу", Data: EncodeAction(ActDeleteAsk, g.ID)}},
		[]telegram.Button{{Text: "⬅️ Назад к списку", Data: EncodeAction(ActGroups, "")}},
	)
}

func (h *BotHandler) replyError(ev telegram.Event, err error) {
	if services.KindOf(err) == services.KindStore || services.KindOf(err) == services.KindUnknown {
		h.log.Error("operation failed", "telegram_id", ev.UserID, "error", err)
	}
	h.send(ev.ChatID, services.UserMessage(err))
}

func (h *BotHandler) sendChunks(chatID int64, report *services.Report) {
	for _, chunk := range report.Chunks(h.chunkSize) {
		if err := h.transport.SendMessage(chatID, chunk); err != nil {
			h.log.Warn("failed to send message", "telegram_id", chatID, "error", err)
			return
		}
	}
}

func (h *BotHandler) send(chatID int64, text string) {
	if err := h.transport.SendMessage(chatID, text); err != nil {
		h.log.Warn("failed to send message", "telegram_id", chatID, "error", err)
	}
}

func (h *BotHandler) menu(chatID int64, text string, menu telegram.Menu) {
	if err := h.transport.SendMenu(chatID, text, menu); err != nil {
		h.log.Warn("failed to send menu", "telegram_id", chatID, "error", err)
	}
}
