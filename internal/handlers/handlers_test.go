package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftbot/internal/conversation"
	"giftbot/internal/draw"
	"giftbot/internal/models"
	"giftbot/internal/repository"
	"giftbot/internal/services"
	"giftbot/pkg/database"
	"giftbot/pkg/telegram"
)

const (
	organizerID int64 = 500
	jwtSecret         = "test-secret"
)

type outbound struct {
	chatID int64
	text   string
	menu   telegram.Menu
}

type fakeTransport struct {
	mu       sync.Mutex
	msgs     []outbound
	answered int
}

func (f *fakeTransport) SendMessage(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, outbound{chatID: chatID, text: text})
	return nil
}

func (f *fakeTransport) SendMenu(chatID int64, text string, menu telegram.Menu) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, outbound{chatID: chatID, text: text, menu: menu})
	return nil
}

func (f *fakeTransport) AnswerCallback(string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered++
	return nil
}

func (f *fakeTransport) last(chatID int64) outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if f.msgs[i].chatID == chatID {
			return f.msgs[i]
		}
	}
	return outbound{}
}

func (f *fakeTransport) all(chatID int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var b strings.Builder
	for _, m := range f.msgs {
		if m.chatID == chatID {
			b.WriteString(m.text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// button ищет в последних сообщениях кнопку с тегом action
func (f *fakeTransport) button(chatID int64, action Action) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if f.msgs[i].chatID != chatID {
			continue
		}
		for _, row := range f.msgs[i].menu {
			for _, b := range row {
				if a, _, ok := DecodeAction(b.Data); ok && a == action {
					return b.Data
				}
			}
		}
	}
	return ""
}

type env struct {
	bot          *BotHandler
	transport    *fakeTransport
	groups       services.GroupService
	participants services.ParticipantService
	router       *gin.Engine
	auth         *services.AuthService
}

func newEnv(t *testing.T, autoConfirm bool) *env {
	t.Helper()
	return newEnvWithAdmin(t, autoConfirm, organizerID)
}

// newEnvWithAdmin собирает окружение; adminID 0 разрешает группы любому пользователю
func newEnvWithAdmin(t *testing.T, autoConfirm bool, adminID int64) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	transport := &fakeTransport{}

	groupRepo := repository.NewGroupRepository(db.DB)
	participantRepo := repository.NewParticipantRepository(db.DB)
	assignmentRepo := repository.NewAssignmentRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)

	engine, err := draw.NewSeededEngine(draw.DefaultMaxAttempts)
	require.NoError(t, err)

	notifier := services.NewNotificationService(notificationRepo, transport, services.DefaultChunkSize, 4, log)
	groups := services.NewGroupService(groupRepo, participantRepo, assignmentRepo, notificationRepo,
		notifier, engine, nil, "https://t.me/santa_bot", log)
	participants := services.NewParticipantService(groupRepo, participantRepo, assignmentRepo,
		notifier, autoConfirm, false, log)
	auth := services.NewAuthService(jwtSecret, time.Hour, adminID, "bot-token")

	forms := conversation.NewEngine(conversation.NewStore(time.Hour))
	bot := NewBotHandler(transport, groups, participants, forms, adminID, 0, log)

	router := NewRouter(RouterDeps{
		Webhook:     NewWebhookHandler(bot, log),
		Groups:      NewGroupHandler(groups, participants, notifier, adminID),
		Auth:        NewAuthHandler(auth),
		AuthService: auth,
		Ping:        db.Ping,
		Log:         log,
	})

	return &env{bot: bot, transport: transport, groups: groups, participants: participants, router: router, auth: auth}
}

func (e *env) say(userID int64, text string) {
	e.bot.HandleEvent(context.Background(), telegram.Event{
		ChatID: userID, UserID: userID, Username: "user" + strings.Repeat("x", int(userID%3)), Text: text,
	})
}

func (e *env) press(userID int64, data string) {
	e.bot.HandleEvent(context.Background(), telegram.Event{
		ChatID: userID, UserID: userID, CallbackID: "cb", Data: data,
	})
}

// createGroup проходит анкету организатора и возвращает код группы
func (e *env) createGroup(t *testing.T, limit string) string {
	t.Helper()
	return e.createGroupAs(t, organizerID, limit)
}

func (e *env) createGroupAs(t *testing.T, owner int64, limit string) string {
	t.Helper()
	e.say(owner, "/newgroup")
	for _, answer := range []string{"Офис", "@org", "1000 руб", limit, "20 декабря", "skip"} {
		e.say(owner, answer)
	}
	confirm := e.transport.button(owner, ActFormConfirm)
	require.NotEmpty(t, confirm)
	e.press(owner, confirm)

	list, err := e.groups.ListGroups(context.Background(), owner)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0].Group.ID
}

func (e *env) registerUser(t *testing.T, groupID string, userID int64, name string) {
	t.Helper()
	e.say(userID, "/start "+groupID)
	for _, answer := range []string{name + " Иванов", name, "ПВЗ на Ленина", "пропустить", "книги"} {
		e.say(userID, answer)
	}
	e.say(userID, "да")
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		cmd  Command
		args string
		ok   bool
	}{
		{"/start", CmdStart, "", true},
		{"/start ABCD2345", CmdStart, "ABCD2345", true},
		{"/Sent@santa_bot G1 RB123", CmdSent, "G1 RB123", true},
		{"/confirm", "", "", false},
		{"hello", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, args, ok := ParseCommand(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestActionCodec(t *testing.T) {
	data := EncodeAction(ActDraw, "ABCD2345")
	a, arg, ok := DecodeAction(data)
	require.True(t, ok)
	assert.Equal(t, ActDraw, a)
	assert.Equal(t, "ABCD2345", arg)

	a, arg, ok = DecodeAction(EncodeAction(ActGroups, ""))
	require.True(t, ok)
	assert.Equal(t, ActGroups, a)
	assert.Empty(t, arg)

	for _, bad := range []string{"", "draw", "groups:X", "unknown:1", strings.Repeat("a", 65)} {
		_, _, ok := DecodeAction(bad)
		assert.False(t, ok, bad)
	}
}

func TestBot_CreateGroupRepromptsInvalidNumber(t *testing.T) {
	e := newEnv(t, true)
	e.say(organizerID, "/newgroup")
	e.say(organizerID, "Офис")
	e.say(organizerID, "@org")
	e.say(organizerID, "1000")
	e.say(organizerID, "много")
	assert.Contains(t, e.transport.last(organizerID).text, "Введите число!")
	e.say(organizerID, "2")
	assert.Contains(t, e.transport.last(organizerID).text, "от 3 до 100")
	e.say(organizerID, "5")
	e.say(organizerID, "20 декабря")
	e.say(organizerID, "-")

	summary := e.transport.last(organizerID)
	assert.NotEmpty(t, summary.menu)
	e.press(organizerID, e.transport.button(organizerID, ActFormConfirm))

	msg := e.transport.last(organizerID)
	assert.Contains(t, msg.text, "Группа 'Офис' создана!")
	assert.Contains(t, msg.text, "https://t.me/santa_bot?start=")
	assert.Equal(t, 1, e.transport.answered)
}

func TestBot_NonOrganizerCannotCreateGroup(t *testing.T) {
	e := newEnv(t, true)
	e.say(7, "/newgroup")
	assert.Contains(t, e.transport.last(7).text, "нет доступа")

	e.say(7, "привет")
	assert.Contains(t, e.transport.last(7).text, "Тайный Санта")
}

func TestBot_RegistrationAndDraw(t *testing.T) {
	e := newEnv(t, true)
	groupID := e.createGroup(t, "3")

	e.registerUser(t, groupID, 1, "Anna")
	assert.Contains(t, e.transport.last(1).text, "ВЫ УСПЕШНО ЗАРЕГИСТРИРОВАНЫ")
	assert.Contains(t, e.transport.last(1).text, "1/3")

	e.say(1, "/start "+groupID)
	assert.Contains(t, e.transport.last(1).text, "уже зарегистрированы")

	e.registerUser(t, groupID, 2, "Boris")

	// двое подтвержденных: жеребьёвка не запускается
	e.press(organizerID, EncodeAction(ActDrawAsk, groupID))
	assert.Contains(t, e.transport.last(organizerID).text, "Невозможно запустить")

	e.registerUser(t, groupID, 3, "Clara")
	e.say(4, "/start "+groupID)
	assert.Contains(t, e.transport.last(4).text, "нет свободных мест")

	// чужой пользователь не может запустить жеребьёвку
	e.press(1, EncodeAction(ActDraw, groupID))
	assert.Contains(t, e.transport.last(1).text, "нет доступа")

	e.press(organizerID, EncodeAction(ActDrawAsk, groupID))
	drawData := e.transport.button(organizerID, ActDraw)
	require.Equal(t, EncodeAction(ActDraw, groupID), drawData)
	e.press(organizerID, drawData)
	assert.Contains(t, e.transport.all(organizerID), "Сообщений отправлено: 3/3")

	for _, uid := range []int64{1, 2, 3} {
		assert.Contains(t, e.transport.all(uid), "ВЫ ТАЙНЫЙ САНТА ДЛЯ")
	}

	e.press(organizerID, drawData)
	assert.Contains(t, e.transport.last(organizerID).text, "уже проведена")

	e.say(1, "/sent RB-1")
	assert.Contains(t, e.transport.last(1).text, "Отметили отправку")
}

func TestBot_CancelDiscardsForm(t *testing.T) {
	e := newEnv(t, true)
	groupID := e.createGroup(t, "5")

	e.say(9, "/start "+groupID)
	e.say(9, "Ivan")
	e.say(9, "/cancel")
	assert.Contains(t, e.transport.last(9).text, "Анкета отменена")

	// неизвестный ответ на подтверждение отменяет анкету
	e.say(9, "/start "+groupID)
	for _, answer := range []string{"Ivan", "santa", "ПВЗ", "skip", "skip"} {
		e.say(9, answer)
	}
	e.say(9, "может быть")
	assert.Contains(t, e.transport.last(9).text, "Отменено")

	n, err := e.groups.GroupDetail(context.Background(), groupID)
	require.NoError(t, err)
	assert.Zero(t, n.Confirmed)
}

func TestBot_ManualApproval(t *testing.T) {
	e := newEnv(t, false)
	groupID := e.createGroup(t, "5")

	e.registerUser(t, groupID, 11, "Anna")
	assert.Contains(t, e.transport.last(11).text, "отправлена организатору")

	alert := e.transport.all(organizerID)
	i := strings.Index(alert, "/approve ")
	require.GreaterOrEqual(t, i, 0)
	id := strings.Fields(alert[i+len("/approve "):])[0]

	e.say(organizerID, "/approve "+id)
	assert.Contains(t, e.transport.last(organizerID).text, "подтверждён")
	assert.Contains(t, e.transport.last(11).text, "подтвердил ваше участие")

	e.say(organizerID, "/approve "+id)
	assert.Contains(t, e.transport.last(organizerID).text, "уже обработана")
}

func (e *env) request(t *testing.T, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestREST_AuthAndDraw(t *testing.T) {
	e := newEnv(t, true)
	groupID := e.createGroup(t, "5")

	w := e.request(t, http.MethodGet, "/api/groups", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := e.auth.IssueToken(organizerID)
	require.NoError(t, err)

	w = e.request(t, http.MethodGet, "/api/groups", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), groupID)

	w = e.request(t, http.MethodPost, "/api/groups/"+groupID+"/draw", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	for i, name := range []string{"Anna", "Boris", "Clara"} {
		e.registerUser(t, groupID, int64(i+1), name)
	}
	w = e.request(t, http.MethodPost, "/api/groups/"+groupID+"/draw", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Pairs []pairView `json:"pairs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Pairs, 3)

	w = e.request(t, http.MethodGet, "/api/groups/"+groupID+"/report", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ПАРЫ ПОСЛЕ ЖЕРЕБЬЁВКИ")

	w = e.request(t, http.MethodGet, "/api/groups/NOPE/pairs", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.request(t, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"drawn_groups":1`)

	w = e.request(t, http.MethodDelete, "/api/groups/"+groupID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestREST_OtherOrganizerForbidden(t *testing.T) {
	e := newEnvWithAdmin(t, true, 0)
	groupID := e.createGroupAs(t, 111, "5")
	for i, name := range []string{"Anna", "Boris", "Clara"} {
		e.registerUser(t, groupID, int64(i+1), name)
	}

	owner, err := e.auth.IssueToken(111)
	require.NoError(t, err)
	stranger, err := e.auth.IssueToken(222)
	require.NoError(t, err)

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/groups/" + groupID},
		{http.MethodDelete, "/api/groups/" + groupID},
		{http.MethodPost, "/api/groups/" + groupID + "/draw"},
		{http.MethodGet, "/api/groups/" + groupID + "/pairs"},
		{http.MethodGet, "/api/groups/" + groupID + "/report"},
	} {
		w := e.request(t, tt.method, tt.path, stranger, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tt.method, tt.path)
	}

	g, err := e.groups.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusOpen, g.Status)

	w := e.request(t, http.MethodPost, "/api/groups/"+groupID+"/draw", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.request(t, http.MethodGet, "/api/groups/"+groupID+"/pairs", owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.request(t, http.MethodDelete, "/api/groups/"+groupID, stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestREST_ConfirmRequiresGroupOwner(t *testing.T) {
	e := newEnvWithAdmin(t, false, 0)
	groupID := e.createGroupAs(t, 111, "5")
	e.registerUser(t, groupID, 1, "Anna")

	g, err := e.groups.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	ps, err := e.participants.ListParticipants(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	path := "/api/participants/" + ps[0].ID.String() + "/confirm"

	stranger, err := e.auth.IssueToken(222)
	require.NoError(t, err)
	w := e.request(t, http.MethodPost, path, stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	owner, err := e.auth.IssueToken(111)
	require.NoError(t, err)
	w = e.request(t, http.MethodPost, path, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestREST_HealthAndWebhook(t *testing.T) {
	e := newEnv(t, true)

	w := e.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	update := `{"update_id":1,"message":{"message_id":1,"from":{"id":77,"first_name":"Guest"},
		"chat":{"id":77,"type":"private"},"date":1700000000,"text":"/help"}}`
	w = e.request(t, http.MethodPost, "/webhook", "", strings.NewReader(update))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, e.transport.last(77).text, "КОМАНДЫ")

	w = e.request(t, http.MethodPost, "/webhook", "", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
