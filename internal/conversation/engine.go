package conversation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"giftbot/internal/models"
)

// Ответы на шаге подтверждения. Кнопки бота присылают те же токены.
const (
	InputConfirm = "confirm"
	InputCancel  = "cancel"
)

var confirmWords = []string{InputConfirm, "да", "yes", "/confirm"}

// ConfirmPrompt задается после итоговой сводки
const ConfirmPrompt = "Подтвердите или отмените."

// Session - состояние незавершенной анкеты одного пользователя
type Session struct {
	Kind       Kind
	Owner      int64
	GroupID    string
	Step       int
	Values     map[string]string
	Confirming bool
	UpdatedAt  time.Time
}

func (s *Session) clone() *Session {
	c := *s
	c.Values = make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		c.Values[k] = v
	}
	return &c
}

// Completed - собранный черновик после подтверждения
type Completed struct {
	Kind        Kind
	Owner       int64
	GroupID     string
	Group       *models.GroupDraft
	Participant *models.ParticipantDraft
}

// ValidationError описывает некорректный ответ на шаге анкеты
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Reply - результат одного шага анкеты
type Reply struct {
	// Prompt - следующий вопрос (или повтор текущего при ошибке)
	Prompt string
	// Summary заполняется при переходе к подтверждению
	Summary string
	// AwaitConfirm - бот должен показать кнопки подтвердить/отменить
	AwaitConfirm bool
	Validation   *ValidationError
	Completed    *Completed
	Cancelled    bool
}

// Done сообщает, что сессия завершена (успешно или отменой)
func (r Reply) Done() bool { return r.Completed != nil || r.Cancelled }

// Engine ведет анкеты пользователей. Сессии хранятся в Store по Telegram ID.
type Engine struct {
	sessions *Store
	now      func() time.Time
}

// NewEngine создает движок анкет
func NewEngine(sessions *Store) *Engine {
	return &Engine{sessions: sessions, now: time.Now}
}

// Start начинает новую анкету, заменяя незавершенную
func (e *Engine) Start(owner int64, kind Kind, groupID string) (Reply, error) {
	flow, ok := FlowFor(kind)
	if !ok {
		return Reply{}, fmt.Errorf("unknown conversation kind %q", kind)
	}
	s := &Session{
		Kind:      kind,
		Owner:     owner,
		GroupID:   groupID,
		Values:    make(map[string]string, len(flow.Fields)),
		UpdatedAt: e.now(),
	}
	e.sessions.Put(s)
	return Reply{Prompt: flow.Fields[0].Prompt}, nil
}

// Active сообщает, есть ли у пользователя незавершенная анкета
func (e *Engine) Active(owner int64) bool {
	_, ok := e.sessions.Get(owner, e.now())
	return ok
}

// Cancel удаляет анкету пользователя без побочных эффектов
func (e *Engine) Cancel(owner int64) bool {
	return e.sessions.Delete(owner)
}

// Handle передает ввод в анкету пользователя.
// Второе значение false, если активной анкеты нет.
func (e *Engine) Handle(owner int64, input string) (Reply, bool) {
	s, ok := e.sessions.Get(owner, e.now())
	if !ok {
		return Reply{}, false
	}
	reply := Advance(s, input)
	if reply.Done() {
		e.sessions.Delete(owner)
	} else {
		s.UpdatedAt = e.now()
		e.sessions.Put(s)
	}
	return reply, true
}

// Advance применяет ввод к сессии и возвращает следующий шаг.
// Ошибка проверки не сдвигает шаг, а повторяет вопрос.
func Advance(s *Session, rawInput string) Reply {
	flow, ok := FlowFor(s.Kind)
	if !ok {
		return Reply{Cancelled: true}
	}
	input := strings.TrimSpace(rawInput)

	if strings.EqualFold(input, InputCancel) || input == "/cancel" {
		return Reply{Cancelled: true}
	}

	if s.Confirming {
		if !isConfirm(input) {
			return Reply{Cancelled: true}
		}
		return Reply{Completed: build(flow, s)}
	}

	field := flow.Fields[s.Step]
	value, verr := validate(field, input)
	if verr != nil {
		return Reply{Prompt: field.Prompt, Validation: verr}
	}
	s.Values[field.Key] = value
	s.Step++

	if s.Step < len(flow.Fields) {
		return Reply{Prompt: flow.Fields[s.Step].Prompt}
	}
	s.Confirming = true
	return Reply{Summary: flow.summary(s.Values), Prompt: ConfirmPrompt, AwaitConfirm: true}
}

func isConfirm(input string) bool {
	for _, w := range confirmWords {
		if strings.EqualFold(input, w) {
			return true
		}
	}
	return false
}

func validate(f Field, input string) (string, *ValidationError) {
	if input == "" || (f.Optional && isSkip(input)) {
		if f.Optional {
			return f.Default, nil
		}
		return "", &ValidationError{Field: f.Key, Message: "Поле не может быть пустым. Попробуйте ещё раз."}
	}
	if f.Numeric {
		n, err := strconv.Atoi(input)
		if err != nil {
			return "", &ValidationError{Field: f.Key, Message: "Введите число!"}
		}
		if n < f.Min || n > f.Max {
			return "", &ValidationError{Field: f.Key, Message: fmt.Sprintf("Число должно быть от %d до %d.", f.Min, f.Max)}
		}
		return strconv.Itoa(n), nil
	}
	return input, nil
}

func build(flow Flow, s *Session) *Completed {
	c := &Completed{Kind: flow.Kind, Owner: s.Owner, GroupID: s.GroupID}
	v := s.Values
	switch flow.Kind {
	case KindCreateGroup:
		limit, _ := strconv.Atoi(v[FieldMaxParticipants])
		c.Group = &models.GroupDraft{
			Name:             v[FieldGroupName],
			OrganizerContact: v[FieldOrganizerContact],
			Budget:           v[FieldBudget],
			MaxParticipants:  limit,
			RegDeadline:      v[FieldRegDeadline],
			SendDeadline:     v[FieldSendDeadline],
		}
	case KindRegisterParticipant:
		c.Participant = &models.ParticipantDraft{
			FullName:      v[FieldFullName],
			Nickname:      v[FieldNickname],
			PickupAddress: v[FieldPickupAddress],
			PostalAddress: v[FieldPostalAddress],
			Wishlist:      v[FieldWishlist],
		}
	}
	return c
}
