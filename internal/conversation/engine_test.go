package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftbot/internal/models"
)

func newTestEngine() *Engine {
	return NewEngine(NewStore(time.Hour))
}

func feed(t *testing.T, e *Engine, owner int64, inputs ...string) Reply {
	t.Helper()
	var reply Reply
	for _, in := range inputs {
		var ok bool
		reply, ok = e.Handle(owner, in)
		require.True(t, ok, "no active session for input %q", in)
		require.Nil(t, reply.Validation, "unexpected validation error for %q", in)
	}
	return reply
}

func TestRegisterParticipant_RoundTrip(t *testing.T) {
	e := newTestEngine()
	reply, err := e.Start(42, KindRegisterParticipant, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, RegisterParticipantFlow.Fields[0].Prompt, reply.Prompt)

	reply = feed(t, e, 42, "Иванов Иван", "Снежный_Санта", "Москва, ТЦ Авиапарк", "123456, Москва", "Книги, размер M")
	assert.True(t, reply.AwaitConfirm)
	assert.Contains(t, reply.Summary, "Снежный_Санта")
	assert.Nil(t, reply.Completed)

	reply = feed(t, e, 42, InputConfirm)
	require.NotNil(t, reply.Completed)
	assert.Equal(t, "ABC123", reply.Completed.GroupID)
	assert.Equal(t, int64(42), reply.Completed.Owner)
	assert.Equal(t, &models.ParticipantDraft{
		FullName:      "Иванов Иван",
		Nickname:      "Снежный_Санта",
		PickupAddress: "Москва, ТЦ Авиапарк",
		PostalAddress: "123456, Москва",
		Wishlist:      "Книги, размер M",
	}, reply.Completed.Participant)
	assert.False(t, e.Active(42))
}

func TestRegisterParticipant_SkipOptionalFields(t *testing.T) {
	e := newTestEngine()
	_, err := e.Start(7, KindRegisterParticipant, "G1")
	require.NoError(t, err)

	feed(t, e, 7, "Петров Пётр", "Эльф", "Красноярск, Кутузова 77А", "Пропустить", "skip")
	reply := feed(t, e, 7, "да")
	require.NotNil(t, reply.Completed)
	assert.Equal(t, models.NotProvided, reply.Completed.Participant.PostalAddress)
	assert.Empty(t, reply.Completed.Participant.Wishlist)
}

func TestCreateGroup_InvalidNumberKeepsStep(t *testing.T) {
	e := newTestEngine()
	_, err := e.Start(1, KindCreateGroup, "")
	require.NoError(t, err)
	feed(t, e, 1, "Офис", "Анна, @anna_hr", "до 2000 руб")

	s, ok := e.sessions.Get(1, time.Now())
	require.True(t, ok)
	step := s.Step
	maxPrompt := CreateGroupFlow.Fields[step].Prompt

	for _, bad := range []string{"двадцать", "2", "101", "", "3.5"} {
		reply, ok := e.Handle(1, bad)
		require.True(t, ok)
		require.NotNil(t, reply.Validation, "input %q", bad)
		assert.Equal(t, FieldMaxParticipants, reply.Validation.Field)
		assert.Equal(t, maxPrompt, reply.Prompt)
		assert.Equal(t, step, s.Step)
	}

	reply := feed(t, e, 1, "20", "15 декабря", "пропустить")
	assert.True(t, reply.AwaitConfirm)
	reply = feed(t, e, 1, "confirm")
	require.NotNil(t, reply.Completed)
	assert.Equal(t, &models.GroupDraft{
		Name:             "Офис",
		OrganizerContact: "Анна, @anna_hr",
		Budget:           "до 2000 руб",
		MaxParticipants:  20,
		RegDeadline:      "15 декабря",
	}, reply.Completed.Group)
}

func TestConfirmation_UnrecognizedInputCancels(t *testing.T) {
	e := newTestEngine()
	_, err := e.Start(5, KindRegisterParticipant, "G")
	require.NoError(t, err)
	feed(t, e, 5, "A B", "nick", "addr", "-", "-")

	reply, ok := e.Handle(5, "может быть")
	require.True(t, ok)
	assert.True(t, reply.Cancelled)
	assert.Nil(t, reply.Completed)
	assert.False(t, e.Active(5))
}

func TestCancelMidway(t *testing.T) {
	e := newTestEngine()
	_, err := e.Start(9, KindCreateGroup, "")
	require.NoError(t, err)
	feed(t, e, 9, "Группа")

	reply, ok := e.Handle(9, "/cancel")
	require.True(t, ok)
	assert.True(t, reply.Cancelled)
	_, ok = e.Handle(9, "что-нибудь")
	assert.False(t, ok)
}

func TestRequiredFieldRejectsEmpty(t *testing.T) {
	s := &Session{Kind: KindRegisterParticipant, Values: map[string]string{}}
	reply := Advance(s, "   ")
	require.NotNil(t, reply.Validation)
	assert.Equal(t, 0, s.Step)
	assert.Equal(t, RegisterParticipantFlow.Fields[0].Prompt, reply.Prompt)
}

func TestStore_Expiry(t *testing.T) {
	store := NewStore(time.Minute)
	now := time.Now()
	store.Put(&Session{Owner: 1, UpdatedAt: now.Add(-2 * time.Minute)})
	store.Put(&Session{Owner: 2, UpdatedAt: now})

	_, ok := store.Get(1, now)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())

	store.Put(&Session{Owner: 3, UpdatedAt: now.Add(-time.Hour)})
	assert.Equal(t, 1, store.Sweep(now))
	_, ok = store.Get(2, now)
	assert.True(t, ok)
}

func TestStart_UnknownKind(t *testing.T) {
	_, err := newTestEngine().Start(1, Kind("other"), "")
	assert.Error(t, err)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore(time.Minute)
	now := time.Now()
	store.Put(&Session{Owner: 1, Values: map[string]string{FieldFullName: "Anna"}, UpdatedAt: now})

	got, ok := store.Get(1, now)
	require.True(t, ok)
	got.Values[FieldFullName] = "Boris"
	got.Step = 3
	got.UpdatedAt = now.Add(-time.Hour)

	again, ok := store.Get(1, now)
	require.True(t, ok)
	assert.Equal(t, "Anna", again.Values[FieldFullName])
	assert.Zero(t, again.Step)
	assert.Equal(t, 0, store.Sweep(now))
}

func TestEngine_ConcurrentHandleAndSweep(t *testing.T) {
	store := NewStore(time.Hour)
	e := NewEngine(store)
	_, err := e.Start(1, KindCreateGroup, "")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			store.Sweep(time.Now())
		}
	}()
	for i := 0; i < 1000; i++ {
		e.Handle(1, "")
	}
	<-done

	s, ok := store.Get(1, time.Now())
	require.True(t, ok)
	assert.Zero(t, s.Step)
}
