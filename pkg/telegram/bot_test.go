package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUpdate_Message(t *testing.T) {
	body := []byte(`{"update_id":1,"message":{"message_id":5,"from":{"id":42,"first_name":"Anna","username":"anna"},
		"chat":{"id":42,"type":"private"},"date":1700000000,"text":"  /start ABCD2345 "}}`)

	ev, ok, err := DecodeUpdate(body)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), ev.UserID)
	assert.Equal(t, int64(42), ev.ChatID)
	assert.Equal(t, "anna", ev.Username)
	assert.Equal(t, "/start ABCD2345", ev.Text)
	assert.False(t, ev.IsCallback())
}

func TestDecodeUpdate_Callback(t *testing.T) {
	body := []byte(`{"update_id":2,"callback_query":{"id":"cb1","from":{"id":7,"first_name":"Org"},
		"message":{"message_id":9,"chat":{"id":7,"type":"private"},"date":1700000000},"data":"draw:ABCD2345"}}`)

	ev, ok, err := DecodeUpdate(body)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ev.IsCallback())
	assert.Equal(t, "cb1", ev.CallbackID)
	assert.Equal(t, "draw:ABCD2345", ev.Data)
	assert.Equal(t, int64(7), ev.ChatID)
}

func TestDecodeUpdate_IgnoresGroupChats(t *testing.T) {
	body := []byte(`{"update_id":3,"message":{"message_id":1,"from":{"id":1,"first_name":"A"},
		"chat":{"id":-100,"type":"supergroup"},"date":1700000000,"text":"hi"}}`)

	_, ok, err := DecodeUpdate(body)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = DecodeUpdate([]byte("{"))
	assert.Error(t, err)
}

func TestKeyboard(t *testing.T) {
	kb := keyboard(Menu{
		{{Text: "Draw", Data: "draw:X"}},
		{{Text: "Link", URL: "https://t.me/bot?start=X"}, {Text: "Back", Data: "groups"}},
	})
	require.Len(t, kb.InlineKeyboard, 2)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "draw:X", *kb.InlineKeyboard[0][0].CallbackData)
	require.NotNil(t, kb.InlineKeyboard[1][0].URL)
	assert.Equal(t, "https://t.me/bot?start=X", *kb.InlineKeyboard[1][0].URL)
}
