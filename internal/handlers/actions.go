package handlers

import (
	"strings"
)

// Command - текстовая команда бота
type Command string

const (
	CmdStart    Command = "start"
	CmdHelp     Command = "help"
	CmdNewGroup Command = "newgroup"
	CmdMyGroups Command = "mygroups"
	CmdStats    Command = "stats"
	CmdSent     Command = "sent"
	CmdReceived Command = "received"
	CmdCancel   Command = "cancel"
	CmdApprove  Command = "approve"
	CmdReject   Command = "reject"
)

var commands = map[Command]struct{}{
	CmdStart: {}, CmdHelp: {}, CmdNewGroup: {}, CmdMyGroups: {}, CmdStats: {},
	CmdSent: {}, CmdReceived: {}, CmdCancel: {}, CmdApprove: {}, CmdReject: {},
}

// ParseCommand разбирает "/cmd@bot args". Неизвестные команды не распознаются
// и уходят в анкету как обычный текст.
func ParseCommand(text string) (Command, string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, args, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	cmd := Command(strings.ToLower(head))
	if _, ok := commands[cmd]; !ok {
		return "", "", false
	}
	return cmd, strings.TrimSpace(args), true
}

// Action - тег inline-кнопки. Данные кнопки кодируются как "action:arg",
// поэтому маршрутизация не зависит от подписи на кнопке.
type Action string

const (
	ActFormConfirm Action = "form_ok"
	ActFormCancel  Action = "form_no"
	ActNewGroup    Action = "new"
	ActGroups      Action = "groups"
	ActGroup       Action = "group"
	ActMembers     Action = "members"
	ActDrawAsk     Action = "draw"
	ActDraw        Action = "draw_ok"
	ActReport      Action = "report"
	ActShipments   Action = "ship"
	ActDeleteAsk   Action = "del"
	ActDelete      Action = "del_ok"
	ActStats       Action = "stats"
	ActApprove     Action = "approve"
	ActReject      Action = "reject"
	ActHelp        Action = "help"
)

// actionArgs - нужен ли кнопке аргумент
var actionArgs = map[Action]bool{
	ActFormConfirm: false,
	ActFormCancel:  false,
	ActNewGroup:    false,
	ActGroups:      false,
	ActGroup:       true,
	ActMembers:     true,
	ActDrawAsk:     true,
	ActDraw:        true,
	ActReport:      true,
	ActShipments:   true,
	ActDeleteAsk:   true,
	ActDelete:      true,
	ActStats:       false,
	ActApprove:     true,
	ActReject:      true,
	ActHelp:        false,
}

// maxCallbackData - лимит Telegram на callback_data в байтах
const maxCallbackData = 64

// EncodeAction собирает callback_data кнопки
func EncodeAction(a Action, arg string) string {
	if arg == "" {
		return string(a)
	}
	return string(a) + ":" + arg
}

// DecodeAction разбирает callback_data. false для неизвестных тегов
// и для тегов без обязательного аргумента.
func DecodeAction(data string) (Action, string, bool) {
	if data == "" || len(data) > maxCallbackData {
		return "", "", false
	}
	tag, arg, _ := strings.Cut(data, ":")
	a := Action(tag)
	needsArg, ok := actionArgs[a]
	if !ok {
		return "", "", false
	}
	if needsArg != (arg != "") {
		return "", "", false
	}
	return a, arg, true
}
