package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/botkit"
)

type fakeAPI struct {
	admins    []tgbotapi.ChatMember
	adminsErr error
	asked     int64
	sent      int
}

func (f *fakeAPI) Send(tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent++
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetChatAdministrators(cfg tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error) {
	f.asked = cfg.ChatID
	return f.admins, f.adminsErr
}

func update(userID int64) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     "/stats",
		Chat:     &tgbotapi.Chat{ID: 1},
		From:     &tgbotapi.User{ID: userID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}}
}

func counting(calls *int) botkit.ViewFunc {
	return func(context.Context, botkit.BotAPI, tgbotapi.Update) error {
		*calls++
		return nil
	}
}

func TestMembersOnly_AllowList(t *testing.T) {
	var calls int
	api := &fakeAPI{}
	view := MembersOnly([]int64{42}, 0, counting(&calls))

	assert.Equal(t, nil, view(context.Background(), api, update(42)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, api.sent)
}

func TestMembersOnly_ChannelAdmin(t *testing.T) {
	var calls int
	api := &fakeAPI{admins: []tgbotapi.ChatMember{{User: &tgbotapi.User{ID: 7}}}}
	view := MembersOnly(nil, -100500, counting(&calls))

	assert.Equal(t, nil, view(context.Background(), api, update(7)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(-100500), api.asked)
}

func TestMembersOnly_Rejects(t *testing.T) {
	var calls int
	api := &fakeAPI{admins: []tgbotapi.ChatMember{{User: &tgbotapi.User{ID: 7}}}}
	view := MembersOnly([]int64{42}, -100500, counting(&calls))

	assert.Equal(t, nil, view(context.Background(), api, update(99)))
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, api.sent)
}

func TestMembersOnly_NothingConfigured(t *testing.T) {
	var calls int
	api := &fakeAPI{}
	view := MembersOnly(nil, 0, counting(&calls))

	assert.Equal(t, nil, view(context.Background(), api, update(42)))
	assert.Equal(t, 0, calls)
	assert.Equal(t, int64(0), api.asked)
}

func TestMembersOnly_AdminLookupError(t *testing.T) {
	var calls int
	api := &fakeAPI{adminsErr: errors.New("telegram down")}
	view := MembersOnly(nil, -1, counting(&calls))

	assert.NotEqual(t, nil, view(context.Background(), api, update(42)))
	assert.Equal(t, 0, calls)
}
