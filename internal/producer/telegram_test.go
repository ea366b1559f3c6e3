package producer

import (
	"strings"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"github.com/chucky-1/ledgerbot/internal/model"
)

func Test_Render(t *testing.T) {
	testTable := []struct {
		name    string
		options int
		rows    []int
	}{
		{name: "No options", options: 0},
		{name: "One option", options: 1, rows: []int{1}},
		{name: "Even options", options: 4, rows: []int{2, 2}},
		{name: "Odd options", options: 5, rows: []int{2, 2, 1}},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			reply := model.Reply{Text: "Choose"}
			for i := 0; i < testCase.options; i++ {
				reply.Options = append(reply.Options, model.Option{
					Label: "option",
					Token: model.EncodeToken("category", string(rune('0'+i))),
				})
			}

			msg := render(42, reply)
			require.Equal(t, int64(42), msg.ChatID)
			require.Equal(t, "Choose", msg.Text)
			if testCase.options == 0 {
				require.Nil(t, msg.ReplyMarkup)
				return
			}

			markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
			require.True(t, ok)
			require.Len(t, markup.InlineKeyboard, len(testCase.rows))
			for i, n := range testCase.rows {
				require.Len(t, markup.InlineKeyboard[i], n)
			}
			require.Equal(t, "category=0", *markup.InlineKeyboard[0][0].CallbackData)
		})
	}
}

func Test_RenderLongText(t *testing.T) {
	msg := render(1, model.Reply{Text: strings.Repeat("я", maxTextLength+10)})
	require.Equal(t, maxTextLength, utf8.RuneCountInString(msg.Text))
}
