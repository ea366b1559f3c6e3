package producer

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/chucky-1/ledgerbot/internal/model"
)

const (
	buttonsPerRow = 2
	maxTextLength = 4096
)

// Telegram delivers replies to chats
type Telegram struct {
	bot *tgbotapi.BotAPI
}

func NewTelegram(bot *tgbotapi.BotAPI) *Telegram {
	return &Telegram{
		bot: bot,
	}
}

func (t *Telegram) Send(chatID int64, reply model.Reply) error {
	_, err := t.bot.Send(render(chatID, reply))
	if err != nil {
		return fmt.Errorf("producer.Telegram.Send, telegram bot couldn't send message: %v", err)
	}
	return nil
}

// Ack stops the loading indicator on the pressed button
func (t *Telegram) Ack(callbackID string) error {
	_, err := t.bot.Request(tgbotapi.NewCallback(callbackID, ""))
	if err != nil {
		return fmt.Errorf("producer.Telegram.Ack, telegram bot couldn't answer callback: %v", err)
	}
	return nil
}

// RegisterCommands installs the persistent command menu
func (t *Telegram) RegisterCommands() error {
	commands := make([]tgbotapi.BotCommand, len(model.Commands))
	for i, c := range model.Commands {
		commands[i] = tgbotapi.BotCommand{
			Command:     c.Name,
			Description: c.Description,
		}
	}
	_, err := t.bot.Request(tgbotapi.NewSetMyCommands(commands...))
	if err != nil {
		return fmt.Errorf("producer.Telegram.RegisterCommands: %v", err)
	}
	return nil
}

func render(chatID int64, reply model.Reply) tgbotapi.MessageConfig {
	text := reply.Text
	if runes := []rune(text); len(runes) > maxTextLength {
		text = string(runes[:maxTextLength-1]) + "…"
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if len(reply.Options) == 0 {
		return msg
	}

	var (
		rows [][]tgbotapi.InlineKeyboardButton
		row  []tgbotapi.InlineKeyboardButton
	)
	for _, option := range reply.Options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(option.Label, option.Token))
		if len(row) == buttonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return msg
}
