// Package consumer turns telegram updates into conversation events and hands them to the controller
package consumer

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/ledgerbot/internal/model"
)

// Bot reads updates from telegram, either long polling or webhook, and publishes them as events
type Bot struct {
	name        string
	updatesChan tgbotapi.UpdatesChannel
	events      chan<- model.Event
}

func NewBot(name string, updatesChan tgbotapi.UpdatesChannel, events chan<- model.Event) *Bot {
	return &Bot{
		name:        name,
		updatesChan: updatesChan,
		events:      events,
	}
}

// Consume closes events on return
func (b *Bot) Consume(ctx context.Context) {
	logrus.Infof("telegram bot %s started consuming", b.name)
	defer close(b.events)

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("bot consumer stopped: %v", ctx.Err())
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				logrus.Info("bot consumer stopped: updates channel closed")
				return
			}
			event, ok := eventFromUpdate(update)
			if !ok {
				logrus.Debugf("skipped update %d", update.UpdateID)
				continue
			}
			select {
			case b.events <- event:
			case <-ctx.Done():
				logrus.Infof("bot consumer stopped: %v", ctx.Err())
				return
			}
		}
	}
}

func eventFromUpdate(update tgbotapi.Update) (model.Event, bool) {
	if q := update.CallbackQuery; q != nil {
		if q.From == nil || q.Message == nil || q.Message.Chat == nil {
			return model.Event{}, false
		}
		return model.Event{
			Kind:       model.EventSelection,
			UserID:     q.From.ID,
			ChatID:     q.Message.Chat.ID,
			Token:      q.Data,
			CallbackID: q.ID,
		}, true
	}

	m := update.Message
	if m == nil || m.From == nil || m.Chat == nil || m.Text == "" {
		return model.Event{}, false
	}
	if m.IsCommand() {
		return model.Event{
			Kind:   model.EventCommand,
			UserID: m.From.ID,
			ChatID: m.Chat.ID,
			Text:   m.Command(),
		}, true
	}
	return model.Event{
		Kind:   model.EventText,
		UserID: m.From.ID,
		ChatID: m.Chat.ID,
		Text:   m.Text,
	}, true
}
