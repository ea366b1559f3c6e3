package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chucky-1/ledgerbot/internal/model"
)

const workerBuffer = 16

type Handler interface {
	Handle(ctx context.Context, event model.Event) model.Reply
}

type Sender interface {
	Send(chatID int64, reply model.Reply) error
	Ack(callbackID string) error
}

type worker struct {
	events chan model.Event
	done   chan struct{}
}

// Hub runs one worker per active user, so events of a user are handled in arrival order
// while different users never wait for each other
type Hub struct {
	handler  Handler
	sender   Sender
	idle     time.Duration
	workers  map[int64]*worker
	draining map[int64]chan struct{}
	retired  chan int64
	wg       sync.WaitGroup
}

func NewHub(handler Handler, sender Sender, idle time.Duration) *Hub {
	return &Hub{
		handler:  handler,
		sender:   sender,
		idle:     idle,
		workers:  make(map[int64]*worker),
		draining: make(map[int64]chan struct{}),
		retired:  make(chan int64),
	}
}

// Consume returns when ctx is done or events is closed, after the workers handled what they had
func (h *Hub) Consume(ctx context.Context, events <-chan model.Event) {
	logrus.Info("hub consumer started")
	defer h.stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("hub consumer stopped: %v", ctx.Err())
			return
		case userID := <-h.retired:
			h.retire(userID)
		case event, ok := <-events:
			if !ok {
				logrus.Info("hub consumer stopped: events channel closed")
				return
			}
			h.dispatch(ctx, event)
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, event model.Event) {
	w, ok := h.workers[event.UserID]
	if !ok {
		w = &worker{
			events: make(chan model.Event, workerBuffer),
			done:   make(chan struct{}),
		}
		h.workers[event.UserID] = w
		prev := h.draining[event.UserID]
		delete(h.draining, event.UserID)
		h.wg.Add(1)
		go h.work(ctx, event.UserID, w, prev)
		logrus.Debugf("hub started worker of user %d", event.UserID)
	}

	select {
	case w.events <- event:
	case <-ctx.Done():
	}
}

// retire closes the worker of the user. A new worker of the same user starts only
// after the retired one handled everything it still holds
func (h *Hub) retire(userID int64) {
	w, ok := h.workers[userID]
	if !ok {
		return
	}
	close(w.events)
	delete(h.workers, userID)
	h.pruneDraining()
	h.draining[userID] = w.done
	logrus.Debugf("hub retired worker of user %d", userID)
}

// pruneDraining forgets retired workers that already finished
func (h *Hub) pruneDraining() {
	for userID, done := range h.draining {
		select {
		case <-done:
			delete(h.draining, userID)
		default:
		}
	}
}

func (h *Hub) work(ctx context.Context, userID int64, w *worker, prev <-chan struct{}) {
	defer h.wg.Done()
	defer close(w.done)
	if prev != nil {
		<-prev
	}

	ch := w.events
	timer := time.NewTimer(h.idle)
	defer timer.Stop()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			h.handle(ctx, event)
			timer.Reset(h.idle)
		case <-timer.C:
			// the hub may still be sending to ch, keep reading until it takes the retirement
			select {
			case h.retired <- userID:
				for event := range ch {
					h.handle(ctx, event)
				}
				return
			case event, ok := <-ch:
				if !ok {
					return
				}
				h.handle(ctx, event)
				timer.Reset(h.idle)
			}
		}
	}
}

func (h *Hub) handle(ctx context.Context, event model.Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("hub, panic while handling event of user %d: %v", event.UserID, r)
			if err := h.sender.Send(event.ChatID, withMenu(tryLaterMessage)); err != nil {
				logrus.Errorf("hub couldn't send reply to chat %d: %v", event.ChatID, err)
			}
		}
	}()

	if event.CallbackID != "" {
		if err := h.sender.Ack(event.CallbackID); err != nil {
			logrus.Warnf("hub couldn't answer callback of user %d: %v", event.UserID, err)
		}
	}

	reply := h.handler.Handle(context.WithoutCancel(ctx), event)
	if err := h.sender.Send(event.ChatID, reply); err != nil {
		logrus.Errorf("hub couldn't send reply to chat %d: %v", event.ChatID, err)
	}
}

func (h *Hub) stop() {
	for userID, w := range h.workers {
		close(w.events)
		delete(h.workers, userID)
	}
	h.wg.Wait()
}
