package model

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

type EventKind int

const (
	// EventText is free text typed by the user
	EventText EventKind = iota
	// EventSelection is a press on one of the offered options, Token carries the option
	EventSelection
	// EventCommand is a slash command, Text carries the command name without the slash
	EventCommand
)

// Event is one inbound user action delivered by the messaging gateway
type Event struct {
	Kind       EventKind
	UserID     int64
	ChatID     int64
	Text       string
	Token      string
	CallbackID string
}

// Option is one selectable choice attached to a reply
type Option struct {
	Label string
	Token string
}

// Reply is what the bot answers to an event
type Reply struct {
	Text    string
	Options []Option
}

var MalformedTokenErr = errors.New("malformed selection token")

// Token is a parsed selection payload, e.g. "debt_action=pay&id=7"
type Token struct {
	values url.Values
}

func ParseToken(raw string) (Token, error) {
	if raw == "" {
		return Token{}, fmt.Errorf("%w: empty", MalformedTokenErr)
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", MalformedTokenErr, err)
	}
	if len(values) == 0 {
		return Token{}, fmt.Errorf("%w: no keys in %q", MalformedTokenErr, raw)
	}
	return Token{values: values}, nil
}

// EncodeToken builds a token from key/value pairs
func EncodeToken(pairs ...string) string {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		values.Set(pairs[i], pairs[i+1])
	}
	return values.Encode()
}

func (t Token) Has(key string) bool {
	return t.values.Has(key)
}

func (t Token) Get(key string) string {
	return t.values.Get(key)
}

func (t Token) Int(key string) (int64, error) {
	v := t.values.Get(key)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", MalformedTokenErr, key, v)
	}
	return n, nil
}
