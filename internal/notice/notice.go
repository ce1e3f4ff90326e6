// Package notice records the user-facing outcome of a single call so the
// caller can show it in its next response.
package notice

import (
	"context"
	"sync"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Message struct {
	Level Level
	Text  string
}

// Sink receives outcome messages.
type Sink interface {
	Success(ctx context.Context, text string)
	Error(ctx context.Context, text string)
}

// Flash collects messages for one response. Safe for concurrent use.
type Flash struct {
	mu       sync.Mutex
	messages []Message
}

func NewFlash() *Flash {
	return &Flash{}
}

func (f *Flash) Success(_ context.Context, text string) {
	f.add(LevelSuccess, text)
}

func (f *Flash) Error(_ context.Context, text string) {
	f.add(LevelError, text)
}

func (f *Flash) add(level Level, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, Message{Level: level, Text: text})
}

// Messages returns a copy of the recorded messages.
func (f *Flash) Messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.messages...)
}

// Drain returns the recorded messages and clears the flash.
func (f *Flash) Drain() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages
	f.messages = nil
	return msgs
}

// Discard drops every message.
var Discard Sink = discard{}

type discard struct{}

func (discard) Success(context.Context, string) {}
func (discard) Error(context.Context, string)   {}
