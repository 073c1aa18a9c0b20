package middleware

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "reply_counters"

// Counters summarises what a handler sent back for one update.
type Counters struct {
	Messages int
	Edits    int
	// Keyboard is set when any reply carried an inline keyboard.
	Keyboard bool
	// Prompt is set when any reply forced the user to answer.
	Prompt bool
}

type counters struct {
	mu sync.Mutex
	Counters
}

func (k *counters) record(edit bool, opts []any) {
	kb, prompt := replyKinds(opts)
	k.mu.Lock()
	defer k.mu.Unlock()
	if edit {
		k.Edits++
	} else {
		k.Messages++
	}
	k.Keyboard = k.Keyboard || kb
	k.Prompt = k.Prompt || prompt
}

func replyKinds(opts []any) (keyboard, prompt bool) {
	for _, o := range opts {
		var rm *tele.ReplyMarkup
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil {
				rm = v.ReplyMarkup
			}
		case *tele.ReplyMarkup:
			rm = v
		}
		if rm == nil {
			continue
		}
		if rm.ForceReply {
			prompt = true
		} else {
			keyboard = true
		}
	}
	return keyboard, prompt
}

// metricsContext counts the replies sent through the wrapped context.
// Sends issued by the async dispatcher after the handler returned are still
// counted but may miss the handler summary line.
type metricsContext struct {
	tele.Context
	k *counters
}

func (m metricsContext) Send(what any, opts ...any) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.k.record(false, opts)
	}
	return err
}

func (m metricsContext) Reply(what any, opts ...any) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.k.record(false, opts)
	}
	return err
}

func (m metricsContext) Edit(what any, opts ...any) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		m.k.record(true, opts)
	}
	return err
}

// EditOrSend is counted as an edit; telebot does not report which path it took.
func (m metricsContext) EditOrSend(what any, opts ...any) error {
	err := m.Context.EditOrSend(what, opts...)
	if err == nil {
		m.k.record(true, opts)
	}
	return err
}

func (m metricsContext) EditOrReply(what any, opts ...any) error {
	err := m.Context.EditOrReply(what, opts...)
	if err == nil {
		m.k.record(true, opts)
	}
	return err
}

// MessageMetricsMiddleware instruments the context so handler summaries can
// report how many messages, edits, keyboards and prompts an update produced.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		k := &counters{}
		c.Set(countersKey, k)
		return next(metricsContext{Context: c, k: k})
	}
}

// GetCounters returns the replies recorded for the current update.
func GetCounters(c tele.Context) Counters {
	k, ok := c.Get(countersKey).(*counters)
	if !ok || k == nil {
		return Counters{}
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.Counters
}
