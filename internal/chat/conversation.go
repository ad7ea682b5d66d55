package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/fjod/forgeline/internal/timer"
)

// ReplyDelay is how long the bot "types" before answering.
const ReplyDelay = time.Second

// Greeting opens every conversation.
const Greeting = "¡Hola! Soy el asistente virtual de ForgeLine. ¿En qué puedo ayudarte?"

type Sender string

const (
	FromUser Sender = "user"
	FromBot  Sender = "bot"
)

type Message struct {
	From   Sender    `json:"from"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Conversation is the chat log of one session.
type Conversation struct {
	bot    *Bot
	delay  time.Duration
	timers *timer.Group

	mu       sync.Mutex
	messages []Message
}

func NewConversation(bot *Bot, delay time.Duration) *Conversation {
	if bot == nil {
		bot = NewBot(nil, "")
	}
	if delay < 0 {
		delay = ReplyDelay
	}
	return &Conversation{
		bot:      bot,
		delay:    delay,
		timers:   timer.NewGroup(),
		messages: []Message{{From: FromBot, Text: Greeting, SentAt: time.Now()}},
	}
}

// Send records the user's message and schedules the bot's answer. Blank
// input is ignored and reported as false.
func (c *Conversation) Send(text string) (Message, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, false
	}

	msg := c.append(FromUser, text)
	reply := c.bot.Reply(text)
	c.timers.After(c.delay, func() { c.append(FromBot, reply) })
	return msg, true
}

func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Close drops replies that have not been delivered yet.
func (c *Conversation) Close() {
	c.timers.Close()
}

func (c *Conversation) append(from Sender, text string) Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := Message{From: from, Text: text, SentAt: time.Now()}
	c.messages = append(c.messages, m)
	return m
}
