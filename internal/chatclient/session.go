package chatclient

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	Greeting        = "Hi! I'm here to help categorize your service request. What issue are you experiencing?"
	ConnectionError = "Sorry, I'm having trouble connecting to the server. Please try again."
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Entry is one line of the transcript.
type Entry struct {
	Sender Sender
	Text   string
	At     time.Time
}

// Session holds the client-side view of one conversation. Only one
// submission is in flight at a time.
type Session struct {
	api API

	mu             sync.Mutex
	transcript     []Entry
	thinking       bool
	conversationID string
	category       string
	confidence     float64
	complete       bool
	now            func() time.Time
}

func NewSession(api API) *Session {
	s := &Session{api: api, now: time.Now}
	s.resetLocked()
	return s
}

// Submit sends one line of user input. Blank input, input while a reply is
// pending and input after completion are ignored; the return value reports
// whether the text was accepted.
func (s *Session) Submit(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if text == "" || s.thinking || s.complete {
		s.mu.Unlock()
		return false
	}
	s.thinking = true
	s.appendLocked(SenderUser, text)
	id := s.conversationID
	s.mu.Unlock()

	var (
		reply string
		err   error
	)
	if id == "" {
		var res *CreateConversationResponse
		res, err = s.api.CreateConversation(ctx, text)
		if err == nil {
			s.mu.Lock()
			s.conversationID = res.ConversationID
			s.category = res.Categorization.Category
			s.confidence = res.Categorization.Confidence
			s.mu.Unlock()
			reply = res.FollowUpQuestion
		}
	} else {
		var res *AddMessageResponse
		res, err = s.api.AddMessage(ctx, id, text)
		if err == nil {
			s.mu.Lock()
			s.complete = res.IsComplete
			if res.Category != "" {
				s.category = res.Category
			}
			s.mu.Unlock()
			reply = res.Message
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.WithError(err).Debug("chat submission failed")
		reply = ConnectionError
	}
	s.appendLocked(SenderBot, reply)
	s.thinking = false
	return true
}

// Reset starts a new conversation locally. Nothing is deleted on the server.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.transcript = nil
	s.thinking = false
	s.conversationID = ""
	s.category = ""
	s.confidence = 0
	s.complete = false
	s.appendLocked(SenderBot, Greeting)
}

func (s *Session) appendLocked(sender Sender, text string) {
	s.transcript = append(s.transcript, Entry{Sender: sender, Text: text, At: s.now()})
}

// Transcript returns a copy of the transcript.
func (s *Session) Transcript() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.transcript...)
}

// Last returns the most recent transcript entry.
func (s *Session) Last() Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript[len(s.transcript)-1]
}

func (s *Session) Thinking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thinking
}

func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Category returns the detected category and its confidence, if any.
func (s *Session) Category() (string, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category, s.confidence
}

func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}
