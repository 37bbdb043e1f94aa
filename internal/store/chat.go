package store

import (
	"slices"

	"github.com/google/uuid"

	"github.com/mycelian/portfolio-client/internal/types"
)

// ChatState is the chat widget session. It is never persisted.
type ChatState struct {
	IsOpen           bool
	Messages         []types.Message
	CurrentSessionID *string
	Audience         types.Audience
	Depth            types.Depth
	Tone             types.Tone
	Context          map[string]any
}

// DefaultChatState is the state of a fresh chat widget.
func DefaultChatState() ChatState {
	return ChatState{
		Messages: []types.Message{},
		Audience: types.AudienceGeneral,
		Depth:    types.DepthMedium,
		Tone:     types.ToneProfessional,
		Context:  map[string]any{},
	}
}

// ChatStore keeps messages in append order; there is no reordering and no
// dedup by id.
type ChatStore struct {
	c *Container[ChatState]
}

// NewChatStore returns a store at DefaultChatState.
func NewChatStore() *ChatStore {
	return &ChatStore{c: New(DefaultChatState())}
}

func (cs *ChatStore) State() ChatState { return cs.c.Get() }

func (cs *ChatStore) SetIsOpen(open bool) {
	cs.c.Update(func(s ChatState) ChatState {
		s.IsOpen = open
		return s
	})
}

// AddMessage appends m, assigning a random id when m has none.
func (cs *ChatStore) AddMessage(m types.Message) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	cs.c.Update(func(s ChatState) ChatState {
		s.Messages = append(slices.Clip(s.Messages), m)
		return s
	})
}

func (cs *ChatStore) SetMessages(messages []types.Message) {
	cp := slices.Clone(messages)
	if cp == nil {
		cp = []types.Message{}
	}
	cs.c.Update(func(s ChatState) ChatState {
		s.Messages = cp
		return s
	})
}

// SetSessionID sets the server session id; nil clears it.
func (cs *ChatStore) SetSessionID(id *string) {
	cs.c.Update(func(s ChatState) ChatState {
		s.CurrentSessionID = id
		return s
	})
}

func (cs *ChatStore) SetAudience(a types.Audience) {
	cs.c.Update(func(s ChatState) ChatState {
		s.Audience = a
		return s
	})
}

func (cs *ChatStore) SetDepth(d types.Depth) {
	cs.c.Update(func(s ChatState) ChatState {
		s.Depth = d
		return s
	})
}

func (cs *ChatStore) SetTone(t types.Tone) {
	cs.c.Update(func(s ChatState) ChatState {
		s.Tone = t
		return s
	})
}

// SetContext replaces the page context sent with each query (e.g. the
// project or gig being viewed).
func (cs *ChatStore) SetContext(ctx map[string]any) {
	if ctx == nil {
		ctx = map[string]any{}
	}
	cs.c.Update(func(s ChatState) ChatState {
		s.Context = ctx
		return s
	})
}

// ClearChat drops messages, session id and context. IsOpen and the reply
// preferences are left alone.
func (cs *ChatStore) ClearChat() {
	cs.c.Update(func(s ChatState) ChatState {
		s.Messages = []types.Message{}
		s.CurrentSessionID = nil
		s.Context = map[string]any{}
		return s
	})
}

// ClearChatHistory drops messages and session id but keeps context.
func (cs *ChatStore) ClearChatHistory() {
	cs.c.Update(func(s ChatState) ChatState {
		s.Messages = []types.Message{}
		s.CurrentSessionID = nil
		return s
	})
}

func (cs *ChatStore) Subscribe(fn func(ChatState)) func() { return cs.c.Subscribe(fn) }

func (cs *ChatStore) Dispose() { cs.c.Dispose() }
