package promptbuilder

import (
	"sync"
	"time"
)

const (
	MenuMain = "main"

	AwaitNone    = ""
	AwaitDetails = "details"
)

// FormState is one user's form in a chat.
type FormState struct {
	Selection Selection

	Menu      string // MenuMain or a field key
	Awaiting  string // AwaitNone, AwaitDetails or a field key
	MessageID int

	UpdatedAt time.Time
}

// MenuField reports the field whose option list is open, if any.
func (s FormState) MenuField() (Field, bool) {
	if s.Menu == MenuMain {
		return 0, false
	}
	return ParseField(s.Menu)
}

// AwaitingField reports the field waiting for custom text, if any.
func (s FormState) AwaitingField() (Field, bool) {
	if s.Awaiting == AwaitNone || s.Awaiting == AwaitDetails {
		return 0, false
	}
	return ParseField(s.Awaiting)
}

// AcceptText stores text for whatever input is awaited and reports whether
// any input was.
func (s *FormState) AcceptText(text string) bool {
	switch {
	case s.Awaiting == AwaitDetails:
		s.Selection.Details = text
	default:
		f, ok := s.AwaitingField()
		if !ok {
			return false
		}
		s.Selection.Set(f, Custom(text))
	}
	s.Awaiting = AwaitNone
	s.Menu = MenuMain
	return true
}

func (s *FormState) normalize() {
	if _, ok := ParseField(s.Menu); !ok {
		s.Menu = MenuMain
	}
	if s.Awaiting != AwaitNone && s.Awaiting != AwaitDetails {
		if _, ok := ParseField(s.Awaiting); !ok {
			s.Awaiting = AwaitNone
		}
	}
}

type Store struct {
	mu      sync.Mutex
	catalog *Catalog
	m       map[stateKey]*FormState
}

type stateKey struct {
	ChatID int64
	UserID int64
}

func NewStore(catalog *Catalog) *Store {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Store{catalog: catalog, m: make(map[stateKey]*FormState)}
}

func (s *Store) Get(chatID, userID int64) FormState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.getOrCreateLocked(chatID, userID)
}

func (s *Store) Update(chatID, userID int64, fn func(*FormState)) FormState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(chatID, userID)
	if fn != nil {
		fn(st)
	}
	st.normalize()
	st.UpdatedAt = time.Now()
	return *st
}

// Reset restores the defaults but keeps the rendered message so it can be
// edited in place.
func (s *Store) Reset(chatID, userID int64) FormState {
	return s.Update(chatID, userID, func(st *FormState) {
		msgID := st.MessageID
		*st = s.defaultState()
		st.MessageID = msgID
	})
}

func (s *Store) getOrCreateLocked(chatID, userID int64) *FormState {
	key := stateKey{ChatID: chatID, UserID: userID}
	if st, ok := s.m[key]; ok {
		return st
	}
	st := s.defaultState()
	s.m[key] = &st
	return s.m[key]
}

func (s *Store) defaultState() FormState {
	return FormState{
		Selection: s.catalog.DefaultSelection(),
		Menu:      MenuMain,
		Awaiting:  AwaitNone,
		UpdatedAt: time.Now(),
	}
}
