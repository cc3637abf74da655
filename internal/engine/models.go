package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ID is an opaque identifier assigned by the data source.
// Identifiers are only ever compared for equality.
type ID string

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Kind names the two entity collections.
type Kind string

const (
	KindUser Kind = "user"
	KindBank Kind = "bank"
)

// ParseKind converts a loosely typed kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindUser, KindBank:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// User is a person record. BankID is nil when the user has no bank.
type User struct {
	ID        ID     `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	BankID    *ID    `json:"bank_id,omitempty"`
}

// clone returns a copy that shares no memory with u.
func (u User) clone() User {
	if u.BankID != nil {
		id := *u.BankID
		u.BankID = &id
	}
	return u
}

// HasBank reports whether the user references the given bank.
func (u User) HasBank(id ID) bool {
	return u.BankID != nil && *u.BankID == id
}

// Bank is a bank record.
type Bank struct {
	ID            ID     `json:"id"`
	BankName      string `json:"bank_name"`
	RoutingNumber string `json:"routing_number"`
	SwiftBIC      string `json:"swift_bic"`
}

// Editing is the staged edit of a session: nothing, a user draft or a bank draft.
// The zero value means nothing is staged.
type Editing struct {
	user *User
	bank *Bank
}

// EditingUser stages a copy of u.
func EditingUser(u User) Editing {
	c := u.clone()
	return Editing{user: &c}
}

// EditingBank stages a copy of b.
func EditingBank(b Bank) Editing {
	return Editing{bank: &b}
}

// Kind returns the kind of the staged entity, or "" if nothing is staged.
func (e Editing) Kind() Kind {
	switch {
	case e.user != nil:
		return KindUser
	case e.bank != nil:
		return KindBank
	default:
		return ""
	}
}

// Active reports whether anything is staged.
func (e Editing) Active() bool {
	return e.Kind() != ""
}

// User returns the staged user draft.
func (e Editing) User() (User, bool) {
	if e.user == nil {
		return User{}, false
	}
	return *e.user, true
}

// Bank returns the staged bank draft.
func (e Editing) Bank() (Bank, bool) {
	if e.bank == nil {
		return Bank{}, false
	}
	return *e.bank, true
}

type editingJSON struct {
	Kind Kind  `json:"kind"`
	User *User `json:"user,omitempty"`
	Bank *Bank `json:"bank,omitempty"`
}

func (e Editing) MarshalJSON() ([]byte, error) {
	return json.Marshal(editingJSON{Kind: e.Kind(), User: e.user, Bank: e.bank})
}

func (e *Editing) UnmarshalJSON(data []byte) error {
	var raw editingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "":
		*e = Editing{}
	case KindUser:
		if raw.User == nil {
			return fmt.Errorf("user draft missing")
		}
		*e = EditingUser(*raw.User)
	case KindBank:
		if raw.Bank == nil {
			return fmt.Errorf("bank draft missing")
		}
		*e = EditingBank(*raw.Bank)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, raw.Kind)
	}
	return nil
}

// NoticeLevel is the severity of a Notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message waiting to be shown to the person using the session.
type Notice struct {
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}

// State is everything a session owns.
type State struct {
	Users    []User    `json:"users"`
	Banks    []Bank    `json:"banks"`
	Editing  Editing   `json:"editing"`
	Notice   *Notice   `json:"notice,omitempty"`
	SeededAt time.Time `json:"seeded_at"`
}
