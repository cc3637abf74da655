package engine

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// bankInUseMessage is shown when a bank delete is rejected.
const bankInUseMessage = "Cannot delete bank with associated users."

// NewState returns an empty state.
func NewState() *State {
	return &State{
		Users: []User{},
		Banks: []Bank{},
	}
}

// ReplaceAll swaps both collections for freshly fetched ones.
func (s *State) ReplaceAll(users []User, banks []Bank, now time.Time) {
	s.Users = append([]User{}, users...)
	s.Banks = append([]Bank{}, banks...)
	s.SeededAt = now
}

// AppendUsers adds users after the existing ones, keeping their order.
func (s *State) AppendUsers(users []User) {
	s.Users = append(s.Users, users...)
}

// AppendBanks adds banks after the existing ones, keeping their order.
func (s *State) AppendBanks(banks []Bank) {
	s.Banks = append(s.Banks, banks...)
}

// FindUser returns the committed user with the given id.
func (s *State) FindUser(id ID) (User, bool) {
	return lo.Find(s.Users, func(u User) bool { return u.ID == id })
}

// FindBank returns the committed bank with the given id.
func (s *State) FindBank(id ID) (Bank, bool) {
	return lo.Find(s.Banks, func(b Bank) bool { return b.ID == id })
}

// BankUsers counts the users that reference the given bank.
func (s *State) BankUsers(id ID) int {
	return lo.CountBy(s.Users, func(u User) bool { return u.HasBank(id) })
}

// BeginEdit stages a copy of the entity as the only draft of the session.
func (s *State) BeginEdit(kind Kind, id ID) error {
	switch kind {
	case KindUser:
		u, ok := s.FindUser(id)
		if !ok {
			return fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		s.Editing = EditingUser(u)
	case KindBank:
		b, ok := s.FindBank(id)
		if !ok {
			return fmt.Errorf("bank %s: %w", id, ErrNotFound)
		}
		s.Editing = EditingBank(b)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return nil
}

// UpdateEditField changes a single field of the draft.
// The committed collections are left alone.
func (s *State) UpdateEditField(field, value string) error {
	if u, ok := s.Editing.User(); ok {
		if err := s.setUserField(&u, field, value); err != nil {
			return err
		}
		s.Editing = EditingUser(u)
		return nil
	}
	if b, ok := s.Editing.Bank(); ok {
		if err := setBankField(&b, field, value); err != nil {
			return err
		}
		s.Editing = EditingBank(b)
		return nil
	}
	return ErrNotEditing
}

func (s *State) setUserField(u *User, field, value string) error {
	switch field {
	case "first_name":
		u.FirstName = value
	case "last_name":
		u.LastName = value
	case "username":
		u.Username = value
	case "email":
		u.Email = value
	case "bank_id":
		if value == "" {
			u.BankID = nil
			return nil
		}
		id := ID(value)
		if _, ok := s.FindBank(id); !ok {
			return fmt.Errorf("bank %s: %w", id, ErrUnknownBank)
		}
		u.BankID = &id
	default:
		return fmt.Errorf("%w %q for user", ErrUnknownField, field)
	}
	return nil
}

func setBankField(b *Bank, field, value string) error {
	switch field {
	case "bank_name":
		b.BankName = value
	case "routing_number":
		b.RoutingNumber = value
	case "swift_bic":
		b.SwiftBIC = value
	default:
		return fmt.Errorf("%w %q for bank", ErrUnknownField, field)
	}
	return nil
}

// CommitEdit writes the draft over the committed entity with the same id and
// clears the draft. It is a no-op when nothing is staged. A user draft whose
// bank was deleted after it was staged is rejected and stays open.
func (s *State) CommitEdit() error {
	if draft, ok := s.Editing.User(); ok {
		if draft.BankID != nil {
			if _, ok := s.FindBank(*draft.BankID); !ok {
				return fmt.Errorf("bank %s: %w", *draft.BankID, ErrUnknownBank)
			}
		}
		s.Users = lo.Map(s.Users, func(u User, _ int) User {
			if u.ID == draft.ID {
				return draft.clone()
			}
			return u
		})
	} else if draft, ok := s.Editing.Bank(); ok {
		s.Banks = lo.Map(s.Banks, func(b Bank, _ int) Bank {
			if b.ID == draft.ID {
				return draft
			}
			return b
		})
	}
	s.Editing = Editing{}
	return nil
}

// CancelEdit throws the draft away.
func (s *State) CancelEdit() {
	s.Editing = Editing{}
}

// DeleteUser removes the user with the given id. Unknown ids are ignored.
func (s *State) DeleteUser(id ID) {
	s.Users = lo.Reject(s.Users, func(u User, _ int) bool { return u.ID == id })
}

// DeleteBank removes the bank with the given id unless a user still references it.
// Unknown ids are ignored.
func (s *State) DeleteBank(id ID) error {
	if n := s.BankUsers(id); n > 0 {
		return &BankInUseError{BankID: id, Users: n}
	}
	s.Banks = lo.Reject(s.Banks, func(b Bank, _ int) bool { return b.ID == id })
	return nil
}

// SetNotice records a message for the next render.
func (s *State) SetNotice(level NoticeLevel, message string, now time.Time) {
	s.Notice = &Notice{Level: level, Message: message, CreatedAt: now}
}

// TakeNotice returns the pending notice and clears it.
func (s *State) TakeNotice() *Notice {
	n := s.Notice
	s.Notice = nil
	return n
}
