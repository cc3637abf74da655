package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that no user or bank with the given id exists.
	ErrNotFound = errors.New("entity not found")
	// ErrNotEditing indicates that a field change was requested while nothing is staged.
	ErrNotEditing = errors.New("nothing is being edited")
	// ErrUnknownField indicates that the staged entity has no field with the given name.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownKind indicates an entity kind other than user or bank.
	ErrUnknownKind = errors.New("unknown entity kind")
	// ErrUnknownBank indicates that a user was pointed at a bank that does not exist.
	ErrUnknownBank = errors.New("unknown bank")
	// ErrInvalidCount indicates a requested add count outside the allowed range.
	ErrInvalidCount = errors.New("invalid count")
	// ErrFetch indicates that the data source could not deliver new records.
	ErrFetch = errors.New("failed to fetch random data")
	// ErrBankInUse indicates that a bank is still referenced by at least one user.
	ErrBankInUse = errors.New("bank has associated users")
)

// BankInUseError is returned when deleting a bank that users still reference.
type BankInUseError struct {
	BankID ID
	Users  int
}

func (e *BankInUseError) Error() string {
	return fmt.Sprintf("cannot delete bank %s: referenced by %d user(s)", e.BankID, e.Users)
}

func (e *BankInUseError) Is(target error) bool {
	return target == ErrBankInUse
}
