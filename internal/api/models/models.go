package models

import (
	"time"

	"github.com/jon4hz/bankdesk/internal/engine"
)

// NoBank is shown for users without a bank.
const NoBank = "None"

// UserRow is a user prepared for the users table.
type UserRow struct {
	ID        string
	FirstName string
	LastName  string
	Username  string
	Email     string
	BankID    string
	BankName  string
	AvatarURL string
	Editing   bool // the row is the one in the edit form
}

// BankRow is a bank prepared for the banks table.
type BankRow struct {
	ID            string
	BankName      string
	RoutingNumber string
	SwiftBIC      string
	Users         int // number of users referencing the bank
	Editing       bool
}

// InUse reports whether deleting the bank would be rejected.
func (b BankRow) InUse() bool {
	return b.Users > 0
}

// FormField is one input of the edit form.
type FormField struct {
	Name  string
	Label string
	Value string
}

// BankOption is one entry of the bank selector.
type BankOption struct {
	ID       string
	Name     string
	Selected bool
}

// EditForm is the modal form bound to the draft.
type EditForm struct {
	Kind        engine.Kind
	ID          string
	Title       string
	Fields      []FormField
	BankOptions []BankOption // only set when editing a user
}

// Notice is the banner shown above the tables.
type Notice struct {
	Level   engine.NoticeLevel
	Message string
}

// Dashboard is everything the index page renders.
type Dashboard struct {
	Users          []UserRow
	Banks          []BankRow
	Edit           *EditForm
	Notice         *Notice
	SeededAt       time.Time
	AvatarsEnabled bool
	AddCount       int
}
