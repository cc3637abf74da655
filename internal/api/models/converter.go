package models

import (
	"github.com/jon4hz/bankdesk/internal/engine"
	"github.com/jon4hz/bankdesk/internal/gravatar"
	"github.com/samber/lo"
)

// ToUserRow converts an engine.User for display. banks maps bank ids to names.
func ToUserRow(u engine.User, banks map[engine.ID]string, avatars *gravatar.Avatars) UserRow {
	row := UserRow{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.Email,
		BankName:  NoBank,
		AvatarURL: avatars.URL(u.Email),
	}
	if u.BankID != nil {
		row.BankID = u.BankID.String()
		if name, ok := banks[*u.BankID]; ok {
			row.BankName = name
		}
	}
	return row
}

// ToUserRows converts all users of the state.
func ToUserRows(s *engine.State, avatars *gravatar.Avatars) []UserRow {
	names := bankNames(s.Banks)
	return lo.Map(s.Users, func(u engine.User, _ int) UserRow {
		return ToUserRow(u, names, avatars)
	})
}

// ToBankRows converts all banks of the state, counting their users.
func ToBankRows(s *engine.State) []BankRow {
	return lo.Map(s.Banks, func(b engine.Bank, _ int) BankRow {
		return BankRow{
			ID:            b.ID.String(),
			BankName:      b.BankName,
			RoutingNumber: b.RoutingNumber,
			SwiftBIC:      b.SwiftBIC,
			Users:         s.BankUsers(b.ID),
		}
	})
}

// ToBankOptions lists "None" followed by every bank, marking the one
// currently selected.
func ToBankOptions(banks []engine.Bank, selected *engine.ID) []BankOption {
	options := make([]BankOption, 0, len(banks)+1)
	options = append(options, BankOption{Name: NoBank, Selected: selected == nil})
	for _, b := range banks {
		options = append(options, BankOption{
			ID:       b.ID.String(),
			Name:     b.BankName,
			Selected: selected != nil && *selected == b.ID,
		})
	}
	return options
}

// ToEditForm builds the modal form for the staged draft, or nil if nothing
// is being edited.
func ToEditForm(s *engine.State) *EditForm {
	if u, ok := s.Editing.User(); ok {
		return &EditForm{
			Kind:  engine.KindUser,
			ID:    u.ID.String(),
			Title: "Edit user",
			Fields: []FormField{
				{Name: "first_name", Label: "First name", Value: u.FirstName},
				{Name: "last_name", Label: "Last name", Value: u.LastName},
				{Name: "username", Label: "Username", Value: u.Username},
				{Name: "email", Label: "Email", Value: u.Email},
			},
			BankOptions: ToBankOptions(s.Banks, u.BankID),
		}
	}
	if b, ok := s.Editing.Bank(); ok {
		return &EditForm{
			Kind:  engine.KindBank,
			ID:    b.ID.String(),
			Title: "Edit bank",
			Fields: []FormField{
				{Name: "bank_name", Label: "Bank name", Value: b.BankName},
				{Name: "routing_number", Label: "Routing number", Value: b.RoutingNumber},
				{Name: "swift_bic", Label: "SWIFT/BIC", Value: b.SwiftBIC},
			},
		}
	}
	return nil
}

// ToDashboard converts a session state into the index page model.
func ToDashboard(s *engine.State, avatars *gravatar.Avatars, addCount int) Dashboard {
	d := Dashboard{
		Users:          ToUserRows(s, avatars),
		Banks:          ToBankRows(s),
		Edit:           ToEditForm(s),
		SeededAt:       s.SeededAt,
		AvatarsEnabled: avatars.Enabled(),
		AddCount:       addCount,
	}
	if s.Notice != nil {
		d.Notice = &Notice{Level: s.Notice.Level, Message: s.Notice.Message}
	}
	if d.Edit != nil {
		switch d.Edit.Kind {
		case engine.KindUser:
			for i := range d.Users {
				d.Users[i].Editing = d.Users[i].ID == d.Edit.ID
			}
		case engine.KindBank:
			for i := range d.Banks {
				d.Banks[i].Editing = d.Banks[i].ID == d.Edit.ID
			}
		}
	}
	return d
}

func bankNames(banks []engine.Bank) map[engine.ID]string {
	return lo.SliceToMap(banks, func(b engine.Bank) (engine.ID, string) {
		return b.ID, b.BankName
	})
}
