package models

import (
	"testing"
	"time"

	"github.com/jon4hz/bankdesk/internal/engine"
	"github.com/jon4hz/bankdesk/internal/gravatar"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState() *engine.State {
	s := engine.NewState()
	s.ReplaceAll(
		[]engine.User{
			{ID: "1", FirstName: "Ada", LastName: "Lovelace", Username: "ada", Email: "ada@example.com", BankID: lo.ToPtr(engine.ID("b2"))},
			{ID: "2", FirstName: "Alan", LastName: "Turing", Username: "alan", Email: "alan@example.com"},
			{ID: "3", FirstName: "Grace", LastName: "Hopper", Username: "grace", Email: "grace@example.com", BankID: lo.ToPtr(engine.ID("gone"))},
		},
		[]engine.Bank{
			{ID: "b1", BankName: "ABN AMRO", RoutingNumber: "011000015", SwiftBIC: "ABNAGB2L"},
			{ID: "b2", BankName: "Barclays", RoutingNumber: "021000021", SwiftBIC: "BARCGB22"},
		},
		time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	)
	return s
}

func TestToUserRows(t *testing.T) {
	rows := ToUserRows(testState(), gravatar.New(nil))
	require.Len(t, rows, 3)

	assert.Equal(t, UserRow{
		ID:        "1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     "ada@example.com",
		BankID:    "b2",
		BankName:  "Barclays",
	}, rows[0])
	assert.Equal(t, NoBank, rows[1].BankName)
	assert.Empty(t, rows[1].BankID)
	assert.Equal(t, NoBank, rows[2].BankName, "dangling bank reference shows as none")
}

func TestToUserRows_Avatars(t *testing.T) {
	avatars := gravatar.New(&gravatar.Options{Enabled: true, Size: 32})
	rows := ToUserRows(testState(), avatars)
	assert.Equal(t, avatars.URL("ada@example.com"), rows[0].AvatarURL)
	assert.NotEmpty(t, rows[0].AvatarURL)
}

func TestToBankRows(t *testing.T) {
	rows := ToBankRows(testState())
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Users)
	assert.False(t, rows[0].InUse())
	assert.Equal(t, 1, rows[1].Users)
	assert.True(t, rows[1].InUse())
	assert.Equal(t, "BARCGB22", rows[1].SwiftBIC)
}

func TestToBankOptions(t *testing.T) {
	s := testState()

	options := ToBankOptions(s.Banks, nil)
	assert.Equal(t, []BankOption{
		{Name: NoBank, Selected: true},
		{ID: "b1", Name: "ABN AMRO"},
		{ID: "b2", Name: "Barclays"},
	}, options)

	options = ToBankOptions(s.Banks, lo.ToPtr(engine.ID("b2")))
	assert.False(t, options[0].Selected)
	assert.True(t, options[2].Selected)
}

func TestToEditForm(t *testing.T) {
	s := testState()
	assert.Nil(t, ToEditForm(s))

	require.NoError(t, s.BeginEdit(engine.KindUser, "1"))
	form := ToEditForm(s)
	require.NotNil(t, form)
	assert.Equal(t, engine.KindUser, form.Kind)
	assert.Equal(t, "1", form.ID)
	assert.Equal(t, []string{"first_name", "last_name", "username", "email"},
		lo.Map(form.Fields, func(f FormField, _ int) string { return f.Name }))
	assert.Equal(t, "Ada", form.Fields[0].Value)
	require.Len(t, form.BankOptions, 3)
	assert.True(t, form.BankOptions[2].Selected)

	require.NoError(t, s.BeginEdit(engine.KindBank, "b1"))
	form = ToEditForm(s)
	require.NotNil(t, form)
	assert.Equal(t, engine.KindBank, form.Kind)
	assert.Len(t, form.Fields, 3)
	assert.Nil(t, form.BankOptions)
}

func TestToDashboard(t *testing.T) {
	s := testState()
	require.NoError(t, s.BeginEdit(engine.KindBank, "b2"))
	s.SetNotice(engine.NoticeWarning, "careful", time.Now())

	d := ToDashboard(s, gravatar.New(nil), 1)
	assert.Len(t, d.Users, 3)
	assert.Len(t, d.Banks, 2)
	assert.False(t, d.Banks[0].Editing)
	assert.True(t, d.Banks[1].Editing)
	require.NotNil(t, d.Notice)
	assert.Equal(t, "careful", d.Notice.Message)
	assert.Equal(t, s.SeededAt, d.SeededAt)
	assert.False(t, d.AvatarsEnabled)
	assert.Equal(t, 1, d.AddCount)
}
