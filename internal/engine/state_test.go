package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *State {
	s := NewState()
	s.ReplaceAll(
		[]User{
			{ID: "1", FirstName: "Ada", LastName: "Lovelace", Username: "ada", Email: "ada@example.com"},
			{ID: "2", FirstName: "Alan", LastName: "Turing", Username: "alan", Email: "alan@example.com", BankID: lo.ToPtr(ID("20"))},
			{ID: "3", FirstName: "Grace", LastName: "Hopper", Username: "grace", Email: "grace@example.com"},
		},
		[]Bank{
			{ID: "10", BankName: "ABN AMRO", RoutingNumber: "011000015", SwiftBIC: "ABNAGB2L"},
			{ID: "20", BankName: "Barclays", RoutingNumber: "021000021", SwiftBIC: "BARCGB22"},
			{ID: "30", BankName: "HSBC", RoutingNumber: "026009593", SwiftBIC: "MIDLGB22"},
		},
		time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	)
	return s
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestDeleteBank_Referenced(t *testing.T) {
	s := sampleState()
	before := append([]Bank{}, s.Banks...)

	err := s.DeleteBank("20")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBankInUse)

	var inUse *BankInUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, ID("20"), inUse.BankID)
	assert.Equal(t, 1, inUse.Users)

	assert.Equal(t, before, s.Banks)
}

func TestDeleteBank_Unreferenced(t *testing.T) {
	s := sampleState()

	require.NoError(t, s.DeleteBank("10"))

	_, found := s.FindBank("10")
	assert.False(t, found)
	assert.Equal(t, []Bank{
		{ID: "20", BankName: "Barclays", RoutingNumber: "021000021", SwiftBIC: "BARCGB22"},
		{ID: "30", BankName: "HSBC", RoutingNumber: "026009593", SwiftBIC: "MIDLGB22"},
	}, s.Banks)
}

func TestDeleteBank_Unknown(t *testing.T) {
	s := sampleState()
	require.NoError(t, s.DeleteBank("999"))
	assert.Len(t, s.Banks, 3)
}

func TestDeleteBank_AfterReferenceRemoved(t *testing.T) {
	s := sampleState()
	require.ErrorIs(t, s.DeleteBank("20"), ErrBankInUse)

	s.DeleteUser("2")
	require.NoError(t, s.DeleteBank("20"))
	assert.Len(t, s.Banks, 2)
}

func TestDeleteUser_Idempotent(t *testing.T) {
	once := sampleState()
	once.DeleteUser("2")

	twice := sampleState()
	twice.DeleteUser("2")
	twice.DeleteUser("2")

	assert.Equal(t, once.Users, twice.Users)
	assert.Len(t, twice.Users, 2)

	twice.DeleteUser("does-not-exist")
	assert.Equal(t, once.Users, twice.Users)
}

func TestEditCommit_User(t *testing.T) {
	s := sampleState()
	banksBefore := mustJSON(t, s.Banks)

	require.NoError(t, s.BeginEdit(KindUser, "2"))
	require.NoError(t, s.UpdateEditField("first_name", "X"))

	// the committed collection is untouched until commit
	u, _ := s.FindUser("2")
	assert.Equal(t, "Alan", u.FirstName)

	require.NoError(t, s.CommitEdit())

	assert.False(t, s.Editing.Active())
	for _, u := range s.Users {
		if u.ID == "2" {
			assert.Equal(t, "X", u.FirstName)
			assert.Equal(t, "Turing", u.LastName)
		} else {
			assert.NotEqual(t, "X", u.FirstName)
		}
	}
	assert.Equal(t, "Ada", s.Users[0].FirstName)
	assert.Equal(t, "Grace", s.Users[2].FirstName)
	assert.Equal(t, banksBefore, mustJSON(t, s.Banks))
}

func TestEditCancel_LeavesUsersIdentical(t *testing.T) {
	s := sampleState()
	before := mustJSON(t, s.Users)

	require.NoError(t, s.BeginEdit(KindUser, "1"))
	require.NoError(t, s.UpdateEditField("email", "changed@example.com"))
	require.NoError(t, s.UpdateEditField("bank_id", "10"))
	s.CancelEdit()

	assert.False(t, s.Editing.Active())
	assert.Equal(t, before, mustJSON(t, s.Users))
}

func TestEdit_DraftDoesNotAliasBankID(t *testing.T) {
	s := sampleState()
	require.NoError(t, s.BeginEdit(KindUser, "2"))

	draft, ok := s.Editing.User()
	require.True(t, ok)
	*draft.BankID = "30"

	u, _ := s.FindUser("2")
	assert.Equal(t, ID("20"), *u.BankID)
}

func TestEditCommit_Bank(t *testing.T) {
	s := sampleState()
	usersBefore := mustJSON(t, s.Users)

	require.NoError(t, s.BeginEdit(KindBank, "30"))
	require.NoError(t, s.UpdateEditField("bank_name", "HSBC UK"))
	require.NoError(t, s.UpdateEditField("routing_number", "1"))
	require.NoError(t, s.UpdateEditField("swift_bic", "HBUKGB4B"))
	require.NoError(t, s.CommitEdit())

	b, ok := s.FindBank("30")
	require.True(t, ok)
	assert.Equal(t, Bank{ID: "30", BankName: "HSBC UK", RoutingNumber: "1", SwiftBIC: "HBUKGB4B"}, b)
	assert.Equal(t, usersBefore, mustJSON(t, s.Users))
}

func TestEdit_MutuallyExclusive(t *testing.T) {
	s := sampleState()

	require.NoError(t, s.BeginEdit(KindUser, "1"))
	assert.Equal(t, KindUser, s.Editing.Kind())

	require.NoError(t, s.BeginEdit(KindBank, "10"))
	assert.Equal(t, KindBank, s.Editing.Kind())
	_, isUser := s.Editing.User()
	assert.False(t, isUser)

	// user fields no longer apply
	assert.ErrorIs(t, s.UpdateEditField("first_name", "X"), ErrUnknownField)
}

func TestBeginEdit_Errors(t *testing.T) {
	s := sampleState()

	assert.ErrorIs(t, s.BeginEdit(KindUser, "404"), ErrNotFound)
	assert.ErrorIs(t, s.BeginEdit(KindBank, "404"), ErrNotFound)
	assert.ErrorIs(t, s.BeginEdit("account", "1"), ErrUnknownKind)
	assert.False(t, s.Editing.Active())
}

func TestUpdateEditField_Errors(t *testing.T) {
	s := sampleState()

	assert.ErrorIs(t, s.UpdateEditField("first_name", "X"), ErrNotEditing)

	require.NoError(t, s.BeginEdit(KindUser, "1"))
	assert.ErrorIs(t, s.UpdateEditField("id", "99"), ErrUnknownField)
	assert.ErrorIs(t, s.UpdateEditField("bank_id", "404"), ErrUnknownBank)

	draft, _ := s.Editing.User()
	assert.Equal(t, ID("1"), draft.ID)
	assert.Nil(t, draft.BankID)
}

func TestUpdateEditField_ClearBank(t *testing.T) {
	s := sampleState()

	require.NoError(t, s.BeginEdit(KindUser, "2"))
	require.NoError(t, s.UpdateEditField("bank_id", ""))
	require.NoError(t, s.CommitEdit())

	u, _ := s.FindUser("2")
	assert.Nil(t, u.BankID)
	require.NoError(t, s.DeleteBank("20"), "bank is free after its only user left it")
}

func TestCommitAndCancel_NothingStaged(t *testing.T) {
	s := sampleState()
	before := mustJSON(t, s)

	require.NoError(t, s.CommitEdit())
	s.CancelEdit()

	assert.Equal(t, before, mustJSON(t, s))
}

func TestCommitEdit_EntityDeletedMeanwhile(t *testing.T) {
	s := sampleState()

	require.NoError(t, s.BeginEdit(KindUser, "3"))
	require.NoError(t, s.UpdateEditField("first_name", "Ghost"))
	s.DeleteUser("3")
	require.NoError(t, s.CommitEdit())

	assert.Len(t, s.Users, 2)
	_, found := s.FindUser("3")
	assert.False(t, found)
}

func TestCommitEdit_BankDeletedMeanwhile(t *testing.T) {
	s := sampleState()

	require.NoError(t, s.BeginEdit(KindUser, "1"))
	require.NoError(t, s.UpdateEditField("bank_id", "10"))
	require.NoError(t, s.DeleteBank("10"), "only the draft points at the bank")

	err := s.CommitEdit()
	require.ErrorIs(t, err, ErrUnknownBank)

	u, _ := s.FindUser("1")
	assert.Nil(t, u.BankID)
	assert.True(t, s.Editing.Active(), "draft stays open")

	require.NoError(t, s.UpdateEditField("bank_id", "30"))
	require.NoError(t, s.CommitEdit())
	u, _ = s.FindUser("1")
	require.NotNil(t, u.BankID)
	assert.Equal(t, ID("30"), *u.BankID)
}

func TestAppend_KeepsOrder(t *testing.T) {
	s := sampleState()

	s.AppendUsers([]User{{ID: "4"}, {ID: "5"}})
	s.AppendBanks([]Bank{{ID: "40"}})

	assert.Equal(t, []ID{"1", "2", "3", "4", "5"}, lo.Map(s.Users, func(u User, _ int) ID { return u.ID }))
	assert.Equal(t, []ID{"10", "20", "30", "40"}, lo.Map(s.Banks, func(b Bank, _ int) ID { return b.ID }))
}

func TestReplaceAll(t *testing.T) {
	s := NewState()
	assert.Empty(t, s.Users)
	assert.Empty(t, s.Banks)

	now := time.Now()
	users := []User{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}}
	banks := []Bank{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}}
	s.ReplaceAll(users, banks, now)

	assert.Equal(t, users, s.Users)
	assert.Equal(t, banks, s.Banks)
	assert.Equal(t, now, s.SeededAt)
}

func TestNotice_TakeOnce(t *testing.T) {
	s := NewState()
	assert.Nil(t, s.TakeNotice())

	s.SetNotice(NoticeWarning, "careful", time.Now())
	n := s.TakeNotice()
	require.NotNil(t, n)
	assert.Equal(t, NoticeWarning, n.Level)
	assert.Equal(t, "careful", n.Message)
	assert.Nil(t, s.TakeNotice())
}

func TestState_JSONRoundTrip(t *testing.T) {
	s := sampleState()
	require.NoError(t, s.BeginEdit(KindUser, "2"))
	require.NoError(t, s.UpdateEditField("username", "aturing"))

	var decoded State
	require.NoError(t, json.Unmarshal([]byte(mustJSON(t, s)), &decoded))

	draft, ok := decoded.Editing.User()
	require.True(t, ok)
	assert.Equal(t, "aturing", draft.Username)
	assert.Equal(t, ID("20"), *draft.BankID)
	assert.Equal(t, s.Users, decoded.Users)
	assert.Equal(t, s.Banks, decoded.Banks)
	assert.True(t, s.SeededAt.Equal(decoded.SeededAt))

	var none State
	require.NoError(t, json.Unmarshal([]byte(mustJSON(t, NewState())), &none))
	assert.False(t, none.Editing.Active())
}

func TestEditing_UnmarshalInvalid(t *testing.T) {
	var e Editing
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"kind":"account"}`), &e), ErrUnknownKind)
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"user"}`), &e))
}

func TestID_UnmarshalJSON(t *testing.T) {
	var ids []ID
	require.NoError(t, json.Unmarshal([]byte(`[12, "ab-3", 1e3, null]`), &ids))
	assert.Equal(t, []ID{"12", "ab-3", "1e3", ""}, ids)

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`true`), &id))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("user")
	require.NoError(t, err)
	assert.Equal(t, KindUser, k)

	k, err = ParseKind("bank")
	require.NoError(t, err)
	assert.Equal(t, KindBank, k)

	_, err = ParseKind("User")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
