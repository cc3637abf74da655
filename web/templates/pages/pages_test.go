package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jon4hz/bankdesk/internal/api/models"
	"github.com/jon4hz/bankdesk/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, d models.Dashboard) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Index(d).Render(context.Background(), &buf))
	return buf.String()
}

func TestIndex_Tables(t *testing.T) {
	html := render(t, models.Dashboard{
		Users: []models.UserRow{
			{ID: "7", FirstName: "Ada", LastName: "Lovelace", Username: "ada", Email: "ada@example.com", BankName: "Barclays"},
		},
		Banks: []models.BankRow{
			{ID: "b1", BankName: "Barclays", RoutingNumber: "021000021", SwiftBIC: "BARCGB22", Users: 1},
		},
		SeededAt: time.Now().Add(-3 * time.Minute),
		AddCount: 1,
	})

	assert.Contains(t, html, "<td>Lovelace</td>")
	assert.Contains(t, html, `action="/users/7/delete"`)
	assert.Contains(t, html, "<td>BARCGB22</td>")
	assert.Contains(t, html, `action="/banks/b1/edit"`)
	assert.Contains(t, html, "1 users, 1 banks. Seeded 3 minutes ago.")
	assert.NotContains(t, html, "modal-backdrop")
	assert.NotContains(t, html, `role="alert"`)
}

func TestIndex_Empty(t *testing.T) {
	html := render(t, models.Dashboard{})
	assert.Contains(t, html, "No users")
	assert.Contains(t, html, "No banks")
	assert.Contains(t, html, "Seeded never.")
}

func TestIndex_EscapesValues(t *testing.T) {
	html := render(t, models.Dashboard{
		Users: []models.UserRow{{ID: "1", FirstName: "<script>alert(1)</script>"}},
	})
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestIndex_NoticeAndEditForm(t *testing.T) {
	html := render(t, models.Dashboard{
		Notice: &models.Notice{Level: engine.NoticeWarning, Message: "Cannot delete bank with associated users."},
		Edit: &models.EditForm{
			Kind:   engine.KindUser,
			ID:     "7",
			Title:  "Edit user",
			Fields: []models.FormField{{Name: "first_name", Label: "First name", Value: "Ada"}},
			BankOptions: []models.BankOption{
				{Name: models.NoBank},
				{ID: "b1", Name: "Barclays", Selected: true},
			},
		},
	})

	assert.Contains(t, html, `class="notice notice-warning"`)
	assert.Contains(t, html, "Cannot delete bank with associated users.")
	assert.Contains(t, html, `name="first_name" value="Ada"`)
	assert.Contains(t, html, `<option value="">None</option>`)
	assert.Contains(t, html, `<option value="b1" selected>Barclays</option>`)
	assert.Contains(t, html, `formaction="/edit/cancel"`)
}

func TestIndex_BankInUseAndAvatars(t *testing.T) {
	html := render(t, models.Dashboard{
		Users: []models.UserRow{
			{ID: "1", FirstName: "Ada", AvatarURL: "https://gravatar.com/avatar/abc?s=32&d=mp"},
			{ID: "2", FirstName: "Alan", Editing: true},
		},
		Banks: []models.BankRow{
			{ID: "b1", BankName: "Barclays", Users: 1234},
			{ID: "b2", BankName: "HSBC"},
		},
		AvatarsEnabled: true,
	})

	assert.Contains(t, html, `src="https://gravatar.com/avatar/abc?s=32&amp;d=mp"`)
	assert.Contains(t, html, `<tr class="editing">`)
	assert.Contains(t, html, "<td>1,234</td>")
	assert.Contains(t, html, `action="/banks/b1/delete"><button type="submit" class="danger" title="Bank has associated users">`)
	assert.Contains(t, html, `action="/banks/b2/delete"><button type="submit" class="danger">`)
}

func TestIndex_Document(t *testing.T) {
	html := render(t, models.Dashboard{AddCount: 2})
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.True(t, strings.HasSuffix(html, "</body></html>"))
	assert.Contains(t, html, `<title>bankdesk</title>`)
	assert.Contains(t, html, `<input type="hidden" name="count" value="2">`)
	assert.Contains(t, html, `action="/session/end"`)
}

func TestIndex_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	assert.ErrorIs(t, Index(models.Dashboard{}).Render(ctx, &buf), context.Canceled)
}
