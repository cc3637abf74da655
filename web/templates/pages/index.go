package pages

import (
	"strconv"

	"github.com/a-h/templ"
	"github.com/jon4hz/bankdesk/internal/api/models"
	"github.com/jon4hz/bankdesk/web/templates/components"
)

// Index renders the dashboard with both tables, the notice banner and the
// edit form.
func Index(d models.Dashboard) templ.Component {
	return layout("bankdesk", dashboard(d))
}

func dashboard(d models.Dashboard) templ.Component {
	return component(func(p *writer) {
		p.raw(`<header><h1>bankdesk</h1><div>`)
		p.render(components.PostButton("/reset", "Reload data", "secondary", ""))
		p.render(components.PostButton("/session/end", "End session", "secondary", ""))
		p.raw(`</div></header><main>`)
		if d.Notice != nil {
			p.render(components.Notice(string(d.Notice.Level), d.Notice.Message))
		}
		p.render(usersSection(d))
		p.render(banksSection(d))
		if d.Edit != nil {
			p.render(editModal(*d.Edit))
		}
		p.raw(`</main><footer>`)
		p.text(components.FormatCount(len(d.Users)))
		p.raw(` users, `)
		p.text(components.FormatCount(len(d.Banks)))
		p.raw(` banks. Seeded `)
		p.text(components.FormatRelativeTime(d.SeededAt))
		p.raw(`.</footer>`)
	})
}

func rowOpen(p *writer, editing bool) {
	if editing {
		p.raw(`<tr class="editing">`)
		return
	}
	p.raw(`<tr>`)
}

func cell(p *writer, s string) {
	p.raw(`<td>`)
	p.text(s)
	p.raw(`</td>`)
}

func headers(p *writer, names ...string) {
	p.raw(`<thead><tr>`)
	for _, n := range names {
		p.raw(`<th>`)
		p.text(n)
		p.raw(`</th>`)
	}
	p.raw(`</tr></thead>`)
}

func emptyRow(p *writer, colspan int, message string) {
	p.raw(`<tr><td class="empty" colspan="`)
	p.raw(strconv.Itoa(colspan))
	p.raw(`">`)
	p.text(message)
	p.raw(`</td></tr>`)
}

func usersSection(d models.Dashboard) templ.Component {
	return component(func(p *writer) {
		p.raw(`<section id="users"><div class="title"><h2>Users</h2>`)
		p.render(components.AddForm("/users", "Add user", d.AddCount))
		p.raw(`</div><table>`)

		cols := []string{"ID", "First name", "Last name", "Username", "Email", "Bank", ""}
		if d.AvatarsEnabled {
			cols = append([]string{""}, cols...)
		}
		headers(p, cols...)

		p.raw(`<tbody>`)
		for _, u := range d.Users {
			rowOpen(p, u.Editing)
			if d.AvatarsEnabled {
				p.raw(`<td>`)
				if u.AvatarURL != "" {
					p.raw(`<img class="avatar" src="`)
					p.url(u.AvatarURL)
					p.raw(`" alt="">`)
				}
				p.raw(`</td>`)
			}
			cell(p, u.ID)
			cell(p, u.FirstName)
			cell(p, u.LastName)
			cell(p, u.Username)
			cell(p, u.Email)
			cell(p, u.BankName)
			p.raw(`<td class="actions">`)
			p.render(components.PostButton("/users/"+u.ID+"/edit", "Edit", "secondary", ""))
			p.render(components.PostButton("/users/"+u.ID+"/delete", "Delete", "danger", ""))
			p.raw(`</td></tr>`)
		}
		if len(d.Users) == 0 {
			emptyRow(p, len(cols), "No users")
		}
		p.raw(`</tbody></table></section>`)
	})
}

func banksSection(d models.Dashboard) templ.Component {
	return component(func(p *writer) {
		p.raw(`<section id="banks"><div class="title"><h2>Banks</h2>`)
		p.render(components.AddForm("/banks", "Add bank", d.AddCount))
		p.raw(`</div><table>`)

		cols := []string{"ID", "Bank name", "Routing number", "SWIFT/BIC", "Users", ""}
		headers(p, cols...)

		p.raw(`<tbody>`)
		for _, b := range d.Banks {
			rowOpen(p, b.Editing)
			cell(p, b.ID)
			cell(p, b.BankName)
			cell(p, b.RoutingNumber)
			cell(p, b.SwiftBIC)
			cell(p, components.FormatCount(b.Users))
			var title string
			if b.InUse() {
				title = "Bank has associated users"
			}
			p.raw(`<td class="actions">`)
			p.render(components.PostButton("/banks/"+b.ID+"/edit", "Edit", "secondary", ""))
			p.render(components.PostButton("/banks/"+b.ID+"/delete", "Delete", "danger", title))
			p.raw(`</td></tr>`)
		}
		if len(d.Banks) == 0 {
			emptyRow(p, len(cols), "No banks")
		}
		p.raw(`</tbody></table></section>`)
	})
}

func editModal(f models.EditForm) templ.Component {
	return component(func(p *writer) {
		p.raw(`<div class="modal-backdrop"><form class="modal" method="post" action="/edit/save"><h2>`)
		p.text(f.Title)
		p.raw(` `)
		p.text(f.ID)
		p.raw(`</h2>`)
		for _, field := range f.Fields {
			p.raw(`<label>`)
			p.text(field.Label)
			p.raw(`<input type="text" name="`)
			p.text(field.Name)
			p.raw(`" value="`)
			p.text(field.Value)
			p.raw(`"></label>`)
		}
		if len(f.BankOptions) > 0 {
			p.raw(`<label>Bank<select name="bank_id">`)
			for _, o := range f.BankOptions {
				p.raw(`<option value="`)
				p.text(o.ID)
				p.raw(`"`)
				if o.Selected {
					p.raw(` selected`)
				}
				p.raw(`>`)
				p.text(o.Name)
				p.raw(`</option>`)
			}
			p.raw(`</select></label>`)
		}
		p.raw(`<div class="buttons">`)
		p.raw(`<button type="submit" formaction="/edit/cancel" class="secondary">Cancel</button>`)
		p.raw(`<button type="submit">Save</button>`)
		p.raw(`</div></form></div>`)
	})
}
