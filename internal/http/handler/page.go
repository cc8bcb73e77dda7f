package handler

import (
	"department-service/internal/app"
	"department-service/internal/auth"

	"github.com/labstack/echo/v4"
)

// Template names.
const (
	tmplLogin        = "login.html"
	tmplEmployeeList = "employee_list.html"
	tmplMyProfile    = "my_profile.html"
	tmplAssignTask   = "assign_task.html"
	tmplEditProfile  = "edit_profile.html"
	tmplReportTask   = "report_task.html"
	TmplError        = "error.html"
)

// Page is the data every template receives.
type Page struct {
	Title          string
	Actor          app.Actor
	LoggedIn       bool
	CanAssign      bool
	CanViewMetrics bool
	Flash          *Flash
	CSRFField      string
	CSRFToken      string
	Data           any
}

type pageBuilder struct {
	svc       DepartmentService
	csrf      CSRFTokens
	csrfField string
	flashes   *Flashes
}

func (b *pageBuilder) build(c echo.Context, title string, data any) (*Page, error) {
	p := &Page{
		Title:     title,
		Flash:     b.flashes.pop(c),
		CSRFField: b.csrfField,
		Data:      data,
	}

	actor, err := auth.GetActor(c)
	if err != nil {
		return p, nil
	}

	token, err := b.csrf.GetOrCreateToken(actor.UserID)
	if err != nil {
		return nil, err
	}

	policy := b.svc.Policy()
	p.Actor = actor
	p.LoggedIn = true
	p.CanAssign = policy.CanAssign(actor.Profile) == nil
	p.CanViewMetrics = policy.CanViewMetrics(actor.Profile) == nil
	p.CSRFToken = token
	return p, nil
}
