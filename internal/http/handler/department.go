package handler

import (
	"errors"
	"net/http"

	"department-service/internal/app"
	"department-service/internal/auth"
	"department-service/internal/domain/profile"
	"department-service/internal/domain/task"
	apperrors "department-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

const (
	fieldProgress    = "progress"
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldAssignedTo  = "assigned_to"
	fieldDueDate     = "due_date"
	fieldAttachment  = "attachment"
	fieldStatus      = "status"
	fieldReport      = "report"

	paramUserID = "user_id"
	paramTaskID = "id"
)

// DepartmentHandler serves the HTML pages behind the login.
type DepartmentHandler struct {
	svc     DepartmentService
	pages   *pageBuilder
	flashes *Flashes
}

func NewDepartmentHandler(svc DepartmentService, csrf CSRFTokens, csrfField string, flashes *Flashes) *DepartmentHandler {
	return &DepartmentHandler{
		svc:     svc,
		pages:   &pageBuilder{svc: svc, csrf: csrf, csrfField: csrfField, flashes: flashes},
		flashes: flashes,
	}
}

func (h *DepartmentHandler) render(c echo.Context, name, title string, data any) error {
	page, err := h.pages.build(c, title, data)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, name, page)
}

func (h *DepartmentHandler) EmployeeList(c echo.Context) error {
	entries, err := h.svc.ListEmployees(c.Request().Context())
	if err != nil {
		return err
	}
	return h.render(c, tmplEmployeeList, "Employees", entries)
}

type myProfileData struct {
	*app.ProfileView
	Statuses []task.Status
}

func (h *DepartmentHandler) MyProfile(c echo.Context) error {
	actor, err := auth.GetActor(c)
	if err != nil {
		return err
	}

	view, err := h.svc.MyProfile(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return h.render(c, tmplMyProfile, "My profile", myProfileData{ProfileView: view, Statuses: task.Statuses})
}

func (h *DepartmentHandler) UpdateMyProgress(c echo.Context) error {
	actor, err := auth.GetActor(c)
	if err != nil {
		return err
	}

	if _, err := h.svc.UpdateOwnProgress(c.Request().Context(), actor, c.FormValue(fieldProgress)); err != nil {
		return h.flashes.recoverOutcome(c, err, pathProfile)
	}
	return h.flashes.redirect(c, FlashSuccess, app.MsgProgressUpdated, pathProfile)
}

type assignData struct {
	Assignees          []profile.Profile
	AttachmentsEnabled bool
}

func (h *DepartmentHandler) AssignForm(c echo.Context) error {
	actor, err := auth.GetActor(c)
	if err != nil {
		return err
	}

	assignees, err := h.svc.AssigneesFor(c.Request().Context(), actor)
	if err != nil {
		return h.flashes.recoverOutcome(c, err, pathHome)
	}
	return h.render(c, tmplAssignTask, "Assign task", assignData{
		Assignees:          assignees,
		AttachmentsEnabled: h.svc.AttachmentsEnabled(),
	})
}

func (h *DepartmentHandler) Assign(c echo.Context) error {
	actor, err := auth.GetActor(c)
	if err != nil {
		return err
	}

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidInput)
	}

	upload, closeUpload, err := readUpload(c)
	if err != nil {
		return err
	}
	defer closeUpload()

	n, err := h.svc.AssignTasks(c.Request().Context(), actor, app.AssignRequest{
		Title:       form.Get(fieldTitle),
		Description: form.Get(fieldDescription),
		AssigneeIDs: form[fieldAssignedTo],
		DueDate:     form.Get(fieldDueDate),
		Attachment:  upload,
	})
	if err != nil {
		return h.flashes.recoverOutcome(c, err, pathAssign)
	}
	return h.flashes.redirect(c, FlashSuccess, app.TasksAssignedMessage(n), pathAssign)
}

// readUpload returns nil when the form carries no file.
func readUpload(c echo.Context) (*app.Upload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(fieldAttachment)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, msgReadUpload)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, apperrors.InternalServer(msgReadUpload, err)
	}

	return &app.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func (h *DepartmentHandler) EditProfileForm(c echo.Context) error {
	actor, err := auth.GetActor(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, paramUserID)
	if err != nil {
		return err
	}

	view, err := h.svc.ProfileForEdit(c.Request().Context(), actor, userID)
	if err != nil {
		return h.flashes.recoverOutcome(c, err, pathHome)
	}
	return h.render(c, tmplEditProfile, "Edit profile", view)
}

func (h *DepartmentHandler) EditProfile(c echo.Context) error {
	actor, err := auth.GetActor(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, paramUserID)
	if err != nil {
		return err
	}

	if _, err := h.svc.EditProfile(c.Request().Context(), actor, userID, c.FormValue(fieldProgress)); err != nil {
		return h.flashes.recoverOutcome(c, err, c.Request().URL.Path)
	}
	return h.flashes.redirect(c, FlashSuccess, app.MsgProfileUpdated, pathHome)
}

type reportData struct {
	Task     *task.Task
	Statuses []task.Status
}

func (h *DepartmentHandler) ReportForm(c echo.Context) error {
	actor, err := auth.GetActor(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, paramTaskID)
	if err != nil {
		return err
	}

	t, err := h.svc.TaskForReport(c.Request().Context(), actor, taskID)
	if err != nil {
		return h.flashes.recoverOutcome(c, err, pathHome)
	}
	return h.render(c, tmplReportTask, "Report task", reportData{Task: t, Statuses: task.Statuses})
}

func (h *DepartmentHandler) Report(c echo.Context) error {
	actor, err := auth.GetActor(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, paramTaskID)
	if err != nil {
		return err
	}

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidInput)
	}

	req := app.ReportRequest{
		Status:   optionalField(form, fieldStatus),
		Progress: optionalField(form, fieldProgress),
		Review:   optionalField(form, fieldReport),
	}
	if _, err := h.svc.ReportTask(c.Request().Context(), actor, taskID, req); err != nil {
		return h.flashes.recoverOutcome(c, err, c.Request().URL.Path)
	}
	return h.flashes.redirect(c, FlashSuccess, app.MsgTaskUpdated, pathProfile)
}

func optionalField(form map[string][]string, name string) *string {
	values, ok := form[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// Attachment redirects to a short-lived download link.
func (h *DepartmentHandler) Attachment(c echo.Context) error {
	actor, err := auth.GetActor(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, paramTaskID)
	if err != nil {
		return err
	}

	url, err := h.svc.AttachmentURL(c.Request().Context(), actor, taskID)
	if err != nil {
		return h.flashes.recoverOutcome(c, err, pathProfile)
	}
	return c.Redirect(http.StatusFound, url)
}
