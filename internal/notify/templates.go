package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

func parse(name string) *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

var (
	invitationTmpl   = parse("invitation.html")
	taskAssignedTmpl = parse("task_assigned.html")
)

// InvitationData renders both the invite-only email and the
// "you were added" email; Added switches the wording.
type InvitationData struct {
	To                   string
	RecipientName        string
	InviterName          string
	WorkspaceName        string
	WorkspaceDescription string
	Role                 string
	Message              string
	DashboardURL         string
	Added                bool
}

type TaskAssignedData struct {
	To              string
	AssigneeName    string
	ProjectName     string
	TaskTitle       string
	TaskDescription string
	DueDate         time.Time
	TaskURL         string
}

func Invitation(d InvitationData) (Message, error) {
	view := struct {
		InvitationData
		CallToAction string
		ButtonLabel  string
	}{InvitationData: d}

	if d.Added {
		view.CallToAction = "You can now access this workspace and start collaborating with your team."
		view.ButtonLabel = "Access Workspace"
	} else {
		view.CallToAction = "Click the button below to accept the invitation and start collaborating with your team."
		view.ButtonLabel = "Accept Invitation"
	}

	body, err := render(invitationTmpl, view)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      d.To,
		Subject: fmt.Sprintf("You've been invited to join %s", d.WorkspaceName),
		HTML:    body,
	}, nil
}

func TaskAssigned(d TaskAssignedData) (Message, error) {
	view := struct {
		TaskAssignedData
		DueDate string
	}{TaskAssignedData: d, DueDate: d.DueDate.Format("Jan 2, 2006")}

	body, err := render(taskAssignedTmpl, view)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      d.To,
		Subject: fmt.Sprintf("New Task Assignment in %s", d.ProjectName),
		HTML:    body,
	}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
