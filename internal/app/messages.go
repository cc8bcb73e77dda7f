package app

import "fmt"

// User-facing outcomes, shown as flash messages.
const (
	MsgProgressUpdated          = "Your progress has been updated."
	MsgProfileUpdated           = "Profile updated."
	MsgPermissionDenied         = "Permission denied."
	MsgReportOwnTasksOnly       = "You can only report your own tasks."
	MsgTitleAndAssigneeRequired = "Title and assignee are required."
	MsgEmployeeNotFound         = "Selected employee does not exist."
	MsgTaskUpdated              = "Task updated."
	MsgInvalidStatus            = "Select a valid status."
	MsgStatusBackwards          = "A task's status cannot move backwards."
	MsgInvalidDueDate           = "Enter a valid due date (YYYY-MM-DD)."
	MsgAttachmentsDisabled      = "Attachments are not enabled on this server."
	MsgNoAttachment             = "This task has no attachment."
	MsgInvalidCredentials       = "Please enter a correct username and password."

	msgTasksAssignedFmt = "%d task(s) assigned successfully."
)

func TasksAssignedMessage(n int) string {
	return fmt.Sprintf(msgTasksAssignedFmt, n)
}
