package handler

const (
	msgNotFound         = "Not found"
	msgPermissionDenied = "Permission denied."
	msgInvalidInput     = "Invalid input."
	msgJSONDenied       = "Permission denied"
	msgReadUpload       = "failed to read attachment"
)
