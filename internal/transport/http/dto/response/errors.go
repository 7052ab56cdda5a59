package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrPostNotFound = ErrorResponse{
		Status:  "error",
		Error:   "post_not_found",
		Details: "Blog post not found",
	}

	ErrTemplateNotFound = ErrorResponse{
		Status:  "error",
		Error:   "template_not_found",
		Details: "Block template not found",
	}

	ErrMediaUploadFailed = ErrorResponse{
		Status:  "error",
		Error:   "media_upload_failed",
		Details: "Could not store attached media",
	}
)
