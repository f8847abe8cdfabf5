package response

var (
	ErrInternal = ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Details: "Internal server error",
	}

	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrInvalidRegisterRequest = ErrorResponse{
		Status:  "error",
		Error:   "invalid_register_request",
		Details: "Invalid registration data",
	}

	ErrUserAlreadyExists = ErrorResponse{
		Status:  "error",
		Error:   "user_already_exists",
		Details: "User with this email already exists",
	}

	ErrPageNotFound = ErrorResponse{
		Status:  "error",
		Error:   "page_not_found",
		Details: "Page does not exist",
	}

	ErrSlugTaken = ErrorResponse{
		Status:  "error",
		Error:   "slug_taken",
		Details: "A page with this slug already exists",
	}

	ErrUploadsInFlight = ErrorResponse{
		Status:  "error",
		Error:   "uploads_in_flight",
		Details: "Uploads are still running, wait for them to finish before saving",
	}

	ErrFileTooLarge = ErrorResponse{
		Status:  "error",
		Error:   "file_too_large",
		Details: "File exceeds the maximum allowed size",
	}

	ErrMediaInUse = ErrorResponse{
		Status:  "error",
		Error:   "media_in_use",
		Details: "File is referenced by a page, pass force=true to delete anyway",
	}

	ErrMediaNotFound = ErrorResponse{
		Status:  "error",
		Error:   "media_not_found",
		Details: "File does not exist",
	}
)
