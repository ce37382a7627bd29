package aws

import (
	"errors"

	"github.com/aws/smithy-go"
)

// IsNotFound reports whether err is an AWS "not found" API error.
func IsNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "ResourceNotFoundException":
			return true
		}
	}
	return false
}
