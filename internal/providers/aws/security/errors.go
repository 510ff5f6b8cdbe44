package awssecurity

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// AWS error codes that mean the target of a call does not exist.
const (
	codeNoSuchBucketPolicy      = "NoSuchBucketPolicy"
	codeNoSuchPublicAccessBlock = "NoSuchPublicAccessBlockConfiguration"
	codePermissionNotFound      = "InvalidPermission.NotFound"
	codeGroupNotFound           = "InvalidGroup.NotFound"
)

// errorCode returns the AWS API error code carried by err, or "".
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// translate maps err to models.ErrNotFound when its code is one of
// notFoundCodes, keeping the original error in the chain. Other errors are
// wrapped with op.
func translate(op string, err error, notFoundCodes ...string) error {
	code := errorCode(err)
	for _, c := range notFoundCodes {
		if code == c {
			return fmt.Errorf("%s: %w: %w", op, models.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
