package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// AuthError means no usable AWS credentials are present. It aborts the
// run before anything destructive happens.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("no valid AWS credentials: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// VerifyIdentity confirms the active credentials by resolving the caller
// identity and returns the account ID. This is the read-only short-circuit
// that runs before any stage.
func VerifyIdentity(ctx context.Context, client STSAPI) (string, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", &AuthError{Err: err}
	}
	return aws.ToString(out.Account), nil
}
