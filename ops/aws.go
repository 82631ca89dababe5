package ops

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/smithy-go"
)

// AwsError wraps err with ErrExternal if it's a server side error.
//
// Inspired by:
// https://aws.github.io/aws-sdk-go-v2/docs/handling-errors/#api-error-responses
func AwsError(msg string, err error) error {
	var apiErr smithy.APIError

	if errors.As(err, &apiErr) && apiErr.ErrorFault() == smithy.FaultServer {
		return fmt.Errorf("%s: %w: %w", msg, ErrExternal, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func MustLoadDefaultAwsConfig() (awsConfig aws.Config) {
	var err error
	awsConfig, err = config.LoadDefaultConfig(context.Background())

	if err != nil {
		panic("failed to load AWS config: " + err.Error())
	}
	return
}
