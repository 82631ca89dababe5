package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	ltypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/gamedrops/droplist/email"
	"github.com/gamedrops/droplist/ops"
	"github.com/gamedrops/droplist/store"
)

var AwsConfig aws.Config = ops.MustLoadDefaultAwsConfig()

type DynamoDbFactoryFunc func(tableName string) *store.DynamoDb

func NewDynamoDb(tableName string) *store.DynamoDb {
	return store.NewDynamoDb(AwsConfig, tableName)
}

type SuppressorFactoryFunc func() email.Suppressor

func NewSesSuppressor() email.Suppressor {
	return &email.SesSuppressor{Client: sesv2.NewFromConfig(AwsConfig)}
}

type LambdaClient interface {
	Invoke(
		context.Context,
		*lambda.InvokeInput,
		...func(*lambda.Options),
	) (*lambda.InvokeOutput, error)
}

type LambdaClientFactoryFunc func() LambdaClient

func NewLambdaClient() LambdaClient {
	return lambda.NewFromConfig(AwsConfig)
}

type CloudFormationClient interface {
	DescribeStacks(
		context.Context,
		*cloudformation.DescribeStacksInput,
		...func(*cloudformation.Options),
	) (*cloudformation.DescribeStacksOutput, error)
}

type CloudFormationClientFactoryFunc func() CloudFormationClient

func NewCloudFormationClient() CloudFormationClient {
	return cloudformation.NewFromConfig(AwsConfig)
}

// FunctionArnKey is the output key the deployment stack uses to publish the
// Lambda function's ARN.
const FunctionArnKey = "DroplistFunctionArn"

// GetLambdaArn resolves the deployed function's ARN from the deployment
// stack's outputs.
func GetLambdaArn(
	ctx context.Context, cfc CloudFormationClient, stackName string,
) (arn string, err error) {
	input := &cloudformation.DescribeStacksInput{StackName: &stackName}
	output, err := cfc.DescribeStacks(ctx, input)

	if err != nil {
		err = ops.AwsError("failed to get Lambda ARN for "+stackName, err)
		return
	} else if len(output.Stacks) == 0 {
		err = fmt.Errorf("stack not found: %s", stackName)
		return
	}

	for _, stackOutput := range output.Stacks[0].Outputs {
		if aws.ToString(stackOutput.OutputKey) == FunctionArnKey {
			arn = aws.ToString(stackOutput.OutputValue)
			return
		}
	}
	err = fmt.Errorf(
		`stack "%s" doesn't contain output key "%s"`, stackName, FunctionArnKey,
	)
	return
}

// invokeLambda synchronously invokes the deployed function with payload and
// unmarshals its response into response.
func invokeLambda(
	ctx context.Context,
	client LambdaClient,
	functionArn string,
	payload any,
	response any,
) (err error) {
	var encoded []byte
	if encoded, err = json.Marshal(payload); err != nil {
		return fmt.Errorf("error creating Lambda payload: %s", err)
	}

	input := &lambda.InvokeInput{
		FunctionName: aws.String(functionArn),
		LogType:      ltypes.LogTypeTail,
		Payload:      encoded,
	}
	var output *lambda.InvokeOutput

	if output, err = client.Invoke(ctx, input); err != nil {
		err = fmt.Errorf("error invoking Lambda function: %s", err)
	} else if output.StatusCode != http.StatusOK {
		err = fmt.Errorf(
			"received non-200 response: %s",
			http.StatusText(int(output.StatusCode)),
		)
	} else if output.FunctionError != nil {
		err = fmt.Errorf(
			"error executing Lambda function: %s: %s",
			aws.ToString(output.FunctionError), string(output.Payload),
		)
	} else if err = json.Unmarshal(output.Payload, response); err != nil {
		err = fmt.Errorf(
			"failed to unmarshal Lambda response payload: %s: %s",
			err, string(output.Payload),
		)
	}
	return
}

// resolveFunctionArn picks the function to invoke: an explicit ARN argument
// wins, otherwise the ARN comes from the named stack's outputs.
func resolveFunctionArn(
	ctx context.Context,
	cfc CloudFormationClient,
	stackName string,
	args []string,
) (string, error) {
	if len(args) != 0 {
		return args[0], nil
	} else if stackName == "" {
		return "", fmt.Errorf(
			"specify a Lambda ARN argument or --%s", FlagStackName,
		)
	}
	return GetLambdaArn(ctx, cfc, stackName)
}
