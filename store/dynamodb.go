package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gamedrops/droplist/ops"
	"github.com/google/uuid"
)

type DynamoDbClient interface {
	CreateTable(
		context.Context, *dynamodb.CreateTableInput, ...func(*dynamodb.Options),
	) (*dynamodb.CreateTableOutput, error)

	DescribeTable(
		context.Context,
		*dynamodb.DescribeTableInput,
		...func(*dynamodb.Options),
	) (*dynamodb.DescribeTableOutput, error)

	DeleteTable(
		context.Context, *dynamodb.DeleteTableInput, ...func(*dynamodb.Options),
	) (*dynamodb.DeleteTableOutput, error)

	GetItem(
		context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options),
	) (*dynamodb.GetItemOutput, error)

	PutItem(
		context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options),
	) (*dynamodb.PutItemOutput, error)
}

// DynamoDb implements DocumentStore with one item per document and a
// conditional PutItem on a version attribute. It offers the same contract
// as GitHubStore for deployments that would rather not keep operational
// data in a repository.
type DynamoDb struct {
	Client    DynamoDbClient
	TableName string

	// NewToken mints the version token for each successful Put. Defaults to
	// a random UUID; overridable for testing.
	NewToken func() string
}

func NewDynamoDb(awsCfg aws.Config, tableName string) *DynamoDb {
	return &DynamoDb{
		Client:    dynamodb.NewFromConfig(awsCfg),
		TableName: tableName,
		NewToken:  uuid.NewString,
	}
}

var DynamoDbPrimaryKey string = "path"

var DynamoDbCreateTableInput = &dynamodb.CreateTableInput{
	AttributeDefinitions: []types.AttributeDefinition{
		{
			AttributeName: &DynamoDbPrimaryKey,
			AttributeType: types.ScalarAttributeTypeS,
		},
	},
	KeySchema: []types.KeySchemaElement{
		{AttributeName: &DynamoDbPrimaryKey, KeyType: types.KeyTypeHash},
	},
	BillingMode: types.BillingModePayPerRequest,
}

func (db *DynamoDb) CreateTable(ctx context.Context) (err error) {
	var input dynamodb.CreateTableInput = *DynamoDbCreateTableInput
	input.TableName = &db.TableName

	if _, err = db.Client.CreateTable(ctx, &input); err != nil {
		err = fmt.Errorf("failed to create table %s: %s", db.TableName, err)
	}
	return
}

func (db *DynamoDb) WaitForTable(
	ctx context.Context, maxAttempts int, sleep func(),
) error {
	if maxAttempts <= 0 {
		const errFmt = "maxAttempts to wait for table must be >= 0, got: %d"
		return fmt.Errorf(errFmt, maxAttempts)
	}

	for current := 0; ; {
		td, err := db.DescribeTable(ctx)

		if err == nil && td.TableStatus == types.TableStatusActive {
			return nil
		} else if current++; current == maxAttempts {
			const errFmt = "table %s not active after " +
				"%d attempts to check; last error: %s"
			return fmt.Errorf(errFmt, db.TableName, maxAttempts, err)
		}
		sleep()
	}
}

func (db *DynamoDb) DescribeTable(
	ctx context.Context,
) (td *types.TableDescription, err error) {
	input := &dynamodb.DescribeTableInput{TableName: &db.TableName}
	output, descErr := db.Client.DescribeTable(ctx, input)

	if descErr != nil {
		const errFmt = "failed to describe table %s: %s"
		err = fmt.Errorf(errFmt, db.TableName, descErr)
	} else {
		td = output.Table
	}
	return
}

func (db *DynamoDb) DeleteTable(ctx context.Context) error {
	input := &dynamodb.DeleteTableInput{TableName: &db.TableName}
	if _, err := db.Client.DeleteTable(ctx, input); err != nil {
		return fmt.Errorf("failed to delete table %s: %s", db.TableName, err)
	}
	return nil
}

type (
	dbString     = types.AttributeValueMemberS
	dbBinary     = types.AttributeValueMemberB
	dbAttributes = map[string]types.AttributeValue
)

const dbBodyAttr = "body"
const dbVersionAttr = "version"
const dbChangelogAttr = "changelog"

func documentKey(path string) dbAttributes {
	return dbAttributes{DynamoDbPrimaryKey: &dbString{Value: path}}
}

func (db *DynamoDb) Get(
	ctx context.Context, path string,
) (doc *Document, err error) {
	input := &dynamodb.GetItemInput{
		Key: documentKey(path), TableName: &db.TableName,
		ConsistentRead: aws.Bool(true),
	}
	var output *dynamodb.GetItemOutput

	if output, err = db.Client.GetItem(ctx, input); err != nil {
		err = ops.AwsError("failed to get "+path, err)
	} else if len(output.Item) == 0 {
		err = fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
	} else {
		doc, err = parseDocument(path, output.Item)
	}
	return
}

func parseDocument(path string, attrs dbAttributes) (*Document, error) {
	body, err := getAttribute(dbBodyAttr, attrs, func(a *dbBinary) ([]byte, error) {
		return a.Value, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %s", path, err)
	}

	token, err := getAttribute(dbVersionAttr, attrs, func(a *dbString) (string, error) {
		return a.Value, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %s", path, err)
	}
	return &Document{Body: body, Token: token}, nil
}

func getAttribute[T any, V any](
	name string, attrs dbAttributes, parse func(T) (V, error),
) (value V, err error) {
	if attr, ok := attrs[name]; !ok {
		err = fmt.Errorf("attribute '%s' not in: %+v", name, attrs)
	} else if dbAttr, ok := attr.(T); !ok {
		// Inspired by: https://stackoverflow.com/a/72626548
		const errFmt = "attribute '%s' is of type %T, not %T: %+v"
		err = fmt.Errorf(errFmt, name, attr, new(T), attr)
	} else if value, err = parse(dbAttr); err != nil {
		value = *new(V)
		const errFmt = "failed to parse '%s' from: %+v: %s"
		err = fmt.Errorf(errFmt, name, dbAttr, err)
	}
	return
}

func (db *DynamoDb) Put(
	ctx context.Context, path string, body []byte,
	expectedToken, changelog string,
) (newToken string, err error) {
	token := db.NewToken()
	input := &dynamodb.PutItemInput{
		Item: dbAttributes{
			DynamoDbPrimaryKey: &dbString{Value: path},
			dbBodyAttr:         &dbBinary{Value: body},
			dbVersionAttr:      &dbString{Value: token},
			dbChangelogAttr:    &dbString{Value: changelog},
		},
		TableName: &db.TableName,
	}

	if expectedToken == "" {
		input.ConditionExpression = aws.String(
			"attribute_not_exists(#path)",
		)
		input.ExpressionAttributeNames = map[string]string{
			"#path": DynamoDbPrimaryKey,
		}
	} else {
		input.ConditionExpression = aws.String("#version = :expected")
		input.ExpressionAttributeNames = map[string]string{
			"#version": dbVersionAttr,
		}
		input.ExpressionAttributeValues = dbAttributes{
			":expected": &dbString{Value: expectedToken},
		}
	}

	var condErr *types.ConditionalCheckFailedException

	if _, err = db.Client.PutItem(ctx, input); err == nil {
		newToken = token
	} else if errors.As(err, &condErr) {
		err = fmt.Errorf("%w: %s", ErrVersionConflict, path)
	} else {
		err = ops.AwsError("failed to update "+path, err)
	}
	return
}
