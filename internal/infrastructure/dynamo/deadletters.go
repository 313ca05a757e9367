package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/kusina-api/internal/domain"
)

// DeadLetterRepo stores undeliverable emails. Rows expire through the expires_at TTL.
type DeadLetterRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDeadLetterRepo(client *dynamodb.Client, tableName string) *DeadLetterRepo {
	return &DeadLetterRepo{client: client, tableName: tableName}
}

func (r *DeadLetterRepo) Put(ctx context.Context, d *domain.EmailDeadLetter) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
