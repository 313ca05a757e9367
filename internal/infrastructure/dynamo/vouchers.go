package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kusina-api/internal/domain"
)

// VoucherRepo provides typed DynamoDB operations for the vouchers table.
// PK: voucher_id. GSI user_id-index lists a user's vouchers.
type VoucherRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVoucherRepo(client *dynamodb.Client, tableName string) *VoucherRepo {
	return &VoucherRepo{client: client, tableName: tableName}
}

func (r *VoucherRepo) Create(ctx context.Context, v *domain.Voucher) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal voucher: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(voucher_id)"),
	})
	return conflictOnCondition(err, "voucher already exists")
}

// ListByUser returns the user's vouchers soonest-expiring first.
func (r *VoucherRepo) ListByUser(ctx context.Context, userID string, unusedOnly bool) ([]domain.Voucher, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("user_id-expires_at-index"),
		KeyConditionExpression:    aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
		ScanIndexForward:          aws.Bool(true),
	}
	if unusedOnly {
		input.FilterExpression = aws.String("is_used = :f")
		input.ExpressionAttributeValues[":f"] = &types.AttributeValueMemberBOOL{Value: false}
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, err
	}
	vouchers := []domain.Voucher{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &vouchers); err != nil {
		return nil, err
	}
	return vouchers, nil
}

// GetByCode finds the user's voucher with the given code.
func (r *VoucherRepo) GetByCode(ctx context.Context, userID, code string) (*domain.Voucher, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-expires_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("code = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":c":   &types.AttributeValueMemberS{Value: code},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("voucher not found: %w", domain.ErrNotFound)
	}
	var v domain.Voucher
	if err := attributevalue.UnmarshalMap(out.Items[0], &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// MarkUsed flips is_used on the user's voucher. A voucher already used is reported as ErrConflict.
func (r *VoucherRepo) MarkUsed(ctx context.Context, userID, code string) error {
	v, err := r.GetByCode(ctx, userID, code)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("voucher_id", v.VoucherID),
		UpdateExpression: aws.String("SET is_used = :t, used_at = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberBOOL{Value: true},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("is_used = :f"),
	})
	return conflictOnCondition(err, "voucher already used")
}

// Delete removes the voucher and returns what was stored.
func (r *VoucherRepo) Delete(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          strKey("voucher_id", voucherID),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, err
	}
	if out.Attributes == nil {
		return nil, fmt.Errorf("voucher not found: %w", domain.ErrNotFound)
	}
	var v domain.Voucher
	if err := attributevalue.UnmarshalMap(out.Attributes, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
