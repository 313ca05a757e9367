package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kusina-api/internal/domain"
)

// MenuRepo provides typed DynamoDB operations for the menu_items table.
// The menu is small, so listing is a full scan sorted in memory.
type MenuRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMenuRepo(client *dynamodb.Client, tableName string) *MenuRepo {
	return &MenuRepo{client: client, tableName: tableName}
}

func (r *MenuRepo) Create(ctx context.Context, m *domain.MenuItem) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal menu item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(item_id)"),
	})
	return conflictOnCondition(err, "menu item already exists")
}

// List returns featured items first, then by name. activeOnly hides disabled items.
func (r *MenuRepo) List(ctx context.Context, activeOnly bool) ([]domain.MenuItem, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
	if activeOnly {
		input.FilterExpression = aws.String("is_active = :t")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{":t": &types.AttributeValueMemberBOOL{Value: true}}
	}
	items := []domain.MenuItem{}
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.MenuItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].IsFeatured != items[j].IsFeatured {
			return items[i].IsFeatured
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (r *MenuRepo) Update(ctx context.Context, itemID string, updates map[string]interface{}) (*domain.MenuItem, error) {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("item_id", itemID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(item_id)"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, notFoundOnCondition(err, "menu item not found")
	}
	var m domain.MenuItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes the item and returns what was stored.
func (r *MenuRepo) Delete(ctx context.Context, itemID string) (*domain.MenuItem, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("item_id", itemID),
		ConditionExpression: aws.String("attribute_exists(item_id)"),
		ReturnValues:        types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, notFoundOnCondition(err, "menu item not found")
	}
	var m domain.MenuItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
