package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kusina-api/internal/domain"
)

// StoreHoursRepo keeps one item per weekday in the store_hours table, keyed
// by the numeric day_of_week.
type StoreHoursRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewStoreHoursRepo(client *dynamodb.Client, tableName string) *StoreHoursRepo {
	return &StoreHoursRepo{client: client, tableName: tableName}
}

// List returns the saved schedule ordered Sunday first. It is empty until
// the first Replace.
func (r *StoreHoursRepo) List(ctx context.Context) ([]domain.StoreHours, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, err
	}
	hours := []domain.StoreHours{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &hours); err != nil {
		return nil, err
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].DayOfWeek < hours[j].DayOfWeek })
	return hours, nil
}

// Replace writes hours and deletes any saved day missing from it. A week is
// at most 14 requests, inside one BatchWriteItem call.
func (r *StoreHoursRepo) Replace(ctx context.Context, hours []domain.StoreHours) error {
	existing, err := r.List(ctx)
	if err != nil {
		return err
	}
	keep := make(map[int]bool, len(hours))
	writes := make([]types.WriteRequest, 0, len(hours)+len(existing))
	for _, h := range hours {
		item, err := attributevalue.MarshalMap(h)
		if err != nil {
			return fmt.Errorf("marshal store hours: %w", err)
		}
		keep[h.DayOfWeek] = true
		writes = append(writes, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	for _, h := range existing {
		if keep[h.DayOfWeek] {
			continue
		}
		writes = append(writes, types.WriteRequest{DeleteRequest: &types.DeleteRequest{
			Key: map[string]types.AttributeValue{"day_of_week": &types.AttributeValueMemberN{Value: strconv.Itoa(h.DayOfWeek)}},
		}})
	}
	if len(writes) == 0 {
		return nil
	}

	pending := map[string][]types.WriteRequest{r.tableName: writes}
	for attempt := 0; len(pending[r.tableName]) > 0; attempt++ {
		if attempt == 3 {
			return fmt.Errorf("store hours: %d writes left unprocessed", len(pending[r.tableName]))
		}
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return err
		}
		pending = out.UnprocessedItems
	}
	return nil
}
