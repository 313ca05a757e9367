package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/kusina-api/internal/domain"
)

// SupportRepo stores contact-form tickets in the support_tickets table.
type SupportRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSupportRepo(client *dynamodb.Client, tableName string) *SupportRepo {
	return &SupportRepo{client: client, tableName: tableName}
}

func (r *SupportRepo) Create(ctx context.Context, t *domain.SupportTicket) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal support ticket: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(ticket_id)"),
	})
	return conflictOnCondition(err, "support ticket already exists")
}

func (r *SupportRepo) Get(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("ticket_id", ticketID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("ticket not found: %w", domain.ErrNotFound)
	}
	var t domain.SupportTicket
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns every ticket, newest first.
func (r *SupportRepo) List(ctx context.Context) ([]domain.SupportTicket, error) {
	tickets := []domain.SupportTicket{}
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.SupportTicket
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		tickets = append(tickets, batch...)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].CreatedAt.After(tickets[j].CreatedAt) })
	return tickets, nil
}

// SetStatus changes the ticket status. A non-nil repliedAt is stored with it.
func (r *SupportRepo) SetStatus(ctx context.Context, ticketID, status string, repliedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if repliedAt != nil {
		updates["replied_at"] = repliedAt.UTC()
	}
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("ticket_id", ticketID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(ticket_id)"),
	})
	return notFoundOnCondition(err, "ticket not found")
}
