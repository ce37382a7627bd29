package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"gorm.io/datatypes"
)

// timestampLayout is fixed width so string comparison in filter expressions
// matches chronological order.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// DynamoAPI is the subset of the DynamoDB client used by the policy store.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoPolicyRepository stores policies in a table keyed by `policy_id` (string).
type DynamoPolicyRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoPolicyRepository(client DynamoAPI, table string) *DynamoPolicyRepository {
	return &DynamoPolicyRepository{client: client, table: table}
}

type ddbPolicy struct {
	PolicyID  string                 `dynamodbav:"policy_id"`
	OrderID   string                 `dynamodbav:"order_id"`
	PaymentID string                 `dynamodbav:"payment_id"`
	PlanType  string                 `dynamodbav:"plan_type,omitempty"`
	Amount    int64                  `dynamodbav:"amount"`
	Currency  string                 `dynamodbav:"currency,omitempty"`
	UserData  map[string]interface{} `dynamodbav:"user_data"`
	Timestamp string                 `dynamodbav:"timestamp"`
}

func toDDBPolicy(p *models.Policy) (ddbPolicy, error) {
	dp := ddbPolicy{
		PolicyID:  p.PolicyID,
		OrderID:   p.OrderID,
		PaymentID: p.PaymentID,
		PlanType:  p.PlanType,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Timestamp: p.Timestamp.UTC().Format(timestampLayout),
	}
	if len(p.UserData) > 0 {
		if err := json.Unmarshal(p.UserData, &dp.UserData); err != nil {
			return dp, fmt.Errorf("decode user data: %w", err)
		}
	}
	return dp, nil
}

func fromDDBPolicy(dp ddbPolicy) (models.Policy, error) {
	p := models.Policy{
		PolicyID:  dp.PolicyID,
		OrderID:   dp.OrderID,
		PaymentID: dp.PaymentID,
		PlanType:  dp.PlanType,
		Amount:    dp.Amount,
		Currency:  dp.Currency,
	}
	if dp.UserData != nil {
		b, err := json.Marshal(dp.UserData)
		if err != nil {
			return p, fmt.Errorf("encode user data: %w", err)
		}
		p.UserData = datatypes.JSON(b)
	}
	if t, err := time.Parse(time.RFC3339Nano, dp.Timestamp); err == nil {
		p.Timestamp = t
	}
	return p, nil
}

func (d *DynamoPolicyRepository) Create(ctx context.Context, policy *models.Policy) error {
	dp, err := toDDBPolicy(policy)
	if err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(dp)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(policy_id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("policy %s: %w", policy.PolicyID, ErrPolicyExists)
		}
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoPolicyRepository) FindByID(ctx context.Context, policyID string) (*models.Policy, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"policy_id": policyID})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(d.table), Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrPolicyNotFound
	}

	var dp ddbPolicy
	if err := attributevalue.UnmarshalMap(out.Item, &dp); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	p, err := fromDDBPolicy(dp)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DynamoPolicyRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Policy, error) {
	policies, err := d.scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(d.table),
		FilterExpression:          aws.String("order_id = :order_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":order_id": &types.AttributeValueMemberS{Value: orderID}},
	})
	if err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return nil, ErrPolicyNotFound
	}
	return &policies[0], nil
}

func (d *DynamoPolicyRepository) ListByTimeRange(ctx context.Context, from, to time.Time) ([]models.Policy, error) {
	policies, err := d.scan(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(d.table),
		FilterExpression:         aws.String("#ts BETWEEN :from AND :to"),
		ExpressionAttributeNames: map[string]string{"#ts": "timestamp"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":from": &types.AttributeValueMemberS{Value: from.UTC().Format(timestampLayout)},
			":to":   &types.AttributeValueMemberS{Value: to.UTC().Format(timestampLayout)},
		},
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(policies, func(i, j int) bool {
		return policies[i].Timestamp.Before(policies[j].Timestamp)
	})
	return policies, nil
}

func (d *DynamoPolicyRepository) scan(ctx context.Context, input *dynamodb.ScanInput) ([]models.Policy, error) {
	var results []models.Policy
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb Scan failed: %w", err)
		}
		for _, item := range page.Items {
			var dp ddbPolicy
			if err := attributevalue.UnmarshalMap(item, &dp); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			p, err := fromDDBPolicy(dp)
			if err != nil {
				return nil, err
			}
			results = append(results, p)
		}
	}
	return results, nil
}
