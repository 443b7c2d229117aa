package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/ignite/partner-console/internal/pkg/distlock"
	"github.com/ignite/partner-console/internal/pkg/logger"
)

const (
	stateSK = "STATE"
	lockSK  = "LOCK"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// sessionItem is one row of the sessions table. State and lock rows share a
// partition key and differ by sort key. TTL is epoch seconds so the table's
// TTL setting can expire abandoned sessions.
type sessionItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data,omitempty"`
	Token     string `dynamodbav:"Token,omitempty"`
	Timestamp string `dynamodbav:"Timestamp"`
	TTL       int64  `dynamodbav:"TTL,omitempty"`
}

// DynamoStore keeps sessions in a DynamoDB table keyed by PK/SK.
type DynamoStore struct {
	client DynamoAPI
	table  string
	ttl    time.Duration
	now    func() time.Time
}

// NewDynamoClient builds a DynamoDB client from the default AWS chain, using
// a named profile when one is given.
func NewDynamoClient(ctx context.Context, region, profile string) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// NewDynamoStore creates a DynamoDB-backed store. A zero ttl uses 24h.
func NewDynamoStore(client DynamoAPI, table string, ttl time.Duration) *DynamoStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &DynamoStore{
		client: client,
		table:  table,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func itemKey(id, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "SESSION#" + id},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func (s *DynamoStore) Load(ctx context.Context, id string) (*Data, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            itemKey(id, stateSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return New(id), nil
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal session item: %w", err)
	}
	// DynamoDB deletes expired items lazily.
	if item.TTL != 0 && item.TTL < s.now().Unix() {
		return New(id), nil
	}
	d, err := decode(id, []byte(item.Data))
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return d, nil
}

func (s *DynamoStore) Save(ctx context.Context, d *Data) error {
	if d == nil || d.ID == "" {
		return ErrInvalidID
	}
	raw, err := encode(d)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	now := s.now()
	av, err := attributevalue.MarshalMap(sessionItem{
		PK:        "SESSION#" + d.ID,
		SK:        stateSK,
		Data:      string(raw),
		Timestamp: now.Format(time.RFC3339),
		TTL:       now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal session item: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       itemKey(id, stateSK),
	}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Lock writes a lock row with a conditional put. A lock row whose TTL has
// passed counts as free, so a crashed holder blocks others for at most
// lockTTL.
func (s *DynamoStore) Lock(ctx context.Context, id string) (func(), error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	l := &dynamoLock{store: s, id: id, token: uuid.New().String()}
	if err := distlock.Wait(ctx, l, lockPoll); err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.Release(ctx); err != nil {
			logger.Warn("session unlock failed", "session_id", id, "error", err)
		}
	}, nil
}

// dynamoLock implements distlock.Lock on a DynamoDB lock row.
type dynamoLock struct {
	store *DynamoStore
	id    string
	token string
}

var _ distlock.Lock = (*dynamoLock)(nil)

func (l *dynamoLock) Acquire(ctx context.Context) (bool, error) {
	now := l.store.now()
	av, err := attributevalue.MarshalMap(sessionItem{
		PK:        "SESSION#" + l.id,
		SK:        lockSK,
		Token:     l.token,
		Timestamp: now.Format(time.RFC3339),
		TTL:       now.Add(lockTTL).Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("marshal lock item: %w", err)
	}
	_, err = l.store.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(l.store.table),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(PK) OR #ttl < :now"),
		ExpressionAttributeNames: map[string]string{"#ttl": "TTL"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	})
	var held *types.ConditionalCheckFailedException
	if errors.As(err, &held) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("put lock: %w", err)
	}
	return true, nil
}

func (l *dynamoLock) Release(ctx context.Context) error {
	_, err := l.store.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(l.store.table),
		Key:                      itemKey(l.id, lockSK),
		ConditionExpression:      aws.String("#token = :token"),
		ExpressionAttributeNames: map[string]string{"#token": "Token"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":token": &types.AttributeValueMemberS{Value: l.token},
		},
	})
	var lost *types.ConditionalCheckFailedException
	if errors.As(err, &lost) {
		return distlock.ErrNotAcquired
	}
	return err
}
