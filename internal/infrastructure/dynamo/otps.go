package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/storepulse/api/internal/domain"
	"github.com/storepulse/api/internal/pkg/id"
)

// retentionGrace is how long an expired OTP row lingers before the table's
// TTL purges it.
const retentionGrace = 24 * time.Hour

// OtpRepo manages one-time passcode records.
// PK: email, SK: otp_id (ULID — sorted by creation time).
type OtpRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOtpRepo(client *dynamodb.Client, tableName string) *OtpRepo {
	return &OtpRepo{client: client, tableName: tableName}
}

// Create inserts a new unverified OTP record and returns it.
func (r *OtpRepo) Create(ctx context.Context, email, otpHash string, expiresAt time.Time, userID string) (*domain.OtpRecord, error) {
	now := time.Now().UTC()
	rec := &domain.OtpRecord{
		Email:     email,
		OtpID:     id.New(),
		OtpHash:   otpHash,
		UserID:    userID,
		ExpiresAt: expiresAt.Unix(),
		PurgeAt:   expiresAt.Add(retentionGrace).Unix(),
		CreatedAt: now,
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal otp record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindLatestByEmail returns the single most recent record for email,
// regardless of its verified flag. Validity is the caller's concern.
func (r *OtpRepo) FindLatestByEmail(ctx context.Context, email string) (*domain.OtpRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("email = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
		},
		ScanIndexForward: aws.Bool(false), // newest ULID first
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	var rec domain.OtpRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// IncrementAttempts bumps the failed-verify counter on a record.
func (r *OtpRepo) IncrementAttempts(ctx context.Context, email, otpID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              compositeKey("email", email, "otp_id", otpID),
		UpdateExpression: aws.String("SET attempts = attempts + :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	return err
}

// MarkVerified flips verified to true, but only if the record is still
// unverified. Two racing verifications of the same record cannot both win:
// the loser gets domain.ErrOtpAlreadyUsed.
func (r *OtpRepo) MarkVerified(ctx context.Context, email, otpID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey("email", email, "otp_id", otpID),
		UpdateExpression:    aws.String("SET verified = :t"),
		ConditionExpression: aws.String("verified = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return domain.ErrOtpAlreadyUsed
		}
		return err
	}
	return nil
}

// InvalidateAllUnverified marks every unverified record for email as verified,
// superseding codes from earlier requests. Must complete before a new record
// is inserted so only the newest code is ever verifiable.
func (r *OtpRepo) InvalidateAllUnverified(ctx context.Context, email string) error {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("email = :e"),
		FilterExpression:       aws.String("verified = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		return err
	}
	for _, item := range out.Items {
		var rec domain.OtpRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return err
		}
		if err := r.MarkVerified(ctx, rec.Email, rec.OtpID); err != nil {
			// A concurrent request already invalidated this one.
			if errors.Is(err, domain.ErrOtpAlreadyUsed) {
				continue
			}
			return err
		}
	}
	return nil
}

// CountCreatedSince counts records created for email within the trailing
// window. ULIDs embed their creation time, so the count is a key-condition
// range query rather than a filtered scan.
func (r *OtpRepo) CountCreatedSince(ctx context.Context, email string, window time.Duration) (int, error) {
	cutoff := id.LowerBound(time.Now().UTC().Add(-window))
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("email = :e AND otp_id >= :cutoff"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e":      &types.AttributeValueMemberS{Value: email},
			":cutoff": &types.AttributeValueMemberS{Value: cutoff},
		},
		Select: types.SelectCount,
	})
	if err != nil {
		return 0, err
	}
	return int(out.Count), nil
}
