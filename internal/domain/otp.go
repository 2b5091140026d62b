package domain

import "time"

// OtpRecord stores a single emailed one-time passcode.
// PK: email, SK: otp_id. The otp_id is a ULID, so sorting the range key
// descending yields records in reverse creation order — the latest record
// for an email is the first item of a backwards query.
//
// PurgeAt is a Unix timestamp used as DynamoDB TTL; rows linger for a
// retention grace period after expiry before the storage layer deletes them.
type OtpRecord struct {
	Email     string    `json:"email" dynamodbav:"email"`
	OtpID     string    `json:"id" dynamodbav:"otp_id"`
	OtpHash   string    `json:"-" dynamodbav:"otp_hash"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Attempts  int       `json:"attempts" dynamodbav:"attempts"`
	Verified  bool      `json:"verified" dynamodbav:"verified"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // Unix seconds
	PurgeAt   int64     `json:"-" dynamodbav:"purge_at"`            // TTL (Unix seconds)
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}
