package domain

import "time"

type User struct {
	UserID      string     `json:"id" dynamodbav:"user_id"`
	Email       string     `json:"email" dynamodbav:"email"`
	IsVerified  bool       `json:"is_verified" dynamodbav:"is_verified"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" dynamodbav:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}
