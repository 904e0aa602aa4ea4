package domain

import "time"

// User is the account row held by the user directory. The JSON form doubles
// as the cached session snapshot, so PasswordHash is serialized too; transport
// converts to a SafeUser before anything leaves the process.
type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Phone        string    `json:"mobile" dynamodbav:"phone"`
	PasswordHash string    `json:"password_hash,omitempty" dynamodbav:"password_hash"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Profile holds the self-reported fields collected after first login.
type Profile struct {
	UserID     string    `json:"id" dynamodbav:"user_id"`
	Nickname   string    `json:"nickname" dynamodbav:"nickname"`
	Gender     string    `json:"gender" dynamodbav:"gender"`
	Birthday   string    `json:"birthday" dynamodbav:"birthday"` // YYYY-MM-DD
	City       string    `json:"city" dynamodbav:"city"`
	Income     string    `json:"income" dynamodbav:"income"`
	Education  string    `json:"education" dynamodbav:"education"`
	Profession string    `json:"profession" dynamodbav:"profession"`
	Avatar     string    `json:"avatar" dynamodbav:"avatar"` // object key; presigned on read
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Mobile   string `json:"mobile" validate:"required,numeric,min=5,max=20"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
