package model

import "time"

// AccessToken maps an opaque bearer token to a user identity. Token issuance
// lives in the external auth service; this table is only read to resolve
// subscriber identities.
type AccessToken struct {
	Token     string    `gorm:"column:token;primaryKey;size:255" json:"-"`
	UserName  string    `gorm:"column:user_name;size:128;not null" json:"user_name"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
}

func (AccessToken) TableName() string { return "access_token" }
