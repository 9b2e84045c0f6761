package models

// User represents a customer account. Accounts created through an OAuth
// provider carry no password hash; password logins reject them.
type User struct {
	BaseModel
	Email         string `gorm:"uniqueIndex" json:"email"`
	Name          string `json:"name"`
	PasswordHash  string `json:"-"`
	MFASecret     string `json:"-"`
	MFAEnabled    bool   `json:"mfa_enabled"`
	OAuthProvider string `gorm:"index:idx_users_oauth" json:"oauth_provider,omitempty"`
	OAuthSubject  string `gorm:"index:idx_users_oauth" json:"oauth_subject,omitempty"`
}
