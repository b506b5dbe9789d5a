package model

// Account is a principal allowed to log in.
type Account struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
