package models

// User is the user-service response shape consumed for ownership lookup.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	CardholderName string `json:"cardholderName"`
}

// UserCredentials is the user-service credentials shape consumed by login.
// Password holds a bcrypt hash.
type UserCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
