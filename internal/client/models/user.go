package models

// NewUser carries the signup form.
type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// User is what the server returns for a created account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Profile is the /auth/me payload.
type Profile struct {
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt Timestamp `json:"created_at"`
}
