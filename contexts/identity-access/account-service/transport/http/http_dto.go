package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Contact   string `json:"contact"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Contact     string    `json:"contact"`
	Permissions string    `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserListResponse struct {
	Index int            `json:"index"`
	Items []UserResponse `json:"items"`
}

// UpdateUserRequest changes the password when Password is present and the
// profile fields otherwise.
type UpdateUserRequest struct {
	Password  *string `json:"password,omitempty"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Contact   string  `json:"contact"`
}

type ChangePermissionsRequest struct {
	Permissions string `json:"permissions"`
}
