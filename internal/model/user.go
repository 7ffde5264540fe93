package model

// User is an authkit account.
type User struct {
	ID       FlexID    `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Mobile   string    `json:"mobile,omitempty"`
	Address  string    `json:"address,omitempty"`
	IsActive bool      `json:"is_active"`
	Roles    []RoleRef `json:"roles,omitempty"`
}

// UserDetail is the payload of GET /api/auth/profile/:id.
type UserDetail struct {
	User  User      `json:"user"`
	Roles []RoleRef `json:"roles"`
}

// UserPage is the payload of GET /api/user. When pagination is disabled
// the backend returns every user and leaves the page fields zero.
type UserPage struct {
	Users             []User `json:"users"`
	PaginationEnabled bool   `json:"pagination_enabled"`
	Total             int    `json:"total"`
	Page              int    `json:"page"`
	PageSize          int    `json:"page_size"`
	TotalPages        int    `json:"total_pages"`
}

// UserQuery holds the optional filters of GET /api/user.
type UserQuery struct {
	Page     int    `validate:"gte=0"`
	PageSize int    `validate:"gte=0"`
	Email    string
	FullName string
	Address  string
	SortBy   string
	Order    string `validate:"omitempty,oneof=asc desc ASC DESC"`
}

// LoginResult is the payload of POST /api/auth/login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Mobile   string `json:"mobile,omitempty"`
	Address  string `json:"address,omitempty"`
}

// ProfileUpdate is the body of PUT /api/auth/profile[/:id]. Empty fields
// are left unchanged by the backend.
type ProfileUpdate struct {
	FullName string `json:"full_name,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.FullName == "" && p.Mobile == "" && p.Address == ""
}
