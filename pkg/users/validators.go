package users

// SignupPayload represents the request body for reader signup.
type SignupPayload struct {
	Username        string  `json:"username" mod:"trim" validate:"required,max=50"`
	Password        string  `json:"password" validate:"required"`
	ConfirmPassword string  `json:"confirm_password" validate:"required"`
	Email           *string `json:"email" mod:"trim" validate:"omitempty,email"`
	Phone           *string `json:"phone" mod:"trim" validate:"omitempty,max=20"`
}

type LoginPayload struct {
	Username string `json:"username" mod:"trim" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SearchUsersQuery represents the query parameters for the admin user list.
type SearchUsersQuery struct {
	Query string `query:"q" mod:"trim"`
}

type UpdateUserPayload struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type LoginResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Kind     string `json:"kind"`
	Token    string `json:"token"`
}
