package domain

// Role is the coarse permission level of a user account.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleManager   Role = "Manager"
	RoleDeveloper Role = "Developer"
	RoleDesigner  Role = "Designer"
	RoleTester    Role = "Tester"
)

// Roles lists every role the API recognises, in display order.
var Roles = []Role{RoleAdmin, RoleManager, RoleDeveloper, RoleDesigner, RoleTester}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Identity is the snapshot of the logged-in user returned by the server at
// login. It is replaced wholesale, never edited field by field.
type Identity struct {
	ID        string    `json:"_id"      validate:"required"`
	Username  string    `json:"username"`
	Email     string    `json:"email"    validate:"required"`
	Role      Role      `json:"role"     validate:"required,oneof=Admin Manager Developer Designer Tester"`
	CreatedAt Timestamp `json:"created_at"`
}

// User is an account as listed by the users endpoints.
type User struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt Timestamp `json:"created_at"`
}

// Credentials are the login input. The password is never persisted or logged.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// String hides the password from fmt and loggers.
func (c Credentials) String() string {
	return "Credentials{Email:" + c.Email + ", Password:***}"
}

// AuthResult is the successful login response.
type AuthResult struct {
	Token    string   `json:"access_token"`
	Identity Identity `json:"user"`
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

// UpdateUserRequest is the body of PUT /api/users/{id}. Empty fields are not sent.
type UpdateUserRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// UserName resolves an assignee id against users, falling back to "Unassigned".
func UserName(users []User, id string) string {
	for _, u := range users {
		if u.ID == id && id != "" {
			return u.Username
		}
	}
	return "Unassigned"
}
