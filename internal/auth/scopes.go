package auth

// Known OAuth scopes used by the backend.
const (
	ScopeActivitiesWrite = "activities:write"
	ScopeActivitiesRead  = "activities:read"
	ScopeUsersWrite      = "users:write"
	ScopeUsersRead       = "users:read"
)
