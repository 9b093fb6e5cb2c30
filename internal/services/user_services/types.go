package user_services

// Logger interface for all user services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// GoogleProfile is the subset of a Google account the app keeps.
type GoogleProfile struct {
	ID          string
	Email       string
	DisplayName string
	GivenName   string
	FamilyName  string
}

// AdminSeed describes the initial administrator account.
type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// DefaultAdminPassword is used when INITIAL_ADMIN_PASSWORD is unset.
const DefaultAdminPassword = "admin"
