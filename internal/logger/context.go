package logger

// Component-specific logger functions

// Migration returns a logger for schema migration operations
func Migration() Logger {
	return WithField("component", "migration")
}

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}

// DB returns a logger for database connection handling
func DB() Logger {
	return WithField("component", "db")
}

// ORM returns a logger for statements issued by repositories
func ORM() Logger {
	return WithField("component", "orm")
}

// Admin returns a logger for the admin web interface
func Admin() Logger {
	return WithField("component", "admin")
}

// Seed returns a logger for fixture and sample seeding
func Seed() Logger {
	return WithField("component", "seed")
}

// Accounts returns a logger for user account operations
func Accounts() Logger {
	return WithField("component", "accounts")
}
