package permissions

// Two deployment variants exist. Each process wires exactly one; the
// back-office variant is what this server uses.

// Backoffice returns the access control for the B2B back-office deployment:
// owner and production_manager manage customers, payments, and requests;
// plain members only read.
func Backoffice() *AccessControl {
	statements := Statements{
		"customer":        {"create", "read", "update", "delete"},
		"customerAddress": {"create", "read", "update", "delete"},
		"payment":         {"create", "read", "update", "delete"},
		"request":         {"create", "read", "update", "delete", "handle"},
		"calendarEvent":   {"create", "read", "update", "delete"},
		"location":        {"create", "read", "update", "delete"},
		"member":          {"create", "read", "update", "delete"},
	}
	ac := NewAccessControl(statements)

	ac.NewRole("owner", Statements{
		"customer":        {"create", "read", "update", "delete"},
		"customerAddress": {"create", "read", "update", "delete"},
		"payment":         {"create", "read", "update", "delete"},
		"request":         {"create", "read", "update", "delete", "handle"},
		"calendarEvent":   {"create", "read", "update", "delete"},
		"location":        {"create", "read", "update", "delete"},
		"member":          {"create", "read", "update", "delete"},
	})

	ac.NewRole("production_manager", Statements{
		"customer":        {"create", "read", "update", "delete"},
		"customerAddress": {"create", "read", "update", "delete"},
		"payment":         {"create", "read", "update"},
		"request":         {"create", "read", "update", "handle"},
		"calendarEvent":   {"create", "read", "update", "delete"},
		"location":        {"create", "read", "update"},
		"member":          {"read"},
	})

	ac.NewRole("member", Statements{
		"customer":      {"read"},
		"payment":       {"read"},
		"request":       {"create", "read"},
		"calendarEvent": {"read"},
		"location":      {"read"},
		"member":        {"read"},
	})

	return ac
}

// Hospitality returns the access control for the hospitality deployment
// variant (conversations, locations, events, cities, tags). Kept as the
// parallel deployment's configuration; not wired by this server.
func Hospitality() *AccessControl {
	statements := Statements{
		"conversation": {"create", "read", "update", "delete", "assign"},
		"location":     {"create", "read", "update", "delete"},
		"event":        {"create", "read", "update", "delete"},
		"city":         {"create", "read", "update", "delete"},
		"tag":          {"create", "read", "update", "delete"},
	}
	ac := NewAccessControl(statements)

	full := Statements{
		"conversation": {"create", "read", "update", "delete", "assign"},
		"location":     {"create", "read", "update", "delete"},
		"event":        {"create", "read", "update", "delete"},
		"city":         {"create", "read", "update", "delete"},
		"tag":          {"create", "read", "update", "delete"},
	}
	ac.NewRole("owner", full)
	ac.NewRole("admin", full)
	ac.NewRole("member", Statements{
		"conversation": {"read"},
		"location":     {"read"},
		"event":        {"read"},
		"city":         {"read"},
		"tag":          {"read"},
	})

	return ac
}
