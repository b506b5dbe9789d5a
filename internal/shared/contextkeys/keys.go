package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "panchayat-docstore context key " + string(c)
}

const (
	// RequestIDKey holds the id assigned by the requestid middleware.
	RequestIDKey = contextKey("requestID")
	// UserIDKey holds the subject of a verified bearer token.
	UserIDKey = contextKey("userID")
	// RoleKey holds the role claim of a verified bearer token.
	RoleKey = contextKey("role")
	// CollectionKey holds the collection a request targets.
	CollectionKey = contextKey("collection")
	// OperationKey holds the store operation being served (list, get, set, ...).
	OperationKey = contextKey("operation")
)
