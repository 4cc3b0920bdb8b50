package domain

type ID int64

// User is an account record. PasswordHash is a bcrypt hash; plaintext is
// never stored. Supervisor is persisted but no access decision reads it.
type User struct {
	ID           ID
	Username     string
	PasswordHash string
	Supervisor   bool
}
