package models

// User represents a user record in the directory.
type User struct {
	ID       string `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`
	Password string `json:"-" bson:"password"` // Always a bcrypt hash, never plaintext
}

// UserSummary is the public view of a user returned by the JSON API.
type UserSummary struct {
	Username string `json:"username"`
}

// Summary strips everything but the username.
func (u User) Summary() UserSummary {
	return UserSummary{Username: u.Username}
}

// UserUpdate lists the fields to change in a find-and-modify. Nil fields are
// left untouched.
type UserUpdate struct {
	Username     *string
	PasswordHash *string
}

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.PasswordHash == nil
}
