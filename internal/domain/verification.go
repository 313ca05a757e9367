package domain

// SignupData is the pending account held while the signup code is outstanding.
// The password is already hashed; nothing is persisted until the code is verified.
type SignupData struct {
	Name         string
	Email        string
	Phone        *string
	PasswordHash string
}

// LoginIdentity is the user being authenticated by a login code.
type LoginIdentity struct {
	UserID string
	Name   string
	Role   string
}

// PasswordTarget identifies whose password a reset or change code will replace.
type PasswordTarget struct {
	UserID string
	Name   string
}
