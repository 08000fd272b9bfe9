// Package account owns the account record and its document store.
package account

import "time"

// Account is the stored identity record. The password hash and the pending
// verification/reset secrets live only in the store document; responses use
// the Profile projection, which never carries them.
//
// Invariants: Email is unique across accounts; PasswordHash is never empty
// once set; VerificationCode is present exactly while the account is pending
// verification; ResetToken is present exactly while a reset is outstanding.
type Account struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Verified     bool   `json:"verified"`

	VerificationCode      string     `json:"verificationCode,omitempty"`
	VerificationExpiresAt *time.Time `json:"verificationExpiresAt,omitempty"`

	ResetToken     string     `json:"resetToken,omitempty"`
	ResetExpiresAt *time.Time `json:"resetExpiresAt,omitempty"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Profile is the outward projection of an account. It is a distinct type,
// not a field-stripped copy, so the hash cannot leak through serialization.
type Profile struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Verified    bool       `json:"verified"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Profile returns the response-safe projection of the account.
func (a *Account) Profile() Profile {
	return Profile{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Email:       a.Email,
		Verified:    a.Verified,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
	}
}

// ClearVerification removes the pending verification state after a
// successful confirmation.
func (a *Account) ClearVerification() {
	a.Verified = true
	a.VerificationCode = ""
	a.VerificationExpiresAt = nil
}

// StartReset records a pending reset, replacing any outstanding one.
func (a *Account) StartReset(tok string, expiresAt time.Time) {
	a.ResetToken = tok
	a.ResetExpiresAt = &expiresAt
}

// CompleteReset installs the new hash and clears the pending reset state.
func (a *Account) CompleteReset(newHash string) {
	a.PasswordHash = newHash
	a.ResetToken = ""
	a.ResetExpiresAt = nil
}
