package parents

import (
	"fmt"
	"sync"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPINLength = 4
	maxPINLength = 8
)

type Parent struct {
	ID        string    `json:"id,omitempty"`         // Unique identifier for the parent
	GroupID   string    `json:"group_id,omitempty"`   // Group (tenant) the record belongs to
	Name      string    `json:"name,omitempty"`       // Display name, matched case-insensitively at sign-in
	Phone     string    `json:"phone,omitempty"`      // Phone number as entered by an administrator
	PINHash   string    `json:"-"`                    // bcrypt hash of the PIN - never serialize
	CreatedAt time.Time `json:"created_at,omitempty"` // When the record was created
	UpdatedAt time.Time `json:"updated_at,omitempty"` // Last profile or PIN change
}

// Profile is the part of a parent record handed back to clients.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (p *Parent) Profile() Profile {
	return Profile{ID: p.ID, Name: p.Name, Phone: p.Phone}
}

// ValidatePIN checks a new PIN is 4 to 8 digits.
func ValidatePIN(pin string) error {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return fmt.Errorf("pin must be between %d and %d digits", minPINLength, maxPINLength)
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("pin must contain digits only")
		}
	}
	return nil
}

func HashPIN(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	return string(bytes), err
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// DummyPINHash is a valid bcrypt hash that no PIN matches. Comparing against
// it costs the same as comparing against a stored hash.
func DummyPINHash() string {
	dummyHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("no parent has this pin"), bcrypt.DefaultCost)
		if err != nil {
			panic("generate dummy pin hash: " + err.Error())
		}
		dummyHash = string(hash)
	})
	return dummyHash
}

// CheckPINHash compares a PIN against a stored hash. A missing hash never matches.
func CheckPINHash(pin, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	return err == nil
}
