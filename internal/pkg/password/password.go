package password

import "golang.org/x/crypto/bcrypt"

// cost 12 keeps hashing around 250ms on current hardware
const cost = 12

// Hash derives a bcrypt hash from the plaintext password
func Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash
func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
