package auth

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against its bcrypt hash
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

const (
	tempPasswordLength = 12

	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerChars  = "abcdefghijkmnpqrstuvwxyz"
	digitChars  = "23456789"
	symbolChars = "!@#$%&*+-="
)

// GenerateTempPassword produces a random 12-character password containing at
// least one uppercase letter, one lowercase letter, one digit and one symbol.
// Ambiguous characters (0/O, 1/l) are excluded from the alphabets.
func GenerateTempPassword() (string, error) {
	classes := []string{upperChars, lowerChars, digitChars, symbolChars}
	all := upperChars + lowerChars + digitChars + symbolChars

	buf := make([]byte, tempPasswordLength)

	// one guaranteed character per class
	for i, class := range classes {
		ch, err := randomChar(class)
		if err != nil {
			return "", err
		}
		buf[i] = ch
	}
	for i := len(classes); i < tempPasswordLength; i++ {
		ch, err := randomChar(all)
		if err != nil {
			return "", err
		}
		buf[i] = ch
	}

	// Fisher-Yates shuffle so the class characters are not positional
	for i := len(buf) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		buf[i], buf[j.Int64()] = buf[j.Int64()], buf[i]
	}

	return string(buf), nil
}

func randomChar(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}
