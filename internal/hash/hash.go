package hash

import "golang.org/x/crypto/bcrypt"

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashCode hashes a short numeric security code. bcrypt is deliberate
// here too: the code space is tiny, so a fast hash would be trivially
// brute-forced offline.
func HashCode(code string) (string, error) {
	return HashPassword(code)
}

func CheckCode(hash, code string) bool {
	return CheckPassword(hash, code)
}
