package crypto

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// TestHashPassword проверяет базовое хеширование пароля
func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"unicode password", "пароль123"},
		{"long password", strings.Repeat("a", 70)}, // близко к лимиту 72
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if err != nil {
				t.Fatalf("HashPassword failed: %v", err)
			}

			if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
				t.Errorf("Hash should start with bcrypt prefix, got: %s", hash[:10])
			}
			if hash == tt.password {
				t.Error("Hash should not equal password")
			}
		})
	}
}

// TestHashPasswordErrors проверяет граничные случаи входа
func TestHashPasswordErrors(t *testing.T) {
	if _, err := HashPassword(""); err != ErrEmptyPassword {
		t.Errorf("empty password: got error %v, want %v", err, ErrEmptyPassword)
	}

	if _, err := HashPassword(strings.Repeat("a", 73)); err != ErrPasswordTooLong {
		t.Errorf("long password: got error %v, want %v", err, ErrPasswordTooLong)
	}
}

// TestHashPasswordDifferentHashes проверяет что каждый хеш уникален (разный salt)
func TestHashPasswordDifferentHashes(t *testing.T) {
	password := "samepassword"

	hash1, _ := HashPassword(password)
	hash2, _ := HashPassword(password)

	if hash1 == hash2 {
		t.Error("Two hashes of the same password should be different (different salts)")
	}
}

// TestHashPasswordWithCost проверяет хеширование с разной стоимостью
func TestHashPasswordWithCost(t *testing.T) {
	password := "testpassword"

	tests := []struct {
		name         string
		cost         int
		expectedCost int
	}{
		{"min cost", bcrypt.MinCost, bcrypt.MinCost},
		{"below min - clamped", 0, bcrypt.MinCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPasswordWithCost(password, tt.cost)
			if err != nil {
				t.Fatalf("HashPasswordWithCost failed: %v", err)
			}

			actualCost, _ := GetHashCost(hash)
			if actualCost != tt.expectedCost {
				t.Errorf("Got cost %d, want %d", actualCost, tt.expectedCost)
			}
		})
	}
}

// TestVerifyPassword проверяет верификацию пароля
func TestVerifyPassword(t *testing.T) {
	password := "correctpassword"
	hash, _ := HashPasswordWithCost(password, bcrypt.MinCost)

	if err := VerifyPassword(password, hash); err != nil {
		t.Errorf("correct password: got error %v, want nil", err)
	}

	if err := VerifyPassword("wrongpassword", hash); err != ErrPasswordMismatch {
		t.Errorf("wrong password: got error %v, want %v", err, ErrPasswordMismatch)
	}

	if err := VerifyPassword("", hash); err != ErrEmptyPassword {
		t.Errorf("empty password: got error %v, want %v", err, ErrEmptyPassword)
	}

	if err := VerifyPassword("password", ""); err != ErrInvalidHash {
		t.Errorf("empty hash: got error %v, want %v", err, ErrInvalidHash)
	}
}

// TestVerifyPasswordInvalidHash проверяет обработку невалидного хеша
func TestVerifyPasswordInvalidHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"random string", "notahash"},
		{"truncated hash", "$2a$12$abc"},
		{"wrong format", "sha256:abcdef123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifyPassword("password", tt.hash); err != ErrInvalidHash {
				t.Errorf("got error %v, want %v", err, ErrInvalidHash)
			}
		})
	}
}

// TestCheckPasswordMatch проверяет bool-обёртку
func TestCheckPasswordMatch(t *testing.T) {
	password := "testpassword"
	hash, _ := HashPasswordWithCost(password, bcrypt.MinCost)

	if !CheckPasswordMatch(password, hash) {
		t.Error("CheckPasswordMatch should return true for correct password")
	}
	if CheckPasswordMatch("wrongpassword", hash) {
		t.Error("CheckPasswordMatch should return false for wrong password")
	}
	if CheckPasswordMatch("", hash) {
		t.Error("CheckPasswordMatch should return false for empty password")
	}
}

// TestGetHashCost проверяет извлечение cost из хеша
func TestGetHashCost(t *testing.T) {
	hash, _ := HashPasswordWithCost("password", 10)
	cost, err := GetHashCost(hash)
	if err != nil {
		t.Fatalf("GetHashCost failed: %v", err)
	}
	if cost != 10 {
		t.Errorf("GetHashCost: got %d, want 10", cost)
	}

	if _, err := GetHashCost(""); err != ErrInvalidHash {
		t.Errorf("empty hash: got error %v, want %v", err, ErrInvalidHash)
	}
	if _, err := GetHashCost("invalid"); err != ErrInvalidHash {
		t.Errorf("invalid hash: got error %v, want %v", err, ErrInvalidHash)
	}
}

// BenchmarkVerifyPassword измеряет производительность верификации
func BenchmarkVerifyPassword(b *testing.B) {
	password := "benchmarkpassword123"
	hash, _ := HashPasswordWithCost(password, bcrypt.MinCost)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = VerifyPassword(password, hash)
	}
}
