package utils

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"
)

// GenerateOTP generates a 6-digit OTP
func GenerateOTP() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	otp := ""
	for i := 0; i < 6; i++ {
		otp += fmt.Sprintf("%d", rng.Intn(10))
	}
	return otp
}

// RandomFileName returns a 32-hex-char name preserving the extension, so
// uploaded document names never collide or leak the original filename.
func RandomFileName(ext string) string {
	buf := make([]byte, 16)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Read(buf)
	return hex.EncodeToString(buf) + ext
}
