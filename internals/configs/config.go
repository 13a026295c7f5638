package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	JWTSecret string

	// Credentials the payment gateway must present on every confirmation
	// callback. Either the plaintext secret or a bcrypt hash of it is
	// configured; the hash wins when both are set.
	GatewayMerchantID       string
	GatewaySharedSecret     string
	GatewaySharedSecretHash string

	MidtransServerKey  string
	MidtransProduction bool
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("[WARN] no .env file found, using system ENV")
	}

	JWTSecret = GetEnv("JWT_SECRET")

	GatewayMerchantID = GetEnv("GATEWAY_MERCHANT_ID")
	GatewaySharedSecret = GetEnv("GATEWAY_SHARED_SECRET")
	GatewaySharedSecretHash = GetEnv("GATEWAY_SHARED_SECRET_HASH")

	MidtransServerKey = GetEnv("MIDTRANS_SERVER_KEY")
	MidtransProduction = GetEnv("MIDTRANS_ENV", "sandbox") == "production"

	if JWTSecret == "" {
		log.Println("[WARN] JWT_SECRET is not set, staff routes will reject every request")
	}
	if GatewayMerchantID == "" {
		log.Println("[WARN] GATEWAY_MERCHANT_ID is not set")
	}
	if GatewaySharedSecret == "" && GatewaySharedSecretHash == "" {
		log.Println("[WARN] no gateway shared secret configured, confirmations will be rejected")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
