// One-off: go run scripts/gentoken.go [user-id-hex]
// Mints a 24h token against JWT_SECRET for poking the API by hand.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/maleehakhalid00-a11y/ToDo-App/internal/auth"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret"
	}
	userID := primitive.NewObjectID().Hex()
	if len(os.Args) > 1 {
		userID = os.Args[1]
	}
	tok, err := auth.NewTokenManager(secret, 24*time.Hour).Generate(userID)
	if err != nil {
		panic(err)
	}
	fmt.Print(tok)
}
