package main

// Mints a user bearer token and prints the sha256 hash to store in the
// users table. The raw token is shown once and never persisted.

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/fieldcost/fieldcost/internal/pkg/utils"
)

func main() {
	prefix := flag.String("prefix", "sk-fc-", "token prefix, must match auth.tokenPrefix")
	length := flag.Int("length", utils.DefaultKeyLength, "random suffix length")
	flag.Parse()

	token, err := utils.GenerateKey(*prefix, *length)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(1)
	}
	sum := sha256.Sum256([]byte(token))

	fmt.Println("token:     ", token)
	fmt.Println("token_hash:", hex.EncodeToString(sum[:]))
}
