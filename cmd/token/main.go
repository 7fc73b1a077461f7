// main.go - Prints an admin bearer token signed with JWT_SECRET.

package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/troncalnet/receipt_bot_whatsapp/configs"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/api"
)

func main() {
	subject := flag.String("sub", "admin", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	configs.LoadConfig()
	if configs.JWT_SECRET == "" {
		log.Fatal(api.ErrAdminDisabled)
	}

	token, err := api.IssueToken(*subject, configs.JWT_SECRET, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
