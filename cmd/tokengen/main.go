// Package main provides a CLI tool for minting grantor bearer tokens for the
// Pactum API. With the default signing key the tokens only work against a dev
// server; point -signing-key at the real key (and verify the grantor's API
// secret against the database) to mint production tokens.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "pactum/internal/jwt_token"
	partyservice "pactum/internal/party/service"
	partystore "pactum/internal/party/store"
	"pactum/internal/platform/database"
	id "pactum/pkg/domain"

	"github.com/google/uuid"
)

const (
	// Dev signing key - matches config.go when PACTUM_JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	// Default value matching production config
	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	// Subcommands
	grantorCmd := flag.NewFlagSet("grantor", flag.ExitOnError)
	inspectCmd := flag.NewFlagSet("inspect", flag.ExitOnError)

	// Grantor token flags
	grantorID := grantorCmd.String("grantor-id", "", "Grantor ID (UUID). Generated if empty.")
	grantorSecret := grantorCmd.String("secret", "", "Grantor API secret, required with -database-url")
	grantorKey := grantorCmd.String("signing-key", devSigningKey, "JWT signing key")
	grantorDB := grantorCmd.String("database-url", os.Getenv("PACTUM_DATABASE_URL"), "Verify the secret against this database before minting")
	grantorTTL := grantorCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	grantorJSON := grantorCmd.Bool("json", false, "Output as JSON")

	// Inspect flags
	inspectToken := inspectCmd.String("token", "", "Token to validate and decode")
	inspectKey := inspectCmd.String("signing-key", devSigningKey, "JWT signing key")
	inspectJSON := inspectCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "grantor":
		grantorCmd.Parse(os.Args[2:])
		mintGrantorToken(*grantorID, *grantorSecret, *grantorKey, *grantorDB, *grantorTTL, *grantorJSON)
	case "inspect":
		inspectCmd.Parse(os.Args[2:])
		inspect(*inspectToken, *inspectKey, *inspectJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Mint grantor bearer tokens for the Pactum API

WARNING: The default signing key is the dev key and will NOT work against a
         production server. Use -signing-key for real deployments.

Usage:
  tokengen <command> [flags]

Commands:
  grantor   Mint a grantor bearer token (JWT)
  inspect   Validate a token and print its claims

Examples:
  # Mint a token for a throwaway grantor ID (dev server)
  tokengen grantor

  # Mint a token for a registered grantor
  tokengen grantor -grantor-id "550e8400-e29b-41d4-a716-446655440000"

  # Verify the grantor's API secret against the database first
  tokengen grantor -grantor-id "550e..." -secret "s3cr3t" -database-url "postgres://..."

  # Longer-lived token, JSON output
  tokengen grantor -ttl 1h -json

  # Decode and validate a token
  tokengen inspect -token "eyJ..."

Use "tokengen <command> -h" for more information about a command.`)
}

func mintGrantorToken(grantorIDStr, secret, signingKey, dbURL string, ttl time.Duration, jsonOutput bool) {
	if grantorIDStr == "" && dbURL != "" {
		fmt.Fprintln(os.Stderr, "-grantor-id is required when verifying against a database")
		os.Exit(1)
	}

	grantorID := id.GrantorID(parseOrGenerateUUID(grantorIDStr, "grantor-id"))

	if dbURL != "" {
		verifySecret(grantorID, secret, dbURL)
	}

	svc := jwttoken.NewJWTService(signingKey, ttl)
	token, jti, err := svc.GenerateGrantorToken(context.Background(), grantorID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "grantor_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"grantor_id": grantorID.String(),
				"iss":        jwttoken.TokenIssuer,
				"aud":        jwttoken.TokenAudience,
				"jti":        jti,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
	} else {
		fmt.Println("Grantor Token (JWT)")
		fmt.Println("===================")
		fmt.Printf("Grantor ID: %s\n", grantorID)
		fmt.Printf("Expires In: %s\n", ttl)
		fmt.Printf("JTI:        %s\n", jti)
		fmt.Println()
		fmt.Println("Token:")
		fmt.Println(token)
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/api/v1/...")
	}
}

// verifySecret checks the grantor's API secret against the stored bcrypt
// hash. Exits unless the grantor exists and the secret matches.
func verifySecret(grantorID id.GrantorID, secret, dbURL string) {
	if secret == "" {
		fmt.Fprintln(os.Stderr, "-secret is required when verifying against a database")
		os.Exit(1)
	}

	cfg := database.DefaultConfig()
	cfg.URL = dbURL
	pool, err := database.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close() //nolint:errcheck // read-only tool exit

	svc := partyservice.New(partystore.NewPostgres(pool.DB()))
	if err := svc.VerifySecret(context.Background(), grantorID, secret); err != nil {
		fmt.Fprintf(os.Stderr, "Secret verification failed: %v\n", err)
		os.Exit(1)
	}
}

func inspect(token, signingKey string, jsonOutput bool) {
	if token == "" {
		fmt.Fprintln(os.Stderr, "-token is required")
		os.Exit(1)
	}

	svc := jwttoken.NewJWTService(signingKey, defaultTokenTTL)
	claims, err := svc.ValidateToken(token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Token is invalid: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token: token,
			Type:  "grantor_token",
			Claims: map[string]any{
				"grantor_id": claims.GrantorID,
				"iss":        claims.Issuer,
				"aud":        claims.Audience,
				"jti":        claims.ID,
				"exp":        claims.ExpiresAt,
				"iat":        claims.IssuedAt,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
	} else {
		fmt.Println("Token is valid")
		fmt.Println("==============")
		fmt.Printf("Grantor ID: %s\n", claims.GrantorID)
		fmt.Printf("Issuer:     %s\n", claims.Issuer)
		fmt.Printf("JTI:        %s\n", claims.ID)
		if claims.ExpiresAt != nil {
			fmt.Printf("Expires:    %s\n", claims.ExpiresAt.Time.Format(time.RFC3339))
		}
	}
}

func parseOrGenerateUUID(input, fieldName string) uuid.UUID {
	if input == "" {
		return uuid.New()
	}
	parsed, err := uuid.Parse(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s UUID: %s\n", fieldName, input)
		os.Exit(1)
	}
	return parsed
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
