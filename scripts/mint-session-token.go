package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/eugeneokaka/journal/internal/auth"
	"github.com/eugeneokaka/journal/internal/model"
	"github.com/eugeneokaka/journal/internal/repository"
)

type output struct {
	UserID     string    `json:"user_id,omitempty"`
	ExternalID string    `json:"external_id"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func main() {
	var (
		secret      = flag.String("secret", os.Getenv("AUTH_JWT_SECRET"), "HMAC secret shared with the API")
		issuer      = flag.String("issuer", os.Getenv("AUTH_JWT_ISSUER"), "Token issuer (optional)")
		audience    = flag.String("audience", os.Getenv("AUTH_JWT_AUDIENCE"), "Token audience (optional)")
		externalID  = flag.String("external-id", "user_dev", "Identity provider subject")
		firstName   = flag.String("first-name", "Dev", "Given name carried in the token")
		lastName    = flag.String("last-name", "", "Family name carried in the token")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
		databaseURL = flag.String("database-url", "", "Provision the local user in this database (optional)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "AUTH_JWT_SECRET is required")
		os.Exit(1)
	}
	if strings.TrimSpace(*externalID) == "" {
		fmt.Fprintln(os.Stderr, "external-id must not be blank")
		os.Exit(1)
	}

	identity := auth.Identity{
		ExternalID: *externalID,
		FirstName:  *firstName,
		LastName:   *lastName,
	}

	token, err := auth.IssueToken(*secret, identity, auth.TokenOptions{
		Issuer:   *issuer,
		Audience: *audience,
		TTL:      *ttl,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}

	out := output{
		ExternalID: *externalID,
		Token:      token,
		ExpiresAt:  time.Now().Add(*ttl).UTC().Truncate(time.Second),
	}

	if *databaseURL != "" {
		userID, err := ensureUser(*databaseURL, identity)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		out.UserID = userID
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureUser provisions the local user the same way POST /auth/sync does.
func ensureUser(databaseURL string, identity auth.Identity) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, databaseURL, repository.PoolConfig{MaxConns: 1})
	if err != nil {
		return "", fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	user, err := repo.UpsertUser(ctx, &model.User{
		ID:         ulid.Make().String(),
		ExternalID: identity.ExternalID,
		FirstName:  identity.FirstName,
		LastName:   identity.LastName,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("provision user: %w", err)
	}
	return user.ID, nil
}
