package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/codereview/internal/api/middleware"
	"github.com/kiranshivaraju/codereview/internal/config"
	"github.com/kiranshivaraju/codereview/internal/store"
	"github.com/kiranshivaraju/codereview/pkg/models"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

const apiKeyPrefix = "crk_"

var knownScopes = []string{mw.ScopeReview, mw.ScopeRead}

var apiKeyFlags struct {
	name   string
	scopes []string
}

var apiKeyCmd = &cobra.Command{
	Use:   "api-key",
	Short: "Manage API keys",
}

var apiKeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an API key and print it once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd.Context(), func(st store.Store) error {
			raw, key, err := createAPIKey(cmd.Context(), st, apiKeyFlags.name, apiKeyFlags.scopes)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:     %s\n", key.ID)
			fmt.Fprintf(out, "Name:   %s\n", key.Name)
			fmt.Fprintf(out, "Scopes: %s\n", strings.Join(key.Scopes, ","))
			fmt.Fprintf(out, "Key:    %s\n", raw)
			fmt.Fprintln(out, "Store this key now; it cannot be shown again.")
			return nil
		})
	},
}

var apiKeyRevokeCmd = &cobra.Command{
	Use:   "revoke KEY_ID",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid key id %q: %w", args[0], err)
		}
		return withStore(cmd.Context(), func(st store.Store) error {
			if err := st.RevokeAPIKey(cmd.Context(), id); err != nil {
				return fmt.Errorf("revoke api key: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s\n", id)
			return nil
		})
	},
}

func init() {
	f := apiKeyCreateCmd.Flags()
	f.StringVar(&apiKeyFlags.name, "name", "", "Key name (required)")
	f.StringSliceVar(&apiKeyFlags.scopes, "scopes", knownScopes, "Granted scopes")
	_ = apiKeyCreateCmd.MarkFlagRequired("name")

	apiKeyCmd.AddCommand(apiKeyCreateCmd, apiKeyRevokeCmd)
}

// createAPIKey generates a raw key, stores its bcrypt hash and returns the
// raw key. The raw key is never persisted.
func createAPIKey(ctx context.Context, st store.Store, name string, scopes []string) (string, *models.APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("api key name is required")
	}
	if len(scopes) == 0 {
		return "", nil, fmt.Errorf("at least one scope is required")
	}
	for _, s := range scopes {
		if !slices.Contains(knownScopes, s) {
			return "", nil, fmt.Errorf("unknown scope %q (known: %s)", s, strings.Join(knownScopes, ", "))
		}
	}

	raw := apiKeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash api key: %w", err)
	}

	now := time.Now().UTC()
	key := &models.APIKey{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   string(hash),
		KeyPrefix: raw[:mw.KeyPrefixLen],
		Scopes:    slices.Clone(scopes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.CreateAPIKey(ctx, key); err != nil {
		return "", nil, fmt.Errorf("create api key: %w", err)
	}
	return raw, key, nil
}

// withStore connects to the configured database, applies migrations and
// hands a store to fn.
func withStore(ctx context.Context, fn func(store.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := store.RunMigrations(cfg.Database.URL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return fn(store.NewPostgresStore(pool))
}
