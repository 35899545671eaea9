package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldscript/fieldscript/internal/keycrypto"
	"github.com/fieldscript/fieldscript/internal/store"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"apikey"},
		Short:   "Manage project API keys",
		Long:    "Create, list, and revoke the API keys projects use to authenticate against the FieldScript API.",
	}

	cmd.AddCommand(newKeyCreateCmd())
	cmd.AddCommand(newKeyListCmd())
	cmd.AddCommand(newKeyRevokeCmd())

	return cmd
}

// openKeyStoreWithPepper resolves the pepper (prompting if interactive) and
// opens the key store with it.
func openKeyStoreWithPepper() (*store.SQLStore, error) {
	pepper, err := resolvePepper()
	if err != nil {
		return nil, err
	}
	hasher, err := keycrypto.New(pepper, false)
	if err != nil {
		return nil, err
	}
	return openKeyStore(hasher)
}

// ---------- key create ----------

func newKeyCreateCmd() *cobra.Command {
	var (
		project string
		name    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Long:  "Generate an API key for a project. The raw key is shown once and cannot be retrieved again.",
		Example: `  fieldscript key create --project acme --name "CI pipeline"
  fieldscript key create --project acme`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyCreate(project, name)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project the key belongs to (required)")
	cmd.Flags().StringVar(&name, "name", "", "Human-readable name for the key")
	cmd.MarkFlagRequired("project")

	return cmd
}

func runKeyCreate(projectID, name string) error {
	keys, err := openKeyStoreWithPepper()
	if err != nil {
		return fmt.Errorf("open key store: %w", err)
	}
	defer keys.Close()

	rawKey, rec, err := keys.Create(context.Background(), projectID, name)
	if err != nil {
		return fmt.Errorf("create api key: %w", err)
	}

	fmt.Println("API Key created:")
	fmt.Println()
	fmt.Printf("  Key:     %s\n", rawKey)
	fmt.Printf("  ID:      %s\n", rec.ID)
	fmt.Printf("  Project: %s\n", rec.ProjectID)
	if name != "" {
		fmt.Printf("  Name:    %s\n", name)
	}
	fmt.Println()
	fmt.Println("  Save this key now - it cannot be retrieved again.")
	return nil
}

// ---------- key list ----------

func newKeyListCmd() *cobra.Command {
	var (
		project    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a project's API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyList(project, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project whose keys to list (required)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.MarkFlagRequired("project")

	return cmd
}

func runKeyList(projectID string, jsonOutput bool) error {
	keys, err := openKeyStoreWithPepper()
	if err != nil {
		return fmt.Errorf("open key store: %w", err)
	}
	defer keys.Close()

	records, err := keys.List(context.Background(), projectID)
	if err != nil {
		return fmt.Errorf("list api keys: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No API keys for this project. Use 'fieldscript key create' to create one.")
		return nil
	}

	fmt.Printf("%-38s %-12s %-24s %-8s\n", "ID", "PREFIX", "NAME", "ACTIVE")
	fmt.Printf("%-38s %-12s %-24s %-8s\n", "--", "------", "----", "------")
	for _, k := range records {
		active := "yes"
		if k.Revoked() {
			active = "no"
		}
		fmt.Printf("%-38s %-12s %-24s %-8s\n", k.ID, k.KeyPrefix, k.Name, active)
	}

	return nil
}

// ---------- key revoke ----------

func newKeyRevokeCmd() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "revoke <key-id>",
		Short: "Revoke an API key by its id",
		Long:  "Revoke an API key, preventing any further authenticated requests with it. Revoking an already-revoked key is a no-op.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyRevoke(project, args[0])
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project the key belongs to (required)")
	cmd.MarkFlagRequired("project")

	return cmd
}

func runKeyRevoke(projectID, keyID string) error {
	keys, err := openKeyStoreWithPepper()
	if err != nil {
		return fmt.Errorf("open key store: %w", err)
	}
	defer keys.Close()

	rec, err := keys.Revoke(context.Background(), projectID, keyID)
	if err != nil {
		if err == store.ErrNotFound {
			return fmt.Errorf("api key %q not found in project %q", keyID, projectID)
		}
		return fmt.Errorf("revoke api key: %w", err)
	}

	fmt.Printf("Revoked key %s (prefix %s) at %s\n", rec.ID, rec.KeyPrefix, rec.RevokedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
