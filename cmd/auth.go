package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/devtoy/cli/internal/auth"
	"github.com/devtoy/cli/internal/devto"
)

var (
	authKey    string
	authVerify bool
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the cached dev.to API key",
	Long: `Manage the dev.to API key devtoy caches on this machine.

Other commands prompt for the key on first use, so logging in explicitly is
optional.

Examples:
  # Interactive login
  devtoy auth login

  # Non-interactive login
  devtoy auth login --key "$DEVTO_API_KEY"

  # Check auth status
  devtoy auth status

  # Wipe the cached key
  devtoy auth logout`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a dev.to API key",
	Long: `Store a dev.to API key, replacing any cached one. Without --key the key is
read from the terminal without echo.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an API key is cached",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := keyStore.Read()
		if errors.Is(err, auth.ErrNotFound) {
			fmt.Printf("Not authenticated (no key at %s)\n", keyStore.Path)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println("Authenticated")
		fmt.Printf("  Key file: %s\n", keyStore.Path)
		fmt.Printf("  API Key: %s\n", auth.Mask(key))
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Wipe and remove the cached API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Logout always succeeds; a failed wipe is only reported.
		if err := keyStore.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not fully remove the API key: %v\n", err)
			return nil
		}
		fmt.Println("Credentials removed successfully")
		return nil
	},
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	key := authKey
	if key == "" {
		var err error
		key, err = keyStore.Prompt()
		if err != nil {
			return err
		}
	}

	if authVerify {
		fmt.Println("Testing authentication...")
		if err := testAuth(cmd, key); err != nil {
			return fmt.Errorf("authentication test failed: %w", err)
		}
		fmt.Println("Authentication successful")
	}

	if err := keyStore.Write(key); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	fmt.Printf("API key saved to %s\n", keyStore.Path)
	return nil
}

// fixedKey supplies a key that has not been stored yet
type fixedKey string

func (k fixedKey) Obtain() (string, error) { return string(k), nil }

// testAuth checks the key against the published-articles endpoint
func testAuth(cmd *cobra.Command, key string) error {
	client := newClient()
	client.Keys = fixedKey(key)

	resp, err := client.Do(cmd.Context(), http.MethodGet, devto.PublishedArticlesPath, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("invalid credentials (HTTP %d)", resp.StatusCode)
	}
	if !resp.OK() {
		return &devto.APIError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return nil
}

func init() {
	authLoginCmd.Flags().StringVar(&authKey, "key", "", "API key (prompted for when omitted)")
	authLoginCmd.Flags().BoolVar(&authVerify, "verify", true, "Check the key against the API before saving it")

	authCmd.AddCommand(authLoginCmd, authStatusCmd, authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}
