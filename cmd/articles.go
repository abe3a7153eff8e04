package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/devtoy/cli/internal/config"
)

var articlesOutput string

// articlesCmd lists the published articles of the authenticated user
var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "List your published articles",
	Long: `List the published articles of the account the API key belongs to, as
returned by the dev.to API (first page only).

Examples:
  devtoy articles
  devtoy articles --output json > articles.json
  devtoy articles -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := config.ValidateOutput(articlesOutput)
		if err != nil {
			return err
		}

		body, err := newClient().PublishedArticlesJSON(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list articles: %w", err)
		}

		return printOutput(os.Stdout, body, format, colorEnabled())
	},
}

// printOutput prints the raw API payload in the specified format
func printOutput(w io.Writer, body []byte, format config.OutputFormat, color bool) error {
	switch format {
	case config.OutputJSON:
		if _, err := w.Write(bytes.TrimSpace(body)); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err

	case config.OutputYAML:
		var data interface{}
		if err := json.Unmarshal(body, &data); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return encoder.Close()

	default:
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		buf.WriteByte('\n')
		if color {
			return quick.Highlight(w, buf.String(), "json", "terminal256", "monokai")
		}
		_, err := buf.WriteTo(w)
		return err
	}
}

func init() {
	articlesCmd.Flags().StringVarP(&articlesOutput, "output", "o", "pretty", "Output format (pretty, json, yaml)")

	rootCmd.AddCommand(articlesCmd)
}
