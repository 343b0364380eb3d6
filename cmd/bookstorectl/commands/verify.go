package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookstore-api/cmd/bookstorectl/output"
	"bookstore-api/pkg/client"
)

var (
	// Verify flags
	verifyURL     string
	verifyOrigin  string
	verifyTimeout time.Duration
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a running deployment",
	Long: `Check that a deployment answers its health probe, serves the book list
and allows CORS requests from the given origin.

Examples:
  bookstorectl verify --url https://api.example.com --origin https://shop.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), verifyTimeout)
		defer cancel()

		results := runVerify(ctx, client.New(verifyURL), verifyOrigin)
		failed := report(results)
		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyURL, "url", "http://localhost:3000", "Base URL of the API")
	verifyCmd.Flags().StringVar(&verifyOrigin, "origin", "http://localhost:5173", "Origin used for the CORS check")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 15*time.Second, "Overall timeout")
	rootCmd.AddCommand(verifyCmd)
}

type checkResult struct {
	Name   string
	OK     bool
	Detail string
}

func runVerify(ctx context.Context, c *client.Client, origin string) []checkResult {
	var results []checkResult

	health, err := c.Health(ctx)
	if err != nil {
		results = append(results, checkResult{Name: "Health", Detail: err.Error()})
	} else {
		results = append(results, checkResult{
			Name:   "Health",
			OK:     health.Status == "OK",
			Detail: fmt.Sprintf("environment=%s uptime=%.0fs", health.Environment, health.Uptime),
		})
	}

	books, err := c.ListBooks(ctx, "", "", 1, 1)
	if err != nil {
		results = append(results, checkResult{Name: "Books API", Detail: err.Error()})
	} else {
		results = append(results, checkResult{
			Name:   "Books API",
			OK:     true,
			Detail: fmt.Sprintf("%d book(s) in catalogue", books.Pagination.TotalCount),
		})
	}

	allowed, err := c.Preflight(ctx, "/api/books", origin)
	switch {
	case err != nil:
		results = append(results, checkResult{Name: "CORS", Detail: err.Error()})
	case allowed == origin || allowed == "*":
		results = append(results, checkResult{Name: "CORS", OK: true, Detail: "allows " + origin})
	default:
		results = append(results, checkResult{
			Name:   "CORS",
			Detail: fmt.Sprintf("expected %s, got %q", origin, allowed),
		})
	}

	return results
}

// report prints results and returns the number of failures.
func report(results []checkResult) int {
	output.Section("Deployment check")

	failed := 0
	for _, r := range results {
		if r.OK {
			output.Success("%s: %s", r.Name, r.Detail)
			continue
		}
		failed++
		output.Error("%s: %s", r.Name, r.Detail)
	}
	return failed
}
