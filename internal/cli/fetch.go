package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/tripmate-client/fetch"
	"github.com/spf13/cobra"
)

const maxPrintedBody = 1 << 20

type fetchResult struct {
	Status    int             `json:"status"`
	RequestID string          `json:"request_id,omitempty"`
	Body      json.RawMessage `json:"body,omitempty"`
	Text      string          `json:"text,omitempty"`
}

func (a *app) fetchCmd() *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "fetch <method> <path>",
		Short: "Send one request through the resilient client",
		Long: `Send one request to the API with the stored session. Server errors are
retried with backoff and a rejected session is refreshed once.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.api()
			if err != nil {
				return err
			}
			var body []byte
			if data != "" {
				body = []byte(data)
			}

			resp, err := client.Raw(cmd.Context(), strings.ToUpper(args[0]), args[1], body)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPrintedBody))
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			result := fetchResult{Status: resp.StatusCode}
			if resp.Request != nil {
				result.RequestID = resp.Request.Header.Get(fetch.RequestIDHeader)
			}
			if err := a.printFetchResult(result, raw); err != nil {
				return err
			}
			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("request failed with status %d", resp.StatusCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "JSON request body")
	return cmd
}

func (a *app) printFetchResult(result fetchResult, raw []byte) error {
	if a.jsonOutput {
		if json.Valid(raw) {
			result.Body = raw
		} else {
			result.Text = string(raw)
		}
		return writeJSON(a.out, result)
	}

	fmt.Fprintf(a.out, "HTTP %d %s\n", result.Status, http.StatusText(result.Status))
	if result.RequestID != "" {
		fmt.Fprintf(a.out, "%s: %s\n", fetch.RequestIDHeader, result.RequestID)
	}
	if len(raw) > 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, strings.TrimRight(string(raw), "\n"))
	}
	return nil
}
