package commands

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"bardo/internal/config"
	api "bardo/pkg/confluence"
	"bardo/pkg/confluence/custom"
)

var (
	apiData    string
	apiHeaders []string
	apiJQ      string
	apiInclude bool
)

// apiCmd sends a raw request to any REST endpoint below /rest/api
var apiCmd = &cobra.Command{
	Use:   "api METHOD ENDPOINT",
	Short: "Send an authenticated request to a Confluence REST endpoint",
	Long: `Send a GET, POST or PUT request to ENDPOINT, relative to <base_url>/rest/api,
and print the JSON response.

ENDPOINT is used verbatim, so query values must already be URL-escaped.
--data takes a JSON document, or @path to read one from a file.
--jq filters the response with a jq expression; string results are printed
without quotes.

A response status outside 2xx is printed and reported as an error.`,
	Example: `  bardo api GET "space?limit=5" --jq '.results[].key'
  bardo api GET "content/123456?expand=version" -i
  bardo api PUT content/123456/label --data @labels.json`,
	Args: cobra.ExactArgs(2),
	RunE: runAPI,
}

func runAPI(cmd *cobra.Command, args []string) error {
	method := strings.ToUpper(args[0])
	endpoint := strings.TrimPrefix(args[1], "/")

	body, err := readAPIData(apiData)
	if err != nil {
		return err
	}
	if body == nil && method != http.MethodGet {
		return fmt.Errorf("--data is required for %s requests", method)
	}

	var code *gojq.Code
	if apiJQ != "" {
		query, err := gojq.Parse(apiJQ)
		if err != nil {
			return fmt.Errorf("invalid jq expression: %w", err)
		}
		if code, err = gojq.Compile(query); err != nil {
			return fmt.Errorf("failed to compile jq expression: %w", err)
		}
	}

	log := newLogger()
	defer log.Close()

	cfg, err := config.LoadForListPages(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := newAPIClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var q custom.Query
	switch method {
	case http.MethodGet:
		q = client.Get().CustomEndpoint(endpoint)
	case http.MethodPost:
		q = client.Post(body).CustomEndpoint(endpoint)
	case http.MethodPut:
		q = client.Put(body).CustomEndpoint(endpoint)
	default:
		return fmt.Errorf("unsupported method %q: use GET, POST or PUT", args[0])
	}

	for _, h := range apiHeaders {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid --header %q (expected name:value)", h)
		}
		if q, err = q.SetHeader(strings.TrimSpace(name), strings.TrimSpace(value)); err != nil {
			return err
		}
	}

	resp, err := api.Execute[any](cmd.Context(), q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if apiInclude {
		printResponseHead(out, resp)
	}

	switch {
	case resp.Data == nil:
		if len(resp.Raw) > 0 {
			fmt.Fprintln(out, string(resp.Raw))
		}
	case code != nil:
		if err := printJQ(out, code, *resp.Data); err != nil {
			return err
		}
	default:
		var buf bytes.Buffer
		if err := json.Indent(&buf, resp.Raw, "", "  "); err != nil {
			buf.Reset()
			buf.Write(resp.Raw)
		}
		fmt.Fprintln(out, buf.String())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: request failed with status %d", method, endpoint, resp.StatusCode)
	}
	return nil
}

// readAPIData returns nil when no data was given.
func readAPIData(data string) (json.RawMessage, error) {
	if data == "" {
		return nil, nil
	}

	raw := []byte(data)
	if path, ok := strings.CutPrefix(data, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read data file: %w", err)
		}
		raw = b
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("--data is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

func printJQ(w io.Writer, code *gojq.Code, input any) error {
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("jq: %w", err)
		}

		if s, isString := v.(string); isString {
			fmt.Fprintln(w, s)
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("jq: %w", err)
		}
		fmt.Fprintln(w, string(b))
	}
}

func printResponseHead(w io.Writer, resp *api.Response[any]) {
	fmt.Fprintf(w, "HTTP %d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range resp.Header[name] {
			fmt.Fprintf(w, "%s: %s\n", name, v)
		}
	}
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVarP(&apiData, "data", "d", "", "JSON request body, or @file to read it from a file")
	apiCmd.Flags().StringArrayVarP(&apiHeaders, "header", "H", nil, "Add a request header (name:value, repeatable)")
	apiCmd.Flags().StringVarP(&apiJQ, "jq", "q", "", "Filter the response with a jq expression")
	apiCmd.Flags().BoolVarP(&apiInclude, "include", "i", false, "Print the response status line and headers")
}
