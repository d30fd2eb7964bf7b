package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/picsearch/internal/cli"
	"github.com/hyperjump/picsearch/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSearchCmd() *cobra.Command {
	var (
		serverURL string
		output    string
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Find the photos that best match a text query",
		Long: `Query is all remaining arguments joined by spaces. Multi-word queries work
with or without quotes.

With --server the query is sent to a running "picsearch serve"; otherwise the
corpus and embedding model are loaded in-process.`,
		Example: `  picsearch search two dogs playing in the snow
  picsearch search --server http://localhost:7860 "a red car at night"
  picsearch search -o compact sunset over the sea`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			query := buildSearchQuery(args)
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			var response *models.SearchResponse
			if serverURL != "" {
				response, err = searchViaHTTP(ctx, serverURL, &models.SearchQuery{Query: query})
			} else {
				response, err = searchDirect(ctx, cmd, query)
			}
			if err != nil {
				return err
			}
			return cli.WriteSearchResults(cmd.OutOrStdout(), response, format)
		},
	}
	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "picsearch server URL (empty searches in-process)")
	cmd.Flags().StringVarP(&output, "output", "o", string(cli.OutputText), "output format: text, compact, json")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "search timeout")
	return cmd
}

func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func searchDirect(ctx context.Context, cmd *cobra.Command, query string) (*models.SearchResponse, error) {
	cfg, _, debug, err := configFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	logger := zap.NewNop()
	if debug {
		if logger, err = newLogger(cfg, true); err != nil {
			return nil, err
		}
		defer logger.Sync()
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	return components.Handler.Search(ctx, query)
}

func searchViaHTTP(ctx context.Context, serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimSuffix(serverURL, "/") + "/api/v1/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if base := strings.TrimSuffix(serverURL, "/"); base != "" {
		for _, item := range response.Results {
			if strings.HasPrefix(item.URL, "/") {
				item.URL = base + item.URL
			}
		}
	}
	return &response, nil
}
