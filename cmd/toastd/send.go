package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toast/pkg/api"
)

type sendOptions struct {
	server    string
	typ       string
	title     string
	duration  time.Duration
	forever   bool
	closable  bool
	hideTitle bool
	key       string
}

func sendCmd() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Show a notification on a running server",
		Long: `Show a notification on a running toastd and print its key.

Sending with an existing --key updates that notification in place and
restarts its auto-close timer.

Examples:
  toastd send "Deploy finished" --type success
  toastd send "Disk almost full" --type warning --forever --closable
  toastd send "Build 42 running" --key build-42 --server http://ci:8080`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := send(cmd.Context(), opts, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:8080", "toastd base URL")
	cmd.Flags().StringVarP(&opts.typ, "type", "t", "info", "Notification type (success, warning, error, info)")
	cmd.Flags().StringVar(&opts.title, "title", "", "Notification title")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 0, "Auto-close after this long (default: server default)")
	cmd.Flags().BoolVar(&opts.forever, "forever", false, "Never auto-close")
	cmd.Flags().BoolVar(&opts.closable, "closable", false, "Show a close button")
	cmd.Flags().BoolVar(&opts.hideTitle, "hide-title", false, "Do not render the title")
	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "Notification key (reuse to update)")

	return cmd
}

func (o sendOptions) request(message string) api.ShowRequest {
	req := api.ShowRequest{
		Type:     o.typ,
		Title:    o.title,
		Message:  message,
		Closable: o.closable,
		Key:      o.key,
	}
	switch {
	case o.forever:
		var zero int64
		req.Duration = &zero
	case o.duration > 0:
		ms := o.duration.Milliseconds()
		req.Duration = &ms
	}
	if o.hideTitle {
		show := false
		req.ShowTitle = &show
	}
	return req
}

func send(ctx context.Context, o sendOptions, message string) (string, error) {
	body, err := json.Marshal(o.request(message))
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(o.server, "/") + "/toasts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var e api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Message == "" {
			return "", fmt.Errorf("send: server returned %s", resp.Status)
		}
		return "", fmt.Errorf("send: %s: %s", e.Code, e.Message)
	}

	var t api.Toast
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return "", fmt.Errorf("send: decode response: %w", err)
	}
	return t.Key, nil
}
