// Command lodectl is the operator CLI for a running warden's admin surface.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var (
	adminAddr string
	authToken string

	rootCmd = &cobra.Command{
		Use:   "lodectl",
		Short: "Operator CLI for the Lodestone warden admin surface.",
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the warden status snapshot.",
		RunE: func(*cobra.Command, []string) error {
			return getJSON("/status")
		},
	}

	sessionsCmd = &cobra.Command{
		Use:   "sessions",
		Short: "List live client sessions.",
		RunE: func(*cobra.Command, []string) error {
			return getJSON("/sessions")
		},
	}

	eventsCmd = &cobra.Command{
		Use:   "events [limit]",
		Short: "Show recent session lifecycle events.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "/events"
			if len(args) == 1 {
				limit, err := strconv.Atoi(args[0])
				if err != nil || limit < 0 {
					return fmt.Errorf("invalid limit: %q", args[0])
				}
				path = fmt.Sprintf("/events?limit=%d", limit)
			}
			return getJSON(path)
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Stream live status frames until interrupted.",
		RunE: func(*cobra.Command, []string) error {
			return watchStream()
		},
	}
)

func getJSON(path string) error {
	req, err := http.NewRequest(http.MethodGet, "http://"+adminAddr+path, nil)
	if err != nil {
		return err
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("warden returned %s: %s", resp.Status, body)
	}
	return printIndented(body)
}

func printIndented(body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func watchStream() error {
	u := url.URL{Scheme: "ws", Host: adminAddr, Path: "/watch"}
	header := http.Header{}
	if authToken != "" {
		header.Set("Authorization", "Bearer "+authToken)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}
		if err := printIndented(frame); err != nil {
			return err
		}
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&adminAddr, "addr", "127.0.0.1:5228", "warden admin address")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "admin bearer token")
	rootCmd.AddCommand(statusCmd, sessionsCmd, eventsCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lodectl: %v\n", err)
		os.Exit(1)
	}
}
