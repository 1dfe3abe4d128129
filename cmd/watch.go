package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// newWatchCommand is a small console client for the live event feed
func newWatchCommand() *cobra.Command {
	var (
		server string
		say    []string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print live call and complaint events, optionally speaking text turns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				server = "ws://localhost:" + loadConfig().Port + "/ws"
			}
			wsURL, err := url.Parse(server)
			if err != nil {
				return fmt.Errorf("invalid server URL: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watch(ctx, wsURL.String(), say, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "event feed URL (default ws://localhost:$PORT/ws)")
	cmd.Flags().StringArrayVar(&say, "say", nil, "utterance to send once connected; repeatable")

	return cmd
}

type watchedEvent struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func watch(ctx context.Context, server string, say []string, out io.Writer) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, server, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket connection failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket connection failed: %w", err)
	}
	defer conn.Close()

	fmt.Fprintf(out, "connected to %s\n", server)

	// Closing the connection unblocks ReadMessage on interrupt
	stopClose := context.AfterFunc(ctx, func() { conn.Close() })
	defer stopClose()

	for _, text := range say {
		msg := map[string]string{"type": "utterance", "text": text}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("send utterance: %w", err)
		}
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}

		var event watchedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			fmt.Fprintf(out, "? %s\n", payload)
			continue
		}
		fmt.Fprintf(out, "%s %-20s %s\n", event.Timestamp, event.Type, event.Data)
	}
}
