package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/nerrad567/apiconsole/internal/api"
	"github.com/nerrad567/apiconsole/internal/dth22"
	"github.com/nerrad567/apiconsole/internal/infrastructure/config"
)

// watchMessage is a hub message with the payload left undecoded.
type watchMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	EventType string          `json:"event_type,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func newWatchCmd(opts *options) *cobra.Command {
	var (
		server   string
		channels []string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream DTH22 reading events from a running server",
		Long: `Connect to the server's WebSocket and print dth22.created and dth22.updated
events as they happen. --api-key and --token authenticate when the server
has auth enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if server == "" {
				server = defaultWatchURL(cfg)
			}
			conn := opts.connection(cfg)
			return watch(cmd.Context(), server, conn.Headers(), channels, opts.format(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "WebSocket URL (default derived from api.host, api.port and websocket.path)")
	cmd.Flags().StringSliceVar(&channels, "channel",
		[]string{string(dth22.EventCreated), string(dth22.EventUpdated)}, "Channels to subscribe to")
	return cmd
}

// defaultWatchURL points at the locally configured server.
func defaultWatchURL(cfg *config.Config) string {
	host := cfg.API.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	scheme := "ws"
	if cfg.API.TLS.Enabled {
		scheme = "wss"
	}
	path := cfg.WebSocket.Path
	if path == "" {
		path = "/api/v1/ws"
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(cfg.API.Port)) + path
}

// watch subscribes to channels and prints events until ctx is cancelled or
// the server closes the connection.
func watch(ctx context.Context, url string, headers map[string]string, channels []string, format outputFormat, out, errOut io.Writer) error {
	header := http.Header{}
	for k, v := range headers {
		if k != "Content-Type" {
			header.Set(k, v)
		}
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connecting to %s: %s", url, resp.Status)
		}
		return fmt.Errorf("connecting to %s: %w", url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		//nolint:errcheck // Best-effort close handshake before the read loop unblocks
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	err = conn.WriteJSON(api.WSMessage{
		Type:    api.WSTypeSubscribe,
		ID:      "watch",
		Payload: api.WSSubscribePayload{Channels: channels},
	})
	if err != nil {
		return fmt.Errorf("subscribing: %w", err)
	}

	for {
		var msg watchMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading event: %w", err)
		}
		if err := printWatchMessage(msg, format, out, errOut); err != nil {
			return err
		}
	}
}

func printWatchMessage(msg watchMessage, format outputFormat, out, errOut io.Writer) error {
	switch msg.Type {
	case api.WSTypeResponse:
		fmt.Fprintf(errOut, "info: %s\n", msg.Payload)
		return nil
	case api.WSTypeError:
		var e struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(msg.Payload, &e); err != nil {
			return fmt.Errorf("decoding error message: %w", err)
		}
		return errors.New(e.Message)
	case api.WSTypeEvent:
	default:
		return nil
	}

	var ev dth22.Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return fmt.Errorf("decoding %s event: %w", msg.EventType, err)
	}

	switch format {
	case outputJSON:
		return json.NewEncoder(out).Encode(ev)
	case outputYAML:
		return printYAML(out, []dth22.Event{ev})
	default:
		r := ev.Reading
		_, err := fmt.Fprintf(out, "%s  %-13s  id=%d  unit=%s  suhu=%g  kelembapan=%g  source=%s\n",
			r.UpdatedAt.Format(time.RFC3339), ev.Type, r.ID, r.UnitName, r.Suhu, r.Kelembapan, ev.Source)
		return err
	}
}
