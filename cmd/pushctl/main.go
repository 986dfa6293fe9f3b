// pushctl is the operator tool for the HabitFlow push backend: it generates
// VAPID keys, mints sender tokens and talks to a running server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	pushDelivery "habitflow-backend/internal/push/delivery"
	"habitflow-backend/internal/push/domain"
	"habitflow-backend/pkg/pushclient"
	"habitflow-backend/pkg/vapid"

	"github.com/spf13/pflag"
)

const usage = `usage: pushctl <command> [flags]

commands:
  keygen   generate a VAPID key pair (prints env lines, or writes --out)
  token    mint a sender token for SEND_API_SECRET protected routes
  send     broadcast a notification through a running server
  status   show server health and registered devices
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(out, usage)
		return nil
	}

	switch args[0] {
	case "keygen":
		return runKeygen(args[1:], out)
	case "token":
		return runToken(args[1:], out)
	case "send":
		return runSend(args[1:], out)
	case "status":
		return runStatus(args[1:], out)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}

func parse(flagSet *pflag.FlagSet, args []string) (bool, error) {
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func runKeygen(args []string, out io.Writer) error {
	var path string
	flagSet := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
	flagSet.StringVarP(&path, "out", "o", "", "write the pair to this key file instead of stdout")
	if ok, err := parse(flagSet, args); !ok {
		return err
	}

	if path != "" {
		keys, err := vapid.LoadOrCreate(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "VAPID keys stored in %s\npublic key: %s\n", path, keys.PublicKey)
		return nil
	}

	keys, err := vapid.Generate()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", keys.PublicKey, keys.PrivateKey)
	return nil
}

func runToken(args []string, out io.Writer) error {
	var secret, subject string
	var ttl time.Duration
	flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
	flagSet.StringVar(&secret, "secret", os.Getenv("SEND_API_SECRET"), "signing secret (default $SEND_API_SECRET)")
	flagSet.StringVar(&subject, "subject", "pushctl", "token subject")
	flagSet.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	if ok, err := parse(flagSet, args); !ok {
		return err
	}

	if secret == "" {
		return fmt.Errorf("--secret or SEND_API_SECRET is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	token, err := pushDelivery.IssueSenderToken(secret, subject, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

func serverFlags(flagSet *pflag.FlagSet) (server, token *string, timeout *time.Duration) {
	server = flagSet.String("server", envOr("PUSH_SERVER", "http://localhost:3001"), "push backend base URL")
	token = flagSet.String("token", os.Getenv("PUSH_SENDER_TOKEN"), "sender token for protected routes")
	timeout = flagSet.Duration("timeout", 30*time.Second, "request timeout")
	return server, token, timeout
}

func runSend(args []string, out io.Writer) error {
	var payload domain.Payload
	flagSet := pflag.NewFlagSet("send", pflag.ContinueOnError)
	server, token, timeout := serverFlags(flagSet)
	flagSet.StringVar(&payload.Title, "title", "", "notification title (required)")
	flagSet.StringVar(&payload.Body, "body", "", "notification body (required)")
	flagSet.StringVar(&payload.URL, "url", "", "URL opened on click")
	flagSet.StringVar(&payload.Tag, "tag", "", "notification tag")
	flagSet.StringVar(&payload.Icon, "icon", "", "icon path")
	flagSet.IntSliceVar(&payload.Vibrate, "vibrate", nil, "vibration pattern in ms, e.g. 200,100,200")
	if ok, err := parse(flagSet, args); !ok {
		return err
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp, err := pushclient.New(*server, *token).Send(ctx, payload)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (total=%d attempted=%d sent=%d failed=%d)\n",
		resp.Message, resp.Stats.Total, resp.Stats.Attempted, resp.Stats.Sent, resp.Stats.Failed)
	return nil
}

func runStatus(args []string, out io.Writer) error {
	var asJSON bool
	flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
	server, token, timeout := serverFlags(flagSet)
	flagSet.BoolVar(&asJSON, "json", false, "print raw JSON")
	if ok, err := parse(flagSet, args); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := pushclient.New(*server, *token)
	health, err := client.Health(ctx)
	if err != nil {
		return err
	}
	subs, err := client.ListSubscriptions(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"health": health, "subscriptions": subs})
	}

	fmt.Fprintf(out, "status: %s (%s)\n", health.Status, health.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(out, "devices: %d\n", subs.Count)
	for _, e := range subs.Endpoints {
		fmt.Fprintf(out, "  %s\n", e.EndpointPrefix)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
