package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"chart-coach-be/internal/config"
	"chart-coach-be/pkg/events"
	pktNats "chart-coach-be/pkg/nats"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var (
		natsURL   string
		eventType string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream coach events from NATS in real-time",
		Long:  "Attaches an ephemeral JetStream consumer to the events stream the server forwards to. Requires the server to run with NATS_URL set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if natsURL == "" {
				natsURL = config.Load().App.NatsURL
			}
			return runWatch(cmd, natsURL, eventType)
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS server URL (default $NATS_URL)")
	cmd.Flags().StringVar(&eventType, "type", "", "only show one event type, e.g. MESSAGE_CREATED")
	return cmd
}

func runWatch(cmd *cobra.Command, natsURL, eventType string) error {
	if natsURL == "" {
		return fmt.Errorf("no NATS server configured: pass --nats or set NATS_URL")
	}

	sub, err := pktNats.NewSubscriber(natsURL)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	subject := pktNats.SubjectPrefix + ">"
	if eventType != "" {
		subject = pktNats.Subject(eventType)
	}

	out := cmd.OutOrStdout()
	stopConsume, err := sub.Subscribe(ctx, subject, "", func(_ context.Context, event events.Event) error {
		printEvent(out, event)
		return nil
	})
	if err != nil {
		return err
	}
	defer stopConsume()

	fmt.Fprintf(out, "Watching %s... (Ctrl+C to stop)\n", subject)
	<-ctx.Done()
	return nil
}

func printEvent(out io.Writer, event events.Event) {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		data = []byte(fmt.Sprint(event.Payload()))
	}
	dimColor.Fprintf(out, "%s ", event.Timestamp().Local().Format("15:04:05.000"))
	coachColor.Fprintf(out, "%-24s ", event.EventType())
	fmt.Fprintln(out, string(data))
}
