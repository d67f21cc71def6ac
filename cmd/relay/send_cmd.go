package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhissng/relay/adapters/gin/handler"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/structures/acknowledgment"
	"github.com/abhissng/relay/utils/structures/service"
	"github.com/spf13/cobra"
)

// ErrNoReply is returned by send when the call ended without a reply.
var ErrNoReply = errors.New("no reply")

func parsePayload(raw string) (map[string]any, error) {
	payload := map[string]any{}
	if raw == "" {
		return payload, nil
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("--payload must be a JSON object: %w", err)
	}
	return payload, nil
}

func newSendCommand(baseLogger *log.Log, flags *rootFlags) *cobra.Command {
	var (
		payload     string
		workerDelay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send <service>",
		Short: "Send one request and print the reply",
		Long:  "Send publishes the payload to the service's task queue and waits for the matching reply. It exits non-zero when no reply arrived in time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			kind, b := service.ParseKind(args[0])
			if b != nil {
				return b
			}
			body, err := parsePayload(payload)
			if err != nil {
				return err
			}
			rt, err := newRuntime(baseLogger, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			dialer, err := rt.dialer()
			if err != nil {
				return err
			}
			if err := rt.startLocalWorkers(cmd.Context(), dialer, workerDelay); err != nil {
				return err
			}

			outcome, b := rt.gateway(dialer).Send(cmd.Context(), kind, body)
			if b != nil {
				return b
			}
			if err := writeJSON(cmd, handler.NewComposeResponse(kind, outcome)); err != nil {
				return err
			}
			if !outcome.Delivered() {
				return fmt.Errorf("%w: %s", ErrNoReply, outcome.Status())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&payload, "payload", "p", "", "request payload as a JSON object")
	cmd.Flags().DurationVar(&workerDelay, "worker-delay", 0, "reply delay of the in-process workers (memory backend)")
	return cmd
}

func newSubmitCommand(baseLogger *log.Log, flags *rootFlags) *cobra.Command {
	var payload string
	cmd := &cobra.Command{
		Use:   "submit <service>",
		Short: "Publish one request without waiting for the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			kind, b := service.ParseKind(args[0])
			if b != nil {
				return b
			}
			body, err := parsePayload(payload)
			if err != nil {
				return err
			}
			rt, err := newRuntime(baseLogger, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			dialer, err := rt.dialer()
			if err != nil {
				return err
			}
			req, b := rt.gateway(dialer).Submit(cmd.Context(), kind, body)
			if b != nil {
				return b
			}
			return writeJSON(cmd, acknowledgment.ComposeResponse{
				RequestID: req.ID,
				Service:   kind.String(),
				Status:    constant.Accepted,
			})
		},
	}
	cmd.Flags().StringVarP(&payload, "payload", "p", "", "request payload as a JSON object")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
