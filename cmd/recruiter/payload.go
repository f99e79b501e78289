package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"whatsapp-recruiting-funnel/internal/domain"
	httpserver "whatsapp-recruiting-funnel/internal/infra/http"
	"whatsapp-recruiting-funnel/internal/payload"
)

func payloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Inspect chat payloads",
	}
	var speed float64
	validate := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Validate a payload JSON document and print its derived properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return validatePayload(cmd.OutOrStdout(), raw, speed)
		},
	}
	validate.Flags().Float64Var(&speed, "typing-speed", payload.DefaultTypingSpeed, "characters per second for the typing delay")
	cmd.AddCommand(validate)
	return cmd
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

var errInvalidPayload = errors.New("payload is invalid")

func validatePayload(out io.Writer, raw []byte, speed float64) error {
	report, err := httpserver.Inspect(payload.NewDefaultRegistry(), raw, speed)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidPayload) {
			return err
		}
		for _, is := range payload.Issues(err) {
			fmt.Fprintf(out, "%s: %s\n", is.Field, is.Reason)
		}
		return errInvalidPayload
	}
	return enc.Encode(report)
}
