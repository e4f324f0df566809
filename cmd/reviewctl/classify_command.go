package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gonkalabs/reviewsense/internal/gatewayclient"
	"github.com/gonkalabs/reviewsense/internal/requestid"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var fileFlag string
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "classify [review text...]",
		Short: "Classify a review as positive or negative",
		Long:  "Classify a review as positive or negative. The text is taken from the arguments, --file, or stdin when neither is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readReview(cmd.InOrStdin(), fileFlag, args)
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}

			id := requestid.New()
			label, err := client.Predict(requestid.With(cmd.Context(), id), text)
			msg := gatewayclient.Describe(label, err)

			if jsonFlag {
				if encErr := writeResult(cmd.OutOrStdout(), id, label, msg); encErr != nil {
					return encErr
				}
			} else if err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Sentiment: %s\n", label)
			}
			if err != nil {
				return errors.New(msg.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the review from a file")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the result as JSON")
	return cmd
}

func readReview(stdin io.Reader, path string, args []string) (string, error) {
	switch {
	case path != "" && len(args) > 0:
		return "", errors.New("pass the review as arguments or --file, not both")
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read review: %w", err)
		}
		return string(b), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
}

func writeResult(w io.Writer, id, label string, msg gatewayclient.Message) error {
	out := map[string]string{
		"request_id": id,
		"level":      string(msg.Level),
	}
	if msg.Level == gatewayclient.LevelSuccess {
		out["pred"] = label
	} else {
		out["detail"] = msg.Text
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func newPingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the gateway is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			msg, err := client.Welcome(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
