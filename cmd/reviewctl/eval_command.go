package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gonkalabs/reviewsense/internal/evaluate"
)

func newEvalCommand(ctx *commandContext) *cobra.Command {
	var fileFlag string
	var outFlag string

	cmd := &cobra.Command{
		Use:   "eval --file labeled.jsonl",
		Short: "Score the gateway against a labeled review set",
		Long: "Classify every review of a JSON Lines file ({\"text\": ..., \"label\": \"positive\"|\"negative\"|1|0}) " +
			"and report precision, recall, F1 and accuracy. Rejected and failed reviews are counted but not scored.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileFlag == "" {
				return errors.New("--file is required")
			}
			f, err := os.Open(fileFlag)
			if err != nil {
				return fmt.Errorf("open labeled set: %w", err)
			}
			examples, err := evaluate.ReadJSONL(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("read %s: %w", fileFlag, err)
			}
			if len(examples) == 0 {
				return fmt.Errorf("%s has no labeled reviews", fileFlag)
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			rep, err := evaluate.Run(cmd.Context(), client, examples)
			if err != nil {
				return err
			}
			evaluate.Print(cmd.OutOrStdout(), rep)

			if outFlag != "" {
				b, err := json.MarshalIndent(rep, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(outFlag, append(b, '\n'), 0o644); err != nil {
					return fmt.Errorf("save metrics: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", outFlag)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Labeled reviews in JSON Lines format")
	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write the metrics to this JSON file")
	return cmd
}
