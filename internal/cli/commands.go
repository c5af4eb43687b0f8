package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/pocket-coach/internal/export"
)

func newAskCommand(opts *options) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.runner.Run(cmd.Context(), strings.Join(args, " "), a.persona)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if plain {
				fmt.Fprintln(out, result.Bot.Body)
				return nil
			}
			fmt.Fprintln(out, a.renderer.Message(result.User))
			fmt.Fprintln(out, a.renderer.Message(result.Bot))
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print only the reply text")
	return cmd
}

func newHistoryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the stored conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			messages, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.renderer.Transcript(messages))
			return nil
		},
	}
}

func newExportCommand(opts *options) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the conversation as JSON, YAML or Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := export.NewExporter(format)
			if err != nil {
				return err
			}

			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			messages, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}

			if output == "" {
				return exporter.Export(export.NewTranscript(messages), cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := exporter.Export(export.NewTranscript(messages), f); err != nil {
				f.Close()
				return fmt.Errorf("failed to export to %s: %w", output, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages to %s\n", len(messages), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "Export format: json, yaml, md")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newClearCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "🧹 Conversation cleared.")
			return nil
		},
	}
}
