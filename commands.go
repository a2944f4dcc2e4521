package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cloudguide/backend"
	"cloudguide/config"
	"cloudguide/model"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask one question and print the answer",
		Long: `Sends a single question through the same pipeline as the chat interface
and prints the answer followed by its source, when known.

Example:
  cloudguide ask --rag "How much does a t3.micro cost per month?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, args)
		},
	}
}

func runAsk(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	client, err := backend.NewClient(cfg.APIBase, cfg.RequestTimeout)
	if err != nil {
		return err
	}

	m := model.NewModel(cfg, client, Version)

	askCmd, err := m.Controller.Submit(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if askCmd == nil {
		return fmt.Errorf("question cannot be empty")
	}

	msg := askCmd()
	m.Controller.HandleReply(msg)

	answer, ok := m.Conversation.LastAssistant()
	if !ok {
		return fmt.Errorf("no answer recorded")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Text)
	if answer.Source != "" {
		fmt.Fprintln(out, "Source: "+answer.Source)
	}

	if _, failed := msg.(model.ReplyErrorMsg); failed {
		return errReported
	}
	return nil
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			client, err := backend.NewClient(cfg.APIBase, cfg.RequestTimeout)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			if err := client.Ping(ctx); err != nil {
				return fmt.Errorf("backend at %s is offline: %w", client.BaseURL(), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", client.BaseURL())
			return nil
		},
	}
}

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var docID, path string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Queue a document for indexing by the backend",
		Long: `Asks the backend to index a document so RAG questions can draw on it.
The path is read by the backend, so it must be visible to the backend host.
A leading ~/ is expanded locally.

Example:
  cloudguide ingest --doc-id ec2-pricing --path ~/docs/ec2-pricing.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			client, err := backend.NewClient(cfg.APIBase, cfg.RequestTimeout)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			ack, err := client.Ingest(ctx, docID, path)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", docID, err)
			}

			config.DebugLog.Debugf("Ingest %s (%s) acknowledged: %s", docID, path, ack)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", docID, ack)
			return nil
		},
	}

	cmd.Flags().StringVar(&docID, "doc-id", "", "document identifier")
	cmd.Flags().StringVar(&path, "path", "", "document path on the backend host")
	_ = cmd.MarkFlagRequired("doc-id")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
