package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/festy23/jira_digest/internal/digest/handler"
)

func newPreviewCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "preview [PROJECT_KEY...]",
		Short: "Build the digest and print it without delivering",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case handler.FormatText, handler.FormatHTML, handler.FormatChat, handler.FormatJSON:
			default:
				return fmt.Errorf("unknown format %q (must be: text, html, chat, json)", format)
			}

			src, err := a.openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = src.close() }()

			digest, bundle, err := a.newRunner(src, nil).Generate(cmd.Context(), projectKeys(args))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case handler.FormatHTML:
				_, err = fmt.Fprintln(out, bundle.HTML)
			case handler.FormatChat:
				err = writeJSON(out, bundle.Chat)
			case handler.FormatJSON:
				err = writeJSON(out, digest)
			default:
				_, err = fmt.Fprint(out, bundle.Text)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", handler.FormatText, "Output format (text|html|chat|json)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
