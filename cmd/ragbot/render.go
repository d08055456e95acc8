package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/riverfjs/tghtml"
)

var (
	renderLimit       int
	renderFenceRepair bool
	renderMarkdown    bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render markdown to Telegram HTML messages",
	Long: `render reads markdown from a file (or stdin when omitted or "-") and prints
the Telegram HTML messages it would be sent as.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntVarP(&renderLimit, "limit", "l", tghtml.DefaultLimit, "Rendered length limit per message")
	renderCmd.Flags().BoolVar(&renderFenceRepair, "fence-repair", false, "Close and reopen code fences across split fragments")
	renderCmd.Flags().BoolVar(&renderMarkdown, "markdown", false, "Print the markdown fragments instead of HTML")
}

func runRender(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	out := cmd.OutOrStdout()
	msgs := tghtml.Prepare(string(data),
		tghtml.WithLimit(renderLimit),
		tghtml.WithFenceRepair(renderFenceRepair),
	)
	for _, m := range msgs {
		tr := m.GetContentTrace()
		mark := ""
		if tr.Oversized {
			mark = " oversized"
		}
		fmt.Fprintf(out, "----- %d/%d (%d)%s -----\n", tr.Index+1, tr.Total, tr.RenderedLen, mark)
		if renderMarkdown {
			fmt.Fprintln(out, m.Markdown)
		} else {
			fmt.Fprintln(out, m.HTML)
		}
	}
	return nil
}
