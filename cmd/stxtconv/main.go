package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	stxtconverter "github.com/axigenmessaging/stxtconverter"
)

// ---------- options ----------

type options struct {
	configPath string
	verbose    bool
	output     string

	config *stxtconverter.Config
}

func (o *options) setup() error {
	config, err := stxtconverter.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	o.config = config

	level := config.SlogLevel()
	if o.verbose {
		level = slog.LevelDebug
	}
	stxtconverter.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// writeOutput writes to the -o file, or to stdout when none is given
func (o *options) writeOutput(content []byte) error {
	if o.output == "" || o.output == "-" {
		w := bufio.NewWriter(os.Stdout)
		if _, err := w.Write(content); err != nil {
			return err
		}
		return w.Flush()
	}
	return os.WriteFile(o.output, content, 0644)
}

// ---------- conversions ----------

func convertRtf(o *options, path, exportType string) ([]byte, error) {
	conv := stxtconverter.NewConverter(o.config)
	if err := conv.LoadFile(path); err != nil {
		return nil, err
	}
	return conv.Convert(exportType)
}

/**
 * loadStyledText reads a styled text container, or converts an RTF file into one
 */
func loadStyledText(o *options, path string) ([]byte, []stxtconverter.StyleRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	text, runs, err := stxtconverter.DecodeStyledText(data)
	if err == nil {
		return text, runs, nil
	}
	if !errors.Is(err, stxtconverter.ErrMalformedContainer) {
		return nil, nil, err
	}

	// not a container, try RTF
	conv := stxtconverter.NewConverter(o.config)
	if err := conv.SetBytes(data); err != nil {
		return nil, nil, err
	}
	container, err := conv.Convert("stxt")
	if err != nil {
		return nil, nil, err
	}
	return stxtconverter.DecodeStyledText(container)
}

// ---------- cobra CLI ----------

func newRootCommand() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "stxtconv",
		Short:         "Convert between RTF and styled text",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup()
		},
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", "", "JSON configuration file")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "log debug messages to stderr")

	stxtCmd := &cobra.Command{
		Use:   "stxt <file.rtf>",
		Short: "Convert RTF to a styled text container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := convertRtf(o, args[0], "stxt")
			if err != nil {
				return err
			}
			return o.writeOutput(content)
		},
	}

	textCmd := &cobra.Command{
		Use:   "text <file.rtf>",
		Short: "Convert RTF to plain UTF-8 text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := convertRtf(o, args[0], "text")
			if err != nil {
				return err
			}
			return o.writeOutput(content)
		},
	}

	rtfCmd := &cobra.Command{
		Use:   "rtf <file.stxt>",
		Short: "Convert a styled text container to RTF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			// the fixed font of the configured catalog is marked in the font table
			content, err := stxtconverter.NewConverter(o.config).ConvertStyled(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return o.writeOutput(content)
		},
	}

	fromTextCmd := &cobra.Command{
		Use:   "from-text [file.txt]",
		Short: "Wrap plain text in an RTF document (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			content := &bytes.Buffer{}
			if err := stxtconverter.ConvertPlainTextToRtf(r, content); err != nil {
				return err
			}
			return o.writeOutput(content.Bytes())
		},
	}

	viewCmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Show an RTF file or a styled text container in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return errors.New("stdout is not a TTY (refusing to start the viewer)")
			}

			text, runs, err := loadStyledText(o, args[0])
			if err != nil {
				return err
			}
			return runViewer(text, runs)
		},
	}

	for _, cmd := range []*cobra.Command{stxtCmd, textCmd, rtfCmd, fromTextCmd} {
		cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
	}

	root.AddCommand(stxtCmd, textCmd, rtfCmd, fromTextCmd, viewCmd)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
