package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"restmagic-cli/display"
	"restmagic-cli/extract"
	"restmagic-cli/parser"
)

var extractCmd = &cobra.Command{
	Use:   "extract EXPRESSION [FILE]",
	Short: "Extract fragments of a saved response body with JSONPath or XPath",
	Long: `Extract fragments of a response body read from FILE or standard input.

The subtype of the body is guessed from --content-type, then from the body
itself, unless --subtype is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: extractBody,
}

func init() {
	f := extractCmd.Flags()
	f.String("content-type", "", "Content-Type of the body")
	f.StringP("subtype", "t", "", "content subtype: json, xml or html")
	f.StringP("output", "o", display.FormatJSON, "output format: json or yaml")
}

func extractBody(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	contentType, _ := f.GetString("content-type")
	name, _ := f.GetString("subtype")
	format, _ := f.GetString("output")

	subtype, err := extract.ParseSubtype(name)
	if err != nil {
		return err
	}

	r := cmd.InOrStdin()
	if len(args) > 1 && args[1] != "-" {
		file, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer file.Close()
		r = file
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading body")
	}

	res, err := extract.Extract(extract.Content{Type: contentType, Data: body}, parser.StripQuotes(args[0]), subtype)
	if err != nil {
		if errors.Is(err, extract.ErrUnknownSubtype) {
			return errors.Wrap(err, "use --subtype or --content-type")
		}
		return err
	}
	return newDisplay(cmd).Result(res, format)
}
