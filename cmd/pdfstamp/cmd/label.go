package cmd

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"pdfstamp/stamping"
)

func DefineLabelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "label <template.pdf>",
		Short:        "Write a copy of a template with every field labelled by its identifiers",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunLabel,
	}

	cmd.Flags().StringP("output", "o", "", "the path of the labelled PDF")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func RunLabel(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	f, err := os.Open(filepath.Clean(args[0]))
	if err != nil {
		return errors.Wrap(err, "open template")
	}
	defer f.Close()

	doc, err := stamping.Load(f, stamping.WithLogger(newLogger(cmd)))
	if err != nil {
		return err
	}
	if err := doc.LabelFields(); err != nil {
		return err
	}

	buffer := bytes.NewBuffer(nil)
	if err := doc.Write(buffer); err != nil {
		return errors.Wrap(err, "write labelled PDF")
	}
	return os.WriteFile(output, buffer.Bytes(), 0644)
}
