package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"pdfstamp/stamping"
)

func DefineFieldsCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "fields <template.pdf>",
		Short:        "List the form fields of a PDF",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunFields,
	}
}

func RunFields(cmd *cobra.Command, args []string) error {
	f, err := os.Open(filepath.Clean(args[0]))
	if err != nil {
		return errors.Wrap(err, "open PDF")
	}
	defer f.Close()

	infos, err := stamping.ReadFields(f, stamping.WithLogger(newLogger(cmd)))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PAGE\tOBJECT\tTYPE\tNAME\tVALUE\tFLAGS")
	for _, info := range infos {
		value := info.Value
		if info.Type == "Btn" {
			value = info.State
		}
		flags := ""
		if info.ReadOnly {
			flags = "ro"
		}
		fmt.Fprintf(w, "%d\t#%d\t%s\t%s\t%s\t%s\n", info.PageIndex, info.ObjectNr, info.Type, info.FullName, value, flags)
	}
	return w.Flush()
}
