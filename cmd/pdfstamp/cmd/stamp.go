package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"pdfstamp/forms"
	"pdfstamp/stamping"
)

type stampOptions struct {
	Catalog     string
	ValuesFile  string
	Assignments []string
	Images      []string
	Output      string
}

type imageOverlay struct {
	WidgetID  string
	PageIndex int
	Data      []byte
}

func DefineStampCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "stamp <form>",
		Short:        "Fill a catalog form with field values",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunStamp,
	}

	cmd.Flags().StringP("catalog", "c", "forms.yaml", "the form catalog file")
	cmd.Flags().StringP("values", "f", "", "YAML file with the field values")
	cmd.Flags().StringArray("set", nil, "set a field value as name=value, overrides --values")
	cmd.Flags().StringArray("image", nil, "place an image over a widget as widget[@page]=path")
	cmd.Flags().StringP("output", "o", "", "the path of the stamped PDF")
	cmd.Flags().Bool("strict", false, "fail when a value maps to no widget")
	cmd.Flags().Bool("lock", false, "make stamped fields read-only")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func RunStamp(cmd *cobra.Command, args []string) error {
	opts := parseStampOptions(cmd)
	logger := newLogger(cmd)

	catalog, err := forms.LoadCatalog(opts.Catalog)
	if err != nil {
		return err
	}
	form, err := catalog.Form(args[0])
	if err != nil {
		return err
	}

	fields, err := readFields(opts)
	if err != nil {
		return err
	}
	images, err := readImages(opts.Images)
	if err != nil {
		return err
	}

	stamperOpts := append(form.Options(), stamping.WithLogger(logger))
	if cmd.Flags().Changed("strict") {
		strict, _ := cmd.Flags().GetBool("strict")
		stamperOpts = append(stamperOpts, stamping.WithStrict(strict))
	}
	if cmd.Flags().Changed("lock") {
		lock, _ := cmd.Flags().GetBool("lock")
		stamperOpts = append(stamperOpts, stamping.WithLock(lock))
	}
	stamper := stamping.New(stamperOpts...)

	template, err := form.Open()
	if err != nil {
		return err
	}

	buffer := bytes.NewBuffer(nil)
	if len(images) == 0 {
		err = stamper.Stamp(template, fields, form.FieldLocators(), buffer)
	} else {
		err = stampWithImages(stamper, template, fields, form.FieldLocators(), images, buffer)
	}
	if err != nil {
		return errors.Wrapf(err, "stamp form %s", form.Name)
	}

	if err := os.WriteFile(opts.Output, buffer.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "write stamped PDF")
	}
	logger.Info("stamped PDF written", "form", form.Name, "output", opts.Output, "bytes", buffer.Len())
	return nil
}

func parseStampOptions(cmd *cobra.Command) stampOptions {
	catalog, _ := cmd.Flags().GetString("catalog")
	valuesFile, _ := cmd.Flags().GetString("values")
	assignments, _ := cmd.Flags().GetStringArray("set")
	images, _ := cmd.Flags().GetStringArray("image")
	output, _ := cmd.Flags().GetString("output")

	return stampOptions{
		Catalog:     catalog,
		ValuesFile:  valuesFile,
		Assignments: assignments,
		Images:      images,
		Output:      output,
	}
}

// readFields returns the values of the values file followed by the
// assignments, so assignments win.
func readFields(opts stampOptions) ([]stamping.Field, error) {
	var fields []stamping.Field
	if opts.ValuesFile != "" {
		f, err := os.Open(filepath.Clean(opts.ValuesFile))
		if err != nil {
			return nil, errors.Wrap(err, "open values file")
		}
		defer f.Close()

		fields, err = forms.LoadValues(f)
		if err != nil {
			return nil, errors.Wrapf(err, "read values file %s", opts.ValuesFile)
		}
	}

	assigned, err := forms.ParseAssignments(opts.Assignments)
	if err != nil {
		return nil, err
	}
	return append(fields, assigned...), nil
}

func readImages(args []string) ([]imageOverlay, error) {
	images := make([]imageOverlay, 0, len(args))
	for _, arg := range args {
		widget, path, ok := strings.Cut(arg, "=")
		if !ok || widget == "" || path == "" {
			return nil, errors.Errorf("invalid image %q, expected widget[@page]=path", arg)
		}
		page := 0
		if i := strings.LastIndex(widget, "@"); i >= 0 {
			n, err := strconv.Atoi(widget[i+1:])
			if err != nil || n < 0 {
				return nil, errors.Errorf("invalid page in image %q", arg)
			}
			widget, page = widget[:i], n
		}
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, errors.Wrapf(err, "read image for %s", widget)
		}
		images = append(images, imageOverlay{WidgetID: widget, PageIndex: page, Data: data})
	}
	return images, nil
}

func stampWithImages(stamper *stamping.Stamper, template io.ReadCloser, fields []stamping.Field, locators []stamping.FieldLocator, images []imageOverlay, out io.Writer) error {
	doc, err := stamper.Load(template)
	template.Close()
	if err != nil {
		return err
	}
	if err := stamper.Apply(doc, fields, locators); err != nil {
		return err
	}
	for _, img := range images {
		if err := doc.AddImageOver(img.WidgetID, img.PageIndex, img.Data); err != nil {
			return errors.Wrapf(err, "place image over %s", img.WidgetID)
		}
	}
	return doc.Write(out)
}
