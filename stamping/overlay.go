package stamping

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LabelFields writes "#<object> <name>" over every placed field. Labelled
// copies of a template show which identifiers locators have to use.
func (d *Document) LabelFields() error {
	for _, f := range d.fields {
		if f.Rect == nil || f.PageIndex < 0 {
			continue
		}
		label := fmt.Sprintf("#%d %s", f.ObjectNr, f.Name)
		if err := d.AddText(f.PageIndex, label, int(f.Rect.LL.X), int(f.Rect.LL.Y)); err != nil {
			return errors.Wrapf(err, "label %s failed", f.FullName)
		}
	}
	return nil
}

// AddImageOver places an image over the rectangle of the widget id,
// scaled to fit, e.g. a signature over its signature field.
func (d *Document) AddImageOver(id string, pageIndex int, img []byte) error {
	f, err := d.Lookup(id, pageIndex)
	if err != nil {
		return err
	}
	if f.Rect == nil || f.PageIndex < 0 {
		return errors.Errorf("widget %q is not placed on a page", id)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return errors.Wrap(err, "Decode image failed")
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return errors.Errorf("image for %q is empty", id)
	}
	scale := math.Min(f.Rect.Width()/float64(cfg.Width), f.Rect.Height()/float64(cfg.Height))

	return d.AddImage(f.PageIndex, img, int(f.Rect.LL.X), int(f.Rect.LL.Y), scale)
}

// AddImage adds an image at x, y (points from the bottom left corner) of
// the page with index pageIndex.
func (d *Document) AddImage(pageIndex int, img []byte, x, y int, scale float64) error {
	pages, err := d.pageSet(pageIndex)
	if err != nil {
		return err
	}

	description := fmt.Sprintf("pos:bl, rot: 0, scalefactor: %.4f abs, off: %d %d", scale, x, y)
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(img), description, true, false, types.POINTS)
	if err != nil {
		return errors.Wrap(err, "Build ImageWatermark failed")
	}

	if err = pdfcpu.AddWatermarks(d.ctx, pages, wm); err != nil {
		return errors.Wrap(err, "Add ImageWatermark failed")
	}
	return nil
}

// AddText adds red text at x, y (points from the bottom left corner) of
// the page with index pageIndex.
func (d *Document) AddText(pageIndex int, text string, x, y int) error {
	pages, err := d.pageSet(pageIndex)
	if err != nil {
		return err
	}

	description := fmt.Sprintf("points:12, strokec:#E00000, fillc:#E00000, scalefactor: 1 abs, pos:bl, rot:0, off: %d %d", x, y)
	d.logger.Debug("add text watermark", "page", pageIndex, "description", description)
	wm, err := api.TextWatermark(text, description, true, false, types.POINTS)
	if err != nil {
		return errors.Wrap(err, "Build TextWatermark failed")
	}

	if err = pdfcpu.AddWatermarks(d.ctx, pages, wm); err != nil {
		return errors.Wrap(err, "Add TextWatermark failed")
	}
	return nil
}

func (d *Document) pageSet(pageIndex int) (types.IntSet, error) {
	if pageIndex < 0 || pageIndex >= d.ctx.PageCount {
		return nil, errors.Errorf("page index %d out of range [0, %d)", pageIndex, d.ctx.PageCount)
	}
	// pdfcpu numbers pages from 1
	return types.IntSet{pageIndex + 1: true}, nil
}
