package render

import (
	"context"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"health-scatter/internal/transition"
)

// Animate renders frames+1 steps of tw and encodes them as a looping GIF.
// delay is the time between frames; the last frame is held for a second.
func (r *Raster) Animate(ctx context.Context, w io.Writer, tw *transition.Tween, frames int, delay time.Duration) error {
	views := tw.Frames(frames)
	images := make([]*image.Paletted, len(views))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, v := range views {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := r.Draw(v)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			images[i] = toPaletted(img)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	centis := int(delay / (10 * time.Millisecond))
	if centis < 1 {
		centis = 1
	}
	delays := make([]int, len(images))
	for i := range delays {
		delays[i] = centis
	}
	delays[len(delays)-1] = 100

	if err := gif.EncodeAll(w, &gif.GIF{Image: images, Delay: delays}); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return nil
}

func toPaletted(img image.Image) *image.Paletted {
	p := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.Draw(p, img.Bounds(), img, image.Point{}, draw.Over)
	return p
}
