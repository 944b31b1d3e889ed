package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/soypat/boothpix"
	"github.com/soypat/boothpix/colormatrix"
	"github.com/soypat/boothpix/filters"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "apply":
		if err := runApply(os.Args[2:]); err != nil {
			fail(err)
		}
	case "presets":
		runPresets()
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: boothfilter <command> [args]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  apply   -in photo.jpg -out out.png [-preset ID | -filter DESC] [-max 1200] [-q 92] [-gpu] [-v]")
	fmt.Fprintln(os.Stderr, "  presets")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func runPresets() {
	for _, info := range colormatrix.Presets() {
		fmt.Printf("%-13s %-13s %s\n", info.ID, info.Name, info.Description)
	}
}

func runApply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image (png, jpeg, gif, webp)")
	outPath := fs.String("out", "", "output image (.png, .jpg, .jpeg)")
	presetID := fs.String("preset", "", "preset ID, see the presets command")
	desc := fs.String("filter", "", "filter chain description, e.g. \"sepia(40%) contrast(105%)\"")
	maxDim := fs.Uint("max", 0, "downscale so neither side exceeds this many pixels (0 keeps size)")
	quality := fs.Int("q", 92, "JPEG quality")
	useGPU := fs.Bool("gpu", false, "apply the filter with WebGPU compute")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return errors.New("missing -in or -out")
	}
	if *presetID != "" && *desc != "" {
		return errors.New("-preset and -filter are mutually exclusive")
	}
	encode, err := encoderFor(*outPath, *quality)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	boothpix.SetLogger(logger)

	chain := *desc
	if *presetID != "" {
		p, ok := colormatrix.LookupPreset(*presetID)
		if !ok {
			return fmt.Errorf("unknown preset %q", *presetID)
		}
		chain = p.Description()
	}
	for _, op := range colormatrix.Parse(chain) {
		if !op.Applied() {
			logger.Warn("operation not applied to exported image", "op", op.String())
		}
	}

	img, err := loadRGBA(*inPath, *maxDim)
	if err != nil {
		return err
	}
	logger.Debug("decoded input", "path", *inPath, "bounds", img.Bounds())

	if *useGPU {
		img, err = applyGPU(img, chain)
	} else {
		err = colormatrix.ApplyImage(img, chain)
	}
	if err != nil {
		return err
	}
	logger.Info("filtered", "filter", colormatrix.Parse(chain).String(), "out", *outPath)
	return saveImage(*outPath, img, encode)
}

func loadRGBA(path string, maxDim uint) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	boothpix.Logger().Debug("input format", "format", format)
	if maxDim > 0 {
		b := src.Bounds()
		if uint(b.Dx()) > maxDim || uint(b.Dy()) > maxDim {
			src = resize.Thumbnail(maxDim, maxDim, src, resize.Lanczos3)
		}
	}
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba, nil
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return rgba, nil
}

func applyGPU(img *image.RGBA, chain string) (*image.RGBA, error) {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, errors.New("webgpu not available")
	}
	defer instance.Release()
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu adapter: %w", err)
	}
	defer adapter.Release()
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu device: %w", err)
	}
	defer device.Release()

	f, err := filters.NewColorMatrixGPU(device, device.GetQueue(), chain)
	if err != nil {
		return nil, err
	}
	defer f.Cleanup()
	out, err := f.ProcessImage(img)
	if err != nil {
		return nil, err
	}
	if out == img {
		return img, nil
	}
	// The filter owns its output image; copy before Cleanup releases the filter.
	result := image.NewRGBA(out.Bounds())
	copy(result.Pix, out.Pix)
	return result, nil
}

// encoderFor returns the image encoder matching the extension of path.
func encoderFor(path string, quality int) (func(io.Writer, image.Image) error, error) {
	switch ext := filepath.Ext(path); strings.ToLower(ext) {
	case ".png":
		return png.Encode, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
		}, nil
	default:
		return nil, fmt.Errorf("unsupported output extension %q", ext)
	}
}

func saveImage(path string, img image.Image, encode func(io.Writer, image.Image) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = encode(f, img)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
