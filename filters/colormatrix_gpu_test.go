package filters

import (
	"image"
	"image/png"
	"math/rand"
	"os"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/soypat/boothpix/colormatrix"
)

// GenerateRandomSquaresRGBA creates an RGBA image with random colored squares on a black background.
func GenerateRandomSquaresRGBA(rng *rand.Rand, width, height, numSquares, minSize, maxSize int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Fill with black (alpha=255)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}

	for i := 0; i < numSquares; i++ {
		size := minSize + rng.Intn(maxSize-minSize+1)
		x := rng.Intn(width)
		y := rng.Intn(height)

		// Random color and translucency so alpha handling is exercised.
		r := uint8(64 + rng.Intn(192))
		g := uint8(64 + rng.Intn(192))
		b := uint8(64 + rng.Intn(192))
		a := uint8(128 + rng.Intn(128))

		fillRectRGBA(img, x, y, size, size, r, g, b, a)
	}

	return img
}

func fillRectRGBA(img *image.RGBA, x, y, w, h int, r, g, b, a uint8) {
	bounds := img.Bounds()
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				idx := py*img.Stride + px*4
				img.Pix[idx] = r
				img.Pix[idx+1] = g
				img.Pix[idx+2] = b
				img.Pix[idx+3] = a
			}
		}
	}
}

func saveRGBAAsPNG(img *image.RGBA, path string) error {
	if err := os.MkdirAll("testdata", 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func cloneRGBA(img *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(img.Bounds())
	copy(dst.Pix, img.Pix)
	return dst
}

// initGPU initializes WebGPU device and queue for testing.
func initGPU(t *testing.T) (*wgpu.Device, *wgpu.Queue, bool) {
	t.Helper()

	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		t.Skip("WebGPU not available")
		return nil, nil, false
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceLowPower,
	})
	if err != nil {
		t.Skipf("No GPU adapter: %v", err)
		return nil, nil, false
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		t.Skipf("No GPU device: %v", err)
		return nil, nil, false
	}

	queue := device.GetQueue()
	return device, queue, true
}

func TestColorMatrixGPUGrayscale(t *testing.T) {
	device, queue, ok := initGPU(t)
	if !ok {
		return
	}

	rng := rand.New(rand.NewSource(42))
	const width, height = 256, 256
	srcImg := GenerateRandomSquaresRGBA(rng, width, height, 20, 10, 50)

	filter, err := NewColorMatrixGPU(device, queue, "grayscale(100%)")
	if err != nil {
		t.Fatalf("NewColorMatrixGPU: %v", err)
	}
	defer filter.Cleanup()

	result, err := filter.Process(srcImg)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if err := saveRGBAAsPNG(result, "testdata/grayscale_gpu_output.png"); err != nil {
		t.Logf("failed to save output: %v", err)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*result.Stride + x*4
			r, g, b := result.Pix[idx], result.Pix[idx+1], result.Pix[idx+2]
			if r != g || g != b {
				t.Fatalf("pixel (%d,%d) not grayscale: R=%d G=%d B=%d", x, y, r, g, b)
			}
			if result.Pix[idx+3] != srcImg.Pix[idx+3] {
				t.Fatalf("pixel (%d,%d) alpha changed", x, y)
			}
		}
	}
}

func TestColorMatrixGPUMatchesCPU(t *testing.T) {
	device, queue, ok := initGPU(t)
	if !ok {
		return
	}

	rng := rand.New(rand.NewSource(123))
	const width, height = 128, 96
	srcImg := GenerateRandomSquaresRGBA(rng, width, height, 15, 10, 30)

	filter, err := NewColorMatrixGPU(device, queue, "none")
	if err != nil {
		t.Fatalf("NewColorMatrixGPU: %v", err)
	}
	defer filter.Cleanup()

	for _, info := range colormatrix.Presets() {
		filter.SetDescription(info.Description)
		got, err := filter.ProcessImage(srcImg)
		if err != nil {
			t.Fatalf("Process(%s): %v", info.ID, err)
		}
		want := cloneRGBA(srcImg)
		if err := colormatrix.ApplyImage(want, info.Description); err != nil {
			t.Fatal(err)
		}
		for i := range want.Pix {
			d := int(got.Pix[i]) - int(want.Pix[i])
			if d < -1 || d > 1 {
				t.Fatalf("%s: byte %d: gpu %d, cpu %d", info.ID, i, got.Pix[i], want.Pix[i])
			}
		}
		if err := saveRGBAAsPNG(got, "testdata/preset_gpu_"+info.ID+".png"); err != nil {
			t.Logf("failed to save %s: %v", info.ID, err)
		}
	}
}

func TestColorMatrixGPUSubImage(t *testing.T) {
	device, queue, ok := initGPU(t)
	if !ok {
		return
	}

	rng := rand.New(rand.NewSource(777))
	full := GenerateRandomSquaresRGBA(rng, 64, 64, 10, 8, 20)
	sub := full.SubImage(image.Rect(8, 8, 40, 24)).(*image.RGBA)

	filter, err := NewColorMatrixGPU(device, queue, "sepia(100%)")
	if err != nil {
		t.Fatalf("NewColorMatrixGPU: %v", err)
	}
	defer filter.Cleanup()

	got, err := filter.Process(sub)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got.Bounds().Dx() != 32 || got.Bounds().Dy() != 16 {
		t.Fatalf("unexpected output bounds %v", got.Bounds())
	}
	m := colormatrix.Sepia(1)
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			s := sub.PixOffset(sub.Rect.Min.X+x, sub.Rect.Min.Y+y)
			d := got.PixOffset(x, y)
			r, g, b := m.Transform(sub.Pix[s], sub.Pix[s+1], sub.Pix[s+2])
			for c, want := range []uint8{r, g, b, sub.Pix[s+3]} {
				diff := int(got.Pix[d+c]) - int(want)
				if diff < -1 || diff > 1 {
					t.Fatalf("pixel (%d,%d) channel %d: got %d, want %d", x, y, c, got.Pix[d+c], want)
				}
			}
		}
	}
}
