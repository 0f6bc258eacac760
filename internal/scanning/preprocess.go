package scanning

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

const (
	white = 255
	black = 0
)

// Preprocessor prepares receipt photos for OCR: grayscale, adaptive
// threshold, speckle removal and deskew.
type Preprocessor struct {
	// BlockSize is the odd side length of the thresholding neighbourhood
	BlockSize int
	// C is subtracted from the local weighted mean
	C float64
	// OpenKernel is the side length of the square opening kernel; 1 disables it
	OpenKernel int
	// MinSkew is the smallest angle, in degrees, worth rotating for
	MinSkew float64
}

// NewPreprocessor returns a Preprocessor with the default settings
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		BlockSize:  11,
		C:          2,
		OpenKernel: 3,
		MinSkew:    0.5,
	}
}

// Process decodes the upload and prepares it for OCR
func (p *Preprocessor) Process(data []byte, contentType string) (*image.Gray, error) {
	img, err := decodeImage(data, contentType)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decoding image: empty image")
	}
	return p.Prepare(img), nil
}

// Prepare runs the preprocessing steps on a decoded image
func (p *Preprocessor) Prepare(img image.Image) *image.Gray {
	gray := grayscale(img)
	bin := adaptiveThreshold(gray, p.BlockSize, p.C)
	bin = open(bin, p.OpenKernel)

	if angle, ok := estimateSkew(bin); ok && math.Abs(angle) > p.MinSkew {
		bin = rotate(bin, angle)
	}
	return bin
}

// grayscale converts any image into an 8-bit gray image anchored at the origin
func grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// gaussianKernel builds a normalised 1-D kernel with the sigma OpenCV derives
// from the block size.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*((float64(size)-1)*0.5-1) + 0.8
	k := make([]float64, size)
	half := size / 2
	var sum float64
	for i := range k {
		x := float64(i - half)
		k[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// adaptiveThreshold binarises gray: a pixel becomes white when it is brighter
// than the Gaussian-weighted mean of its block minus c. Borders replicate.
func adaptiveThreshold(gray *image.Gray, blockSize int, c float64) *image.Gray {
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	kernel := gaussianKernel(blockSize)
	half := blockSize / 2

	horiz := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for x := 0; x < w; x++ {
			var acc float64
			for i, kv := range kernel {
				acc += kv * float64(row[clamp(x+i-half, 0, w-1)])
			}
			horiz[y*w+x] = acc
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var mean float64
			for i, kv := range kernel {
				mean += kv * horiz[clamp(y+i-half, 0, h-1)*w+x]
			}
			v := black
			if float64(gray.Pix[y*gray.Stride+x]) > mean-c {
				v = white
			}
			out.Pix[y*out.Stride+x] = uint8(v)
		}
	}
	return out
}

// open applies a morphological opening to the white layer: erosion followed
// by dilation with a size x size square.
func open(bin *image.Gray, size int) *image.Gray {
	if size <= 1 {
		return bin
	}
	return morph(morph(bin, size, minOf), size, maxOf)
}

func minOf(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

func maxOf(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

// morph applies a separable square rank filter; pixels outside the image are
// ignored.
func morph(src *image.Gray, size int, pick func(a, b uint8) uint8) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	r := size / 2

	tmp := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := src.Pix[y*src.Stride+x]
			for dx := -r; dx < size-r; dx++ {
				if nx := x + dx; nx >= 0 && nx < w {
					v = pick(v, src.Pix[y*src.Stride+nx])
				}
			}
			tmp.Pix[y*tmp.Stride+x] = v
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := tmp.Pix[y*tmp.Stride+x]
			for dy := -r; dy < size-r; dy++ {
				if ny := y + dy; ny >= 0 && ny < h {
					v = pick(v, tmp.Pix[ny*tmp.Stride+x])
				}
			}
			out.Pix[y*out.Stride+x] = v
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
