package scanning

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/image/bmp"
)

// tiltedBar draws a black bar on white, its long axis tilted by angle degrees
// (clockwise on screen).
func tiltedBar(w, h int, angle, halfLen, halfWidth float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			u := dx*cos + dy*sin
			v := -dx*sin + dy*cos
			if math.Abs(u) < halfLen && math.Abs(v) < halfWidth {
				img.SetGray(x, y, color.Gray{Y: black})
			} else {
				img.SetGray(x, y, color.Gray{Y: white})
			}
		}
	}
	return img
}

func filled(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

var _ = Describe("Preprocessor", func() {
	var p *Preprocessor

	BeforeEach(func() {
		p = NewPreprocessor()
	})

	Describe("grayscale", func() {
		It("should anchor the result at the origin", func() {
			src := image.NewRGBA(image.Rect(10, 10, 20, 30))
			for y := 10; y < 30; y++ {
				for x := 10; x < 20; x++ {
					src.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
				}
			}

			gray := grayscale(src)
			Expect(gray.Bounds()).To(Equal(image.Rect(0, 0, 10, 20)))
			Expect(gray.GrayAt(0, 0).Y).To(Equal(uint8(255)))
		})
	})

	Describe("adaptiveThreshold", func() {
		It("should keep a thin dark line and whiten the background", func() {
			img := filled(40, 40, 230)
			for x := 0; x < 40; x++ {
				img.SetGray(x, 20, color.Gray{Y: 20})
				img.SetGray(x, 21, color.Gray{Y: 20})
			}

			bin := adaptiveThreshold(img, 11, 2)
			Expect(bin.GrayAt(10, 20).Y).To(Equal(uint8(black)))
			Expect(bin.GrayAt(10, 5).Y).To(Equal(uint8(white)))
		})

		It("should whiten flat regions", func() {
			bin := adaptiveThreshold(filled(20, 20, 128), 11, 2)
			for _, v := range bin.Pix {
				Expect(v).To(Equal(uint8(white)))
			}
		})
	})

	Describe("open", func() {
		It("should remove isolated white specks", func() {
			img := filled(15, 15, black)
			img.SetGray(7, 7, color.Gray{Y: white})

			Expect(open(img, 3).GrayAt(7, 7).Y).To(Equal(uint8(black)))
		})

		It("should keep white areas larger than the kernel", func() {
			img := filled(15, 15, black)
			for y := 5; y < 10; y++ {
				for x := 5; x < 10; x++ {
					img.SetGray(x, y, color.Gray{Y: white})
				}
			}

			out := open(img, 3)
			Expect(out.GrayAt(7, 7).Y).To(Equal(uint8(white)))
			Expect(out.GrayAt(5, 5).Y).To(Equal(uint8(white)))
		})

		It("should leave the image alone with a 1x1 kernel", func() {
			img := filled(5, 5, black)
			Expect(open(img, 1)).To(BeIdenticalTo(img))
		})
	})

	Describe("estimateSkew", func() {
		It("should measure a clockwise tilt", func() {
			angle, ok := estimateSkew(tiltedBar(400, 300, 5, 150, 20))
			Expect(ok).To(BeTrue())
			Expect(angle).To(BeNumerically("~", 5, 0.75))
		})

		It("should measure a counter-clockwise tilt", func() {
			angle, ok := estimateSkew(tiltedBar(400, 300, -8, 150, 20))
			Expect(ok).To(BeTrue())
			Expect(angle).To(BeNumerically("~", -8, 0.75))
		})

		It("should report a level block as level", func() {
			angle, ok := estimateSkew(tiltedBar(400, 300, 0, 150, 20))
			Expect(ok).To(BeTrue())
			Expect(angle).To(BeNumerically("~", 0, 0.01))
		})

		It("should give up on a blank page", func() {
			_, ok := estimateSkew(filled(50, 50, white))
			Expect(ok).To(BeFalse())
		})
	})

	Describe("rotate", func() {
		It("should level a tilted block", func() {
			level := rotate(tiltedBar(400, 300, 5, 150, 20), 5)

			angle, ok := estimateSkew(level)
			Expect(ok).To(BeTrue())
			Expect(angle).To(BeNumerically("~", 0, 0.75))
		})

		It("should keep uncovered corners white", func() {
			level := rotate(tiltedBar(400, 300, 10, 100, 10), 10)
			Expect(level.GrayAt(0, 0).Y).To(Equal(uint8(white)))
			Expect(level.GrayAt(399, 299).Y).To(Equal(uint8(white)))
		})
	})

	Describe("Prepare", func() {
		It("should deskew a tilted receipt", func() {
			out := p.Prepare(tiltedBar(400, 300, 6, 150, 30))
			Expect(out.Bounds()).To(Equal(image.Rect(0, 0, 400, 300)))

			angle, ok := estimateSkew(out)
			Expect(ok).To(BeTrue())
			Expect(math.Abs(angle)).To(BeNumerically("<", 1))
		})

		It("should produce a binary image", func() {
			out := p.Prepare(tiltedBar(100, 80, 0, 30, 5))
			for _, v := range out.Pix {
				Expect(v).To(Or(Equal(uint8(black)), Equal(uint8(white))))
			}
		})

		It("should be deterministic", func() {
			src := tiltedBar(200, 150, 3, 70, 15)
			Expect(p.Prepare(src).Pix).To(Equal(p.Prepare(src).Pix))
		})
	})

	Describe("Process", func() {
		It("should decode PNG uploads", func() {
			var buf bytes.Buffer
			Expect(png.Encode(&buf, tiltedBar(100, 80, 0, 30, 5))).To(Succeed())

			out, err := p.Process(buf.Bytes(), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Bounds().Dx()).To(Equal(100))
		})

		It("should decode BMP uploads", func() {
			var buf bytes.Buffer
			Expect(bmp.Encode(&buf, tiltedBar(60, 40, 0, 20, 4))).To(Succeed())

			out, err := p.Process(buf.Bytes(), "image/bmp")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Bounds().Dy()).To(Equal(40))
		})

		It("should reject malformed data", func() {
			_, err := p.Process([]byte("not an image"), "image/jpeg")
			Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
		})
	})
})

var _ = Describe("isHEICFormat", func() {
	It("should recognise the ftyp brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(isHEICFormat(data)).To(BeTrue())
	})

	It("should reject other data", func() {
		Expect(isHEICFormat([]byte("\x89PNG\r\n\x1a\n0000"))).To(BeFalse())
	})
})
