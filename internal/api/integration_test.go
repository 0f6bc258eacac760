package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/shopspring/decimal"
	"go.etcd.io/bbolt"

	"github.com/zombor/fintrack-api/internal/accessibility"
	"github.com/zombor/fintrack-api/internal/api"
	"github.com/zombor/fintrack-api/internal/receipt"
	"github.com/zombor/fintrack-api/internal/settings"
)

const scannedReceipt = `TAX INVOICE
Reliance Fresh Supermarket
Date: 15/03/2024
Milk 2 x 30.00
Bread 45.00
Sub Total 105.00
Grand Total Rs. 110.25
Thank you`

// scriptedExtractor stands in for the OCR engine
type scriptedExtractor struct{}

func (scriptedExtractor) ExtractText(ctx context.Context, img image.Image) (string, error) {
	return scannedReceipt, nil
}

func (scriptedExtractor) Close() error { return nil }

type silentVibrator struct{}

func (silentVibrator) Vibrate(ctx context.Context, pulses []time.Duration) error { return nil }

type silentSpeaker struct{}

func (silentSpeaker) Speak(ctx context.Context, text, language string) error { return nil }

var _ = Describe("Integration", func() {
	var (
		dbPath      string
		storagePath string
		db          *bbolt.DB
		store       *settings.BoltStore
		feedback    *accessibility.Feedback
		voice       *accessibility.VoiceCommands
		explainer   *accessibility.Explainer
		server      *api.Server
		ghServer    *ghttp.Server
	)

	openServer := func() {
		var err error
		db, err = bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
		Expect(err).NotTo(HaveOccurred())

		archive, err := receipt.NewBoltDB(db)
		Expect(err).NotTo(HaveOccurred())
		files, err := receipt.NewLocalStorage(storagePath)
		Expect(err).NotTo(HaveOccurred())
		store, err = settings.NewBoltStore(db)
		Expect(err).NotTo(HaveOccurred())

		server = api.NewServer(api.Services{
			Receipts:  receipt.NewService(scriptedExtractor{}, nil, archive, files),
			Settings:  store,
			Feedback:  feedback,
			Explainer: explainer,
			Voice:     voice,
		}, api.BasicAuth{})
	}

	BeforeEach(func() {
		tempDir := GinkgoT().TempDir()
		dbPath = filepath.Join(tempDir, "fintrack.db")
		storagePath = filepath.Join(tempDir, "receipts")

		feedback = accessibility.NewFeedback(silentVibrator{}, 4)
		explainer = accessibility.NewExplainer(silentSpeaker{}, "")
		voice = accessibility.NewVoiceCommands(nil, silentSpeaker{}, "", 4)
		openServer()
		ghServer = ghttp.NewServer()
	})

	AfterEach(func() {
		ghServer.Close()
		feedback.Close()
		if db != nil {
			db.Close()
		}
	})

	It("should scan, archive and retrieve a receipt", func() {
		ghServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP)

		img := image.NewGray(image.Rect(0, 0, 160, 80))
		for i := range img.Pix {
			img.Pix[i] = 255
		}
		for x := 10; x < 150; x++ {
			img.SetGray(x, 40, color.Gray{Y: 0})
		}
		var file bytes.Buffer
		Expect(png.Encode(&file, img)).To(Succeed())

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="../../groceries.png"`)
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(file.Bytes())
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		resp, err := http.Post(ghServer.URL()+"/api/ocr/process-receipt", writer.FormDataContentType(), body)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var scanned receipt.Receipt
		Expect(json.NewDecoder(resp.Body).Decode(&scanned)).To(Succeed())
		Expect(scanned.Merchant).To(Equal("Reliance Fresh Supermarket"))
		Expect(scanned.Total.Equal(decimal.RequireFromString("110.25"))).To(BeTrue())
		Expect(scanned.Category).To(Equal("Groceries"))
		Expect(scanned.Items).To(HaveLen(2))

		list, err := http.Get(ghServer.URL() + "/api/ocr/receipts")
		Expect(err).NotTo(HaveOccurred())
		defer list.Body.Close()
		var archived []receipt.ArchivedReceipt
		Expect(json.NewDecoder(list.Body).Decode(&archived)).To(Succeed())
		Expect(archived).To(HaveLen(1))
		Expect(archived[0].Filename).To(HaveSuffix("_groceries.png"))
		Expect(archived[0].Receipt.Merchant).To(Equal(scanned.Merchant))
	})

	It("should keep settings across restarts", func() {
		ghServer.AppendHandlers(server.ServeHTTP)

		resp, err := http.Post(ghServer.URL()+"/api/settings", "application/json",
			strings.NewReader(`{"language":"hi","vibration_feedback":false,"theme":"dark"}`))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		Expect(db.Close()).To(Succeed())
		explainer.SetLanguage("en-IN")
		feedback.SetEnabled(true)
		openServer()

		Expect(server.ApplySettings(context.Background())).To(Succeed())
		Expect(explainer.Language()).To(Equal("hi-IN"))
		Expect(feedback.Enabled()).To(BeFalse())

		stored, err := store.Get(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Theme).To(Equal("dark"))
		Expect(stored.Currency).To(Equal("INR"))
	})
})
