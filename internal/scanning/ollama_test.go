package scanning

import (
	"context"
	"encoding/json"
	"image"
	"io"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server    *ghttp.Server
		extractor *Ollama
		text      string
		err       error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		extractor, err = NewOllama(server.URL(), "llava:1.6")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = extractor.ExtractText(context.Background(), filled(20, 10, white))
	})

	When("the model answers", func() {
		var received ollamaChatRequest

		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					body, readErr := io.ReadAll(r.Body)
					Expect(readErr).NotTo(HaveOccurred())
					Expect(json.Unmarshal(body, &received)).To(Succeed())
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: "```\nDMart\nTotal 120.00\n```"},
					Done:    true,
				}),
			))
		})

		It("should return the cleaned transcript", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("DMart\nTotal 120.00"))
		})

		It("should send the image with the user message", func() {
			Expect(received.Model).To(Equal("llava:1.6"))
			Expect(received.Stream).To(BeFalse())
			Expect(received.Messages).To(HaveLen(2))
			Expect(received.Messages[1].Content).To(Equal(transcriptionPrompt))
			Expect(received.Messages[1].Images).To(HaveLen(1))
		})
	})

	When("the API fails", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("should return the status and body", func() {
			Expect(err).To(MatchError(ContainSubstring("ollama returned 500")))
			Expect(err).To(MatchError(ContainSubstring("model not loaded")))
		})
	})

	When("the response is not JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "nope"))
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ContainSubstring("decoding ollama response")))
		})
	})
})

var _ = Describe("NewOllama", func() {
	It("should fill in defaults", func() {
		o, err := NewOllama("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(o.baseURL).To(Equal("http://localhost:11434"))
		Expect(o.model).To(Equal("llava"))
	})
})

var _ = Describe("NewGemini", func() {
	It("should require an API key", func() {
		_, err := NewGemini("", "")
		Expect(err).To(MatchError("gemini api key is required"))
	})

	It("should frame the model as an OCR engine", func() {
		g, err := NewGemini("test-key", "")
		Expect(err).NotTo(HaveOccurred())
		defer g.Close()

		Expect(g.model.SystemInstruction).NotTo(BeNil())
		Expect(g.model.SystemInstruction.Parts).To(ConsistOf(genai.Text(systemPrompt)))
		Expect(*g.model.Temperature).To(BeZero())
	})
})

var _ = Describe("candidateText", func() {
	It("should join the text parts of the first candidate", func() {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("DMart\n"),
				genai.Blob{MIMEType: "image/png"},
				genai.Text("Total 120.00"),
			}},
		}}}
		Expect(candidateText(resp)).To(Equal("DMart\nTotal 120.00"))
	})

	It("should be empty without candidates", func() {
		Expect(candidateText(&genai.GenerateContentResponse{})).To(BeEmpty())
		Expect(candidateText(nil)).To(BeEmpty())
	})
})

var _ = Describe("Tesseract", func() {
	It("should default the languages", func() {
		Expect(NewTesseract(nil).languages).To(Equal(DefaultLanguages))
	})

	It("should honour a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewTesseract(nil).ExtractText(ctx, image.NewGray(image.Rect(0, 0, 1, 1)))
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("NewExtractor", func() {
	It("should default to Tesseract", func() {
		extractor, err := NewExtractor(Config{Languages: []string{"eng"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(extractor).To(BeAssignableToTypeOf(&Tesseract{}))
		Expect(extractor.(*Tesseract).languages).To(Equal([]string{"eng"}))
	})

	It("should build Ollama", func() {
		extractor, err := NewExtractor(Config{Engine: "Ollama", OllamaModel: "qwen2-vl"})
		Expect(err).NotTo(HaveOccurred())
		Expect(extractor.(*Ollama).model).To(Equal("qwen2-vl"))
	})

	It("should pass Gemini errors through", func() {
		_, err := NewExtractor(Config{Engine: EngineGemini})
		Expect(err).To(MatchError("gemini api key is required"))
	})

	It("should reject unknown engines", func() {
		_, err := NewExtractor(Config{Engine: "abbyy"})
		Expect(err).To(MatchError(ContainSubstring(`unknown OCR engine "abbyy"`)))
	})
})
