package receipt

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		var (
			filename  string
			savedName string
			err       error
		)

		JustBeforeEach(func() {
			savedName, err = storage.Save(filename, []byte("receipt bytes"))
		})

		When("the name is a plain file name", func() {
			BeforeEach(func() {
				filename = "abc_dmart.jpg"
			})

			It("should write the file and return its name", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(savedName).To(Equal(filename))
				Expect(filepath.Join(tmpDir, filename)).To(BeAnExistingFile())
			})
		})

		When("the name tries to leave the directory", func() {
			BeforeEach(func() {
				filename = "../escape.jpg"
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("invalid file name")))
				Expect(filepath.Join(filepath.Dir(tmpDir), "escape.jpg")).NotTo(BeAnExistingFile())
			})
		})

		When("the name is empty", func() {
			BeforeEach(func() {
				filename = ""
			})

			It("returns the error", func() {
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Get", func() {
		It("should return saved data", func() {
			_, err := storage.Save("r.png", []byte("png data"))
			Expect(err).NotTo(HaveOccurred())

			data, err := storage.Get("r.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("png data"))
		})

		It("returns the error for missing files", func() {
			_, err := storage.Get("missing.png")
			Expect(err).To(MatchError(ContainSubstring("reading file")))
		})

		It("should refuse nested paths", func() {
			_, err := storage.Get("sub/r.png")
			Expect(err).To(MatchError(ContainSubstring("invalid file name")))
		})
	})

	Describe("Delete", func() {
		It("should remove the file", func() {
			_, err := storage.Save("r.png", []byte("x"))
			Expect(err).NotTo(HaveOccurred())

			Expect(storage.Delete("r.png")).To(Succeed())
			Expect(filepath.Join(tmpDir, "r.png")).NotTo(BeAnExistingFile())
		})

		It("returns the error for missing files", func() {
			Expect(storage.Delete("missing.png")).To(MatchError(ContainSubstring("deleting file")))
		})
	})

	Describe("NewLocalStorage", func() {
		It("should create a missing directory", func() {
			path := filepath.Join(GinkgoT().TempDir(), "receipts", "originals")
			_, err := NewLocalStorage(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(BeADirectory())
		})

		It("returns the error when the path is a file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "file")
			Expect(os.WriteFile(path, []byte("x"), 0644)).To(Succeed())

			_, err := NewLocalStorage(path)
			Expect(err).To(MatchError(ContainSubstring("creating storage directory")))
		})
	})
})
