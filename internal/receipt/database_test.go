package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"go.etcd.io/bbolt"
)

var _ = Describe("BoltDB", func() {
	var (
		bolt *bbolt.DB
		db   *BoltDB
	)

	newArchived := func(id string, created time.Time) *ArchivedReceipt {
		return &ArchivedReceipt{
			ID:          id,
			Filename:    id + "_receipt.jpg",
			ContentType: "image/jpeg",
			Receipt: &Receipt{
				Merchant: "DMart",
				Total:    decimal.RequireFromString("412.50"),
				Category: "Groceries",
				Items:    []Item{},
			},
			CreatedAt: created,
		}
	}

	BeforeEach(func() {
		var err error
		bolt, err = bbolt.Open(filepath.Join(GinkgoT().TempDir(), "test.db"), 0600, &bbolt.Options{Timeout: time.Second})
		Expect(err).NotTo(HaveOccurred())
		db, err = NewBoltDB(bolt)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		bolt.Close()
	})

	Describe("SaveReceipt and GetReceipt", func() {
		It("should round trip the record", func() {
			created := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
			Expect(db.SaveReceipt(newArchived("a1", created))).To(Succeed())

			got, err := db.GetReceipt("a1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Filename).To(Equal("a1_receipt.jpg"))
			Expect(got.CreatedAt).To(BeTemporally("==", created))
			Expect(got.Receipt.Merchant).To(Equal("DMart"))
			Expect(got.Receipt.Total.Equal(decimal.RequireFromString("412.5"))).To(BeTrue())
		})

		It("should overwrite records with the same ID", func() {
			r := newArchived("a1", time.Now())
			Expect(db.SaveReceipt(r)).To(Succeed())
			r.ContentType = "image/png"
			Expect(db.SaveReceipt(r)).To(Succeed())

			got, err := db.GetReceipt("a1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ContentType).To(Equal("image/png"))
		})

		It("returns ErrNotFound for unknown IDs", func() {
			_, err := db.GetReceipt("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("ListReceipts", func() {
		It("should return an empty list when nothing is archived", func() {
			receipts, err := db.ListReceipts()
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).NotTo(BeNil())
			Expect(receipts).To(BeEmpty())
		})

		It("should return the newest first", func() {
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			Expect(db.SaveReceipt(newArchived("old", base))).To(Succeed())
			Expect(db.SaveReceipt(newArchived("new", base.Add(48*time.Hour)))).To(Succeed())
			Expect(db.SaveReceipt(newArchived("mid", base.Add(24*time.Hour)))).To(Succeed())

			receipts, err := db.ListReceipts()
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(3))
			Expect(receipts[0].ID).To(Equal("new"))
			Expect(receipts[1].ID).To(Equal("mid"))
			Expect(receipts[2].ID).To(Equal("old"))
		})
	})

	Describe("DeleteReceipt", func() {
		It("should remove the record", func() {
			Expect(db.SaveReceipt(newArchived("a1", time.Now()))).To(Succeed())
			Expect(db.DeleteReceipt("a1")).To(Succeed())

			_, err := db.GetReceipt("a1")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("returns ErrNotFound for unknown IDs", func() {
			Expect(db.DeleteReceipt("missing")).To(MatchError(ErrNotFound))
		})
	})
})
