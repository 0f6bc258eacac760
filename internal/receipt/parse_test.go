package receipt

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

const groceryReceipt = `TAX INVOICE
Reliance Fresh Supermarket
Koramangala, Bengaluru
Date: 15/03/2024
Milk 2 x 30.00
Bread 45.00
Basmati Rice 1kg 120.00
Sub Total 225.00
CGST 2.5% 5.63
SGST 2.5% 5.63
Grand Total Rs. 236.26
Thank you`

var _ = Describe("ParseText", func() {
	var (
		text   string
		now    time.Time
		parsed *Receipt
	)

	BeforeEach(func() {
		now = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	})

	JustBeforeEach(func() {
		parsed = ParseText(text, now)
	})

	When("parsing a complete grocery receipt", func() {
		BeforeEach(func() {
			text = groceryReceipt
		})

		It("should skip the invoice header for the merchant", func() {
			Expect(parsed.Merchant).To(Equal("Reliance Fresh Supermarket"))
		})

		It("should read the date day first", func() {
			Expect(parsed.Date).To(BeTemporally("==", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
		})

		It("should take the grand total rather than the subtotal", func() {
			Expect(parsed.Total.Equal(decimal.RequireFromString("236.26"))).To(BeTrue())
		})

		It("should read the subtotal", func() {
			Expect(parsed.Subtotal).NotTo(BeNil())
			Expect(parsed.Subtotal.Equal(decimal.NewFromInt(225))).To(BeTrue())
		})

		It("should sum the tax lines", func() {
			Expect(parsed.Tax).NotTo(BeNil())
			Expect(parsed.Tax.Equal(decimal.RequireFromString("11.26"))).To(BeTrue())
		})

		It("should extract the line items", func() {
			Expect(parsed.Items).To(HaveLen(3))
			Expect(parsed.Items[0].Name).To(Equal("Milk"))
			Expect(parsed.Items[0].Quantity.Equal(decimal.NewFromInt(2))).To(BeTrue())
			Expect(parsed.Items[0].Price.Equal(decimal.NewFromInt(30))).To(BeTrue())
			Expect(parsed.Items[1].Name).To(Equal("Bread"))
			Expect(parsed.Items[1].Quantity.Equal(decimal.NewFromInt(1))).To(BeTrue())
			Expect(parsed.Items[2].Name).To(Equal("Basmati Rice 1kg"))
		})

		It("should detect the receipt type", func() {
			Expect(parsed.ReceiptType).To(Equal("Grocery"))
		})

		It("should categorize from merchant and items", func() {
			Expect(parsed.Category).To(Equal("Groceries"))
		})

		It("should keep the raw text", func() {
			Expect(parsed.RawText).To(Equal(groceryReceipt))
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			text = ""
		})

		It("should degrade to defaults", func() {
			Expect(parsed.Merchant).To(BeEmpty())
			Expect(parsed.Date).To(BeTemporally("==", now))
			Expect(parsed.Total.IsZero()).To(BeTrue())
			Expect(parsed.Subtotal).To(BeNil())
			Expect(parsed.Tax).To(BeNil())
			Expect(parsed.ReceiptType).To(Equal("General"))
			Expect(parsed.Category).To(Equal("Other"))
			Expect(parsed.Items).NotTo(BeNil())
			Expect(parsed.Items).To(BeEmpty())
		})
	})

	When("the date uses a month name", func() {
		BeforeEach(func() {
			text = "Cafe Coffee Day\n7 Feb 2024\nTotal 180"
		})

		It("should parse it", func() {
			Expect(parsed.Date).To(BeTemporally("==", time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)))
		})

		It("should detect a food receipt", func() {
			Expect(parsed.ReceiptType).To(Equal("Food"))
		})
	})

	When("the date uses a two digit year", func() {
		BeforeEach(func() {
			text = "Apollo Pharmacy\n03-11-23\nTotal 99.50"
		})

		It("should parse it", func() {
			Expect(parsed.Date).To(BeTemporally("==", time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC)))
		})
	})

	When("the date cannot be parsed", func() {
		BeforeEach(func() {
			text = "Some Shop\n45/13/2024\nTotal 10"
		})

		It("should fall back to now", func() {
			Expect(parsed.Date).To(BeTemporally("==", now))
		})
	})

	When("the amount uses Indian digit grouping", func() {
		BeforeEach(func() {
			text = "Croma Electronics\nNet Total: ₹1,24,500.00"
		})

		It("should strip the separators", func() {
			Expect(parsed.Total.Equal(decimal.NewFromInt(124500))).To(BeTrue())
		})
	})

	When("only a currency amount is present", func() {
		BeforeEach(func() {
			text = "Ramesh Kirana\nRs. 350/-"
		})

		It("should use the currency amount", func() {
			Expect(parsed.Total.Equal(decimal.NewFromInt(350))).To(BeTrue())
		})
	})

	When("the amount is stated as payable", func() {
		BeforeEach(func() {
			text = "BESCOM\nAmount Payable: 1450.75"
		})

		It("should use it", func() {
			Expect(parsed.Total.Equal(decimal.RequireFromString("1450.75"))).To(BeTrue())
		})
	})

	When("a total line is zero", func() {
		BeforeEach(func() {
			text = "Shop\nTotal 0.00\nAmount Due 42.00"
		})

		It("should keep looking for a positive amount", func() {
			Expect(parsed.Total.Equal(decimal.NewFromInt(42))).To(BeTrue())
		})
	})

	When("the first line is too short", func() {
		BeforeEach(func() {
			text = "**\nMetro Cash and Carry\nTotal 100"
		})

		It("should use the second line", func() {
			Expect(parsed.Merchant).To(Equal("Metro Cash and Carry"))
		})
	})

	When("there is only a header line", func() {
		BeforeEach(func() {
			text = "RECEIPT"
		})

		It("should keep it as the merchant", func() {
			Expect(parsed.Merchant).To(Equal("RECEIPT"))
		})
	})

	When("item prices are zero or names too short", func() {
		BeforeEach(func() {
			text = "Store\nFree Sample 0.00\nA 10.00\nWater Bottle 20.00"
		})

		It("should skip them", func() {
			Expect(parsed.Items).To(HaveLen(1))
			Expect(parsed.Items[0].Name).To(Equal("Water Bottle"))
		})
	})
})
