package receipt

import (
	"fmt"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/zombor/raseed/internal/parsing"
	"github.com/zombor/raseed/internal/scanning"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("receipts", func() {
		var receipt *Receipt

		BeforeEach(func() {
			receipt = &Receipt{
				ID:        "r1",
				UserID:    "user-1",
				Timestamp: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
				ParsedData: parsing.Record{
					Merchant: "Fresh Mart",
					Date:     "2024-01-15",
					Total:    decimal.RequireFromString("25.99"),
					Tax:      decimal.RequireFromString("1.99"),
					Subtotal: decimal.RequireFromString("24.00"),
					Items:    []parsing.Item{{Name: "Apples", Price: decimal.RequireFromString("4.50")}},
					Category: "Groceries",
				},
				RawText:     "Fresh Mart\nApples 4.50",
				Source:      scanning.SourceFallback,
				Filename:    "r1_receipt.jpg",
				ContentType: "image/jpeg",
			}
		})

		When("a receipt is saved", func() {
			BeforeEach(func() {
				Expect(db.SaveReceipt(receipt)).To(Succeed())
			})

			It("should read it back", func() {
				got, err := db.GetReceipt("user-1", "r1")
				Expect(err).NotTo(HaveOccurred())
				Expect(got.ParsedData.Merchant).To(Equal("Fresh Mart"))
				Expect(got.ParsedData.Total.StringFixed(2)).To(Equal("25.99"))
				Expect(got.ParsedData.Items).To(HaveLen(1))
				Expect(got.ParsedData.Items[0].Price.StringFixed(2)).To(Equal("4.50"))
				Expect(got.Timestamp.Equal(receipt.Timestamp)).To(BeTrue())
				Expect(got.Source).To(Equal(scanning.SourceFallback))
			})

			It("should keep it under its user", func() {
				_, err := db.GetReceipt("user-2", "r1")
				Expect(err).To(MatchError(ErrNotFound))
			})

			It("should store it at the user's receipts path", func() {
				var raw map[string]any
				Expect(db.getDoc("users/user-1/receipts/r1", &raw)).To(Succeed())
				Expect(raw).To(HaveKeyWithValue("receiptId", "r1"))
				Expect(raw).To(HaveKeyWithValue("userId", "user-1"))
			})

			It("should overwrite on save", func() {
				receipt.ParsedData.Category = "Dining"
				Expect(db.SaveReceipt(receipt)).To(Succeed())
				got, err := db.GetReceipt("user-1", "r1")
				Expect(err).NotTo(HaveOccurred())
				Expect(got.ParsedData.Category).To(Equal("Dining"))
			})

			It("should delete it", func() {
				Expect(db.DeleteReceipt("user-1", "r1")).To(Succeed())
				_, err := db.GetReceipt("user-1", "r1")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})

		When("the receipt has no user", func() {
			It("returns an error", func() {
				receipt.UserID = ""
				Expect(db.SaveReceipt(receipt)).NotTo(Succeed())
			})
		})

		When("the receipt does not exist", func() {
			It("returns ErrNotFound on get", func() {
				_, err := db.GetReceipt("user-1", "missing")
				Expect(err).To(MatchError(ErrNotFound))
			})

			It("returns ErrNotFound on delete", func() {
				Expect(db.DeleteReceipt("user-1", "missing")).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("ListReceipts", func() {
		base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

		BeforeEach(func() {
			for i, offset := range []int{2, 0, 3, 1} {
				Expect(db.SaveReceipt(&Receipt{
					ID:        fmt.Sprintf("r%d", i),
					UserID:    "user-1",
					Timestamp: base.Add(time.Duration(offset) * time.Hour),
				})).To(Succeed())
			}
			Expect(db.SaveReceipt(&Receipt{ID: "other", UserID: "user-2", Timestamp: base})).To(Succeed())
			Expect(db.SaveUser(&User{ID: "user-1", Email: "a@example.com"})).To(Succeed())
		})

		It("should return the user's receipts newest first", func() {
			receipts, err := db.ListReceipts("user-1", 0)
			Expect(err).NotTo(HaveOccurred())
			ids := make([]string, len(receipts))
			for i, r := range receipts {
				ids[i] = r.ID
			}
			Expect(ids).To(Equal([]string{"r2", "r0", "r3", "r1"}))
		})

		It("should apply the limit", func() {
			receipts, err := db.ListReceipts("user-1", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(2))
			Expect(receipts[0].ID).To(Equal("r2"))
		})

		It("should return an empty list for users without receipts", func() {
			receipts, err := db.ListReceipts("nobody", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).NotTo(BeNil())
			Expect(receipts).To(BeEmpty())
		})
	})

	Describe("users", func() {
		var user *User

		BeforeEach(func() {
			user = &User{
				ID:           "user-1",
				Email:        "Priya@Example.com",
				Name:         "Priya",
				PasswordHash: []byte("hash"),
				Language:     "te",
				CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			}
			Expect(db.SaveUser(user)).To(Succeed())
		})

		It("should read the user by ID", func() {
			got, err := db.GetUser("user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Priya"))
			Expect(got.Language).To(Equal("te"))
			Expect(got.PasswordHash).To(Equal([]byte("hash")))
		})

		It("should find the user by email regardless of case", func() {
			got, err := db.GetUserByEmail("  priya@EXAMPLE.com ")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("user-1"))
		})

		It("returns ErrNotFound for unknown users", func() {
			_, err := db.GetUser("user-2")
			Expect(err).To(MatchError(ErrNotFound))
			_, err = db.GetUserByEmail("nobody@example.com")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("should keep the profile beside the receipts", func() {
			Expect(db.SaveReceipt(&Receipt{ID: "r1", UserID: "user-1"})).To(Succeed())
			got, err := db.GetUser("user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Email).To(Equal("Priya@Example.com"))
		})
	})

	Describe("document paths", func() {
		It("should escape slashes inside segments", func() {
			Expect(docPath("user_emails", "a/b@example.com")).To(Equal("user_emails/a%2Fb@example.com"))
		})

		It("should reject paths without a key", func() {
			Expect(db.setDoc("users", "x")).NotTo(Succeed())
			Expect(db.setDoc("users//profile", "x")).NotTo(Succeed())
		})

		It("should survive reopening", func() {
			Expect(db.setDoc("users/u/profile", map[string]string{"id": "u"})).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())

			var doc map[string]string
			Expect(db.getDoc("users/u/profile", &doc)).To(Succeed())
			Expect(doc).To(HaveKeyWithValue("id", "u"))
		})
	})
})
