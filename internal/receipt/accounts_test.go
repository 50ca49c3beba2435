package receipt

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Accounts", func() {
	var (
		db      *mockDB
		service *Service
	)

	BeforeEach(func() {
		db = newMockDB()
		service = newTestService(db, newMockOCR(), nil, newMockStorage())
	})

	Describe("Signup", func() {
		var (
			user *User
			err  error
		)

		When("the details are valid", func() {
			JustBeforeEach(func() {
				user, err = service.Signup(" Ravi@Example.com ", "Ravi", "correct horse")
			})

			It("should create the user", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(user.ID).To(Equal("id-1"))
				Expect(user.Email).To(Equal("ravi@example.com"))
				Expect(user.Name).To(Equal("Ravi"))
				Expect(user.Language).To(Equal("en"))
				Expect(user.CreatedAt).To(Equal(testNow))
				Expect(db.users).To(HaveKey("id-1"))
			})

			It("should not store the password in clear", func() {
				Expect(string(user.PasswordHash)).NotTo(ContainSubstring("correct horse"))
				Expect(user.PasswordHash).NotTo(BeEmpty())
			})
		})

		It("should default the name to the email's local part", func() {
			user, err = service.Signup("sita@example.com", "  ", "password123")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Name).To(Equal("sita"))
		})

		It("rejects a taken email", func() {
			_, err = service.Signup("ravi@example.com", "Ravi", "password123")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Signup("RAVI@example.com", "Other", "password456")
			Expect(err).To(MatchError(ErrEmailTaken))
		})

		DescribeTable("rejects unusable details",
			func(email, password string) {
				_, err := service.Signup(email, "x", password)
				Expect(err).To(MatchError(ErrInvalidAccount))
			},
			Entry("missing email", "", "password123"),
			Entry("not an email", "ravi", "password123"),
			Entry("display name form", "Ravi <ravi@example.com>", "password123"),
			Entry("short password", "ravi@example.com", "short"),
		)

		When("the database fails", func() {
			BeforeEach(func() {
				db.getErr = errors.New("disk error")
			})

			It("returns the error", func() {
				_, err = service.Signup("ravi@example.com", "Ravi", "password123")
				Expect(err).To(MatchError(ContainSubstring("disk error")))
			})
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			_, err := service.Signup("ravi@example.com", "Ravi", "password123")
			Expect(err).NotTo(HaveOccurred())
			service.timeSource = &fixedTime{now: testNow.Add(time.Hour)}
		})

		It("should accept the right password", func() {
			user, err := service.Login("Ravi@example.com", "password123")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal("id-1"))
		})

		It("should record the login time", func() {
			_, err := service.Login("ravi@example.com", "password123")
			Expect(err).NotTo(HaveOccurred())
			Expect(db.users["id-1"].LastLogin).To(Equal(testNow.Add(time.Hour)))
		})

		It("rejects a wrong password", func() {
			_, err := service.Login("ravi@example.com", "password124")
			Expect(err).To(MatchError(ErrInvalidCredentials))
		})

		It("rejects an unknown email", func() {
			_, err := service.Login("nobody@example.com", "password123")
			Expect(err).To(MatchError(ErrInvalidCredentials))
		})
	})

	Describe("UpdateLanguage", func() {
		BeforeEach(func() {
			db.users["user-1"] = &User{ID: "user-1", Email: "a@example.com", Language: "en"}
		})

		It("should save a supported language", func() {
			user, err := service.UpdateLanguage("user-1", "kn")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Language).To(Equal("kn"))
			Expect(db.users["user-1"].Language).To(Equal("kn"))
		})

		It("rejects an unsupported language", func() {
			_, err := service.UpdateLanguage("user-1", "fr")
			Expect(err).To(MatchError(ErrUnsupportedLanguage))
			Expect(db.users["user-1"].Language).To(Equal("en"))
		})

		It("returns ErrNotFound for unknown users", func() {
			_, err := service.UpdateLanguage("user-2", "te")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})
})
