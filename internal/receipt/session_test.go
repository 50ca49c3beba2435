package receipt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sessions", func() {
	var (
		clock    *fixedTime
		sessions *Sessions
		identity Identity
	)

	BeforeEach(func() {
		clock = &fixedTime{now: testNow}
		var err error
		sessions, err = NewSessions([]byte("test-secret"), time.Hour, clock)
		Expect(err).NotTo(HaveOccurred())
		identity = Identity{UserID: "user-1", Email: "ravi@example.com", Name: "Ravi"}
	})

	It("should require a secret", func() {
		_, err := NewSessions(nil, time.Hour, clock)
		Expect(err).To(HaveOccurred())
	})

	Describe("Issue and Verify", func() {
		var token string

		BeforeEach(func() {
			var err error
			token, err = sessions.Issue(identity)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should round trip the identity", func() {
			got, err := sessions.Verify(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(identity))
		})

		It("rejects expired tokens", func() {
			clock.now = testNow.Add(2 * time.Hour)
			_, err := sessions.Verify(token)
			Expect(err).To(MatchError(jwt.ErrTokenExpired))
		})

		It("rejects tokens signed with another secret", func() {
			other, err := NewSessions([]byte("other-secret"), time.Hour, clock)
			Expect(err).NotTo(HaveOccurred())
			_, err = other.Verify(token)
			Expect(err).To(MatchError(jwt.ErrTokenSignatureInvalid))
		})

		It("rejects unsigned tokens", func() {
			unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
				Issuer:    sessionIssuer,
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
			}).SignedString(jwt.UnsafeAllowNoneSignatureType)
			Expect(err).NotTo(HaveOccurred())
			_, err = sessions.Verify(unsigned)
			Expect(err).To(HaveOccurred())
		})

		It("rejects garbage", func() {
			_, err := sessions.Verify("not-a-token")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("cookies", func() {
		It("should set an HttpOnly session cookie that FromRequest accepts", func() {
			rec := httptest.NewRecorder()
			Expect(sessions.SetCookie(rec, identity)).To(Succeed())

			cookies := rec.Result().Cookies()
			Expect(cookies).To(HaveLen(1))
			Expect(cookies[0].Name).To(Equal(SessionCookieName))
			Expect(cookies[0].HttpOnly).To(BeTrue())
			Expect(cookies[0].MaxAge).To(Equal(3600))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookies[0])
			got, ok := sessions.FromRequest(req)
			Expect(ok).To(BeTrue())
			Expect(got.UserID).To(Equal("user-1"))
		})

		It("should expire the cookie on clear", func() {
			rec := httptest.NewRecorder()
			sessions.ClearCookie(rec)
			cookies := rec.Result().Cookies()
			Expect(cookies).To(HaveLen(1))
			Expect(cookies[0].MaxAge).To(BeNumerically("<", 0))
		})

		It("should ignore requests without a cookie", func() {
			_, ok := sessions.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(ok).To(BeFalse())
		})
	})

	Describe("context", func() {
		It("should carry the identity", func() {
			ctx := WithIdentity(context.Background(), identity)
			got, ok := IdentityFromContext(ctx)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(identity))
		})

		It("should report a missing identity", func() {
			_, ok := IdentityFromContext(context.Background())
			Expect(ok).To(BeFalse())
		})
	})
})
