package scanning

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"google.golang.org/api/option"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.Black)
	}
	return img
}

func testPNG() []byte {
	var buf bytes.Buffer
	Expect(png.Encode(&buf, testImage())).To(Succeed())
	return buf.Bytes()
}

func testJPEG() []byte {
	var buf bytes.Buffer
	Expect(jpeg.Encode(&buf, testImage(), nil)).To(Succeed())
	return buf.Bytes()
}

func decodeBody(r *http.Request) map[string]any {
	var body map[string]any
	Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
	return body
}

var _ = Describe("prepareImageData", func() {
	It("should pass PNG data through untouched", func() {
		data := testPNG()
		out, err := prepareImageData(data, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(data))
	})

	It("should convert JPEG to PNG", func() {
		out, err := prepareImageData(testJPEG(), "image/jpeg")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("\x89PNG"))
	})

	It("should default a missing content type to JPEG", func() {
		out, err := prepareImageData(testJPEG(), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("\x89PNG"))
	})

	It("should reject data that is not an image", func() {
		_, err := prepareImageData([]byte("fake image data"), "image/jpeg")
		Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
	})

	Describe("isHEIC", func() {
		It("should detect the ftyp brand", func() {
			data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
			Expect(isHEIC(data, "application/octet-stream")).To(BeTrue())
		})

		It("should detect the MIME type", func() {
			Expect(isHEIC(nil, "image/heif")).To(BeTrue())
		})

		It("should not flag PNG data", func() {
			Expect(isHEIC(testPNG(), "image/png")).To(BeFalse())
		})
	})

	Describe("normalizeMimeType", func() {
		It("should lowercase and drop parameters", func() {
			Expect(normalizeMimeType(" Image/PNG; name=a.png ")).To(Equal("image/png"))
		})
	})
})

var _ = Describe("Ollama", func() {
	var (
		server *ghttp.Server
		ollama *Ollama
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var err error
		ollama, err = NewOllama(server.URL()+"/", "llava")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("CompleteJSON", func() {
		When("the server replies", func() {
			BeforeEach(func() {
				server.AppendHandlers(ghttp.CombineHandlers(
					ghttp.VerifyRequest("POST", "/api/chat"),
					ghttp.VerifyContentType("application/json"),
					func(w http.ResponseWriter, r *http.Request) {
						body := decodeBody(r)
						Expect(body).To(HaveKeyWithValue("format", "json"))
						Expect(body).To(HaveKeyWithValue("model", "llava"))
						Expect(body).To(HaveKeyWithValue("stream", false))
					},
					ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
						"message": map[string]any{"role": "assistant", "content": "  {\"merchant\": \"A\"}\n"},
						"done":    true,
					}),
				))
			})

			It("should return the trimmed reply", func() {
				reply, err := ollama.CompleteJSON(context.Background(), "prompt")
				Expect(err).NotTo(HaveOccurred())
				Expect(reply).To(Equal(`{"merchant": "A"}`))
			})
		})

		When("the server fails", func() {
			BeforeEach(func() {
				server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
			})

			It("returns the error", func() {
				_, err := ollama.CompleteJSON(context.Background(), "prompt")
				Expect(err).To(MatchError(ContainSubstring("status 500")))
			})
		})
	})

	Describe("Complete", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				func(w http.ResponseWriter, r *http.Request) {
					Expect(decodeBody(r)).NotTo(HaveKey("format"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"message": map[string]any{"role": "assistant", "content": "<p>You spent $10.</p>"},
					"done":    true,
				}),
			))
		})

		It("should return the reply", func() {
			reply, err := ollama.Complete(context.Background(), "how much?")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal("<p>You spent $10.</p>"))
		})
	})

	Describe("ExtractText", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				func(w http.ResponseWriter, r *http.Request) {
					body := decodeBody(r)
					messages := body["messages"].([]any)
					Expect(messages).To(HaveLen(2))
					Expect(messages[1]).To(HaveKey("images"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"message": map[string]any{"role": "assistant", "content": "CORNER SHOP\nTOTAL 4.00"},
					"done":    true,
				}),
			))
		})

		It("should send the image and return the text", func() {
			text, err := ollama.ExtractText(context.Background(), testPNG(), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("CORNER SHOP\nTOTAL 4.00"))
		})
	})
})

var _ = Describe("OpenAI", func() {
	var (
		server *ghttp.Server
		client *OpenAI
	)

	chatResponse := func(content string) map[string]any {
		return map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []any{map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		}
	}

	BeforeEach(func() {
		server = ghttp.NewServer()
		var err error
		client, err = NewOpenAI("test-key", "", server.URL()+"/v1")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should require an API key", func() {
		_, err := NewOpenAI("", "", "")
		Expect(err).To(HaveOccurred())
	})

	Describe("CompleteJSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/v1/chat/completions"),
				ghttp.VerifyHeaderKV("Authorization", "Bearer test-key"),
				func(w http.ResponseWriter, r *http.Request) {
					body := decodeBody(r)
					Expect(body).To(HaveKeyWithValue("model", "gpt-4o-mini"))
					Expect(body["response_format"]).To(HaveKeyWithValue("type", "json_object"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, chatResponse(`{"merchant":"B","total":2}`)),
			))
		})

		It("should return the reply", func() {
			reply, err := client.CompleteJSON(context.Background(), "prompt")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal(`{"merchant":"B","total":2}`))
		})
	})

	Describe("Complete", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				func(w http.ResponseWriter, r *http.Request) {
					Expect(decodeBody(r)).NotTo(HaveKey("response_format"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, chatResponse("<b>Groceries</b>")),
			))
		})

		It("should return the reply", func() {
			reply, err := client.Complete(context.Background(), "top category?")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal("<b>Groceries</b>"))
		})
	})

	When("the API rejects the request", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusUnauthorized, map[string]any{
				"error": map[string]any{"message": "bad key", "type": "invalid_request_error"},
			}))
		})

		It("returns the error", func() {
			_, err := client.Complete(context.Background(), "prompt")
			Expect(err).To(MatchError(ContainSubstring("calling openai API")))
		})
	})
})

var _ = Describe("Vision", func() {
	var (
		server *ghttp.Server
		client *Vision
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var err error
		client, err = NewVision(context.Background(), "",
			option.WithEndpoint(server.URL()+"/"),
			option.WithoutAuthentication(),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	When("text is detected", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/v1/images:annotate"),
				func(w http.ResponseWriter, r *http.Request) {
					body := decodeBody(r)
					requests := body["requests"].([]any)
					Expect(requests).To(HaveLen(1))
					features := requests[0].(map[string]any)["features"].([]any)
					Expect(features[0]).To(HaveKeyWithValue("type", "TEXT_DETECTION"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"responses": []any{map[string]any{
						"fullTextAnnotation": map[string]any{"text": "Fresh Mart\nTotal $9.99\n"},
					}},
				}),
			))
		})

		It("should return the full text", func() {
			text, err := client.ExtractText(context.Background(), testPNG(), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Fresh Mart\nTotal $9.99\n"))
		})
	})

	When("only text annotations are returned", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"responses": []any{map[string]any{
					"textAnnotations": []any{
						map[string]any{"description": "Cafe\nLatte 3.50"},
						map[string]any{"description": "Cafe"},
					},
				}},
			}))
		})

		It("should return the first annotation", func() {
			text, err := client.ExtractText(context.Background(), testPNG(), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Cafe\nLatte 3.50"))
		})
	})

	When("nothing is detected", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"responses": []any{map[string]any{}},
			}))
		})

		It("should return empty text", func() {
			text, err := client.ExtractText(context.Background(), testPNG(), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(BeEmpty())
		})
	})

	When("the image is rejected", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"responses": []any{map[string]any{
					"error": map[string]any{"code": 3, "message": "Bad image data."},
				}},
			}))
		})

		It("returns the error", func() {
			_, err := client.ExtractText(context.Background(), testPNG(), "image/png")
			Expect(err).To(MatchError(ContainSubstring("Bad image data.")))
		})
	})

	When("the upload is not an image", func() {
		It("returns the error without calling the API", func() {
			_, err := client.ExtractText(context.Background(), []byte("nope"), "image/jpeg")
			Expect(err).To(HaveOccurred())
			Expect(server.ReceivedRequests()).To(BeEmpty())
		})
	})
})
