package rest_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Suite")
}

// The served contract must stay loadable and internally consistent; a broken
// document would take /swagger down with it.
var _ = Describe("OpenAPI contract", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should validate against the OpenAPI 3 schema", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("should document every lifecycle endpoint", func() {
		for _, path := range []string{
			"/auth/login",
			"/access-requests",
			"/access-requests/{id}/review",
			"/internships",
			"/internships/{id}/transition",
			"/internships/{id}/cancel",
			"/internships/{id}/reports",
			"/internships/{id}/mentor",
			"/internships/{id}/mentor/release",
			"/internships/{id}/mentor/acknowledge",
			"/mentorship/loads",
			"/users/me",
			"/departments",
			"/dashboard",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("should require the bearer scheme on protected writes", func() {
		Expect(doc.Components.SecuritySchemes).To(HaveKey("bearerAuth"))

		transition := doc.Paths.Find("/internships/{id}/transition")
		Expect(transition).NotTo(BeNil())
		Expect(transition.Post.Security).NotTo(BeNil())
	})

	It("should keep the review decision enum aligned with the service", func() {
		review := doc.Paths.Find("/access-requests/{id}/review")
		Expect(review).NotTo(BeNil())

		body := review.Post.RequestBody.Value.Content.Get("application/json")
		Expect(body).NotTo(BeNil())
		decision := body.Schema.Value.Properties["decision"]
		Expect(decision).NotTo(BeNil())
		Expect(decision.Value.Enum).To(ConsistOf("approved", "rejected"))
	})
})
