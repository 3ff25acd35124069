package security_test

import (
	"github.com/frahmantamala/practice-management/internal/security"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sanitizer", func() {
	DescribeTable("SanitizeString",
		func(in, want string) {
			Expect(security.SanitizeString(in)).To(Equal(want))
		},
		Entry("plain text is kept", "Regular check-up", "Regular check-up"),
		Entry("tags are stripped", "<b>Allergic</b> to penicillin", "Allergic to penicillin"),
		Entry("script blocks are removed with their body", `hi<script>alert("x")</script>`, "hi"),
		Entry("javascript urls", `javascript:alert(1)`, "alert(1)"),
		Entry("inline handlers", `<img src=x onerror=alert(1)>text`, "text"),
		Entry("union select", "1 UNION SELECT password FROM users", "1  password FROM users"),
		Entry("drop table", "x'; DROP TABLE patients", "x';  patients"),
		Entry("sql comments", "admin'--", "admin'"),
		Entry("surrounding whitespace", "  Jane  ", "Jane"),
	)

	It("should recurse into nested maps and slices without touching other types", func() {
		in := map[string]any{
			"name":  "<i>Jane</i>",
			"age":   41.0,
			"tags":  []any{"<b>vip</b>", 3.0},
			"extra": map[string]any{"note": "ok<br/>"},
			"codes": []string{" A1 "},
			"meta":  map[string]string{"k": "<p>v</p>"},
			"flag":  true,
		}

		out, ok := security.SanitizeInput(in).(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(out["name"]).To(Equal("Jane"))
		Expect(out["age"]).To(Equal(41.0))
		Expect(out["tags"]).To(Equal([]any{"vip", 3.0}))
		Expect(out["extra"]).To(Equal(map[string]any{"note": "ok"}))
		Expect(out["codes"]).To(Equal([]string{"A1"}))
		Expect(out["meta"]).To(Equal(map[string]string{"k": "v"}))
		Expect(out["flag"]).To(BeTrue())

		Expect(in["name"]).To(Equal("<i>Jane</i>"), "input must not be mutated")
	})

	It("should leave skipped keys untouched in SanitizeMap", func() {
		in := map[string]any{
			"password": "<Sup3r>--secret;",
			"name":     "<b>Jo</b>",
			"nested":   map[string]any{"token": "a--b", "city": "<i>Depok</i>"},
		}
		skip := func(k string) bool { return k == "password" || k == "token" }

		out := security.SanitizeMap(in, skip)
		Expect(out["password"]).To(Equal("<Sup3r>--secret;"))
		Expect(out["name"]).To(Equal("Jo"))
		Expect(out["nested"]).To(Equal(map[string]any{"token": "a--b", "city": "Depok"}))
	})
})
