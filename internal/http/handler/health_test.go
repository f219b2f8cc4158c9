package handler_test

import (
	"context"
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"planboard.app/server/internal/http/handler"
)

var _ = Describe("HealthHandler", func() {
	It("reports ok when every dependency answers", func() {
		router := newRouter()
		h := handler.NewHealthHandler(map[string]handler.HealthCheck{
			"postgres": func(context.Context) error { return nil },
		})
		router.GET("/health", h.Health)

		w := doJSON(router, http.MethodGet, "/health", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w)["status"]).To(Equal("ok"))
	})

	It("degrades when a dependency is down", func() {
		router := newRouter()
		h := handler.NewHealthHandler(map[string]handler.HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
		})
		router.GET("/health", h.Health)

		w := doJSON(router, http.MethodGet, "/health", nil)

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		resp := decode(w)
		Expect(resp["status"]).To(Equal("degraded"))
		Expect(resp["dependencies"]).To(HaveKeyWithValue("redis", "down"))
	})
})
