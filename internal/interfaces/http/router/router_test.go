package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("orders", "/orders")
	r.Register(group)

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("posters", "/posters")
	group.GET("/options", func(c *gin.Context) {
		c.String(http.StatusOK, "options")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/posters/options", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "options", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("checkout", "/checkout")
		assert.Equal(t, "checkout", g.Name())
		assert.Equal(t, "/checkout", g.Prefix())
	})

	t.Run("registers each verb", func(t *testing.T) {
		tests := []struct {
			method string
			status int
		}{
			{"GET", http.StatusOK},
			{"POST", http.StatusCreated},
			{"PUT", http.StatusOK},
			{"PATCH", http.StatusOK},
			{"DELETE", http.StatusNoContent},
		}

		for _, tt := range tests {
			t.Run(tt.method, func(t *testing.T) {
				engine := gin.New()
				g := NewDomainGroup("orders", "/orders")

				status := tt.status
				handler := func(c *gin.Context) {
					c.String(status, "")
				}
				switch tt.method {
				case "GET":
					g.GET("/:id", handler)
				case "POST":
					g.POST("/:id", handler)
				case "PUT":
					g.PUT("/:id", handler)
				case "PATCH":
					g.PATCH("/:id", handler)
				case "DELETE":
					g.DELETE("/:id", handler)
				}

				api := engine.Group("/api/v1")
				g.RegisterRoutes(api)

				req := httptest.NewRequest(tt.method, "/api/v1/orders/ord-1", nil)
				w := httptest.NewRecorder()
				engine.ServeHTTP(w, req)

				assert.Equal(t, tt.status, w.Code)
			})
		}
	})

	t.Run("applies middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("orders", "/orders")

		g.Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		})

		g.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("GET", "/api/v1/orders", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
	})

	t.Run("creates subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("orders", "/orders")

		downloads := g.Group("downloads", "/:id/download")
		downloads.GET("/:filename", func(c *gin.Context) {
			c.String(http.StatusOK, c.Param("filename"))
		})

		invoices := g.Group("invoices", "/:id/invoice")
		invoices.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "invoice")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req1 := httptest.NewRequest("GET", "/api/v1/orders/ord-1/download/poster.png", nil)
		w1 := httptest.NewRecorder()
		engine.ServeHTTP(w1, req1)
		assert.Equal(t, http.StatusOK, w1.Code)
		assert.Equal(t, "poster.png", w1.Body.String())

		req2 := httptest.NewRequest("GET", "/api/v1/orders/ord-1/invoice", nil)
		w2 := httptest.NewRecorder()
		engine.ServeHTTP(w2, req2)
		assert.Equal(t, http.StatusOK, w2.Code)
		assert.Equal(t, "invoice", w2.Body.String())
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	posters := NewDomainGroup("posters", "/posters")
	posters.GET("/themes", func(c *gin.Context) {
		c.String(http.StatusOK, "themes")
	})

	checkout := NewDomainGroup("checkout", "/checkout")
	checkout.GET("/success", func(c *gin.Context) {
		c.String(http.StatusOK, "success")
	})

	r.Register(posters).Register(checkout)
	r.Setup()

	req1 := httptest.NewRequest("GET", "/api/v1/posters/themes", nil)
	w1 := httptest.NewRecorder()
	engine.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "themes", w1.Body.String())

	req2 := httptest.NewRequest("GET", "/api/v1/checkout/success", nil)
	w2 := httptest.NewRecorder()
	engine.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "success", w2.Body.String())
}

func TestChainedMethodCalls(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("orders", "/orders")
	g.GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
		POST("", func(c *gin.Context) { c.String(http.StatusOK, "create") }).
		GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, "show") })

	r.Register(g).Setup()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{"GET", "/api/v1/orders", "list"},
		{"POST", "/api/v1/orders", "create"},
		{"GET", "/api/v1/orders/ord-1", "show"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "route %s %s", tt.method, tt.path)
		assert.Equal(t, tt.body, w.Body.String())
	}
}
