package router

import (
	"github.com/gin-gonic/gin"
	"github.com/lateleria/storefront/internal/interfaces/http/handler"
)

// Handlers are the endpoint handlers the storefront API is built from
type Handlers struct {
	System     *handler.SystemHandler
	Auth       *handler.AuthHandler
	Storefront *handler.StorefrontHandler
	Cart       *handler.CartHandler
	Checkout   *handler.CheckoutHandler
	Orders     *handler.OrderHandler
	Products   *handler.ProductAdminHandler
	Categories *handler.CategoryAdminHandler
}

// Guards are the per-area middleware. Any of them may be nil.
type Guards struct {
	// CartSession resolves the shopper's cart session
	CartSession gin.HandlerFunc
	// Admin authenticates admin requests
	Admin gin.HandlerFunc
	// Login throttles login attempts
	Login gin.HandlerFunc
}

// StorefrontGroups declares every API route grouped by area
func StorefrontGroups(h Handlers, g Guards) []*DomainGroup {
	catalog := NewDomainGroup("catalog", "")
	catalog.GET("/categorias", h.Storefront.ListCategories)
	catalog.GET("/productos", h.Storefront.ListProducts)
	catalog.GET("/productos/:slug", h.Storefront.GetProduct)

	cart := NewDomainGroup("cart", "/carrito").Use(g.CartSession)
	cart.GET("", h.Cart.Get)
	cart.DELETE("", h.Cart.Clear)
	cart.GET("/totales", h.Cart.Totals)
	cart.POST("/items", h.Cart.AddItem)
	cart.PATCH("/items", h.Cart.UpdateItem)
	cart.DELETE("/items", h.Cart.RemoveItem)

	checkout := NewDomainGroup("checkout", "/checkout")
	checkout.POST("", g.CartSession, h.Checkout.Submit)
	checkout.POST("/validar", h.Checkout.Validate)

	orders := NewDomainGroup("orders", "/pedidos")
	orders.POST("", h.Orders.Create)

	authGroup := NewDomainGroup("auth", "/auth")
	authGroup.POST("/login", g.Login, h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.RefreshToken)
	session := authGroup.Group("auth", "").Use(g.Admin)
	session.POST("/logout", h.Auth.Logout)
	session.GET("/me", h.Auth.GetCurrentUser)
	session.PUT("/password", h.Auth.ChangePassword)

	admin := NewDomainGroup("admin", "/admin").Use(g.Admin)
	admin.GET("/stats", h.Products.Stats)
	admin.GET("/db-status", h.System.DBStatus)

	products := admin.Group("admin-products", "/productos")
	products.GET("", h.Products.List)
	products.POST("", h.Products.Create)
	products.GET("/:id", h.Products.Get)
	products.PUT("/:id", h.Products.Update)
	products.DELETE("/:id", h.Products.Delete)
	products.POST("/:id/imagenes", h.Products.AddImage)
	products.POST("/:id/imagenes/upload-url", h.Products.CreateUploadURL)
	products.DELETE("/:id/imagenes/:imageId", h.Products.RemoveImage)
	products.PUT("/:id/variantes", h.Products.ReplaceVariants)

	categories := admin.Group("admin-categories", "/categorias")
	categories.GET("", h.Categories.List)
	categories.POST("", h.Categories.Create)
	categories.POST("/seed", h.Categories.Seed)

	adminOrders := admin.Group("admin-orders", "/pedidos")
	adminOrders.GET("", h.Orders.List)
	adminOrders.GET("/:id", h.Orders.Get)
	adminOrders.PATCH("/:id", h.Orders.UpdateStatus)

	return []*DomainGroup{catalog, cart, checkout, orders, authGroup, admin}
}

// Mount registers the storefront groups on r and the health check at the
// engine root
func Mount(engine *gin.Engine, r *Router, h Handlers, g Guards) {
	engine.GET("/health", h.System.Health)
	for _, group := range StorefrontGroups(h, g) {
		r.Register(group)
	}
	r.Setup()
}
