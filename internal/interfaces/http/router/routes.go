package router

import (
	"github.com/gin-gonic/gin"

	"github.com/vendora/backend/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers the API exposes
type Handlers struct {
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Coupons  *handler.CouponHandler
	Checkout *handler.TempOrderHandler
	Payments *handler.PaymentHandler
	Orders   *handler.OrderHandler
}

// Middlewares bundles the access-control middleware applied per route group
type Middlewares struct {
	RequireAuth   gin.HandlerFunc
	RequireVendor gin.HandlerFunc // vendor or admin
	RequireAdmin  gin.HandlerFunc
}

// RegisterAPI wires every domain route group into the router.
//
// Payment verification is deliberately public: the gateway calls it without a
// session, and the HMAC signature is its authentication.
func RegisterAPI(r *Router, h Handlers, mw Middlewares) {
	auth := NewDomainGroup("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", mw.RequireAuth, h.Auth.Logout)
	auth.GET("/me", mw.RequireAuth, h.Auth.Me)
	r.Register(auth)

	products := NewDomainGroup("/products")
	products.GET("", h.Products.List)
	products.GET("/:id", h.Products.Get)
	products.POST("", mw.RequireAuth, mw.RequireVendor, h.Products.Create)
	products.PUT("/:id", mw.RequireAuth, mw.RequireVendor, h.Products.Update)
	r.Register(products)

	coupons := NewDomainGroup("/coupons")
	coupons.POST("", mw.RequireAuth, mw.RequireVendor, h.Coupons.Create)
	coupons.PATCH("/:id/status", mw.RequireAuth, mw.RequireVendor, h.Coupons.SetStatus)
	coupons.POST("/apply", mw.RequireAuth, h.Coupons.Apply)
	coupons.POST("/remove", mw.RequireAuth, h.Coupons.Remove)
	r.Register(coupons)

	checkout := NewDomainGroup("/checkout")
	checkout.Use(mw.RequireAuth)
	checkout.POST("", h.Checkout.Create)
	checkout.GET("", h.Checkout.List)
	checkout.GET("/:id", h.Checkout.Get)
	checkout.DELETE("/:id", h.Checkout.Cancel)
	r.Register(checkout)

	payments := NewDomainGroup("/payments")
	payments.POST("/verify", h.Payments.Verify)
	r.Register(payments)

	orders := NewDomainGroup("/orders")
	orders.Use(mw.RequireAuth)
	orders.GET("", h.Orders.List)
	orders.GET("/:id", h.Orders.Get)
	orders.PATCH("/:id/status", h.Orders.UpdateStatus)
	r.Register(orders)

	vendor := NewDomainGroup("/vendor")
	vendor.Use(mw.RequireAuth, mw.RequireVendor)
	vendor.GET("/products", h.Products.ListMine)
	vendor.GET("/coupons", h.Coupons.ListMine)
	vendor.GET("/orders", h.Orders.ListVendor)
	r.Register(vendor)

	admin := NewDomainGroup("/admin")
	admin.Use(mw.RequireAuth, mw.RequireAdmin)
	admin.GET("/orders", h.Orders.ListAll)
	r.Register(admin)
}
