package server

import (
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Product   *handler.ProductHandler
	Cart      *handler.CartHandler
	Checkout  *handler.CheckoutHandler
	Order     *handler.OrderHandler
	Address   *handler.AddressHandler
	Payment   *handler.PaymentMethodHandler
	Wishlist  *handler.WishlistHandler
	Admin     *handler.AdminProductHandler
	AdminCat  *handler.AdminCatalogHandler
	AdminOrd  *handler.AdminOrderHandler
	AdminUser *handler.AdminUserHandler
}

// ログイン必須ルートは JWT + token_version、/admin はさらに role=admin
func RegisterRoutes(e *echo.Echo, h Handlers, parser middleware.AccessTokenParser, users repository.UserRepository) {
	authed := []echo.MiddlewareFunc{
		middleware.AuthJWT(parser),
		middleware.TokenVersionGuard(users),
	}

	h.Auth.RegisterRoutes(e, authed...)
	h.Product.RegisterRoutes(e, authed...)
	h.Cart.RegisterRoutes(e, authed...)
	h.Checkout.RegisterRoutes(e, authed...)
	h.Order.RegisterRoutes(e, authed...)
	h.Address.RegisterRoutes(e, authed...)
	h.Payment.RegisterRoutes(e, authed...)
	h.Wishlist.RegisterRoutes(e, authed...)

	admin := e.Group("/admin", append(authed, middleware.AdminRoleGuard())...)
	h.Admin.RegisterRoutes(admin)
	h.AdminCat.RegisterRoutes(admin)
	h.AdminOrd.RegisterRoutes(admin)
	h.AdminUser.RegisterRoutes(admin)
}
