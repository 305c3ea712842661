package handlers

import (
	"github.com/jmoiron/sqlx"

	"aurelia/internal/config"
	"aurelia/internal/repos"
	"aurelia/internal/services"
)

type Deps struct {
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	SearchHandler   *SearchHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler
	WishlistHandler *WishlistHandler
	CompareHandler  *CompareHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	couponRepo := repos.NewCouponRepo(db)
	wishRepo := repos.NewWishlistRepo(db)
	compareRepo := repos.NewCompareRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo, couponRepo)
	checkoutSvc := services.NewCheckoutService(cartSvc, prodRepo, orderRepo)
	wishSvc := services.NewWishlistService(wishRepo)
	compareSvc := services.NewCompareService(compareRepo)

	return &Deps{
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Cart: cartSvc, Checkout: checkoutSvc},
		OrderHandler:    &OrderHandler{Repo: orderRepo, Auth: auth},
		WishlistHandler: &WishlistHandler{Wish: wishSvc},
		CompareHandler:  &CompareHandler{Compare: compareSvc},
	}
}
