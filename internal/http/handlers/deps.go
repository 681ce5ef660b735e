package handlers

import (
	"github.com/jmoiron/sqlx"

	"chatstore/internal/agent"
	"chatstore/internal/auth"
	"chatstore/internal/catalog"
	"chatstore/internal/commerce"
	"chatstore/internal/config"
	"chatstore/internal/repos"
)

type Deps struct {
	BrowseHandler *BrowseHandler
	CartHandler   *CartHandler
	OrderHandler  *OrderHandler
	ChatHandler   *ChatHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, authSvc *auth.Service) *Deps {
	prodRepo := repos.NewProductRepo(db)
	stockRepo := repos.NewStockRepo()
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)
	chatRepo := repos.NewChatRepo(db)

	catalogSvc := catalog.NewService(prodRepo)
	cartSvc := commerce.NewCartService(db, cartRepo, prodRepo, stockRepo)
	orderSvc := commerce.NewOrderService(db, cartRepo, prodRepo, stockRepo, orderRepo)

	tools := agent.NewTools(cartSvc, orderSvc, catalogSvc, userRepo)
	cache := agent.NewSessionCache(cfg.AgentCacheSize, cfg.AgentCacheTTL)
	runner := agent.NewRunner(tools, cache, chatRepo, cfg.AgentAPIKey)

	return &Deps{
		BrowseHandler: &BrowseHandler{Catalog: catalogSvc},
		CartHandler:   &CartHandler{Cart: cartSvc},
		OrderHandler:  &OrderHandler{Orders: orderSvc, Cart: cartSvc},
		ChatHandler:   &ChatHandler{Runner: runner, Chats: chatRepo},
	}
}
