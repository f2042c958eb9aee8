package controllers

import (
	"time"

	"github.com/harborline/CruiseLink/cache"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/notify"
	"github.com/harborline/CruiseLink/repository"
	"github.com/harborline/CruiseLink/services"
	"github.com/redis/go-redis/v9"
)

var (
	store          services.Store
	aggregateCache services.AggregateCache
	resolver       *services.CommissionResolver
	ownership      *services.LeadOwnershipService
	workflow       *services.SaleWorkflow
	settlement     *services.SettlementEngine
)

// InitServices wires the engine services against the live database and
// redis. Called once from main after config and DB are initialized.
func InitServices(cfg *config.Config) {
	store = repository.NewStore(config.DB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	ttl := time.Duration(cfg.AggregateCacheTTLSeconds) * time.Second
	aggregateCache = cache.NewAggregateCache(redisClient, ttl)
	locker := cache.NewSettlementLocker(redisClient, 2*time.Minute)

	notifier := notify.NewEmailNotifier(cfg.AdminEmail)

	resolver = services.NewCommissionResolver(store.Tiers(), notifier, services.DefaultCommissionRates())
	ownership = services.NewLeadOwnershipService(store, aggregateCache)
	workflow = services.NewSaleWorkflow(store, resolver, aggregateCache, services.WorkflowConfig{
		AutoApproveManagerOwnedSales: cfg.AutoApproveManagerOwnedSales,
	})
	settlement = services.NewSettlementEngine(store, locker, services.DefaultWithholdingRate)
}
