package container

import (
	"context"
	"fmt"
	"time"

	"bookstore-api/internal/config"
	"bookstore-api/internal/infrastructure/boltdb"
	"bookstore-api/internal/infrastructure/database"
	"bookstore-api/internal/infrastructure/redisdb"
	"bookstore-api/internal/shared"
	"bookstore-api/pkg/logger"

	authorHandler "bookstore-api/internal/domains/author/handler"
	authorRepo "bookstore-api/internal/domains/author/repository"
	authorService "bookstore-api/internal/domains/author/service"
	bookHandler "bookstore-api/internal/domains/book/handler"
	bookRepo "bookstore-api/internal/domains/book/repository"
	bookService "bookstore-api/internal/domains/book/service"
	orderHandler "bookstore-api/internal/domains/order/handler"
	orderRepo "bookstore-api/internal/domains/order/repository"
	orderService "bookstore-api/internal/domains/order/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the application's dependency graph. Exactly one of DB,
// Bolt and Redis is set, depending on the configured store driver.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config    *config.Config
	DB        *database.PostgresDB
	Bolt      *boltdb.BoltDB
	Redis     *redisdb.RedisClient
	Clock     shared.Clocker
	StartedAt time.Time

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	AuthorRepo authorRepo.RepositoryInterface
	BookRepo   bookRepo.RepositoryInterface
	OrderRepo  orderRepo.OrderRepository

	// ========================================
	// SERVICE LAYER
	// ========================================
	AuthorService authorService.ServiceInterface
	BookService   bookService.ServiceInterface
	OrderService  orderService.OrderService

	// ========================================
	// HANDLER LAYER
	// ========================================
	AuthorHandler *authorHandler.AuthorHandler
	BookHandler   *bookHandler.Handler
	OrderHandler  *orderHandler.OrderHandler
}

// NewContainer builds the dependency graph in order:
// infrastructure, repositories, services, handlers.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger.Info("Initializing container", map[string]interface{}{"store": cfg.Store.Driver})

	c := &Container{
		Config:    cfg,
		Clock:     shared.SystemClock{},
		StartedAt: time.Now(),
	}

	if err := c.initStore(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initServices()
	c.initHandlers()

	logger.Info("Container initialized", nil)
	return c, nil
}

// initStore connects the configured backend and builds its repositories.
func (c *Container) initStore(ctx context.Context) error {
	switch c.Config.Store.Driver {
	case config.DriverPostgres:
		db := database.NewPostgresDB(c.Config.Database.DBConfig())
		if err := db.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db

		if c.Config.Database.AutoMigrate {
			applied, err := db.Migrate(ctx)
			if err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Info("Migrations applied", map[string]interface{}{"applied": applied})
		}

		c.AuthorRepo = authorRepo.NewPostgresRepository(db.Pool)
		c.BookRepo = bookRepo.NewPostgresRepository(db.Pool)
		c.OrderRepo = orderRepo.NewPostgresOrderRepository(db.Pool)

	case config.DriverBolt:
		bdb, err := boltdb.Open(boltdb.Config{Path: c.Config.Bolt.Path, Timeout: c.Config.Bolt.Timeout})
		if err != nil {
			return err
		}
		c.Bolt = bdb

		c.AuthorRepo = authorRepo.NewBoltRepository(bdb.DB)
		c.BookRepo = bookRepo.NewBoltRepository(bdb.DB)
		c.OrderRepo = orderRepo.NewBoltOrderRepository(bdb.DB)

	case config.DriverRedis:
		rdb := redisdb.NewRedisClient(redisdb.Config{
			Addr:     c.Config.Redis.Addr(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
			Prefix:   c.Config.Redis.Prefix,
		})
		c.Redis = rdb
		if err := rdb.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}

		c.AuthorRepo = authorRepo.NewRedisRepository(rdb)
		c.BookRepo = bookRepo.NewRedisRepository(rdb)
		c.OrderRepo = orderRepo.NewRedisOrderRepository(rdb)

	default:
		return fmt.Errorf("unsupported store driver %q", c.Config.Store.Driver)
	}

	return nil
}

func (c *Container) initServices() {
	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo, c.BookRepo, c.Clock)
	c.BookService = bookService.NewService(c.BookRepo, c.AuthorRepo, c.Clock)
	c.OrderService = orderService.NewOrderService(c.OrderRepo, c.BookRepo)
}

func (c *Container) initHandlers() {
	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewHandler(c.BookService)
	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService)
}

// HealthCheck pings the active store.
func (c *Container) HealthCheck(ctx context.Context) error {
	switch {
	case c.DB != nil:
		return c.DB.HealthCheck(ctx)
	case c.Bolt != nil:
		return c.Bolt.HealthCheck(ctx)
	case c.Redis != nil:
		return c.Redis.HealthCheck(ctx)
	}
	return fmt.Errorf("no store configured")
}

// Uptime is the time elapsed since the container was built.
func (c *Container) Uptime() time.Duration {
	return time.Since(c.StartedAt)
}

// Cleanup releases the store connection. Safe to call on a partially
// built container.
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Error("Failed to close database", err)
		}
	}
	if c.Bolt != nil {
		if err := c.Bolt.Close(); err != nil {
			logger.Error("Failed to close bolt database", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("Failed to close redis", err)
		}
	}
	logger.Info("Container cleanup completed", nil)
}
