// cmd/web/main.go
//
// Entity service – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (conf/.env when present).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load config (YAML + env overlay, Vault-resolved DB password).
//
//  4. Open the database pool, build the record and settings stores, and
//     warm the settings cache.
//
//  5. Construct the entity registry, the field engine, the latest-record
//     resolver for every rotating type, and the ancestry resolver.
//
//  6. Mount the chi router: viewer enrichment, current-record rewriting,
//     security headers, /metrics, and the entity handlers.
//
//  7. Wrap with ForceHTTPS and serve until SIGINT/SIGTERM, then drain.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vgsr/entity/internal/ancestry"
	"github.com/vgsr/entity/internal/config"
	"github.com/vgsr/entity/internal/current"
	"github.com/vgsr/entity/internal/database"
	"github.com/vgsr/entity/internal/entity"
	"github.com/vgsr/entity/internal/logger"
	"github.com/vgsr/entity/internal/middleware"
	"github.com/vgsr/entity/internal/org"
	"github.com/vgsr/entity/internal/record"
	"github.com/vgsr/entity/internal/requestinfo"
	"github.com/vgsr/entity/internal/routing"
	"github.com/vgsr/entity/internal/server"
	"github.com/vgsr/entity/internal/settings"
	"github.com/vgsr/entity/internal/web"
)

func main() {
	// 1. Environment file, optional.
	_ = godotenv.Load("conf/.env")

	// 2. Config before logger would be nicer, but the loader logs through
	//    zap, so bring up a console logger first, then reopen on the real
	//    root once config resolves it.
	if _, err := logger.New(".", runningInTTY()); err != nil {
		log.Fatalf("logger init: %v", err)
	}

	// 3. Config.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	zlog, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("logger reopen: %v", err)
	}

	// 4. Database and stores.
	dsn := fmt.Sprintf(cfg.Database.DSN, cfg.Database.Password)
	db, err := database.Open(dsn)
	if err != nil {
		zlog.Fatalw("database open failed", "err", err)
	}
	defer db.Close()

	recs := record.NewStore(db)
	sets := settings.NewStore(db)

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sets.Load(ctx); err != nil {
		zlog.Fatalw("settings load failed", "err", err)
	}

	// 5. Domain collaborators.
	registry, err := org.Build()
	if err != nil {
		zlog.Fatalw("type registry build failed", "err", err)
	}

	eng := entity.NewEngine(recs, entity.Settings{
		BaseYear:     cfg.Org.BaseYear,
		CountryCode:  cfg.Org.CountryCode,
		MobilePrefix: cfg.Org.MobilePrefix,
		AreaPrefixes: cfg.Org.AreaPrefixes,
		Locale:       cfg.Org.Locale,
	})

	table := routing.NewTable()
	resolvers := make(map[string]*current.Resolver)
	for _, name := range registry.Names() {
		if registry.Rotating(name) {
			resolvers[name] = current.New(name, recs, sets, table)
		}
	}
	anc := ancestry.New(recs, sets)

	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		zlog.Warnw("geo database unavailable, geolocation disabled",
			"path", cfg.Geo.DBPath, "err", err)
	}

	// 6. Router.
	h := &web.Handler{
		Engine:    eng,
		Registry:  registry,
		Records:   recs,
		Ancestry:  anc,
		Resolvers: resolvers,
		Table:     table,
		DB:        db.DB,
		Locale:    cfg.Org.Locale,
	}

	r := chi.NewRouter()
	r.Use(requestinfo.Enrich(db.DB))
	r.Use(routing.Middleware(table, h.Rules))
	r.Use(middleware.Security)
	r.Handle("/metrics", promhttp.Handler())
	h.Routes(r)

	root := middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS, r)

	// 7. Serve.
	srv := server.New(cfg.HTTP.ListenAddr, root)
	zlog.Infow("entity service listening", "addr", cfg.HTTP.ListenAddr)

	if err := server.Run(ctx, srv); err != nil {
		zlog.Fatalw("server exited", "err", err)
	}
	zlog.Infow("entity service stopped")
}

// runningInTTY reports whether stdout is a character device, which decides
// whether the logger tees to the console.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
