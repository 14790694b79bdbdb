package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/config"
	"github.com/bookyourstay/stay-api/internal/domain/account"
	"github.com/bookyourstay/stay-api/internal/domain/listing"
	"github.com/bookyourstay/stay-api/internal/domain/offer"
	"github.com/bookyourstay/stay-api/internal/domain/pricing"
	"github.com/bookyourstay/stay-api/internal/domain/reservation"
	"github.com/bookyourstay/stay-api/internal/domain/review"
	"github.com/bookyourstay/stay-api/internal/domain/stats"
	"github.com/bookyourstay/stay-api/internal/domain/wallet"
	"github.com/bookyourstay/stay-api/internal/middleware"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/database"
	"github.com/bookyourstay/stay-api/internal/pkg/email"
	"github.com/bookyourstay/stay-api/internal/pkg/imaging"
	"github.com/bookyourstay/stay-api/internal/pkg/jwt"
	"github.com/bookyourstay/stay-api/internal/pkg/notify"
	pkgresponse "github.com/bookyourstay/stay-api/internal/pkg/response"
	"github.com/bookyourstay/stay-api/internal/pkg/storage"
)

const version = "1.0.0"

// app is the fully wired API: its router plus the background pieces main
// has to start and stop.
type app struct {
	handler    http.Handler
	worker     *reservation.Worker
	dispatcher *notify.Dispatcher
	accounts   *account.Service
}

func newApp(ctx context.Context, cfg *config.Config, conns *database.Connections, clk clock.Clock) (*app, error) {
	backend := conns.Backend("stay")
	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	walletRepo, err := wallet.NewRepository(backend)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: %w", err)
	}
	accountRepo, err := account.NewRepository(backend)
	if err != nil {
		return nil, fmt.Errorf("account repository: %w", err)
	}
	listingRepo, err := listing.NewRepository(backend)
	if err != nil {
		return nil, fmt.Errorf("listing repository: %w", err)
	}
	offerRepo, err := offer.NewRepository(backend)
	if err != nil {
		return nil, fmt.Errorf("offer repository: %w", err)
	}
	reservationRepo, err := reservation.NewRepository(backend)
	if err != nil {
		return nil, fmt.Errorf("reservation repository: %w", err)
	}
	reviewRepo, err := review.NewRepository(backend)
	if err != nil {
		return nil, fmt.Errorf("review repository: %w", err)
	}

	photoStorage, err := storage.New(ctx, storage.Config{
		Driver:       cfg.StorageDriver,
		LocalPath:    cfg.LocalStoragePath,
		LocalBaseURL: cfg.LocalStorageURL,
		S3Endpoint:   cfg.S3Endpoint,
		S3Region:     cfg.S3Region,
		S3Bucket:     cfg.S3Bucket,
		S3AccessKey:  cfg.S3AccessKey,
		S3SecretKey:  cfg.S3SecretKey,
		S3PublicURL:  cfg.S3PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("photo storage: %w", err)
	}

	directory := &accountDirectory{}
	dispatcher := notify.NewDispatcher(newSender(cfg, conns), directory, cfg.NotifyQueueSize)

	walletService := wallet.NewService(walletRepo, clk, dispatcher, wallet.Config{MaxRecharge: cfg.MaxRecharge})
	accountService := account.NewService(accountRepo, jwtService, walletService, clk, account.Config{BcryptCost: cfg.BcryptCost})
	directory.accounts = accountService

	listingService := listing.NewService(listingRepo, clk)
	offerService := offer.NewService(offerRepo, clk)
	pricingEngine := pricing.NewEngine(offerService, pricing.Config{TaxRateBP: cfg.TaxRateBP})

	checker := reservation.NewChecker(reservationRepo, clk)
	listingService.SetBookings(checker)

	reservationService := reservation.NewService(reservation.Deps{
		Repo:     reservationRepo,
		Checker:  checker,
		Listings: listingService,
		Accounts: accountService,
		Pricer:   pricingEngine,
		Offers:   offerService,
		Wallets:  walletService,
		Notifier: dispatcher,
		Clock:    clk,
		Locks:    listingService.Locks(),
	}, reservation.Config{
		RefundPercent:    cfg.RefundPercent,
		FullRefundNotice: cfg.FullRefundNotice,
		CancelCutoff:     cfg.CancelCutoff,
	})

	reviewService := review.NewService(reviewRepo, reservationService, listingService, photoStorage, imaging.NewProcessor(imaging.DefaultConfig()), clk)
	statsService := stats.NewService(reservationService, listingService)

	accountHandler := account.NewHandler(accountService)
	walletHandler := wallet.NewHandler(walletService)
	listingHandler := listing.NewHandler(listingService)
	offerHandler := offer.NewHandler(offerService)
	pricingHandler := pricing.NewHandler(pricingEngine, listingService)
	reservationHandler := reservation.NewHandler(reservationService)
	reviewHandler := review.NewHandler(reviewService)
	statsHandler := stats.NewHandler(statsService, clk)

	authMiddleware := middleware.Auth(jwtService)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{"status": "ok", "version": version})
	})

	if cfg.StorageDriver == storage.DriverLocal {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.LocalStoragePath)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", accountHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
		r.Mount("/listings", listingHandler.Routes(authMiddleware,
			pricingHandler.Register,
			reservationHandler.Register,
			reviewHandler.Register,
		))
		r.Mount("/offers", offerHandler.Routes(authMiddleware))
		r.Mount("/reservations", reservationHandler.Routes(authMiddleware))
		r.Mount("/reviews", reviewHandler.Routes(authMiddleware))
		r.Mount("/stats", statsHandler.Routes(authMiddleware))
	})

	return &app{
		handler:    r,
		worker:     reservation.NewWorker(reservationService, offerService, cfg.MaintenanceTick),
		dispatcher: dispatcher,
		accounts:   accountService,
	}, nil
}

// newSender picks the delivery channels available in this environment.
func newSender(cfg *config.Config, conns *database.Connections) notify.Sender {
	sender := notify.NewCompositeSender()
	if cfg.SendGridAPIKey != "" {
		sender.Add(notify.NewEmailSender(email.NewSendGridClient(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		})))
	}
	if conns.Redis != nil && cfg.NotifyRedisStream != "" {
		sender.Add(notify.NewRedisSender(conns.Redis, cfg.NotifyRedisStream))
	}
	if cfg.SendGridAPIKey == "" || cfg.IsDevelopment() {
		sender.Add(notify.LoggingSender{})
	}
	return sender
}

// accountDirectory breaks the construction cycle between the wallet
// service, which notifies, and the account service, which opens wallets.
type accountDirectory struct {
	accounts *account.Service
}

func (d *accountDirectory) Recipient(ctx context.Context, accountID uuid.UUID) (string, string, error) {
	return d.accounts.Recipient(ctx, accountID)
}
