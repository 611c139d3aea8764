// Package cli is the storefront command line client. Each command runs one
// page action through the proxy gateway.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"

	"klassart-storefront/internal/apiclient"
	"klassart-storefront/internal/config"
	"klassart-storefront/internal/db"
	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/migrate"
	sessionrepo "klassart-storefront/internal/repository/session"
	"klassart-storefront/internal/service"
	"klassart-storefront/internal/service/billing"
	"klassart-storefront/internal/service/cart"
	"klassart-storefront/internal/service/customer"
	"klassart-storefront/internal/service/generation"
	"klassart-storefront/internal/service/payment"
	"klassart-storefront/internal/service/product"
	"klassart-storefront/internal/session"
)

const msgSessionExpired = "Session expired. Please login again."

type app struct {
	cfg     config.Config
	logger  *log.Logger
	format  string
	gateway string
	verbose bool

	out    io.Writer
	errOut io.Writer

	store     *session.Store
	backend   service.Backend
	customers *customer.Service
	products  *product.Service
	carts     *cart.Service
	payments  *payment.Service
	billing   *billing.Service
	enhancer  *generation.Enhancer

	closers []func()
}

// open loads configuration, restores the session and wires the services.
func (a *app) open(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	if a.format != formatYAML && a.format != formatJSON {
		return fmt.Errorf("%w: unknown output format %q", domain.ErrValidation, a.format)
	}
	a.cfg = config.Load()
	if a.gateway != "" {
		a.cfg.GatewayURL = a.gateway
	}
	logOut := io.Discard
	if a.verbose {
		logOut = a.errOut
	}
	a.logger = log.New(logOut, "[storefront] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	repo, err := a.openRepository(ctx)
	if err != nil {
		return err
	}
	a.store = session.New(repo)
	if err := a.store.Hydrate(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	client := apiclient.New(a.cfg.GatewayURL, a.store,
		apiclient.WithLogger(a.logger),
		apiclient.OnSessionExpired(func() { fmt.Fprintln(a.errOut, msgSessionExpired) }),
	)
	a.backend = service.Backend{
		API:      client,
		Sessions: a.store,
		Device: domain.Device{
			Device:     a.cfg.Device.Device,
			AppVersion: a.cfg.Device.AppVersion,
			Latitude:   a.cfg.Device.Latitude,
			Longitude:  a.cfg.Device.Longitude,
		},
	}
	a.customers = customer.New(a.backend, a.store)
	a.products = product.New(a.backend)
	a.carts = cart.New(a.backend)
	a.payments = payment.New(a.backend, a.store)
	a.billing = billing.New(a.backend)
	a.enhancer = generation.NewEnhancer(a.backend)
	return nil
}

func (a *app) openRepository(ctx context.Context) (sessionrepo.Repository, error) {
	switch a.cfg.SessionStore {
	case "file":
		return sessionrepo.NewFile(a.cfg.SessionFile), nil
	case "postgres":
		pool, err := db.Connect(ctx, a.cfg.DBConnString)
		if err != nil {
			return nil, fmt.Errorf("connect to db: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := migrate.Apply(ctx, pool); err != nil {
			return nil, err
		}
		a.logger.Printf("session store: postgres profile %s", a.cfg.SessionProfile)
		return sessionrepo.NewPostgres(pool, a.cfg.SessionProfile), nil
	case "redis":
		client, err := db.ConnectRedis(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.logger.Printf("session store: redis %s profile %s", a.cfg.RedisAddr, a.cfg.SessionProfile)
		return sessionrepo.NewRedis(client, a.cfg.SessionProfile), nil
	default:
		return nil, fmt.Errorf("%w: unknown session store %q", domain.ErrValidation, a.cfg.SessionStore)
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	a.store = nil
}

// profile refreshes the user record from the backend; the session store
// only persists the identifiers.
func (a *app) profile(ctx context.Context) (domain.UserProfile, error) {
	if p, ok := a.store.Profile(); ok {
		return p, nil
	}
	return a.customers.Authorize(ctx)
}
