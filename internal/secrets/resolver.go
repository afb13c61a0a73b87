package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/labanca/listero/internal/metrics"
	pkgsecrets "github.com/labanca/listero/pkg/secrets"
)

// DatastoreCredentials holds the connection secrets for the service's
// backing stores. Secrets are stored as a single JSON map per environment.
type DatastoreCredentials struct {
	DatabaseURL string
	RedisPass   string
}

// Resolver resolves datastore credentials from a secrets Provider,
// caching results locally to reduce API calls.
//
// Secret naming convention: {env}/listero/datastore
type Resolver struct {
	logger   *zap.Logger
	env      string
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[DatastoreCredentials]
}

// NewResolver constructs a credentials resolver for the given environment.
func NewResolver(
	logger *zap.Logger,
	env string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[DatastoreCredentials],
) *Resolver {
	return &Resolver{
		logger:   logger,
		env:      env,
		provider: provider,
		cache:    cache,
	}
}

// secretName builds the AWS Secrets Manager key for this environment.
func (r *Resolver) secretName() string {
	return strings.ToLower(fmt.Sprintf("%s/listero/datastore", r.env))
}

// Resolve fetches or returns cached datastore credentials.
func (r *Resolver) Resolve(ctx context.Context) (DatastoreCredentials, error) {
	name := r.secretName()

	if creds, ok := r.cache.Get(name); ok {
		metrics.IncCacheHit("hit")
		return creds, nil
	}
	metrics.IncCacheHit("miss")

	secretMap, err := r.provider.GetSecret(ctx, name)
	if err != nil {
		r.logger.Warn("secrets.fetch_failed",
			zap.String("key", name),
			zap.Error(err))
		return DatastoreCredentials{}, fmt.Errorf("resolve datastore credentials: %w", err)
	}

	creds, err := parseCredentials(secretMap)
	if err != nil {
		return DatastoreCredentials{}, fmt.Errorf("parse secret %q: %w", name, err)
	}

	r.cache.Put(name, creds)

	r.logger.Info("secrets.credentials_resolved",
		zap.String("env", r.env),
	)
	return creds, nil
}

func parseCredentials(m map[string]string) (DatastoreCredentials, error) {
	dbURL, ok := m["database_url"]
	if !ok || dbURL == "" {
		return DatastoreCredentials{}, fmt.Errorf("secret missing database_url")
	}
	return DatastoreCredentials{
		DatabaseURL: dbURL,
		RedisPass:   m["redis_pass"],
	}, nil
}
