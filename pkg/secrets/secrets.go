// Package secrets wraps AWS Secrets Manager behind an explicit configuration
// object with an injected in-process cache. The engine core never calls this
// package; binaries use it to resolve provider credentials before wiring the
// engine together.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// Typed errors for the credential boundary.
var (
	ErrNotFound       = errors.New("secrets: secret not found")
	ErrInvalidRequest = errors.New("secrets: invalid request")
	ErrDecryption     = errors.New("secrets: decryption failure")
	ErrInternal       = errors.New("secrets: internal service error")
)

// Config configures a Manager.
type Config struct {
	Region   string
	CacheTTL time.Duration // 0 means cache for the process lifetime
}

// api is the slice of the Secrets Manager client the Manager uses.
type api interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type entry struct {
	value   string
	fetched time.Time
}

// Manager resolves secrets with a process-scoped cache.
type Manager struct {
	api api
	ttl time.Duration

	mu    sync.Mutex
	cache map[string]entry
	now   func() time.Time
}

// New builds a Manager using the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*Manager, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("secrets: load aws config: %w", err)
	}
	return NewWithClient(secretsmanager.NewFromConfig(awsCfg), cfg.CacheTTL), nil
}

// NewWithClient builds a Manager around an existing client.
func NewWithClient(client api, ttl time.Duration) *Manager {
	return &Manager{
		api:   client,
		ttl:   ttl,
		cache: make(map[string]entry),
		now:   time.Now,
	}
}

// Get returns the secret string for name, serving from cache when fresh.
func (m *Manager) Get(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	if e, ok := m.cache[name]; ok {
		if m.ttl == 0 || m.now().Sub(e.fetched) < m.ttl {
			m.mu.Unlock()
			return e.value, nil
		}
		delete(m.cache, name)
	}
	m.mu.Unlock()

	out, err := m.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &name})
	if err != nil {
		return "", classify(name, err)
	}
	value := ""
	if out.SecretString != nil {
		value = *out.SecretString
	}

	m.mu.Lock()
	m.cache[name] = entry{value: value, fetched: m.now()}
	m.mu.Unlock()
	return value, nil
}

// classify maps provider error types onto the package sentinels.
func classify(name string, err error) error {
	var nf *types.ResourceNotFoundException
	if errors.As(err, &nf) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	var ir *types.InvalidRequestException
	if errors.As(err, &ir) {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, name)
	}
	var ip *types.InvalidParameterException
	if errors.As(err, &ip) {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, name)
	}
	var df *types.DecryptionFailure
	if errors.As(err, &df) {
		return fmt.Errorf("%w: %s", ErrDecryption, name)
	}
	var ise *types.InternalServiceError
	if errors.As(err, &ise) {
		return fmt.Errorf("%w: %s", ErrInternal, name)
	}
	return fmt.Errorf("secrets: get %s: %w", name, err)
}
