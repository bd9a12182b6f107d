package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"github.com/btcsuite/btcutil/base58"

	"github.com/target/shortener/config"
	"github.com/target/shortener/internal/core"
	apperrors "github.com/target/shortener/internal/errors"
)

const seedAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// KeyAllocatorOptions groups dependencies for KeyAllocator.
type KeyAllocatorOptions struct {
	Checker core.KeyChecker  // Required: reports taken keys
	Config  config.KeyConfig // Required: candidate count and key length
	Logger  *slog.Logger     // Optional: structured logger
	Random  io.Reader        // Optional: entropy source, defaults to crypto/rand
}

// KeyAllocator picks unused short keys by racing several random candidates against storage.
// It does not reserve keys; the insert's unique constraint is the final arbiter.
type KeyAllocator struct {
	checker core.KeyChecker
	config  config.KeyConfig
	logger  *slog.Logger
	random  io.Reader
}

// NewKeyAllocator constructs a new KeyAllocator.
func NewKeyAllocator(opts KeyAllocatorOptions) (*KeyAllocator, error) {
	if opts.Checker == nil {
		return nil, errors.New("KeyChecker is required")
	}
	cfg := opts.Config
	cfg.Sanitize()

	random := opts.Random
	if random == nil {
		random = rand.Reader
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &KeyAllocator{
		checker: opts.Checker,
		config:  cfg,
		logger:  logger.With("component", "key_allocator"),
		random:  random,
	}, nil
}

type candidateResult struct {
	key   string
	taken bool
	err   error
}

// Allocate returns the first candidate storage reports as unused.
//
// When every candidate is taken the error is AllocationExhausted. When no candidate was free and
// at least one check failed, the check errors are returned joined.
func (a *KeyAllocator) Allocate(ctx context.Context) (string, error) {
	candidates := make([]string, a.config.Candidates)
	for i := range candidates {
		key, err := a.candidate()
		if err != nil {
			return "", fmt.Errorf("generate key candidate: %w", err)
		}
		candidates[i] = key
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so losing checks never block after the winner returns.
	results := make(chan candidateResult, len(candidates))
	for _, key := range candidates {
		go func(key string) {
			taken, err := a.checker.Exists(ctx, key)
			results <- candidateResult{key: key, taken: taken, err: err}
		}(key)
	}

	var errs []error
	for range candidates {
		res := <-results
		switch {
		case res.err != nil:
			errs = append(errs, fmt.Errorf("check key %q: %w", res.key, res.err))
		case !res.taken:
			return res.key, nil
		}
	}

	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}

	a.logger.WarnContext(ctx, "all key candidates taken", "candidates", len(candidates))
	return "", apperrors.AllocationExhausted("unable to allocate a unique key, retry later")
}

// candidate draws a random alphanumeric seed, base58-encodes it and truncates to the key length.
func (a *KeyAllocator) candidate() (string, error) {
	span := a.config.SeedMaxLength - a.config.SeedMinLength
	n, err := rand.Int(a.random, big.NewInt(int64(span)))
	if err != nil {
		return "", err
	}
	seedLen := a.config.SeedMinLength + int(n.Int64())

	seed := make([]byte, seedLen)
	alphabetLen := big.NewInt(int64(len(seedAlphabet)))
	for i := range seed {
		idx, err := rand.Int(a.random, alphabetLen)
		if err != nil {
			return "", err
		}
		seed[i] = seedAlphabet[idx.Int64()]
	}

	encoded := base58.Encode(seed)
	if len(encoded) > a.config.Length {
		encoded = encoded[:a.config.Length]
	}
	return encoded, nil
}
