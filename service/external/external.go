package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mobcash/mobcash/core"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// attempts per call, total. Retries cover timeouts, 5xx and undecodable
// bodies; anything else surfaces immediately.
const attempts = 2

const (
	allUsersTTL = 10 * time.Minute
	byTokenTTL  = 2 * time.Minute
	allUsersKey = "all"
	lookupLimit = 256
	staleLimit  = 64
)

type Config struct {
	BaseURL       string `valid:"url,required"`
	LookupTimeout time.Duration
	UpdateTimeout time.Duration

	// TTLs bound staleness per key class; zero means the defaults above.
	AllUsersTTL time.Duration
	ByTokenTTL  time.Duration
}

func New(cfg Config, logger *slog.Logger) core.ExternalService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 6 * time.Second
	}

	if cfg.UpdateTimeout <= 0 {
		cfg.UpdateTimeout = 8 * time.Second
	}

	if cfg.AllUsersTTL <= 0 {
		cfg.AllUsersTTL = allUsersTTL
	}

	if cfg.ByTokenTTL <= 0 {
		cfg.ByTokenTTL = byTokenTTL
	}

	stale, err := lru.New[string, []*core.ExternalUser](staleLimit)
	if err != nil {
		panic(err)
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "mobcash/1.0")

	return &service{
		client: client,
		cfg:    cfg,
		logger: logger.With("service", "external"),
		all:    expirable.NewLRU[string, []*core.ExternalUser](lookupLimit, nil, cfg.AllUsersTTL),
		tokens: expirable.NewLRU[string, []*core.ExternalUser](lookupLimit, nil, cfg.ByTokenTTL),
		stale:  stale,
	}
}

type service struct {
	client *resty.Client
	cfg    Config
	logger *slog.Logger

	// all and tokens bound staleness by TTL per key class; stale keeps the
	// last good result per key indefinitely and is only consulted when
	// every attempt of a fresh fetch failed.
	all    *expirable.LRU[string, []*core.ExternalUser]
	tokens *expirable.LRU[string, []*core.ExternalUser]
	stale  *lru.Cache[string, []*core.ExternalUser]

	sf singleflight.Group
}

func (s *service) cacheFor(referralToken string) (*expirable.LRU[string, []*core.ExternalUser], string) {
	if referralToken == "" {
		return s.all, allUsersKey
	}

	return s.tokens, referralToken
}

func (s *service) LookupUsers(ctx context.Context, referralToken string) ([]*core.ExternalUser, error) {
	cache, key := s.cacheFor(referralToken)
	if users, ok := cache.Get(key); ok {
		return users, nil
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		users, err := s.fetchUsers(ctx, referralToken)
		if err != nil {
			if cached, ok := s.stale.Get(key); ok {
				s.logger.Warn("lookup failed, serving stale cache", "token", referralToken != "", "err", err)
				return cached, nil
			}

			return nil, err
		}

		if len(users) > 0 {
			cache.Add(key, users)
			s.stale.Add(key, users)
		}

		return users, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]*core.ExternalUser), nil
}

func (s *service) fetchUsers(ctx context.Context, referralToken string) ([]*core.ExternalUser, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)

		req := s.client.R().
			SetContext(attemptCtx).
			SetQueryParam("page", "1")
		if referralToken != "" {
			req.SetQueryParam("referral_token", referralToken)
		}

		resp, err := req.Get("/users")
		cancel()

		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: %v", core.ErrExternalUnavailable, err)
			continue
		case resp.StatusCode() >= 500:
			lastErr = fmt.Errorf("%w: status %d", core.ErrExternalUnavailable, resp.StatusCode())
			continue
		case resp.IsError():
			return nil, fmt.Errorf("%w: status %d", core.ErrExternalUnavailable, resp.StatusCode())
		}

		users, err := parseUsers(resp.Body())
		if err != nil {
			// malformed body counts as transient
			lastErr = err
			continue
		}

		return users, nil
	}

	return nil, lastErr
}

type updateBalanceBody struct {
	ReferralToken string  `json:"referral_token"`
	Balance       float64 `json:"balance"`
}

func (s *service) UpdateBalance(ctx context.Context, referralToken string, balance decimal.Decimal) error {
	if referralToken == "" {
		return core.ErrInvalidRequest
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.UpdateTimeout)

		resp, err := s.client.R().
			SetContext(attemptCtx).
			SetHeader("Content-Type", "application/json").
			SetBody(updateBalanceBody{
				ReferralToken: referralToken,
				Balance:       balance.InexactFloat64(),
			}).
			Post("/users/update-balance")
		cancel()

		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: %v", core.ErrExternalUnavailable, err)
			continue
		case resp.StatusCode() >= 500:
			lastErr = fmt.Errorf("%w: status %d", core.ErrExternalUnavailable, resp.StatusCode())
			continue
		case resp.IsError():
			// the external system rejected the request; retrying won't help
			return fmt.Errorf("%w: update-balance status %d", core.ErrInvalidRequest, resp.StatusCode())
		}

		return nil
	}

	return lastErr
}

// envelope is the paginated directory shape: {success, data: {data: [...]}}.
type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		Data []json.RawMessage `json:"data"`
	} `json:"data"`
}

func parseUsers(body []byte) ([]*core.ExternalUser, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrExternalMalformedResponse, err)
	}

	users := make([]*core.ExternalUser, 0, len(env.Data.Data))
	for _, raw := range env.Data.Data {
		// malformed entries are skipped, not fatal
		if user, ok := parseUser(raw); ok {
			users = append(users, user)
		}
	}

	return users, nil
}

type userEntry struct {
	ID            *int64 `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Balance       any    `json:"balance"`
	ReferralToken string `json:"referral_token"`
	ImageURL      string `json:"image_url"`
}

func parseUser(raw json.RawMessage) (*core.ExternalUser, bool) {
	var entry userEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.ID == nil {
		return nil, false
	}

	return &core.ExternalUser{
		ID:            *entry.ID,
		Name:          entry.Name,
		Email:         entry.Email,
		Balance:       parseBalance(entry.Balance),
		ReferralToken: entry.ReferralToken,
		ImageURL:      entry.ImageURL,
	}, true
}

func parseBalance(v any) *decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)

	switch b := v.(type) {
	case nil:
		return nil
	case float64:
		d = decimal.NewFromFloat(b)
	case string:
		d, err = decimal.NewFromString(b)
	case json.Number:
		d, err = decimal.NewFromString(b.String())
	default:
		return nil
	}

	if err != nil {
		return nil
	}

	return &d
}
