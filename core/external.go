package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ExternalUser is one entry of the external balance service's directory.
// Balance is nil when the directory did not report one.
type ExternalUser struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Email         string           `json:"email,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	ReferralToken string           `json:"referral_token,omitempty"`
	ImageURL      string           `json:"image_url,omitempty"`
}

func (u *ExternalUser) Label() string {
	base := u.Name
	if base == "" {
		base = fmt.Sprintf("User %d", u.ID)
	}

	if u.Email != "" {
		return fmt.Sprintf("%s (%s)", base, u.Email)
	}

	return base
}

// ExternalService adapts the external balance api. It knows nothing about
// local wallets.
type ExternalService interface {
	// LookupUsers queries the external directory. An empty referralToken
	// means the unfiltered listing.
	LookupUsers(ctx context.Context, referralToken string) ([]*ExternalUser, error)
	// UpdateBalance posts the authoritative new balance for the user
	// identified by referralToken.
	UpdateBalance(ctx context.Context, referralToken string, balance decimal.Decimal) error
}
