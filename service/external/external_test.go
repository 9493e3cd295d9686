package external

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mobcash/mobcash/core"
	"github.com/shopspring/decimal"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, handler http.HandlerFunc) core.ExternalService {
	t.Helper()

	svr := httptest.NewServer(handler)
	t.Cleanup(svr.Close)

	return New(Config{
		BaseURL:       svr.URL,
		LookupTimeout: time.Second,
		UpdateTimeout: time.Second,
		AllUsersTTL:   50 * time.Millisecond,
		ByTokenTTL:    50 * time.Millisecond,
	}, testLogger())
}

func directoryBody(entries ...any) []byte {
	b, _ := json.Marshal(map[string]any{
		"success": true,
		"data":    map[string]any{"data": entries},
	})

	return b
}

func TestLookupUsersSkipsMalformedEntries(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(directoryBody(
			map[string]any{"id": 1, "name": "alice", "email": "a@example.com", "balance": 12.5, "referral_token": "tok-1"},
			map[string]any{"name": "no id at all"},
			map[string]any{"id": "not a number", "name": "bogus"},
			map[string]any{"id": 2, "name": "bob", "balance": "40.25"},
		))
	})

	users, err := svc.LookupUsers(context.Background(), "")
	if err != nil {
		t.Fatalf("LookupUsers() error = %v", err)
	}

	if len(users) != 2 {
		t.Fatalf("LookupUsers() returned %d users, want 2", len(users))
	}

	if users[0].ID != 1 || users[0].ReferralToken != "tok-1" {
		t.Errorf("first user = %+v", users[0])
	}

	if users[1].Balance == nil || !users[1].Balance.Equal(decimal.RequireFromString("40.25")) {
		t.Errorf("string balance not parsed: %+v", users[1].Balance)
	}
}

func TestLookupUsersTokenScoped(t *testing.T) {
	var gotToken atomic.Value

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken.Store(r.URL.Query().Get("referral_token"))
		w.Write(directoryBody(map[string]any{"id": 7, "name": "carol"}))
	})

	if _, err := svc.LookupUsers(context.Background(), "tok-7"); err != nil {
		t.Fatalf("LookupUsers() error = %v", err)
	}

	if got := gotToken.Load().(string); got != "tok-7" {
		t.Errorf("referral_token sent = %q, want tok-7", got)
	}
}

func TestLookupUsersRetriesTransient(t *testing.T) {
	var calls atomic.Int32

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Write(directoryBody(map[string]any{"id": 1, "name": "alice"}))
	})

	users, err := svc.LookupUsers(context.Background(), "")
	if err != nil {
		t.Fatalf("LookupUsers() error = %v", err)
	}

	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}

	if n := calls.Load(); n != 2 {
		t.Errorf("server saw %d calls, want 2", n)
	}
}

func TestLookupUsersBoundedRetry(t *testing.T) {
	var calls atomic.Int32

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.LookupUsers(context.Background(), "")
	if !errors.Is(err, core.ErrExternalUnavailable) {
		t.Fatalf("LookupUsers() error = %v, want ErrExternalUnavailable", err)
	}

	if n := calls.Load(); n != 2 {
		t.Errorf("server saw %d calls, want exactly 2 attempts", n)
	}
}

func TestLookupUsersServesStaleOnOutage(t *testing.T) {
	var failing atomic.Bool

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Write(directoryBody(map[string]any{"id": 3, "name": "dave"}))
	})

	if _, err := svc.LookupUsers(context.Background(), ""); err != nil {
		t.Fatalf("prime lookup error = %v", err)
	}

	// let the fresh cache expire, then break the upstream
	time.Sleep(80 * time.Millisecond)
	failing.Store(true)

	users, err := svc.LookupUsers(context.Background(), "")
	if err != nil {
		t.Fatalf("LookupUsers() during outage error = %v, want stale result", err)
	}

	if len(users) != 1 || users[0].ID != 3 {
		t.Errorf("stale result = %+v", users)
	}
}

func TestUpdateBalance(t *testing.T) {
	tests := []struct {
		name      string
		status    []int
		wantErr   error
		wantCalls int32
	}{
		{
			name:      "ok",
			status:    []int{http.StatusOK},
			wantCalls: 1,
		},
		{
			name:      "retry then ok",
			status:    []int{http.StatusBadGateway, http.StatusOK},
			wantCalls: 2,
		},
		{
			name:      "exhausted",
			status:    []int{http.StatusInternalServerError, http.StatusInternalServerError},
			wantErr:   core.ErrExternalUnavailable,
			wantCalls: 2,
		},
		{
			name:      "client error surfaces immediately",
			status:    []int{http.StatusBadRequest},
			wantErr:   core.ErrInvalidRequest,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32

			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)

				var body updateBalanceBody
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("bad body: %v", err)
				}

				if body.ReferralToken != "tok-9" {
					t.Errorf("referral_token = %q", body.ReferralToken)
				}

				idx := int(n) - 1
				if idx >= len(tt.status) {
					idx = len(tt.status) - 1
				}

				w.WriteHeader(tt.status[idx])
			})

			err := svc.UpdateBalance(context.Background(), "tok-9", decimal.RequireFromString("123.45"))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateBalance() error = %v, want %v", err, tt.wantErr)
			}

			if n := calls.Load(); n != tt.wantCalls {
				t.Errorf("server saw %d calls, want %d", n, tt.wantCalls)
			}
		})
	}
}

func TestUpdateBalanceMissingToken(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made")
	})

	if err := svc.UpdateBalance(context.Background(), "", decimal.NewFromInt(1)); !errors.Is(err, core.ErrInvalidRequest) {
		t.Fatalf("UpdateBalance() error = %v, want ErrInvalidRequest", err)
	}
}

func TestParseUsersMalformedBody(t *testing.T) {
	if _, err := parseUsers([]byte("<html>gateway error</html>")); !errors.Is(err, core.ErrExternalMalformedResponse) {
		t.Fatalf("parseUsers() error = %v, want ErrExternalMalformedResponse", err)
	}
}
