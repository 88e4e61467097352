package tasks

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/lysyi3m/claim-tracker/app/claims"
	"github.com/lysyi3m/claim-tracker/app/database"
	"github.com/lysyi3m/claim-tracker/app/verifier"
)

var testZone = time.FixedZone("UTC-05:00", -5*3600)

// MockStore is an in-memory stand-in for all repositories.
type MockStore struct {
	mu        sync.Mutex
	articles  map[string]claims.Article
	claims    []claims.Claim
	followups []claims.Followup
	updates   []claims.Update
	nextID    int
	listErr   error
}

func NewMockStore() *MockStore {
	return &MockStore{articles: make(map[string]claims.Article)}
}

func (m *MockStore) Repositories() database.Repositories {
	return database.Repositories{Articles: m, Claims: m, Followups: m, Updates: m}
}

func (m *MockStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s%d", prefix, m.nextID)
}

func (m *MockStore) GetArticle(ctx context.Context, id string) (*claims.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.articles[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (m *MockStore) CreateArticle(ctx context.Context, article claims.Article) (*claims.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[article.ID] = article
	return &article, nil
}

func (m *MockStore) GetClaim(ctx context.Context, id string) (*claims.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.claims {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockStore) ListClaims(ctx context.Context, filter database.ClaimFilter) ([]claims.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []claims.Claim
	for _, c := range m.claims {
		if len(filter.Types) > 0 && !slices.Contains(filter.Types, c.Type) {
			continue
		}
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, c.ID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *MockStore) CreateClaim(ctx context.Context, claim claims.Claim) (*claims.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims = append(m.claims, claim)
	return &claim, nil
}

func (m *MockStore) CountByType(ctx context.Context) (map[claims.ClaimType]int, error) {
	return nil, nil
}

func (m *MockStore) GetFollowup(ctx context.Context, id string) (*claims.Followup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.followups {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, nil
}

func (m *MockStore) ListFollowups(ctx context.Context, filter database.FollowupFilter) ([]claims.Followup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []claims.Followup
	for _, f := range m.followups {
		if len(filter.ClaimIDs) > 0 && !slices.Contains(filter.ClaimIDs, f.ClaimID) {
			continue
		}
		if filter.OpenOnly && !f.IsOpen() {
			continue
		}
		if filter.DueBy != nil && f.FollowUpDate.After(*filter.DueBy) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (m *MockStore) CreateFollowups(ctx context.Context, followups []database.NewFollowup) ([]claims.Followup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var created []claims.Followup
	for _, nf := range followups {
		date := claims.DateOnly(nf.Date, testZone)
		f := claims.Followup{ID: m.id("f"), ClaimID: nf.ClaimID, FollowUpDate: &date, Note: nf.Note}
		m.followups = append(m.followups, f)
		created = append(created, f)
	}
	return created, nil
}

func (m *MockStore) CountOpen(ctx context.Context, today time.Time) (int, int, error) {
	return 0, 0, nil
}

func (m *MockStore) CloseFollowup(ctx context.Context, followupID string, v claims.Verification, at time.Time) (*claims.Closure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, f := range m.followups {
		if f.ID != followupID {
			continue
		}
		if !f.IsOpen() {
			return nil, claims.ErrFollowupClosed
		}
		u := claims.Update{ID: m.id("u"), ClaimID: f.ClaimID, Verdict: v.Verdict, CreatedAt: &at, Output: v.Output}
		m.updates = append(m.updates, u)
		m.followups[i].ProcessedAt = &at
		m.followups[i].ProcessedUpdateID = u.ID
		return &claims.Closure{Followup: m.followups[i], Update: u}, nil
	}
	return nil, claims.ErrFollowupNotFound
}

func (m *MockStore) ListUpdates(ctx context.Context, claimIDs []string) ([]claims.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []claims.Update
	for _, u := range m.updates {
		if len(claimIDs) == 0 || slices.Contains(claimIDs, u.ClaimID) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MockStore) CountUpdates(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.updates), nil
}

func (m *MockStore) updateCount() int {
	n, _ := m.CountUpdates(context.Background())
	return n
}

// MockVerifier returns a fixed outcome and records what it was asked.
type MockVerifier struct {
	mu       sync.Mutex
	result   claims.Verification
	err      error
	requests []verifier.Request
}

func (m *MockVerifier) Verify(ctx context.Context, req verifier.Request) (claims.Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return claims.Verification{}, m.err
	}
	return m.result, nil
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}
