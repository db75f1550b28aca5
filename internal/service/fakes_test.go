package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/blogpost/internal/db/dbtest"
	"github.com/Skotchmaster/blogpost/internal/genai"
	"github.com/Skotchmaster/blogpost/internal/hash"
	"github.com/Skotchmaster/blogpost/internal/models"
	"github.com/Skotchmaster/blogpost/internal/repo"
	"github.com/Skotchmaster/blogpost/internal/tokens"
)

var fastParams = hash.Params{Memory: 8 * 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}

type publishedEvent struct {
	Topic string
	Key   string
	Type  string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	typ, _ := event.(map[string]any)["type"].(string)
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Type: typ})
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeGenerator struct {
	result  *genai.Result
	err     error
	prompts []string
	// during runs inside the provider call, before it returns
	during func(ctx context.Context)
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (*genai.Result, error) {
	g.prompts = append(g.prompts, prompt)
	if g.during != nil {
		g.during(ctx)
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type fakeIndexer struct {
	indexed map[string]models.Blog
	deleted []string
	err     error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{indexed: map[string]models.Blog{}}
}

func (f *fakeIndexer) IndexBlog(_ context.Context, b *models.Blog) error {
	if f.err != nil {
		return f.err
	}
	f.indexed[b.ID] = *b
	return nil
}

func (f *fakeIndexer) DeleteBlog(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.indexed, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndexer) SearchBlogs(_ context.Context, query string, from, size int) (int64, []models.Blog, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	out := make([]models.Blog, 0)
	for _, b := range f.indexed {
		if b.Title == query {
			out = append(out, b)
		}
	}
	return int64(len(out)), out, nil
}

type fakeUsage struct {
	observed []float64
	failed   int
}

func (u *fakeUsage) ObserveGeneration(_ string, _, _ int, cost float64) {
	u.observed = append(u.observed, cost)
}

func (u *fakeUsage) GenerationFailed(string) { u.failed++ }

type failingCosts struct{}

func (failingCosts) IncrementUserCost(context.Context, string, float64) error {
	return errors.New("db down")
}

type fixture struct {
	repo   *repo.GormRepo
	auth   *AuthService
	blogs  *BlogService
	events *fakePublisher
	gen    *fakeGenerator
	index  *fakeIndexer
	usage  *fakeUsage
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	ts, err := tokens.NewService([]byte("service-test-secret"), "HS256", time.Hour, 7*24*time.Hour, tokens.WithClock(clock))
	require.NoError(t, err)

	r := repo.New(dbtest.Open(t))
	pub := &fakePublisher{}
	gen := &fakeGenerator{result: &genai.Result{Text: "T", InputTokens: 100, OutputTokens: 50}}
	idx := newFakeIndexer()
	usage := &fakeUsage{}

	return &fixture{
		repo: r,
		auth: &AuthService{
			Users:  r,
			Tokens: ts,
			Events: pub,
			HashPassword: func(p string) (string, error) {
				return hash.HashPasswordWithParams(p, fastParams)
			},
			Now: clock,
		},
		blogs: &BlogService{
			Blogs:     r,
			Users:     r,
			Generator: gen,
			Pricing:   genai.Pricing{InputPerMillion: 0.3, OutputPerMillion: 3},
			Model:     "test-model",
			Events:    pub,
			Index:     idx,
			Usage:     usage,
			Now:       clock,
		},
		events: pub,
		gen:    gen,
		index:  idx,
		usage:  usage,
		now:    now,
	}
}

func (f *fixture) register(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	s, err := f.auth.Register(context.Background(), Credentials{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	return s.User
}
