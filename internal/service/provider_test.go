package service

import (
	"context"
	"testing"

	"tournament-gateway/internal/apperr"
	"tournament-gateway/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newProviderService(riot *fakeRiot) (*ProviderService, *memStore[domain.Provider]) {
	providers := newMemStore[domain.Provider]()
	svc := NewProviderService(providers, riot, newTestCache(), zerolog.Nop())
	return svc, providers
}

func TestProviderRegisterRoundTrip(t *testing.T) {
	svc, providers := newProviderService(&fakeRiot{providerID: "4001"})
	ctx := context.Background()

	created, err := svc.Register(ctx, domain.RegionNA, "https://example.com/callback")
	require.NoError(t, err)
	require.Equal(t, "4001", created.ID)
	require.False(t, created.CreatedAt.IsZero())
	require.Equal(t, 1, providers.len())

	got, err := svc.Get(ctx, "4001")
	require.NoError(t, err)
	require.Equal(t, created.Region, got.Region)
	require.Equal(t, created.URL, got.URL)
}

func TestProviderRegisterDuplicateConflict(t *testing.T) {
	riot := &fakeRiot{providerID: "4001"}
	svc, providers := newProviderService(riot)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegionNA, "https://example.com/callback")
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.RegionNA, "https://example.com/callback")
	require.Error(t, err)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// exactly one stored record and no second upstream call
	require.Equal(t, 1, providers.len())
	require.Equal(t, 1, riot.providerCalls)
}

func TestProviderRegisterSameURLDifferentRegion(t *testing.T) {
	svc, providers := newProviderService(&fakeRiot{providerID: "4001"})
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegionNA, "https://example.com/callback")
	require.NoError(t, err)

	// the duplicate check is on the (region, url) pair, not url alone;
	// the fake mints the same id so swap it out for the second call
	svc2 := NewProviderService(providers, &fakeRiot{providerID: "4002"}, newTestCache(), zerolog.Nop())
	_, err = svc2.Register(ctx, domain.RegionEUW, "https://example.com/callback")
	require.NoError(t, err)
	require.Equal(t, 2, providers.len())
}

func TestProviderRegisterInvalidRegion(t *testing.T) {
	riot := &fakeRiot{providerID: "4001"}
	svc, _ := newProviderService(riot)

	_, err := svc.Register(context.Background(), domain.Region("MOON"), "https://example.com/callback")
	require.Error(t, err)
	require.Equal(t, apperr.Validation, apperr.KindOf(err))
	require.Zero(t, riot.providerCalls)
}

func TestProviderRegisterUpstreamErrorPropagates(t *testing.T) {
	riot := &fakeRiot{providerErr: apperr.FromUpstream(403, "Riot API Error: Forbidden")}
	svc, providers := newProviderService(riot)

	_, err := svc.Register(context.Background(), domain.RegionNA, "https://example.com/callback")
	require.Error(t, err)
	require.Equal(t, apperr.Upstream, apperr.KindOf(err))
	require.Zero(t, providers.len())
}

func TestProviderGetMissing(t *testing.T) {
	svc, _ := newProviderService(&fakeRiot{})

	_, err := svc.Get(context.Background(), "nope")
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
