package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rms-sync-service/internal/domain"
)

func TestDistanceKm(t *testing.T) {
	a := domain.Location{Lat: 34.0522, Lng: -118.2437}
	require.Zero(t, domain.DistanceKm(a, a))

	// One degree of latitude is about 111 km.
	b := domain.Location{Lat: 35.0522, Lng: -118.2437}
	require.InDelta(t, 111.2, domain.DistanceKm(a, b), 0.5)
	require.InDelta(t, domain.DistanceKm(a, b), domain.DistanceKm(b, a), 1e-9)
}

func TestMoveTowards(t *testing.T) {
	start := domain.Location{Lat: 0, Lng: 0}
	end := domain.Location{Lat: 10, Lng: -20}

	mid := domain.MoveTowards(start, end, 0.5)
	require.Equal(t, domain.Location{Lat: 5, Lng: -10}, mid)

	require.Equal(t, start, domain.MoveTowards(start, end, 0))
	require.Equal(t, end, domain.MoveTowards(start, end, 1))
}

func TestEtaMinutes(t *testing.T) {
	require.Equal(t, 15, domain.EtaMinutes(nil, nil))

	a := domain.Location{Lat: 34.05, Lng: -118.24}
	require.Equal(t, 5, domain.EtaMinutes(&a, &a))

	b := domain.Location{Lat: 34.14, Lng: -118.24}
	eta := domain.EtaMinutes(&a, &b)
	require.Greater(t, eta, 5)
	require.Less(t, eta, 60)
}
