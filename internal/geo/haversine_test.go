package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

func TestHaversineIdenticalPoints(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(32.058, 118.796, 32.058, 118.796))
}

func TestHaversineOneDegreeOnEquator(t *testing.T) {
	want := EarthRadiusKm * math.Pi / 180
	assert.InDelta(t, want, Haversine(0, 0, 0, 1), 1e-9)
	assert.InDelta(t, want, Haversine(0, 0, 1, 0), 1e-9)
}

func TestHaversineSymmetric(t *testing.T) {
	d1 := Haversine(32.058, 118.796, 31.230, 121.474)
	d2 := Haversine(31.230, 121.474, 32.058, 118.796)
	assert.InDelta(t, d1, d2, 1e-9)
	// 南京到上海大约 270 公里
	assert.InDelta(t, 270, d1, 15)
}

func TestHaversineAntipodal(t *testing.T) {
	assert.InDelta(t, EarthRadiusKm*math.Pi, Haversine(0, 0, 0, 180), 1e-6)
}

func TestDistanceUsesLngLatOrder(t *testing.T) {
	a := domain.Coordinate{Lng: 118.796, Lat: 32.058}
	b := domain.Coordinate{Lng: 118.780, Lat: 32.040}
	assert.InDelta(t, Haversine(a.Lat, a.Lng, b.Lat, b.Lng), Distance(a, b), 1e-12)
}
