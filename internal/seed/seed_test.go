package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/dataset"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

func TestCommunities(t *testing.T) {
	communities := Communities([]domain.DemandPoint{
		{Location: domain.Coordinate{Lng: 118.78, Lat: 32.04}, Weight: 120},
		{Location: domain.Coordinate{Lng: 118.80, Lat: 32.06}, Weight: 0},
	})

	require.Len(t, communities, 2)
	assert.Equal(t, "格网 1", communities[0].Name)
	assert.Equal(t, 32.04, communities[0].Latitude)
	assert.Equal(t, 118.78, communities[0].Longitude)
	assert.Equal(t, 120.0, communities[0].Population)
	assert.Equal(t, 0.0, communities[1].Population)
}

func TestParkingLotsGenerateUniqueCodes(t *testing.T) {
	lots := ParkingLots([]dataset.NamedFacility{
		{Name: "新街口停车场"},
		{Name: "新街口停车场"},
		{},
	})

	require.Len(t, lots, 3)
	assert.Equal(t, "PL-XJKTCC", lots[0].Code)
	assert.Equal(t, "PL-XJKTCC-2", lots[1].Code)
	assert.Equal(t, "停车场 3", lots[2].Name)
	assert.Equal(t, "PL-TCC3", lots[2].Code)
}

func TestChargingStations(t *testing.T) {
	stations := ChargingStations([]dataset.NamedFacility{
		{Name: "鼓楼充电站", Facility: domain.Facility{Location: domain.Coordinate{Lng: 118.77, Lat: 32.06}}},
	})

	require.Len(t, stations, 1)
	assert.Equal(t, "CS-GLCDZ", stations[0].Code)
	assert.Equal(t, 118.77, stations[0].Longitude)
}

func TestRandomFacilitiesNearCenter(t *testing.T) {
	for _, f := range randomFacilities(20, 5) {
		assert.InDelta(t, NanjingCenter.Lat, f.Location.Lat, 0.1)
		assert.InDelta(t, NanjingCenter.Lng, f.Location.Lng, 0.1)
	}
}
