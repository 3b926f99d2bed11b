package geo

import (
	"math"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

// EarthRadiusKm 球面地球模型的半径
const EarthRadiusKm = 6371.0

// Haversine 计算两个经纬度点之间的大圆距离（单位：公里）
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func Distance(a, b domain.Coordinate) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}
