package seed

import (
	"fmt"
	"log/slog"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/dataset"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/repository"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/utils"
)

// 南京市中心（新街口）
var NanjingCenter = domain.Coordinate{Lng: 118.7784, Lat: 32.0438}

// ImportDatasets 把 xlsx 中的人口、充电站、停车场数据导入数据库
func ImportDatasets(r *repository.Repository, sources dataset.Sources) error {
	data, err := sources.Load()
	if err != nil {
		return fmt.Errorf("读取数据文件失败: %w", err)
	}

	communities := Communities(data.Demand)
	if err := r.ImportCommunities(communities); err != nil {
		return fmt.Errorf("导入社区失败: %w", err)
	}
	slog.Info("导入社区成功", "count", len(communities))

	stations := ChargingStations(data.Existing)
	if err := r.ImportChargingStations(stations); err != nil {
		return fmt.Errorf("导入充电站失败: %w", err)
	}
	slog.Info("导入充电站成功", "count", len(stations))

	lots := ParkingLots(data.Candidates)
	if err := r.ImportParkingLots(lots); err != nil {
		return fmt.Errorf("导入停车场失败: %w", err)
	}
	slog.Info("导入停车场成功", "count", len(lots))

	return nil
}

// Communities 人口格网没有名称，按顺序编号
func Communities(points []domain.DemandPoint) []*domain.Community {
	communities := make([]*domain.Community, len(points))
	for i, p := range points {
		communities[i] = &domain.Community{
			Name:       fmt.Sprintf("格网 %d", i+1),
			Latitude:   p.Location.Lat,
			Longitude:  p.Location.Lng,
			Population: p.Weight,
		}
	}
	return communities
}

func ChargingStations(facilities []dataset.NamedFacility) []*domain.ChargingStation {
	used := make(map[string]bool)
	stations := make([]*domain.ChargingStation, len(facilities))
	for i, f := range facilities {
		name := nameOrDefault(f.Name, "充电站", i)
		stations[i] = &domain.ChargingStation{
			Name:      name,
			Code:      utils.UniqueCode(utils.GenerateSiteCode("CS", name), used),
			Latitude:  f.Location.Lat,
			Longitude: f.Location.Lng,
		}
	}
	return stations
}

func ParkingLots(facilities []dataset.NamedFacility) []*domain.ParkingLot {
	used := make(map[string]bool)
	lots := make([]*domain.ParkingLot, len(facilities))
	for i, f := range facilities {
		name := nameOrDefault(f.Name, "停车场", i)
		lots[i] = &domain.ParkingLot{
			Name:      name,
			Code:      utils.UniqueCode(utils.GenerateSiteCode("PL", name), used),
			Latitude:  f.Location.Lat,
			Longitude: f.Location.Lng,
		}
	}
	return lots
}

func nameOrDefault(name, kind string, index int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%s %d", kind, index+1)
}

// RandomDemo 在南京市中心附近随机生成一组演示数据
func RandomDemo(r *repository.Repository, communityCount, stationCount, lotCount int, radiusKm float64) error {
	points := make([]domain.DemandPoint, communityCount)
	for i := range points {
		points[i] = domain.DemandPoint{
			Location: utils.GenerateRandomCoordinate(NanjingCenter, radiusKm),
			Weight:   float64(100 + i*37%900),
		}
	}
	if err := r.ImportCommunities(Communities(points)); err != nil {
		return fmt.Errorf("插入社区失败: %w", err)
	}

	if err := r.ImportChargingStations(ChargingStations(randomFacilities(stationCount, radiusKm))); err != nil {
		return fmt.Errorf("插入充电站失败: %w", err)
	}

	if err := r.ImportParkingLots(ParkingLots(randomFacilities(lotCount, radiusKm))); err != nil {
		return fmt.Errorf("插入停车场失败: %w", err)
	}

	slog.Info("插入演示数据成功", "communities", communityCount, "stations", stationCount, "lots", lotCount)
	return nil
}

func randomFacilities(n int, radiusKm float64) []dataset.NamedFacility {
	facilities := make([]dataset.NamedFacility, n)
	for i := range facilities {
		facilities[i].Location = utils.GenerateRandomCoordinate(NanjingCenter, radiusKm)
	}
	return facilities
}
