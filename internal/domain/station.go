package domain

import "time"

// ChargingStation 现有充电站
type ChargingStation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Type      string    `json:"type"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

// ParkingLot 停车场，即候选的新建充电站位置
type ParkingLot struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Code            string    `json:"code"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Capacity        int32     `json:"capacity"`
	AvailableSpaces int32     `json:"availableSpaces"`
	Address         string    `json:"address"`
	Phone           string    `json:"phone"`
	CreatedAt       time.Time `json:"createdAt"`
	Version         int32     `json:"-"`
}

// Community 社区，即需求点
type Community struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Population float64   `json:"population"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (c *ChargingStation) Facility() Facility {
	return Facility{Location: Coordinate{Lng: c.Longitude, Lat: c.Latitude}}
}

func (p *ParkingLot) Facility() Facility {
	return Facility{Location: Coordinate{Lng: p.Longitude, Lat: p.Latitude}}
}

func (c *Community) DemandPoint() DemandPoint {
	return DemandPoint{Location: Coordinate{Lng: c.Longitude, Lat: c.Latitude}, Weight: c.Population}
}
