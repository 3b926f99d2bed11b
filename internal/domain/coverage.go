package domain

// Coordinate 经纬度坐标，单位为度
type Coordinate struct {
	Lng float64 `json:"longitude"`
	Lat float64 `json:"latitude"`
}

// DemandPoint 需求点（社区中心点），Weight 为人口数量
type DemandPoint struct {
	Location Coordinate `json:"location"`
	Weight   float64    `json:"weight"`
}

// Facility 设施点，既可以是现有充电站，也可以是候选新建位置
type Facility struct {
	Location Coordinate `json:"location"`
}
