package dataset

import (
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/config"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

// Source 一个数据文件及其列定义
type Source struct {
	Path    string
	Columns Columns
}

type Sources struct {
	Demand    Source
	Existing  Source
	Candidate Source
}

// Data 一次优化所需的全部输入，候选设施的下标即结果中的编号
type Data struct {
	Demand     []domain.DemandPoint
	Existing   []NamedFacility
	Candidates []NamedFacility
}

func SourcesFromConfig(cfg *config.Config) Sources {
	d := cfg.Dataset
	return Sources{
		Demand: Source{
			Path:    d.Demand.Path,
			Columns: Columns{Lng: d.Demand.Lng, Lat: d.Demand.Lat, Weight: d.Demand.Weight},
		},
		Existing: Source{
			Path:    d.Existing.Path,
			Columns: Columns{Lng: d.Existing.Lng, Lat: d.Existing.Lat, Name: d.Existing.Name},
		},
		Candidate: Source{
			Path:    d.Candidate.Path,
			Columns: Columns{Lng: d.Candidate.Lng, Lat: d.Candidate.Lat, Name: d.Candidate.Name},
		},
	}
}

func (s Sources) Load() (*Data, error) {
	demand, err := LoadDemandPoints(s.Demand.Path, s.Demand.Columns)
	if err != nil {
		return nil, err
	}
	existing, err := LoadFacilities(s.Existing.Path, "existing", s.Existing.Columns)
	if err != nil {
		return nil, err
	}
	candidates, err := LoadFacilities(s.Candidate.Path, "candidate", s.Candidate.Columns)
	if err != nil {
		return nil, err
	}
	return &Data{Demand: demand, Existing: existing, Candidates: candidates}, nil
}
