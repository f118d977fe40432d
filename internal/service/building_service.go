package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"freeark_web/internal/building"
	"freeark_web/internal/model"
	"freeark_web/internal/repository"
	"freeark_web/pkg/log"
)

// TreeCache 是楼栋树缓存，由 cache.TreeCache 实现。
type TreeCache interface {
	Get(ctx context.Context) (*building.Result, error)
	Set(ctx context.Context, res *building.Result) error
	Invalidate(ctx context.Context) error
}

// ImportSummary 是一次业主导入的统计。
type ImportSummary struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// BuildingService 负责业主数据导入和楼栋级联树的查询。
type BuildingService interface {
	GetTree(ctx context.Context) (*building.Result, error)
	ImportOwners(ctx context.Context, records []building.Record) (*ImportSummary, error)
	// ImportFile 按文件名后缀解析 .json 或 .xlsx 后导入。
	ImportFile(ctx context.Context, filename string, r io.Reader) (*ImportSummary, error)
}

type buildingService struct {
	ownerRepo repository.OwnerRepository
	builder   *building.Builder
	fields    building.Fields
	sheet     string
	cache     TreeCache
}

// NewBuildingService 的 cache 可以为 nil，此时每次查询都从数据库构建。
func NewBuildingService(ownerRepo repository.OwnerRepository, builder *building.Builder, fields building.Fields, sheet string, cache TreeCache) BuildingService {
	return &buildingService{
		ownerRepo: ownerRepo,
		builder:   builder,
		fields:    fields,
		sheet:     sheet,
		cache:     cache,
	}
}

func (s *buildingService) GetTree(ctx context.Context) (*building.Result, error) {
	if s.ownerRepo == nil || s.builder == nil {
		return nil, ErrInternal
	}

	if s.cache != nil {
		res, err := s.cache.Get(ctx)
		if err != nil {
			log.Warnf("GetTree: cache unavailable: %v", err)
		} else if res != nil {
			return res, nil
		}
	}

	owners, err := s.ownerRepo.FindPlacements()
	if err != nil {
		log.Errorf("GetTree: failed to load owners: %v", err)
		return nil, ErrInternal
	}
	records := make([]building.Record, 0, len(owners))
	for _, o := range owners {
		records = append(records, building.Record{
			Building: o.Building,
			Unit:     o.Unit,
			Floor:    o.Floor,
			Room:     o.Room,
		})
	}

	res := s.builder.Build(records)
	if res.Skipped > 0 {
		log.Warnw("Owners skipped while building tree", "skipped", res.Skipped, "records", res.Records)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, res); err != nil {
			log.Warnf("GetTree: failed to cache tree: %v", err)
		}
	}
	return res, nil
}

// ImportOwners 规则：
// 1. 没有唯一标识符的记录跳过。
// 2. 唯一标识符已在库中或在本批中重复出现的记录跳过。
// 3. 其余记录在一个事务里插入，成功后使楼栋树缓存失效。
func (s *buildingService) ImportOwners(ctx context.Context, records []building.Record) (*ImportSummary, error) {
	if s.ownerRepo == nil {
		return nil, ErrInternal
	}
	summary := &ImportSummary{Total: len(records)}

	macs := make([]string, 0, len(records))
	for _, rec := range records {
		if mac := strings.TrimSpace(rec.ScreenMAC); mac != "" {
			macs = append(macs, mac)
		}
	}
	existing, err := s.ownerRepo.FindExistingMACs(macs)
	if err != nil {
		log.Errorf("ImportOwners: failed to query existing owners: %v", err)
		return nil, ErrInternal
	}

	owners := make([]model.Owner, 0, len(records))
	for _, rec := range records {
		mac := strings.TrimSpace(rec.ScreenMAC)
		if mac == "" {
			summary.Skipped++
			continue
		}
		if _, dup := existing[mac]; dup {
			summary.Skipped++
			continue
		}
		existing[mac] = struct{}{}
		owners = append(owners, model.Owner{
			SpecificPart: rec.Key,
			Location:     rec.Location,
			Building:     strings.TrimSpace(rec.Building),
			Unit:         strings.TrimSpace(rec.Unit),
			Floor:        strings.TrimSpace(rec.Floor),
			Room:         strings.TrimSpace(rec.Room),
			BindStatus:   rec.BindStatus,
			IPAddress:    rec.IPAddress,
			ScreenMAC:    mac,
		})
	}

	if err := s.ownerRepo.CreateBatch(owners); err != nil {
		log.Errorf("ImportOwners: failed to insert %d owners: %v", len(owners), err)
		return nil, ErrInternal
	}
	summary.Imported = len(owners)

	if summary.Imported > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warnf("ImportOwners: failed to invalidate tree cache: %v", err)
		}
	}
	log.Infow("Owners imported", "total", summary.Total, "imported", summary.Imported, "skipped", summary.Skipped)
	return summary, nil
}

func (s *buildingService) ImportFile(ctx context.Context, filename string, r io.Reader) (*ImportSummary, error) {
	var (
		records []building.Record
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		records, err = building.DecodeExport(r, s.fields)
	case ".xlsx":
		records, err = building.ReadExcel(r, s.sheet, s.fields)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, ext)
	}
	if err != nil {
		if errors.Is(err, building.ErrUnsupportedSource) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.ImportOwners(ctx, records)
}
