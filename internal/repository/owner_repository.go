package repository

import (
	"freeark_web/internal/model"

	"gorm.io/gorm"
)

// macLookupChunk 限制 IN 子句的参数个数。
const macLookupChunk = 500

// OwnerRepository 定义业主记录的持久化操作。
type OwnerRepository interface {
	// FindExistingMACs 返回 macs 中已经存在于 owners 表的标识符集合。
	FindExistingMACs(macs []string) (map[string]struct{}, error)
	// CreateBatch 在一个事务里批量插入。
	CreateBatch(owners []model.Owner) error
	// FindPlacements 只取楼栋、单元、楼层、户号四列，按 id 顺序返回。
	FindPlacements() ([]model.Owner, error)
	Count() (int64, error)
}

type ownerRepository struct {
	db *gorm.DB
}

func NewOwnerRepository(db *gorm.DB) OwnerRepository {
	return &ownerRepository{db: db}
}

func (r *ownerRepository) FindExistingMACs(macs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	for start := 0; start < len(macs); start += macLookupChunk {
		end := min(start+macLookupChunk, len(macs))

		var found []string
		if err := r.db.Model(&model.Owner{}).
			Where("screen_mac IN ?", macs[start:end]).
			Pluck("screen_mac", &found).Error; err != nil {
			return nil, err
		}
		for _, mac := range found {
			existing[mac] = struct{}{}
		}
	}
	return existing, nil
}

func (r *ownerRepository) CreateBatch(owners []model.Owner) error {
	if len(owners) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(owners, 200).Error
	})
}

func (r *ownerRepository) FindPlacements() ([]model.Owner, error) {
	var owners []model.Owner
	if err := r.db.Select("id", "building", "unit", "floor", "room").
		Order("id ASC").
		Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

func (r *ownerRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&model.Owner{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
