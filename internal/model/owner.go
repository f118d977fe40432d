package model

import "time"

// Owner 对应数据库中 owners 表，一条记录是一户业主的专有部分。
// ScreenMAC 是户内屏的唯一标识符，导入时用它判断是否重复。
type Owner struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SpecificPart string    `gorm:"type:varchar(100);index" json:"specificPart"`
	Location     string    `gorm:"type:varchar(255)" json:"location"`
	Building     string    `gorm:"type:varchar(20);not null;index:idx_owner_placement" json:"building"`
	Unit         string    `gorm:"type:varchar(20);not null;index:idx_owner_placement" json:"unit"`
	Floor        string    `gorm:"type:varchar(20)" json:"floor"`
	Room         string    `gorm:"type:varchar(20);not null" json:"room"`
	BindStatus   string    `gorm:"type:varchar(50)" json:"bindStatus"`
	IPAddress    string    `gorm:"type:varchar(64)" json:"ipAddress"`
	ScreenMAC    string    `gorm:"column:screen_mac;type:varchar(64);not null;uniqueIndex" json:"screenMac"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Owner) TableName() string {
	return "owners"
}
