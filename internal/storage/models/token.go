// internal/storage/models/token.go
package models

// Token mirrors a bonding-curve ledger entry for audit queries.
type Token struct {
	BaseModel
	TokenID           string `gorm:"unique;not null;type:varchar(44)"`
	Name              string `gorm:"unique;not null;type:varchar(100)"`
	Symbol            string `gorm:"not null;type:varchar(20)"`
	URI               string `gorm:"type:varchar(255)"`
	MetadataAddress   string `gorm:"type:varchar(64)"`
	Creator           string `gorm:"index;not null;type:varchar(44)"`
	TotalSupply       uint64 `gorm:"not null"`
	VirtualSol        uint64 `gorm:"not null"`
	SolReserve        uint64 `gorm:"not null"`
	TokenReserve      uint64 `gorm:"not null"`
	TargetPoolBalance uint64 `gorm:"not null"`
	Graduated         bool   `gorm:"default:false"`
}
