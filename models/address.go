package models

// Region is the top level of the Philippine address hierarchy.
type Region struct {
	ID   uint   `gorm:"primaryKey;column:id" json:"id"`
	Code string `gorm:"column:code;size:20;uniqueIndex" json:"code"`
	Name string `gorm:"column:name" json:"name"`
}

type Province struct {
	ID       uint   `gorm:"primaryKey;column:id" json:"id"`
	Code     string `gorm:"column:code;size:20;uniqueIndex" json:"code"`
	Name     string `gorm:"column:name" json:"name"`
	RegionID uint   `gorm:"column:region_id;index" json:"region"`
}

type City struct {
	ID         uint   `gorm:"primaryKey;column:id" json:"id"`
	Code       string `gorm:"column:code;size:20;uniqueIndex" json:"code"`
	Name       string `gorm:"column:name" json:"name"`
	ProvinceID uint   `gorm:"column:province_id;index" json:"province"`
}

type Barangay struct {
	ID     uint   `gorm:"primaryKey;column:id" json:"id"`
	Code   string `gorm:"column:code;size:20;uniqueIndex" json:"code"`
	Name   string `gorm:"column:name" json:"name"`
	CityID uint   `gorm:"column:city_id;index" json:"city"`
}

func (Region) TableName() string   { return "regions" }
func (Province) TableName() string { return "provinces" }
func (City) TableName() string     { return "cities" }
func (Barangay) TableName() string { return "barangays" }
