package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"structura-api/config"
	"structura-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddressNode is one entry of the nested address file. Children holds the next level down:
// provinces under a region, cities under a province, barangays under a city.
type AddressNode struct {
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Provinces []AddressNode `json:"provinces,omitempty"`
	Cities    []AddressNode `json:"cities,omitempty"`
	Barangays []AddressNode `json:"barangays,omitempty"`
}

// AddressFile is the root of the import document.
type AddressFile struct {
	Regions []AddressNode `json:"regions"`
}

// AddressImportSummary counts the rows written per level.
type AddressImportSummary struct {
	Regions   int
	Provinces int
	Cities    int
	Barangays int
}

// ParseAddressFile decodes and validates an address document.
func ParseAddressFile(r io.Reader) (*AddressFile, error) {
	var file AddressFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode address file: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *AddressFile) validate() error {
	var check func(level string, nodes []AddressNode) error
	check = func(level string, nodes []AddressNode) error {
		for i := range nodes {
			n := &nodes[i]
			n.Code = strings.TrimSpace(n.Code)
			n.Name = strings.TrimSpace(n.Name)
			if n.Code == "" || n.Name == "" {
				return fmt.Errorf("%w: %s #%d needs code and name", ErrValidation, level, i+1)
			}
			for _, child := range []struct {
				level string
				nodes []AddressNode
			}{{"province", n.Provinces}, {"city", n.Cities}, {"barangay", n.Barangays}} {
				if err := check(child.level, child.nodes); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return check("region", f.Regions)
}

// Count returns the number of nodes per level without touching the database.
func (f *AddressFile) Count() AddressImportSummary {
	var s AddressImportSummary
	for _, r := range f.Regions {
		s.Regions++
		for _, p := range r.Provinces {
			s.Provinces++
			for _, c := range p.Cities {
				s.Cities++
				s.Barangays += len(c.Barangays)
			}
		}
	}
	return s
}

// AddressImportService loads the region/province/city/barangay hierarchy.
type AddressImportService struct {
	db *gorm.DB
}

func NewAddressImportService(db *gorm.DB) *AddressImportService {
	if db == nil {
		db = config.DB
	}
	return &AddressImportService{db: db}
}

// Import upserts every node by code in a single transaction. Existing rows keep their id and get
// the new name and parent.
func (s *AddressImportService) Import(ctx context.Context, file *AddressFile) (AddressImportSummary, error) {
	var summary AddressImportSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rn := range file.Regions {
			region := models.Region{Code: rn.Code, Name: rn.Name}
			if err := upsertByCode(tx, &region, []string{"name"}); err != nil {
				return fmt.Errorf("region %s: %w", rn.Code, err)
			}
			summary.Regions++

			for _, pn := range rn.Provinces {
				province := models.Province{Code: pn.Code, Name: pn.Name, RegionID: region.ID}
				if err := upsertByCode(tx, &province, []string{"name", "region_id"}); err != nil {
					return fmt.Errorf("province %s: %w", pn.Code, err)
				}
				summary.Provinces++

				for _, cn := range pn.Cities {
					city := models.City{Code: cn.Code, Name: cn.Name, ProvinceID: province.ID}
					if err := upsertByCode(tx, &city, []string{"name", "province_id"}); err != nil {
						return fmt.Errorf("city %s: %w", cn.Code, err)
					}
					summary.Cities++

					if len(cn.Barangays) == 0 {
						continue
					}
					barangays := make([]models.Barangay, 0, len(cn.Barangays))
					for _, bn := range cn.Barangays {
						barangays = append(barangays, models.Barangay{Code: bn.Code, Name: bn.Name, CityID: city.ID})
					}
					if err := tx.Clauses(clause.OnConflict{
						Columns:   []clause.Column{{Name: "code"}},
						DoUpdates: clause.AssignmentColumns([]string{"name", "city_id"}),
					}).CreateInBatches(&barangays, 500).Error; err != nil {
						return fmt.Errorf("barangays of city %s: %w", cn.Code, err)
					}
					summary.Barangays += len(barangays)
				}
			}
		}
		return nil
	})
	return summary, err
}

// upsertByCode writes row and reloads it so its primary key is populated even when the
// driver does not report ids for updated rows.
func upsertByCode(tx *gorm.DB, row interface{}, updates []string) error {
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(row).Error; err != nil {
		return err
	}
	// First would also filter on a stale primary key, so clear it before reloading.
	code := ""
	switch v := row.(type) {
	case *models.Region:
		code, v.ID = v.Code, 0
	case *models.Province:
		code, v.ID = v.Code, 0
	case *models.City:
		code, v.ID = v.Code, 0
	}
	return tx.Where("code = ?", code).First(row).Error
}
