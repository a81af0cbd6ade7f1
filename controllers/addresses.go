package controllers

import (
	"net/http"

	"structura-api/config"
	"structura-api/models"

	"github.com/gin-gonic/gin"
)

// addressList serves a read-only address level, optionally filtered by its parent id.
func addressList(dest interface{}, parentParam, parentColumn string) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := config.DB.WithContext(c.Request.Context()).Order("name ASC")
		if parentParam != "" {
			var ok bool
			if query, ok = queryFilter(c, query, parentParam, parentColumn); !ok {
				return
			}
		}
		if err := query.Find(dest).Error; err != nil {
			respondError(c, err, "fetch addresses")
			return
		}
		c.JSON(http.StatusOK, dest)
	}
}

func addressDetail(newDest func() interface{}, label string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, label)
		if !ok {
			return
		}
		dest := newDest()
		if loadOr404(c, dest, "id", id, label) {
			c.JSON(http.StatusOK, dest)
		}
	}
}

func GetRegions(c *gin.Context) {
	addressList(&[]models.Region{}, "", "")(c)
}

func GetProvinces(c *gin.Context) {
	addressList(&[]models.Province{}, "region", "region_id")(c)
}

func GetCities(c *gin.Context) {
	addressList(&[]models.City{}, "province", "province_id")(c)
}

func GetBarangays(c *gin.Context) {
	addressList(&[]models.Barangay{}, "city", "city_id")(c)
}

var (
	GetRegion   = addressDetail(func() interface{} { return &models.Region{} }, "Region")
	GetProvince = addressDetail(func() interface{} { return &models.Province{} }, "Province")
	GetCity     = addressDetail(func() interface{} { return &models.City{} }, "City")
	GetBarangay = addressDetail(func() interface{} { return &models.Barangay{} }, "Barangay")
)
