package handlers

import (
	"sync"

	"market/analyzer/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

var registerOnce sync.Once

// RegisterValidators adds the shop unit rules to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Warn("⚠️ gin validator engine is not go-playground/validator, custom rules skipped")
			return
		}
		if err := v.RegisterValidation("shopunit_type", validateShopUnitType); err != nil {
			log.Errorf("❌ Failed to register shopunit_type validation: %v", err)
		}
	})
}

func validateShopUnitType(fl validator.FieldLevel) bool {
	return domain.ShopUnitType(fl.Field().String()).IsValid()
}
