package progression

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maendeleo/core"
)

var (
	eventTypeTag  = "eventtype"
	eventTypeText = "invalid event type"

	statsPatchTag  = "statspatch"
	statsPatchText = "stats counters may only be incremented"
)

// InitValidators registers this package's custom validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(eventTypeTag, eventTypeValidation)
	core.RegisterCustomTranslation(validate, translator, eventTypeTag, eventTypeText)

	_ = validate.RegisterValidation(statsPatchTag, statsPatchValidation)
	core.RegisterCustomTranslation(validate, translator, statsPatchTag, statsPatchText)
}

func eventTypeValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, typ := range EventTypes {
		if val == typ {
			return true
		}
	}
	return false
}

// statsPatchValidation rejects negative increments and patches on mirrored counters.
func statsPatchValidation(fl validator.FieldLevel) bool {
	patch, ok := fl.Field().Interface().(map[string]int)
	if !ok {
		return false
	}
	for key, inc := range patch {
		if inc < 0 {
			return false
		}
		switch key {
		case StatTotalXP, StatCurrentStreak, StatLongestStreak:
			return false
		}
	}
	return true
}
