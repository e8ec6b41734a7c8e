package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/marmos91/pzip/pkg/codec"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(validatePipeline, PipelineConfig{})
	})
	return validate
}

// validatePipeline rejects levels the selected codec cannot honor.
func validatePipeline(sl validator.StructLevel) {
	p := sl.Current().Interface().(PipelineConfig)
	if _, err := codec.New(p.Codec, p.Level); err != nil && errors.Is(err, codec.ErrInvalidLevel) {
		sl.ReportError(p.Level, "Level", "level", "codec_level", p.Codec)
	}
}

// Validate checks cfg against its struct tags and cross-field rules.
// Errors name the offending field and the rule it broke.
func Validate(cfg *Config) error {
	err := getValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return errors.New(strings.Join(msgs, "; "))
}
