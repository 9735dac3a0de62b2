package yaml

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/reflectwalk"
)

var (
	Validator = validator.New()
)

type structValidationWalker struct {
}

func (w *structValidationWalker) Struct(v reflect.Value) error {
	if !v.CanInterface() {
		return nil
	}
	return Validator.Struct(v.Interface())
}

func (w *structValidationWalker) StructField(reflect.StructField, reflect.Value) error {
	return nil
}

// ValidateStructs runs the validate tags of every struct reachable from s.
func ValidateStructs(s interface{}) error {
	return reflectwalk.Walk(s, &structValidationWalker{})
}
