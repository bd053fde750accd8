// ==============================================================================
// VALIDATOR PACKAGE - pkg/validator/validator.go
// ==============================================================================
package validator

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{
		validate: validator.New(),
	}
	v.registerCustomValidations()
	return v
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		// Format validation errors
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMessages []string
			for _, e := range validationErrors {
				errMessages = append(errMessages, fmt.Sprintf(
					"Field '%s' failed validation '%s'",
					e.Field(),
					e.Tag(),
				))
			}
			return fmt.Errorf("validation failed: %v", errMessages)
		}
		return err
	}
	return nil
}

// FailedFields returns the struct field names that failed validation.
func (v *Validator) FailedFields(i interface{}) []string {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"_global"}
	}
	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, e.Field())
	}
	return fields
}

// IsValidAddress reports whether s is a base58 ed25519 public key that lies
// on the curve. Program derived addresses are rejected.
func IsValidAddress(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return false
	}
	return solana.IsOnCurve(pk[:])
}

// IsValidMint reports whether s decodes to a 32 byte public key. Mints may
// be program derived, so the curve check is skipped.
func IsValidMint(s string) bool {
	_, err := solana.PublicKeyFromBase58(strings.TrimSpace(s))
	return err == nil
}

func (v *Validator) registerCustomValidations() {
	// Register decimal.Decimal to be validated as float64 for gt/lt checks
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := val.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.validate.RegisterValidation("solana_address", func(fl validator.FieldLevel) bool {
		return IsValidAddress(fl.Field().String())
	})

	_ = v.validate.RegisterValidation("solana_mint", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || IsValidMint(s)
	})

	// big.Int fields validate as their sign, so positive_bigint is gt=0
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if field.CanAddr() {
			if n, ok := field.Addr().Interface().(*big.Int); ok {
				return int64(n.Sign())
			}
		}
		return nil
	}, big.Int{})
	v.validate.RegisterAlias("positive_bigint", "gt=0")
}
