package validator

import (
	"encoding/hex"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// IsValidTokenId returns whether s is the hex encoding of 32 bytes.
func IsValidTokenId(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// IsValidPubKey returns whether s looks like a hex-encoded secp256k1 public
// key (32-byte x-only or 33/65-byte encoded).
func IsValidPubKey(s string) bool {
	b, err := hex.DecodeString(s)
	if err != nil {
		return false
	}
	switch len(b) {
	case 32, 33, 65:
		return true
	}
	return false
}

func NewCustomValidator(v *validator.Validate) echo.Validator {
	v.RegisterValidation("tokenid", func(fl validator.FieldLevel) bool {
		return IsValidTokenId(fl.Field().String())
	})
	v.RegisterValidation("pubkey", func(fl validator.FieldLevel) bool {
		return IsValidPubKey(fl.Field().String())
	})
	return &CustomValidator{v}
}

type CustomValidator struct {
	validator *validator.Validate
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return err
	}
	return nil
}
