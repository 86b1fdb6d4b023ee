package ffg

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxNameLength bounds record names, in bytes.
const MaxNameLength = 255

// permissionPattern accepts octal modes ("644", "0755") and symbolic modes
// ("rwxr-x---").
var permissionPattern = regexp.MustCompile(`^([0-7]{3,4}|[r-][w-][x-][r-][w-][x-][r-][w-][x-])$`)

var noSlash = validation.NewStringRule(func(s string) bool {
	return !strings.Contains(s, "/")
}, "must not contain '/'")

var notBlank = validation.NewStringRule(func(s string) bool {
	return strings.TrimSpace(s) != ""
}, "must not be blank")

// validateName checks a record name for create and rename.
func validateName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, MaxNameLength),
		notBlank,
		noSlash,
	)
	if err != nil {
		return fmt.Errorf("%w: name %v", ErrInvalidInput, err)
	}
	return nil
}

// validatePermissions checks a permission token for changePermissions.
func validatePermissions(perms string) error {
	err := validation.Validate(perms,
		validation.Required,
		validation.Match(permissionPattern).Error("must be an octal mode like 644 or a symbolic mode like rw-r--r--"),
	)
	if err != nil {
		return fmt.Errorf("%w: permissions %v", ErrInvalidInput, err)
	}
	return nil
}

// validatePassphrase checks a cipher passphrase.
func validatePassphrase(passphrase string) error {
	if err := validation.Validate(passphrase, validation.Required); err != nil {
		return fmt.Errorf("%w: passphrase %v", ErrInvalidInput, err)
	}
	return nil
}
