package nanoid

import (
	"strings"

	"github.com/examhub-dev/examhub/consts"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const defaultSize = 16

func getSize(l ...int) int {
	size := defaultSize
	if len(l) > 0 {
		size = l[0]
	}
	return size
}

// String generate optional length nanoid, use const by default
func String(l ...int) string {
	size := getSize(l...)
	return gonanoid.MustGenerate(consts.LowerUpper, size)
}

// Lower generate optional length nanoid, use const by default
func Lower(l ...int) string {
	size := getSize(l...)
	return gonanoid.MustGenerate(consts.Lowercase, size)
}

// Number generate optional length nanoid, use const by default
func Number(l ...int) string {
	size := getSize(l...)
	return gonanoid.MustGenerate(consts.Number, size)
}

// PrimaryKey generates an alphanumeric primary key.
func PrimaryKey(l ...int) string {
	size := consts.PrimaryKeySize
	if len(l) > 0 {
		size = l[0]
	}
	return gonanoid.MustGenerate(consts.PrimaryKey, size)
}

// IsPrimaryKey verify is primary key
func IsPrimaryKey(id string) bool {
	if len(id) != consts.PrimaryKeySize {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(consts.PrimaryKey, r) {
			return false
		}
	}
	return true
}
