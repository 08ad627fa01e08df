package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateNickname(t *testing.T) {
	t.Parallel()

	for range 20 {
		name := GenerateNickname()
		assert.NotEmpty(t, name)
		assert.Contains(t, name, " ")
	}
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ana", sanitizeName("  Ana \n"))
	assert.Equal(t, "", sanitizeName("   "))
	assert.Equal(t, "AnaBel", sanitizeName("Ana\x00Bel"))
	assert.Equal(t, strings.Repeat("ñ", maxNameLength), sanitizeName(strings.Repeat("ñ", 40)))
}
