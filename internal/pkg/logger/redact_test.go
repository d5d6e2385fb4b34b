package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}

func TestRedactToken(t *testing.T) {
	assert.Equal(t, "a1b2c3***", RedactToken("a1b2c3d4-e5f6"))
	assert.Equal(t, "***", RedactToken("short"))
	assert.Equal(t, "***", RedactToken(""))
}
