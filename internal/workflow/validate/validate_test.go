package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestICD10(t *testing.T) {
	assert.NoError(t, ICD10("J45.909"))
	assert.NoError(t, ICD10("E11"))
	assert.Error(t, ICD10("not-a-code"))
	assert.Error(t, ICD10("45.909"))
}

func TestWhitelist(t *testing.T) {
	assert.NoError(t, Whitelist(nil, "anything"))
	assert.NoError(t, Whitelist([]string{"Diagnosis", "Notes"}, "diagnosis"))
	assert.Error(t, Whitelist([]string{"Diagnosis"}, "Notes"))
}

func TestInputLength(t *testing.T) {
	assert.NoError(t, InputLength("hello", 0, 0))
	assert.NoError(t, InputLength("hello", 3, 10))
	assert.Error(t, InputLength("hi", 3, 10))
	assert.Error(t, InputLength("this is too long", 0, 5))
}

func TestResponse(t *testing.T) {
	assert.NoError(t, Response("a plain diagnosis summary"))
	assert.Error(t, Response("<script>alert(1)</script>"))
	assert.Error(t, Response(strings.Repeat("a", (1<<20)+1)))
}
