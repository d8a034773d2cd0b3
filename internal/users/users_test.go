package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestBuildName(t *testing.T) {
	assert.Nil(t, buildName(nil, nil))
	assert.Nil(t, buildName(strptr("  "), strptr("")))

	got := buildName(strptr("Ada"), nil)
	if assert.NotNil(t, got) {
		assert.Equal(t, "Ada", *got)
	}

	got = buildName(strptr(" Ada "), strptr(" Lovelace "))
	if assert.NotNil(t, got) {
		assert.Equal(t, "Ada Lovelace", *got)
	}

	got = buildName(nil, strptr("Lovelace"))
	if assert.NotNil(t, got) {
		assert.Equal(t, "Lovelace", *got)
	}
}
