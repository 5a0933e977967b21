package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformIcons(t *testing.T) {
	seen := map[string]Platform{}
	for _, p := range AllPlatforms() {
		icon := p.Icon()
		assert.NotEqual(t, FallbackIcon, icon, "platform %s has no icon", p)
		if other, dup := seen[icon]; dup {
			t.Errorf("platforms %s and %s share icon %q", p, other, icon)
		}
		seen[icon] = p
	}
	assert.Equal(t, FallbackIcon, Platform("myspace").Icon())
}

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform(" Instagram ")
	require.NoError(t, err)
	assert.Equal(t, PlatformInstagram, p)

	_, err = ParsePlatform("friendster")
	assert.Error(t, err)
}
