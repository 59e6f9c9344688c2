package dotmap

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	v := Version()
	assert.NotEmpty(t, v)
	assert.True(t, v == "dev" || strings.HasPrefix(v, "v"), "want dev or a v-prefixed release, got %s", v)
}

func TestCommit(t *testing.T) {
	c := Commit()
	assert.NotEmpty(t, c)
	if c == "unknown" {
		return
	}
	assert.GreaterOrEqual(t, len(c), 7, "short hashes have at least 7 characters")
	for _, ch := range c {
		assert.True(t, (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f'), "commit %s is not hex", c)
	}
}

func TestBuildTime(t *testing.T) {
	bt := BuildTime()
	assert.NotEmpty(t, bt)
	if bt != "unknown" {
		assert.Contains(t, bt, "T", "build time %s is not RFC3339", bt)
	}
}

func TestGoVersion(t *testing.T) {
	assert.Equal(t, runtime.Version(), GoVersion())
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	assert.Equal(t, "dotmap/"+Version(), ua)
	assert.NotContains(t, ua, " ")
	assert.NotContains(t, ua, "\n")
}

func TestBuildInfo(t *testing.T) {
	info := BuildInfo()
	for _, want := range []string{"Version: " + Version(), "Commit: " + Commit(), "Build Time: " + BuildTime(), "Go Version: " + GoVersion()} {
		assert.Contains(t, info, want)
	}
	assert.Len(t, strings.Split(info, "\n"), 4)
}
