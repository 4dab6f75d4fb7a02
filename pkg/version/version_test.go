package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GitCommit, info.GitCommit)
	assert.Equal(t, BuildTime, info.BuildTime)
	assert.Contains(t, info.GoVersion, "go")
}

func TestInfo_String(t *testing.T) {
	info := Info{
		Version:   "1.0.0",
		GitCommit: "abc123",
		BuildTime: "Sun Aug 25 09:34:29 AM UTC 2025",
		GoVersion: "go1.25.1",
	}

	expected := "Version: 1.0.0, GitCommit: abc123, BuildTime: Sun Aug 25 09:34:29 AM UTC 2025, GoVersion: go1.25.1"
	assert.Equal(t, expected, info.String())
}

func TestInfo_JSON(t *testing.T) {
	info := Info{
		Version:   "1.0.0",
		GitCommit: "abc123",
		BuildTime: "Sun Aug 25 09:34:29 AM UTC 2025",
		GoVersion: "go1.25.1",
	}

	jsonString, err := info.JSON()
	require.NoError(t, err)

	var parsed Info
	require.NoError(t, json.Unmarshal([]byte(jsonString), &parsed))
	assert.Equal(t, info, parsed)

	assert.Contains(t, jsonString, `"version"`)
	assert.Contains(t, jsonString, `"gitCommit"`)
	assert.Contains(t, jsonString, `"buildTime"`)
	assert.Contains(t, jsonString, `"goVersion"`)
}
