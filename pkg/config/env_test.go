package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvFileMissingIsNoop(t *testing.T) {
	require.NoError(t, applyEnvFile(filepath.Join(t.TempDir(), ".env")))
}

func TestApplyEnvFileSetsAndPreservesVariables(t *testing.T) {
	t.Setenv("HALCYON_ENVTEST_EXISTING", "from-environment")
	t.Cleanup(func() {
		os.Unsetenv("HALCYON_ENVTEST_NEW")
		os.Unsetenv("HALCYON_ENVTEST_QUOTED")
		os.Unsetenv("HALCYON_ENVTEST_EXPORTED")
	})

	path := filepath.Join(t.TempDir(), ".env")
	content := "# local overrides\n" +
		"HALCYON_ENVTEST_EXISTING=from-file\n" +
		"HALCYON_ENVTEST_NEW = plain value\n" +
		"HALCYON_ENVTEST_QUOTED=\"has spaces\"\n" +
		"export HALCYON_ENVTEST_EXPORTED='single'\n" +
		"not-a-pair\n" +
		"=no-key\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	require.NoError(t, applyEnvFile(path))

	assert.Equal(t, "from-environment", os.Getenv("HALCYON_ENVTEST_EXISTING"))
	assert.Equal(t, "plain value", os.Getenv("HALCYON_ENVTEST_NEW"))
	assert.Equal(t, "has spaces", os.Getenv("HALCYON_ENVTEST_QUOTED"))
	assert.Equal(t, "single", os.Getenv("HALCYON_ENVTEST_EXPORTED"))
}

func TestUnquoteEnvValue(t *testing.T) {
	assert.Equal(t, "bare", unquoteEnvValue("  bare  "))
	assert.Equal(t, "quoted", unquoteEnvValue(`"quoted"`))
	assert.Equal(t, "quoted", unquoteEnvValue("'quoted'"))
	assert.Equal(t, `"`, unquoteEnvValue(`"`))
}
