package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/portfolio-engine/config"
)

func TestDefault_ReferenceValues(t *testing.T) {
	th := config.Default()

	assert.Equal(t, 0.6, th.FuzzyMatch)
	assert.Equal(t, -10.0, th.StatusCostVariancePct)
	assert.Equal(t, 1.2, th.BurnProjectionFactor)
	assert.Equal(t, 30, th.ScheduleMismatchDays)
	assert.Equal(t, 20.0, th.ValueLeakagePct)
	assert.Equal(t, 60.0, th.CoverageCriticalPct)
	assert.Equal(t, 80.0, th.CoverageWarningPct)
	assert.Equal(t, 10, th.TopBottomMinProjects)
	assert.Equal(t, 0.3, th.OverBudgetRatio)
	assert.Equal(t, 0.5, th.TroubledRatio)
}

func TestLoad_OverridesOnlyNamedFields(t *testing.T) {
	// GIVEN: A YAML file overriding two thresholds
	// WHEN: Loading it
	// THEN: The named fields change and everything else keeps its default

	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	body := "fuzzy_match: 0.75\nvalue_leakage_pct: 35\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	th, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.75, th.FuzzyMatch)
	assert.Equal(t, 35.0, th.ValueLeakagePct)

	def := config.Default()
	assert.Equal(t, def.BurnProjectionFactor, th.BurnProjectionFactor)
	assert.Equal(t, def.TopBottomMinProjects, th.TopBottomMinProjects)
	assert.Equal(t, def.TaskHygieneFloorPct, th.TaskHygieneFloorPct)
}

func TestLoad_MissingFile_ReturnsDefaultsAndError(t *testing.T) {
	th, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, config.Default(), th)
}

func TestLoad_MalformedYAML_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fuzzy_match: [not a number"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parse thresholds")
}
