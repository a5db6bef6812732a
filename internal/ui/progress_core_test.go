package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPercent(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"zero stays zero", 0, 0},
		{"fifty stays fifty", 50, 50},
		{"hundred stays hundred", 100, 100},
		{"negative becomes zero", -10, 0},
		{"over hundred becomes hundred", 150, 100},
		{"fractional values work", 33.33, 33.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClampPercent(tt.input))
		})
	}
}

func TestCalculateBarCounts(t *testing.T) {
	tests := []struct {
		name       string
		percent    float64
		width      int
		wantFilled int
		wantEmpty  int
	}{
		{"zero percent", 0, 10, 0, 10},
		{"fifty percent", 50, 10, 5, 5},
		{"hundred percent", 100, 10, 10, 0},
		{"partial cell stays empty", 99.9, 10, 9, 1},
		{"over hundred is clamped", 130, 10, 10, 0},
		{"different width", 50, 20, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filled, empty := CalculateBarCounts(tt.percent, tt.width)
			assert.Equal(t, tt.wantFilled, filled, "filled count")
			assert.Equal(t, tt.wantEmpty, empty, "empty count")
		})
	}
}

func TestBuildBarString(t *testing.T) {
	assert.Equal(t, "[██░░░]", BuildBarString(2, 3, true))
	assert.Equal(t, "█████", BuildBarString(5, 0, false))
	assert.Equal(t, "[]", BuildBarString(0, 0, true))
}

func TestRenderBar(t *testing.T) {
	t.Run("zero width renders nothing", func(t *testing.T) {
		assert.Empty(t, RenderBar(50, ProgressBarConfig(0)))
	})

	t.Run("shows rounded percent", func(t *testing.T) {
		assert.Equal(t, "[█████░░░░░]  55%", RenderBar(54.6, ProgressBarConfig(10)))
	})

	t.Run("without percent", func(t *testing.T) {
		cfg := ProgressBarConfig(4)
		cfg.ShowPercent = false
		assert.Equal(t, "[████]", RenderBar(100, cfg))
	})
}

func TestProgressColorProgress(t *testing.T) {
	assert.Equal(t, ColorSecondary, ProgressColorProgress(30))
	assert.Equal(t, ColorInfo, ProgressColorProgress(55))
	assert.Equal(t, ColorInfo, ProgressColorProgress(90))
	assert.Equal(t, ColorSuccess, ProgressColorProgress(94))
}
