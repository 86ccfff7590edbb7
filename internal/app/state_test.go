package app

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"litho-lamp/internal/config"
	"litho-lamp/internal/pipeline"
)

func TestStateDefaults(t *testing.T) {
	s := NewState()
	assert.Equal(t, config.Default(), s.Settings())
	assert.Empty(t, s.ImagePath())
	assert.False(t, s.Generating())
}

func TestStateEvents(t *testing.T) {
	s := NewState()

	var gotImage string
	s.On(EventImageSelected, func(data interface{}) {
		gotImage = data.(string)
	})

	var gotSettings config.Settings
	s.On(EventSettingsChanged, func(data interface{}) {
		gotSettings = data.(config.Settings)
	})

	s.SetImagePath("/tmp/photo.png")
	assert.Equal(t, "/tmp/photo.png", gotImage)
	assert.Equal(t, "/tmp/photo.png", s.ImagePath())

	cfg := config.Default()
	cfg.CoverageAngle = 180
	s.SetSettings(cfg)
	assert.Equal(t, 180.0, gotSettings.CoverageAngle)
}

func TestBeginGenerationIsExclusive(t *testing.T) {
	s := NewState()

	started := 0
	s.On(EventGenerationStarted, func(interface{}) { started++ })

	require.True(t, s.BeginGeneration())
	assert.False(t, s.BeginGeneration(), "second begin while running must fail")
	assert.True(t, s.Generating())
	assert.Equal(t, 1, started)

	s.FinishGeneration(&pipeline.Result{}, nil)
	assert.False(t, s.Generating())
	require.True(t, s.BeginGeneration())
}

func TestFinishGenerationPublishesOutcome(t *testing.T) {
	s := NewState()

	var payloads []interface{}
	s.On(EventGenerationFinished, func(data interface{}) {
		payloads = append(payloads, data)
	})

	s.BeginGeneration()
	s.FinishGeneration(nil, fmt.Errorf("boom"))

	s.BeginGeneration()
	result := &pipeline.Result{ImageClass: "balanced"}
	s.FinishGeneration(result, nil)

	require.Len(t, payloads, 2)
	assert.EqualError(t, payloads[0].(error), "boom")
	assert.Same(t, result, payloads[1])
}
