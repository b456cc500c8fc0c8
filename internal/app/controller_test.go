// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/emg_controller/internal/config"
)

func TestRunController_MockRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 350*time.Millisecond)
	defer cancel()

	err := runController(ctx, config.Default(), ControllerOptions{Mock: true, Quiet: true})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunController_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Control.Period = 0

	err := runController(context.Background(), cfg, ControllerOptions{Mock: true, Quiet: true})
	assert.Error(t, err)
}
