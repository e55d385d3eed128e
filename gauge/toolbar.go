package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/itohio/boostgauge/pkg/link"
	"github.com/itohio/boostgauge/pkg/panel"
)

// createToolbar creates the application toolbar with Connect, Settings and
// Reset Range buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	// Resetting restores full bar sensitivity after a boost spike
	resetBtn := widget.NewButtonWithIcon("Reset range", theme.ViewRefreshIcon(), func() {
		handleResetRange(state)
	})
	resetBtn.Disable()
	state.resetBtn = resetBtn

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn), // left
		container.NewHBox(resetBtn),                // right
		nil,                                        // center (spacer)
	)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.currentCluster() != nil {
		closeChain(state)
		updateConnectedState(state, false)
		log.WithField("source", state.source()).Info("disconnected")
		return
	}

	var device link.Device
	if state.useMock {
		device = link.NewMock(&state.cfg.Mock, state.cfg.Gauge)
	} else {
		device = link.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, link.DefaultBufferSize)
	}

	state.connectBtn.Disable()

	// Waiting for the first sample must not block the UI thread
	go func() {
		err := startChain(state, device)
		fyne.Do(func() {
			state.connectBtn.Enable()
			if err != nil {
				dialog.ShowError(errors.Wrapf(err, "failed to connect to %s", state.source()), state.window)
				return
			}
			updateConnectedState(state, true)
		})
		if err == nil {
			log.WithField("source", state.source()).Info("connected")
		}
	}()
}

// handleResetRange restores the boost range seeds.
func handleResetRange(state *appState) {
	c := state.currentCluster()
	if c == nil {
		return
	}
	c.ResetRange()
}

// updateConnectedState updates the toolbar and status line.
func updateConnectedState(state *appState, connected bool) {
	if connected {
		state.connectBtn.SetIcon(theme.LogoutIcon())
		state.resetBtn.Enable()
	} else {
		state.connectBtn.SetIcon(theme.LoginIcon())
		state.resetBtn.Disable()
		state.gaugeWidget.SetStatus(panel.Status{}.String())
		state.gaugeWidget.Refresh()
	}
}
