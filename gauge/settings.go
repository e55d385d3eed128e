package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"

	"github.com/itohio/boostgauge/pkg/link"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
// Gauge changes take effect on the next connect.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createGaugeTab(state),
		createSensorTab(state),
		createTrendTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

func saveConfig(state *appState) {
	state.cfg.Gauge.Normalize()
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(errors.Wrap(err, "failed to save config"), state.window)
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := link.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected
				}
				state.cfg.Serial.Port = selectedPort
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Serial", form)
}

// createGaugeTab creates the gauge behaviour tab.
func createGaugeTab(state *appState) *container.TabItem {
	g := &state.cfg.Gauge

	boostPeriodEntry := widget.NewEntry()
	boostPeriodEntry.SetText(g.BoostPeriod.String())

	oilPeriodEntry := widget.NewEntry()
	oilPeriodEntry.SetText(g.OilPeriod.String())

	windowEntry := widget.NewEntry()
	windowEntry.SetText(strconv.Itoa(g.SampleWindowSize))

	normalEntry := widget.NewEntry()
	normalEntry.SetText(fmt.Sprintf("%.0f", g.Thresholds.Normal))

	hotEntry := widget.NewEntry()
	hotEntry.SetText(fmt.Sprintf("%.0f", g.Thresholds.Hot))

	widthEntry := widget.NewEntry()
	widthEntry.SetText(strconv.Itoa(g.DisplayWidth))

	numericCheck := widget.NewCheck("", nil)
	numericCheck.SetChecked(g.NumericBoost)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Boost Period", Widget: boostPeriodEntry},
			{Text: "Oil Period", Widget: oilPeriodEntry},
			{Text: "Oil Average Samples", Widget: windowEntry},
			{Text: "Normal From (°F)", Widget: normalEntry},
			{Text: "Hot Above (°F)", Widget: hotEntry},
			{Text: "Bar Width (px)", Widget: widthEntry},
			{Text: "Numeric Boost", Widget: numericCheck},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(boostPeriodEntry.Text); err == nil {
				g.BoostPeriod = d
			}
			if d, err := time.ParseDuration(oilPeriodEntry.Text); err == nil {
				g.OilPeriod = d
			}
			if n, err := strconv.Atoi(windowEntry.Text); err == nil {
				g.SampleWindowSize = n
			}
			if v, err := strconv.ParseFloat(normalEntry.Text, 64); err == nil {
				g.Thresholds.Normal = v
			}
			if v, err := strconv.ParseFloat(hotEntry.Text, 64); err == nil {
				g.Thresholds.Hot = v
			}
			if n, err := strconv.Atoi(widthEntry.Text); err == nil {
				g.DisplayWidth = n
			}
			g.NumericBoost = numericCheck.Checked
			saveConfig(state)
		},
	}

	return container.NewTabItem("Gauge", form)
}

// createSensorTab creates the sensor calibration tab.
func createSensorTab(state *appState) *container.TabItem {
	g := &state.cfg.Gauge

	offsetEntry := widget.NewEntry()
	offsetEntry.SetText(fmt.Sprintf("%.3f", g.BoostOffset))

	resistorEntry := widget.NewEntry()
	resistorEntry.SetText(fmt.Sprintf("%.0f", g.SeriesResistance))

	aEntry := widget.NewEntry()
	aEntry.SetText(strconv.FormatFloat(g.Steinhart.A, 'e', -1, 64))

	bEntry := widget.NewEntry()
	bEntry.SetText(strconv.FormatFloat(g.Steinhart.B, 'e', -1, 64))

	cEntry := widget.NewEntry()
	cEntry.SetText(strconv.FormatFloat(g.Steinhart.C, 'e', -1, 64))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Boost Offset (psi)", Widget: offsetEntry},
			{Text: "Series Resistor (Ω)", Widget: resistorEntry},
			{Text: "Steinhart A", Widget: aEntry},
			{Text: "Steinhart B", Widget: bEntry},
			{Text: "Steinhart C", Widget: cEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(offsetEntry.Text, 64); err == nil {
				g.BoostOffset = v
			}
			if v, err := strconv.ParseFloat(resistorEntry.Text, 64); err == nil {
				g.SeriesResistance = v
			}
			if v, err := strconv.ParseFloat(aEntry.Text, 64); err == nil {
				g.Steinhart.A = v
			}
			if v, err := strconv.ParseFloat(bEntry.Text, 64); err == nil {
				g.Steinhart.B = v
			}
			if v, err := strconv.ParseFloat(cEntry.Text, 64); err == nil {
				g.Steinhart.C = v
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Sensors", form)
}

// createTrendTab creates the history configuration tab.
func createTrendTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(state.cfg.Trend.Window.String())

	thresholdEntry := widget.NewEntry()
	thresholdEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Trend.BoostThreshold))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window", Widget: windowEntry},
			{Text: "Boost Event Threshold (psi)", Widget: thresholdEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(windowEntry.Text); err == nil {
				state.cfg.Trend.Window = d
			}
			if v, err := strconv.ParseFloat(thresholdEntry.Text, 64); err == nil {
				state.cfg.Trend.BoostThreshold = v
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Trend", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	m := &state.cfg.Mock

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.2f", m.NoiseLevel))

	boostPeakEntry := widget.NewEntry()
	boostPeakEntry.SetText(fmt.Sprintf("%.1f", m.BoostPeak))

	vacuumPeakEntry := widget.NewEntry()
	vacuumPeakEntry.SetText(fmt.Sprintf("%.1f", m.VacuumPeak))

	cycleEntry := widget.NewEntry()
	cycleEntry.SetText(m.CyclePeriod.String())

	startTicksEntry := widget.NewEntry()
	startTicksEntry.SetText(strconv.FormatUint(uint64(m.StartTicks), 10))

	faultAfterEntry := widget.NewEntry()
	faultAfterEntry.SetText(m.FaultAfter.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Noise Level (psi)", Widget: noiseEntry},
			{Text: "Boost Peak (psi)", Widget: boostPeakEntry},
			{Text: "Vacuum Peak (psi)", Widget: vacuumPeakEntry},
			{Text: "Throttle Cycle", Widget: cycleEntry},
			{Text: "Start Ticks", Widget: startTicksEntry},
			{Text: "Thermistor Fault After", Widget: faultAfterEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				m.NoiseLevel = v
			}
			if v, err := strconv.ParseFloat(boostPeakEntry.Text, 64); err == nil {
				m.BoostPeak = v
			}
			if v, err := strconv.ParseFloat(vacuumPeakEntry.Text, 64); err == nil {
				m.VacuumPeak = v
			}
			if d, err := time.ParseDuration(cycleEntry.Text); err == nil {
				m.CyclePeriod = d
			}
			if v, err := strconv.ParseUint(startTicksEntry.Text, 10, 32); err == nil {
				m.StartTicks = uint32(v)
			}
			if d, err := time.ParseDuration(faultAfterEntry.Text); err == nil {
				m.FaultAfter = d
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Mock", form)
}
