// Package chart renders diurnal profiles and raw instrument tables as PNG
// images with gonum/plot.
//
// DiurnalPanels stacks one panel per channel with the mean against time of
// day and an optional interquartile band. DebugPlot splits a table into an
// instrument health panel and a gas concentration panel.
package chart
