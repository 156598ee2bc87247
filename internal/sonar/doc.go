// Package sonar prepares side-scan sonar data for simulation: it matches
// pings against the vehicle navigation track, moves ping positions from the
// navigation reference to the sensor, renders waterfall images and describes
// the water column sound speed.
package sonar
