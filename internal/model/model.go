// Package model holds INTERCEPT's data-model types. Where the original
// implementation carried dynamic dict records, each is given an explicit
// type here with an Extra side-channel for unrecognized external-tool
// fields, so the UI's JSON contract survives fields the parsers don't
// yet know about.
package model

import "time"

// Device is a detected RTL-SDR dongle.
type Device struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Serial string `json:"serial"`
}

// PagerMessage is a decoded POCSAG/FLEX message.
type PagerMessage struct {
	Type      string `json:"type"`
	Protocol  string `json:"protocol"`
	Address   string `json:"address"`
	Function  string `json:"function,omitempty"`
	MsgType   string `json:"msg_type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// WifiNetwork is an observed access point, keyed by BSSID.
type WifiNetwork struct {
	Type      string `json:"type"`
	Action    string `json:"action,omitempty"`
	BSSID     string `json:"bssid"`
	ESSID     string `json:"essid"`
	Channel   string `json:"channel"`
	Privacy   string `json:"privacy"`
	Cipher    string `json:"cipher"`
	Auth      string `json:"auth"`
	Power     string `json:"power"`
	Beacons   string `json:"beacons"`
	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen"`
}

// WifiClient is an observed station, keyed by MAC.
type WifiClient struct {
	Type      string `json:"type"`
	Action    string `json:"action,omitempty"`
	MAC       string `json:"mac"`
	BSSID     string `json:"bssid"`
	Power     string `json:"power"`
	Packets   string `json:"packets"`
	Probes    string `json:"probes"`
	Vendor    string `json:"vendor"`
	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen"`
}

// Tracker describes a detected anti-theft tracking tag.
type Tracker struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Risk string `json:"risk"`
}

// BluetoothDevice is an observed BT/BLE peer, keyed by MAC.
type BluetoothDevice struct {
	Type         string   `json:"type"`
	Action       string   `json:"action,omitempty"`
	MAC          string   `json:"mac"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	DeviceType   string   `json:"device_type"`
	Tracker      *Tracker `json:"tracker,omitempty"`
	RSSI         *int     `json:"rssi,omitempty"`
	LastSeen     string   `json:"last_seen"`
}

// Aircraft is an observed ADS-B contact, keyed by ICAO hex.
type Aircraft struct {
	Type     string   `json:"type"`
	ICAO     string   `json:"icao"`
	Callsign string   `json:"callsign,omitempty"`
	Altitude *float64 `json:"altitude,omitempty"`
	Speed    *float64 `json:"speed,omitempty"`
	Heading  *float64 `json:"heading,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	Squawk   string   `json:"squawk,omitempty"`
	RSSI     *float64 `json:"rssi,omitempty"`
	LastSeen time.Time `json:"last_seen"`
}

// IridiumBurst is a (demo) decoded Iridium frame.
type IridiumBurst struct {
	Type      string `json:"type"`
	Demo      bool   `json:"demo"`
	Time      string `json:"time"`
	Frequency string `json:"frequency"`
	Data      string `json:"data"`
}

// TrajectoryPoint is one elevation/azimuth sample along a satellite pass.
type TrajectoryPoint struct {
	El float64 `json:"el"`
	Az float64 `json:"az"`
}

// GroundTrackPoint is one sub-point sample.
type GroundTrackPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TrackPoint is a ground-track sample tagged with whether it lies in
// the past relative to the query time.
type TrackPoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Past bool    `json:"past"`
}

// Pass is one predicted satellite overflight.
type Pass struct {
	Satellite   string            `json:"satellite"`
	Norad       int               `json:"norad"`
	StartTime   string            `json:"startTime"`
	MaxEl       float64           `json:"maxEl"`
	Duration    int               `json:"duration"`
	Trajectory  []TrajectoryPoint `json:"trajectory"`
	GroundTrack []GroundTrackPoint `json:"groundTrack"`
	CurrentPos  GroundTrackPoint  `json:"currentPos"`
	Color       string            `json:"color"`
	SeedTLE     bool              `json:"seedTle,omitempty"`
}

// Position is a satellite's current topocentric/geocentric snapshot.
type Position struct {
	Satellite string       `json:"satellite"`
	Lat       float64      `json:"lat"`
	Lon       float64      `json:"lon"`
	Elevation float64      `json:"elevation"`
	Azimuth   float64      `json:"azimuth"`
	Distance  float64      `json:"distance"`
	Visible   bool         `json:"visible"`
	Track     []TrackPoint `json:"track,omitempty"`
	SeedTLE   bool         `json:"seedTle,omitempty"`
}
