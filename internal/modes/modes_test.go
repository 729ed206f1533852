package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return logger.Sugar()
}

func TestPagerStartRejectsInvalidFrequency(t *testing.T) {
	p := NewPager(testLogger(t))
	out := p.Start(PagerParams{
		Frequency: "not-a-number",
		Gain:      "auto",
		Squelch:   "0",
		PPM:       "0",
		Device:    "0",
		Protocols: []string{"POCSAG512"},
	})
	require.Error(t, out.ValidationErr)
	assert.False(t, out.Started())
}

func TestPagerStartRejectsEmptyProtocols(t *testing.T) {
	p := NewPager(testLogger(t))
	out := p.Start(PagerParams{
		Frequency: "152.0075",
		Gain:      "auto",
		Squelch:   "0",
		PPM:       "0",
		Device:    "0",
	})
	require.Error(t, out.ValidationErr)
}

func TestPagerStartRejectsUnknownProtocol(t *testing.T) {
	p := NewPager(testLogger(t))
	out := p.Start(PagerParams{
		Frequency: "152.0075",
		Gain:      "auto",
		Squelch:   "0",
		PPM:       "0",
		Device:    "0",
		Protocols: []string{"POCSAG1200", "--not-a-protocol"},
	})
	require.Error(t, out.ValidationErr)
}

func TestPagerStopWhenNotRunning(t *testing.T) {
	p := NewPager(testLogger(t))
	out := p.Stop()
	assert.False(t, out.WasRunning)
}

func TestSensorStartRejectsBadGain(t *testing.T) {
	s := NewSensor(testLogger(t))
	out := s.Start(SensorParams{Frequency: "433.92", Gain: "not-a-gain", Device: "0"})
	require.Error(t, out.ValidationErr)
}

func TestSensorStartRejectsBadDevice(t *testing.T) {
	s := NewSensor(testLogger(t))
	out := s.Start(SensorParams{Frequency: "433.92", Gain: "auto", Device: "-1"})
	require.Error(t, out.ValidationErr)
}

func TestWifiStartRejectsMissingInterface(t *testing.T) {
	w := NewWifi(testLogger(t), nil)
	out := w.StartScan(ScanParams{})
	require.Error(t, out.ValidationErr)
}

func TestWifiStartRejectsBadChannel(t *testing.T) {
	w := NewWifi(testLogger(t), nil)
	out := w.StartScan(ScanParams{Interface: "wlan0mon", Channel: "9001"})
	require.Error(t, out.ValidationErr)
}

func TestWifiDeauthRejectsBadMAC(t *testing.T) {
	w := NewWifi(testLogger(t), nil)
	err := w.Deauth(DeauthParams{BSSID: "not-a-mac", Interface: "wlan0mon"})
	assert.Error(t, err)
}

func TestWifiDeauthRejectsMissingInterface(t *testing.T) {
	w := NewWifi(testLogger(t), nil)
	err := w.Deauth(DeauthParams{BSSID: "AA:BB:CC:DD:EE:FF", Interface: ""})
	assert.Error(t, err)
}

func TestWifiDeauthAcceptsBroadcastDefaultClient(t *testing.T) {
	w := NewWifi(testLogger(t), nil)
	err := w.Deauth(DeauthParams{BSSID: "AA:BB:CC:DD:EE:FF", Interface: "wlan0mon"})
	assert.NoError(t, err)
}

func TestWifiCaptureHandshakeRejectsBadChannel(t *testing.T) {
	w := NewWifi(testLogger(t), nil)
	_, out := w.CaptureHandshake("AA:BB:CC:DD:EE:FF", "not-a-channel", "wlan0mon")
	require.Error(t, out.ValidationErr)
}

func TestWifiHandshakeStatusRejectsPathOutsidePrefix(t *testing.T) {
	w := NewWifi(testLogger(t), nil)
	_, err := w.HandshakeStatusCheck("/tmp/other_prefix-01.cap", "AA:BB:CC:DD:EE:FF")
	assert.Error(t, err)
}

func TestWifiMonitorRejectsMissingInterface(t *testing.T) {
	w := NewWifi(testLogger(t), nil)
	_, _, err := w.Monitor(MonitorParams{Action: "enable"})
	assert.Error(t, err)
}

func TestBluetoothStartRejectsUnknownBackend(t *testing.T) {
	b := NewBluetooth(testLogger(t), nil)
	out := b.Start(BluetoothParams{Backend: "nonsense"})
	require.Error(t, out.ValidationErr)
}

func TestAdsbStartRejectsBadDevice(t *testing.T) {
	a := NewAdsb(testLogger(t))
	out := a.Start(AdsbParams{Device: "not-a-number"})
	require.Error(t, out.ValidationErr)
}

func TestIridiumStartRejectsOutOfBandFrequency(t *testing.T) {
	i := NewIridium(testLogger(t))
	out := i.Start(IridiumParams{Frequency: "433.92", Gain: "auto", Device: "0"})
	require.Error(t, out.ValidationErr)
}

func TestIridiumStartRejectsBadGain(t *testing.T) {
	i := NewIridium(testLogger(t))
	out := i.Start(IridiumParams{Frequency: "1621.0", Gain: "way-too-high-9000", Device: "0"})
	require.Error(t, out.ValidationErr)
}

func TestSatellitePredictRejectsBadLatitude(t *testing.T) {
	s := NewSatellite(testLogger(t))
	_, err := s.Predict(PredictParams{Lat: 200, Lon: 0, Hours: 1, MinEl: 10})
	assert.Error(t, err)
}

func TestSatellitePositionDefaultsToBuiltInSet(t *testing.T) {
	s := NewSatellite(testLogger(t))
	positions, err := s.Position(PositionParams{Lat: 51.5, Lon: -0.1})
	require.NoError(t, err)
	assert.NotEmpty(t, positions)
}
