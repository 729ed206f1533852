package process

import (
	"context"
	"os/exec"
	"time"
)

// decoderBinaries is every external binary a mode controller might
// spawn, used by KillAllDecoders to catch orphans left running outside
// this server's own supervision (e.g. from a prior crashed run).
// dump1090 is deliberately excluded: it is often a host-provided
// service running independently of INTERCEPT and must survive a
// kill-all.
var decoderBinaries = []string{
	"rtl_fm", "multimon-ng", "rtl_433",
	"airodump-ng", "aireplay-ng", "airmon-ng",
	"hcxdumptool", "hcitool", "bluetoothctl",
	"rtl_adsb",
}

// killallTimeout bounds the whole broadcast termination, so a hung
// pkill invocation can never wedge the /killall route.
const killallTimeout = 5 * time.Second

// KillAllDecoders sends SIGTERM (via pkill) to every process named
// after a decoder binary, excluding host-provided services. It is a
// blunter instrument than the per-mode Slot.Stop: it is meant to catch
// processes this server did not itself launch, or that survived a
// crashed supervisor. Each binary is terminated independently so one
// absent process never blocks termination of the rest.
func KillAllDecoders() []string {
	ctx, cancel := context.WithTimeout(context.Background(), killallTimeout)
	defer cancel()

	killed := make([]string, 0, len(decoderBinaries))
	for _, name := range decoderBinaries {
		if err := exec.CommandContext(ctx, "pkill", "-x", name).Run(); err == nil {
			killed = append(killed, name)
		}
	}
	return killed
}
