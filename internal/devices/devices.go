// Package devices detects attached RTL-SDR dongles by shelling out to
// rtl_test. The device index is external and immutable: it is
// re-probed on demand, never mutated by any other component.
package devices

import (
	"bufio"
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/unipheas/intercept/internal/model"
)

// probeTimeout bounds how long the rtl_test enumeration shell-out may
// run; rtl_test with no device present still blocks briefly opening
// the USB bus, so the probe gets a little more headroom than the
// sub-second tool-presence probe in package tools.
const probeTimeout = 3 * time.Second

// deviceLine matches rtl_test -t output lines of the form:
//
//	  0:  Realtek, RTL2838UHIDIR, SN: 00000001
var deviceLine = regexp.MustCompile(`^\s*(\d+):\s*([^,]*),\s*([^,]*),\s*SN:\s*(\S*)`)

// Probe runs `rtl_test -t` and parses the device list it prints to
// stderr. If the binary is absent or the probe fails, it returns an
// empty, non-nil slice rather than an error: an empty device list is a
// normal, displayable state, not a fault.
func Probe(ctx context.Context) []model.Device {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	path, err := exec.LookPath("rtl_test")
	if err != nil {
		return []model.Device{}
	}

	cmd := exec.CommandContext(ctx, path, "-t")
	out, _ := cmd.CombinedOutput()

	devs := []model.Device{}
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		m := deviceLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		name := strings.TrimSpace(m[2]) + ", " + strings.TrimSpace(m[3])
		devs = append(devs, model.Device{
			Index:  idx,
			Name:   name,
			Serial: strings.TrimSpace(m[4]),
		})
	}
	return devs
}
