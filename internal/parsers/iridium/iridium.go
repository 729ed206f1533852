// Package iridium implements INTERCEPT's placeholder Iridium burst
// generator. Real Iridium demodulation is not implemented; this
// preserves the event shape a future real decoder would need to fill
// in, tagging every burst demo:true so the UI never confuses it for a
// genuine capture.
package iridium

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"

	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/model"
)

// BurstProbability is the chance, per read cycle, that a synthetic
// burst fires while the underlying rtl_fm process is running.
const BurstProbability = 0.01

// ReadCycle is how often the demo generator samples its coin flip,
// matching the cadence a real stdout-line read loop would use.
const ReadCycle = 250 * time.Millisecond

// Demo runs the synthetic burst generator until ctx is cancelled.
func Demo(ctx context.Context, freqMHz float64, rng *rand.Rand, bus *eventbus.Bus) {
	ticker := time.NewTicker(ReadCycle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if rng.Float64() < BurstProbability {
			bus.Publish(syntheticBurst(freqMHz, rng))
		}
	}
}

func syntheticBurst(freqMHz float64, rng *rand.Rand) model.IridiumBurst {
	payload := make([]byte, 8)
	rng.Read(payload)
	return model.IridiumBurst{
		Type:      "burst",
		Demo:      true,
		Time:      time.Now().Format("15:04:05"),
		Frequency: fmt.Sprintf("%.3f", freqMHz),
		Data:      hex.EncodeToString(payload),
	}
}
