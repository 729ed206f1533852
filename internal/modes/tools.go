package modes

import (
	"context"
	"fmt"
	"time"

	"github.com/unipheas/intercept/internal/tools"
)

// requireTools probes the given mode's registry entries and returns an
// error naming the first missing required tool, or nil if every
// required tool is present. Bounded to a few hundred milliseconds so a
// start request never stalls on a wedged PATH entry.
func requireTools(mode string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	present := make(map[string]bool)
	for _, s := range tools.Probe(ctx) {
		present[s.Binary] = s.Present
	}

	for _, t := range tools.ForMode(mode) {
		if t.Required && !present[t.Binary] {
			return fmt.Errorf("%s not found (%s)", t.Binary, t.InstallHint())
		}
	}
	return nil
}
