package modes

import (
	"io"
	"os"
	"strings"

	"github.com/google/gopacket/pcapgo"
)

// countCapturedPackets opens a capture file written by airodump-ng or
// hcxdumptool and counts frames, without needing libpcap: pcapgo reads
// both the legacy pcap format (.cap) and pcapng (.pcapng) in pure Go.
// A file this process doesn't recognize yields 0 rather than an error,
// since packet count here is a diagnostic, not a correctness gate.
func countCapturedPackets(file string) int {
	f, err := os.Open(file)
	if err != nil {
		return 0
	}
	defer f.Close()

	var next func() error
	if strings.HasSuffix(file, ".pcapng") {
		r, err := pcapgo.NewNgReader(f, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return 0
		}
		next = func() error { _, _, err := r.ZeroCopyReadPacketData(); return err }
	} else {
		r, err := pcapgo.NewReader(f)
		if err != nil {
			return 0
		}
		next = func() error { _, _, err := r.ZeroCopyReadPacketData(); return err }
	}

	count := 0
	for {
		if err := next(); err != nil {
			if err != io.EOF {
				return count
			}
			break
		}
		count++
	}
	return count
}
