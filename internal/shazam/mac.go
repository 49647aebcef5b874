package shazam

import (
	"crypto/rand"
	"encoding/binary"
	"net"
	"sync"
)

// processNode returns a 48-bit node identifier derived from the first
// interface carrying a real hardware address, or a random 48-bit value (with
// its multicast bit set, per RFC 4122 §4.5) if none is found — mirroring
// Python's uuid.getnode() fallback behavior in virtualized environments
// where no MAC is available. The value is computed on the first call and
// returned unchanged for the rest of the process, as uuid.getnode() does.
func processNode() uint64 { return cachedNode() }

var cachedNode = sync.OnceValue(func() uint64 {
	if ifaces, err := net.Interfaces(); err == nil {
		for _, iface := range ifaces {
			if len(iface.HardwareAddr) == 6 {
				var b [8]byte
				copy(b[2:], iface.HardwareAddr)
				return binary.BigEndian.Uint64(b[:])
			}
		}
	}

	var b [6]byte
	_, _ = rand.Read(b[:])
	b[0] |= 0x01 // multicast bit set marks this as a software-generated address
	var full [8]byte
	copy(full[2:], b[:])
	return binary.BigEndian.Uint64(full[:])
})
