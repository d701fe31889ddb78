package singleinstance

import (
	"os"
	"strconv"
)

// The annotator's resident band sits above the OCR tool's so both can run on
// one desktop.
const (
	defaultPortStart = 49610
	defaultPortEnd   = 49660

	minUserPort = 1024
	maxPort     = 65535
)

// PortRange returns the inclusive band of loopback ports the resident may
// bind and run-once clients scan. SINGLEINSTANCE_PORT_START and
// SINGLEINSTANCE_PORT_END override the defaults. A reversed band is
// reordered and both ends are kept within the unprivileged range.
func PortRange() (start, end int) {
	start = envPort("SINGLEINSTANCE_PORT_START", defaultPortStart)
	end = envPort("SINGLEINSTANCE_PORT_END", defaultPortEnd)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envPort(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return min(max(n, minUserPort), maxPort)
}
