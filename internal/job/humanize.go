package job

import "fmt"

// humanizeBytes formats a byte count with binary units
func humanizeBytes(n float64) string {
	for _, unit := range []string{"B", "KiB", "MiB", "GiB"} {
		if n < 1024 {
			return fmt.Sprintf("%.2f %s", n, unit)
		}
		n /= 1024
	}
	return fmt.Sprintf("%.2f TiB", n)
}

// humanizeBytesPerSec formats a throughput, or "" when unknown
func humanizeBytesPerSec(v float64) string {
	if v <= 0 {
		return ""
	}
	return humanizeBytes(v) + "/s"
}

// humanizeSeconds formats a duration like "1h 2m 3s"; negative means
// unknown and yields ""
func humanizeSeconds(sec int) string {
	if sec < 0 {
		return ""
	}
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
