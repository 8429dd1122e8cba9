// control/ioconfig.go
// Author: momentics <momentics@gmail.com>
//
// Loader for the reactor's I/O configuration file, per spec.md §6:
// consumed at reactor startup, written by a calibration tool, either a
// plain "key=value" form with keys max-io-requests/num-io-queues, or a
// shell env-file form with a single SEASTAR_IO="--max-io-requests=N
// --num-io-queues=M" line.

package control

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IOConfig holds the calibrated AIO tuning values spec.md §6 names.
type IOConfig struct {
	MaxIORequests int
	NumIOQueues   int
}

// DefaultIOConfigPath returns $HOME/.config/<app>/io.conf.
func DefaultIOConfigPath(app string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", app, "io.conf")
}

// LoadIOConfig reads path, recognizing both the plain key=value form
// and the SEASTAR_IO="--flag=value ..." env-file form. A missing file
// is not an error: it returns a zero-value IOConfig so callers fall
// back to reactor defaults.
func LoadIOConfig(path string) (IOConfig, error) {
	var cfg IOConfig
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "SEASTAR_IO=") {
			if err := parseSeastarIOLine(line, &cfg); err != nil {
				return cfg, err
			}
			continue
		}
		if err := parseKeyValueLine(line, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, scanner.Err()
}

func parseKeyValueLine(line string, cfg *IOConfig) error {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return fmt.Errorf("control: malformed io.conf line %q", line)
	}
	return applyIOKey(strings.TrimSpace(key), strings.TrimSpace(value), cfg)
}

func parseSeastarIOLine(line string, cfg *IOConfig) error {
	_, rhs, ok := strings.Cut(line, "=")
	if !ok {
		return fmt.Errorf("control: malformed SEASTAR_IO line %q", line)
	}
	rhs = strings.Trim(strings.TrimSpace(rhs), `"`)
	for _, field := range strings.Fields(rhs) {
		field = strings.TrimPrefix(field, "--")
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		if err := applyIOKey(key, value, cfg); err != nil {
			return err
		}
	}
	return nil
}

func applyIOKey(key, value string, cfg *IOConfig) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("control: io.conf key %q: %w", key, err)
	}
	switch key {
	case "max-io-requests":
		cfg.MaxIORequests = n
	case "num-io-queues":
		cfg.NumIOQueues = n
	}
	return nil
}
