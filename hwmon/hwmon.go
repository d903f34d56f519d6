// Package hwmon reads GPU sensors exposed by the kernel's hwmon interface.
package hwmon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Reading is one sensor sample. Missing sensors read as zero.
type Reading struct {
	Temperature float64
	FanPercent  float64
	PowerWatts  float64
}

var ErrNoSensors = errors.New("hwmon: no sensors for device")

// Sysfs reads /sys/class/drm/cardN/device/hwmon/hwmonM.
type Sysfs struct {
	root string
}

// NewSysfs returns a reader rooted at root, normally /sys/class/drm.
func NewSysfs(root string) *Sysfs {
	if root == "" {
		root = "/sys/class/drm"
	}
	return &Sysfs{root: root}
}

// Read samples the sensors of drm card index.
func (s *Sysfs) Read(index int) (Reading, error) {
	dir, err := s.hwmonDir(index)
	if err != nil {
		return Reading{}, err
	}

	var r Reading
	found := false
	if v, err := readInt(filepath.Join(dir, "temp1_input")); err == nil {
		r.Temperature = float64(v) / 1000
		found = true
	}
	if pwm, err := readInt(filepath.Join(dir, "pwm1")); err == nil {
		pwmMax, err := readInt(filepath.Join(dir, "pwm1_max"))
		if err != nil || pwmMax == 0 {
			pwmMax = 255
		}
		r.FanPercent = float64(pwm) * 100 / float64(pwmMax)
		found = true
	}
	if v, err := readInt(filepath.Join(dir, "power1_average")); err == nil {
		r.PowerWatts = float64(v) / 1e6
		found = true
	}
	if !found {
		return Reading{}, fmt.Errorf("%w: card%d", ErrNoSensors, index)
	}
	return r, nil
}

func (s *Sysfs) hwmonDir(index int) (string, error) {
	base := filepath.Join(s.root, fmt.Sprintf("card%d", index), "device", "hwmon")
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", fmt.Errorf("%w: card%d: %v", ErrNoSensors, index, err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "hwmon") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: card%d", ErrNoSensors, index)
	}
	sort.Strings(names)
	return filepath.Join(base, names[0]), nil
}

func readInt(path string) (int64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
}
