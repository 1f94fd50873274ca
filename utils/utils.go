package utils

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

// IsValidSubcommand checks if the passed subcommand is supported by the parent command
func IsValidSubcommand(available []*cobra.Command, sub string) bool {
	for _, s := range available {
		if sub == s.CalledAs() || sub == s.Name() {
			return true
		}
	}
	return false
}

// TimestampedFileName returns "<YYYYmmdd_HHMMSS>_<suffix>.<ext>", matching the naming analysts
// already expect from exported slices.
func TimestampedFileName(now time.Time, suffix, extension string) string {
	return fmt.Sprintf("%s_%s.%s", now.Format("20060102_150405"), suffix, extension)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// ULID returns a lexically sortable unique identifier; ids from the same millisecond still sort
// in creation order.
func ULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Unmarshal serializes and deserializes from into object, used to move loosely typed config
// into a writer specific struct.
func Unmarshal(from, object any) error {
	reformatted, err := json.Marshal(from)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(reformatted, object); err != nil {
		return fmt.Errorf("error unmarshalling properties: %s", err)
	}

	return nil
}

// UnmarshalFile reads a JSON or YAML file into dest; YAML is detected by extension.
func UnmarshalFile(file string, dest any) error {
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", file)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("file not found: %s", err)
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return fmt.Errorf("failed to convert yaml file %s: %s", file, err)
		}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal file[%s]: %s", file, err)
	}

	return nil
}
