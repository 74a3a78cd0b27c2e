// romload.go - ROM file loading.
//
// Grounded on the same file_io.go host-read pattern as snapshot.go,
// narrowed to a single read-only load with no write side.

package z180emu

import (
	"fmt"
	"os"
)

// LoadROMFile reads path and returns its contents, truncated to romSize if
// longer. The caller (Motherboard construction) handles zero-padding a
// shorter image via MMU.LoadROM.
func LoadROMFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("romload: %w", err)
	}
	if len(data) > romSize {
		data = data[:romSize]
	}
	return data, nil
}
