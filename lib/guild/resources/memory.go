package resources

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Memory is a byte count. 0 means any amount.
type Memory uint64

// ParseMemory accepts a plain byte count or a human readable size such as "8GB" or "512MiB".
func ParseMemory(text string) (Memory, error) {
	if text == "" {
		return 0, nil
	}
	if n, err := strconv.ParseUint(text, 10, 64); err == nil {
		return Memory(n), nil
	}
	n, err := humanize.ParseBytes(text)
	if err != nil {
		return 0, fmt.Errorf("%w: memory %q: %v", ErrInvalidValue, text, err)
	}
	return Memory(n), nil
}

func (T Memory) String() string {
	if T == 0 {
		return "any"
	}
	return humanize.IBytes(uint64(T))
}

func (T *Memory) UnmarshalJSON(bytes []byte) error {
	// try as string
	var str string
	if err := json.Unmarshal(bytes, &str); err == nil {
		*T, err = ParseMemory(str)
		return err
	}

	// try num
	var num uint64
	if err := json.Unmarshal(bytes, &num); err != nil {
		return err
	}
	*T = Memory(num)

	return nil
}

var _ json.Unmarshaler = (*Memory)(nil)
