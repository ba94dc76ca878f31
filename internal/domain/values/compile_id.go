package values

import (
	"fmt"

	"github.com/google/uuid"
)

// CompileID uniquely identifies one compiler run.
// Carried on the compile result so downstream exporters and logs can
// correlate IR with the invocation that produced it.
type CompileID struct {
	value uuid.UUID
}

// NewCompileID creates a new random compile ID
func NewCompileID() CompileID {
	return CompileID{value: uuid.New()}
}

// ParseCompileID parses a string into a CompileID
func ParseCompileID(s string) (CompileID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CompileID{}, fmt.Errorf("invalid compile ID: %w", err)
	}
	return CompileID{value: id}, nil
}

// MustParseCompileID parses a string or panics (for tests only)
func MustParseCompileID(s string) CompileID {
	id, err := ParseCompileID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation
func (c CompileID) String() string {
	return c.value.String()
}

// IsZero returns true if this is the zero value
func (c CompileID) IsZero() bool {
	return c.value == uuid.Nil
}

// Equals checks if two CompileIDs are equal
func (c CompileID) Equals(other CompileID) bool {
	return c.value == other.value
}

// MarshalJSON implements json.Marshaler
func (c CompileID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (c *CompileID) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) < 2 {
		return fmt.Errorf("invalid compile ID JSON")
	}
	id, err := ParseCompileID(str[1 : len(str)-1])
	if err != nil {
		return err
	}
	*c = id
	return nil
}
