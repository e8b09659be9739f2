package apiclient

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeItems converts loosely typed JSON items into target using json tags. Providers
// are inconsistent about numbers and strings, so weak typing is enabled.
func DecodeItems(items any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	if err := decoder.Decode(items); err != nil {
		return fmt.Errorf("decoding items: %w", err)
	}
	return nil
}
