// Package loader turns the big-endian byte buffer produced by
// encoder.Serialize back into an origin and a sequence of words ready for
// vm.VM.Load.
package loader

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/lookbusy1344/rvm/vm"
)

// Image is a parsed binary image: the address words[0] belongs at, and the
// words themselves.
type Image struct {
	Origin uint16
	Words  []uint16
}

// Decode parses data as an image: bytes [0:2] are the big-endian origin,
// and bytes [2:] are big-endian program words. It fails
// if data is shorter than 2 bytes, has an odd payload length, or if
// origin+len(words) would overflow 0xFFFF.
func Decode(data []byte) (Image, error) {
	if len(data) < 2 {
		return Image{}, fmt.Errorf("loader: image is %d bytes, need at least 2 for the origin header", len(data))
	}
	payload := data[2:]
	if len(payload)%2 != 0 {
		return Image{}, fmt.Errorf("loader: payload is %d bytes, must be even (whole 16-bit words)", len(payload))
	}

	origin := binary.BigEndian.Uint16(data[0:2])
	wordCount := len(payload) / 2
	if int(origin)+wordCount > 0x10000 {
		return Image{}, fmt.Errorf("loader: origin %#04x + %d words overflows 0xFFFF", origin, wordCount)
	}

	words := make([]uint16, wordCount)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(payload[2*i : 2*i+2])
	}
	return Image{Origin: origin, Words: words}, nil
}

// ReadFile reads path and decodes it as an image.
func ReadFile(path string) (Image, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is a user-supplied CLI argument
	if err != nil {
		return Image{}, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return Decode(data)
}

// LoadInto copies img into machine's memory and sets PC to origin+pcOffset.
// pcOffset is normally zero; a caller wanting to start execution partway
// into an image may bias it.
func LoadInto(machine *vm.VM, img Image, pcOffset uint16) {
	machine.Load(img.Origin, img.Words, pcOffset)
}
